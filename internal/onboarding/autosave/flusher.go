// Package autosave batches draft writes behind a debounce window so a burst of
// field edits produces a single store write holding the final value.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sellerflow/internal/audit"
	"sellerflow/internal/onboarding/models"
	"sellerflow/internal/onboarding/store"
	id "sellerflow/pkg/domain"
)

const flushTimeout = 5 * time.Second

// Flusher debounces draft persistence. Each MarkDirty resets the user's single
// outstanding timer; only the latest scheduled flush executes. A manual
// FlushNow writes immediately and is a no-op when the draft is clean.
type Flusher struct {
	store     store.DraftStore
	debounce  time.Duration
	logger    *slog.Logger
	onFlush   func(userID id.UserID)
	publisher audit.Publisher

	mu      sync.Mutex
	pending map[id.UserID]*models.Draft
	timers  map[id.UserID]*time.Timer
	// gens counts discards per user so a requeue after a failed flush cannot
	// undo a discard that landed while the flush held the draft.
	gens map[id.UserID]uint64
}

// Option configures a Flusher.
type Option func(*Flusher)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flusher) {
		f.logger = logger
	}
}

// WithOnFlush registers a hook invoked after every successful flush, used for
// metrics.
func WithOnFlush(fn func(userID id.UserID)) Option {
	return func(f *Flusher) {
		f.onFlush = fn
	}
}

// WithAuditPublisher emits a draft_saved audit event after every successful
// flush.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(f *Flusher) {
		f.publisher = p
	}
}

// New constructs a Flusher writing through to the given draft store.
func New(draftStore store.DraftStore, debounce time.Duration, opts ...Option) *Flusher {
	f := &Flusher{
		store:    draftStore,
		debounce: debounce,
		logger:   slog.Default(),
		pending:  make(map[id.UserID]*models.Draft),
		timers:   make(map[id.UserID]*time.Timer),
		gens:     make(map[id.UserID]uint64),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// MarkDirty records the latest draft state and (re)starts the debounce timer.
func (f *Flusher) MarkDirty(draft *models.Draft) {
	userID := draft.UserID

	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending[userID] = draft.Clone()
	if t, ok := f.timers[userID]; ok {
		t.Stop()
	}
	f.timers[userID] = time.AfterFunc(f.debounce, func() {
		f.flushUser(userID)
	})
}

// Peek returns a copy of the user's pending draft, when one exists. The
// pending copy is always newer than the stored draft.
func (f *Flusher) Peek(userID id.UserID) (*models.Draft, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft, ok := f.pending[userID]
	if !ok {
		return nil, false
	}
	return draft.Clone(), true
}

// Dirty reports whether the user has an unflushed draft.
func (f *Flusher) Dirty(userID id.UserID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pending[userID]
	return ok
}

// FlushNow writes the pending draft immediately. Returns false without
// touching the store when the draft is already clean.
func (f *Flusher) FlushNow(ctx context.Context, userID id.UserID) (bool, error) {
	draft, gen, ok := f.take(userID)
	if !ok {
		return false, nil
	}
	if err := f.store.Save(ctx, draft); err != nil {
		// Put the draft back so the next flush retries it.
		f.restore(draft, gen)
		return false, err
	}
	if f.onFlush != nil {
		f.onFlush(userID)
	}
	audit.Log(ctx, f.logger, f.publisher, audit.ActionDraftSaved,
		"user_id", userID,
	)
	return true, nil
}

// Discard drops any pending state for the user without writing. Used by reset,
// where a scheduled flush would resurrect the cleared draft.
func (f *Flusher) Discard(userID id.UserID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gens[userID]++
	delete(f.pending, userID)
	if t, ok := f.timers[userID]; ok {
		t.Stop()
		delete(f.timers, userID)
	}
}

// Run blocks until ctx is cancelled, then flushes everything still dirty so a
// shutdown never loses the newest edits.
func (f *Flusher) Run(ctx context.Context) error {
	<-ctx.Done()

	f.mu.Lock()
	users := make([]id.UserID, 0, len(f.pending))
	for userID := range f.pending {
		users = append(users, userID)
	}
	f.mu.Unlock()

	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	for _, userID := range users {
		if _, err := f.FlushNow(flushCtx, userID); err != nil {
			f.logger.Error("final autosave flush failed",
				"user_id", userID.String(),
				"error", err,
			)
		}
	}
	return ctx.Err()
}

// flushUser is the debounce timer callback.
func (f *Flusher) flushUser(userID id.UserID) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if _, err := f.FlushNow(ctx, userID); err != nil {
		f.logger.Error("autosave flush failed",
			"user_id", userID.String(),
			"error", err,
		)
	}
}

func (f *Flusher) take(userID id.UserID) (*models.Draft, uint64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	draft, ok := f.pending[userID]
	if !ok {
		return nil, 0, false
	}
	delete(f.pending, userID)
	if t, ok := f.timers[userID]; ok {
		t.Stop()
		delete(f.timers, userID)
	}
	return draft, f.gens[userID], true
}

// restore re-queues a draft after a failed flush unless a newer one arrived or
// a discard landed in the meantime.
func (f *Flusher) restore(draft *models.Draft, gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gens[draft.UserID] != gen {
		return
	}
	if _, ok := f.pending[draft.UserID]; !ok {
		f.pending[draft.UserID] = draft
	}
}
