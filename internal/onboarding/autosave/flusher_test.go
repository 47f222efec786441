package autosave

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellerflow/internal/audit"
	"sellerflow/internal/onboarding/models"
	"sellerflow/internal/onboarding/store"
	id "sellerflow/pkg/domain"
)

func newUserID(t *testing.T) id.UserID {
	t.Helper()
	userID, err := id.ParseUserID("5a6b7c8d-1234-4abc-9def-0123456789ab")
	require.NoError(t, err)
	return userID
}

// countingStore wraps the in-memory store and counts Save calls.
type countingStore struct {
	*store.InMemoryDraftStore

	mu    sync.Mutex
	saves int
	fail  bool
}

func (s *countingStore) Save(ctx context.Context, draft *models.Draft) error {
	s.mu.Lock()
	s.saves++
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return errors.New("store down")
	}
	return s.InMemoryDraftStore.Save(ctx, draft)
}

func (s *countingStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func TestFlusherDebouncesBurstIntoOneWrite(t *testing.T) {
	cs := &countingStore{InMemoryDraftStore: store.NewInMemory()}
	f := New(cs, 30*time.Millisecond)
	userID := newUserID(t)

	draft := models.NewDraft(userID)
	for i, name := range []string{"A", "As", "Ash", "Asha"} {
		draft.LegalName = name
		draft.Step = i
		f.MarkDirty(draft)
	}

	assert.Eventually(t, func() bool {
		return !f.Dirty(userID)
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, cs.saveCount(), "a burst of edits flushes once")

	got, err := cs.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.LegalName, "the flush holds the final value")
	assert.Equal(t, 3, got.Step)
}

func TestFlushNowWritesImmediately(t *testing.T) {
	cs := &countingStore{InMemoryDraftStore: store.NewInMemory()}
	f := New(cs, time.Hour)
	userID := newUserID(t)

	draft := models.NewDraft(userID)
	draft.LegalName = "Asha Rao"
	f.MarkDirty(draft)

	saved, err := f.FlushNow(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.False(t, f.Dirty(userID))

	got, err := cs.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.LegalName)
}

func TestFlushNowCleanIsNoOp(t *testing.T) {
	cs := &countingStore{InMemoryDraftStore: store.NewInMemory()}
	f := New(cs, time.Hour)

	saved, err := f.FlushNow(context.Background(), newUserID(t))
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, 0, cs.saveCount(), "a clean draft never touches the store")
}

func TestFlushNowRequeuesOnStoreError(t *testing.T) {
	cs := &countingStore{InMemoryDraftStore: store.NewInMemory(), fail: true}
	f := New(cs, time.Hour)
	userID := newUserID(t)

	f.MarkDirty(models.NewDraft(userID))

	_, err := f.FlushNow(context.Background(), userID)
	require.Error(t, err)
	assert.True(t, f.Dirty(userID), "a failed flush keeps the draft pending for retry")

	cs.mu.Lock()
	cs.fail = false
	cs.mu.Unlock()

	saved, err := f.FlushNow(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestFlushPublishesDraftSavedAudit(t *testing.T) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	cs := &countingStore{InMemoryDraftStore: store.NewInMemory()}
	cp := audit.NewChannelPublisher(4, quiet)
	f := New(cs, time.Hour, WithLogger(quiet), WithAuditPublisher(cp))
	userID := newUserID(t)

	f.MarkDirty(models.NewDraft(userID))
	saved, err := f.FlushNow(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, saved)

	select {
	case event := <-cp.Events():
		assert.Equal(t, audit.ActionDraftSaved, event.Action)
		assert.Equal(t, userID.String(), event.UserID)
	default:
		t.Fatal("flushing a draft published no audit event")
	}
}

// resettingStore fails the save and discards the user's pending state while
// the flush still holds the draft, like a reset racing a flush.
type resettingStore struct {
	*store.InMemoryDraftStore
	flusher *Flusher
}

func (s *resettingStore) Save(ctx context.Context, draft *models.Draft) error {
	s.flusher.Discard(draft.UserID)
	return errors.New("store down")
}

func TestDiscardDuringFailedFlushIsNotUndone(t *testing.T) {
	rs := &resettingStore{InMemoryDraftStore: store.NewInMemory()}
	f := New(rs, time.Hour)
	rs.flusher = f
	userID := newUserID(t)

	f.MarkDirty(models.NewDraft(userID))
	_, err := f.FlushNow(context.Background(), userID)
	require.Error(t, err)
	assert.False(t, f.Dirty(userID), "the requeue must not resurrect a discarded draft")
}

func TestDiscardDropsPendingState(t *testing.T) {
	cs := &countingStore{InMemoryDraftStore: store.NewInMemory()}
	f := New(cs, 20*time.Millisecond)
	userID := newUserID(t)

	f.MarkDirty(models.NewDraft(userID))
	f.Discard(userID)

	// Wait past the debounce window; the cancelled timer must not fire a write.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, cs.saveCount())
	assert.False(t, f.Dirty(userID))
}

func TestPeekReturnsPendingCopy(t *testing.T) {
	cs := &countingStore{InMemoryDraftStore: store.NewInMemory()}
	f := New(cs, time.Hour)
	userID := newUserID(t)

	_, ok := f.Peek(userID)
	assert.False(t, ok)

	draft := models.NewDraft(userID)
	draft.LegalName = "Asha Rao"
	f.MarkDirty(draft)

	got, ok := f.Peek(userID)
	require.True(t, ok)
	assert.Equal(t, "Asha Rao", got.LegalName)

	got.LegalName = "Mutated"
	again, ok := f.Peek(userID)
	require.True(t, ok)
	assert.Equal(t, "Asha Rao", again.LegalName, "peek hands out a copy")
}

func TestRunFlushesEverythingOnShutdown(t *testing.T) {
	cs := &countingStore{InMemoryDraftStore: store.NewInMemory()}
	f := New(cs, time.Hour)
	userID := newUserID(t)

	draft := models.NewDraft(userID)
	draft.LegalName = "Asha Rao"
	f.MarkDirty(draft)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after cancellation")
	}

	got, err := cs.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.LegalName, "shutdown flushes pending drafts")
}
