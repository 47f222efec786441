package identity

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"sellerflow/internal/audit"
	"sellerflow/internal/platform/metrics"
	id "sellerflow/pkg/domain"
	dErrors "sellerflow/pkg/domain-errors"
)

// VerifiedSink receives the terminal VERIFIED outcome so the wizard can flip
// its sticky identity flag. Implemented by the onboarding service.
type VerifiedSink interface {
	MarkIdentityVerified(ctx context.Context, userID id.UserID) error
}

// Service owns verification sessions and their polling loops. One session per
// user at a time; sessions are ephemeral in-memory state.
type Service struct {
	provider     Provider
	sink         VerifiedSink
	pollInterval time.Duration
	maxAttempts  int
	qrTemplate   string

	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher audit.Publisher
	tracer    trace.Tracer

	mu       sync.Mutex
	sessions map[id.UserID]*Session
	cancels  map[id.UserID]context.CancelFunc

	rootCtx    context.Context
	rootCancel context.CancelFunc
	pollers    sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// New constructs the verification service. Pollers run until a terminal state,
// the attempt cap, or Shutdown.
func New(provider Provider, sink VerifiedSink, pollInterval time.Duration, maxAttempts int, qrTemplate string, opts ...Option) (*Service, error) {
	if provider == nil || sink == nil {
		return nil, errors.New("provider and sink are required")
	}
	rootCtx, rootCancel := context.WithCancel(context.Background())
	s := &Service{
		provider:     provider,
		sink:         sink,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		qrTemplate:   qrTemplate,
		logger:       slog.Default(),
		tracer:       otel.Tracer("sellerflow/identity"),
		sessions:     make(map[id.UserID]*Session),
		cancels:      make(map[id.UserID]context.CancelFunc),
		rootCtx:      rootCtx,
		rootCancel:   rootCancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start creates a provider session and begins polling. An existing PENDING
// session is returned as-is so a page reload does not spawn a second poller.
func (s *Service) Start(ctx context.Context, userID id.UserID) (*Session, error) {
	s.mu.Lock()
	if existing, ok := s.sessions[userID]; ok && existing.State == StatePending {
		out := *existing
		s.mu.Unlock()
		return &out, nil
	}
	s.mu.Unlock()

	ps, err := s.provider.CreateSession(ctx, userID.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification provider unavailable")
	}

	session := &Session{
		ID:               id.NewVerificationSessionID(),
		UserID:           userID,
		State:            StatePending,
		VerificationLink: ps.VerificationLink,
		QRImageURL:       QRImageURL(s.qrTemplate, ps.VerificationLink),
		CreatedAt:        time.Now(),
	}

	pollCtx, cancel := context.WithCancel(s.rootCtx)

	s.mu.Lock()
	// A FAILED or VERIFIED session for this user is replaced outright.
	if oldCancel, ok := s.cancels[userID]; ok {
		oldCancel()
	}
	s.sessions[userID] = session
	s.cancels[userID] = cancel
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.VerificationSessions.Inc()
	}
	audit.Log(ctx, s.logger, s.publisher, audit.ActionVerificationStarted,
		"user_id", userID,
		"session_id", session.ID.String(),
	)

	s.pollers.Add(1)
	go func() {
		defer s.pollers.Done()
		s.poll(pollCtx, userID, ps.SessionID)
	}()

	return s.snapshot(userID)
}

// Status returns the user's current session. IDLE is reported when no session
// exists.
func (s *Service) Status(ctx context.Context, userID id.UserID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return &Session{UserID: userID, State: StateIdle}, nil
	}
	out := *session
	return &out, nil
}

// Retry moves a FAILED session back to IDLE so the user can start again.
func (s *Service) Retry(ctx context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok || session.State != StateFailed {
		return dErrors.New(dErrors.CodeConflict, "no failed verification to retry")
	}
	delete(s.sessions, userID)
	if cancel, ok := s.cancels[userID]; ok {
		cancel()
		delete(s.cancels, userID)
	}
	return nil
}

// Shutdown stops every poller and waits for them to exit.
func (s *Service) Shutdown() {
	s.rootCancel()
	s.pollers.Wait()
}

// poll drives one PENDING session to a terminal state. It stops on VERIFIED,
// on a provider error, on attempt exhaustion, or when ctx is cancelled.
func (s *Service) poll(ctx context.Context, userID id.UserID, providerSessionID string) {
	ctx, span := s.tracer.Start(ctx, "identity.poll")
	defer span.End()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		attempts++
		if s.metrics != nil {
			s.metrics.VerificationPollTicks.Inc()
		}

		status, err := s.provider.CheckSession(ctx, providerSessionID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Warn("verification status check failed",
				"user_id", userID.String(),
				"error", err,
			)
			s.transition(userID, attempts, StateFailed, "verification check failed; please retry")
			return
		}

		switch status {
		case ProviderStatusVerified:
			s.transition(userID, attempts, StateVerified, "")
			s.notifyVerified(userID)
			return
		case ProviderStatusFailed:
			s.transition(userID, attempts, StateFailed, "identity verification was rejected")
			return
		}

		if s.maxAttempts > 0 && attempts >= s.maxAttempts {
			s.transition(userID, attempts, StateFailed, "verification timed out; please retry")
			return
		}
	}
}

func (s *Service) transition(userID id.UserID, attempts int, state State, message string) {
	s.mu.Lock()
	session, ok := s.sessions[userID]
	if ok && !session.State.Terminal() {
		session.State = state
		session.Message = message
		session.Attempts = attempts
	}
	if cancel, ok := s.cancels[userID]; ok {
		cancel()
		delete(s.cancels, userID)
	}
	s.mu.Unlock()

	audit.Log(context.Background(), s.logger, s.publisher, audit.ActionVerificationCompleted,
		"user_id", userID,
		"state", string(state),
	)
}

func (s *Service) notifyVerified(userID id.UserID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.sink.MarkIdentityVerified(ctx, userID); err != nil {
		s.logger.Error("failed to record verified identity on draft",
			"user_id", userID.String(),
			"error", err,
		)
	}
}

func (s *Service) snapshot(userID id.UserID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if !ok {
		return &Session{UserID: userID, State: StateIdle}, nil
	}
	out := *session
	return &out, nil
}
