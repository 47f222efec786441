// Package service implements the onboarding wizard controller: draft
// lifecycle, step navigation under gating, dirty-tracking with debounced
// autosave, and final submission into the seller-profile store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"sellerflow/internal/audit"
	"sellerflow/internal/onboarding/autosave"
	"sellerflow/internal/onboarding/models"
	"sellerflow/internal/onboarding/patch"
	"sellerflow/internal/onboarding/steps"
	"sellerflow/internal/onboarding/store"
	"sellerflow/internal/platform/metrics"
	"sellerflow/internal/profile"
	id "sellerflow/pkg/domain"
	dErrors "sellerflow/pkg/domain-errors"
	"sellerflow/pkg/email"
	"sellerflow/pkg/platform/sentinel"
	"sellerflow/pkg/requestcontext"
)

// AvailabilityChecker answers contact-uniqueness pre-checks. Implemented by
// the contact package over the profile store.
type AvailabilityChecker interface {
	Exists(ctx context.Context, channel models.Channel, value string, requester id.UserID) (bool, error)
}

// Service is the wizard controller.
type Service struct {
	drafts   store.DraftStore
	flusher  *autosave.Flusher
	profiles profile.Store
	checker  AvailabilityChecker
	gate     steps.Gate

	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher audit.Publisher
	tracer    trace.Tracer
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

// WithRelaxedGating admits every step regardless of prior predicates. Used by
// the storefront's review mode; off in production.
func WithRelaxedGating() Option {
	return func(s *Service) { s.gate.Relaxed = true }
}

// New constructs the wizard controller.
func New(drafts store.DraftStore, flusher *autosave.Flusher, profiles profile.Store, checker AvailabilityChecker, opts ...Option) (*Service, error) {
	if drafts == nil || flusher == nil || profiles == nil || checker == nil {
		return nil, errors.New("drafts, flusher, profiles, and checker are required")
	}
	s := &Service{
		drafts:   drafts,
		flusher:  flusher,
		profiles: profiles,
		checker:  checker,
		logger:   slog.Default(),
		tracer:   otel.Tracer("sellerflow/onboarding"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// StartOrResume returns the user's draft, creating one when none exists. A
// rejected profile seeds a resubmission draft positioned at the first
// reviewer-flagged step.
func (s *Service) StartOrResume(ctx context.Context, userID id.UserID) (*models.Draft, error) {
	if draft, err := s.GetDraft(ctx, userID); err == nil {
		return draft, nil
	} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, err
	}

	draft := models.NewDraft(userID)
	if p, err := s.profiles.FindByUser(ctx, userID); err == nil && p.Status == profile.StatusRejected {
		seedFromProfile(draft, p)
	} else if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up existing profile")
	}
	draft.UpdatedAt = requestcontext.Now(ctx)

	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create draft")
	}
	return draft.Clone(), nil
}

// GetDraft returns the freshest draft state: the unflushed pending copy when
// one exists, otherwise the stored draft.
func (s *Service) GetDraft(ctx context.Context, userID id.UserID) (*models.Draft, error) {
	if draft, ok := s.flusher.Peek(userID); ok {
		return draft, nil
	}
	draft, err := s.drafts.Get(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no draft in progress")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load draft")
	}
	return draft, nil
}

// ApplyPatch merges a typed patch into the draft and schedules an autosave.
func (s *Service) ApplyPatch(ctx context.Context, userID id.UserID, p patch.Patch) (*models.Draft, error) {
	draft, err := s.GetDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(draft, p); err != nil {
		return nil, err
	}
	draft.UpdatedAt = requestcontext.Now(ctx)
	s.flusher.MarkDirty(draft)
	return draft, nil
}

// CheckAvailability runs the uniqueness pre-check for the channel's current
// draft value and records or clears the blocking field error accordingly.
// Returns true when the value collides with another seller.
func (s *Service) CheckAvailability(ctx context.Context, userID id.UserID, channel models.Channel) (bool, error) {
	if !channel.IsValid() {
		return false, dErrors.Newf(dErrors.CodeBadRequest, "unknown channel %q", channel)
	}
	draft, err := s.GetDraft(ctx, userID)
	if err != nil {
		return false, err
	}

	value := draft.Email
	errKey := models.FieldErrorEmailTaken
	if channel == models.ChannelPhone {
		value = draft.Phone
		errKey = models.FieldErrorPhoneTaken
	}

	exists, err := s.checker.Exists(ctx, channel, value, userID)
	if err != nil {
		return false, err
	}
	if exists {
		draft.SetFieldError(errKey, fmt.Sprintf("this %s is already registered to another seller", channel))
	} else {
		draft.ClearFieldError(errKey)
	}
	draft.UpdatedAt = requestcontext.Now(ctx)
	s.flusher.MarkDirty(draft)
	return exists, nil
}

// Advance moves to the next step, clamped to the last, subject to gating.
func (s *Service) Advance(ctx context.Context, userID id.UserID) (*models.Draft, error) {
	return s.moveTo(ctx, userID, +1)
}

// Retreat moves to the previous step, clamped to zero. Going backwards is
// never gated.
func (s *Service) Retreat(ctx context.Context, userID id.UserID) (*models.Draft, error) {
	return s.moveTo(ctx, userID, -1)
}

// GoToStep jumps to a named step, subject to gating.
func (s *Service) GoToStep(ctx context.Context, userID id.UserID, step steps.ID) (*models.Draft, error) {
	target := steps.IndexOf(step)
	if target < 0 {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown step %q", step)
	}
	draft, err := s.GetDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target > draft.Step && !s.gate.CanReach(draft, target) {
		return nil, dErrors.New(dErrors.CodeForbidden, "complete the previous steps first")
	}
	draft.Step = target
	draft.UpdatedAt = requestcontext.Now(ctx)
	s.flusher.MarkDirty(draft)
	return draft, nil
}

func (s *Service) moveTo(ctx context.Context, userID id.UserID, delta int) (*models.Draft, error) {
	draft, err := s.GetDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	target := steps.Clamp(draft.Step + delta)
	if target > draft.Step && !s.gate.CanReach(draft, target) {
		return nil, dErrors.New(dErrors.CodeForbidden, "complete the previous steps first")
	}
	if target == draft.Step {
		return draft, nil
	}
	draft.Step = target
	draft.UpdatedAt = requestcontext.Now(ctx)
	s.flusher.MarkDirty(draft)
	return draft, nil
}

// Save flushes the pending draft immediately. Returns false when the draft was
// already clean.
func (s *Service) Save(ctx context.Context, userID id.UserID) (bool, error) {
	saved, err := s.flusher.FlushNow(ctx, userID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save draft")
	}
	return saved, nil
}

// Reset clears the draft entirely. The confirm flag must be set; an
// unconfirmed reset is rejected rather than silently destroying work.
func (s *Service) Reset(ctx context.Context, userID id.UserID, confirm bool) error {
	if !confirm {
		return dErrors.New(dErrors.CodeBadRequest, "reset requires confirmation")
	}
	s.flusher.Discard(userID)
	if err := s.drafts.Delete(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset draft")
	}
	if s.metrics != nil {
		s.metrics.DraftsReset.Inc()
	}
	audit.Log(ctx, s.logger, s.publisher, audit.ActionDraftReset,
		"user_id", userID,
	)
	return nil
}

// MarkChannelVerified flips the sticky verified flag for a contact channel and
// persists immediately; a verified contact must survive even an abrupt exit.
func (s *Service) MarkChannelVerified(ctx context.Context, userID id.UserID, channel models.Channel) error {
	draft, err := s.GetDraft(ctx, userID)
	if err != nil {
		return err
	}
	switch channel {
	case models.ChannelEmail:
		draft.EmailVerified = true
	case models.ChannelPhone:
		draft.PhoneVerified = true
	default:
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown channel %q", channel)
	}
	draft.UpdatedAt = requestcontext.Now(ctx)
	s.flusher.MarkDirty(draft)
	if _, err := s.flusher.FlushNow(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist verified contact")
	}
	return nil
}

// MarkIdentityVerified records the terminal VERIFIED outcome and, when the
// user is sitting on the identity step, advances them automatically.
func (s *Service) MarkIdentityVerified(ctx context.Context, userID id.UserID) error {
	draft, err := s.GetDraft(ctx, userID)
	if err != nil {
		return err
	}
	draft.IdentityVerified = true
	if draft.Step == steps.IndexOf(steps.StepIdentity) {
		draft.Step = steps.Clamp(draft.Step + 1)
	}
	draft.UpdatedAt = requestcontext.Now(ctx)
	s.flusher.MarkDirty(draft)
	if _, err := s.flusher.FlushNow(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist verified identity")
	}
	return nil
}

// seedFromProfile hydrates a resubmission draft from a rejected profile. The
// reviewer's flagged steps position the wizard; contact channels stay verified
// because the values were verified on first submission.
func seedFromProfile(d *models.Draft, p *profile.SellerProfile) {
	d.Resubmission = true
	d.LegalName = p.LegalName
	d.DisplayName = p.DisplayName
	d.Email = p.Email
	d.Phone = p.Phone
	d.EmailVerified = p.EmailVerified
	d.PhoneVerified = p.PhoneVerified
	d.PhotoDataURI = p.PhotoDataURI
	d.Business = p.Business
	d.Bank = p.Bank
	d.AuctionsEnabled = p.AuctionsEnabled
	for _, addr := range p.Addresses {
		switch addr.Tag {
		case profile.AddressRegistered:
			d.RegisteredAddress = addr.Address
		case profile.AddressPickup:
			d.PickupAddress = addr.Address
		}
	}
	d.PickupSameAsRegistered = len(p.Addresses) == 1
	if d.DisplayName == "" {
		d.DisplayName = email.SuggestDisplayName(d.Email)
	}
	d.Step = steps.ResumeStep(p.StepsToFix)
}
