package service

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"sellerflow/internal/audit"
	"sellerflow/internal/onboarding/models"
	"sellerflow/internal/onboarding/steps"
	"sellerflow/internal/profile"
	id "sellerflow/pkg/domain"
	dErrors "sellerflow/pkg/domain-errors"
	"sellerflow/pkg/platform/sentinel"
	"sellerflow/pkg/requestcontext"
)

// Submit turns a completed draft into a pending-review seller profile. The
// draft must have accepted terms, a VERIFIED identity outcome, and every step
// predicate satisfied; navigation gating may be relaxed, submission never is.
// On success the draft is deleted and the profile awaits review.
func (s *Service) Submit(ctx context.Context, userID id.UserID) (*profile.SellerProfile, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding.submit")
	defer span.End()

	draft, err := s.GetDraft(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !draft.TermsAccepted {
		return nil, dErrors.New(dErrors.CodeBadRequest, "terms must be accepted before submitting")
	}
	if !draft.IdentityVerified {
		return nil, dErrors.New(dErrors.CodeForbidden, "identity verification must complete before submitting")
	}
	for _, stepID := range steps.Order {
		if !steps.IsStepValid(stepID, draft) {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "step %q is incomplete", stepID)
		}
	}

	draft.StripTransient()

	p, err := s.assembleProfile(ctx, draft)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store application")
	}

	// The draft is done; a flush scheduled before submission must not
	// resurrect it.
	s.flusher.Discard(userID)
	if err := s.drafts.Delete(ctx, userID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.Error("failed to delete draft after submission",
			"user_id", userID.String(),
			"error", err,
		)
	}

	if s.metrics != nil {
		s.metrics.ApplicationsSubmitted.Inc()
	}
	audit.Log(ctx, s.logger, s.publisher, audit.ActionApplicationSubmitted,
		"user_id", userID,
		"profile_id", p.ID.String(),
		"resubmission", strconv.FormatBool(draft.Resubmission),
	)
	return p, nil
}

// assembleProfile maps the draft to its persisted shape: addresses flattened
// into a tagged list (the aliased pickup address is not duplicated), password
// hashed, status reset to pending review. A resubmission keeps the original
// profile identity and creation time.
func (s *Service) assembleProfile(ctx context.Context, draft *models.Draft) (*profile.SellerProfile, error) {
	now := requestcontext.Now(ctx)
	p := &profile.SellerProfile{
		ID:              id.NewProfileID(),
		UserID:          draft.UserID,
		LegalName:       draft.LegalName,
		DisplayName:     draft.DisplayName,
		Email:           draft.Email,
		Phone:           draft.Phone,
		EmailVerified:   draft.EmailVerified,
		PhoneVerified:   draft.PhoneVerified,
		PhotoDataURI:    draft.PhotoDataURI,
		Business:        draft.Business,
		Bank:            draft.Bank,
		AuctionsEnabled: draft.AuctionsEnabled,
		Status:          profile.StatusPendingReview,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	p.Addresses = []profile.TaggedAddress{
		{Tag: profile.AddressRegistered, Address: draft.RegisteredAddress},
	}
	if !draft.PickupSameAsRegistered {
		p.Addresses = append(p.Addresses, profile.TaggedAddress{
			Tag:     profile.AddressPickup,
			Address: draft.PickupAddress,
		})
	}

	existing, err := s.profiles.FindByUser(ctx, draft.UserID)
	switch {
	case err == nil:
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		p.PasswordHash = existing.PasswordHash
	case errors.Is(err, sentinel.ErrNotFound):
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up existing profile")
	}

	if draft.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(draft.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
		}
		p.PasswordHash = string(hash)
	}
	if p.PasswordHash == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a password is required")
	}
	return p, nil
}
