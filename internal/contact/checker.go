package contact

import (
	"context"
	"errors"

	"sellerflow/internal/onboarding/models"
	"sellerflow/internal/profile"
	id "sellerflow/pkg/domain"
	dErrors "sellerflow/pkg/domain-errors"
	"sellerflow/pkg/platform/sentinel"
)

// Checker answers "does this contact value belong to another seller already".
// The onboarding service consults it when an email/phone edit needs a
// uniqueness pre-check.
type Checker struct {
	profiles profile.Store
}

// NewChecker constructs a Checker over the profile store.
func NewChecker(profiles profile.Store) *Checker {
	return &Checker{profiles: profiles}
}

// Exists reports whether value collides with a profile owned by a different
// user. The requesting user's own profile never counts as a collision, so a
// resubmission can keep its contact details.
func (c *Checker) Exists(ctx context.Context, channel models.Channel, value string, requester id.UserID) (bool, error) {
	if value == "" {
		return false, nil
	}

	var (
		p   *profile.SellerProfile
		err error
	)
	switch channel {
	case models.ChannelEmail:
		p, err = c.profiles.FindByEmail(ctx, value)
	case models.ChannelPhone:
		p, err = c.profiles.FindByPhone(ctx, value)
	default:
		return false, dErrors.Newf(dErrors.CodeBadRequest, "unknown channel %q", channel)
	}

	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "existence check failed")
	}
	return p.UserID != requester, nil
}
