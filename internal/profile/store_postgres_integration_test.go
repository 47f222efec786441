//go:build integration

package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellerflow/internal/onboarding/steps"
	id "sellerflow/pkg/domain"
	"sellerflow/pkg/platform/sentinel"
	"sellerflow/pkg/testutil/containers"
)

const profilesDDL = `
CREATE TABLE IF NOT EXISTS seller_profiles (
    user_id    UUID PRIMARY KEY,
    id         UUID NOT NULL,
    email      TEXT NOT NULL,
    phone      TEXT NOT NULL,
    profile    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS seller_profiles_email_idx ON seller_profiles (email);
CREATE INDEX IF NOT EXISTS seller_profiles_phone_idx ON seller_profiles (phone)`

func TestPostgresProfileStoreIntegration(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	pg.Migrate(t, profilesDDL)
	s := NewPostgres(pg.DB)
	ctx := context.Background()

	userID, err := id.ParseUserID("5a6b7c8d-1234-4abc-9def-0123456789ab")
	require.NoError(t, err)

	p := &SellerProfile{
		ID:            id.NewProfileID(),
		UserID:        userID,
		LegalName:     "Asha Rao",
		Email:         "asha@example.com",
		Phone:         "9876543210",
		EmailVerified: true,
		PasswordHash:  "$2a$10$somethinghashedsomethinghashedxx",
		Status:        StatusPendingReview,
	}
	require.NoError(t, s.Save(ctx, p))

	got, err := s.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.PasswordHash, got.PasswordHash, "the hash survives the round trip")

	got, err = s.FindByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	got, err = s.FindByPhone(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	// Rejection with flagged steps, then upsert back to pending review.
	p.Status = StatusRejected
	p.StepsToFix = []steps.ID{steps.StepBank}
	require.NoError(t, s.Save(ctx, p))

	got, err = s.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)
	assert.Equal(t, []steps.ID{steps.StepBank}, got.StepsToFix)

	_, err = s.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
