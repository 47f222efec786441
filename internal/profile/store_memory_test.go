package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "sellerflow/pkg/domain"
	"sellerflow/pkg/platform/sentinel"
)

func seedProfile(t *testing.T, s *InMemoryStore) *SellerProfile {
	t.Helper()
	userID, err := id.ParseUserID("5a6b7c8d-1234-4abc-9def-0123456789ab")
	require.NoError(t, err)

	p := &SellerProfile{
		ID:     id.NewProfileID(),
		UserID: userID,
		Email:  "asha@example.com",
		Phone:  "9876543210",
		Status: StatusPendingReview,
	}
	require.NoError(t, s.Save(context.Background(), p))
	return p
}

func TestInMemoryStoreLookups(t *testing.T) {
	s := NewInMemory()
	p := seedProfile(t, s)
	ctx := context.Background()

	byUser, err := s.FindByUser(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, byUser.ID)

	byEmail, err := s.FindByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byEmail.ID)

	byPhone, err := s.FindByPhone(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byPhone.ID)
}

func TestInMemoryStoreMissing(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	userID, err := id.ParseUserID("00000000-0000-4000-8000-000000000001")
	require.NoError(t, err)

	_, err = s.FindByUser(ctx, userID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = s.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = s.FindByPhone(ctx, "0000000000")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreUpsertsByUser(t *testing.T) {
	s := NewInMemory()
	p := seedProfile(t, s)
	ctx := context.Background()

	p.Status = StatusRejected
	p.Email = "new@example.com"
	require.NoError(t, s.Save(ctx, p))

	got, err := s.FindByUser(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)

	_, err = s.FindByEmail(ctx, "asha@example.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound, "the old email no longer resolves")

	got, err = s.FindByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}
