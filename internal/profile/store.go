package profile

import (
	"context"

	id "sellerflow/pkg/domain"
)

// Store is the persistence port for seller profiles. Save is an idempotent
// upsert keyed on the owning user; FindBy* return sentinel.ErrNotFound when no
// profile matches.
type Store interface {
	Save(ctx context.Context, p *SellerProfile) error
	FindByUser(ctx context.Context, userID id.UserID) (*SellerProfile, error)
	FindByEmail(ctx context.Context, email string) (*SellerProfile, error)
	FindByPhone(ctx context.Context, phone string) (*SellerProfile, error)
}
