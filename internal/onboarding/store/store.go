// Package store persists in-progress drafts keyed by the owner user ID. All
// implementations return sentinel.ErrNotFound for missing drafts; services
// translate sentinels into domain errors.
package store

import (
	"context"

	"sellerflow/internal/onboarding/models"
	id "sellerflow/pkg/domain"
)

// DraftStore is the persistence port for drafts. Save is an upsert.
type DraftStore interface {
	Get(ctx context.Context, userID id.UserID) (*models.Draft, error)
	Save(ctx context.Context, draft *models.Draft) error
	Delete(ctx context.Context, userID id.UserID) error
}
