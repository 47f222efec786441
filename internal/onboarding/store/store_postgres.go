package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"sellerflow/internal/onboarding/models"
	id "sellerflow/pkg/domain"
	"sellerflow/pkg/platform/sentinel"
)

// PostgresDraftStore persists drafts as JSONB rows. Survives restarts and
// keeps draft history out of the hot Redis path for deployments that prefer a
// single datastore.
//
// Schema:
//
//	CREATE TABLE onboarding_drafts (
//	    user_id    UUID PRIMARY KEY,
//	    draft      JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresDraftStore struct {
	db *sql.DB
}

// NewPostgres constructs a Postgres-backed draft store.
func NewPostgres(db *sql.DB) *PostgresDraftStore {
	return &PostgresDraftStore{db: db}
}

func (s *PostgresDraftStore) Get(ctx context.Context, userID id.UserID) (*models.Draft, error) {
	const q = `SELECT draft FROM onboarding_drafts WHERE user_id = $1`

	var raw []byte
	err := s.db.QueryRowContext(ctx, q, userID.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}

	var draft models.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}

func (s *PostgresDraftStore) Save(ctx context.Context, draft *models.Draft) error {
	const q = `
        INSERT INTO onboarding_drafts (user_id, draft, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (user_id) DO UPDATE SET draft = EXCLUDED.draft, updated_at = now()
    `

	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, q, draft.UserID.String(), raw); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *PostgresDraftStore) Delete(ctx context.Context, userID id.UserID) error {
	const q = `DELETE FROM onboarding_drafts WHERE user_id = $1`
	if _, err := s.db.ExecContext(ctx, q, userID.String()); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
