package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	id "sellerflow/pkg/domain"
	"sellerflow/pkg/platform/sentinel"
)

// PostgresStore persists seller profiles. The document body lives in a JSONB
// column; email and phone are projected out for the uniqueness lookups.
//
// Schema:
//
//	CREATE TABLE seller_profiles (
//	    user_id    UUID PRIMARY KEY,
//	    id         UUID NOT NULL,
//	    email      TEXT NOT NULL,
//	    phone      TEXT NOT NULL,
//	    profile    JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX seller_profiles_email_idx ON seller_profiles (email);
//	CREATE INDEX seller_profiles_phone_idx ON seller_profiles (phone);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a Postgres-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, p *SellerProfile) error {
	const q = `
        INSERT INTO seller_profiles (user_id, id, email, phone, profile, updated_at)
        VALUES ($1, $2, $3, $4, $5, now())
        ON CONFLICT (user_id) DO UPDATE
            SET id = EXCLUDED.id,
                email = EXCLUDED.email,
                phone = EXCLUDED.phone,
                profile = EXCLUDED.profile,
                updated_at = now()
    `

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, q, p.UserID.String(), p.ID.String(), p.Email, p.Phone, raw)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID id.UserID) (*SellerProfile, error) {
	return s.findOne(ctx, `SELECT profile FROM seller_profiles WHERE user_id = $1`, userID.String())
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*SellerProfile, error) {
	return s.findOne(ctx, `SELECT profile FROM seller_profiles WHERE email = $1`, email)
}

func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) (*SellerProfile, error) {
	return s.findOne(ctx, `SELECT profile FROM seller_profiles WHERE phone = $1`, phone)
}

func (s *PostgresStore) findOne(ctx context.Context, q string, arg any) (*SellerProfile, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, q, arg).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	var p SellerProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}
