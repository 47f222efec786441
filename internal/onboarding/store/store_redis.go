package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sellerflow/internal/onboarding/models"
	id "sellerflow/pkg/domain"
	"sellerflow/pkg/platform/sentinel"
)

const draftKeyPrefix = "onboarding:draft:"

// RedisDraftStore persists drafts as JSON values in Redis. This is the
// production-recommended implementation for multi-instance deployments where
// the wizard may resume on any node.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOption configures a RedisDraftStore.
type RedisOption func(*RedisDraftStore)

// WithTTL bounds how long an abandoned draft survives. Zero means no expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisDraftStore) {
		s.ttl = ttl
	}
}

// NewRedis constructs a Redis-backed draft store.
func NewRedis(client *redis.Client, opts ...RedisOption) *RedisDraftStore {
	s := &RedisDraftStore{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func draftKey(userID id.UserID) string {
	return draftKeyPrefix + userID.String()
}

func (s *RedisDraftStore) Get(ctx context.Context, userID id.UserID) (*models.Draft, error) {
	raw, err := s.client.Get(ctx, draftKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
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

func (s *RedisDraftStore) Save(ctx context.Context, draft *models.Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(draft.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, userID id.UserID) error {
	if err := s.client.Del(ctx, draftKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
