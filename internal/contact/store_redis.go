package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sellerflow/internal/onboarding/models"
	id "sellerflow/pkg/domain"
	"sellerflow/pkg/platform/sentinel"
)

const (
	otpCodePrefix     = "otp:code:"
	otpAttemptsPrefix = "otp:attempts:"
	otpCooldownPrefix = "otp:cooldown:"
)

// RedisCodeStore keeps pending codes, attempt counters, and cooldowns in Redis
// with native TTLs. Recommended for multi-instance deployments.
type RedisCodeStore struct {
	client *redis.Client
}

// NewRedisCodeStore constructs a Redis-backed code store.
func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func redisCodeKey(prefix string, userID id.UserID, channel models.Channel) string {
	return prefix + userID.String() + ":" + string(channel)
}

func (s *RedisCodeStore) SaveCode(ctx context.Context, userID id.UserID, channel models.Channel, code string, ttl time.Duration) error {
	key := redisCodeKey(otpCodePrefix, userID, channel)
	if err := s.client.Set(ctx, key, code, ttl).Err(); err != nil {
		return fmt.Errorf("save code: %w", err)
	}
	// Attempt counter shares the code's lifetime.
	attemptsKey := redisCodeKey(otpAttemptsPrefix, userID, channel)
	if err := s.client.Set(ctx, attemptsKey, 0, ttl).Err(); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) GetCode(ctx context.Context, userID id.UserID, channel models.Channel) (string, error) {
	code, err := s.client.Get(ctx, redisCodeKey(otpCodePrefix, userID, channel)).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get code: %w", err)
	}
	return code, nil
}

func (s *RedisCodeStore) DeleteCode(ctx context.Context, userID id.UserID, channel models.Channel) error {
	keys := []string{
		redisCodeKey(otpCodePrefix, userID, channel),
		redisCodeKey(otpAttemptsPrefix, userID, channel),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete code: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) IncrementAttempts(ctx context.Context, userID id.UserID, channel models.Channel) (int, error) {
	n, err := s.client.Incr(ctx, redisCodeKey(otpAttemptsPrefix, userID, channel)).Result()
	if err != nil {
		return 0, fmt.Errorf("increment attempts: %w", err)
	}
	return int(n), nil
}

func (s *RedisCodeStore) SetCooldown(ctx context.Context, userID id.UserID, channel models.Channel, d time.Duration) error {
	key := redisCodeKey(otpCooldownPrefix, userID, channel)
	if err := s.client.Set(ctx, key, "1", d).Err(); err != nil {
		return fmt.Errorf("set cooldown: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) CooldownRemaining(ctx context.Context, userID id.UserID, channel models.Channel) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, redisCodeKey(otpCooldownPrefix, userID, channel)).Result()
	if err != nil {
		return 0, fmt.Errorf("cooldown ttl: %w", err)
	}
	if ttl < 0 {
		// -2 key missing, -1 no expiry; either way no active cooldown.
		return 0, nil
	}
	return ttl, nil
}
