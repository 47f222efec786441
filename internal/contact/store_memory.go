package contact

import (
	"context"
	"sync"
	"time"

	"sellerflow/internal/onboarding/models"
	id "sellerflow/pkg/domain"
	"sellerflow/pkg/platform/sentinel"
)

type codeEntry struct {
	code      string
	expiresAt time.Time
	attempts  int
}

// InMemoryCodeStore keeps pending codes and cooldowns in maps with explicit
// expiry checks. Production uses the Redis store, where TTLs are native.
type InMemoryCodeStore struct {
	mu        sync.Mutex
	codes     map[string]*codeEntry
	cooldowns map[string]time.Time
	now       func() time.Time
}

// NewInMemoryCodeStore creates an empty code store.
func NewInMemoryCodeStore() *InMemoryCodeStore {
	return &InMemoryCodeStore{
		codes:     make(map[string]*codeEntry),
		cooldowns: make(map[string]time.Time),
		now:       time.Now,
	}
}

// WithClock overrides the clock for tests.
func (s *InMemoryCodeStore) WithClock(now func() time.Time) *InMemoryCodeStore {
	s.now = now
	return s
}

func codeKey(userID id.UserID, channel models.Channel) string {
	return userID.String() + ":" + string(channel)
}

func (s *InMemoryCodeStore) SaveCode(ctx context.Context, userID id.UserID, channel models.Channel, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[codeKey(userID, channel)] = &codeEntry{
		code:      code,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *InMemoryCodeStore) GetCode(ctx context.Context, userID id.UserID, channel models.Channel) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[codeKey(userID, channel)]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.codes, codeKey(userID, channel))
		return "", sentinel.ErrNotFound
	}
	return entry.code, nil
}

func (s *InMemoryCodeStore) DeleteCode(ctx context.Context, userID id.UserID, channel models.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, codeKey(userID, channel))
	return nil
}

func (s *InMemoryCodeStore) IncrementAttempts(ctx context.Context, userID id.UserID, channel models.Channel) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[codeKey(userID, channel)]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	entry.attempts++
	return entry.attempts, nil
}

func (s *InMemoryCodeStore) SetCooldown(ctx context.Context, userID id.UserID, channel models.Channel, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldowns[codeKey(userID, channel)] = s.now().Add(d)
	return nil
}

func (s *InMemoryCodeStore) CooldownRemaining(ctx context.Context, userID id.UserID, channel models.Channel) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.cooldowns[codeKey(userID, channel)]
	if !ok {
		return 0, nil
	}
	remaining := until.Sub(s.now())
	if remaining <= 0 {
		delete(s.cooldowns, codeKey(userID, channel))
		return 0, nil
	}
	return remaining, nil
}
