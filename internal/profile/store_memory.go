package profile

import (
	"context"
	"sync"

	id "sellerflow/pkg/domain"
	"sellerflow/pkg/platform/sentinel"
)

// InMemoryStore keeps profiles in a mutex-guarded map keyed by user.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.UserID]*SellerProfile
}

// NewInMemory creates an empty in-memory profile store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[id.UserID]*SellerProfile)}
}

func (s *InMemoryStore) Save(ctx context.Context, p *SellerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}

func (s *InMemoryStore) FindByUser(ctx context.Context, userID id.UserID) (*SellerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) FindByEmail(ctx context.Context, email string) (*SellerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByPhone(ctx context.Context, phone string) (*SellerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.Phone == phone {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
