package store

import (
	"context"
	"sync"

	"sellerflow/internal/onboarding/models"
	id "sellerflow/pkg/domain"
	"sellerflow/pkg/platform/sentinel"
)

// InMemoryDraftStore keeps drafts in a mutex-guarded map. Used in tests and
// single-instance development; production deployments use Redis or Postgres.
type InMemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[id.UserID]*models.Draft
}

// NewInMemory creates an empty in-memory draft store.
func NewInMemory() *InMemoryDraftStore {
	return &InMemoryDraftStore{drafts: make(map[id.UserID]*models.Draft)}
}

// Get returns a deep copy so callers never share mutable state with the store.
func (s *InMemoryDraftStore) Get(ctx context.Context, userID id.UserID) (*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return d.Clone(), nil
}

// Save stores a deep copy of the draft, replacing any existing one.
func (s *InMemoryDraftStore) Save(ctx context.Context, draft *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.UserID] = draft.Clone()
	return nil
}

// Delete removes the user's draft. Deleting an absent draft is not an error.
func (s *InMemoryDraftStore) Delete(ctx context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
	return nil
}
