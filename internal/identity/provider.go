package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// ProviderStatus is the status vocabulary reported by the external provider.
type ProviderStatus string

const (
	ProviderStatusPending  ProviderStatus = "pending"
	ProviderStatusVerified ProviderStatus = "verified"
	ProviderStatusFailed   ProviderStatus = "failed"
)

// ProviderSession is the handle returned by session creation.
type ProviderSession struct {
	SessionID        string
	VerificationLink string
}

// Provider is the external identity-proofing API surface this service
// consumes. Real deployments wire an HTTP adapter for the vendor; tests and
// development use MockProvider.
type Provider interface {
	CreateSession(ctx context.Context, userID string) (ProviderSession, error)
	CheckSession(ctx context.Context, sessionID string) (ProviderStatus, error)
}

// MockProvider simulates a provider that reports pending for a configurable
// number of checks before verifying. VerifyAfter <= 0 verifies on the first
// check.
type MockProvider struct {
	VerifyAfter int

	mu     sync.Mutex
	checks map[string]int
}

func NewMockProvider(verifyAfter int) *MockProvider {
	return &MockProvider{
		VerifyAfter: verifyAfter,
		checks:      make(map[string]int),
	}
}

func (p *MockProvider) CreateSession(ctx context.Context, userID string) (ProviderSession, error) {
	sessionID := uuid.NewString()
	return ProviderSession{
		SessionID:        sessionID,
		VerificationLink: "https://verify.example.com/session/" + sessionID,
	}, nil
}

func (p *MockProvider) CheckSession(ctx context.Context, sessionID string) (ProviderStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checks[sessionID]++
	if p.checks[sessionID] > p.VerifyAfter {
		return ProviderStatusVerified, nil
	}
	return ProviderStatusPending, nil
}
