// Package identity integrates the external identity-proofing provider: session
// creation, QR handle derivation, and the polling loop that resolves a session
// to VERIFIED or FAILED.
package identity

import (
	"time"

	id "sellerflow/pkg/domain"
)

// State is the verification session state machine.
//
//	IDLE -> PENDING -> VERIFIED | FAILED
//
// FAILED permits an explicit retry back to IDLE. Sessions are ephemeral: they
// live in memory for the lifetime of the flow and are never persisted.
type State string

const (
	StateIdle     State = "IDLE"
	StatePending  State = "PENDING"
	StateVerified State = "VERIFIED"
	StateFailed   State = "FAILED"
)

// Terminal reports whether the state admits no further polling.
func (s State) Terminal() bool {
	return s == StateVerified || s == StateFailed
}

// Session is the in-memory handle to one proofing attempt.
type Session struct {
	ID               id.VerificationSessionID `json:"id"`
	UserID           id.UserID                `json:"user_id"`
	State            State                    `json:"state"`
	Message          string                   `json:"message,omitempty"`
	VerificationLink string                   `json:"verification_link,omitempty"`
	QRImageURL       string                   `json:"qr_image_url,omitempty"`
	Attempts         int                      `json:"attempts"`
	CreatedAt        time.Time                `json:"created_at"`
}
