// Package audit records who did what to a seller application. Services emit
// events through a Publisher; delivery is either an in-process channel drained
// by the Worker or a Kafka topic for deployments with a shared audit pipeline.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actions emitted by the onboarding flow.
const (
	ActionDraftSaved            = "draft_saved"
	ActionDraftReset            = "draft_reset"
	ActionOTPSent               = "otp_sent"
	ActionOTPVerified           = "otp_verified"
	ActionVerificationStarted   = "verification_started"
	ActionVerificationCompleted = "verification_completed"
	ActionApplicationSubmitted  = "application_submitted"
)

// Event is a single audit record.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Action     string            `json:"action"`
	UserID     string            `json:"user_id,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Device     string            `json:"device,omitempty"`
	ClientIP   string            `json:"client_ip,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
