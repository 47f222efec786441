// Package profile owns the persisted seller profile: the reviewed output of
// the onboarding wizard, plus reviewer feedback driving resubmission.
package profile

import (
	"time"

	"sellerflow/internal/onboarding/models"
	"sellerflow/internal/onboarding/steps"
	id "sellerflow/pkg/domain"
)

// Status is the application review status.
type Status string

const (
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
)

// Address tags.
const (
	AddressRegistered = "registered"
	AddressPickup     = "pickup"
)

// TaggedAddress is an address entry in the flattened profile address list.
type TaggedAddress struct {
	Tag     string         `json:"tag"`
	Address models.Address `json:"address"`
}

// SellerProfile is the submitted application record. Writes are last-write-wins
// upserts; no optimistic-concurrency token is carried.
type SellerProfile struct {
	ID     id.ProfileID `json:"id"`
	UserID id.UserID    `json:"user_id"`

	LegalName     string `json:"legal_name"`
	DisplayName   string `json:"display_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	EmailVerified bool   `json:"email_verified"`
	PhoneVerified bool   `json:"phone_verified"`
	// PasswordHash is persisted with the document; handlers expose profiles
	// only through explicit response DTOs, never by encoding this struct.
	PasswordHash  string `json:"password_hash,omitempty"`
	PhotoDataURI  string `json:"photo_data_uri,omitempty"`

	Business  models.BusinessInfo `json:"business"`
	Addresses []TaggedAddress     `json:"addresses"`
	Bank      models.BankDetails  `json:"bank"`

	AuctionsEnabled bool `json:"auctions_enabled"`

	Status Status `json:"status"`
	// StepsToFix is the reviewer-supplied list of wizard steps requiring
	// correction; only meaningful while Status is rejected.
	StepsToFix []steps.ID `json:"steps_to_fix,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
