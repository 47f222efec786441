package handler

import (
	"time"

	"sellerflow/internal/onboarding/models"
	"sellerflow/internal/onboarding/steps"
	"sellerflow/internal/profile"
)

type saveResponse struct {
	Saved bool `json:"saved"`
}

type availabilityResponse struct {
	Channel   string `json:"channel"`
	Available bool   `json:"available"`
}

// DraftResponse is the wire shape of a draft. Password fields and one-time
// codes never leave the server.
type DraftResponse struct {
	Step     int    `json:"step"`
	StepName string `json:"step_name"`

	Resubmission bool `json:"resubmission,omitempty"`

	LegalName     string `json:"legal_name,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	PhoneVerified bool   `json:"phone_verified"`
	PhotoDataURI  string `json:"photo_data_uri,omitempty"`

	Business models.BusinessInfo `json:"business"`

	RegisteredAddress      models.Address `json:"registered_address"`
	PickupAddress          models.Address `json:"pickup_address"`
	PickupSameAsRegistered bool           `json:"pickup_same_as_registered"`

	Bank models.BankDetails `json:"bank"`

	AuctionsEnabled  bool `json:"auctions_enabled"`
	TermsAccepted    bool `json:"terms_accepted"`
	IdentityVerified bool `json:"identity_verified"`

	FieldErrors map[string]string `json:"field_errors,omitempty"`

	// StepsValid reports each step predicate so the client can paint the
	// progress rail without re-deriving the rules.
	StepsValid map[string]bool `json:"steps_valid"`

	UpdatedAt time.Time `json:"updated_at"`
}

// FromDraft maps a draft to its response shape.
func FromDraft(d *models.Draft) DraftResponse {
	valid := make(map[string]bool, len(steps.Order))
	for _, s := range steps.Order {
		valid[string(s)] = steps.IsStepValid(s, d)
	}
	return DraftResponse{
		Step:                   d.Step,
		StepName:               string(steps.Order[steps.Clamp(d.Step)]),
		Resubmission:           d.Resubmission,
		LegalName:              d.LegalName,
		DisplayName:            d.DisplayName,
		Email:                  d.Email,
		Phone:                  d.Phone,
		EmailVerified:          d.EmailVerified,
		PhoneVerified:          d.PhoneVerified,
		PhotoDataURI:           d.PhotoDataURI,
		Business:               d.Business,
		RegisteredAddress:      d.RegisteredAddress,
		PickupAddress:          d.PickupAddress,
		PickupSameAsRegistered: d.PickupSameAsRegistered,
		Bank:                   d.Bank,
		AuctionsEnabled:        d.AuctionsEnabled,
		TermsAccepted:          d.TermsAccepted,
		IdentityVerified:       d.IdentityVerified,
		FieldErrors:            d.FieldErrors,
		StepsValid:             valid,
		UpdatedAt:              d.UpdatedAt,
	}
}

// ProfileResponse is the wire shape of a submitted application.
type ProfileResponse struct {
	ID              string                  `json:"id"`
	Status          string                  `json:"status"`
	LegalName       string                  `json:"legal_name"`
	DisplayName     string                  `json:"display_name"`
	Email           string                  `json:"email"`
	Phone           string                  `json:"phone"`
	Business        models.BusinessInfo     `json:"business"`
	Addresses       []profile.TaggedAddress `json:"addresses"`
	Bank            models.BankDetails      `json:"bank"`
	AuctionsEnabled bool                    `json:"auctions_enabled"`
	CreatedAt       time.Time               `json:"created_at"`
}

// FromProfile maps a profile to its response shape. The password hash is
// deliberately absent.
func FromProfile(p *profile.SellerProfile) ProfileResponse {
	return ProfileResponse{
		ID:              p.ID.String(),
		Status:          string(p.Status),
		LegalName:       p.LegalName,
		DisplayName:     p.DisplayName,
		Email:           p.Email,
		Phone:           p.Phone,
		Business:        p.Business,
		Addresses:       p.Addresses,
		Bank:            p.Bank,
		AuctionsEnabled: p.AuctionsEnabled,
		CreatedAt:       p.CreatedAt,
	}
}
