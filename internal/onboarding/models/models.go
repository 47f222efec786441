// Package models defines the in-progress seller application draft and its
// field-level validation rules. Predicates that gate wizard steps live in the
// steps package; everything here is plain data plus pattern checks.
package models

import (
	"regexp"
	"strings"
	"time"

	id "sellerflow/pkg/domain"
)

// BusinessType enumerates the legal shape of the seller's business.
type BusinessType string

const (
	BusinessIndividual     BusinessType = "individual"
	BusinessSoleProprietor BusinessType = "sole_proprietor"
	BusinessCompany        BusinessType = "company"
	BusinessPartnership    BusinessType = "partnership"
)

// IsValid reports whether the business type is one of the known values.
func (t BusinessType) IsValid() bool {
	switch t {
	case BusinessIndividual, BusinessSoleProprietor, BusinessCompany, BusinessPartnership:
		return true
	}
	return false
}

// Channel identifies a contact verification channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// IsValid reports whether the channel is known.
func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelPhone
}

// Field error keys set by the controller and cleared when the offending value
// is corrected. A non-empty entry blocks the owning step's predicate.
const (
	FieldErrorEmailTaken = "email_taken"
	FieldErrorPhoneTaken = "phone_taken"
	FieldErrorPANFormat  = "pan_format"
	FieldErrorIFSCFormat = "ifsc_format"
)

// Address is a postal address. PIN is the 6-digit postal code.
type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2,omitempty"`
	City  string `json:"city"`
	State string `json:"state"`
	PIN   string `json:"pin"`
}

// BusinessInfo captures registration and support-contact details.
type BusinessInfo struct {
	Type                  BusinessType `json:"type,omitempty"`
	RegistrationNumber    string       `json:"registration_number,omitempty"`
	TaxRegistrationNumber string       `json:"tax_registration_number,omitempty"`
	SupportEmail          string       `json:"support_email,omitempty"`
	SupportPhone          string       `json:"support_phone,omitempty"`
}

// BankDetails captures payout account details. PAN and IFSC are uppercased on
// write; their patterns gate the bank step.
type BankDetails struct {
	PAN               string `json:"pan,omitempty"`
	IFSC              string `json:"ifsc,omitempty"`
	AccountNumber     string `json:"account_number,omitempty"`
	AccountHolderName string `json:"account_holder_name,omitempty"`
}

// Draft is the in-progress seller application. It is mutated only through
// typed patches and persisted by the draft store keyed on the owner user ID.
type Draft struct {
	UserID id.UserID `json:"user_id"`
	Step   int       `json:"step"`

	// Resubmission is true when the draft was seeded from a rejected profile;
	// the password rule is waived in that case.
	Resubmission bool `json:"resubmission,omitempty"`

	LegalName       string `json:"legal_name,omitempty"`
	DisplayName     string `json:"display_name,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password,omitempty"`
	PasswordConfirm string `json:"password_confirm,omitempty"`
	EmailVerified   bool   `json:"email_verified,omitempty"`
	PhoneVerified   bool   `json:"phone_verified,omitempty"`
	PhotoDataURI    string `json:"photo_data_uri,omitempty"`

	Business BusinessInfo `json:"business"`

	RegisteredAddress      Address `json:"registered_address"`
	PickupAddress          Address `json:"pickup_address"`
	PickupSameAsRegistered bool    `json:"pickup_same_as_registered,omitempty"`

	Bank BankDetails `json:"bank"`

	AuctionsEnabled bool `json:"auctions_enabled,omitempty"`
	TermsAccepted   bool `json:"terms_accepted,omitempty"`

	// IdentityVerified becomes true when the external verification session
	// resolves VERIFIED. Sticky for the draft's lifetime.
	IdentityVerified bool `json:"identity_verified,omitempty"`

	// Transient one-time codes typed by the user; stripped at submission.
	EmailCode string `json:"email_code,omitempty"`
	PhoneCode string `json:"phone_code,omitempty"`

	// FieldErrors holds blocking errors keyed by the FieldError* constants.
	FieldErrors map[string]string `json:"field_errors,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewDraft creates an empty draft for a user.
func NewDraft(userID id.UserID) *Draft {
	return &Draft{UserID: userID}
}

// Clone returns a deep copy of the draft.
func (d *Draft) Clone() *Draft {
	out := *d
	if d.FieldErrors != nil {
		out.FieldErrors = make(map[string]string, len(d.FieldErrors))
		for k, v := range d.FieldErrors {
			out.FieldErrors[k] = v
		}
	}
	return &out
}

// SetFieldError records a blocking field error, allocating lazily.
func (d *Draft) SetFieldError(key, message string) {
	if d.FieldErrors == nil {
		d.FieldErrors = make(map[string]string, 1)
	}
	d.FieldErrors[key] = message
}

// ClearFieldError removes a blocking field error if present.
func (d *Draft) ClearFieldError(key string) {
	delete(d.FieldErrors, key)
}

// HasFieldError reports whether any of the given keys carries an error.
func (d *Draft) HasFieldError(keys ...string) bool {
	for _, k := range keys {
		if d.FieldErrors[k] != "" {
			return true
		}
	}
	return false
}

// StripTransient removes write-only and one-time values before the draft is
// assembled into a profile payload.
func (d *Draft) StripTransient() {
	d.EmailCode = ""
	d.PhoneCode = ""
	d.PasswordConfirm = ""
}

var (
	emailRE   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	digitsRE  = regexp.MustCompile(`^[0-9]+$`)
	pinRE     = regexp.MustCompile(`^[0-9]{6}$`)
	panRE     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	ifscRE    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	accountRE = regexp.MustCompile(`^[0-9]{9,18}$`)
)

// ValidEmail reports whether s has the simple x@y.z shape.
func ValidEmail(s string) bool { return emailRE.MatchString(s) }

// ValidPhone reports whether s is exactly ten digits.
func ValidPhone(s string) bool { return len(s) == 10 && digitsRE.MatchString(s) }

// ValidPIN reports whether s is a 6-digit postal code.
func ValidPIN(s string) bool { return pinRE.MatchString(s) }

// ValidPAN reports whether s matches the PAN pattern. Input is uppercased by
// the patch layer, so the check here is case-sensitive.
func ValidPAN(s string) bool { return panRE.MatchString(s) }

// ValidIFSC reports whether s matches the IFSC pattern after uppercasing.
func ValidIFSC(s string) bool { return ifscRE.MatchString(strings.ToUpper(s)) }

// ValidAccountNumber reports whether s is 9 to 18 digits.
func ValidAccountNumber(s string) bool { return accountRE.MatchString(s) }

// Complete reports whether the address carries the minimum fields: line 1,
// city, state, and a 6-digit PIN.
func (a Address) Complete() bool {
	return a.Line1 != "" && a.City != "" && a.State != "" && ValidPIN(a.PIN)
}
