// Package patch implements typed, per-group partial updates to the draft.
// Optional fields are pointers; a nil field leaves the draft value untouched,
// so a sparse JSON body can set one nested field without restating its group.
// Applying the same patch twice yields a deep-equal draft.
package patch

import (
	"strings"

	"sellerflow/internal/onboarding/models"
	dErrors "sellerflow/pkg/domain-errors"
)

// Basic patches identity fields on the basic-info step.
type Basic struct {
	LegalName       *string `json:"legal_name,omitempty"`
	DisplayName     *string `json:"display_name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Password        *string `json:"password,omitempty"`
	PasswordConfirm *string `json:"password_confirm,omitempty"`
	PhotoDataURI    *string `json:"photo_data_uri,omitempty"`
	EmailCode       *string `json:"email_code,omitempty"`
	PhoneCode       *string `json:"phone_code,omitempty"`
}

// Business patches registration and support-contact fields.
type Business struct {
	Type                  *models.BusinessType `json:"type,omitempty"`
	RegistrationNumber    *string              `json:"registration_number,omitempty"`
	TaxRegistrationNumber *string              `json:"tax_registration_number,omitempty"`
	SupportEmail          *string              `json:"support_email,omitempty"`
	SupportPhone          *string              `json:"support_phone,omitempty"`
}

// AddressFields patches one address record.
type AddressFields struct {
	Line1 *string `json:"line1,omitempty"`
	Line2 *string `json:"line2,omitempty"`
	City  *string `json:"city,omitempty"`
	State *string `json:"state,omitempty"`
	PIN   *string `json:"pin,omitempty"`
}

// Address patches the address step: either record plus the aliasing flag.
type Address struct {
	Registered             *AddressFields `json:"registered,omitempty"`
	Pickup                 *AddressFields `json:"pickup,omitempty"`
	PickupSameAsRegistered *bool          `json:"pickup_same_as_registered,omitempty"`
}

// Bank patches payout details. PAN and IFSC are uppercased on write.
type Bank struct {
	PAN               *string `json:"pan,omitempty"`
	IFSC              *string `json:"ifsc,omitempty"`
	AccountNumber     *string `json:"account_number,omitempty"`
	AccountHolderName *string `json:"account_holder_name,omitempty"`
}

// Policies patches the final-step toggles.
type Policies struct {
	AuctionsEnabled *bool `json:"auctions_enabled,omitempty"`
	TermsAccepted   *bool `json:"terms_accepted,omitempty"`
}

// Patch is the envelope accepted by the PATCH endpoint. Exactly the groups
// present are merged.
type Patch struct {
	Basic    *Basic    `json:"basic,omitempty"`
	Business *Business `json:"business,omitempty"`
	Address  *Address  `json:"address,omitempty"`
	Bank     *Bank     `json:"bank,omitempty"`
	Policies *Policies `json:"policies,omitempty"`
}

// IsEmpty reports whether the patch carries no groups.
func (p Patch) IsEmpty() bool {
	return p.Basic == nil && p.Business == nil && p.Address == nil &&
		p.Bank == nil && p.Policies == nil
}

// Apply merges the patch into the draft in place and recomputes the
// format-level field errors the mutation may have introduced or fixed.
// Verified booleans are sticky and never reset here; uniqueness errors are
// cleared when the offending value changes, pending a fresh availability
// check.
func Apply(d *models.Draft, p Patch) error {
	if d == nil {
		return dErrors.New(dErrors.CodeInternal, "draft is required")
	}
	if p.IsEmpty() {
		return dErrors.New(dErrors.CodeBadRequest, "patch must carry at least one group")
	}

	if p.Basic != nil {
		applyBasic(d, p.Basic)
	}
	if p.Business != nil {
		if err := applyBusiness(d, p.Business); err != nil {
			return err
		}
	}
	if p.Address != nil {
		applyAddress(d, p.Address)
	}
	if p.Bank != nil {
		applyBank(d, p.Bank)
	}
	if p.Policies != nil {
		if p.Policies.AuctionsEnabled != nil {
			d.AuctionsEnabled = *p.Policies.AuctionsEnabled
		}
		if p.Policies.TermsAccepted != nil {
			d.TermsAccepted = *p.Policies.TermsAccepted
		}
	}

	recomputeFormatErrors(d)
	return nil
}

func applyBasic(d *models.Draft, p *Basic) {
	setString(&d.LegalName, p.LegalName)
	setString(&d.DisplayName, p.DisplayName)
	if p.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*p.Email))
		if email != d.Email {
			d.Email = email
			d.ClearFieldError(models.FieldErrorEmailTaken)
		}
	}
	if p.Phone != nil {
		phone := strings.TrimSpace(*p.Phone)
		if phone != d.Phone {
			d.Phone = phone
			d.ClearFieldError(models.FieldErrorPhoneTaken)
		}
	}
	setString(&d.Password, p.Password)
	setString(&d.PasswordConfirm, p.PasswordConfirm)
	setString(&d.PhotoDataURI, p.PhotoDataURI)
	setString(&d.EmailCode, p.EmailCode)
	setString(&d.PhoneCode, p.PhoneCode)
}

func applyBusiness(d *models.Draft, p *Business) error {
	if p.Type != nil {
		if !p.Type.IsValid() {
			return dErrors.Newf(dErrors.CodeInvalidInput, "unknown business type %q", *p.Type)
		}
		d.Business.Type = *p.Type
	}
	setString(&d.Business.RegistrationNumber, p.RegistrationNumber)
	setString(&d.Business.TaxRegistrationNumber, p.TaxRegistrationNumber)
	if p.SupportEmail != nil {
		d.Business.SupportEmail = strings.TrimSpace(strings.ToLower(*p.SupportEmail))
	}
	if p.SupportPhone != nil {
		d.Business.SupportPhone = strings.TrimSpace(*p.SupportPhone)
	}
	return nil
}

func applyAddress(d *models.Draft, p *Address) {
	if p.Registered != nil {
		applyAddressFields(&d.RegisteredAddress, p.Registered)
	}
	if p.Pickup != nil {
		applyAddressFields(&d.PickupAddress, p.Pickup)
	}
	if p.PickupSameAsRegistered != nil {
		d.PickupSameAsRegistered = *p.PickupSameAsRegistered
	}
}

func applyAddressFields(a *models.Address, p *AddressFields) {
	setString(&a.Line1, p.Line1)
	setString(&a.Line2, p.Line2)
	setString(&a.City, p.City)
	setString(&a.State, p.State)
	setString(&a.PIN, p.PIN)
}

func applyBank(d *models.Draft, p *Bank) {
	if p.PAN != nil {
		d.Bank.PAN = strings.ToUpper(strings.TrimSpace(*p.PAN))
	}
	if p.IFSC != nil {
		d.Bank.IFSC = strings.ToUpper(strings.TrimSpace(*p.IFSC))
	}
	setString(&d.Bank.AccountNumber, p.AccountNumber)
	setString(&d.Bank.AccountHolderName, p.AccountHolderName)
}

// recomputeFormatErrors keeps the pattern-level field errors in sync with the
// current values: a malformed non-empty PAN/IFSC sets the error, a conforming
// value clears it.
func recomputeFormatErrors(d *models.Draft) {
	if d.Bank.PAN != "" && !models.ValidPAN(d.Bank.PAN) {
		d.SetFieldError(models.FieldErrorPANFormat, "PAN must match AAAAA0000A")
	} else {
		d.ClearFieldError(models.FieldErrorPANFormat)
	}
	if d.Bank.IFSC != "" && !models.ValidIFSC(d.Bank.IFSC) {
		d.SetFieldError(models.FieldErrorIFSCFormat, "IFSC must match AAAA0XXXXXX")
	} else {
		d.ClearFieldError(models.FieldErrorIFSCFormat)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
