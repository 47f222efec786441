// Package steps owns the wizard's step sequence and the pure predicates that
// gate advancement. Predicates are functions of the draft only; they never
// perform I/O.
package steps

import (
	"sellerflow/internal/onboarding/models"
)

// ID names a wizard step.
type ID string

const (
	StepBasic    ID = "basic"
	StepBusiness ID = "business"
	StepAddress  ID = "address"
	StepBank     ID = "bank"
	StepIdentity ID = "identity"
	StepPolicies ID = "policies"
)

// Order is the fixed step sequence. Index positions are the wizard's step
// pointer values.
var Order = []ID{StepBasic, StepBusiness, StepAddress, StepBank, StepIdentity, StepPolicies}

// Last is the index of the final step.
func Last() int { return len(Order) - 1 }

// IndexOf returns the position of a step, or -1 when unknown.
func IndexOf(step ID) int {
	for i, s := range Order {
		if s == step {
			return i
		}
	}
	return -1
}

// Clamp bounds a step pointer to [0, Last].
func Clamp(step int) int {
	if step < 0 {
		return 0
	}
	if step > Last() {
		return Last()
	}
	return step
}

// ResumeStep returns the initial step pointer for a resubmission: the index of
// the first reviewer-flagged step, or 0 when nothing is flagged.
func ResumeStep(stepsToFix []ID) int {
	for _, s := range Order {
		for _, fix := range stepsToFix {
			if s == fix {
				return IndexOf(s)
			}
		}
	}
	return 0
}

// IsBasicValid checks the basic-info step: names present, email and phone
// well-formed and verified, photo present, password rule for new signups, and
// no outstanding uniqueness error.
func IsBasicValid(d *models.Draft) bool {
	if d.LegalName == "" || d.DisplayName == "" {
		return false
	}
	if !models.ValidEmail(d.Email) || !models.ValidPhone(d.Phone) {
		return false
	}
	if !d.EmailVerified || !d.PhoneVerified {
		return false
	}
	if d.PhotoDataURI == "" {
		return false
	}
	if !d.Resubmission {
		if len(d.Password) < 8 || d.Password != d.PasswordConfirm {
			return false
		}
	}
	return !d.HasFieldError(models.FieldErrorEmailTaken, models.FieldErrorPhoneTaken)
}

// IsBusinessValid checks the business step: type selected and support contacts
// well-formed.
func IsBusinessValid(d *models.Draft) bool {
	return d.Business.Type.IsValid() &&
		models.ValidEmail(d.Business.SupportEmail) &&
		models.ValidPhone(d.Business.SupportPhone)
}

// IsAddressValid checks the address step. When pickup aliases the registered
// address only the registered record matters.
func IsAddressValid(d *models.Draft) bool {
	if !d.RegisteredAddress.Complete() {
		return false
	}
	if d.PickupSameAsRegistered {
		return true
	}
	return d.PickupAddress.Complete()
}

// IsBankValid checks the bank step: PAN/IFSC patterns, account number shape,
// holder name length, and no outstanding format error.
func IsBankValid(d *models.Draft) bool {
	if !models.ValidPAN(d.Bank.PAN) || !models.ValidIFSC(d.Bank.IFSC) {
		return false
	}
	if !models.ValidAccountNumber(d.Bank.AccountNumber) {
		return false
	}
	if len(d.Bank.AccountHolderName) < 3 {
		return false
	}
	return !d.HasFieldError(models.FieldErrorPANFormat, models.FieldErrorIFSCFormat)
}

// IsIdentityValid checks the identity step: the external verification must
// have resolved VERIFIED.
func IsIdentityValid(d *models.Draft) bool {
	return d.IdentityVerified
}

// IsStepValid dispatches to the step's predicate. The policies step has no
// predicate of its own; submission carries its own terms gate.
func IsStepValid(step ID, d *models.Draft) bool {
	switch step {
	case StepBasic:
		return IsBasicValid(d)
	case StepBusiness:
		return IsBusinessValid(d)
	case StepAddress:
		return IsAddressValid(d)
	case StepBank:
		return IsBankValid(d)
	case StepIdentity:
		return IsIdentityValid(d)
	case StepPolicies:
		return true
	}
	return false
}

// Gate decides step reachability. Relaxed mode admits every step, matching the
// review-mode behavior of the storefront UI; strict mode requires every prior
// step's predicate to pass.
type Gate struct {
	Relaxed bool
}

// CanReach reports whether the draft may move to the target step index.
func (g Gate) CanReach(d *models.Draft, target int) bool {
	if g.Relaxed {
		return true
	}
	target = Clamp(target)
	for i := 0; i < target; i++ {
		if !IsStepValid(Order[i], d) {
			return false
		}
	}
	return true
}

// FirstIncomplete returns the index of the first step whose predicate fails,
// or Last() when everything up to the final step passes.
func FirstIncomplete(d *models.Draft) int {
	for i, s := range Order {
		if !IsStepValid(s, d) {
			return i
		}
	}
	return Last()
}
