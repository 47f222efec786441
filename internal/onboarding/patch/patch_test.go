package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellerflow/internal/onboarding/models"
	id "sellerflow/pkg/domain"
	dErrors "sellerflow/pkg/domain-errors"
)

func ptr[T any](v T) *T { return &v }

func TestApplyRequiresAGroup(t *testing.T) {
	d := models.NewDraft(id.UserID{})
	err := Apply(d, Patch{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestApplyBasicNormalizesEmail(t *testing.T) {
	d := models.NewDraft(id.UserID{})
	err := Apply(d, Patch{Basic: &Basic{Email: ptr("  Asha@Example.COM ")}})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", d.Email)
}

func TestApplyClearsTakenErrorOnValueChange(t *testing.T) {
	d := models.NewDraft(id.UserID{})
	d.Email = "old@example.com"
	d.SetFieldError(models.FieldErrorEmailTaken, "taken")

	require.NoError(t, Apply(d, Patch{Basic: &Basic{Email: ptr("new@example.com")}}))
	assert.False(t, d.HasFieldError(models.FieldErrorEmailTaken),
		"changing the value clears the stale uniqueness error")

	// Re-sending the same value leaves a standing error alone.
	d.SetFieldError(models.FieldErrorEmailTaken, "taken")
	require.NoError(t, Apply(d, Patch{Basic: &Basic{Email: ptr("new@example.com")}}))
	assert.True(t, d.HasFieldError(models.FieldErrorEmailTaken))
}

func TestApplyBankUppercasesAndFlagsFormat(t *testing.T) {
	d := models.NewDraft(id.UserID{})

	require.NoError(t, Apply(d, Patch{Bank: &Bank{PAN: ptr("abcd1234e")}}))
	assert.Equal(t, "ABCD1234E", d.Bank.PAN)
	assert.True(t, d.HasFieldError(models.FieldErrorPANFormat), "nine characters is not a PAN")

	require.NoError(t, Apply(d, Patch{Bank: &Bank{PAN: ptr("abcde1234f")}}))
	assert.Equal(t, "ABCDE1234F", d.Bank.PAN)
	assert.False(t, d.HasFieldError(models.FieldErrorPANFormat), "a conforming value clears the error")
}

func TestApplyIFSCFormatError(t *testing.T) {
	d := models.NewDraft(id.UserID{})

	require.NoError(t, Apply(d, Patch{Bank: &Bank{IFSC: ptr("hdfc1234567")}}))
	assert.True(t, d.HasFieldError(models.FieldErrorIFSCFormat))

	require.NoError(t, Apply(d, Patch{Bank: &Bank{IFSC: ptr("hdfc0001234")}}))
	assert.Equal(t, "HDFC0001234", d.Bank.IFSC)
	assert.False(t, d.HasFieldError(models.FieldErrorIFSCFormat))
}

func TestApplyEmptyBankValueCarriesNoFormatError(t *testing.T) {
	d := models.NewDraft(id.UserID{})
	d.Bank.PAN = "ABCD1234E"
	require.NoError(t, Apply(d, Patch{Bank: &Bank{PAN: ptr("")}}))
	assert.False(t, d.HasFieldError(models.FieldErrorPANFormat),
		"an emptied field is incomplete, not malformed")
}

func TestApplyRejectsUnknownBusinessType(t *testing.T) {
	d := models.NewDraft(id.UserID{})
	bt := models.BusinessType("llc")
	err := Apply(d, Patch{Business: &Business{Type: &bt}})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestApplyAddressMergesSparsely(t *testing.T) {
	d := models.NewDraft(id.UserID{})
	d.RegisteredAddress = models.Address{Line1: "12 Market Road", City: "Bengaluru"}

	require.NoError(t, Apply(d, Patch{Address: &Address{
		Registered:             &AddressFields{State: ptr("Karnataka"), PIN: ptr("560001")},
		PickupSameAsRegistered: ptr(true),
	}}))

	assert.Equal(t, "12 Market Road", d.RegisteredAddress.Line1, "untouched fields survive")
	assert.Equal(t, "Karnataka", d.RegisteredAddress.State)
	assert.Equal(t, "560001", d.RegisteredAddress.PIN)
	assert.True(t, d.PickupSameAsRegistered)
}

func TestApplyIsIdempotent(t *testing.T) {
	p := Patch{
		Basic: &Basic{LegalName: ptr("Asha Rao"), Email: ptr("asha@example.com")},
		Bank:  &Bank{PAN: ptr("abcde1234f"), IFSC: ptr("hdfc0001234")},
		Policies: &Policies{
			AuctionsEnabled: ptr(true),
			TermsAccepted:   ptr(true),
		},
	}

	once := models.NewDraft(id.UserID{})
	require.NoError(t, Apply(once, p))

	twice := models.NewDraft(id.UserID{})
	require.NoError(t, Apply(twice, p))
	require.NoError(t, Apply(twice, p))

	assert.Equal(t, once, twice)
}

func TestApplyDoesNotResetVerifiedFlags(t *testing.T) {
	d := models.NewDraft(id.UserID{})
	d.EmailVerified = true
	d.PhoneVerified = true

	require.NoError(t, Apply(d, Patch{Basic: &Basic{Email: ptr("changed@example.com")}}))
	assert.True(t, d.EmailVerified, "verified flags are sticky under patching")
	assert.True(t, d.PhoneVerified)
}
