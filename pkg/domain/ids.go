// Package domain defines typed identifiers so a user ID can never be passed
// where a verification session ID is expected. IDs are UUIDs under the hood;
// parsing enforces the "valid, non-empty, non-nil" invariant at trust
// boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "sellerflow/pkg/domain-errors"
)

type (
	// UserID identifies the authenticated seller candidate.
	UserID uuid.UUID
	// ProfileID identifies a stored seller profile.
	ProfileID uuid.UUID
	// VerificationSessionID identifies an external identity-proofing session.
	VerificationSessionID uuid.UUID
)

func (id UserID) String() string                { return uuid.UUID(id).String() }
func (id ProfileID) String() string             { return uuid.UUID(id).String() }
func (id VerificationSessionID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool                { return uuid.UUID(id) == uuid.Nil }
func (id ProfileID) IsNil() bool             { return uuid.UUID(id) == uuid.Nil }
func (id VerificationSessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps the canonical UUID string form in JSON documents and
// database rows; defined types do not inherit uuid.UUID's methods.

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id ProfileID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *ProfileID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id VerificationSessionID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}
func (id *VerificationSessionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// NewProfileID mints a fresh profile identifier.
func NewProfileID() ProfileID { return ProfileID(uuid.New()) }

// NewVerificationSessionID mints a fresh session identifier.
func NewVerificationSessionID() VerificationSessionID {
	return VerificationSessionID(uuid.New())
}

// ParseUserID parses and validates a user ID string.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

// ParseProfileID parses and validates a profile ID string.
func ParseProfileID(s string) (ProfileID, error) {
	u, err := parseUUID(s, "profile_id")
	return ProfileID(u), err
}

// ParseVerificationSessionID parses and validates a session ID string.
func ParseVerificationSessionID(s string) (VerificationSessionID, error) {
	u, err := parseUUID(s, "session_id")
	return VerificationSessionID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, field+" is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be the nil UUID")
	}
	return u, nil
}
