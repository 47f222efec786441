package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "sellerflow/pkg/domain"
)

func TestGenerateAndValidateRoundTrip(t *testing.T) {
	svc := NewJWTService("test-signing-key", "sellerflow", "sellerflow-api")

	userID, err := id.ParseUserID("5a6b7c8d-1234-4abc-9def-0123456789ab")
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(userID, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuer := NewJWTService("key-one", "sellerflow", "sellerflow-api")
	verifier := NewJWTService("key-two", "sellerflow", "sellerflow-api")

	userID, err := id.ParseUserID("5a6b7c8d-1234-4abc-9def-0123456789ab")
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken(userID, time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-signing-key", "sellerflow", "sellerflow-api")

	userID, err := id.ParseUserID("5a6b7c8d-1234-4abc-9def-0123456789ab")
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(userID, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	issuer := NewJWTService("test-signing-key", "someone-else", "sellerflow-api")
	verifier := NewJWTService("test-signing-key", "sellerflow", "sellerflow-api")

	userID, err := id.ParseUserID("5a6b7c8d-1234-4abc-9def-0123456789ab")
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken(userID, time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}
