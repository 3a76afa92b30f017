package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
)

func TestAuthorizeOwner(t *testing.T) {
	assert.NoError(t, Authorize("u1", "u1"))
}

func TestAuthorizeMismatchLooksLikeNotFound(t *testing.T) {
	err := Authorize("u2", "u1")
	require.Error(t, err)
	// The response shape must not reveal that the record exists.
	assert.True(t, errors.IsNotFound(err))

	missing := errors.NewNotFoundError("record")
	assert.Equal(t, missing.Error(), err.Error())
}

func TestAuthorizeEmptyCaller(t *testing.T) {
	err := Authorize("", "u1")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestJWTRoundTrip(t *testing.T) {
	validator, err := NewJWTValidator(JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "book-tracker",
	})
	require.NoError(t, err)

	token, err := validator.IssueToken("u1", "u1@example.com", time.Minute)
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1@example.com", claims.Email)
}

func TestJWTExpired(t *testing.T) {
	validator, err := NewJWTValidator(JWTConfig{SecretKey: "test-secret"})
	require.NoError(t, err)

	token, err := validator.IssueToken("u1", "", -time.Minute)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTWrongSecret(t *testing.T) {
	issuer, err := NewJWTValidator(JWTConfig{SecretKey: "secret-a"})
	require.NoError(t, err)
	verifier, err := NewJWTValidator(JWTConfig{SecretKey: "secret-b"})
	require.NoError(t, err)

	token, err := issuer.IssueToken("u1", "", time.Minute)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
