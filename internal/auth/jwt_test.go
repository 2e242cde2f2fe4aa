package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	v := NewVerifier("secret")

	token, err := v.Sign("u1", "ada", time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "ada", claims.Username)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewVerifier("secret-a").Sign("u1", "ada", time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier("secret-b").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := NewVerifier("secret")

	token, err := v.Sign("u1", "ada", -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	v := NewVerifier("secret")

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Username: "ada"})
	token, err := raw.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewVerifier("secret").Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
