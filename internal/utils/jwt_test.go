package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IdentityToken(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour, 15*time.Minute)

	tokenString, err := manager.GenerateIdentityToken("user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := manager.ValidateIdentityToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenManager_ValidateIdentityToken_Invalid(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour, 15*time.Minute)

	_, err := manager.ValidateIdentityToken("invalid.token.string")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ValidateIdentityToken_Expired(t *testing.T) {
	issued := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	manager := NewTokenManager("secret", time.Hour, 15*time.Minute).
		WithClock(func() time.Time { return issued })

	tokenString, err := manager.GenerateIdentityToken("user-1")
	require.NoError(t, err)

	manager.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })

	_, err = manager.ValidateIdentityToken(tokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenManager_ValidateIdentityToken_WrongSecret(t *testing.T) {
	first := NewTokenManager("secret1", time.Hour, time.Minute)
	second := NewTokenManager("secret2", time.Hour, time.Minute)

	tokenString, _ := first.GenerateIdentityToken("user-1")

	_, err := second.ValidateIdentityToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ValidateIdentityToken_InvalidSigningMethod(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour, time.Minute)

	claims := &IdentityClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, claims)
	tokenString, _ := token.SignedString([]byte("secret"))

	_, err := manager.ValidateIdentityToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ResetToken(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour, 15*time.Minute)

	tokenString, err := manager.GenerateResetToken("a@x.in")
	require.NoError(t, err)

	claims, err := manager.ValidateResetToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "a@x.in", claims.Email)
	assert.Equal(t, ScopePasswordReset, claims.Scope)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenManager_TokensAreNotInterchangeable(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour, 15*time.Minute)

	resetToken, _ := manager.GenerateResetToken("a@x.in")
	_, err := manager.ValidateIdentityToken(resetToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	identityToken, _ := manager.GenerateIdentityToken("user-1")
	_, err = manager.ValidateResetToken(identityToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ResetTokenExpires(t *testing.T) {
	issued := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	manager := NewTokenManager("secret", time.Hour, 15*time.Minute).
		WithClock(func() time.Time { return issued })

	tokenString, _ := manager.GenerateResetToken("a@x.in")

	manager.WithClock(func() time.Time { return issued.Add(16 * time.Minute) })

	_, err := manager.ValidateResetToken(tokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
