package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopePasswordReset marks tokens that may only complete a password reset.
const ScopePasswordReset = "password_reset"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// IdentityClaims are carried by login tokens.
type IdentityClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// ResetClaims are carried by the short-lived token issued after a reset code is verified.
type ResetClaims struct {
	Email string `json:"email"`
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret      []byte
	identityTTL time.Duration
	resetTTL    time.Duration
	now         func() time.Time
}

func NewTokenManager(secret string, identityTTL, resetTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:      []byte(secret),
		identityTTL: identityTTL,
		resetTTL:    resetTTL,
		now:         time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

func (m *TokenManager) GenerateIdentityToken(userID string) (string, error) {
	now := m.now()
	claims := &IdentityClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.identityTTL)),
		},
	}
	return m.sign(claims)
}

func (m *TokenManager) ValidateIdentityToken(tokenString string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}

	return claims, nil
}

func (m *TokenManager) GenerateResetToken(email string) (string, error) {
	now := m.now()
	claims := &ResetClaims{
		Email: email,
		Scope: ScopePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.resetTTL)),
		},
	}
	return m.sign(claims)
}

func (m *TokenManager) ValidateResetToken(tokenString string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}

	if claims.Scope != ScopePasswordReset || claims.Email == "" {
		return nil, fmt.Errorf("%w: not a password reset token", ErrInvalidToken)
	}

	return claims, nil
}

func (m *TokenManager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

func (m *TokenManager) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %w", ErrExpiredToken, err)
		}
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return ErrInvalidToken
	}

	return nil
}
