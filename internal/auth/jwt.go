package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims carried by both access and refresh tokens.
// TwoFactorVerified distinguishes a fully established session from one that
// still has to pass the two-factor challenge.
type Claims struct {
	UserID            string `json:"user_id"`
	TwoFactorVerified bool   `json:"two_factor_verified"`
	jwt.RegisteredClaims
}

// TokenManager handles JWT token generation and validation. Access and
// refresh tokens are signed with separate secrets so one can never be
// presented in place of the other.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration

	now func() time.Time
}

// NewTokenManager creates a token manager with the given secrets and expiry
// durations.
func NewTokenManager(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		now:           time.Now,
	}
}

// AccessExpiry returns the configured access token lifetime.
func (m *TokenManager) AccessExpiry() time.Duration { return m.accessExpiry }

// RefreshExpiry returns the configured refresh token lifetime.
func (m *TokenManager) RefreshExpiry() time.Duration { return m.refreshExpiry }

// GenerateAccessToken creates a signed JWT access token for the given user.
func (m *TokenManager) GenerateAccessToken(userID string, twoFactorVerified bool) (string, error) {
	signed, err := m.generate(userID, twoFactorVerified, m.accessSecret, m.accessExpiry)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// GenerateRefreshToken creates a signed JWT refresh token for the given user.
func (m *TokenManager) GenerateRefreshToken(userID string, twoFactorVerified bool) (string, error) {
	signed, err := m.generate(userID, twoFactorVerified, m.refreshSecret, m.refreshExpiry)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) generate(userID string, twoFactorVerified bool, secret []byte, expiry time.Duration) (string, error) {
	now := m.now().UTC()
	claims := &Claims{
		UserID:            userID,
		TwoFactorVerified: twoFactorVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			Issuer:    "resumeforge",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateAccessToken parses and validates an access token, returning the claims.
func (m *TokenManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.validate(tokenString, m.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}

// ValidateRefreshToken parses and validates a refresh token, returning the claims.
func (m *TokenManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := m.validate(tokenString, m.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("parse refresh token: %w", err)
	}
	return claims, nil
}

func (m *TokenManager) validate(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
