package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 48*time.Hour)
}

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-1", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.TwoFactorVerified)
	assert.Equal(t, "resumeforge", claims.Issuer)
}

func TestTokenManager_RefreshRoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateRefreshToken("user-1", false)
	require.NoError(t, err)

	claims, err := m.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.False(t, claims.TwoFactorVerified)
}

func TestTokenManager_SecretsAreSeparate(t *testing.T) {
	m := newTestManager()

	access, err := m.GenerateAccessToken("user-1", true)
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken("user-1", true)
	require.NoError(t, err)

	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err, "access token must not validate as refresh token")

	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err, "refresh token must not validate as access token")
}

func TestTokenManager_Expiry(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-1", true)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewTokenManager("different", "different", 15*time.Minute, 48*time.Hour)

	token, err := m.GenerateAccessToken("user-1", true)
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestTokenManager_Garbage(t *testing.T) {
	m := newTestManager()
	_, err := m.ValidateAccessToken("not-a-jwt")
	assert.Error(t, err)
	_, err = m.ValidateRefreshToken("")
	assert.Error(t, err)
}
