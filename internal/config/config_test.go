package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs is a helper that sets multiple env vars for the test.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Development_AcceptsDefaultSecrets(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 48*time.Hour, cfg.JWTRefreshExpiry)
}

func TestLoad_Production_RejectsDefaultSecrets(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET must be explicitly set")
}

func TestLoad_Production_RejectsShortSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":        "production",
		"JWT_ACCESS_SECRET":  "short-but-not-default",
		"JWT_REFRESH_SECRET": strings.Repeat("r", 40),
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET must be at least 32 characters")
}

func TestLoad_Production_RejectsIdenticalSecrets(t *testing.T) {
	secret := strings.Repeat("s", 40)
	setEnvs(t, map[string]string{
		"ENVIRONMENT":        "production",
		"JWT_ACCESS_SECRET":  secret,
		"JWT_REFRESH_SECRET": secret,
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestLoad_Production_AcceptsStrongSecrets(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":        "production",
		"JWT_ACCESS_SECRET":  strings.Repeat("a", 40),
		"JWT_REFRESH_SECRET": strings.Repeat("r", 40),
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoad_InvalidPort(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
		"HTTP_PORT":   "70000",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:3000", cfg.PublicURL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "ResumeForge", cfg.TOTPIssuer)
	assert.False(t, cfg.SecureCookies())
}

func TestSecureCookies_HTTPS(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
		"PUBLIC_URL":  "https://resumes.example.com",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.SecureCookies())
}
