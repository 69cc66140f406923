package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/resumeforge/internal/domain"
)

// ============================================================================
// Feature Flag Tests
// ============================================================================

func TestFeatureFlags_Default(t *testing.T) {
	api := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/features/flags", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	var flags domain.FeatureFlags
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &flags))
	assert.False(t, flags.SignupsDisabled)
	assert.False(t, flags.EmailAuthDisabled)
}

func TestFeatureFlags_Disabled(t *testing.T) {
	api := newTestAPIWithFlags(t, domain.FeatureFlags{SignupsDisabled: true, EmailAuthDisabled: true})

	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/features/flags", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	var flags domain.FeatureFlags
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &flags))
	assert.True(t, flags.SignupsDisabled)
	assert.True(t, flags.EmailAuthDisabled)
}

func TestRegister_SignupsDisabled(t *testing.T) {
	api := newTestAPIWithFlags(t, domain.FeatureFlags{SignupsDisabled: true})

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/register", registerRequest{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Username: "jane.doe",
		Password: "Sup3rSecret",
	})
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	api.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_EmailAuthDisabled(t *testing.T) {
	api := newTestAPIWithFlags(t, domain.FeatureFlags{EmailAuthDisabled: true})

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/login", loginRequest{
		Identifier: "jane.doe",
		Password:   "Sup3rSecret",
	})
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	api.userRepo.AssertNotCalled(t, "GetByIdentifier", mock.Anything, mock.Anything)
}

// ============================================================================
// Auth Provider Tests
// ============================================================================

func TestAuthProviders_EmailEnabled(t *testing.T) {
	api := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/providers", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	providers, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"email"}, providers)
}

func TestAuthProviders_EmailAuthDisabled(t *testing.T) {
	api := newTestAPIWithFlags(t, domain.FeatureFlags{EmailAuthDisabled: true})

	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/providers", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	providers, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Empty(t, providers)
}

// ============================================================================
// Contributor Tests
// ============================================================================

func TestGitHubContributors_UpstreamUnavailable(t *testing.T) {
	api := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/contributors/github", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	contributors, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Empty(t, contributors)
}
