package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/resumeforge/internal/domain"
	"github.com/utafrali/resumeforge/internal/service"
	apperrors "github.com/utafrali/resumeforge/pkg/errors"
	"github.com/utafrali/resumeforge/pkg/httputil"
	"github.com/utafrali/resumeforge/pkg/validator"
)

// AuthHandler exposes registration, session, password recovery, email
// verification, and two-factor endpoints. Sessions are carried in HttpOnly
// cookies.
type AuthHandler struct {
	service       *service.AuthService
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	secureCookies bool
	flags         domain.FeatureFlags
	logger        *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, accessExpiry, refreshExpiry time.Duration, secureCookies bool, flags domain.FeatureFlags, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:       svc,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		secureCookies: secureCookies,
		flags:         flags,
		logger:        logger,
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Locale   string `json:"locale" validate:"omitempty,bcp47_language_tag"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type twoFactorCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

type authResponse struct {
	User   *domain.User      `json:"user"`
	Status domain.AuthStatus `json:"status"`
}

// Providers lists the authentication methods this deployment accepts.
func (h *AuthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	providers := []string{}
	if !h.flags.EmailAuthDisabled {
		providers = append(providers, domain.ProviderEmail)
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: providers})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.flags.SignupsDisabled {
		httputil.WriteError(w, r, apperrors.Forbidden("signups are currently disabled"), h.logger)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Locale:   req.Locale,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.setAuthCookies(w, result.Tokens)
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: authResponse{User: result.User, Status: result.Status}})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.flags.EmailAuthDisabled {
		httputil.WriteError(w, r, apperrors.Forbidden("email authentication is disabled"), h.logger)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), service.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.setAuthCookies(w, result.Tokens)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: authResponse{User: result.User, Status: result.Status}})
}

// Refresh rotates the session using the Refresh cookie. The previous refresh
// token stops working once rotation succeeds.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		httputil.WriteError(w, r, apperrors.InvalidRefreshToken(), h.logger)
		return
	}

	result, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		h.clearAuthCookies(w)
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.setAuthCookies(w, result.Tokens)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: authResponse{User: result.User, Status: result.Status}})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	if err := h.service.Logout(r.Context(), claims.UserID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.clearAuthCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	var req passwordChangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ForgotPassword always answers 202 so that responses do not reveal whether
// an address is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{
		"message": "a password reset link has been sent if the address is registered",
	}})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	var req verifyEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.VerifyEmail(r.Context(), claims.UserID, req.Token); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	if err := h.service.SendVerificationEmail(r.Context(), claims.UserID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{
		"message": "verification email sent",
	}})
}

// --- Two-factor authentication ---

func (h *AuthHandler) SetupTwoFactor(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	uri, err := h.service.SetupTwoFactor(r.Context(), claims.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"uri": uri}})
}

func (h *AuthHandler) EnableTwoFactor(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	var req twoFactorCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	backupCodes, tokens, err := h.service.EnableTwoFactor(r.Context(), claims.UserID, req.Code)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	// The session is reissued already verified, so the caller is not asked
	// for a code it just typed.
	h.setAuthCookies(w, tokens)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"backupCodes": backupCodes}})
}

func (h *AuthHandler) DisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	if err := h.service.DisableTwoFactor(r.Context(), claims.UserID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// VerifyTwoFactor upgrades a half-open session to a fully verified one. It is
// reachable with an unverified access token on purpose.
func (h *AuthHandler) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	var req twoFactorCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.VerifyTwoFactorCode(r.Context(), claims.UserID, req.Code)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.setAuthCookies(w, result.Tokens)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: authResponse{User: result.User, Status: result.Status}})
}

func (h *AuthHandler) UseBackupCode(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	var req twoFactorCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.UseBackupCode(r.Context(), claims.UserID, req.Code)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.setAuthCookies(w, result.Tokens)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: authResponse{User: result.User, Status: result.Status}})
}
