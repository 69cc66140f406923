package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/resumeforge/internal/service"
	apperrors "github.com/utafrali/resumeforge/pkg/errors"
	"github.com/utafrali/resumeforge/pkg/httputil"
	"github.com/utafrali/resumeforge/pkg/validator"
)

// UserHandler exposes profile endpoints for the authenticated user.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

type updateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Username *string `json:"username" validate:"omitempty,min=3,max=64"`
	Locale   *string `json:"locale" validate:"omitempty,bcp47_language_tag"`
	Picture  *string `json:"picture" validate:"omitempty,url"`
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	user, err := h.service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), claims.UserID, service.UpdateProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Locale:   req.Locale,
		Picture:  req.Picture,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	if err := h.service.DeleteAccount(r.Context(), claims.UserID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
