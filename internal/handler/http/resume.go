package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/resumeforge/internal/service"
	apperrors "github.com/utafrali/resumeforge/pkg/errors"
	"github.com/utafrali/resumeforge/pkg/httputil"
	"github.com/utafrali/resumeforge/pkg/validator"
)

// ResumeHandler exposes resume management, public viewing, statistics, and
// PDF export endpoints.
type ResumeHandler struct {
	service *service.ResumeService
	logger  *slog.Logger
}

func NewResumeHandler(svc *service.ResumeService, logger *slog.Logger) *ResumeHandler {
	return &ResumeHandler{service: svc, logger: logger}
}

type createResumeRequest struct {
	Title string          `json:"title" validate:"required,min=1,max=255"`
	Slug  string          `json:"slug" validate:"omitempty,max=255"`
	Data  json.RawMessage `json:"data"`
}

type updateResumeRequest struct {
	Title      *string         `json:"title" validate:"omitempty,min=1,max=255"`
	Slug       *string         `json:"slug" validate:"omitempty,max=255"`
	Visibility *string         `json:"visibility" validate:"omitempty,oneof=private public"`
	Data       json.RawMessage `json:"data"`
}

type importResumeRequest struct {
	Title string          `json:"title" validate:"omitempty,max=255"`
	Slug  string          `json:"slug" validate:"omitempty,max=255"`
	Data  json.RawMessage `json:"data" validate:"required"`
}

type lockResumeRequest struct {
	Locked bool `json:"locked"`
}

// resumeID parses the {id} path parameter, writing a 400 response when it is
// not a valid UUID.
func resumeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return "", false
	}
	return id.String(), true
}

func (h *ResumeHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	var req createResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	resume, err := h.service.CreateResume(r.Context(), claims.UserID, service.CreateResumeInput{
		Title: req.Title,
		Slug:  req.Slug,
		Data:  req.Data,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: resume})
}

func (h *ResumeHandler) Import(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	var req importResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	resume, err := h.service.ImportResume(r.Context(), claims.UserID, service.ImportResumeInput{
		Title: req.Title,
		Slug:  req.Slug,
		Data:  req.Data,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: resume})
}

func (h *ResumeHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	resumes, err := h.service.ListResumes(r.Context(), claims.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resumes})
}

func (h *ResumeHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	id, ok := resumeID(w, r)
	if !ok {
		return
	}

	resume, err := h.service.GetResume(r.Context(), claims.UserID, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resume})
}

func (h *ResumeHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	var req updateResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	id, ok := resumeID(w, r)
	if !ok {
		return
	}

	resume, err := h.service.UpdateResume(r.Context(), claims.UserID, id, service.UpdateResumeInput{
		Title:      req.Title,
		Slug:       req.Slug,
		Visibility: req.Visibility,
		Data:       req.Data,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resume})
}

func (h *ResumeHandler) SetLock(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	var req lockResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.logger)
		return
	}

	id, ok := resumeID(w, r)
	if !ok {
		return
	}

	resume, err := h.service.SetLock(r.Context(), claims.UserID, id, req.Locked)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resume})
}

func (h *ResumeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	id, ok := resumeID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteResume(r.Context(), claims.UserID, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ResumeHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	id, ok := resumeID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetStatistics(r.Context(), claims.UserID, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}

func (h *ResumeHandler) Print(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	id, ok := resumeID(w, r)
	if !ok {
		return
	}

	url, err := h.service.PrintResume(r.Context(), claims.UserID, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"url": url}})
}

func (h *ResumeHandler) Preview(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), h.logger)
		return
	}

	id, ok := resumeID(w, r)
	if !ok {
		return
	}

	url, err := h.service.PrintPreview(r.Context(), claims.UserID, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"url": url}})
}

// GetPublic serves a public resume by owner username and slug. Visitors may
// be anonymous; an owner viewing their own resume does not count as a view.
func (h *ResumeHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	var viewerID string
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		viewerID = claims.UserID
	}

	resume, err := h.service.GetPublicResume(r.Context(), chi.URLParam(r, "username"), chi.URLParam(r, "slug"), viewerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resume})
}
