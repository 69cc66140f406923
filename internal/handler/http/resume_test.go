package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/resumeforge/internal/domain"
	apperrors "github.com/utafrali/resumeforge/pkg/errors"
)

func handlerTestResume() *domain.Resume {
	now := time.Now().UTC()
	return &domain.Resume{
		ID:         handlerTestResumeID,
		UserID:     handlerTestUserID,
		Title:      "Backend Engineer",
		Slug:       "backend-engineer",
		Visibility: domain.VisibilityPrivate,
		Data:       json.RawMessage(`{"basics":{"name":"Jane Doe"}}`),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ============================================================================
// Create / List / Get Tests
// ============================================================================

func TestCreateResume_Success(t *testing.T) {
	api := newTestAPI(t)

	api.resumeRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Resume")).Return(nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/resumes", createResumeRequest{
		Title: "Backend Engineer",
	})
	req.Header.Set("Authorization", "Bearer "+api.accessToken(t, handlerTestUserID, true))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, _ := json.Marshal(resp.Data)
	var created domain.Resume
	require.NoError(t, json.Unmarshal(data, &created))
	assert.Equal(t, "backend-engineer", created.Slug)
	assert.Equal(t, domain.VisibilityPrivate, created.Visibility)
	api.resumeRepo.AssertExpectations(t)
}

func TestCreateResume_MissingTitle(t *testing.T) {
	api := newTestAPI(t)

	req := jsonRequest(t, http.MethodPost, "/api/v1/resumes", createResumeRequest{})
	req.Header.Set("Authorization", "Bearer "+api.accessToken(t, handlerTestUserID, true))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	api.resumeRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateResume_Unauthenticated(t *testing.T) {
	api := newTestAPI(t)

	req := jsonRequest(t, http.MethodPost, "/api/v1/resumes", createResumeRequest{Title: "X"})
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestImportResume_Success(t *testing.T) {
	api := newTestAPI(t)

	api.resumeRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Resume")).Return(nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/resumes/import", importResumeRequest{
		Data: json.RawMessage(`{"basics":{"name":"Jane Doe"}}`),
	})
	req.Header.Set("Authorization", "Bearer "+api.accessToken(t, handlerTestUserID, true))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, _ := json.Marshal(resp.Data)
	var imported domain.Resume
	require.NoError(t, json.Unmarshal(data, &imported))
	assert.Contains(t, imported.Title, "Imported Resume")
	assert.Equal(t, domain.VisibilityPrivate, imported.Visibility)
	api.resumeRepo.AssertExpectations(t)
}

func TestImportResume_MissingData(t *testing.T) {
	api := newTestAPI(t)

	req := jsonRequest(t, http.MethodPost, "/api/v1/resumes/import", importResumeRequest{Title: "Empty"})
	req.Header.Set("Authorization", "Bearer "+api.accessToken(t, handlerTestUserID, true))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	api.resumeRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListResumes_Success(t *testing.T) {
	api := newTestAPI(t)

	api.resumeRepo.On("ListByUserID", mock.Anything, handlerTestUserID).
		Return([]domain.Resume{*handlerTestResume()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	req.Header.Set("Authorization", "Bearer "+api.accessToken(t, handlerTestUserID, true))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestGetResume_OtherOwnerLooksMissing(t *testing.T) {
	api := newTestAPI(t)

	other := handlerTestResume()
	other.UserID = "someone-else"
	api.resumeRepo.On("GetByID", mock.Anything, handlerTestResumeID).Return(other, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+handlerTestResumeID, nil)
	req.Header.Set("Authorization", "Bearer "+api.accessToken(t, handlerTestUserID, true))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// Update / Lock / Delete Tests
// ============================================================================

func TestUpdateResume_LockedRejected(t *testing.T) {
	api := newTestAPI(t)

	locked := handlerTestResume()
	locked.Locked = true
	api.resumeRepo.On("GetByID", mock.Anything, handlerTestResumeID).Return(locked, nil)

	title := "New Title"
	req := jsonRequest(t, http.MethodPatch, "/api/v1/resumes/"+handlerTestResumeID, updateResumeRequest{Title: &title})
	req.Header.Set("Authorization", "Bearer "+api.accessToken(t, handlerTestUserID, true))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	api.resumeRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSetLock_Success(t *testing.T) {
	api := newTestAPI(t)

	api.resumeRepo.On("GetByID", mock.Anything, handlerTestResumeID).Return(handlerTestResume(), nil)
	api.resumeRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Resume")).Return(nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/resumes/"+handlerTestResumeID+"/lock", lockResumeRequest{Locked: true})
	req.Header.Set("Authorization", "Bearer "+api.accessToken(t, handlerTestUserID, true))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	api.resumeRepo.AssertExpectations(t)
}

func TestDeleteResume_Success(t *testing.T) {
	api := newTestAPI(t)

	api.resumeRepo.On("GetByID", mock.Anything, handlerTestResumeID).Return(handlerTestResume(), nil)
	api.resumeRepo.On("Delete", mock.Anything, handlerTestResumeID, handlerTestUserID).Return(nil)
	api.cache.On("Invalidate", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	api.userRepo.On("GetByID", mock.Anything, handlerTestUserID).Return(handlerTestUser(), nil).Maybe()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/resumes/"+handlerTestResumeID, nil)
	req.Header.Set("Authorization", "Bearer "+api.accessToken(t, handlerTestUserID, true))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	api.resumeRepo.AssertExpectations(t)
}

// ============================================================================
// Public View Tests
// ============================================================================

func TestGetPublicResume_AnonymousVisitorCountsView(t *testing.T) {
	api := newTestAPI(t)

	public := handlerTestResume()
	public.Visibility = domain.VisibilityPublic
	api.cache.On("Get", mock.Anything, "jane.doe", "backend-engineer").Return(nil, apperrors.ErrNotFound)
	api.resumeRepo.On("GetByUsernameAndSlug", mock.Anything, "jane.doe", "backend-engineer").Return(public, nil)
	api.cache.On("Set", mock.Anything, "jane.doe", public).Return(nil)
	api.statsRepo.On("IncrementViews", mock.Anything, handlerTestResumeID).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/jane.doe/backend-engineer", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	api.statsRepo.AssertExpectations(t)
}

func TestGetPublicResume_OwnerNotCounted(t *testing.T) {
	api := newTestAPI(t)

	public := handlerTestResume()
	public.Visibility = domain.VisibilityPublic
	api.cache.On("Get", mock.Anything, "jane.doe", "backend-engineer").Return(public, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/jane.doe/backend-engineer", nil)
	req.Header.Set("Authorization", "Bearer "+api.accessToken(t, handlerTestUserID, true))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	api.statsRepo.AssertNotCalled(t, "IncrementViews", mock.Anything, mock.Anything)
}

func TestGetPublicResume_PrivateLooksMissing(t *testing.T) {
	api := newTestAPI(t)

	private := handlerTestResume()
	api.cache.On("Get", mock.Anything, "jane.doe", "backend-engineer").Return(nil, apperrors.ErrNotFound)
	api.resumeRepo.On("GetByUsernameAndSlug", mock.Anything, "jane.doe", "backend-engineer").Return(private, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/jane.doe/backend-engineer", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	api.statsRepo.AssertNotCalled(t, "IncrementViews", mock.Anything, mock.Anything)
}

// ============================================================================
// Statistics and Print Tests
// ============================================================================

func TestGetStatistics_Success(t *testing.T) {
	api := newTestAPI(t)

	api.resumeRepo.On("GetByID", mock.Anything, handlerTestResumeID).Return(handlerTestResume(), nil)
	api.statsRepo.On("GetByResumeID", mock.Anything, handlerTestResumeID).
		Return(&domain.Statistics{ResumeID: handlerTestResumeID, Views: 12, Downloads: 3}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+handlerTestResumeID+"/statistics", nil)
	req.Header.Set("Authorization", "Bearer "+api.accessToken(t, handlerTestUserID, true))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
}

func TestPrintResume_Success(t *testing.T) {
	api := newTestAPI(t)

	api.resumeRepo.On("GetByID", mock.Anything, handlerTestResumeID).Return(handlerTestResume(), nil)
	api.userRepo.On("GetByID", mock.Anything, handlerTestUserID).Return(handlerTestUser(), nil)
	api.printer.On("PrintPDF", mock.Anything, "http://localhost:3000/jane.doe/backend-engineer/printable").
		Return([]byte("%PDF-1.4"), nil)
	api.statsRepo.On("IncrementDownloads", mock.Anything, handlerTestResumeID).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/"+handlerTestResumeID+"/print", nil)
	req.Header.Set("Authorization", "Bearer "+api.accessToken(t, handlerTestUserID, true))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, _ := json.Marshal(resp.Data)
	var body map[string]string
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Contains(t, body["url"], "prints/"+handlerTestUserID+"/"+handlerTestResumeID+".pdf")
	api.printer.AssertExpectations(t)
}

func TestPrintResume_RendererDown(t *testing.T) {
	api := newTestAPI(t)

	api.resumeRepo.On("GetByID", mock.Anything, handlerTestResumeID).Return(handlerTestResume(), nil)
	api.userRepo.On("GetByID", mock.Anything, handlerTestUserID).Return(handlerTestUser(), nil)
	api.printer.On("PrintPDF", mock.Anything, mock.AnythingOfType("string")).Return(nil, assert.AnError)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/"+handlerTestResumeID+"/print", nil)
	req.Header.Set("Authorization", "Bearer "+api.accessToken(t, handlerTestUserID, true))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	api.statsRepo.AssertNotCalled(t, "IncrementDownloads", mock.Anything, mock.Anything)
}
