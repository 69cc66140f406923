package http

import (
	"net/http"

	"github.com/utafrali/resumeforge/internal/domain"
	"github.com/utafrali/resumeforge/internal/service"
	"github.com/utafrali/resumeforge/pkg/httputil"
)

// PlatformHandler exposes deployment feature flags and project contributors.
type PlatformHandler struct {
	flags        domain.FeatureFlags
	contributors *service.ContributorsService
}

func NewPlatformHandler(flags domain.FeatureFlags, contributors *service.ContributorsService) *PlatformHandler {
	return &PlatformHandler{
		flags:        flags,
		contributors: contributors,
	}
}

func (h *PlatformHandler) Flags(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.flags})
}

func (h *PlatformHandler) GitHubContributors(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.contributors.GitHubContributors(r.Context())})
}
