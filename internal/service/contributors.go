package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/utafrali/resumeforge/internal/domain"
	"github.com/utafrali/resumeforge/pkg/httpclient"
)

const maxContributors = 20

// ContributorsService fetches project contributors from the GitHub API. The
// endpoint is best effort: any upstream failure yields an empty list so the
// frontend never breaks over it.
type ContributorsService struct {
	client *httpclient.Client
	url    string
	logger *slog.Logger
}

// NewContributorsService creates a contributors service fetching from url.
func NewContributorsService(client *httpclient.Client, url string, logger *slog.Logger) *ContributorsService {
	return &ContributorsService{
		client: client,
		url:    url,
		logger: logger,
	}
}

type githubContributor struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	HTMLURL   string `json:"html_url"`
	AvatarURL string `json:"avatar_url"`
}

// GitHubContributors returns up to 20 contributors of the project repository.
func (s *ContributorsService) GitHubContributors(ctx context.Context) []domain.Contributor {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to fetch github contributors",
			slog.String("error", err.Error()),
		)
		return []domain.Contributor{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.WarnContext(ctx, "github contributors request rejected",
			slog.Int("status", resp.StatusCode),
		)
		return []domain.Contributor{}
	}

	var raw []githubContributor
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		s.logger.WarnContext(ctx, "failed to decode github contributors",
			slog.String("error", err.Error()),
		)
		return []domain.Contributor{}
	}

	if len(raw) > maxContributors {
		raw = raw[:maxContributors]
	}

	contributors := make([]domain.Contributor, 0, len(raw))
	for _, c := range raw {
		contributors = append(contributors, domain.Contributor{
			ID:     c.ID,
			Name:   c.Login,
			URL:    c.HTMLURL,
			Avatar: c.AvatarURL,
		})
	}

	return contributors
}
