package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/resumeforge/internal/domain"
	"github.com/utafrali/resumeforge/internal/event"
	"github.com/utafrali/resumeforge/internal/repository"
	"github.com/utafrali/resumeforge/internal/storage"
	apperrors "github.com/utafrali/resumeforge/pkg/errors"
	"github.com/utafrali/resumeforge/pkg/slug"
)

// ResumePrinter renders resume pages into artifacts.
type ResumePrinter interface {
	PrintPDF(ctx context.Context, url string) ([]byte, error)
	Screenshot(ctx context.Context, url string) ([]byte, error)
}

// ResumeCache caches public resumes keyed by owner username and slug.
type ResumeCache interface {
	Get(ctx context.Context, username, slug string) (*domain.Resume, error)
	Set(ctx context.Context, username string, resume *domain.Resume) error
	Invalidate(ctx context.Context, username, slug string) error
}

// ResumeService implements resume management, public viewing, printing, and
// statistics.
type ResumeService struct {
	resumeRepo repository.ResumeRepository
	statsRepo  repository.StatisticsRepository
	userRepo   repository.UserRepository
	cache      ResumeCache
	printer    ResumePrinter
	store      storage.Storage
	producer   *event.Producer
	logger     *slog.Logger
	publicURL  string
}

// NewResumeService creates a new resume service.
func NewResumeService(
	resumeRepo repository.ResumeRepository,
	statsRepo repository.StatisticsRepository,
	userRepo repository.UserRepository,
	cache ResumeCache,
	printer ResumePrinter,
	store storage.Storage,
	producer *event.Producer,
	logger *slog.Logger,
	publicURL string,
) *ResumeService {
	return &ResumeService{
		resumeRepo: resumeRepo,
		statsRepo:  statsRepo,
		userRepo:   userRepo,
		cache:      cache,
		printer:    printer,
		store:      store,
		producer:   producer,
		logger:     logger,
		publicURL:  publicURL,
	}
}

// CreateResumeInput holds the parameters for creating a resume.
type CreateResumeInput struct {
	Title string
	Slug  string
	Data  json.RawMessage
}

// UpdateResumeInput holds the parameters for updating a resume. Nil fields
// are left unchanged.
type UpdateResumeInput struct {
	Title      *string
	Slug       *string
	Visibility *string
	Data       json.RawMessage
}

// CreateResume creates a resume for the given user. The slug is derived from
// the title when not given.
func (s *ResumeService) CreateResume(ctx context.Context, userID string, input CreateResumeInput) (*domain.Resume, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}

	resumeSlug := slug.Generate(input.Slug)
	if resumeSlug == "" {
		resumeSlug = slug.Generate(input.Title)
	}
	if resumeSlug == "" {
		return nil, apperrors.InvalidInput("slug could not be derived from title")
	}

	data := input.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	if !json.Valid(data) {
		return nil, apperrors.InvalidInput("resume data must be valid JSON")
	}

	now := time.Now().UTC()
	resume := &domain.Resume{
		ID:         uuid.New().String(),
		UserID:     userID,
		Title:      input.Title,
		Slug:       resumeSlug,
		Visibility: domain.VisibilityPrivate,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.resumeRepo.Create(ctx, resume); err != nil {
		return nil, fmt.Errorf("create resume: %w", err)
	}

	s.logger.InfoContext(ctx, "resume created",
		slog.String("resume_id", resume.ID),
		slog.String("user_id", userID),
	)

	return resume, nil
}

// ImportResumeInput holds the parameters for importing an exported resume
// document.
type ImportResumeInput struct {
	Title string
	Slug  string
	Data  json.RawMessage
}

// ImportResume creates a resume from an exported document. Title and slug are
// derived when absent; imported resumes start private.
func (s *ResumeService) ImportResume(ctx context.Context, userID string, input ImportResumeInput) (*domain.Resume, error) {
	if len(input.Data) == 0 || !json.Valid(input.Data) {
		return nil, apperrors.InvalidInput("resume data must be valid JSON")
	}

	title := input.Title
	if title == "" {
		title = "Imported Resume " + time.Now().UTC().Format("2006-01-02")
	}

	return s.CreateResume(ctx, userID, CreateResumeInput{
		Title: title,
		Slug:  input.Slug,
		Data:  input.Data,
	})
}

// GetResume retrieves a resume owned by the given user.
func (s *ResumeService) GetResume(ctx context.Context, userID, resumeID string) (*domain.Resume, error) {
	resume, err := s.resumeRepo.GetByID(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("get resume: %w", err)
	}
	if resume.UserID != userID {
		return nil, apperrors.NotFound("resume", resumeID)
	}
	return resume, nil
}

// ListResumes returns all resumes owned by the given user.
func (s *ResumeService) ListResumes(ctx context.Context, userID string) ([]domain.Resume, error) {
	resumes, err := s.resumeRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return resumes, nil
}

// UpdateResume modifies a resume. A locked resume rejects content changes;
// unlock it first.
func (s *ResumeService) UpdateResume(ctx context.Context, userID, resumeID string, input UpdateResumeInput) (*domain.Resume, error) {
	resume, err := s.GetResume(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}
	if resume.Locked {
		return nil, apperrors.Forbidden("resume is locked")
	}

	oldSlug := resume.Slug

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("title must not be empty")
		}
		resume.Title = *input.Title
	}

	if input.Slug != nil {
		// Caller-supplied slugs go through the same normalization as on
		// create, so stored slugs stay lowercase alphanumerics and hyphens.
		normalized := slug.Generate(*input.Slug)
		if normalized == "" {
			return nil, apperrors.InvalidInput("slug must not be empty")
		}
		resume.Slug = normalized
	}

	if input.Visibility != nil {
		if !domain.IsValidVisibility(*input.Visibility) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid visibility %q", *input.Visibility))
		}
		resume.Visibility = *input.Visibility
	}

	if input.Data != nil {
		if !json.Valid(input.Data) {
			return nil, apperrors.InvalidInput("resume data must be valid JSON")
		}
		resume.Data = input.Data
	}

	if err := s.resumeRepo.Update(ctx, resume); err != nil {
		return nil, fmt.Errorf("update resume: %w", err)
	}

	s.invalidateCache(ctx, userID, oldSlug, resume.Slug)

	return resume, nil
}

// SetLock locks or unlocks a resume. A locked resume cannot be modified
// until unlocked.
func (s *ResumeService) SetLock(ctx context.Context, userID, resumeID string, locked bool) (*domain.Resume, error) {
	resume, err := s.GetResume(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}

	resume.Locked = locked
	if err := s.resumeRepo.Update(ctx, resume); err != nil {
		return nil, fmt.Errorf("set resume lock: %w", err)
	}

	s.logger.InfoContext(ctx, "resume lock changed",
		slog.String("resume_id", resumeID),
		slog.Bool("locked", locked),
	)

	return resume, nil
}

// DeleteResume removes a resume owned by the given user.
func (s *ResumeService) DeleteResume(ctx context.Context, userID, resumeID string) error {
	resume, err := s.GetResume(ctx, userID, resumeID)
	if err != nil {
		return err
	}

	if err := s.resumeRepo.Delete(ctx, resumeID, userID); err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}

	s.invalidateCache(ctx, userID, resume.Slug, resume.Slug)

	s.logger.InfoContext(ctx, "resume deleted",
		slog.String("resume_id", resumeID),
		slog.String("user_id", userID),
	)

	return nil
}

// GetPublicResume serves a resume by owner username and slug. Private
// resumes are only visible to their owner and look like missing resumes to
// everyone else. Views by non-owners are counted.
func (s *ResumeService) GetPublicResume(ctx context.Context, username, resumeSlug, viewerID string) (*domain.Resume, error) {
	resume, err := s.cache.Get(ctx, username, resumeSlug)
	if err != nil {
		resume, err = s.resumeRepo.GetByUsernameAndSlug(ctx, username, resumeSlug)
		if err != nil {
			return nil, fmt.Errorf("get public resume: %w", err)
		}

		if resume.IsPublic() {
			if err := s.cache.Set(ctx, username, resume); err != nil {
				s.logger.WarnContext(ctx, "failed to cache resume",
					slog.String("resume_id", resume.ID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if !resume.IsPublic() && resume.UserID != viewerID {
		return nil, apperrors.ErrNotFound
	}

	if resume.UserID != viewerID {
		if err := s.statsRepo.IncrementViews(ctx, resume.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to count view",
				slog.String("resume_id", resume.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return resume, nil
}

// GetStatistics returns the view and download counters for a resume owned
// by the given user.
func (s *ResumeService) GetStatistics(ctx context.Context, userID, resumeID string) (*domain.Statistics, error) {
	if _, err := s.GetResume(ctx, userID, resumeID); err != nil {
		return nil, err
	}

	stats, err := s.statsRepo.GetByResumeID(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("get statistics: %w", err)
	}

	return stats, nil
}

// PrintResume renders the resume to PDF through the Chrome pool, stores the
// document, and returns its URL.
func (s *ResumeService) PrintResume(ctx context.Context, userID, resumeID string) (string, error) {
	resume, err := s.GetResume(ctx, userID, resumeID)
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get resume owner: %w", err)
	}

	printableURL := fmt.Sprintf("%s/%s/%s/printable", s.publicURL, user.Username, resume.Slug)
	pdf, err := s.printer.PrintPDF(ctx, printableURL)
	if err != nil {
		return "", fmt.Errorf("print resume: %w", err)
	}

	url, err := s.store.Upload(ctx, storage.Object{
		Key:         fmt.Sprintf("prints/%s/%s.pdf", userID, resumeID),
		ContentType: "application/pdf",
		Body:        pdf,
	})
	if err != nil {
		return "", fmt.Errorf("store pdf: %w", err)
	}

	if err := s.statsRepo.IncrementDownloads(ctx, resumeID); err != nil {
		s.logger.WarnContext(ctx, "failed to count download",
			slog.String("resume_id", resumeID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishResumePrinted(ctx, resumeID, userID, url); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish resume.printed event",
			slog.String("resume_id", resumeID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "resume printed",
		slog.String("resume_id", resumeID),
		slog.String("user_id", userID),
	)

	return url, nil
}

// PrintPreview captures a PNG preview of the resume, stores it, and returns
// its URL.
func (s *ResumeService) PrintPreview(ctx context.Context, userID, resumeID string) (string, error) {
	resume, err := s.GetResume(ctx, userID, resumeID)
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get resume owner: %w", err)
	}

	pageURL := fmt.Sprintf("%s/%s/%s/printable", s.publicURL, user.Username, resume.Slug)
	png, err := s.printer.Screenshot(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}

	url, err := s.store.Upload(ctx, storage.Object{
		Key:         fmt.Sprintf("previews/%s/%s.png", userID, resumeID),
		ContentType: "image/png",
		Body:        png,
	})
	if err != nil {
		return "", fmt.Errorf("store preview: %w", err)
	}

	return url, nil
}

// invalidateCache drops both the old and new slug entries for the owner.
func (s *ResumeService) invalidateCache(ctx context.Context, userID, oldSlug, newSlug string) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve owner for cache invalidation",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, sl := range []string{oldSlug, newSlug} {
		if err := s.cache.Invalidate(ctx, user.Username, sl); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate resume cache",
				slog.String("slug", sl),
				slog.String("error", err.Error()),
			)
		}
		if oldSlug == newSlug {
			break
		}
	}
}
