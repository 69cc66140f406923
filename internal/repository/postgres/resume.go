package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/resumeforge/internal/domain"
	"github.com/utafrali/resumeforge/pkg/database"
	apperrors "github.com/utafrali/resumeforge/pkg/errors"
)

// ResumeRepository implements repository.ResumeRepository using PostgreSQL.
type ResumeRepository struct {
	pool database.DBTX
}

// NewResumeRepository creates a new PostgreSQL-backed resume repository.
func NewResumeRepository(pool database.DBTX) *ResumeRepository {
	return &ResumeRepository{pool: pool}
}

const resumeColumns = `id, user_id, title, slug, visibility, locked, data, created_at, updated_at`

// Create inserts a new resume into the database.
func (r *ResumeRepository) Create(ctx context.Context, resume *domain.Resume) error {
	query := `
		INSERT INTO resumes (id, user_id, title, slug, visibility, locked, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		resume.ID,
		resume.UserID,
		resume.Title,
		resume.Slug,
		resume.Visibility,
		resume.Locked,
		resume.Data,
		resume.CreatedAt,
		resume.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("resume", "slug", resume.Slug)
		}
		return fmt.Errorf("insert resume: %w", err)
	}

	return nil
}

// GetByID retrieves a resume by its ID.
func (r *ResumeRepository) GetByID(ctx context.Context, id string) (*domain.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`
	return r.scanResume(ctx, query, id)
}

// GetByUsernameAndSlug retrieves a resume by its owner's username and the
// resume slug.
func (r *ResumeRepository) GetByUsernameAndSlug(ctx context.Context, username, slug string) (*domain.Resume, error) {
	query := `
		SELECT r.id, r.user_id, r.title, r.slug, r.visibility, r.locked, r.data, r.created_at, r.updated_at
		FROM resumes r
		JOIN users u ON u.id = r.user_id
		WHERE u.username = $1 AND r.slug = $2`

	return r.scanResume(ctx, query, username, slug)
}

// ListByUserID returns all resumes owned by the given user, newest first.
func (r *ResumeRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE user_id = $1 ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer rows.Close()

	var resumes []domain.Resume
	for rows.Next() {
		var resume domain.Resume
		if err := rows.Scan(
			&resume.ID,
			&resume.UserID,
			&resume.Title,
			&resume.Slug,
			&resume.Visibility,
			&resume.Locked,
			&resume.Data,
			&resume.CreatedAt,
			&resume.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan resume row: %w", err)
		}
		resumes = append(resumes, resume)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resume rows: %w", err)
	}

	if resumes == nil {
		resumes = []domain.Resume{}
	}

	return resumes, nil
}

// Update modifies an existing resume in the database.
func (r *ResumeRepository) Update(ctx context.Context, resume *domain.Resume) error {
	resume.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE resumes
		SET title = $1, slug = $2, visibility = $3, locked = $4, data = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8`

	ct, err := r.pool.Exec(ctx, query,
		resume.Title,
		resume.Slug,
		resume.Visibility,
		resume.Locked,
		resume.Data,
		resume.UpdatedAt,
		resume.ID,
		resume.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("resume", "slug", resume.Slug)
		}
		return fmt.Errorf("update resume: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("resume", resume.ID)
	}

	return nil
}

// Delete removes a resume owned by the given user.
func (r *ResumeRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM resumes WHERE id = $1 AND user_id = $2`

	ct, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("resume", id)
	}

	return nil
}

// scanResume is a helper that executes a query expected to return a single resume row.
func (r *ResumeRepository) scanResume(ctx context.Context, query string, args ...any) (*domain.Resume, error) {
	var resume domain.Resume

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Title,
		&resume.Slug,
		&resume.Visibility,
		&resume.Locked,
		&resume.Data,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan resume: %w", err)
	}

	return &resume, nil
}
