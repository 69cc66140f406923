package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/utafrali/resumeforge/internal/domain"
	"github.com/utafrali/resumeforge/pkg/database"
)

// StatisticsRepository implements repository.StatisticsRepository using PostgreSQL.
type StatisticsRepository struct {
	pool database.DBTX
}

// NewStatisticsRepository creates a new PostgreSQL-backed statistics repository.
func NewStatisticsRepository(pool database.DBTX) *StatisticsRepository {
	return &StatisticsRepository{pool: pool}
}

// GetByResumeID retrieves the counters for a resume. A resume with no
// recorded activity yields zero counters.
func (r *StatisticsRepository) GetByResumeID(ctx context.Context, resumeID string) (*domain.Statistics, error) {
	query := `
		SELECT id, resume_id, views, downloads, created_at, updated_at
		FROM statistics
		WHERE resume_id = $1`

	var s domain.Statistics
	err := r.pool.QueryRow(ctx, query, resumeID).Scan(
		&s.ID,
		&s.ResumeID,
		&s.Views,
		&s.Downloads,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.Statistics{ResumeID: resumeID}, nil
		}
		return nil, fmt.Errorf("scan statistics: %w", err)
	}

	return &s, nil
}

// IncrementViews adds one to the view counter, creating the row if needed.
func (r *StatisticsRepository) IncrementViews(ctx context.Context, resumeID string) error {
	return r.increment(ctx, resumeID, "views")
}

// IncrementDownloads adds one to the download counter, creating the row if needed.
func (r *StatisticsRepository) IncrementDownloads(ctx context.Context, resumeID string) error {
	return r.increment(ctx, resumeID, "downloads")
}

func (r *StatisticsRepository) increment(ctx context.Context, resumeID, column string) error {
	query := fmt.Sprintf(`
		INSERT INTO statistics (id, resume_id, %s)
		VALUES ($1, $2, 1)
		ON CONFLICT (resume_id)
		DO UPDATE SET %s = statistics.%s + 1, updated_at = now()`, column, column, column)

	_, err := r.pool.Exec(ctx, query, uuid.NewString(), resumeID)
	if err != nil {
		return fmt.Errorf("increment %s: %w", column, err)
	}

	return nil
}
