package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/resumeforge/pkg/database"
)

func newStatisticsTestFixture(t *testing.T) (*StatisticsRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewStatisticsRepository(mock)
	return repo, mock
}

func TestStatisticsRepository_GetByResumeID_Success(t *testing.T) {
	repo, mock := newStatisticsTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM statistics WHERE resume_id").
		WithArgs("resume-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "resume_id", "views", "downloads", "created_at", "updated_at",
		}).AddRow("stat-1", "resume-1", int64(42), int64(7), now, now))

	got, err := repo.GetByResumeID(context.Background(), "resume-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Views)
	assert.Equal(t, int64(7), got.Downloads)
}

func TestStatisticsRepository_GetByResumeID_NoRowIsZero(t *testing.T) {
	repo, mock := newStatisticsTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM statistics WHERE resume_id").
		WithArgs("resume-1").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByResumeID(context.Background(), "resume-1")
	require.NoError(t, err)
	assert.Equal(t, "resume-1", got.ResumeID)
	assert.Zero(t, got.Views)
	assert.Zero(t, got.Downloads)
}

func TestStatisticsRepository_IncrementViews(t *testing.T) {
	repo, mock := newStatisticsTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO statistics (.+)views").
		WithArgs(pgxmock.AnyArg(), "resume-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.IncrementViews(context.Background(), "resume-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatisticsRepository_IncrementDownloads(t *testing.T) {
	repo, mock := newStatisticsTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO statistics (.+)downloads").
		WithArgs(pgxmock.AnyArg(), "resume-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.IncrementDownloads(context.Background(), "resume-1"))
}
