package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/resumeforge/internal/domain"
	"github.com/utafrali/resumeforge/internal/repository"
	"github.com/utafrali/resumeforge/pkg/database"
	apperrors "github.com/utafrali/resumeforge/pkg/errors"
)

func newSecretsTestFixture(t *testing.T) (*SecretsRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewSecretsRepository(mock)
	return repo, mock
}

func sampleSecrets() *domain.Secrets {
	now := time.Now().UTC().Truncate(time.Microsecond)
	pw := "$2a$12$hashhashhashhashhashha"
	return &domain.Secrets{
		ID:                   "a3b9f6d2-1111-4f7e-9a3d-000000000001",
		UserID:               "1d8f1a6f-9a8e-4a01-b6ff-2d1a2c0f5e11",
		Password:             &pw,
		TwoFactorBackupCodes: []string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func secretsRow(s *domain.Secrets) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "password", "reset_token", "verification_token",
		"two_factor_secret", "two_factor_backup_codes", "refresh_token",
		"last_signed_in", "created_at", "updated_at",
	}).AddRow(
		s.ID, s.UserID, s.Password, s.ResetToken, s.VerificationToken,
		s.TwoFactorSecret, s.TwoFactorBackupCodes, s.RefreshToken,
		s.LastSignedIn, s.CreatedAt, s.UpdatedAt,
	)
}

func TestSecretsRepository_Create_Success(t *testing.T) {
	repo, mock := newSecretsTestFixture(t)
	defer mock.Close()

	s := sampleSecrets()

	mock.ExpectExec("INSERT INTO secrets").
		WithArgs(
			s.ID, s.UserID, s.Password, s.ResetToken, s.VerificationToken,
			s.TwoFactorSecret, s.TwoFactorBackupCodes, s.RefreshToken,
			s.LastSignedIn, s.CreatedAt, s.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), s))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSecretsRepository_GetByUserID_Success(t *testing.T) {
	repo, mock := newSecretsTestFixture(t)
	defer mock.Close()

	s := sampleSecrets()

	mock.ExpectQuery("SELECT (.+) FROM secrets WHERE user_id").
		WithArgs(s.UserID).
		WillReturnRows(secretsRow(s))

	got, err := repo.GetByUserID(context.Background(), s.UserID)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestSecretsRepository_GetByResetToken_NotFound(t *testing.T) {
	repo, mock := newSecretsTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM secrets WHERE reset_token").
		WithArgs("missing-token").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByResetToken(context.Background(), "missing-token")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Partial updates
// ---------------------------------------------------------------------------

func TestSecretsRepository_Update_SingleField(t *testing.T) {
	repo, mock := newSecretsTestFixture(t)
	defer mock.Close()

	token := "refresh-jwt"

	mock.ExpectExec(`UPDATE secrets SET refresh_token = \$1, updated_at = \$2 WHERE user_id = \$3`).
		WithArgs(&token, pgxmock.AnyArg(), "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), "user-1", repository.SecretsUpdate{
		RefreshToken: repository.Set(&token),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSecretsRepository_Update_ClearsToNull(t *testing.T) {
	repo, mock := newSecretsTestFixture(t)
	defer mock.Close()

	// Setting a nil pointer writes NULL rather than skipping the column.
	mock.ExpectExec(`UPDATE secrets SET refresh_token = \$1, updated_at = \$2 WHERE user_id = \$3`).
		WithArgs((*string)(nil), pgxmock.AnyArg(), "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), "user-1", repository.SecretsUpdate{
		RefreshToken: repository.Set[*string](nil),
	})
	require.NoError(t, err)
}

func TestSecretsRepository_Update_MultipleFields(t *testing.T) {
	repo, mock := newSecretsTestFixture(t)
	defer mock.Close()

	secret := "JBSWY3DPEHPK3PXP"
	codes := []string{"aaaaaaaaaa", "bbbbbbbbbb"}

	mock.ExpectExec(`UPDATE secrets SET two_factor_secret = \$1, two_factor_backup_codes = \$2, updated_at = \$3 WHERE user_id = \$4`).
		WithArgs(&secret, codes, pgxmock.AnyArg(), "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), "user-1", repository.SecretsUpdate{
		TwoFactorSecret:      repository.Set(&secret),
		TwoFactorBackupCodes: repository.Set(codes),
	})
	require.NoError(t, err)
}

func TestSecretsRepository_Update_NoFieldsIsNoop(t *testing.T) {
	repo, mock := newSecretsTestFixture(t)
	defer mock.Close()

	// No expectations registered: an empty update must not touch the database.
	err := repo.Update(context.Background(), "user-1", repository.SecretsUpdate{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSecretsRepository_Update_NotFound(t *testing.T) {
	repo, mock := newSecretsTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE secrets SET last_signed_in = \$1, updated_at = \$2 WHERE user_id = \$3`).
		WithArgs(&now, pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), "missing", repository.SecretsUpdate{
		LastSignedIn: repository.Set(&now),
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
