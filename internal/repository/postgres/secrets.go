package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/resumeforge/internal/domain"
	"github.com/utafrali/resumeforge/internal/repository"
	"github.com/utafrali/resumeforge/pkg/database"
	apperrors "github.com/utafrali/resumeforge/pkg/errors"
)

// SecretsRepository implements repository.SecretsRepository using PostgreSQL.
type SecretsRepository struct {
	pool database.DBTX
}

// NewSecretsRepository creates a new PostgreSQL-backed secrets repository.
func NewSecretsRepository(pool database.DBTX) *SecretsRepository {
	return &SecretsRepository{pool: pool}
}

const secretsColumns = `id, user_id, password, reset_token, verification_token, two_factor_secret, two_factor_backup_codes, refresh_token, last_signed_in, created_at, updated_at`

// Create inserts the secrets row for a newly registered user.
func (r *SecretsRepository) Create(ctx context.Context, s *domain.Secrets) error {
	query := `
		INSERT INTO secrets (id, user_id, password, reset_token, verification_token, two_factor_secret, two_factor_backup_codes, refresh_token, last_signed_in, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.Password,
		s.ResetToken,
		s.VerificationToken,
		s.TwoFactorSecret,
		s.TwoFactorBackupCodes,
		s.RefreshToken,
		s.LastSignedIn,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("secrets", "user_id", s.UserID)
		}
		return fmt.Errorf("insert secrets: %w", err)
	}

	return nil
}

// GetByUserID retrieves the secrets row for the given user.
func (r *SecretsRepository) GetByUserID(ctx context.Context, userID string) (*domain.Secrets, error) {
	query := `SELECT ` + secretsColumns + ` FROM secrets WHERE user_id = $1`
	return r.scanSecrets(ctx, query, userID)
}

// GetByResetToken retrieves the secrets row holding the given reset token.
func (r *SecretsRepository) GetByResetToken(ctx context.Context, token string) (*domain.Secrets, error) {
	query := `SELECT ` + secretsColumns + ` FROM secrets WHERE reset_token = $1`
	return r.scanSecrets(ctx, query, token)
}

// Update applies a partial update to the user's secrets row. The SET clause
// is built from the fields the caller marked valid, so clearing one
// credential never overwrites another.
func (r *SecretsRepository) Update(ctx context.Context, userID string, update repository.SecretsUpdate) error {
	var (
		set  []string
		args []any
	)

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Password.Valid {
		add("password", update.Password.Value)
	}
	if update.ResetToken.Valid {
		add("reset_token", update.ResetToken.Value)
	}
	if update.VerificationToken.Valid {
		add("verification_token", update.VerificationToken.Value)
	}
	if update.TwoFactorSecret.Valid {
		add("two_factor_secret", update.TwoFactorSecret.Value)
	}
	if update.TwoFactorBackupCodes.Valid {
		add("two_factor_backup_codes", update.TwoFactorBackupCodes.Value)
	}
	if update.RefreshToken.Valid {
		add("refresh_token", update.RefreshToken.Value)
	}
	if update.LastSignedIn.Valid {
		add("last_signed_in", update.LastSignedIn.Value)
	}

	if len(set) == 0 {
		return nil
	}

	add("updated_at", time.Now().UTC())
	args = append(args, userID)

	query := fmt.Sprintf("UPDATE secrets SET %s WHERE user_id = $%d", strings.Join(set, ", "), len(args))

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update secrets: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("secrets", userID)
	}

	return nil
}

// scanSecrets is a helper that executes a query expected to return a single secrets row.
func (r *SecretsRepository) scanSecrets(ctx context.Context, query string, args ...any) (*domain.Secrets, error) {
	var s domain.Secrets

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&s.ID,
		&s.UserID,
		&s.Password,
		&s.ResetToken,
		&s.VerificationToken,
		&s.TwoFactorSecret,
		&s.TwoFactorBackupCodes,
		&s.RefreshToken,
		&s.LastSignedIn,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan secrets: %w", err)
	}

	return &s, nil
}
