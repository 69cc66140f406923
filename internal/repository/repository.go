package repository

import (
	"context"
	"time"

	"github.com/utafrali/resumeforge/internal/domain"
)

// Field carries an optional update value. A zero Field leaves the column
// untouched; Set marks it for writing, including writes to NULL.
type Field[T any] struct {
	Value T
	Valid bool
}

// Set returns a Field that will be written during an update.
func Set[T any](v T) Field[T] {
	return Field[T]{Value: v, Valid: true}
}

// SecretsUpdate describes a partial update of a user's secrets row. Only
// fields marked valid are written, so callers can clear one credential
// without touching the rest.
type SecretsUpdate struct {
	Password             Field[*string]
	ResetToken           Field[*string]
	VerificationToken    Field[*string]
	TwoFactorSecret      Field[*string]
	TwoFactorBackupCodes Field[[]string]
	RefreshToken         Field[*string]
	LastSignedIn         Field[*time.Time]
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername retrieves a user by their username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByIdentifier retrieves a user by email or username.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user and all dependent rows from the store.
	Delete(ctx context.Context, id string) error
}

// SecretsRepository defines the interface for credential persistence
// operations. Every user row has exactly one secrets row.
type SecretsRepository interface {
	// Create inserts the secrets row for a newly registered user.
	Create(ctx context.Context, secrets *domain.Secrets) error

	// GetByUserID retrieves the secrets row for the given user.
	GetByUserID(ctx context.Context, userID string) (*domain.Secrets, error)

	// GetByResetToken retrieves the secrets row holding the given
	// password reset token.
	GetByResetToken(ctx context.Context, token string) (*domain.Secrets, error)

	// Update applies a partial update to the user's secrets row.
	Update(ctx context.Context, userID string, update SecretsUpdate) error
}

// ResumeRepository defines the interface for resume persistence operations.
type ResumeRepository interface {
	// Create inserts a new resume into the store.
	Create(ctx context.Context, resume *domain.Resume) error

	// GetByID retrieves a resume by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Resume, error)

	// GetByUsernameAndSlug retrieves a resume by its owner's username and
	// the resume slug. Used for public resume lookups.
	GetByUsernameAndSlug(ctx context.Context, username, slug string) (*domain.Resume, error)

	// ListByUserID returns all resumes owned by the given user, newest first.
	ListByUserID(ctx context.Context, userID string) ([]domain.Resume, error)

	// Update modifies an existing resume in the store.
	Update(ctx context.Context, resume *domain.Resume) error

	// Delete removes a resume owned by the given user.
	Delete(ctx context.Context, id, userID string) error
}

// StatisticsRepository defines the interface for resume view and download
// counters.
type StatisticsRepository interface {
	// GetByResumeID retrieves the counters for a resume. A resume with no
	// recorded activity yields zero counters, not an error.
	GetByResumeID(ctx context.Context, resumeID string) (*domain.Statistics, error)

	// IncrementViews adds one to the view counter, creating the row if needed.
	IncrementViews(ctx context.Context, resumeID string) error

	// IncrementDownloads adds one to the download counter, creating the row if needed.
	IncrementDownloads(ctx context.Context, resumeID string) error
}
