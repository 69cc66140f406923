package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/utafrali/resumeforge/internal/domain"
	"github.com/utafrali/resumeforge/internal/event"
	"github.com/utafrali/resumeforge/internal/repository"
	apperrors "github.com/utafrali/resumeforge/pkg/errors"
)

// VerificationSender triggers an email-verification send for a user.
type VerificationSender interface {
	SendVerificationEmail(ctx context.Context, userID string) error
}

// UserService implements profile management.
type UserService struct {
	userRepo repository.UserRepository
	producer *event.Producer
	verifier VerificationSender
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, producer *event.Producer, verifier VerificationSender, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		producer: producer,
		verifier: verifier,
		logger:   logger,
	}
}

// UpdateProfileInput holds the parameters for updating a user's profile.
// Nil fields are left unchanged.
type UpdateProfileInput struct {
	Name     *string
	Email    *string
	Username *string
	Locale   *string
	Picture  *string
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile updates a user's profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		user.Name = *input.Name
	}

	emailChanged := false
	if input.Email != nil {
		newEmail := strings.ToLower(*input.Email)
		if newEmail == "" {
			return nil, apperrors.InvalidInput("email must not be empty")
		}
		if newEmail != user.Email {
			user.Email = newEmail
			user.EmailVerified = false
			emailChanged = true
		}
	}

	if input.Username != nil {
		if *input.Username == "" {
			return nil, apperrors.InvalidInput("username must not be empty")
		}
		user.Username = strings.ToLower(*input.Username)
	}

	if input.Locale != nil {
		user.Locale = *input.Locale
	}

	if input.Picture != nil {
		user.Picture = *input.Picture
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	// A changed address has to be re-verified. The send is best effort;
	// profile updates never fail over a mail outage.
	if emailChanged {
		if err := s.verifier.SendVerificationEmail(ctx, user.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to send verification email",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "profile updated",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// DeleteAccount removes the user and everything they own.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user for deletion: %w", err)
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err := s.producer.PublishUserDeleted(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.deleted event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "account deleted",
		slog.String("user_id", userID),
	)

	return nil
}
