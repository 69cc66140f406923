package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/resumeforge/internal/auth"
	"github.com/utafrali/resumeforge/internal/domain"
	"github.com/utafrali/resumeforge/internal/event"
	"github.com/utafrali/resumeforge/internal/mail"
	"github.com/utafrali/resumeforge/internal/repository"
	apperrors "github.com/utafrali/resumeforge/pkg/errors"
)

// defaultBcryptCost is the cost factor for bcrypt password hashing.
const defaultBcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// AuthConfig holds the settings of the auth service.
type AuthConfig struct {
	// PublicURL is the externally reachable base URL, used to build reset
	// and verification links.
	PublicURL string

	// TOTPIssuer is the issuer shown in authenticator apps.
	TOTPIssuer string

	// BcryptCost overrides the hashing cost. Zero means the default; tests
	// lower it to keep hashing fast.
	BcryptCost int
}

// AuthResult is the outcome of an authentication step. Status tells the
// caller whether the session is established or gated behind a two-factor
// challenge.
type AuthResult struct {
	User   *domain.User
	Tokens *domain.TokenPair
	Status domain.AuthStatus
}

// AuthService implements registration, sessions, password recovery, email
// verification, and two-factor authentication.
type AuthService struct {
	userRepo    repository.UserRepository
	secretsRepo repository.SecretsRepository
	tokens      *auth.TokenManager
	mailer      mail.Sender
	producer    *event.Producer
	logger      *slog.Logger

	publicURL  string
	totpIssuer string
	bcryptCost int
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	secretsRepo repository.SecretsRepository,
	tokens *auth.TokenManager,
	mailer mail.Sender,
	producer *event.Producer,
	logger *slog.Logger,
	cfg AuthConfig,
) *AuthService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = defaultBcryptCost
	}
	issuer := cfg.TOTPIssuer
	if issuer == "" {
		issuer = "ResumeForge"
	}

	return &AuthService{
		userRepo:    userRepo,
		secretsRepo: secretsRepo,
		tokens:      tokens,
		mailer:      mailer,
		producer:    producer,
		logger:      logger,
		publicURL:   strings.TrimRight(cfg.PublicURL, "/"),
		totpIssuer:  issuer,
		bcryptCost:  cost,
	}
}

// --- Input types ---

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Username string
	Locale   string
	Password string
}

// LoginInput holds the parameters for logging in. Identifier is an email
// address or a username.
type LoginInput struct {
	Identifier string
	Password   string
}

// --- Registration and sessions ---

// Register creates a new account, stores the hashed password, sends the
// verification email, and opens a session.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if input.Username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	locale := input.Locale
	if locale == "" {
		locale = "en-US"
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Email:     strings.ToLower(input.Email),
		Username:  strings.ToLower(input.Username),
		Locale:    locale,
		Provider:  domain.ProviderEmail,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	password := string(hashedPassword)
	secrets := &domain.Secrets{
		ID:                   uuid.New().String(),
		UserID:               user.ID,
		Password:             &password,
		TwoFactorBackupCodes: []string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.secretsRepo.Create(ctx, secrets); err != nil {
		return nil, fmt.Errorf("create secrets: %w", err)
	}

	// Verification mail failures must not fail registration.
	if err := s.SendVerificationEmail(ctx, user.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to send verification email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	tokens, err := s.openSession(ctx, user.ID, false)
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Tokens: tokens, Status: domain.StatusAuthenticated}, nil
}

// Login authenticates a user by email or username and password. Unknown
// accounts, accounts without a local password, and wrong passwords all
// produce the same error so callers cannot probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if input.Identifier == "" {
		return nil, apperrors.InvalidInput("email or username is required")
	}
	if input.Password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.GetByIdentifier(ctx, strings.ToLower(input.Identifier))
	if err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	secrets, err := s.secretsRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, apperrors.InvalidCredentials()
	}
	if secrets.Password == nil {
		// OAuth-only account.
		return nil, apperrors.InvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*secrets.Password), []byte(input.Password)); err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	// Fresh sessions always start with an unverified two_factor_verified
	// claim; only presenting a code (or backup code) upgrades it. Accounts
	// without two-factor are never gated on the claim.
	tokens, err := s.openSession(ctx, user.ID, false)
	if err != nil {
		return nil, err
	}

	if user.TwoFactorEnabled {
		s.logger.InfoContext(ctx, "login pending two-factor",
			slog.String("user_id", user.ID),
		)
		return &AuthResult{User: user, Tokens: tokens, Status: domain.StatusTwoFactorRequired}, nil
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)

	return &AuthResult{User: user, Tokens: tokens, Status: domain.StatusAuthenticated}, nil
}

// Refresh rotates the session. The presented token must both carry a valid
// signature and match the stored token byte for byte; on success a new pair
// is issued and the stored token is replaced, so each refresh token works
// exactly once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidRefreshToken()
	}

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.InvalidRefreshToken()
	}

	secrets, err := s.secretsRepo.GetByUserID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.InvalidRefreshToken()
	}
	if secrets.RefreshToken == nil || *secrets.RefreshToken != refreshToken {
		return nil, apperrors.InvalidRefreshToken()
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.InvalidRefreshToken()
	}

	tokens, err := s.issueTokens(ctx, user.ID, claims.TwoFactorVerified, false)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "session refreshed",
		slog.String("user_id", user.ID),
	)

	status := domain.StatusAuthenticated
	if user.TwoFactorEnabled && !claims.TwoFactorVerified {
		status = domain.StatusTwoFactorRequired
	}

	return &AuthResult{User: user, Tokens: tokens, Status: status}, nil
}

// Logout revokes the active session by clearing the stored refresh token.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	err := s.secretsRepo.Update(ctx, userID, repository.SecretsUpdate{
		RefreshToken: repository.Set[*string](nil),
	})
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", userID),
	)

	return nil
}

// --- Password management ---

// ChangePassword changes an authenticated user's password and revokes the
// active session.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return apperrors.InvalidInput("current password is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	secrets, err := s.secretsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get secrets for password change: %w", err)
	}
	if secrets.Password == nil {
		return apperrors.InvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*secrets.Password), []byte(currentPassword)); err != nil {
		return apperrors.InvalidCredentials()
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	password := string(hashed)
	err = s.secretsRepo.Update(ctx, userID, repository.SecretsUpdate{
		Password:     repository.Set(&password),
		RefreshToken: repository.Set[*string](nil),
	})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.String("user_id", userID),
	)

	return nil
}

// ForgotPassword starts password recovery. It succeeds regardless of whether
// the email belongs to an account, never revealing which addresses exist.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		s.logger.InfoContext(ctx, "password reset requested for unknown email",
			slog.String("email", email),
		)
		return nil
	}

	token, err := auth.GenerateRandomToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	err = s.secretsRepo.Update(ctx, user.ID, repository.SecretsUpdate{
		ResetToken: repository.Set(&token),
	})
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "Reset your password",
		Body: fmt.Sprintf("A password reset was requested for your account.\n\n"+
			"Reset it here: %s/auth/reset-password?token=%s\n\n"+
			"If you did not request this, you can ignore this email.", s.publicURL, token),
	}
	// A mail outage must not change the response, or failures would reveal
	// which addresses have accounts.
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to send password reset email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishUserPasswordReset(ctx, user.ID, user.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_reset event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset requested",
		slog.String("user_id", user.ID),
	)

	return nil
}

// ResetPassword completes password recovery. The token is single use and the
// active session is revoked.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperrors.InvalidResetToken()
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	secrets, err := s.secretsRepo.GetByResetToken(ctx, token)
	if err != nil {
		return apperrors.InvalidResetToken()
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	password := string(hashed)
	err = s.secretsRepo.Update(ctx, secrets.UserID, repository.SecretsUpdate{
		Password:     repository.Set(&password),
		ResetToken:   repository.Set[*string](nil),
		RefreshToken: repository.Set[*string](nil),
	})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset completed",
		slog.String("user_id", secrets.UserID),
	)

	return nil
}

// --- Email verification ---

// SendVerificationEmail issues a fresh verification token and mails the
// verification link.
func (s *AuthService) SendVerificationEmail(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user for verification: %w", err)
	}
	if user.EmailVerified {
		return apperrors.EmailAlreadyVerified()
	}

	token, err := auth.GenerateRandomToken()
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}

	err = s.secretsRepo.Update(ctx, user.ID, repository.SecretsUpdate{
		VerificationToken: repository.Set(&token),
	})
	if err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "Verify your email address",
		Body: fmt.Sprintf("Welcome to %s.\n\n"+
			"Verify your email address here: %s/auth/verify-email?token=%s", s.totpIssuer, s.publicURL, token),
	}
	// Delivery is best effort. The token is stored, so the user can request
	// another mail once the outage clears.
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to send verification email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// VerifyEmail marks the user's email as verified when the submitted token
// matches the stored one.
func (s *AuthService) VerifyEmail(ctx context.Context, userID, token string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user for verification: %w", err)
	}
	if user.EmailVerified {
		return apperrors.EmailAlreadyVerified()
	}

	secrets, err := s.secretsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get secrets for verification: %w", err)
	}
	if token == "" || secrets.VerificationToken == nil || *secrets.VerificationToken != token {
		return apperrors.InvalidVerificationToken()
	}

	user.EmailVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	err = s.secretsRepo.Update(ctx, userID, repository.SecretsUpdate{
		VerificationToken: repository.Set[*string](nil),
	})
	if err != nil {
		return fmt.Errorf("clear verification token: %w", err)
	}

	s.logger.InfoContext(ctx, "email verified",
		slog.String("user_id", userID),
	)

	return nil
}

// --- Two-factor authentication ---

// SetupTwoFactor generates a TOTP secret for the user and returns the
// otpauth provisioning URI. Two-factor stays disabled until the user proves
// possession by confirming a code through EnableTwoFactor.
func (s *AuthService) SetupTwoFactor(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user for 2fa setup: %w", err)
	}
	if user.TwoFactorEnabled {
		return "", apperrors.TwoFactorAlreadyEnabled()
	}

	secret, uri, err := auth.GenerateTwoFactorSecret(s.totpIssuer, user.Email)
	if err != nil {
		return "", err
	}

	err = s.secretsRepo.Update(ctx, userID, repository.SecretsUpdate{
		TwoFactorSecret: repository.Set(&secret),
	})
	if err != nil {
		return "", fmt.Errorf("store 2fa secret: %w", err)
	}

	return uri, nil
}

// EnableTwoFactor turns on two-factor auth after the user confirms a valid
// code, and returns the backup codes alongside a fresh verified token pair.
// The codes are shown exactly once. Rotating the session here also retires
// any refresh token issued before the account was gated.
func (s *AuthService) EnableTwoFactor(ctx context.Context, userID, code string) ([]string, *domain.TokenPair, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get user for 2fa enable: %w", err)
	}
	if user.TwoFactorEnabled {
		return nil, nil, apperrors.TwoFactorAlreadyEnabled()
	}

	secrets, err := s.secretsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get secrets for 2fa enable: %w", err)
	}
	if secrets.TwoFactorSecret == nil {
		return nil, nil, apperrors.TwoFactorNotEnabled()
	}

	if !auth.ValidateTwoFactorCode(code, *secrets.TwoFactorSecret) {
		return nil, nil, apperrors.InvalidTwoFactorCode()
	}

	backupCodes, err := auth.GenerateBackupCodes()
	if err != nil {
		return nil, nil, err
	}

	err = s.secretsRepo.Update(ctx, userID, repository.SecretsUpdate{
		TwoFactorBackupCodes: repository.Set(backupCodes),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("store backup codes: %w", err)
	}

	user.TwoFactorEnabled = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("enable 2fa: %w", err)
	}

	// Not a fresh sign-in, so the last-signed-in timestamp stays put.
	tokens, err := s.issueTokens(ctx, userID, true, false)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "two-factor enabled",
		slog.String("user_id", userID),
	)

	return backupCodes, tokens, nil
}

// DisableTwoFactor turns off two-factor auth and discards the secret and
// backup codes.
func (s *AuthService) DisableTwoFactor(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user for 2fa disable: %w", err)
	}
	if !user.TwoFactorEnabled {
		return apperrors.TwoFactorNotEnabled()
	}

	err = s.secretsRepo.Update(ctx, userID, repository.SecretsUpdate{
		TwoFactorSecret:      repository.Set[*string](nil),
		TwoFactorBackupCodes: repository.Set([]string{}),
	})
	if err != nil {
		return fmt.Errorf("clear 2fa secrets: %w", err)
	}

	user.TwoFactorEnabled = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("disable 2fa: %w", err)
	}

	s.logger.InfoContext(ctx, "two-factor disabled",
		slog.String("user_id", userID),
	)

	return nil
}

// VerifyTwoFactorCode upgrades a two-factor gated session to a full session
// after a valid TOTP code is presented.
func (s *AuthService) VerifyTwoFactorCode(ctx context.Context, userID, code string) (*AuthResult, error) {
	user, secrets, err := s.loadTwoFactorState(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !auth.ValidateTwoFactorCode(code, *secrets.TwoFactorSecret) {
		return nil, apperrors.InvalidTwoFactorCode()
	}

	return s.completeTwoFactor(ctx, user)
}

// UseBackupCode upgrades a two-factor gated session using a single-use
// recovery code. The consumed code is removed from the stored set.
func (s *AuthService) UseBackupCode(ctx context.Context, userID, code string) (*AuthResult, error) {
	user, secrets, err := s.loadTwoFactorState(ctx, userID)
	if err != nil {
		return nil, err
	}

	remaining, ok := auth.ConsumeBackupCode(code, secrets.TwoFactorBackupCodes)
	if !ok {
		return nil, apperrors.InvalidTwoFactorBackupCode()
	}

	err = s.secretsRepo.Update(ctx, userID, repository.SecretsUpdate{
		TwoFactorBackupCodes: repository.Set(remaining),
	})
	if err != nil {
		return nil, fmt.Errorf("consume backup code: %w", err)
	}

	s.logger.InfoContext(ctx, "backup code used",
		slog.String("user_id", userID),
		slog.Int("remaining", len(remaining)),
	)

	return s.completeTwoFactor(ctx, user)
}

func (s *AuthService) loadTwoFactorState(ctx context.Context, userID string) (*domain.User, *domain.Secrets, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get user for 2fa: %w", err)
	}
	if !user.TwoFactorEnabled {
		return nil, nil, apperrors.TwoFactorNotEnabled()
	}

	secrets, err := s.secretsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get secrets for 2fa: %w", err)
	}
	if secrets.TwoFactorSecret == nil {
		return nil, nil, apperrors.TwoFactorNotEnabled()
	}

	return user, secrets, nil
}

func (s *AuthService) completeTwoFactor(ctx context.Context, user *domain.User) (*AuthResult, error) {
	tokens, err := s.openSession(ctx, user.ID, true)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "two-factor verified",
		slog.String("user_id", user.ID),
	)

	return &AuthResult{User: user, Tokens: tokens, Status: domain.StatusAuthenticated}, nil
}

// --- Session helpers ---

// openSession issues a token pair and records the sign-in time.
func (s *AuthService) openSession(ctx context.Context, userID string, twoFactorVerified bool) (*domain.TokenPair, error) {
	return s.issueTokens(ctx, userID, twoFactorVerified, true)
}

// issueTokens generates a token pair and persists the refresh token verbatim
// so only the most recently issued session stays valid.
func (s *AuthService) issueTokens(ctx context.Context, userID string, twoFactorVerified, recordSignIn bool) (*domain.TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(userID, twoFactorVerified)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(userID, twoFactorVerified)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	update := repository.SecretsUpdate{
		RefreshToken: repository.Set(&refreshToken),
	}
	if recordSignIn {
		now := time.Now().UTC()
		update.LastSignedIn = repository.Set(&now)
	}

	if err := s.secretsRepo.Update(ctx, userID, update); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// validatePassword enforces the password policy: a minimum length, nothing
// more. Composition rules push users toward predictable substitutions.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}
