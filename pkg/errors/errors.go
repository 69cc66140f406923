package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
)

// Sentinel errors for the credential lifecycle. Callers match these with
// errors.Is; the HTTP layer maps them through the AppError they arrive in.
var (
	ErrInvalidCredentials         = errors.New("invalid credentials")
	ErrInvalidRefreshToken        = errors.New("invalid refresh token")
	ErrInvalidResetToken          = errors.New("invalid reset token")
	ErrInvalidVerificationToken   = errors.New("invalid verification token")
	ErrEmailAlreadyVerified       = errors.New("email already verified")
	ErrInvalidTwoFactorCode       = errors.New("invalid two-factor code")
	ErrInvalidTwoFactorBackupCode = errors.New("invalid two-factor backup code")
	ErrTwoFactorAlreadyEnabled    = errors.New("two-factor already enabled")
	ErrTwoFactorNotEnabled        = errors.New("two-factor not enabled")
	ErrTwoFactorRequired          = errors.New("two-factor verification required")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// InvalidCredentials is the single error returned for every failed sign-in,
// whether the account does not exist, belongs to an OAuth provider, or the
// password is wrong. Keeping one shape prevents account enumeration.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid email/username or password",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidCredentials,
	}
}

// InvalidRefreshToken creates a 400 error for a refresh token that is
// expired, malformed, or no longer matches the stored session.
func InvalidRefreshToken() *AppError {
	return &AppError{
		Code:    "INVALID_REFRESH_TOKEN",
		Message: "invalid or expired refresh token",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidRefreshToken,
	}
}

// InvalidResetToken creates a 400 error for an unknown password reset token.
func InvalidResetToken() *AppError {
	return &AppError{
		Code:    "INVALID_RESET_TOKEN",
		Message: "invalid or expired password reset token",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidResetToken,
	}
}

// InvalidVerificationToken creates a 400 error for an email verification
// token that does not match the one on record.
func InvalidVerificationToken() *AppError {
	return &AppError{
		Code:    "INVALID_VERIFICATION_TOKEN",
		Message: "invalid email verification token",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidVerificationToken,
	}
}

// EmailAlreadyVerified creates a 400 error.
func EmailAlreadyVerified() *AppError {
	return &AppError{
		Code:    "EMAIL_ALREADY_VERIFIED",
		Message: "email is already verified",
		Status:  http.StatusBadRequest,
		Err:     ErrEmailAlreadyVerified,
	}
}

// InvalidTwoFactorCode creates a 400 error for a TOTP code that fails
// verification.
func InvalidTwoFactorCode() *AppError {
	return &AppError{
		Code:    "INVALID_TWO_FACTOR_CODE",
		Message: "invalid two-factor authentication code",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidTwoFactorCode,
	}
}

// InvalidTwoFactorBackupCode creates a 400 error for an unknown or already
// consumed backup code.
func InvalidTwoFactorBackupCode() *AppError {
	return &AppError{
		Code:    "INVALID_TWO_FACTOR_BACKUP_CODE",
		Message: "invalid two-factor backup code",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidTwoFactorBackupCode,
	}
}

// TwoFactorAlreadyEnabled creates a 400 error.
func TwoFactorAlreadyEnabled() *AppError {
	return &AppError{
		Code:    "TWO_FACTOR_ALREADY_ENABLED",
		Message: "two-factor authentication is already enabled",
		Status:  http.StatusBadRequest,
		Err:     ErrTwoFactorAlreadyEnabled,
	}
}

// TwoFactorNotEnabled creates a 400 error.
func TwoFactorNotEnabled() *AppError {
	return &AppError{
		Code:    "TWO_FACTOR_NOT_ENABLED",
		Message: "two-factor authentication is not enabled",
		Status:  http.StatusBadRequest,
		Err:     ErrTwoFactorNotEnabled,
	}
}

// TwoFactorRequired creates a 403 error for access tokens issued before the
// second factor was verified.
func TwoFactorRequired() *AppError {
	return &AppError{
		Code:    "TWO_FACTOR_REQUIRED",
		Message: "two-factor verification required",
		Status:  http.StatusForbidden,
		Err:     ErrTwoFactorRequired,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
