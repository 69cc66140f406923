package domain

import (
	"time"
)

// Provider constants identify how an account authenticates.
const (
	ProviderEmail  = "email"
	ProviderGitHub = "github"
	ProviderGoogle = "google"
	ProviderOpenID = "openid"
)

// ValidProviders returns the set of recognized authentication providers.
func ValidProviders() []string {
	return []string{ProviderEmail, ProviderGitHub, ProviderGoogle, ProviderOpenID}
}

// IsValidProvider checks whether the given provider string is recognized.
func IsValidProvider(provider string) bool {
	for _, p := range ValidProviders() {
		if p == provider {
			return true
		}
	}
	return false
}

// User represents a registered account.
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	Locale           string    `json:"locale"`
	Picture          string    `json:"picture,omitempty"`
	Provider         string    `json:"provider"`
	EmailVerified    bool      `json:"email_verified"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasPassword reports whether the account authenticates with a local password
// (as opposed to an OAuth provider).
func (u *User) HasPassword() bool {
	return u.Provider == ProviderEmail
}

// Secrets holds every credential attached to a user. It is never serialized
// to JSON and never leaves the service layer.
type Secrets struct {
	ID                   string     `json:"-"`
	UserID               string     `json:"-"`
	Password             *string    `json:"-"`
	ResetToken           *string    `json:"-"`
	VerificationToken    *string    `json:"-"`
	TwoFactorSecret      *string    `json:"-"`
	TwoFactorBackupCodes []string   `json:"-"`
	RefreshToken         *string    `json:"-"`
	LastSignedIn         *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"-"`
	UpdatedAt            time.Time  `json:"-"`
}

// TokenPair holds an access and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthStatus describes how far through the sign-in flow a session is.
type AuthStatus string

const (
	// StatusAuthenticated means the session is fully established.
	StatusAuthenticated AuthStatus = "authenticated"

	// StatusTwoFactorRequired means the password was accepted but the
	// session is gated until a TOTP or backup code is verified.
	StatusTwoFactorRequired AuthStatus = "2fa_required"
)
