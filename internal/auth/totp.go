package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	backupCodeCount  = 8
	backupCodeLength = 10
)

var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// GenerateTwoFactorSecret creates a new TOTP secret for the given account and
// returns the secret together with the otpauth:// provisioning URI that
// authenticator apps consume.
func GenerateTwoFactorSecret(issuer, accountName string) (secret, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", "", fmt.Errorf("generate totp secret: %w", err)
	}
	return key.Secret(), key.URL(), nil
}

// ValidateTwoFactorCode checks a six-digit TOTP code against the secret,
// allowing one period of clock skew in either direction.
func ValidateTwoFactorCode(code, secret string) bool {
	valid, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totpOpts)
	return err == nil && valid
}

// GenerateBackupCodes creates a fresh set of single-use recovery codes.
func GenerateBackupCodes() ([]string, error) {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	codes := make([]string, backupCodeCount)
	for i := range codes {
		buf := make([]byte, backupCodeLength)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate backup code: %w", err)
		}
		for j, b := range buf {
			buf[j] = alphabet[int(b)%len(alphabet)]
		}
		codes[i] = string(buf)
	}
	return codes, nil
}

// ConsumeBackupCode checks the submitted code against the stored set using a
// constant-time comparison. On a match it returns the remaining codes and
// true; the matched code must never be accepted twice.
func ConsumeBackupCode(code string, stored []string) ([]string, bool) {
	for i, c := range stored {
		if subtle.ConstantTimeCompare([]byte(code), []byte(c)) == 1 {
			remaining := make([]string, 0, len(stored)-1)
			remaining = append(remaining, stored[:i]...)
			remaining = append(remaining, stored[i+1:]...)
			return remaining, true
		}
	}
	return stored, false
}

// GenerateRandomToken returns a URL-safe random token suitable for password
// reset and email verification links.
func GenerateRandomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
