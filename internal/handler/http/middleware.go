package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/utafrali/resumeforge/internal/auth"
	"github.com/utafrali/resumeforge/internal/domain"
	apperrors "github.com/utafrali/resumeforge/pkg/errors"
	"github.com/utafrali/resumeforge/pkg/httputil"
)

type contextKey string

const claimsContextKey contextKey = "auth_claims"

// ClaimsFromContext returns the token claims stored by RequireAuth or
// OptionalAuth, if any.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}

// ContentTypeJSON rejects requests with a body that do not declare a JSON
// content type.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the access token from the Authentication cookie or,
// failing that, from the Authorization header.
func bearerToken(r *http.Request) string {
	if c, err := r.Cookie(accessCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// RequireAuth validates the access token and stores its claims in the
// request context.
func RequireAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), nil)
				return
			}

			claims, err := tokens.ValidateAccessToken(token)
			if err != nil {
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid or expired access token"), nil)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserResolver looks up the account behind a validated token.
type UserResolver interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// RequireTwoFactor gates routes that demand a fully verified session. It must
// run after RequireAuth. Whether the second factor is owed is decided by the
// account's current two-factor setting, not by anything baked into the token,
// so enabling two-factor immediately gates sessions issued before it.
func RequireTwoFactor(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				httputil.WriteError(w, r, apperrors.Unauthorized("missing access token"), nil)
				return
			}
			if !claims.TwoFactorVerified {
				user, err := users.GetByID(r.Context(), claims.UserID)
				if err != nil {
					httputil.WriteError(w, r, apperrors.Unauthorized("account not found"), nil)
					return
				}
				if user.TwoFactorEnabled {
					httputil.WriteError(w, r, apperrors.TwoFactorRequired(), nil)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OptionalAuth stores claims in the context when a valid access token is
// present but lets the request through either way.
func OptionalAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if claims, err := tokens.ValidateAccessToken(token); err == nil {
					ctx := context.WithValue(r.Context(), claimsContextKey, claims)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
