package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/resumeforge/internal/auth"
	"github.com/utafrali/resumeforge/pkg/health"
	"github.com/utafrali/resumeforge/pkg/middleware"
)

// RouterConfig bundles the handlers and cross-cutting pieces the router
// mounts.
type RouterConfig struct {
	AuthHandler     *AuthHandler
	UserHandler     *UserHandler
	ResumeHandler   *ResumeHandler
	PlatformHandler *PlatformHandler
	Tokens          *auth.TokenManager
	Users           UserResolver
	Health          *health.Handler
	Logger          *slog.Logger
	CORS            middleware.CORSConfig
	AuthRateRPS     int
	AuthRateBurst   int
	PprofCIDRs      []string
}

// NewRouter assembles the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("resumeforge"))
	r.Use(middleware.Tracing("resumeforge"))
	r.Use(middleware.RequestLogger(cfg.Logger))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	requireAuth := RequireAuth(cfg.Tokens)
	requireTwoFactor := RequireTwoFactor(cfg.Users)
	optionalAuth := OptionalAuth(cfg.Tokens)

	authRPS, authBurst := cfg.AuthRateRPS, cfg.AuthRateBurst
	if authRPS <= 0 {
		authRPS = 5
	}
	if authBurst <= 0 {
		authBurst = 10
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/features/flags", cfg.PlatformHandler.Flags)
		r.Get("/contributors/github", cfg.PlatformHandler.GitHubContributors)
		r.Get("/auth/providers", cfg.AuthHandler.Providers)

		// Public auth endpoints, rate limited per client IP.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(authRPS, authBurst, cfg.Logger))

			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.Refresh)
			r.Post("/auth/forgot-password", cfg.AuthHandler.ForgotPassword)
			r.Post("/auth/reset-password", cfg.AuthHandler.ResetPassword)
		})

		// Endpoints reachable with a half-open session, before the second
		// factor has been presented.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)
			r.Post("/auth/2fa/verify", cfg.AuthHandler.VerifyTwoFactor)
			r.Post("/auth/2fa/backup", cfg.AuthHandler.UseBackupCode)
		})

		// Fully authenticated endpoints.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(requireTwoFactor)

			r.Post("/auth/password", cfg.AuthHandler.ChangePassword)
			r.Post("/auth/verify-email", cfg.AuthHandler.VerifyEmail)
			r.Post("/auth/verify-email/resend", cfg.AuthHandler.ResendVerification)
			r.Post("/auth/2fa/setup", cfg.AuthHandler.SetupTwoFactor)
			r.Post("/auth/2fa/enable", cfg.AuthHandler.EnableTwoFactor)
			r.Post("/auth/2fa/disable", cfg.AuthHandler.DisableTwoFactor)

			r.Get("/users/me", cfg.UserHandler.GetMe)
			r.Patch("/users/me", cfg.UserHandler.UpdateMe)
			r.Delete("/users/me", cfg.UserHandler.DeleteMe)

			r.Route("/resumes", func(r chi.Router) {
				r.Post("/", cfg.ResumeHandler.Create)
				r.Post("/import", cfg.ResumeHandler.Import)
				r.Get("/", cfg.ResumeHandler.List)
				r.Get("/{id}", cfg.ResumeHandler.Get)
				r.Patch("/{id}", cfg.ResumeHandler.Update)
				r.Delete("/{id}", cfg.ResumeHandler.Delete)
				r.Post("/{id}/lock", cfg.ResumeHandler.SetLock)
				r.Get("/{id}/statistics", cfg.ResumeHandler.Statistics)
				r.Post("/{id}/print", cfg.ResumeHandler.Print)
				r.Post("/{id}/preview", cfg.ResumeHandler.Preview)
			})
		})

		// Public resume view. Authentication is optional so owners browsing
		// their own page are not counted as visitors.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.Get("/public/{username}/{slug}", cfg.ResumeHandler.GetPublic)
		})
	})

	return r
}
