package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/resumeforge/pkg/config"
)

// Config holds all configuration for the resume service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PublicURL is the externally reachable base URL of the frontend,
	// used in mailed links and printable page URLs.
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:3000"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"resumeforge"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"resumeforge_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"resumeforge_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINS" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINS" envDefault:"10"`
	SlowQueryThresholdMs  int   `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// CacheTTL bounds how long public resumes stay cached.
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT. Access and refresh tokens are signed with separate secrets so
	// one can never stand in for the other.
	JWTAccessSecret  string        `env:"JWT_ACCESS_SECRET" envDefault:"change-this-to-a-secure-access-secret"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET" envDefault:"change-this-to-a-secure-refresh-secret"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_TOKEN_EXPIRY" envDefault:"48h"`

	// SMTP. When the URL is empty, outbound mail is logged instead of sent.
	SMTPURL  string `env:"SMTP_URL" envDefault:""`
	MailFrom string `env:"MAIL_FROM" envDefault:"noreply@resumeforge.local"`

	// Chrome / browserless
	ChromeURL   string `env:"CHROME_URL" envDefault:"http://localhost:3001"`
	ChromeToken string `env:"CHROME_TOKEN" envDefault:""`

	// S3 / MinIO object storage. When the bucket is empty, artifacts are
	// kept in memory, which only makes sense in development.
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT" envDefault:""`
	S3Bucket    string `env:"S3_BUCKET" envDefault:""`
	S3AccessKey string `env:"S3_ACCESS_KEY" envDefault:""`
	S3SecretKey string `env:"S3_SECRET_KEY" envDefault:""`
	S3PublicURL string `env:"S3_PUBLIC_URL" envDefault:"http://localhost:9000/resumeforge"`

	// TOTP
	TOTPIssuer string `env:"TOTP_ISSUER" envDefault:"ResumeForge"`

	// Feature flags surfaced at /api/v1/features/flags.
	DisableSignups   bool `env:"DISABLE_SIGNUPS" envDefault:"false"`
	DisableEmailAuth bool `env:"DISABLE_EMAIL_AUTH" envDefault:"false"`

	// Contributors endpoint upstream.
	GitHubContributorsURL string `env:"GITHUB_CONTRIBUTORS_URL" envDefault:"https://api.github.com/repos/utafrali/resumeforge/contributors"`

	// Rate limiting for the public auth endpoints.
	AuthRateRPS   int `env:"AUTH_RATE_RPS" envDefault:"5"`
	AuthRateBurst int `env:"AUTH_RATE_BURST" envDefault:"10"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Pprof debug endpoints are restricted to these CIDRs.
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	// In non-development environments, require explicitly set, strong JWT secrets.
	if cfg.Environment != "development" {
		for _, s := range []struct {
			name, value string
		}{
			{"JWT_ACCESS_SECRET", cfg.JWTAccessSecret},
			{"JWT_REFRESH_SECRET", cfg.JWTRefreshSecret},
		} {
			name, secret := s.name, s.value
			if strings.HasPrefix(secret, "change-this-") {
				return nil, fmt.Errorf("%s must be explicitly set via environment variable in %q mode", name, cfg.Environment)
			}
			if len(secret) < 32 {
				return nil, fmt.Errorf("%s must be at least 32 characters long, got %d", name, len(secret))
			}
		}
		if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
			return nil, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
		}
	}

	return cfg, nil
}

// SecureCookies reports whether session cookies must carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.PublicURL, "https://")
}
