package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"anoa.com/campushub/pkg/database"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	BlobBackend string
	UploadDir   string

	CloudinaryUploadFolder string

	B2AccountID string
	B2AppKey    string
	B2Bucket    string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
	CSRFKey       string

	LoginAttemptLimit  int
	LoginAttemptWindow time.Duration
	PublicRateLimit    int

	Logging LoggingConfig
}

type LoggingConfig struct {
	Level  string
	Format string
}

// devSessionSecret signs sessions outside production when SESSION_SECRET is unset.
const devSessionSecret = "change-me"

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		DatabaseURL: database.DSN(),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		BlobBackend: getEnv("BLOB_BACKEND", "local"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),

		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "campushub"),

		B2AccountID: os.Getenv("B2_ACCOUNT_ID"),
		B2AppKey:    os.Getenv("B2_APPLICATION_KEY"),
		B2Bucket:    os.Getenv("B2_BUCKET"),

		SessionSecret: getEnv("SESSION_SECRET", devSessionSecret),
		CSRFKey:       os.Getenv("CSRF_KEY"),

		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	var err error
	cfg.SessionTTL, err = parseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.LoginAttemptWindow, err = parseDuration(getEnv("LOGIN_ATTEMPT_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_ATTEMPT_WINDOW: %w", err)
	}
	cfg.LoginAttemptLimit, err = strconv.Atoi(getEnv("LOGIN_ATTEMPT_LIMIT", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_ATTEMPT_LIMIT: %w", err)
	}
	cfg.PublicRateLimit, err = strconv.Atoi(getEnv("PUBLIC_RATE_LIMIT", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid PUBLIC_RATE_LIMIT: %w", err)
	}
	cfg.CookieSecure, err = strconv.ParseBool(getEnv("COOKIE_SECURE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	if cfg.CSRFKey != "" && len(cfg.CSRFKey) != 32 {
		return nil, fmt.Errorf("invalid CSRF_KEY: must be exactly 32 bytes")
	}

	if cfg.IsProduction() {
		if secret := strings.TrimSpace(cfg.SessionSecret); secret == "" || secret == devSessionSecret {
			return nil, fmt.Errorf("SESSION_SECRET must be set in production")
		}
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
