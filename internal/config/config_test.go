package config

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("LOGIN_ATTEMPT_WINDOW", "1m")
	t.Setenv("LOGIN_ATTEMPT_LIMIT", "5")
	t.Setenv("PUBLIC_RATE_LIMIT", "120")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("CSRF_KEY", "")
	t.Setenv("BLOB_BACKEND", "local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Minute, cfg.LoginAttemptWindow)
	assert.Equal(t, 5, cfg.LoginAttemptLimit)
	assert.Equal(t, 120, cfg.PublicRateLimit)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "local", cfg.BlobBackend)
}

func TestLoadKeepsDevSecretOutsideProduction(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("CSRF_KEY", "")
	t.Setenv("SESSION_SECRET", "")
	require.NoError(t, os.Unsetenv("SESSION_SECRET"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, devSessionSecret, cfg.SessionSecret)
}

func TestLoadRequiresSessionSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CSRF_KEY", "")

	for _, secret := range []string{"", "  ", devSessionSecret} {
		t.Setenv("SESSION_SECRET", secret)
		_, err := Load()
		require.Error(t, err, "secret %q", secret)
		assert.Contains(t, err.Error(), "SESSION_SECRET")
	}

	t.Setenv("SESSION_SECRET", "9f2c4e7a1b3d5f60")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9f2c4e7a1b3d5f60", cfg.SessionSecret)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("CSRF_KEY", "")
	t.Setenv("SESSION_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_TTL")

	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("LOGIN_ATTEMPT_LIMIT", "many")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOGIN_ATTEMPT_LIMIT")

	t.Setenv("LOGIN_ATTEMPT_LIMIT", "5")
	t.Setenv("CSRF_KEY", "too-short")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSRF_KEY")
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger := NewLogger(LoggingConfig{Level: "chatty", Format: "json"})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger = NewLogger(LoggingConfig{Level: "DEBUG", Format: "console"})
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}
