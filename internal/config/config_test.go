package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.Security.SessionTTL)
	assert.Equal(t, time.Hour, cfg.Security.ResetTokenTTL)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.Equal(t, "flipyard_session", cfg.Security.CookieName)
	assert.Equal(t, 8*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, int64(100000), cfg.Inference.MaxBodyBytes)
	assert.Equal(t, 5, cfg.RateLimit.InquiryLimit)
	assert.False(t, cfg.Mail.Enabled())
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FLIPYARD_ENVIRONMENT", "production")
	t.Setenv("FLIPYARD_POSTGRES_DSN", "postgres://u:p@db:5432/flipyard")
	t.Setenv("FLIPYARD_MAIL_HOST", "smtp.example.com")
	t.Setenv("FLIPYARD_SECURITY_SESSIONTTL", "48h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://u:p@db:5432/flipyard", cfg.Postgres.DSN)
	assert.True(t, cfg.Mail.Enabled())
	assert.Equal(t, 48*time.Hour, cfg.Security.SessionTTL)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres.dsn")
	assert.Contains(t, err.Error(), "sessionsecret")

	cfg.Postgres.DSN = "postgres://localhost/flipyard"
	cfg.Security.SessionSecret = strings.Repeat("s", 32)
	assert.NoError(t, cfg.Validate())

	cfg.Security.BcryptCost = 4
	assert.Error(t, cfg.Validate())
}
