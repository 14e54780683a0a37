package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHOPLIST_ENV", "")
	t.Setenv("SHOPLIST_JWT_SECRET", "")
	t.Setenv("SHOPLIST_PORT", "")
	t.Setenv("SHOPLIST_TOKEN_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "shoplist.db", cfg.DBPath)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 14*24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.UsingDevSecret())
	assert.Equal(t, "auto", cfg.Backup.Region)
	assert.Equal(t, 24*time.Hour, cfg.Backup.Interval)
	assert.Equal(t, 30, cfg.Backup.RetentionDays)
	assert.False(t, cfg.Backup.Enabled())
	assert.Empty(t, cfg.WSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SHOPLIST_PORT", "9090")
	t.Setenv("SHOPLIST_ENV", "production")
	t.Setenv("SHOPLIST_JWT_SECRET", "s3cret")
	t.Setenv("SHOPLIST_TOKEN_TTL", "2h")
	t.Setenv("SHOPLIST_BACKUP_S3_BUCKET", "bucket")
	t.Setenv("SHOPLIST_BACKUP_S3_ACCESS_KEY", "ak")
	t.Setenv("SHOPLIST_BACKUP_S3_SECRET_KEY", "sk")
	t.Setenv("SHOPLIST_BACKUP_PASSPHRASE", "pass")
	t.Setenv("SHOPLIST_BACKUP_RETENTION_DAYS", "7")
	t.Setenv("SHOPLIST_WS_ORIGINS", "app.example.com, ,*.example.org")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.UsingDevSecret())
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.Backup.Enabled())
	assert.Equal(t, 7, cfg.Backup.RetentionDays)
	assert.Equal(t, []string{"app.example.com", "*.example.org"}, cfg.WSOrigins)
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("SHOPLIST_ENV", "production")
	t.Setenv("SHOPLIST_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOPLIST_JWT_SECRET")
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SHOPLIST_ENV", "")
	t.Setenv("SHOPLIST_TOKEN_TTL", "fortnight")
	t.Setenv("SHOPLIST_BACKUP_RETENTION_DAYS", "-3")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOPLIST_TOKEN_TTL")
	assert.Contains(t, err.Error(), "SHOPLIST_BACKUP_RETENTION_DAYS")
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SHOPLIST_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("SHOPLIST_TEST_KEY", "default"))
	assert.Equal(t, "default", GetEnv("SHOPLIST_TEST_MISSING", "default"))
}
