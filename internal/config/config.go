// Package config reads process configuration from the environment, loading a
// .env file first when one is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dukerupert/shoplist/internal/auth"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DevJWTSecret signs tokens outside production when no secret is set.
	DevJWTSecret = "shoplist-development-secret"
)

type Config struct {
	Port      string
	DBPath    string
	Env       string
	LogLevel  string
	LogFormat string

	JWTSecret string
	TokenTTL  time.Duration

	// WSOrigins lists extra hosts allowed to open the notification socket.
	WSOrigins []string

	Backup BackupConfig
}

// BackupConfig configures encrypted snapshots to S3-compatible storage.
type BackupConfig struct {
	Endpoint      string
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	Passphrase    string
	Interval      time.Duration
	RetentionDays int
}

// Enabled reports whether enough is configured to upload backups.
func (b BackupConfig) Enabled() bool {
	return b.Bucket != "" && b.AccessKey != "" && b.SecretKey != "" && b.Passphrase != ""
}

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// UsingDevSecret reports whether tokens are signed with the fallback secret.
func (c *Config) UsingDevSecret() bool { return c.JWTSecret == DevJWTSecret }

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      GetEnv("SHOPLIST_PORT", "8080"),
		DBPath:    GetEnv("SHOPLIST_DB_PATH", "shoplist.db"),
		Env:       GetEnv("SHOPLIST_ENV", EnvDevelopment),
		LogLevel:  GetEnv("SHOPLIST_LOG_LEVEL", "info"),
		LogFormat: GetEnv("SHOPLIST_LOG_FORMAT", "text"),
		JWTSecret: GetEnv("SHOPLIST_JWT_SECRET", ""),
		WSOrigins: listEnv("SHOPLIST_WS_ORIGINS"),
		Backup: BackupConfig{
			Endpoint:   GetEnv("SHOPLIST_BACKUP_S3_ENDPOINT", ""),
			Bucket:     GetEnv("SHOPLIST_BACKUP_S3_BUCKET", ""),
			Region:     GetEnv("SHOPLIST_BACKUP_S3_REGION", "auto"),
			AccessKey:  GetEnv("SHOPLIST_BACKUP_S3_ACCESS_KEY", ""),
			SecretKey:  GetEnv("SHOPLIST_BACKUP_S3_SECRET_KEY", ""),
			Passphrase: GetEnv("SHOPLIST_BACKUP_PASSPHRASE", ""),
		},
	}

	var errs []error
	var err error
	if cfg.TokenTTL, err = durationEnv("SHOPLIST_TOKEN_TTL", auth.DefaultTokenTTL); err != nil {
		errs = append(errs, err)
	}
	if cfg.Backup.Interval, err = durationEnv("SHOPLIST_BACKUP_INTERVAL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.Backup.RetentionDays, err = intEnv("SHOPLIST_BACKUP_RETENTION_DAYS", 30); err != nil {
		errs = append(errs, err)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			errs = append(errs, errors.New("SHOPLIST_JWT_SECRET is required in production"))
		} else {
			cfg.JWTSecret = DevJWTSecret
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("load config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// GetEnv returns the value of key, or defaultValue when it is unset or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return n, nil
}

// listEnv splits a comma separated variable, dropping empty entries.
func listEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
