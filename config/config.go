// Package config handles runtime configuration: development defaults overlaid
// with environment variables (optionally loaded from a .env file).
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the chat backend.
//
// Fields:
//   - Addr: HTTP bind address.
//   - DatabasePath: sqlite database file path (":memory:" for tests).
//   - JWTSecret: HMAC secret for signing tokens (HS256). Override in prod.
//   - TokenValidity: lifetime of issued tokens.
//   - StoryTTL: how long a story stays visible after posting.
//   - SweepInterval: how often the expired-story sweeper runs.
//   - SweepGrace: how far past expiry a story must be before it is
//     garbage-collected (keeps just-expired stories recoverable).
//   - PersistTimeout: bound on a single persistence call made by the relay.
//   - S3AccessKey / S3SecretKey / S3Bucket / S3Region / S3Endpoint: media host
//     settings. Media hosting is disabled when the access key is empty.
type Config struct {
	Addr           string
	DatabasePath   string
	JWTSecret      string
	TokenValidity  time.Duration
	StoryTTL       time.Duration
	SweepInterval  time.Duration
	SweepGrace     time.Duration
	PersistTimeout time.Duration

	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string

	SuperAdminEmail    string
	SuperAdminPassword string
}

// LoadDefaults populates Config with development defaults.
// NOTE: insecure for production; override via environment.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabasePath = "pulsechat.db"
	c.JWTSecret = "secretKey"
	c.TokenValidity = 7 * 24 * time.Hour
	c.StoryTTL = 24 * time.Hour
	c.SweepInterval = 24 * time.Hour
	c.SweepGrace = time.Hour
	c.PersistTimeout = 10 * time.Second
	c.S3Bucket = "media"
	c.S3Region = "us-east-1"
	c.S3Endpoint = "http://127.0.0.1:9000"
	c.SuperAdminEmail = "super_admin@chatapp.com"
	c.SuperAdminPassword = "SuperAdmin@123"
}

// Load builds a Config from defaults overlaid with environment variables.
// A .env file in the working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.LoadDefaults()

	cfg.Addr = getEnv("ADDR", cfg.Addr)
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenValidity = getEnvDuration("TOKEN_VALIDITY", cfg.TokenValidity)
	cfg.StoryTTL = getEnvDuration("STORY_TTL", cfg.StoryTTL)
	cfg.SweepInterval = getEnvDuration("SWEEP_INTERVAL", cfg.SweepInterval)
	cfg.SweepGrace = getEnvDuration("SWEEP_GRACE", cfg.SweepGrace)
	cfg.PersistTimeout = getEnvDuration("PERSIST_TIMEOUT", cfg.PersistTimeout)
	cfg.S3AccessKey = getEnv("S3_ACCESS_KEY", cfg.S3AccessKey)
	cfg.S3SecretKey = getEnv("S3_SECRET_KEY", cfg.S3SecretKey)
	cfg.S3Bucket = getEnv("S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = getEnv("S3_REGION", cfg.S3Region)
	cfg.S3Endpoint = getEnv("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.SuperAdminEmail = getEnv("SUPER_ADMIN_EMAIL", cfg.SuperAdminEmail)
	cfg.SuperAdminPassword = getEnv("SUPER_ADMIN_PASSWORD", cfg.SuperAdminPassword)

	return cfg
}

// MediaEnabled reports whether the external media host is configured.
func (c *Config) MediaEnabled() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}
