// Package config reads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vaughan-dsouza/staffdir/internal/utils"
)

const (
	UploadDisk = "disk"
	UploadS3   = "s3"
)

type Config struct {
	Port        string
	DatabaseURL string
	DBMaxOpen   int
	DBMaxIdle   int
	DBLifetime  time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	UploadBackend string
	UploadDir     string
	MaxUploadMB   int64
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string

	LoginRateLimit int
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Only safe behind a proxy that overwrites those headers.
	TrustProxy  bool
	CORSOrigins []string
	LogLevel    slog.Level
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	ttl, err := utils.ParseTTL(os.Getenv("TOKEN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("config: TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Port:        getenv("PORT", "5000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxOpen:   getenvInt("DB_MAX_OPEN", 25),
		DBMaxIdle:   getenvInt("DB_MAX_IDLE", 25),
		DBLifetime:  time.Duration(getenvInt("DB_MAX_LIFETIME", 300)) * time.Second,

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  ttl,

		AdminUsername: getenv("ADMIN_USERNAME", "admin"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		UploadBackend: strings.ToLower(getenv("UPLOAD_BACKEND", UploadDisk)),
		UploadDir:     getenv("UPLOAD_DIR", "uploads"),
		MaxUploadMB:   int64(getenvInt("MAX_UPLOAD_MB", 10)),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      getenv("S3_REGION", "us-east-1"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),

		LoginRateLimit: getenvInt("LOGIN_RATE_LIMIT", 10),
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "*")),
	}

	if v := os.Getenv("TRUST_PROXY"); v != "" {
		if cfg.TrustProxy, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("config: TRUST_PROXY: %w", err)
		}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	switch c.UploadBackend {
	case UploadDisk:
	case UploadS3:
		if c.S3Bucket == "" {
			return errors.New("config: S3_BUCKET is required for the s3 upload backend")
		}
	default:
		return fmt.Errorf("config: unknown UPLOAD_BACKEND %q", c.UploadBackend)
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("config: MAX_UPLOAD_MB must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
