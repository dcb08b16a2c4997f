// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime knob of the site server.
type Config struct {
	Addr           string
	Production     bool
	LogLevel       string
	Version        string
	SiteURL        string
	PublicDir      string
	TrustedProxies int

	DatabaseURL string
	DBFile      string
	RedisURL    string

	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string

	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	LoginMaxFailures     int
	LoginLockout         time.Duration
	SubmitCooldown       time.Duration
	RateLimitPerMinute   int
	LeadsListMax         int

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPSecure bool
	MailFrom   string
	MailTo     []string
}

// LoadEnvFile reads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load builds a Config from the environment, falling back to defaults for
// unset or malformed values.
func Load() Config {
	port := getEnv("PORT", "3000")
	return Config{
		Addr:           ":" + port,
		Production:     os.Getenv("ENV") == "production",
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		Version:        getEnv("APP_VERSION", "dev"),
		SiteURL:        strings.TrimRight(getEnv("SITE_URL", "https://bk-trade.ru"), "/"),
		PublicDir:      getEnv("PUBLIC_DIR", "public"),
		TrustedProxies: getInt("TRUSTED_PROXIES", 0),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBFile:      getEnv("DB_FILE", "data/requests.db"),
		RedisURL:    os.Getenv("REDIS_URL"),

		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		SessionTTL:           getDuration("SESSION_TTL", 8*time.Hour),
		SessionSweepInterval: getDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		LoginMaxFailures:     getInt("LOGIN_MAX_FAILURES", 5),
		LoginLockout:         getDuration("LOGIN_LOCKOUT", 120*time.Second),
		SubmitCooldown:       getDuration("SUBMIT_COOLDOWN", 15*time.Second),
		RateLimitPerMinute:   getInt("RATE_LIMIT_PER_MINUTE", 60),
		LeadsListMax:         getInt("LEADS_LIST_MAX", 500),

		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   getInt("SMTP_PORT", 587),
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		SMTPSecure: os.Getenv("SMTP_SECURE") == "true",
		MailFrom:   getEnv("MAIL_FROM", "noreply@bk-trade.local"),
		MailTo:     splitList(getEnv("MAIL_TO", "sales@bk-trade.ru")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		slog.Warn("invalid integer setting, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration setting, using default", "key", key, "value", v, "default", fallback.String())
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
