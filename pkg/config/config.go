package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissing is returned by Validate when required settings are absent.
var ErrMissing = errors.New("missing required configuration")

type Config struct {
	Port        string
	AppEnv      string
	LogLevel    string
	DatabaseURL string
	DBMaxConns  int
	DBConnTTL   time.Duration

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	ResetCodeTTL  time.Duration
	ResetThrottle time.Duration
	RedisURL      string

	SMTP SMTP
}

// SMTP holds outgoing mail settings. Host empty means mail is only logged.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	return Config{
		Port:          getEnv("PORT", "8080"),
		AppEnv:        getEnv("APP_ENV", "production"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBMaxConns:    getEnvInt("DB_MAX_CONNS", 10),
		DBConnTTL:     time.Duration(getEnvInt("DB_CONN_LIFETIME_MINUTES", 60)) * time.Minute,
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTIssuer:     getEnv("JWT_ISSUER", "habit-tracker"),
		JWTTTL:        time.Duration(getEnvInt("JWT_TTL_HOURS", 30*24)) * time.Hour,
		ResetCodeTTL:  time.Duration(getEnvInt("RESET_CODE_TTL_MINUTES", 15)) * time.Minute,
		ResetThrottle: time.Duration(getEnvInt("RESET_THROTTLE_SECONDS", 60)) * time.Second,
		RedisURL:      os.Getenv("REDIS_URL"),
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "no-reply@habit-tracker.local"),
		},
	}
}

// Validate reports every required key that is unset.
func (c Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}

// IsDevelopment reports whether APP_ENV selects the development profile.
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	}
	return false
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
