package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Upstream   UpstreamConfig
	Attendance AttendanceConfig
	Session    SessionConfig
}

type DatabaseConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// JWTConfig holds gateway token configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// UpstreamConfig describes the remote attendance API the gateway calls.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AttendanceConfig holds the rules fed to the attendance evaluator.
// Cutoff is the single authoritative late cutoff, formatted HH:MM.
type AttendanceConfig struct {
	Cutoff            string
	Timezone          string
	MinimumDailyHours float64
}

type SessionConfig struct {
	Store         string // memory, postgres, sqlite
	TTL           time.Duration
	SealKey       string
	PruneInterval time.Duration
}

const (
	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
	SessionStoreSQLite   = "sqlite"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       dbPort,
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "attendance-gateway"),
		SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "./data/sessions.db"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// Upstream API configuration
	upstreamTimeout, err := time.ParseDuration(getEnv("UPSTREAM_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
	}

	config.Upstream = UpstreamConfig{
		BaseURL: strings.TrimRight(getEnv("UPSTREAM_BASE_URL", "http://localhost:8000/api"), "/"),
		Timeout: upstreamTimeout,
	}

	// Attendance rules
	minHours, err := strconv.ParseFloat(getEnv("MINIMUM_DAILY_HOURS", "9"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MINIMUM_DAILY_HOURS: %w", err)
	}

	config.Attendance = AttendanceConfig{
		Cutoff:            getEnv("ATTENDANCE_CUTOFF", "09:30"),
		Timezone:          getEnv("ATTENDANCE_TIMEZONE", "Asia/Kolkata"),
		MinimumDailyHours: minHours,
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Session configuration
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	pruneInterval, err := time.ParseDuration(getEnv("SESSION_PRUNE_INTERVAL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_PRUNE_INTERVAL: %w", err)
	}

	config.Session = SessionConfig{
		Store:         strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
		TTL:           sessionTTL,
		SealKey:       getEnv("SESSION_SEAL_KEY", ""),
		PruneInterval: pruneInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL is required")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.Attendance.MinimumDailyHours <= 0 {
		return fmt.Errorf("MINIMUM_DAILY_HOURS must be positive")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	switch c.Session.Store {
	case SessionStoreMemory:
	case SessionStorePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres session store")
		}
		if c.Session.SealKey == "" {
			return fmt.Errorf("SESSION_SEAL_KEY is required for persistent session stores")
		}
	case SessionStoreSQLite:
		if c.Session.SealKey == "" {
			return fmt.Errorf("SESSION_SEAL_KEY is required for persistent session stores")
		}
	default:
		return fmt.Errorf("unsupported SESSION_STORE: %s", c.Session.Store)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
