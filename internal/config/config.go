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
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Payroll    PayrollConfig
	AI         AIConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type PayrollConfig struct {
	FinalizeConcurrency int
}

type AIConfig struct {
	ReviewConfidenceThreshold float64
	RunTimeout                time.Duration
}

type AttendanceConfig struct {
	StaleSessionAge time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris-payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Pipeline tuning
	concurrency, err := strconv.Atoi(getEnv("PAYROLL_FINALIZE_CONCURRENCY", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_FINALIZE_CONCURRENCY: %w", err)
	}
	config.Payroll = PayrollConfig{FinalizeConcurrency: concurrency}

	threshold, err := strconv.ParseFloat(getEnv("AI_REVIEW_CONFIDENCE_THRESHOLD", "0.80"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid AI_REVIEW_CONFIDENCE_THRESHOLD: %w", err)
	}
	runTimeout, err := time.ParseDuration(getEnv("AI_RUN_TIMEOUT", "6h"))
	if err != nil {
		return nil, fmt.Errorf("invalid AI_RUN_TIMEOUT: %w", err)
	}
	config.AI = AIConfig{
		ReviewConfidenceThreshold: threshold,
		RunTimeout:                runTimeout,
	}

	staleAge, err := time.ParseDuration(getEnv("ATTENDANCE_STALE_SESSION_AGE", "48h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_STALE_SESSION_AGE: %w", err)
	}
	config.Attendance = AttendanceConfig{StaleSessionAge: staleAge}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Payroll.FinalizeConcurrency < 1 {
		return fmt.Errorf("PAYROLL_FINALIZE_CONCURRENCY must be at least 1")
	}
	if c.AI.ReviewConfidenceThreshold <= 0 || c.AI.ReviewConfidenceThreshold > 1 {
		return fmt.Errorf("AI_REVIEW_CONFIDENCE_THRESHOLD must be in (0, 1]")
	}
	if c.AI.RunTimeout <= 0 {
		return fmt.Errorf("AI_RUN_TIMEOUT must be positive")
	}
	if c.Attendance.StaleSessionAge <= 0 {
		return fmt.Errorf("ATTENDANCE_STALE_SESSION_AGE must be positive")
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

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
