package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cmlabs-hris/punchclock-analytics/internal/domain/attendance"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Runs       RunsConfig
	Attendance attendance.Config
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Name               string
	Version            string
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// RunsConfig controls stored analysis runs and uploads.
type RunsConfig struct {
	Retention         time.Duration
	RetentionInterval time.Duration
	MaxUploadBytes    int64
}

// Load reads configuration from the environment. A .env file in the working directory
// is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "10"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "1"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "punchclock_analytics"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	shutdownTimeout, err := time.ParseDuration(getEnv("APP_SHUTDOWN_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_SHUTDOWN_TIMEOUT: %w", err)
	}

	config.App = AppConfig{
		Name:               getEnv("APP_NAME", "punchclock-analytics"),
		Version:            getEnv("APP_VERSION", "v1.0.0"),
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		ShutdownTimeout:    shutdownTimeout,
	}

	// JWT configuration
	accessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	// Stored runs
	retention, err := time.ParseDuration(getEnv("RUN_RETENTION", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_RETENTION: %w", err)
	}
	retentionInterval, err := time.ParseDuration(getEnv("RUN_RETENTION_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_RETENTION_INTERVAL: %w", err)
	}
	maxUploadBytes, err := strconv.ParseInt(getEnv("UPLOAD_MAX_BYTES", strconv.Itoa(10<<20)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_BYTES: %w", err)
	}

	config.Runs = RunsConfig{
		Retention:         retention,
		RetentionInterval: retentionInterval,
		MaxUploadBytes:    maxUploadBytes,
	}

	// Attendance analysis configuration
	config.Attendance, err = loadAttendance()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadAttendance() (attendance.Config, error) {
	cfg := attendance.DefaultConfig()

	cfg.CheckInTime = getEnv("ATTENDANCE_CHECK_IN_TIME", cfg.CheckInTime)
	cfg.CheckOutTime = getEnv("ATTENDANCE_CHECK_OUT_TIME", cfg.CheckOutTime)
	cfg.RegularStart = getEnv("ATTENDANCE_REGULAR_START", cfg.RegularStart)
	cfg.RegularEnd = getEnv("ATTENDANCE_REGULAR_END", cfg.RegularEnd)
	cfg.MissingPunchCutoff = getEnv("ATTENDANCE_MISSING_PUNCH_CUTOFF", cfg.MissingPunchCutoff)
	cfg.Department = getEnv("ATTENDANCE_DEPARTMENT", cfg.Department)

	floats := []struct {
		key  string
		dest *float64
	}{
		{"ATTENDANCE_REGULAR_REQUIRED_HOURS", &cfg.RegularRequiredHours},
		{"ATTENDANCE_UNUSUAL_REQUIRED_HOURS", &cfg.UnusualRequiredHours},
	}
	for _, f := range floats {
		v, err := getEnvFloat(f.key, *f.dest)
		if err != nil {
			return attendance.Config{}, err
		}
		*f.dest = v
	}

	ints := []struct {
		key  string
		dest *int
	}{
		{"ATTENDANCE_SIGNIFICANT_LATE_MINUTES", &cfg.SignificantLateMinutes},
		{"ATTENDANCE_SIGNIFICANT_EARLY_MINUTES", &cfg.SignificantEarlyMinutes},
		{"ATTENDANCE_EXPECTED_PUNCHES", &cfg.ExpectedPunches},
		{"ATTENDANCE_TOP_N", &cfg.TopN},
		{"ATTENDANCE_WORKERS", &cfg.Workers},
	}
	for _, i := range ints {
		v, err := getEnvInt(i.key, *i.dest)
		if err != nil {
			return attendance.Config{}, err
		}
		*i.dest = v
	}

	if raw := os.Getenv("ATTENDANCE_WEEKEND_DAYS"); raw != "" {
		days, err := parseWeekdays(raw)
		if err != nil {
			return attendance.Config{}, fmt.Errorf("invalid ATTENDANCE_WEEKEND_DAYS: %w", err)
		}
		cfg.WeekendDays = days
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Runs.Retention < 0 {
		return fmt.Errorf("RUN_RETENTION must not be negative")
	}
	if c.Runs.Retention > 0 && c.Runs.RetentionInterval <= 0 {
		return fmt.Errorf("RUN_RETENTION_INTERVAL must be positive when RUN_RETENTION is set")
	}
	if c.Runs.MaxUploadBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if err := c.Attendance.Validate(); err != nil {
		return fmt.Errorf("invalid attendance configuration: %w", err)
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

// SlogLevel parses LOG_LEVEL, falling back to info.
func (a AppConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.LogLevel)); err != nil {
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

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	return splitList(value)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdays(raw string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, name := range splitList(raw) {
		key := strings.ToLower(name)
		wd, ok := weekdays[key]
		if !ok && len(key) >= 3 {
			for full, d := range weekdays {
				if strings.HasPrefix(full, key) {
					wd, ok = d, true
					break
				}
			}
		}
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		days = append(days, wd)
	}
	return days, nil
}

func splitList(raw string) []string {
	var result []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
