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
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	StorePostgres  = "postgres"
	StoreFirestore = "firestore"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Firestore  FirestoreConfig
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
	AccessExpiration string
	SSEExpiration    time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// AttendanceConfig controls the attendance session engine.
type AttendanceConfig struct {
	Timezone string
	// Store selects the backend for tokens and work days: postgres or firestore.
	Store           string
	StoreTimeout    time.Duration
	PurgeInterval   time.Duration
	QRCodeSize      int
	DefaultRotation time.Duration
}

type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hrpulse"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
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
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	sseExpiration, err := time.ParseDuration(getEnv("JWT_SSE_EXPIRATION_TIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_SSE_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"),
		SSEExpiration:    sseExpiration,
	}

	// Attendance configuration
	storeTimeout, err := time.ParseDuration(getEnv("ATTENDANCE_STORE_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_STORE_TIMEOUT: %w", err)
	}
	purgeInterval, err := time.ParseDuration(getEnv("ATTENDANCE_PURGE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_PURGE_INTERVAL: %w", err)
	}
	defaultRotation, err := time.ParseDuration(getEnv("ATTENDANCE_DEFAULT_ROTATION", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_DEFAULT_ROTATION: %w", err)
	}
	qrSize, err := strconv.Atoi(getEnv("ATTENDANCE_QR_SIZE", "256"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_QR_SIZE: %w", err)
	}

	config.Attendance = AttendanceConfig{
		Timezone:        getEnv("ATTENDANCE_TIMEZONE", "Asia/Jakarta"),
		Store:           strings.ToLower(getEnv("ATTENDANCE_STORE", StorePostgres)),
		StoreTimeout:    storeTimeout,
		PurgeInterval:   purgeInterval,
		QRCodeSize:      qrSize,
		DefaultRotation: defaultRotation,
	}

	config.Firestore = FirestoreConfig{
		ProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
		CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	slog.Debug("configuration loaded", "env", config.App.Env, "attendance_store", config.Attendance.Store)
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
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("invalid ATTENDANCE_TIMEZONE %q: %w", c.Attendance.Timezone, err)
	}
	if c.Attendance.StoreTimeout <= 0 {
		return fmt.Errorf("ATTENDANCE_STORE_TIMEOUT must be positive")
	}
	if c.Attendance.DefaultRotation <= 0 {
		return fmt.Errorf("ATTENDANCE_DEFAULT_ROTATION must be positive")
	}

	switch c.Attendance.Store {
	case StorePostgres:
	case StoreFirestore:
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("FIRESTORE_PROJECT_ID is required when ATTENDANCE_STORE=firestore")
		}
	default:
		return fmt.Errorf("unsupported ATTENDANCE_STORE %q", c.Attendance.Store)
	}
	return nil
}

// Location returns the timezone used to derive the attendance calendar day.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel maps LOG_LEVEL to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
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

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
