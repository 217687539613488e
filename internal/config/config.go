package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store types.
const (
	StoreFile      = "file"
	StoreSQLite    = "sqlite"
	StoreMySQL     = "mysql"
	StorePostgres  = "postgres"
	StoreSQLServer = "sqlserver"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port          string
	MaxUploadSize int
	Production    bool

	// Storage configuration
	StoreType string // file, sqlite, mysql, postgres, sqlserver
	DataDir   string
	EmblemDir string

	// Database configuration, used when StoreType is a SQL backend
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Sessions
	SessionSecret    string
	SessionGenerated bool

	// Coordination and push
	LockTimeout       time.Duration
	HeartbeatInterval time.Duration

	// Logging
	LogLevel  string
	LogFormat string // json or text
}

// Load loads configuration from the environment, after applying an optional .env file
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	dataDir := getEnv("DATA_DIR", "./data-store")
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		MaxUploadSize:     getEnvAsInt("MAX_UPLOAD_SIZE", 2*1024*1024),
		Production:        getEnv("APP_ENV", "development") == "production",
		StoreType:         getEnv("STORE_TYPE", StoreFile),
		DataDir:           dataDir,
		EmblemDir:         getEnv("EMBLEM_DIR", filepath.Join(dataDir, "emblems")),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", ""),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		LockTimeout:       getEnvAsDuration("LOCK_TIMEOUT", 5*time.Second),
		HeartbeatInterval: getEnvAsDuration("HEARTBEAT_INTERVAL", 25*time.Second),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}

	switch cfg.StoreType {
	case StoreFile:
	case StoreSQLite, StoreMySQL, StorePostgres, StoreSQLServer:
		if cfg.DBDatabase == "" {
			return nil, fmt.Errorf("DB_DATABASE is required for STORE_TYPE=%s", cfg.StoreType)
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_TYPE: %s", cfg.StoreType)
	}

	if cfg.LockTimeout <= 0 {
		return nil, fmt.Errorf("LOCK_TIMEOUT must be positive")
	}
	if cfg.HeartbeatInterval <= 0 {
		return nil, fmt.Errorf("HEARTBEAT_INTERVAL must be positive")
	}

	if cfg.SessionSecret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.SessionSecret = hex.EncodeToString(secret)
		cfg.SessionGenerated = true
	}

	return cfg, nil
}

// LogAttrs returns the non-secret configuration for startup logging.
func (c *Config) LogAttrs() []any {
	return []any{
		slog.String("port", c.Port),
		slog.String("store", c.StoreType),
		slog.String("data_dir", c.DataDir),
		slog.Duration("lock_timeout", c.LockTimeout),
		slog.Duration("heartbeat", c.HeartbeatInterval),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts a Go duration ("5s") or a bare number of milliseconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
