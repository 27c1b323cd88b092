// Package config provides configuration management functionality.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/mt5-trader/internal/domain"
)

// ErrSettingsNotFound is returned when the settings file does not exist.
var ErrSettingsNotFound = errors.New("settings file not found")

// Config holds application configuration
type Config struct {
	Login    int64
	Password string
	Server   string
	Path     string   // Terminal executable
	Symbols  []string // Symbols enabled at startup

	BridgeAddr  string
	DialTimeout time.Duration
	CallTimeout time.Duration // 0 = wait for the terminal indefinitely

	DataDir          string // Base directory for all databases (always absolute)
	Port             int
	LogLevel         string
	LogPretty        bool
	SnapshotSchedule string
	// Days of snapshots kept by the maintenance job; 0 keeps everything
	SnapshotRetentionDays int
	MaintenanceSchedule   string
	Backup                BackupConfig
}

// BackupConfig holds S3-compatible storage settings for database backups
type BackupConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Schedule        string
	RetentionDays   int
}

// Enabled reports whether a bucket is configured.
func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// Settings is the on-disk settings.json document.
type Settings struct {
	Username AccountID `json:"username"`
	Password string    `json:"password"`
	Server   string    `json:"server"`
	Path     string    `json:"mt5Pathway"`
	Symbols  []string  `json:"symbols"`
}

// AccountID accepts the account number as a JSON number or a numeric string.
type AccountID int64

// UnmarshalJSON implements json.Unmarshaler.
func (a *AccountID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("username must be an account number, got %s", string(data))
	}
	*a = AccountID(n)
	return nil
}

// LoadSettings reads a settings file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSettingsNotFound, path)
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return &s, nil
}

// Load reads .env, the settings file and environment overrides.
// An empty settingsPath skips the settings file; credentials must then come
// from the environment.
func Load(settingsPath string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}

	if settingsPath != "" {
		s, err := LoadSettings(settingsPath)
		if err != nil {
			return nil, err
		}
		cfg.Login = int64(s.Username)
		cfg.Password = s.Password
		cfg.Server = s.Server
		cfg.Path = s.Path
		cfg.Symbols = s.Symbols
	}

	if v := os.Getenv("MT5_LOGIN"); v != "" {
		login, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("MT5_LOGIN must be an account number: %w", err)
		}
		cfg.Login = login
	}
	cfg.Password = getEnv("MT5_PASSWORD", cfg.Password)
	cfg.Server = getEnv("MT5_SERVER", cfg.Server)
	cfg.Path = getEnv("MT5_PATH", cfg.Path)

	cfg.BridgeAddr = getEnv("MT5_BRIDGE_ADDR", "127.0.0.1:18812")
	cfg.DialTimeout = time.Duration(getEnvAsInt("MT5_DIAL_TIMEOUT", 10)) * time.Second
	cfg.CallTimeout = time.Duration(getEnvAsInt("MT5_CALL_TIMEOUT", 0)) * time.Second
	cfg.Port = getEnvAsInt("GO_PORT", 8001)
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogPretty = getEnvAsBool("LOG_PRETTY", true)
	cfg.SnapshotSchedule = getEnv("SNAPSHOT_SCHEDULE", "@every 1m")
	cfg.SnapshotRetentionDays = getEnvAsInt("SNAPSHOT_RETENTION_DAYS", 90)
	cfg.MaintenanceSchedule = getEnv("MAINTENANCE_SCHEDULE", "0 0 2 * * *")
	cfg.Backup = BackupConfig{
		Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
		Region:          getEnv("BACKUP_S3_REGION", "auto"),
		Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
		AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
		Schedule:        getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
		RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
	}

	absDataDir, err := filepath.Abs(getEnv("TRADER_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg.DataDir = absDataDir

	return cfg, nil
}

// Validate checks that the session credentials are usable.
func (c *Config) Validate() error {
	if c.Login <= 0 {
		return fmt.Errorf("account login is required")
	}
	if c.Server == "" {
		return fmt.Errorf("trade server is required")
	}
	if c.BridgeAddr == "" {
		return fmt.Errorf("terminal bridge address is required")
	}
	return nil
}

// Credentials returns the session credentials.
func (c *Config) Credentials() domain.Credentials {
	return domain.Credentials{
		Login:    c.Login,
		Password: c.Password,
		Server:   c.Server,
		Path:     c.Path,
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
