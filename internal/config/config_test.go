package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"MT5_LOGIN", "MT5_PASSWORD", "MT5_SERVER", "MT5_PATH", "MT5_BRIDGE_ADDR",
	"MT5_DIAL_TIMEOUT", "MT5_CALL_TIMEOUT", "TRADER_DATA_DIR", "GO_PORT",
	"LOG_LEVEL", "LOG_PRETTY", "SNAPSHOT_SCHEDULE", "BACKUP_S3_ENDPOINT",
	"BACKUP_S3_REGION", "BACKUP_S3_BUCKET", "BACKUP_S3_ACCESS_KEY_ID",
	"BACKUP_S3_SECRET_ACCESS_KEY", "BACKUP_SCHEDULE", "BACKUP_RETENTION_DAYS",
	"SNAPSHOT_RETENTION_DAYS", "MAINTENANCE_SCHEDULE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
	t.Setenv("TRADER_DATA_DIR", filepath.Join(t.TempDir(), "data"))
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_SettingsFile(t *testing.T) {
	clearEnv(t)
	path := writeSettings(t, `{
		"username": 5012345,
		"password": "secret",
		"server": "MetaQuotes-Demo",
		"mt5Pathway": "C:/Program Files/MetaTrader 5/terminal64.exe",
		"symbols": ["USDJPY", "EURUSD"]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(5012345), cfg.Login)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "MetaQuotes-Demo", cfg.Server)
	assert.Equal(t, "C:/Program Files/MetaTrader 5/terminal64.exe", cfg.Path)
	assert.Equal(t, []string{"USDJPY", "EURUSD"}, cfg.Symbols)
	require.NoError(t, cfg.Validate())

	creds := cfg.Credentials()
	assert.Equal(t, int64(5012345), creds.Login)
	assert.Equal(t, cfg.Path, creds.Path)
}

func TestLoad_UsernameAsString(t *testing.T) {
	clearEnv(t)
	path := writeSettings(t, `{"username": "5012345", "password": "p", "server": "S"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5012345), cfg.Login)
}

func TestLoad_UsernameNotNumeric(t *testing.T) {
	clearEnv(t)
	path := writeSettings(t, `{"username": "trader", "server": "S"}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account number")
}

func TestLoad_MissingSettings(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrSettingsNotFound)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	path := writeSettings(t, `{"username": 1, "server": "S"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:18812", cfg.BridgeAddr)
	assert.Equal(t, 10*time.Second, cfg.DialTimeout)
	assert.Equal(t, time.Duration(0), cfg.CallTimeout)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, "@every 1m", cfg.SnapshotSchedule)
	assert.Equal(t, 90, cfg.SnapshotRetentionDays)
	assert.Equal(t, "0 0 2 * * *", cfg.MaintenanceSchedule)
	assert.Equal(t, "0 0 3 * * *", cfg.Backup.Schedule)
	assert.Equal(t, 30, cfg.Backup.RetentionDays)
	assert.Equal(t, "auto", cfg.Backup.Region)
	assert.False(t, cfg.Backup.Enabled())
	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.DirExists(t, cfg.DataDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeSettings(t, `{"username": 1, "password": "file", "server": "FileServer"}`)

	t.Setenv("MT5_LOGIN", "777")
	t.Setenv("MT5_PASSWORD", "env")
	t.Setenv("MT5_SERVER", "EnvServer")
	t.Setenv("MT5_CALL_TIMEOUT", "30")
	t.Setenv("GO_PORT", "9000")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("BACKUP_S3_BUCKET", "mt5-backups")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(777), cfg.Login)
	assert.Equal(t, "env", cfg.Password)
	assert.Equal(t, "EnvServer", cfg.Server)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)
	assert.Equal(t, 9000, cfg.Port)
	assert.False(t, cfg.LogPretty)
	assert.True(t, cfg.Backup.Enabled())
}

func TestLoad_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("MT5_LOGIN", "42")
	t.Setenv("MT5_SERVER", "Broker-Live")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Login)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"missing login", Config{Server: "S", BridgeAddr: "a"}, "login"},
		{"missing server", Config{Login: 1, BridgeAddr: "a"}, "server"},
		{"missing bridge", Config{Login: 1, Server: "S"}, "bridge"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
