package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 9000, cfg.ClickHouse().NativePort)
	assert.Equal(t, 64, cfg.ReportCacheSize)
	assert.Equal(t, 10*time.Second, cfg.QueryTimeout)
	assert.Equal(t, 7*24*time.Hour, cfg.DefaultWindow)
	assert.False(t, cfg.IsRelease())
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("CLICKHOUSE_HOST", "ch.internal")
	t.Setenv("CLICKHOUSE_NATIVE_PORT", "9440")
	t.Setenv("CLICKHOUSE_DB_NAME", "events")
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("REPORT_CACHE_SIZE", "8")
	t.Setenv("DEFAULT_WINDOW", "720h")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsRelease())
	assert.Equal(t, "ch.internal", cfg.ClickHouse().Host)
	assert.Equal(t, 9440, cfg.ClickHouse().NativePort)
	assert.Equal(t, "events", cfg.ClickHouse().DBName)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 8, cfg.ReportCacheSize)
	assert.Equal(t, 30*24*time.Hour, cfg.DefaultWindow)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FE_ORIGIN=https://dash.example.com\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("FE_ORIGIN") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://dash.example.com", cfg.FrontendOrigin)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("REPORT_CACHE_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORT_CACHE_SIZE")

	t.Setenv("REPORT_CACHE_SIZE", "4")
	t.Setenv("LOG_FORMAT", "xml")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")

	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("CLICKHOUSE_NATIVE_PORT", "not-a-port")
	_, err = Load()
	require.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	require.NoError(t, SetupLogging("debug", "json"))
	require.NoError(t, SetupLogging("info", "text"))
	require.Error(t, SetupLogging("loud", "text"))
}
