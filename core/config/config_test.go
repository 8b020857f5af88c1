package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Sync.Interval)
	assert.True(t, cfg.Sync.OnlineFallback)
	assert.Empty(t, cfg.Sync.HideList)
	assert.Equal(t, 0.7, cfg.Detection.RedetectMinConfidence)
	assert.Equal(t, 24*time.Hour, cfg.Catalog.TTL)
	assert.Empty(t, cfg.Catalog.URL)
	assert.False(t, cfg.Storage.Enabled)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SYNC_INTERVAL", "5m")
	t.Setenv("SYNC_HIDE_LIST", "internal.example.com,admin.example.com")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("CATALOG_REDIS_ADDR", "localhost:6379")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, []string{"internal.example.com", "admin.example.com"}, cfg.Sync.HideList)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "localhost:6379", cfg.Catalog.RedisAddr)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_PORT=9191\n"), 0o600)
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Unsetenv("SERVER_PORT") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.Server.Port)
}
