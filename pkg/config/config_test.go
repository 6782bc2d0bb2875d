package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New(), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "file", cfg.CacheBackend)
	assert.Equal(t, "counter_data.json", cfg.DataFile)
	assert.Equal(t, 4, cfg.ImageConcurrency)
	assert.Equal(t, 60*time.Second, cfg.PageLoadTimeout())
	assert.Equal(t, 15*time.Second, cfg.ImageTimeout())
	assert.Equal(t, 12*time.Hour, cfg.RefreshInterval())
	assert.Equal(t, 30*time.Second, cfg.ReadCacheTTL())
	assert.Equal(t, 8.0, cfg.ImageRatePerSecond)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.ProxyURLs)
}

func TestLoadEnvFileAndEnvironment(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CACHE_BACKEND=redis\nIMAGE_CONCURRENCY=8\n"), 0o644))
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := load(viper.New(), envFile)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.CacheBackend)
	assert.Equal(t, 8, cfg.ImageConcurrency)
	assert.Equal(t, "9090", cfg.ServerPort)
}
