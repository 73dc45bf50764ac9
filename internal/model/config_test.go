package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5001/api", cfg.Server.BaseURL)
	assert.Equal(t, 120, cfg.Server.RefreshIntervalSec)
	assert.NotEmpty(t, cfg.LogFile)
	assert.NotEmpty(t, cfg.CachePath)
}

func TestSaveAndLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	want := &AppConfig{
		Server: ServerConfig{
			BaseURL:            "https://api.example.com/api",
			RefreshIntervalSec: 30,
		},
		Display:   DisplayConfig{Theme: "default"},
		LogFile:   "/tmp/projecthub.log",
		CachePath: "/tmp/cache.db",
	}

	require.NoError(t, SaveConfig(path, want))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, want.Server.BaseURL, got.Server.BaseURL)
	assert.Equal(t, want.Server.RefreshIntervalSec, got.Server.RefreshIntervalSec)
	assert.Equal(t, want.LogFile, got.LogFile)
	assert.Equal(t, want.CachePath, got.CachePath)
}

func TestLoadConfigRejectsNonPositiveInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveConfig(path, &AppConfig{
		Server:    ServerConfig{BaseURL: "http://x", RefreshIntervalSec: -5},
		LogFile:   "l",
		CachePath: "c",
	}))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Server.RefreshIntervalSec)
}
