package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	t.Setenv("IDEABOX_HOME", t.TempDir())

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.True(t, cfg.PaletteSync)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("IDEABOX_HOME", home)

	cfg := DefaultConfig()
	cfg.LogLevel = "DEBUG"
	cfg.PollInterval = 2 * time.Second
	cfg.PaletteSync = false
	require.NoError(t, cfg.Save())

	_, err := os.Stat(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", got.LogLevel)
	assert.Equal(t, 2*time.Second, got.PollInterval)
	assert.False(t, got.PaletteSync)
	assert.Equal(t, filepath.Join(home, "mirror.db"), got.MirrorPath)
}

func TestLoadFile_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: [unterminated"), 0644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestDefaultConfig_EnvOverrides(t *testing.T) {
	t.Setenv("IDEABOX_HOME", t.TempDir())
	t.Setenv("IDEABOX_PALETTE_SYNC", "false")
	t.Setenv("IDEABOX_POLL_INTERVAL", "750ms")

	cfg := DefaultConfig()
	assert.False(t, cfg.PaletteSync)
	assert.Equal(t, 750*time.Millisecond, cfg.PollInterval)
}
