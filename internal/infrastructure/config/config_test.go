package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8090", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.Equal(t, 4096, cfg.Terminal.ReadChunkSize)
	assert.Empty(t, cfg.Terminal.Shell)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.Terminal.ReadChunkSize)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_DEV", "true")
	t.Setenv("TERMINAL_SHELL", "/bin/zsh")
	t.Setenv("TERMINAL_CHUNK_SIZE", "8192")
	t.Setenv("PROJECTS_PATH", "/tmp/projects.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "/bin/zsh", cfg.Terminal.Shell)
	assert.Equal(t, 8192, cfg.Terminal.ReadChunkSize)
	assert.Equal(t, "/tmp/projects.json", cfg.Projects.Path)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("TERMINAL_CHUNK_SIZE", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "garbage")

	cfg := LoadOrDefault()
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
}
