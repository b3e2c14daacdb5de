package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8818", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	assert.Equal(t, uint16(80), cfg.Terminal.DefaultCols)
	assert.Equal(t, uint16(24), cfg.Terminal.DefaultRows)
	assert.Equal(t, 512, cfg.Terminal.OutputBufferCap)
	assert.Positive(t, cfg.Terminal.ReadyTimeout)
	assert.Positive(t, cfg.Terminal.ExitGrace)

	assert.Equal(t, "dark", cfg.Theme.Name)
	assert.True(t, cfg.Theme.Watch)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TERMHOST_CONFIG_DIR", t.TempDir())
	t.Setenv("TERMHOST_PORT", "9901")
	t.Setenv("TERMHOST_READY_TIMEOUT", "3s")
	t.Setenv("TERMHOST_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9901", cfg.Server.Port)
	assert.Equal(t, "3s", cfg.Terminal.ReadyTimeout.String())
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched values keep defaults
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestFileOverlay(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TERMHOST_CONFIG_DIR", dir)

	content := []byte("[server]\nport = \"7007\"\n\n[terminal]\nshell = \"/bin/zsh\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), content, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7007", cfg.Server.Port)
	assert.Equal(t, "/bin/zsh", cfg.Terminal.Shell)
}

func TestEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TERMHOST_CONFIG_DIR", dir)
	t.Setenv("TERMHOST_PORT", "9100")

	content := []byte("[server]\nport = \"7007\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), content, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
}

func TestBadFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TERMHOST_CONFIG_DIR", dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not toml ["), 0o644))

	_, err := Load()
	require.Error(t, err)

	// LoadOrDefault still comes back usable
	cfg := LoadOrDefault()
	assert.Equal(t, "8818", cfg.Server.Port)
	assert.NotEmpty(t, cfg.State.Dir)
}

func TestDerivedPaths(t *testing.T) {
	stateDir := t.TempDir()
	t.Setenv("TERMHOST_STATE_DIR", stateDir)
	t.Setenv("TERMHOST_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, stateDir, cfg.State.Dir)
	assert.Equal(t, filepath.Join(stateDir, "recordings"), cfg.Recording.Dir)
	assert.NotEmpty(t, cfg.Theme.Path)
}
