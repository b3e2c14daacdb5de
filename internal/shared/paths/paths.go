// Package paths resolves the filesystem locations the controller reads
// and writes: the workspace snapshot, the optional config and theme
// files, and session recordings. Everything lives under one state
// directory so a single rm -rf resets the daemon.
package paths

import (
	"os"
	"path/filepath"
)

// File names inside the state directory
const (
	SnapshotFile   = "workspace.json"
	ConfigFile     = "config.toml"
	ThemeFile      = "theme.yaml"
	RecordingsDir  = "recordings"
	RecordingExt   = ".out.zst"
	defaultAppDir  = "termhost"
	xdgStateEnv    = "XDG_STATE_HOME"
	xdgConfigEnv   = "XDG_CONFIG_HOME"
	stateOverride  = "TERMHOST_STATE_DIR"
	configOverride = "TERMHOST_CONFIG_DIR"
)

// StateDir returns the directory for mutable daemon state. Resolution
// order: $TERMHOST_STATE_DIR, $XDG_STATE_HOME/termhost,
// ~/.local/state/termhost.
func StateDir() string {
	if dir := os.Getenv(stateOverride); dir != "" {
		return dir
	}
	if dir := os.Getenv(xdgStateEnv); dir != "" {
		return filepath.Join(dir, defaultAppDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), defaultAppDir)
	}
	return filepath.Join(home, ".local", "state", defaultAppDir)
}

// ConfigDir returns the directory for user configuration. Resolution
// order: $TERMHOST_CONFIG_DIR, $XDG_CONFIG_HOME/termhost,
// ~/.config/termhost.
func ConfigDir() string {
	if dir := os.Getenv(configOverride); dir != "" {
		return dir
	}
	if dir := os.Getenv(xdgConfigEnv); dir != "" {
		return filepath.Join(dir, defaultAppDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), defaultAppDir)
	}
	return filepath.Join(home, ".config", defaultAppDir)
}

// Snapshot returns the workspace snapshot path under dir.
func Snapshot(dir string) string {
	return filepath.Join(dir, SnapshotFile)
}

// Theme returns the theme file path under dir.
func Theme(dir string) string {
	return filepath.Join(dir, ThemeFile)
}

// Config returns the config file path under dir.
func Config(dir string) string {
	return filepath.Join(dir, ConfigFile)
}

// Recordings returns the session recordings directory under dir.
func Recordings(dir string) string {
	return filepath.Join(dir, RecordingsDir)
}

// Recording returns the recording file path for a session id inside a
// recordings directory.
func Recording(recordingsDir, sessionID string) string {
	return filepath.Join(recordingsDir, sessionID+RecordingExt)
}
