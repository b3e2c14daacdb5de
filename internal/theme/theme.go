// Package theme resolves symbolic color keys to concrete colors.
// Sessions store keys like "red" or "cyan", never hex values, so a
// theme switch or an edit to the theme file restyles every session the
// next time its key is resolved.
package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/termhost/termhost/internal/logging"
)

// Theme is one named color table.
type Theme struct {
	Name   string            `yaml:"name" json:"name"`
	Type   string            `yaml:"type" json:"type"` // "dark", "light", "custom"
	Colors map[string]string `yaml:"colors" json:"colors"`
}

// File is the on-disk theme file layout.
type File struct {
	Current string  `yaml:"current"`
	Themes  []Theme `yaml:"themes"`
}

// Manager holds the known themes and the active selection.
type Manager struct {
	mu      sync.RWMutex
	themes  map[string]Theme
	current string

	path    string
	log     *logging.Logger
	watcher *fsnotify.Watcher
}

// NewManager creates a manager with the built-in themes, overlaid with
// the theme file at path when one exists. An unknown current name falls
// back to "dark".
func NewManager(path, current string, log *logging.Logger) *Manager {
	m := &Manager{
		themes:  make(map[string]Theme),
		current: "dark",
		path:    path,
		log:     log,
	}

	for _, t := range builtins() {
		m.themes[t.Name] = t
	}

	if err := m.loadFile(); err != nil {
		log.Warn("Theme file unusable, using built-ins",
			zap.String("path", path),
			zap.Error(err))
	}

	if current != "" {
		if _, ok := m.themes[current]; ok {
			m.current = current
		}
	}

	return m
}

// Resolve maps a symbolic color key through the current theme. The
// second return is false when the key has no entry.
func (m *Manager) Resolve(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	theme, ok := m.themes[m.current]
	if !ok {
		return "", false
	}
	color, ok := theme.Colors[key]
	return color, ok
}

// Keys returns the color keys of the current theme, sorted.
func (m *Manager) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	theme, ok := m.themes[m.current]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(theme.Colors))
	for key := range theme.Colors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Current returns the active theme name.
func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SetCurrent switches the active theme.
func (m *Manager) SetCurrent(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.themes[name]; !ok {
		return fmt.Errorf("unknown theme: %s", name)
	}
	m.current = name
	return nil
}

// Reload re-reads the theme file in place.
func (m *Manager) Reload() error {
	return m.loadFile()
}

// Watch re-reads the theme file whenever it changes and then calls
// onChange. It returns immediately; Close stops the watcher. The watch
// is on the containing directory: editors save via temp file + rename,
// which replaces the inode a file-level watch would be pinned to.
func (m *Manager) Watch(onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create theme watcher: %w", err)
	}
	dir := filepath.Dir(m.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	m.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(m.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := m.loadFile(); err != nil {
					m.log.Warn("Theme reload failed", zap.Error(err))
					continue
				}
				m.log.Info("Theme file reloaded", zap.String("path", m.path))
				onChange()
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return nil
}

// Close stops the file watcher if one is running.
func (m *Manager) Close() {
	if m.watcher != nil {
		m.watcher.Close()
	}
}

// loadFile overlays themes from the file at m.path. A missing file is
// not an error.
func (m *Manager) loadFile() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read theme file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse theme file: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range file.Themes {
		if t.Name == "" || len(t.Colors) == 0 {
			continue
		}
		m.themes[t.Name] = t
	}
	if file.Current != "" {
		if _, ok := m.themes[file.Current]; ok {
			m.current = file.Current
		}
	}
	return nil
}

// builtins returns the themes available without any theme file.
func builtins() []Theme {
	return []Theme{
		{
			Name: "dark",
			Type: "dark",
			Colors: map[string]string{
				"red":    "#f38ba8",
				"orange": "#fab387",
				"yellow": "#f9e2af",
				"green":  "#a6e3a1",
				"cyan":   "#94e2d5",
				"blue":   "#89b4fa",
				"purple": "#cba6f7",
				"pink":   "#f5c2e7",
				"gray":   "#6c7086",
			},
		},
		{
			Name: "light",
			Type: "light",
			Colors: map[string]string{
				"red":    "#d20f39",
				"orange": "#fe640b",
				"yellow": "#df8e1d",
				"green":  "#40a02b",
				"cyan":   "#179299",
				"blue":   "#1e66f5",
				"purple": "#8839ef",
				"pink":   "#ea76cb",
				"gray":   "#7c7f93",
			},
		},
	}
}
