package theme

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termhost/termhost/internal/logging"
)

func TestBuiltinResolve(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "theme.yaml"), "dark", logging.NewNop())

	color, ok := m.Resolve("red")
	require.True(t, ok)
	assert.Equal(t, "#f38ba8", color)

	_, ok = m.Resolve("mauve-ish")
	assert.False(t, ok)

	assert.Contains(t, m.Keys(), "cyan")
}

func TestThemeSwitchChangesResolution(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "theme.yaml"), "dark", logging.NewNop())

	dark, _ := m.Resolve("red")
	require.NoError(t, m.SetCurrent("light"))
	light, _ := m.Resolve("red")

	assert.NotEqual(t, dark, light)
	assert.Equal(t, "light", m.Current())

	require.Error(t, m.SetCurrent("nonexistent"))
	assert.Equal(t, "light", m.Current())
}

func TestFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.yaml")
	content := []byte(`current: corporate
themes:
  - name: corporate
    type: custom
    colors:
      red: "#aa0000"
      brand: "#123456"
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	m := NewManager(path, "", logging.NewNop())

	assert.Equal(t, "corporate", m.Current())
	color, ok := m.Resolve("brand")
	require.True(t, ok)
	assert.Equal(t, "#123456", color)

	// Built-ins survive the overlay
	require.NoError(t, m.SetCurrent("dark"))
	color, _ = m.Resolve("red")
	assert.Equal(t, "#f38ba8", color)
}

func TestBadFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - not yaml"), 0o644))

	m := NewManager(path, "dark", logging.NewNop())

	_, ok := m.Resolve("red")
	assert.True(t, ok, "built-ins should still resolve")
}

func TestWatchReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("current: dark\n"), 0o644))

	m := NewManager(path, "", logging.NewNop())
	defer m.Close()

	changed := make(chan struct{}, 1)
	require.NoError(t, m.Watch(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}))

	content := []byte(`current: night
themes:
  - name: night
    type: dark
    colors:
      red: "#990000"
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not fire")
	}

	assert.Equal(t, "night", m.Current())
	color, _ := m.Resolve("red")
	assert.Equal(t, "#990000", color)
}

// replaceAtomically saves content the way editors do: temp file in the
// same directory, then rename over the target.
func replaceAtomically(t *testing.T, path string, content []byte) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, content, 0o644))
	require.NoError(t, os.Rename(tmp, path))
}

func TestWatchSurvivesAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("current: dark\n"), 0o644))

	m := NewManager(path, "", logging.NewNop())
	defer m.Close()
	require.NoError(t, m.Watch(func() {}))

	replaceAtomically(t, path, []byte(`current: night
themes:
  - name: night
    type: dark
    colors:
      red: "#990000"
`))
	require.Eventually(t, func() bool { return m.Current() == "night" },
		5*time.Second, 10*time.Millisecond)

	// a second save must still be seen
	replaceAtomically(t, path, []byte(`current: noon
themes:
  - name: noon
    type: light
    colors:
      red: "#ee0000"
`))
	require.Eventually(t, func() bool { return m.Current() == "noon" },
		5*time.Second, 10*time.Millisecond)

	color, ok := m.Resolve("red")
	require.True(t, ok)
	assert.Equal(t, "#ee0000", color)
}
