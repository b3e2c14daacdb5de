package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termhost/termhost/internal/config"
	"github.com/termhost/termhost/internal/workspace"
)

// newTestServer builds one full server. Metrics register on the global
// prometheus registry, so every test in this binary shares this single
// instance.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.State.Dir = t.TempDir()
	cfg.Theme.Path = filepath.Join(t.TempDir(), "theme.yaml")
	cfg.Theme.Watch = false
	cfg.Recording.Enabled = false
	cfg.RateLimit.Enabled = false
	cfg.Logging.Level = "error"
	cfg.Terminal.Shell = "/bin/sh"

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), out))
}

func TestServerEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("root reports service identity", func(t *testing.T) {
		w := doRequest(t, srv, "GET", "/", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]string
		decodeBody(t, w, &body)
		assert.Equal(t, "online", body["status"])
		assert.Equal(t, "termhost", body["service"])
	})

	t.Run("health reports counts from the loop", func(t *testing.T) {
		w := doRequest(t, srv, "GET", "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		decodeBody(t, w, &body)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "disconnected", body["phase"])
		assert.Equal(t, float64(0), body["sessions"])
		assert.Equal(t, float64(0), body["groups"])
	})

	t.Run("workspace starts disconnected and empty", func(t *testing.T) {
		w := doRequest(t, srv, "GET", "/workspace", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var info workspace.WorkspaceInfo
		decodeBody(t, w, &info)
		assert.Equal(t, "disconnected", info.Phase)
		assert.Empty(t, info.Sessions)
	})

	t.Run("theme defaults to dark with builtin keys", func(t *testing.T) {
		w := doRequest(t, srv, "GET", "/theme", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Current string   `json:"current"`
			Keys    []string `json:"keys"`
		}
		decodeBody(t, w, &body)
		assert.Equal(t, "dark", body.Current)
		assert.Contains(t, body.Keys, "red")
		assert.Contains(t, body.Keys, "blue")
	})

	t.Run("unknown theme is rejected", func(t *testing.T) {
		w := doRequest(t, srv, "PUT", "/theme", strings.NewReader(`{"name":"neon"}`))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("theme switch sticks", func(t *testing.T) {
		w := doRequest(t, srv, "PUT", "/theme", strings.NewReader(`{"name":"light"}`))
		require.Equal(t, http.StatusOK, w.Code)

		w = doRequest(t, srv, "GET", "/theme", nil)
		var body struct {
			Current string `json:"current"`
		}
		decodeBody(t, w, &body)
		assert.Equal(t, "light", body.Current)
	})

	t.Run("new session request spawns a shell", func(t *testing.T) {
		w := doRequest(t, srv, "POST", "/sessions", nil)
		require.Equal(t, http.StatusAccepted, w.Code)

		require.Eventually(t, func() bool {
			w := doRequest(t, srv, "GET", "/workspace", nil)
			if w.Code != http.StatusOK {
				return false
			}
			var info workspace.WorkspaceInfo
			if err := sonic.Unmarshal(w.Body.Bytes(), &info); err != nil {
				return false
			}
			return len(info.Sessions) == 1 && info.Selected == info.Sessions[0].ID
		}, 3*time.Second, 20*time.Millisecond, "session should appear in the workspace")
	})
}
