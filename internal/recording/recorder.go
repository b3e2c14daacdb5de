// Package recording appends raw session output to zstd-compressed
// files, one per session. Recording is strictly best-effort: a failure
// disables that session's log and never touches the session itself.
package recording

import (
	"fmt"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/termhost/termhost/internal/logging"
	"github.com/termhost/termhost/internal/shared/id"
	"github.com/termhost/termhost/internal/shared/paths"
)

// Recorder writes per-session output logs under one directory. A nil
// *Recorder is a valid disabled recorder.
type Recorder struct {
	dir string
	log *logging.Logger

	mu    sync.Mutex
	files map[id.TermID]*sessionLog
}

type sessionLog struct {
	file    *os.File
	encoder *zstd.Encoder
	failed  bool
}

// NewRecorder creates the recording directory and a recorder over it.
func NewRecorder(dir string, log *logging.Logger) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recording dir: %w", err)
	}
	return &Recorder{
		dir:   dir,
		log:   log,
		files: make(map[id.TermID]*sessionLog),
	}, nil
}

// Write appends a chunk to the session's log, opening it on first use.
func (r *Recorder) Write(sessionID id.TermID, chunk []byte) {
	if r == nil || len(chunk) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.files[sessionID]
	if !ok {
		entry = r.open(sessionID)
		r.files[sessionID] = entry
	}
	if entry.failed {
		return
	}

	if _, err := entry.encoder.Write(chunk); err != nil {
		r.log.Warn("Recording write failed, disabling for session",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
		entry.encoder.Close()
		entry.file.Close()
		entry.failed = true
	}
}

// Close flushes and closes the session's log. Unknown sessions are a
// no-op.
func (r *Recorder) Close(sessionID id.TermID) {
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked(sessionID)
}

// CloseAll flushes every open log. Called on daemon shutdown.
func (r *Recorder) CloseAll() {
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for sessionID := range r.files {
		r.closeLocked(sessionID)
	}
}

func (r *Recorder) closeLocked(sessionID id.TermID) {
	entry, ok := r.files[sessionID]
	if !ok {
		return
	}
	delete(r.files, sessionID)
	if entry.failed {
		return
	}
	if err := entry.encoder.Close(); err != nil {
		r.log.Warn("Recording flush failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
	}
	entry.file.Close()
}

// open starts a session log; on failure it returns a poisoned entry so
// later writes stay cheap no-ops.
func (r *Recorder) open(sessionID id.TermID) *sessionLog {
	path := paths.Recording(r.dir, sessionID.String())
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		r.log.Warn("Recording open failed",
			zap.String("path", path),
			zap.Error(err))
		return &sessionLog{failed: true}
	}

	encoder, err := zstd.NewWriter(file)
	if err != nil {
		r.log.Warn("Recording encoder failed",
			zap.String("path", path),
			zap.Error(err))
		file.Close()
		return &sessionLog{failed: true}
	}

	return &sessionLog{file: file, encoder: encoder}
}
