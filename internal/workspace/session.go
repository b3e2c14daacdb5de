// Package workspace is the authoritative model of terminal sessions:
// their identity, list order, split grouping, selection and focus, and
// the protocol that rebuilds all of it on a stateless display client.
// Every mutation happens on the controller's event loop; nothing in
// this package is safe for concurrent use from outside it.
package workspace

import (
	"bytes"
	"net/url"
	"time"

	"github.com/termhost/termhost/internal/shared/id"
)

// Session is one live terminal.
type Session struct {
	ID       id.TermID
	Ordinal  int
	Title    string
	Icon     string
	ColorKey string

	// Ready is true once the display client has acknowledged the pane
	// and the PTY has been sized. Output buffers while false.
	Ready bool

	// CWD is best-effort, sniffed from OSC 7 sequences in output.
	CWD string

	// Bell is set by a terminal bell while the session is not selected
	// and cleared the next time it is selected.
	Bell bool

	Cols      uint16
	Rows      uint16
	CreatedAt time.Time

	buffer     [][]byte
	readyTimer *time.Timer
}

// bufferOutput queues a chunk for delivery once the session is ready.
// It reports false when the chunk was dropped at the cap.
func (s *Session) bufferOutput(chunk []byte, limit int) bool {
	if len(s.buffer) >= limit {
		return false
	}
	owned := make([]byte, len(chunk))
	copy(owned, chunk)
	s.buffer = append(s.buffer, owned)
	return true
}

// flushBuffer returns the pending chunks in arrival order and clears
// the buffer.
func (s *Session) flushBuffer() [][]byte {
	chunks := s.buffer
	s.buffer = nil
	return chunks
}

// stopReadyTimer cancels the readiness timeout if one is armed.
func (s *Session) stopReadyTimer() {
	if s.readyTimer != nil {
		s.readyTimer.Stop()
		s.readyTimer = nil
	}
}

const (
	osc7Prefix = "\x1b]7;"
	bel        = "\a"
	st         = "\x1b\\"
)

// sniffCWD scans a chunk for an OSC 7 working-directory report and
// returns the new directory, or current when none is present. Sequences
// split across chunks are missed; the next full report corrects it.
func sniffCWD(chunk []byte, current string) string {
	dir := current
	rest := chunk
	for {
		start := bytes.Index(rest, []byte(osc7Prefix))
		if start < 0 {
			return dir
		}
		rest = rest[start+len(osc7Prefix):]

		end := bytes.IndexByte(rest, bel[0])
		stEnd := bytes.Index(rest, []byte(st))
		if end < 0 || (stEnd >= 0 && stEnd < end) {
			end = stEnd
		}
		if end < 0 {
			return dir
		}

		if parsed := parseFileURL(string(rest[:end])); parsed != "" {
			dir = parsed
		}
		rest = rest[end:]
	}
}

// parseFileURL extracts the path from a file:// URL, tolerating a bare
// path as some shells emit.
func parseFileURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme == "" {
		if raw[0] == '/' {
			return raw
		}
		return ""
	}
	if u.Scheme != "file" {
		return ""
	}
	return u.Path
}
