package workspace

import (
	"fmt"
	"time"

	"github.com/termhost/termhost/internal/pty"
	"github.com/termhost/termhost/internal/shared/id"
)

// PTYRunner is the controller's view of the process service. The real
// implementation is pty.Service; tests substitute a fake.
type PTYRunner interface {
	Spawn(sid id.TermID, cfg pty.SpawnConfig) error
	Write(sid id.TermID, data []byte) error
	Resize(sid id.TermID, cols, rows uint16) error
	Kill(sid id.TermID) error
}

// RegistryConfig carries the spawn defaults and buffering limits.
type RegistryConfig struct {
	Shell           string
	ShellArgs       []string
	DefaultCols     uint16
	DefaultRows     uint16
	ReadyTimeout    time.Duration
	OutputBufferCap int
}

// CreateConfig describes one session to create. Zero values mean
// "pick a default": empty ID generates one, Ordinal 0 acquires the
// lowest unused, empty Title derives from the ordinal.
type CreateConfig struct {
	ID       id.TermID
	Ordinal  int
	Title    string
	Icon     string
	ColorKey string
	CWD      string
	Cols     uint16
	Rows     uint16
}

// Registry owns the live sessions and their ordinals. All methods are
// loop-confined.
type Registry struct {
	sessions map[id.TermID]*Session
	ordinals *id.OrdinalPool
	gen      *id.Generator
	runner   PTYRunner
	cfg      RegistryConfig

	// onReadyTimeout is invoked from a timer goroutine when a session
	// misses its readiness window; it must post back into the loop.
	onReadyTimeout func(id.TermID)
}

func NewRegistry(runner PTYRunner, cfg RegistryConfig, onReadyTimeout func(id.TermID)) *Registry {
	return &Registry{
		sessions:       make(map[id.TermID]*Session),
		ordinals:       id.NewOrdinalPool(),
		gen:            id.Default(),
		runner:         runner,
		cfg:            cfg,
		onReadyTimeout: onReadyTimeout,
	}
}

// Create spawns a shell and registers the session. The ordinal in cfg
// must already be reserved by the caller; ordinal 0 acquires one here.
// On spawn failure nothing is registered and the acquired ordinal is
// released.
func (r *Registry) Create(cfg CreateConfig) (*Session, error) {
	sid := cfg.ID
	if sid == "" {
		sid = r.gen.NewTermID()
	}
	if _, exists := r.sessions[sid]; exists {
		return nil, fmt.Errorf("session %s already exists", sid)
	}

	ordinal := cfg.Ordinal
	acquired := false
	if ordinal <= 0 {
		ordinal = r.ordinals.Acquire()
		acquired = true
	}

	cols, rows := cfg.Cols, cfg.Rows
	if cols == 0 {
		cols = r.cfg.DefaultCols
	}
	if rows == 0 {
		rows = r.cfg.DefaultRows
	}

	err := r.runner.Spawn(sid, pty.SpawnConfig{
		Command: r.cfg.Shell,
		Args:    r.cfg.ShellArgs,
		Dir:     cfg.CWD,
		Cols:    cols,
		Rows:    rows,
	})
	if err != nil {
		if acquired {
			r.ordinals.Release(ordinal)
		}
		return nil, fmt.Errorf("spawn session: %w", err)
	}

	title := cfg.Title
	if title == "" {
		title = fmt.Sprintf("Terminal %d", ordinal)
	}

	s := &Session{
		ID:        sid,
		Ordinal:   ordinal,
		Title:     title,
		Icon:      cfg.Icon,
		ColorKey:  cfg.ColorKey,
		CWD:       cfg.CWD,
		Cols:      cols,
		Rows:      rows,
		CreatedAt: time.Now(),
	}
	r.sessions[sid] = s
	r.armReadyTimer(s)
	return s, nil
}

// Destroy kills the process, frees the ordinal, and forgets the
// session. It reports whether the session existed; destroying an
// unknown id is a no-op.
func (r *Registry) Destroy(sid id.TermID) bool {
	s, ok := r.sessions[sid]
	if !ok {
		return false
	}
	s.stopReadyTimer()
	delete(r.sessions, sid)
	r.ordinals.Release(s.Ordinal)
	_ = r.runner.Kill(sid)
	return true
}

// MarkReady flips the session to ready, cancels its timeout, and sizes
// the PTY to the client's reported dimensions.
func (r *Registry) MarkReady(sid id.TermID, cols, rows uint16) (*Session, bool) {
	s, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	s.stopReadyTimer()
	s.Ready = true
	if cols > 0 && rows > 0 {
		s.Cols, s.Rows = cols, rows
		_ = r.runner.Resize(sid, cols, rows)
	}
	return s, true
}

// ExpectReady returns a session to the unready state and re-arms its
// readiness timeout. Used when the workspace is replayed to a client
// that has yet to acknowledge the pane.
func (r *Registry) ExpectReady(sid id.TermID) {
	s, ok := r.sessions[sid]
	if !ok {
		return
	}
	s.Ready = false
	r.armReadyTimer(s)
}

// MarkAllUnready flips every session back to buffering without arming
// timers. Used when the client disconnects.
func (r *Registry) MarkAllUnready() {
	for _, s := range r.sessions {
		s.stopReadyTimer()
		s.Ready = false
	}
}

// BufferOutput queues a chunk for an unready session, reporting false
// when it was dropped at the cap or the session is unknown.
func (r *Registry) BufferOutput(sid id.TermID, chunk []byte) bool {
	s, ok := r.sessions[sid]
	if !ok {
		return false
	}
	return s.bufferOutput(chunk, r.cfg.OutputBufferCap)
}

// FlushBuffer drains and returns the pending chunks for a session.
func (r *Registry) FlushBuffer(sid id.TermID) [][]byte {
	s, ok := r.sessions[sid]
	if !ok {
		return nil
	}
	return s.flushBuffer()
}

// Reserve claims a specific ordinal ahead of Create, as hydration does
// for every persisted session before spawning any of them.
func (r *Registry) Reserve(ordinal int) bool {
	return r.ordinals.Reserve(ordinal)
}

// ReleaseOrdinal frees a reserved ordinal whose session never spawned.
func (r *Registry) ReleaseOrdinal(ordinal int) {
	r.ordinals.Release(ordinal)
}

func (r *Registry) Get(sid id.TermID) (*Session, bool) {
	s, ok := r.sessions[sid]
	return s, ok
}

func (r *Registry) Count() int {
	return len(r.sessions)
}

func (r *Registry) armReadyTimer(s *Session) {
	s.stopReadyTimer()
	if r.cfg.ReadyTimeout <= 0 || r.onReadyTimeout == nil {
		return
	}
	sid := s.ID
	s.readyTimer = time.AfterFunc(r.cfg.ReadyTimeout, func() {
		r.onReadyTimeout(sid)
	})
}
