// Package pty runs the backing pseudo-terminal processes. It exposes
// spawn/write/resize/kill keyed by session id and reports output and
// exits on a single event channel, so the consumer can process PTY
// traffic in its own loop instead of nested callbacks.
package pty

import (
	"fmt"
	"os"
	"os/exec"
	"sync"

	creack "github.com/creack/pty"

	"github.com/termhost/termhost/internal/shared/id"
)

// EventType discriminates PTY events.
type EventType int

const (
	// EventData carries a chunk of terminal output.
	EventData EventType = iota
	// EventExit reports the backing process exit code. It is always the
	// last event for a session and follows all of its data events.
	EventExit
	// EventError reports a non-fatal I/O failure.
	EventError
)

// Event is one occurrence on a session's PTY.
type Event struct {
	Type EventType
	ID   id.TermID
	Data []byte
	Code int
	Err  error
}

// SpawnConfig describes the process to run behind a session.
type SpawnConfig struct {
	Command string
	Args    []string
	Dir     string
	Env     map[string]string
	Cols    uint16
	Rows    uint16
}

// Service manages the PTY processes for all sessions.
type Service struct {
	procs  sync.Map // map[id.TermID]*proc
	events chan Event
	done   chan struct{}
	stop   sync.Once
}

type proc struct {
	id   id.TermID
	cmd  *exec.Cmd
	ptmx *os.File

	mu     sync.Mutex
	closed bool

	readerDone chan struct{}
}

// NewService creates a PTY service.
func NewService() *Service {
	return &Service{
		events: make(chan Event, 1024),
		done:   make(chan struct{}),
	}
}

// Events returns the shared event channel for all sessions.
func (s *Service) Events() <-chan Event {
	return s.events
}

// Spawn starts a process on a fresh PTY bound to sessionID. The caller
// owns the id; spawning twice on the same id is an error.
func (s *Service) Spawn(sessionID id.TermID, cfg SpawnConfig) error {
	if _, exists := s.procs.Load(sessionID); exists {
		return fmt.Errorf("session already spawned: %s", sessionID)
	}

	command := cfg.Command
	if command == "" {
		command = os.Getenv("SHELL")
		if command == "" {
			command = "/bin/bash"
		}
	}

	dir := cfg.Dir
	if dir == "" {
		dir = os.Getenv("HOME")
		if dir == "" {
			dir = "/tmp"
		}
	}

	cols := cfg.Cols
	if cols == 0 {
		cols = 80
	}
	rows := cfg.Rows
	if rows == 0 {
		rows = 24
	}

	cmd := exec.Command(command, cfg.Args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, "TERM=xterm-256color")
	for key, value := range cfg.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	ptmx, err := creack.StartWithSize(cmd, &creack.Winsize{
		Rows: rows,
		Cols: cols,
	})
	if err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	p := &proc{
		id:         sessionID,
		cmd:        cmd,
		ptmx:       ptmx,
		readerDone: make(chan struct{}),
	}
	s.procs.Store(sessionID, p)

	go s.readOutput(p)
	go s.waitProcess(p)

	return nil
}

// readOutput streams PTY output into the event channel until the PTY
// is closed. Read errors end the stream; after a process exit they are
// normal teardown, not failures.
func (s *Service) readOutput(p *proc) {
	defer close(p.readerDone)

	buf := make([]byte, 4096)
	for {
		n, err := p.ptmx.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if !s.emit(Event{Type: EventData, ID: p.id, Data: chunk}) {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// waitProcess reaps the child and emits the exit event once the reader
// has drained, keeping data-before-exit ordering per session.
func (s *Service) waitProcess(p *proc) {
	p.cmd.Wait()

	<-p.readerDone

	p.mu.Lock()
	alreadyClosed := p.closed
	p.closed = true
	p.mu.Unlock()

	p.ptmx.Close()

	// A session killed through Kill already reported its teardown.
	if alreadyClosed {
		return
	}

	code := p.cmd.ProcessState.ExitCode()
	s.emit(Event{Type: EventExit, ID: p.id, Code: code})
}

// Write sends input to a session's PTY.
func (s *Service) Write(sessionID id.TermID, data []byte) error {
	p, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return fmt.Errorf("session is closed: %s", sessionID)
	}

	if _, err := p.ptmx.Write(data); err != nil {
		return fmt.Errorf("failed to write to PTY: %w", err)
	}
	return nil
}

// Resize changes a session's terminal dimensions.
func (s *Service) Resize(sessionID id.TermID, cols, rows uint16) error {
	p, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("session is closed: %s", sessionID)
	}

	return creack.Setsize(p.ptmx, &creack.Winsize{
		Rows: rows,
		Cols: cols,
	})
}

// Kill terminates a session's process. Killing an unknown or already
// dead session is a no-op.
func (s *Service) Kill(sessionID id.TermID) error {
	value, ok := s.procs.Load(sessionID)
	if !ok {
		return nil
	}
	p := value.(*proc)

	p.mu.Lock()
	alreadyClosed := p.closed
	p.closed = true
	p.mu.Unlock()

	if !alreadyClosed {
		if p.cmd.Process != nil {
			p.cmd.Process.Kill()
		}
		p.ptmx.Close()
	}

	s.procs.Delete(sessionID)
	return nil
}

// Count returns the number of tracked sessions.
func (s *Service) Count() int {
	count := 0
	s.procs.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}

// Close kills every session and stops event delivery.
func (s *Service) Close() {
	s.stop.Do(func() {
		close(s.done)
	})

	s.procs.Range(func(key, _ interface{}) bool {
		s.Kill(key.(id.TermID))
		return true
	})
}

func (s *Service) lookup(sessionID id.TermID) (*proc, error) {
	value, ok := s.procs.Load(sessionID)
	if !ok {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	return value.(*proc), nil
}

// emit delivers an event unless the service is shutting down.
func (s *Service) emit(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}
