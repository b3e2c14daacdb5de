package workspace

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/termhost/termhost/internal/logging"
	"github.com/termhost/termhost/internal/protocol"
	"github.com/termhost/termhost/internal/pty"
	"github.com/termhost/termhost/internal/shared/id"
	"github.com/termhost/termhost/internal/state"
)

// fakeRunner stands in for the PTY service and records every call.
type fakeRunner struct {
	mu       sync.Mutex
	spawned  []id.TermID
	writes   map[id.TermID][]byte
	resizes  map[id.TermID][2]uint16
	killed   []id.TermID
	failIDs  map[id.TermID]bool
	failNext int
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		writes:  make(map[id.TermID][]byte),
		resizes: make(map[id.TermID][2]uint16),
		failIDs: make(map[id.TermID]bool),
	}
}

func (f *fakeRunner) Spawn(sid id.TermID, _ pty.SpawnConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext > 0 {
		f.failNext--
		return errors.New("spawn refused")
	}
	if f.failIDs[sid] {
		return errors.New("spawn refused")
	}
	f.spawned = append(f.spawned, sid)
	return nil
}

func (f *fakeRunner) Write(sid id.TermID, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes[sid] = append(f.writes[sid], data...)
	return nil
}

func (f *fakeRunner) Resize(sid id.TermID, cols, rows uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resizes[sid] = [2]uint16{cols, rows}
	return nil
}

func (f *fakeRunner) Kill(sid id.TermID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed = append(f.killed, sid)
	return nil
}

func (f *fakeRunner) spawnCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.spawned)
}

func (f *fakeRunner) wroteTo(sid id.TermID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.writes[sid])
}

func (f *fakeRunner) resizeOf(sid id.TermID) (uint16, uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.resizes[sid]
	return r[0], r[1]
}

func (f *fakeRunner) wasKilled(sid id.TermID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range f.killed {
		if k == sid {
			return true
		}
	}
	return false
}

func (f *fakeRunner) refuse(sids ...id.TermID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sid := range sids {
		f.failIDs[sid] = true
	}
}

func (f *fakeRunner) refuseNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = n
}

// fakeSink captures outbound messages in order.
type fakeSink struct {
	mu     sync.Mutex
	msgs   []protocol.Outbound
	closed bool
}

func (s *fakeSink) Send(msg protocol.Outbound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *fakeSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSink) all() []protocol.Outbound {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Outbound(nil), s.msgs...)
}

func (s *fakeSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func msgsOf[T protocol.Outbound](sink *fakeSink) []T {
	var out []T
	for _, m := range sink.all() {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func lastOf[T protocol.Outbound](sink *fakeSink) (T, bool) {
	var last T
	found := false
	for _, m := range sink.all() {
		if v, ok := m.(T); ok {
			last = v
			found = true
		}
	}
	return last, found
}

// memStore is an in-memory Store.
type memStore struct {
	mu    sync.Mutex
	snap  *state.Snapshot
	saves int
}

func (m *memStore) Load() (*state.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *memStore) Save(snap *state.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	m.saves++
	return nil
}

func (m *memStore) seed(snap *state.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
}

func (m *memStore) current() *state.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// palette is a mutable ColorResolver.
type palette struct {
	mu     sync.Mutex
	colors map[string]string
}

func newPalette() *palette {
	return &palette{colors: map[string]string{
		"red":  "#ff0000",
		"blue": "#0000ff",
	}}
}

func (p *palette) Resolve(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	hex, ok := p.colors[key]
	return hex, ok
}

func (p *palette) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.colors))
	for k := range p.colors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *palette) swap(colors map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.colors = colors
}

// scriptPrompter answers prompts with canned values.
type scriptPrompter struct {
	text    string
	textOK  bool
	color   string
	colorOK bool
	icon    string
	iconOK  bool
}

func (p *scriptPrompter) PromptText(context.Context, string, string) (string, bool) {
	return p.text, p.textOK
}

func (p *scriptPrompter) PickColor(context.Context, []string) (string, bool) {
	return p.color, p.colorOK
}

func (p *scriptPrompter) PickIcon(context.Context) (string, bool) {
	return p.icon, p.iconOK
}

// harness wires a controller to all fakes and runs its loop.
type harness struct {
	t      *testing.T
	ctrl   *Controller
	runner *fakeRunner
	events chan pty.Event
	store  *memStore
	sink   *fakeSink
	colors *palette
	prompt *scriptPrompter
}

func newHarness(t *testing.T, mut ...func(*Config, *Deps)) *harness {
	t.Helper()

	h := &harness{
		t:      t,
		runner: newFakeRunner(),
		events: make(chan pty.Event, 64),
		store:  &memStore{},
		colors: newPalette(),
		prompt: &scriptPrompter{},
	}

	cfg := Config{Shell: "/bin/sh"}
	deps := Deps{
		Runner:   h.runner,
		Events:   h.events,
		Store:    h.store,
		Colors:   h.colors,
		Prompter: h.prompt,
		Log:      logging.NewNop(),
	}
	for _, m := range mut {
		m(&cfg, &deps)
	}

	h.ctrl = NewController(cfg, deps)
	ctx, cancel := context.WithCancel(context.Background())
	go h.ctrl.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.ctrl.done
	})
	return h
}

// sync waits until the loop has drained everything queued before it.
func (h *harness) sync() {
	h.t.Helper()
	done := make(chan struct{})
	h.ctrl.post(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		h.t.Fatal("controller loop stalled")
	}
}

// settle waits for in-flight PTY events to be consumed, then syncs.
func (h *harness) settle() {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(h.events) > 0 {
		if time.Now().After(deadline) {
			h.t.Fatal("pty events not drained")
		}
		time.Sleep(time.Millisecond)
	}
	h.sync()
}

// connect attaches a fresh sink and completes hydration.
func (h *harness) connect() {
	h.t.Helper()
	h.sink = &fakeSink{}
	h.ctrl.AttachClient(h.sink)
	h.ctrl.HandleInbound(protocol.Ready{})
	h.sync()
}

func (h *harness) inbound(msg protocol.Inbound) {
	h.t.Helper()
	h.ctrl.HandleInbound(msg)
	h.sync()
}

func (h *harness) ack(sid id.TermID) {
	h.t.Helper()
	h.inbound(protocol.SessionReady{ID: sid, Cols: 80, Rows: 24})
}

func (h *harness) emit(ev pty.Event) {
	h.t.Helper()
	h.events <- ev
	h.settle()
}

func (h *harness) describe() WorkspaceInfo {
	h.t.Helper()
	info, err := h.ctrl.Describe(context.Background())
	require.NoError(h.t, err)
	return info
}

func (h *harness) ids() []id.TermID {
	h.t.Helper()
	info := h.describe()
	out := make([]id.TermID, 0, len(info.Sessions))
	for _, s := range info.Sessions {
		out = append(out, s.ID)
	}
	return out
}

// newTerminal creates a session through the host command and returns
// its id.
func (h *harness) newTerminal() id.TermID {
	h.t.Helper()
	before := len(h.ids())
	h.ctrl.NewTerminal()
	h.sync()
	ids := h.ids()
	require.Len(h.t, ids, before+1)
	return ids[len(ids)-1]
}

// split splits src and returns the new session's id.
func (h *harness) split(src id.TermID) id.TermID {
	h.t.Helper()
	h.inbound(protocol.SplitRequest{ID: src})
	created, ok := lastOf[protocol.SplitCreated](h.sink)
	require.True(h.t, ok, "no split-created message")
	return created.NewID
}
