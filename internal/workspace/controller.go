package workspace

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/termhost/termhost/internal/logging"
	"github.com/termhost/termhost/internal/monitoring"
	"github.com/termhost/termhost/internal/protocol"
	"github.com/termhost/termhost/internal/pty"
	"github.com/termhost/termhost/internal/recording"
	"github.com/termhost/termhost/internal/shared/id"
	"github.com/termhost/termhost/internal/state"
)

const maxTitleLen = 64

// Phase tracks where the controller is in the client lifecycle.
type Phase int

const (
	PhaseDisconnected Phase = iota
	PhaseAwaitingReady
	PhaseHydrating
	PhaseSteady
)

func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseAwaitingReady:
		return "awaiting-ready"
	case PhaseHydrating:
		return "hydrating"
	case PhaseSteady:
		return "steady"
	default:
		return "unknown"
	}
}

// Sink delivers outbound messages to the attached display client.
// Send must not block the loop; implementations buffer or drop.
type Sink interface {
	Send(msg protocol.Outbound)
	Close()
}

// Store persists workspace snapshots.
type Store interface {
	Load() (*state.Snapshot, error)
	Save(snap *state.Snapshot) error
}

// ColorResolver turns symbolic color keys into concrete colors.
type ColorResolver interface {
	Resolve(key string) (string, bool)
	Keys() []string
}

// Config carries the controller's tunables. Zero values fall back to
// the defaults in withDefaults.
type Config struct {
	Shell            string
	ShellArgs        []string
	DefaultCols      uint16
	DefaultRows      uint16
	ReadyTimeout     time.Duration
	ExitGrace        time.Duration
	OutputBufferCap  int
	DefaultListWidth int
}

func (cfg Config) withDefaults() Config {
	if cfg.DefaultCols == 0 {
		cfg.DefaultCols = 80
	}
	if cfg.DefaultRows == 0 {
		cfg.DefaultRows = 24
	}
	if cfg.OutputBufferCap == 0 {
		cfg.OutputBufferCap = 512
	}
	if cfg.DefaultListWidth == 0 {
		cfg.DefaultListWidth = 240
	}
	return cfg
}

// Deps are the controller's collaborators. Runner and Events are
// required; the rest may be nil and degrade to no-ops.
type Deps struct {
	Runner   PTYRunner
	Events   <-chan pty.Event
	Store    Store
	Colors   ColorResolver
	Prompter Prompter
	Recorder *recording.Recorder
	Metrics  *monitoring.Metrics
	Log      *logging.Logger
}

// Controller owns the workspace model and serializes every mutation
// through one event loop. Inbound messages, PTY events, timer firings,
// and host commands all funnel into Run's select.
type Controller struct {
	cfg      Config
	registry *Registry
	groups   *Groups
	order    *Order

	runner   PTYRunner
	events   <-chan pty.Event
	store    Store
	colors   ColorResolver
	prompter Prompter
	recorder *recording.Recorder
	metrics  *monitoring.Metrics
	log      *logging.Logger

	phase     Phase
	client    Sink
	listWidth int
	hydrated  bool

	ctx      context.Context
	commands chan func()
	done     chan struct{}
}

func NewController(cfg Config, deps Deps) *Controller {
	cfg = cfg.withDefaults()
	if deps.Log == nil {
		deps.Log = logging.NewNop()
	}
	if deps.Prompter == nil {
		deps.Prompter = NoPrompter{}
	}
	if deps.Colors == nil {
		deps.Colors = noColors{}
	}

	c := &Controller{
		cfg:       cfg,
		groups:    NewGroups(),
		order:     NewOrder(),
		runner:    deps.Runner,
		events:    deps.Events,
		store:     deps.Store,
		colors:    deps.Colors,
		prompter:  deps.Prompter,
		recorder:  deps.Recorder,
		metrics:   deps.Metrics,
		log:       deps.Log,
		phase:     PhaseDisconnected,
		listWidth: cfg.DefaultListWidth,
		ctx:       context.Background(),
		commands:  make(chan func(), 1024),
		done:      make(chan struct{}),
	}
	c.registry = NewRegistry(deps.Runner, RegistryConfig{
		Shell:           cfg.Shell,
		ShellArgs:       cfg.ShellArgs,
		DefaultCols:     cfg.DefaultCols,
		DefaultRows:     cfg.DefaultRows,
		ReadyTimeout:    cfg.ReadyTimeout,
		OutputBufferCap: cfg.OutputBufferCap,
	}, func(sid id.TermID) {
		c.post(func() { c.handleReadyTimeout(sid) })
	})
	return c
}

// Run drives the event loop until ctx is cancelled. It must be called
// exactly once.
func (c *Controller) Run(ctx context.Context) {
	c.ctx = ctx
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return
		case cmd := <-c.commands:
			cmd()
		case ev, ok := <-c.events:
			if !ok {
				c.events = nil
				continue
			}
			c.handlePTYEvent(ev)
		}
	}
}

// post queues a command for the loop, dropping it once Run has exited.
func (c *Controller) post(cmd func()) {
	select {
	case c.commands <- cmd:
	case <-c.done:
	}
}

func (c *Controller) shutdown() {
	c.persist()
	c.recorder.CloseAll()
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}

// ============================================================================
// Public surface (safe from any goroutine)
// ============================================================================

// AttachClient installs the display client sink, replacing and closing
// any previous one. No pane is acknowledged on a fresh sink, so every
// session drops back to buffering until the client reports ready.
func (c *Controller) AttachClient(sink Sink) {
	c.post(func() {
		if c.client != nil {
			c.client.Close()
		}
		c.client = sink
		c.phase = PhaseAwaitingReady
		c.order.ClearFocus()
		c.registry.MarkAllUnready()
	})
}

// DetachClient removes the sink if it is still the attached one. Every
// session returns to buffering until the next client hydrates.
func (c *Controller) DetachClient(sink Sink) {
	c.post(func() {
		if c.client != sink {
			return
		}
		c.client = nil
		c.phase = PhaseDisconnected
		// No surface, no keyboard target.
		c.order.ClearFocus()
		c.registry.MarkAllUnready()
	})
}

// HandleInbound queues one decoded client message for dispatch.
func (c *Controller) HandleInbound(msg protocol.Inbound) {
	c.post(func() { c.dispatch(msg) })
}

// NewTerminal creates a standalone session at the end of the list and
// selects it. This is the host-command path; clients create sessions
// only through splits.
func (c *Controller) NewTerminal() {
	c.post(func() {
		if c.spawnDefaultSession() != nil {
			c.persist()
		}
	})
}

// OnThemeChanged re-resolves every session's color key against the
// active theme and pushes the results.
func (c *Controller) OnThemeChanged() {
	c.post(func() {
		for _, sid := range c.order.List() {
			s, ok := c.registry.Get(sid)
			if !ok || s.ColorKey == "" {
				continue
			}
			if hex, resolved := c.colors.Resolve(s.ColorKey); resolved {
				c.send(protocol.ColorUpdated{ID: sid, Color: hex})
			}
		}
	})
}

// ============================================================================
// Dispatch
// ============================================================================

func (c *Controller) dispatch(msg protocol.Inbound) {
	c.metrics.RecordWSMessage("in", string(msg.InboundType()))
	switch m := msg.(type) {
	case protocol.Ready:
		c.handleReady()
	case protocol.SessionReady:
		c.handleSessionReady(m)
	case protocol.Input:
		c.handleInput(m)
	case protocol.Resize:
		c.handleResize(m)
	case protocol.Select:
		c.handleSelect(m)
	case protocol.SplitRequest:
		c.handleSplit(m)
	case protocol.UnsplitRequest:
		c.handleUnsplit(m)
	case protocol.JoinRequest:
		c.handleJoin(m)
	case protocol.ReorderRequest:
		c.handleReorder(m)
	case protocol.GroupReorderRequest:
		c.handleGroupReorder(m)
	case protocol.CloseRequest:
		c.destroySession(m.ID)
	case protocol.RenameRequest:
		c.handleRename(m)
	case protocol.ColorPickRequest:
		c.handleColorPick(m)
	case protocol.IconPickRequest:
		c.handleIconPick(m)
	case protocol.WidthChange:
		c.handleWidthChange(m)
	case protocol.GroupSelectedRequest:
		c.handleGroupSelected(m)
	case protocol.Bell:
		c.handleBell(m)
	default:
		c.log.Debug("unhandled inbound message", zap.String("type", string(msg.InboundType())))
	}
}

// ============================================================================
// Session lifecycle
// ============================================================================

func (c *Controller) handleSessionReady(m protocol.SessionReady) {
	if _, ok := c.registry.MarkReady(m.ID, m.Cols, m.Rows); !ok {
		c.log.Debug("session-ready for unknown session", zap.String("session_id", string(m.ID)))
		return
	}
	for _, chunk := range c.registry.FlushBuffer(m.ID) {
		c.send(protocol.Data{ID: m.ID, Bytes: chunk})
	}
}

func (c *Controller) handleReadyTimeout(sid id.TermID) {
	s, ok := c.registry.Get(sid)
	if !ok || s.Ready {
		return
	}
	c.log.Warn("session never became ready, destroying",
		zap.String("session_id", string(sid)),
		zap.Duration("timeout", c.cfg.ReadyTimeout))
	c.metrics.RecordReadyTimeout()
	c.send(protocol.ErrorNotice{
		Context:   "ready-timeout",
		SessionID: sid,
		Message:   "terminal did not become ready and was closed",
	})
	c.destroySession(sid)
}

func (c *Controller) handleSplit(m protocol.SplitRequest) {
	src, ok := c.registry.Get(m.ID)
	if !ok {
		return
	}
	created, err := c.registry.Create(CreateConfig{
		CWD:  src.CWD,
		Cols: src.Cols,
		Rows: src.Rows,
	})
	if err != nil {
		c.log.Error("split spawn failed",
			zap.String("source_id", string(m.ID)), zap.Error(err))
		c.metrics.RecordSpawnFailure()
		c.send(protocol.ErrorNotice{
			Context:   "split",
			SessionID: m.ID,
			Message:   "could not start a new terminal",
		})
		return
	}
	c.metrics.RecordSessionCreated()

	gid, isNew := c.groups.SplitAttach(m.ID, created.ID)
	c.order.InsertAfter(created.ID, m.ID)

	if isNew {
		grp, _ := c.groups.Get(gid)
		c.send(protocol.GroupCreated{ID: gid, Members: append([]id.TermID(nil), grp.Members...)})
	}
	c.send(protocol.SplitCreated{
		ID:          m.ID,
		NewID:       created.ID,
		GroupID:     gid,
		InsertAfter: m.ID,
	})
	c.syncGauges()
	c.persist()
}

// destroySession tears a session down everywhere: process, recorder,
// group, order, persistence. Selection moves to a neighbor, and killing
// the last session auto-creates a replacement.
func (c *Controller) destroySession(sid id.TermID) bool {
	if _, ok := c.registry.Get(sid); !ok {
		return false
	}
	wasSelected := c.order.Selected() == sid
	oldIdx := c.order.IndexOf(sid)

	c.registry.Destroy(sid)
	c.recorder.Close(sid)
	gid, dissolved, _ := c.groups.Remove(sid)
	c.order.Remove(sid)

	c.send(protocol.SessionRemoved{ID: sid})
	if dissolved {
		c.send(protocol.GroupDestroyed{ID: gid})
	}
	c.metrics.RecordSessionRemoved()

	switch {
	case c.registry.Count() == 0:
		c.spawnDefaultSession()
	case wasSelected:
		list := c.order.List()
		idx := oldIdx
		if idx >= len(list) {
			idx = len(list) - 1
		}
		if idx < 0 {
			idx = 0
		}
		c.selectAndFocus(list[idx])
	default:
		c.revalidateFocus()
	}

	c.syncGauges()
	c.persist()
	return true
}

// spawnDefaultSession creates a plain session at the end of the list
// and makes it the selected, focused one. Returns nil on spawn failure.
func (c *Controller) spawnDefaultSession() *Session {
	s, err := c.registry.Create(CreateConfig{})
	if err != nil {
		c.log.Error("default session spawn failed", zap.Error(err))
		c.metrics.RecordSpawnFailure()
		c.send(protocol.ErrorNotice{Context: "spawn", Message: "could not start a terminal"})
		return nil
	}
	c.metrics.RecordSessionCreated()

	var anchor id.TermID
	if list := c.order.List(); len(list) > 0 {
		anchor = list[len(list)-1]
	}
	c.order.Append(s.ID)
	c.send(protocol.SessionCreated{
		ID:          s.ID,
		Title:       s.Title,
		MakeActive:  true,
		InsertAfter: anchor,
	})
	c.selectAndFocus(s.ID)
	c.syncGauges()
	return s
}

func (c *Controller) selectAndFocus(sid id.TermID) {
	if c.order.Select(sid) {
		c.send(protocol.SessionSelected{ID: sid})
	}
	if s, ok := c.registry.Get(sid); ok {
		s.Bell = false
	}
	if c.order.Focus(sid) {
		c.send(protocol.Focus{})
	}
}

// ============================================================================
// Input, resize, selection
// ============================================================================

func (c *Controller) handleInput(m protocol.Input) {
	if _, ok := c.registry.Get(m.ID); !ok {
		return
	}
	if err := c.runner.Write(m.ID, []byte(m.Data)); err != nil {
		c.log.Debug("input write failed",
			zap.String("session_id", string(m.ID)), zap.Error(err))
	}
}

// handleResize applies pane dimensions. For a grouped session the
// reported width is the group container's, split equally among members
// with the remainder going to the leftmost.
func (c *Controller) handleResize(m protocol.Resize) {
	if _, ok := c.registry.Get(m.ID); !ok {
		return
	}
	if m.Cols == 0 || m.Rows == 0 {
		return
	}
	grp, grouped := c.groups.Of(m.ID)
	if !grouped {
		c.resizeOne(m.ID, m.Cols, m.Rows)
		return
	}
	n := uint16(len(grp.Members))
	base := m.Cols / n
	extra := m.Cols % n
	for i, member := range grp.Members {
		w := base
		if uint16(i) < extra {
			w++
		}
		if w == 0 {
			w = 1
		}
		c.resizeOne(member, w, m.Rows)
	}
}

func (c *Controller) resizeOne(sid id.TermID, cols, rows uint16) {
	s, ok := c.registry.Get(sid)
	if !ok {
		return
	}
	s.Cols, s.Rows = cols, rows
	if err := c.runner.Resize(sid, cols, rows); err != nil {
		c.log.Debug("resize failed",
			zap.String("session_id", string(sid)), zap.Error(err))
	}
}

func (c *Controller) handleSelect(m protocol.Select) {
	s, ok := c.registry.Get(m.ID)
	if !ok {
		return
	}
	if !c.order.Select(m.ID) {
		return
	}
	s.Bell = false
	c.send(protocol.SessionSelected{ID: m.ID})
	c.persist()
}

func (c *Controller) handleBell(m protocol.Bell) {
	s, ok := c.registry.Get(m.ID)
	if !ok {
		return
	}
	c.metrics.RecordBell()
	if c.order.Selected() == m.ID {
		return
	}
	s.Bell = true
}

func (c *Controller) handleWidthChange(m protocol.WidthChange) {
	if m.Px <= 0 || m.Px == c.listWidth {
		return
	}
	c.listWidth = m.Px
	c.persist()
}

// ============================================================================
// Grouping
// ============================================================================

func (c *Controller) handleUnsplit(m protocol.UnsplitRequest) {
	if _, ok := c.groups.Of(m.ID); !ok {
		return
	}
	gid, dissolved, remaining := c.groups.Remove(m.ID)

	var anchor id.TermID
	if dissolved {
		anchor = remaining
	} else if grp, ok := c.groups.Get(gid); ok {
		anchor = grp.Members[len(grp.Members)-1]
	}
	c.order.MoveAfter(m.ID, anchor)

	c.send(protocol.Unsplit{ID: m.ID})
	if dissolved {
		c.send(protocol.GroupDestroyed{ID: gid})
	}
	c.send(protocol.Reordered{OrderedIDs: c.order.List()})
	c.revalidateFocus()
	c.syncGauges()
	c.persist()
}

func (c *Controller) handleJoin(m protocol.JoinRequest) {
	if _, ok := c.registry.Get(m.ID); !ok {
		return
	}
	target, ok := c.groups.Get(m.TargetGroupID)
	if !ok {
		return
	}
	if c.groups.MembershipOf(m.ID) == m.TargetGroupID {
		return
	}

	if _, grouped := c.groups.Of(m.ID); grouped {
		oldGid, dissolved, _ := c.groups.Remove(m.ID)
		if dissolved {
			c.send(protocol.GroupDestroyed{ID: oldGid})
		}
	}

	anchor := target.Members[len(target.Members)-1]
	c.groups.Append(m.ID, m.TargetGroupID)
	c.order.MoveAfter(m.ID, anchor)

	c.send(protocol.Joined{ID: m.ID, GroupID: m.TargetGroupID})
	c.send(protocol.Reordered{OrderedIDs: c.order.List()})
	c.revalidateFocus()
	c.syncGauges()
	c.persist()
}

func (c *Controller) handleReorder(m protocol.ReorderRequest) {
	if !c.order.Reorder(m.OrderedIDs, c.groupMembers) {
		return
	}
	c.send(protocol.Reordered{OrderedIDs: c.order.List()})
	c.persist()
}

func (c *Controller) handleGroupReorder(m protocol.GroupReorderRequest) {
	if !c.groups.ReorderWithin(m.GroupID, m.OrderedIDs) {
		return
	}
	c.order.Normalize(c.groupMembers)
	c.send(protocol.Reordered{OrderedIDs: c.order.List()})
	c.persist()
}

// handleGroupSelected forms a new group from a multi-selection,
// detaching members from any groups they were in.
func (c *Controller) handleGroupSelected(m protocol.GroupSelectedRequest) {
	members := make([]id.TermID, 0, len(m.IDs))
	seen := make(map[id.TermID]struct{}, len(m.IDs))
	for _, sid := range m.IDs {
		if _, ok := c.registry.Get(sid); !ok {
			continue
		}
		if _, dup := seen[sid]; dup {
			continue
		}
		seen[sid] = struct{}{}
		members = append(members, sid)
	}
	if len(members) < 2 {
		return
	}

	for _, sid := range members {
		if _, grouped := c.groups.Of(sid); !grouped {
			continue
		}
		oldGid, dissolved, _ := c.groups.Remove(sid)
		if dissolved {
			c.send(protocol.GroupDestroyed{ID: oldGid})
		}
	}

	grp := c.groups.Form(members)
	c.order.Normalize(c.groupMembers)

	c.send(protocol.GroupCreated{ID: grp.ID, Members: append([]id.TermID(nil), grp.Members...)})
	c.send(protocol.Reordered{OrderedIDs: c.order.List()})

	if !containsID(members, c.order.Selected()) {
		c.order.Select(members[0])
		c.send(protocol.SessionSelected{ID: members[0]})
	}
	c.revalidateFocus()
	c.syncGauges()
	c.persist()
}

// ============================================================================
// Appearance
// ============================================================================

func (c *Controller) handleRename(m protocol.RenameRequest) {
	s, ok := c.registry.Get(m.ID)
	if !ok {
		return
	}
	if m.Title != nil {
		c.applyRename(m.ID, *m.Title)
		return
	}
	initial := s.Title
	go func() {
		title, accepted := c.prompter.PromptText(c.ctx, "Rename terminal", initial)
		if !accepted {
			return
		}
		c.post(func() { c.applyRename(m.ID, title) })
	}()
}

func (c *Controller) applyRename(sid id.TermID, title string) {
	s, ok := c.registry.Get(sid)
	if !ok {
		return
	}
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxTitleLen || title == s.Title {
		return
	}
	s.Title = title
	c.send(protocol.SessionRenamed{ID: sid, Title: title})
	c.persist()
}

func (c *Controller) handleColorPick(m protocol.ColorPickRequest) {
	if _, ok := c.registry.Get(m.ID); !ok {
		return
	}
	if m.ColorKey != nil {
		c.applyColor(m.ID, *m.ColorKey)
		return
	}
	keys := c.colors.Keys()
	go func() {
		key, accepted := c.prompter.PickColor(c.ctx, keys)
		if !accepted {
			return
		}
		c.post(func() { c.applyColor(m.ID, key) })
	}()
}

func (c *Controller) applyColor(sid id.TermID, key string) {
	s, ok := c.registry.Get(sid)
	if !ok {
		return
	}
	hex, resolved := c.colors.Resolve(key)
	if !resolved {
		c.log.Warn("unknown color key", zap.String("key", key))
		return
	}
	s.ColorKey = key
	c.send(protocol.ColorUpdated{ID: sid, Color: hex})
	c.persist()
}

func (c *Controller) handleIconPick(m protocol.IconPickRequest) {
	if _, ok := c.registry.Get(m.ID); !ok {
		return
	}
	if m.Icon != nil {
		c.applyIcon(m.ID, *m.Icon)
		return
	}
	go func() {
		icon, accepted := c.prompter.PickIcon(c.ctx)
		if !accepted {
			return
		}
		c.post(func() { c.applyIcon(m.ID, icon) })
	}()
}

func (c *Controller) applyIcon(sid id.TermID, icon string) {
	s, ok := c.registry.Get(sid)
	if !ok {
		return
	}
	icon = strings.TrimSpace(icon)
	if len(icon) > maxTitleLen || icon == s.Icon {
		return
	}
	s.Icon = icon
	c.send(protocol.IconUpdated{ID: sid, Icon: icon})
	c.persist()
}

// ============================================================================
// PTY events
// ============================================================================

func (c *Controller) handlePTYEvent(ev pty.Event) {
	switch ev.Type {
	case pty.EventData:
		c.handleData(ev.ID, ev.Data)
	case pty.EventExit:
		c.handleExit(ev.ID, ev.Code)
	case pty.EventError:
		c.log.Warn("pty error",
			zap.String("session_id", string(ev.ID)), zap.Error(ev.Err))
	}
}

func (c *Controller) handleData(sid id.TermID, data []byte) {
	s, ok := c.registry.Get(sid)
	if !ok {
		return
	}
	c.metrics.RecordOutput(len(data))
	c.recorder.Write(sid, data)
	s.CWD = sniffCWD(data, s.CWD)

	if s.Ready && c.client != nil {
		c.send(protocol.Data{ID: sid, Bytes: data})
		return
	}
	if !c.registry.BufferOutput(sid, data) {
		c.metrics.RecordDroppedChunk()
	}
}

// handleExit reacts to a backing process exiting on its own. A clean
// exit tears the session down silently; anything else stays on screen
// for the exit-grace window so the user can read the failure.
func (c *Controller) handleExit(sid id.TermID, code int) {
	if _, ok := c.registry.Get(sid); !ok {
		return
	}
	if code == 0 || c.cfg.ExitGrace <= 0 {
		if code != 0 {
			c.send(protocol.Exit{ID: sid, Code: code})
		}
		c.destroySession(sid)
		return
	}
	c.send(protocol.Exit{ID: sid, Code: code})
	time.AfterFunc(c.cfg.ExitGrace, func() {
		c.post(func() { c.destroySession(sid) })
	})
}

// ============================================================================
// Shared helpers
// ============================================================================

func (c *Controller) send(msg protocol.Outbound) {
	if c.client == nil {
		return
	}
	c.metrics.RecordWSMessage("out", string(msg.OutboundType()))
	c.client.Send(msg)
}

// groupMembers adapts Groups for order normalization: the full member
// list for grouped sessions, nil for standalone ones.
func (c *Controller) groupMembers(sid id.TermID) []id.TermID {
	grp, ok := c.groups.Of(sid)
	if !ok {
		return nil
	}
	return grp.Members
}

// isVisible reports whether a session is currently on screen: selected,
// or a member of the selected session's group.
func (c *Controller) isVisible(sid id.TermID) bool {
	sel := c.order.Selected()
	if sel == "" {
		return false
	}
	if sid == sel {
		return true
	}
	grp, ok := c.groups.Of(sel)
	if !ok {
		return false
	}
	return indexOf(grp.Members, sid) >= 0
}

// revalidateFocus drops focus when the focused session is no longer
// visible, as after group membership or selection changes.
func (c *Controller) revalidateFocus() {
	f := c.order.Focused()
	if f == "" {
		return
	}
	if !c.isVisible(f) {
		c.order.ClearFocus()
	}
}

func (c *Controller) syncGauges() {
	c.metrics.SetSessionsActive(c.registry.Count())
	c.metrics.SetGroupsActive(c.groups.Count())
}

func containsID(ids []id.TermID, sid id.TermID) bool {
	return indexOf(ids, sid) >= 0
}

// noColors is the fallback resolver when no theme is wired.
type noColors struct{}

func (noColors) Resolve(string) (string, bool) { return "", false }
func (noColors) Keys() []string                { return nil }
