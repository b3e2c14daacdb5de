package workspace

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/termhost/termhost/internal/protocol"
	"github.com/termhost/termhost/internal/shared/id"
	"github.com/termhost/termhost/internal/state"
)

// handleReady runs hydration for the attached client. The first ready
// of the process replays the persisted snapshot into the model; every
// ready replays the in-memory model to the client.
func (c *Controller) handleReady() {
	if c.client == nil {
		return
	}
	c.phase = PhaseHydrating
	c.metrics.RecordHydration()
	if !c.hydrated {
		c.hydrated = true
		c.replayStoredSnapshot()
	}
	c.emitWorkspace()
	c.phase = PhaseSteady
}

// replayStoredSnapshot rebuilds the model from disk, spawning a fresh
// process per persisted session. Sessions that fail to spawn are
// dropped without user-facing errors, and groups left with fewer than
// two members dissolve.
func (c *Controller) replayStoredSnapshot() {
	if c.store == nil {
		return
	}
	snap, err := c.store.Load()
	if err != nil {
		c.log.Warn("workspace snapshot unreadable, starting fresh", zap.Error(err))
		return
	}
	if snap == nil {
		return
	}
	if snap.ListWidth > 0 {
		c.listWidth = snap.ListWidth
	}

	records := append([]state.SessionRecord(nil), snap.Sessions...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Position < records[j].Position
	})

	// Claim every persisted ordinal before spawning anything, so a
	// fallback allocation can never collide with a later record's.
	reserved := make(map[id.TermID]int, len(records))
	for _, rec := range records {
		if rec.Ordinal > 0 && c.registry.Reserve(rec.Ordinal) {
			reserved[rec.ID] = rec.Ordinal
		}
	}

	alive := make(map[id.TermID]struct{}, len(records))
	for _, rec := range records {
		ordinal := reserved[rec.ID]
		_, err := c.registry.Create(CreateConfig{
			ID:       rec.ID,
			Ordinal:  ordinal,
			Title:    rec.Title,
			Icon:     rec.Icon,
			ColorKey: rec.ColorKey,
		})
		if err != nil {
			c.log.Warn("persisted session failed to respawn, dropping",
				zap.String("session_id", string(rec.ID)), zap.Error(err))
			c.metrics.RecordSpawnFailure()
			if ordinal > 0 {
				c.registry.ReleaseOrdinal(ordinal)
			}
			continue
		}
		c.metrics.RecordSessionCreated()
		alive[rec.ID] = struct{}{}
		c.order.Append(rec.ID)
	}

	for _, g := range snap.Groups {
		members := make([]id.TermID, 0, len(g.Members))
		for _, sid := range g.Members {
			if _, ok := alive[sid]; ok {
				members = append(members, sid)
			}
		}
		if len(members) < 2 {
			continue
		}
		c.groups.Restore(g.ID, members)
	}
	c.order.Normalize(c.groupMembers)

	if snap.SelectedID != "" {
		if _, ok := alive[snap.SelectedID]; ok {
			c.order.Select(snap.SelectedID)
		}
	}
}

// emitWorkspace replays the full model to the client: hydrate header,
// one session-created per session in order, the groups, then selection
// and focus. Every session returns to unready until the client
// acknowledges its pane.
func (c *Controller) emitWorkspace() {
	c.send(protocol.Hydrate{ListWidth: c.listWidth})

	list := c.order.List()
	if len(list) == 0 {
		c.spawnDefaultSession()
		c.persist()
		return
	}

	if c.order.Selected() == "" {
		c.order.Select(list[0])
	}
	sel := c.order.Selected()

	var prev id.TermID
	for _, sid := range list {
		s, ok := c.registry.Get(sid)
		if !ok {
			continue
		}
		var color string
		if s.ColorKey != "" {
			if hex, resolved := c.colors.Resolve(s.ColorKey); resolved {
				color = hex
			}
		}
		c.registry.ExpectReady(sid)
		c.send(protocol.SessionCreated{
			ID:          sid,
			Title:       s.Title,
			Icon:        s.Icon,
			Color:       color,
			GroupID:     c.groups.MembershipOf(sid),
			MakeActive:  sid == sel,
			InsertAfter: prev,
		})
		prev = sid
	}

	for _, gid := range c.groupOrder() {
		grp, ok := c.groups.Get(gid)
		if !ok {
			continue
		}
		c.send(protocol.GroupCreated{ID: gid, Members: append([]id.TermID(nil), grp.Members...)})
	}

	c.send(protocol.SessionSelected{ID: sel})
	c.order.Focus(sel)
	c.send(protocol.Focus{})
	c.syncGauges()
	c.persist()
}

// groupOrder lists group ids by first occurrence in the flat order.
func (c *Controller) groupOrder() []id.GroupID {
	var out []id.GroupID
	seen := make(map[id.GroupID]struct{})
	for _, sid := range c.order.List() {
		gid := c.groups.MembershipOf(sid)
		if gid == "" {
			continue
		}
		if _, dup := seen[gid]; dup {
			continue
		}
		seen[gid] = struct{}{}
		out = append(out, gid)
	}
	return out
}

// ============================================================================
// Persistence
// ============================================================================

// persist writes the current arrangement through the store. Failures
// are logged and counted, never surfaced to the client.
func (c *Controller) persist() {
	if c.store == nil {
		return
	}
	if err := c.store.Save(c.buildSnapshot()); err != nil {
		c.log.Error("persist workspace failed", zap.Error(err))
		c.metrics.RecordPersistError()
	}
}

func (c *Controller) buildSnapshot() *state.Snapshot {
	snap := &state.Snapshot{
		SchemaVersion: state.CurrentSchemaVersion,
		SelectedID:    c.order.Selected(),
		ListWidth:     c.listWidth,
		SavedAt:       time.Now().UTC(),
	}
	for pos, sid := range c.order.List() {
		s, ok := c.registry.Get(sid)
		if !ok {
			continue
		}
		snap.Sessions = append(snap.Sessions, state.SessionRecord{
			ID:       sid,
			Ordinal:  s.Ordinal,
			Title:    s.Title,
			Icon:     s.Icon,
			ColorKey: s.ColorKey,
			GroupID:  c.groups.MembershipOf(sid),
			Position: pos,
		})
	}
	for _, gid := range c.groupOrder() {
		grp, ok := c.groups.Get(gid)
		if !ok {
			continue
		}
		snap.Groups = append(snap.Groups, state.GroupRecord{
			ID:      gid,
			Members: append([]id.TermID(nil), grp.Members...),
		})
	}
	return snap
}
