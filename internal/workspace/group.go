package workspace

import (
	"github.com/termhost/termhost/internal/shared/id"
)

// Group is an ordered set of sessions rendered together as splits. A
// group never has fewer than two members; dropping to one dissolves it.
type Group struct {
	ID      id.GroupID
	Members []id.TermID
}

// Groups tracks split groups and a reverse membership index.
type Groups struct {
	groups     map[id.GroupID]*Group
	membership map[id.TermID]id.GroupID
	gen        *id.Generator
}

func NewGroups() *Groups {
	return &Groups{
		groups:     make(map[id.GroupID]*Group),
		membership: make(map[id.TermID]id.GroupID),
		gen:        id.Default(),
	}
}

// Get returns the group by id.
func (g *Groups) Get(gid id.GroupID) (*Group, bool) {
	grp, ok := g.groups[gid]
	return grp, ok
}

// Of returns the group a session belongs to, if any.
func (g *Groups) Of(sid id.TermID) (*Group, bool) {
	gid, ok := g.membership[sid]
	if !ok {
		return nil, false
	}
	return g.groups[gid], true
}

// MembershipOf returns the group id for a session, or "" when
// standalone.
func (g *Groups) MembershipOf(sid id.TermID) id.GroupID {
	return g.membership[sid]
}

func (g *Groups) Count() int {
	return len(g.groups)
}

// SplitAttach places newID immediately after source in source's group,
// creating a two-member group when source was standalone. It reports
// the group id and whether the group is new.
func (g *Groups) SplitAttach(source, newID id.TermID) (id.GroupID, bool) {
	if grp, ok := g.Of(source); ok {
		idx := indexOf(grp.Members, source)
		grp.Members = insertAt(grp.Members, idx+1, newID)
		g.membership[newID] = grp.ID
		return grp.ID, false
	}
	gid := g.gen.NewGroupID()
	g.groups[gid] = &Group{ID: gid, Members: []id.TermID{source, newID}}
	g.membership[source] = gid
	g.membership[newID] = gid
	return gid, true
}

// Append adds a session to the end of an existing group's member order.
func (g *Groups) Append(sid id.TermID, gid id.GroupID) bool {
	grp, ok := g.groups[gid]
	if !ok {
		return false
	}
	grp.Members = append(grp.Members, sid)
	g.membership[sid] = gid
	return true
}

// Remove detaches a session from its group. When the group drops below
// two members it dissolves, and the lone survivor becomes standalone.
// remaining is the survivor on dissolution, "" otherwise.
func (g *Groups) Remove(sid id.TermID) (gid id.GroupID, dissolved bool, remaining id.TermID) {
	gid, ok := g.membership[sid]
	if !ok {
		return "", false, ""
	}
	grp := g.groups[gid]
	delete(g.membership, sid)
	grp.Members = removeFrom(grp.Members, sid)
	if len(grp.Members) >= 2 {
		return gid, false, ""
	}
	if len(grp.Members) == 1 {
		remaining = grp.Members[0]
		delete(g.membership, remaining)
	}
	delete(g.groups, gid)
	return gid, true, remaining
}

// ReorderWithin replaces a group's member order. The proposed order
// must be a permutation of the current members or nothing changes.
func (g *Groups) ReorderWithin(gid id.GroupID, order []id.TermID) bool {
	grp, ok := g.groups[gid]
	if !ok || len(order) != len(grp.Members) {
		return false
	}
	seen := make(map[id.TermID]struct{}, len(order))
	for _, sid := range order {
		if g.membership[sid] != gid {
			return false
		}
		if _, dup := seen[sid]; dup {
			return false
		}
		seen[sid] = struct{}{}
	}
	grp.Members = append([]id.TermID(nil), order...)
	return true
}

// Form creates a group from the given members in the given order. The
// caller guarantees at least two live, ungrouped members.
func (g *Groups) Form(members []id.TermID) *Group {
	gid := g.gen.NewGroupID()
	grp := &Group{ID: gid, Members: append([]id.TermID(nil), members...)}
	g.groups[gid] = grp
	for _, sid := range members {
		g.membership[sid] = gid
	}
	return grp
}

// Restore re-creates a persisted group under its original id.
func (g *Groups) Restore(gid id.GroupID, members []id.TermID) *Group {
	grp := &Group{ID: gid, Members: append([]id.TermID(nil), members...)}
	g.groups[gid] = grp
	for _, sid := range members {
		g.membership[sid] = gid
	}
	return grp
}

func indexOf(ids []id.TermID, sid id.TermID) int {
	for i, v := range ids {
		if v == sid {
			return i
		}
	}
	return -1
}

func insertAt(ids []id.TermID, idx int, sid id.TermID) []id.TermID {
	if idx < 0 || idx >= len(ids) {
		return append(ids, sid)
	}
	ids = append(ids, "")
	copy(ids[idx+1:], ids[idx:])
	ids[idx] = sid
	return ids
}

func removeFrom(ids []id.TermID, sid id.TermID) []id.TermID {
	idx := indexOf(ids, sid)
	if idx < 0 {
		return ids
	}
	return append(ids[:idx], ids[idx+1:]...)
}
