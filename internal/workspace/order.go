package workspace

import (
	"github.com/termhost/termhost/internal/shared/id"
)

// Order holds the flat session list plus selection and focus. Grouped
// sessions always occupy a contiguous block in the list, in member
// order; Normalize enforces that after any membership or order change.
type Order struct {
	ids      []id.TermID
	selected id.TermID
	focused  id.TermID
}

func NewOrder() *Order {
	return &Order{}
}

// List returns a copy of the current order.
func (o *Order) List() []id.TermID {
	return append([]id.TermID(nil), o.ids...)
}

func (o *Order) Len() int {
	return len(o.ids)
}

func (o *Order) Selected() id.TermID {
	return o.selected
}

func (o *Order) Focused() id.TermID {
	return o.focused
}

func (o *Order) IndexOf(sid id.TermID) int {
	return indexOf(o.ids, sid)
}

// Append adds a session to the end of the list.
func (o *Order) Append(sid id.TermID) {
	o.ids = append(o.ids, sid)
}

// InsertAfter places sid immediately after anchor, or at the end when
// the anchor is empty or unknown.
func (o *Order) InsertAfter(sid, anchor id.TermID) {
	idx := indexOf(o.ids, anchor)
	if anchor == "" || idx < 0 {
		o.ids = append(o.ids, sid)
		return
	}
	o.ids = insertAt(o.ids, idx+1, sid)
}

// MoveAfter repositions an existing session immediately after anchor.
func (o *Order) MoveAfter(sid, anchor id.TermID) {
	if sid == anchor {
		return
	}
	o.ids = removeFrom(o.ids, sid)
	o.InsertAfter(sid, anchor)
}

// Remove drops a session from the list, clearing selection and focus
// if they pointed at it.
func (o *Order) Remove(sid id.TermID) {
	o.ids = removeFrom(o.ids, sid)
	if o.selected == sid {
		o.selected = ""
	}
	if o.focused == sid {
		o.focused = ""
	}
}

// Select makes sid the selected session and unconditionally clears
// focus, even when sid was already selected. It reports whether the
// selection changed.
func (o *Order) Select(sid id.TermID) bool {
	o.focused = ""
	if o.selected == sid {
		return false
	}
	o.selected = sid
	return true
}

// Focus sets the focused session. The caller decides visibility; this
// only rejects ids not in the list.
func (o *Order) Focus(sid id.TermID) bool {
	if indexOf(o.ids, sid) < 0 {
		return false
	}
	o.focused = sid
	return true
}

func (o *Order) ClearFocus() {
	o.focused = ""
}

// Reorder applies a client-proposed flat order, then normalizes. Ids
// not in the list are ignored, live ids missing from the proposal keep
// their relative order at the end, and grouped sessions are pulled into
// a contiguous block at the first member's position. It reports whether
// the resulting order differs.
func (o *Order) Reorder(proposed []id.TermID, groupOf func(id.TermID) []id.TermID) bool {
	known := make(map[id.TermID]int, len(o.ids))
	for i, sid := range o.ids {
		known[sid] = i
	}

	merged := make([]id.TermID, 0, len(o.ids))
	taken := make(map[id.TermID]struct{}, len(o.ids))
	for _, sid := range proposed {
		if _, ok := known[sid]; !ok {
			continue
		}
		if _, dup := taken[sid]; dup {
			continue
		}
		taken[sid] = struct{}{}
		merged = append(merged, sid)
	}
	for _, sid := range o.ids {
		if _, ok := taken[sid]; !ok {
			merged = append(merged, sid)
		}
	}

	// A drag that relocated one grouped session anchors its block at
	// the drop point. Without this, a downward drag would re-form the
	// block at the members left behind and the drag would no-op.
	var anchor id.TermID
	if moved, ok := singleMove(o.ids, merged); ok && len(groupOf(moved)) > 0 {
		anchor = moved
	}

	normalized := normalize(merged, groupOf, anchor)
	if equalIDs(normalized, o.ids) {
		return false
	}
	o.ids = normalized
	return true
}

// Normalize re-blocks the current order without changing relative
// positions, used after group membership or member order changes.
func (o *Order) Normalize(groupOf func(id.TermID) []id.TermID) bool {
	normalized := normalize(o.ids, groupOf, "")
	if equalIDs(normalized, o.ids) {
		return false
	}
	o.ids = normalized
	return true
}

// normalize walks ids and emits each grouped session's whole block, in
// group member order, at the first occurrence of any member. When
// anchor names a grouped session, that one group's block is emitted at
// the anchor's own position instead, so a dragged member carries its
// block to where it was dropped.
func normalize(ids []id.TermID, groupOf func(id.TermID) []id.TermID, anchor id.TermID) []id.TermID {
	deferred := make(map[id.TermID]struct{})
	if anchor != "" {
		for _, m := range groupOf(anchor) {
			if m != anchor {
				deferred[m] = struct{}{}
			}
		}
	}

	out := make([]id.TermID, 0, len(ids))
	emitted := make(map[id.TermID]struct{}, len(ids))
	for _, sid := range ids {
		if _, done := emitted[sid]; done {
			continue
		}
		if _, wait := deferred[sid]; wait {
			continue
		}
		members := groupOf(sid)
		if len(members) == 0 {
			members = []id.TermID{sid}
		}
		for _, m := range members {
			if _, done := emitted[m]; done {
				continue
			}
			emitted[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// singleMove reports the id whose relocation alone turns prev into
// next, which is the shape a drag of one session produces. Proposals
// that are not a single-session move report false.
func singleMove(prev, next []id.TermID) (id.TermID, bool) {
	if len(prev) != len(next) || equalIDs(prev, next) {
		return "", false
	}
	i := 0
	for prev[i] == next[i] {
		i++
	}
	// The diverging position is either where the dragged id landed or
	// where it used to sit.
	for _, cand := range [2]id.TermID{next[i], prev[i]} {
		if equalIDs(without(prev, cand), without(next, cand)) {
			return cand, true
		}
	}
	return "", false
}

func without(ids []id.TermID, sid id.TermID) []id.TermID {
	out := make([]id.TermID, 0, len(ids))
	for _, v := range ids {
		if v != sid {
			out = append(out, v)
		}
	}
	return out
}

func equalIDs(a, b []id.TermID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
