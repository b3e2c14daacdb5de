package workspace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termhost/termhost/internal/protocol"
	"github.com/termhost/termhost/internal/shared/id"
	"github.com/termhost/termhost/internal/state"
)

func TestReplayRestoresArrangement(t *testing.T) {
	h := newHarness(t)
	h.connect()
	a := h.ids()[0]
	b := h.newTerminal()
	c := h.newTerminal()
	d := h.split(b)

	title := "editor"
	h.inbound(protocol.RenameRequest{ID: a, Title: &title})
	key := "blue"
	h.inbound(protocol.ColorPickRequest{ID: c, ColorKey: &key})
	h.inbound(protocol.Select{ID: c})
	h.inbound(protocol.WidthChange{Px: 300})

	gid := h.describe().Groups[0].ID
	saved := h.store.current()
	require.NotNil(t, saved)

	// a new process, same store
	h2 := newHarness(t)
	h2.store.seed(saved)
	h2.connect()

	info := h2.describe()
	assert.Equal(t, []id.TermID{a, b, d, c}, h2.ids())
	require.Len(t, info.Groups, 1)
	assert.Equal(t, gid, info.Groups[0].ID, "group ids survive restarts")
	assert.Equal(t, []id.TermID{b, d}, info.Groups[0].Members)
	assert.Equal(t, c, info.Selected)
	assert.Equal(t, c, info.Focused)
	assert.Equal(t, 300, info.ListWidth)
	assertContiguous(t, info)

	byID := make(map[id.TermID]SessionInfo)
	for _, s := range info.Sessions {
		byID[s.ID] = s
	}
	assert.Equal(t, "editor", byID[a].Title)
	assert.Equal(t, 1, byID[a].Ordinal)
	assert.Equal(t, "blue", byID[c].ColorKey)
	assert.Equal(t, "#0000ff", byID[c].Color)
	assert.False(t, byID[a].Ready, "respawned sessions start unready")

	created := msgsOf[protocol.SessionCreated](h2.sink)
	require.Len(t, created, 4)
	assert.Equal(t, id.TermID(""), created[0].InsertAfter)
	assert.Equal(t, a, created[1].InsertAfter)
	assert.Equal(t, b, created[2].InsertAfter)
	assert.Equal(t, d, created[3].InsertAfter)
	for _, m := range created {
		assert.Equal(t, m.ID == c, m.MakeActive)
	}
	hydrate := msgsOf[protocol.Hydrate](h2.sink)
	require.Len(t, hydrate, 1)
	assert.Equal(t, 300, hydrate[0].ListWidth)
}

func TestReplayDropsFailedSpawnsSilently(t *testing.T) {
	gen := id.Default()
	s1, s2, s3 := gen.NewTermID(), gen.NewTermID(), gen.NewTermID()
	gid := gen.NewGroupID()

	h := newHarness(t)
	h.store.seed(&state.Snapshot{
		SchemaVersion: state.CurrentSchemaVersion,
		Sessions: []state.SessionRecord{
			{ID: s1, Ordinal: 1, Title: "one", GroupID: gid, Position: 0},
			{ID: s2, Ordinal: 2, Title: "two", GroupID: gid, Position: 1},
			{ID: s3, Ordinal: 3, Title: "three", Position: 2},
		},
		Groups:     []state.GroupRecord{{ID: gid, Members: []id.TermID{s1, s2}}},
		SelectedID: s2,
		ListWidth:  240,
	})
	h.runner.refuse(s2)
	h.connect()

	info := h.describe()
	assert.Equal(t, []id.TermID{s1, s3}, h.ids())
	assert.Empty(t, info.Groups, "a group stripped below two members dissolves")
	assert.Equal(t, s1, info.Selected, "dead selection falls back to the first live session")
	assert.Empty(t, msgsOf[protocol.ErrorNotice](h.sink), "replay drops are silent")

	// the failed record's ordinal is free again
	fresh := h.newTerminal()
	for _, s := range h.describe().Sessions {
		if s.ID == fresh {
			assert.Equal(t, 2, s.Ordinal)
		}
	}
}

func TestReplayAllFailedCreatesDefault(t *testing.T) {
	gen := id.Default()
	s1, s2 := gen.NewTermID(), gen.NewTermID()

	h := newHarness(t)
	h.store.seed(&state.Snapshot{
		SchemaVersion: state.CurrentSchemaVersion,
		Sessions: []state.SessionRecord{
			{ID: s1, Ordinal: 1, Position: 0},
			{ID: s2, Ordinal: 2, Position: 1},
		},
		SelectedID: s1,
	})
	h.runner.refuse(s1, s2)
	h.connect()

	info := h.describe()
	require.Len(t, info.Sessions, 1)
	got := info.Sessions[0]
	assert.NotEqual(t, s1, got.ID)
	assert.NotEqual(t, s2, got.ID)
	assert.Equal(t, got.ID, info.Selected)
	assert.Equal(t, got.ID, info.Focused)
	assert.Empty(t, msgsOf[protocol.ErrorNotice](h.sink))
}

type brokenStore struct{}

func (brokenStore) Load() (*state.Snapshot, error) { return nil, errors.New("disk gone") }
func (brokenStore) Save(*state.Snapshot) error     { return errors.New("disk gone") }

func TestUnreadableStoreStartsFresh(t *testing.T) {
	h := newHarness(t, func(_ *Config, deps *Deps) {
		deps.Store = brokenStore{}
	})
	h.connect()

	info := h.describe()
	require.Len(t, info.Sessions, 1)
	assert.Equal(t, info.Sessions[0].ID, info.Selected)
}

func TestSnapshotTracksMutations(t *testing.T) {
	h := newHarness(t)
	h.connect()
	a := h.ids()[0]

	snap := h.store.current()
	require.NotNil(t, snap)
	require.Len(t, snap.Sessions, 1)
	assert.Equal(t, state.CurrentSchemaVersion, snap.SchemaVersion)

	b := h.split(a)
	snap = h.store.current()
	require.Len(t, snap.Sessions, 2)
	require.Len(t, snap.Groups, 1)
	assert.Equal(t, []id.TermID{a, b}, snap.Groups[0].Members)
	assert.Equal(t, 0, snap.Sessions[0].Position)
	assert.Equal(t, 1, snap.Sessions[1].Position)

	h.inbound(protocol.CloseRequest{ID: b})
	snap = h.store.current()
	require.Len(t, snap.Sessions, 1)
	assert.Empty(t, snap.Groups)
}

func TestReplayOrdinalsNeverCollide(t *testing.T) {
	gen := id.Default()
	s1, s2 := gen.NewTermID(), gen.NewTermID()

	// a snapshot whose first record carries no ordinal forces a fresh
	// allocation; the second record's persisted ordinal must still win
	h := newHarness(t)
	h.store.seed(&state.Snapshot{
		SchemaVersion: state.CurrentSchemaVersion,
		Sessions: []state.SessionRecord{
			{ID: s1, Position: 0},
			{ID: s2, Ordinal: 1, Position: 1},
		},
	})
	h.connect()

	byID := make(map[id.TermID]SessionInfo)
	for _, s := range h.describe().Sessions {
		byID[s.ID] = s
	}
	assert.Equal(t, 1, byID[s2].Ordinal, "persisted ordinals are claimed first")
	assert.Equal(t, 2, byID[s1].Ordinal)
}
