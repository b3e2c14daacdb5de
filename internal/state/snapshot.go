// Package state persists the workspace arrangement between daemon
// runs: which sessions existed, their order and grouping, the
// selection, and the list width. Only the arrangement survives a
// restart; backing processes are always spawned fresh on hydration.
package state

import (
	"time"

	"github.com/termhost/termhost/internal/shared/id"
)

// CurrentSchemaVersion is written to every snapshot. Readers reject
// snapshots from a newer schema.
const CurrentSchemaVersion = 1

// SessionRecord is one persisted session descriptor.
type SessionRecord struct {
	ID       id.TermID  `json:"id"`
	Ordinal  int        `json:"ordinal"`
	Title    string     `json:"title,omitempty"`
	Icon     string     `json:"icon,omitempty"`
	ColorKey string     `json:"colorKey,omitempty"`
	GroupID  id.GroupID `json:"groupId,omitempty"`
	Position int        `json:"position"`
}

// GroupRecord is one persisted group descriptor.
type GroupRecord struct {
	ID      id.GroupID  `json:"id"`
	Members []id.TermID `json:"members"`
}

// Snapshot is the complete persisted workspace.
type Snapshot struct {
	SchemaVersion int             `json:"schemaVersion"`
	Sessions      []SessionRecord `json:"sessions"`
	Groups        []GroupRecord   `json:"groups"`
	SelectedID    id.TermID       `json:"selectedId,omitempty"`
	ListWidth     int             `json:"listWidth"`
	SavedAt       time.Time       `json:"savedAt"`
}
