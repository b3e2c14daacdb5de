package workspace

import (
	"context"
	"errors"
	"time"

	"github.com/termhost/termhost/internal/shared/id"
)

// ErrLoopStopped is returned when the controller loop has exited.
var ErrLoopStopped = errors.New("controller loop stopped")

// SessionInfo is a read-only view of one session for inspection.
type SessionInfo struct {
	ID       id.TermID  `json:"id"`
	Ordinal  int        `json:"ordinal"`
	Title    string     `json:"title"`
	Icon     string     `json:"icon,omitempty"`
	ColorKey string     `json:"colorKey,omitempty"`
	Color    string     `json:"color,omitempty"`
	GroupID  id.GroupID `json:"groupId,omitempty"`
	Ready    bool       `json:"ready"`
	Bell     bool       `json:"bell"`
	CWD      string     `json:"cwd,omitempty"`
	Cols     uint16     `json:"cols"`
	Rows     uint16     `json:"rows"`
	Created  time.Time  `json:"createdAt"`
}

// GroupInfo is a read-only view of one group.
type GroupInfo struct {
	ID      id.GroupID  `json:"id"`
	Members []id.TermID `json:"members"`
}

// WorkspaceInfo is the full model as one value, taken on the loop.
type WorkspaceInfo struct {
	Phase     string        `json:"phase"`
	Sessions  []SessionInfo `json:"sessions"`
	Groups    []GroupInfo   `json:"groups"`
	Selected  id.TermID     `json:"selectedId,omitempty"`
	Focused   id.TermID     `json:"focusedId,omitempty"`
	ListWidth int           `json:"listWidth"`
}

// Describe captures a consistent snapshot of the workspace.
func (c *Controller) Describe(ctx context.Context) (WorkspaceInfo, error) {
	reply := make(chan WorkspaceInfo, 1)
	c.post(func() { reply <- c.describe() })
	select {
	case info := <-reply:
		return info, nil
	case <-ctx.Done():
		return WorkspaceInfo{}, ctx.Err()
	case <-c.done:
		return WorkspaceInfo{}, ErrLoopStopped
	}
}

func (c *Controller) describe() WorkspaceInfo {
	info := WorkspaceInfo{
		Phase:     c.phase.String(),
		Selected:  c.order.Selected(),
		Focused:   c.order.Focused(),
		ListWidth: c.listWidth,
	}
	for _, sid := range c.order.List() {
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
		info.Sessions = append(info.Sessions, SessionInfo{
			ID:       s.ID,
			Ordinal:  s.Ordinal,
			Title:    s.Title,
			Icon:     s.Icon,
			ColorKey: s.ColorKey,
			Color:    color,
			GroupID:  c.groups.MembershipOf(sid),
			Ready:    s.Ready,
			Bell:     s.Bell,
			CWD:      s.CWD,
			Cols:     s.Cols,
			Rows:     s.Rows,
			Created:  s.CreatedAt,
		})
	}
	for _, gid := range c.groupOrder() {
		grp, ok := c.groups.Get(gid)
		if !ok {
			continue
		}
		info.Groups = append(info.Groups, GroupInfo{
			ID:      gid,
			Members: append([]id.TermID(nil), grp.Members...),
		})
	}
	return info
}
