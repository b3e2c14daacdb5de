// Package protocol defines the message surface between the controller
// and the display client. Every frame on the wire is a tagged envelope
// {type, payload}; payloads are one struct per message type so the
// dispatcher can switch exhaustively and treat unknown tags as no-ops.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/termhost/termhost/internal/shared/id"
)

// MessageType tags a protocol frame.
type MessageType string

// Inbound message types (display client → controller).
const (
	MsgReady                MessageType = "ready"
	MsgSessionReady         MessageType = "session-ready"
	MsgInput                MessageType = "input"
	MsgResize               MessageType = "resize"
	MsgSelect               MessageType = "select"
	MsgSplitRequest         MessageType = "split-request"
	MsgUnsplitRequest       MessageType = "unsplit-request"
	MsgJoinRequest          MessageType = "join-request"
	MsgReorderRequest       MessageType = "reorder-request"
	MsgGroupReorderRequest  MessageType = "group-reorder-request"
	MsgCloseRequest         MessageType = "close-request"
	MsgRenameRequest        MessageType = "rename-request"
	MsgColorPickRequest     MessageType = "color-pick-request"
	MsgIconPickRequest      MessageType = "icon-pick-request"
	MsgWidthChange          MessageType = "width-change"
	MsgGroupSelectedRequest MessageType = "group-selected-request"
	MsgBell                 MessageType = "bell"
)

// Outbound message types (controller → display client).
const (
	MsgSessionCreated  MessageType = "session-created"
	MsgSessionRemoved  MessageType = "session-removed"
	MsgSessionRenamed  MessageType = "session-renamed"
	MsgSessionSelected MessageType = "session-selected"
	MsgFocus           MessageType = "focus"
	MsgHydrate         MessageType = "hydrate"
	MsgGroupCreated    MessageType = "group-created"
	MsgGroupDestroyed  MessageType = "group-destroyed"
	MsgSplitCreated    MessageType = "split-created"
	MsgUnsplit         MessageType = "unsplit"
	MsgJoined          MessageType = "joined"
	MsgColorUpdated    MessageType = "color-updated"
	MsgIconUpdated     MessageType = "icon-updated"
	MsgReordered       MessageType = "reordered"
	MsgData            MessageType = "data"
	MsgExit            MessageType = "exit"
	MsgError           MessageType = "error"
)

// Message is the wire envelope.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ErrUnknownType marks a frame whose tag this build does not know.
var ErrUnknownType = errors.New("unknown message type")

// ============================================================================
// Inbound payloads
// ============================================================================

// Inbound is implemented by every display-client message.
type Inbound interface {
	InboundType() MessageType
}

// Ready signals the display client finished booting and wants hydration.
type Ready struct{}

// SessionReady acknowledges that the pane for a session exists and has
// a size.
type SessionReady struct {
	ID   id.TermID `json:"id"`
	Cols uint16    `json:"cols"`
	Rows uint16    `json:"rows"`
}

// Input carries keyboard input for a session.
type Input struct {
	ID   id.TermID `json:"id"`
	Data string    `json:"data"`
}

// Resize reports new pane dimensions. For a grouped session, cols is
// the width of the whole group container.
type Resize struct {
	ID   id.TermID `json:"id"`
	Cols uint16    `json:"cols"`
	Rows uint16    `json:"rows"`
}

// Select makes a session (or its group) the visible one.
type Select struct {
	ID id.TermID `json:"id"`
}

// SplitRequest asks for a new session split off from an existing one.
type SplitRequest struct {
	ID id.TermID `json:"id"`
}

// UnsplitRequest removes a session from its group.
type UnsplitRequest struct {
	ID id.TermID `json:"id"`
}

// JoinRequest moves a standalone session into an existing group.
type JoinRequest struct {
	ID            id.TermID  `json:"id"`
	TargetGroupID id.GroupID `json:"targetGroupId"`
}

// ReorderRequest proposes a full new flat order after a list drag.
type ReorderRequest struct {
	OrderedIDs []id.TermID `json:"orderedIds"`
}

// GroupReorderRequest proposes a new pane order within one group.
type GroupReorderRequest struct {
	GroupID    id.GroupID  `json:"groupId"`
	OrderedIDs []id.TermID `json:"orderedIds"`
}

// CloseRequest kills a session on user request.
type CloseRequest struct {
	ID id.TermID `json:"id"`
}

// RenameRequest retitles a session. Without a title the controller
// prompts for one.
type RenameRequest struct {
	ID    id.TermID `json:"id"`
	Title *string   `json:"title,omitempty"`
}

// ColorPickRequest assigns a symbolic color key. Without a key the
// controller prompts for one.
type ColorPickRequest struct {
	ID       id.TermID `json:"id"`
	ColorKey *string   `json:"colorKey,omitempty"`
}

// IconPickRequest assigns an icon. Without an icon the controller
// prompts for one.
type IconPickRequest struct {
	ID   id.TermID `json:"id"`
	Icon *string   `json:"icon,omitempty"`
}

// WidthChange persists the session list width preference.
type WidthChange struct {
	Px int `json:"px"`
}

// GroupSelectedRequest groups the multi-selected sessions together.
type GroupSelectedRequest struct {
	IDs []id.TermID `json:"ids"`
}

// Bell reports a terminal bell in a session.
type Bell struct {
	ID id.TermID `json:"id"`
}

func (Ready) InboundType() MessageType                { return MsgReady }
func (SessionReady) InboundType() MessageType         { return MsgSessionReady }
func (Input) InboundType() MessageType                { return MsgInput }
func (Resize) InboundType() MessageType               { return MsgResize }
func (Select) InboundType() MessageType               { return MsgSelect }
func (SplitRequest) InboundType() MessageType         { return MsgSplitRequest }
func (UnsplitRequest) InboundType() MessageType       { return MsgUnsplitRequest }
func (JoinRequest) InboundType() MessageType          { return MsgJoinRequest }
func (ReorderRequest) InboundType() MessageType       { return MsgReorderRequest }
func (GroupReorderRequest) InboundType() MessageType  { return MsgGroupReorderRequest }
func (CloseRequest) InboundType() MessageType         { return MsgCloseRequest }
func (RenameRequest) InboundType() MessageType        { return MsgRenameRequest }
func (ColorPickRequest) InboundType() MessageType     { return MsgColorPickRequest }
func (IconPickRequest) InboundType() MessageType      { return MsgIconPickRequest }
func (WidthChange) InboundType() MessageType          { return MsgWidthChange }
func (GroupSelectedRequest) InboundType() MessageType { return MsgGroupSelectedRequest }
func (Bell) InboundType() MessageType                 { return MsgBell }

// ============================================================================
// Outbound payloads
// ============================================================================

// Outbound is implemented by every controller message.
type Outbound interface {
	OutboundType() MessageType
}

// SessionCreated instructs the client to create a pane. InsertAfter
// positions it in the list; empty means append.
type SessionCreated struct {
	ID          id.TermID  `json:"id"`
	Title       string     `json:"title"`
	Icon        string     `json:"icon,omitempty"`
	Color       string     `json:"color,omitempty"`
	GroupID     id.GroupID `json:"groupId,omitempty"`
	MakeActive  bool       `json:"makeActive"`
	InsertAfter id.TermID  `json:"insertAfter,omitempty"`
}

// SessionRemoved removes a pane.
type SessionRemoved struct {
	ID id.TermID `json:"id"`
}

// SessionRenamed updates a title.
type SessionRenamed struct {
	ID    id.TermID `json:"id"`
	Title string    `json:"title"`
}

// SessionSelected changes the visible session/group.
type SessionSelected struct {
	ID id.TermID `json:"id"`
}

// Focus tells the client to give keyboard focus to the active pane.
type Focus struct{}

// Hydrate opens a replay and carries the persisted list width.
type Hydrate struct {
	ListWidth int `json:"listWidth"`
}

// GroupCreated announces a group and its pane order.
type GroupCreated struct {
	ID      id.GroupID  `json:"id"`
	Members []id.TermID `json:"members"`
}

// GroupDestroyed announces a group dissolution.
type GroupDestroyed struct {
	ID id.GroupID `json:"id"`
}

// SplitCreated announces the session created by a split and where it
// landed.
type SplitCreated struct {
	ID          id.TermID  `json:"id"`
	NewID       id.TermID  `json:"newId"`
	GroupID     id.GroupID `json:"groupId"`
	InsertAfter id.TermID  `json:"insertAfter"`
}

// Unsplit announces that a session left its group.
type Unsplit struct {
	ID id.TermID `json:"id"`
}

// Joined announces that a session was appended to a group.
type Joined struct {
	ID      id.TermID  `json:"id"`
	GroupID id.GroupID `json:"groupId"`
}

// ColorUpdated carries a freshly resolved color for a session.
type ColorUpdated struct {
	ID    id.TermID `json:"id"`
	Color string    `json:"color"`
}

// IconUpdated carries a new icon for a session.
type IconUpdated struct {
	ID   id.TermID `json:"id"`
	Icon string    `json:"icon"`
}

// Reordered carries the authoritative flat order after any mutation
// that moved entries.
type Reordered struct {
	OrderedIDs []id.TermID `json:"orderedIds"`
}

// Data carries PTY output for a session.
type Data struct {
	ID    id.TermID `json:"id"`
	Bytes []byte    `json:"bytes"`
}

// Exit announces a backing-process exit before the pane is removed.
type Exit struct {
	ID   id.TermID `json:"id"`
	Code int       `json:"code"`
}

// ErrorNotice surfaces a user-visible failure (spawn failure or
// readiness timeout).
type ErrorNotice struct {
	Context   string    `json:"context"`
	SessionID id.TermID `json:"sessionId,omitempty"`
	Message   string    `json:"message"`
}

func (SessionCreated) OutboundType() MessageType  { return MsgSessionCreated }
func (SessionRemoved) OutboundType() MessageType  { return MsgSessionRemoved }
func (SessionRenamed) OutboundType() MessageType  { return MsgSessionRenamed }
func (SessionSelected) OutboundType() MessageType { return MsgSessionSelected }
func (Focus) OutboundType() MessageType           { return MsgFocus }
func (Hydrate) OutboundType() MessageType         { return MsgHydrate }
func (GroupCreated) OutboundType() MessageType    { return MsgGroupCreated }
func (GroupDestroyed) OutboundType() MessageType  { return MsgGroupDestroyed }
func (SplitCreated) OutboundType() MessageType    { return MsgSplitCreated }
func (Unsplit) OutboundType() MessageType         { return MsgUnsplit }
func (Joined) OutboundType() MessageType          { return MsgJoined }
func (ColorUpdated) OutboundType() MessageType    { return MsgColorUpdated }
func (IconUpdated) OutboundType() MessageType     { return MsgIconUpdated }
func (Reordered) OutboundType() MessageType       { return MsgReordered }
func (Data) OutboundType() MessageType            { return MsgData }
func (Exit) OutboundType() MessageType            { return MsgExit }
func (ErrorNotice) OutboundType() MessageType     { return MsgError }

// ============================================================================
// Codec
// ============================================================================

// DecodeInbound parses a wire frame into its typed inbound message.
func DecodeInbound(data []byte) (Inbound, error) {
	var env Message
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	var (
		msg Inbound
		err error
	)
	switch env.Type {
	case MsgReady:
		msg = Ready{}
	case MsgSessionReady:
		msg, err = decodePayload[SessionReady](env.Payload)
	case MsgInput:
		msg, err = decodePayload[Input](env.Payload)
	case MsgResize:
		msg, err = decodePayload[Resize](env.Payload)
	case MsgSelect:
		msg, err = decodePayload[Select](env.Payload)
	case MsgSplitRequest:
		msg, err = decodePayload[SplitRequest](env.Payload)
	case MsgUnsplitRequest:
		msg, err = decodePayload[UnsplitRequest](env.Payload)
	case MsgJoinRequest:
		msg, err = decodePayload[JoinRequest](env.Payload)
	case MsgReorderRequest:
		msg, err = decodePayload[ReorderRequest](env.Payload)
	case MsgGroupReorderRequest:
		msg, err = decodePayload[GroupReorderRequest](env.Payload)
	case MsgCloseRequest:
		msg, err = decodePayload[CloseRequest](env.Payload)
	case MsgRenameRequest:
		msg, err = decodePayload[RenameRequest](env.Payload)
	case MsgColorPickRequest:
		msg, err = decodePayload[ColorPickRequest](env.Payload)
	case MsgIconPickRequest:
		msg, err = decodePayload[IconPickRequest](env.Payload)
	case MsgWidthChange:
		msg, err = decodePayload[WidthChange](env.Payload)
	case MsgGroupSelectedRequest:
		msg, err = decodePayload[GroupSelectedRequest](env.Payload)
	case MsgBell:
		msg, err = decodePayload[Bell](env.Payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// EncodeOutbound wraps a controller message in its envelope.
func EncodeOutbound(msg Outbound) ([]byte, error) {
	payload, err := sonic.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", msg.OutboundType(), err)
	}
	return sonic.Marshal(Message{
		Type:    msg.OutboundType(),
		Payload: payload,
	})
}

func decodePayload[T Inbound](raw json.RawMessage) (T, error) {
	var payload T
	if len(raw) == 0 {
		return payload, fmt.Errorf("missing payload for %s", payload.InboundType())
	}
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("malformed %s payload: %w", payload.InboundType(), err)
	}
	return payload, nil
}
