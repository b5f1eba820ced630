// Package outbound defines the events pushed to connected clients.
// Type names and json field names are the wire contract.
package outbound

import (
	"time"
	"watch-party/domain"
)

type Event interface {
	Type() string
}

// Envelope is the frame written on the websocket.
type Envelope struct {
	Type    string `json:"type"`
	Payload Event  `json:"payload"`
}

func Wrap(e Event) Envelope {
	return Envelope{Type: e.Type(), Payload: e}
}

const (
	KindJoined = "joined"
	KindLeaved = "leaved"
	KindKicked = "kicked"
	KindBeep   = "beep"
	KindScream = "scream"
)

type PauseEvent struct {
	Pause bool `json:"pause"`
}

type TimeLineEvent struct {
	Ticks int64 `json:"ticks"`
}

type SpeedEvent struct {
	Speed float64 `json:"speed"`
}

type EpisodeEvent struct {
	Season  int `json:"season"`
	Episode int `json:"episode"`
}

type JoinEvent struct {
	Viewer domain.ViewerSnapshot `json:"viewer"`
}

type LeaveEvent struct {
	ID string `json:"id"`
}

// NotificationEvent is a human readable notice. Target is empty for joins and
// departures.
type NotificationEvent struct {
	Kind      string `json:"kind"`
	Initiator string `json:"initiator"`
	Target    string `json:"target,omitempty"`
}

type MessageEvent struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	Lang      string    `json:"lang,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateViewerEvent struct {
	ID            string                `json:"id"`
	UpdatedFields []string              `json:"updatedFields"`
	Viewer        domain.ViewerSnapshot `json:"viewer"`
}

// ErrorEvent answers a rejected inbound message. It is only sent to the
// connection that issued it.
type ErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (PauseEvent) Type() string        { return "PauseEvent" }
func (TimeLineEvent) Type() string     { return "TimeLineEvent" }
func (SpeedEvent) Type() string        { return "SpeedEvent" }
func (EpisodeEvent) Type() string      { return "EpisodeEvent" }
func (JoinEvent) Type() string         { return "JoinEvent" }
func (LeaveEvent) Type() string        { return "LeaveEvent" }
func (NotificationEvent) Type() string { return "NotificationEvent" }
func (MessageEvent) Type() string      { return "MessageEvent" }
func (UpdateViewerEvent) Type() string { return "UpdateViewerEvent" }
func (ErrorEvent) Type() string        { return "ErrorEvent" }

func FromMessage(m domain.Message) MessageEvent {
	return MessageEvent{
		ID:        m.ID.String(),
		SenderID:  string(m.SenderID),
		Content:   m.Content,
		Lang:      m.Lang,
		CreatedAt: m.CreatedAt,
	}
}
