// Package observability keeps process wide counters reported by the health
// worker and the /health endpoint.
package observability

import (
	"sync/atomic"
)

// StatsSnapshot is a point in time copy of Stats.
type StatsSnapshot struct {
	CommandsApplied  uint64 `json:"commands_applied"`
	CommandsRejected uint64 `json:"commands_rejected"`
	EventsDerived    uint64 `json:"events_derived"`
	EventsSent       uint64 `json:"events_sent"`
	EventsDropped    uint64 `json:"events_dropped"`
	RoomsCreated     uint64 `json:"rooms_created"`
	RoomsDeleted     uint64 `json:"rooms_deleted"`
	Connections      int64  `json:"connections"`
	QueueLength      int    `json:"queue_length"`
	QueueCapacity    int    `json:"queue_capacity"`
}

// Stats is safe for concurrent use.
type Stats struct {
	commandsApplied  atomic.Uint64
	commandsRejected atomic.Uint64
	eventsDerived    atomic.Uint64
	eventsSent       atomic.Uint64
	eventsDropped    atomic.Uint64
	roomsCreated     atomic.Uint64
	roomsDeleted     atomic.Uint64
	connections      atomic.Int64
	queue            atomic.Pointer[queueProbe]
}

type queueProbe struct {
	length   func() int
	capacity int
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) IncrCommandsApplied()   { s.commandsApplied.Add(1) }
func (s *Stats) IncrCommandsRejected()  { s.commandsRejected.Add(1) }
func (s *Stats) AddEventsDerived(n int) { s.eventsDerived.Add(uint64(n)) }
func (s *Stats) IncrEventsSent()        { s.eventsSent.Add(1) }
func (s *Stats) IncrEventsDropped()     { s.eventsDropped.Add(1) }
func (s *Stats) IncrRoomsCreated()      { s.roomsCreated.Add(1) }
func (s *Stats) IncrRoomsDeleted()      { s.roomsDeleted.Add(1) }
func (s *Stats) ConnectionOpened()      { s.connections.Add(1) }
func (s *Stats) ConnectionClosed()      { s.connections.Add(-1) }

// WatchQueue samples the outbound queue on every Snapshot.
// Reading len and cap of a channel never blocks.
func WatchQueue[T any](s *Stats, queue chan T) {
	s.queue.Store(&queueProbe{length: func() int { return len(queue) }, capacity: cap(queue)})
}

func (s *Stats) Snapshot() StatsSnapshot {
	snapshot := StatsSnapshot{
		CommandsApplied:  s.commandsApplied.Load(),
		CommandsRejected: s.commandsRejected.Load(),
		EventsDerived:    s.eventsDerived.Load(),
		EventsSent:       s.eventsSent.Load(),
		EventsDropped:    s.eventsDropped.Load(),
		RoomsCreated:     s.roomsCreated.Load(),
		RoomsDeleted:     s.roomsDeleted.Load(),
		Connections:      s.connections.Load(),
	}
	if probe := s.queue.Load(); probe != nil {
		snapshot.QueueLength = probe.length()
		snapshot.QueueCapacity = probe.capacity
	}
	return snapshot
}
