package runtime

import (
	"context"
	"log/slog"
	"watch-party/domain"
	"watch-party/domain/outbound"
	"watch-party/observability"
)

// Envelope is one outbound event waiting for fan-out.
type Envelope struct {
	Event               outbound.Event
	RoomID              domain.RoomID
	ExcludeConnectionID string
}

// Broadcaster queues outbound events for the fan-out worker.
// Send never blocks: when the queue is full the event is dropped.
type Broadcaster struct {
	log   *slog.Logger
	queue chan Envelope
	stats *observability.Stats
}

func NewBroadcaster(log *slog.Logger, bufferSize int, stats *observability.Stats) *Broadcaster {
	queue := make(chan Envelope, bufferSize)
	observability.WatchQueue(stats, queue)
	return &Broadcaster{log: log, queue: queue, stats: stats}
}

func (b *Broadcaster) Send(_ context.Context, e outbound.Event, roomID domain.RoomID, excludeConnectionID string) {
	select {
	case b.queue <- Envelope{Event: e, RoomID: roomID, ExcludeConnectionID: excludeConnectionID}:
	default:
		b.stats.IncrEventsDropped()
		b.log.Warn("Outbound queue full, dropping event", "room_id", roomID, "event", e.Type())
	}
}

// Queue is drained by the fan-out worker.
func (b *Broadcaster) Queue() <-chan Envelope {
	return b.queue
}
