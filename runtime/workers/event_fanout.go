package workers

import (
	"context"
	"log/slog"
	"time"
	"watch-party/contract"
	"watch-party/observability"
	"watch-party/runtime"
)

// EventFanout delivers queued outbound events to the connections of a room.
//
// It provides best-effort fan-out with no guarantees regarding delivery or
// retries. A slow sink is abandoned after sinkTimeout so one client cannot hold
// the others back.
type EventFanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	queue       <-chan runtime.Envelope
	stats       *observability.Stats
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry, queue <-chan runtime.Envelope,
	stats *observability.Stats, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, registry: registry, queue: queue, stats: stats, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case envelope := <-w.queue:
			w.Fanout(ctx, envelope)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout One sink for each connection of the room
func (w *EventFanout) Fanout(ctx context.Context, envelope runtime.Envelope) {
	for _, sink := range w.registry.GetSinksForRoom(envelope.RoomID, envelope.ExcludeConnectionID) {
		w.consume(ctx, sink, envelope)
	}
}

func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, envelope runtime.Envelope) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, envelope.Event); err != nil {
		w.stats.IncrEventsDropped()
		w.log.Warn("Sink failed to consume event", "room_id", envelope.RoomID, "event", envelope.Event.Type(), "error", err)
		return
	}
	w.stats.IncrEventsSent()
}
