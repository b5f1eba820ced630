package sink

import (
	"context"
	"fmt"
	"watch-party/domain/outbound"
	"watch-party/errors"
)

// ConnectionSink buffers the outbound events of one websocket connection.
// The connection write loop drains Events.
type ConnectionSink struct {
	Events chan outbound.Event
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	return &ConnectionSink{Events: make(chan outbound.Event, bufferSize)}
}

// Consume waits for room in the buffer until ctx is done. The caller bounds
// the wait with a deadline; past it the event is dropped with ErrSinkFull.
func (s *ConnectionSink) Consume(ctx context.Context, e outbound.Event) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", errors.ErrSinkFull, ctx.Err())
	}
}
