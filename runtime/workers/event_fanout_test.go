package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"
	"watch-party/contract"
	"watch-party/domain/outbound"
	"watch-party/mocks"
	"watch-party/observability"
	"watch-party/runtime"
	"watch-party/sink"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanoutWorker_Fanout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)
	roomSinks := []contract.EventSink{mockSink, mockSink}
	stats := observability.NewStats()

	fanoutWorker := NewEventFanout(log, mockRegistry, nil, stats, 10*time.Second)
	evt := outbound.PauseEvent{Pause: true}

	// Given two sinks exist besides the excluded connection
	mockRegistry.EXPECT().GetSinksForRoom(gomock.Any(), "conn-alice").Return(roomSinks).Times(1)
	// Given both sinks consume the event
	mockSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(2)

	// When an envelope is handled by the worker
	fanoutWorker.Fanout(context.Background(), runtime.Envelope{Event: evt, RoomID: "room-1", ExcludeConnectionID: "conn-alice"})

	// Then both deliveries are counted
	req.Equal(uint64(2), stats.Snapshot().EventsSent)
}

func TestEventFanoutWorker_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)
	stats := observability.NewStats()

	sinkTimeout := 20 * time.Millisecond
	fanoutWorker := NewEventFanout(log, mockRegistry, nil, stats, sinkTimeout)

	// Given one slow sink
	mockRegistry.EXPECT().GetSinksForRoom(gomock.Any(), "").Return([]contract.EventSink{mockSink}).Times(1)
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(
			func(ctx context.Context, evt outbound.Event) error {
				<-ctx.Done()     // Waiting for timeout to trigger cancellation
				return ctx.Err() // Sending back "context deadline exceeded"
			},
		).
		Times(1)

	// When an envelope is handled by the worker
	start := time.Now()
	fanoutWorker.Fanout(context.Background(), runtime.Envelope{Event: outbound.LeaveEvent{ID: "bob"}, RoomID: "room-1"})

	// Then the sink is abandoned after the timeout
	req.Less(time.Since(start), time.Second)
	req.Equal(uint64(1), stats.Snapshot().EventsDropped)
	req.Zero(stats.Snapshot().EventsSent)
}

func TestEventFanoutWorker_FullConnectionIsAbandoned(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	stats := observability.NewStats()
	registry := runtime.NewRegistry()

	// Given a stalled connection whose buffer is full, and a healthy one
	stalled := sink.NewConnectionSink(1)
	req.NoError(stalled.Consume(context.Background(), outbound.PauseEvent{Pause: true}))
	healthy := sink.NewConnectionSink(1)
	registry.Subscribe("conn-stalled", "room-1", stalled)
	registry.Subscribe("conn-healthy", "room-1", healthy)

	sinkTimeout := 30 * time.Millisecond
	fanoutWorker := NewEventFanout(log, registry, nil, stats, sinkTimeout)

	// When an event is fanned out
	start := time.Now()
	fanoutWorker.Fanout(context.Background(), runtime.Envelope{Event: outbound.SpeedEvent{Speed: 2}, RoomID: "room-1"})

	// Then the stalled connection is given the timeout, then dropped
	req.GreaterOrEqual(time.Since(start), sinkTimeout)
	req.Less(time.Since(start), time.Second)
	req.Equal(uint64(1), stats.Snapshot().EventsDropped)
	req.Equal(uint64(1), stats.Snapshot().EventsSent)
	req.Equal(outbound.SpeedEvent{Speed: 2}, <-healthy.Events)
	req.Len(stalled.Events, 1)
}

func TestEventFanoutWorker_Run(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)
	queue := make(chan runtime.Envelope, 1)

	fanoutWorker := NewEventFanout(log, mockRegistry, queue, observability.NewStats(), time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	mockRegistry.EXPECT().GetSinksForRoom(gomock.Any(), gomock.Any()).Return([]contract.EventSink{mockSink}).Times(1)
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Do(
		func(ctx context.Context, evt outbound.Event) {
			close(done)
		}).Return(nil).Times(1)

	// Given the worker is running
	stopped := make(chan error)
	go func() { stopped <- fanoutWorker.Run(ctx) }()

	// When an envelope is queued
	queue <- runtime.Envelope{Event: outbound.SpeedEvent{Speed: 2}, RoomID: "room-1"}

	// Then it is delivered
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Event was not delivered at time")
	}

	// And the worker stops with its context
	cancel()
	req.NoError(<-stopped)
}
