package runtime

import (
	"context"
	"log/slog"
	"testing"
	"time"
	"watch-party/domain"
	"watch-party/domain/event"
	"watch-party/domain/outbound"
	"watch-party/errors"
	"watch-party/mocks"
	"watch-party/observability"
	"watch-party/propagation"
	"watch-party/repositories"
	"watch-party/requestctx"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	roomID  = domain.RoomID("room-1")
	ownerID = domain.ViewerID("alice")
	guestID = domain.ViewerID("bob")
)

type fixture struct {
	orchestrator *Orchestrator
	rooms        *repositories.RoomRepository
	sender       *mocks.MockEventSender
	supervisor   *mocks.MockISupervisor
	stats        *observability.Stats
}

func newFixture(t *testing.T, deleteEmptyRooms bool) fixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rooms := repositories.NewRoomRepository(db, log)
	sender := mocks.NewMockEventSender(ctrl)
	supervisor := mocks.NewMockISupervisor(ctrl)
	stats := observability.NewStats()
	orchestrator := NewOrchestrator(log, supervisor, NewRegistry(), rooms,
		event.NewDefaultPipeline(log), propagation.NewPropagator(log, sender),
		NewKeyMutex(16), stats, deleteEmptyRooms)
	return fixture{orchestrator: orchestrator, rooms: rooms, sender: sender, supervisor: supervisor, stats: stats}
}

// createRoom stores a room with the owner playing and a guest, ignoring the
// outbound events it produced.
func (f fixture) createRoom(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	f.sender.EXPECT().Send(gomock.Any(), gomock.Any(), roomID, "").AnyTimes()
	room := domain.NewRoom(roomID, "film-1", false, domain.NewViewer(ownerID, "Alice", "alice.png"))
	require.NoError(t, f.orchestrator.Create(ctx, room))
	require.NoError(t, f.orchestrator.Execute(ctx, roomID, func(room *domain.Room) error {
		if err := room.Join(domain.NewViewer(guestID, "Bob", "bob.png")); err != nil {
			return err
		}
		return room.SetPause(ownerID, false, 0, false)
	}))
}

func TestOrchestrator_Create_DerivesAndPersists(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, false)

	var sent []outbound.Event
	f.sender.EXPECT().Send(gomock.Any(), gomock.Any(), roomID, "").Do(
		func(_ context.Context, e outbound.Event, _ domain.RoomID, _ string) {
			sent = append(sent, e)
		}).AnyTimes()

	// When a room is created
	room := domain.NewRoom(roomID, "film-1", false, domain.NewViewer(ownerID, "Alice", "alice.png"))
	req.NoError(f.orchestrator.Create(ctx, room))

	// Then the owner join is derived and saved
	stored, err := f.orchestrator.Get(ctx, roomID)
	req.NoError(err)
	req.Equal(uint64(1), stored.Version())
	owner, ok := stored.Owner()
	req.True(ok)
	req.True(owner.HasTag(event.TagHost))

	// And the join has been broadcast
	req.NotEmpty(sent)
	req.Equal("JoinEvent", sent[0].Type())

	// And the events have been flushed
	req.Empty(room.PendingEvents())
	req.Equal(uint64(1), f.stats.Snapshot().RoomsCreated)

	// When the same room is created again
	err = f.orchestrator.Create(ctx, domain.NewRoom(roomID, "film-1", false, domain.NewViewer(ownerID, "Alice", "")))

	// Then it is refused
	req.ErrorIs(err, errors.ErrRoomAlreadyExists)
}

func TestOrchestrator_Execute_OwnerPause(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, false)
	f.createRoom(t)
	ctx := requestctx.WithConnectionID(context.Background(), "conn-alice")

	// Given the owner connection is the one sending the pause
	excluded := 0
	f.sender.EXPECT().Send(gomock.Any(), gomock.Any(), roomID, "conn-alice").Do(
		func(_ context.Context, e outbound.Event, _ domain.RoomID, _ string) {
			excluded++
		}).Times(2)

	// When the owner pauses at ten minutes
	err := f.orchestrator.Execute(ctx, roomID, func(room *domain.Room) error {
		return room.SetPause(ownerID, true, 10*time.Minute, false)
	})

	// Then both playback commands skip the owner connection
	req.NoError(err)
	req.Equal(2, excluded)

	// And the new state is saved
	stored, err := f.rooms.Get(ctx, roomID)
	req.NoError(err)
	owner, _ := stored.Owner()
	req.True(owner.OnPause())
	req.Equal(10*time.Minute, owner.TimeLine())
	req.Empty(owner.ChangedFields().Names())
}

func TestOrchestrator_Execute_ErrorHasNoEffect(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, false)
	f.createRoom(t)
	before, err := f.rooms.Get(ctx, roomID)
	req.NoError(err)

	// When a guest tries to kick the owner after changing its own speed
	err = f.orchestrator.Execute(ctx, roomID, func(room *domain.Room) error {
		if err := room.SetSpeed(guestID, 2, false); err != nil {
			return err
		}
		return domain.KickCommand{Room: roomID, Initiator: guestID, Target: ownerID}.Apply(room)
	})

	// Then the whole unit of work is abandoned
	req.ErrorIs(err, errors.ErrActionNotAllowed)
	after, err := f.rooms.Get(ctx, roomID)
	req.NoError(err)
	req.Equal(before.Version(), after.Version())
	guest, _ := after.Viewer(guestID)
	req.Equal(1.0, guest.Speed())
	req.Equal(uint64(1), f.stats.Snapshot().CommandsRejected)
}

func TestOrchestrator_Execute_RoomNotFound(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, false)

	// When a command targets an unknown room
	err := f.orchestrator.Execute(context.Background(), "unknown", func(room *domain.Room) error {
		req.Fail("mutator must not run")
		return nil
	})

	// Then it fails
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func TestOrchestrator_Execute_NoOp(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, false)
	f.createRoom(t)
	before, err := f.rooms.Get(ctx, roomID)
	req.NoError(err)

	// When the guest re-sends a state it already has
	err = f.orchestrator.Execute(ctx, roomID, func(room *domain.Room) error {
		return room.SetMuted(guestID, false)
	})

	// Then nothing is saved
	req.NoError(err)
	after, err := f.rooms.Get(ctx, roomID)
	req.NoError(err)
	req.Equal(before.Version(), after.Version())
}

func TestOrchestrator_Execute_DeletesEmptyRoom(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, true)
	f.createRoom(t)

	// When every viewer leaves
	req.NoError(f.orchestrator.Execute(ctx, roomID, func(room *domain.Room) error {
		return room.Leave(guestID)
	}))
	req.NoError(f.orchestrator.Execute(ctx, roomID, func(room *domain.Room) error {
		return room.Leave(ownerID)
	}))

	// Then the room is gone
	_, err := f.orchestrator.Get(ctx, roomID)
	req.ErrorIs(err, errors.ErrRoomNotFound)
	req.Equal(uint64(1), f.stats.Snapshot().RoomsDeleted)
}

func TestOrchestrator_Execute_PermanentSinks(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, false)
	f.createRoom(t)
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockDomainEventSink(ctrl)
	f.orchestrator.Add(sink)

	message := domain.Message{ID: uuid.New(), SenderID: guestID, Content: "hello", CreatedAt: time.Now().UTC()}

	// Given the sink receives the message event once the room is saved
	sink.EXPECT().Consume(gomock.Any(), gomock.AssignableToTypeOf(domain.NewMessage{})).
		DoAndReturn(func(_ context.Context, e domain.DomainEvent) error {
			stored, err := f.rooms.Get(ctx, roomID)
			req.NoError(err)
			guest, _ := stored.Viewer(guestID)
			req.Equal(1, guest.Statistic(event.StatMessagesCount))
			req.Equal(roomID, e.(domain.NewMessage).Message.RoomID)
			return nil
		}).Times(1)

	// When the guest posts a message
	err := f.orchestrator.Execute(ctx, roomID, func(room *domain.Room) error {
		return room.SendMessage(guestID, message)
	})

	// Then it succeeds
	req.NoError(err)
}

func TestOrchestrator_StartStop(t *testing.T) {
	f := newFixture(t, false)
	worker := mocks.NewMockWorker(gomock.NewController(t))

	// Given the supervisor receives the worker and runs
	f.supervisor.EXPECT().Add(worker).Return(f.supervisor).Times(1)
	f.supervisor.EXPECT().Run(gomock.Any()).Times(1)
	f.supervisor.EXPECT().Stop().Times(1)

	// When the orchestrator starts then stops
	f.orchestrator.Start(context.Background(), worker)
	f.orchestrator.Stop()
}

func TestOrchestrator_Connections(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, false)
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockEventSink(ctrl)

	// When a connection registers
	f.orchestrator.RegisterConnection("conn-1", roomID, sink)

	// Then it is counted
	req.Equal(int64(1), f.stats.Snapshot().Connections)
	req.Equal(1, f.orchestrator.registry.(*Registry).Connections(roomID))

	// When it unregisters
	f.orchestrator.UnregisterConnection("conn-1", roomID)

	// Then nothing is left
	req.Equal(int64(0), f.stats.Snapshot().Connections)
	req.Equal(0, f.orchestrator.registry.(*Registry).Connections(roomID))
}
