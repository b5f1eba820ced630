package propagation

import (
	"context"
	"log/slog"
	"testing"
	"time"
	"watch-party/domain"
	"watch-party/domain/outbound"
	"watch-party/mocks"
	"watch-party/requestctx"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	roomID  = domain.RoomID("room-1")
	ownerID = domain.ViewerID("alice")
	guestID = domain.ViewerID("bob")
)

type sent struct {
	event   outbound.Event
	exclude string
}

// recordingSender returns a mocked sender recording every call in order.
func recordingSender(t *testing.T) (*mocks.MockEventSender, *[]sent) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockEventSender(ctrl)
	calls := make([]sent, 0)
	sender.EXPECT().Send(gomock.Any(), gomock.Any(), roomID, gomock.Any()).Do(
		func(ctx context.Context, e outbound.Event, roomID domain.RoomID, exclude string) {
			calls = append(calls, sent{event: e, exclude: exclude})
		}).AnyTimes()
	return sender, &calls
}

func newRoom(t *testing.T) *domain.Room {
	t.Helper()
	room := domain.NewRoom(roomID, "film-1", true, domain.NewViewer(ownerID, "Alice", "alice.png"))
	require.NoError(t, room.Join(domain.NewViewer(guestID, "Bob", "bob.png")))
	require.NoError(t, room.SetPause(ownerID, false, 0, false))
	room.FlushEvents()
	room.ClearChanges()
	return room
}

func TestPropagator_OwnerPause(t *testing.T) {
	req := require.New(t)
	sender, calls := recordingSender(t)
	propagator := NewPropagator(logs.GetLoggerFromLevel(slog.LevelDebug), sender)
	room := newRoom(t)
	ctx := requestctx.WithConnectionID(context.Background(), "conn-alice")

	// Given the owner pauses at ten minutes
	req.NoError(room.SetPause(ownerID, true, 10*time.Minute, false))
	events := room.FlushEvents()
	req.Len(events, 2)

	// When the unit of work is propagated
	propagator.Propagate(ctx, room, events)

	// Then followers receive the playback commands, not the owner connection
	req.Len(*calls, 3)
	req.Equal(sent{event: outbound.PauseEvent{Pause: true}, exclude: "conn-alice"}, (*calls)[0])
	req.Equal(sent{event: outbound.TimeLineEvent{Ticks: 6_000_000_000}, exclude: "conn-alice"}, (*calls)[1])

	// And everybody hears about the changed viewer
	update, ok := (*calls)[2].event.(outbound.UpdateViewerEvent)
	req.True(ok)
	req.Empty((*calls)[2].exclude)
	req.Equal(string(ownerID), update.ID)
	req.Equal([]string{"onPause", "timeLine"}, update.UpdatedFields)
	req.True(update.Viewer.OnPause)
}

func TestPropagator_FollowerSeekIsNotBroadcast(t *testing.T) {
	req := require.New(t)
	sender, calls := recordingSender(t)
	propagator := NewPropagator(logs.GetLoggerFromLevel(slog.LevelDebug), sender)
	room := newRoom(t)

	// Given a follower seeks by hand
	req.NoError(room.SetTimeLine(guestID, 5*time.Minute, false))
	req.NoError(room.SetSpeed(guestID, 2, false))
	req.NoError(room.SetEpisode(guestID, 1, 2, false))

	// When propagated
	propagator.Propagate(context.Background(), room, room.FlushEvents())

	// Then only the viewer update goes out
	req.Len(*calls, 1)
	update, ok := (*calls)[0].event.(outbound.UpdateViewerEvent)
	req.True(ok)
	req.Equal(string(guestID), update.ID)
}

func TestPropagator_MembershipAndNotifications(t *testing.T) {
	req := require.New(t)
	sender, calls := recordingSender(t)
	propagator := NewPropagator(logs.GetLoggerFromLevel(slog.LevelDebug), sender)
	room := newRoom(t)
	ctx := requestctx.WithConnectionID(context.Background(), "conn-alice")

	req.NoError(room.Join(domain.NewViewer("carol", "Carol", "")))
	req.NoError(room.Beep(ownerID, guestID))
	req.NoError(room.Scream(guestID, ownerID))
	req.NoError(room.Kick("carol"))
	req.NoError(room.Leave(guestID))

	propagator.Propagate(ctx, room, room.FlushEvents())

	types := make([]string, 0)
	for _, c := range *calls {
		types = append(types, c.event.Type())
		// Membership and notifications reach the whole room
		req.Empty(c.exclude)
	}
	req.Equal([]string{
		"JoinEvent", "NotificationEvent",
		"NotificationEvent",
		"NotificationEvent",
		"LeaveEvent", "NotificationEvent",
		"LeaveEvent", "NotificationEvent",
	}, types)
	req.Equal(outbound.JoinEvent{Viewer: domain.ViewerSnapshot{ID: "carol"}}, (*calls)[0].event)
	req.Equal(outbound.NotificationEvent{Kind: outbound.KindBeep, Initiator: string(ownerID), Target: string(guestID)}, (*calls)[2].event)
	req.Equal(outbound.NotificationEvent{Kind: outbound.KindKicked, Initiator: "carol"}, (*calls)[5].event)
}

func TestPropagator_MessageAndNoOp(t *testing.T) {
	req := require.New(t)
	sender, calls := recordingSender(t)
	propagator := NewPropagator(logs.GetLoggerFromLevel(slog.LevelDebug), sender)
	room := newRoom(t)

	// Given the owner re-sends its current state
	req.NoError(room.SetPause(ownerID, false, 0, false))
	req.NoError(room.SetSpeed(ownerID, 1, false))
	propagator.Propagate(context.Background(), room, room.FlushEvents())

	// Then nothing is sent
	req.Empty(*calls)

	// When a message is posted
	req.NoError(room.SendMessage(guestID, domain.Message{Content: "hi"}))
	propagator.Propagate(context.Background(), room, room.FlushEvents())

	req.Len(*calls, 1)
	msg, ok := (*calls)[0].event.(outbound.MessageEvent)
	req.True(ok)
	req.Equal("hi", msg.Content)
	req.Equal(string(guestID), msg.SenderID)
}
