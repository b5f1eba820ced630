// Package propagation decides what connected clients hear about a committed
// unit of work. It runs after the room has been saved.
package propagation

import (
	"context"
	"log/slog"
	"watch-party/contract"
	"watch-party/domain"
	"watch-party/domain/outbound"
	"watch-party/requestctx"
)

// Propagator translates domain events into outbound events.
//
// Only the owner drives the shared timeline: owner pause, timeline, speed and
// episode changes become playback commands for everybody but the connection
// that issued them. Follower deviations stay local and only surface through
// UpdateViewerEvent.
type Propagator struct {
	log    *slog.Logger
	sender contract.EventSender
}

func NewPropagator(log *slog.Logger, sender contract.EventSender) *Propagator {
	return &Propagator{log: log, sender: sender}
}

// Propagate sends the outbound events for events in order, then one update per
// viewer carrying a non-empty change set.
func (p *Propagator) Propagate(ctx context.Context, room *domain.Room, events []domain.DomainEvent) {
	exclude := requestctx.ConnectionIDFromContext(ctx)
	for _, e := range events {
		switch ev := e.(type) {
		case domain.ViewerPauseChanged:
			p.fromOwner(ctx, room, ev.Viewer, outbound.PauseEvent{Pause: ev.Pause}, exclude)
		case domain.ViewerTimeLineChanged:
			p.fromOwner(ctx, room, ev.Viewer, outbound.TimeLineEvent{Ticks: domain.ToTicks(ev.TimeLine)}, exclude)
		case domain.ViewerSpeedChanged:
			p.fromOwner(ctx, room, ev.Viewer, outbound.SpeedEvent{Speed: ev.Speed}, exclude)
		case domain.ViewerEpisodeChanged:
			p.fromOwner(ctx, room, ev.Viewer, outbound.EpisodeEvent{Season: ev.Season, Episode: ev.Episode}, exclude)
		case domain.ViewerJoined:
			p.send(ctx, room, outbound.JoinEvent{Viewer: snapshotOf(room, ev.Viewer)})
			p.send(ctx, room, outbound.NotificationEvent{Kind: outbound.KindJoined, Initiator: string(ev.Viewer)})
		case domain.ViewerLeaved:
			p.send(ctx, room, outbound.LeaveEvent{ID: string(ev.Viewer)})
			p.send(ctx, room, outbound.NotificationEvent{Kind: outbound.KindLeaved, Initiator: string(ev.Viewer)})
		case domain.ViewerKicked:
			p.send(ctx, room, outbound.LeaveEvent{ID: string(ev.Viewer)})
			p.send(ctx, room, outbound.NotificationEvent{Kind: outbound.KindKicked, Initiator: string(ev.Viewer)})
		case domain.ViewerBeeped:
			p.send(ctx, room, outbound.NotificationEvent{Kind: outbound.KindBeep, Initiator: string(ev.Initiator), Target: string(ev.Target)})
		case domain.ViewerScreamed:
			p.send(ctx, room, outbound.NotificationEvent{Kind: outbound.KindScream, Initiator: string(ev.Initiator), Target: string(ev.Target)})
		case domain.NewMessage:
			p.send(ctx, room, outbound.FromMessage(ev.Message))
		}
	}

	for _, v := range room.Viewers() {
		fields := v.ChangedFields()
		if fields.IsEmpty() {
			continue
		}
		p.send(ctx, room, outbound.UpdateViewerEvent{
			ID:            string(v.ID()),
			UpdatedFields: fields.Names(),
			Viewer:        v.Snapshot(),
		})
	}
}

func (p *Propagator) fromOwner(ctx context.Context, room *domain.Room, id domain.ViewerID, e outbound.Event, exclude string) {
	if !room.IsOwner(id) {
		return
	}
	p.log.Debug("owner playback broadcast", "room_id", room.ID, "event", e.Type(), "excluded", exclude)
	p.sender.Send(ctx, e, room.ID, exclude)
}

func (p *Propagator) send(ctx context.Context, room *domain.Room, e outbound.Event) {
	p.sender.Send(ctx, e, room.ID, "")
}

// snapshotOf falls back to a bare id when the viewer already left in the same
// unit of work.
func snapshotOf(room *domain.Room, id domain.ViewerID) domain.ViewerSnapshot {
	if v, ok := room.Viewer(id); ok {
		return v.Snapshot()
	}
	return domain.ViewerSnapshot{ID: string(id)}
}
