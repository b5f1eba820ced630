// Package runtime runs units of work against rooms and routes their outbound
// events. It orchestrates the system without containing business logic or
// domain rules.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"watch-party/contract"
	"watch-party/domain"
	"watch-party/domain/event"
	"watch-party/observability"
	"watch-party/propagation"
)

type Orchestrator struct {
	log              *slog.Logger
	supervisor       contract.ISupervisor
	registry         contract.IRegistry
	rooms            contract.RoomRepository
	pipeline         *event.Pipeline
	propagator       *propagation.Propagator
	permanentSinks   []contract.DomainEventSink
	locks            *KeyMutex
	stats            *observability.Stats
	deleteEmptyRooms bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, rooms contract.RoomRepository,
	pipeline *event.Pipeline, propagator *propagation.Propagator,
	locks *KeyMutex, stats *observability.Stats, deleteEmptyRooms bool) *Orchestrator {
	return &Orchestrator{
		log:              log,
		supervisor:       supervisor,
		registry:         registry,
		rooms:            rooms,
		pipeline:         pipeline,
		propagator:       propagator,
		locks:            locks,
		stats:            stats,
		deleteEmptyRooms: deleteEmptyRooms,
	}
}

// Add registers sinks receiving every committed domain event.
func (o *Orchestrator) Add(sinks ...contract.DomainEventSink) *Orchestrator {
	o.permanentSinks = append(o.permanentSinks, sinks...)
	return o
}

// Create persists a brand-new room then dispatches the events raised while
// building it (the owner join).
func (o *Orchestrator) Create(ctx context.Context, room *domain.Room) error {
	lock := o.locks.Get(string(room.ID))
	lock.Lock()
	defer lock.Unlock()

	events := room.PendingEvents()
	if err := o.pipeline.Dispatch(room, events); err != nil {
		return fmt.Errorf("deriving events of room %s: %w", room.ID, err)
	}
	if err := o.rooms.Add(ctx, room); err != nil {
		return err
	}
	o.stats.IncrRoomsCreated()
	o.log.Info("Room created", "room_id", room.ID, "owner_id", room.OwnerID())
	o.publish(ctx, room)
	return nil
}

// Execute runs one unit of work against a room.
//
// The room is loaded under its key lock, mutated, then the derivation handlers
// run before the room is saved. Outbound events leave only once the save
// succeeded: any error before that point has no visible effect.
func (o *Orchestrator) Execute(ctx context.Context, roomID domain.RoomID, mutate func(room *domain.Room) error) error {
	lock := o.locks.Get(string(roomID))
	lock.Lock()
	defer lock.Unlock()

	room, err := o.rooms.Get(ctx, roomID)
	if err != nil {
		o.stats.IncrCommandsRejected()
		return err
	}
	if err := mutate(room); err != nil {
		o.stats.IncrCommandsRejected()
		return err
	}

	events := room.PendingEvents()
	if len(events) == 0 {
		// Re-sent state, nothing to save nor to tell.
		o.stats.IncrCommandsApplied()
		return nil
	}
	if err := o.pipeline.Dispatch(room, events); err != nil {
		o.stats.IncrCommandsRejected()
		return fmt.Errorf("deriving events of room %s: %w", roomID, err)
	}
	if err := o.save(ctx, room); err != nil {
		o.stats.IncrCommandsRejected()
		return err
	}
	o.stats.IncrCommandsApplied()
	o.publish(ctx, room)
	return nil
}

func (o *Orchestrator) save(ctx context.Context, room *domain.Room) error {
	if o.deleteEmptyRooms && room.Len() == 0 {
		if err := o.rooms.Delete(ctx, room.ID); err != nil {
			return err
		}
		o.stats.IncrRoomsDeleted()
		o.log.Info("Empty room deleted", "room_id", room.ID)
		return nil
	}
	return o.rooms.Update(ctx, room)
}

// publish runs the after-save phase: permanent sinks, then propagation.
// Failures here are logged, the room is already committed.
func (o *Orchestrator) publish(ctx context.Context, room *domain.Room) {
	events := room.FlushEvents()
	o.stats.AddEventsDerived(len(events))
	for _, e := range events {
		for _, sink := range o.permanentSinks {
			if err := sink.Consume(ctx, e); err != nil {
				o.log.Error("Sink failed to consume event", "room_id", room.ID, "event", e.Name(), "error", err)
			}
		}
	}
	o.propagator.Propagate(ctx, room, events)
	room.ClearChanges()
}

// Get loads a room without locking it. The result must not be mutated.
func (o *Orchestrator) Get(ctx context.Context, roomID domain.RoomID) (*domain.Room, error) {
	return o.rooms.Get(ctx, roomID)
}

func (o *Orchestrator) RegisterConnection(connectionID string, roomID domain.RoomID, sink contract.EventSink) {
	o.registry.Subscribe(connectionID, roomID, sink)
	o.stats.ConnectionOpened()
}

func (o *Orchestrator) UnregisterConnection(connectionID string, roomID domain.RoomID) {
	o.registry.Unsubscribe(connectionID, roomID)
	o.stats.ConnectionClosed()
}

// Start runs every supervised worker until ctx is canceled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context, workers ...contract.Worker) {
	o.supervisor.Add(workers...)
	o.log.Info("Starting orchestrator and all supervised workers", "workers", len(workers))
	o.supervisor.Run(ctx)
}

// Stop initiates a graceful shutdown of the supervised workers.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
