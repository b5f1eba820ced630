//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"watch-party/domain"
	"watch-party/domain/outbound"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// RoomRepository persists Room aggregates.
// Update fails with ErrConcurrentUpdate when the stored version moved.
type RoomRepository interface {
	Get(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	Add(ctx context.Context, room *domain.Room) error
	Update(ctx context.Context, room *domain.Room) error
	Delete(ctx context.Context, id domain.RoomID) error
	List(ctx context.Context) ([]domain.RoomSnapshot, error)
}

type MessageRepository interface {
	StoreMessage(ctx context.Context, message domain.Message) error
	GetMessages(ctx context.Context, roomID domain.RoomID, cursor *string) ([]domain.Message, *string, error)
}

// EventSender broadcasts an outbound event to every connection of a room.
// excludeConnectionID is skipped, empty means nobody.
type EventSender interface {
	Send(ctx context.Context, e outbound.Event, roomID domain.RoomID, excludeConnectionID string)
}

type EventSink interface {
	Consume(ctx context.Context, e outbound.Event) error
}

// DomainEventSink receives every domain event of a unit of work once the room
// has been saved.
type DomainEventSink interface {
	Consume(ctx context.Context, e domain.DomainEvent) error
}

type IRegistry interface {
	GetSinksForRoom(roomID domain.RoomID, excludeConnectionID string) []EventSink
	Subscribe(connectionID string, roomID domain.RoomID, sink EventSink)
	Unsubscribe(connectionID string, roomID domain.RoomID)
}

type IOrchestrator interface {
	Create(ctx context.Context, room *domain.Room) error
	Execute(ctx context.Context, roomID domain.RoomID, mutate func(room *domain.Room) error) error
	Get(ctx context.Context, roomID domain.RoomID) (*domain.Room, error)
	RegisterConnection(connectionID string, roomID domain.RoomID, sink EventSink)
	UnregisterConnection(connectionID string, roomID domain.RoomID)
}
