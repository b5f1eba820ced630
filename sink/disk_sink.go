package sink

import (
	"context"
	"log/slog"
	"watch-party/contract"
	"watch-party/domain"
)

// DiskSink stores chat messages once the room that received them is saved.
type DiskSink struct {
	repository contract.MessageRepository
	log        *slog.Logger
}

func NewDiskSink(repository contract.MessageRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, log: log}
}

func (d DiskSink) Consume(ctx context.Context, e domain.DomainEvent) error {
	switch evt := e.(type) {
	case domain.NewMessage:
		d.log.Debug("Storing message", "room_id", evt.Room, "message_id", evt.Message.ID)
		return d.repository.StoreMessage(ctx, evt.Message)
	default:
		return nil
	}
}
