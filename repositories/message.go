package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"watch-party/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// DiskMessage is the stored form of a chat message.
type DiskMessage struct {
	ID        string `json:"id"`
	Room      string `json:"room"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Lang      string `json:"lang,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// messagePrefix is "msg:{len(room_id)}:{room_id}:". The length keeps the
// prefix of one room from matching the keys of another, such as "a" and "a:0".
func messagePrefix(roomID domain.RoomID) string {
	return fmt.Sprintf("msg:%d:%s:", len(roomID), roomID)
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "{prefix}{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (m MessageRepository) StoreMessage(_ context.Context, message domain.Message) error {
	key := fmt.Sprintf("%s%019d:%s",
		messagePrefix(message.RoomID),
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	bytes, err := marshal(lo.ToPtr(fromMessage(message)))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetMessages walks a room backwards from the newest message, or from the one
// just before cursor. The returned cursor points at the last message read.
// It stops collecting messages once the configured limitMessages is reached.
func (m MessageRepository) GetMessages(_ context.Context, roomID domain.RoomID, cursor *string) ([]domain.Message, *string, error) {
	var byteMessages [][]byte
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := messagePrefix(roomID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Past the newest possible timestamp, then walk back
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(byteMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				byteMessages = append(byteMessages, value)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]domain.Message, 0, len(byteMessages))
	for _, b := range byteMessages {
		var diskMessage DiskMessage
		if err = unmarshal(b, &diskMessage); err != nil {
			return nil, nil, err
		}
		if diskMessage.Room != string(roomID) {
			m.log.Warn("Message stored under another room", "room_id", roomID, "message_room", diskMessage.Room)
			continue
		}
		message, err := toMessage(diskMessage)
		if err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	return messages, &lastKey, nil
}

func fromMessage(message domain.Message) DiskMessage {
	return DiskMessage{
		ID:        message.ID.String(),
		Room:      string(message.RoomID),
		Sender:    string(message.SenderID),
		Content:   message.Content,
		Lang:      message.Lang,
		CreatedAt: message.CreatedAt.UnixNano(),
	}
}

func toMessage(diskMessage DiskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(diskMessage.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        parsedID,
		RoomID:    domain.RoomID(diskMessage.Room),
		SenderID:  domain.ViewerID(diskMessage.Sender),
		Content:   diskMessage.Content,
		Lang:      diskMessage.Lang,
		CreatedAt: time.Unix(0, diskMessage.CreatedAt).UTC(),
	}, nil
}
