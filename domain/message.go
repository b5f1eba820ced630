// Package domain contains the room synchronization core.
// This file defines chat Messages posted in a room.
// Messages are immutable once created.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat line.
type Message struct {
	ID        uuid.UUID // unique identifier
	RoomID    RoomID
	SenderID  ViewerID
	Content   string
	Lang      string // ISO 639-1, empty when unknown
	CreatedAt time.Time
}
