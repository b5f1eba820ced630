package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"watch-party/auth"
	"watch-party/contract"
	"watch-party/domain"
	domainerrors "watch-party/errors"
	"watch-party/moderation"

	"github.com/google/uuid"
)

type IRoomService interface {
	CreateRoom(ctx context.Context, request CreateRoomRequest) (domain.RoomSnapshot, error)
	GetRoom(ctx context.Context, roomID domain.RoomID) (domain.RoomSnapshot, error)
	Connect(ctx context.Context, connectionID string, cmd domain.ConnectCommand, sink contract.EventSink) error
	Disconnect(ctx context.Context, connectionID string, roomID domain.RoomID, viewerID domain.ViewerID) error
	Apply(ctx context.Context, cmd domain.Command) error
	PostMessage(ctx context.Context, request PostMessageRequest) error
	GetMessages(ctx context.Context, roomID domain.RoomID, cursor *string) ([]domain.Message, *string, error)
}

type CreateRoomRequest struct {
	RoomID   domain.RoomID `validate:"omitempty,max=64,excludes=:"`
	FilmID   string        `validate:"required,max=128"`
	IsSerial bool
	OwnerID  domain.ViewerID `validate:"required"`
	UserName string          `validate:"required,max=64"`
	PhotoKey string          `validate:"max=256"`
}

type PostMessageRequest struct {
	RoomID   domain.RoomID   `validate:"required"`
	ViewerID domain.ViewerID `validate:"required"`
	Content  string          `validate:"required,max=2000"`
}

type RoomService struct {
	log          *slog.Logger
	orchestrator contract.IOrchestrator
	messages     contract.MessageRepository
	sanitizer    *moderation.Sanitizer
}

func NewRoomService(log *slog.Logger, orchestrator contract.IOrchestrator,
	messages contract.MessageRepository, sanitizer *moderation.Sanitizer) *RoomService {
	return &RoomService{log: log, orchestrator: orchestrator, messages: messages, sanitizer: sanitizer}
}

// CreateRoom creates a room owned by the requesting viewer. A random id is
// assigned when none is given.
func (s *RoomService) CreateRoom(ctx context.Context, request CreateRoomRequest) (domain.RoomSnapshot, error) {
	if err := auth.Validate(request); err != nil {
		return domain.RoomSnapshot{}, err
	}
	if request.RoomID == "" {
		request.RoomID = domain.RoomID(uuid.NewString())
	}
	owner := domain.NewViewer(request.OwnerID, request.UserName, request.PhotoKey)
	room := domain.NewRoom(request.RoomID, request.FilmID, request.IsSerial, owner)
	if err := s.orchestrator.Create(ctx, room); err != nil {
		return domain.RoomSnapshot{}, err
	}
	return room.Snapshot(), nil
}

func (s *RoomService) GetRoom(ctx context.Context, roomID domain.RoomID) (domain.RoomSnapshot, error) {
	room, err := s.orchestrator.Get(ctx, roomID)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	return room.Snapshot(), nil
}

// Connect registers the connection sink then joins the viewer, or marks it
// back online. The sink is registered first so the connection hears its own
// join.
func (s *RoomService) Connect(ctx context.Context, connectionID string, cmd domain.ConnectCommand, sink contract.EventSink) error {
	if err := auth.Validate(cmd); err != nil {
		return err
	}
	s.orchestrator.RegisterConnection(connectionID, cmd.Room, sink)
	if err := s.orchestrator.Execute(ctx, cmd.Room, cmd.Apply); err != nil {
		s.orchestrator.UnregisterConnection(connectionID, cmd.Room)
		return err
	}
	s.log.Debug("Viewer connected", "room_id", cmd.Room, "viewer_id", cmd.Viewer, "connection_id", connectionID)
	return nil
}

// Disconnect unregisters the connection and marks the viewer offline. A viewer
// who already left, or a room already deleted, is not an error.
func (s *RoomService) Disconnect(ctx context.Context, connectionID string, roomID domain.RoomID, viewerID domain.ViewerID) error {
	s.orchestrator.UnregisterConnection(connectionID, roomID)
	cmd := domain.SetOnlineCommand{Room: roomID, Viewer: viewerID, Online: false}
	err := s.orchestrator.Execute(ctx, roomID, cmd.Apply)
	if errors.Is(err, domainerrors.ErrViewerNotFound) || errors.Is(err, domainerrors.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.log.Debug("Viewer disconnected", "room_id", roomID, "viewer_id", viewerID, "connection_id", connectionID)
	return nil
}

func (s *RoomService) Apply(ctx context.Context, cmd domain.Command) error {
	if err := auth.Validate(cmd); err != nil {
		return err
	}
	return s.orchestrator.Execute(ctx, cmd.RoomID(), cmd.Apply)
}

// PostMessage censors the content and detects its language before it reaches
// the room.
func (s *RoomService) PostMessage(ctx context.Context, request PostMessageRequest) error {
	if err := auth.Validate(request); err != nil {
		return err
	}
	sanitized := s.sanitizer.Sanitize(request.Content)
	cmd := domain.PostMessageCommand{
		Room:   request.RoomID,
		Viewer: request.ViewerID,
		Message: domain.Message{
			ID:        uuid.New(),
			Content:   sanitized.Content,
			Lang:      sanitized.Lang,
			CreatedAt: time.Now().UTC(),
		},
	}
	return s.orchestrator.Execute(ctx, cmd.Room, cmd.Apply)
}

func (s *RoomService) GetMessages(ctx context.Context, roomID domain.RoomID, cursor *string) ([]domain.Message, *string, error) {
	if _, err := s.orchestrator.Get(ctx, roomID); err != nil {
		return nil, nil, err
	}
	messages, next, err := s.messages.GetMessages(ctx, roomID, cursor)
	if err != nil {
		return nil, nil, fmt.Errorf("reading messages of room %s: %w", roomID, err)
	}
	return messages, next, nil
}
