package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"watch-party/auth"
	"watch-party/domain"
	"watch-party/errors"
	"watch-party/observability"
	"watch-party/services"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	services.IRoomService
	created services.CreateRoomRequest
	cursor  *string
}

func (f *fakeService) CreateRoom(_ context.Context, request services.CreateRoomRequest) (domain.RoomSnapshot, error) {
	f.created = request
	return domain.RoomSnapshot{ID: string(request.RoomID), FilmID: request.FilmID, OwnerID: string(request.OwnerID)}, nil
}

func (f *fakeService) GetRoom(_ context.Context, roomID domain.RoomID) (domain.RoomSnapshot, error) {
	if roomID == "broken" {
		return domain.RoomSnapshot{}, fmt.Errorf("failed decoding *domain.RoomSnapshot: msgpack: invalid code=c1")
	}
	if roomID != "room-1" {
		return domain.RoomSnapshot{}, errors.ErrRoomNotFound
	}
	return domain.RoomSnapshot{ID: "room-1", FilmID: "film-1"}, nil
}

func (f *fakeService) GetMessages(_ context.Context, _ domain.RoomID, cursor *string) ([]domain.Message, *string, error) {
	f.cursor = cursor
	next := "next"
	return []domain.Message{{ID: uuid.New(), SenderID: "alice", Content: "hello", CreatedAt: time.Now().UTC()}}, &next, nil
}

func newRouter(t *testing.T, service *fakeService) (http.Handler, *auth.Tokenizer) {
	t.Helper()
	tokenizer := auth.NewTokenizer("secret")
	ws := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	return NewRouter(logs.GetLoggerFromLevel(slog.LevelDebug), service, tokenizer, observability.NewStats(), ws), tokenizer
}

func TestRouter_CreateRoom(t *testing.T) {
	req := require.New(t)
	service := &fakeService{}
	router, tokenizer := newRouter(t, service)
	token, err := tokenizer.GenerateToken("alice", "Alice", "alice.png", time.Hour)
	req.NoError(err)

	// When the owner creates a room
	request := httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(`{"id":"room-1","filmId":"film-1","isSerial":true}`))
	request.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	// Then the bearer owns it
	req.Equal(http.StatusCreated, recorder.Code)
	req.Equal(services.CreateRoomRequest{
		RoomID: "room-1", FilmID: "film-1", IsSerial: true,
		OwnerID: "alice", UserName: "Alice", PhotoKey: "alice.png",
	}, service.created)
	var snapshot domain.RoomSnapshot
	req.NoError(json.NewDecoder(recorder.Body).Decode(&snapshot))
	req.Equal("alice", snapshot.OwnerID)
}

func TestRouter_CreateRoom_Unauthorized(t *testing.T) {
	req := require.New(t)
	router, _ := newRouter(t, &fakeService{})

	request := httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(`{"filmId":"film-1"}`))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	req.Equal(http.StatusUnauthorized, recorder.Code)
}

func TestRouter_GetRoom(t *testing.T) {
	req := require.New(t)
	router, _ := newRouter(t, &fakeService{})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms/room-1", nil))
	req.Equal(http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms/unknown", nil))
	req.Equal(http.StatusNotFound, recorder.Code)

	// Server faults answer a generic message
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms/broken", nil))
	req.Equal(http.StatusInternalServerError, recorder.Code)
	var response errorResponse
	req.NoError(json.NewDecoder(recorder.Body).Decode(&response))
	req.Equal("Internal Server Error", response.Error)
}

func TestRouter_GetMessages(t *testing.T) {
	req := require.New(t)
	service := &fakeService{}
	router, _ := newRouter(t, service)

	// When messages are read from a cursor
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms/room-1/messages?cursor=abc", nil))

	// Then the cursor is forwarded and the next one returned
	req.Equal(http.StatusOK, recorder.Code)
	req.Equal("abc", *service.cursor)
	var response messagesResponse
	req.NoError(json.NewDecoder(recorder.Body).Decode(&response))
	req.Len(response.Messages, 1)
	req.Equal("hello", response.Messages[0].Content)
	req.Equal("next", *response.Cursor)
}

func TestRouter_HealthAndWebsocket(t *testing.T) {
	req := require.New(t)
	router, _ := newRouter(t, &fakeService{})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	req.Equal(http.StatusOK, recorder.Code)
	req.Contains(recorder.Body.String(), "commands_applied")

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms/room-1/ws", nil))
	req.Equal(http.StatusTeapot, recorder.Code)
}
