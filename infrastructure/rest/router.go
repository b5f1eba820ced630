// Package rest exposes the room service over HTTP.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"watch-party/auth"
	"watch-party/domain"
	"watch-party/domain/outbound"
	"watch-party/errors"
	"watch-party/observability"
	"watch-party/services"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

type api struct {
	log       *slog.Logger
	service   services.IRoomService
	tokenizer *auth.Tokenizer
	stats     *observability.Stats
}

type createRoomRequest struct {
	ID       string `json:"id"`
	FilmID   string `json:"filmId"`
	IsSerial bool   `json:"isSerial"`
}

type messagesResponse struct {
	Messages []outbound.MessageEvent `json:"messages"`
	Cursor   *string                 `json:"cursor,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the HTTP routes. websocket serves /rooms/{id}/ws.
func NewRouter(log *slog.Logger, service services.IRoomService, tokenizer *auth.Tokenizer,
	stats *observability.Stats, websocket http.Handler) *mux.Router {
	a := &api{log: log, service: service, tokenizer: tokenizer, stats: stats}
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/health", a.health).Methods(http.MethodGet)
	router.HandleFunc("/rooms", a.createRoom).Methods(http.MethodPost)
	router.HandleFunc("/rooms/{id}", a.getRoom).Methods(http.MethodGet)
	router.HandleFunc("/rooms/{id}/messages", a.getMessages).Methods(http.MethodGet)
	router.Handle("/rooms/{id}/ws", websocket).Methods(http.MethodGet)
	return router
}

func (a *api) health(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, a.stats.Snapshot())
}

// createRoom makes the bearer of the token the owner of the new room.
func (a *api) createRoom(w http.ResponseWriter, r *http.Request) {
	claims, err := a.tokenizer.ValidateToken(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if err != nil {
		a.writeError(w, err)
		return
	}
	var body createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, errors.ErrInvalidPayload)
		return
	}
	snapshot, err := a.service.CreateRoom(r.Context(), services.CreateRoomRequest{
		RoomID:   domain.RoomID(body.ID),
		FilmID:   body.FilmID,
		IsSerial: body.IsSerial,
		OwnerID:  domain.ViewerID(claims.UserID),
		UserName: claims.UserName,
		PhotoKey: claims.PhotoKey,
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, snapshot)
}

func (a *api) getRoom(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.service.GetRoom(r.Context(), domain.RoomID(mux.Vars(r)["id"]))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, snapshot)
}

func (a *api) getMessages(w http.ResponseWriter, r *http.Request) {
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = lo.ToPtr(c)
	}
	messages, next, err := a.service.GetMessages(r.Context(), domain.RoomID(mux.Vars(r)["id"]), cursor)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, messagesResponse{
		Messages: lo.Map(messages, func(m domain.Message, _ int) outbound.MessageEvent {
			return outbound.FromMessage(m)
		}),
		Cursor: next,
	})
}

func (a *api) writeError(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.log.Error("Request failed", "error", err)
		a.writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}
	a.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (a *api) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Debug("Response write failed", "error", err)
	}
}
