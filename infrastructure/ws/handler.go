package ws

import (
	"context"
	"log/slog"
	"net/http"
	"watch-party/auth"
	"watch-party/domain"
	"watch-party/errors"
	"watch-party/requestctx"
	"watch-party/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Handler upgrades GET /rooms/{id}/ws?token= requests into viewer
// connections.
type Handler struct {
	log                  *slog.Logger
	service              services.IRoomService
	tokenizer            *auth.Tokenizer
	upgrader             websocket.Upgrader
	connectionBufferSize int
}

func NewHandler(log *slog.Logger, service services.IRoomService, tokenizer *auth.Tokenizer, connectionBufferSize int) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		tokenizer: tokenizer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		connectionBufferSize: connectionBufferSize,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(mux.Vars(r)["id"])
	claims, err := h.tokenizer.ValidateToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, err.Error(), errors.MapToHTTPStatus(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "room_id", roomID, "error", err)
		return
	}

	viewerID := domain.ViewerID(claims.UserID)
	connectionID := uuid.NewString()
	// The connection outlives the request context once hijacked.
	ctx := requestctx.WithViewerID(requestctx.WithConnectionID(context.Background(), connectionID), viewerID)
	c := newConnection(connectionID, roomID, viewerID, conn, h.connectionBufferSize, h.service, h.log)
	go c.writePump()

	cmd := domain.ConnectCommand{Room: roomID, Viewer: viewerID, UserName: claims.UserName, PhotoKey: claims.PhotoKey}
	if err := h.service.Connect(ctx, connectionID, cmd, c.sink); err != nil {
		c.log.Info("Connection refused", "error", err)
		c.reply(err)
		c.close()
		return
	}

	c.readPump(ctx)
	c.close()
	if err := h.service.Disconnect(ctx, connectionID, roomID, viewerID); err != nil {
		c.log.Error("Disconnect failed", "error", err)
	}
}
