package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
	"watch-party/domain"
	"watch-party/domain/outbound"
	"watch-party/errors"
	"watch-party/services"
	"watch-party/sink"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Connection is one viewer websocket bound to a room.
// Only the write pump writes on the socket.
type Connection struct {
	ID       string
	roomID   domain.RoomID
	viewerID domain.ViewerID
	conn     *websocket.Conn
	sink     *sink.ConnectionSink
	service  services.IRoomService
	log      *slog.Logger
	done     chan struct{}
}

func newConnection(id string, roomID domain.RoomID, viewerID domain.ViewerID, conn *websocket.Conn,
	bufferSize int, service services.IRoomService, log *slog.Logger) *Connection {
	return &Connection{
		ID:       id,
		roomID:   roomID,
		viewerID: viewerID,
		conn:     conn,
		sink:     sink.NewConnectionSink(bufferSize),
		service:  service,
		log:      log.With("room_id", roomID, "viewer_id", viewerID, "connection_id", id),
		done:     make(chan struct{}),
	}
}

// readPump handles client frames until the socket fails or the viewer leaves.
func (c *Connection) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("WebSocket read failed", "error", err)
			}
			return
		}
		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.reply(errors.ErrInvalidPayload)
			continue
		}
		if err := c.handle(ctx, in); err != nil {
			c.log.Debug("Message rejected", "type", in.Type, "error", err)
			c.reply(err)
			continue
		}
		if in.Type == TypeLeave {
			return
		}
	}
}

func (c *Connection) handle(ctx context.Context, in Inbound) error {
	if in.Type == TypeMessage {
		content, err := ToMessage(in)
		if err != nil {
			return err
		}
		return c.service.PostMessage(ctx, services.PostMessageRequest{RoomID: c.roomID, ViewerID: c.viewerID, Content: content})
	}
	cmd, err := ToCommand(c.roomID, c.viewerID, in)
	if err != nil {
		return err
	}
	return c.service.Apply(ctx, cmd)
}

// reply queues an error for this connection only. Server faults are logged
// and answered with a generic message.
func (c *Connection) reply(err error) {
	e := errorEvent(err)
	if e.Code >= http.StatusInternalServerError {
		c.log.Error("Command failed", "error", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := c.sink.Consume(ctx, e); err != nil {
		c.log.Warn("Error reply dropped", "error", err)
	}
}

func errorEvent(err error) outbound.ErrorEvent {
	code := errors.MapToHTTPStatus(err)
	if code >= http.StatusInternalServerError {
		return outbound.ErrorEvent{Code: code, Message: http.StatusText(code)}
	}
	return outbound.ErrorEvent{Code: code, Message: err.Error()}
}

// writePump writes queued events and pings until close is called, then
// flushes what is left and sends a close frame.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case e := <-c.sink.Events:
			if err := c.write(e); err != nil {
				c.log.Debug("WebSocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.flush()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Connection) flush() {
	for {
		select {
		case e := <-c.sink.Events:
			if err := c.write(e); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Connection) write(e outbound.Event) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(outbound.Wrap(e))
}

func (c *Connection) close() {
	close(c.done)
}
