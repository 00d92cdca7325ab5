package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/wrapped-story/internal/session"
)

const (
	// Time allowed to write a message to the client.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong from the client.
	pongWait = 60 * time.Second
	// Send pings with this period; must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Largest control message accepted from the client.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// story links are embedded on host sites, so any origin may watch
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler streams session snapshots over a WebSocket and accepts
// playback commands on the same connection.
type WSHandler struct {
	Sessions *session.Manager
	log      zerolog.Logger
}

func NewWSHandler(sessions *session.Manager, logger zerolog.Logger) *WSHandler {
	return &WSHandler{Sessions: sessions, log: logger.With().Str("component", "ws").Logger()}
}

// command is a client message.  Index is only read by "jump".
type command struct {
	Action string `json:"action"`
	Index  int    `json:"index"`
}

// Serve handles GET /v1/sessions/:id/ws.  The first message is the current
// snapshot; one follows every change until the session closes or the
// client goes away.
func (h *WSHandler) Serve(c echo.Context) error {
	id := c.Param("id")
	s, err := h.Sessions.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.log.Warn().Err(err).Str("session_id", id).Msg("websocket upgrade failed")
		return nil
	}
	wsConnections.Inc()
	log := h.log.With().Str("session_id", id).Logger()
	log.Debug().Msg("websocket connected")

	snaps, cancel := s.Subscribe()
	done := make(chan struct{})
	go h.writePump(conn, snaps, done, log)
	h.readPump(conn, id, log)

	cancel()
	<-done
	_ = conn.Close()
	wsConnections.Dec()
	log.Debug().Msg("websocket closed")
	return nil
}

// readPump applies client commands until the connection fails.
func (h *WSHandler) readPump(conn *websocket.Conn, id string, log zerolog.Logger) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}
		var cmd command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			log.Debug().Err(err).Msg("ignoring malformed command")
			continue
		}
		fn := commandFunc(cmd)
		if fn == nil {
			log.Debug().Str("action", cmd.Action).Msg("ignoring unknown command")
			continue
		}
		// snapshots reach the client through the subscription
		if _, err := h.Sessions.Apply(context.Background(), id, fn); err != nil {
			log.Warn().Err(err).Str("action", cmd.Action).Msg("command failed")
			return
		}
	}
}

func commandFunc(cmd command) func(*session.Session) error {
	switch cmd.Action {
	case "next":
		return func(s *session.Session) error { s.Next(); return nil }
	case "prev":
		return func(s *session.Session) error { s.Prev(); return nil }
	case "pause":
		return func(s *session.Session) error { s.Pause(); return nil }
	case "resume":
		return func(s *session.Session) error { s.Resume(); return nil }
	case "jump":
		i := cmd.Index
		return func(s *session.Session) error { s.Jump(i); return nil }
	}
	return nil
}

// writePump forwards snapshots and keeps the connection alive with pings.
// It closes done when it stops.
func (h *WSHandler) writePump(conn *websocket.Conn, snaps <-chan session.Snapshot, done chan<- struct{}, log zerolog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
	}()
	for {
		select {
		case snap, ok := <-snaps:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// unsubscribed or the session closed
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				// unblock readPump
				_ = conn.SetReadDeadline(time.Now())
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				_ = conn.SetReadDeadline(time.Now())
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Msg("websocket ping failed")
				_ = conn.SetReadDeadline(time.Now())
				return
			}
		}
	}
}
