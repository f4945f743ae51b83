// Package ws serves preview messages over a WebSocket push channel.
package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/starford/quill/internal/preview"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxInboundSize bounds client frames; clients are not expected to send any.
	maxInboundSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The preview is consumed from another origin (the blog's preview page).
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades requests to WebSocket connections and pushes every
// preview message to them as a text frame.
type Handler struct {
	channel *preview.Channel
	logger  *slog.Logger
}

// NewHandler creates a WebSocket handler backed by channel.
func NewHandler(channel *preview.Channel, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{channel: channel, logger: logger}
}

// ServeHTTP upgrades the connection, joins the channel and blocks until the
// client disconnects or the channel closes the session.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		h.logger.Debug("ws: upgrade failed", slog.String("error", err.Error()))
		return
	}

	s := h.channel.Join()
	h.logger.Debug("ws: client connected", slog.String("session", s.ID), slog.String("remote", r.RemoteAddr))

	closed := make(chan struct{})
	go readPump(conn, closed)
	writePump(conn, s, closed)

	h.channel.Leave(s)
	_ = conn.Close()
}

// readPump discards inbound frames and closes done when the peer goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxInboundSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards session messages to the connection and keeps it alive
// with pings.
func writePump(conn *websocket.Conn, s *preview.Session, peerGone <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-peerGone:
			return

		case msg, ok := <-s.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "preview closed"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
