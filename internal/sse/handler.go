// Package sse serves preview messages as a Server-Sent Events stream.
package sse

import (
	"log/slog"
	"net/http"

	"github.com/starford/quill/internal/preview"
)

// Frame wraps one JSON payload in SSE framing.
func Frame(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+8)
	out = append(out, "data: "...)
	out = append(out, payload...)
	out = append(out, '\n', '\n')
	return out
}

// Handler streams every preview message to one HTTP client per request.
type Handler struct {
	channel *preview.Channel
	logger  *slog.Logger
}

// NewHandler creates an SSE handler backed by channel.
func NewHandler(channel *preview.Channel, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{channel: channel, logger: logger}
}

// ServeHTTP is the SSE endpoint handler (GET /events). The client joins the
// channel on connect and leaves when the request context ends.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s := h.channel.Join()
	defer h.channel.Leave(s)
	h.logger.Debug("sse: client connected", slog.String("session", s.ID), slog.String("remote", r.RemoteAddr))

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.Messages():
			if !ok {
				return
			}
			if _, err := w.Write(Frame(msg)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
