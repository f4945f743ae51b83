package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/history"
	"github.com/starford/quill/internal/preview"
)

// RevisionLister reads recorded revisions of a post.
type RevisionLister interface {
	List(ctx context.Context, path string, limit int) ([]history.Revision, error)
}

// Handler holds API route handlers.
type Handler struct {
	channel  *preview.Channel
	history  RevisionLister
	filePath string
	logger   *slog.Logger
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready. The server is ready while the watched
// file can be stat'ed.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	if _, err := os.Stat(h.filePath); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.channel.SessionCount(),
	})
}

// Preview handles GET /api/preview.
//
// Returns the message a newly connected viewer would receive.
func (h *Handler) Preview(w http.ResponseWriter, _ *http.Request) {
	snap, err := h.channel.Current()
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("post not found"))
			return
		}
		h.logger.Error("render preview failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, snap.Message)
}

// Revisions handles GET /api/revisions.
//
// Query parameter limit bounds the number of revisions, newest first.
func (h *Handler) Revisions(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusNotFound, errorBody("revision history is disabled"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	revs, err := h.history.List(r.Context(), h.filePath, limit)
	if err != nil {
		h.logger.Error("list revisions failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path":      h.filePath,
		"revisions": revs,
	})
}
