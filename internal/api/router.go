package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quill/internal/preview"
	"github.com/starford/quill/internal/sse"
	"github.com/starford/quill/internal/ws"
)

// Deps are the collaborators the router serves from.
type Deps struct {
	Channel *preview.Channel
	// History is optional; /api/revisions answers 404 without it.
	History RevisionLister
	// FilePath is the absolute path of the watched post.
	FilePath string
	// MediaDir is served as static files under /.
	MediaDir string
	SSE      bool
	WS       bool
	Logger   *slog.Logger
}

// NewRouter creates a chi router with the health, preview, transport and
// media routes mounted.
func NewRouter(d Deps) chi.Router {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		channel:  d.Channel,
		history:  d.History,
		filePath: d.FilePath,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(CORSMiddleware())

	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)

	r.Get("/api/preview", h.Preview)
	r.Get("/api/revisions", h.Revisions)

	if d.SSE {
		r.Method(http.MethodGet, "/events", sse.NewHandler(d.Channel, logger))
	}
	if d.WS {
		r.Method(http.MethodGet, "/ws", ws.NewHandler(d.Channel, logger))
	}

	r.Get("/_preview", http.RedirectHandler("/_preview/", http.StatusMovedPermanently).ServeHTTP)
	r.Get("/_preview/", ViewerHandler(d.SSE))
	r.Get("/_preview/highlight.css", HighlightCSSHandler())

	// Media root: everything next to the post.
	if d.MediaDir != "" {
		r.Handle("/*", staticDir(d.MediaDir))
	}

	return r
}
