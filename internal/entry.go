// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/quill/internal/api"
	"github.com/starford/quill/internal/history"
	"github.com/starford/quill/internal/preview"
	"github.com/starford/quill/internal/render"
	"github.com/starford/quill/internal/storage"
	"github.com/starford/quill/internal/watcher"
	"github.com/starford/quill/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func newLogger(cfg *Config, out io.Writer) *slog.Logger {
	if out == nil {
		out = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// Run starts the live preview of the configured post and blocks until ctx
// is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	if err := cfg.ValidatePreview(); err != nil {
		return err
	}

	logger := newLogger(cfg, app.logOutput)
	slog.SetDefault(logger)

	file, err := cfg.Preview.AbsFile()
	if err != nil {
		return fmt.Errorf("resolve file: %w", err)
	}
	mediaDir := filepath.Dir(file)
	mediaBase, err := cfg.MediaBaseURL()
	if err != nil {
		return err
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("file", file),
		slog.String("media_url", mediaBase.String()),
		slog.String("transport", cfg.Preview.Transport),
		slog.String("watch_mode", cfg.Preview.WatchMode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize storage over the post's directory.
	store, err := storage.NewFS(mediaDir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	builder := preview.NewBuilder(store, filepath.Base(file), mediaBase, render.New(render.WithHighlightStyle(cfg.Preview.HighlightStyle)))
	channelOpts := []preview.ChannelOption{preview.WithLogger(logger)}

	// Optional revision history.
	var revisions api.RevisionLister
	if cfg.History.Enabled() {
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("init history: %w", err)
		}
		defer db.Close()
		revisions = db
		channelOpts = append(channelOpts, preview.WithRecorder(db))
	}

	channel := preview.NewChannel(builder, channelOpts...)
	defer channel.Close()

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Mount("/", api.NewRouter(api.Deps{
		Channel:  channel,
		History:  revisions,
		FilePath: file,
		MediaDir: mediaDir,
		SSE:      cfg.Preview.ServesSSE(),
		WS:       cfg.Preview.ServesWS(),
		Logger:   logger,
	}))

	servers := []*http.Server{{Addr: cfg.App.HTTP.Address(), Handler: r}}
	if cfg.Preview.SocketPort != 0 && cfg.Preview.ServesWS() {
		sr := chi.NewRouter()
		sr.Use(middleware.Recoverer)
		sr.Handle("/*", ws.NewHandler(channel, logger))
		servers = append(servers, &http.Server{Addr: fmt.Sprintf(":%d", cfg.Preview.SocketPort), Handler: sr})
	}

	// Bind every listener before announcing the preview.
	listeners := make([]net.Listener, 0, len(servers))
	for _, srv := range servers {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		listeners = append(listeners, ln)
	}

	ready := ReadyInfo{URL: fmt.Sprintf("http://localhost:%d/", cfg.App.HTTP.Port)}
	ready.ViewerURL = cfg.Preview.ViewerURL
	if ready.ViewerURL == "" {
		ready.ViewerURL = ready.URL + "_preview/"
	}
	if len(servers) > 1 {
		ready.SocketURL = fmt.Sprintf("ws://localhost:%d/", cfg.Preview.SocketPort)
	}

	logger.Info("Server starting...", slog.String("url", ready.URL), slog.String("viewer", ready.ViewerURL))

	g, gCtx := errgroup.WithContext(ctx)

	// Every change of the post is pushed to the connected viewers.
	g.Go(func() error {
		return watcher.Watch(gCtx, file, watcher.Options{
			Interval: cfg.Preview.Interval,
			Mode:     watcher.Mode(cfg.Preview.WatchMode),
		}, logger, channel.Refresh)
	})

	for i, srv := range servers {
		srv, ln := srv, listeners[i]
		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", ln.Addr().String()))
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	if app.onReady != nil {
		app.onReady(ready)
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Closing the channel ends every streaming response.
		channel.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown stops the remaining goroutines once a signal was handled.
var errShutdown = errors.New("shutdown")
