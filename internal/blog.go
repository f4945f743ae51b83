package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/quill/internal/mcpserver"
	"github.com/starford/quill/internal/render"
	"github.com/starford/quill/internal/scaffold"
	"github.com/starford/quill/internal/storage"
)

// OpenBlog opens the blog checkout and loads its authors and categories.
func OpenBlog(cfg *Config, logger *slog.Logger) (storage.Provider, *scaffold.Creator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	store, err := storage.NewFS(cfg.Blog.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	reg, err := scaffold.LoadRegistry(store, cfg.Blog.AuthorsFile, cfg.Blog.CategoriesFile)
	if err != nil {
		return store, nil, err
	}
	return store, scaffold.NewCreator(store, reg, logger), nil
}

// CreatePost asks p for whatever preset leaves open and writes the new post.
// It returns the absolute path of the created file.
func CreatePost(ctx context.Context, cfg *Config, p scaffold.Prompter, preset scaffold.Answers) (string, error) {
	logger := newLogger(cfg, os.Stderr)

	store, creator, err := OpenBlog(cfg, logger)
	if err != nil {
		return "", err
	}
	answers, err := p.Ask(ctx, creator.Registry(), preset)
	if err != nil {
		return "", err
	}
	rel, err := creator.Create(ctx, answers)
	if err != nil {
		return "", err
	}
	return filepath.Join(store.Root(), filepath.FromSlash(rel)), nil
}

// RunMCP serves the MCP tools over stdin/stdout. Logs go to stderr since
// stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := newLogger(cfg, app.logOutput)
	slog.SetDefault(logger)

	store, creator, err := OpenBlog(cfg, logger)
	if err != nil {
		if store == nil {
			return err
		}
		// Reading and rendering still work without the registry files.
		logger.Warn("mcp: post creation disabled", slog.String("error", err.Error()))
	}
	mediaBase, err := cfg.MediaBaseURL()
	if err != nil {
		return err
	}

	logger.Info("mcp: serving on stdio", slog.String("blog_root", store.Root()))
	return mcpserver.New(store, creator, mediaBase, render.New()).ServeStdio()
}
