package scaffold

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/storage"
)

// Creator writes new posts into a blog checkout.
type Creator struct {
	store    storage.Provider
	registry *Registry
	logger   *slog.Logger
}

// NewCreator creates a Creator writing through store and validating
// against reg.
func NewCreator(store storage.Provider, reg *Registry, logger *slog.Logger) *Creator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Creator{store: store, registry: reg, logger: logger}
}

// Registry returns the authors and categories answers are checked against.
func (c *Creator) Registry() *Registry {
	return c.registry
}

// Create validates a, then writes the new post and returns its path relative
// to the blog root. An existing post is never overwritten.
func (c *Creator) Create(ctx context.Context, a Answers) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	a.Normalize()
	if err := a.Validate(c.registry); err != nil {
		return "", err
	}

	target, err := TargetPath(a)
	if err != nil {
		return "", err
	}
	exists, err := c.store.Exists(target)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("%w: a post with this title already exists: %s", apperr.ErrAlreadyExists, target)
	}

	content, err := Render(a)
	if err != nil {
		return "", err
	}
	if err := c.store.Write(target, content); err != nil {
		return "", err
	}

	c.logger.Info("scaffold: post created",
		slog.String("path", target),
		slog.String("author", a.Author),
		slog.String("category", a.Category))
	return target, nil
}
