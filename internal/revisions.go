package internal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/starford/quill/internal/history"
)

// ErrHistoryDisabled is returned when revisions are requested but no
// history path is configured.
var ErrHistoryDisabled = errors.New("revision history is disabled, set history.path in the config file")

// ListRevisions returns the recorded revisions of file, newest first.
func ListRevisions(ctx context.Context, cfg *Config, file string, limit int) ([]history.Revision, error) {
	if !cfg.History.Enabled() {
		return nil, ErrHistoryDisabled
	}
	if file == "" {
		return nil, ErrNoFile
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}
	db, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.List(ctx, abs, limit)
}
