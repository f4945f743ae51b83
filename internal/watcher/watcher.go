// Package watcher observes a single file and reports when it changes.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Mode selects how changes are detected.
type Mode string

const (
	// ModeNotify uses operating system notifications on the file's directory.
	ModeNotify Mode = "notify"
	// ModePoll compares the file's modification time and size on every tick.
	ModePoll Mode = "poll"
)

// DefaultInterval is the coalescing period used when Options.Interval is zero.
const DefaultInterval = 200 * time.Millisecond

// Options configures Watch.
type Options struct {
	// Interval is the coalescing period. At most one callback fires per interval.
	Interval time.Duration
	Mode     Mode
}

// ChangeCallback is called after the watched file changed.
type ChangeCallback func()

// Watch observes path until ctx is cancelled, calling cb at most once per
// interval when the file was modified since the previous tick.
func Watch(ctx context.Context, path string, opts Options, logger *slog.Logger, cb ChangeCallback) error {
	if cb == nil {
		return errors.New("watcher: callback is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watcher: resolve %s: %w", path, err)
	}

	switch opts.Mode {
	case ModePoll:
		return watchPoll(ctx, abs, opts.Interval, logger, cb)
	case ModeNotify, "":
		return watchNotify(ctx, abs, opts.Interval, logger, cb)
	default:
		return fmt.Errorf("watcher: unknown mode %q", opts.Mode)
	}
}

// watchNotify subscribes to the parent directory so that editors which save
// through a rename keep being observed.
func watchNotify(ctx context.Context, abs string, interval time.Duration, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watcher: watch %s: %w", filepath.Dir(abs), err)
	}

	logger.Info("watcher: started",
		slog.String("path", abs),
		slog.String("mode", string(ModeNotify)),
		slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dirty := false
	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				logger.Debug("watcher: event", slog.String("op", ev.Op.String()))
				dirty = true
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))

		case <-ticker.C:
			if dirty {
				dirty = false
				cb()
			}
		}
	}
}

type fileState struct {
	modTime time.Time
	size    int64
	exists  bool
}

func statFile(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{modTime: info.ModTime(), size: info.Size(), exists: true}
}

// watchPoll stats the file on every tick. A missing file is not a change;
// the callback fires again once it reappears.
func watchPoll(ctx context.Context, abs string, interval time.Duration, logger *slog.Logger, cb ChangeCallback) error {
	logger.Info("watcher: started",
		slog.String("path", abs),
		slog.String("mode", string(ModePoll)),
		slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := statFile(abs)
	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-ticker.C:
			cur := statFile(abs)
			if !cur.exists {
				last = cur
				continue
			}
			if cur != last {
				last = cur
				cb()
			}
		}
	}
}
