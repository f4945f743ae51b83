package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/starford/quill/internal/checksum"
)

const defaultSessionBuffer = 16

// Recorder is notified after every successful build.
type Recorder interface {
	Record(ctx context.Context, snap *Snapshot) error
}

// Session is one connected viewer. Messages are delivered on the channel
// returned by Messages; the channel is closed when the session leaves, is
// evicted, or the Channel shuts down.
type Session struct {
	ID       string
	JoinedAt time.Time
	send     chan []byte
}

// Messages returns the session's delivery channel. Each value is one JSON
// encoded Message.
func (s *Session) Messages() <-chan []byte {
	return s.send
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithLogger sets the logger used for refresh and session events.
func WithLogger(logger *slog.Logger) ChannelOption {
	return func(c *Channel) {
		c.logger = logger
	}
}

// WithRecorder registers a Recorder notified after each successful build.
func WithRecorder(r Recorder) ChannelOption {
	return func(c *Channel) {
		c.recorder = r
	}
}

// WithSessionBuffer sets how many undelivered messages a session may hold
// before it is evicted.
func WithSessionBuffer(n int) ChannelOption {
	return func(c *Channel) {
		if n > 0 {
			c.bufSize = n
		}
	}
}

// Channel holds the set of open sessions and delivers preview messages to them.
//
// Concurrency model: a single internal event loop (goroutine) owns the session
// set. Join, Leave and Refresh communicate with the loop through channels, so
// the set is never touched from two goroutines and no mutex is required.
type Channel struct {
	source   Source
	logger   *slog.Logger
	recorder Recorder
	bufSize  int

	joinCh     chan *Session
	leaveCh    chan *Session
	refreshCh  chan struct{}
	countReqCh chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewChannel creates a Channel that builds messages from source and starts
// its event loop.
func NewChannel(source Source, opts ...ChannelOption) *Channel {
	c := &Channel{
		source:     source,
		logger:     slog.Default(),
		bufSize:    defaultSessionBuffer,
		joinCh:     make(chan *Session),
		leaveCh:    make(chan *Session),
		refreshCh:  make(chan struct{}, 64),
		countReqCh: make(chan chan int),
		stopCh:     make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.run()
	return c
}

func (c *Channel) run() {
	defer close(c.stopped)

	sessions := make(map[*Session]struct{})

	remove := func(s *Session) {
		if _, ok := sessions[s]; ok {
			delete(sessions, s)
			close(s.send)
		}
	}

	deliver := func(s *Session, msg []byte) {
		select {
		case s.send <- msg:
		default:
			// A session that cannot keep up is dropped so that every open
			// session has seen every message since it joined.
			c.logger.Warn("preview: evicting slow session", slog.String("session", s.ID))
			remove(s)
		}
	}

	for {
		select {
		case <-c.stopCh:
			for s := range sessions {
				close(s.send)
			}
			return

		case s := <-c.joinCh:
			sessions[s] = struct{}{}
			c.logger.Info("preview: session joined",
				slog.String("session", s.ID),
				slog.Int("sessions", len(sessions)))
			if msg, ok := c.build(); ok {
				deliver(s, msg)
			}

		case s := <-c.leaveCh:
			if _, ok := sessions[s]; ok {
				remove(s)
				c.logger.Info("preview: session left",
					slog.String("session", s.ID),
					slog.Int("sessions", len(sessions)))
			}

		case <-c.refreshCh:
			msg, ok := c.build()
			if !ok {
				continue
			}
			for s := range sessions {
				deliver(s, msg)
			}
			c.logger.Info("preview: updated", slog.Int("sessions", len(sessions)))

		case resp := <-c.countReqCh:
			resp <- len(sessions)
		}
	}
}

// build produces the encoded message for the current file state. A failed
// build is logged and yields no message for this cycle.
func (c *Channel) build() ([]byte, bool) {
	snap, err := c.source.Build()
	if err != nil {
		c.logger.Error("preview: refresh failed", slog.String("error", err.Error()))
		return nil, false
	}
	payload, err := json.Marshal(snap.Message)
	if err != nil {
		c.logger.Error("preview: encode failed", slog.String("error", err.Error()))
		return nil, false
	}
	c.logger.Debug("preview: built",
		slog.String("slug", snap.Message.Slug),
		slog.String("checksum", checksum.Short(snap.Checksum)),
		slog.String("size", humanize.Bytes(uint64(snap.Size))))

	if c.recorder != nil {
		if err := c.recorder.Record(context.Background(), snap); err != nil {
			c.logger.Warn("preview: record revision failed", slog.String("error", err.Error()))
		}
	}
	return payload, true
}

// Close stops the event loop and closes every session channel. It is safe
// to call more than once.
func (c *Channel) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	<-c.stopped
}

// Join adds a new session and queues one message reflecting the current
// file state on it. Joining a closed Channel returns an already closed session.
func (c *Channel) Join() *Session {
	s := &Session{
		ID:       uuid.NewString(),
		JoinedAt: time.Now(),
		send:     make(chan []byte, c.bufSize),
	}
	if c.closed.Load() {
		close(s.send)
		return s
	}

	select {
	case c.joinCh <- s:
	case <-c.stopped:
		close(s.send)
	}
	return s
}

// Leave removes a session and closes its channel. Unknown or already
// removed sessions are ignored.
func (c *Channel) Leave(s *Session) {
	if c.closed.Load() {
		return
	}
	select {
	case c.leaveCh <- s:
	case <-c.stopped:
	}
}

// Refresh rebuilds the message from the file and sends it to every session.
func (c *Channel) Refresh() {
	if c.closed.Load() {
		return
	}
	select {
	case c.refreshCh <- struct{}{}:
	case <-c.stopped:
	}
}

// Current builds the message for the current file state without
// broadcasting it.
func (c *Channel) Current() (*Snapshot, error) {
	return c.source.Build()
}

// SessionCount returns the number of open sessions.
func (c *Channel) SessionCount() int {
	if c.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case c.countReqCh <- resp:
	case <-c.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-c.stopped:
		return 0
	}
}
