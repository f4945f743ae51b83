package preview

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"
)

// fakeSource returns a message whose title counts builds.
type fakeSource struct {
	mu     sync.Mutex
	builds int
	err    error
}

func (f *fakeSource) Build() (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.builds++
	n := strconv.Itoa(f.builds)
	return &Snapshot{
		Message:  Message{Slug: "post", Title: "build-" + n},
		Checksum: "sum-" + n,
	}, nil
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type recorderFunc func(ctx context.Context, snap *Snapshot) error

func (f recorderFunc) Record(ctx context.Context, snap *Snapshot) error { return f(ctx, snap) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func recv(t *testing.T, s *Session) Message {
	t.Helper()
	select {
	case raw, ok := <-s.Messages():
		if !ok {
			t.Fatal("session channel closed")
		}
		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return m
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
	return Message{}
}

func expectNothing(t *testing.T, s *Session) {
	t.Helper()
	select {
	case raw, ok := <-s.Messages():
		if ok {
			t.Fatalf("unexpected message: %s", raw)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestJoinReceivesCurrentState(t *testing.T) {
	c := NewChannel(&fakeSource{}, WithLogger(quietLogger()))
	defer c.Close()

	s := c.Join()
	m := recv(t, s)
	if m.Title != "build-1" {
		t.Errorf("title = %q, want build-1", m.Title)
	}
	expectNothing(t, s)

	if c.SessionCount() != 1 {
		t.Errorf("sessions = %d, want 1", c.SessionCount())
	}
}

func TestRefreshBroadcastsToAllSessions(t *testing.T) {
	c := NewChannel(&fakeSource{}, WithLogger(quietLogger()))
	defer c.Close()

	a := c.Join()
	recv(t, a)
	b := c.Join()
	recv(t, b)

	c.Refresh()
	ma, mb := recv(t, a), recv(t, b)
	if ma.Title != "build-3" || mb.Title != "build-3" {
		t.Errorf("titles = %q, %q, want build-3 for both", ma.Title, mb.Title)
	}
}

func TestRefreshCountMatchesDeliveries(t *testing.T) {
	c := NewChannel(&fakeSource{}, WithLogger(quietLogger()))
	defer c.Close()

	s := c.Join()
	recv(t, s)

	for i := 0; i < 5; i++ {
		c.Refresh()
	}
	for i := 0; i < 5; i++ {
		recv(t, s)
	}
	expectNothing(t, s)
}

func TestLeaveStopsDelivery(t *testing.T) {
	c := NewChannel(&fakeSource{}, WithLogger(quietLogger()))
	defer c.Close()

	s := c.Join()
	recv(t, s)
	c.Leave(s)

	c.Refresh()
	select {
	case _, ok := <-s.Messages():
		if ok {
			t.Fatal("left session received a message")
		}
	case <-time.After(time.Second):
		t.Fatal("left session channel not closed")
	}
	if c.SessionCount() != 0 {
		t.Errorf("sessions = %d, want 0", c.SessionCount())
	}

	// Leaving twice is a no-op.
	c.Leave(s)
}

func TestFailedRefreshSendsNothing(t *testing.T) {
	src := &fakeSource{}
	c := NewChannel(src, WithLogger(quietLogger()))
	defer c.Close()

	s := c.Join()
	recv(t, s)

	src.setErr(errors.New("disk on fire"))
	c.Refresh()
	expectNothing(t, s)

	if c.SessionCount() != 1 {
		t.Fatal("session should survive a failed refresh")
	}

	src.setErr(nil)
	c.Refresh()
	if m := recv(t, s); m.Title != "build-2" {
		t.Errorf("title = %q, want build-2", m.Title)
	}
}

func TestJoinWhileSourceFailing(t *testing.T) {
	src := &fakeSource{err: errors.New("unreadable")}
	c := NewChannel(src, WithLogger(quietLogger()))
	defer c.Close()

	s := c.Join()
	expectNothing(t, s)
	if c.SessionCount() != 1 {
		t.Error("session should be joined even without an initial message")
	}
}

func TestSlowSessionEvicted(t *testing.T) {
	c := NewChannel(&fakeSource{}, WithLogger(quietLogger()), WithSessionBuffer(1))
	defer c.Close()

	slow := c.Join() // initial message fills the buffer
	fast := c.Join()
	recv(t, fast)

	c.Refresh()
	recv(t, fast)

	// slow still holds its first message, then sees the channel closed.
	if m := recv(t, slow); m.Title != "build-1" {
		t.Errorf("title = %q, want build-1", m.Title)
	}
	select {
	case _, ok := <-slow.Messages():
		if ok {
			t.Fatal("slow session should have been evicted")
		}
	case <-time.After(time.Second):
		t.Fatal("slow session channel not closed")
	}
	if c.SessionCount() != 1 {
		t.Errorf("sessions = %d, want 1", c.SessionCount())
	}
}

func TestRecorderNotified(t *testing.T) {
	var mu sync.Mutex
	var sums []string
	rec := recorderFunc(func(_ context.Context, snap *Snapshot) error {
		mu.Lock()
		sums = append(sums, snap.Checksum)
		mu.Unlock()
		return nil
	})
	c := NewChannel(&fakeSource{}, WithLogger(quietLogger()), WithRecorder(rec))
	defer c.Close()

	s := c.Join()
	recv(t, s)
	c.Refresh()
	recv(t, s)

	mu.Lock()
	defer mu.Unlock()
	if len(sums) != 2 || sums[0] != "sum-1" || sums[1] != "sum-2" {
		t.Errorf("recorded = %v", sums)
	}
}

func TestRecorderErrorDoesNotBlockDelivery(t *testing.T) {
	rec := recorderFunc(func(context.Context, *Snapshot) error { return errors.New("db locked") })
	c := NewChannel(&fakeSource{}, WithLogger(quietLogger()), WithRecorder(rec))
	defer c.Close()

	s := c.Join()
	recv(t, s)
}

func TestCloseClosesSessionsAndStopsOperations(t *testing.T) {
	c := NewChannel(&fakeSource{}, WithLogger(quietLogger()))
	s := c.Join()
	recv(t, s)

	c.Close()

	select {
	case _, ok := <-s.Messages():
		if ok {
			t.Fatal("expected session channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if c.SessionCount() != 0 {
		t.Fatalf("expected 0 sessions after close")
	}

	// Safe no-ops after close.
	c.Refresh()
	c.Leave(s)
	c.Close()
	late := c.Join()
	if _, ok := <-late.Messages(); ok {
		t.Error("join after close should return a closed session")
	}
}

func TestCurrent(t *testing.T) {
	c := NewChannel(&fakeSource{}, WithLogger(quietLogger()))
	defer c.Close()

	snap, err := c.Current()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Message.Slug != "post" {
		t.Errorf("slug = %q", snap.Message.Slug)
	}
}
