// Package testutil provides shared test helpers for setting up posts,
// preview channels and revision logs.
package testutil

import (
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/quill/internal/history"
	"github.com/starford/quill/internal/preview"
	"github.com/starford/quill/internal/storage"
)

// HelloPost is a small post with every preview attribute set.
const HelloPost = `---
title: Hello
image: media/cover.png
imageAlt: A cover
imageCaption: The caption
excerpt: Short summary
---
# Hi

![pic](media/a.png)
`

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestBlog creates a temporary blog directory with a storage.Provider.
func TestBlog(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WritePost writes content to name under dir and returns the absolute path.
func WritePost(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// MediaBase is the media root used by TestChannel.
func MediaBase(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("http://localhost:8110/")
	if err != nil {
		t.Fatal(err)
	}
	return u
}

// TestChannel writes content as post.md in a temporary blog and returns a
// preview channel over it. The channel is closed on cleanup.
func TestChannel(t *testing.T, content string, opts ...preview.ChannelOption) (string, *preview.Channel) {
	t.Helper()
	dir, store := TestBlog(t)
	path := WritePost(t, dir, "post.md", content)
	b := preview.NewBuilder(store, "post.md", MediaBase(t), nil)
	opts = append([]preview.ChannelOption{preview.WithLogger(QuietLogger())}, opts...)
	ch := preview.NewChannel(b, opts...)
	t.Cleanup(ch.Close)
	return path, ch
}

// TestHistory opens a revision log in a temporary directory.
func TestHistory(t *testing.T) *history.DB {
	t.Helper()
	db, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
