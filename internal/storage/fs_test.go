package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("---\ntitle: Hello\n---\nWorld\n")
	if err := s.Write("post.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("post.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("alice/deep-post.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("alice/deep-post.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("a.md", []byte("a"))
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.md" {
		t.Errorf("unexpected entries: %v", entries)
	}
}

func TestReadMissing(t *testing.T) {
	s := tempRoot(t)
	_, err := s.Read("nope.md")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestExists(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("sub/a.md", []byte("a"))

	ok, err := s.Exists("sub/a.md")
	if err != nil || !ok {
		t.Errorf("Exists(file) = %v, %v", ok, err)
	}
	ok, err = s.Exists("sub")
	if err != nil || ok {
		t.Errorf("Exists(dir) = %v, %v; directories are not files", ok, err)
	}
	ok, err = s.Exists("missing.md")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}
}

func TestList(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("b.md", []byte("b"))
	_ = s.Write("alice/a.md", []byte("a"))
	_ = s.Write("media/cover.png", []byte("png"))
	_ = s.Write(".git/HEAD.md", []byte("hidden"))

	metas, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(metas), metas)
	}
	if metas[0].Path != "alice/a.md" || metas[1].Path != "b.md" {
		t.Errorf("paths = %s, %s", metas[0].Path, metas[1].Path)
	}
	if metas[1].Checksum == "" || metas[1].Size != 1 {
		t.Errorf("meta = %+v", metas[1])
	}
}

func TestTraversalRejected(t *testing.T) {
	s := tempRoot(t)
	if _, err := s.Read("../etc/passwd"); err == nil {
		t.Error("expected traversal error")
	}
	if err := s.Write("../escape.md", []byte("x")); err == nil {
		t.Error("expected traversal error on write")
	}
	if _, err := s.Read(filepath.Join(string(os.PathSeparator), "abs.md")); err == nil {
		t.Error("expected absolute path error")
	}
}

func TestNewFS_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	_ = os.WriteFile(f, []byte("x"), 0o644)
	if _, err := NewFS(f); err == nil {
		t.Error("expected error for non-directory root")
	}
}
