package preview

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/starford/quill/internal/render"
	"github.com/starford/quill/internal/storage"
)

func testBuilder(t *testing.T, name, content string) (*Builder, *storage.FS) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if content != "" {
		if err := store.Write(name, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	base, _ := url.Parse("http://localhost:8110/")
	return NewBuilder(store, name, base, render.New()), store
}

func TestBuild_HelloScenario(t *testing.T) {
	b, _ := testBuilder(t, "post.md", "---\ntitle: \"Hello\"\n---\n# Hi <img src=\"a.png\">\n")

	snap, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	msg := snap.Message
	if msg.Title != "Hello" {
		t.Errorf("title = %q, want Hello", msg.Title)
	}
	if msg.Slug != "post" {
		t.Errorf("slug = %q, want post", msg.Slug)
	}
	if !strings.Contains(msg.Content, `<img src="http://localhost:8110/a.png">`) {
		t.Errorf("content not rewritten: %s", msg.Content)
	}
	if render.HasRelativeSrc([]byte(msg.Content)) {
		t.Errorf("relative src left: %s", msg.Content)
	}
}

func TestBuild_Attributes(t *testing.T) {
	b, _ := testBuilder(t, "alice/launch-day.md", "---\ntitle: Launch\nimage: media/cover.png\nimageAlt: Rocket\nimageCaption: Liftoff\nexcerpt: We launched.\n---\nBody\n")

	snap, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	msg := snap.Message
	if msg.Slug != "launch-day" {
		t.Errorf("slug = %q", msg.Slug)
	}
	if msg.Image != "http://localhost:8110/media/cover.png" {
		t.Errorf("image = %q", msg.Image)
	}
	if msg.ImageAlt != "Rocket" || msg.ImageCaption != "Liftoff" || msg.Excerpt != "We launched." {
		t.Errorf("message = %+v", msg)
	}
	if snap.Checksum == "" || snap.Size == 0 {
		t.Errorf("snapshot facts missing: %+v", snap)
	}
	if !strings.HasSuffix(snap.Path, "launch-day.md") {
		t.Errorf("path = %q", snap.Path)
	}
}

func TestBuild_MissingImageAndFields(t *testing.T) {
	b, _ := testBuilder(t, "bare.md", "just text\n")
	snap, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	msg := snap.Message
	if msg.Image != "" || msg.Title != "" || msg.Excerpt != "" {
		t.Errorf("expected empty attributes, got %+v", msg)
	}
	if !strings.Contains(msg.Content, "<p>just text</p>") {
		t.Errorf("content = %q", msg.Content)
	}
}

func TestBuild_AbsoluteImageKept(t *testing.T) {
	b, _ := testBuilder(t, "p.md", "---\nimage: https://cdn.example.com/x.png\n---\n")
	snap, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Message.Image != "https://cdn.example.com/x.png" {
		t.Errorf("image = %q", snap.Message.Image)
	}
}

func TestBuild_ReadsFreshEachTime(t *testing.T) {
	b, store := testBuilder(t, "p.md", "---\ntitle: One\n---\n")
	first, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("p.md", []byte("---\ntitle: Two\n---\n"))
	second, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if first.Message.Title != "One" || second.Message.Title != "Two" {
		t.Errorf("titles = %q, %q", first.Message.Title, second.Message.Title)
	}
	if first.Checksum == second.Checksum {
		t.Error("checksum should change with content")
	}
}

func TestBuild_MissingFile(t *testing.T) {
	b, _ := testBuilder(t, "gone.md", "")
	_, err := b.Build()
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestSlugFor(t *testing.T) {
	cases := map[string]string{
		"post.md":               "post",
		"alice/hello-world.md":  "hello-world",
		"notes.markdown":        "notes",
		"no-extension":          "no-extension",
		"dir\\windows-style.md": "windows-style",
	}
	for in, want := range cases {
		if got := SlugFor(in); got != want {
			t.Errorf("SlugFor(%q) = %q, want %q", in, got, want)
		}
	}
}
