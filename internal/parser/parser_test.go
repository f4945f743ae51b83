package parser

import (
	"testing"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: \"Hello\"\nimage: media/cover.png\nimageAlt: A cover\nimageCaption: Cover photo\nexcerpt: Short intro\n---\n# Hi\nBody text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := r.Attributes
	if a.Title != "Hello" {
		t.Errorf("title = %q, want %q", a.Title, "Hello")
	}
	if a.Image != "media/cover.png" || a.ImageAlt != "A cover" || a.ImageCaption != "Cover photo" {
		t.Errorf("image attributes = %+v", a)
	}
	if a.Excerpt != "Short intro" {
		t.Errorf("excerpt = %q", a.Excerpt)
	}
	if string(r.Body) != "# Hi\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Frontmatter) != 0 {
		t.Errorf("expected empty frontmatter, got %v", r.Frontmatter)
	}
	if r.Attributes.Title != "" {
		t.Errorf("title = %q, want empty", r.Attributes.Title)
	}
	if string(r.Body) != string(input) {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	input := []byte("---\ntitle: [unterminated\n---\nBody\n")
	if _, err := Parse(input); err == nil {
		t.Fatal("expected error for malformed frontmatter")
	}
}

func TestParse_CoAuthorsString(t *testing.T) {
	input := []byte("---\ntitle: x\nco_authors: alice, bob,\n---\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	got := r.Attributes.CoAuthors
	if len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Errorf("co_authors = %v, want [alice bob]", got)
	}
}

func TestParse_CoAuthorsList(t *testing.T) {
	input := []byte("---\nco_authors:\n  - carol\n  - dave\n---\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	got := r.Attributes.CoAuthors
	if len(got) != 2 || got[0] != "carol" || got[1] != "dave" {
		t.Errorf("co_authors = %v", got)
	}
}

func TestParse_EmptyValues(t *testing.T) {
	input := []byte("---\ntitle:\npublish_date: \"\"\n---\nbody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	if r.Attributes.Title != "" || r.Attributes.PublishDate != "" {
		t.Errorf("attributes = %+v", r.Attributes)
	}
}

func TestParse_NonStringScalar(t *testing.T) {
	input := []byte("---\ntitle: 2024\n---\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	if r.Attributes.Title != "2024" {
		t.Errorf("title = %q, want 2024", r.Attributes.Title)
	}
}
