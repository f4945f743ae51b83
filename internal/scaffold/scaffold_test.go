package scaffold

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/parser"
	"github.com/starford/quill/internal/storage"
	"github.com/starford/quill/internal/testutil"
)

func testBlog(t *testing.T) (string, storage.Provider, *Registry) {
	t.Helper()
	dir, store := testutil.TestBlog(t)
	testutil.WritePost(t, dir, "authors.json", `{"zoe": {"name": "Zoe"}, "adrian": {"name": "Adrian"}, "mira": {}}`)
	testutil.WritePost(t, dir, "categories.json", `{"research": {}, "ecosystem": {}}`)
	reg, err := LoadRegistry(store, "authors.json", "categories.json")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	return dir, store, reg
}

func validAnswers() Answers {
	return Answers{
		Title:     "Intents and Solvers",
		Category:  "research",
		Author:    "zoe",
		CoAuthors: []string{"adrian", "mira"},
		Excerpt:   "A short tour",
	}
}

func TestLoadRegistry_SortedKeys(t *testing.T) {
	_, _, reg := testBlog(t)
	if strings.Join(reg.Authors, ",") != "adrian,mira,zoe" {
		t.Errorf("authors = %v", reg.Authors)
	}
	if strings.Join(reg.Categories, ",") != "ecosystem,research" {
		t.Errorf("categories = %v", reg.Categories)
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, store := testutil.TestBlog(t)
	if _, err := LoadRegistry(store, "authors.json", "categories.json"); err == nil {
		t.Fatal("expected error for missing registry files")
	}
}

func TestValidate(t *testing.T) {
	_, _, reg := testBlog(t)

	a := validAnswers()
	if err := a.Validate(reg); err != nil {
		t.Fatalf("valid answers rejected: %v", err)
	}

	cases := map[string]func(*Answers){
		"short title":      func(a *Answers) { a.Title = "Hey" },
		"unknown category": func(a *Answers) { a.Category = "gossip" },
		"missing author":   func(a *Answers) { a.Author = "" },
		"unknown author":   func(a *Answers) { a.Author = "nobody" },
		"unknown coauthor": func(a *Answers) { a.CoAuthors = []string{"adrian", "ghost"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			a := validAnswers()
			mutate(&a)
			err := a.Validate(reg)
			if !errors.Is(err, apperr.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRender_KeyOrder(t *testing.T) {
	out, err := Render(validAnswers())
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "---\n") || !strings.HasSuffix(s, "---\n"+ContentPlaceholder) {
		t.Fatalf("unexpected layout:\n%s", s)
	}

	keys := []string{"title:", "category:", "co_authors:", "publish_date:", "image:", "imageAlt:", "imageCaption:", "excerpt:"}
	last := -1
	for _, k := range keys {
		i := strings.Index(s, "\n"+k)
		if i < 0 {
			t.Fatalf("key %s missing:\n%s", k, s)
		}
		if i < last {
			t.Errorf("key %s out of order", k)
		}
		last = i
	}
	if !strings.Contains(s, "co_authors: adrian,mira\n") {
		t.Errorf("co-authors not comma joined:\n%s", s)
	}
	if !strings.Contains(s, "image: media/\n") {
		t.Errorf("image default missing:\n%s", s)
	}
}

func TestRender_RoundTripsThroughParser(t *testing.T) {
	a := validAnswers()
	a.Title = "Privacy: a primer"
	out, err := Render(a)
	if err != nil {
		t.Fatal(err)
	}
	res, err := parser.Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Attributes.Title != a.Title {
		t.Errorf("title = %q, want %q", res.Attributes.Title, a.Title)
	}
	if res.Attributes.Category != "research" || res.Attributes.Excerpt != "A short tour" {
		t.Errorf("attributes = %+v", res.Attributes)
	}
	if strings.Join(res.Attributes.CoAuthors, ",") != "adrian,mira" {
		t.Errorf("co-authors = %v", res.Attributes.CoAuthors)
	}
	if res.Attributes.Image != "media/" {
		t.Errorf("image = %q", res.Attributes.Image)
	}
	if strings.TrimSpace(string(res.Body)) != ContentPlaceholder {
		t.Errorf("body = %q", res.Body)
	}
}

func TestTargetPath(t *testing.T) {
	p, err := TargetPath(validAnswers())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(p, "zoe/") || !strings.HasSuffix(p, ".md") {
		t.Errorf("path = %q", p)
	}
	if strings.ContainsAny(p, " ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		t.Errorf("path not slugged: %q", p)
	}
}

func TestCreate(t *testing.T) {
	dir, store, reg := testBlog(t)
	c := NewCreator(store, reg, testutil.QuietLogger())

	rel, err := c.Create(context.Background(), validAnswers())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "title: Intents and Solvers") {
		t.Errorf("content:\n%s", data)
	}
}

func TestCreate_RefusesOverwrite(t *testing.T) {
	dir, store, reg := testBlog(t)
	c := NewCreator(store, reg, testutil.QuietLogger())

	rel, err := c.Create(context.Background(), validAnswers())
	if err != nil {
		t.Fatal(err)
	}
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.WriteFile(abs, []byte("edited by hand"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = c.Create(context.Background(), validAnswers())
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
	data, _ := os.ReadFile(abs)
	if string(data) != "edited by hand" {
		t.Error("existing post was overwritten")
	}
}

func TestCreate_InvalidAnswersWriteNothing(t *testing.T) {
	dir, store, reg := testBlog(t)
	c := NewCreator(store, reg, testutil.QuietLogger())

	a := validAnswers()
	a.Category = "unknown"
	if _, err := c.Create(context.Background(), a); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := os.Stat(filepath.Join(dir, "zoe")); !os.IsNotExist(err) {
		t.Error("author directory created for invalid answers")
	}
}

type presetPrompter struct{ a Answers }

func (p presetPrompter) Ask(_ context.Context, _ *Registry, preset Answers) (Answers, error) {
	out := p.a
	if preset.Title != "" {
		out.Title = preset.Title
	}
	return out, nil
}

func TestPrompterFeedsCreator(t *testing.T) {
	_, store, reg := testBlog(t)
	c := NewCreator(store, reg, testutil.QuietLogger())

	var p Prompter = presetPrompter{a: validAnswers()}
	a, err := p.Ask(context.Background(), c.Registry(), Answers{Title: "Flagged title here"})
	if err != nil {
		t.Fatal(err)
	}
	rel, err := c.Create(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(rel, "zoe/") {
		t.Errorf("rel = %q", rel)
	}
}

func TestHuhPrompter_NothingToAsk(t *testing.T) {
	_, _, reg := testBlog(t)
	a := validAnswers()
	got, err := HuhPrompter{}.Ask(context.Background(), reg, a)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != a.Title || got.Excerpt != a.Excerpt {
		t.Errorf("got %+v", got)
	}
}
