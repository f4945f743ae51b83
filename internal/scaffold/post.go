package scaffold

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"gopkg.in/yaml.v3"

	"github.com/starford/quill/internal/apperr"
)

// ContentPlaceholder is written below the frontmatter of a new post.
const ContentPlaceholder = "<Post content starts here!>"

// Answers are the values a new post is created from.
type Answers struct {
	Title     string   `json:"title"`
	Category  string   `json:"category"`
	Author    string   `json:"author"`
	CoAuthors []string `json:"co_authors,omitempty"`
	Excerpt   string   `json:"excerpt,omitempty"`
}

// Normalize trims surrounding whitespace from every answer.
func (a *Answers) Normalize() {
	a.Title = strings.TrimSpace(a.Title)
	a.Category = strings.TrimSpace(a.Category)
	a.Author = strings.TrimSpace(a.Author)
	a.Excerpt = strings.TrimSpace(a.Excerpt)
	var coAuthors []string
	for _, c := range a.CoAuthors {
		if c = strings.TrimSpace(c); c != "" {
			coAuthors = append(coAuthors, c)
		}
	}
	a.CoAuthors = coAuthors
}

// Validate checks the answers against the registry.
func (a *Answers) Validate(reg *Registry) error {
	authors := toAny(reg.Authors)
	err := validation.ValidateStruct(a,
		validation.Field(&a.Title, validation.Required, validation.Length(4, 0)),
		validation.Field(&a.Category, validation.Required, validation.In(toAny(reg.Categories)...)),
		validation.Field(&a.Author, validation.Required, validation.In(authors...)),
		validation.Field(&a.CoAuthors, validation.Each(validation.In(authors...))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}

// header is the frontmatter of a new post. Field order is the key order
// in the written file.
type header struct {
	Title        string `yaml:"title"`
	Category     string `yaml:"category"`
	CoAuthors    string `yaml:"co_authors"`
	PublishDate  string `yaml:"publish_date"`
	Image        string `yaml:"image"`
	ImageAlt     string `yaml:"imageAlt"`
	ImageCaption string `yaml:"imageCaption"`
	Excerpt      string `yaml:"excerpt"`
}

// Render returns the full content of a new post for a.
func Render(a Answers) ([]byte, error) {
	h := header{
		Title:     a.Title,
		Category:  a.Category,
		CoAuthors: strings.Join(a.CoAuthors, ","),
		Image:     "media/",
		Excerpt:   a.Excerpt,
	}
	fm, err := yaml.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("scaffold: encode frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	buf.WriteString(ContentPlaceholder)
	return buf.Bytes(), nil
}

// Slug returns the file-name slug for a post title.
func Slug(title string) (string, error) {
	s, err := slug.Normalize(title)
	if err != nil {
		return "", fmt.Errorf("scaffold: slug %q: %w", title, err)
	}
	s = strings.ToLower(s)
	if s == "" {
		return "", fmt.Errorf("%w: title %q has no usable characters", apperr.ErrInvalidInput, title)
	}
	return s, nil
}

// TargetPath returns where the post for a is written, relative to the
// blog root: <author>/<slug>.md.
func TargetPath(a Answers) (string, error) {
	s, err := Slug(a.Title)
	if err != nil {
		return "", err
	}
	return path.Join(a.Author, s+".md"), nil
}
