// Package parser extracts frontmatter attributes and the Markdown body from a post.
package parser

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// Attributes are the frontmatter fields a blog post carries.
type Attributes struct {
	Title        string
	Slug         string
	Category     string
	CoAuthors    []string
	PublishDate  string
	Image        string
	ImageAlt     string
	ImageCaption string
	Excerpt      string
}

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]any
	Attributes  Attributes
	Body        []byte
}

// Parse separates the frontmatter block (YAML `---`, TOML `+++` or JSON)
// from the Markdown body. Input without frontmatter yields empty attributes
// and the whole input as body. A malformed block is an error.
func Parse(data []byte) (*Result, error) {
	var fm map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return nil, fmt.Errorf("parser: frontmatter: %w", err)
	}
	if fm == nil {
		fm = map[string]any{}
	}

	return &Result{
		Frontmatter: fm,
		Attributes:  attributesFrom(fm),
		Body:        body,
	}, nil
}

func attributesFrom(fm map[string]any) Attributes {
	return Attributes{
		Title:        str(fm, "title"),
		Slug:         str(fm, "slug"),
		Category:     str(fm, "category"),
		CoAuthors:    list(fm, "co_authors", "coAuthors"),
		PublishDate:  str(fm, "publish_date", "publishDate"),
		Image:        str(fm, "image"),
		ImageAlt:     str(fm, "imageAlt", "image_alt"),
		ImageCaption: str(fm, "imageCaption", "image_caption"),
		Excerpt:      str(fm, "excerpt"),
	}
}

// str returns the first present key rendered as a string.
func str(fm map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := fm[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t)
		case time.Time:
			if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
				return t.Format(time.DateOnly)
			}
			return t.Format(time.RFC3339)
		default:
			return fmt.Sprint(t)
		}
	}
	return ""
}

// list accepts either a YAML sequence or a comma separated string.
func list(fm map[string]any, keys ...string) []string {
	for _, k := range keys {
		v, ok := fm[k]
		if !ok || v == nil {
			continue
		}
		var raw []string
		switch t := v.(type) {
		case []any:
			for _, item := range t {
				if item != nil {
					raw = append(raw, fmt.Sprint(item))
				}
			}
		case []string:
			raw = t
		case string:
			raw = strings.Split(t, ",")
		default:
			raw = []string{fmt.Sprint(t)}
		}
		var out []string
		for _, s := range raw {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
