package preview

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/starford/quill/internal/checksum"
	"github.com/starford/quill/internal/parser"
	"github.com/starford/quill/internal/render"
	"github.com/starford/quill/internal/storage"
)

// Source produces the current preview state.
type Source interface {
	Build() (*Snapshot, error)
}

// Builder reads one post through a storage provider and turns it into a
// Snapshot. Every call reads the file fresh.
type Builder struct {
	store     storage.Provider
	name      string
	mediaBase *url.URL
	renderer  *render.Renderer
	now       func() time.Time
}

var _ Source = (*Builder)(nil)

// NewBuilder creates a Builder for the post at name (relative to the store
// root). Relative asset references are resolved against mediaBase.
func NewBuilder(store storage.Provider, name string, mediaBase *url.URL, renderer *render.Renderer) *Builder {
	if renderer == nil {
		renderer = render.New()
	}
	return &Builder{
		store:     store,
		name:      name,
		mediaBase: mediaBase,
		renderer:  renderer,
		now:       time.Now,
	}
}

// Path returns the absolute path of the post.
func (b *Builder) Path() string {
	return filepath.Join(b.store.Root(), filepath.FromSlash(b.name))
}

// Build reads, parses and renders the post.
func (b *Builder) Build() (*Snapshot, error) {
	data, err := b.store.Read(b.name)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("preview: %s: %w", b.name, err)
	}
	html, err := b.renderer.Render(res.Body)
	if err != nil {
		return nil, fmt.Errorf("preview: %s: %w", b.name, err)
	}

	attrs := res.Attributes
	image := ""
	if attrs.Image != "" {
		image = render.ResolveURL(b.mediaBase, attrs.Image)
	}

	return &Snapshot{
		Message: Message{
			Slug:         SlugFor(b.name),
			Title:        attrs.Title,
			Image:        image,
			ImageCaption: attrs.ImageCaption,
			ImageAlt:     attrs.ImageAlt,
			Excerpt:      attrs.Excerpt,
			Content:      string(render.RewriteSrc(html, b.mediaBase)),
		},
		Path:     b.Path(),
		Checksum: checksum.Sum(data),
		Size:     len(data),
		BuiltAt:  b.now(),
	}, nil
}
