// Package render turns post Markdown into the HTML shown by the preview.
package render

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Renderer converts Markdown to HTML. It is stateless and safe for
// concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// Option configures a Renderer.
type Option func(*options)

type options struct {
	highlight bool
	style     string
}

// WithHighlighting toggles syntax highlighting of fenced code blocks.
func WithHighlighting(enabled bool) Option {
	return func(o *options) {
		o.highlight = enabled
	}
}

// WithHighlightStyle selects the chroma style used when highlighting inline.
// An empty style emits CSS classes instead.
func WithHighlightStyle(style string) Option {
	return func(o *options) {
		o.style = style
	}
}

// New builds a Renderer with GitHub-flavored extensions, footnotes, math,
// heading ids and raw HTML passthrough.
func New(opts ...Option) *Renderer {
	o := options{highlight: true}
	for _, opt := range opts {
		opt(&o)
	}

	exts := []goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		math{},
	}
	if o.highlight {
		hlOpts := []highlighting.Option{}
		if o.style != "" {
			hlOpts = append(hlOpts, highlighting.WithStyle(o.style))
		} else {
			hlOpts = append(hlOpts, highlighting.WithFormatOptions(chromahtml.WithClasses(true)))
		}
		exts = append(exts, highlighting.NewHighlighting(hlOpts...))
	}

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithParserOptions(
				parser.WithASTTransformers(util.Prioritized(headingIDs{}, 100)),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Render converts a Markdown body (frontmatter already removed) to HTML.
func (r *Renderer) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("render: markdown: %w", err)
	}
	return buf.Bytes(), nil
}
