package api

import (
	"bytes"
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlightStyle colors the class-based code highlighting in the viewer.
const highlightStyle = "github"

//go:embed viewer.html
var viewerHTML string

var viewerTmpl = template.Must(template.New("viewer").Parse(viewerHTML))

// ViewerHandler serves the built-in preview page. It subscribes to /events
// when useSSE is set and to /ws otherwise.
func ViewerHandler(useSSE bool) http.HandlerFunc {
	transport := "ws"
	if useSSE {
		transport = "sse"
	}
	var buf bytes.Buffer
	if err := viewerTmpl.Execute(&buf, struct{ Transport string }{transport}); err != nil {
		slog.Error("viewer template failed", slog.String("error", err.Error()))
	}
	page := buf.Bytes()

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(page)
	}
}

// HighlightCSSHandler serves the stylesheet for highlighted code blocks.
func HighlightCSSHandler() http.HandlerFunc {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(highlightStyle)); err != nil {
		slog.Error("highlight css failed", slog.String("error", err.Error()))
	}
	css := buf.Bytes()

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		_, _ = w.Write(css)
	}
}
