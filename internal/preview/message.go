// Package preview builds post preview messages from the watched file and
// fans them out to connected viewer sessions.
package preview

import (
	"path"
	"strings"
	"time"
)

// Message is the payload pushed to every viewer. It is rebuilt wholesale
// on every refresh.
type Message struct {
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Image        string `json:"image"`
	ImageCaption string `json:"imageCaption"`
	ImageAlt     string `json:"imageAlt"`
	Excerpt      string `json:"excerpt"`
	Content      string `json:"content"`
}

// Snapshot is a built Message together with facts about the source bytes
// it was built from.
type Snapshot struct {
	Message  Message
	Path     string
	Checksum string
	Size     int
	BuiltAt  time.Time
}

// SlugFor derives the post slug from its file name.
func SlugFor(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
