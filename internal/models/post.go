// Package models defines the domain types shared by storage and the tool surfaces.
package models

import "time"

// PostMeta is a lightweight representation of a post file returned by list operations.
type PostMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
