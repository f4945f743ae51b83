// Package scaffold creates new post files from a handful of answers.
package scaffold

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/starford/quill/internal/storage"
)

// Registry holds the known authors and categories of a blog.
type Registry struct {
	Authors    []string
	Categories []string
}

// LoadRegistry reads the authors and categories files (relative to the
// store root). Only the keys of each JSON object matter; they are returned
// sorted.
func LoadRegistry(store storage.Provider, authorsFile, categoriesFile string) (*Registry, error) {
	authors, err := readKeys(store, authorsFile)
	if err != nil {
		return nil, err
	}
	categories, err := readKeys(store, categoriesFile)
	if err != nil {
		return nil, err
	}
	return &Registry{Authors: authors, Categories: categories}, nil
}

func readKeys(store storage.Provider, name string) ([]string, error) {
	data, err := store.Read(name)
	if err != nil {
		return nil, fmt.Errorf("scaffold: %w", err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("scaffold: parse %s: %w", name, err)
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
