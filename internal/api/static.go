package api

import (
	"net/http"
	"os"
	"path"
)

// staticDir serves files from dir. Directories without an index.html are
// reported as missing instead of listed.
func staticDir(dir string) http.Handler {
	return http.FileServer(noListingFS{http.Dir(dir)})
}

type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if !info.IsDir() {
		return f, nil
	}
	index, err := n.fs.Open(path.Join(name, "index.html"))
	if err != nil {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	_ = index.Close()
	return f, nil
}
