package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	mediaDir     = "media"
	maxMediaSize = 10 << 20 // 10 MB
)

var (
	mediaTypes = map[string]string{
		"image/png":     ".png",
		"image/jpeg":    ".jpg",
		"image/gif":     ".gif",
		"image/webp":    ".webp",
		"image/svg+xml": ".svg",
	}

	unsafeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

type mediaResult struct {
	SavedPath     string `json:"savedPath"`
	MarkdownImage string `json:"markdownImage"`
}

// addMedia stores an image under media/ next to the post. The returned
// reference is relative so the preview resolves it against its media root.
func (s *Server) addMedia(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	post, err := req.RequireString("post")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	src, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok, _ := s.store.Exists(post); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("post not found: %s", post)), nil
	}

	var data []byte
	var typ string
	if strings.HasPrefix(src, "data:") {
		data, typ, err = decodeDataURI(src)
	} else {
		data, typ, err = download(ctx, src)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ext, err := mediaExtension(data, typ)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := mediaName(req.GetString("filename", ""), src, ext)

	ref := path.Join(mediaDir, name)
	target := path.Join(path.Dir(post), ref)
	if exists, _ := s.store.Exists(target); exists {
		return mcp.NewToolResultError(fmt.Sprintf("file already exists: %s", target)), nil
	}
	if err := s.store.Write(target, data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save media: %v", err)), nil
	}

	out, _ := json.Marshal(mediaResult{
		SavedPath:     target,
		MarkdownImage: fmt.Sprintf("![%s](%s)", strings.TrimSuffix(name, path.Ext(name)), ref),
	})
	return mcp.NewToolResultText(string(out)), nil
}

// decodeDataURI parses a data:<mediatype>;base64,<data> URI.
func decodeDataURI(uri string) ([]byte, string, error) {
	meta, encoded, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("invalid data URI: missing comma separator")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("only base64 data URIs are supported")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(encoded); err != nil {
			return nil, "", fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	if len(data) > maxMediaSize {
		return nil, "", fmt.Errorf("file too large: %d bytes (max %d)", len(data), maxMediaSize)
	}
	typ, _, _ := strings.Cut(strings.TrimSuffix(meta, ";base64"), ";")
	return data, typ, nil
}

// download fetches an http(s) image. Loopback and cloud metadata hosts are
// refused.
func download(ctx context.Context, raw string) ([]byte, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported scheme: %s (only http/https)", u.Scheme)
	}
	if err := checkHost(u.Hostname()); err != nil {
		return nil, "", err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(r *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return checkHost(r.URL.Hostname())
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body failed: %w", err)
	}
	if len(data) > maxMediaSize {
		return nil, "", fmt.Errorf("file too large: exceeds %d bytes", maxMediaSize)
	}
	typ, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	return data, strings.TrimSpace(typ), nil
}

func checkHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return nil //nolint:nilerr // the client reports DNS failures
		}
		ip = ips[0]
	}
	if ip.IsLoopback() || ip.Equal(net.ParseIP("169.254.169.254")) {
		return fmt.Errorf("blocked host: %s", host)
	}
	return nil
}

// mediaExtension checks the content is an image and returns its extension.
// Declared types are trusted only when the bytes agree.
func mediaExtension(data []byte, declared string) (string, error) {
	isSVG := bytes.Contains(head(data, 1024), []byte("<svg"))
	if declared == "image/svg+xml" && !isSVG {
		return "", fmt.Errorf("content does not appear to be a valid SVG")
	}
	if isSVG {
		return ".svg", nil
	}
	sniffed, _, _ := strings.Cut(http.DetectContentType(data), ";")
	ext, ok := mediaTypes[sniffed]
	if !ok {
		return "", fmt.Errorf("unsupported media type: %s (allowed: png, jpg, gif, webp, svg)", sniffed)
	}
	if declared != "" && declared != "application/octet-stream" && mediaTypes[declared] != ext {
		return "", fmt.Errorf("content %s does not match declared type %s", sniffed, declared)
	}
	return ext, nil
}

func head(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// mediaName picks a safe file name: the requested one, else the URL's base
// name, else a random one. The extension always matches the content.
func mediaName(requested, src, ext string) string {
	name := requested
	if name == "" && !strings.HasPrefix(src, "data:") {
		if u, err := url.Parse(src); err == nil {
			name = path.Base(u.Path)
		}
	}
	name = unsafeNameRe.ReplaceAllString(path.Base(name), "_")
	stem := strings.TrimSuffix(name, path.Ext(name))
	if stem == "" || stem == "." || stem == "_" {
		stem = uuid.NewString()
	}
	return stem + ext
}
