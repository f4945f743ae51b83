// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes quill's post tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	pathpkg "path"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/preview"
	"github.com/starford/quill/internal/render"
	"github.com/starford/quill/internal/scaffold"
	"github.com/starford/quill/internal/storage"
)

const formatURI = "quill://post-format"

// Server wraps the MCP server with quill tools.
type Server struct {
	mcp       *server.MCPServer
	store     storage.Provider
	creator   *scaffold.Creator
	mediaBase *url.URL
	renderer  *render.Renderer
}

// New creates a new MCP server with all quill tools registered. Posts are
// read and created through store; rendered asset references resolve
// against mediaBase.
func New(store storage.Provider, creator *scaffold.Creator, mediaBase *url.URL, renderer *render.Renderer) *Server {
	if renderer == nil {
		renderer = render.New()
	}
	s := &Server{store: store, creator: creator, mediaBase: mediaBase, renderer: renderer}

	s.mcp = server.NewMCPServer(
		"quill",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("render_post",
		mcp.WithDescription("Render a blog post to the preview message a browser would receive: "+
			"slug, title, image, imageCaption, imageAlt, excerpt and the HTML content."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Post path relative to the blog root (e.g. author/post.md)")),
	), s.renderPost)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read the raw Markdown source of a post."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Post path relative to the blog root")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("create_post",
		mcp.WithDescription("Scaffold a new post at <author>/<slug>.md. Fails if the post exists. "+
			"Read the format first via get_post_format or the "+formatURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Post title, longer than 3 characters")),
		mcp.WithString("category", mcp.Required(), mcp.Description("A key of categories.json")),
		mcp.WithString("author", mcp.Required(), mcp.Description("A key of authors.json")),
		mcp.WithString("co_authors", mcp.Description("Comma separated keys of authors.json")),
		mcp.WithString("excerpt", mcp.Description("Short summary shown in listings")),
	), s.createPost)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List all posts or the posts in one folder (usually an author)."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the post format: frontmatter keys, media layout and rendering rules."),
	), s.getPostFormat)

	s.mcp.AddTool(mcp.NewTool("add_media",
		mcp.WithDescription("Store an image in the media/ folder next to a post. "+
			"Returns a markdownImage reference ready to paste into the post body."),
		mcp.WithString("post", mcp.Required(), mcp.Description("Post path the image belongs to")),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or base64 data: URI of the image")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when omitted")),
	), s.addMedia)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Post Format",
			mcp.WithResourceDescription("Frontmatter and media conventions every post follows."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) renderPost(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// Media sits next to the post, so relative references resolve from its folder.
	base := s.mediaBase
	if dir := pathpkg.Dir(path); dir != "." {
		base = s.mediaBase.JoinPath(dir + "/")
	}
	snap, err := preview.NewBuilder(s.store, path, base, s.renderer).Build()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(snap.Message, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPost(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.creator == nil {
		return mcp.NewToolResultError("post creation is not configured: authors and categories files are missing"), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	author, err := req.RequireString("author")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	a := scaffold.Answers{
		Title:    title,
		Category: category,
		Author:   author,
		Excerpt:  req.GetString("excerpt", ""),
	}
	if co := req.GetString("co_authors", ""); co != "" {
		a.CoAuthors = strings.Split(co, ",")
	}

	path, err := s.creator.Create(ctx, a)
	switch {
	case errors.Is(err, apperr.ErrAlreadyExists), errors.Is(err, apperr.ErrInvalidInput):
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) listPosts(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metas, err := s.store.List(req.GetString("folder", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	paths := make([]string, 0, len(metas))
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getPostFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}
