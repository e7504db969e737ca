// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only blog tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/devlog/internal/apperr"
	"github.com/starford/devlog/internal/blog"
	"github.com/starford/devlog/internal/models"
)

// CatalogFormatURI is the resource URI of the catalog format contract.
const CatalogFormatURI = "devlog://catalog-format"

const defaultRecentLimit = 3

// Server wraps the MCP server with blog tools.
type Server struct {
	mcp *server.MCPServer
	svc *blog.Service
}

// New creates a new MCP server with all blog tools registered.
func New(svc *blog.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Devlog",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_recent_posts",
		mcp.WithDescription("List the newest posts across all sections, newest first."),
		mcp.WithNumber("limit", mcp.Description("Number of posts to return (default 3)")),
	), s.listRecentPosts)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("Post counts per category, in first-seen order."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("list_category_groups",
		mcp.WithDescription("All posts grouped by category; largest group first, posts newest first."),
	), s.listCategoryGroups)

	s.mcp.AddTool(mcp.NewTool("list_section",
		mcp.WithDescription("List the posts of one section (devlife, project, study), newest first."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section key")),
	), s.listSection)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read one post: its catalog entry and Markdown body."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section key")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Post id within the section")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("get_catalog_format",
		mcp.WithDescription("Returns the catalog file format. "+
			"Read this before proposing catalog changes."),
	), s.getCatalogFormat)

	s.mcp.AddResource(
		mcp.NewResource(CatalogFormatURI, "Catalog Format",
			mcp.WithResourceDescription("YAML format of the section and post catalog."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCatalogFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listRecentPosts(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultRecentLimit)
	return jsonResult(s.svc.Recent(limit))
}

func (s *Server) listCategories(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Categories())
}

func (s *Server) listCategoryGroups(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.CategoryGroups())
}

func (s *Server) listSection(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	listing, err := s.svc.Section(key)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown section: %s", key)), nil
	}
	return jsonResult(listing)
}

type postResult struct {
	Post    models.PostSummary `json:"post"`
	Content string             `json:"content"`
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.Post(ctx, section, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", section, id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(postResult{Post: detail.Post, Content: detail.Content})
}

func (s *Server) getCatalogFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CatalogFormatContract), nil
}

func (s *Server) readCatalogFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogFormatURI,
			MIMEType: "text/markdown",
			Text:     CatalogFormatContract,
		},
	}, nil
}
