// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the inventory tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/eivindn/inventar/internal/apperr"
	"github.com/eivindn/inventar/internal/inventoryservice"
	"github.com/eivindn/inventar/internal/storage"
)

// Server wraps the MCP server with inventory tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *inventoryservice.Service
	store storage.Provider
}

// New creates a new MCP server with all inventory tools registered.
func New(svc *inventoryservice.Service, store storage.Provider) *Server {
	s := &Server{svc: svc, store: store}

	s.mcp = server.NewMCPServer(
		"Inventar",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_inventory",
		mcp.WithDescription("Full-text search across container headings, descriptions, items, and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchInventory)

	s.mcp.AddTool(mcp.NewTool("get_container",
		mcp.WithDescription("Get one container with its items, images, and metadata. Lookup is case-insensitive."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Container id (e.g. A23, Box9-1)")),
	), s.getContainer)

	s.mcp.AddTool(mcp.NewTool("list_containers",
		mcp.WithDescription("List containers, optionally filtered by parent id, tag, or id prefix."),
		mcp.WithString("parent", mcp.Description("Only containers directly inside this container")),
		mcp.WithString("tag", mcp.Description("Only containers carrying this tag")),
		mcp.WithString("prefix", mcp.Description("Only containers whose id starts with this prefix")),
	), s.listContainers)

	s.mcp.AddTool(mcp.NewTool("add_item",
		mcp.WithDescription("Append an item to a container's bullet list. "+
			"Text may carry inline metadata like (antall:2) or (tag:vinter); read the "+
			"get_inventory_contract tool or the inventar://document-format resource first."),
		mcp.WithString("container", mcp.Required(), mcp.Description("Container id")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Item text, optionally with inline key:value metadata")),
	), s.addItem)

	s.mcp.AddTool(mcp.NewTool("remove_item",
		mcp.WithDescription("Remove the first item in a container whose text contains the match string (case-insensitive)."),
		mcp.WithString("container", mcp.Required(), mcp.Description("Container id")),
		mcp.WithString("match", mcp.Required(), mcp.Description("Substring identifying the item to remove")),
	), s.removeItem)

	s.mcp.AddTool(mcp.NewTool("upload_photo",
		mcp.WithDescription("Download a photo from an http(s) URL or decode a base64 data URI "+
			"and store it in the container's photo directory."),
		mcp.WithString("container", mcp.Required(), mcp.Description("Container id the photo belongs to")),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:<mime>;base64,<data> URI")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when omitted")),
	), s.uploadPhoto)

	s.mcp.AddTool(mcp.NewTool("get_inventory_contract",
		mcp.WithDescription("Returns the canonical inventory markdown format. "+
			"Call this before adding items or editing the document."),
	), s.getInventoryContract)

	// Resource: inventory document format.
	s.mcp.AddResource(
		mcp.NewResource("inventar://document-format", "Inventory Document Format",
			mcp.WithResourceDescription("Canonical markdown structure the inventory document must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
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

func (s *Server) searchInventory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(hits, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getContainer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.Container(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("container not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(c, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listContainers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := inventoryservice.Filter{
		Parent: req.GetString("parent", ""),
		Prefix: req.GetString("prefix", ""),
	}
	if tag := req.GetString("tag", ""); tag != "" {
		f.Tags = []string{tag}
	}

	type entry struct {
		ID      string `json:"id"`
		Parent  string `json:"parent,omitempty"`
		Heading string `json:"heading"`
		Items   int    `json:"items"`
	}
	containers := s.svc.Containers(f)
	entries := make([]entry, len(containers))
	for i, c := range containers {
		entries[i] = entry{ID: c.ID, Parent: c.ParentID(), Heading: c.Heading, Items: len(c.Items)}
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	container, err := req.RequireString("container")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, err := s.svc.AddItem(ctx, container, text, "")
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("container not found: %s", container)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added to %s (now %d items)", c.ID, len(c.Items))), nil
}

func (s *Server) removeItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	container, err := req.RequireString("container")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	match, err := req.RequireString("match")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, removed, err := s.svc.RemoveItem(ctx, container, match, "")
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no item matching %q in %s", match, container)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed %q from %s (now %d items)", removed, c.ID, len(c.Items))), nil
}

func (s *Server) getInventoryContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "inventar://document-format",
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
