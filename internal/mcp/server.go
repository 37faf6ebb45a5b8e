package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/redlinehq/redline/internal/review"
	"github.com/redlinehq/redline/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that gives agents read access to reviewer
// annotations.
type Server struct {
	reviews *review.Service
	index   *search.Index // nil when search is not configured
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(reviews *review.Service, index *search.Index) *Server {
	s := &Server{
		reviews: reviews,
		index:   index,
	}

	s.mcp = server.NewMCPServer(
		"redline",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listAnnotationsTool, s.handleListAnnotations)
	s.mcp.AddTool(getSectionTool, s.handleGetSection)
	s.mcp.AddTool(searchCommentsTool, s.handleSearchComments)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
