package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/lexflowhq/lexflow/internal/audit"
	"github.com/lexflowhq/lexflow/internal/matter"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server exposing the matter workflow to lawyer-side
// agents over stdio.
type Server struct {
	matters *matter.Manager
	audit   *audit.Store
	mcp     *server.MCPServer
}

// NewServer creates an MCP server with the given dependencies.
func NewServer(matters *matter.Manager, auditStore *audit.Store) *Server {
	s := &Server{
		matters: matters,
		audit:   auditStore,
	}

	s.mcp = server.NewMCPServer(
		"lexflow",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(getMatterStatusTool, s.handleGetMatterStatus)
	s.mcp.AddTool(getMatterChecklistTool, s.handleGetMatterChecklist)
	s.mcp.AddTool(queryAuditTrailTool, s.handleQueryAuditTrail)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
