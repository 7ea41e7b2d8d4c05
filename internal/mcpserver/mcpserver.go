package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers all burden analysis tools.
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server with all burden tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "burden",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds all burden analyzer tools to the server.
func (s *Server) registerTools() {
	// Unified debt scoring
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_debt",
		Description: describeDebt(),
	}, handleAnalyzeDebt)

	// Entropy-dampened complexity
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_complexity",
		Description: describeComplexity(),
	}, handleAnalyzeComplexity)

	// Purity classification
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_purity",
		Description: describePurity(),
	}, handleAnalyzePurity)

	// Call graph with centrality
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_graph",
		Description: describeGraph(),
	}, handleAnalyzeGraph)
}
