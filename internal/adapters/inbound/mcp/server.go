package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// NewPodcheckMCPServer creates an MCP server exposing the tracker and sync
// checks as tools and the effective configuration as a resource. configPath
// may be empty to use .podcheck.yaml in the working directory.
func NewPodcheckMCPServer(configPath string, log zerolog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"podcheck",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, configPath, log)
	registerResources(s, configPath)

	return s
}
