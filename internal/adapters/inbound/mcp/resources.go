package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/podcheck/podcheck/internal/adapters/outbound/config"
)

const configURI = "podcheck://config"

// registerResources registers the podcheck MCP resources on the given server.
func registerResources(s *server.MCPServer, configPath string) {
	s.AddResource(
		mcplib.NewResource(
			configURI,
			"Configuration",
			mcplib.WithResourceDescription("Effective podcheck configuration after defaults are applied"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(configPath),
	)
}

func handleConfigResource(configPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		cfg, err := config.New().Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling config: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      configURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
