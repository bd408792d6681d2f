package cli

import (
	mcpadapter "github.com/podcheck/podcheck/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the podcheck MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start podcheck MCP server (stdio)",
		Long:  "Start the podcheck MCP server using stdio transport so assistants can run the tracker and sync checks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			// stdout carries the protocol; logs must stay on stderr.
			s := mcpadapter.NewPodcheckMCPServer(configPath, newLogger(cmd))
			return server.ServeStdio(s)
		},
	}

	return cmd
}
