package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/podcheck/podcheck/internal/adapters/outbound/config"
	"github.com/podcheck/podcheck/internal/adapters/outbound/env"
	"github.com/podcheck/podcheck/internal/adapters/outbound/fsprobe"
	"github.com/podcheck/podcheck/internal/adapters/outbound/gitinfo"
	"github.com/podcheck/podcheck/internal/adapters/outbound/rclone"
	"github.com/podcheck/podcheck/internal/adapters/outbound/wandb"
	"github.com/podcheck/podcheck/internal/application"
	"github.com/podcheck/podcheck/internal/domain"
)

// registerTools registers the podcheck MCP tools on the given server.
func registerTools(s *server.MCPServer, configPath string, log zerolog.Logger) {
	s.AddTool(
		mcplib.NewTool("podcheck_tracker",
			mcplib.WithDescription("Runs the Weights & Biases login, run, metric and artifact checks and returns the report as JSON"),
			mcplib.WithString("project",
				mcplib.Description("Project to create the test run in (defaults to the configured project)"),
			),
			mcplib.WithString("run_name",
				mcplib.Description("Display name for the test run"),
			),
		),
		handleTracker(configPath, log),
	)

	s.AddTool(
		mcplib.NewTool("podcheck_sync",
			mcplib.WithDescription("Inspects the rclone config files and remotes and returns the report as JSON"),
			mcplib.WithString("remote",
				mcplib.Description("Remote prefix that must be configured, e.g. dbx:"),
			),
		),
		handleSync(configPath, log),
	)
}

type trackerResult struct {
	OK bool `json:"ok"`
	domain.Report
}

type syncResult struct {
	OK bool `json:"ok"`
	domain.SyncReport
}

func handleTracker(configPath string, log zerolog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, err := config.New().Load(configPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}
		tc := cfg.Tracker
		tc.Project = request.GetString("project", tc.Project)
		tc.RunName = request.GetString("run_name", tc.RunName)

		client := wandb.New(tc.BaseURL, wandb.WithEntity(tc.Entity), wandb.WithLogger(log))
		svc := application.NewTrackerService(tc, env.New(tc.EnvFile), client,
			application.WithTrackerLogger(log),
			application.WithCommitInfo(gitinfo.New()),
		)
		report := svc.Run(ctx)
		return jsonResult(trackerResult{OK: report.OK(), Report: report})
	}
}

func handleSync(configPath string, log zerolog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, err := config.New().Load(configPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}
		sc := cfg.Sync
		sc.RequiredRemote = request.GetString("remote", sc.RequiredRemote)
		if err := domain.ValidRemote(sc.RequiredRemote); err != nil {
			return errorResult(fmt.Sprintf("invalid remote: %v", err)), nil
		}

		svc := application.NewSyncService(sc, fsprobe.New(), rclone.New(sc.Binary, nil, log), log)
		report := svc.Run(ctx)
		return jsonResult(syncResult{OK: report.OK(), SyncReport: report})
	}
}

// jsonResult marshals v to indented JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
