// Package mcpserver exposes the trust scanner over the Model Context
// Protocol so an editor or agent can request scans the same way the
// command line does, without duplicating the coordinator/orchestrator
// wiring.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pkgguard/pkgguard/core"
)

// toolHandler holds the dependencies every MCP tool call shares.
type toolHandler struct {
	coordinator *core.Coordinator
}

// New builds the MCP server without starting it, exposed separately from
// Serve for testability.
func New(coordinator *core.Coordinator) *server.MCPServer {
	s := server.NewMCPServer(
		"pkgguard trust scanner",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{coordinator: coordinator}

	s.AddTool(mcp.NewTool("scan_package",
		mcp.WithDescription("Scan one community-repository package recipe and return its trust score."),
		mcp.WithString("name", mcp.Description("Package name to scan."), mcp.Required()),
	), h.handleScanPackage)

	s.AddTool(mcp.NewTool("scan_batch",
		mcp.WithDescription("Scan several package recipes concurrently and return their trust scores."),
		mcp.WithArray("names", mcp.Description("Package names to scan."), mcp.Required()),
		mcp.WithNumber("concurrency", mcp.Description("Number of packages scanned concurrently (default 8).")),
	), h.handleScanBatch)

	return s
}

// Serve starts the MCP server over stdio.
func Serve(_ context.Context, coordinator *core.Coordinator) error {
	s := New(coordinator)
	return server.ServeStdio(s)
}

func (h *toolHandler) handleScanPackage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	requestID := uuid.NewString()
	result := h.coordinator.ScanWithTimeout(ctx, name, core.DefaultPerPackageTimeout)

	payload := map[string]any{
		"request_id": requestID,
		"result":     result,
	}
	data, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (h *toolHandler) handleScanBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawNames, ok := request.GetArguments()["names"].([]any)
	if !ok || len(rawNames) == 0 {
		return mcp.NewToolResultError("names must be a non-empty array of package names"), nil
	}
	names := make([]string, 0, len(rawNames))
	for _, raw := range rawNames {
		name, ok := raw.(string)
		if !ok || name == "" {
			return mcp.NewToolResultError("names must contain only non-empty strings"), nil
		}
		names = append(names, name)
	}

	concurrency := request.GetInt("concurrency", 8)
	if concurrency < 1 {
		concurrency = 1
	}

	requestID := uuid.NewString()
	batch := core.NewBatch(h.coordinator, concurrency, core.DefaultPerPackageTimeout)
	results := batch.ScanMany(ctx, names, nil)

	payload := map[string]any{
		"request_id": requestID,
		"results":    results,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
