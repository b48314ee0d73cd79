// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/metricsagg/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the metricsagg MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Metrics Aggregation Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: summarize_metrics ---
	s.AddTool(mcp.NewTool("summarize_metrics",
		mcp.WithDescription("Aggregate radon and lizard reports from every project folder under a root directory into one summary table."),
		mcp.WithString("root_path", mcp.Description("Directory whose immediate subdirectories are project folders (defaults to the configured root).")),
		mcp.WithString("exclude", mcp.Description("Comma-separated folder name patterns to skip.")),
	), h.handleSummarizeMetrics)

	// --- 2. Tool: extract_metrics_file ---
	s.AddTool(mcp.NewTool("extract_metrics_file",
		mcp.WithDescription("Extract test and non-test averages from a single analyzer output file (complexity.json, lizard_report.xml, halstead.json or raw_metrics.json)."),
		mcp.WithString("path", mcp.Description("Path to the analyzer output file."), mcp.Required()),
	), h.handleExtractMetricsFile)

	return s
}

// StartMCPServer starts the metricsagg MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
