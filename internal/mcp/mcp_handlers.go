package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/huangsam/metricsagg/core"
	"github.com/huangsam/metricsagg/core/extract"
	"github.com/huangsam/metricsagg/internal/contract"
	"github.com/huangsam/metricsagg/internal/outwriter"
	"github.com/huangsam/metricsagg/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
}

func (h *toolHandler) handleSummarizeMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	rootPath := request.GetString("root_path", "")
	exclude := request.GetString("exclude", "")

	if err := contract.RevalidateRoot(cfg, rootPath, exclude); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid summarize parameters: %v", err)), nil
	}

	var store contract.HistoryStore
	if h.mgr != nil && cfg.HistoryEnabled() {
		store = h.mgr.GetHistoryStore()
	}

	table, err := core.Summarize(ctx, cfg, store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summarize failed: %v", err)), nil
	}

	jsonData, err := outwriter.MarshalSummaryJSON(table, cfg.Precision)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding summary failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleExtractMetricsFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	source := schema.SourceFile(filepath.Base(path))
	if _, ok := extract.ForSource(source); !ok {
		names := make([]string, len(schema.AllSourceFiles))
		for i, s := range schema.AllSourceFiles {
			names[i] = string(s)
		}
		return mcp.NewToolResultError(fmt.Sprintf("unsupported file %s: expected one of %s", source, strings.Join(names, ", "))), nil
	}

	result, err := extract.File(source, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extraction failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(finiteResult(result), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// finiteResult replaces non-finite values with nil so the result encodes as JSON.
func finiteResult(result schema.ExtractResult) map[schema.Category]map[string]*float64 {
	out := make(map[schema.Category]map[string]*float64, len(result))
	for category, record := range result {
		metrics := make(map[string]*float64, len(record))
		for name, v := range record {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				metrics[name] = nil
				continue
			}
			metrics[name] = &v
		}
		out[category] = metrics
	}
	return out
}
