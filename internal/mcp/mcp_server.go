// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names exposed by the server.
const (
	toolEvaluateReport   = "evaluate_report"
	toolTopSegments      = "get_top_segments"
	toolRankedConsultant = "get_ranked_consultants"
	toolFilterValues     = "list_filter_values"
	toolAllDimensions    = "evaluate_all_dimensions"
)

// NewMCPServer initializes and configures the Coverspot MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Coverspot Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: evaluate_report ---
	s.AddTool(mcp.NewTool(toolEvaluateReport, withFilterArgs(
		mcp.WithDescription("Evaluate a consultant export and return KPIs, coverage bands, the Top-N segments and the worst ranked consultants."),
		mcp.WithNumber("segment_limit", mcp.Description("Number of segments to return (default 10).")),
		mcp.WithNumber("limit", mcp.Description("Number of ranked consultants to return.")),
	)...), h.handleEvaluateReport)

	// --- 2. Tool: get_top_segments ---
	s.AddTool(mcp.NewTool(toolTopSegments, withFilterArgs(
		mcp.WithDescription("Return the segments of the chosen dimension with the highest share of low-coverage consultants."),
		mcp.WithNumber("segment_limit", mcp.Description("Number of segments to return (default 10).")),
	)...), h.handleGetTopSegments)

	// --- 3. Tool: get_ranked_consultants ---
	s.AddTool(mcp.NewTool(toolRankedConsultant, withFilterArgs(
		mcp.WithDescription("Return included consultants ordered by anomaly score, worst first."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
		mcp.WithNumber("rank", mcp.Description("Return only the consultant at this 1-based rank.")),
	)...), h.handleGetRankedConsultants)

	// --- 4. Tool: list_filter_values ---
	s.AddTool(mcp.NewTool(toolFilterValues,
		mcp.WithDescription("List the selectable values of every filter in a consultant export."),
		mcp.WithString("input_path", mcp.Description("Path to the .xlsx, .xlsm or .csv export (defaults to the configured input).")),
		mcp.WithString("sheet", mcp.Description("Workbook sheet to read instead of the active sheet.")),
	), h.handleListFilterValues)

	// --- 5. Tool: evaluate_all_dimensions ---
	s.AddTool(mcp.NewTool(toolAllDimensions, withFilterArgs(
		mcp.WithDescription("Return the Top-N segments of every segment dimension under the same filters."),
		mcp.WithNumber("segment_limit", mcp.Description("Number of segments per dimension (default 10).")),
	)...), h.handleEvaluateAllDimensions)

	return s
}

// withFilterArgs prepends the input and filter arguments shared by the evaluation tools.
func withFilterArgs(opts ...mcp.ToolOption) []mcp.ToolOption {
	dims := make([]string, len(schema.AllSegmentDimensions))
	for i, d := range schema.AllSegmentDimensions {
		dims[i] = string(d)
	}
	common := []mcp.ToolOption{
		mcp.WithString("input_path", mcp.Description("Path to the .xlsx, .xlsm or .csv export (defaults to the configured input).")),
		mcp.WithString("sheet", mcp.Description("Workbook sheet to read instead of the active sheet.")),
		mcp.WithString("as_of", mcp.Description("Evaluation date as YYYY-MM-DD (defaults to the configured date).")),
		mcp.WithString("metric", mcp.Description("Coverage metric. Defaults to 'Weighted'."), mcp.Enum(string(schema.WeightedMetric), string(schema.AbsoluteMetric))),
		mcp.WithString("dimension", mcp.Description("Segment dimension. Defaults to 'Department'."), mcp.Enum(dims...)),
		mcp.WithString("department", mcp.Description("Department filter (All or an exact value).")),
		mcp.WithString("team", mcp.Description("Team filter (All or an exact value).")),
		mcp.WithString("unit", mcp.Description("Unit filter (All or an exact value).")),
		mcp.WithString("legal_entity", mcp.Description("Legal entity filter (All or an exact value).")),
		mcp.WithString("location", mcp.Description("Location filter (All or an exact value).")),
		mcp.WithString("lead", mcp.Description("Lead filter (All or an exact value).")),
		mcp.WithString("available", mcp.Description("Availability filter."), mcp.Enum(schema.AllValue, string(schema.AvailableYes), string(schema.AvailableNo))),
	}
	return append(opts, common...)
}

// StartMCPServer starts the Coverspot MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
