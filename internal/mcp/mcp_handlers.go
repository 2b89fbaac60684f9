package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/internal/runner"
	"github.com/huangsam/coverspot/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// reportSummary is the report without per-record metrics, which agents rarely need.
type reportSummary struct {
	RecordSetVersion string                    `json:"record_set_version"`
	TotalRecords     int                       `json:"total_records"`
	IncludedCount    int                       `json:"included_count"`
	AsOf             string                    `json:"as_of"`
	Filter           schema.FilterState        `json:"filter"`
	KPIs             schema.KPISummary         `json:"kpis"`
	Bands            schema.BandSummary        `json:"bands"`
	Segments         []schema.SegmentAggregate `json:"segments"`
	Ranked           schema.RankedList         `json:"ranked"`
}

func (h *toolHandler) handleEvaluateReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	report, err := runner.GetReportResults(runner.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	return jsonResult(reportSummary{
		RecordSetVersion: report.RecordSetVersion,
		TotalRecords:     report.TotalRecords,
		IncludedCount:    report.Evaluation.IncludedCount,
		AsOf:             report.AsOf.Format(contract.DateFormat),
		Filter:           report.Filter,
		KPIs:             report.KPIs,
		Bands:            report.Bands,
		Segments:         report.Evaluation.Segments,
		Ranked:           schema.TopRanked(report.Evaluation.Ranked, cfg.ResultLimit),
	})
}

func (h *toolHandler) handleGetTopSegments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	results, err := runner.GetSegmentResults(runner.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}
	return jsonResult(results)
}

func (h *toolHandler) handleGetRankedConsultants(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if r := request.GetInt("rank", 0); r != 0 {
		if r < 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: rank cannot be negative (received %d)", r)), nil
		}
		cfg.Rank = r
	}

	list, err := runner.GetRankedResults(runner.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}
	return jsonResult(list)
}

func (h *toolHandler) handleListFilterValues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	applyInputArgs(cfg, request)
	if cfg.InputPath == "" {
		return mcp.NewToolResultError("invalid parameters: input_path is required"), nil
	}

	catalog, err := runner.GetCatalog(runner.WithSuppressHeader(ctx), cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading failed: %v", err)), nil
	}
	return jsonResult(catalog)
}

func (h *toolHandler) handleEvaluateAllDimensions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	results, err := runner.GetSweepResults(runner.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("sweep failed: %v", err)), nil
	}
	return jsonResult(results)
}

// configFor clones the base config and applies the request's input, filter and limit arguments.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	applyInputArgs(cfg, request)
	if cfg.InputPath == "" {
		return nil, fmt.Errorf("input_path is required")
	}

	if s := strings.TrimSpace(request.GetString("as_of", "")); s != "" {
		t, err := time.Parse(contract.DateFormat, s)
		if err != nil {
			return nil, fmt.Errorf("invalid as_of date '%s'. expected YYYY-MM-DD", s)
		}
		cfg.AsOf = t
	}

	fs, err := filterFor(cfg.Filter, request)
	if err != nil {
		return nil, err
	}
	cfg.Filter = fs

	if n := request.GetInt("segment_limit", 0); n != 0 {
		if n < 0 || n > contract.MaxSegmentLimit {
			return nil, fmt.Errorf("segment_limit must be greater than 0 and cannot exceed %d (received %d)", contract.MaxSegmentLimit, n)
		}
		cfg.SegmentLimit = n
	}
	if l := request.GetInt("limit", 0); l != 0 {
		if l < 0 || l > contract.MaxResultLimit {
			return nil, fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", contract.MaxResultLimit, l)
		}
		cfg.ResultLimit = l
	}
	return cfg, nil
}

func applyInputArgs(cfg *contract.Config, request mcp.CallToolRequest) {
	if p := request.GetString("input_path", ""); p != "" {
		cfg.InputPath = p
		cfg.Sheet = ""
	}
	if s := request.GetString("sheet", ""); s != "" {
		cfg.Sheet = s
	}
}

// filterFor overrides the base filter state with the selections present in the request.
func filterFor(base schema.FilterState, request mcp.CallToolRequest) (schema.FilterState, error) {
	fs := base
	if m := request.GetString("metric", ""); m != "" {
		metric, err := schema.ParseMetricType(m)
		if err != nil {
			return fs, err
		}
		fs.MetricType = metric
	}
	if d := request.GetString("dimension", ""); d != "" {
		dim, err := schema.ParseSegmentDimension(d)
		if err != nil {
			return fs, err
		}
		fs.SegmentDimension = dim
	}

	selections := []struct {
		arg    string
		target *string
	}{
		{"department", &fs.Department},
		{"team", &fs.Team},
		{"unit", &fs.Unit},
		{"legal_entity", &fs.LegalEntity},
		{"location", &fs.Location},
		{"lead", &fs.Lead},
	}
	for _, s := range selections {
		if v := strings.TrimSpace(request.GetString(s.arg, "")); v != "" {
			*s.target = v
		}
	}

	if a := request.GetString("available", ""); a != "" {
		available, err := contract.ParseAvailabilitySelection(a)
		if err != nil {
			return fs, err
		}
		fs.Availability = available
	}
	return fs, fs.Validate()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
