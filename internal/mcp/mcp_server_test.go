package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/internal/iocache"
	mcp_internal "github.com/huangsam/coverspot/internal/mcp"
	"github.com/huangsam/coverspot/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const fixturePath = "testdata/consultants.csv"

func baseConfig() *contract.Config {
	return &contract.Config{
		AsOf:         time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Filter:       schema.DefaultFilterState(),
		SegmentLimit: contract.DefaultSegmentLimit,
		ResultLimit:  contract.DefaultResultLimit,
		Workers:      2,
		Precision:    contract.DefaultPrecision,
		Output:       schema.TextOut,
	}
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPServer_ToolsRegistered(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)
	for _, name := range []string{
		"evaluate_report",
		"get_top_segments",
		"get_ranked_consultants",
		"list_filter_values",
		"evaluate_all_dimensions",
	} {
		assert.NotNil(t, s.GetTool(name), name)
	}
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"missing input", "evaluate_report", map[string]any{}, "input_path is required"},
		{"missing input for catalog", "list_filter_values", map[string]any{}, "input_path is required"},
		{"bad metric", "get_top_segments", map[string]any{"input_path": fixturePath, "metric": "Median"}, "invalid metric type"},
		{"bad dimension", "evaluate_all_dimensions", map[string]any{"input_path": fixturePath, "dimension": "Country"}, "invalid segment dimension"},
		{"bad availability", "evaluate_report", map[string]any{"input_path": fixturePath, "available": "maybe"}, "invalid availability"},
		{"bad date", "evaluate_report", map[string]any{"input_path": fixturePath, "as_of": "01.07.2024"}, "expected YYYY-MM-DD"},
		{"bad limit", "get_ranked_consultants", map[string]any{"input_path": fixturePath, "limit": 5000.0}, "limit must be greater than 0"},
		{"rank out of range", "get_ranked_consultants", map[string]any{"input_path": fixturePath, "rank": 9.0}, "rank 9 is out of range"},
		{"missing file", "evaluate_report", map[string]any{"input_path": "testdata/missing.csv"}, "failed to read input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestEvaluateReport(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)
	res := callTool(t, s, "evaluate_report", map[string]any{
		"input_path": fixturePath,
		"limit":      2.0,
	})
	require.False(t, res.IsError, resultText(t, res))

	var summary struct {
		TotalRecords  int                       `json:"total_records"`
		IncludedCount int                       `json:"included_count"`
		AsOf          string                    `json:"as_of"`
		KPIs          schema.KPISummary         `json:"kpis"`
		Segments      []schema.SegmentAggregate `json:"segments"`
		Ranked        schema.RankedList         `json:"ranked"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &summary))
	assert.Equal(t, 5, summary.TotalRecords)
	assert.Equal(t, 4, summary.IncludedCount)
	assert.Equal(t, "2024-07-01", summary.AsOf)
	assert.Equal(t, 3, summary.KPIs.AnomalyCount)
	assert.Equal(t, "Sales", summary.Segments[0].SegmentValue)
	require.Len(t, summary.Ranked, 2)
	assert.Equal(t, "Carol Chen", summary.Ranked[0].Record.FullName)
}

func TestEvaluateReport_TracksHistory(t *testing.T) {
	history := &iocache.MockHistoryStore{}
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetReportStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)
	history.On("BeginRun", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	history.On("RecordConsultantScore", int64(1), mock.Anything).Return(nil)
	history.On("EndRun", int64(1), mock.Anything, 5, 4).Return(nil)

	s := mcp_internal.NewMCPServer(baseConfig(), mgr)
	res := callTool(t, s, "evaluate_report", map[string]any{"input_path": fixturePath})
	require.False(t, res.IsError, resultText(t, res))
	history.AssertNumberOfCalls(t, "RecordConsultantScore", 4)
	history.AssertExpectations(t)
}

func TestGetTopSegments(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)
	res := callTool(t, s, "get_top_segments", map[string]any{
		"input_path":    fixturePath,
		"dimension":     "legal_entity",
		"segment_limit": 1.0,
	})
	require.False(t, res.IsError, resultText(t, res))

	var result schema.DimensionSegments
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &result))
	assert.Equal(t, schema.LegalEntityDimension, result.Dimension)
	assert.Equal(t, []schema.SegmentAggregate{{SegmentValue: "Acme AG", Count: 2, LowCount: 2, LowRate: 1}}, result.Segments)
}

func TestGetRankedConsultants(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)

	res := callTool(t, s, "get_ranked_consultants", map[string]any{
		"input_path": fixturePath,
		"available":  "yes",
	})
	require.False(t, res.IsError, resultText(t, res))
	var list schema.RankedList
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &list))
	require.Len(t, list, 3)
	assert.Equal(t, "Alice Archer", list[0].Record.FullName)

	res = callTool(t, s, "get_ranked_consultants", map[string]any{
		"input_path": fixturePath,
		"rank":       2.0,
	})
	require.False(t, res.IsError, resultText(t, res))
	list = nil
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Rank)
	assert.Equal(t, schema.HighValue, list[0].Label)
}

func TestListFilterValues(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)
	res := callTool(t, s, "list_filter_values", map[string]any{"input_path": fixturePath})
	require.False(t, res.IsError, resultText(t, res))

	var catalog schema.FilterCatalog
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &catalog))
	assert.Equal(t, []string{schema.AllValue, "Lea Lang", "Max Meier"}, catalog.Values[schema.LeadDimension])
	assert.Equal(t, []string{schema.AllValue, "No", "Yes"}, catalog.Availability)
}

func TestEvaluateAllDimensions(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)
	res := callTool(t, s, "evaluate_all_dimensions", map[string]any{
		"input_path": fixturePath,
		"department": "Engineering",
	})
	require.False(t, res.IsError, resultText(t, res))

	var results []schema.DimensionSegments
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &results))
	require.Len(t, results, len(schema.AllSegmentDimensions))
	for i, r := range results {
		assert.Equal(t, schema.AllSegmentDimensions[i], r.Dimension)
		assert.Equal(t, 2, r.IncludedCount)
	}
}
