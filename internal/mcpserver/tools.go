package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/burden-dev/burden/internal/output"
	"github.com/burden-dev/burden/internal/service/analysis"
	scannerSvc "github.com/burden-dev/burden/internal/service/scanner"
	"github.com/burden-dev/burden/pkg/ir"
	"github.com/burden-dev/burden/pkg/models"
	"github.com/burden-dev/burden/pkg/source"
)

// Common input structures for tools

// AnalyzeInput is the base input for all analyze tools.
type AnalyzeInput struct {
	Paths  []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to current directory if empty."`
	Format string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// DebtInput adds debt-scoring options.
type DebtInput struct {
	AnalyzeInput
	CoverageFile string `json:"coverage_file,omitempty" jsonschema:"Path to an LCOV coverage report. Functions without coverage fall back to complexity-scaled scoring."`
	Adjustments  string `json:"adjustments,omitempty" jsonschema:"Path to an external adjustments JSON file."`
	Top          int    `json:"top,omitempty" jsonschema:"Show top N functions by debt score. Default 20."`
	Explain      bool   `json:"explain,omitempty" jsonschema:"Attach per-function diagnostic snapshots to the output."`
	NoCache      bool   `json:"no_cache,omitempty" jsonschema:"Bypass the extraction cache."`
}

// ComplexityInput adds complexity-specific options.
type ComplexityInput struct {
	AnalyzeInput
	Top int `json:"top,omitempty" jsonschema:"Show top N functions by combined complexity. Default 20."`
}

// PurityInput adds purity-specific options.
type PurityInput struct {
	AnalyzeInput
	ImpureOnly bool `json:"impure_only,omitempty" jsonschema:"Show only functions classified as impure."`
}

// GraphInput adds graph-specific options.
type GraphInput struct {
	AnalyzeInput
	IncludeRanks bool `json:"include_ranks,omitempty" jsonschema:"Include normalized PageRank scores per function."`
}

// Helper functions

func getPaths(input AnalyzeInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return "```\n" + string(out) + "\n```", nil
	default:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// extractInventory scans the given paths and parses every source file.
func extractInventory(ctx context.Context, paths []string, noCache bool) (*analysis.Service, *ir.Inventory, error) {
	scanner := scannerSvc.New()
	scanResult, err := scanner.ScanPaths(paths)
	if err != nil {
		return nil, nil, err
	}

	svc := analysis.New()
	inv, err := svc.ExtractInventory(ctx, scanResult.Files, source.NewFilesystem(), analysis.ExtractOptions{
		NoCache: noCache,
	})
	if err != nil {
		return nil, nil, err
	}
	return svc, inv, nil
}

// Tool handlers

func handleAnalyzeDebt(ctx context.Context, req *mcp.CallToolRequest, input DebtInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	top := input.Top
	if top <= 0 {
		top = 20
	}

	svc, inv, err := extractInventory(ctx, paths, input.NoCache)
	if err != nil {
		return toolError(err.Error())
	}
	if len(inv.Functions) == 0 {
		return toolError("no source files found")
	}

	records, err := svc.LoadCoverage(input.CoverageFile, inv)
	if err != nil {
		return toolError(err.Error())
	}

	report, err := svc.AnalyzeDebt(ctx, inv, records, analysis.DebtOptions{
		AdjustmentsFile: input.Adjustments,
		Explain:         input.Explain,
	})
	if err != nil {
		return toolError(err.Error())
	}

	if len(report.Items) > top {
		report.Items = report.Items[:top]
	}

	return toolResult(report, format)
}

func handleAnalyzeComplexity(ctx context.Context, req *mcp.CallToolRequest, input ComplexityInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	top := input.Top
	if top <= 0 {
		top = 20
	}

	svc, inv, err := extractInventory(ctx, paths, false)
	if err != nil {
		return toolError(err.Error())
	}
	if len(inv.Functions) == 0 {
		return toolError("no source files found")
	}

	items := svc.AnalyzeComplexity(inv)
	if len(items) > top {
		items = items[:top]
	}

	result := struct {
		Functions []analysis.ComplexityItem `json:"functions" toon:"functions"`
		Total     int                       `json:"total" toon:"total"`
	}{items, len(inv.Functions)}

	return toolResult(result, format)
}

func handleAnalyzePurity(ctx context.Context, req *mcp.CallToolRequest, input PurityInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	svc, inv, err := extractInventory(ctx, paths, false)
	if err != nil {
		return toolError(err.Error())
	}
	if len(inv.Functions) == 0 {
		return toolError("no source files found")
	}

	items := svc.AnalyzePurity(inv)

	if input.ImpureOnly {
		var filtered []analysis.PurityItem
		for _, item := range items {
			if item.Purity.Level == models.Impure {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	result := struct {
		Functions []analysis.PurityItem `json:"functions" toon:"functions"`
		Total     int                   `json:"total" toon:"total"`
	}{items, len(inv.Functions)}

	return toolResult(result, format)
}

// graphNode is the serializable per-function view of the call graph.
type graphNode struct {
	Function models.FunctionID `json:"function" toon:"function"`
	Callers  int               `json:"callers" toon:"callers"`
	Callees  int               `json:"callees" toon:"callees"`
	Entry    bool              `json:"entry,omitempty" toon:"entry,omitempty"`
	Rank     float64           `json:"rank,omitempty" toon:"rank,omitempty"`
}

func handleAnalyzeGraph(ctx context.Context, req *mcp.CallToolRequest, input GraphInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	svc, inv, err := extractInventory(ctx, paths, false)
	if err != nil {
		return toolError(err.Error())
	}
	if len(inv.Functions) == 0 {
		return toolError("no source files found")
	}

	g, err := svc.BuildGraph(inv)
	if err != nil {
		return toolError(err.Error())
	}

	var ranks map[models.FunctionID]float64
	if input.IncludeRanks {
		ranks = g.NormalizedPageRank()
	}

	nodes := make([]graphNode, 0, g.Len())
	for _, id := range g.IDs() {
		node := graphNode{
			Function: id,
			Callers:  len(g.Callers(id)),
			Callees:  len(g.Callees(id)),
			Entry:    g.IsEntryPoint(id),
		}
		if ranks != nil {
			node.Rank = ranks[id]
		}
		nodes = append(nodes, node)
	}

	result := struct {
		Nodes []graphNode `json:"nodes" toon:"nodes"`
		Total int         `json:"total" toon:"total"`
	}{nodes, len(nodes)}

	return toolResult(result, format)
}
