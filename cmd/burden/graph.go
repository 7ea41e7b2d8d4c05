package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/burden-dev/burden/internal/progress"
	"github.com/burden-dev/burden/internal/service/analysis"
	outputSvc "github.com/burden-dev/burden/internal/service/output"
	"github.com/burden-dev/burden/pkg/models"
	"github.com/burden-dev/burden/pkg/source"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Aliases:   []string{"dag"},
		Usage:     "Build the call graph (Mermaid output)",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Include PageRank centrality metrics",
			},
			&cli.IntFlag{
				Name:  "top",
				Value: 5,
				Usage: "Top N functions by PageRank to list with --metrics",
			},
		},
		Action: runGraphCmd,
	}
}

// graphEdge is one resolved call in the serialized graph.
type graphEdge struct {
	From models.FunctionID `json:"from"`
	To   models.FunctionID `json:"to"`
}

// graphDump is the structured form of the call graph for json/yaml/toon.
type graphDump struct {
	Nodes []graphNodeDump    `json:"nodes"`
	Edges []graphEdge        `json:"edges"`
	Ranks map[string]float64 `json:"ranks,omitempty"`
}

type graphNodeDump struct {
	Function models.FunctionID `json:"function"`
	Entry    bool              `json:"entry,omitempty"`
	Callers  int               `json:"callers"`
	Callees  int               `json:"callees"`
}

func runGraphCmd(c *cli.Context) error {
	paths := getPaths(c)
	includeMetrics := c.Bool("metrics")

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	scan, svc, out, err := newServices(c, cfg)
	if err != nil {
		return err
	}
	defer out.Close()

	scanResult, err := scan.ScanPaths(paths)
	if err != nil {
		return err
	}
	if len(scanResult.Files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	tracker := progress.NewTracker("Building call graph...", len(scanResult.Files))
	inv, err := svc.ExtractInventory(c.Context, scanResult.Files, source.NewFilesystem(), analysis.ExtractOptions{
		NoCache:    c.Bool("no-cache"),
		OnProgress: tracker.Tick,
	})
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("extraction failed: %w", err)
	}
	tracker.FinishSuccess()

	g, err := svc.BuildGraph(inv)
	if err != nil {
		return fmt.Errorf("graph construction failed: %w", err)
	}

	var ranks map[models.FunctionID]float64
	if includeMetrics {
		ranks = g.NormalizedPageRank()
	}

	// For structured formats, output nodes and edges directly
	if out.Format() != outputSvc.FormatText && out.Format() != outputSvc.FormatMarkdown {
		dump := graphDump{}
		for _, id := range g.IDs() {
			dump.Nodes = append(dump.Nodes, graphNodeDump{
				Function: id,
				Entry:    g.IsEntryPoint(id),
				Callers:  len(g.Callers(id)),
				Callees:  len(g.Callees(id)),
			})
			for _, callee := range g.Callees(id) {
				dump.Edges = append(dump.Edges, graphEdge{From: id, To: callee})
			}
		}
		if ranks != nil {
			dump.Ranks = make(map[string]float64, len(ranks))
			for id, rank := range ranks {
				dump.Ranks[id.String()] = rank
			}
		}
		return out.Output(dump)
	}

	// Mermaid diagram for text/markdown
	w := out.Writer()
	fmt.Fprintln(w, "```mermaid")
	fmt.Fprintln(w, "graph TD")
	for _, id := range g.IDs() {
		label := id.Name
		if g.IsEntryPoint(id) {
			label += " (entry)"
		}
		fmt.Fprintf(w, "    %s[%s]\n", sanitizeID(id.String()), label)
	}
	for _, id := range g.IDs() {
		for _, callee := range g.Callees(id) {
			fmt.Fprintf(w, "    %s --> %s\n", sanitizeID(id.String()), sanitizeID(callee.String()))
		}
	}
	fmt.Fprintln(w, "```")

	if includeMetrics {
		type rankedNode struct {
			id   models.FunctionID
			rank float64
		}
		ranked := make([]rankedNode, 0, len(ranks))
		for id, rank := range ranks {
			ranked = append(ranked, rankedNode{id, rank})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].rank != ranked[j].rank {
				return ranked[i].rank > ranked[j].rank
			}
			return ranked[i].id.Less(ranked[j].id)
		})

		fmt.Fprintln(w)
		if out.Colored() {
			color.Cyan("Top Functions by PageRank:")
		} else {
			fmt.Fprintln(w, "Top Functions by PageRank:")
		}
		top := c.Int("top")
		for i, rn := range ranked {
			if i >= top {
				break
			}
			fmt.Fprintf(w, "  %s: %.4f (in: %d, out: %d)\n",
				rn.id.Name, rn.rank, len(g.Callers(rn.id)), len(g.Callees(rn.id)))
		}
	}

	return nil
}

// sanitizeID replaces non-alphanumeric characters for Mermaid diagram IDs.
func sanitizeID(id string) string {
	var result strings.Builder
	for _, c := range id {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			result.WriteRune(c)
		} else {
			result.WriteRune('_')
		}
	}
	return result.String()
}
