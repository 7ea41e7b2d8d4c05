package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/burden-dev/burden/internal/progress"
	"github.com/burden-dev/burden/internal/service/analysis"
	outputSvc "github.com/burden-dev/burden/internal/service/output"
	"github.com/burden-dev/burden/pkg/source"
)

func complexityCmd() *cli.Command {
	return &cli.Command{
		Name:      "complexity",
		Aliases:   []string{"cx"},
		Usage:     "Analyze entropy-dampened cyclomatic and cognitive complexity",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "top",
				Usage: "Show top N functions by combined complexity (0 uses config default)",
			},
			&cli.BoolFlag{
				Name:  "dampened-only",
				Usage: "Show only functions whose complexity was dampened",
			},
		},
		Action: runComplexityCmd,
	}
}

func runComplexityCmd(c *cli.Context) error {
	paths := getPaths(c)

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

	tracker := progress.NewTracker("Analyzing complexity...", len(scanResult.Files))
	inv, err := svc.ExtractInventory(c.Context, scanResult.Files, source.NewFilesystem(), analysis.ExtractOptions{
		NoCache:    c.Bool("no-cache"),
		OnProgress: tracker.Tick,
	})
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("extraction failed: %w", err)
	}
	tracker.FinishSuccess()

	items := svc.AnalyzeComplexity(inv)

	if c.Bool("dampened-only") {
		var filtered []analysis.ComplexityItem
		for _, item := range items {
			if item.Metrics.DampeningFactor < 1.0 {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	top := c.Int("top")
	if top <= 0 {
		top = cfg.Output.Top
	}
	shown := items
	if len(shown) > top {
		shown = shown[:top]
	}

	var rows [][]string
	for _, item := range shown {
		cycStr := fmt.Sprintf("%.0f", item.Metrics.AdjustedCyclomatic)
		cogStr := fmt.Sprintf("%.0f", item.Metrics.AdjustedCognitive)
		if out.Colored() {
			if item.Metrics.AdjustedCyclomatic > 10 {
				cycStr = color.RedString(cycStr)
			}
			if item.Metrics.AdjustedCognitive > 15 {
				cogStr = color.RedString(cogStr)
			}
		}

		dampStr := "-"
		if item.Metrics.DampeningFactor < 1.0 {
			dampStr = fmt.Sprintf("%.2f (%d arms)", item.Metrics.DampeningFactor, item.Metrics.DispatchArms)
		}

		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", item.Function.File, item.Function.Line),
			item.Function.Name,
			cycStr,
			cogStr,
			fmt.Sprintf("%d", item.Metrics.MaxNesting),
			fmt.Sprintf("%d", item.Metrics.Lines),
			dampStr,
		})
	}

	table := outputSvc.NewTable(
		fmt.Sprintf("Complexity (Top %d)", top),
		[]string{"Location", "Function", "Cyclomatic", "Cognitive", "Nesting", "Lines", "Dampening"},
		rows,
		[]string{
			fmt.Sprintf("Functions: %d", len(items)),
			fmt.Sprintf("Files: %d", inv.Files),
			"", "", "", "", "",
		},
		items,
	)

	return out.OutputTable(table)
}
