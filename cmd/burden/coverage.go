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

func coverageCmd() *cli.Command {
	return &cli.Command{
		Name:      "coverage",
		Aliases:   []string{"cov"},
		Usage:     "Show effective per-function coverage after propagation",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "coverage-file",
				Usage: "LCOV coverage report to ingest",
			},
			&cli.BoolFlag{
				Name:  "untested-only",
				Usage: "Show only functions below the well-tested gate",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Show N least-covered functions (0 uses config default)",
			},
		},
		Action: runCoverageCmd,
	}
}

func runCoverageCmd(c *cli.Context) error {
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

	tracker := progress.NewTracker("Extracting functions...", len(scanResult.Files))
	inv, err := svc.ExtractInventory(c.Context, scanResult.Files, source.NewFilesystem(), analysis.ExtractOptions{
		NoCache:    c.Bool("no-cache"),
		OnProgress: tracker.Tick,
	})
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("extraction failed: %w", err)
	}
	tracker.FinishSuccess()

	records, err := svc.LoadCoverage(c.String("coverage-file"), inv)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		color.Yellow("No coverage data (pass --coverage-file or set coverage.file)")
	}

	items, err := svc.AnalyzeCoverage(inv, records)
	if err != nil {
		return fmt.Errorf("coverage analysis failed: %w", err)
	}

	gate := cfg.Coverage.WellTestedGate
	if c.Bool("untested-only") {
		var filtered []analysis.CoverageItem
		for _, item := range items {
			if item.Coverage.Effective < gate {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	wellTested, withData := 0, 0
	for _, item := range items {
		if item.Coverage.HasData {
			withData++
		}
		if item.Coverage.Effective >= gate {
			wellTested++
		}
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
		effStr := fmt.Sprintf("%.0f%%", item.Coverage.Effective*100)
		if out.Colored() {
			switch {
			case item.Coverage.Effective >= gate:
				effStr = color.GreenString(effStr)
			case item.Coverage.Effective > 0:
				effStr = color.YellowString(effStr)
			default:
				effStr = color.RedString(effStr)
			}
		}

		directStr := "-"
		if item.Coverage.HasData {
			directStr = fmt.Sprintf("%.0f%%", item.Coverage.Direct*100)
		}

		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", item.Function.File, item.Function.Line),
			item.Function.Name,
			directStr,
			fmt.Sprintf("%.0f%%", item.Coverage.Indirect*100),
			effStr,
			fmt.Sprintf("%d", len(item.Coverage.Sources)),
		})
	}

	table := outputSvc.NewTable(
		"Effective Coverage (least covered first)",
		[]string{"Location", "Function", "Direct", "Indirect", "Effective", "Sources"},
		rows,
		[]string{
			fmt.Sprintf("Functions: %d", len(items)),
			fmt.Sprintf("With Data: %d", withData),
			"",
			"",
			fmt.Sprintf("Well Tested: %d", wellTested),
			"",
		},
		items,
	)

	return out.OutputTable(table)
}
