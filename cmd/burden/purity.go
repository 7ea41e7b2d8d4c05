package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/burden-dev/burden/internal/progress"
	"github.com/burden-dev/burden/internal/service/analysis"
	outputSvc "github.com/burden-dev/burden/internal/service/output"
	"github.com/burden-dev/burden/pkg/models"
	"github.com/burden-dev/burden/pkg/source"
)

func purityCmd() *cli.Command {
	return &cli.Command{
		Name:      "purity",
		Usage:     "Classify functions by mutation and I/O behavior",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "impure-only",
				Usage: "Show only functions classified as impure",
			},
		},
		Action: runPurityCmd,
	}
}

func runPurityCmd(c *cli.Context) error {
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

	tracker := progress.NewTracker("Classifying purity...", len(scanResult.Files))
	inv, err := svc.ExtractInventory(c.Context, scanResult.Files, source.NewFilesystem(), analysis.ExtractOptions{
		NoCache:    c.Bool("no-cache"),
		OnProgress: tracker.Tick,
	})
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("extraction failed: %w", err)
	}
	tracker.FinishSuccess()

	items := svc.AnalyzePurity(inv)

	if c.Bool("impure-only") {
		var filtered []analysis.PurityItem
		for _, item := range items {
			if item.Purity.Level == models.Impure {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	counts := map[models.PurityLevel]int{}
	var rows [][]string
	for _, item := range items {
		counts[item.Purity.Level]++

		levelStr := string(item.Purity.Level)
		if out.Colored() {
			switch item.Purity.Level {
			case models.StrictlyPure, models.LocallyPure:
				levelStr = color.GreenString(levelStr)
			case models.ReadOnly:
				levelStr = color.CyanString(levelStr)
			case models.Impure:
				levelStr = color.YellowString(levelStr)
			}
		}

		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", item.Function.File, item.Function.Line),
			item.Function.Name,
			levelStr,
			fmt.Sprintf("%.2f", item.Purity.Confidence),
		})
	}

	table := outputSvc.NewTable(
		"Purity Classification",
		[]string{"Location", "Function", "Level", "Confidence"},
		rows,
		[]string{
			fmt.Sprintf("Pure: %d", counts[models.StrictlyPure]+counts[models.LocallyPure]),
			fmt.Sprintf("Read-only: %d", counts[models.ReadOnly]),
			fmt.Sprintf("Impure: %d", counts[models.Impure]),
			"",
		},
		items,
	)

	return out.OutputTable(table)
}
