package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/burden-dev/burden/internal/progress"
	"github.com/burden-dev/burden/internal/service/analysis"
	outputSvc "github.com/burden-dev/burden/internal/service/output"
	scannerSvc "github.com/burden-dev/burden/internal/service/scanner"
	"github.com/burden-dev/burden/pkg/models"
	"github.com/burden-dev/burden/pkg/source"
)

func debtCmd() *cli.Command {
	return &cli.Command{
		Name:      "debt",
		Aliases:   []string{"score"},
		Usage:     "Score every function for technical debt",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "coverage-file",
				Usage: "LCOV coverage report to ingest",
			},
			&cli.StringFlag{
				Name:  "rev",
				Usage: "Analyze the tree at a git revision instead of the working copy",
			},
			&cli.StringFlag{
				Name:  "adjustments",
				Usage: "External adjustments JSON file",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Show top N functions by score (0 uses config default)",
			},
			&cli.BoolFlag{
				Name:  "explain",
				Usage: "Attach per-function diagnostic snapshots",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Max concurrent scoring workers (0 uses default)",
			},
			&cli.Float64Flag{
				Name:  "fail-over",
				Usage: "Exit non-zero if any function scores at or above this threshold (0 disables)",
			},
		},
		Action: runDebtCmd,
	}
}

func runDebtCmd(c *cli.Context) error {
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

	var (
		scanResult *scannerSvc.ScanResult
		src        source.ContentSource = source.NewFilesystem()
	)
	if rev := c.String("rev"); rev != "" {
		var treeSrc *source.TreeSource
		scanResult, treeSrc, err = scan.ScanRevision(paths[0], rev)
		if err != nil {
			return err
		}
		src = treeSrc
	} else {
		scanResult, err = scan.ScanPaths(paths)
		if err != nil {
			return err
		}
	}
	if len(scanResult.Files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	tracker := progress.NewTracker("Extracting functions...", len(scanResult.Files))
	inv, err := svc.ExtractInventory(c.Context, scanResult.Files, src, analysis.ExtractOptions{
		NoCache:    c.Bool("no-cache"),
		OnProgress: tracker.Tick,
	})
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("extraction failed: %w", err)
	}
	tracker.FinishSuccess()

	covSpinner := progress.NewSpinner("Loading coverage...")
	records, err := svc.LoadCoverage(c.String("coverage-file"), inv)
	if err != nil {
		covSpinner.FinishError(err)
		return err
	}
	if c.String("coverage-file") == "" {
		covSpinner.FinishSkipped("no coverage file, scoring complexity-only")
	} else {
		covSpinner.FinishSuccess()
	}

	spinner := progress.NewSpinner("Scoring functions...")
	report, err := svc.AnalyzeDebt(c.Context, inv, records, analysis.DebtOptions{
		AdjustmentsFile: c.String("adjustments"),
		Explain:         c.Bool("explain"),
		MaxWorkers:      c.Int("workers"),
	})
	if err != nil {
		spinner.FinishError(err)
		return fmt.Errorf("scoring failed: %w", err)
	}
	spinner.FinishSuccess()

	top := c.Int("top")
	if top <= 0 {
		top = cfg.Output.Top
	}

	items := report.Items
	if len(items) > top {
		items = items[:top]
	}

	var rows [][]string
	for _, item := range items {
		if item.Error != "" {
			rows = append(rows, []string{
				fmt.Sprintf("%s:%d", item.Function.File, item.Function.Line),
				item.Function.Name,
				"-", "-", "-", "-",
				truncate(item.Error, 40),
			})
			continue
		}

		covStr := fmt.Sprintf("%.1f", item.Factors.Coverage)
		if item.Factors.CoverageMissing {
			covStr += "*"
		}

		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", item.Function.File, item.Function.Line),
			item.Function.Name,
			scoreString(item.Score, out.Colored()),
			covStr,
			fmt.Sprintf("%.1f", item.Factors.Complexity),
			fmt.Sprintf("%.1f", item.Factors.Dependency),
			"",
		})
	}

	table := outputSvc.NewTable(
		fmt.Sprintf("Debt Score (Top %d)", top),
		[]string{"Location", "Function", "Score", "Coverage", "Complexity", "Dependency", "Error"},
		rows,
		[]string{
			fmt.Sprintf("Functions: %d", report.Summary.TotalFunctions),
			fmt.Sprintf("Scored: %d", report.Summary.Scored),
			fmt.Sprintf("With Coverage: %d", report.Summary.WithCoverage),
			fmt.Sprintf("Files: %d", report.Summary.FilesAnalyzed),
			"", "", "",
		},
		report,
	)

	if err := out.OutputTable(table); err != nil {
		return err
	}

	if out.Format() == outputSvc.FormatText && report.Summary.WithCoverage < report.Summary.Scored {
		fmt.Fprintln(out.Writer(), "* coverage missing, complexity-only fallback")
	}

	if failOver := c.Float64("fail-over"); failOver > 0 {
		if worst := worstScore(report.Items); worst >= failOver {
			color.Red("Debt threshold exceeded: %.1f >= %.1f", worst, failOver)
			os.Exit(1)
		}
	}

	return nil
}

func worstScore(items []models.DebtItem) float64 {
	worst := 0.0
	for _, item := range items {
		if item.Score > worst {
			worst = item.Score
		}
	}
	return worst
}
