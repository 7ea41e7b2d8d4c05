package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/burden-dev/burden/internal/service/analysis"
	outputSvc "github.com/burden-dev/burden/internal/service/output"
	scannerSvc "github.com/burden-dev/burden/internal/service/scanner"
	"github.com/burden-dev/burden/pkg/config"
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// scoreString colors a 0-10 debt score by severity.
func scoreString(score float64, colored bool) string {
	s := fmt.Sprintf("%.1f", score)
	if !colored {
		return s
	}
	switch {
	case score >= 8.0:
		return color.RedString(s)
	case score >= 5.0:
		return color.YellowString(s)
	default:
		return color.GreenString(s)
	}
}

// newServices wires the scanner, analysis, and output services for a command.
func newServices(c *cli.Context, cfg *config.Config) (*scannerSvc.Service, *analysis.Service, *outputSvc.Service, error) {
	format := cfg.Output.Format
	if c.String("format") != "" {
		format = c.String("format")
	}

	outOpts := []outputSvc.Option{
		outputSvc.WithFormat(outputSvc.ParseFormat(format)),
		outputSvc.WithColor(cfg.Output.Color),
	}
	if path := c.String("output"); path != "" {
		outOpts = append(outOpts, outputSvc.WithFile(path))
	}

	out, err := outputSvc.New(outOpts...)
	if err != nil {
		return nil, nil, nil, err
	}

	scan := scannerSvc.New(scannerSvc.WithConfig(cfg))
	svc := analysis.New(analysis.WithConfig(cfg))
	return scan, svc, out, nil
}
