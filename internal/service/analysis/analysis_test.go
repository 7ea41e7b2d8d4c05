package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burden-dev/burden/pkg/analyzer/coverage"
	"github.com/burden-dev/burden/pkg/config"
	"github.com/burden-dev/burden/pkg/models"
	"github.com/burden-dev/burden/pkg/source"
)

const sampleGo = `package main

func main() {
	run()
}

func run() {
	process(load())
}

func load() string {
	return "data"
}

func process(s string) int {
	total := 0
	for _, c := range s {
		if c == 'a' {
			total++
		} else if c == 'b' {
			total += 2
		} else if c == 'c' {
			total += 3
		} else {
			total--
		}
	}
	return total
}
`

func writeSample(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte(sampleGo), 0o644))
	return dir, []string{path}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	return New(WithConfig(cfg))
}

func TestExtractInventory(t *testing.T) {
	_, files := writeSample(t)
	svc := newTestService(t)

	inv, err := svc.ExtractInventory(context.Background(), files, source.NewFilesystem(), ExtractOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, inv.Files)
	require.Len(t, inv.Functions, 4)
}

func TestExtractInventoryUsesCache(t *testing.T) {
	_, files := writeSample(t)
	svc := newTestService(t)

	ctx := context.Background()
	first, err := svc.ExtractInventory(ctx, files, source.NewFilesystem(), ExtractOptions{})
	require.NoError(t, err)

	// Second run must serve the identical inventory from cache.
	second, err := svc.ExtractInventory(ctx, files, source.NewFilesystem(), ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, len(first.Functions), len(second.Functions))

	// Bypassing the cache still works.
	third, err := svc.ExtractInventory(ctx, files, source.NewFilesystem(), ExtractOptions{NoCache: true})
	require.NoError(t, err)
	assert.Equal(t, len(first.Functions), len(third.Functions))
}

func TestExtractInventoryProgress(t *testing.T) {
	_, files := writeSample(t)
	svc := newTestService(t)

	ticks := 0
	done := make(chan struct{})
	_, err := svc.ExtractInventory(context.Background(), files, source.NewFilesystem(), ExtractOptions{
		OnProgress: func() {
			ticks++
			close(done)
		},
	})
	require.NoError(t, err)
	<-done
	assert.Equal(t, 1, ticks)
}

func TestAnalyzeDebt(t *testing.T) {
	_, files := writeSample(t)
	svc := newTestService(t)

	ctx := context.Background()
	inv, err := svc.ExtractInventory(ctx, files, source.NewFilesystem(), ExtractOptions{})
	require.NoError(t, err)

	report, err := svc.AnalyzeDebt(ctx, inv, coverage.Records{}, DebtOptions{})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Summary.TotalFunctions)
	assert.Equal(t, 4, report.Summary.Scored)
	require.NotEmpty(t, report.Items)

	// The branchy untested function ranks first.
	assert.Equal(t, "process", report.Items[0].Function.Name)
	assert.Nil(t, report.Diagnostics)
}

func TestAnalyzeDebtExplain(t *testing.T) {
	_, files := writeSample(t)
	svc := newTestService(t)

	ctx := context.Background()
	inv, err := svc.ExtractInventory(ctx, files, source.NewFilesystem(), ExtractOptions{})
	require.NoError(t, err)

	report, err := svc.AnalyzeDebt(ctx, inv, coverage.Records{}, DebtOptions{Explain: true})
	require.NoError(t, err)
	assert.Len(t, report.Diagnostics, 4)
}

func TestAnalyzeDebtBadAdjustmentsFile(t *testing.T) {
	_, files := writeSample(t)
	svc := newTestService(t)

	ctx := context.Background()
	inv, err := svc.ExtractInventory(ctx, files, source.NewFilesystem(), ExtractOptions{})
	require.NoError(t, err)

	_, err = svc.AnalyzeDebt(ctx, inv, coverage.Records{}, DebtOptions{AdjustmentsFile: "/nonexistent.json"})
	assert.Error(t, err)
}

func TestLoadCoverage(t *testing.T) {
	dir, files := writeSample(t)
	svc := newTestService(t)

	ctx := context.Background()
	inv, err := svc.ExtractInventory(ctx, files, source.NewFilesystem(), ExtractOptions{})
	require.NoError(t, err)

	lcov := "TN:\nSF:main.go\nDA:11,5\nDA:12,5\nend_of_record\n"
	lcovPath := filepath.Join(dir, "lcov.info")
	require.NoError(t, os.WriteFile(lcovPath, []byte(lcov), 0o644))

	records, err := svc.LoadCoverage(lcovPath, inv)
	require.NoError(t, err)
	assert.NotEmpty(t, records)
}

func TestLoadCoverageEmptyPath(t *testing.T) {
	svc := newTestService(t)
	records, err := svc.LoadCoverage("", nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAnalyzeCoverage(t *testing.T) {
	_, files := writeSample(t)
	svc := newTestService(t)

	inv, err := svc.ExtractInventory(context.Background(), files, source.NewFilesystem(), ExtractOptions{})
	require.NoError(t, err)

	records := coverage.Records{}
	for _, fn := range inv.Functions {
		if fn.ID.Name == "run" {
			records[fn.ID] = models.CoverageRecord{Direct: 0.9}
		}
	}

	items, err := svc.AnalyzeCoverage(inv, records)
	require.NoError(t, err)
	require.Len(t, items, 4)

	byName := map[string]models.EffectiveCoverage{}
	for _, item := range items {
		byName[item.Function.Name] = item.Coverage
	}

	// run is well tested directly; its callees inherit decayed coverage.
	assert.InDelta(t, 0.9, byName["run"].Effective, 1e-9)
	assert.InDelta(t, 0.9*0.7, byName["process"].Indirect, 1e-9)
	assert.False(t, byName["process"].HasData)

	// Least covered first.
	for i := 1; i < len(items); i++ {
		assert.LessOrEqual(t, items[i-1].Coverage.Effective, items[i].Coverage.Effective)
	}
}

func TestAnalyzeComplexityOrdering(t *testing.T) {
	_, files := writeSample(t)
	svc := newTestService(t)

	inv, err := svc.ExtractInventory(context.Background(), files, source.NewFilesystem(), ExtractOptions{})
	require.NoError(t, err)

	items := svc.AnalyzeComplexity(inv)
	require.Len(t, items, 4)
	assert.Equal(t, "process", items[0].Function.Name)
	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t,
			items[i-1].Metrics.CombinedComplexity(),
			items[i].Metrics.CombinedComplexity())
	}
}

func TestAnalyzePurity(t *testing.T) {
	_, files := writeSample(t)
	svc := newTestService(t)

	inv, err := svc.ExtractInventory(context.Background(), files, source.NewFilesystem(), ExtractOptions{})
	require.NoError(t, err)

	items := svc.AnalyzePurity(inv)
	require.Len(t, items, 4)

	byName := map[string]int{}
	for i, item := range items {
		byName[item.Function.Name] = i
	}
	load := items[byName["load"]]
	assert.True(t, load.Purity.IsPure())
}

func TestBuildGraph(t *testing.T) {
	_, files := writeSample(t)
	svc := newTestService(t)
	svc.config.Graph.EntryPointPatterns = []string{"run"}

	inv, err := svc.ExtractInventory(context.Background(), files, source.NewFilesystem(), ExtractOptions{})
	require.NoError(t, err)

	g, err := svc.BuildGraph(inv)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Len())

	for _, fn := range inv.Functions {
		if fn.ID.Name == "run" || fn.ID.Name == "main" {
			assert.True(t, g.IsEntryPoint(fn.ID), fn.ID.Name)
		}
	}
}
