package fileproc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/burden-dev/burden/pkg/parser"
)

func createTestFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", name, err)
	}
	return path
}

func TestMapFiles(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "file1.go", "package main\nfunc main() {}"),
		createTestFile(t, tmpDir, "file2.go", "package main\nfunc test() {}"),
		createTestFile(t, tmpDir, "file3.go", "package main\nfunc validate() {}"),
	}

	results := MapFiles(files, func(p *parser.Parser, path string) (string, error) {
		result, err := p.ParseFile(path)
		if err != nil {
			return "", err
		}
		if result == nil || result.Tree == nil {
			return "", fmt.Errorf("parse result is nil")
		}
		return filepath.Base(path), nil
	})

	if len(results) != len(files) {
		t.Errorf("Expected %d results, got %d", len(files), len(results))
	}

	resultMap := make(map[string]bool)
	for _, r := range results {
		resultMap[r] = true
	}
	for _, expected := range []string{"file1.go", "file2.go", "file3.go"} {
		if !resultMap[expected] {
			t.Errorf("Missing expected result: %s", expected)
		}
	}
}

func TestMapFiles_EmptyFileList(t *testing.T) {
	results := MapFiles([]string{}, func(p *parser.Parser, path string) (string, error) {
		return path, nil
	})

	if results != nil {
		t.Errorf("Expected nil for empty file list, got %v", results)
	}
}

func TestMapFiles_ErrorsSkipped(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "good1.go", "package main"),
		createTestFile(t, tmpDir, "bad.go", "package main"),
		createTestFile(t, tmpDir, "good2.go", "package main"),
	}

	processedCount := atomic.Int32{}
	results := MapFiles(files, func(p *parser.Parser, path string) (string, error) {
		processedCount.Add(1)
		if filepath.Base(path) == "bad.go" {
			return "", fmt.Errorf("simulated error")
		}
		return filepath.Base(path), nil
	})

	if int(processedCount.Load()) != 3 {
		t.Errorf("Expected all 3 files to be processed, got %d", processedCount.Load())
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 successful results (errors skipped), got %d", len(results))
	}
}

func TestMapFilesN_ErrorCallback(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "ok.go", "package main"),
		createTestFile(t, tmpDir, "fail.go", "package main"),
	}

	var failedPaths []string
	results := MapFilesN(files, 1, func(p *parser.Parser, path string) (string, error) {
		if filepath.Base(path) == "fail.go" {
			return "", fmt.Errorf("boom")
		}
		return filepath.Base(path), nil
	}, nil, func(path string, err error) {
		failedPaths = append(failedPaths, path)
	})

	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
	if len(failedPaths) != 1 || filepath.Base(failedPaths[0]) != "fail.go" {
		t.Errorf("Expected fail.go in error callback, got %v", failedPaths)
	}
}

func TestMapFilesWithProgress(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "a.go", "package main"),
		createTestFile(t, tmpDir, "b.go", "package main"),
		createTestFile(t, tmpDir, "c.go", "package main"),
	}

	ticks := atomic.Int32{}
	results := MapFilesWithProgress(files, func(p *parser.Parser, path string) (int, error) {
		return 1, nil
	}, func() {
		ticks.Add(1)
	})

	if len(results) != 3 {
		t.Errorf("Expected 3 results, got %d", len(results))
	}
	if int(ticks.Load()) != 3 {
		t.Errorf("Expected 3 progress ticks, got %d", ticks.Load())
	}
}

func TestMapFilesWithContext_Canceled(t *testing.T) {
	tmpDir := t.TempDir()

	files := make([]string, 20)
	for i := range files {
		files[i] = createTestFile(t, tmpDir, fmt.Sprintf("file%d.go", i), "package main")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, errs := MapFilesWithContext(ctx, files, func(p *parser.Parser, path string) (string, error) {
		return filepath.Base(path), nil
	})

	if errs == nil || !errs.HasErrors() {
		t.Fatal("Expected context cancellation errors")
	}
	if len(results)+len(errs.Errors) > len(files) {
		t.Errorf("Results (%d) plus errors (%d) exceed file count", len(results), len(errs.Errors))
	}
}

func TestMapFilesWithContext_CollectsFileErrors(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "good.go", "package main"),
		createTestFile(t, tmpDir, "bad.go", "package main"),
	}

	results, errs := MapFilesWithContext(context.Background(), files, func(p *parser.Parser, path string) (string, error) {
		if filepath.Base(path) == "bad.go" {
			return "", fmt.Errorf("simulated error")
		}
		return filepath.Base(path), nil
	})

	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
	if errs == nil || len(errs.Errors) != 1 {
		t.Fatalf("Expected 1 collected error, got %v", errs)
	}
	if filepath.Base(errs.Errors[0].Path) != "bad.go" {
		t.Errorf("Wrong error path: %s", errs.Errors[0].Path)
	}
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}

	if errs.HasErrors() {
		t.Error("New ProcessingErrors should have no errors")
	}
	if errs.Error() != "no errors" {
		t.Errorf("Empty error string = %q", errs.Error())
	}

	errs.Add("a.go", fmt.Errorf("first"))
	if !errs.HasErrors() {
		t.Error("HasErrors should be true after Add")
	}
	if errs.Error() != "a.go: first" {
		t.Errorf("Single error string = %q", errs.Error())
	}

	errs.Add("b.go", fmt.Errorf("second"))
	if len(errs.Errors) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(errs.Errors))
	}
}
