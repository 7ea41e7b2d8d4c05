package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	svc, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if svc == nil || svc.format != FormatText {
		t.Fatal("New() returned nil or has wrong defaults")
	}
}

func TestNewWithFormat(t *testing.T) {
	svc, err := New(WithFormat(FormatJSON))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if svc.Format() != FormatJSON {
		t.Errorf("expected format %v, got %v", FormatJSON, svc.Format())
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	svc, err := New(WithWriter(&buf))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if svc.Writer() != &buf {
		t.Error("expected writer to be set")
	}
}

func TestNewWithFile(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "output.txt")

	svc, err := New(WithFile(filePath))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer svc.Close()

	if svc.Colored() {
		t.Error("expected colored = false when writing to file")
	}
	if svc.file == nil {
		t.Error("expected file to be opened")
	}
}

func TestNewWithFile_Invalid(t *testing.T) {
	_, err := New(WithFile("/nonexistent/dir/file.txt"))
	if err == nil {
		t.Error("expected error for invalid file path")
	}
}

func TestClose(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "output.txt")

	svc, err := New(WithFile(filePath))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := svc.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Close again should be safe
	svc.file = nil
	if err := svc.Close(); err != nil {
		t.Errorf("Close() on nil file error = %v", err)
	}
}

func TestOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	svc, _ := New(WithWriter(&buf), WithFormat(FormatJSON))

	if err := svc.Output(map[string]string{"message": "hello"}); err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"message": "hello"`) {
		t.Errorf("unexpected JSON output: %s", buf.String())
	}
}

func TestOutput_YAML(t *testing.T) {
	var buf bytes.Buffer
	svc, _ := New(WithWriter(&buf), WithFormat(FormatYAML))

	if err := svc.Output(map[string]int{"count": 42}); err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if !strings.Contains(buf.String(), "count: 42") {
		t.Errorf("unexpected YAML output: %s", buf.String())
	}
}

func TestOutput_TOON(t *testing.T) {
	var buf bytes.Buffer
	svc, _ := New(WithWriter(&buf), WithFormat(FormatTOON))

	if err := svc.Output(map[string]int{"count": 42}); err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected TOON output to be written")
	}
}

func TestOutput_ToFile(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "output.txt")

	svc, _ := New(WithFile(filePath), WithFormat(FormatJSON))
	defer svc.Close()

	if err := svc.Output(map[string]string{"message": "hello"}); err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	svc.Close()

	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(content) == 0 {
		t.Error("expected file to have content")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"text", FormatText},
		{"json", FormatJSON},
		{"yaml", FormatYAML},
		{"toon", FormatTOON},
		{"markdown", FormatMarkdown},
		{"", FormatText},
		{"unknown", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseFormat(tt.input)
			if result != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestOutputTable(t *testing.T) {
	var buf bytes.Buffer
	svc, _ := New(WithWriter(&buf), WithFormat(FormatMarkdown), WithColor(false))

	table := NewTable(
		"Ranked Functions",
		[]string{"Function", "Score"},
		[][]string{{"pkg/a.go:parse", "8.2"}, {"pkg/b.go:render", "6.1"}},
		[]string{"", "2 items"},
		nil,
	)

	if err := svc.OutputTable(table); err != nil {
		t.Fatalf("OutputTable() error = %v", err)
	}
	if !strings.Contains(buf.String(), "| pkg/a.go:parse | 8.2 |") {
		t.Errorf("unexpected markdown table: %s", buf.String())
	}
}

func TestOutput_MarshalError(t *testing.T) {
	var buf bytes.Buffer
	svc, _ := New(WithWriter(&buf), WithFormat(FormatJSON))

	// Channels can't be marshaled
	if err := svc.Output(make(chan int)); err == nil {
		t.Error("expected error for unmarshallable data")
	}
}
