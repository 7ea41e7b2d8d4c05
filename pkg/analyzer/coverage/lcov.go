package coverage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/burden-dev/burden/pkg/ir"
	"github.com/burden-dev/burden/pkg/models"
)

// Profile holds per-file line-hit data parsed from an LCOV report.
type Profile struct {
	// hits maps file path -> line -> execution count.
	hits map[string]map[uint32]int64
}

// LoadLCOVFile reads an LCOV tracefile (lcov.info) from disk.
func LoadLCOVFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open coverage file: %w", err)
	}
	defer f.Close()
	return ParseLCOV(f)
}

// ParseLCOV parses the LCOV tracefile format. Only SF/DA/end_of_record
// directives matter for line coverage; everything else is skipped.
func ParseLCOV(r io.Reader) (*Profile, error) {
	p := &Profile{hits: make(map[string]map[uint32]int64)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var currentFile string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "SF:"):
			currentFile = strings.TrimPrefix(line, "SF:")
			if p.hits[currentFile] == nil {
				p.hits[currentFile] = make(map[uint32]int64)
			}
		case strings.HasPrefix(line, "DA:"):
			if currentFile == "" {
				return nil, fmt.Errorf("lcov line %d: DA record before SF", lineNo)
			}
			parts := strings.SplitN(strings.TrimPrefix(line, "DA:"), ",", 3)
			if len(parts) < 2 {
				return nil, fmt.Errorf("lcov line %d: malformed DA record %q", lineNo, line)
			}
			ln, err := strconv.ParseUint(parts[0], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("lcov line %d: bad line number: %w", lineNo, err)
			}
			count, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("lcov line %d: bad hit count: %w", lineNo, err)
			}
			p.hits[currentFile][uint32(ln)] += count
		case line == "end_of_record":
			currentFile = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lcov: %w", err)
	}
	return p, nil
}

// ForRange computes a coverage record for the instrumented lines of file in
// [start, end]. The second return is false when the report has no data for
// the file or no instrumented lines in the range.
func (p *Profile) ForRange(file string, start, end uint32) (models.CoverageRecord, bool) {
	lines := p.fileHits(file)
	if lines == nil {
		return models.CoverageRecord{}, false
	}
	var total, covered int
	for ln, count := range lines {
		if ln < start || ln > end {
			continue
		}
		total++
		if count > 0 {
			covered++
		}
	}
	if total == 0 {
		return models.CoverageRecord{}, false
	}
	return models.CoverageRecord{
		Direct:       float64(covered) / float64(total),
		LinesCovered: covered,
		LinesTotal:   total,
	}, true
}

// fileHits matches report paths against the analyzed path, tolerating the
// absolute-vs-relative mismatch between coverage tools and the scanner.
func (p *Profile) fileHits(file string) map[uint32]int64 {
	if lines, ok := p.hits[file]; ok {
		return lines
	}
	for reportPath, lines := range p.hits {
		if suffixMatch(reportPath, file) {
			return lines
		}
	}
	return nil
}

func suffixMatch(a, b string) bool {
	if strings.HasSuffix(a, "/"+b) || strings.HasSuffix(b, "/"+a) {
		return true
	}
	return false
}

// Records maps every function in the inventory to its direct coverage.
// Functions absent from the report are simply missing from the result map,
// which downstream scoring reports as an explicit complexity-only fallback.
func (p *Profile) Records(inv *ir.Inventory) Records {
	records := make(Records)
	for _, fn := range inv.Functions {
		if rec, ok := p.ForRange(fn.ID.File, fn.ID.Line, fn.EndLine); ok {
			records[fn.ID] = rec
		}
	}
	return records
}
