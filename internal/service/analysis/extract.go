package analysis

import (
	"context"
	"sync/atomic"

	"github.com/burden-dev/burden/internal/cache"
	"github.com/burden-dev/burden/internal/fileproc"
	"github.com/burden-dev/burden/pkg/ir"
	"github.com/burden-dev/burden/pkg/parser"
	"github.com/burden-dev/burden/pkg/source"
)

// ExtractOptions configures inventory extraction.
type ExtractOptions struct {
	// MaxFileSize skips files larger than this many bytes; 0 means no limit.
	MaxFileSize int64
	// NoCache bypasses the extraction cache for this run.
	NoCache bool
	// OnProgress is invoked once per file.
	OnProgress func()
}

// ExtractInventory parses all files and collects their function records.
// Unchanged files are served from the cache, keyed by content hash.
func (s *Service) ExtractInventory(ctx context.Context, files []string, src source.ContentSource, opts ExtractOptions) (*ir.Inventory, error) {
	var fileCount atomic.Int32

	perFile := fileproc.MapSourceFilesWithSizeLimit(ctx, files, src, opts.MaxFileSize,
		func(psr *parser.Parser, path string, content []byte) ([]ir.FunctionRecord, error) {
			hash := cache.HashBytes(content)
			if !opts.NoCache {
				if records, ok := s.cache.GetRecords(path, hash); ok {
					fileCount.Add(1)
					return records, nil
				}
			}

			result, err := psr.Parse(content, parser.DetectLanguage(path), path)
			if err != nil {
				return nil, err
			}
			records := parser.Extract(result)

			if !opts.NoCache {
				_ = s.cache.SetRecords(path, hash, records)
			}
			fileCount.Add(1)
			return records, nil
		}, opts.OnProgress)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inv := &ir.Inventory{Files: int(fileCount.Load())}
	for _, records := range perFile {
		inv.Functions = append(inv.Functions, records...)
	}
	return inv, nil
}
