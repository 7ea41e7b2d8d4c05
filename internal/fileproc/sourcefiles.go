package fileproc

import (
	"context"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/burden-dev/burden/pkg/parser"
	"github.com/burden-dev/burden/pkg/source"
)

// fileWithContent holds a file path and its content.
type fileWithContent struct {
	path    string
	content []byte
}

// MapSourceFiles processes files from a ContentSource in parallel.
// Unlike MapFiles, this reads content from the source before processing,
// so git trees are never accessed concurrently.
func MapSourceFiles[T any](
	ctx context.Context,
	files []string,
	src source.ContentSource,
	fn func(*parser.Parser, string, []byte) (T, error),
) []T {
	return MapSourceFilesWithSizeLimit(ctx, files, src, 0, fn, nil)
}

// MapSourceFilesWithSizeLimit processes files from a ContentSource in parallel,
// skipping files that exceed maxSize bytes. If maxSize is 0, no limit is
// enforced. The onProgress callback, if non-nil, is invoked once per file.
func MapSourceFilesWithSizeLimit[T any](
	ctx context.Context,
	files []string,
	src source.ContentSource,
	maxSize int64,
	fn func(*parser.Parser, string, []byte) (T, error),
	onProgress ProgressFunc,
) []T {
	if len(files) == 0 {
		return nil
	}

	// Read all file content sequentially to avoid concurrent access to git trees
	filesWithContent := make([]fileWithContent, 0, len(files))
	for _, path := range files {
		content, err := src.Read(path)
		if err != nil {
			continue
		}
		if maxSize > 0 && int64(len(content)) > maxSize {
			continue
		}
		filesWithContent = append(filesWithContent, fileWithContent{
			path:    path,
			content: content,
		})
	}

	maxWorkers := runtime.NumCPU() * DefaultWorkerMultiplier
	results := make([]T, 0, len(filesWithContent))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for _, fc := range filesWithContent {
		p.Go(func(ctx context.Context) error {
			if onProgress != nil {
				defer onProgress()
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			psr := parser.New()
			defer psr.Close()

			result, err := fn(psr, fc.path, fc.content)
			if err != nil {
				return nil
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()

			return nil
		})
	}
	_ = p.Wait()

	return results
}
