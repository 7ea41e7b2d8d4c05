// Package cache persists per-file extraction results between runs. Entries
// are keyed by source path and validated against a BLAKE3 hash of the file
// content, so any edit misses cleanly; a TTL bounds staleness for everything
// else.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/burden-dev/burden/pkg/ir"
)

// Cache is the on-disk extraction cache. A disabled cache is a valid value:
// every lookup misses and every store is a no-op.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// entry is the on-disk form of one file's extraction result.
type entry struct {
	ContentHash string              `json:"content_hash"`
	SavedAt     time.Time           `json:"saved_at"`
	Records     []ir.FunctionRecord `json:"records"`
}

// New creates a cache rooted at dir. With enabled false the directory is
// never created and the cache never stores anything.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// HashBytes computes the BLAKE3 content hash used to validate entries.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GetRecords returns the cached extraction result for path. It misses when
// the entry is absent, the content hash differs, or the TTL has elapsed;
// expired and undecodable entries are removed on the way out.
func (c *Cache) GetRecords(path, hash string) ([]ir.FunctionRecord, bool) {
	if !c.enabled {
		return nil, false
	}

	file := c.entryPath(path)
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		os.Remove(file)
		return nil, false
	}
	if e.ContentHash != hash {
		return nil, false
	}
	if time.Since(e.SavedAt) > c.ttl {
		os.Remove(file)
		return nil, false
	}

	return e.Records, true
}

// SetRecords stores the extraction result for path under its content hash.
// A later store for the same path overwrites the earlier one.
func (c *Cache) SetRecords(path, hash string, records []ir.FunctionRecord) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(entry{
		ContentHash: hash,
		SavedAt:     time.Now(),
		Records:     records,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(c.entryPath(path), data, 0o600)
}

// entryPath hashes the source path into a flat filename, so separators and
// unicode in paths never shape the cache directory layout.
func (c *Cache) entryPath(path string) string {
	sum := blake3.Sum256([]byte(path))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}
