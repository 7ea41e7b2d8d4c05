// Package config loads burden configuration from TOML/YAML/JSON files with
// koanf, falling back to defaults when no file is present.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for burden.
type Config struct {
	Scoring    ScoringConfig    `koanf:"scoring" toml:"scoring"`
	Coverage   CoverageConfig   `koanf:"coverage" toml:"coverage"`
	Complexity ComplexityConfig `koanf:"complexity" toml:"complexity"`
	Graph      GraphConfig      `koanf:"graph" toml:"graph"`
	Exclude    ExcludeConfig    `koanf:"exclude" toml:"exclude"`
	Cache      CacheConfig      `koanf:"cache" toml:"cache"`
	Output     OutputConfig     `koanf:"output" toml:"output"`
}

// ScoringConfig controls score composition.
type ScoringConfig struct {
	// Factor weights, normalized to sum 1 at scoring time.
	CoverageWeight   float64 `koanf:"coverage_weight" toml:"coverage_weight"`
	ComplexityWeight float64 `koanf:"complexity_weight" toml:"complexity_weight"`
	DependencyWeight float64 `koanf:"dependency_weight" toml:"dependency_weight"`

	// Role multipliers.
	PureLogicMultiplier    float64 `koanf:"pure_logic_multiplier" toml:"pure_logic_multiplier"`
	OrchestratorMultiplier float64 `koanf:"orchestrator_multiplier" toml:"orchestrator_multiplier"`
	IOWrapperMultiplier    float64 `koanf:"io_wrapper_multiplier" toml:"io_wrapper_multiplier"`
	EntryPointMultiplier   float64 `koanf:"entry_point_multiplier" toml:"entry_point_multiplier"`
	PatternMatchMultiplier float64 `koanf:"pattern_match_multiplier" toml:"pattern_match_multiplier"`

	// AdjustmentsFile points at an external adjustments JSON file.
	AdjustmentsFile string `koanf:"adjustments_file" toml:"adjustments_file"`
}

// CoverageConfig controls coverage ingestion and propagation.
type CoverageConfig struct {
	// File is the LCOV report to ingest.
	File string `koanf:"file" toml:"file"`
	// WellTestedGate is the direct-coverage fraction treated as well tested.
	WellTestedGate float64 `koanf:"well_tested_gate" toml:"well_tested_gate"`
	// Decay is the per-hop attenuation for indirect coverage.
	Decay float64 `koanf:"decay" toml:"decay"`
	// MaxHops bounds upstream propagation.
	MaxHops int `koanf:"max_hops" toml:"max_hops"`
}

// ComplexityConfig controls entropy dampening and dispatch detection.
type ComplexityConfig struct {
	EntropyThreshold float64 `koanf:"entropy_threshold" toml:"entropy_threshold"`
	PatternWeight    float64 `koanf:"pattern_weight" toml:"pattern_weight"`
	MinDispatchArms  int     `koanf:"min_dispatch_arms" toml:"min_dispatch_arms"`
}

// GraphConfig controls call-graph construction.
type GraphConfig struct {
	// EntryPointPatterns extends the built-in entry detection; each entry is
	// an exact name, "prefix*" or "*suffix".
	EntryPointPatterns []string `koanf:"entry_point_patterns" toml:"entry_point_patterns"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls the on-disk extraction cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, yaml, toon, markdown
	Color  bool   `koanf:"color" toml:"color"`
	Top    int    `koanf:"top" toml:"top"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			CoverageWeight:         0.50,
			ComplexityWeight:       0.35,
			DependencyWeight:       0.15,
			PureLogicMultiplier:    1.2,
			OrchestratorMultiplier: 0.8,
			IOWrapperMultiplier:    0.7,
			EntryPointMultiplier:   0.9,
			PatternMatchMultiplier: 0.6,
		},
		Coverage: CoverageConfig{
			WellTestedGate: 0.8,
			Decay:          0.7,
			MaxHops:        3,
		},
		Complexity: ComplexityConfig{
			EntropyThreshold: 0.4,
			PatternWeight:    0.5,
			MinDispatchArms:  3,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.generated.go",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".burden",
				"dist",
				"build",
				"target",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".burden/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
			Top:    20,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard locations and falls back to defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"burden.toml",
		"burden.yaml",
		"burden.yml",
		"burden.json",
		".burden.toml",
		".burden.yaml",
		".burden.yml",
		".burden.json",
	}
	searchDirs := []string{".", ".burden"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				if cfg, err := Load(path); err == nil {
					return cfg
				}
			}
		}
	}
	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
