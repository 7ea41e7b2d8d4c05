// Package scanner wraps file discovery behind a service facade so commands
// never touch the walker directly.
package scanner

import (
	"fmt"
	"path/filepath"
	"sort"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/burden-dev/burden/internal/scanner"
	"github.com/burden-dev/burden/pkg/config"
	"github.com/burden-dev/burden/pkg/parser"
	"github.com/burden-dev/burden/pkg/source"
)

// ScanResult contains the result of a file scan.
type ScanResult struct {
	Files          []string
	LanguageGroups map[parser.Language][]string
	RepoRoot       string
}

// Service provides file scanning functionality.
type Service struct {
	config *config.Config
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// New creates a new scanner service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.LoadOrDefault(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanPaths scans multiple paths and returns all found source files.
func (s *Service) ScanPaths(paths []string) (*ScanResult, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	scan := scanner.NewScanner(s.config)
	var files []string

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, &PathError{Path: path, Err: err}
		}
		found, err := scan.ScanDir(absPath)
		if err != nil {
			return nil, &ScanError{Path: path, Err: err}
		}
		files = append(files, found...)
	}

	result := &ScanResult{
		Files:          files,
		LanguageGroups: scan.GroupByLanguage(files),
	}

	return result, nil
}

// ScanPathsForGit scans paths and also resolves the git repository root.
// Returns an error if not in a git repository when gitRequired is true.
func (s *Service) ScanPathsForGit(paths []string, gitRequired bool) (*ScanResult, error) {
	result, err := s.ScanPaths(paths)
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		paths = []string{"."}
	}

	repoRoot, err := findGitRoot(paths[0])
	if err != nil {
		if gitRequired {
			return nil, &GitError{Err: err}
		}
		// Not required, continue without repo root
	} else {
		result.RepoRoot = repoRoot
	}

	return result, nil
}

// ScanRevision resolves rev in the repository containing path and scans the
// source files of that commit's tree. The returned source reads file content
// from the tree, so analysis runs against the revision, not the working copy.
func (s *Service) ScanRevision(path, rev string) (*ScanResult, *source.TreeSource, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, &PathError{Path: path, Err: err}
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, nil, &GitError{Err: err}
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, nil, fmt.Errorf("cannot resolve revision %q: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read tree for %s: %w", hash, err)
	}

	var files []string
	err = tree.Files().ForEach(func(f *object.File) error {
		if parser.DetectLanguage(f.Name) == parser.LangUnknown {
			return nil
		}
		if s.config.ShouldExclude(f.Name) {
			return nil
		}
		files = append(files, f.Name)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("cannot walk tree for %s: %w", hash, err)
	}
	sort.Strings(files)

	scan := scanner.NewScanner(s.config)
	result := &ScanResult{
		Files:          files,
		LanguageGroups: scan.GroupByLanguage(files),
	}
	if wt, err := repo.Worktree(); err == nil {
		result.RepoRoot = wt.Filesystem.Root()
	}

	return result, source.NewTree(tree), nil
}

// findGitRoot finds the git repository root containing the given path.
func findGitRoot(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	return wt.Filesystem.Root(), nil
}

// FilterBySize filters files by maximum size.
func (s *Service) FilterBySize(files []string, maxSize int64) ([]string, int) {
	return scanner.FilterBySize(files, maxSize)
}

// PathError indicates an invalid path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return "invalid path " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ScanError indicates a scanning failure.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return "failed to scan directory " + e.Path + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// GitError indicates the path is not a git repository.
type GitError struct {
	Err error
}

func (e *GitError) Error() string {
	return "not a git repository (or any parent): " + e.Err.Error()
}

func (e *GitError) Unwrap() error {
	return e.Err
}
