package callgraph

import (
	"strings"

	"github.com/burden-dev/burden/pkg/ir"
)

// Predicate decides whether a node is an entry point. The set is deliberately
// heuristic and extensible; a miss only adds noise to health reporting, it
// never corrupts scoring.
type Predicate func(n Node) bool

func evalPredicates(preds []Predicate, n *Node) bool {
	for _, p := range preds {
		if p(*n) {
			return true
		}
	}
	return false
}

// DefaultPredicates returns the built-in entry-point heuristics: program
// entry symbols, test/benchmark naming, exported interface surface, and
// well-known handler/lifecycle names.
func DefaultPredicates() []Predicate {
	return []Predicate{
		ProgramEntry,
		TestFunction,
		ExportedAPI,
		HandlerName,
		LifecycleName,
	}
}

// ProgramEntry matches conventional program entry symbols.
func ProgramEntry(n Node) bool {
	name := baseName(n.ID.Name)
	return name == "main" || name == "init" || name == "Main" || name == "__main__"
}

// TestFunction matches test, benchmark, example and fuzz naming conventions.
func TestFunction(n Node) bool {
	if n.IsTest {
		return true
	}
	name := baseName(n.ID.Name)
	for _, prefix := range []string{"Test", "Benchmark", "Example", "Fuzz", "test_", "bench_"} {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return true
		}
	}
	return false
}

// ExportedAPI treats public functions as potential external API entry points.
func ExportedAPI(n Node) bool {
	return n.Visibility == ir.VisibilityPublic
}

// HandlerName matches HTTP handler and callback naming patterns.
func HandlerName(n Node) bool {
	name := baseName(n.ID.Name)
	if name == "ServeHTTP" || name == "Handle" {
		return true
	}
	for _, suffix := range []string{"Handler", "Endpoint", "Controller", "Callback", "Listener"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	for _, prefix := range []string{"Handle", "On", "on_"} {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return true
		}
	}
	return false
}

// LifecycleName matches well-known lifecycle and trait-method names that
// frameworks invoke reflectively.
var lifecycleNames = map[string]bool{
	"Setup": true, "SetUp": true, "Teardown": true, "TearDown": true,
	"setUp": true, "tearDown": true,
	"Start": true, "Stop": true, "Open": true, "Close": true,
	"Initialize": true, "Finalize": true,
	"__init__": true, "__enter__": true, "__exit__": true, "__del__": true,
	"drop": true, "default": true, "clone": true, "fmt": true,
}

// LifecycleName reports whether the node's base name is a known lifecycle
// method.
func LifecycleName(n Node) bool {
	return lifecycleNames[baseName(n.ID.Name)]
}

// NamePattern builds a predicate from a simple pattern: "prefix*" matches a
// name prefix, "*suffix" a suffix, anything else an exact base name. Config
// supplies extra patterns through this.
func NamePattern(pattern string) Predicate {
	switch {
	case strings.HasSuffix(pattern, "*"):
		prefix := strings.TrimSuffix(pattern, "*")
		return func(n Node) bool { return strings.HasPrefix(baseName(n.ID.Name), prefix) }
	case strings.HasPrefix(pattern, "*"):
		suffix := strings.TrimPrefix(pattern, "*")
		return func(n Node) bool { return strings.HasSuffix(baseName(n.ID.Name), suffix) }
	default:
		return func(n Node) bool { return baseName(n.ID.Name) == pattern }
	}
}

// baseName strips any qualifier ("Type.method", "mod::fn") down to the last
// path segment.
func baseName(qualified string) string {
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' || qualified[i] == ':' {
			return qualified[i+1:]
		}
	}
	return qualified
}
