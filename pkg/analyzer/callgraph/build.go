package callgraph

import (
	"github.com/burden-dev/burden/pkg/ir"
	"github.com/burden-dev/burden/pkg/models"
)

// externalFile is the synthetic file path for call targets no extraction
// record exists for. They stay in the graph as unresolved nodes rather than
// being dropped, and classify with role Unknown downstream.
const externalFile = "<external>"

// ExternalID builds the synthetic id for an unresolved callee name.
func ExternalID(name string) models.FunctionID {
	return models.FunctionID{File: externalFile, Name: name, Line: 1}
}

// IsExternal reports whether id is a synthetic unresolved-callee node.
func IsExternal(id models.FunctionID) bool {
	return id.File == externalFile
}

// FromInventory builds the graph from an extraction inventory. Call targets
// resolve by name: a same-file match wins, then a unique cross-file match;
// anything still ambiguous or unknown becomes an unresolved external node.
func FromInventory(inv *ir.Inventory, opts ...Option) (*Graph, error) {
	b := NewBuilder(opts...)
	for _, fn := range inv.Functions {
		if err := b.AddFunction(Node{
			ID:         fn.ID,
			Visibility: fn.Visibility,
			IsTest:     fn.IsTest,
		}); err != nil {
			return nil, err
		}
	}

	index := inv.Index()
	for _, fn := range inv.Functions {
		for _, call := range fn.Calls {
			target := resolveCallee(fn.ID, call.Callee, index)
			if err := b.AddCall(fn.ID, target); err != nil {
				return nil, err
			}
		}
	}
	return b.Build(), nil
}

func resolveCallee(caller models.FunctionID, callee string, index map[string][]models.FunctionID) models.FunctionID {
	candidates := index[callee]
	if len(candidates) == 0 {
		return ExternalID(callee)
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	for _, c := range candidates {
		if c.File == caller.File {
			return c
		}
	}
	// Multiple cross-file candidates: resolution would be a guess, and a
	// wrong edge is worse than an unresolved one.
	return ExternalID(callee)
}
