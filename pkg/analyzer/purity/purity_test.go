package purity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burden-dev/burden/pkg/analyzer/memo"
	"github.com/burden-dev/burden/pkg/ir"
	"github.com/burden-dev/burden/pkg/models"
)

func fn(name string) ir.FunctionRecord {
	return ir.FunctionRecord{ID: models.FunctionID{File: "a.go", Name: name, Line: 1}}
}

func TestStrictlyPure(t *testing.T) {
	f := fn("add")
	f.Scope = []ir.Binding{
		{Name: "a", Kind: ir.BindingParam, ByValue: true},
		{Name: "b", Kind: ir.BindingParam, ByValue: true},
	}

	p := New().Analyze(f)
	assert.Equal(t, models.StrictlyPure, p.Level)
	assert.Equal(t, 1.0, p.Confidence)
	assert.True(t, p.IsPure())
}

func TestReadOnlyExternalAccess(t *testing.T) {
	f := fn("lookup")
	f.ExternalReads = []string{"registry"}

	p := New().Analyze(f)
	assert.Equal(t, models.ReadOnly, p.Level)
	assert.InDelta(t, 0.8, p.Confidence, 1e-9)
	assert.True(t, p.AccessesExternalState)
	assert.False(t, p.IsPure())
}

func TestLocalMutationOnly(t *testing.T) {
	f := fn("sum")
	f.Scope = []ir.Binding{{Name: "total", Kind: ir.BindingLocal, ByValue: true}}
	f.Mutations = []ir.MutationSite{{Root: "total", Path: "total", Line: 3}}

	p := New().Analyze(f)
	assert.Equal(t, models.LocallyPure, p.Level)
	require.Len(t, p.LocalMutations, 1)
	assert.Equal(t, models.MutationLocal, p.LocalMutations[0].Target)
	assert.True(t, p.IsPure())
}

func TestOwnedReceiverBuilderIsLocallyPure(t *testing.T) {
	// A by-value builder method mutating its own fields has no externally
	// visible effect: the caller keeps the original.
	f := fn("Config.WithTimeout")
	f.ReceiverMode = ir.ReceiverValue
	f.Scope = []ir.Binding{
		{Name: "self", Kind: ir.BindingParam, ByValue: true},
		{Name: "d", Kind: ir.BindingParam, ByValue: true},
	}
	f.Mutations = []ir.MutationSite{
		{Root: "self", Path: "self.timeout", Line: 2, FieldAccess: true},
	}

	p := New().Analyze(f)
	assert.Equal(t, models.LocallyPure, p.Level)
	assert.False(t, p.ModifiesExternalState)
}

func TestMutableReceiverFieldWriteIsImpure(t *testing.T) {
	f := fn("Cache.Put")
	f.ReceiverMode = ir.ReceiverMutRef
	f.Scope = []ir.Binding{
		{Name: "self", Kind: ir.BindingParam, ByValue: false},
		{Name: "key", Kind: ir.BindingParam, ByValue: true},
	}
	f.Mutations = []ir.MutationSite{
		{Root: "self", Path: "self.entries", Line: 4, FieldAccess: true},
	}

	p := New().Analyze(f)
	assert.Equal(t, models.Impure, p.Level)
	require.Len(t, p.ExternalMutations, 1)
	assert.Equal(t, "self.entries", p.ExternalMutations[0].Path)
}

func TestUnresolvedRootIsExternal(t *testing.T) {
	// Nothing in scope named "globalState": ambiguity resolves to external.
	f := fn("bump")
	f.Mutations = []ir.MutationSite{{Root: "globalState", Path: "globalState.n", Line: 7}}

	p := New().Analyze(f)
	assert.Equal(t, models.Impure, p.Level)
	assert.True(t, p.ModifiesExternalState)
}

func TestDerefThroughLocalEscapes(t *testing.T) {
	f := fn("apply")
	f.Scope = []ir.Binding{{Name: "ptr", Kind: ir.BindingLocal, ByValue: true}}
	f.Mutations = []ir.MutationSite{{Root: "ptr", Path: "*ptr", Line: 2, Deref: true}}

	p := New().Analyze(f)
	assert.Equal(t, models.Impure, p.Level)
}

func TestReferenceRebindIsLocal(t *testing.T) {
	f := fn("walk")
	f.Scope = []ir.Binding{{Name: "node", Kind: ir.BindingParam, ByValue: false}}
	f.Mutations = []ir.MutationSite{{Root: "node", Path: "node", Line: 5}}

	p := New().Analyze(f)
	assert.Equal(t, models.LocallyPure, p.Level)
}

func TestUpvalueMutation(t *testing.T) {
	f := fn("counter")
	f.Scope = []ir.Binding{{Name: "n", Kind: ir.BindingLocal, ByValue: true}}
	f.Mutations = []ir.MutationSite{{Root: "n", Path: "n", Line: 3, InClosure: true}}

	p := New().Analyze(f)
	assert.Equal(t, models.LocallyPure, p.Level)
	require.Len(t, p.UpvalueMutations, 1)
	assert.InDelta(t, 0.85, p.Confidence, 1e-9)
}

func TestIOForcesImpure(t *testing.T) {
	f := fn("save")
	f.HasIO = true

	p := New().Analyze(f)
	assert.Equal(t, models.Impure, p.Level)
}

func TestUnsafeForcesImpure(t *testing.T) {
	f := fn("transmute")
	f.HasUnsafe = true

	p := New().Analyze(f)
	assert.Equal(t, models.Impure, p.Level)
}

func TestManyLocalMutationsLowerConfidence(t *testing.T) {
	f := fn("accumulate")
	f.Scope = []ir.Binding{{Name: "acc", Kind: ir.BindingLocal, ByValue: true}}
	for i := 0; i < 6; i++ {
		f.Mutations = append(f.Mutations, ir.MutationSite{Root: "acc", Path: "acc", Line: uint32(i + 1)})
	}

	p := New().Analyze(f)
	assert.Equal(t, models.LocallyPure, p.Level)
	assert.InDelta(t, 0.95, p.Confidence, 1e-9)
}

func TestConfidenceNeverBelowFloor(t *testing.T) {
	f := fn("messy")
	f.ExternalReads = []string{"env"}
	f.Scope = []ir.Binding{{Name: "buf", Kind: ir.BindingLocal, ByValue: true}}
	f.Mutations = []ir.MutationSite{{Root: "buf", Path: "buf", Line: 1, InClosure: true}}
	for i := 0; i < 6; i++ {
		f.Mutations = append(f.Mutations, ir.MutationSite{Root: "buf", Path: "buf", Line: uint32(i + 2)})
	}

	p := New().Analyze(f)
	assert.GreaterOrEqual(t, p.Confidence, MinConfidence)
	assert.LessOrEqual(t, p.Confidence, 1.0)
}

func TestMutationsSortedByLine(t *testing.T) {
	f := fn("build")
	f.Scope = []ir.Binding{{Name: "s", Kind: ir.BindingLocal, ByValue: true}}
	f.Mutations = []ir.MutationSite{
		{Root: "s", Path: "s.b", Line: 9, FieldAccess: true},
		{Root: "s", Path: "s.a", Line: 2, FieldAccess: true},
	}

	p := New().Analyze(f)
	require.Len(t, p.LocalMutations, 2)
	assert.Equal(t, uint32(2), p.LocalMutations[0].Line)
	assert.Equal(t, uint32(9), p.LocalMutations[1].Line)
}

func TestAnalyzeCached(t *testing.T) {
	cache := memo.New[models.PurityAnalysis]()
	f := fn("cached")
	f.HasIO = true

	a := New()
	first := a.AnalyzeCached(f, cache)
	second := a.AnalyzeCached(f, cache)
	assert.Equal(t, first.Level, second.Level)
	assert.Equal(t, 1, cache.Len())
}
