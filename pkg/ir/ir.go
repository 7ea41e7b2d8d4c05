// Package ir defines the language-neutral function inventory produced by
// extraction. Per-language AST shapes (match arms, if/elif chains, switch
// statements) are normalized here so the downstream analyzers never branch
// on source language.
package ir

import (
	"github.com/burden-dev/burden/pkg/models"
)

// Visibility of a function in its module system.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
	VisibilityUnknown Visibility = "unknown"
)

// ReceiverMode describes how a method binds its receiver.
type ReceiverMode string

const (
	// ReceiverNone marks free functions.
	ReceiverNone ReceiverMode = "none"
	// ReceiverValue is an owned, by-value receiver. Mutating its fields is
	// externally invisible.
	ReceiverValue ReceiverMode = "value"
	// ReceiverRef is a shared reference receiver (read access only).
	ReceiverRef ReceiverMode = "ref"
	// ReceiverMutRef is a mutable reference receiver; field writes escape.
	ReceiverMutRef ReceiverMode = "mut_ref"
)

// ArmKind classifies the body of one normalized dispatch arm.
type ArmKind string

const (
	ArmReturn   ArmKind = "return"
	ArmBreak    ArmKind = "break"
	ArmContinue ArmKind = "continue"
	ArmLiteral  ArmKind = "literal"
	// ArmSimpleCall is a single call or constructor expression.
	ArmSimpleCall ArmKind = "simple_call"
	// ArmErrorPropagation is a trailing fallible short-circuit (try/`?`,
	// `return err`-style propagation).
	ArmErrorPropagation ArmKind = "error_propagation"
	// ArmFormatCall is a single formatting or logging invocation.
	ArmFormatCall ArmKind = "format_call"
	ArmComplex    ArmKind = "complex"
)

// Simple reports whether the arm adds negligible cognitive burden once the
// surrounding dispatch shape is recognized.
func (k ArmKind) Simple() bool {
	return k != ArmComplex && k != ""
}

// Arm is one normalized conditional arm: `Subject` is the expression under
// test, shared across a dispatch chain.
type Arm struct {
	Subject string
	Kind    ArmKind
	Line    uint32
}

// CallRef is an outgoing call site. Callee is the textual target; resolution
// against the inventory happens at graph construction.
type CallRef struct {
	Callee string
	Line   uint32
}

// BindingKind distinguishes how a name entered the local scope.
type BindingKind string

const (
	BindingParam BindingKind = "param"
	BindingLocal BindingKind = "local"
)

// Binding is one in-scope name. ByValue is true for owned bindings (locals,
// by-value params); false for reference-like params.
type Binding struct {
	Name    string
	Kind    BindingKind
	ByValue bool
}

// MutationSite is one assignment/mutation candidate found in the body. The
// purity classifier resolves Root against the scope table; the extractor
// records facts, not judgments.
type MutationSite struct {
	// Root is the leftmost identifier of the assignment target.
	Root string
	// Path is the full textual target (e.g. "cfg.limits.max").
	Path string
	Line uint32
	// FieldAccess is true when the target is a field rather than the whole
	// binding.
	FieldAccess bool
	// InClosure is true when the write happens inside a nested closure that
	// captured Root from the enclosing function.
	InClosure bool
	// Deref is true for writes through an explicit pointer/reference deref.
	Deref bool
}

// TokenProfile summarizes the body's token stream for entropy analysis.
type TokenProfile struct {
	// ClassCounts maps token class (keyword, ident, literal, operator,
	// call...) to occurrence count.
	ClassCounts map[string]int
	TotalTokens int
	// UniqueVariables is the number of distinct identifiers referenced.
	UniqueVariables int
	// BranchSignatures holds one hash per conditional branch body, computed
	// over its token-class sequence; equal hashes mean structurally
	// repeated branches.
	BranchSignatures []uint64
}

// FunctionRecord is everything extraction learned about one function.
type FunctionRecord struct {
	ID      models.FunctionID
	EndLine uint32
	Lines   int

	Visibility   Visibility
	ReceiverMode ReceiverMode
	IsTest       bool
	IsClosure    bool

	// Raw structural counts, before any dampening.
	Cyclomatic uint32
	Cognitive  uint32
	MaxNesting uint32

	Calls []CallRef
	Arms  []Arm

	Scope     []Binding
	Mutations []MutationSite
	// ExternalReads are identifiers read but not resolvable in local scope.
	ExternalReads []string
	HasIO         bool
	HasUnsafe     bool

	Tokens TokenProfile
}

// Inventory is the merged extraction result for a run.
type Inventory struct {
	Functions []FunctionRecord
	Files     int
}

// Index returns a name-to-ids index for call resolution. Qualified method
// names index under both the bare and qualified form.
func (inv *Inventory) Index() map[string][]models.FunctionID {
	idx := make(map[string][]models.FunctionID, len(inv.Functions))
	for _, fn := range inv.Functions {
		idx[fn.ID.Name] = append(idx[fn.ID.Name], fn.ID)
		if base := baseName(fn.ID.Name); base != fn.ID.Name {
			idx[base] = append(idx[base], fn.ID)
		}
	}
	return idx
}

func baseName(qualified string) string {
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' || qualified[i] == ':' {
			return qualified[i+1:]
		}
	}
	return qualified
}
