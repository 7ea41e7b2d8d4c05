package models

import (
	"fmt"
	"strings"
)

// FunctionID uniquely identifies a function within a single analysis run.
// The triple (file, name, start line) is stable across re-parses of the same
// source and is used as the map key throughout the call graph and analyzers.
type FunctionID struct {
	File string `json:"file"`
	Name string `json:"name"`
	Line uint32 `json:"line"`
}

// NewFunctionID creates a FunctionID.
func NewFunctionID(file, name string, line uint32) FunctionID {
	return FunctionID{File: file, Name: name, Line: line}
}

// Validate checks that the id satisfies the extractor contract.
// Graph construction rejects malformed ids rather than guessing.
func (id FunctionID) Validate() error {
	if strings.TrimSpace(id.File) == "" {
		return fmt.Errorf("function id %q: empty file path", id.Name)
	}
	if strings.TrimSpace(id.Name) == "" {
		return fmt.Errorf("function id in %s:%d: empty qualified name", id.File, id.Line)
	}
	if id.Line == 0 {
		return fmt.Errorf("function id %s in %s: start line must be >= 1", id.Name, id.File)
	}
	return nil
}

func (id FunctionID) String() string {
	return fmt.Sprintf("%s:%s:%d", id.File, id.Name, id.Line)
}

// Less orders ids by (file, line, name). Used for deterministic tie-breaking.
func (id FunctionID) Less(other FunctionID) bool {
	if id.File != other.File {
		return id.File < other.File
	}
	if id.Line != other.Line {
		return id.Line < other.Line
	}
	return id.Name < other.Name
}

// NodeClass describes a function's position in the call graph.
type NodeClass string

const (
	// NodeEntry is a detected entry point (main, test, handler, exported API).
	NodeEntry NodeClass = "entry"
	// NodeLeaf has callers but no callees. Not a problem by itself.
	NodeLeaf NodeClass = "leaf"
	// NodeIsolated has no callers and no callees and is not an entry point.
	// These are removal candidates.
	NodeIsolated NodeClass = "isolated"
	// NodeUnreachable has callees but no callers and is not an entry point.
	NodeUnreachable NodeClass = "unreachable"
	// NodeInterior has both callers and callees.
	NodeInterior NodeClass = "interior"
)

func (c NodeClass) String() string { return string(c) }
