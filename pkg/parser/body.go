package parser

import (
	"strings"

	"github.com/cespare/xxhash/v2"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/burden-dev/burden/pkg/ir"
)

// countDecisionPoints counts branching constructs for cyclomatic complexity.
func countDecisionPoints(body *sitter.Node, source []byte, lang Language) uint32 {
	decisionTypes := decisionNodeTypes(lang)
	var count uint32
	WalkTyped(body, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if decisionTypes[nodeType] {
			count++
		}
		if nodeType == "binary_expression" || nodeType == "boolean_operator" {
			switch operatorText(n, src) {
			case "&&", "||", "and", "or":
				count++
			}
		}
		return true
	})
	return count
}

func decisionNodeTypes(lang Language) map[string]bool {
	common := []string{
		"if_statement", "if_expression",
		"while_statement", "while_expression",
		"for_statement", "for_expression",
		"ternary_expression", "conditional_expression",
		"catch_clause",
	}
	switch lang {
	case LangGo:
		common = append(common, "expression_switch_statement", "type_switch_statement", "select_statement")
	case LangRust:
		common = append(common, "match_expression", "loop_expression", "if_let_expression")
	case LangPython:
		common = append(common, "elif_clause", "except_clause", "match_statement", "list_comprehension", "dictionary_comprehension")
	case LangTypeScript, LangTSX, LangJavaScript:
		common = append(common, "switch_statement", "do_statement")
	}
	set := make(map[string]bool, len(common))
	for _, t := range common {
		set[t] = true
	}
	return set
}

func operatorText(node *sitter.Node, source []byte) string {
	if op := node.ChildByFieldName("operator"); op != nil {
		return GetNodeText(op, source)
	}
	return ""
}

// cognitiveNesting are constructs that add a nesting penalty when entered.
var cognitiveNesting = map[string]bool{
	"if_statement": true, "if_expression": true, "if_let_expression": true,
	"while_statement": true, "while_expression": true,
	"for_statement": true, "for_expression": true, "loop_expression": true,
	"switch_statement": true, "expression_switch_statement": true,
	"type_switch_statement": true, "match_expression": true,
	"match_statement": true, "try_statement": true,
}

// cognitiveFlat add complexity without deepening the nesting level.
var cognitiveFlat = map[string]bool{
	"else_clause": true, "elif_clause": true,
	"break_statement": true, "continue_statement": true,
	"goto_statement": true,
}

// cognitiveComplexity computes nesting-weighted cognitive complexity: each
// construct costs 1 plus the current nesting depth.
func cognitiveComplexity(body *sitter.Node, source []byte, lang Language) uint32 {
	return cognitiveWalk(body, 0)
}

func cognitiveWalk(node *sitter.Node, depth uint32) uint32 {
	var total uint32
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		childType := child.Type()
		switch {
		case cognitiveNesting[childType]:
			total += 1 + depth + cognitiveWalk(child, depth+1)
		case cognitiveFlat[childType]:
			total += 1 + depth + cognitiveWalk(child, depth)
		default:
			total += cognitiveWalk(child, depth)
		}
	}
	return total
}

// maxNesting finds the deepest control-structure nesting in the body.
func maxNesting(body *sitter.Node) uint32 {
	return nestingWalk(body, 0)
}

func nestingWalk(node *sitter.Node, depth uint32) uint32 {
	deepest := depth
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		next := depth
		if cognitiveNesting[child.Type()] {
			next = depth + 1
		}
		if d := nestingWalk(child, next); d > deepest {
			deepest = d
		}
	}
	return deepest
}

// extractCalls collects outgoing call sites. Calls inside closures still
// belong to the enclosing function for graph purposes.
func extractCalls(body *sitter.Node, source []byte, lang Language) []ir.CallRef {
	var calls []ir.CallRef
	WalkTyped(body, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case "call_expression", "call":
			if callee := calleeText(n, src); callee != "" {
				calls = append(calls, ir.CallRef{Callee: callee, Line: n.StartPoint().Row + 1})
			}
		case "macro_invocation":
			if name := GetNodeText(n.ChildByFieldName("macro"), src); name != "" {
				calls = append(calls, ir.CallRef{Callee: name + "!", Line: n.StartPoint().Row + 1})
			}
		}
		return true
	})
	return calls
}

// calleeText extracts the function expression of a call, normalized to its
// trailing path segment so `pkg.Helper(x)` resolves against `Helper`.
func calleeText(call *sitter.Node, source []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	text := GetNodeText(fn, source)
	if i := strings.IndexAny(text, "(<["); i > 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// lastSegment strips qualifier prefixes from a callee path.
func lastSegment(callee string) string {
	if i := strings.LastIndexAny(callee, ".:"); i >= 0 && i+1 < len(callee) {
		return callee[i+1:]
	}
	return callee
}

// hasIO reports whether any call target looks like I/O. The check is a
// heuristic over callee names; role classification only uses it for thin
// wrappers where a false negative is harmless.
func hasIO(calls []ir.CallRef) bool {
	for _, call := range calls {
		callee := strings.ToLower(call.Callee)
		for _, marker := range ioMarkers {
			if strings.Contains(callee, marker) {
				return true
			}
		}
	}
	return false
}

var ioMarkers = []string{
	"print", "open", "read", "write", "fetch", "exec", "spawn",
	"os.", "io.", "fs.", "net.", "http", "socket", "connect",
	"send", "recv", "query", "flush",
}

func hasUnsafe(body *sitter.Node, calls []ir.CallRef, lang Language) bool {
	switch lang {
	case LangRust:
		found := false
		WalkTyped(body, nil, func(n *sitter.Node, nodeType string, _ []byte) bool {
			if nodeType == "unsafe_block" {
				found = true
				return false
			}
			return !found
		})
		return found
	case LangGo:
		for _, call := range calls {
			if strings.HasPrefix(call.Callee, "unsafe.") {
				return true
			}
		}
	}
	return false
}

// tokenProfile summarizes the body's token stream for entropy analysis.
func tokenProfile(body *sitter.Node, source []byte, lang Language) ir.TokenProfile {
	profile := ir.TokenProfile{ClassCounts: make(map[string]int)}
	uniqueIdents := make(map[string]struct{})

	WalkTyped(body, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if nodeType == "call_expression" || nodeType == "call" || nodeType == "macro_invocation" {
			profile.ClassCounts["call"]++
			profile.TotalTokens++
		}
		if n.ChildCount() > 0 {
			return true
		}
		class := tokenClass(nodeType)
		profile.ClassCounts[class]++
		profile.TotalTokens++
		if class == "ident" {
			uniqueIdents[GetNodeText(n, src)] = struct{}{}
		}
		return true
	})

	profile.UniqueVariables = len(uniqueIdents)
	profile.BranchSignatures = branchSignatures(body, source)
	return profile
}

func tokenClass(nodeType string) string {
	switch {
	case strings.Contains(nodeType, "identifier"):
		return "ident"
	case strings.Contains(nodeType, "literal"), strings.Contains(nodeType, "string"),
		strings.Contains(nodeType, "number"), strings.Contains(nodeType, "integer"),
		strings.Contains(nodeType, "float"),
		nodeType == "true", nodeType == "false", nodeType == "nil", nodeType == "none":
		return "literal"
	case isAlphabetic(nodeType):
		return "keyword"
	default:
		return "operator"
	}
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return true
}

// branchConsequenceTypes are the nodes whose token-class sequence forms one
// branch signature.
var branchConsequenceTypes = map[string]bool{
	"match_arm": true, "expression_case": true, "default_case": true,
	"switch_case": true, "case_clause": true,
	"if_statement": true, "if_expression": true, "elif_clause": true,
}

// branchSignatures hashes each conditional branch body's token-class shape.
// Equal hashes mean structurally repeated branches.
func branchSignatures(body *sitter.Node, source []byte) []uint64 {
	var sigs []uint64
	WalkTyped(body, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if !branchConsequenceTypes[nodeType] {
			return true
		}
		h := xxhash.New()
		WalkTyped(n, src, func(leaf *sitter.Node, leafType string, _ []byte) bool {
			if leaf.ChildCount() == 0 {
				h.WriteString(tokenClass(leafType))
				h.WriteString("\x00")
			}
			return true
		})
		sigs = append(sigs, h.Sum64())
		return true
	})
	return sigs
}
