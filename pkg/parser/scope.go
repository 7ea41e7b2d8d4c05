package parser

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/burden-dev/burden/pkg/ir"
)

// scopeTable tracks the names a function owns. The purity classifier resolves
// mutation roots against it; anything unresolved is treated as external.
type scopeTable struct {
	entries map[string]ir.Binding
	order   []string
}

func (s *scopeTable) add(b ir.Binding) {
	if b.Name == "" || b.Name == "_" {
		return
	}
	if _, exists := s.entries[b.Name]; exists {
		return
	}
	s.entries[b.Name] = b
	s.order = append(s.order, b.Name)
}

func (s *scopeTable) has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

func (s *scopeTable) bindings() []ir.Binding {
	out := make([]ir.Binding, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.entries[name])
	}
	return out
}

// newScopeTable collects the receiver, parameters and local declarations of
// one function. ByValue marks owned bindings: mutating them (or their
// fields) stays invisible to callers.
func newScopeTable(funcNode *sitter.Node, source []byte, lang Language) *scopeTable {
	s := &scopeTable{entries: make(map[string]ir.Binding)}

	switch lang {
	case LangGo:
		if recv := funcNode.ChildByFieldName("receiver"); recv != nil {
			byValue := !strings.Contains(GetNodeText(recv, source), "*")
			if name := firstIdentifier(recv, source); name != "" {
				s.add(ir.Binding{Name: name, Kind: ir.BindingParam, ByValue: byValue})
			}
		}
		collectGoParams(funcNode.ChildByFieldName("parameters"), source, s)
	case LangRust:
		collectRustParams(funcNode.ChildByFieldName("parameters"), source, s)
	case LangPython:
		collectPythonParams(funcNode.ChildByFieldName("parameters"), source, s)
	case LangTypeScript, LangTSX, LangJavaScript:
		collectJSParams(funcNode.ChildByFieldName("parameters"), source, s)
	}

	if body := funcNode.ChildByFieldName("body"); body != nil {
		collectLocals(body, source, lang, s)
	}
	return s
}

func firstIdentifier(node *sitter.Node, source []byte) string {
	var name string
	Walk(node, source, func(n *sitter.Node, src []byte) bool {
		if name != "" {
			return false
		}
		if n.Type() == "identifier" {
			name = GetNodeText(n, src)
			return false
		}
		return true
	})
	return name
}

func collectGoParams(params *sitter.Node, source []byte, s *scopeTable) {
	if params == nil {
		return
	}
	for i := range int(params.NamedChildCount()) {
		decl := params.NamedChild(i)
		if decl.Type() != "parameter_declaration" && decl.Type() != "variadic_parameter_declaration" {
			continue
		}
		typ := decl.ChildByFieldName("type")
		byValue := typ == nil || typ.Type() != "pointer_type"
		for j := range int(decl.NamedChildCount()) {
			child := decl.NamedChild(j)
			if child.Type() == "identifier" {
				s.add(ir.Binding{Name: GetNodeText(child, source), Kind: ir.BindingParam, ByValue: byValue})
			}
		}
	}
}

func collectRustParams(params *sitter.Node, source []byte, s *scopeTable) {
	if params == nil {
		return
	}
	for i := range int(params.NamedChildCount()) {
		param := params.NamedChild(i)
		switch param.Type() {
		case "self_parameter":
			byValue := !strings.HasPrefix(GetNodeText(param, source), "&")
			s.add(ir.Binding{Name: "self", Kind: ir.BindingParam, ByValue: byValue})
		case "parameter":
			typ := param.ChildByFieldName("type")
			byValue := typ == nil || typ.Type() != "reference_type"
			if name := firstIdentifier(param.ChildByFieldName("pattern"), source); name != "" {
				s.add(ir.Binding{Name: name, Kind: ir.BindingParam, ByValue: byValue})
			}
		}
	}
}

func collectPythonParams(params *sitter.Node, source []byte, s *scopeTable) {
	if params == nil {
		return
	}
	// Python arguments are references: rebinding the name is local, writing
	// through it escapes.
	for i := range int(params.NamedChildCount()) {
		param := params.NamedChild(i)
		name := ""
		switch param.Type() {
		case "identifier":
			name = GetNodeText(param, source)
		case "default_parameter", "typed_parameter", "typed_default_parameter":
			name = firstIdentifier(param, source)
		}
		if name != "" {
			s.add(ir.Binding{Name: name, Kind: ir.BindingParam, ByValue: false})
		}
	}
}

func collectJSParams(params *sitter.Node, source []byte, s *scopeTable) {
	if params == nil {
		return
	}
	for i := range int(params.NamedChildCount()) {
		param := params.NamedChild(i)
		if name := firstIdentifier(param, source); name != "" {
			s.add(ir.Binding{Name: name, Kind: ir.BindingParam, ByValue: false})
		}
	}
}

// localDeclTypes per language: nodes that introduce owned bindings.
func collectLocals(body *sitter.Node, source []byte, lang Language, s *scopeTable) {
	WalkTyped(body, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch lang {
		case LangGo:
			switch nodeType {
			case "short_var_declaration", "range_clause":
				if left := n.ChildByFieldName("left"); left != nil {
					addIdentifiers(left, src, s)
				}
			case "var_spec":
				if name := n.ChildByFieldName("name"); name != nil {
					addIdentifiers(name, src, s)
				}
			}
		case LangRust:
			if nodeType == "let_declaration" {
				if name := firstIdentifier(n.ChildByFieldName("pattern"), src); name != "" {
					s.add(ir.Binding{Name: name, Kind: ir.BindingLocal, ByValue: true})
				}
			}
		case LangPython:
			if nodeType == "assignment" || nodeType == "named_expression" {
				if left := n.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
					s.add(ir.Binding{Name: GetNodeText(left, src), Kind: ir.BindingLocal, ByValue: true})
				}
			}
			if nodeType == "for_statement" {
				if left := n.ChildByFieldName("left"); left != nil {
					addIdentifiers(left, src, s)
				}
			}
		case LangTypeScript, LangTSX, LangJavaScript:
			if nodeType == "variable_declarator" {
				if name := n.ChildByFieldName("name"); name != nil {
					addIdentifiers(name, src, s)
				}
			}
		}
		return true
	})
}

func addIdentifiers(node *sitter.Node, source []byte, s *scopeTable) {
	Walk(node, source, func(n *sitter.Node, src []byte) bool {
		if n.Type() == "identifier" {
			s.add(ir.Binding{Name: GetNodeText(n, src), Kind: ir.BindingLocal, ByValue: true})
		}
		return true
	})
}

// mutationNodeTypes maps language to the assignment-like node types.
func mutationNodeTypes(lang Language) map[string]bool {
	switch lang {
	case LangGo:
		return map[string]bool{"assignment_statement": true, "inc_statement": true, "dec_statement": true}
	case LangRust:
		return map[string]bool{"assignment_expression": true, "compound_assignment_expr": true}
	case LangPython:
		return map[string]bool{"assignment": true, "augmented_assignment": true}
	case LangTypeScript, LangTSX, LangJavaScript:
		return map[string]bool{
			"assignment_expression":           true,
			"augmented_assignment_expression": true,
			"update_expression":               true,
		}
	default:
		return nil
	}
}

// closureNodeTypes are nested-function constructs: writes inside them to
// enclosing bindings are upvalue mutations.
var closureNodeTypes = map[string]bool{
	"func_literal": true, "closure_expression": true, "lambda": true,
	"arrow_function": true, "function_expression": true,
	"function_declaration": true, "function_definition": true, "function_item": true,
}

// extractMutations records every assignment target in the body, annotated
// with the facts the purity classifier needs.
func extractMutations(body *sitter.Node, source []byte, lang Language) []ir.MutationSite {
	mutTypes := mutationNodeTypes(lang)
	var sites []ir.MutationSite

	var walk func(node *sitter.Node, inClosure bool)
	walk = func(node *sitter.Node, inClosure bool) {
		nodeType := node.Type()
		if mutTypes[nodeType] {
			targets := mutationTargets(node, lang)
			for _, target := range targets {
				site := analyzeTarget(target, source)
				if site.Root == "" {
					continue
				}
				site.Line = node.StartPoint().Row + 1
				site.InClosure = inClosure
				sites = append(sites, site)
			}
		}
		for i := range int(node.ChildCount()) {
			child := node.Child(i)
			walk(child, inClosure || closureNodeTypes[child.Type()])
		}
	}
	walk(body, false)
	return sites
}

func mutationTargets(node *sitter.Node, lang Language) []*sitter.Node {
	switch node.Type() {
	case "inc_statement", "dec_statement":
		if node.NamedChildCount() > 0 {
			return []*sitter.Node{node.NamedChild(0)}
		}
		return nil
	case "update_expression":
		if arg := node.ChildByFieldName("argument"); arg != nil {
			return []*sitter.Node{arg}
		}
		return nil
	}
	left := node.ChildByFieldName("left")
	if left == nil {
		return nil
	}
	if left.Type() == "expression_list" {
		var targets []*sitter.Node
		for i := range int(left.NamedChildCount()) {
			targets = append(targets, left.NamedChild(i))
		}
		return targets
	}
	return []*sitter.Node{left}
}

// analyzeTarget decomposes an assignment target into root, path and access
// shape. Line and closure context are filled in by the caller.
func analyzeTarget(target *sitter.Node, source []byte) ir.MutationSite {
	site := ir.MutationSite{Path: GetNodeText(target, source)}

	cur := target
	for cur != nil {
		switch cur.Type() {
		case "identifier":
			site.Root = GetNodeText(cur, source)
			return site
		case "selector_expression":
			site.FieldAccess = true
			cur = cur.ChildByFieldName("operand")
		case "field_expression":
			site.FieldAccess = true
			cur = cur.ChildByFieldName("value")
		case "member_expression":
			site.FieldAccess = true
			cur = cur.ChildByFieldName("object")
		case "attribute":
			site.FieldAccess = true
			cur = cur.ChildByFieldName("object")
		case "subscript_expression", "index_expression", "subscript":
			site.FieldAccess = true
			next := cur.ChildByFieldName("operand")
			if next == nil {
				next = cur.ChildByFieldName("object")
			}
			if next == nil {
				next = cur.ChildByFieldName("value")
			}
			if next == nil && cur.NamedChildCount() > 0 {
				next = cur.NamedChild(0)
			}
			cur = next
		case "unary_expression", "pointer_expression":
			site.Deref = true
			next := cur.ChildByFieldName("operand")
			if next == nil && cur.NamedChildCount() > 0 {
				next = cur.NamedChild(0)
			}
			cur = next
		case "parenthesized_expression":
			cur = unwrapParens(cur)
		case "this":
			site.Root = "this"
			return site
		default:
			if cur.NamedChildCount() > 0 {
				cur = cur.NamedChild(0)
				continue
			}
			return site
		}
	}
	return site
}

var builtinReads = map[string]bool{
	// Go
	"len": true, "cap": true, "append": true, "make": true, "new": true,
	"copy": true, "delete": true, "close": true, "panic": true, "recover": true,
	"nil": true, "true": true, "false": true, "iota": true, "min": true, "max": true,
	// Rust
	"Some": true, "None": true, "Ok": true, "Err": true, "self": true, "Self": true,
	"String": true, "Vec": true, "Box": true,
	// Python
	"print": true, "range": true, "int": true, "str": true, "float": true,
	"list": true, "dict": true, "set": true, "tuple": true, "enumerate": true,
	"zip": true, "isinstance": true, "super": true, "type": true,
	"Exception": true, "ValueError": true, "TypeError": true, "KeyError": true,
	// JS/TS
	"console": true, "undefined": true, "null": true, "Math": true, "JSON": true,
	"Object": true, "Array": true, "Number": true, "Promise": true, "Error": true,
	"this": true,
}

// externalReads collects identifiers read but not owned by the function.
// Call targets are excluded: a qualified call's package segment is not state.
func externalReads(body *sitter.Node, source []byte, lang Language, scope *scopeTable) []string {
	seen := make(map[string]struct{})
	WalkTyped(body, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if nodeType != "identifier" {
			return true
		}
		name := GetNodeText(n, src)
		if name == "" || name == "_" || scope.has(name) || builtinReads[name] {
			return true
		}
		if isCalleePosition(n) || isMemberName(n) {
			return true
		}
		seen[name] = struct{}{}
		return true
	})

	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// isCalleePosition reports whether the identifier is (part of) the function
// expression of a call.
func isCalleePosition(n *sitter.Node) bool {
	cur := n
	for parent := cur.Parent(); parent != nil; parent = cur.Parent() {
		switch parent.Type() {
		case "call_expression", "call", "macro_invocation":
			fn := parent.ChildByFieldName("function")
			if fn == nil {
				fn = parent.ChildByFieldName("macro")
			}
			return fn != nil && containsNode(fn, n)
		case "selector_expression", "field_expression", "member_expression",
			"attribute", "scoped_identifier":
			cur = parent
		default:
			return false
		}
	}
	return false
}

// isMemberName reports whether the identifier is the member side of an
// attribute access (`x` in `obj.x`), which is not an independent read of `x`.
func isMemberName(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	var member *sitter.Node
	switch parent.Type() {
	case "attribute":
		member = parent.ChildByFieldName("attribute")
	case "member_expression":
		member = parent.ChildByFieldName("property")
	case "field_expression":
		member = parent.ChildByFieldName("field")
	}
	return member != nil && member.StartByte() == n.StartByte() && member.EndByte() == n.EndByte()
}

func containsNode(haystack, needle *sitter.Node) bool {
	return needle.StartByte() >= haystack.StartByte() && needle.EndByte() <= haystack.EndByte()
}
