package parser

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/burden-dev/burden/pkg/ir"
	"github.com/burden-dev/burden/pkg/models"
)

// Extract turns one parsed file into function records. Only outermost
// functions become records; nested closures contribute to the enclosing
// function's metrics instead.
func Extract(result *ParseResult) []ir.FunctionRecord {
	var records []ir.FunctionRecord
	funcTypes := functionNodeTypes(result.Language)

	Walk(result.Tree.RootNode(), result.Source, func(node *sitter.Node, source []byte) bool {
		if !funcTypes[node.Type()] {
			return true
		}
		if rec, ok := extractFunction(node, result); ok {
			records = append(records, rec)
		}
		return false
	})
	return records
}

// ExtractFile parses path and extracts its functions.
func ExtractFile(psr *Parser, path string) ([]ir.FunctionRecord, error) {
	result, err := psr.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Extract(result), nil
}

func functionNodeTypes(lang Language) map[string]bool {
	switch lang {
	case LangGo:
		return map[string]bool{"function_declaration": true, "method_declaration": true}
	case LangRust:
		return map[string]bool{"function_item": true}
	case LangPython:
		return map[string]bool{"function_definition": true}
	case LangTypeScript, LangTSX, LangJavaScript:
		return map[string]bool{
			"function_declaration":           true,
			"method_definition":              true,
			"generator_function_declaration": true,
		}
	default:
		return nil
	}
}

func extractFunction(node *sitter.Node, result *ParseResult) (ir.FunctionRecord, bool) {
	source := result.Source
	lang := result.Language

	bare := GetNodeText(node.ChildByFieldName("name"), source)
	if bare == "" {
		return ir.FunctionRecord{}, false
	}

	rec := ir.FunctionRecord{
		ID: models.FunctionID{
			File: result.Path,
			Name: qualifyName(node, bare, source, lang),
			Line: node.StartPoint().Row + 1,
		},
		EndLine:      node.EndPoint().Row + 1,
		Visibility:   visibility(node, bare, lang),
		ReceiverMode: receiverMode(node, source, lang),
		IsTest:       isTest(result.Path, bare, node, source, lang),
	}
	rec.Lines = int(rec.EndLine - rec.ID.Line + 1)

	body := node.ChildByFieldName("body")
	if body == nil {
		rec.Cyclomatic = 1
		return rec, true
	}

	rec.Cyclomatic = 1 + countDecisionPoints(body, source, lang)
	rec.Cognitive = cognitiveComplexity(body, source, lang)
	rec.MaxNesting = maxNesting(body)
	rec.Calls = extractCalls(body, source, lang)
	rec.Arms = extractArms(body, source, lang)
	rec.Tokens = tokenProfile(body, source, lang)

	scope := newScopeTable(node, source, lang)
	rec.Scope = scope.bindings()
	rec.Mutations = extractMutations(body, source, lang)
	rec.ExternalReads = externalReads(body, source, lang, scope)
	rec.HasIO = hasIO(rec.Calls)
	rec.HasUnsafe = hasUnsafe(body, rec.Calls, lang)
	return rec, true
}

// qualifyName prefixes methods with their receiver or enclosing type so two
// types can share a method name without colliding in the inventory.
func qualifyName(node *sitter.Node, bare string, source []byte, lang Language) string {
	switch lang {
	case LangGo:
		if node.Type() != "method_declaration" {
			return bare
		}
		recv := node.ChildByFieldName("receiver")
		if recv == nil {
			return bare
		}
		if typ := receiverTypeName(recv, source); typ != "" {
			return typ + "." + bare
		}
	case LangRust:
		if impl := ancestorOfType(node, "impl_item"); impl != nil {
			if typ := GetNodeText(impl.ChildByFieldName("type"), source); typ != "" {
				return baseTypeName(typ) + "." + bare
			}
		}
	case LangPython:
		if cls := ancestorOfType(node, "class_definition"); cls != nil {
			if name := GetNodeText(cls.ChildByFieldName("name"), source); name != "" {
				return name + "." + bare
			}
		}
	case LangTypeScript, LangTSX, LangJavaScript:
		if node.Type() != "method_definition" {
			return bare
		}
		if cls := ancestorOfType(node, "class_declaration"); cls != nil {
			if name := GetNodeText(cls.ChildByFieldName("name"), source); name != "" {
				return name + "." + bare
			}
		}
	}
	return bare
}

// receiverTypeName digs the type identifier out of a Go receiver parameter
// list, stripping pointers and type parameters.
func receiverTypeName(recv *sitter.Node, source []byte) string {
	var name string
	Walk(recv, source, func(n *sitter.Node, src []byte) bool {
		if n.Type() == "type_identifier" && name == "" {
			name = GetNodeText(n, src)
			return false
		}
		return true
	})
	return name
}

func baseTypeName(typ string) string {
	typ = strings.TrimLeft(typ, "&*")
	if i := strings.IndexAny(typ, "<["); i > 0 {
		typ = typ[:i]
	}
	return strings.TrimSpace(typ)
}

func ancestorOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Type() == nodeType {
			return cur
		}
	}
	return nil
}

func visibility(node *sitter.Node, bare string, lang Language) ir.Visibility {
	switch lang {
	case LangGo:
		for _, r := range bare {
			if unicode.IsUpper(r) {
				return ir.VisibilityPublic
			}
			return ir.VisibilityPrivate
		}
	case LangRust:
		for i := range int(node.ChildCount()) {
			if node.Child(i).Type() == "visibility_modifier" {
				return ir.VisibilityPublic
			}
		}
		return ir.VisibilityPrivate
	case LangPython:
		if strings.HasPrefix(bare, "_") {
			return ir.VisibilityPrivate
		}
		return ir.VisibilityPublic
	case LangTypeScript, LangTSX, LangJavaScript:
		if ancestorOfType(node, "export_statement") != nil {
			return ir.VisibilityPublic
		}
		return ir.VisibilityPrivate
	}
	return ir.VisibilityUnknown
}

func receiverMode(node *sitter.Node, source []byte, lang Language) ir.ReceiverMode {
	switch lang {
	case LangGo:
		if node.Type() != "method_declaration" {
			return ir.ReceiverNone
		}
		recv := node.ChildByFieldName("receiver")
		if recv != nil && strings.Contains(GetNodeText(recv, source), "*") {
			return ir.ReceiverMutRef
		}
		return ir.ReceiverValue
	case LangRust:
		params := node.ChildByFieldName("parameters")
		if params == nil {
			return ir.ReceiverNone
		}
		for i := range int(params.ChildCount()) {
			child := params.Child(i)
			if child.Type() != "self_parameter" {
				continue
			}
			text := GetNodeText(child, source)
			switch {
			case strings.Contains(text, "&mut"):
				return ir.ReceiverMutRef
			case strings.HasPrefix(text, "&"):
				return ir.ReceiverRef
			default:
				return ir.ReceiverValue
			}
		}
		return ir.ReceiverNone
	case LangPython:
		params := node.ChildByFieldName("parameters")
		if params == nil {
			return ir.ReceiverNone
		}
		for i := range int(params.ChildCount()) {
			child := params.Child(i)
			if child.Type() == "identifier" {
				switch GetNodeText(child, source) {
				case "self", "cls":
					// Reference semantics: field writes escape.
					return ir.ReceiverMutRef
				}
				return ir.ReceiverNone
			}
		}
		return ir.ReceiverNone
	case LangTypeScript, LangTSX, LangJavaScript:
		if node.Type() == "method_definition" {
			return ir.ReceiverMutRef
		}
		return ir.ReceiverNone
	}
	return ir.ReceiverNone
}

func isTest(path, bare string, node *sitter.Node, source []byte, lang Language) bool {
	switch lang {
	case LangGo:
		if !strings.HasSuffix(path, "_test.go") {
			return false
		}
		for _, prefix := range []string{"Test", "Benchmark", "Fuzz", "Example"} {
			if strings.HasPrefix(bare, prefix) {
				return true
			}
		}
	case LangRust:
		for sib := node.PrevNamedSibling(); sib != nil; sib = sib.PrevNamedSibling() {
			if sib.Type() != "attribute_item" {
				break
			}
			if strings.Contains(GetNodeText(sib, source), "test") {
				return true
			}
		}
	case LangPython:
		base := strings.ToLower(bare)
		return strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test")
	}
	return false
}
