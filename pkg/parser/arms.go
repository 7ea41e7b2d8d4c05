package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/burden-dev/burden/pkg/ir"
)

// extractArms normalizes the body's conditional chains into dispatch arms.
// Match arms, switch cases and same-subject if/else-if ladders all come out
// in the same shape; the complexity analyzer never sees the difference.
func extractArms(body *sitter.Node, source []byte, lang Language) []ir.Arm {
	var arms []ir.Arm
	WalkTyped(body, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case "expression_switch_statement", "type_switch_statement", "switch_statement":
			arms = append(arms, switchArms(n, src)...)
			return false
		case "match_expression":
			arms = append(arms, matchArms(n, src)...)
			return false
		case "match_statement":
			arms = append(arms, pythonMatchArms(n, src)...)
			return false
		case "if_statement":
			// Only the head of a ladder; nested else-if nodes are walked
			// through the chain itself.
			if parent := n.Parent(); parent != nil && parent.Type() == "if_statement" {
				return true
			}
			arms = append(arms, ifChainArms(n, src, lang)...)
			return true
		}
		return true
	})
	return arms
}

func switchArms(switchNode *sitter.Node, source []byte) []ir.Arm {
	subject := subjectText(switchNode.ChildByFieldName("value"), source)
	if subject == "" {
		subject = subjectText(switchNode.ChildByFieldName("condition"), source)
	}
	if subject == "" {
		return nil
	}

	var arms []ir.Arm
	WalkTyped(switchNode, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case "expression_case", "type_case", "switch_case", "default_case":
			arms = append(arms, ir.Arm{
				Subject: subject,
				Kind:    classifyStatements(caseStatements(n), src),
				Line:    n.StartPoint().Row + 1,
			})
			return false
		}
		return true
	})
	return arms
}

// caseStatements returns the statement nodes of a case clause, skipping the
// case expressions themselves.
func caseStatements(caseNode *sitter.Node) []*sitter.Node {
	var stmts []*sitter.Node
	for i := range int(caseNode.NamedChildCount()) {
		child := caseNode.NamedChild(i)
		if isStatementNode(child.Type()) {
			stmts = append(stmts, child)
		}
	}
	return stmts
}

func isStatementNode(nodeType string) bool {
	return strings.HasSuffix(nodeType, "_statement") || nodeType == "block" ||
		nodeType == "statement_block" || nodeType == "short_var_declaration"
}

func matchArms(matchNode *sitter.Node, source []byte) []ir.Arm {
	subject := subjectText(matchNode.ChildByFieldName("value"), source)
	if subject == "" {
		return nil
	}

	var arms []ir.Arm
	WalkTyped(matchNode, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if nodeType != "match_arm" {
			return nodeType == "match_expression" || nodeType == "match_block"
		}
		arms = append(arms, ir.Arm{
			Subject: subject,
			Kind:    classifyExpression(n.ChildByFieldName("value"), src),
			Line:    n.StartPoint().Row + 1,
		})
		return false
	})
	return arms
}

func pythonMatchArms(matchNode *sitter.Node, source []byte) []ir.Arm {
	subject := subjectText(matchNode.ChildByFieldName("subject"), source)
	if subject == "" {
		return nil
	}

	var arms []ir.Arm
	WalkTyped(matchNode, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if nodeType != "case_clause" {
			return true
		}
		arms = append(arms, ir.Arm{
			Subject: subject,
			Kind:    classifyBlock(n.ChildByFieldName("consequence"), src),
			Line:    n.StartPoint().Row + 1,
		})
		return false
	})
	return arms
}

// ifChainArms recognizes if/else-if ladders where every condition is an
// equality test on the same expression. Anything else is not a dispatch
// shape and yields no arms.
func ifChainArms(ifNode *sitter.Node, source []byte, lang Language) []ir.Arm {
	type link struct {
		subject string
		node    *sitter.Node
		body    *sitter.Node
	}
	var chain []link

	cur := ifNode
	for cur != nil {
		subject := equalitySubject(cur.ChildByFieldName("condition"), source)
		chain = append(chain, link{subject: subject, node: cur, body: cur.ChildByFieldName("consequence")})

		if lang == LangPython {
			break
		}
		alt := cur.ChildByFieldName("alternative")
		if alt == nil {
			break
		}
		if alt.Type() == "else_clause" && alt.NamedChildCount() > 0 {
			alt = alt.NamedChild(0)
		}
		if alt.Type() != "if_statement" {
			break
		}
		cur = alt
	}

	if lang == LangPython {
		for i := range int(ifNode.NamedChildCount()) {
			child := ifNode.NamedChild(i)
			if child.Type() != "elif_clause" {
				continue
			}
			chain = append(chain, link{
				subject: equalitySubject(child.ChildByFieldName("condition"), source),
				node:    child,
				body:    child.ChildByFieldName("consequence"),
			})
		}
	}

	if len(chain) < 2 {
		return nil
	}
	subject := chain[0].subject
	if subject == "" {
		return nil
	}
	for _, l := range chain {
		if l.subject != subject {
			return nil
		}
	}

	arms := make([]ir.Arm, 0, len(chain))
	for _, l := range chain {
		arms = append(arms, ir.Arm{
			Subject: subject,
			Kind:    classifyBlock(l.body, source),
			Line:    l.node.StartPoint().Row + 1,
		})
	}
	return arms
}

// equalitySubject returns the left side of an equality comparison, or "".
func equalitySubject(cond *sitter.Node, source []byte) string {
	cond = unwrapParens(cond)
	if cond == nil {
		return ""
	}
	switch cond.Type() {
	case "binary_expression", "comparison_operator":
	default:
		return ""
	}
	switch operatorText(cond, source) {
	case "==", "===":
	default:
		if cond.Type() != "comparison_operator" || !strings.Contains(GetNodeText(cond, source), "==") {
			return ""
		}
	}
	left := cond.ChildByFieldName("left")
	if left == nil && cond.NamedChildCount() > 0 {
		left = cond.NamedChild(0)
	}
	return subjectText(left, source)
}

func unwrapParens(node *sitter.Node) *sitter.Node {
	for node != nil && node.Type() == "parenthesized_expression" {
		if node.NamedChildCount() == 0 {
			return nil
		}
		node = node.NamedChild(0)
	}
	return node
}

func subjectText(node *sitter.Node, source []byte) string {
	return strings.TrimSpace(GetNodeText(unwrapParens(node), source))
}

// classifyStatements classifies an arm body given as a statement list.
func classifyStatements(stmts []*sitter.Node, source []byte) ir.ArmKind {
	if len(stmts) == 0 {
		return ir.ArmLiteral
	}
	// A trailing break is part of the switch shape, not the arm's work.
	if last := stmts[len(stmts)-1]; last.Type() == "break_statement" {
		stmts = stmts[:len(stmts)-1]
	}
	switch len(stmts) {
	case 0:
		return ir.ArmBreak
	case 1:
		return classifyStatement(stmts[0], source)
	default:
		return ir.ArmComplex
	}
}

func classifyBlock(block *sitter.Node, source []byte) ir.ArmKind {
	if block == nil {
		return ir.ArmComplex
	}
	if !isStatementNode(block.Type()) && block.Type() != "block" {
		return classifyExpression(block, source)
	}
	var stmts []*sitter.Node
	for i := range int(block.NamedChildCount()) {
		child := block.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		stmts = append(stmts, child)
	}
	return classifyStatements(stmts, source)
}

func classifyStatement(stmt *sitter.Node, source []byte) ir.ArmKind {
	switch stmt.Type() {
	case "return_statement":
		return ir.ArmReturn
	case "break_statement":
		return ir.ArmBreak
	case "continue_statement":
		return ir.ArmContinue
	case "raise_statement", "throw_statement":
		return ir.ArmErrorPropagation
	case "pass_statement":
		return ir.ArmLiteral
	case "expression_statement":
		if stmt.NamedChildCount() == 0 {
			return ir.ArmLiteral
		}
		return classifyExpression(stmt.NamedChild(0), source)
	case "block", "statement_block":
		return classifyBlock(stmt, source)
	default:
		return ir.ArmComplex
	}
}

// classifyExpression classifies an expression-valued arm body.
func classifyExpression(expr *sitter.Node, source []byte) ir.ArmKind {
	if expr == nil {
		return ir.ArmComplex
	}
	switch expr.Type() {
	case "try_expression":
		return ir.ArmErrorPropagation
	case "return_expression":
		return ir.ArmReturn
	case "break_expression":
		return ir.ArmBreak
	case "continue_expression":
		return ir.ArmContinue
	case "call_expression", "call":
		if strings.HasSuffix(GetNodeText(expr, source), "?") {
			return ir.ArmErrorPropagation
		}
		if isFormatCallee(calleeText(expr, source)) {
			return ir.ArmFormatCall
		}
		return ir.ArmSimpleCall
	case "macro_invocation":
		name := GetNodeText(expr.ChildByFieldName("macro"), source)
		if name == "panic" || name == "unreachable" || name == "todo" || name == "unimplemented" {
			return ir.ArmErrorPropagation
		}
		if isFormatCallee(name) {
			return ir.ArmFormatCall
		}
		return ir.ArmSimpleCall
	case "identifier", "field_expression", "member_expression", "attribute",
		"selector_expression", "unit_expression", "struct_expression",
		"scoped_identifier", "tuple_expression":
		return ir.ArmLiteral
	case "block":
		return classifyBlock(expr, source)
	}
	t := expr.Type()
	if strings.Contains(t, "literal") || strings.Contains(t, "string") ||
		strings.Contains(t, "number") || t == "true" || t == "false" ||
		t == "nil" || t == "none" || t == "integer" || t == "float" {
		return ir.ArmLiteral
	}
	return ir.ArmComplex
}

func isFormatCallee(callee string) bool {
	callee = strings.ToLower(lastSegment(callee))
	for _, marker := range []string{"print", "log", "format", "write", "debug", "info", "warn", "error", "trace"} {
		if strings.Contains(callee, marker) {
			return true
		}
	}
	return false
}
