package evaluator

import "quill/ast"

// ModifierFunc is applied to every node of an AST, post-order (children
// before parents), and may return a replacement node.
type ModifierFunc func(ast.Node) ast.Node

// Modify walks node's entire tree bottom-up, rebuilding each composite node
// from its (possibly replaced) children before handing the node itself to
// modifier. It covers every statement and expression kind in the ast
// package, since quote/unquote must be able to reach an unquote(...) call
// nested anywhere in a quoted expression.
func Modify(node ast.Node, modifier ModifierFunc) ast.Node {
	switch node := node.(type) {
	case ast.Program:
		for i, stmt := range node.Statements {
			node.Statements[i] = Modify(stmt, modifier).(ast.Statement)
		}
		return modifier(node)

	case ast.ExpressionStmt:
		node.Expression = Modify(node.Expression, modifier).(ast.Expression)
		return modifier(node)

	case ast.BlockStmt:
		for i, stmt := range node.Statements {
			node.Statements[i] = Modify(stmt, modifier).(ast.Statement)
		}
		return modifier(node)

	case ast.ReturnStatement:
		if node.Value != nil {
			node.Value = Modify(node.Value, modifier).(ast.Expression)
		}
		return modifier(node)

	case ast.LetStatement:
		if node.Value != nil {
			node.Value = Modify(node.Value, modifier).(ast.Expression)
		}
		return modifier(node)

	case ast.InfixExpr:
		node.Left = Modify(node.Left, modifier).(ast.Expression)
		node.Right = Modify(node.Right, modifier).(ast.Expression)
		return modifier(node)

	case ast.PrefixExpr:
		node.Right = Modify(node.Right, modifier).(ast.Expression)
		return modifier(node)

	case ast.IndexExpr:
		node.Target = Modify(node.Target, modifier).(ast.Expression)
		node.Index = Modify(node.Index, modifier).(ast.Expression)
		return modifier(node)

	case ast.IfExpr:
		node.Condition = Modify(node.Condition, modifier).(ast.Expression)
		node.Consequence = Modify(node.Consequence, modifier).(ast.BlockStmt)
		if node.Alternative != nil {
			alt := Modify(*node.Alternative, modifier).(ast.BlockStmt)
			node.Alternative = &alt
		}
		return modifier(node)

	case ast.FunctionLit:
		for i, param := range node.Parameters {
			node.Parameters[i] = Modify(param, modifier).(ast.Identifier)
		}
		node.Body = Modify(node.Body, modifier).(ast.BlockStmt)
		return modifier(node)

	case ast.ArrayLit:
		for i, el := range node.Elements {
			node.Elements[i] = Modify(el, modifier).(ast.Expression)
		}
		return modifier(node)

	case ast.HashLit:
		newPairs := make([]ast.HashPair, len(node.Pairs))
		for i, pair := range node.Pairs {
			newPairs[i] = ast.HashPair{
				Key:   Modify(pair.Key, modifier).(ast.Expression),
				Value: Modify(pair.Value, modifier).(ast.Expression),
			}
		}
		node.Pairs = newPairs
		return modifier(node)

	case ast.CallExpr:
		node.Callee = Modify(node.Callee, modifier).(ast.Expression)
		for i, arg := range node.Argument {
			node.Argument[i] = Modify(arg, modifier).(ast.Expression)
		}
		return modifier(node)

	default:
		return modifier(node)
	}
}
