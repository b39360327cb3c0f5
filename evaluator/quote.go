package evaluator

import (
	"strconv"

	"quill/ast"
	"quill/object"
	"quill/token"
)

// quote implements the `quote` builtin form: it returns node wrapped as an
// object.Quote, after replacing every `unquote(x)` call inside it with the
// AST produced by evaluating x in env and converting the result back to AST.
func quote(node ast.Node, env *object.Environment) *object.Quote {
	node = evalUnquoteCalls(node, env)
	return &object.Quote{Node: node}
}

func evalUnquoteCalls(quoted ast.Node, env *object.Environment) ast.Node {
	ev := New()
	return Modify(quoted, func(node ast.Node) ast.Node {
		call, ok := node.(ast.CallExpr)
		if !ok || !isUnquoteCall(call) || len(call.Argument) != 1 {
			return node
		}
		unquoted := ev.evalExpression(call.Argument[0], env)
		replacement := objectToASTNode(unquoted)
		if replacement == nil {
			return node
		}
		return replacement
	})
}

func isUnquoteCall(call ast.CallExpr) bool {
	ident, ok := call.Callee.(ast.Identifier)
	return ok && ident.Value == "unquote"
}

// objectToASTNode converts an evaluated value back into an AST literal so
// it can be spliced into quoted code. Spec §4.E: "other values yield no
// replacement" — callers keep the original call node when this returns nil.
func objectToASTNode(obj object.Object) ast.Node {
	switch obj := obj.(type) {
	case *object.Integer:
		t := token.New(token.INT, strconv.FormatInt(obj.Value, 10), 0, 0)
		return ast.IntegerLit{Token: t, Value: obj.Value}
	case *object.Boolean:
		tt, lit := token.FALSE, "false"
		if obj.Value {
			tt, lit = token.TRUE, "true"
		}
		return ast.BooleanLit{Token: token.New(tt, lit, 0, 0), Value: obj.Value}
	case *object.Quote:
		return obj.Node
	default:
		return nil
	}
}
