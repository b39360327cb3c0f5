package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"

	"quill/ast"
)

// astPrinter implements both ast visitor interfaces and builds a
// JSON-friendly representation of the AST using maps and slices. Each
// Visit method returns a value that can be marshaled directly.
type astPrinter struct{}

func (p astPrinter) VisitLetStatement(node ast.LetStatement) any {
	return map[string]any{
		"type":  "LetStatement",
		"name":  node.Name.Value,
		"value": nilOrAcceptExpr(node.Value, p),
	}
}

func (p astPrinter) VisitReturnStatement(node ast.ReturnStatement) any {
	return map[string]any{
		"type":  "ReturnStatement",
		"value": nilOrAcceptExpr(node.Value, p),
	}
}

func (p astPrinter) VisitExpressionStmt(node ast.ExpressionStmt) any {
	return map[string]any{
		"type":       "ExpressionStmt",
		"expression": nilOrAcceptExpr(node.Expression, p),
	}
}

func (p astPrinter) VisitBlockStmt(node ast.BlockStmt) any {
	stmts := make([]any, 0, len(node.Statements))
	for _, s := range node.Statements {
		stmts = append(stmts, s.Accept(p))
	}
	return map[string]any{
		"type":       "BlockStmt",
		"statements": stmts,
	}
}

func (p astPrinter) VisitIdentifier(node ast.Identifier) any {
	return map[string]any{"type": "Identifier", "value": node.Value}
}

func (p astPrinter) VisitIntegerLit(node ast.IntegerLit) any {
	return map[string]any{"type": "IntegerLit", "value": node.Value}
}

func (p astPrinter) VisitStringLit(node ast.StringLit) any {
	return map[string]any{"type": "StringLit", "value": node.Value}
}

func (p astPrinter) VisitBooleanLit(node ast.BooleanLit) any {
	return map[string]any{"type": "BooleanLit", "value": node.Value}
}

func (p astPrinter) VisitPrefixExpr(node ast.PrefixExpr) any {
	return map[string]any{
		"type":     "PrefixExpr",
		"operator": node.Operator,
		"right":    node.Right.Accept(p),
	}
}

func (p astPrinter) VisitInfixExpr(node ast.InfixExpr) any {
	return map[string]any{
		"type":     "InfixExpr",
		"operator": node.Operator,
		"left":     node.Left.Accept(p),
		"right":    node.Right.Accept(p),
	}
}

func (p astPrinter) VisitIfExpr(node ast.IfExpr) any {
	var alt any
	if node.Alternative != nil {
		alt = node.Alternative.Accept(p)
	}
	return map[string]any{
		"type":        "IfExpr",
		"condition":   node.Condition.Accept(p),
		"consequence": node.Consequence.Accept(p),
		"alternative": alt,
	}
}

func (p astPrinter) VisitFunctionLit(node ast.FunctionLit) any {
	params := make([]any, 0, len(node.Parameters))
	for _, param := range node.Parameters {
		params = append(params, param.Accept(p))
	}
	return map[string]any{
		"type":       "FunctionLit",
		"name":       node.Name,
		"parameters": params,
		"body":       node.Body.Accept(p),
	}
}

func (p astPrinter) VisitCallExpr(node ast.CallExpr) any {
	args := make([]any, 0, len(node.Argument))
	for _, a := range node.Argument {
		args = append(args, a.Accept(p))
	}
	return map[string]any{
		"type":     "CallExpr",
		"callee":   node.Callee.Accept(p),
		"argument": args,
	}
}

func (p astPrinter) VisitArrayLit(node ast.ArrayLit) any {
	elems := make([]any, 0, len(node.Elements))
	for _, e := range node.Elements {
		elems = append(elems, e.Accept(p))
	}
	return map[string]any{"type": "ArrayLit", "elements": elems}
}

func (p astPrinter) VisitHashLit(node ast.HashLit) any {
	pairs := make([]any, 0, len(node.Pairs))
	for _, pair := range node.Pairs {
		pairs = append(pairs, map[string]any{
			"key":   pair.Key.Accept(p),
			"value": pair.Value.Accept(p),
		})
	}
	return map[string]any{"type": "HashLit", "pairs": pairs}
}

func (p astPrinter) VisitIndexExpr(node ast.IndexExpr) any {
	return map[string]any{
		"type":   "IndexExpr",
		"target": node.Target.Accept(p),
		"index":  node.Index.Accept(p),
	}
}

func (p astPrinter) VisitMacroLit(node ast.MacroLit) any {
	params := make([]any, 0, len(node.Parameters))
	for _, param := range node.Parameters {
		params = append(params, param.Accept(p))
	}
	return map[string]any{
		"type":       "MacroLit",
		"parameters": params,
		"body":       node.Body.Accept(p),
	}
}

func nilOrAcceptExpr(expr ast.Expression, p ast.ExpressionVisitor) any {
	if expr == nil {
		return nil
	}
	return expr.Accept(p)
}

// PrintASTJSON renders program as a prettified JSON dump, printed in yellow
// to standard output, returning the raw JSON string as well.
func PrintASTJSON(program ast.Program) (string, error) {
	printer := astPrinter{}
	out := make([]any, 0, len(program.Statements))
	for _, s := range program.Statements {
		out = append(out, s.Accept(printer))
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}

	jsonStr := string(raw)
	yellow := color.New(color.FgYellow)
	yellow.Println("----- AST JSON -----")
	yellow.Println(jsonStr)
	yellow.Println("-----")
	fmt.Println()
	return jsonStr, nil
}

// WriteASTJSONToFile writes program's AST JSON dump to path.
func WriteASTJSONToFile(program ast.Program, path string) error {
	s, err := PrintASTJSON(program)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write([]byte(s)); err != nil {
		return fmt.Errorf("error writing AST to file: %w", err)
	}
	return nil
}
