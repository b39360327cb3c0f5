// Package macro implements the two-pass hygienic macro system described by
// the language: macro definitions are stripped out of the program before
// evaluation or compilation ever sees them, then every remaining call to a
// defined macro is expanded inline by evaluating the macro body with its
// arguments passed in as unevaluated, Quote-wrapped AST.
package macro

import (
	"quill/ast"
	"quill/evaluator"
	"quill/object"
)

// DefineMacros scans program's top-level statements for `let NAME =
// macro(...) {...};` bindings, removes each one from the program, and
// records NAME -> *object.Macro in env. Returns the program with macro
// definitions stripped.
func DefineMacros(program ast.Program, env *object.Environment) ast.Program {
	var definitions []int

	for i, stmt := range program.Statements {
		if isMacroDefinition(stmt) {
			addMacro(stmt, env)
			definitions = append(definitions, i)
		}
	}

	for i := len(definitions) - 1; i >= 0; i-- {
		idx := definitions[i]
		program.Statements = append(program.Statements[:idx], program.Statements[idx+1:]...)
	}

	return program
}

func isMacroDefinition(node ast.Statement) bool {
	letStmt, ok := node.(ast.LetStatement)
	if !ok {
		return false
	}
	_, ok = letStmt.Value.(ast.MacroLit)
	return ok
}

func addMacro(stmt ast.Statement, env *object.Environment) {
	letStmt := stmt.(ast.LetStatement)
	macroLit := letStmt.Value.(ast.MacroLit)

	macro := &object.Macro{
		Parameters: macroLit.Parameters,
		Body:       macroLit.Body,
		Env:        env,
	}

	env.Set(letStmt.Name.Value, macro)
}

// ExpandMacros traverses program replacing every call to a macro bound in
// env with the AST produced by evaluating that macro's body.
func ExpandMacros(program ast.Program, env *object.Environment) ast.Program {
	expanded := evaluator.Modify(program, func(node ast.Node) ast.Node {
		call, ok := node.(ast.CallExpr)
		if !ok {
			return node
		}

		macro, ok := isMacroCall(call, env)
		if !ok {
			return node
		}

		args := quoteArgs(call)
		evalEnv := extendMacroEnv(macro, args)

		result := (evaluator.New()).Eval(wrapBodyAsProgram(macro.Body), evalEnv)

		quote, ok := result.(*object.Quote)
		if !ok {
			panic("we only support returning AST-nodes from macros")
		}

		return quote.Node
	})

	return expanded.(ast.Program)
}

func wrapBodyAsProgram(body ast.BlockStmt) ast.Program {
	return ast.Program{Statements: body.Statements}
}

func isMacroCall(call ast.CallExpr, env *object.Environment) (*object.Macro, bool) {
	ident, ok := call.Callee.(ast.Identifier)
	if !ok {
		return nil, false
	}
	obj, ok := env.Get(ident.Value)
	if !ok {
		return nil, false
	}
	macro, ok := obj.(*object.Macro)
	return macro, ok
}

func quoteArgs(call ast.CallExpr) []*object.Quote {
	args := make([]*object.Quote, 0, len(call.Argument))
	for _, a := range call.Argument {
		args = append(args, &object.Quote{Node: a})
	}
	return args
}

func extendMacroEnv(macro *object.Macro, args []*object.Quote) *object.Environment {
	extended := object.NewEnclosedEnvironment(macro.Env)
	for i, param := range macro.Parameters {
		extended.Set(param.Value, args[i])
	}
	return extended
}
