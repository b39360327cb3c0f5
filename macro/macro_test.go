package macro

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quill/ast"
	"quill/lexer"
	"quill/object"
	"quill/parser"
)

func parseProgram(t *testing.T, input string) ast.Program {
	t.Helper()
	toks, err := lexer.New(input).Scan()
	require.NoError(t, err)
	program, err := parser.New(toks).ParseProgram()
	require.NoError(t, err)
	return program
}

func TestDefineMacrosStripsDefinitionsFromProgram(t *testing.T) {
	input := `
	let number = 1;
	let function = fn(x, y) { x + y };
	let myMacro = macro(x, y) { x + y; };
	`
	program := parseProgram(t, input)
	env := object.NewEnvironment()

	program = DefineMacros(program, env)

	require.Len(t, program.Statements, 2)
	_, ok := env.Get("number")
	require.False(t, ok)
	_, ok = env.Get("function")
	require.False(t, ok)

	obj, ok := env.Get("myMacro")
	require.True(t, ok)
	macro, ok := obj.(*object.Macro)
	require.True(t, ok)
	require.Len(t, macro.Parameters, 2)
	require.Equal(t, "x", macro.Parameters[0].String())
	require.Equal(t, "y", macro.Parameters[1].String())
	require.Equal(t, "{(x + y)}", macro.Body.String())
}

func TestExpandMacrosSimpleReplacement(t *testing.T) {
	input := `
	let infixExpression = macro() { quote(1 + 2); };
	infixExpression();
	`
	program := parseProgram(t, input)
	expected := parseProgram(t, "(1 + 2)")

	env := object.NewEnvironment()
	program = DefineMacros(program, env)
	expanded := ExpandMacros(program, env)

	require.Equal(t, expected.String(), expanded.String())
}

func TestExpandMacrosWithArgumentBinding(t *testing.T) {
	input := `
	let reverse = macro(a, b) { quote(unquote(b) - unquote(a)); };
	reverse(2 + 2, 10 - 5);
	`
	program := parseProgram(t, input)
	expected := parseProgram(t, "(10 - 5) - (2 + 2)")

	env := object.NewEnvironment()
	program = DefineMacros(program, env)
	expanded := ExpandMacros(program, env)

	require.Equal(t, expected.String(), expanded.String())
}
