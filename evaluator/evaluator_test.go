package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quill/lexer"
	"quill/object"
	"quill/parser"
)

func testEval(t *testing.T, input string) object.Object {
	t.Helper()
	toks, err := lexer.New(input).Scan()
	require.NoError(t, err)
	program, err := parser.New(toks).ParseProgram()
	require.NoError(t, err)
	env := object.NewEnvironment()
	return New().Eval(program, env)
}

func requireInteger(t *testing.T, obj object.Object, want int64) {
	t.Helper()
	intObj, ok := obj.(*object.Integer)
	require.True(t, ok, "expected *object.Integer, got %T (%+v)", obj, obj)
	require.Equal(t, want, intObj.Value)
}

func requireBoolean(t *testing.T, obj object.Object, want bool) {
	t.Helper()
	boolObj, ok := obj.(*object.Boolean)
	require.True(t, ok, "expected *object.Boolean, got %T (%+v)", obj, obj)
	require.Equal(t, want, boolObj.Value)
}

func TestEvalIntegerExpression(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"5", 5},
		{"10", 10},
		{"-5", -5},
		{"5 + 5 + 5 + 5 - 10", 10},
		{"2 * 2 * 2 * 2 * 2", 32},
		{"5 * 2 + 10", 20},
		{"5 + 2 * 10", 25},
		{"5/2*2+10", 14},
		{"(5 + 10 * 2 + 15 / 3) * 2 + -10", 50},
	}
	for _, tt := range tests {
		requireInteger(t, testEval(t, tt.input), tt.want)
	}
}

func TestEvalBooleanExpression(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"true", true},
		{"false", false},
		{"1 < 2", true},
		{"1 > 2", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{"true == true", true},
		{"true && false", false},
		{"true || false", true},
	}
	for _, tt := range tests {
		requireBoolean(t, testEval(t, tt.input), tt.want)
	}
}

func TestBangOperator(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"!true", false},
		{"!false", true},
		{"!5", false},
		{"!!true", true},
		{"!0", true},
		{"!!0", false},
	}
	for _, tt := range tests {
		requireBoolean(t, testEval(t, tt.input), tt.want)
	}
}

func TestIfElseExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  interface{}
	}{
		{"if (true) { 10 }", int64(10)},
		{"if (false) { 10 }", nil},
		{"if (1) { 10 }", int64(10)},
		{"if (1 < 2) { 10 } else { 20 }", int64(10)},
		{"if (1 > 2) { 10 } else { 20 }", int64(20)},
	}
	for _, tt := range tests {
		result := testEval(t, tt.input)
		if tt.want == nil {
			require.Equal(t, NULL, result)
			continue
		}
		requireInteger(t, result, tt.want.(int64))
	}
}

func TestReturnStatements(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"return 10;", 10},
		{"return 2 * 5; 9;", 10},
		{"9; return 2 * 5; 9;", 10},
		{"if (10 > 1) { if (10 > 1) { return 10; } return 1; }", 10},
	}
	for _, tt := range tests {
		requireInteger(t, testEval(t, tt.input), tt.want)
	}
}

func TestErrorHandling(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"5 + true;", "type mismatch: INTEGER + BOOLEAN"},
		{"5 + true; 5;", "type mismatch: INTEGER + BOOLEAN"},
		{"-true", "unknown operator: -BOOLEAN"},
		{"true + false;", "unknown operator: BOOLEAN + BOOLEAN"},
		{"5; true + false; 5", "unknown operator: BOOLEAN + BOOLEAN"},
		{"if (10 > 1) { true + false; }", "unknown operator: BOOLEAN + BOOLEAN"},
		{"foobar", "identifier not found: foobar"},
		{`"Hello" - "World"`, "unknown operator: STRING - STRING"},
	}
	for _, tt := range tests {
		errObj, ok := testEval(t, tt.input).(*object.Error)
		require.True(t, ok, "input %q: no error object returned", tt.input)
		require.Equal(t, tt.want, errObj.Message)
	}
}

func TestLetStatements(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"let a = 5; a;", 5},
		{"let a = 5 * 5; a;", 25},
		{"let a = 5; let b = a; b;", 5},
		{"let a = 5; let b = a; let c = a + b + 5; c;", 15},
	}
	for _, tt := range tests {
		requireInteger(t, testEval(t, tt.input), tt.want)
	}
}

func TestFunctionApplication(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"let identity = fn(x) { x; }; identity(5);", 5},
		{"let identity = fn(x) { return x; }; identity(5);", 5},
		{"let double = fn(x) { x * 2; }; double(5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5, 5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5 + 5, add(5, 5));", 20},
		{"fn(x) { x; }(5)", 5},
	}
	for _, tt := range tests {
		requireInteger(t, testEval(t, tt.input), tt.want)
	}
}

func TestClosures(t *testing.T) {
	input := `
	let newAdder = fn(x) {
		fn(y) { x + y };
	};
	let addTwo = newAdder(2);
	addTwo(3);
	`
	requireInteger(t, testEval(t, input), 5)
}

func TestStringConcatenation(t *testing.T) {
	result := testEval(t, `"Hello" + " " + "World!"`)
	strObj, ok := result.(*object.String)
	require.True(t, ok)
	require.Equal(t, "Hello World!", strObj.Value)
}

func TestBuiltinFunctions(t *testing.T) {
	requireInteger(t, testEval(t, `len("")`), 0)
	requireInteger(t, testEval(t, `len("four")`), 4)

	errObj, ok := testEval(t, `len(1)`).(*object.Error)
	require.True(t, ok)
	require.Equal(t, "argument to `len` not supported, got INTEGER", errObj.Message)
}

func TestArrayLiterals(t *testing.T) {
	result := testEval(t, "[1, 2 * 2, 3 + 3]")
	arr, ok := result.(*object.Array)
	require.True(t, ok)
	require.Len(t, arr.Elements, 3)
	requireInteger(t, arr.Elements[0], 1)
	requireInteger(t, arr.Elements[1], 4)
	requireInteger(t, arr.Elements[2], 6)
}

func TestArrayIndexExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  interface{}
	}{
		{"[1, 2, 3][0]", int64(1)},
		{"[1, 2, 3][1]", int64(2)},
		{"[1, 2, 3][2]", int64(3)},
		{"let i = 0; [1][i];", int64(1)},
		{"[1, 2, 3][3]", nil},
		{"[1, 2, 3][-1]", nil},
	}
	for _, tt := range tests {
		result := testEval(t, tt.input)
		if tt.want == nil {
			require.Equal(t, NULL, result)
			continue
		}
		requireInteger(t, result, tt.want.(int64))
	}
}

func TestHashLiterals(t *testing.T) {
	input := `let two = "two";
	{
		"one": 10 - 9,
		two: 1 + 1,
		"thr" + "ee": 6 / 2,
		4: 4,
		true: 5,
		false: 6
	}`
	result := testEval(t, input)
	hash, ok := result.(*object.Hash)
	require.True(t, ok)

	expected := map[object.HashKey]int64{
		(&object.String{Value: "one"}).HashKey():   1,
		(&object.String{Value: "two"}).HashKey():   2,
		(&object.String{Value: "three"}).HashKey(): 3,
		(&object.Integer{Value: 4}).HashKey():      4,
		TRUE.HashKey():                             5,
		FALSE.HashKey():                            6,
	}
	require.Len(t, hash.Pairs, len(expected))
	for key, want := range expected {
		pair, ok := hash.Pairs[key]
		require.True(t, ok)
		requireInteger(t, pair.Value, want)
	}
}

func TestHashIndexExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  interface{}
	}{
		{`{"foo": 5}["foo"]`, int64(5)},
		{`{"foo": 5}["bar"]`, nil},
		{`let key = "foo"; {"foo": 5}[key]`, int64(5)},
		{`{}["foo"]`, nil},
		{`{5: 5}[5]`, int64(5)},
		{`{true: 5}[true]`, int64(5)},
		{`{false: 5}[false]`, int64(5)},
	}
	for _, tt := range tests {
		result := testEval(t, tt.input)
		if tt.want == nil {
			require.Equal(t, NULL, result)
			continue
		}
		requireInteger(t, result, tt.want.(int64))
	}
}
