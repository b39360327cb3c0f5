// Package evaluator implements the tree-walking pipeline: recursive
// dispatch over the ast package's visitor interfaces against an
// object.Environment, producing object.Object values directly.
package evaluator

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"quill/ast"
	"quill/object"
)

var (
	NULL  = &object.Null{}
	TRUE  = &object.Boolean{Value: true}
	FALSE = &object.Boolean{Value: false}
)

// Evaluator walks an AST against an Environment, implementing both
// ast.ExpressionVisitor and ast.StatementVisitor.
type Evaluator struct {
	Log *logrus.Logger
}

func New() *Evaluator {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return &Evaluator{Log: log}
}

// Eval evaluates a Program's top-level statements in order, unwrapping the
// trailing ReturnValue (if any) so callers see the plain value.
func (e *Evaluator) Eval(program ast.Program, env *object.Environment) object.Object {
	var result object.Object = NULL
	for _, stmt := range program.Statements {
		result = e.evalStatement(stmt, env)
		switch result := result.(type) {
		case *object.ReturnValue:
			return result.Value
		case *object.Error:
			return result
		}
	}
	return result
}

func (e *Evaluator) evalStatement(stmt ast.Statement, env *object.Environment) object.Object {
	v := &statementVisitor{e: e, env: env}
	return stmt.Accept(v).(object.Object)
}

func (e *Evaluator) evalExpression(expr ast.Expression, env *object.Environment) object.Object {
	v := &expressionVisitor{e: e, env: env}
	return expr.Accept(v).(object.Object)
}

type statementVisitor struct {
	e   *Evaluator
	env *object.Environment
}

func (v *statementVisitor) VisitLetStatement(node ast.LetStatement) any {
	val := v.e.evalExpression(node.Value, v.env)
	if isError(val) {
		return val
	}
	v.env.Set(node.Name.Value, val)
	return object.Object(NULL)
}

func (v *statementVisitor) VisitReturnStatement(node ast.ReturnStatement) any {
	val := v.e.evalExpression(node.Value, v.env)
	if isError(val) {
		return val
	}
	return object.Object(&object.ReturnValue{Value: val})
}

func (v *statementVisitor) VisitExpressionStmt(node ast.ExpressionStmt) any {
	return v.e.evalExpression(node.Expression, v.env)
}

// VisitBlockStmt evaluates statements in source order without unwrapping
// ReturnValue/Error, so an enclosing Program or function call can observe
// and propagate the unwinding signal.
func (v *statementVisitor) VisitBlockStmt(node ast.BlockStmt) any {
	var result object.Object = NULL
	for _, stmt := range node.Statements {
		result = v.e.evalStatement(stmt, v.env)
		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}
	return result
}

type expressionVisitor struct {
	e   *Evaluator
	env *object.Environment
}

func (v *expressionVisitor) VisitIdentifier(node ast.Identifier) any {
	if val, ok := v.env.Get(node.Value); ok {
		return val
	}
	if builtin := object.GetBuiltinByName(node.Value); builtin != nil {
		return object.Object(builtin)
	}
	return object.Object(newError("identifier not found: " + node.Value))
}

func (v *expressionVisitor) VisitIntegerLit(node ast.IntegerLit) any {
	return object.Object(&object.Integer{Value: node.Value})
}

func (v *expressionVisitor) VisitStringLit(node ast.StringLit) any {
	return object.Object(&object.String{Value: node.Value})
}

func (v *expressionVisitor) VisitBooleanLit(node ast.BooleanLit) any {
	return object.Object(nativeBoolToBooleanObject(node.Value))
}

func (v *expressionVisitor) VisitPrefixExpr(node ast.PrefixExpr) any {
	right := v.e.evalExpression(node.Right, v.env)
	if isError(right) {
		return right
	}
	return object.Object(evalPrefixExpression(node.Operator, right))
}

func (v *expressionVisitor) VisitInfixExpr(node ast.InfixExpr) any {
	left := v.e.evalExpression(node.Left, v.env)
	if isError(left) {
		return left
	}
	right := v.e.evalExpression(node.Right, v.env)
	if isError(right) {
		return right
	}
	return object.Object(evalInfixExpression(node.Operator, left, right))
}

func (v *expressionVisitor) VisitIfExpr(node ast.IfExpr) any {
	condition := v.e.evalExpression(node.Condition, v.env)
	if isError(condition) {
		return condition
	}
	if isTruthy(condition) {
		return v.e.evalStatement(node.Consequence, v.env)
	} else if node.Alternative != nil {
		return v.e.evalStatement(*node.Alternative, v.env)
	}
	return object.Object(NULL)
}

func (v *expressionVisitor) VisitFunctionLit(node ast.FunctionLit) any {
	return object.Object(&object.Function{
		Parameters: node.Parameters,
		Body:       node.Body,
		Env:        v.env,
	})
}

func (v *expressionVisitor) VisitCallExpr(node ast.CallExpr) any {
	if node.Callee.TokenLiteral() == "quote" {
		return object.Object(quote(node.Argument[0], v.env))
	}

	callee := v.e.evalExpression(node.Callee, v.env)
	if isError(callee) {
		return callee
	}

	args := v.e.evalExpressions(node.Argument, v.env)
	if len(args) == 1 && isError(args[0]) {
		return args[0]
	}

	return object.Object(v.e.applyFunction(callee, args))
}

func (e *Evaluator) evalExpressions(exprs []ast.Expression, env *object.Environment) []object.Object {
	var result []object.Object
	for _, expr := range exprs {
		evaluated := e.evalExpression(expr, env)
		if isError(evaluated) {
			return []object.Object{evaluated}
		}
		result = append(result, evaluated)
	}
	return result
}

func (e *Evaluator) applyFunction(fn object.Object, args []object.Object) object.Object {
	switch fn := fn.(type) {
	case *object.Function:
		if e.Log != nil {
			e.Log.WithField("args", len(args)).Debug("call")
		}
		extendedEnv := extendFunctionEnv(fn, args)
		evaluated := e.evalStatement(fn.Body, extendedEnv)
		result := unwrapReturnValue(evaluated)
		if e.Log != nil {
			e.Log.WithField("result", result.Inspect()).Debug("return")
		}
		return result
	case *object.Builtin:
		if result := fn.Fn(args...); result != nil {
			return result
		}
		return NULL
	default:
		return newError("not a function: %s", fn.Type())
	}
}

func extendFunctionEnv(fn *object.Function, args []object.Object) *object.Environment {
	env := object.NewEnclosedEnvironment(fn.Env)
	for i, param := range fn.Parameters {
		if i < len(args) {
			env.Set(param.Value, args[i])
		}
	}
	return env
}

func unwrapReturnValue(obj object.Object) object.Object {
	if returnValue, ok := obj.(*object.ReturnValue); ok {
		return returnValue.Value
	}
	return obj
}

func (v *expressionVisitor) VisitArrayLit(node ast.ArrayLit) any {
	elements := v.e.evalExpressions(node.Elements, v.env)
	if len(elements) == 1 && isError(elements[0]) {
		return elements[0]
	}
	return object.Object(&object.Array{Elements: elements})
}

func (v *expressionVisitor) VisitHashLit(node ast.HashLit) any {
	pairs := make(map[object.HashKey]object.HashPair)
	for _, pair := range node.Pairs {
		key := v.e.evalExpression(pair.Key, v.env)
		if isError(key) {
			return key
		}
		hashable, ok := key.(object.Hashable)
		if !ok {
			return object.Object(newError("unusable as hash key: %s", key.Type()))
		}
		value := v.e.evalExpression(pair.Value, v.env)
		if isError(value) {
			return value
		}
		pairs[hashable.HashKey()] = object.HashPair{Key: key, Value: value}
	}
	return object.Object(&object.Hash{Pairs: pairs})
}

func (v *expressionVisitor) VisitIndexExpr(node ast.IndexExpr) any {
	target := v.e.evalExpression(node.Target, v.env)
	if isError(target) {
		return target
	}
	index := v.e.evalExpression(node.Index, v.env)
	if isError(index) {
		return index
	}
	return object.Object(evalIndexExpression(target, index))
}

func (v *expressionVisitor) VisitMacroLit(node ast.MacroLit) any {
	return object.Object(newError("macro literal reached the evaluator: macros must be expanded first"))
}

func evalIndexExpression(target, index object.Object) object.Object {
	switch {
	case target.Type() == object.ARRAY_OBJ && index.Type() == object.INTEGER_OBJ:
		return evalArrayIndexExpression(target.(*object.Array), index.(*object.Integer))
	case target.Type() == object.HASH_OBJ:
		return evalHashIndexExpression(target.(*object.Hash), index)
	default:
		return newError("index operator not supported: %s", target.Type())
	}
}

func evalArrayIndexExpression(array *object.Array, index *object.Integer) object.Object {
	idx := index.Value
	max := int64(len(array.Elements) - 1)
	if idx < 0 || idx > max {
		return NULL
	}
	return array.Elements[idx]
}

func evalHashIndexExpression(hash *object.Hash, index object.Object) object.Object {
	key, ok := index.(object.Hashable)
	if !ok {
		return newError("unusable as hash key: %s", index.Type())
	}
	pair, ok := hash.Pairs[key.HashKey()]
	if !ok {
		return NULL
	}
	return pair.Value
}

// evalBangOperatorExpression implements §4.E's `!` truthiness table, which
// is deliberately narrower than isTruthy: only Null, Boolean, and the
// integer literal 0 have a defined negation; any other Integer is falsy
// under `!` specifically (anything else -> false).
func evalBangOperatorExpression(right object.Object) object.Object {
	switch right := right.(type) {
	case *object.Null:
		return TRUE
	case *object.Boolean:
		return nativeBoolToBooleanObject(!right.Value)
	case *object.Integer:
		return nativeBoolToBooleanObject(right.Value == 0)
	default:
		return FALSE
	}
}

func evalPrefixExpression(operator string, right object.Object) object.Object {
	switch operator {
	case "!":
		return evalBangOperatorExpression(right)
	case "-":
		if right.Type() != object.INTEGER_OBJ {
			return newError("unknown operator: -%s", right.Type())
		}
		return &object.Integer{Value: -right.(*object.Integer).Value}
	default:
		return newError("unknown operator: %s%s", operator, right.Type())
	}
}

func evalInfixExpression(operator string, left, right object.Object) object.Object {
	switch {
	case left.Type() == object.INTEGER_OBJ && right.Type() == object.INTEGER_OBJ:
		return evalIntegerInfixExpression(operator, left.(*object.Integer), right.(*object.Integer))
	case left.Type() == object.BOOLEAN_OBJ && right.Type() == object.BOOLEAN_OBJ:
		return evalBooleanInfixExpression(operator, left.(*object.Boolean), right.(*object.Boolean))
	case left.Type() == object.STRING_OBJ && right.Type() == object.STRING_OBJ:
		return evalStringInfixExpression(operator, left.(*object.String), right.(*object.String))
	case operator == "==":
		return nativeBoolToBooleanObject(left == right)
	case operator == "!=":
		return nativeBoolToBooleanObject(left != right)
	case left.Type() != right.Type():
		return newError("type mismatch: %s %s %s", left.Type(), operator, right.Type())
	default:
		return newError("unknown operator: %s %s %s", left.Type(), operator, right.Type())
	}
}

// evalIntegerInfixExpression implements §4.O's integer-division rule:
// truncating i64 division, not floating division, so `5/2*2+10`
// evaluates to 14 (5/2 is 2).
func evalIntegerInfixExpression(operator string, left, right *object.Integer) object.Object {
	l, r := left.Value, right.Value
	switch operator {
	case "+":
		return &object.Integer{Value: l + r}
	case "-":
		return &object.Integer{Value: l - r}
	case "*":
		return &object.Integer{Value: l * r}
	case "/":
		return &object.Integer{Value: l / r}
	case "<":
		return nativeBoolToBooleanObject(l < r)
	case ">":
		return nativeBoolToBooleanObject(l > r)
	case "==":
		return nativeBoolToBooleanObject(l == r)
	case "!=":
		return nativeBoolToBooleanObject(l != r)
	default:
		return newError("unknown operator: %s %s %s", left.Type(), operator, right.Type())
	}
}

func evalBooleanInfixExpression(operator string, left, right *object.Boolean) object.Object {
	switch operator {
	case "&&":
		return nativeBoolToBooleanObject(left.Value && right.Value)
	case "||":
		return nativeBoolToBooleanObject(left.Value || right.Value)
	case "==":
		return nativeBoolToBooleanObject(left.Value == right.Value)
	case "!=":
		return nativeBoolToBooleanObject(left.Value != right.Value)
	default:
		return newError("unknown operator: %s %s %s", left.Type(), operator, right.Type())
	}
}

func evalStringInfixExpression(operator string, left, right *object.String) object.Object {
	if operator != "+" {
		return newError("unknown operator: %s %s %s", left.Type(), operator, right.Type())
	}
	return &object.String{Value: left.Value + right.Value}
}

// isTruthy is the conditional-context truthiness used by If and mirrored by
// the VM's OpJumpNotTruthy: only Null and the literal Boolean(false) are
// falsy, everything else (including Integer(0)) is truthy.
func isTruthy(obj object.Object) bool {
	switch obj := obj.(type) {
	case *object.Null:
		return false
	case *object.Boolean:
		return obj.Value
	default:
		return true
	}
}

func nativeBoolToBooleanObject(input bool) *object.Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func newError(format string, a ...interface{}) *object.Error {
	return &object.Error{Message: fmt.Sprintf(format, a...)}
}

func isError(obj object.Object) bool {
	if obj != nil {
		return obj.Type() == object.ERROR_OBJ
	}
	return false
}
