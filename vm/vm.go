package vm

// Represents a stack based virtual-machine (VM). It is the runtime
// environment where compiled Quill bytecode gets executed.

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"quill/compiler"
	"quill/object"
)

const (
	StackSize   = 2048
	GlobalsSize = 65536
	MaxFrames   = 1024
)

var True = &object.Boolean{Value: true}
var False = &object.Boolean{Value: false}
var Null = &object.Null{}

// VM executes the bytecode produced by compiler.ASTCompiler: a flat value
// stack, a fixed-size globals array, and a stack of call frames.
type VM struct {
	constants []object.Object

	stack []object.Object
	sp    int

	globals []object.Object

	frames      []*Frame
	framesIndex int

	// Log, when set, receives debug-level instruction dispatch traces —
	// left nil in normal operation so Run stays on its fast path.
	Log *logrus.Logger
}

// New creates a VM for a fresh top-level compilation: wraps the program's
// instructions in a CompiledFunction and a Closure with no free variables,
// and pushes the initial frame.
func New(bytecode compiler.Bytecode) *VM {
	mainFn := &object.CompiledFunction{Instructions: []byte(bytecode.Instructions)}
	mainClosure := &object.Closure{Fn: mainFn}
	mainFrame := NewFrame(mainClosure, 0)

	frames := make([]*Frame, MaxFrames)
	frames[0] = mainFrame

	return &VM{
		constants:   bytecode.Constants,
		stack:       make([]object.Object, StackSize),
		sp:          0,
		globals:     make([]object.Object, GlobalsSize),
		frames:      frames,
		framesIndex: 1,
	}
}

// NewWithGlobalsStore wires in a globals array from a prior run, used by
// the REPL so each evaluated line sees globals defined by earlier lines.
func NewWithGlobalsStore(bytecode compiler.Bytecode, s []object.Object) *VM {
	vm := New(bytecode)
	vm.globals = s
	return vm
}

func (vm *VM) currentFrame() *Frame {
	return vm.frames[vm.framesIndex-1]
}

func (vm *VM) pushFrame(f *Frame) error {
	if vm.framesIndex >= MaxFrames {
		return RuntimeError{Message: "frame overflow"}
	}
	vm.frames[vm.framesIndex] = f
	vm.framesIndex++
	return nil
}

func (vm *VM) popFrame() *Frame {
	vm.framesIndex--
	return vm.frames[vm.framesIndex]
}

// LastPoppedStackElem returns stack[sp], the slot just above sp — what the
// last OpPop left behind — used to inspect a program's final result.
func (vm *VM) LastPoppedStackElem() object.Object {
	return vm.stack[vm.sp]
}

func (vm *VM) push(obj object.Object) error {
	if vm.sp >= StackSize {
		return RuntimeError{Message: "Stack Overflow"}
	}
	vm.stack[vm.sp] = obj
	vm.sp++
	return nil
}

func (vm *VM) pop() object.Object {
	obj := vm.stack[vm.sp-1]
	vm.sp--
	return obj
}

// Run executes the bytecode loaded into the VM, fetching and dispatching
// one instruction at a time from the current frame until the outermost
// frame's instruction pointer runs past its instruction stream.
func (vm *VM) Run() error {
	var ip int
	var ins compiler.Instructions
	var op compiler.Opcode

	for vm.currentFrame().ip < len(vm.currentFrame().Instructions())-1 {
		vm.currentFrame().ip++

		ip = vm.currentFrame().ip
		ins = vm.currentFrame().Instructions()
		op = compiler.Opcode(ins[ip])

		if vm.Log != nil {
			if def, err := compiler.Get(op); err == nil {
				vm.Log.WithFields(logrus.Fields{"ip": ip, "sp": vm.sp, "frame": vm.framesIndex - 1}).Debug(def.Name)
			}
		}

		switch op {
		case compiler.OpConstant:
			constIndex := compiler.ReadUint16(ins[ip+1:])
			vm.currentFrame().ip += 2

			if err := vm.push(vm.constants[constIndex]); err != nil {
				return err
			}

		case compiler.OpAdd, compiler.OpSub, compiler.OpMul, compiler.OpDiv:
			if err := vm.executeBinaryOperation(op); err != nil {
				return err
			}

		case compiler.OpPop:
			vm.pop()

		case compiler.OpTrue:
			if err := vm.push(True); err != nil {
				return err
			}

		case compiler.OpFalse:
			if err := vm.push(False); err != nil {
				return err
			}

		case compiler.OpNull:
			if err := vm.push(Null); err != nil {
				return err
			}

		case compiler.OpEqual, compiler.OpNotEqual, compiler.OpGreaterThan:
			if err := vm.executeComparison(op); err != nil {
				return err
			}

		case compiler.OpBang:
			if err := vm.executeBangOperator(); err != nil {
				return err
			}

		case compiler.OpMinus:
			if err := vm.executeMinusOperator(); err != nil {
				return err
			}

		case compiler.OpJump:
			pos := int(compiler.ReadUint16(ins[ip+1:]))
			vm.currentFrame().ip = pos - 1

		case compiler.OpJumpNotTruthy:
			pos := int(compiler.ReadUint16(ins[ip+1:]))
			vm.currentFrame().ip += 2

			condition := vm.pop()
			if !isTruthy(condition) {
				vm.currentFrame().ip = pos - 1
			}

		case compiler.OpSetGlobal:
			globalIndex := compiler.ReadUint16(ins[ip+1:])
			vm.currentFrame().ip += 2
			vm.globals[globalIndex] = vm.pop()

		case compiler.OpGetGlobal:
			globalIndex := compiler.ReadUint16(ins[ip+1:])
			vm.currentFrame().ip += 2
			if err := vm.push(vm.globals[globalIndex]); err != nil {
				return err
			}

		case compiler.OpSetLocal:
			localIndex := compiler.ReadUint8(ins[ip+1:])
			vm.currentFrame().ip += 1
			frame := vm.currentFrame()
			vm.stack[frame.basePointer+int(localIndex)] = vm.pop()

		case compiler.OpGetLocal:
			localIndex := compiler.ReadUint8(ins[ip+1:])
			vm.currentFrame().ip += 1
			frame := vm.currentFrame()
			if err := vm.push(vm.stack[frame.basePointer+int(localIndex)]); err != nil {
				return err
			}

		case compiler.OpGetBuiltin:
			builtinIndex := compiler.ReadUint8(ins[ip+1:])
			vm.currentFrame().ip += 1
			definition := object.Builtins[builtinIndex]
			if err := vm.push(definition.Builtin); err != nil {
				return err
			}

		case compiler.OpArray:
			numElements := int(compiler.ReadUint16(ins[ip+1:]))
			vm.currentFrame().ip += 2

			array := vm.buildArray(vm.sp-numElements, vm.sp)
			vm.sp = vm.sp - numElements

			if err := vm.push(array); err != nil {
				return err
			}

		case compiler.OpHash:
			numElements := int(compiler.ReadUint16(ins[ip+1:]))
			vm.currentFrame().ip += 2

			hash, err := vm.buildHash(vm.sp-numElements, vm.sp)
			if err != nil {
				return err
			}
			vm.sp = vm.sp - numElements

			if err := vm.push(hash); err != nil {
				return err
			}

		case compiler.OpIndex:
			index := vm.pop()
			left := vm.pop()

			if err := vm.executeIndexExpression(left, index); err != nil {
				return err
			}

		case compiler.OpCall:
			numArgs := int(compiler.ReadUint8(ins[ip+1:]))
			vm.currentFrame().ip += 1

			if err := vm.executeCall(numArgs); err != nil {
				return err
			}

		case compiler.OpReturnValue:
			returnValue := vm.pop()

			frame := vm.popFrame()
			vm.sp = frame.basePointer - 1

			if err := vm.push(returnValue); err != nil {
				return err
			}

		case compiler.OpReturn:
			frame := vm.popFrame()
			vm.sp = frame.basePointer - 1

			if err := vm.push(Null); err != nil {
				return err
			}

		case compiler.OpClosure:
			constIndex := compiler.ReadUint16(ins[ip+1:])
			numFree := int(compiler.ReadUint8(ins[ip+3:]))
			vm.currentFrame().ip += 3

			if err := vm.pushClosure(int(constIndex), numFree); err != nil {
				return err
			}

		case compiler.OpGetFree:
			freeIndex := compiler.ReadUint8(ins[ip+1:])
			vm.currentFrame().ip += 1

			currentClosure := vm.currentFrame().cl
			if err := vm.push(currentClosure.Free[freeIndex]); err != nil {
				return err
			}

		default:
			return RuntimeError{Message: fmt.Sprintf("unknown opcode %d", op)}
		}
	}

	return nil
}

func (vm *VM) pushClosure(constIndex, numFree int) error {
	constant := vm.constants[constIndex]
	function, ok := constant.(*object.CompiledFunction)
	if !ok {
		return RuntimeError{Message: fmt.Sprintf("not a function: %+v", constant)}
	}

	free := make([]object.Object, numFree)
	for i := 0; i < numFree; i++ {
		free[i] = vm.stack[vm.sp-numFree+i]
	}
	vm.sp = vm.sp - numFree

	closure := &object.Closure{Fn: function, Free: free}
	return vm.push(closure)
}

func (vm *VM) executeCall(numArgs int) error {
	callee := vm.stack[vm.sp-1-numArgs]

	switch callee := callee.(type) {
	case *object.Closure:
		return vm.callClosure(callee, numArgs)
	case *object.Builtin:
		return vm.callBuiltin(callee, numArgs)
	default:
		return RuntimeError{Message: "calling non-function and non-built-in"}
	}
}

func (vm *VM) callClosure(cl *object.Closure, numArgs int) error {
	if numArgs != cl.Fn.NumParameters {
		return RuntimeError{Message: fmt.Sprintf("wrong number of arguments: want=%d, got=%d", cl.Fn.NumParameters, numArgs)}
	}

	frame := NewFrame(cl, vm.sp-numArgs)
	if err := vm.pushFrame(frame); err != nil {
		return err
	}
	vm.sp = frame.basePointer + cl.Fn.NumLocals

	return nil
}

func (vm *VM) callBuiltin(builtin *object.Builtin, numArgs int) error {
	args := vm.stack[vm.sp-numArgs : vm.sp]

	result := builtin.Fn(args...)
	vm.sp = vm.sp - numArgs - 1

	if result != nil {
		return vm.push(result)
	}
	return vm.push(Null)
}

func (vm *VM) buildArray(startIndex, endIndex int) object.Object {
	elements := make([]object.Object, endIndex-startIndex)
	for i := startIndex; i < endIndex; i++ {
		elements[i-startIndex] = vm.stack[i]
	}
	return &object.Array{Elements: elements}
}

func (vm *VM) buildHash(startIndex, endIndex int) (object.Object, error) {
	hashedPairs := make(map[object.HashKey]object.HashPair)

	for i := startIndex; i < endIndex; i += 2 {
		key := vm.stack[i]
		value := vm.stack[i+1]

		hashKey, ok := key.(object.Hashable)
		if !ok {
			return nil, RuntimeError{Message: fmt.Sprintf("unusable as hash key: %s", key.Type())}
		}

		hashedPairs[hashKey.HashKey()] = object.HashPair{Key: key, Value: value}
	}

	return &object.Hash{Pairs: hashedPairs}, nil
}

func (vm *VM) executeIndexExpression(left, index object.Object) error {
	switch {
	case left.Type() == object.ARRAY_OBJ && index.Type() == object.INTEGER_OBJ:
		return vm.executeArrayIndex(left, index)
	case left.Type() == object.HASH_OBJ:
		return vm.executeHashIndex(left, index)
	default:
		return RuntimeError{Message: fmt.Sprintf("index operator not supported: %s", left.Type())}
	}
}

func (vm *VM) executeArrayIndex(array, index object.Object) error {
	arrayObject := array.(*object.Array)
	i := index.(*object.Integer).Value
	max := int64(len(arrayObject.Elements) - 1)

	if i < 0 || i > max {
		return vm.push(Null)
	}

	return vm.push(arrayObject.Elements[i])
}

func (vm *VM) executeHashIndex(hash, index object.Object) error {
	hashObject := hash.(*object.Hash)

	key, ok := index.(object.Hashable)
	if !ok {
		return RuntimeError{Message: fmt.Sprintf("unusable as hash key: %s", index.Type())}
	}

	pair, ok := hashObject.Pairs[key.HashKey()]
	if !ok {
		return vm.push(Null)
	}

	return vm.push(pair.Value)
}

func (vm *VM) executeBinaryOperation(op compiler.Opcode) error {
	right := vm.pop()
	left := vm.pop()

	leftType := left.Type()
	rightType := right.Type()

	switch {
	case leftType == object.INTEGER_OBJ && rightType == object.INTEGER_OBJ:
		return vm.executeBinaryIntegerOperation(op, left, right)
	case leftType == object.STRING_OBJ && rightType == object.STRING_OBJ:
		return vm.executeBinaryStringOperation(op, left, right)
	default:
		return RuntimeError{Message: fmt.Sprintf("type mismatch: %s %s", leftType, rightType)}
	}
}

func (vm *VM) executeBinaryIntegerOperation(op compiler.Opcode, left, right object.Object) error {
	leftValue := left.(*object.Integer).Value
	rightValue := right.(*object.Integer).Value

	var result int64
	switch op {
	case compiler.OpAdd:
		result = leftValue + rightValue
	case compiler.OpSub:
		result = leftValue - rightValue
	case compiler.OpMul:
		result = leftValue * rightValue
	case compiler.OpDiv:
		result = leftValue / rightValue
	default:
		return RuntimeError{Message: fmt.Sprintf("unknown integer operator: %d", op)}
	}

	return vm.push(&object.Integer{Value: result})
}

func (vm *VM) executeBinaryStringOperation(op compiler.Opcode, left, right object.Object) error {
	if op != compiler.OpAdd {
		return RuntimeError{Message: fmt.Sprintf("unknown string operator: %d", op)}
	}

	leftValue := left.(*object.String).Value
	rightValue := right.(*object.String).Value

	return vm.push(&object.String{Value: leftValue + rightValue})
}

func (vm *VM) executeComparison(op compiler.Opcode) error {
	right := vm.pop()
	left := vm.pop()

	if left.Type() == object.INTEGER_OBJ && right.Type() == object.INTEGER_OBJ {
		return vm.executeIntegerComparison(op, left, right)
	}

	switch op {
	case compiler.OpEqual:
		return vm.push(nativeBoolToBooleanObject(right == left))
	case compiler.OpNotEqual:
		return vm.push(nativeBoolToBooleanObject(right != left))
	default:
		return RuntimeError{Message: fmt.Sprintf("unknown operator: %d (%s %s)", op, left.Type(), right.Type())}
	}
}

func (vm *VM) executeIntegerComparison(op compiler.Opcode, left, right object.Object) error {
	leftValue := left.(*object.Integer).Value
	rightValue := right.(*object.Integer).Value

	switch op {
	case compiler.OpEqual:
		return vm.push(nativeBoolToBooleanObject(rightValue == leftValue))
	case compiler.OpNotEqual:
		return vm.push(nativeBoolToBooleanObject(rightValue != leftValue))
	case compiler.OpGreaterThan:
		return vm.push(nativeBoolToBooleanObject(leftValue > rightValue))
	default:
		return RuntimeError{Message: fmt.Sprintf("unknown operator: %d", op)}
	}
}

// executeBangOperator implements the same `!` truthiness table as the
// tree-walking evaluator: Null and Boolean negate as expected, Integer(0)
// is truthy under `!` specifically (any other Integer is not), and every
// other object type is not.
func (vm *VM) executeBangOperator() error {
	operand := vm.pop()

	switch operand := operand.(type) {
	case *object.Boolean:
		if operand == True {
			return vm.push(False)
		}
		return vm.push(True)
	case *object.Null:
		return vm.push(True)
	case *object.Integer:
		return vm.push(nativeBoolToBooleanObject(operand.Value == 0))
	default:
		return vm.push(False)
	}
}

func (vm *VM) executeMinusOperator() error {
	operand := vm.pop()

	if operand.Type() != object.INTEGER_OBJ {
		return RuntimeError{Message: fmt.Sprintf("unsupported type for negation: %s", operand.Type())}
	}

	value := operand.(*object.Integer).Value
	return vm.push(&object.Integer{Value: -value})
}

func nativeBoolToBooleanObject(input bool) *object.Boolean {
	if input {
		return True
	}
	return False
}

// isTruthy mirrors the compiler's OpJumpNotTruthy contract: only Null and
// literal false are falsy, unlike the tree-walker's bang-operator table.
func isTruthy(obj object.Object) bool {
	switch obj := obj.(type) {
	case *object.Boolean:
		return obj.Value
	case *object.Null:
		return false
	default:
		return true
	}
}
