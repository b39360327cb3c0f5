package object

import "fmt"

// CompiledFunction is the bytecode-backed counterpart of Function: a
// contiguous instruction stream plus enough metadata for the VM to reserve
// local-variable stack slots and validate call arity.
type CompiledFunction struct {
	Instructions  []byte
	NumLocals     int
	NumParameters int
}

func (cf *CompiledFunction) Type() ObjectType { return COMPILED_FUNCTION_OBJ }
func (cf *CompiledFunction) Inspect() string {
	return fmt.Sprintf("CompiledFunction[%p]", cf)
}

// Closure pairs a CompiledFunction with the free variables captured from
// its defining scope at the OpClosure site.
type Closure struct {
	Fn   *CompiledFunction
	Free []Object
}

func (c *Closure) Type() ObjectType { return CLOSURE_OBJ }
func (c *Closure) Inspect() string {
	return fmt.Sprintf("Closure[%p]", c)
}
