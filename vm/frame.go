package vm

import (
	"quill/compiler"
	"quill/object"
)

// Frame is a per-call execution record: the closure being run, its
// instruction pointer, and the base pointer marking where its locals begin
// on the value stack.
type Frame struct {
	cl          *object.Closure
	ip          int
	basePointer int
}

func NewFrame(cl *object.Closure, basePointer int) *Frame {
	return &Frame{cl: cl, ip: -1, basePointer: basePointer}
}

func (f *Frame) Instructions() compiler.Instructions {
	return compiler.Instructions(f.cl.Fn.Instructions)
}
