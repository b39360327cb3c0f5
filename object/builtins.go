package object

import "fmt"

// Builtins lists the native callables in their fixed, spec-mandated order:
// the compiler's symbol table resolves built-in names against this slice's
// index, so OpGetBuiltin's operand is stable across compilations. The
// tree-walking evaluator looks them up by name (GetBuiltinByName).
var Builtins = []struct {
	Name    string
	Builtin *Builtin
}{
	{
		"len",
		&Builtin{Name: "len", Fn: func(args ...Object) Object {
			if len(args) != 1 {
				return newError("wrong number of arguments. got=%d, want=1", len(args))
			}
			switch arg := args[0].(type) {
			case *String:
				return &Integer{Value: int64(len(arg.Value))}
			case *Array:
				return &Integer{Value: int64(len(arg.Elements))}
			default:
				return newError("argument to `len` not supported, got %s", args[0].Type())
			}
		}},
	},
	{
		"puts",
		&Builtin{Name: "puts", Fn: func(args ...Object) Object {
			for _, arg := range args {
				fmt.Println(arg.Inspect())
			}
			return nil
		}},
	},
	{
		"first",
		&Builtin{Name: "first", Fn: func(args ...Object) Object {
			if len(args) != 1 {
				return newError("wrong number of arguments. got=%d, want=1", len(args))
			}
			arr, ok := args[0].(*Array)
			if !ok {
				return newError("argument to `first` must be ARRAY, got %s", args[0].Type())
			}
			if len(arr.Elements) > 0 {
				return arr.Elements[0]
			}
			return nil
		}},
	},
	{
		"last",
		&Builtin{Name: "last", Fn: func(args ...Object) Object {
			if len(args) != 1 {
				return newError("wrong number of arguments. got=%d, want=1", len(args))
			}
			arr, ok := args[0].(*Array)
			if !ok {
				return newError("argument to `last` must be ARRAY, got %s", args[0].Type())
			}
			if n := len(arr.Elements); n > 0 {
				return arr.Elements[n-1]
			}
			return nil
		}},
	},
	{
		"rest",
		&Builtin{Name: "rest", Fn: func(args ...Object) Object {
			if len(args) != 1 {
				return newError("wrong number of arguments. got=%d, want=1", len(args))
			}
			arr, ok := args[0].(*Array)
			if !ok {
				return newError("argument to `rest` must be ARRAY, got %s", args[0].Type())
			}
			if n := len(arr.Elements); n > 0 {
				tail := make([]Object, n-1)
				copy(tail, arr.Elements[1:n])
				return &Array{Elements: tail}
			}
			return nil
		}},
	},
	{
		"push",
		&Builtin{Name: "push", Fn: func(args ...Object) Object {
			if len(args) != 2 {
				return newError("wrong number of arguments. got=%d, want=2", len(args))
			}
			arr, ok := args[0].(*Array)
			if !ok {
				return newError("argument to `push` must be ARRAY, got %s", args[0].Type())
			}
			n := len(arr.Elements)
			newElements := make([]Object, n+1)
			copy(newElements, arr.Elements)
			newElements[n] = args[1]
			return &Array{Elements: newElements}
		}},
	},
}

func newError(format string, a ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

// GetBuiltinByName returns the builtin registered under name, or nil.
func GetBuiltinByName(name string) *Builtin {
	for _, b := range Builtins {
		if b.Name == name {
			return b.Builtin
		}
	}
	return nil
}
