package compiler

import "fmt"

// SemanticError is a compile-time error rooted in the program's meaning
// (undefined name, unknown operator) rather than its syntax.
type SemanticError struct {
	Message string
}

func (e SemanticError) Error() string {
	return fmt.Sprintf("💥 SemanticError: %s", e.Message)
}

// DeveloperError signals a compiler-internal invariant violation — never
// expected to surface from well-formed input, only from a compiler bug.
type DeveloperError struct {
	Message string
}

func (e DeveloperError) Error() string {
	return fmt.Sprintf("🤖 DeveloperError: %s", e.Message)
}
