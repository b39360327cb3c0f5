package parser

import "fmt"

// SyntaxError is a single parse-time diagnostic, attached to the token
// position where the parser gave up making sense of the input.
type SyntaxError struct {
	Line    int32
	Column  int
	Message string
}

func CreateSyntaxError(line int32, column int, message string) SyntaxError {
	return SyntaxError{Line: line, Column: column, Message: message}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("💥 Quill Syntax error:\nline:%d, column:%d - %s", e.Line, e.Column, e.Message)
}
