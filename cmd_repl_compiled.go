package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"quill/compiler"
	"quill/lexer"
	"quill/macro"
	"quill/object"
	"quill/parser"
	"quill/token"
	"quill/vm"
)

// replCompiledCmd implements the compiled REPL: each line is compiled to
// bytecode and run on the VM, with globals and the symbol table carried
// forward so later lines can see earlier ones' definitions.
type replCompiledCmd struct{}

func (*replCompiledCmd) Name() string     { return "crepl" }
func (*replCompiledCmd) Synopsis() string { return "Start a compiled (bytecode VM) REPL session" }
func (*replCompiledCmd) Usage() string {
	return `crepl:
  Start an interactive REPL session backed by the bytecode compiler and VM.
`
}
func (r *replCompiledCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCompiledCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("Welcome to Quill! (compiled)")

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintln(color.Output, color.RedString("💥 %s", err))
		return subcommands.ExitFailure
	}
	defer rl.Close()

	macroEnv := object.NewEnvironment()

	symbolTable := compiler.NewSymbolTable()
	for i, b := range object.Builtins {
		symbolTable.DefineBuiltin(i, b.Name)
	}
	constants := []object.Object{}
	globals := make([]object.Object, vm.GlobalsSize)

	if log := newLogger(); log != nil {
		log.WithField("session", uuid.New().String()).Info("compiled repl session started")
	}

	var buffer string
	for {
		prompt := ">>> "
		if buffer != "" {
			prompt = "... "
		}
		rl.SetPrompt(prompt)

		line, err := rl.Readline()
		if err != nil {
			return subcommands.ExitSuccess
		}

		if buffer != "" {
			buffer += "\n"
		}
		buffer += line

		tokens, err := lexer.New(buffer).Scan()
		if err != nil {
			fmt.Fprintln(color.Output, color.RedString("%s", err))
			buffer = ""
			continue
		}

		if !isInputReady(tokens) {
			continue
		}

		program, err := parser.New(tokens).ParseProgram()
		if err != nil {
			if allParseErrorsAtEOF(err, tokens[len(tokens)-1]) {
				continue
			}
			fmt.Fprintln(color.Output, color.RedString("%s", err))
			buffer = ""
			continue
		}

		program = macro.DefineMacros(program, macroEnv)
		program = macro.ExpandMacros(program, macroEnv)

		comp := compiler.NewWithState(symbolTable, constants)
		bytecode, err := comp.Compile(program)
		if err != nil {
			fmt.Fprintln(color.Output, color.RedString("%s", err))
			buffer = ""
			continue
		}
		constants = bytecode.Constants

		machine := vm.NewWithGlobalsStore(bytecode, globals)
		machine.Log = newLogger()
		if err := machine.Run(); err != nil {
			fmt.Fprintln(color.Output, color.RedString("%s", err))
			buffer = ""
			continue
		}

		if result := machine.LastPoppedStackElem(); result != nil {
			fmt.Println(result.Inspect())
		}
		buffer = ""
	}
}

// isInputReady reports whether tokens form a syntactically complete
// REPL entry: braces balanced and the last token isn't one that obviously
// expects a continuation (an operator, an opening paren, a keyword that
// introduces a block).
func isInputReady(tokens []token.Token) bool {
	braceBalance := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LCUR:
			braceBalance++
		case token.RCUR:
			braceBalance--
		}
	}

	if braceBalance > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}

	switch last.TokenType {
	case token.ASSIGN,
		token.ADD,
		token.SUB,
		token.MULT,
		token.DIV,
		token.BANG,
		token.EQUAL_EQUAL,
		token.NOT_EQUAL,
		token.LESS,
		token.LARGER,
		token.LOGICAL_AND,
		token.LOGICAL_OR,
		token.BIT_AND,
		token.BIT_OR,
		token.COMMA,
		token.COLON,
		token.LPA,
		token.LBRACKET,
		token.LCUR,
		token.IF,
		token.ELSE,
		token.FUNC,
		token.RETURN,
		token.LET,
		token.MACRO:
		return false
	}

	return true
}

// lastNonEOF returns the last non-EOF token, or nil if there isn't one.
func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].TokenType != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}

// allParseErrorsAtEOF reports whether every syntax error in err occurred at
// the EOF token's position, meaning the user simply hasn't finished typing.
func allParseErrorsAtEOF(err error, eof token.Token) bool {
	merr, ok := err.(*multierror.Error)
	if !ok {
		return false
	}
	if len(merr.Errors) == 0 {
		return false
	}
	for _, sub := range merr.Errors {
		syntaxErr, ok := sub.(parser.SyntaxError)
		if !ok {
			return false
		}
		if syntaxErr.Line != eof.Line || syntaxErr.Column != eof.Column {
			return false
		}
	}
	return true
}
