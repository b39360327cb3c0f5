package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"quill/evaluator"
	"quill/lexer"
	"quill/macro"
	"quill/object"
	"quill/parser"
)

// runCmd tree-walks a source file directly through the evaluator.
type runCmd struct{}

func (*runCmd) Name() string { return "run" }
func (*runCmd) Synopsis() string {
	return "Execute Quill code from a source file with the tree-walking evaluator"
}
func (*runCmd) Usage() string {
	return `run <file>:
  Execute Quill code by walking its AST directly, without compiling to bytecode.
`
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	tokens, err := lexer.New(string(data)).Scan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lexing error: %v\n", err)
		return subcommands.ExitFailure
	}

	program, err := parser.New(tokens).ParseProgram()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	env := object.NewEnvironment()
	macroEnv := object.NewEnvironment()

	program = macro.DefineMacros(program, macroEnv)
	program = macro.ExpandMacros(program, macroEnv)

	eval := evaluator.New()
	eval.Log = newLogger()

	result := eval.Eval(program, env)
	if errObj, ok := result.(*object.Error); ok {
		fmt.Fprintln(os.Stderr, errObj.Message)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
