package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"quill/compiler"
	"quill/lexer"
	"quill/macro"
	"quill/object"
	"quill/parser"
	"quill/vm"
)

// runCompiledCmd compiles a source file to bytecode and runs it on the VM.
type runCompiledCmd struct {
	verbose bool
}

func (*runCompiledCmd) Name() string { return "runc" }
func (*runCompiledCmd) Synopsis() string {
	return "Compile Quill code from a source file and execute it on the bytecode VM"
}
func (*runCompiledCmd) Usage() string {
	return `runc <file>:
  Compile Quill code to bytecode and execute it on the stack VM.
`
}

func (cmd *runCompiledCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.verbose, "v", false, "print a summary of the compiled bytecode's size")
}

func (cmd *runCompiledCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	macroEnv := object.NewEnvironment()
	program = macro.DefineMacros(program, macroEnv)
	program = macro.ExpandMacros(program, macroEnv)

	comp := compiler.New()
	bytecode, err := comp.Compile(program)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if cmd.verbose {
		fmt.Fprintf(os.Stderr, "compiled %s of bytecode, %d constants\n",
			humanize.Bytes(uint64(len(bytecode.Instructions))), len(bytecode.Constants))
	}

	machine := vm.New(bytecode)
	machine.Log = newLogger()

	if err := machine.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
