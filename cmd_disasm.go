package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"quill/compiler"
	"quill/lexer"
	"quill/macro"
	"quill/object"
	"quill/parser"
)

// disasmCmd compiles a source file and prints its disassembly, without
// executing it.
type disasmCmd struct {
	dumpAST string
}

func (*disasmCmd) Name() string { return "disasm" }
func (*disasmCmd) Synopsis() string {
	return "Compile a source file and print its bytecode disassembly"
}
func (*disasmCmd) Usage() string {
	return `disasm <file>:
  Compile Quill code to bytecode and print the disassembled instructions,
  without running it.
`
}

func (cmd *disasmCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.dumpAST, "ast", "", "also write the parsed AST as JSON to this file")
}

func (cmd *disasmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if cmd.dumpAST != "" {
		if err := parser.WriteASTJSONToFile(program, cmd.dumpAST); err != nil {
			fmt.Fprintf(os.Stderr, "💥 Failed to write AST: %v\n", err)
			return subcommands.ExitFailure
		}
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

	fmt.Print(bytecode.Instructions.String())

	return subcommands.ExitSuccess
}
