package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/google/subcommands"
	"github.com/google/uuid"

	"quill/evaluator"
	"quill/lexer"
	"quill/macro"
	"quill/object"
	"quill/parser"
)

// replCmd implements the tree-walking REPL.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start a tree-walking REPL session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive tree-walking REPL session.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("Welcome to Quill!")

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintln(color.Output, color.RedString("💥 %s", err))
		return subcommands.ExitFailure
	}
	defer rl.Close()

	env := object.NewEnvironment()
	macroEnv := object.NewEnvironment()
	eval := evaluator.New()
	eval.Log = newLogger()

	sessionID := uuid.New().String()
	if eval.Log != nil {
		eval.Log.WithField("session", sessionID).Info("repl session started")
	}

	for {
		line, err := rl.Readline()
		if err != nil {
			return subcommands.ExitSuccess
		}

		tokens, err := lexer.New(line).Scan()
		if err != nil {
			fmt.Fprintln(color.Output, color.RedString("%s", err))
			continue
		}

		program, err := parser.New(tokens).ParseProgram()
		if err != nil {
			fmt.Fprintln(color.Output, color.RedString("%s", err))
			continue
		}

		program = macro.DefineMacros(program, macroEnv)
		program = macro.ExpandMacros(program, macroEnv)

		result := eval.Eval(program, env)
		if result != nil {
			fmt.Println(result.Inspect())
		}
	}
}
