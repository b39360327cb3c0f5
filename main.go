package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// trace, when set via the -trace global flag, turns on debug-level tracing:
// function call/return in the evaluator and per-instruction dispatch in the
// VM. The compiler does not log.
var trace = flag.Bool("trace", false, "enable instruction/scope trace logging")

func newLogger() *logrus.Logger {
	if !*trace {
		return nil
	}
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&runCompiledCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&replCompiledCmd{}, "")
	subcommands.Register(&disasmCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
