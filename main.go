// Command solidlang is the CLI front end over package driver: a thin
// wrapper that owns flag parsing, file I/O and the concrete
// backend/llvmir.Target, none of which spec.md's core treats as its
// concern (spec.md §1 "external collaborators").
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&replCommand{}, "")
	subcommands.Register(&buildCommand{}, "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
