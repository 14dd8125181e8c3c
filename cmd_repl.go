package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"github.com/informatter/solidlang/backend/llvmir"
	"github.com/informatter/solidlang/driver"
	"github.com/informatter/solidlang/lexer"
)

// replCommand runs the interactive read-eval-print loop (spec.md §4.6,
// §6). It uses readline for line editing and history while the user
// composes input; SolidLang's own "ready> " prompt (printed per
// top-level item, not per line, by package driver) is the one the
// language actually specifies, so readline's own prompt is left blank.
type replCommand struct {
	printIR bool
}

func (*replCommand) Name() string     { return "repl" }
func (*replCommand) Synopsis() string { return "read-eval-print loop over stdin" }
func (*replCommand) Usage() string {
	return "repl [-IR]\n  Reads SolidLang source from stdin, JIT-evaluating each top-level item.\n"
}

func (c *replCommand) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.printIR, "IR", false, "print the final IR module to stderr on exit")
}

func (c *replCommand) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	src := lexer.New("")
	src.SetRefill(func() (string, bool) {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return "", false
		}
		if err != nil {
			return "", false
		}
		return line + "\n", true
	})

	target := llvmir.New("", "", "", os.Stderr)
	d := driver.New(src, target, os.Stderr)
	d.RunREPL()

	if c.printIR {
		fmt.Fprintln(os.Stderr, d.IR())
	}
	return subcommands.ExitSuccess
}
