package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"github.com/informatter/solidlang/backend/llvmir"
	"github.com/informatter/solidlang/driver"
	"github.com/informatter/solidlang/lexer"
)

// buildCommand drives compile mode (spec.md §4.6, §5): read and codegen
// every top-level item, then emit a native object file for the host
// target. Exit code 0 on success, 1 on target/file/emission failure
// (spec.md §6).
type buildCommand struct {
	output  string
	printIR bool
}

func (*buildCommand) Name() string     { return "build" }
func (*buildCommand) Synopsis() string { return "compile a source file to a native object file" }
func (*buildCommand) Usage() string {
	return "build [-o <output>] [-IR] <input>\n  Compiles input to a host object file with a C ABI.\n"
}

func (c *buildCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "object file stem (.o appended if absent); defaults to the input's stem")
	f.BoolVar(&c.printIR, "IR", false, "print the final IR module to stderr before exit")
}

func (c *buildCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "build: exactly one input file is required")
		return subcommands.ExitUsageError
	}
	inputPath := f.Arg(0)

	src, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	objPath := c.output
	if objPath == "" {
		objPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	}
	if !strings.HasSuffix(objPath, ".o") {
		objPath += ".o"
	}

	target := llvmir.New("", "", "", os.Stderr)
	d := driver.New(lexer.New(string(src)), target, os.Stderr)

	status := subcommands.ExitSuccess
	if err := d.RunCompile(objPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		status = subcommands.ExitFailure
	}
	if c.printIR {
		fmt.Fprintln(os.Stderr, d.IR())
	}
	return status
}
