// Package driver orchestrates the read → parse → codegen → {JIT | emit}
// loop spec.md §4.6 specifies. It is the programmatic entry point the
// cmd layer's thin CLI wraps; every decision about what a given
// top-level item does lives here, not in cmd.
package driver

import (
	"fmt"
	"io"
	"strings"

	"github.com/informatter/solidlang/ast"
	"github.com/informatter/solidlang/backend"
	"github.com/informatter/solidlang/irgen"
	"github.com/informatter/solidlang/lexer"
	"github.com/informatter/solidlang/parser"
	"github.com/informatter/solidlang/token"
)

// Driver ties a Parser (itself pulling from a Lexer), an IR Generator
// and a backend.Target together. REPL mode and compile mode share parsing
// and codegen; they diverge only in what happens to a completed module,
// so each gets its own top-level method instead of branching a shared
// loop on a mode flag throughout.
type Driver struct {
	parser *parser.Parser
	gen    *irgen.Generator
	target backend.Target
	diag   io.Writer

	// irLog accumulates each module's text just before a Reset discards
	// it, so -IR has something to show in REPL mode, where every
	// definition and evaluated expression gets its own short-lived
	// module (see defineAndSubmit, evaluateTopLevel). Compile mode never
	// resets mid-run, so IR() falls back to the live module there.
	irLog strings.Builder
}

// New creates a Driver reading from src and emitting into target.
// Diagnostics — REPL prompts, "Evaluated to" lines, parse/codegen error
// text — are written to diag, typically os.Stderr (spec.md §6).
func New(src *lexer.Lexer, target backend.Target, diag io.Writer) *Driver {
	return &Driver{
		parser: parser.New(src),
		gen:    irgen.New(target),
		target: target,
		diag:   diag,
	}
}

// IR renders the module's IR text, for the `-IR` flag. In compile mode
// the live module holds every definition seen so far and irLog stays
// empty, since compile mode never resets mid-run. In REPL mode the live
// module is emptied by a Reset after each top-level item, so IR is the
// accumulated log of everything submitted during the session, plus
// whatever (if anything) is still live when the loop exits.
func (d *Driver) IR() string {
	if d.irLog.Len() == 0 {
		return d.target.String()
	}
	return d.irLog.String() + d.target.String()
}

// snapshotBeforeReset records the current module's text into irLog right
// before a Reset discards it.
func (d *Driver) snapshotBeforeReset() {
	d.irLog.WriteString(d.target.String())
	d.irLog.WriteString("\n")
}

// RunREPL drives the interactive loop until EOF (spec.md §4.6): it
// prints "ready> " before each top-level item, dispatches on the item's
// kind, and for a bare expression submits it to the JIT, invokes it,
// prints its result, then tears the submission back down.
func (d *Driver) RunREPL() {
	for {
		fmt.Fprint(d.diag, "ready> ")
		cur := d.parser.Current()
		switch {
		case cur.Kind == token.EOF:
			return
		case cur.Kind == token.Char && cur.Char == ';':
			d.parser.Advance()
		case cur.Kind == token.Keyword && (cur.Keyword == token.FUNC || cur.Keyword == token.OPERATOR):
			d.defineAndSubmit()
		case cur.Kind == token.Keyword && cur.Keyword == token.NATIVE:
			d.declareNative()
		default:
			d.evaluateTopLevel()
		}
	}
}

func (d *Driver) defineAndSubmit() {
	def, err := d.parser.ParseFunctionDefinition()
	if err != nil {
		d.reportParseError(err)
		return
	}
	if _, ok := d.codegenDef(def); !ok {
		return
	}
	if _, err := d.target.Submit(); err != nil {
		d.reportHostError(err)
		return
	}
	// Start a fresh translation unit: later definitions resolve earlier
	// ones through the JIT's own symbol table, not this module's
	// in-memory function list (spec.md §4.6).
	d.snapshotBeforeReset()
	d.target.Reset()
}

// declareNative codegens the prototype immediately and registers it in
// the function cache (spec.md §4.6 "native declaration"), via the same
// VisitFunctionDecl path any FunctionDecl node takes.
func (d *Driver) declareNative() {
	decl, err := d.parser.ParseNative()
	if err != nil {
		d.reportParseError(err)
		return
	}
	decl.Accept(d.gen)
}

func (d *Driver) evaluateTopLevel() {
	def, err := d.parser.ParseTopLevelExpression()
	if err != nil {
		d.reportParseError(err)
		return
	}
	if _, ok := d.codegenDef(def); !ok {
		return
	}

	tracker, err := d.target.Submit()
	if err != nil {
		d.reportHostError(err)
		return
	}
	defer func() {
		_ = tracker.Remove()
		d.snapshotBeforeReset()
		d.target.Reset()
	}()

	fnPtr, err := d.target.Lookup(ast.AnonymousTopLevelExpr, 0)
	if err != nil {
		d.reportHostError(err)
		return
	}
	thunk, ok := fnPtr.(func() (float64, error))
	if !ok {
		d.reportHostError(fmt.Errorf("💥 backend error: unexpected JIT function pointer shape"))
		return
	}
	result, err := thunk()
	if err != nil {
		d.reportHostError(err)
		return
	}
	fmt.Fprintf(d.diag, "Evaluated to %f\n", result)
}

// RunCompile reads and codegens every top-level item with no JIT
// submission; once the input is exhausted it retargets the module at the
// host triple and emits a native object file at objPath (spec.md §4.6,
// §5). A non-nil return is fatal — the cmd layer turns it into exit code
// 1.
func (d *Driver) RunCompile(objPath string) error {
	for {
		cur := d.parser.Current()
		switch {
		case cur.Kind == token.EOF:
			if err := d.target.SetHostTarget(); err != nil {
				return err
			}
			return d.target.EmitObject(objPath)

		case cur.Kind == token.Char && cur.Char == ';':
			d.parser.Advance()

		case cur.Kind == token.Keyword && (cur.Keyword == token.FUNC || cur.Keyword == token.OPERATOR):
			def, err := d.parser.ParseFunctionDefinition()
			if err != nil {
				d.reportParseError(err)
				continue
			}
			d.codegenDef(def)

		case cur.Kind == token.Keyword && cur.Keyword == token.NATIVE:
			d.declareNative()

		default:
			// A bare expression still codegens in compile mode, into a
			// function named ast.AnonymousTopLevelExpr, but its value is
			// never observed: there is no JIT to invoke it against.
			def, err := d.parser.ParseTopLevelExpression()
			if err != nil {
				d.reportParseError(err)
				continue
			}
			d.codegenDef(def)
		}
	}
}

func (d *Driver) codegenDef(def ast.FunctionDef) (backend.Function, bool) {
	res := def.Accept(d.gen)
	if err := d.gen.Err(); err != nil {
		fmt.Fprintf(d.diag, "%s\n", err)
		return nil, false
	}
	fn, _ := res.(backend.Function)
	return fn, true
}

func (d *Driver) reportParseError(err error) {
	fmt.Fprintf(d.diag, "%s\n", err)
	d.parser.Advance()
}

func (d *Driver) reportHostError(err error) {
	fmt.Fprintf(d.diag, "%s\n", err)
}
