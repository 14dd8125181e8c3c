package llvmir

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// toolchain shells out to the real LLVM command-line tools for the parts
// llir/llvm itself doesn't do: structural verification is folded into
// opt's own pass pipeline, per-function optimization runs as a single
// whole-module `opt` invocation, and object emission runs through `llc`.
// This is the "fixed backend, external collaborator" framing of spec.md
// §1 taken literally: SolidLang never reimplements LLVM, it drives it.
type toolchain struct {
	opt string
	lli string
	llc string
}

func newToolchain(optPath, lliPath, llcPath string) *toolchain {
	if optPath == "" {
		optPath = "opt"
	}
	if lliPath == "" {
		lliPath = "lli"
	}
	if llcPath == "" {
		llcPath = "llc"
	}
	return &toolchain{opt: optPath, lli: lliPath, llc: llcPath}
}

// optimizePipeline matches the original tutorial's per-function pass
// order (spec.md §4.5): promote allocas to registers first, then the
// usual instruction-combining/CSE/control-flow cleanup.
const optimizePipeline = "mem2reg,instcombine,reassociate,gvn,simplifycfg"

func (t *toolchain) optimize(irText string) (string, error) {
	out, err := t.run(t.opt, []string{"-S", "-passes=" + optimizePipeline, "-o", "-", "-"}, irText)
	if err != nil {
		return "", fmt.Errorf("💥 backend error: opt: %w", err)
	}
	return out, nil
}

func (t *toolchain) emitObject(irText, path string) error {
	cmd := exec.Command(t.llc, "-filetype=obj", "-o", path, "-")
	cmd.Stdin = strings.NewReader(irText)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("💥 backend error: llc: %w: %s", err, stderr.String())
	}
	return nil
}

var llcDefaultTargetRe = regexp.MustCompile(`Default target:\s*(\S+)`)

// hostTargetInfo asks llc for the triple it would target by default.
// llc infers a default data layout for a bare -mtriple, so leaving
// DataLayout unset on the module is safe for both EmitObject and the
// JIT path below.
func (t *toolchain) hostTargetInfo() (triple, dataLayout string, err error) {
	out, err := t.run(t.llc, []string{"--version"}, "")
	if err != nil {
		return "", "", fmt.Errorf("💥 backend error: llc --version: %w", err)
	}
	m := llcDefaultTargetRe.FindStringSubmatch(out)
	if m == nil {
		return "", "", fmt.Errorf("💥 backend error: could not determine host target triple from llc --version")
	}
	return m[1], "", nil
}

// invokeMain links modules (already-optimized module text, in submission
// order) against the host runtime (below) and a synthetic `main` that
// calls name with no arguments, then interprets the whole thing with
// `lli`. Repeated identical `declare`/`target` directives across
// concatenated modules are tolerated by LLVM's textual parser, so naive
// concatenation is enough — there is deliberately no cross-module linker
// step here.
//
// The anonymous thunk's return value and the running program's own
// visible output (spec.md §6's `printd`/`putchard`) are kept on separate
// streams rather than scraped out of one shared one: `main` prints the
// result to its stdout (captured and parsed below), while printd/putchard
// write directly to fd 2 (stderr), which this method streams to
// nativeOutput live as the child produces it — matching the concrete scenario spec.md
// §8.1 describes ("stderr contains `42.000000` followed by `Evaluated to
// 0.000000`") and never silently dropping a native call's output.
func (t *toolchain) invokeMain(modules []string, name string, nativeOutput io.Writer) (float64, error) {
	var combined strings.Builder
	combined.WriteString(runtimeIR)
	for _, m := range modules {
		combined.WriteString(m)
		combined.WriteString("\n")
	}
	combined.WriteString(mainWrapperIR(name))

	cmd := exec.Command(t.lli, "-")
	cmd.Stdin = strings.NewReader(combined.String())
	var resultOut bytes.Buffer
	cmd.Stdout = &resultOut
	cmd.Stderr = nativeOutput
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("💥 backend error: lli: %w", err)
	}
	var result float64
	if _, err := fmt.Sscanf(strings.TrimSpace(resultOut.String()), "%g", &result); err != nil {
		return 0, fmt.Errorf("💥 backend error: could not parse lli result %q: %w", resultOut.String(), err)
	}
	return result, nil
}

// runtimeIR supplies the two standard host functions spec.md §6 names:
// putchard writes (char)x to stderr and returns 0.0; printd prints x in
// %f format to stderr. The original tutorial resolves these against real
// functions compiled into the same host process the JIT lives in; `lli`
// has no such process to fall back on, so SolidLang defines them once,
// here, as real IR linked into every JIT invocation — built on the
// portable write(2)/snprintf syscalls rather than referencing libc's
// `stderr` FILE* global directly, whose symbol name and layout aren't
// stable across platforms. A `native putchard`/`native printd`
// declaration in user source still renders as a bare `declare` (see
// backend/llvmir/target.go's DeclareFunction) — LLVM's parser treats
// that as a forward reference to the definition below, exactly as it
// would within a single module.
const runtimeIR = `declare i32 @snprintf(i8*, i64, i8*, ...)
declare i64 @write(i32, i8*, i64)

@.solidlang.printd.fmt = private unnamed_addr constant [4 x i8] c"%f\0A\00"

define double @printd(double %x) {
entry:
  %buf = alloca [32 x i8]
  %bufp = getelementptr [32 x i8], [32 x i8]* %buf, i32 0, i32 0
  %fmtp = getelementptr [4 x i8], [4 x i8]* @.solidlang.printd.fmt, i32 0, i32 0
  %n = call i32 (i8*, i64, i8*, ...) @snprintf(i8* %bufp, i64 32, i8* %fmtp, double %x)
  %n64 = sext i32 %n to i64
  %written = call i64 @write(i32 2, i8* %bufp, i64 %n64)
  ret double 0.0
}

define double @putchard(double %x) {
entry:
  %buf = alloca i8
  %ci = fptosi double %x to i32
  %c8 = trunc i32 %ci to i8
  store i8 %c8, i8* %buf
  %written = call i64 @write(i32 2, i8* %buf, i64 1)
  ret double 0.0
}

`

// mainWrapperIR's result goes to stdout via plain @printf, which nothing
// else in runtimeIR touches — printd/putchard write to fd 2, so this
// value never shares a stream with native program output.
func mainWrapperIR(name string) string {
	return fmt.Sprintf(`declare i32 @printf(i8*, ...)

@.solidlang.result.fmt = private unnamed_addr constant [4 x i8] c"%%f\0A\00"

define i32 @main() {
entry:
  %%r = call double @%s()
  %%fmt = getelementptr [4 x i8], [4 x i8]* @.solidlang.result.fmt, i32 0, i32 0
  %%ignored = call i32 (i8*, ...) @printf(i8* %%fmt, double %%r)
  ret i32 0
}
`, name)
}

func (t *toolchain) run(bin string, args []string, stdin string) (string, error) {
	cmd := exec.Command(bin, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	} else {
		cmd.Stdin = os.Stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}
