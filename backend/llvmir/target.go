// Package llvmir is the one concrete backend.Target: it builds LLVM IR
// in-process with github.com/llir/llvm (a pure-Go IR construction
// library with no built-in verifier, optimizer, JIT or object emitter)
// and shells out to the real LLVM toolchain binaries (opt, lli, llc) for
// everything llir/llvm doesn't provide (spec.md §4.5, §1 "fixed
// backend").
package llvmir

import (
	"fmt"
	"io"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/informatter/solidlang/backend"
)

// double is the only scalar type SolidLang values ever take — spec.md §3
// has exactly one numeric type.
var double = types.Double

// Target adapts llir/llvm plus the external opt/lli/llc binaries to
// backend.Target. It owns exactly one *ir.Module at a time; Reset swaps
// in a fresh one after a JIT submission, mirroring the teacher's
// per-translation-unit module rotation.
type Target struct {
	mod  *ir.Module
	jit  *jitSession
	tc   *toolchain
	insp *ir.Block // current insertion point
}

// New creates a Target with a fresh module and a toolchain bound to the
// given opt/lli/llc binary names (pass "" for each to use $PATH
// defaults: "opt", "lli", "llc"). nativeOutput receives whatever a JIT'd
// program writes through printd/putchard (spec.md §6), kept separate
// from the anonymous thunk's own return value (see toolchain.go's
// invokeMain).
func New(optPath, lliPath, llcPath string, nativeOutput io.Writer) *Target {
	t := &Target{
		mod: ir.NewModule(),
		tc:  newToolchain(optPath, lliPath, llcPath),
	}
	t.jit = newJITSession(t.tc, nativeOutput)
	return t
}

func (t *Target) Reset() {
	t.mod = ir.NewModule()
	t.insp = nil
}

func (t *Target) DeclareFunction(name string, paramNames []string) backend.Function {
	if fn, ok := t.LookupFunction(name); ok {
		return fn
	}
	params := make([]*ir.Param, len(paramNames))
	for i, pname := range paramNames {
		params[i] = ir.NewParam(pname, double)
	}
	fn := t.mod.NewFunc(name, double, params...)
	return fn
}

func (t *Target) LookupFunction(name string) (backend.Function, bool) {
	for _, fn := range t.mod.Funcs {
		if fn.Name() == name {
			return fn, true
		}
	}
	return nil, false
}

func (t *Target) EraseFunction(fn backend.Function) {
	f := fn.(*ir.Func)
	funcs := t.mod.Funcs
	for i, candidate := range funcs {
		if candidate == f {
			t.mod.Funcs = append(funcs[:i], funcs[i+1:]...)
			return
		}
	}
}

func (t *Target) String() string { return t.mod.String() }

func (t *Target) EntryBlock(fn backend.Function) backend.Block {
	f := fn.(*ir.Func)
	b := f.NewBlock("entry")
	t.insp = b
	return b
}

func (t *Target) Params(fn backend.Function) []backend.Value {
	f := fn.(*ir.Func)
	out := make([]backend.Value, len(f.Params))
	for i, p := range f.Params {
		out[i] = p
	}
	return out
}

// VerifyAndOptimize performs the structural checks llir/llvm itself can
// express in-process (every block must end in exactly one terminator)
// and defers the real mem2reg/instcombine/reassociate/gvn/simplifycfg
// pipeline to `opt`, run lazily at Submit/EmitObject time against the
// whole module. A per-function failure here is still useful: it catches
// a malformed FunctionDef (spec.md §4.4's "erase on failure" edge case)
// before the function ever reaches the optimizer.
func (t *Target) VerifyAndOptimize(fn backend.Function) error {
	f := fn.(*ir.Func)
	for _, b := range f.Blocks {
		if b.Term == nil {
			return fmt.Errorf("💥 codegen error: block %q in function %q has no terminator", b.Name(), f.Name())
		}
	}
	return nil
}

func (t *Target) NewBlock(fn backend.Function, name string) backend.Block {
	f := fn.(*ir.Func)
	b := f.NewBlock(name)
	return b
}

func (t *Target) SetInsertPoint(b backend.Block) { t.insp = b.(*ir.Block) }

func (t *Target) InsertBlock() backend.Block { return t.insp }

func (t *Target) ConstFloat(v float64) backend.Value {
	return constant.NewFloat(double, v)
}

// AllocaEntry inserts the alloca into fn's entry block (Blocks[0]) rather
// than the current insertion point, so it stays eligible for mem2reg no
// matter how deeply the VarDef/Loop/parameter it backs is nested inside
// conditional or loop bodies (spec.md §4.4; see backend.Target's doc).
func (t *Target) AllocaEntry(fn backend.Function) backend.Value {
	f := fn.(*ir.Func)
	entry := f.Blocks[0]
	return entry.NewAlloca(double)
}

func (t *Target) Load(slot backend.Value) backend.Value {
	return t.insp.NewLoad(double, slot.(value.Value))
}

func (t *Target) Store(v, slot backend.Value) {
	t.insp.NewStore(v.(value.Value), slot.(value.Value))
}

func (t *Target) FAdd(l, r backend.Value) backend.Value {
	return t.insp.NewFAdd(l.(value.Value), r.(value.Value))
}

func (t *Target) FSub(l, r backend.Value) backend.Value {
	return t.insp.NewFSub(l.(value.Value), r.(value.Value))
}

func (t *Target) FMul(l, r backend.Value) backend.Value {
	return t.insp.NewFMul(l.(value.Value), r.(value.Value))
}

// FCmpULT matches the original's "unordered less-than" choice (fcmp ult)
// so that a comparison against NaN yields true rather than false
// (spec.md §4.4 "Binary built-in operators").
func (t *Target) FCmpULT(l, r backend.Value) backend.Value {
	return t.insp.NewFCmp(enum.FPredULT, l.(value.Value), r.(value.Value))
}

// FCmpONE (fcmp one, ordered not-equal) is how irgen coerces a double
// condition to an i1 before branching: If and Loop compare the condition
// against 0.0 with it.
func (t *Target) FCmpONE(l, r backend.Value) backend.Value {
	return t.insp.NewFCmp(enum.FPredONE, l.(value.Value), r.(value.Value))
}

func (t *Target) UIToFP(v backend.Value) backend.Value {
	return t.insp.NewUIToFP(v.(value.Value), double)
}

func (t *Target) Call(fn backend.Function, args []backend.Value) backend.Value {
	f := fn.(*ir.Func)
	vargs := make([]value.Value, len(args))
	for i, a := range args {
		vargs[i] = a.(value.Value)
	}
	return t.insp.NewCall(f, vargs...)
}

func (t *Target) Br(target backend.Block) {
	t.insp.NewBr(target.(*ir.Block))
}

func (t *Target) CondBr(cond backend.Value, then, els backend.Block) {
	t.insp.NewCondBr(cond.(value.Value), then.(*ir.Block), els.(*ir.Block))
}

func (t *Target) Ret(v backend.Value) {
	t.insp.NewRet(v.(value.Value))
}

func (t *Target) Phi(incoming []backend.PhiEdge) backend.Value {
	incs := make([]*ir.Incoming, len(incoming))
	for i, e := range incoming {
		incs[i] = ir.NewIncoming(e.Value.(value.Value), e.Block.(*ir.Block))
	}
	return t.insp.NewPhi(incs...)
}

func (t *Target) SetHostTarget() error {
	triple, layout, err := t.tc.hostTargetInfo()
	if err != nil {
		return err
	}
	t.mod.TargetTriple = triple
	t.mod.DataLayout = layout
	return nil
}

func (t *Target) EmitObject(path string) error {
	optimized, err := t.tc.optimize(t.mod.String())
	if err != nil {
		return err
	}
	return t.tc.emitObject(optimized, path)
}

func (t *Target) Submit() (backend.ResourceTracker, error) {
	optimized, err := t.tc.optimize(t.mod.String())
	if err != nil {
		return nil, err
	}
	return t.jit.submit(optimized)
}

func (t *Target) Lookup(name string, arity int) (backend.FuncPtr, error) {
	return t.jit.lookup(name, arity)
}
