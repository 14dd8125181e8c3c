package irgen

import "github.com/informatter/solidlang/backend"

// fakeTarget is a minimal in-process stand-in for backend.Target: it
// builds a tiny closure-based interpreter instead of real LLVM IR, so
// irgen's emission logic (scoping, control flow, forward references) can
// be exercised without the opt/lli/llc toolchain backend.llvmir drives.
// It is not a fake of any third-party library — it implements the same
// interface package backend defines, the ordinary Go way to test against
// a seam without its real, expensive implementation.
type fakeTarget struct {
	funcs map[string]*fakeFunc
	cur   *fakeFunc
	block *fakeBlock
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{funcs: map[string]*fakeFunc{}}
}

type frame struct {
	slots     []float64
	args      []float64
	prevBlock *fakeBlock // the block control last branched from, for Phi
}

type fakeValue func(fr *frame) float64

type slotRef struct{ idx int }

type termResult struct {
	isRet bool
	ret   float64
	next  *fakeBlock
}

type fakeBlock struct {
	ops  []func(fr *frame)
	term func(fr *frame) termResult
}

type fakeFunc struct {
	name     string
	params   []string
	numSlots int
	entry    *fakeBlock
	native   func(args []float64) float64
}

func (f *fakeFunc) allocSlot() int {
	idx := f.numSlots
	f.numSlots++
	return idx
}

// Run executes fn with args, following block terminators until a Ret.
func (t *fakeTarget) Run(fn backend.Function, args []float64) (float64, error) {
	f := fn.(*fakeFunc)
	if f.native != nil {
		return f.native(args), nil
	}
	fr := &frame{slots: make([]float64, f.numSlots), args: args}
	b := f.entry
	for {
		for _, op := range b.ops {
			op(fr)
		}
		res := b.term(fr)
		if res.isRet {
			return res.ret, nil
		}
		fr.prevBlock = b
		b = res.next
	}
}

func (t *fakeTarget) DeclareFunction(name string, paramNames []string) backend.Function {
	if fn, ok := t.funcs[name]; ok {
		return fn
	}
	fn := &fakeFunc{name: name, params: paramNames}
	t.funcs[name] = fn
	return fn
}

func (t *fakeTarget) LookupFunction(name string) (backend.Function, bool) {
	fn, ok := t.funcs[name]
	return fn, ok
}

func (t *fakeTarget) EraseFunction(fn backend.Function) {
	f := fn.(*fakeFunc)
	delete(t.funcs, f.name)
}

func (t *fakeTarget) String() string { return "<fake IR module>" }

func (t *fakeTarget) EntryBlock(fn backend.Function) backend.Block {
	f := fn.(*fakeFunc)
	b := &fakeBlock{}
	f.entry = b
	t.cur = f
	t.block = b
	return b
}

func (t *fakeTarget) Params(fn backend.Function) []backend.Value {
	f := fn.(*fakeFunc)
	out := make([]backend.Value, len(f.params))
	for i := range f.params {
		i := i
		out[i] = fakeValue(func(fr *frame) float64 { return fr.args[i] })
	}
	return out
}

func (t *fakeTarget) VerifyAndOptimize(fn backend.Function) error { return nil }

func (t *fakeTarget) NewBlock(fn backend.Function, name string) backend.Block {
	t.cur = fn.(*fakeFunc)
	return &fakeBlock{}
}

func (t *fakeTarget) SetInsertPoint(b backend.Block) { t.block = b.(*fakeBlock) }
func (t *fakeTarget) InsertBlock() backend.Block      { return t.block }

func (t *fakeTarget) ConstFloat(v float64) backend.Value {
	return fakeValue(func(fr *frame) float64 { return v })
}

// AllocaEntry stands in for the real backend's entry-block placement:
// fakeFunc's slots are already flat per-function storage (a fresh slice
// per Run, never reused across iterations), so allocating against fn
// directly rather than t.cur's current block has the same effect real
// mem2reg-eligible entry allocas do — no per-iteration growth, no block
// sensitivity.
func (t *fakeTarget) AllocaEntry(fn backend.Function) backend.Value {
	f := fn.(*fakeFunc)
	return &slotRef{idx: f.allocSlot()}
}

// Load reads the slot at its place in the current block into a register
// slot, like a real load instruction, so later stores to the same slot do
// not change the loaded value.
func (t *fakeTarget) Load(slot backend.Value) backend.Value {
	s := slot.(*slotRef)
	reg := t.cur.allocSlot()
	t.block.ops = append(t.block.ops, func(fr *frame) { fr.slots[reg] = fr.slots[s.idx] })
	return fakeValue(func(fr *frame) float64 { return fr.slots[reg] })
}

func (t *fakeTarget) Store(v, slot backend.Value) {
	fv := v.(fakeValue)
	s := slot.(*slotRef)
	b := t.block
	b.ops = append(b.ops, func(fr *frame) { fr.slots[s.idx] = fv(fr) })
}

func (t *fakeTarget) FAdd(l, r backend.Value) backend.Value {
	lf, rf := l.(fakeValue), r.(fakeValue)
	return fakeValue(func(fr *frame) float64 { return lf(fr) + rf(fr) })
}

func (t *fakeTarget) FSub(l, r backend.Value) backend.Value {
	lf, rf := l.(fakeValue), r.(fakeValue)
	return fakeValue(func(fr *frame) float64 { return lf(fr) - rf(fr) })
}

func (t *fakeTarget) FMul(l, r backend.Value) backend.Value {
	lf, rf := l.(fakeValue), r.(fakeValue)
	return fakeValue(func(fr *frame) float64 { return lf(fr) * rf(fr) })
}

func (t *fakeTarget) FCmpULT(l, r backend.Value) backend.Value {
	lf, rf := l.(fakeValue), r.(fakeValue)
	return fakeValue(func(fr *frame) float64 {
		if lf(fr) < rf(fr) {
			return 1
		}
		return 0
	})
}

func (t *fakeTarget) FCmpONE(l, r backend.Value) backend.Value {
	lf, rf := l.(fakeValue), r.(fakeValue)
	return fakeValue(func(fr *frame) float64 {
		if lf(fr) != rf(fr) {
			return 1
		}
		return 0
	})
}

func (t *fakeTarget) UIToFP(v backend.Value) backend.Value { return v }

// Call runs the callee at its place in the current block, whether or not
// its result is used, and keeps the result in a register slot.
func (t *fakeTarget) Call(fn backend.Function, args []backend.Value) backend.Value {
	f := fn.(*fakeFunc)
	argFns := make([]fakeValue, len(args))
	for i, a := range args {
		argFns[i] = a.(fakeValue)
	}
	reg := t.cur.allocSlot()
	t.block.ops = append(t.block.ops, func(fr *frame) {
		argVals := make([]float64, len(argFns))
		for i, af := range argFns {
			argVals[i] = af(fr)
		}
		fr.slots[reg], _ = t.Run(f, argVals)
	})
	return fakeValue(func(fr *frame) float64 { return fr.slots[reg] })
}

func (t *fakeTarget) Br(target backend.Block) {
	b := target.(*fakeBlock)
	t.block.term = func(fr *frame) termResult { return termResult{next: b} }
}

func (t *fakeTarget) CondBr(cond backend.Value, then, els backend.Block) {
	cf := cond.(fakeValue)
	tb, eb := then.(*fakeBlock), els.(*fakeBlock)
	t.block.term = func(fr *frame) termResult {
		if cf(fr) != 0 {
			return termResult{next: tb}
		}
		return termResult{next: eb}
	}
}

func (t *fakeTarget) Ret(v backend.Value) {
	fv := v.(fakeValue)
	t.block.term = func(fr *frame) termResult { return termResult{isRet: true, ret: fv(fr)} }
}

// Phi selects the incoming edge whose block is the one control actually
// branched from, same as a real SSA phi node.
func (t *fakeTarget) Phi(incoming []backend.PhiEdge) backend.Value {
	return fakeValue(func(fr *frame) float64 {
		for _, e := range incoming {
			if e.Block.(*fakeBlock) == fr.prevBlock {
				return e.Value.(fakeValue)(fr)
			}
		}
		return 0
	})
}

func (t *fakeTarget) Reset() {}

func (t *fakeTarget) SetHostTarget() error { return nil }

func (t *fakeTarget) EmitObject(path string) error { return nil }

func (t *fakeTarget) Submit() (backend.ResourceTracker, error) { return noopTracker{}, nil }

func (t *fakeTarget) Lookup(name string, arity int) (backend.FuncPtr, error) {
	fn := t.funcs[name]
	return backend.FuncPtr(func() (float64, error) { return t.Run(fn, nil) }), nil
}

type noopTracker struct{}

func (noopTracker) Remove() error { return nil }
