package driver

import "github.com/informatter/solidlang/backend"

// fakeTarget is the same closure-interpreter stand-in irgen's tests use,
// extended with the toolchain-bridge methods (Submit/Lookup/Reset) the
// Driver itself drives. Functions persist across Reset — mirroring a
// real JIT's global symbol table spanning module rotations — and Submit
// returns a tracker naming only the functions declared since the last
// Submit, so removing it (as the anonymous top-level thunk's evaluation
// does) doesn't disturb earlier, permanently committed definitions.
type fakeTarget struct {
	funcs       map[string]*fakeFunc
	sinceSubmit []string
	cur         *fakeFunc
	block       *fakeBlock
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{funcs: map[string]*fakeFunc{}}
}

type frame struct {
	slots     []float64
	args      []float64
	prevBlock *fakeBlock
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
	t.sinceSubmit = append(t.sinceSubmit, name)
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

// AllocaEntry mirrors the real backend's entry-block placement: fakeFunc
// slots are already flat per-function storage (a fresh slice per Run),
// so allocating against fn directly has the same effect as a real
// mem2reg-eligible entry alloca — no per-iteration growth, no block
// sensitivity.
func (t *fakeTarget) AllocaEntry(fn backend.Function) backend.Value {
	f := fn.(*fakeFunc)
	return &slotRef{idx: f.allocSlot()}
}

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

func (t *fakeTarget) Reset() { t.cur = nil; t.block = nil }

func (t *fakeTarget) SetHostTarget() error { return nil }

func (t *fakeTarget) EmitObject(path string) error { return nil }

func (t *fakeTarget) Submit() (backend.ResourceTracker, error) {
	names := t.sinceSubmit
	t.sinceSubmit = nil
	return &fakeTracker{target: t, names: names}, nil
}

func (t *fakeTarget) Lookup(name string, arity int) (backend.FuncPtr, error) {
	fn := t.funcs[name]
	return backend.FuncPtr(func() (float64, error) { return t.Run(fn, nil) }), nil
}

type fakeTracker struct {
	target *fakeTarget
	names  []string
}

func (tr *fakeTracker) Remove() error {
	for _, n := range tr.names {
		delete(tr.target.funcs, n)
	}
	return nil
}

// preset installs a host-provided native function directly, standing in
// for `native printd`/`native putchard` bound through the JIT's symbol
// resolution against the host process (spec.md §6).
func (t *fakeTarget) preset(name string, arity int, impl func(args []float64) float64) {
	params := make([]string, arity)
	fn := &fakeFunc{name: name, params: params, native: impl}
	t.funcs[name] = fn
}
