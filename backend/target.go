// Package backend defines the seam between SolidLang's core (lexer,
// parser, ast, irgen) and the fixed external backend spec.md §1 and §4.5
// describe: an LLVM-compatible SSA IR builder, a per-function optimizer, a
// JIT and an object-file emitter. Package irgen is the only core
// component that talks to a Target; everything downstream of it (package
// backend/llvmir) is a concrete adapter, swappable without touching the
// language front end.
package backend

// Value is an opaque handle to anything an instruction can consume or
// produce: an SSA register, a stack-slot pointer, or a constant. irgen
// never inspects a Value's shape — it only threads handles between
// builder calls and stores them in its symbol environment.
type Value any

// Block is an opaque handle to a basic block within a function.
type Block any

// Function is an opaque handle to a declared or defined function.
type Function any

// PhiEdge pairs an incoming value with the predecessor block it arrives
// from, the shape spec.md §4.4's If rule needs to merge two branches.
type PhiEdge struct {
	Value Value
	Block Block
}

// ResourceTracker names a JIT-submitted module so the driver can remove
// it — and everything it defined — once a top-level expression has been
// evaluated (spec.md §4.6).
type ResourceTracker interface {
	Remove() error
}

// FuncPtr is a host-callable handle obtained from the JIT's symbol
// lookup. For the zero-argument top-level thunk it holds a
// func() (float64, error), which package driver type-asserts and calls.
type FuncPtr any

// Target is the fixed backend: module-level declaration and lookup,
// block-level instruction building, and the toolchain bridge (optimizer,
// JIT, object emission). Every method that builds an instruction inserts
// at whatever block SetInsertPoint last selected.
type Target interface {
	// --- module level ---

	// DeclareFunction declares (but does not define) a function with one
	// binary64 parameter per entry of paramNames, returning binary64.
	// Redeclaring an existing name returns the existing Function.
	DeclareFunction(name string, paramNames []string) Function

	// LookupFunction finds an already-declared-or-defined function in the
	// current module by name.
	LookupFunction(name string) (Function, bool)

	// EraseFunction removes a function whose body failed to verify, so a
	// bad definition doesn't pollute later lookups (spec.md §4.4
	// "FunctionDef" edge case).
	EraseFunction(fn Function)

	// String renders the current module as textual IR, for `-IR`.
	String() string

	// --- function level ---

	// EntryBlock creates fn's entry block and returns it.
	EntryBlock(fn Function) Block

	// Params returns fn's incoming argument values, in declared order.
	Params(fn Function) []Value

	// VerifyAndOptimize runs structural verification of fn. The cleanup
	// pipeline (mem2reg, instcombine, reassociate, GVN, simplifycfg) may
	// run here or later: backend/llvmir runs it over the whole module at
	// Submit/EmitObject time. A verification failure is returned as an
	// error and the caller is expected to EraseFunction.
	VerifyAndOptimize(fn Function) error

	// --- block level ---

	NewBlock(fn Function, name string) Block
	SetInsertPoint(b Block)
	InsertBlock() Block

	ConstFloat(v float64) Value

	// AllocaEntry inserts a new stack slot into fn's entry block,
	// regardless of the current insertion point (the
	// CreateEntryBlockAlloca idiom spec.md §4.4 describes for VarDef,
	// Loop induction variables and function parameters). mem2reg only
	// promotes allocas that live in the entry block, so a slot for a
	// VarDef or Loop nested inside an If arm or another Loop body must
	// not be allocated where it lexically appears.
	AllocaEntry(fn Function) Value
	Load(slot Value) Value
	Store(v Value, slot Value)

	FAdd(l, r Value) Value
	FSub(l, r Value) Value
	FMul(l, r Value) Value
	FCmpULT(l, r Value) Value // unordered less-than, yields i1
	FCmpONE(l, r Value) Value // ordered not-equal-to-zero, yields i1
	UIToFP(v Value) Value

	Call(fn Function, args []Value) Value

	Br(target Block)
	CondBr(cond Value, then, els Block)
	Ret(v Value)
	Phi(incoming []PhiEdge) Value

	// --- toolchain bridge (spec.md §4.5, §4.6) ---

	// Reset discards the current module and starts a fresh one, sharing
	// whatever long-lived context the backend keeps (a JIT's symbol
	// table, a target machine). Called after every JIT submission so each
	// translation unit becomes its own module (spec.md §4.6).
	Reset()

	// SetHostTarget retargets the current module at the host triple and
	// data layout, used by compile mode before EmitObject (spec.md §5).
	SetHostTarget() error

	// EmitObject lowers the current module to a native object file at
	// path.
	EmitObject(path string) error

	// Submit hands the current module to the JIT for lazy compilation and
	// returns a tracker the caller can Remove() later.
	Submit() (ResourceTracker, error)

	// Lookup resolves a JIT-submitted function by name and returns a
	// FuncPtr for it. backend/llvmir supports only arity 0 and returns an
	// error for any other arity.
	Lookup(name string, arity int) (FuncPtr, error)
}
