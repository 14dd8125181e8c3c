// Package irgen walks SolidLang's AST and emits SSA-form IR into a
// backend.Target (spec.md §4.4). It is the only core package that
// touches backend.Target directly — everything upstream of it only ever
// deals with ast.Expression and token.Token.
package irgen

import (
	"fmt"

	"github.com/informatter/solidlang/ast"
	"github.com/informatter/solidlang/backend"
)

// Generator implements ast.Visitor. It carries the symbol environment
// (name → stack-slot handle), the function-declaration cache used to
// resolve forward references, the function currently being defined (nil
// between definitions), and a "last error" register mirroring the "last
// value produced" scratch slot spec.md §4.4 describes: a failed visit
// sets it once and every subsequent visit in the same definition
// short-circuits.
type Generator struct {
	target  backend.Target
	env     map[string]backend.Value
	funcs   map[string]ast.FunctionDecl
	current backend.Function
	last    backend.Value
	err     error
}

// New creates a Generator emitting into target.
func New(target backend.Target) *Generator {
	return &Generator{
		target: target,
		env:    map[string]backend.Value{},
		funcs:  map[string]ast.FunctionDecl{},
	}
}

// Err returns and clears the error left by the most recently completed
// top-level Accept call, if any (spec.md §7 "Codegen error").
func (g *Generator) Err() error {
	err := g.err
	g.err = nil
	return err
}

func (g *Generator) fail(format string, args ...any) {
	if g.err == nil {
		g.err = fmt.Errorf("💥 codegen error: "+format, args...)
	}
	g.last = nil
}

// evalChild visits e and type-asserts the result to a Value, failing if
// a previous visit in this chain already failed or if e produced no
// value at all (only FunctionDecl/FunctionDef visits do that, and the
// grammar never nests those inside an expression).
func (g *Generator) evalChild(e ast.Expression) backend.Value {
	if g.err != nil {
		return nil
	}
	res := e.Accept(g)
	if g.err != nil {
		return nil
	}
	v, ok := res.(backend.Value)
	if !ok {
		g.fail("expression produced no value")
		return nil
	}
	return v
}

// Register caches decl under its (possibly mangled) name without
// emitting any IR — the "register a native declaration without emitting
// it immediately" capability spec.md §4.3 calls out, and also how a
// FunctionDef makes its own name resolvable from within its own body
// before that body has been visited, so self-recursive calls work.
func (g *Generator) Register(decl ast.FunctionDecl) {
	g.funcs[decl.Name] = decl
}

// resolveFunction finds or lazily materializes the backend.Function
// named name, via the module (already emitted or declared) first and
// the function-declaration cache second (spec.md §4.4 "Call", §4.4
// "Forward references").
func (g *Generator) resolveFunction(name string) (backend.Function, ast.FunctionDecl, error) {
	if fn, ok := g.target.LookupFunction(name); ok {
		return fn, g.funcs[name], nil
	}
	decl, ok := g.funcs[name]
	if !ok {
		return nil, ast.FunctionDecl{}, fmt.Errorf("unknown function %q", name)
	}
	return g.target.DeclareFunction(decl.Name, decl.Params), decl, nil
}

func (g *Generator) VisitNumberLit(n ast.NumberLit) any {
	v := g.target.ConstFloat(n.Value)
	g.last = v
	return v
}

func (g *Generator) VisitVarRef(r ast.VarRef) any {
	slot, ok := g.env[r.Name]
	if !ok {
		g.fail("unknown variable name %q", r.Name)
		return nil
	}
	v := g.target.Load(slot)
	g.last = v
	return v
}

// VisitVarDef implements the "remember, overwrite, restore" shadowing
// discipline spec.md §4.4/§9 describes: every binding's prior slot (or
// its absence) is recorded before the new one is installed, and all of
// them are put back in reverse order — even along an error path — before
// returning, so a name bound twice in one VarDef ends at its outer binding.
func (g *Generator) VisitVarDef(v ast.VarDef) any {
	type shadow struct {
		name     string
		prior    backend.Value
		hadPrior bool
	}
	shadows := make([]shadow, 0, len(v.Bindings))
	restore := func() {
		for i := len(shadows) - 1; i >= 0; i-- {
			s := shadows[i]
			if s.hadPrior {
				g.env[s.name] = s.prior
			} else {
				delete(g.env, s.name)
			}
		}
	}

	for _, b := range v.Bindings {
		var initVal backend.Value
		if b.Init != nil {
			initVal = g.evalChild(b.Init)
			if g.err != nil {
				restore()
				return nil
			}
		} else {
			initVal = g.target.ConstFloat(0.0)
		}

		slot := g.target.AllocaEntry(g.current)
		g.target.Store(initVal, slot)

		prior, hadPrior := g.env[b.Name]
		shadows = append(shadows, shadow{name: b.Name, prior: prior, hadPrior: hadPrior})
		g.env[b.Name] = slot
	}

	bodyVal := g.evalChild(v.Body)
	restore()
	if g.err != nil {
		return nil
	}
	g.last = bodyVal
	return bodyVal
}

// VisitBinary implements spec.md §4.4's three Binary cases: assignment,
// the four built-in operators, and everything else resolved through a
// user-defined "binary@" function.
func (g *Generator) VisitBinary(b ast.Binary) any {
	if b.Op == '=' {
		ref, ok := b.Left.(ast.VarRef)
		if !ok {
			g.fail("assignment target must be a variable")
			return nil
		}
		rhs := g.evalChild(b.Right)
		if g.err != nil {
			return nil
		}
		slot, ok := g.env[ref.Name]
		if !ok {
			g.fail("unknown variable name %q", ref.Name)
			return nil
		}
		g.target.Store(rhs, slot)
		g.last = rhs
		return rhs
	}

	left := g.evalChild(b.Left)
	if g.err != nil {
		return nil
	}
	right := g.evalChild(b.Right)
	if g.err != nil {
		return nil
	}

	var v backend.Value
	switch b.Op {
	case '+':
		v = g.target.FAdd(left, right)
	case '-':
		v = g.target.FSub(left, right)
	case '*':
		v = g.target.FMul(left, right)
	case '<':
		cmp := g.target.FCmpULT(left, right)
		v = g.target.UIToFP(cmp)
	default:
		name := "binary" + string(b.Op)
		fn, decl, err := g.resolveFunction(name)
		if err != nil {
			g.fail("no binary operator %q defined", string(b.Op))
			return nil
		}
		if len(decl.Params) != 2 {
			g.fail("binary operator %q must take exactly two arguments", string(b.Op))
			return nil
		}
		v = g.target.Call(fn, []backend.Value{left, right})
	}
	g.last = v
	return v
}

func (g *Generator) VisitUnary(u ast.Unary) any {
	operand := g.evalChild(u.Operand)
	if g.err != nil {
		return nil
	}
	name := "unary" + string(u.Op)
	fn, decl, err := g.resolveFunction(name)
	if err != nil {
		g.fail("no unary operator %q defined", string(u.Op))
		return nil
	}
	if len(decl.Params) != 1 {
		g.fail("unary operator %q must take exactly one argument", string(u.Op))
		return nil
	}
	v := g.target.Call(fn, []backend.Value{operand})
	g.last = v
	return v
}

func (g *Generator) VisitCall(c ast.Call) any {
	fn, decl, err := g.resolveFunction(c.Callee)
	if err != nil {
		g.fail("unknown function reference %q", c.Callee)
		return nil
	}
	if len(decl.Params) != len(c.Args) {
		g.fail("call to %q: expected %d argument(s), got %d", c.Callee, len(decl.Params), len(c.Args))
		return nil
	}
	args := make([]backend.Value, len(c.Args))
	for i, a := range c.Args {
		args[i] = g.evalChild(a)
		if g.err != nil {
			return nil
		}
	}
	v := g.target.Call(fn, args)
	g.last = v
	return v
}

// VisitIf lowers `when`/`then`/`otherwise` into a three-block CFG with a
// phi merge (spec.md §4.4 "If"). Each arm's actual terminating block is
// recorded for the phi incoming edges, since an arm may itself contain
// control flow and not end in the block it started in.
func (g *Generator) VisitIf(i ast.If) any {
	cond := g.evalChild(i.Cond)
	if g.err != nil {
		return nil
	}
	condBool := g.target.FCmpONE(cond, g.target.ConstFloat(0.0))

	fn := g.current
	thenBlock := g.target.NewBlock(fn, "then")
	elseBlock := g.target.NewBlock(fn, "otherwise")
	mergeBlock := g.target.NewBlock(fn, "merge")
	g.target.CondBr(condBool, thenBlock, elseBlock)

	g.target.SetInsertPoint(thenBlock)
	thenVal := g.evalChild(i.Then)
	if g.err != nil {
		return nil
	}
	g.target.Br(mergeBlock)
	thenEnd := g.target.InsertBlock()

	g.target.SetInsertPoint(elseBlock)
	elseVal := g.evalChild(i.Else)
	if g.err != nil {
		return nil
	}
	g.target.Br(mergeBlock)
	elseEnd := g.target.InsertBlock()

	g.target.SetInsertPoint(mergeBlock)
	phi := g.target.Phi([]backend.PhiEdge{
		{Value: thenVal, Block: thenEnd},
		{Value: elseVal, Block: elseEnd},
	})
	g.last = phi
	return phi
}

// VisitLoop lowers a counted `while test for var = init step s do body`
// with stack-slot induction-variable storage, per the spec's resolved
// Open Question favoring the regular alloca form over a phi-based one
// (spec.md §9). The test is evaluated at the end of each iteration, so
// the body always runs at least once; the expression always yields 0.0.
func (g *Generator) VisitLoop(l ast.Loop) any {
	fn := g.current

	initVal := g.evalChild(l.Init)
	if g.err != nil {
		return nil
	}
	slot := g.target.AllocaEntry(fn)
	g.target.Store(initVal, slot)

	prior, hadPrior := g.env[l.Var]
	g.env[l.Var] = slot
	restore := func() {
		if hadPrior {
			g.env[l.Var] = prior
		} else {
			delete(g.env, l.Var)
		}
	}

	loopBlock := g.target.NewBlock(fn, "loop")
	g.target.Br(loopBlock)
	g.target.SetInsertPoint(loopBlock)

	g.evalChild(l.Body)
	if g.err != nil {
		restore()
		return nil
	}

	var stepVal backend.Value
	if l.Step != nil {
		stepVal = g.evalChild(l.Step)
		if g.err != nil {
			restore()
			return nil
		}
	} else {
		stepVal = g.target.ConstFloat(1.0)
	}

	cur := g.target.Load(slot)
	next := g.target.FAdd(cur, stepVal)
	g.target.Store(next, slot)

	testVal := g.evalChild(l.Test)
	if g.err != nil {
		restore()
		return nil
	}
	testBool := g.target.FCmpONE(testVal, g.target.ConstFloat(0.0))

	afterBlock := g.target.NewBlock(fn, "after")
	g.target.CondBr(testBool, loopBlock, afterBlock)
	g.target.SetInsertPoint(afterBlock)

	restore()

	zero := g.target.ConstFloat(0.0)
	g.last = zero
	return zero
}

// VisitFunctionDecl eagerly declares d in the module and caches it — the
// path used for top-level `native` items (spec.md §4.6) and for any
// FunctionDecl a future visitor variant might feed through directly.
func (g *Generator) VisitFunctionDecl(d ast.FunctionDecl) any {
	fn := g.target.DeclareFunction(d.Name, d.Params)
	g.Register(d)
	return fn
}

// VisitFunctionDef defines d: it registers d's own declaration first (so
// a self-recursive call resolves), declares-or-reuses the backend
// function, materializes parameter stack slots in a fresh entry block,
// visits the body in a scope isolated from the enclosing definition, and
// on success emits the return, verifies and optimizes. A failed body
// erases the partially built function (spec.md §4.4 "FunctionDef").
func (g *Generator) VisitFunctionDef(d ast.FunctionDef) any {
	g.Register(d.Decl)

	fn, ok := g.target.LookupFunction(d.Decl.Name)
	if !ok {
		fn = g.target.DeclareFunction(d.Decl.Name, d.Decl.Params)
	}

	prevFunc, prevEnv := g.current, g.env
	g.current = fn
	g.env = make(map[string]backend.Value, len(d.Decl.Params))

	entry := g.target.EntryBlock(fn)
	g.target.SetInsertPoint(entry)

	params := g.target.Params(fn)
	for i, name := range d.Decl.Params {
		slot := g.target.AllocaEntry(fn)
		g.target.Store(params[i], slot)
		g.env[name] = slot
	}

	bodyVal := g.evalChild(d.Body)

	g.current, g.env = prevFunc, prevEnv

	if g.err != nil {
		g.target.EraseFunction(fn)
		return nil
	}

	g.target.Ret(bodyVal)

	if err := g.target.VerifyAndOptimize(fn); err != nil {
		g.fail("%s", err.Error())
		g.target.EraseFunction(fn)
		return nil
	}
	return fn
}
