package ast

// NumberLit is a binary64 literal (spec.md §3).
type NumberLit struct {
	Value float64
}

func (n NumberLit) Accept(v Visitor) any { return v.VisitNumberLit(n) }

// VarRef reads the current value bound to Name.
type VarRef struct {
	Name string
}

func (r VarRef) Accept(v Visitor) any { return v.VisitVarRef(r) }

// Call invokes the function named Callee with Args, in order.
type Call struct {
	Callee string
	Args   []Expression
}

func (c Call) Accept(v Visitor) any { return v.VisitCall(c) }

// Unary applies a one-character operator to Operand. Built-in unary
// operators don't exist in SolidLang — every Unary node resolves through a
// user-defined `unary@` function (spec.md §4.4).
type Unary struct {
	Op      rune
	Operand Expression
}

func (u Unary) Accept(v Visitor) any { return v.VisitUnary(u) }

// Binary applies a one-character operator to Left and Right. Op '=' is
// assignment and requires Left to be a VarRef (spec.md §3 invariant).
type Binary struct {
	Op    rune
	Left  Expression
	Right Expression
}

func (b Binary) Accept(v Visitor) any { return v.VisitBinary(b) }

// If is SolidLang's only conditional form; all three branches are
// mandatory since the language has no statement form (spec.md §3).
type If struct {
	Cond Expression
	Then Expression
	Else Expression
}

func (i If) Accept(v Visitor) any { return v.VisitIf(i) }

// Loop is a counted `while ... for i = init step s do body` expression.
// Step may be nil, meaning the default step of 1.0 (spec.md §3). A Loop
// always evaluates to 0.0 regardless of the body's value.
type Loop struct {
	Var  string
	Init Expression
	Test Expression
	Step Expression // nil means the default step, 1.0
	Body Expression
}

func (l Loop) Accept(v Visitor) any { return v.VisitLoop(l) }

// VarBinding is one (name, optional-initializer) pair inside a VarDef. A
// nil Init means the binding defaults to the constant 0.0.
type VarBinding struct {
	Name string
	Init Expression // nil means the default initializer, 0.0
}

// VarDef introduces a list of shadowed local bindings in scope for Body.
// The VarDef's value is Body's value; the bindings it introduced are not
// visible once it returns (spec.md §3, §8 "Scope" property).
type VarDef struct {
	Bindings []VarBinding
	Body     Expression
}

func (v VarDef) Accept(vis Visitor) any { return vis.VisitVarDef(v) }

// FunctionDecl is a function prototype: a name and its ordered parameter
// names. User-defined operator declarations are stored under a mangled
// name ("unary@", "binary@") per spec.md §3. Precedence is only
// meaningful for binary operator declarations (range [1,100], default 30)
// and is otherwise 0.
type FunctionDecl struct {
	Name       string
	Params     []string
	Precedence int
}

func (d FunctionDecl) Accept(v Visitor) any { return v.VisitFunctionDecl(d) }

// FunctionDef is a FunctionDecl plus its body expression.
type FunctionDef struct {
	Decl FunctionDecl
	Body Expression
}

func (d FunctionDef) Accept(v Visitor) any { return v.VisitFunctionDef(d) }

// AnonymousTopLevelExpr is the synthetic name every bare top-level
// expression is wrapped under so it can be submitted to the JIT and
// invoked as a zero-argument thunk (spec.md §3, §4.6).
const AnonymousTopLevelExpr = "__anonymous_top_level_expr"
