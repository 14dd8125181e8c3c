// Package parser implements SolidLang's recursive-descent, Pratt-style
// operator-precedence parser (spec.md §4.2). User code can declare new
// unary and binary operators whose precedences are learned — and mutate
// the shared precedence table — while parsing continues.
package parser

import (
	"github.com/informatter/solidlang/ast"
	"github.com/informatter/solidlang/lexer"
	"github.com/informatter/solidlang/token"
)

// Parser consumes tokens from a Lexer one at a time (one-token lookahead)
// and builds AST nodes. Every method here consumes exactly the tokens the
// grammar it implements recognizes and leaves the lexer positioned on the
// next token (spec.md §4.2).
type Parser struct {
	lex        *lexer.Lexer
	precedence precedenceTable
}

// New creates a Parser reading from lex.
func New(lex *lexer.Lexer) *Parser {
	return &Parser{lex: lex, precedence: newPrecedenceTable()}
}

func (p *Parser) cur() token.Token { return p.lex.Current() }

// expectChar consumes the current token if it is the single-character
// token ch, otherwise returns a SyntaxError naming what was expected.
func (p *Parser) expectChar(ch rune) error {
	cur := p.cur()
	if cur.Kind != token.Char || cur.Char != ch {
		return newSyntaxError("expected '%c'", ch)
	}
	p.lex.Advance()
	return nil
}

func (p *Parser) expectKeyword(kw token.Keyword, name string) error {
	cur := p.cur()
	if cur.Kind != token.Keyword || cur.Keyword != kw {
		return newSyntaxError("expected '%s'", name)
	}
	p.lex.Advance()
	return nil
}

// ParseExpression parses a complete expression, including user operators
// at their currently declared precedences.
func (p *Parser) ParseExpression() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseBinOpRHS(0, left)
}

// parseBinOpRHS implements the precedence-climbing loop: an operator whose
// precedence is below the caller's threshold is left unconsumed (returns
// left); otherwise it is consumed and, if the following operator binds
// tighter still, the right-hand side recurses at threshold+1 so that
// higher-precedence operators bind to the right before this call resumes
// (spec.md §4.2 "Operator climbing").
func (p *Parser) parseBinOpRHS(minPrecedence int, left ast.Expression) (ast.Expression, error) {
	for {
		opPrecedence, op, isOp := p.currentOperator()
		if !isOp || opPrecedence < minPrecedence {
			return left, nil
		}
		p.lex.Advance() // consume the operator

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		nextPrecedence, _, nextIsOp := p.currentOperator()
		if nextIsOp && opPrecedence < nextPrecedence {
			right, err = p.parseBinOpRHS(opPrecedence+1, right)
			if err != nil {
				return nil, err
			}
		}

		left = ast.Binary{Op: op, Left: left, Right: right}
	}
}

// currentOperator reports the current token's precedence when it is a
// known operator character.
func (p *Parser) currentOperator() (precedence int, op rune, ok bool) {
	cur := p.cur()
	if cur.Kind != token.Char {
		return 0, 0, false
	}
	prec := p.precedence.of(cur.Char)
	if prec < 0 {
		return 0, 0, false
	}
	return prec, cur.Char, true
}

// parseUnary parses a chain of prefix unary operators around a primary
// expression. A token that is '(', ',' or outside ASCII can never be a
// unary operator and falls through to the primary grammar (spec.md §4.2
// "Unary parsing").
func (p *Parser) parseUnary() (ast.Expression, error) {
	cur := p.cur()
	if cur.Kind != token.Char || cur.Char == '(' || cur.Char == ',' || cur.Char > 127 {
		return p.parsePrimary()
	}

	op := cur.Char
	p.lex.Advance() // consume operator
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return ast.Unary{Op: op, Operand: operand}, nil
}

// parsePrimary parses number literals, identifier expressions (variable
// reference or call), parenthesized expressions, `when` conditionals,
// `while` loops and `var` definitions.
func (p *Parser) parsePrimary() (ast.Expression, error) {
	cur := p.cur()
	switch {
	case cur.Kind == token.Number:
		p.lex.Advance()
		return ast.NumberLit{Value: cur.Num}, nil

	case cur.Kind == token.Identifier:
		return p.parseIdentifierExpr()

	case cur.Kind == token.Char && cur.Char == '(':
		return p.parseParenExpr()

	case cur.Kind == token.Keyword && cur.Keyword == token.WHEN:
		return p.parseIfExpr()

	case cur.Kind == token.Keyword && cur.Keyword == token.WHILE:
		return p.parseLoopExpr()

	case cur.Kind == token.Keyword && cur.Keyword == token.VAR:
		return p.parseVarDefExpr()

	default:
		return nil, newSyntaxError("unknown token while parsing expression: %v", cur)
	}
}

func (p *Parser) parseParenExpr() (ast.Expression, error) {
	p.lex.Advance() // consume '('
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectChar(')'); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseIdentifierExpr parses either a VarRef or, when followed by '(', a
// Call with comma-separated arguments.
func (p *Parser) parseIdentifierExpr() (ast.Expression, error) {
	name := p.cur().Ident
	p.lex.Advance() // consume identifier

	cur := p.cur()
	if cur.Kind != token.Char || cur.Char != '(' {
		return ast.VarRef{Name: name}, nil
	}
	p.lex.Advance() // consume '('

	var args []ast.Expression
	if !(p.cur().Kind == token.Char && p.cur().Char == ')') {
		for {
			arg, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.cur().Kind == token.Char && p.cur().Char == ')' {
				break
			}
			if err := p.expectChar(','); err != nil {
				return nil, newSyntaxError("expected ')' or ',' in argument list")
			}
		}
	}
	if err := p.expectChar(')'); err != nil {
		return nil, err
	}
	return ast.Call{Callee: name, Args: args}, nil
}

// parseIfExpr parses `when cond then branch otherwise branch`.
func (p *Parser) parseIfExpr() (ast.Expression, error) {
	p.lex.Advance() // consume 'when'

	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(token.THEN, "then"); err != nil {
		return nil, err
	}
	thenExpr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(token.OTHERWISE, "otherwise"); err != nil {
		return nil, err
	}
	elseExpr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return ast.If{Cond: cond, Then: thenExpr, Else: elseExpr}, nil
}

// parseLoopExpr parses `while test for id = init (step s)? do body`.
func (p *Parser) parseLoopExpr() (ast.Expression, error) {
	p.lex.Advance() // consume 'while'

	test, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(token.FOR, "for"); err != nil {
		return nil, err
	}

	if p.cur().Kind != token.Identifier {
		return nil, newSyntaxError("expected induction variable name")
	}
	name := p.cur().Ident
	p.lex.Advance()

	if err := p.expectChar('='); err != nil {
		return nil, err
	}
	init, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	var step ast.Expression
	if p.cur().Kind == token.Keyword && p.cur().Keyword == token.STEP {
		p.lex.Advance()
		step, err = p.ParseExpression()
		if err != nil {
			return nil, err
		}
	}

	if err := p.expectKeyword(token.DO, "do"); err != nil {
		return nil, err
	}
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	return ast.Loop{Var: name, Init: init, Test: test, Step: step, Body: body}, nil
}

// parseVarDefExpr parses `var name (= init)? (, name (= init)?)* in body`.
func (p *Parser) parseVarDefExpr() (ast.Expression, error) {
	p.lex.Advance() // consume 'var'

	var bindings []ast.VarBinding
	for {
		if p.cur().Kind != token.Identifier {
			return nil, newSyntaxError("expected variable name after 'var'")
		}
		name := p.cur().Ident
		p.lex.Advance()

		var init ast.Expression
		if p.cur().Kind == token.Char && p.cur().Char == '=' {
			p.lex.Advance()
			var err error
			init, err = p.ParseExpression()
			if err != nil {
				return nil, err
			}
		}
		bindings = append(bindings, ast.VarBinding{Name: name, Init: init})

		if p.cur().Kind == token.Char && p.cur().Char == ',' {
			p.lex.Advance()
			continue
		}
		break
	}

	if err := p.expectKeyword(token.IN, "in"); err != nil {
		return nil, err
	}
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return ast.VarDef{Bindings: bindings, Body: body}, nil
}

// parseParamNames consumes a space-separated run of identifiers, the
// argument-name grammar function headers use (unlike call arguments,
// which are comma-separated).
func (p *Parser) parseParamNames() []string {
	var names []string
	for p.cur().Kind == token.Identifier {
		names = append(names, p.cur().Ident)
		p.lex.Advance()
	}
	return names
}

// parseFunctionHeader parses the `header` grammar (spec.md §4.2):
//
//	header := id '(' id* ')'
//	        | 'unary'  op '(' id ')'
//	        | 'binary' op number? '(' id id ')'
//
// A `binary` header's optional precedence literal installs/overrides the
// operator's entry in the precedence table immediately, before the rest
// of parsing continues (spec.md §9).
func (p *Parser) parseFunctionHeader() (ast.FunctionDecl, error) {
	cur := p.cur()

	var name string
	var arity int // -1 means "no arity check" (plain named function)
	precedence := 0

	switch {
	case cur.Kind == token.Identifier:
		name = cur.Ident
		arity = -1
		p.lex.Advance()

	case cur.Kind == token.Keyword && cur.Keyword == token.UNARY:
		p.lex.Advance()
		opTok := p.cur()
		if opTok.Kind != token.Char || opTok.Char > 127 {
			return ast.FunctionDecl{}, newSyntaxError("expected unary operator symbol")
		}
		name = "unary" + string(opTok.Char)
		arity = 1
		p.lex.Advance()

	case cur.Kind == token.Keyword && cur.Keyword == token.BINARY:
		p.lex.Advance()
		opTok := p.cur()
		if opTok.Kind != token.Char || opTok.Char > 127 {
			return ast.FunctionDecl{}, newSyntaxError("expected binary operator symbol")
		}
		op := opTok.Char
		p.lex.Advance()

		precedence = 30
		if p.cur().Kind == token.Number {
			n := p.cur().Num
			if n < 1 || n > 100 {
				return ast.FunctionDecl{}, newSyntaxError("operator precedence must be in range 1..100")
			}
			precedence = int(n)
			p.lex.Advance()
		}
		p.precedence[op] = precedence

		name = "binary" + string(op)
		arity = 2

	default:
		return ast.FunctionDecl{}, newSyntaxError("expected function name in declaration")
	}

	if err := p.expectChar('('); err != nil {
		return ast.FunctionDecl{}, err
	}
	params := p.parseParamNames()
	if err := p.expectChar(')'); err != nil {
		return ast.FunctionDecl{}, err
	}

	if arity >= 0 && len(params) != arity {
		return ast.FunctionDecl{}, newSyntaxError("invalid number of operands for unary/binary operator")
	}

	return ast.FunctionDecl{Name: name, Params: params, Precedence: precedence}, nil
}

// ParseFunctionDefinition is called with the lexer positioned on a `func`
// or `operator` keyword. It consumes that keyword, the header, and the
// body expression.
func (p *Parser) ParseFunctionDefinition() (ast.FunctionDef, error) {
	p.lex.Advance() // consume 'func'/'operator'

	decl, err := p.parseFunctionHeader()
	if err != nil {
		return ast.FunctionDef{}, err
	}
	body, err := p.ParseExpression()
	if err != nil {
		return ast.FunctionDef{}, err
	}
	return ast.FunctionDef{Decl: decl, Body: body}, nil
}

// ParseNative is called with the lexer positioned on a `native` keyword.
// It consumes that keyword and the header that follows.
func (p *Parser) ParseNative() (ast.FunctionDecl, error) {
	p.lex.Advance() // consume 'native'
	return p.parseFunctionHeader()
}

// ParseTopLevelExpression parses a complete expression and wraps it in a
// zero-argument function named ast.AnonymousTopLevelExpr, so that bare
// top-level expressions can be codegen'd, JIT-submitted and invoked like
// any other function (spec.md §4.2, §4.6).
func (p *Parser) ParseTopLevelExpression() (ast.FunctionDef, error) {
	body, err := p.ParseExpression()
	if err != nil {
		return ast.FunctionDef{}, err
	}
	decl := ast.FunctionDecl{Name: ast.AnonymousTopLevelExpr}
	return ast.FunctionDef{Decl: decl, Body: body}, nil
}

// Current exposes the lexer's pending token, used by the driver to decide
// which top-level production to parse next (spec.md §4.6).
func (p *Parser) Current() token.Token { return p.cur() }

// Advance consumes the lexer's pending token, used by the driver to skip
// semicolons and to resynchronize after a parse error.
func (p *Parser) Advance() token.Token { return p.lex.Advance() }
