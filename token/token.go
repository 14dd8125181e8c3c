// Package token defines the lexical vocabulary of SolidLang: the set of
// token kinds the lexer produces and the Token value itself.
package token

import "fmt"

// Kind classifies a Token. Most punctuation and operators are carried as
// Char tokens (the character itself, see Token.Char) rather than getting
// their own Kind — SolidLang lets user code declare new unary and binary
// operators on arbitrary single characters, so the parser looks operators
// up by character rather than by a closed token-kind enum.
type Kind int

const (
	// EOF marks the end of input.
	EOF Kind = iota

	// Identifier carries a user-chosen name in Ident.
	Identifier

	// Number carries a binary64 value in Num.
	Number

	// Keyword carries one of the reserved words below in Keyword.
	Keyword

	// Char is any other single character, including every operator and
	// piece of punctuation (`(`, `)`, `,`, `=`, `+`, user-defined operator
	// symbols, ...). The character code is carried in Char.
	Char
)

// Keyword enumerates SolidLang's reserved words.
type Keyword int

const (
	FUNC Keyword = iota
	NATIVE
	WHEN
	THEN
	OTHERWISE
	WHILE
	FOR
	IN
	STEP
	DO
	UNARY
	BINARY
	OPERATOR
	VAR
)

// keywords maps reserved spellings to their Keyword value. An identifier
// lexeme that matches an entry here is lexed as a Keyword token instead of
// an Identifier token.
//
// "var" is not listed in spec.md's keyword enumeration but is required to
// enter the VarDef production (see SPEC_FULL.md, "Resolved ambiguity: the
// var/in keyword"); it is included here alongside the rest.
var keywords = map[string]Keyword{
	"func":      FUNC,
	"native":    NATIVE,
	"when":      WHEN,
	"then":      THEN,
	"otherwise": OTHERWISE,
	"while":     WHILE,
	"for":       FOR,
	"in":        IN,
	"step":      STEP,
	"do":        DO,
	"unary":     UNARY,
	"binary":    BINARY,
	"operator":  OPERATOR,
	"var":       VAR,
}

// LookupKeyword reports whether spelling names a reserved word, returning
// its Keyword value.
func LookupKeyword(spelling string) (Keyword, bool) {
	kw, ok := keywords[spelling]
	return kw, ok
}

// Token is a single lexical unit produced by the lexer. Exactly one of
// Ident, Num, Keyword or Char is meaningful, selected by Kind.
type Token struct {
	Kind    Kind
	Ident   string  // set when Kind == Identifier
	Num     float64 // set when Kind == Number
	Keyword Keyword // set when Kind == Keyword
	Char    rune    // set when Kind == Char
}

func Ident(name string) Token { return Token{Kind: Identifier, Ident: name} }
func Num(value float64) Token { return Token{Kind: Number, Num: value} }
func Kw(kw Keyword) Token     { return Token{Kind: Keyword, Keyword: kw} }
func CharTok(c rune) Token    { return Token{Kind: Char, Char: c} }
func Eof() Token              { return Token{Kind: EOF} }

// String renders a Token for diagnostics and tests.
func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "Token{EOF}"
	case Identifier:
		return fmt.Sprintf("Token{Identifier %q}", t.Ident)
	case Number:
		return fmt.Sprintf("Token{Number %v}", t.Num)
	case Keyword:
		return fmt.Sprintf("Token{Keyword %q}", keywordName(t.Keyword))
	case Char:
		return fmt.Sprintf("Token{Char %q}", t.Char)
	default:
		return "Token{?}"
	}
}

var keywordNames = map[Keyword]string{
	FUNC: "func", NATIVE: "native", WHEN: "when", THEN: "then",
	OTHERWISE: "otherwise", WHILE: "while", FOR: "for", IN: "in",
	STEP: "step", DO: "do", UNARY: "unary", BINARY: "binary",
	OPERATOR: "operator", VAR: "var",
}

func keywordName(kw Keyword) string {
	if name, ok := keywordNames[kw]; ok {
		return name
	}
	return "?"
}
