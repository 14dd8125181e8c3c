// Package lexer turns SolidLang source text into a one-token-lookahead
// stream of token.Token values (spec.md §4.1).
package lexer

import (
	"strconv"
	"strings"

	"github.com/informatter/solidlang/token"
)

const commentChar = '#'

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentChar(ch rune) bool {
	return isLetter(ch) || isDigit(ch)
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

// Lexer is a character-stream tokenizer with a single pending token
// (Current). Advance consumes it and classifies the next one, following
// spec.md §4.1's "last_char primed to space" state machine.
type Lexer struct {
	runes []rune
	pos   int // index of lastChar within runes

	lastChar rune

	current token.Token

	// refill is consulted once runes is exhausted, rather than treating
	// that exhaustion as the real end of input. A REPL wires this to its
	// line reader so a top-level item spanning more than one line of
	// input doesn't look like EOF; a fixed source string (compile mode,
	// tests) simply never sets it, and exhaustion means EOF as before.
	refill func() (string, bool)
}

// New creates a Lexer over input and primes Current with the first token.
func New(input string) *Lexer {
	l := &Lexer{
		runes:    []rune(input),
		pos:      -1,
		lastChar: ' ', // primes the whitespace-skipping loop, per spec.md §4.1
	}
	l.Advance()
	return l
}

// SetRefill installs a callback consulted whenever the buffered runes run
// out: it should return the next chunk of source and true, or "", false
// once there is truly no more input (e.g. the user sent EOF). This lets a
// caller feed the Lexer incrementally — one line at a time — instead of
// handing it the whole session up front.
func (l *Lexer) SetRefill(f func() (string, bool)) { l.refill = f }

// Current returns the pending token without consuming it.
func (l *Lexer) Current() token.Token { return l.current }

func (l *Lexer) readRune() rune {
	l.pos++
	for l.pos >= len(l.runes) {
		if l.refill == nil {
			return 0
		}
		more, ok := l.refill()
		if !ok {
			l.refill = nil
			return 0
		}
		l.runes = append(l.runes, []rune(more)...)
	}
	return l.runes[l.pos]
}

// Advance consumes the pending token, classifies the next one, stores it
// as the new Current, and returns it.
func (l *Lexer) Advance() token.Token {
	for isSpace(l.lastChar) {
		l.lastChar = l.readRune()
	}

	switch {
	case l.lastChar == 0:
		l.current = token.Eof()

	case isLetter(l.lastChar):
		var b strings.Builder
		for isIdentChar(l.lastChar) {
			b.WriteRune(l.lastChar)
			l.lastChar = l.readRune()
		}
		spelling := b.String()
		if kw, ok := token.LookupKeyword(spelling); ok {
			l.current = token.Kw(kw)
		} else {
			l.current = token.Ident(spelling)
		}

	case isDigit(l.lastChar) || l.lastChar == '.':
		var b strings.Builder
		for isDigit(l.lastChar) || l.lastChar == '.' {
			b.WriteRune(l.lastChar)
			l.lastChar = l.readRune()
		}
		// Lenient per spec.md §4.1: malformed numerals (e.g. "1.2.3") are
		// rejected by strconv and become a zero-valued number; the lexer
		// itself does not validate dot-count.
		value, _ := strconv.ParseFloat(b.String(), 64)
		l.current = token.Num(value)

	case l.lastChar == commentChar:
		for l.lastChar != '\n' && l.lastChar != '\r' && l.lastChar != 0 {
			l.lastChar = l.readRune()
		}
		return l.Advance()

	default:
		ch := l.lastChar
		l.lastChar = l.readRune()
		l.current = token.CharTok(ch)
	}

	return l.current
}
