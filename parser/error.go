package parser

import "fmt"

// SyntaxError is a parse-time diagnostic (spec.md §7 "Parse error"). It
// carries no source position — spec.md's Non-goals explicitly exclude
// source-location tracking — just a description of what the parser
// expected.
type SyntaxError struct {
	Message string
}

func newSyntaxError(format string, args ...any) SyntaxError {
	return SyntaxError{Message: fmt.Sprintf(format, args...)}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("💥 parse error: %s", e.Message)
}
