package parser

// precedenceTable maps an operator character to its binding priority.
// Values must stay strictly positive — a zero/absent lookup means "not an
// operator" (spec.md §3). The seed holds the built-in operators plus '='
// (assignment) at 2, below every other seeded operator, so `x = a + b`
// assigns the whole right-hand side; `binary` declarations mutate this
// table during parsing (spec.md §4.2, §9 "Operator precedence mutation").
type precedenceTable map[rune]int

func newPrecedenceTable() precedenceTable {
	return precedenceTable{
		'=': 2,
		'*': 40,
		'+': 20,
		'-': 20,
		'<': 10,
	}
}

// of returns op's precedence, or -1 if op is not a known operator.
func (t precedenceTable) of(op rune) int {
	if p, ok := t[op]; ok && p > 0 {
		return p
	}
	return -1
}
