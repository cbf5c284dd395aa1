package models

import "strings"

// Term identifies one academic period within a school year.
type Term string

const (
	TermFirst  Term = "FIRST"
	TermSecond Term = "SECOND"
	TermThird  Term = "THIRD"
	TermFinal  Term = "FINAL"
)

// Terms lists every supported term in calendar order.
var Terms = []Term{TermFirst, TermSecond, TermThird, TermFinal}

// ParseTerm normalises raw input into a Term. The boolean is false for unknown terms.
func ParseTerm(raw string) (Term, bool) {
	candidate := Term(strings.ToUpper(strings.TrimSpace(raw)))
	for _, t := range Terms {
		if t == candidate {
			return t, true
		}
	}
	return "", false
}

// Valid reports whether the term is one of the fixed enumeration values.
func (t Term) Valid() bool {
	for _, candidate := range Terms {
		if candidate == t {
			return true
		}
	}
	return false
}
