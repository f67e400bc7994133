package ir

import "strings"

// kindRank gives each concrete Exp type a stable rank so Compare has a
// total order even across different node shapes sharing an Op() (e.g. a
// TypedExp wrapping a Binary reports the Binary's operator from Op()).
func kindRank(e Exp) int {
	switch e.(type) {
	case *Terminal:
		return 0
	case *Const:
		return 1
	case *Unary:
		return 2
	case *Binary:
		return 3
	case *Ternary:
		return 4
	case *TypedExp:
		return 5
	case *Location:
		return 6
	case *RefExp:
		return 7
	case *FlagDef:
		return 8
	case *TypeVal:
		return 9
	default:
		return 10
	}
}

// Compare imposes a total, deterministic order over expressions:
// lexicographic over (operator, kind, children, then a string fallback for
// any remaining leaf payload). It backs the ordered maps package proc and
// package program use for proven_true facts and symbol tables, where keys
// are expressions rather than plain strings.
func Compare(a, b Exp) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if d := int(a.Op()) - int(b.Op()); d != 0 {
		if d < 0 {
			return -1
		}
		return 1
	}
	if d := kindRank(a) - kindRank(b); d != 0 {
		if d < 0 {
			return -1
		}
		return 1
	}

	ac, bc := Children(a), Children(b)
	for i := 0; i < len(ac) && i < len(bc); i++ {
		if d := Compare(ac[i], bc[i]); d != 0 {
			return d
		}
	}
	if len(ac) != len(bc) {
		if len(ac) < len(bc) {
			return -1
		}
		return 1
	}

	return strings.Compare(a.String(), b.String())
}
