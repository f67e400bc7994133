package ir

import "decomp/internal/op"

// FindConstants returns every Const reachable from e, pre-order.
func FindConstants(e Exp) []*Const {
	var out []*Const
	WalkExp(e, func(n Exp) {
		if c, ok := n.(*Const); ok {
			out = append(out, c)
		}
	})
	return out
}

// Bypass implements the bypass peephole pass: for an
// Assign whose Rhs is itself a RefExp(loc, def) where def resolves (via
// lookup, supplied by the caller since ir does not own the statement
// arena) to another Assign of the shape `loc := rhs2`, substitute rhs2 for
// uses of loc, when doing so is legal (rhs2 has no side effect and loc is
// not redefined between def and use — the caller is responsible for that
// legality check; Bypass performs only the substitution).
func Bypass(use Exp, def Statement) (Exp, bool) {
	ref, ok := use.(*RefExp)
	if !ok {
		return use, false
	}
	assign, ok := def.(*Assign)
	if !ok {
		return use, false
	}
	if !Equals(ref.Sub1, assign.Lhs) {
		return use, false
	}
	return Clone(assign.Rhs), true
}

// SubscriptVars wraps every occurrence of loc within s into
// RefExp(loc, def) -- the single-location form of SSA subscripting, used
// when one definition site needs re-binding without a whole-CFG rename.
// Occurrences already inside a RefExp are left alone. Reports whether
// anything was wrapped.
func SubscriptVars(s Statement, loc Exp, def StmtID) bool {
	changed := false
	RewriteExps(s, func(e Exp) Exp {
		ne, ch := subscriptExp(e, loc, def)
		if ch {
			changed = true
		}
		return ne
	})
	return changed
}

func subscriptExp(e, loc Exp, def StmtID) (Exp, bool) {
	if e == nil {
		return nil, false
	}
	if _, ok := e.(*RefExp); ok {
		return e, false // already subscripted
	}
	if Equals(e, loc) {
		return &RefExp{Sub1: e, Def: def}, true
	}
	kids := Children(e)
	if len(kids) == 0 {
		return e, false
	}
	newKids := make([]Exp, len(kids))
	changed := false
	for i, k := range kids {
		nk, ch := subscriptExp(k, loc, def)
		newKids[i] = nk
		changed = changed || ch
	}
	if !changed {
		return e, false
	}
	return WithChildren(e, newKids), true
}

// StripSizes removes every opSize wrapper from e, used once type inference
// has run and the explicit size annotation is no longer needed. opSize
// nodes are represented as Unary(op.Size, sub).
func StripSizes(e Exp) Exp {
	if e == nil {
		return nil
	}
	if u, ok := e.(*Unary); ok && u.Operator == op.Size {
		return StripSizes(u.Sub1)
	}
	kids := Children(e)
	if len(kids) == 0 {
		return e
	}
	newKids := make([]Exp, len(kids))
	changed := false
	for i, k := range kids {
		nk := StripSizes(k)
		newKids[i] = nk
		if nk != k {
			changed = true
		}
	}
	if !changed {
		return e
	}
	return WithChildren(e, newKids)
}
