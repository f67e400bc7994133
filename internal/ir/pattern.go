package ir

import "decomp/internal/op"

// Matches reports whether cand matches pattern. opWild* operators in
// pattern match any candidate node of the shape they stand for: plain
// Wildcard matches anything; WildIntConst/WildStrConst match a Const of the
// corresponding kind; WildMemOf/WildRegOf/WildRegOfReg match a Location of
// the corresponding operator. Non-wildcard
// nodes must match exactly in shape and operator, and recurse into
// children (so a pattern can mix literal structure with nested wildcards).
func Matches(pattern, cand Exp) bool {
	if pattern == nil || cand == nil {
		return pattern == nil && cand == nil
	}

	if op.IsWild(pattern.Op()) {
		switch pattern.Op() {
		case op.Wildcard:
			return true
		case op.WildIntConst:
			c, ok := cand.(*Const)
			return ok && c.Kind == op.IntConst
		case op.WildStrConst:
			c, ok := cand.(*Const)
			return ok && c.Kind == op.StrConst
		case op.WildMemOf:
			l, ok := cand.(*Location)
			return ok && l.Operator == op.MemOf
		case op.WildRegOf:
			l, ok := cand.(*Location)
			return ok && l.Operator == op.RegOf
		case op.WildRegOfReg:
			l, ok := cand.(*Location)
			return ok && l.Operator == op.RegOfReg
		}
	}

	switch p := pattern.(type) {
	case *Terminal:
		c, ok := cand.(*Terminal)
		return ok && c.Operator == p.Operator
	case *Const:
		c, ok := cand.(*Const)
		return ok && c.Kind == p.Kind && c.Value == p.Value
	case *Unary:
		c, ok := cand.(*Unary)
		return ok && c.Operator == p.Operator && Matches(p.Sub1, c.Sub1)
	case *Binary:
		c, ok := cand.(*Binary)
		return ok && c.Operator == p.Operator && Matches(p.Sub1, c.Sub1) && Matches(p.Sub2, c.Sub2)
	case *Ternary:
		c, ok := cand.(*Ternary)
		return ok && c.Operator == p.Operator &&
			Matches(p.Sub1, c.Sub1) && Matches(p.Sub2, c.Sub2) && Matches(p.Sub3, c.Sub3)
	case *TypedExp:
		c, ok := cand.(*TypedExp)
		return ok && p.Type.Equals(c.Type) && Matches(p.Sub1, c.Sub1)
	case *Location:
		c, ok := cand.(*Location)
		return ok && c.Operator == p.Operator && Matches(p.Sub1, c.Sub1)
	case *RefExp:
		c, ok := cand.(*RefExp)
		return ok && c.Def == p.Def && Matches(p.Sub1, c.Sub1)
	case *FlagDef:
		c, ok := cand.(*FlagDef)
		return ok && Matches(p.Sub1, c.Sub1)
	case *TypeVal:
		c, ok := cand.(*TypeVal)
		return ok && p.Type.Equals(c.Type)
	default:
		return false
	}
}

// SearchAll appends every subtree of e (e included) matching pattern to out,
// pre-order.
func SearchAll(e, pattern Exp, out *[]Exp) {
	if e == nil {
		return
	}
	if Matches(pattern, e) {
		*out = append(*out, e)
	}
	for _, c := range Children(e) {
		SearchAll(c, pattern, out)
	}
}

// SearchReplace returns a tree equal to e except every subtree matching
// pattern is replaced by a fresh clone of repl. changed reports whether any
// replacement occurred. Nodes with no matching descendant are returned
// unchanged (not copied), preserving structural sharing; only the path from
// the root to each replaced node is rebuilt.
func SearchReplace(e, pattern, repl Exp) (result Exp, changed bool) {
	if e == nil {
		return nil, false
	}
	if Matches(pattern, e) {
		return Clone(repl), true
	}

	kids := Children(e)
	if len(kids) == 0 {
		return e, false
	}
	newKids := make([]Exp, len(kids))
	anyChanged := false
	for i, k := range kids {
		nk, kc := SearchReplace(k, pattern, repl)
		newKids[i] = nk
		anyChanged = anyChanged || kc
	}
	if !anyChanged {
		return e, false
	}
	return WithChildren(e, newKids), true
}
