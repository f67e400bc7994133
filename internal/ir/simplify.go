package ir

import "decomp/internal/op"

// Simplify performs constant folding, algebraic identity removal, and
// address-of/dereference cancellation. It is a pure function of e and is
// idempotent: Simplify(Simplify(e)).Equals(Simplify(e)).
func Simplify(e Exp) Exp {
	if e == nil {
		return nil
	}

	switch v := e.(type) {
	case *Unary:
		sub := Simplify(v.Sub1)
		if folded := simplifyUnary(v.Operator, sub); folded != nil {
			return folded
		}
		if sub == v.Sub1 {
			return v
		}
		return &Unary{Operator: v.Operator, Sub1: sub}

	case *Binary:
		s1 := Simplify(v.Sub1)
		s2 := Simplify(v.Sub2)
		if folded := simplifyBinary(v.Operator, s1, s2); folded != nil {
			return Simplify(folded)
		}
		if s1 == v.Sub1 && s2 == v.Sub2 {
			return v
		}
		return &Binary{Operator: v.Operator, Sub1: s1, Sub2: s2}

	case *Ternary:
		s1, s2, s3 := Simplify(v.Sub1), Simplify(v.Sub2), Simplify(v.Sub3)
		if s1 == v.Sub1 && s2 == v.Sub2 && s3 == v.Sub3 {
			return v
		}
		return &Ternary{Operator: v.Operator, Sub1: s1, Sub2: s2, Sub3: s3}

	case *TypedExp:
		sub := Simplify(v.Sub1)
		if sub == v.Sub1 {
			return v
		}
		return &TypedExp{Type: v.Type, Sub1: sub}

	case *Location:
		sub := Simplify(v.Sub1)
		if v.Operator == op.MemOf {
			// memof(addrof(x)) -> x
			if inner, ok := sub.(*Unary); ok && inner.Operator == op.AddrOf {
				return inner.Sub1
			}
		}
		if sub == v.Sub1 {
			return v
		}
		return &Location{Operator: v.Operator, Sub1: sub, Owner: v.Owner}

	case *RefExp:
		sub := Simplify(v.Sub1)
		if sub == v.Sub1 {
			return v
		}
		return &RefExp{Sub1: sub, Def: v.Def}

	case *FlagDef:
		sub := Simplify(v.Sub1)
		if sub == v.Sub1 {
			return v
		}
		return &FlagDef{Sub1: sub, RTL: v.RTL}

	default:
		return e
	}
}

func intConst(v int64) *Const { return &Const{Kind: op.IntConst, Value: v} }

func asIntConst(e Exp) (int64, bool) {
	c, ok := e.(*Const)
	if !ok {
		return 0, false
	}
	return c.IntVal()
}

// simplifyUnary returns a simplified form of Unary{operator, sub}, or nil
// if no rule applies.
func simplifyUnary(operator op.Operator, sub Exp) Exp {
	switch operator {
	case op.Neg:
		if v, ok := asIntConst(sub); ok {
			return intConst(-v)
		}
	case op.BitNot:
		if v, ok := asIntConst(sub); ok {
			return intConst(^v)
		}
	case op.LogNot:
		if v, ok := asIntConst(sub); ok {
			if v == 0 {
				return intConst(1)
			}
			return intConst(0)
		}
	case op.AddrOf:
		// addrof(memof(x)) -> x
		if inner, ok := sub.(*Location); ok && inner.Operator == op.MemOf {
			return inner.Sub1
		}
	}
	return nil
}

// simplifyBinary returns a simplified form of Binary{operator, s1, s2}, or
// nil if no rule applies. The result may itself be further simplifiable
// (e.g. after folding a nested cancellation), so callers re-run Simplify on
// a non-nil result.
func simplifyBinary(operator op.Operator, s1, s2 Exp) Exp {
	v1, ok1 := asIntConst(s1)
	v2, ok2 := asIntConst(s2)

	if ok1 && ok2 {
		switch operator {
		case op.Plus:
			return intConst(v1 + v2)
		case op.Minus:
			return intConst(v1 - v2)
		case op.Mult:
			return intConst(v1 * v2)
		case op.Div:
			if v2 != 0 {
				return intConst(v1 / v2)
			}
		case op.Mod:
			if v2 != 0 {
				return intConst(v1 % v2)
			}
		case op.BitAnd:
			return intConst(v1 & v2)
		case op.BitOr:
			return intConst(v1 | v2)
		case op.BitXor:
			return intConst(v1 ^ v2)
		case op.ShiftL:
			return intConst(v1 << uint(v2))
		case op.ShiftR:
			return intConst(int64(uint64(v1) >> uint(v2)))
		case op.Equal:
			return boolConst(v1 == v2)
		case op.NotEqual:
			return boolConst(v1 != v2)
		case op.Less:
			return boolConst(v1 < v2)
		case op.LessEq:
			return boolConst(v1 <= v2)
		case op.Greater:
			return boolConst(v1 > v2)
		case op.GreaterEq:
			return boolConst(v1 >= v2)
		}
	}

	// Algebraic identities with one constant operand.
	switch operator {
	case op.Plus:
		if ok2 && v2 == 0 {
			return s1
		}
		if ok1 && v1 == 0 {
			return s2
		}
	case op.Minus:
		if ok2 && v2 == 0 {
			return s1
		}
	case op.Mult:
		if ok2 && v2 == 1 {
			return s1
		}
		if ok1 && v1 == 1 {
			return s2
		}
		if (ok2 && v2 == 0) || (ok1 && v1 == 0) {
			return intConst(0)
		}
	case op.BitXor:
		if ok2 && v2 == 0 {
			return s1
		}
	case op.BitOr:
		if ok2 && v2 == 0 {
			return s1
		}
	case op.BitAnd:
		if (ok2 && v2 == 0) || (ok1 && v1 == 0) {
			return intConst(0)
		}
	}

	return nil
}

func boolConst(v bool) *Const {
	if v {
		return intConst(1)
	}
	return intConst(0)
}
