package ir

// Clone returns a deep copy of e. A freshly cloned tree shares no node
// pointers with e, so mutating the clone never affects e. This is the
// copy-on-write primitive every in-place rewrite must call before
// touching a node whose identity might be observed elsewhere.
func Clone(e Exp) Exp {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *Terminal:
		cp := *v
		return &cp
	case *Const:
		cp := *v
		return &cp
	case *Unary:
		return &Unary{Operator: v.Operator, Sub1: Clone(v.Sub1)}
	case *Binary:
		return &Binary{Operator: v.Operator, Sub1: Clone(v.Sub1), Sub2: Clone(v.Sub2)}
	case *Ternary:
		return &Ternary{Operator: v.Operator, Sub1: Clone(v.Sub1), Sub2: Clone(v.Sub2), Sub3: Clone(v.Sub3)}
	case *TypedExp:
		return &TypedExp{Type: v.Type, Sub1: Clone(v.Sub1)}
	case *Location:
		return &Location{Operator: v.Operator, Sub1: Clone(v.Sub1), Owner: v.Owner}
	case *RefExp:
		return &RefExp{Sub1: Clone(v.Sub1), Def: v.Def}
	case *FlagDef:
		return &FlagDef{Sub1: Clone(v.Sub1), RTL: v.RTL}
	case *TypeVal:
		cp := *v
		return &cp
	default:
		panic("ir: Clone: unknown Exp variant")
	}
}

func (e *Terminal) Clone() Exp { return Clone(e) }
func (e *Const) Clone() Exp    { return Clone(e) }
func (e *Unary) Clone() Exp    { return Clone(e) }
func (e *Binary) Clone() Exp   { return Clone(e) }
func (e *Ternary) Clone() Exp  { return Clone(e) }
func (e *TypedExp) Clone() Exp { return Clone(e) }
func (e *Location) Clone() Exp { return Clone(e) }
func (e *RefExp) Clone() Exp   { return Clone(e) }
func (e *FlagDef) Clone() Exp  { return Clone(e) }
func (e *TypeVal) Clone() Exp  { return Clone(e) }

// Equals reports structural equality between a and b.
func Equals(a, b Exp) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case *Terminal:
		bv, ok := b.(*Terminal)
		return ok && av.Operator == bv.Operator
	case *Const:
		bv, ok := b.(*Const)
		return ok && av.Kind == bv.Kind && av.Value == bv.Value
	case *Unary:
		bv, ok := b.(*Unary)
		return ok && av.Operator == bv.Operator && Equals(av.Sub1, bv.Sub1)
	case *Binary:
		bv, ok := b.(*Binary)
		return ok && av.Operator == bv.Operator && Equals(av.Sub1, bv.Sub1) && Equals(av.Sub2, bv.Sub2)
	case *Ternary:
		bv, ok := b.(*Ternary)
		return ok && av.Operator == bv.Operator &&
			Equals(av.Sub1, bv.Sub1) && Equals(av.Sub2, bv.Sub2) && Equals(av.Sub3, bv.Sub3)
	case *TypedExp:
		bv, ok := b.(*TypedExp)
		return ok && av.Type.Equals(bv.Type) && Equals(av.Sub1, bv.Sub1)
	case *Location:
		bv, ok := b.(*Location)
		return ok && av.Operator == bv.Operator && av.Owner == bv.Owner && Equals(av.Sub1, bv.Sub1)
	case *RefExp:
		bv, ok := b.(*RefExp)
		return ok && av.Def == bv.Def && Equals(av.Sub1, bv.Sub1)
	case *FlagDef:
		bv, ok := b.(*FlagDef)
		return ok && av.RTL == bv.RTL && Equals(av.Sub1, bv.Sub1)
	case *TypeVal:
		bv, ok := b.(*TypeVal)
		return ok && av.Type.Equals(bv.Type)
	default:
		return false
	}
}

func (e *Terminal) Equals(o Exp) bool { return Equals(e, o) }
func (e *Const) Equals(o Exp) bool    { return Equals(e, o) }
func (e *Unary) Equals(o Exp) bool    { return Equals(e, o) }
func (e *Binary) Equals(o Exp) bool   { return Equals(e, o) }
func (e *Ternary) Equals(o Exp) bool  { return Equals(e, o) }
func (e *TypedExp) Equals(o Exp) bool { return Equals(e, o) }
func (e *Location) Equals(o Exp) bool { return Equals(e, o) }
func (e *RefExp) Equals(o Exp) bool   { return Equals(e, o) }
func (e *FlagDef) Equals(o Exp) bool  { return Equals(e, o) }
func (e *TypeVal) Equals(o Exp) bool  { return Equals(e, o) }

// Children returns e's direct operand subtrees, in order. Used by generic
// tree algorithms (pattern matching, simplification) instead of a visitor
// so they don't need one case per concrete Exp type.
func Children(e Exp) []Exp {
	switch v := e.(type) {
	case *Unary:
		return []Exp{v.Sub1}
	case *Binary:
		return []Exp{v.Sub1, v.Sub2}
	case *Ternary:
		return []Exp{v.Sub1, v.Sub2, v.Sub3}
	case *TypedExp:
		return []Exp{v.Sub1}
	case *Location:
		return []Exp{v.Sub1}
	case *RefExp:
		return []Exp{v.Sub1}
	case *FlagDef:
		return []Exp{v.Sub1}
	default:
		return nil
	}
}

// WithChildren returns a copy of e with its children replaced by news, in
// the same order Children(e) reported them. Arity mismatches panic: it is
// a programming error for a caller to add or drop operands.
func WithChildren(e Exp, news []Exp) Exp {
	switch v := e.(type) {
	case *Unary:
		return &Unary{Operator: v.Operator, Sub1: news[0]}
	case *Binary:
		return &Binary{Operator: v.Operator, Sub1: news[0], Sub2: news[1]}
	case *Ternary:
		return &Ternary{Operator: v.Operator, Sub1: news[0], Sub2: news[1], Sub3: news[2]}
	case *TypedExp:
		return &TypedExp{Type: v.Type, Sub1: news[0]}
	case *Location:
		return &Location{Operator: v.Operator, Sub1: news[0], Owner: v.Owner}
	case *RefExp:
		return &RefExp{Sub1: news[0], Def: v.Def}
	case *FlagDef:
		return &FlagDef{Sub1: news[0], RTL: v.RTL}
	default:
		return e
	}
}
