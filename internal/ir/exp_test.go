package ir

import (
	"fmt"
	"testing"

	"decomp/internal/op"
	"decomp/internal/types"
)

func r0() Exp {
	return &Location{Operator: op.RegOf, Sub1: &Const{Kind: op.IntConst, Value: int64(0)}}
}

// S2: *i32* r0 := 5 + 6, printed with a 4-wide sequence-number prefix.
func TestPrintedFormScenarioS2(t *testing.T) {
	lhs := &TypedExp{Type: types.IntegerType{SizeBits: 32, Signedness: types.Signed}, Sub1: r0()}
	rhs := &Binary{Operator: op.Plus, Sub1: intConst(5), Sub2: intConst(6)}
	a := &Assign{base: base{Seq: 0}, Lhs: lhs.Sub1, Rhs: rhs, Type: lhs.Type}

	line := fmt.Sprintf("%4d %s", a.SeqNum(), a.String())
	want := "   0 *i32* r0 := 5 + 6"
	if line != want {
		t.Fatalf("got %q, want %q", line, want)
	}
}

func TestCloneDeepCopyIndependence(t *testing.T) {
	orig := &Binary{Operator: op.Plus, Sub1: intConst(1), Sub2: r0()}
	clone := Clone(orig)

	if !Equals(orig, clone) {
		t.Fatal("clone should be structurally equal to original")
	}

	cb := clone.(*Binary)
	cb.Sub1 = intConst(99)
	if Equals(orig, clone) {
		t.Fatal("mutating clone should not affect original")
	}
	ob := orig
	if v, _ := ob.Sub1.(*Const).IntVal(); v != 1 {
		t.Fatalf("original mutated: Sub1 = %v", v)
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	e := &Binary{
		Operator: op.Plus,
		Sub1:     &Unary{Operator: op.AddrOf, Sub1: &Location{Operator: op.MemOf, Sub1: r0()}},
		Sub2:     &Binary{Operator: op.Mult, Sub1: intConst(3), Sub2: intConst(0)},
	}
	once := Simplify(e)
	twice := Simplify(once)
	if !Equals(once, twice) {
		t.Fatalf("simplify not idempotent: once=%s twice=%s", once, twice)
	}
}

func TestSimplifyConstantFolding(t *testing.T) {
	e := &Binary{Operator: op.Plus, Sub1: intConst(5), Sub2: intConst(6)}
	got := Simplify(e)
	c, ok := got.(*Const)
	if !ok {
		t.Fatalf("got %T, want *Const", got)
	}
	if v, _ := c.IntVal(); v != 11 {
		t.Fatalf("got %d, want 11", v)
	}
}

func TestSimplifyAddrOfMemOfCancels(t *testing.T) {
	inner := r0()
	e := &Unary{Operator: op.AddrOf, Sub1: &Location{Operator: op.MemOf, Sub1: inner}}
	got := Simplify(e)
	if !Equals(got, inner) {
		t.Fatalf("got %s, want %s", got, inner)
	}
}

// S7: a constant-collecting visitor over `r0 := 5 + 6` finds exactly 5, 6.
type constCollector struct {
	found []int64
}

func (c *constCollector) VisitTerminal(e *Terminal) interface{} { return nil }
func (c *constCollector) VisitConst(e *Const) interface{} {
	if v, ok := e.IntVal(); ok {
		c.found = append(c.found, v)
	}
	return nil
}
func (c *constCollector) VisitUnary(e *Unary) interface{}     { Accept(e.Sub1, c); return nil }
func (c *constCollector) VisitBinary(e *Binary) interface{} {
	Accept(e.Sub1, c)
	Accept(e.Sub2, c)
	return nil
}
func (c *constCollector) VisitTernary(e *Ternary) interface{} {
	Accept(e.Sub1, c)
	Accept(e.Sub2, c)
	Accept(e.Sub3, c)
	return nil
}
func (c *constCollector) VisitTypedExp(e *TypedExp) interface{} { Accept(e.Sub1, c); return nil }
func (c *constCollector) VisitLocation(e *Location) interface{} { return nil }
func (c *constCollector) VisitRefExp(e *RefExp) interface{}     { Accept(e.Sub1, c); return nil }
func (c *constCollector) VisitFlagDef(e *FlagDef) interface{}   { Accept(e.Sub1, c); return nil }
func (c *constCollector) VisitTypeVal(e *TypeVal) interface{}   { return nil }

func TestConstantCollectingVisitorScenarioS7(t *testing.T) {
	rhs := &Binary{Operator: op.Plus, Sub1: intConst(5), Sub2: intConst(6)}
	a := &Assign{Lhs: r0(), Rhs: rhs}

	c := &constCollector{}
	Accept(a.Rhs, c)

	if len(c.found) != 2 || c.found[0] != 5 || c.found[1] != 6 {
		t.Fatalf("got %v, want [5 6]", c.found)
	}
}

func TestSearchReplace(t *testing.T) {
	e := &Binary{Operator: op.Plus, Sub1: r0(), Sub2: intConst(6)}
	// WildRegOf matches any Location with Operator RegOf, regardless of
	// which register it names.
	pattern := &Location{Operator: op.WildRegOf}

	result, changed := SearchReplace(e, pattern, intConst(42))
	if !changed {
		t.Fatal("expected a replacement")
	}
	b := result.(*Binary)
	if c, ok := b.Sub1.(*Const); !ok || func() int64 { v, _ := c.IntVal(); return v }() != 42 {
		t.Fatalf("got %s, want Sub1 replaced with 42", result)
	}
}

func TestCompareCommutativeConsistency(t *testing.T) {
	a := &Binary{Operator: op.Plus, Sub1: intConst(1), Sub2: intConst(2)}
	b := &Binary{Operator: op.Plus, Sub1: intConst(1), Sub2: intConst(2)}
	if Compare(a, b) != 0 {
		t.Fatalf("equal expressions should compare equal")
	}
	c := &Binary{Operator: op.Plus, Sub1: intConst(1), Sub2: intConst(3)}
	if Compare(a, c) == 0 {
		t.Fatal("different expressions should not compare equal")
	}
	if Compare(a, c) != -Compare(c, a) {
		t.Fatal("Compare should be antisymmetric")
	}
}

func TestSubscriptVarsWrapsEveryUseOnce(t *testing.T) {
	loc := r0()
	a := &Assign{
		Lhs: r0(),
		Rhs: &Binary{Operator: op.Plus, Sub1: r0(), Sub2: intConst(1)},
	}

	if !SubscriptVars(a, loc, 7) {
		t.Fatal("expected subscripting to wrap at least one occurrence")
	}
	ref, ok := a.Rhs.(*Binary).Sub1.(*RefExp)
	if !ok {
		t.Fatalf("rhs operand = %T, want *RefExp", a.Rhs.(*Binary).Sub1)
	}
	if ref.Def != 7 {
		t.Fatalf("def = %d, want 7", ref.Def)
	}

	// Re-running must not double-wrap: occurrences already inside a
	// RefExp are left alone.
	if SubscriptVars(a, loc, 7) {
		t.Fatal("second subscripting pass should change nothing")
	}
	if _, ok := a.Rhs.(*Binary).Sub1.(*RefExp).Sub1.(*Location); !ok {
		t.Fatal("RefExp no longer wraps the bare location")
	}
}
