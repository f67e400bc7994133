package proc

import (
	"testing"

	"decomp/internal/cfg"
	"decomp/internal/ir"
	"decomp/internal/op"
)

func regLoc(n int64) ir.Exp {
	return &ir.Location{Operator: op.RegOf, Sub1: &ir.Const{Kind: op.IntConst, Value: n}}
}

// buildSSAProc hand-builds a post-rename single-block procedure:
//
//	1: r0 := 5
//	2: r1 := r0{1} + 1
//	3: r2 := 7          (dead: nothing references statement 3)
//	4: return r1{2}
func buildSSAProc(t *testing.T) (*UserProc, *ir.Assign, *ir.ReturnStmt) {
	t.Helper()
	u := NewUserProc(1, 0x1000, Instantiate(PlatformGeneric, ConventionC, "f"))

	def := &ir.Assign{Lhs: regLoc(0), Rhs: &ir.Const{Kind: op.IntConst, Value: int64(5)}}
	ir.InitStmtIdentity(def, 1, u.ID)

	use := &ir.Assign{
		Lhs: regLoc(1),
		Rhs: &ir.Binary{
			Operator: op.Plus,
			Sub1:     &ir.RefExp{Sub1: regLoc(0), Def: 1},
			Sub2:     &ir.Const{Kind: op.IntConst, Value: int64(1)},
		},
	}
	ir.InitStmtIdentity(use, 2, u.ID)

	dead := &ir.Assign{Lhs: regLoc(2), Rhs: &ir.Const{Kind: op.IntConst, Value: int64(7)}}
	ir.InitStmtIdentity(dead, 3, u.ID)

	ret := &ir.ReturnStmt{Returns: []ir.Assignment{{Lhs: regLoc(1), Rhs: &ir.RefExp{Sub1: regLoc(1), Def: 2}}}}
	ir.InitStmtIdentity(ret, 4, u.ID)

	bbID, err := u.Cfg.AddBB([]*ir.RTL{{NativeAddr: 0x1000, Stmts: []ir.Statement{def, use, dead, ret}}}, cfg.OneWay)
	if err != nil {
		t.Fatalf("AddBB: %v", err)
	}
	u.Cfg.Entry = bbID
	u.Cfg.Exit = bbID
	return u, use, ret
}

func TestPropagateStatementsSubstitutesDefinitions(t *testing.T) {
	u, use, ret := buildSSAProc(t)

	if !u.PropagateStatements() {
		t.Fatal("expected propagation to change something")
	}

	// r0{1} inside statement 2 becomes the constant 5.
	add, ok := use.Rhs.(*ir.Binary)
	if !ok {
		t.Fatalf("use rhs = %T, want *ir.Binary", use.Rhs)
	}
	c, ok := add.Sub1.(*ir.Const)
	if !ok {
		t.Fatalf("use operand = %T, want *ir.Const after propagation", add.Sub1)
	}
	if v, _ := c.IntVal(); v != 5 {
		t.Fatalf("got %d, want 5", v)
	}

	// r1{2} in the return becomes statement 2's whole rhs.
	if _, ok := ret.Returns[0].Rhs.(*ir.RefExp); ok {
		t.Fatal("return operand still a RefExp after propagation")
	}
}

func TestRemoveUnusedStatementsDropsOnlyDeadAssigns(t *testing.T) {
	u, _, _ := buildSSAProc(t)
	u.PropagateStatements()

	removed := u.RemoveUnusedStatements()
	if removed == 0 {
		t.Fatal("expected at least the dead assign to be removed")
	}
	if u.Status() != StatusEarlyDone {
		t.Fatalf("status = %v, want StatusEarlyDone", u.Status())
	}

	// The return must survive, and nothing it references may be gone.
	var sawReturn bool
	u.eachStmt(func(s ir.Statement) {
		if _, ok := s.(*ir.ReturnStmt); ok {
			sawReturn = true
		}
		if s.ID() == 3 {
			t.Fatal("dead assign (statement 3) survived")
		}
	})
	if !sawReturn {
		t.Fatal("return statement was removed")
	}
}

func TestFromSSAformStripsRefsAndPhis(t *testing.T) {
	u, _, ret := buildSSAProc(t)

	phi := &ir.PhiAssign{Lhs: regLoc(0), Defs: []ir.PhiDef{{BB: 0x1000, Def: 1, Val: regLoc(0)}}}
	ir.InitStmtIdentity(phi, 9, u.ID)
	head := u.Cfg.Blocks()[0].RTLs[0]
	head.Stmts = append([]ir.Statement{phi}, head.Stmts...)

	u.FromSSAform()

	if u.Status() != StatusFinalDone {
		t.Fatalf("status = %v, want StatusFinalDone", u.Status())
	}
	u.eachStmt(func(s ir.Statement) {
		if _, ok := s.(*ir.PhiAssign); ok {
			t.Fatal("PhiAssign survived FromSSAform")
		}
		for _, top := range ir.ExpsOf(s) {
			ir.WalkExp(top, func(e ir.Exp) {
				if _, ok := e.(*ir.RefExp); ok {
					t.Fatalf("RefExp survived FromSSAform in statement %d", s.ID())
				}
			})
		}
	})

	if _, ok := ret.Returns[0].Rhs.(*ir.Location); !ok {
		t.Fatalf("return operand = %T, want bare *ir.Location", ret.Returns[0].Rhs)
	}
}
