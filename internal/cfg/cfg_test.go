package cfg

import (
	"testing"

	"decomp/internal/ir"
	"decomp/internal/op"
)

func rtl(addr ir.Addr, stmts ...ir.Statement) *ir.RTL {
	return &ir.RTL{NativeAddr: addr, Stmts: stmts}
}

func intConst(v int64) ir.Exp { return &ir.Const{Kind: op.IntConst, Value: v} }

// buildDiamond builds entry -> (b1, b2) -> merge, the textbook phi-placement
// shape: entry defines nothing, b1 and b2 each define r0, merge uses r0.
func buildDiamond(t *testing.T) (*Cfg, BBID, BBID, BBID, BBID) {
	t.Helper()
	c := New()

	entryID, err := c.AddBB([]*ir.RTL{rtl(0x10)}, TwoWay)
	if err != nil {
		t.Fatal(err)
	}
	c.Entry = entryID

	r0 := func() ir.Exp { return &ir.Location{Operator: op.RegOf, Sub1: intConst(0)} }

	b1Assign := &ir.Assign{Lhs: r0(), Rhs: intConst(1)}
	b1ID, err := c.AddBB([]*ir.RTL{rtl(0x20, b1Assign)}, Fall)
	if err != nil {
		t.Fatal(err)
	}

	b2Assign := &ir.Assign{Lhs: r0(), Rhs: intConst(2)}
	b2ID, err := c.AddBB([]*ir.RTL{rtl(0x30, b2Assign)}, Fall)
	if err != nil {
		t.Fatal(err)
	}

	mergeUse := &ir.Assign{Lhs: r0(), Rhs: r0()}
	mergeID, err := c.AddBB([]*ir.RTL{rtl(0x40, mergeUse)}, OneWay)
	if err != nil {
		t.Fatal(err)
	}

	c.AddOutEdge(entryID, 0x20)
	c.AddOutEdge(entryID, 0x30)
	c.AddOutEdge(b1ID, 0x40)
	c.AddOutEdge(b2ID, 0x40)

	return c, entryID, b1ID, b2ID, mergeID
}

func TestWellFormedDiamond(t *testing.T) {
	c, _, _, _, _ := buildDiamond(t)
	if err := c.CheckWellFormed(); err != nil {
		t.Fatalf("expected well-formed, got %v", err)
	}
	if !c.WellFormed {
		t.Fatal("WellFormed flag not set")
	}
}

func TestWellFormedRejectsOrphanBlock(t *testing.T) {
	c, _, _, _, _ := buildDiamond(t)
	// Add a block with no in-edges that isn't the entry.
	if _, err := c.AddBB([]*ir.RTL{rtl(0x50)}, OneWay); err != nil {
		t.Fatal(err)
	}
	if err := c.CheckWellFormed(); err == nil {
		t.Fatal("expected well-formedness violation for orphan block")
	}
}

func TestDominatorsAndFrontier(t *testing.T) {
	c, entryID, b1ID, b2ID, mergeID := buildDiamond(t)
	c.ComputeOrdering()
	if err := c.ComputeDominators(); err != nil {
		t.Fatal(err)
	}

	if c.Block(b1ID).IDom != entryID {
		t.Fatalf("b1 idom = %v, want entry", c.Block(b1ID).IDom)
	}
	if c.Block(b2ID).IDom != entryID {
		t.Fatalf("b2 idom = %v, want entry", c.Block(b2ID).IDom)
	}
	if c.Block(mergeID).IDom != entryID {
		t.Fatalf("merge idom = %v, want entry (the immediate dominator of a diamond join)", c.Block(mergeID).IDom)
	}

	idf := c.IDF([]BBID{b1ID, b2ID})
	if len(idf) != 1 || idf[0] != mergeID {
		t.Fatalf("IDF({b1,b2}) = %v, want [%v]", idf, mergeID)
	}
}

func TestPlacePhiInsertsAtMergeBlock(t *testing.T) {
	c, _, _, _, mergeID := buildDiamond(t)
	c.ComputeOrdering()
	if err := c.ComputeDominators(); err != nil {
		t.Fatal(err)
	}
	gen := &ir.IDGen{}
	if err := PlacePhi(c, gen, 1); err != nil {
		t.Fatal(err)
	}

	head := headRTL(c.Block(mergeID))
	if len(head.Stmts) == 0 {
		t.Fatal("expected a PhiAssign inserted at merge block head")
	}
	phi, ok := head.Stmts[0].(*ir.PhiAssign)
	if !ok {
		t.Fatalf("head statement is %T, want *ir.PhiAssign", head.Stmts[0])
	}
	if len(phi.Defs) != 2 {
		t.Fatalf("phi has %d defs, want 2 (one per in-edge)", len(phi.Defs))
	}
}

func TestRenameVariablesProducesDominatingRefs(t *testing.T) {
	c, _, b1ID, _, mergeID := buildDiamond(t)
	c.ComputeOrdering()
	if err := c.ComputeDominators(); err != nil {
		t.Fatal(err)
	}
	gen := &ir.IDGen{}
	if err := PlacePhi(c, gen, 1); err != nil {
		t.Fatal(err)
	}
	if err := RenameVariables(c, 1); err != nil {
		t.Fatal(err)
	}

	// b1's assign should now have an unwrapped Lhs (def site) — the
	// statement itself is the new definition, nothing to check there.
	b1Assign := headRTL(c.Block(b1ID)).Stmts[0].(*ir.Assign)
	if _, ok := b1Assign.Lhs.(*ir.Location); !ok {
		t.Fatalf("b1 Lhs should remain a bare Location (def site), got %T", b1Assign.Lhs)
	}

	// merge's use of r0 should now be a RefExp whose Def is the phi
	// inserted at merge's own head (invariant 7: def dominates use, and a
	// block's own phi trivially dominates every other statement in it).
	mergeRTL := headRTL(c.Block(mergeID))
	phi := mergeRTL.Stmts[0].(*ir.PhiAssign)
	useStmt := mergeRTL.Stmts[1].(*ir.Assign)
	ref, ok := useStmt.Rhs.(*ir.RefExp)
	if !ok {
		t.Fatalf("merge use should be rewritten to RefExp, got %T", useStmt.Rhs)
	}
	if ref.Def != phi.ID() {
		t.Fatalf("merge use's def = %v, want the phi's id %v", ref.Def, phi.ID())
	}
}

// TestRenameDoesNotLeakDefsAcrossSiblings pins the dominator-tree scoping
// of the rename stacks: a definition made in one child of the entry block
// must not be visible in a sibling the definition does not dominate. The
// sibling's use has to rename to the live-in sentinel (def 0) instead.
func TestRenameDoesNotLeakDefsAcrossSiblings(t *testing.T) {
	c := New()
	r0 := func() ir.Exp { return &ir.Location{Operator: op.RegOf, Sub1: intConst(0)} }

	entryID, err := c.AddBB([]*ir.RTL{rtl(0x10)}, TwoWay)
	if err != nil {
		t.Fatal(err)
	}
	c.Entry = entryID

	defAssign := &ir.Assign{Lhs: r0(), Rhs: intConst(1)}
	if _, err := c.AddBB([]*ir.RTL{rtl(0x20, defAssign)}, Ret); err != nil {
		t.Fatal(err)
	}

	useAssign := &ir.Assign{Lhs: &ir.Location{Operator: op.RegOf, Sub1: intConst(1)}, Rhs: r0()}
	if _, err := c.AddBB([]*ir.RTL{rtl(0x30, useAssign)}, Ret); err != nil {
		t.Fatal(err)
	}

	c.AddOutEdge(entryID, 0x20)
	c.AddOutEdge(entryID, 0x30)

	c.ComputeOrdering()
	if err := c.ComputeDominators(); err != nil {
		t.Fatal(err)
	}
	gen := &ir.IDGen{}
	ir.InitStmtIdentity(defAssign, ir.StmtID(gen.Next()), 1)
	ir.InitStmtIdentity(useAssign, ir.StmtID(gen.Next()), 1)
	if err := PlacePhi(c, gen, 1); err != nil {
		t.Fatal(err)
	}
	if err := RenameVariables(c, 1); err != nil {
		t.Fatal(err)
	}

	ref, ok := useAssign.Rhs.(*ir.RefExp)
	if !ok {
		t.Fatalf("sibling use = %T, want *ir.RefExp", useAssign.Rhs)
	}
	if ref.Def != 0 {
		t.Fatalf("sibling use renamed to def %d, want 0 (live-in): the def does not dominate the use", ref.Def)
	}
}
