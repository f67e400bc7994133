package cfg

import (
	"decomp/internal/errs"
	"decomp/internal/ir"
)

// locKey returns the string that identifies e's Location for phi-placement
// and renaming purposes, and whether e is in fact a Location. Two Location
// nodes denote "the same" storage slot, for this purpose, when their
// printed forms agree (r0 == r0, m[r1] == m[r1]) — the same ordered-map-by-
// string-key discipline package ir's Compare backs for proven_true/symbol
// tables.
func locKey(e ir.Exp) (string, bool) {
	loc, ok := e.(*ir.Location)
	if !ok {
		return "", false
	}
	return loc.String(), true
}

// headRTL returns bb's first RTL, or nil if it has none.
func headRTL(bb *BasicBlock) *ir.RTL {
	if len(bb.RTLs) == 0 {
		return nil
	}
	return bb.RTLs[0]
}

// PlacePhi inserts a PhiAssign for every assigned Location at every block
// in the iterated dominance frontier of its definition set, at the head of
// that block's first RTL. It must run after ComputeOrdering/
// ComputeDominators.
func PlacePhi(c *Cfg, gen *ir.IDGen, procID ir.ProcID) error {
	if err := c.RequireDominators(); err != nil {
		return err
	}

	defBlocks := make(map[string][]BBID)
	exemplar := make(map[string]ir.Exp)
	for _, id := range c.Ordering {
		bb := c.Block(id)
		seen := make(map[string]bool)
		for _, rtl := range bb.RTLs {
			for _, stmt := range rtl.Stmts {
				for _, d := range stmt.GetDefinedLocations() {
					key, ok := locKey(d)
					if !ok || seen[key] {
						continue
					}
					seen[key] = true
					defBlocks[key] = append(defBlocks[key], id)
					if _, have := exemplar[key]; !have {
						exemplar[key] = d
					}
				}
			}
		}
	}

	for key, blocks := range defBlocks {
		frontier := c.IDF(blocks)
		for _, fid := range frontier {
			bb := c.Block(fid)
			rtl := headRTL(bb)
			if rtl == nil {
				continue
			}
			if hasPhiFor(rtl, key) {
				continue
			}
			defs := make([]ir.PhiDef, len(bb.InEdges))
			for i, predID := range bb.InEdges {
				pred := c.Block(predID)
				defs[i] = ir.PhiDef{BB: pred.HeadAddr(), Def: 0, Val: exemplar[key].Clone()}
			}
			phi := &ir.PhiAssign{Lhs: exemplar[key].Clone(), Defs: defs}
			ir.InitStmtIdentity(phi, ir.StmtID(gen.Next()), procID)
			rtl.Stmts = append([]ir.Statement{phi}, rtl.Stmts...)
		}
	}
	return nil
}

func hasPhiFor(rtl *ir.RTL, key string) bool {
	for _, stmt := range rtl.Stmts {
		phi, ok := stmt.(*ir.PhiAssign)
		if !ok {
			return false // phis are always at the head; once we hit a non-phi we're done
		}
		if k, ok := locKey(phi.Lhs); ok && k == key {
			return true
		}
	}
	return false
}

// RenameVariables implements Cytron et al.'s SSA renaming as an in-order
// DFS over the dominator tree: every use is
// rewritten to RefExp(loc, def), every definition pushes its statement's
// id onto that Location's stack, and each successor's phi arguments are
// filled from the top of stack along the matching in-edge. Must run after
// PlacePhi.
func RenameVariables(c *Cfg, procID ir.ProcID) error {
	if err := c.RequireDominators(); err != nil {
		return err
	}

	children := make(map[BBID][]BBID)
	for _, id := range c.Ordering {
		bb := c.Block(id)
		if bb.IDom != 0 && bb.IDom != id {
			children[bb.IDom] = append(children[bb.IDom], id)
		}
	}

	stacks := make(map[string][]ir.StmtID)

	var visit func(id BBID)
	visit = func(id BBID) {
		bb := c.Block(id)
		heights := make(map[string]int, len(stacks))
		for k, s := range stacks {
			heights[k] = len(s)
		}

		for _, rtl := range bb.RTLs {
			for _, stmt := range rtl.Stmts {
				if phi, ok := stmt.(*ir.PhiAssign); ok {
					pushDef(stacks, phi.Lhs, stmt.ID())
					continue
				}
				rewriteStatementUses(stmt, stacks)
				for _, d := range stmt.GetDefinedLocations() {
					pushDef(stacks, d, stmt.ID())
				}
			}
		}

		for _, succID := range bb.OutEdges {
			succ := c.Block(succID)
			rtl := headRTL(succ)
			if rtl == nil {
				continue
			}
			head := bb.HeadAddr()
			for _, stmt := range rtl.Stmts {
				phi, ok := stmt.(*ir.PhiAssign)
				if !ok {
					break
				}
				key, _ := locKey(phi.Lhs)
				for i := range phi.Defs {
					if phi.Defs[i].BB != head {
						continue
					}
					if top, ok := topOf(stacks, key); ok {
						phi.Defs[i].Def = top
					}
				}
			}
		}

		for _, child := range children[id] {
			visit(child)
		}

		// Pop back to the pre-block height for every stack, including
		// those first created inside this block (entry height 0): a def
		// made here must not survive into a dominator-tree sibling.
		for k, s := range stacks {
			if h := heights[k]; len(s) > h {
				stacks[k] = s[:h]
			}
		}
	}

	if c.Entry == 0 {
		return errs.Invariant("", "RenameVariables: no entry block")
	}
	visit(c.Entry)
	return nil
}

func pushDef(stacks map[string][]ir.StmtID, loc ir.Exp, def ir.StmtID) {
	key, ok := locKey(loc)
	if !ok {
		return
	}
	stacks[key] = append(stacks[key], def)
}

func topOf(stacks map[string][]ir.StmtID, key string) (ir.StmtID, bool) {
	s := stacks[key]
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}

// rewriteStatementUses replaces every Location use (not definition target)
// reachable from stmt's rhs/cond/argument expressions with
// RefExp(loc, top-of-stack), mutating stmt in place. Definition-target
// expressions (Assign.Lhs, PhiAssign.Lhs, CallStmt.Defines[].Lhs, ...) are
// left untouched: they are the def site, not a use.
func rewriteStatementUses(stmt ir.Statement, stacks map[string][]ir.StmtID) {
	rewrite := func(e ir.Exp) ir.Exp { return rewriteUses(e, stacks) }

	switch s := stmt.(type) {
	case *ir.Assign:
		s.Rhs = rewrite(s.Rhs)
		if s.Guard != nil {
			s.Guard = rewrite(s.Guard)
		}
	case *ir.BoolAssign:
		s.Cond = rewrite(s.Cond)
	case *ir.CallStmt:
		if s.IsComputed {
			s.Dest = rewrite(s.Dest)
		}
		for i := range s.Arguments {
			s.Arguments[i].Rhs = rewrite(s.Arguments[i].Rhs)
		}
	case *ir.GotoStmt:
		if s.IsComputed {
			s.Dest = rewrite(s.Dest)
		}
	case *ir.BranchStmt:
		s.Cond = rewrite(s.Cond)
		if s.IsComputed {
			s.Dest = rewrite(s.Dest)
		}
	case *ir.CaseStmt:
		s.Dest = rewrite(s.Dest)
	case *ir.ReturnStmt:
		for i := range s.Returns {
			s.Returns[i].Rhs = rewrite(s.Returns[i].Rhs)
		}
	}
}

// rewriteUses walks e pre-order, wrapping every Location leaf in
// RefExp(loc, def) where def is the top of that Location's definition
// stack (0, meaning "live-in/parameter", if the stack is empty).
func rewriteUses(e ir.Exp, stacks map[string][]ir.StmtID) ir.Exp {
	if e == nil {
		return nil
	}
	if loc, ok := e.(*ir.Location); ok {
		key, _ := locKey(loc)
		def, _ := topOf(stacks, key)
		return &ir.RefExp{Sub1: loc, Def: def}
	}
	kids := ir.Children(e)
	if len(kids) == 0 {
		return e
	}
	newKids := make([]ir.Exp, len(kids))
	changed := false
	for i, k := range kids {
		nk := rewriteUses(k, stacks)
		newKids[i] = nk
		if nk != k {
			changed = true
		}
	}
	if !changed {
		return e
	}
	return ir.WithChildren(e, newKids)
}
