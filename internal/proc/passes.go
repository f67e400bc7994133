package proc

import "decomp/internal/ir"

// eachStmt calls f for every statement in the procedure's CFG, in block-
// insertion then RTL order.
func (u *UserProc) eachStmt(f func(ir.Statement)) {
	for _, bb := range u.Cfg.Blocks() {
		for _, rtl := range bb.RTLs {
			for _, s := range rtl.Stmts {
				f(s)
			}
		}
	}
}

// PropagateStatements substitutes the defining Assign's Rhs for RefExp
// uses wherever ir.Bypass accepts the pair (the definition is an Assign to
// the referenced location; no further legality check is made), across every
// statement in the CFG, repeating until a full pass makes no further
// substitution or an iteration cap is hit. Returns whether anything
// changed. Must run after RenameBlockVars, since it keys substitution off
// RefExp.Def.
func (u *UserProc) PropagateStatements() bool {
	defs := make(map[ir.StmtID]ir.Statement)
	u.eachStmt(func(s ir.Statement) { defs[s.ID()] = s })

	anyChanged := false
	const maxIters = 20
	for i := 0; i < maxIters; i++ {
		changed := false
		u.eachStmt(func(s ir.Statement) {
			ir.RewriteExps(s, func(e ir.Exp) ir.Exp {
				ne, ch := bypassExp(e, defs)
				if ch {
					changed = true
				}
				return ne
			})
		})
		if !changed {
			break
		}
		anyChanged = true
	}
	return anyChanged
}

// bypassExp recurses over e, substituting any RefExp whose definition
// resolves (in defs) to an Assign ir.Bypass accepts. Subtrees with no
// substitution are returned unchanged (not copied), preserving structural
// sharing.
func bypassExp(e ir.Exp, defs map[ir.StmtID]ir.Statement) (ir.Exp, bool) {
	if e == nil {
		return nil, false
	}
	if ref, ok := e.(*ir.RefExp); ok {
		if def, ok := defs[ref.Def]; ok {
			if repl, ok := ir.Bypass(ref, def); ok {
				return repl, true
			}
		}
	}

	kids := ir.Children(e)
	if len(kids) == 0 {
		return e, false
	}
	newKids := make([]ir.Exp, len(kids))
	anyChanged := false
	for i, k := range kids {
		nk, ch := bypassExp(k, defs)
		newKids[i] = nk
		anyChanged = anyChanged || ch
	}
	if !anyChanged {
		return e, false
	}
	return ir.WithChildren(e, newKids), true
}

// RemoveUnusedStatements deletes every assignment (Assign, PhiAssign,
// BoolAssign) no remaining RefExp or phi entry references, repeating until
// a pass removes nothing: deleting one unused assignment can strip the
// last use of another. Non-assignment statements (calls, branches,
// returns) always survive -- they have effects beyond their defined
// locations. Only unreferenced statements are ever removed, so no RefExp
// is left dangling. Advances the procedure to early-done and returns how
// many statements were removed.
func (u *UserProc) RemoveUnusedStatements() int {
	total := 0
	for {
		used := make(map[ir.StmtID]bool)
		if u.TheReturnStmt != 0 {
			used[u.TheReturnStmt] = true
		}
		u.eachStmt(func(s ir.Statement) {
			if phi, ok := s.(*ir.PhiAssign); ok {
				for _, d := range phi.Defs {
					used[d.Def] = true
				}
			}
			for _, top := range ir.ExpsOf(s) {
				ir.WalkExp(top, func(e ir.Exp) {
					if ref, ok := e.(*ir.RefExp); ok {
						used[ref.Def] = true
					}
				})
			}
		})

		removed := 0
		for _, bb := range u.Cfg.Blocks() {
			for _, rtl := range bb.RTLs {
				kept := rtl.Stmts[:0]
				for _, s := range rtl.Stmts {
					if ir.IsAssignment(s) && !used[s.ID()] {
						removed++
						continue
					}
					kept = append(kept, s)
				}
				rtl.Stmts = kept
			}
		}
		if removed == 0 {
			break
		}
		total += removed
	}
	u.advance(StatusEarlyDone)
	return total
}

// FromSSAform leaves SSA: every RefExp is replaced by the Location it
// wraps, and every PhiAssign is dropped (its merge is implicit again once
// all uses name plain locations). Advances the procedure to final-done.
func (u *UserProc) FromSSAform() {
	for _, bb := range u.Cfg.Blocks() {
		for _, rtl := range bb.RTLs {
			kept := rtl.Stmts[:0]
			for _, s := range rtl.Stmts {
				if _, ok := s.(*ir.PhiAssign); ok {
					continue
				}
				ir.RewriteExps(s, stripRefs)
				kept = append(kept, s)
			}
			rtl.Stmts = kept
		}
	}
	u.advance(StatusFinalDone)
}

// stripRefs unwraps every RefExp in e, returning untouched subtrees as-is.
func stripRefs(e ir.Exp) ir.Exp {
	if e == nil {
		return nil
	}
	if ref, ok := e.(*ir.RefExp); ok {
		return stripRefs(ref.Sub1)
	}
	kids := ir.Children(e)
	if len(kids) == 0 {
		return e
	}
	newKids := make([]ir.Exp, len(kids))
	changed := false
	for i, k := range kids {
		nk := stripRefs(k)
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

// MarkCodeGenerated advances the procedure to its terminal status once a
// backend has emitted code for it.
func (u *UserProc) MarkCodeGenerated() { u.advance(StatusCodeGenerated) }
