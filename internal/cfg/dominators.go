package cfg

import "decomp/internal/errs"

// ComputeDominators runs the Lengauer-Tarjan algorithm over a DFS numbering
// from Entry, filling each block's IDom, then derives each block's
// dominance frontier via the Cytron et al. formulation. If
// Entry is unset, this is a no-op.
func (c *Cfg) ComputeDominators() error {
	if c.Entry == 0 {
		return nil
	}

	n := len(c.blocks) - 1 // number of real (1-indexed) block slots
	if n == 0 {
		return nil
	}

	// dfnum[id] is this block's 1-based DFS number, 0 if unreached.
	dfnum := make([]int, len(c.blocks))
	vertex := make([]BBID, 1) // vertex[i] = the block with dfnum i; vertex[0] unused
	parent := make([]int, len(c.blocks))

	var dfs2 func(id BBID)
	dfs2 = func(id BBID) {
		if id == 0 || dfnum[id] != 0 {
			return
		}
		dfnum[id] = len(vertex)
		vertex = append(vertex, id)
		for _, succ := range c.blocks[id].OutEdges {
			if succ != 0 && dfnum[succ] == 0 {
				parent[len(vertex)] = dfnum[id]
				dfs2(succ)
			}
		}
	}
	dfs2(c.Entry)

	size := len(vertex) // vertex indices 1..size-1 are valid
	semi := make([]int, size)
	idomN := make([]int, size) // by dfnum
	ancestor := make([]int, size)
	label := make([]int, size)
	bucket := make([][]int, size)
	pred := make([][]int, size)

	for i := 1; i < size; i++ {
		semi[i] = i
		label[i] = i
	}

	// Build predecessor lists in dfnum space.
	for i := 1; i < size; i++ {
		id := vertex[i]
		for _, p := range c.blocks[id].InEdges {
			if p != 0 && dfnum[p] != 0 {
				pred[i] = append(pred[i], dfnum[p])
			}
		}
	}

	var compress func(v int)
	compress = func(v int) {
		if ancestor[ancestor[v]] != 0 {
			compress(ancestor[v])
			if semi[label[ancestor[v]]] < semi[label[v]] {
				label[v] = label[ancestor[v]]
			}
			ancestor[v] = ancestor[ancestor[v]]
		}
	}
	eval := func(v int) int {
		if ancestor[v] == 0 {
			return v
		}
		compress(v)
		return label[v]
	}
	link := func(p, child int) {
		ancestor[child] = p
	}

	for i := size - 1; i >= 2; i-- {
		w := i
		for _, v := range pred[w] {
			u := eval(v)
			if semi[u] < semi[w] {
				semi[w] = semi[u]
			}
		}
		bucket[semi[w]] = append(bucket[semi[w]], w)
		link(parent[w], w)
		for _, v := range bucket[parent[w]] {
			u := eval(v)
			if semi[u] < semi[v] {
				idomN[v] = u
			} else {
				idomN[v] = parent[w]
			}
		}
		bucket[parent[w]] = nil
	}

	for i := 2; i < size; i++ {
		if idomN[i] != semi[i] {
			idomN[i] = idomN[idomN[i]]
		}
	}
	idomN[1] = 0 // entry has no dominator

	for i := 1; i < size; i++ {
		id := vertex[i]
		if i == 1 {
			c.blocks[id].IDom = 0
			continue
		}
		c.blocks[id].IDom = vertex[idomN[i]]
	}

	c.computeDominanceFrontiers(vertex[1:])
	return nil
}

// computeDominanceFrontiers fills each reached block's DF per Cytron et al.:
// for each block b with >1 predecessor, for each predecessor p, walk up
// from p to (but not including) idom(b), adding b to each visited block's
// frontier.
func (c *Cfg) computeDominanceFrontiers(reached []BBID) {
	for _, id := range reached {
		c.blocks[id].DF = nil
	}
	for _, id := range reached {
		bb := c.blocks[id]
		if len(bb.InEdges) < 2 {
			continue
		}
		for _, p := range bb.InEdges {
			runner := p
			for runner != 0 && runner != bb.IDom {
				rb := c.blocks[runner]
				if !containsBB(rb.DF, id) {
					rb.DF = append(rb.DF, id)
				}
				runner = rb.IDom
			}
		}
	}
}

func containsBB(ids []BBID, id BBID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Dominates reports whether a dominates b (reflexively: a block dominates
// itself), walking the idom chain from b.
func (c *Cfg) Dominates(a, b BBID) bool {
	for cur := b; cur != 0; cur = c.blocks[cur].IDom {
		if cur == a {
			return true
		}
	}
	return false
}

// IDF returns the iterated dominance frontier of the block set s: the
// smallest superset of the union of each block's DF that is closed under
// taking dominance frontiers.
func (c *Cfg) IDF(s []BBID) []BBID {
	inSet := make(map[BBID]bool, len(s))
	var worklist []BBID
	for _, id := range s {
		if !inSet[id] {
			inSet[id] = true
			worklist = append(worklist, id)
		}
	}
	result := make(map[BBID]bool)
	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		bb := c.Block(id)
		if bb == nil {
			continue
		}
		for _, d := range bb.DF {
			if !result[d] {
				result[d] = true
				worklist = append(worklist, d)
			}
		}
	}
	out := make([]BBID, 0, len(result))
	for _, id := range c.Ordering {
		if result[id] {
			out = append(out, id)
		}
	}
	if out == nil {
		return nil
	}
	return out
}

// RequireDominators is a convenience guard used by callers (place_phi,
// rename_variables) that must not run before ComputeOrdering/
// ComputeDominators have populated the dominator tree.
func (c *Cfg) RequireDominators() error {
	if len(c.Ordering) == 0 {
		return errs.Invariant("", "dominator tree not computed: call ComputeOrdering then ComputeDominators first")
	}
	return nil
}
