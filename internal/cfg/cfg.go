package cfg

import (
	"decomp/internal/errs"
	"decomp/internal/ir"
)

// Cfg owns every BasicBlock for one UserProc. Blocks live in a
// 1-indexed arena (blocks[0] is unused) so BBID zero can mean "unset"
// without colliding with a real block.
type Cfg struct {
	Entry  BBID
	Exit   BBID
	blocks []*BasicBlock
	byAddr map[ir.Addr]BBID

	Ordering    []BBID // DFS pre-order, set by ComputeOrdering
	RevOrdering []BBID // reverse DFS, set by ComputeOrdering

	WellFormed bool
	LastLabel  int
}

// New returns an empty Cfg ready to accept blocks via AddBB.
func New() *Cfg {
	return &Cfg{blocks: []*BasicBlock{nil}, byAddr: make(map[ir.Addr]BBID)}
}

// Block resolves id to its BasicBlock, or nil for id 0 or an out-of-range
// id (never expected in a well-formed Cfg, but callers walking partially
// built graphs should not panic).
func (c *Cfg) Block(id BBID) *BasicBlock {
	if id <= 0 || int(id) >= len(c.blocks) {
		return nil
	}
	return c.blocks[id]
}

// Blocks returns every block in arena (insertion) order.
func (c *Cfg) Blocks() []*BasicBlock { return c.blocks[1:] }

// BlockAt resolves a block by its head native address, the stable
// cross-reference key persistence uses for edges and structural
// annotations (package xmlio) instead of a separate synthetic id, since
// BBID is only an arena index and is not guaranteed to stay stable across
// a save/reload cycle.
func (c *Cfg) BlockAt(addr ir.Addr) (*BasicBlock, bool) {
	id, ok := c.byAddr[addr]
	if !ok {
		return nil, false
	}
	return c.blocks[id], true
}

// AddBB creates a BB from rtls with the given node type. If an incomplete
// placeholder already exists at rtls[0]'s head address (created earlier by
// AddOutEdge), it is completed in place and its BBID is kept stable so
// existing in-edges remain valid. Adding a BB whose head address matches an
// existing *complete* BB is a duplicate-head error.
func (c *Cfg) AddBB(rtls []*ir.RTL, nodeType NodeType) (BBID, error) {
	if len(rtls) == 0 {
		return 0, errs.Invariant("", "AddBB: rtls must be non-empty")
	}
	head := rtls[0].NativeAddr

	if id, ok := c.byAddr[head]; ok {
		bb := c.blocks[id]
		if !bb.Flags.Incomplete {
			return 0, errs.Invariant(head.String(), "duplicate-head: a complete BB already exists at this address")
		}
		bb.RTLs = rtls
		bb.NodeType = nodeType
		bb.Flags.Incomplete = false
		return id, nil
	}

	id := BBID(len(c.blocks))
	bb := &BasicBlock{id: id, RTLs: rtls, NodeType: nodeType}
	c.blocks = append(c.blocks, bb)
	c.byAddr[head] = id
	return id, nil
}

// ensurePlaceholder returns the BBID for addr, creating an incomplete
// placeholder BB if none exists yet.
func (c *Cfg) ensurePlaceholder(addr ir.Addr) BBID {
	if id, ok := c.byAddr[addr]; ok {
		return id
	}
	id := BBID(len(c.blocks))
	bb := &BasicBlock{
		id:       id,
		RTLs:     []*ir.RTL{{NativeAddr: addr}},
		NodeType: Invalid,
		Flags:    Flags{Incomplete: true},
	}
	c.blocks = append(c.blocks, bb)
	c.byAddr[addr] = id
	return id
}

// AddOutEdge creates an out-edge from -> dest_addr and, atomically, the
// mirroring in-edge on the destination. If dest_addr has no BB yet, an
// incomplete placeholder is created so later code can still target it
//.
func (c *Cfg) AddOutEdge(from BBID, destAddr ir.Addr) BBID {
	dest := c.ensurePlaceholder(destAddr)
	fromBB := c.blocks[from]
	fromBB.OutEdges = append(fromBB.OutEdges, dest)
	destBB := c.blocks[dest]
	destBB.InEdges = append(destBB.InEdges, from)
	return dest
}

// Split splits the BB containing addr, if addr falls strictly inside an
// existing block's RTL run rather than at its head. In-edges stay on the
// upper half (the original BBID); a fresh lower-half BB takes the
// out-edges, and the upper half gets a single new out-edge to it. Returns
// the BBID of the lower half, or the existing BBID unchanged if addr is
// already a block head.
func (c *Cfg) Split(addr ir.Addr) (BBID, error) {
	for _, bb := range c.blocks[1:] {
		idx := -1
		for i, rtl := range bb.RTLs {
			if rtl.NativeAddr == addr {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		if idx == 0 {
			return bb.id, nil // already a head
		}

		lowerID := BBID(len(c.blocks))
		lower := &BasicBlock{
			id:       lowerID,
			RTLs:     bb.RTLs[idx:],
			NodeType: bb.NodeType,
			OutEdges: bb.OutEdges,
			InEdges:  []BBID{bb.id},
		}
		c.blocks = append(c.blocks, lower)
		c.byAddr[addr] = lowerID

		for _, succ := range lower.OutEdges {
			succBB := c.blocks[succ]
			for i, pred := range succBB.InEdges {
				if pred == bb.id {
					succBB.InEdges[i] = lowerID
				}
			}
		}

		bb.RTLs = bb.RTLs[:idx]
		bb.OutEdges = []BBID{lowerID}
		bb.NodeType = Fall

		return lowerID, nil
	}
	return 0, errs.Invariant(addr.String(), "Split: no BB contains this address")
}

// CheckWellFormed validates the CFG's well-formedness contract: every
// non-entry BB has at least one in-edge; every in-edge is mirrored as an
// out-edge on its source; edge lists contain no duplicates; exactly one
// entry and at most one exit. It sets c.WellFormed and returns the first
// violation found, if any.
func (c *Cfg) CheckWellFormed() error {
	c.WellFormed = false

	if c.Entry == 0 {
		return errs.Invariant("", "CheckWellFormed: no entry block set")
	}

	for _, bb := range c.Blocks() {
		if bb.id != c.Entry && len(bb.InEdges) == 0 {
			return errs.Invariant(bb.HeadAddr().String(), "non-entry BB has no in-edges")
		}
		if dup(bb.InEdges) {
			return errs.Invariant(bb.HeadAddr().String(), "duplicate in-edge")
		}
		if dup(bb.OutEdges) {
			return errs.Invariant(bb.HeadAddr().String(), "duplicate out-edge")
		}
		for _, succID := range bb.OutEdges {
			succ := c.Block(succID)
			if succ == nil || !contains(succ.InEdges, bb.id) {
				return errs.Invariant(bb.HeadAddr().String(), "out-edge not mirrored as in-edge on destination")
			}
		}
		for _, predID := range bb.InEdges {
			pred := c.Block(predID)
			if pred == nil || !contains(pred.OutEdges, bb.id) {
				return errs.Invariant(bb.HeadAddr().String(), "in-edge not mirrored as out-edge on source")
			}
		}
	}

	c.WellFormed = true
	return nil
}

func dup(ids []BBID) bool {
	seen := make(map[BBID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}

func contains(ids []BBID, id BBID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// ComputeOrdering fills Ordering (DFS pre-order from Entry, following
// out-edges) and RevOrdering (DFS pre-order from Exit, following
// in-edges), stamping each block's DFSFirst/DFSLast and RevDFSFirst/
// RevDFSLast accordingly. With no Exit set, RevOrdering falls back to
// seeding the reverse walk from the forward order's tail so every
// reachable block is still stamped. Required before ComputeDominators.
func (c *Cfg) ComputeOrdering() {
	c.Ordering = c.Ordering[:0]
	visited := make(map[BBID]bool)
	var counter int
	var visit func(BBID)
	visit = func(id BBID) {
		if id == 0 || visited[id] {
			return
		}
		visited[id] = true
		bb := c.blocks[id]
		bb.DFSFirst = counter
		counter++
		c.Ordering = append(c.Ordering, id)
		for _, succ := range bb.OutEdges {
			visit(succ)
		}
		bb.DFSLast = counter
		counter++
	}
	visit(c.Entry)

	c.RevOrdering = c.RevOrdering[:0]
	rvisited := make(map[BBID]bool)
	var rcounter int
	var rvisit func(BBID)
	rvisit = func(id BBID) {
		if id == 0 || rvisited[id] {
			return
		}
		rvisited[id] = true
		bb := c.blocks[id]
		bb.RevDFSFirst = rcounter
		rcounter++
		c.RevOrdering = append(c.RevOrdering, id)
		for _, pred := range bb.InEdges {
			rvisit(pred)
		}
		bb.RevDFSLast = rcounter
		rcounter++
	}
	if c.Exit != 0 {
		rvisit(c.Exit)
	}
	for i := len(c.Ordering) - 1; i >= 0; i-- {
		rvisit(c.Ordering[i])
	}
}
