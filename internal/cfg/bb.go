// Package cfg implements the control-flow graph layer: basic blocks, edges,
// Lengauer-Tarjan dominators, iterated-dominance-frontier phi placement, and
// Cytron-style SSA renaming. A Cfg owns its BasicBlocks in a
// slice arena; cross-links between blocks (edges, structural annotations,
// idom) are BBID indices into that arena rather than pointers, continuing
// the weak-reference discipline package ir establishes for Location.Owner
// and RefExp.Def.
package cfg

import "decomp/internal/ir"

// BBID is an index into a Cfg's block arena. The zero value is the
// not-yet-assigned sentinel; no real block ever has id 0 (the arena is
// 1-indexed so a zero-valued field unambiguously means "unset").
type BBID int

// NodeType classifies a BasicBlock by how control leaves it.
type NodeType int

const (
	OneWay NodeType = iota
	TwoWay
	NWay
	Call
	Ret
	Fall
	CompJump
	Invalid
)

// StructType classifies high-level structuring of a block.
type StructType int

const (
	SNone StructType = iota
	SIf
	SIfElse
	SIfThen
	SIfThenElse
	SLoop
	SCond
)

// LoopType further classifies SLoop blocks.
type LoopType int

const (
	LNone LoopType = iota
	LPretest
	LPosttest
	LEndless
)

// CondType further classifies SCond blocks.
type CondType int

const (
	CNone CondType = iota
	CIfThen
	CIfThenElse
	CIfElse
	CCase
)

// Flags bundles the small per-block boolean annotations carried alongside
// the node type.
type Flags struct {
	Incomplete   bool
	JumpRequired bool
	LabelNeeded  bool
	HLLLabel     bool
}

// BasicBlock holds a run of RTLs sharing a single entry and exit point,
// plus every structural annotation the CFG and later structuring passes
// attach to it.
type BasicBlock struct {
	id       BBID
	NodeType NodeType
	InEdges  []BBID
	OutEdges []BBID
	RTLs     []*ir.RTL
	LiveIn   map[string]ir.Exp // keyed by Location.String(); see ssa.go locKey
	LabelNum int
	LabelStr string
	Flags    Flags

	// DFS orderings, set by (Re)computeOrdering.
	DFSFirst, DFSLast       int
	RevDFSFirst, RevDFSLast int

	// Loop/rev-loop stamps: a (first, last) pair of DFS numbers bracketing
	// the block's position within its structuring pass's traversal.
	LoopStamp    [2]int
	RevLoopStamp [2]int

	Traversed bool

	// Structural annotations filled in by the control-flow structuring pass.
	ImmPDom    BBID
	LoopHead   BBID
	LoopFollow BBID
	CaseHead   BBID
	CondFollow BBID
	LatchNode  BBID

	// A second, independently-computed loopHead/caseHead pair: some
	// structuring strategies disagree with the primary pass on which block
	// a loop or case is headed by, and both results need to survive a
	// save/reload round-trip rather than being collapsed into one.
	MLoopHead BBID
	MCaseHead BBID

	SType StructType
	UsType StructType
	LType LoopType
	CType CondType

	// Dominator-tree fields, populated by ComputeDominators.
	IDom BBID
	DF   []BBID // dominance frontier
}

// ID returns the block's arena index.
func (b *BasicBlock) ID() BBID { return b.id }

// HeadAddr returns the native address of the block's first RTL, or 0 if the
// block has no RTLs yet (an incomplete placeholder).
func (b *BasicBlock) HeadAddr() ir.Addr {
	if len(b.RTLs) == 0 {
		return 0
	}
	return b.RTLs[0].NativeAddr
}
