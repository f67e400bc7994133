package ir

import (
	"fmt"
	"strings"

	"decomp/internal/types"
)

// BranchKind distinguishes the condition-code semantics of a conditional
// jump/set.
type BranchKind int

const (
	JTCondEquals BranchKind = iota
	JTCondNotEquals
	JTCondLess
	JTCondLessEq
	JTCondGreater
	JTCondGreaterEq
	JTCondLessUnsigned
	JTCondLessEqUnsigned
	JTCondGreaterUnsigned
	JTCondGreaterEqUnsigned
)

// Statement is the closed sum {Assign, PhiAssign, BoolAssign, CallStmt,
// GotoStmt, BranchStmt, CaseStmt, ReturnStmt}. Every variant
// carries an ID, a sequence number, an optional parent-statement reference
// (set when this Statement is nested inside another, e.g. a CallStmt's
// argument Assignments), and the ID of the owning UserProc.
type Statement interface {
	ID() StmtID
	SeqNum() int
	SetSeqNum(int)
	Parent() StmtID
	Proc() ProcID
	// Clone deep-copies the statement, including its own ID/seq/parent/proc
	// fields; a caller inserting the clone as a distinct statement must
	// assign it a fresh ID via the owning Program's IDGen before linking it
	// into any BB, or invariant 1 (unique RefExp.def targets) breaks.
	Clone() Statement
	Equals(other Statement) bool
	String() string
	// GetLiveLocations returns the locations read by this statement.
	GetLiveLocations() []Exp
	// GetDefinedLocations returns the locations written by this statement.
	GetDefinedLocations() []Exp
	sealed()
}

// base is embedded by every Statement variant to carry the fields common
// to all statements.
type base struct {
	IDVal     StmtID
	Seq       int
	ParentVal StmtID
	ProcVal   ProcID
}

func (b *base) ID() StmtID       { return b.IDVal }
func (b *base) SeqNum() int      { return b.Seq }
func (b *base) SetSeqNum(n int)  { b.Seq = n }
func (b *base) Parent() StmtID   { return b.ParentVal }
func (b *base) Proc() ProcID     { return b.ProcVal }
func (b *base) sealed()          {}

// identitySetter is implemented by every Statement variant's base embed;
// InitStmtIdentity uses it so callers outside this package (e.g. package
// cfg constructing a fresh PhiAssign during phi placement, or package
// xmlio restoring a Statement's saved identity on load) can assign a
// statement's id/owning-proc/parent without package ir exposing base
// directly.
type identitySetter interface {
	setIdentity(id StmtID, proc ProcID)
	setParent(parent StmtID)
}

func (b *base) setIdentity(id StmtID, proc ProcID) {
	b.IDVal = id
	b.ProcVal = proc
}

func (b *base) setParent(parent StmtID) {
	b.ParentVal = parent
}

// InitStmtIdentity assigns id and proc to a freshly constructed Statement,
// before it is linked into any BB. Used by passes (phi placement) that
// build new statements outside the normal decode path.
func InitStmtIdentity(s Statement, id StmtID, proc ProcID) {
	s.(identitySetter).setIdentity(id, proc)
}

// SetStmtParent assigns a Statement's parent-statement back-link, used
// when restoring a saved Statement whose id/seq/proc/parent quartet was
// recorded on disk.
func SetStmtParent(s Statement, parent StmtID) {
	s.(identitySetter).setParent(parent)
}

// Assign is `lhs := rhs`, optionally typed and/or guarded.
type Assign struct {
	base
	Lhs   Exp
	Rhs   Exp
	Type  types.Type // nil if untyped
	Guard Exp        // nil if unconditional
}

func (s *Assign) GetLiveLocations() []Exp {
	locs := collectLocations(s.Rhs, nil)
	if s.Guard != nil {
		locs = collectLocations(s.Guard, locs)
	}
	return locs
}
func (s *Assign) GetDefinedLocations() []Exp { return collectLocations(s.Lhs, nil) }

func (s *Assign) String() string {
	prefix := ""
	if s.Type != nil {
		prefix = fmt.Sprintf("*%s* ", s.Type)
	}
	if s.Guard != nil {
		return fmt.Sprintf("%s%s := %s if %s", prefix, s.Lhs, s.Rhs, s.Guard)
	}
	return fmt.Sprintf("%s%s := %s", prefix, s.Lhs, s.Rhs)
}

// PhiDef is one (predecessor-BB, defining-statement, value) entry of a
// PhiAssign. BB is the predecessor block's address (an ir.Addr, resolved
// against the owning CFG by package cfg); order within PhiAssign.Defs must
// match the owning block's in-edge order at the time phi placement ran.
type PhiDef struct {
	BB  Addr
	Def StmtID
	Val Exp
}

// PhiAssign is an SSA phi node.
type PhiAssign struct {
	base
	Lhs  Exp
	Defs []PhiDef
}

func (s *PhiAssign) GetLiveLocations() []Exp {
	var locs []Exp
	for _, d := range s.Defs {
		locs = collectLocations(d.Val, locs)
	}
	return locs
}
func (s *PhiAssign) GetDefinedLocations() []Exp { return collectLocations(s.Lhs, nil) }

func (s *PhiAssign) String() string {
	parts := make([]string, len(s.Defs))
	for i, d := range s.Defs {
		parts[i] = fmt.Sprintf("%s: %s", d.BB, d.Val)
	}
	return fmt.Sprintf("%s := phi(%s)", s.Lhs, strings.Join(parts, ", "))
}

// BoolAssign sets Lhs to 0/1 (or a float equivalent) based on Cond under
// condition-code semantics Jt.
type BoolAssign struct {
	base
	Lhs   Exp
	Cond  Exp
	Jt    BranchKind
	Float bool
	Size  uint16
}

func (s *BoolAssign) GetLiveLocations() []Exp    { return collectLocations(s.Cond, nil) }
func (s *BoolAssign) GetDefinedLocations() []Exp { return collectLocations(s.Lhs, nil) }
func (s *BoolAssign) String() string {
	return fmt.Sprintf("%s := setcc(%s)", s.Lhs, s.Cond)
}

// Assignment is a (Lhs, Rhs) pair used inside CallStmt's argument/defines
// lists and ReturnStmt's modifieds/returns lists. It is a plain
// value, not itself a Statement.
type Assignment struct {
	Lhs Exp
	Rhs Exp
}

// CallStmt calls Dest (possibly DestProc if resolved statically).
type CallStmt struct {
	base
	Dest            Exp
	DestProc        ProcID
	Arguments       []Assignment
	Defines         []Assignment
	IsComputed      bool
	ReturnAfterCall bool
}

func (s *CallStmt) GetLiveLocations() []Exp {
	var locs []Exp
	locs = collectLocations(s.Dest, locs)
	for _, a := range s.Arguments {
		locs = collectLocations(a.Rhs, locs)
	}
	return locs
}
func (s *CallStmt) GetDefinedLocations() []Exp {
	var locs []Exp
	for _, d := range s.Defines {
		locs = collectLocations(d.Lhs, locs)
	}
	return locs
}
func (s *CallStmt) String() string {
	args := make([]string, len(s.Arguments))
	for i, a := range s.Arguments {
		args[i] = a.Rhs.String()
	}
	return fmt.Sprintf("call %s(%s)", s.Dest, strings.Join(args, ", "))
}

// GotoStmt is an unconditional jump, possibly computed (indirect).
type GotoStmt struct {
	base
	Dest       Exp
	IsComputed bool
}

func (s *GotoStmt) GetLiveLocations() []Exp    { return collectLocations(s.Dest, nil) }
func (s *GotoStmt) GetDefinedLocations() []Exp { return nil }
func (s *GotoStmt) String() string             { return fmt.Sprintf("goto %s", s.Dest) }

// BranchStmt is a conditional jump.
type BranchStmt struct {
	base
	Dest       Exp
	Cond       Exp
	Jt         BranchKind
	Float      bool
	IsComputed bool
}

func (s *BranchStmt) GetLiveLocations() []Exp    { return collectLocations(s.Cond, collectLocations(s.Dest, nil)) }
func (s *BranchStmt) GetDefinedLocations() []Exp { return nil }
func (s *BranchStmt) String() string {
	return fmt.Sprintf("branch %s if %s", s.Dest, s.Cond)
}

// CaseStmt is a computed multi-way jump. SwitchInfo is runtime-only and is
// never persisted.
type CaseStmt struct {
	base
	Dest       Exp
	SwitchInfo interface{}
}

func (s *CaseStmt) GetLiveLocations() []Exp    { return collectLocations(s.Dest, nil) }
func (s *CaseStmt) GetDefinedLocations() []Exp { return nil }
func (s *CaseStmt) String() string             { return fmt.Sprintf("case %s", s.Dest) }

// ReturnStmt returns from the owning procedure.
type ReturnStmt struct {
	base
	Modifieds []Assignment
	Returns   []Assignment
	RetAddr   Addr
}

func (s *ReturnStmt) GetLiveLocations() []Exp {
	var locs []Exp
	for _, r := range s.Returns {
		locs = collectLocations(r.Rhs, locs)
	}
	return locs
}
func (s *ReturnStmt) GetDefinedLocations() []Exp { return nil }
func (s *ReturnStmt) String() string {
	rets := make([]string, len(s.Returns))
	for i, r := range s.Returns {
		rets[i] = r.Rhs.String()
	}
	return fmt.Sprintf("return %s", strings.Join(rets, ", "))
}

// collectLocations walks e and appends every Location node found to out.
func collectLocations(e Exp, out []Exp) []Exp {
	if e == nil {
		return out
	}
	if _, ok := e.(*Location); ok {
		out = append(out, e)
	}
	for _, c := range Children(e) {
		out = collectLocations(c, out)
	}
	return out
}

// RTL is an ordered list of statements anchored at a native address.
type RTL struct {
	NativeAddr Addr
	Stmts      []Statement
}

// IsAssignment reports whether s writes a location directly (Assign,
// PhiAssign, BoolAssign), used by bypass/constant-propagation passes.
func IsAssignment(s Statement) bool {
	switch s.(type) {
	case *Assign, *PhiAssign, *BoolAssign:
		return true
	default:
		return false
	}
}

// IsFlagAssign reports whether s assigns flag state.
func IsFlagAssign(s Statement) bool {
	a, ok := s.(*Assign)
	if !ok {
		return false
	}
	_, isFlagDef := a.Lhs.(*FlagDef)
	return isFlagDef
}
