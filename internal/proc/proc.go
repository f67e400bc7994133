package proc

import (
	"sync"

	"decomp/internal/cfg"
	"decomp/internal/ir"
	"decomp/internal/types"
)

// ClusterID is a weak reference to a Cluster owned by package program.
// Zero means "unassigned" (not yet filed into the cluster tree).
type ClusterID uint64

// Status is UserProc's decompilation state machine. Each
// stage is reached only after the prior ones; no operation may skip a
// stage backwards except decompile()'s internal fixed-point, which stays
// within "visited".
type Status int

const (
	StatusNew Status = iota
	StatusDecoded
	StatusVisited
	StatusEarlyDone
	StatusFinalDone
	StatusCodeGenerated
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusDecoded:
		return "decoded"
	case StatusVisited:
		return "visited"
	case StatusEarlyDone:
		return "early-done"
	case StatusFinalDone:
		return "final-done"
	case StatusCodeGenerated:
		return "code-generated"
	default:
		return "unknown"
	}
}

// Fact is one entry of proven_true: `Lhs == Rhs` (e.g. `esp_out ==
// esp_in+4`), ordered by insertion. Keyed for lookup/dedup by
// Lhs's printed form, matching the Location-keying convention package cfg
// uses for SSA renaming.
type Fact struct {
	Lhs ir.Exp
	Rhs ir.Exp
}

// Proc carries the fields common to every procedure, library or
// user-defined.
type Proc struct {
	ID             ir.ProcID
	Address        ir.Addr
	Signature      *Signature
	FirstCaller    ir.ProcID // 0 if none recorded yet
	FirstCallerAddr ir.Addr
	Cluster        ClusterID
	Callers        []ir.StmtID // CallStmt ids referencing this Proc

	provenKeys []string
	proven     map[string]Fact
}

func newProc(id ir.ProcID, addr ir.Addr, sig *Signature) Proc {
	return Proc{ID: id, Address: addr, Signature: sig, proven: make(map[string]Fact)}
}

// ProcID returns the procedure's arena id. Promoted to *LibProc/*UserProc so
// both satisfy AnyProc.
func (p *Proc) ProcID() ir.ProcID { return p.ID }

// ProcAddr returns the procedure's entry address.
func (p *Proc) ProcAddr() ir.Addr { return p.Address }

// AnyProc is the common capability of LibProc and UserProc that package
// program needs to hold a uniform, ordered proc list.
type AnyProc interface {
	ProcID() ir.ProcID
	ProcAddr() ir.Addr
}

// AddCaller records a CallStmt as calling this Proc, setting FirstCaller on
// first use.
func (p *Proc) AddCaller(caller ir.ProcID, callAddr ir.Addr, stmt ir.StmtID) {
	if p.FirstCaller == 0 {
		p.FirstCaller = caller
		p.FirstCallerAddr = callAddr
	}
	p.Callers = append(p.Callers, stmt)
}

// ProvenFacts returns every proven_true fact in insertion order.
func (p *Proc) ProvenFacts() []Fact {
	out := make([]Fact, len(p.provenKeys))
	for i, k := range p.provenKeys {
		out[i] = p.proven[k]
	}
	return out
}

// SetProven records (or overwrites in place) a proven_true fact lhs==rhs.
func (p *Proc) SetProven(lhs, rhs ir.Exp) {
	key := lhs.String()
	if _, exists := p.proven[key]; !exists {
		p.provenKeys = append(p.provenKeys, key)
	}
	p.proven[key] = Fact{Lhs: lhs, Rhs: rhs}
}

// Proven looks up the proven_true fact for lhs, if any.
func (p *Proc) Proven(lhs ir.Exp) (ir.Exp, bool) {
	f, ok := p.proven[lhs.String()]
	if !ok {
		return nil, false
	}
	return f.Rhs, true
}

// LibProc is a leaf: an external procedure with a signature and caller set
// but no body.
type LibProc struct {
	Proc
}

// NewLibProc constructs a LibProc.
func NewLibProc(id ir.ProcID, addr ir.Addr, sig *Signature) *LibProc {
	p := &LibProc{Proc: newProc(id, addr, sig)}
	return p
}

// UserProc has a body: a CFG, locals, a symbol map, callee list, and the
// fixed-point decompilation status.
type UserProc struct {
	Proc

	// statusMu guards Status: one goroutine decompiles this procedure at
	// a time, but the progress hub (package events) and the
	// analysis cache (package cache) may read it concurrently from
	// Session.DecompileAll's other in-flight goroutines.
	statusMu sync.Mutex
	status   Status

	Cfg *cfg.Cfg

	localNames []string
	locals     map[string]types.Type

	symbolKeys []string
	symbols    map[string][]symbolEntry

	Callees        []ir.ProcID
	TheReturnStmt  ir.StmtID // 0 if none
}

// symbolEntry is one (exp-string, exp) pair of the ordered symbol
// multimap; Locals/symbol_map both key by an Exp's printed form since Exp
// is not a comparable Go type. keyExp retains the original key expression
// (the first one added for a given printed form) so the map can be
// persisted and reloaded without losing the key's own structure.
type symbolEntry struct {
	key    string
	keyExp ir.Exp
	val    ir.Exp
}

// NewUserProc constructs a UserProc with an empty CFG.
func NewUserProc(id ir.ProcID, addr ir.Addr, sig *Signature) *UserProc {
	return &UserProc{
		Proc:    newProc(id, addr, sig),
		status:  StatusNew,
		Cfg:     cfg.New(),
		locals:  make(map[string]types.Type),
		symbols: make(map[string][]symbolEntry),
	}
}

// Status returns the procedure's current decompilation stage.
func (u *UserProc) Status() Status {
	u.statusMu.Lock()
	defer u.statusMu.Unlock()
	return u.status
}

// RestoreStatus sets the procedure's status directly to whatever a prior
// save recorded, bypassing the forward-only guard advance enforces: a
// reloaded UserProc did reach that stage once, in an earlier process, and
// package xmlio has no way to replay the intervening passes (dominator
// computation, phi placement, SSA renaming) without redoing work the save
// already captured the result of.
func (u *UserProc) RestoreStatus(s Status) {
	u.statusMu.Lock()
	defer u.statusMu.Unlock()
	u.status = s
}

// advance moves Status forward to want, refusing to go backwards (callers
// that need to redo a stage — e.g. decompile()'s internal fixed point —
// must stay within the current stage rather than calling advance).
func (u *UserProc) advance(want Status) {
	u.statusMu.Lock()
	defer u.statusMu.Unlock()
	if want > u.status {
		u.status = want
	}
}

// Decode marks the procedure decoded: the front end has produced its
// initial RTL stream and CFG skeleton).
func (u *UserProc) Decode() { u.advance(StatusDecoded) }

// InitStatements assigns sequence numbers to every statement in the CFG, in
// RTL order within each block, in block-insertion order.
func (u *UserProc) InitStatements() {
	seq := 0
	for _, bb := range u.Cfg.Blocks() {
		for _, rtl := range bb.RTLs {
			for _, s := range rtl.Stmts {
				s.SetSeqNum(seq)
				seq++
			}
		}
	}
}

// RenameBlockVars runs phi placement then SSA renaming over the procedure's
// CFG).
func (u *UserProc) RenameBlockVars(gen *ir.IDGen) error {
	u.Cfg.ComputeOrdering()
	if err := u.Cfg.ComputeDominators(); err != nil {
		return err
	}
	if err := cfg.PlacePhi(u.Cfg, gen, u.ID); err != nil {
		return err
	}
	if err := cfg.RenameVariables(u.Cfg, u.ID); err != nil {
		return err
	}
	u.advance(StatusVisited)
	return nil
}

// AddLocal records a named local of the given type.
func (u *UserProc) AddLocal(name string, t types.Type) {
	if _, exists := u.locals[name]; !exists {
		u.localNames = append(u.localNames, name)
	}
	u.locals[name] = t
}

// Locals returns the (name, type) pairs in insertion order.
func (u *UserProc) Locals() []LocalVar {
	out := make([]LocalVar, len(u.localNames))
	for i, n := range u.localNames {
		out[i] = LocalVar{Name: n, Type: u.locals[n]}
	}
	return out
}

// LocalVar is one entry of UserProc.Locals().
type LocalVar struct {
	Name string
	Type types.Type
}

// AddSymbol records one entry of the ordered symbol multimap (Exp -> Exp).
func (u *UserProc) AddSymbol(key, val ir.Exp) {
	k := key.String()
	if _, exists := u.symbols[k]; !exists {
		u.symbolKeys = append(u.symbolKeys, k)
	}
	u.symbols[k] = append(u.symbols[k], symbolEntry{key: k, keyExp: key, val: val})
}

// Symbols returns every (key, value) pair of the symbol map, grouped by
// key in insertion order, then by value-insertion order within a key.
func (u *UserProc) Symbols() map[string][]ir.Exp {
	out := make(map[string][]ir.Exp, len(u.symbolKeys))
	for _, k := range u.symbolKeys {
		entries := u.symbols[k]
		vals := make([]ir.Exp, len(entries))
		for i, e := range entries {
			vals[i] = e.val
		}
		out[k] = vals
	}
	return out
}

// SymbolPair is one ordered (key, value) entry of the symbol multimap, as
// returned by SymbolEntries.
type SymbolPair struct {
	Key ir.Exp
	Val ir.Exp
}

// SymbolEntries returns every (key, value) pair in deterministic insertion
// order: by first-seen key, then by value-insertion order within a key.
// Unlike Symbols, which groups by map key (unordered when iterated), this
// is the form package xmlio persists and reloads.
func (u *UserProc) SymbolEntries() []SymbolPair {
	var out []SymbolPair
	for _, k := range u.symbolKeys {
		for _, e := range u.symbols[k] {
			out = append(out, SymbolPair{Key: e.keyExp, Val: e.val})
		}
	}
	return out
}
