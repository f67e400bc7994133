package ir

import (
	"decomp/internal/op"
	"decomp/internal/types"
)

// Exp is the closed sum of expression node kinds. Every non-leaf
// node carries an Operator from package op. Subtrees MAY be shared; no
// transformation may mutate a node in place without first cloning any
// subtree whose identity is observable elsewhere (copy-on-write discipline;
// see Clone).
type Exp interface {
	// Op returns the node's head operator. TypedExp, which isn't itself
	// operator-carrying in the strict sense, returns the operator of its
	// wrapped subexpression so pattern matching has a uniform handle;
	// TypeVal returns op.TypeVal.
	Op() op.Operator
	Clone() Exp
	Equals(other Exp) bool
	String() string
	sealed()
}

// Terminal is a 0-ary expression: a bare operator with no operands (e.g.
// the machine PC, a wildcard, a flag name terminal).
type Terminal struct {
	Operator op.Operator
}

func (e *Terminal) Op() op.Operator { return e.Operator }
func (e *Terminal) sealed()         {}

// Const is a 0-ary literal. Kind is one of op.IntConst, op.FltConst,
// op.StrConst, or op.FuncConst; Value holds the matching Go type
// (int64, float64, string, string respectively — FuncConst names a
// function by symbol).
type Const struct {
	Kind  op.Operator
	Value interface{}
}

func (e *Const) Op() op.Operator { return e.Kind }
func (e *Const) sealed()         {}

// IntVal returns the constant's integer value and whether Kind is IntConst.
func (e *Const) IntVal() (int64, bool) {
	if e.Kind != op.IntConst {
		return 0, false
	}
	v, ok := e.Value.(int64)
	return v, ok
}

// FltVal returns the constant's float value and whether Kind is FltConst.
func (e *Const) FltVal() (float64, bool) {
	if e.Kind != op.FltConst {
		return 0, false
	}
	v, ok := e.Value.(float64)
	return v, ok
}

// StrVal returns the constant's string value and whether Kind is StrConst
// or FuncConst.
func (e *Const) StrVal() (string, bool) {
	if e.Kind != op.StrConst && e.Kind != op.FuncConst {
		return "", false
	}
	v, ok := e.Value.(string)
	return v, ok
}

// Unary is a 1-ary expression (e.g. neg, memof, addrof).
type Unary struct {
	Operator op.Operator
	Sub1     Exp
}

func (e *Unary) Op() op.Operator { return e.Operator }
func (e *Unary) sealed()         {}

// Binary is a 2-ary expression.
type Binary struct {
	Operator   op.Operator
	Sub1, Sub2 Exp
}

func (e *Binary) Op() op.Operator { return e.Operator }
func (e *Binary) sealed()         {}

// Ternary is a 3-ary expression (e.g. a conditional-set operator).
type Ternary struct {
	Operator         op.Operator
	Sub1, Sub2, Sub3 Exp
}

func (e *Ternary) Op() op.Operator { return e.Operator }
func (e *Ternary) sealed()         {}

// TypedExp pins a type onto a subexpression, used once type inference has
// narrowed it.
type TypedExp struct {
	Type types.Type
	Sub1 Exp
}

func (e *TypedExp) Op() op.Operator { return e.Sub1.Op() }
func (e *TypedExp) sealed()         {}

// Location is an addressable storage slot: a register, memory cell,
// parameter, local, or global. Owner is the procedure this location is
// being read/written in, needed to resolve e.g. `r[n]` against that
// procedure's signature/locals; zero means unbound.
type Location struct {
	Operator op.Operator
	Sub1     Exp
	Owner    ProcID
}

func (e *Location) Op() op.Operator { return e.Operator }
func (e *Location) sealed()         {}

// RefExp is an SSA-style reference naming both a location and the
// statement that defined it. Def is a non-owning weak reference: it must
// resolve to a Statement still present in some BB's RTL within the same
// Program.
type RefExp struct {
	Sub1 Exp
	Def  StmtID
}

func (e *RefExp) Op() op.Operator { return op.Subscript }
func (e *RefExp) sealed()         {}

// FlagDef wraps a flag-producing subexpression together with a weak
// reference to the RTL (by native address) that defines it.
type FlagDef struct {
	Sub1 Exp
	RTL  Addr
}

func (e *FlagDef) Op() op.Operator { return op.FlagDef }
func (e *FlagDef) sealed()         {}

// TypeVal wraps a bare Type as an expression, used where the IR needs to
// pass a type around as a value (e.g. sizeof-like constructs).
type TypeVal struct {
	Type types.Type
}

func (e *TypeVal) Op() op.Operator { return op.TypeVal }
func (e *TypeVal) sealed()         {}
