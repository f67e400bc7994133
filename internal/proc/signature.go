// Package proc implements the procedure model: Signature, the Proc
// hierarchy (LibProc/UserProc), and the proven_true fact table.
// Exp/Statement cross-references (CallStmt.DestProc, RefExp.Def)
// remain package ir's weak IDs; proc resolves them against its own Proc
// arena, owned one level up by package program.
package proc

import (
	"fmt"
	"strings"

	"decomp/internal/ir"
	"decomp/internal/types"
)

// Platform is the target instruction-set family a Signature was
// instantiated for.
type Platform int

const (
	PlatformGeneric Platform = iota
	PlatformPentium
	PlatformSparc
	PlatformPPC
	PlatformST20
)

// CallingConvention selects parameter/return placement rules.
type CallingConvention int

const (
	ConventionNone CallingConvention = iota
	ConventionC
	ConventionPascal
	ConventionThisCall
)

// Parameter is one named, typed formal, together with the expression
// (typically a Location) it binds to once a calling convention is applied.
type Parameter struct {
	Name string
	Type types.Type
	Exp  ir.Exp
}

// Return is one return slot: a type and the expression carrying it.
type Return struct {
	Type types.Type
	Exp  ir.Exp
}

// Signature describes a procedure's calling contract.
type Signature struct {
	Name             string
	Params           []Parameter
	Returns          []Return
	RetType          types.Type // nil if void/unset
	PreferredName    string
	PreferredReturn  types.Type
	PreferredParams  []int
	Ellipsis         bool
	Platform         Platform
	Convention       CallingConvention
}

// String renders the signature the way a C-style declaration would, used
// both for human-readable dumps and as FuncType's structural-equality key
// (types.FuncType.Signature is a fmt.Stringer).
func (s *Signature) String() string {
	var sb strings.Builder
	if s.RetType != nil {
		fmt.Fprintf(&sb, "%s ", s.RetType)
	} else {
		sb.WriteString("void ")
	}
	sb.WriteString(s.Name)
	sb.WriteString("(")
	for i, p := range s.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s %s", p.Type, p.Name)
	}
	if s.Ellipsis {
		if len(s.Params) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("...")
	}
	sb.WriteString(")")
	return sb.String()
}

// Instantiate builds a new Signature for name, under platform/convention.
// An unset (zero-value) platform or convention yields a generic signature.
func Instantiate(platform Platform, convention CallingConvention, name string) *Signature {
	return &Signature{
		Name:       name,
		Platform:   platform,
		Convention: convention,
	}
}
