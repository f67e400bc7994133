// Package types implements the small algebraic family of IR types: Void,
// Integer, Float, Boolean, Char, Pointer, Array, Named, Compound, Size, and
// Func. The family is closed under structural equality and supports a meet
// operation (meet.go) used by dataflow-assisted type inference.
package types

import (
	"fmt"
	"strings"
)

// Signedness encodes Integer signedness as -1/0/+1.
type Signedness int8

const (
	Unsigned Signedness = -1
	Unknown  Signedness = 0
	Signed   Signedness = 1
)

func (s Signedness) String() string {
	switch s {
	case Signed:
		return "signed"
	case Unsigned:
		return "unsigned"
	default:
		return "unknown"
	}
}

// NoLength is the sentinel for Array.Length meaning "unknown length".
const NoLength = ^uint64(0)

// Type is the closed sum. Every variant below is the only way to implement
// it (sealed via the unexported sealed() method), so a type switch over Type
// is exhaustive by construction.
type Type interface {
	// Equals reports structural equality.
	Equals(other Type) bool
	// String renders the type the way it is printed in RTL dumps.
	String() string
	sealed()
}

// VoidType is the empty/no-value type.
type VoidType struct{}

func (VoidType) Equals(o Type) bool { _, ok := o.(VoidType); return ok }
func (VoidType) String() string     { return "void" }
func (VoidType) sealed()            {}

// CharType is an 8-bit character.
type CharType struct{}

func (CharType) Equals(o Type) bool { _, ok := o.(CharType); return ok }
func (CharType) String() string     { return "char" }
func (CharType) sealed()            {}

// BooleanType is a single-bit boolean.
type BooleanType struct{}

func (BooleanType) Equals(o Type) bool { _, ok := o.(BooleanType); return ok }
func (BooleanType) String() string     { return "bool" }
func (BooleanType) sealed()            {}

// IntegerType is a fixed or unknown-width signed/unsigned/unknown integer.
type IntegerType struct {
	SizeBits   uint16
	Signedness Signedness
}

func (t IntegerType) Equals(o Type) bool {
	ot, ok := o.(IntegerType)
	return ok && ot.SizeBits == t.SizeBits && ot.Signedness == t.Signedness
}
func (t IntegerType) String() string {
	if t.Signedness == Signed {
		return fmt.Sprintf("i%d", t.SizeBits)
	}
	return fmt.Sprintf("i%d(%s)", t.SizeBits, t.Signedness)
}
func (IntegerType) sealed() {}

// FloatType is a fixed-width floating point type.
type FloatType struct {
	SizeBits uint16
}

func (t FloatType) Equals(o Type) bool {
	ot, ok := o.(FloatType)
	return ok && ot.SizeBits == t.SizeBits
}
func (t FloatType) String() string { return fmt.Sprintf("f%d", t.SizeBits) }
func (FloatType) sealed()          {}

// SizeType carries only a bit width, with no signedness or representation
// information; it is the type assigned before inference narrows it further.
type SizeType struct {
	SizeBits uint16
}

func (t SizeType) Equals(o Type) bool {
	ot, ok := o.(SizeType)
	return ok && ot.SizeBits == t.SizeBits
}
func (t SizeType) String() string { return fmt.Sprintf("size%d", t.SizeBits) }
func (SizeType) sealed()          {}

// PointerType points to another Type. During load, PointsTo may be
// temporarily nil; it must be patched before the type is used, since every
// Type must be fully reachable once loading completes.
type PointerType struct {
	PointsTo Type
}

func (t PointerType) Equals(o Type) bool {
	ot, ok := o.(PointerType)
	if !ok {
		return false
	}
	if t.PointsTo == nil || ot.PointsTo == nil {
		return t.PointsTo == nil && ot.PointsTo == nil
	}
	return t.PointsTo.Equals(ot.PointsTo)
}
func (t PointerType) String() string {
	if t.PointsTo == nil {
		return "ptr(<unpatched>)"
	}
	return "ptr(" + t.PointsTo.String() + ")"
}
func (PointerType) sealed() {}

// ArrayType is an element type with an optional length; Length == NoLength
// means the length is unknown.
type ArrayType struct {
	Element Type
	Length  uint64
}

func (t ArrayType) Equals(o Type) bool {
	ot, ok := o.(ArrayType)
	return ok && t.Length == ot.Length && t.Element.Equals(ot.Element)
}
func (t ArrayType) String() string {
	if t.Length == NoLength {
		return fmt.Sprintf("array(%s,?)", t.Element)
	}
	return fmt.Sprintf("array(%s,%d)", t.Element, t.Length)
}
func (ArrayType) sealed() {}

// NamedType is an opaque reference to a name resolved elsewhere (typedef,
// struct tag, ...).
type NamedType struct {
	Name string
}

func (t NamedType) Equals(o Type) bool {
	ot, ok := o.(NamedType)
	return ok && t.Name == ot.Name
}
func (t NamedType) String() string { return "named(" + t.Name + ")" }
func (NamedType) sealed()          {}

// Field is one (name, Type) member of a CompoundType, order-significant.
type Field struct {
	Name string
	Type Type
}

// CompoundType is an ordered sequence of fields (a struct/union-like type).
type CompoundType struct {
	Fields []Field
}

func (t CompoundType) Equals(o Type) bool {
	ot, ok := o.(CompoundType)
	if !ok || len(t.Fields) != len(ot.Fields) {
		return false
	}
	for i, f := range t.Fields {
		if f.Name != ot.Fields[i].Name || !f.Type.Equals(ot.Fields[i].Type) {
			return false
		}
	}
	return true
}
func (t CompoundType) String() string {
	var sb strings.Builder
	sb.WriteString("compound{")
	for i, f := range t.Fields {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "%s:%s", f.Name, f.Type)
	}
	sb.WriteString("}")
	return sb.String()
}
func (CompoundType) sealed() {}

// FuncType wraps a calling-convention-aware signature. Signature is kept as
// an opaque reference (package proc owns the concrete Signature type) to
// avoid an import cycle between types and proc; proc.Signature implements
// this interface.
type FuncType struct {
	Signature fmt.Stringer
}

func (t FuncType) Equals(o Type) bool {
	ot, ok := o.(FuncType)
	if !ok {
		return false
	}
	if t.Signature == nil || ot.Signature == nil {
		return t.Signature == ot.Signature
	}
	return t.Signature.String() == ot.Signature.String()
}
func (t FuncType) String() string {
	if t.Signature == nil {
		return "func(?)"
	}
	return "func(" + t.Signature.String() + ")"
}
func (FuncType) sealed() {}
