package xmlio

import (
	"strconv"

	"decomp/internal/errs"
	"decomp/internal/proc"
	"decomp/internal/types"
)

// writeType appends the <type> wrapper element describing t to parent,
// the same labeled-element convention every typed child uses. types.Type
// is modeled as an immutable value sum (no shared pointers), so unlike
// Statement/Proc it carries no persisted id: every occurrence is written
// out structurally in full, which is also why PointerType's "temporarily
// nil points-to during load" case never arises here -- a child type, once
// parsed, is always fully built before its parent.
func writeType(w *elemWriter, label string, t types.Type) {
	w.open(label)
	switch v := t.(type) {
	case types.VoidType:
		w.leaf("void")
	case types.CharType:
		w.leaf("char")
	case types.BooleanType:
		w.leaf("bool")
	case types.IntegerType:
		w.leaf("int", a("bits", itoa(int(v.SizeBits))), a("sign", itoa(int(v.Signedness))))
	case types.FloatType:
		w.leaf("float", a("bits", itoa(int(v.SizeBits))))
	case types.SizeType:
		w.leaf("size", a("bits", itoa(int(v.SizeBits))))
	case types.PointerType:
		w.open("ptr")
		writeType(w, "type", v.PointsTo)
		w.close("ptr")
	case types.ArrayType:
		if v.Length != types.NoLength {
			w.openAttrs("array", a("length", strconv.FormatUint(v.Length, 10)))
		} else {
			w.open("array")
		}
		writeType(w, "type", v.Element)
		w.close("array")
	case types.NamedType:
		w.leaf("named", a("name", v.Name))
	case types.CompoundType:
		w.open("compound")
		for _, f := range v.Fields {
			w.openAttrs("field", a("name", f.Name))
			writeType(w, "type", f.Type)
			w.close("field")
		}
		w.close("compound")
	case types.FuncType:
		w.open("func")
		if sig, ok := v.Signature.(*proc.Signature); ok {
			writeSignature(w, sig)
		}
		w.close("func")
	case nil:
		// untyped (e.g. Assign.Type == nil): wrapper left empty.
	default:
		panic("xmlio: writeType: unknown Type variant")
	}
	w.close(label)
}

// buildType reconstructs a types.Type from the single child element of a
// <type> wrapper node (n itself, per writeType's shape: the wrapper opens,
// then exactly one kind element, e.g. <int>, <ptr>, follows).
func buildType(n *node) (types.Type, error) {
	if n == nil || len(n.children) == 0 {
		return nil, nil
	}
	kind := n.children[0]
	switch kind.tag {
	case "void":
		return types.VoidType{}, nil
	case "char":
		return types.CharType{}, nil
	case "bool":
		return types.BooleanType{}, nil
	case "int":
		bits, _ := kind.attr("bits")
		sign, _ := kind.attr("sign")
		return types.IntegerType{SizeBits: u16(bits), Signedness: types.Signedness(atoi(sign))}, nil
	case "float":
		bits, _ := kind.attr("bits")
		return types.FloatType{SizeBits: u16(bits)}, nil
	case "size":
		bits, _ := kind.attr("bits")
		return types.SizeType{SizeBits: u16(bits)}, nil
	case "ptr":
		sub, err := buildType(kind.firstChild())
		if err != nil {
			return nil, err
		}
		return types.PointerType{PointsTo: sub}, nil
	case "array":
		length := types.NoLength
		if v, ok := kind.attr("length"); ok {
			l, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return nil, errs.XMLParse(kind.file, "malformed array length %q", v)
			}
			length = l
		}
		elem, err := buildType(kind.firstChild())
		if err != nil {
			return nil, err
		}
		return types.ArrayType{Element: elem, Length: length}, nil
	case "named":
		name, _ := kind.attr("name")
		return types.NamedType{Name: name}, nil
	case "compound":
		var fields []types.Field
		for _, f := range kind.childrenByTag("field") {
			name, _ := f.attr("name")
			ft, err := buildType(f.firstChild())
			if err != nil {
				return nil, err
			}
			fields = append(fields, types.Field{Name: name, Type: ft})
		}
		return types.CompoundType{Fields: fields}, nil
	case "func":
		sig, err := buildSignature(kind.child("signature"))
		if err != nil {
			return nil, err
		}
		return types.FuncType{Signature: sig}, nil
	default:
		return nil, errs.XMLParse(kind.file, "unknown type element <%s>", kind.tag)
	}
}
