package types

// Meet combines two type observations into their least upper bound for
// dataflow-assisted type inference. changed reports whether the
// result differs structurally from a, which callers use to drive
// fixed-point iteration.
func Meet(a, b Type) (result Type, changed bool) {
	if a == nil {
		return b, b != nil
	}
	if b == nil {
		return a, false
	}

	switch av := a.(type) {
	case IntegerType:
		if bv, ok := b.(IntegerType); ok {
			r := IntegerType{
				SizeBits:   meetSize(av.SizeBits, bv.SizeBits),
				Signedness: meetSignedness(av.Signedness, bv.Signedness),
			}
			return r, !r.Equals(av)
		}
		if bv, ok := b.(SizeType); ok {
			r := IntegerType{SizeBits: meetSize(av.SizeBits, bv.SizeBits), Signedness: av.Signedness}
			return r, !r.Equals(av)
		}

	case SizeType:
		switch bv := b.(type) {
		case SizeType:
			r := SizeType{SizeBits: maxU16(av.SizeBits, bv.SizeBits)}
			return r, !r.Equals(av)
		case IntegerType:
			r := IntegerType{SizeBits: meetSize(av.SizeBits, bv.SizeBits), Signedness: bv.Signedness}
			return r, true
		case FloatType:
			r := FloatType{SizeBits: meetSize(av.SizeBits, bv.SizeBits)}
			return r, true
		default:
			// Size promotes to whatever the typed partner is, unchanged.
			return b, true
		}

	case FloatType:
		if bv, ok := b.(FloatType); ok {
			r := FloatType{SizeBits: meetSize(av.SizeBits, bv.SizeBits)}
			return r, !r.Equals(av)
		}
		if bv, ok := b.(SizeType); ok {
			r := FloatType{SizeBits: meetSize(av.SizeBits, bv.SizeBits)}
			return r, !r.Equals(av)
		}

	case PointerType:
		if bv, ok := b.(PointerType); ok {
			if av.PointsTo == nil {
				return b, true
			}
			if bv.PointsTo == nil {
				return a, false
			}
			inner, innerChanged := Meet(av.PointsTo, bv.PointsTo)
			r := PointerType{PointsTo: inner}
			return r, innerChanged
		}

	case CompoundType:
		if bv, ok := b.(CompoundType); ok {
			if len(av.Fields) != len(bv.Fields) {
				return NamedType{Name: "?"}, true
			}
			fields := make([]Field, len(av.Fields))
			anyChanged := false
			for i := range av.Fields {
				ft, fc := Meet(av.Fields[i].Type, bv.Fields[i].Type)
				name := av.Fields[i].Name
				if name != bv.Fields[i].Name {
					name = "?"
				}
				fields[i] = Field{Name: name, Type: ft}
				anyChanged = anyChanged || fc
			}
			r := CompoundType{Fields: fields}
			return r, anyChanged
		}

	case ArrayType:
		if bv, ok := b.(ArrayType); ok {
			inner, innerChanged := Meet(av.Element, bv.Element)
			length := av.Length
			if av.Length != bv.Length {
				length = NoLength
			}
			r := ArrayType{Element: inner, Length: length}
			return r, innerChanged || length != av.Length
		}
	}

	// Mismatched or otherwise-unhandled pairing: a equal to b is the only
	// case we can call "unchanged". Any real conflict must decay to a
	// result that doesn't depend on which operand came first, the same way
	// the CompoundType field-count mismatch above does, or Meet stops being
	// commutative.
	if _, ok := b.(SizeType); ok {
		// Mirror of the SizeType case above: the typed partner a wins.
		return a, false
	}
	if a.Equals(b) {
		return a, false
	}
	return NamedType{Name: "?"}, true
}

func meetSize(a, b uint16) uint16 {
	// 0 is "unknown"; larger known size wins.
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	return maxU16(a, b)
}

func maxU16(a, b uint16) uint16 {
	if a > b {
		return a
	}
	return b
}

func meetSignedness(a, b Signedness) Signedness {
	if a == b {
		return a
	}
	if a == Unknown {
		return b
	}
	if b == Unknown {
		return a
	}
	// Conflicting known signednesses decay to unknown.
	return Unknown
}
