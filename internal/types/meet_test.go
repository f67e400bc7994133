package types

import "testing"

func TestMeetIntegerKnownBeatsUnknown(t *testing.T) {
	a := IntegerType{SizeBits: 32, Signedness: Unknown}
	b := IntegerType{SizeBits: 32, Signedness: Signed}

	r, changed := Meet(a, b)
	want := IntegerType{SizeBits: 32, Signedness: Signed}
	if !r.Equals(want) || !changed {
		t.Fatalf("Meet(a,b) = %v changed=%v, want %v changed=true", r, changed, want)
	}
}

func TestMeetIntegerIdempotentNoChange(t *testing.T) {
	a := IntegerType{SizeBits: 32, Signedness: Signed}
	r, changed := Meet(a, a)
	if !r.Equals(a) || changed {
		t.Fatalf("Meet(a,a) = %v changed=%v, want %v changed=false", r, changed, a)
	}
}

func TestMeetSizeWidensInteger(t *testing.T) {
	a := SizeType{SizeBits: 32}
	b := IntegerType{SizeBits: 16, Signedness: Signed}

	r, _ := Meet(a, b)
	want := IntegerType{SizeBits: 32, Signedness: Signed}
	if !r.Equals(want) {
		t.Fatalf("Meet(Size(32),Integer(16,signed)) = %v, want %v", r, want)
	}
}

func TestMeetPointer(t *testing.T) {
	a := PointerType{PointsTo: IntegerType{SizeBits: 32, Signedness: Unknown}}
	b := PointerType{PointsTo: IntegerType{SizeBits: 32, Signedness: Signed}}

	r, _ := Meet(a, b)
	want := PointerType{PointsTo: IntegerType{SizeBits: 32, Signedness: Signed}}
	if !r.Equals(want) {
		t.Fatalf("Meet(ptr,ptr) = %v, want %v", r, want)
	}
}

func TestMeetCommutative(t *testing.T) {
	pairs := []struct{ a, b Type }{
		{IntegerType{32, Unknown}, IntegerType{32, Signed}},
		{SizeType{32}, IntegerType{16, Signed}},
		{PointerType{IntegerType{32, Unknown}}, PointerType{IntegerType{32, Signed}}},
		{CompoundType{Fields: []Field{{"x", IntegerType{32, Signed}}}}, CompoundType{Fields: []Field{{"x", IntegerType{16, Signed}}}}},
	}
	for _, p := range pairs {
		ab, _ := Meet(p.a, p.b)
		ba, _ := Meet(p.b, p.a)
		if !ab.Equals(ba) {
			t.Fatalf("Meet not commutative for %v, %v: ab=%v ba=%v", p.a, p.b, ab, ba)
		}
	}
}

func TestMeetCompoundMismatchedFieldsYieldsValidType(t *testing.T) {
	a := CompoundType{Fields: []Field{{"x", IntegerType{32, Signed}}}}
	b := CompoundType{Fields: []Field{{"x", IntegerType{32, Signed}}, {"y", CharType{}}}}

	r, changed := Meet(a, b)
	if r == nil || !changed {
		t.Fatalf("Meet of mismatched compounds should yield a non-nil changed type, got %v changed=%v", r, changed)
	}
	if _, ok := r.(NamedType); !ok {
		t.Fatalf("Meet of mismatched compounds = %T, want NamedType", r)
	}
}

func TestMeetIdempotent(t *testing.T) {
	a := ArrayType{Element: IntegerType{8, Unsigned}, Length: 4}
	r1, _ := Meet(a, a)
	r2, _ := Meet(r1, r1)
	if !r1.Equals(r2) {
		t.Fatalf("Meet not idempotent: r1=%v r2=%v", r1, r2)
	}
}
