package proc

import (
	"testing"

	"decomp/internal/ir"
	"decomp/internal/op"
)

func TestUserProcStatusNeverGoesBackwards(t *testing.T) {
	u := NewUserProc(1, 0x1000, Instantiate(PlatformGeneric, ConventionC, "f"))
	if u.Status() != StatusNew {
		t.Fatalf("got %v, want StatusNew", u.Status())
	}
	u.Decode()
	if u.Status() != StatusDecoded {
		t.Fatalf("got %v, want StatusDecoded", u.Status())
	}
	u.advance(StatusNew) // must not regress
	if u.Status() != StatusDecoded {
		t.Fatalf("advance(lower) regressed status to %v", u.Status())
	}
}

func TestProvenTrueOrderedInsertion(t *testing.T) {
	u := NewUserProc(1, 0x1000, Instantiate(PlatformGeneric, ConventionC, "f"))
	espOut := &ir.Terminal{Operator: op.Wildcard}
	espIn := &ir.Const{Kind: op.IntConst, Value: int64(4)}
	u.SetProven(espOut, espIn)

	facts := u.ProvenFacts()
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(facts))
	}
	rhs, ok := u.Proven(espOut)
	if !ok || !ir.Equals(rhs, espIn) {
		t.Fatalf("Proven lookup failed: got %v, ok=%v", rhs, ok)
	}
}

// LibProc has no Cfg field at all, so the compiler enforces the absence of
// a CFG; this checks that the bodiless constructor still records the id
// and address.
func TestLibProcHasNoCFG(t *testing.T) {
	l := NewLibProc(2, 0x2000, Instantiate(PlatformGeneric, ConventionC, "printf"))
	if l.ProcID() != 2 || l.ProcAddr() != 0x2000 {
		t.Fatalf("LibProc identity mismatch: %+v", l.Proc)
	}
}

func TestSignatureString(t *testing.T) {
	sig := Instantiate(PlatformGeneric, ConventionC, "printf")
	sig.Ellipsis = true
	if got := sig.String(); got != "void printf(...)" {
		t.Fatalf("got %q", got)
	}
}
