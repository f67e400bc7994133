package cache

import (
	"testing"

	"decomp/internal/ir"
	"decomp/internal/op"
	"decomp/internal/proc"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	addr := ir.Addr(0x1000)
	hash := "deadbeef"
	facts := []proc.Fact{
		{Lhs: &ir.Location{Operator: op.RegOf, Sub1: &ir.Const{Kind: op.IntConst, Value: int64(0)}},
			Rhs: &ir.Const{Kind: op.IntConst, Value: int64(4)}},
	}

	if err := s.Put(addr, hash, proc.StatusFinalDone, facts); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entry, ok, err := s.Get(addr, hash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if entry.Status != proc.StatusFinalDone {
		t.Fatalf("got status %v, want StatusFinalDone", entry.Status)
	}
	if len(entry.Facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(entry.Facts))
	}
	if _, ok := entry.Facts[0].Lhs.(*ir.Location); !ok {
		t.Fatalf("fact lhs = %T, want *ir.Location", entry.Facts[0].Lhs)
	}
}

func TestGetMissOnWrongHash(t *testing.T) {
	s := openTestStore(t)
	addr := ir.Addr(0x2000)

	if err := s.Put(addr, "hash-a", proc.StatusDecoded, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, ok, err := s.Get(addr, "hash-b"); err != nil || ok {
		t.Fatalf("got ok=%v err=%v, want a miss for a stale RTL hash", ok, err)
	}
}

func TestPutOverwritesPriorEntryAtSameKey(t *testing.T) {
	s := openTestStore(t)
	addr := ir.Addr(0x3000)
	hash := "h"

	if err := s.Put(addr, hash, proc.StatusDecoded, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(addr, hash, proc.StatusVisited, nil); err != nil {
		t.Fatalf("Put (overwrite): %v", err)
	}

	entry, ok, err := s.Get(addr, hash)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if entry.Status != proc.StatusVisited {
		t.Fatalf("got status %v, want StatusVisited after overwrite", entry.Status)
	}
}

func TestForgetRemovesAllHashesForAddr(t *testing.T) {
	s := openTestStore(t)
	addr := ir.Addr(0x4000)

	if err := s.Put(addr, "h1", proc.StatusDecoded, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(addr, "h2", proc.StatusVisited, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Forget(addr); err != nil {
		t.Fatalf("Forget: %v", err)
	}

	if _, ok, _ := s.Get(addr, "h1"); ok {
		t.Fatal("h1 should be gone after Forget")
	}
	if _, ok, _ := s.Get(addr, "h2"); ok {
		t.Fatal("h2 should be gone after Forget")
	}
}

func TestHashRTLsStableAndSensitive(t *testing.T) {
	r1 := []*ir.RTL{{NativeAddr: 0x10, Stmts: []ir.Statement{}}}
	r2 := []*ir.RTL{{NativeAddr: 0x10, Stmts: []ir.Statement{}}}
	if HashRTLs(r1) != HashRTLs(r2) {
		t.Fatal("identical RTL streams produced different hashes")
	}

	r3 := []*ir.RTL{{NativeAddr: 0x20, Stmts: []ir.Statement{}}}
	if HashRTLs(r1) == HashRTLs(r3) {
		t.Fatal("different RTL streams produced the same hash")
	}
}
