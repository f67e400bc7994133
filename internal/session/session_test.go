package session

import (
	"testing"

	"decomp/internal/frontend"
	"decomp/internal/ir"
	"decomp/internal/op"
	"decomp/internal/proc"
	"decomp/internal/program"
)

// fakeDecoder decodes a tiny synthetic program: three straight-line
// one-byte instructions at 0x1000-0x1002 assigning r0, then a conditional
// branch at 0x1003 to either 0x1000 (loop back) or 0x1004 (fall out), and
// a return at 0x1004. Exercises the worklist decode loop's loop-edge path
// (the back-edge lands on the entry block's head, so no block is split)
// without depending on any real architecture.
type fakeDecoder struct{}

func r0() ir.Exp { return &ir.Location{Operator: op.RegOf, Sub1: &ir.Const{Kind: op.IntConst, Value: int64(0)}} }

func (fakeDecoder) DecodeInstruction(pc ir.Addr, delta int64) (frontend.DecodeResult, error) {
	mk := func(stmts ...ir.Statement) frontend.DecodeResult {
		return frontend.DecodeResult{RTL: &ir.RTL{NativeAddr: pc, Stmts: stmts}, NumBytes: 1, Valid: true}
	}
	switch pc {
	case 0x1000, 0x1001, 0x1002:
		return mk(&ir.Assign{Lhs: r0(), Rhs: &ir.Const{Kind: op.IntConst, Value: int64(1)}}), nil
	case 0x1003:
		return mk(&ir.BranchStmt{
			Dest: &ir.Const{Kind: op.IntConst, Value: int64(0x1000)},
			Cond: r0(),
			Jt:   ir.JTCondEquals,
		}), nil
	case 0x1004:
		return mk(&ir.ReturnStmt{}), nil
	default:
		return frontend.DecodeResult{Valid: false}, nil
	}
}

func (fakeDecoder) DecodeAssemblyInstruction(pc ir.Addr, delta int64) (string, int, error) {
	return "", 1, nil
}

func newTestUserProc(prog *program.Program) *proc.UserProc {
	up := proc.NewUserProc(prog.NextProcID(), 0x1000, proc.Instantiate(proc.PlatformGeneric, proc.ConventionC, "f"))
	prog.AddProc(up)
	return up
}

func TestDecodeBuildsWellFormedCFGWithLoop(t *testing.T) {
	prog := program.New("t", "t", "root")
	up := newTestUserProc(prog)

	s := New(WithDecoder(fakeDecoder{}))
	s.prog = prog

	if err := s.Decode(); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if up.Status() != proc.StatusDecoded {
		t.Fatalf("status = %v, want StatusDecoded", up.Status())
	}
	if err := up.Cfg.CheckWellFormed(); err != nil {
		t.Fatalf("CFG not well-formed: %v", err)
	}
	if up.Cfg.Entry == 0 {
		t.Fatal("Entry not set")
	}
	entryBB, ok := up.Cfg.BlockAt(0x1000)
	if !ok {
		t.Fatal("no block at entry address")
	}
	if entryBB.ID() != up.Cfg.Entry {
		t.Fatalf("block at entry addr is not Cfg.Entry")
	}
	// The branch's back-edge to 0x1000 must land on the entry block (no
	// split expected: 0x1000 is already a block head).
	found := false
	for _, succ := range entryBB.InEdges {
		bb := up.Cfg.Block(succ)
		if bb != nil {
			found = true
		}
	}
	if !found {
		t.Fatal("expected at least one in-edge on the entry block (the loop back-edge)")
	}
}

func TestDecompileRunsFullPipeline(t *testing.T) {
	prog := program.New("t", "t", "root")
	up := newTestUserProc(prog)

	s := New(WithDecoder(fakeDecoder{}))
	s.prog = prog

	if err := s.Decode(); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := s.Decompile(up); err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	if up.Status() != proc.StatusFinalDone {
		t.Fatalf("status = %v, want StatusFinalDone", up.Status())
	}

	// Out of SSA form: no RefExp may survive anywhere in the procedure.
	for _, bb := range up.Cfg.Blocks() {
		for _, rtl := range bb.RTLs {
			for _, st := range rtl.Stmts {
				for _, top := range ir.ExpsOf(st) {
					ir.WalkExp(top, func(e ir.Exp) {
						if _, ok := e.(*ir.RefExp); ok {
							t.Fatalf("statement %d still carries a RefExp after FromSSAform", st.ID())
						}
					})
				}
			}
		}
	}
}

func TestGenerateCodeMarksProcCodeGenerated(t *testing.T) {
	prog := program.New("t", "t", "root")
	up := newTestUserProc(prog)

	s := New(WithDecoder(fakeDecoder{}))
	s.prog = prog

	if err := s.Decode(); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := s.Decompile(up); err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	m, err := s.GenerateCode(up)
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if len(m.Funcs) == 0 {
		t.Fatal("expected at least one generated function")
	}
	if up.Status() != proc.StatusCodeGenerated {
		t.Fatalf("status = %v, want StatusCodeGenerated", up.Status())
	}
}

func TestDecodeRequiresDecoder(t *testing.T) {
	prog := program.New("t", "t", "root")
	newTestUserProc(prog)

	s := New()
	s.prog = prog
	if err := s.Decode(); err == nil {
		t.Fatal("expected an error with no decoder configured")
	}
}
