package xmlio

import (
	"path/filepath"
	"testing"

	"decomp/internal/cfg"
	"decomp/internal/ir"
	"decomp/internal/op"
	"decomp/internal/proc"
	"decomp/internal/program"
	"decomp/internal/types"
)

// buildTestProgram builds a small but structurally complete Program: one
// LibProc, one UserProc with a single-block CFG (an Assign, a CallStmt
// targeting the LibProc, and a ReturnStmt), a local, a symbol-map entry, a
// global, and a proven_true fact -- enough to exercise every element writer
// in the package at least once.
func buildTestProgram(t *testing.T) *program.Program {
	t.Helper()
	p := program.New("test/pentium/hello", "test/pentium/hello", "hello")

	p.AddGlobal(&program.Global{
		Name:  "g_counter",
		UAddr: 0x6000,
		Type:  types.IntegerType{SizeBits: 32, Signedness: types.Signed},
	})

	lib := proc.NewLibProc(p.NextProcID(), 0x2000, proc.Instantiate(proc.PlatformGeneric, proc.ConventionC, "printf"))
	lib.Cluster = p.RootCluster

	sig := proc.Instantiate(proc.PlatformGeneric, proc.ConventionC, "main")
	sig.RetType = types.IntegerType{SizeBits: 32, Signedness: types.Signed}
	user := proc.NewUserProc(p.NextProcID(), 0x1000, sig)
	user.Cluster = p.RootCluster
	user.Decode()

	var gen ir.IDGen
	r0 := func() ir.Exp { return &ir.Location{Operator: op.RegOf, Sub1: &ir.Const{Kind: op.IntConst, Value: int64(0)}} }

	assignID := ir.StmtID(gen.Next())
	assign := &ir.Assign{Lhs: r0(), Rhs: &ir.Const{Kind: op.IntConst, Value: int64(5)}}
	ir.InitStmtIdentity(assign, assignID, user.ID)

	callID := ir.StmtID(gen.Next())
	call := &ir.CallStmt{
		Dest:     &ir.Const{Kind: op.FuncConst, Value: "printf"},
		DestProc: lib.ID,
	}
	ir.InitStmtIdentity(call, callID, user.ID)

	retID := ir.StmtID(gen.Next())
	ret := &ir.ReturnStmt{Returns: []ir.Assignment{{Lhs: r0(), Rhs: r0()}}}
	ir.InitStmtIdentity(ret, retID, user.ID)

	bbID, err := user.Cfg.AddBB([]*ir.RTL{{NativeAddr: 0x1000, Stmts: []ir.Statement{assign, call, ret}}}, cfg.OneWay)
	if err != nil {
		t.Fatalf("AddBB: %v", err)
	}
	user.Cfg.Entry = bbID
	user.Cfg.Exit = bbID
	if err := user.Cfg.CheckWellFormed(); err != nil {
		t.Fatalf("CheckWellFormed: %v", err)
	}
	user.InitStatements()

	user.AddLocal("local0", types.CharType{})
	user.AddSymbol(r0(), &ir.Const{Kind: op.IntConst, Value: int64(0)})
	user.Callees = append(user.Callees, lib.ID)
	user.TheReturnStmt = retID
	user.SetProven(r0(), &ir.Const{Kind: op.IntConst, Value: int64(4)})

	lib.AddCaller(user.ID, user.Address, callID)

	p.AddProc(lib)
	p.AddProc(user)
	p.StmtIDGen().Bump(gen.Next())

	return p
}

func TestWriteReadProgramRoundTrip(t *testing.T) {
	p := buildTestProgram(t)
	dir := t.TempDir()

	w := NewWriter(dir)
	if err := w.WriteProgram(p); err != nil {
		t.Fatalf("WriteProgram: %v", err)
	}

	root := filepath.Join(dir, "hello.xml")
	r := NewReader()
	p2, err := r.ReadProgram(root)
	if err != nil {
		t.Fatalf("ReadProgram: %v", err)
	}

	if p2.Name != p.Name || p2.Path != p.Path {
		t.Fatalf("got name=%q path=%q, want name=%q path=%q", p2.Name, p2.Path, p.Name, p.Path)
	}

	g, ok := p2.Globals["g_counter"]
	if !ok {
		t.Fatal("global g_counter missing after reload")
	}
	if g.UAddr != 0x6000 {
		t.Fatalf("global addr = %v, want 0x6000", g.UAddr)
	}
	if _, ok := g.Type.(types.IntegerType); !ok {
		t.Fatalf("global type = %T, want types.IntegerType", g.Type)
	}

	if len(p2.Procs()) != 2 {
		t.Fatalf("got %d procs, want 2", len(p2.Procs()))
	}

	anyLib, ok := p2.ProcByAddr(0x2000)
	if !ok {
		t.Fatal("libproc not found by address after reload")
	}
	lib2, ok := anyLib.(*proc.LibProc)
	if !ok {
		t.Fatalf("proc at 0x2000 is %T, want *proc.LibProc", anyLib)
	}
	if lib2.Signature.Name != "printf" {
		t.Fatalf("libproc signature name = %q, want printf", lib2.Signature.Name)
	}
	if len(lib2.Callers) != 1 {
		t.Fatalf("libproc has %d callers, want 1", len(lib2.Callers))
	}

	anyUser, ok := p2.ProcByAddr(0x1000)
	if !ok {
		t.Fatal("userproc not found by address after reload")
	}
	user2, ok := anyUser.(*proc.UserProc)
	if !ok {
		t.Fatalf("proc at 0x1000 is %T, want *proc.UserProc", anyUser)
	}
	if user2.Signature.Name != "main" {
		t.Fatalf("userproc signature name = %q, want main", user2.Signature.Name)
	}
	if user2.Status() != proc.StatusDecoded {
		t.Fatalf("userproc status = %v, want StatusDecoded", user2.Status())
	}
	if lib2.FirstCaller != user2.ID {
		t.Fatalf("libproc firstCaller = %v, want %v", lib2.FirstCaller, user2.ID)
	}

	blocks := user2.Cfg.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	bb := blocks[0]
	if len(bb.RTLs) != 1 || len(bb.RTLs[0].Stmts) != 3 {
		t.Fatalf("got block shape %+v, want one RTL of 3 statements", bb)
	}
	if _, ok := bb.RTLs[0].Stmts[0].(*ir.Assign); !ok {
		t.Fatalf("stmt 0 = %T, want *ir.Assign", bb.RTLs[0].Stmts[0])
	}
	reloadedCall, ok := bb.RTLs[0].Stmts[1].(*ir.CallStmt)
	if !ok {
		t.Fatalf("stmt 1 = %T, want *ir.CallStmt", bb.RTLs[0].Stmts[1])
	}
	if reloadedCall.DestProc != lib2.ID {
		t.Fatalf("call destproc = %v, want %v", reloadedCall.DestProc, lib2.ID)
	}
	reloadedRet, ok := bb.RTLs[0].Stmts[2].(*ir.ReturnStmt)
	if !ok {
		t.Fatalf("stmt 2 = %T, want *ir.ReturnStmt", bb.RTLs[0].Stmts[2])
	}
	if user2.TheReturnStmt != reloadedRet.ID() {
		t.Fatalf("theReturnStmt = %v, want %v", user2.TheReturnStmt, reloadedRet.ID())
	}

	locals := user2.Locals()
	if len(locals) != 1 || locals[0].Name != "local0" {
		t.Fatalf("got locals %+v, want one local named local0", locals)
	}

	syms := user2.SymbolEntries()
	if len(syms) != 1 {
		t.Fatalf("got %d symbol entries, want 1", len(syms))
	}
	if _, ok := syms[0].Key.(*ir.Location); !ok {
		t.Fatalf("symbol key = %T, want *ir.Location", syms[0].Key)
	}

	if len(user2.Callees) != 1 || user2.Callees[0] != lib2.ID {
		t.Fatalf("got callees %v, want [%v]", user2.Callees, lib2.ID)
	}

	facts := user2.ProvenFacts()
	if len(facts) != 1 {
		t.Fatalf("got %d proven facts, want 1", len(facts))
	}
}

// TestReadProgramRejectsDanglingReturnStmt exercises phase 1's fatal-on-
// dangling-reference path: a UserProc's TheReturnStmt that does not
// resolve to any loaded statement must fail the whole load, not just warn.
func TestReadProgramRejectsDanglingReturnStmt(t *testing.T) {
	p := buildTestProgram(t)
	for _, pr := range p.Procs() {
		if up, ok := pr.(*proc.UserProc); ok {
			up.TheReturnStmt = 999999
		}
	}

	dir := t.TempDir()
	w := NewWriter(dir)
	if err := w.WriteProgram(p); err != nil {
		t.Fatalf("WriteProgram: %v", err)
	}

	r := NewReader()
	if _, err := r.ReadProgram(filepath.Join(dir, "hello.xml")); err == nil {
		t.Fatal("expected ReadProgram to fail on a dangling theReturnStmt reference")
	}
}

// TestReadProgramRejectsUnresolvedCallTarget covers the proc-level cousin of
// the same invariant: a CallStmt.DestProc that names no loaded procedure is
// a fatal parse error too.
func TestReadProgramRejectsUnresolvedCallTarget(t *testing.T) {
	p := buildTestProgram(t)
	for _, pr := range p.Procs() {
		up, ok := pr.(*proc.UserProc)
		if !ok {
			continue
		}
		for _, bb := range up.Cfg.Blocks() {
			for _, rtl := range bb.RTLs {
				for _, s := range rtl.Stmts {
					if call, ok := s.(*ir.CallStmt); ok {
						call.DestProc = 424242
					}
				}
			}
		}
	}

	dir := t.TempDir()
	w := NewWriter(dir)
	if err := w.WriteProgram(p); err != nil {
		t.Fatalf("WriteProgram: %v", err)
	}

	r := NewReader()
	if _, err := r.ReadProgram(filepath.Join(dir, "hello.xml")); err == nil {
		t.Fatal("expected ReadProgram to fail on an unresolved call target")
	}
}
