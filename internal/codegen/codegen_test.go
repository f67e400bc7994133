package codegen

import (
	"testing"

	"github.com/llir/llvm/ir/types"

	dcfg "decomp/internal/cfg"
	dir "decomp/internal/ir"
	"decomp/internal/op"
	"decomp/internal/proc"
)

func buildAddThenReturn(t *testing.T) *proc.UserProc {
	t.Helper()
	sig := proc.Instantiate(proc.PlatformGeneric, proc.ConventionC, "add_one")
	sig.Params = []proc.Parameter{{Name: "x", Exp: &dir.Location{Operator: op.ParamRef, Sub1: &dir.Const{Kind: op.IntConst, Value: int64(0)}}}}
	sig.Returns = []proc.Return{{Exp: &dir.Location{Operator: op.RegOf, Sub1: &dir.Const{Kind: op.IntConst, Value: int64(0)}}}}

	up := proc.NewUserProc(1, 0x1000, sig)

	r0 := func() dir.Exp { return &dir.Location{Operator: op.RegOf, Sub1: &dir.Const{Kind: op.IntConst, Value: int64(0)}} }
	xParam := func() dir.Exp { return &dir.Location{Operator: op.ParamRef, Sub1: &dir.Const{Kind: op.IntConst, Value: int64(0)}} }

	var gen dir.IDGen
	assign := &dir.Assign{
		Lhs: r0(),
		Rhs: &dir.Binary{Operator: op.Plus, Sub1: xParam(), Sub2: &dir.Const{Kind: op.IntConst, Value: int64(1)}},
	}
	dir.InitStmtIdentity(assign, dir.StmtID(gen.Next()), up.ID)

	ret := &dir.ReturnStmt{Returns: []dir.Assignment{{Lhs: r0(), Rhs: r0()}}}
	dir.InitStmtIdentity(ret, dir.StmtID(gen.Next()), up.ID)

	bbID, err := up.Cfg.AddBB([]*dir.RTL{{NativeAddr: 0x1000, Stmts: []dir.Statement{assign, ret}}}, dcfg.OneWay)
	if err != nil {
		t.Fatalf("AddBB: %v", err)
	}
	up.Cfg.Entry = bbID
	up.Cfg.Exit = bbID
	return up
}

func TestGenerateProducesFunctionWithMatchingSignature(t *testing.T) {
	up := buildAddThenReturn(t)

	m, err := Generate(up)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(m.Funcs) != 1 {
		t.Fatalf("got %d functions, want 1", len(m.Funcs))
	}
	fn := m.Funcs[0]
	if fn.Name() != "add_one" {
		t.Fatalf("got function name %q, want add_one", fn.Name())
	}
	if len(fn.Params) != 1 {
		t.Fatalf("got %d params, want 1", len(fn.Params))
	}
	if fn.Sig.RetType != types.I64 {
		t.Fatalf("got return type %v, want i64", fn.Sig.RetType)
	}
	if len(fn.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(fn.Blocks))
	}
	if fn.Blocks[0].Term == nil {
		t.Fatal("entry block has no terminator")
	}
}

func TestGenerateVoidProcReturnsVoid(t *testing.T) {
	sig := proc.Instantiate(proc.PlatformGeneric, proc.ConventionC, "no_return_value")
	up := proc.NewUserProc(1, 0x2000, sig)

	ret := &dir.ReturnStmt{}
	var gen dir.IDGen
	dir.InitStmtIdentity(ret, dir.StmtID(gen.Next()), up.ID)

	bbID, err := up.Cfg.AddBB([]*dir.RTL{{NativeAddr: 0x2000, Stmts: []dir.Statement{ret}}}, dcfg.OneWay)
	if err != nil {
		t.Fatalf("AddBB: %v", err)
	}
	up.Cfg.Entry = bbID
	up.Cfg.Exit = bbID

	m, err := Generate(up)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if m.Funcs[0].Sig.RetType != types.Void {
		t.Fatalf("got return type %v, want void", m.Funcs[0].Sig.RetType)
	}
}

func TestGenerateCallDeclaresExternCallee(t *testing.T) {
	sig := proc.Instantiate(proc.PlatformGeneric, proc.ConventionC, "calls_printf")
	up := proc.NewUserProc(1, 0x3000, sig)

	var gen dir.IDGen
	call := &dir.CallStmt{
		Dest:     &dir.Const{Kind: op.FuncConst, Value: "printf"},
		DestProc: 99,
	}
	dir.InitStmtIdentity(call, dir.StmtID(gen.Next()), up.ID)
	ret := &dir.ReturnStmt{}
	dir.InitStmtIdentity(ret, dir.StmtID(gen.Next()), up.ID)

	bbID, err := up.Cfg.AddBB([]*dir.RTL{{NativeAddr: 0x3000, Stmts: []dir.Statement{call, ret}}}, dcfg.OneWay)
	if err != nil {
		t.Fatalf("AddBB: %v", err)
	}
	up.Cfg.Entry = bbID
	up.Cfg.Exit = bbID

	m, err := Generate(up)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(m.Funcs) != 2 {
		t.Fatalf("got %d functions, want 2 (generated + extern printf)", len(m.Funcs))
	}
	var sawPrintf bool
	for _, fn := range m.Funcs {
		if fn.Name() == "printf" {
			sawPrintf = true
		}
	}
	if !sawPrintf {
		t.Fatal("expected an extern printf declaration")
	}
}
