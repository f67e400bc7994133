// Package codegen translates a UserProc's simplified post-SSA RTL stream
// into an LLVM IR module using github.com/llir/llvm. Only Assign,
// CallStmt, and ReturnStmt are modeled -- the concrete realization
// of StatusCodeGenerated -- so a caller runs this strictly after
// RenameBlockVars, and only as a best-effort textual-IR sink rather than a
// full compiler backend: PhiAssign, BoolAssign, and the branch family
// (GotoStmt/BranchStmt/CaseStmt) are skipped, with blocks chained by a
// single fallthrough br to the next block in layout order.
package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	dcfg "decomp/internal/cfg"
	dir "decomp/internal/ir"
	"decomp/internal/op"
	"decomp/internal/proc"
)

// Generate builds an *ir.Module containing one function for up. Every
// value in the generated function is an i64; decompiled types are
// collapsed to a single width since the core's own type-inference results
// aren't plumbed through to this backend.
func Generate(up *proc.UserProc) (*ir.Module, error) {
	m := ir.NewModule()

	var retType types.Type = types.Void
	if len(up.Signature.Returns) > 0 {
		retType = types.I64
	}

	params := make([]*ir.Param, len(up.Signature.Params))
	for i, p := range up.Signature.Params {
		params[i] = ir.NewParam(paramName(p.Name, i), types.I64)
	}

	fn := m.NewFunc(funcName(up.Signature.Name), retType, params...)
	g := &gen{m: m, fn: fn, allocas: make(map[string]*ir.InstAlloca), externs: make(map[string]*ir.Func)}

	entry := fn.NewBlock("entry")
	g.block = entry
	for i, p := range up.Signature.Params {
		a := g.block.NewAlloca(types.I64)
		g.allocas[locKey(p.Exp, paramName(p.Name, i))] = a
		g.block.NewStore(fn.Params[i], a)
	}

	blocks := up.Cfg.Blocks()
	entryID := entryBlockID(up, blocks)
	llBlocks := make(map[dcfg.BBID]*ir.Block, len(blocks))
	llBlocks[entryID] = entry
	for _, bb := range blocks {
		if bb.ID() == entryID {
			continue
		}
		llBlocks[bb.ID()] = fn.NewBlock(fmt.Sprintf("bb%d", bb.ID()))
	}

	for i, bb := range blocks {
		g.block = llBlocks[bb.ID()]
		returned := false
		for _, rtl := range bb.RTLs {
			for _, s := range rtl.Stmts {
				switch stmt := s.(type) {
				case *dir.Assign:
					if err := g.genAssign(stmt); err != nil {
						return nil, err
					}
				case *dir.CallStmt:
					if err := g.genCall(stmt); err != nil {
						return nil, err
					}
				case *dir.ReturnStmt:
					g.genReturn(stmt)
					returned = true
				}
			}
		}
		if returned || g.block.Term != nil {
			continue
		}
		if i+1 < len(blocks) {
			g.block.NewBr(llBlocks[blocks[i+1].ID()])
		} else if retType == types.Void {
			g.block.NewRet(nil)
		} else {
			g.block.NewRet(constant.NewInt(types.I64, 0))
		}
	}

	if len(blocks) == 0 {
		if retType == types.Void {
			entry.NewRet(nil)
		} else {
			entry.NewRet(constant.NewInt(types.I64, 0))
		}
	}

	return m, nil
}

// entryBlockID picks the CFG's declared entry block, falling back to the
// first block in arena order for a Cfg that never set Entry (e.g. a
// hand-built test fixture).
func entryBlockID(up *proc.UserProc, blocks []*dcfg.BasicBlock) dcfg.BBID {
	if up.Cfg.Entry != 0 {
		return up.Cfg.Entry
	}
	if len(blocks) == 0 {
		return 0
	}
	return blocks[0].ID()
}

func funcName(name string) string {
	if name == "" {
		return "proc"
	}
	return name
}

func paramName(name string, i int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("arg%d", i)
}

// gen carries the per-function translation state.
type gen struct {
	m       *ir.Module
	fn      *ir.Func
	block   *ir.Block
	allocas map[string]*ir.InstAlloca
	externs map[string]*ir.Func
}

// locKey is the stable map key for a location: its expression's printed
// form when available, falling back to a caller-supplied name (used for
// parameters whose Exp may be nil before binding).
func locKey(e dir.Exp, fallback string) string {
	if e != nil {
		return e.String()
	}
	return fallback
}

// slot returns the alloca backing loc, creating a fresh zero-initialized
// one on first reference (a location read before any Assign targets it,
// e.g. an implicit parameter).
func (g *gen) slot(loc dir.Exp) *ir.InstAlloca {
	key := locKey(loc, "")
	if a, ok := g.allocas[key]; ok {
		return a
	}
	entry := g.fn.Blocks[0]
	a := entry.NewAlloca(types.I64)
	g.allocas[key] = a
	return a
}

func (g *gen) genAssign(s *dir.Assign) error {
	rhs, err := g.translate(s.Rhs)
	if err != nil {
		return err
	}
	loc, ok := s.Lhs.(*dir.Location)
	if !ok {
		return fmt.Errorf("codegen: assign target %s is not a Location", s.Lhs)
	}
	g.block.NewStore(rhs, g.slot(loc))
	return nil
}

func (g *gen) genCall(s *dir.CallStmt) error {
	callee, err := g.calleeFor(s)
	if err != nil {
		return err
	}
	args := make([]value.Value, len(s.Arguments))
	for i, a := range s.Arguments {
		v, err := g.translate(a.Rhs)
		if err != nil {
			return err
		}
		args[i] = v
	}
	call := g.block.NewCall(callee, args...)
	if len(s.Defines) > 0 {
		if loc, ok := s.Defines[0].Lhs.(*dir.Location); ok {
			g.block.NewStore(call, g.slot(loc))
		}
	}
	return nil
}

// calleeFor resolves a CallStmt's target to a declared function, declaring
// an external one on first use -- this backend has no cross-procedure
// module linking, so every callee beyond the one being generated is an
// extern declaration.
func (g *gen) calleeFor(s *dir.CallStmt) (value.Value, error) {
	name := fmt.Sprintf("proc_%d", s.DestProc)
	if c, ok := s.Dest.(*dir.Const); ok {
		if n, ok := c.StrVal(); ok && n != "" {
			name = n
		}
	}
	if fn, ok := g.externs[name]; ok {
		return fn, nil
	}
	paramTypes := make([]*ir.Param, len(s.Arguments))
	for i := range s.Arguments {
		paramTypes[i] = ir.NewParam("", types.I64)
	}
	var retType types.Type = types.Void
	if len(s.Defines) > 0 {
		retType = types.I64
	}
	fn := g.m.NewFunc(name, retType, paramTypes...)
	g.externs[name] = fn
	return fn, nil
}

func (g *gen) genReturn(s *dir.ReturnStmt) {
	if len(s.Returns) == 0 {
		g.block.NewRet(nil)
		return
	}
	v, err := g.translate(s.Returns[0].Rhs)
	if err != nil {
		g.block.NewRet(constant.NewInt(types.I64, 0))
		return
	}
	g.block.NewRet(v)
}

// translate lowers a decompiled expression tree into an LLVM value,
// loading Locations from their backing alloca and recursing through the
// small set of arithmetic/comparison operators this backend models.
func (g *gen) translate(e dir.Exp) (value.Value, error) {
	switch n := e.(type) {
	case *dir.Const:
		iv, ok := n.IntVal()
		if !ok {
			return nil, fmt.Errorf("codegen: non-integer constant %s", n)
		}
		return constant.NewInt(types.I64, iv), nil
	case *dir.Location:
		return g.block.NewLoad(types.I64, g.slot(n)), nil
	case *dir.RefExp:
		return g.translate(n.Sub1)
	case *dir.TypedExp:
		return g.translate(n.Sub1)
	case *dir.Unary:
		return g.translateUnary(n)
	case *dir.Binary:
		v, err := g.translateBinary(n)
		if err != nil {
			return nil, err
		}
		if v.Type().Equal(types.I1) {
			return g.block.NewZExt(v, types.I64), nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf("codegen: expression %T not modeled", e)
	}
}

func (g *gen) translateUnary(n *dir.Unary) (value.Value, error) {
	sub, err := g.translate(n.Sub1)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case op.Neg:
		return g.block.NewSub(constant.NewInt(types.I64, 0), sub), nil
	case op.BitNot:
		return g.block.NewXor(sub, constant.NewInt(types.I64, -1)), nil
	default:
		return nil, fmt.Errorf("codegen: unary operator %s not modeled", op.Name(n.Operator))
	}
}

func (g *gen) translateBinary(n *dir.Binary) (value.Value, error) {
	lhs, err := g.translate(n.Sub1)
	if err != nil {
		return nil, err
	}
	rhs, err := g.translate(n.Sub2)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case op.Plus:
		return g.block.NewAdd(lhs, rhs), nil
	case op.Minus:
		return g.block.NewSub(lhs, rhs), nil
	case op.Mult, op.MultU:
		return g.block.NewMul(lhs, rhs), nil
	case op.Div:
		return g.block.NewSDiv(lhs, rhs), nil
	case op.DivU:
		return g.block.NewUDiv(lhs, rhs), nil
	case op.Mod:
		return g.block.NewSRem(lhs, rhs), nil
	case op.ModU:
		return g.block.NewURem(lhs, rhs), nil
	case op.BitAnd:
		return g.block.NewAnd(lhs, rhs), nil
	case op.BitOr:
		return g.block.NewOr(lhs, rhs), nil
	case op.BitXor:
		return g.block.NewXor(lhs, rhs), nil
	case op.ShiftL:
		return g.block.NewShl(lhs, rhs), nil
	case op.ShiftR:
		return g.block.NewLShr(lhs, rhs), nil
	case op.ShiftRA:
		return g.block.NewAShr(lhs, rhs), nil
	case op.Equal:
		return g.block.NewICmp(enum.IPredEQ, lhs, rhs), nil
	case op.NotEqual:
		return g.block.NewICmp(enum.IPredNE, lhs, rhs), nil
	case op.Less:
		return g.block.NewICmp(enum.IPredSLT, lhs, rhs), nil
	case op.LessEq:
		return g.block.NewICmp(enum.IPredSLE, lhs, rhs), nil
	case op.Greater:
		return g.block.NewICmp(enum.IPredSGT, lhs, rhs), nil
	case op.GreaterEq:
		return g.block.NewICmp(enum.IPredSGE, lhs, rhs), nil
	case op.LessUns:
		return g.block.NewICmp(enum.IPredULT, lhs, rhs), nil
	case op.LessEqUns:
		return g.block.NewICmp(enum.IPredULE, lhs, rhs), nil
	case op.GreaterUns:
		return g.block.NewICmp(enum.IPredUGT, lhs, rhs), nil
	case op.GreaterEqUns:
		return g.block.NewICmp(enum.IPredUGE, lhs, rhs), nil
	default:
		return nil, fmt.Errorf("codegen: binary operator %s not modeled", op.Name(n.Operator))
	}
}

