package ir

// ExpVisitor lets a caller dispatch on concrete Exp variants without a type
// switch of its own. Pre-order: Accept invokes the matching Visit method
// for the node itself; visitors that need to descend call Accept again on
// the node's Children().
type ExpVisitor interface {
	VisitTerminal(e *Terminal) interface{}
	VisitConst(e *Const) interface{}
	VisitUnary(e *Unary) interface{}
	VisitBinary(e *Binary) interface{}
	VisitTernary(e *Ternary) interface{}
	VisitTypedExp(e *TypedExp) interface{}
	VisitLocation(e *Location) interface{}
	VisitRefExp(e *RefExp) interface{}
	VisitFlagDef(e *FlagDef) interface{}
	VisitTypeVal(e *TypeVal) interface{}
}

// Accept dispatches e to the matching Visit method on v.
func Accept(e Exp, v ExpVisitor) interface{} {
	switch t := e.(type) {
	case *Terminal:
		return v.VisitTerminal(t)
	case *Const:
		return v.VisitConst(t)
	case *Unary:
		return v.VisitUnary(t)
	case *Binary:
		return v.VisitBinary(t)
	case *Ternary:
		return v.VisitTernary(t)
	case *TypedExp:
		return v.VisitTypedExp(t)
	case *Location:
		return v.VisitLocation(t)
	case *RefExp:
		return v.VisitRefExp(t)
	case *FlagDef:
		return v.VisitFlagDef(t)
	case *TypeVal:
		return v.VisitTypeVal(t)
	default:
		panic("ir: Accept: unknown Exp variant")
	}
}

// WalkExp applies visit to e and every descendant, pre-order.
func WalkExp(e Exp, visit func(Exp)) {
	if e == nil {
		return
	}
	visit(e)
	for _, c := range Children(e) {
		WalkExp(c, visit)
	}
}

// StmtVisitor dispatches on concrete Statement variants.
type StmtVisitor interface {
	VisitAssign(s *Assign) interface{}
	VisitPhiAssign(s *PhiAssign) interface{}
	VisitBoolAssign(s *BoolAssign) interface{}
	VisitCallStmt(s *CallStmt) interface{}
	VisitGotoStmt(s *GotoStmt) interface{}
	VisitBranchStmt(s *BranchStmt) interface{}
	VisitCaseStmt(s *CaseStmt) interface{}
	VisitReturnStmt(s *ReturnStmt) interface{}
}

// AcceptStmt dispatches s to the matching Visit method on v.
func AcceptStmt(s Statement, v StmtVisitor) interface{} {
	switch t := s.(type) {
	case *Assign:
		return v.VisitAssign(t)
	case *PhiAssign:
		return v.VisitPhiAssign(t)
	case *BoolAssign:
		return v.VisitBoolAssign(t)
	case *CallStmt:
		return v.VisitCallStmt(t)
	case *GotoStmt:
		return v.VisitGotoStmt(t)
	case *BranchStmt:
		return v.VisitBranchStmt(t)
	case *CaseStmt:
		return v.VisitCaseStmt(t)
	case *ReturnStmt:
		return v.VisitReturnStmt(t)
	default:
		panic("ir: AcceptStmt: unknown Statement variant")
	}
}

// RewriteExps applies f to every expression slot s owns (lhs/rhs/cond/
// dest/arguments/...), storing each result back. Generic per-statement
// rewrites (subscripting, bypass propagation, strip-sizes, the SSA exit)
// supply only the per-slot function.
func RewriteExps(s Statement, f func(Exp) Exp) {
	switch t := s.(type) {
	case *Assign:
		t.Lhs = f(t.Lhs)
		t.Rhs = f(t.Rhs)
		if t.Guard != nil {
			t.Guard = f(t.Guard)
		}
	case *PhiAssign:
		t.Lhs = f(t.Lhs)
		for i := range t.Defs {
			t.Defs[i].Val = f(t.Defs[i].Val)
		}
	case *BoolAssign:
		t.Lhs = f(t.Lhs)
		t.Cond = f(t.Cond)
	case *CallStmt:
		t.Dest = f(t.Dest)
		for i := range t.Arguments {
			t.Arguments[i].Lhs = f(t.Arguments[i].Lhs)
			t.Arguments[i].Rhs = f(t.Arguments[i].Rhs)
		}
		for i := range t.Defines {
			t.Defines[i].Lhs = f(t.Defines[i].Lhs)
			t.Defines[i].Rhs = f(t.Defines[i].Rhs)
		}
	case *GotoStmt:
		t.Dest = f(t.Dest)
	case *BranchStmt:
		t.Dest = f(t.Dest)
		t.Cond = f(t.Cond)
	case *CaseStmt:
		t.Dest = f(t.Dest)
	case *ReturnStmt:
		for i := range t.Modifieds {
			t.Modifieds[i].Lhs = f(t.Modifieds[i].Lhs)
			t.Modifieds[i].Rhs = f(t.Modifieds[i].Rhs)
		}
		for i := range t.Returns {
			t.Returns[i].Lhs = f(t.Returns[i].Lhs)
			t.Returns[i].Rhs = f(t.Returns[i].Rhs)
		}
	}
}

// ExpsOf returns every expression directly owned by s (lhs/rhs/cond/dest/
// arguments/...), used by generic per-statement rewrites (subscripting,
// strip-sizes) that must touch every Exp a Statement carries.
func ExpsOf(s Statement) []Exp {
	switch t := s.(type) {
	case *Assign:
		exps := []Exp{t.Lhs, t.Rhs}
		if t.Guard != nil {
			exps = append(exps, t.Guard)
		}
		return exps
	case *PhiAssign:
		exps := []Exp{t.Lhs}
		for _, d := range t.Defs {
			exps = append(exps, d.Val)
		}
		return exps
	case *BoolAssign:
		return []Exp{t.Lhs, t.Cond}
	case *CallStmt:
		exps := []Exp{t.Dest}
		for _, a := range t.Arguments {
			exps = append(exps, a.Lhs, a.Rhs)
		}
		for _, d := range t.Defines {
			exps = append(exps, d.Lhs, d.Rhs)
		}
		return exps
	case *GotoStmt:
		return []Exp{t.Dest}
	case *BranchStmt:
		return []Exp{t.Dest, t.Cond}
	case *CaseStmt:
		return []Exp{t.Dest}
	case *ReturnStmt:
		var exps []Exp
		for _, m := range t.Modifieds {
			exps = append(exps, m.Lhs, m.Rhs)
		}
		for _, r := range t.Returns {
			exps = append(exps, r.Lhs, r.Rhs)
		}
		return exps
	default:
		return nil
	}
}
