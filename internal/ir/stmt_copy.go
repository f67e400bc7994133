package ir

func cloneAssignments(in []Assignment) []Assignment {
	if in == nil {
		return nil
	}
	out := make([]Assignment, len(in))
	for i, a := range in {
		out[i] = Assignment{Lhs: Clone(a.Lhs), Rhs: Clone(a.Rhs)}
	}
	return out
}

func assignmentsEqual(a, b []Assignment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equals(a[i].Lhs, b[i].Lhs) || !Equals(a[i].Rhs, b[i].Rhs) {
			return false
		}
	}
	return true
}

func (s *Assign) Clone() Statement {
	cp := *s
	cp.Lhs, cp.Rhs = Clone(s.Lhs), Clone(s.Rhs)
	if s.Guard != nil {
		cp.Guard = Clone(s.Guard)
	}
	return &cp
}

func (s *Assign) Equals(o Statement) bool {
	ov, ok := o.(*Assign)
	if !ok {
		return false
	}
	if (s.Type == nil) != (ov.Type == nil) {
		return false
	}
	if s.Type != nil && !s.Type.Equals(ov.Type) {
		return false
	}
	if (s.Guard == nil) != (ov.Guard == nil) {
		return false
	}
	if s.Guard != nil && !Equals(s.Guard, ov.Guard) {
		return false
	}
	return Equals(s.Lhs, ov.Lhs) && Equals(s.Rhs, ov.Rhs)
}

func (s *PhiAssign) Clone() Statement {
	cp := *s
	cp.Lhs = Clone(s.Lhs)
	cp.Defs = make([]PhiDef, len(s.Defs))
	for i, d := range s.Defs {
		cp.Defs[i] = PhiDef{BB: d.BB, Def: d.Def, Val: Clone(d.Val)}
	}
	return &cp
}

func (s *PhiAssign) Equals(o Statement) bool {
	ov, ok := o.(*PhiAssign)
	if !ok || len(s.Defs) != len(ov.Defs) || !Equals(s.Lhs, ov.Lhs) {
		return false
	}
	for i, d := range s.Defs {
		od := ov.Defs[i]
		if d.BB != od.BB || d.Def != od.Def || !Equals(d.Val, od.Val) {
			return false
		}
	}
	return true
}

func (s *BoolAssign) Clone() Statement {
	cp := *s
	cp.Lhs, cp.Cond = Clone(s.Lhs), Clone(s.Cond)
	return &cp
}

func (s *BoolAssign) Equals(o Statement) bool {
	ov, ok := o.(*BoolAssign)
	return ok && s.Jt == ov.Jt && s.Float == ov.Float && s.Size == ov.Size &&
		Equals(s.Lhs, ov.Lhs) && Equals(s.Cond, ov.Cond)
}

func (s *CallStmt) Clone() Statement {
	cp := *s
	cp.Dest = Clone(s.Dest)
	cp.Arguments = cloneAssignments(s.Arguments)
	cp.Defines = cloneAssignments(s.Defines)
	return &cp
}

func (s *CallStmt) Equals(o Statement) bool {
	ov, ok := o.(*CallStmt)
	return ok && s.DestProc == ov.DestProc && s.IsComputed == ov.IsComputed &&
		s.ReturnAfterCall == ov.ReturnAfterCall && Equals(s.Dest, ov.Dest) &&
		assignmentsEqual(s.Arguments, ov.Arguments) && assignmentsEqual(s.Defines, ov.Defines)
}

func (s *GotoStmt) Clone() Statement {
	cp := *s
	cp.Dest = Clone(s.Dest)
	return &cp
}

func (s *GotoStmt) Equals(o Statement) bool {
	ov, ok := o.(*GotoStmt)
	return ok && s.IsComputed == ov.IsComputed && Equals(s.Dest, ov.Dest)
}

func (s *BranchStmt) Clone() Statement {
	cp := *s
	cp.Dest, cp.Cond = Clone(s.Dest), Clone(s.Cond)
	return &cp
}

func (s *BranchStmt) Equals(o Statement) bool {
	ov, ok := o.(*BranchStmt)
	return ok && s.Jt == ov.Jt && s.Float == ov.Float && s.IsComputed == ov.IsComputed &&
		Equals(s.Dest, ov.Dest) && Equals(s.Cond, ov.Cond)
}

func (s *CaseStmt) Clone() Statement {
	cp := *s
	cp.Dest = Clone(s.Dest)
	return &cp
}

func (s *CaseStmt) Equals(o Statement) bool {
	ov, ok := o.(*CaseStmt)
	return ok && Equals(s.Dest, ov.Dest)
}

func (s *ReturnStmt) Clone() Statement {
	cp := *s
	cp.Modifieds = cloneAssignments(s.Modifieds)
	cp.Returns = cloneAssignments(s.Returns)
	return &cp
}

func (s *ReturnStmt) Equals(o Statement) bool {
	ov, ok := o.(*ReturnStmt)
	return ok && s.RetAddr == ov.RetAddr &&
		assignmentsEqual(s.Modifieds, ov.Modifieds) && assignmentsEqual(s.Returns, ov.Returns)
}
