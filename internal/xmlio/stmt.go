package xmlio

import (
	"decomp/internal/errs"
	"decomp/internal/ir"
)

// writeStmt appends label wrapping s's XML form. Every Statement carries
// its identity quartet (id, seq, parent, proc) as attributes; RefExp.def
// values nested inside it are plain StmtID integers already (package ir
// models them that way), so no separate reference-patching step is needed
// here -- phase 1 only needs to *validate* those integers resolve, which
// Reader.resolveRefs does once every cluster file has been parsed.
func writeStmt(w *elemWriter, label string, s ir.Statement) {
	w.open(label)
	defer w.close(label)
	if s == nil {
		return
	}
	base := []xmlAttr{
		a("id", itoa64(uint64(s.ID()))),
		a("seq", itoa(s.SeqNum())),
		a("parent", itoa64(uint64(s.Parent()))),
		a("proc", itoa64(uint64(s.Proc()))),
	}
	switch v := s.(type) {
	case *ir.Assign:
		w.openAttrs("assign", base...)
		writeType(w, "type", v.Type)
		writeExp(w, "lhs", v.Lhs)
		writeExp(w, "rhs", v.Rhs)
		if v.Guard != nil {
			writeExp(w, "guard", v.Guard)
		}
		w.close("assign")
	case *ir.PhiAssign:
		w.openAttrs("phiassign", base...)
		writeExp(w, "lhs", v.Lhs)
		w.open("phi")
		for _, d := range v.Defs {
			w.openAttrs("phidef", a("bb", fmtAddr(uint64(d.BB))), a("def", itoa64(uint64(d.Def))))
			writeExp(w, "val", d.Val)
			w.close("phidef")
		}
		w.close("phi")
		w.close("phiassign")
	case *ir.BoolAssign:
		attrs := append(base, a("jt", itoa(int(v.Jt))), a("float", boolStr(v.Float)), a("size", itoa(int(v.Size))))
		w.openAttrs("boolassign", attrs...)
		writeExp(w, "lhs", v.Lhs)
		writeExp(w, "cond", v.Cond)
		w.close("boolassign")
	case *ir.CallStmt:
		attrs := append(base,
			a("destproc", itoa64(uint64(v.DestProc))),
			a("computed", boolStr(v.IsComputed)),
			a("returnaftercall", boolStr(v.ReturnAfterCall)))
		w.openAttrs("call", attrs...)
		writeExp(w, "dest", v.Dest)
		writeAssignments(w, "arguments", "arg", v.Arguments)
		writeAssignments(w, "defines", "def", v.Defines)
		w.close("call")
	case *ir.GotoStmt:
		attrs := append(base, a("computed", boolStr(v.IsComputed)))
		w.openAttrs("goto", attrs...)
		writeExp(w, "dest", v.Dest)
		w.close("goto")
	case *ir.BranchStmt:
		attrs := append(base,
			a("jt", itoa(int(v.Jt))), a("float", boolStr(v.Float)), a("computed", boolStr(v.IsComputed)))
		w.openAttrs("branch", attrs...)
		writeExp(w, "dest", v.Dest)
		writeExp(w, "cond", v.Cond)
		w.close("branch")
	case *ir.CaseStmt:
		w.openAttrs("case", base...)
		writeExp(w, "dest", v.Dest)
		w.close("case")
	case *ir.ReturnStmt:
		attrs := append(base, a("retaddr", fmtAddr(uint64(v.RetAddr))))
		w.openAttrs("return", attrs...)
		writeAssignments(w, "modifieds", "mod", v.Modifieds)
		writeAssignments(w, "returns", "ret", v.Returns)
		w.close("return")
	default:
		panic("xmlio: writeStmt: unknown Statement variant")
	}
}

func writeAssignments(w *elemWriter, wrapper, item string, list []ir.Assignment) {
	w.open(wrapper)
	for _, asn := range list {
		w.open(item)
		writeExp(w, "lhs", asn.Lhs)
		writeExp(w, "rhs", asn.Rhs)
		w.close(item)
	}
	w.close(wrapper)
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func parseBool(s string) bool { return s == "true" }

// buildStmt reconstructs a Statement from the single child element of a
// label wrapper node n. The identity quartet is restored verbatim from the
// saved attributes (ids are stable within a save) rather than reallocated,
// so RefExp.def values recorded elsewhere in the same save keep resolving
// correctly.
func buildStmt(n *node) (ir.Statement, error) {
	if n == nil || len(n.children) == 0 {
		return nil, nil
	}
	c := n.children[0]
	id := ir.StmtID(u64(attrOr(c, "id")))
	seq := atoi(attrOr(c, "seq"))
	parent := ir.StmtID(u64(attrOr(c, "parent")))
	procID := ir.ProcID(u64(attrOr(c, "proc")))

	var s ir.Statement
	switch c.tag {
	case "assign":
		typ, e := buildType(c.child("type"))
		if e != nil {
			return nil, e
		}
		lhs, e := buildExp(c.child("lhs"))
		if e != nil {
			return nil, e
		}
		rhs, e := buildExp(c.child("rhs"))
		if e != nil {
			return nil, e
		}
		var guard ir.Exp
		if g := c.child("guard"); g != nil {
			guard, e = buildExp(g)
			if e != nil {
				return nil, e
			}
		}
		s = &ir.Assign{Lhs: lhs, Rhs: rhs, Type: typ, Guard: guard}
	case "phiassign":
		lhs, e := buildExp(c.child("lhs"))
		if e != nil {
			return nil, e
		}
		var defs []ir.PhiDef
		if phi := c.child("phi"); phi != nil {
			for _, pd := range phi.childrenByTag("phidef") {
				val, e := buildExp(pd.child("val"))
				if e != nil {
					return nil, e
				}
				defs = append(defs, ir.PhiDef{
					BB:  ir.Addr(parseAddr(attrOr(pd, "bb"))),
					Def: ir.StmtID(u64(attrOr(pd, "def"))),
					Val: val,
				})
			}
		}
		s = &ir.PhiAssign{Lhs: lhs, Defs: defs}
	case "boolassign":
		lhs, e := buildExp(c.child("lhs"))
		if e != nil {
			return nil, e
		}
		cond, e := buildExp(c.child("cond"))
		if e != nil {
			return nil, e
		}
		s = &ir.BoolAssign{
			Lhs: lhs, Cond: cond,
			Jt:    ir.BranchKind(atoi(attrOr(c, "jt"))),
			Float: parseBool(attrOr(c, "float")),
			Size:  u16(attrOr(c, "size")),
		}
	case "call":
		dest, e := buildExp(c.child("dest"))
		if e != nil {
			return nil, e
		}
		args, e := buildAssignments(c.child("arguments"))
		if e != nil {
			return nil, e
		}
		defines, e := buildAssignments(c.child("defines"))
		if e != nil {
			return nil, e
		}
		s = &ir.CallStmt{
			Dest: dest, DestProc: ir.ProcID(u64(attrOr(c, "destproc"))),
			Arguments: args, Defines: defines,
			IsComputed: parseBool(attrOr(c, "computed")), ReturnAfterCall: parseBool(attrOr(c, "returnaftercall")),
		}
	case "goto":
		dest, e := buildExp(c.child("dest"))
		if e != nil {
			return nil, e
		}
		s = &ir.GotoStmt{Dest: dest, IsComputed: parseBool(attrOr(c, "computed"))}
	case "branch":
		dest, e := buildExp(c.child("dest"))
		if e != nil {
			return nil, e
		}
		cond, e := buildExp(c.child("cond"))
		if e != nil {
			return nil, e
		}
		s = &ir.BranchStmt{
			Dest: dest, Cond: cond,
			Jt: ir.BranchKind(atoi(attrOr(c, "jt"))), Float: parseBool(attrOr(c, "float")),
			IsComputed: parseBool(attrOr(c, "computed")),
		}
	case "case":
		dest, e := buildExp(c.child("dest"))
		if e != nil {
			return nil, e
		}
		s = &ir.CaseStmt{Dest: dest}
	case "return":
		mods, e := buildAssignments(c.child("modifieds"))
		if e != nil {
			return nil, e
		}
		rets, e := buildAssignments(c.child("returns"))
		if e != nil {
			return nil, e
		}
		s = &ir.ReturnStmt{Modifieds: mods, Returns: rets, RetAddr: ir.Addr(parseAddr(attrOr(c, "retaddr")))}
	default:
		return nil, errs.XMLParse(c.file, "unknown statement element <%s>", c.tag)
	}

	ir.InitStmtIdentity(s, id, procID)
	s.SetSeqNum(seq)
	ir.SetStmtParent(s, parent)
	c.built = s
	return s, nil
}

func buildAssignments(wrapper *node) ([]ir.Assignment, error) {
	if wrapper == nil {
		return nil, nil
	}
	var out []ir.Assignment
	for _, item := range wrapper.children {
		lhs, err := buildExp(item.child("lhs"))
		if err != nil {
			return nil, err
		}
		rhs, err := buildExp(item.child("rhs"))
		if err != nil {
			return nil, err
		}
		out = append(out, ir.Assignment{Lhs: lhs, Rhs: rhs})
	}
	return out, nil
}

func attrOr(n *node, key string) string {
	v, _ := n.attr(key)
	return v
}
