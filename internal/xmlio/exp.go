package xmlio

import (
	"strconv"

	"decomp/internal/errs"
	"decomp/internal/ir"
	"decomp/internal/op"
)

// writeExp appends label (e.g. "lhs", "rhs", "sub1") wrapping e's XML form.
// Every non-leaf node carries its operator as the op="<name>" attribute:
// serialization always uses the operator's name, never its integer value.
func writeExp(w *elemWriter, label string, e ir.Exp) {
	w.open(label)
	defer w.close(label)
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *ir.Terminal:
		w.leaf("terminal", a("op", op.Name(v.Operator)))
	case *ir.Const:
		w.leaf("const", constAttrs(v)...)
	case *ir.Unary:
		w.openAttrs("unary", a("op", op.Name(v.Operator)))
		writeExp(w, "sub1", v.Sub1)
		w.close("unary")
	case *ir.Binary:
		w.openAttrs("binary", a("op", op.Name(v.Operator)))
		writeExp(w, "sub1", v.Sub1)
		writeExp(w, "sub2", v.Sub2)
		w.close("binary")
	case *ir.Ternary:
		w.openAttrs("ternary", a("op", op.Name(v.Operator)))
		writeExp(w, "sub1", v.Sub1)
		writeExp(w, "sub2", v.Sub2)
		writeExp(w, "sub3", v.Sub3)
		w.close("ternary")
	case *ir.TypedExp:
		w.open("typedexp")
		writeType(w, "type", v.Type)
		writeExp(w, "sub1", v.Sub1)
		w.close("typedexp")
	case *ir.Location:
		attrList := []xmlAttr{a("op", op.Name(v.Operator))}
		if v.Owner != 0 {
			attrList = append(attrList, a("owner", itoa64(uint64(v.Owner))))
		}
		w.openAttrs("location", attrList...)
		writeExp(w, "sub1", v.Sub1)
		w.close("location")
	case *ir.RefExp:
		w.openAttrs("refexp", a("def", itoa64(uint64(v.Def))))
		writeExp(w, "sub1", v.Sub1)
		w.close("refexp")
	case *ir.FlagDef:
		w.openAttrs("flagdef", a("rtl", fmtAddr(uint64(v.RTL))))
		writeExp(w, "sub1", v.Sub1)
		w.close("flagdef")
	case *ir.TypeVal:
		w.open("typeval")
		writeType(w, "type", v.Type)
		w.close("typeval")
	default:
		panic("xmlio: writeExp: unknown Exp variant")
	}
}

func constAttrs(c *ir.Const) []xmlAttr {
	kindName := op.Name(c.Kind)
	switch c.Kind {
	case op.IntConst:
		v, _ := c.IntVal()
		return []xmlAttr{a("kind", kindName), a("value", strconv.FormatInt(v, 10))}
	case op.FltConst:
		v, _ := c.FltVal()
		return []xmlAttr{a("kind", kindName), a("value", strconv.FormatFloat(v, 'f', -1, 64))}
	case op.StrConst, op.FuncConst:
		v, _ := c.StrVal()
		return []xmlAttr{a("kind", kindName), a("value", v)}
	default:
		return []xmlAttr{a("kind", kindName)}
	}
}

// buildExp reconstructs an Exp from the single child element of a label
// wrapper node (n itself, per writeExp's shape). Phase 0 only: RefExp.Def
// is parsed into the StmtID it names without yet verifying that id
// resolves to a live Statement -- that verification is phase 1's job
// (resolveRefs in read.go), since the defining statement may live in a cluster
// file not yet parsed.
func buildExp(n *node) (ir.Exp, error) {
	if n == nil || len(n.children) == 0 {
		return nil, nil
	}
	c := n.children[0]
	switch c.tag {
	case "terminal":
		o, err := lookupOp(c)
		if err != nil {
			return nil, err
		}
		return &ir.Terminal{Operator: o}, nil
	case "const":
		return buildConst(c)
	case "unary":
		o, err := lookupOp(c)
		if err != nil {
			return nil, err
		}
		sub1, err := buildExp(c.child("sub1"))
		if err != nil {
			return nil, err
		}
		return &ir.Unary{Operator: o, Sub1: sub1}, nil
	case "binary":
		o, err := lookupOp(c)
		if err != nil {
			return nil, err
		}
		sub1, err := buildExp(c.child("sub1"))
		if err != nil {
			return nil, err
		}
		sub2, err := buildExp(c.child("sub2"))
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Operator: o, Sub1: sub1, Sub2: sub2}, nil
	case "ternary":
		o, err := lookupOp(c)
		if err != nil {
			return nil, err
		}
		sub1, err := buildExp(c.child("sub1"))
		if err != nil {
			return nil, err
		}
		sub2, err := buildExp(c.child("sub2"))
		if err != nil {
			return nil, err
		}
		sub3, err := buildExp(c.child("sub3"))
		if err != nil {
			return nil, err
		}
		return &ir.Ternary{Operator: o, Sub1: sub1, Sub2: sub2, Sub3: sub3}, nil
	case "typedexp":
		t, err := buildType(c.child("type"))
		if err != nil {
			return nil, err
		}
		sub1, err := buildExp(c.child("sub1"))
		if err != nil {
			return nil, err
		}
		return &ir.TypedExp{Type: t, Sub1: sub1}, nil
	case "location":
		o, err := lookupOp(c)
		if err != nil {
			return nil, err
		}
		sub1, err := buildExp(c.child("sub1"))
		if err != nil {
			return nil, err
		}
		var owner ir.ProcID
		if ov, ok := c.attr("owner"); ok {
			owner = ir.ProcID(u64(ov))
		}
		return &ir.Location{Operator: o, Sub1: sub1, Owner: owner}, nil
	case "refexp":
		sub1, err := buildExp(c.child("sub1"))
		if err != nil {
			return nil, err
		}
		def, _ := c.attr("def")
		return &ir.RefExp{Sub1: sub1, Def: ir.StmtID(u64(def))}, nil
	case "flagdef":
		sub1, err := buildExp(c.child("sub1"))
		if err != nil {
			return nil, err
		}
		rtl, _ := c.attr("rtl")
		return &ir.FlagDef{Sub1: sub1, RTL: ir.Addr(parseAddr(rtl))}, nil
	case "typeval":
		t, err := buildType(c.child("type"))
		if err != nil {
			return nil, err
		}
		return &ir.TypeVal{Type: t}, nil
	default:
		return nil, errs.XMLParse(c.file, "unknown expression element <%s>", c.tag)
	}
}

func buildConst(c *node) (ir.Exp, error) {
	kindName, _ := c.attr("kind")
	kind, ok := op.Lookup(kindName)
	if !ok {
		return nil, errs.XMLParse(c.file, "unknown const kind %q", kindName)
	}
	value, _ := c.attr("value")
	switch kind {
	case op.IntConst:
		iv, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, errs.XMLParse(c.file, "malformed int const %q", value)
		}
		return &ir.Const{Kind: kind, Value: iv}, nil
	case op.FltConst:
		fv, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, errs.XMLParse(c.file, "malformed float const %q", value)
		}
		return &ir.Const{Kind: kind, Value: fv}, nil
	case op.StrConst, op.FuncConst:
		return &ir.Const{Kind: kind, Value: value}, nil
	default:
		return nil, errs.XMLParse(c.file, "const element has non-const kind %q", kindName)
	}
}

func lookupOp(n *node) (op.Operator, error) {
	name, _ := n.attr("op")
	o, ok := op.Lookup(name)
	if !ok {
		return 0, errs.XMLParse(n.file, "unknown operator name %q", name)
	}
	return o, nil
}

func itoa64(n uint64) string { return strconv.FormatUint(n, 10) }
