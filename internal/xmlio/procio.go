package xmlio

import (
	"strconv"
	"strings"

	"decomp/internal/ir"
	"decomp/internal/proc"
)

// writeSignature appends <signature> under the current open element.
func writeSignature(w *elemWriter, sig *proc.Signature) {
	if sig == nil {
		w.leaf("signature")
		return
	}
	params := make([]string, len(sig.PreferredParams))
	for i, p := range sig.PreferredParams {
		params[i] = itoa(p)
	}
	w.openAttrs("signature",
		a("name", sig.Name),
		a("preferredname", sig.PreferredName),
		a("ellipsis", boolStr(sig.Ellipsis)),
		a("platform", itoa(int(sig.Platform))),
		a("convention", itoa(int(sig.Convention))),
		a("preferredparams", strings.Join(params, ",")),
	)
	writeType(w, "rettype", sig.RetType)
	writeType(w, "preferredreturn", sig.PreferredReturn)
	w.open("params")
	for _, p := range sig.Params {
		w.openAttrs("param", a("name", p.Name))
		writeType(w, "type", p.Type)
		writeExp(w, "exp", p.Exp)
		w.close("param")
	}
	w.close("params")
	w.open("returns")
	for _, r := range sig.Returns {
		w.open("ret")
		writeType(w, "type", r.Type)
		writeExp(w, "exp", r.Exp)
		w.close("ret")
	}
	w.close("returns")
	w.close("signature")
}

func buildSignature(n *node) (*proc.Signature, error) {
	if n == nil {
		return nil, nil
	}
	sig := proc.Instantiate(
		proc.Platform(atoi(attrOr(n, "platform"))),
		proc.CallingConvention(atoi(attrOr(n, "convention"))),
		attrOr(n, "name"),
	)
	sig.PreferredName = attrOr(n, "preferredname")
	sig.Ellipsis = parseBool(attrOr(n, "ellipsis"))
	if pp := attrOr(n, "preferredparams"); pp != "" {
		for _, tok := range strings.Split(pp, ",") {
			v, err := strconv.Atoi(tok)
			if err == nil {
				sig.PreferredParams = append(sig.PreferredParams, v)
			}
		}
	}

	var err error
	sig.RetType, err = buildType(n.child("rettype"))
	if err != nil {
		return nil, err
	}
	sig.PreferredReturn, err = buildType(n.child("preferredreturn"))
	if err != nil {
		return nil, err
	}
	if ps := n.child("params"); ps != nil {
		for _, pn := range ps.childrenByTag("param") {
			t, err := buildType(pn.child("type"))
			if err != nil {
				return nil, err
			}
			e, err := buildExp(pn.child("exp"))
			if err != nil {
				return nil, err
			}
			sig.Params = append(sig.Params, proc.Parameter{Name: attrOr(pn, "name"), Type: t, Exp: e})
		}
	}
	if rs := n.child("returns"); rs != nil {
		for _, rn := range rs.childrenByTag("ret") {
			t, err := buildType(rn.child("type"))
			if err != nil {
				return nil, err
			}
			e, err := buildExp(rn.child("exp"))
			if err != nil {
				return nil, err
			}
			sig.Returns = append(sig.Returns, proc.Return{Type: t, Exp: e})
		}
	}
	return sig, nil
}

// writeProvenFacts appends <proven> with one <fact> per entry, in
// insertion order.
func writeProvenFacts(w *elemWriter, facts []proc.Fact) {
	w.open("proven")
	for _, f := range facts {
		w.open("fact")
		writeExp(w, "lhs", f.Lhs)
		writeExp(w, "rhs", f.Rhs)
		w.close("fact")
	}
	w.close("proven")
}

func buildProvenFacts(n *node) ([]proc.Fact, error) {
	if n == nil {
		return nil, nil
	}
	var out []proc.Fact
	for _, fn := range n.childrenByTag("fact") {
		lhs, err := buildExp(fn.child("lhs"))
		if err != nil {
			return nil, err
		}
		rhs, err := buildExp(fn.child("rhs"))
		if err != nil {
			return nil, err
		}
		out = append(out, proc.Fact{Lhs: lhs, Rhs: rhs})
	}
	return out, nil
}

func writeCallers(w *elemWriter, callers []ir.StmtID) {
	w.open("callers")
	for _, c := range callers {
		w.leaf("c", a("stmt", itoa64(uint64(c))))
	}
	w.close("callers")
}

func buildCallers(n *node) []ir.StmtID {
	if n == nil {
		return nil
	}
	var out []ir.StmtID
	for _, cn := range n.childrenByTag("c") {
		out = append(out, ir.StmtID(u64(attrOr(cn, "stmt"))))
	}
	return out
}

// writeLibProc appends <libproc>.
func writeLibProc(w *elemWriter, lp *proc.LibProc) {
	w.openAttrs("libproc",
		a("id", itoa64(uint64(lp.ID))),
		a("addr", fmtAddr(uint64(lp.Address))),
		a("cluster", itoa64(uint64(lp.Cluster))),
		a("firstcaller", itoa64(uint64(lp.FirstCaller))),
		a("firstcalleraddr", fmtAddr(uint64(lp.FirstCallerAddr))),
	)
	writeSignature(w, lp.Signature)
	writeCallers(w, lp.Callers)
	writeProvenFacts(w, lp.ProvenFacts())
	w.close("libproc")
}

func buildLibProc(n *node) (*proc.LibProc, error) {
	sig, err := buildSignature(n.child("signature"))
	if err != nil {
		return nil, err
	}
	id := ir.ProcID(u64(attrOr(n, "id")))
	addr := ir.Addr(parseAddr(attrOr(n, "addr")))
	lp := proc.NewLibProc(id, addr, sig)
	lp.Cluster = proc.ClusterID(u64(attrOr(n, "cluster")))
	lp.FirstCaller = ir.ProcID(u64(attrOr(n, "firstcaller")))
	lp.FirstCallerAddr = ir.Addr(parseAddr(attrOr(n, "firstcalleraddr")))
	lp.Callers = buildCallers(n.child("callers"))
	facts, err := buildProvenFacts(n.child("proven"))
	if err != nil {
		return nil, err
	}
	for _, f := range facts {
		lp.SetProven(f.Lhs, f.Rhs)
	}
	n.built = lp
	return lp, nil
}

// writeUserProc appends <userproc>.
func writeUserProc(w *elemWriter, up *proc.UserProc) {
	w.openAttrs("userproc",
		a("id", itoa64(uint64(up.ID))),
		a("addr", fmtAddr(uint64(up.Address))),
		a("cluster", itoa64(uint64(up.Cluster))),
		a("firstcaller", itoa64(uint64(up.FirstCaller))),
		a("firstcalleraddr", fmtAddr(uint64(up.FirstCallerAddr))),
		a("status", itoa(int(up.Status()))),
		a("retstmt", itoa64(uint64(up.TheReturnStmt))),
	)
	writeSignature(w, up.Signature)
	writeCfg(w, up.Cfg)
	w.open("locals")
	for _, l := range up.Locals() {
		w.openAttrs("local", a("name", l.Name))
		writeType(w, "type", l.Type)
		w.close("local")
	}
	w.close("locals")
	w.open("symbols")
	for _, pair := range up.SymbolEntries() {
		w.open("sym")
		writeExp(w, "key", pair.Key)
		writeExp(w, "val", pair.Val)
		w.close("sym")
	}
	w.close("symbols")
	w.open("callees")
	for _, c := range up.Callees {
		w.leaf("c", a("proc", itoa64(uint64(c))))
	}
	w.close("callees")
	writeCallers(w, up.Callers)
	writeProvenFacts(w, up.ProvenFacts())
	w.close("userproc")
}

func buildUserProc(n *node) (*proc.UserProc, error) {
	sig, err := buildSignature(n.child("signature"))
	if err != nil {
		return nil, err
	}
	id := ir.ProcID(u64(attrOr(n, "id")))
	addr := ir.Addr(parseAddr(attrOr(n, "addr")))
	up := proc.NewUserProc(id, addr, sig)
	up.Cluster = proc.ClusterID(u64(attrOr(n, "cluster")))
	up.FirstCaller = ir.ProcID(u64(attrOr(n, "firstcaller")))
	up.FirstCallerAddr = ir.Addr(parseAddr(attrOr(n, "firstcalleraddr")))
	up.TheReturnStmt = ir.StmtID(u64(attrOr(n, "retstmt")))
	up.Callers = buildCallers(n.child("callers"))

	if cn := n.child("cfg"); cn != nil {
		built, err := buildCfg(cn)
		if err != nil {
			return nil, err
		}
		up.Cfg = built
	}

	up.RestoreStatus(proc.Status(atoi(attrOr(n, "status"))))

	if ln := n.child("locals"); ln != nil {
		for _, l := range ln.childrenByTag("local") {
			t, err := buildType(l.child("type"))
			if err != nil {
				return nil, err
			}
			name, _ := l.attr("name")
			up.AddLocal(name, t)
		}
	}
	if sn := n.child("symbols"); sn != nil {
		for _, symN := range sn.childrenByTag("sym") {
			key, err := buildExp(symN.child("key"))
			if err != nil {
				return nil, err
			}
			val, err := buildExp(symN.child("val"))
			if err != nil {
				return nil, err
			}
			up.AddSymbol(key, val)
		}
	}
	if cn := n.child("callees"); cn != nil {
		for _, c := range cn.childrenByTag("c") {
			up.Callees = append(up.Callees, ir.ProcID(u64(attrOr(c, "proc"))))
		}
	}
	facts, err := buildProvenFacts(n.child("proven"))
	if err != nil {
		return nil, err
	}
	for _, f := range facts {
		up.SetProven(f.Lhs, f.Rhs)
	}
	n.built = up
	return up, nil
}
