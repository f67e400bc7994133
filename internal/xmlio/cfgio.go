package xmlio

import (
	"strings"

	"decomp/internal/cfg"
	"decomp/internal/errs"
	"decomp/internal/ir"
)

// writeRTL appends <rtl addr="0x.."> with one <stmt> wrapper per statement,
// in order: statement order within an RTL is semantic and must round-trip.
func writeRTL(w *elemWriter, r *ir.RTL) {
	w.openAttrs("rtl", a("addr", fmtAddr(uint64(r.NativeAddr))))
	for _, s := range r.Stmts {
		writeStmt(w, "stmt", s)
	}
	w.close("rtl")
}

func buildRTL(n *node) (*ir.RTL, error) {
	addr := ir.Addr(parseAddr(attrOr(n, "addr")))
	var stmts []ir.Statement
	for _, sn := range n.childrenByTag("stmt") {
		s, err := buildStmt(sn)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return &ir.RTL{NativeAddr: addr, Stmts: stmts}, nil
}

var flagNames = []struct {
	bit  func(cfg.Flags) bool
	name string
}{
	{func(f cfg.Flags) bool { return f.Incomplete }, "incomplete"},
	{func(f cfg.Flags) bool { return f.JumpRequired }, "jumprequired"},
	{func(f cfg.Flags) bool { return f.LabelNeeded }, "labelneeded"},
	{func(f cfg.Flags) bool { return f.HLLLabel }, "hlllabel"},
}

func flagsToCSV(f cfg.Flags) string {
	var parts []string
	for _, fn := range flagNames {
		if fn.bit(f) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, ",")
}

func flagsFromCSV(s string) cfg.Flags {
	var f cfg.Flags
	for _, tok := range strings.Split(s, ",") {
		switch tok {
		case "incomplete":
			f.Incomplete = true
		case "jumprequired":
			f.JumpRequired = true
		case "labelneeded":
			f.LabelNeeded = true
		case "hlllabel":
			f.HLLLabel = true
		}
	}
	return f
}

// bbAddrRef renders bb's structural-annotation targets (ImmPDom,
// LoopHead, ...) by head address rather than by BBID: BBID is only an
// arena index and is not guaranteed stable across a save/reload cycle,
// whereas a block's head native address is (blocks are keyed by head
// address in Cfg.byAddr). 0 means "unset".
func bbAddrRef(c *cfg.Cfg, id cfg.BBID) string {
	if id == 0 {
		return "0x0"
	}
	bb := c.Block(id)
	if bb == nil {
		return "0x0"
	}
	return fmtAddr(uint64(bb.HeadAddr()))
}

// writeBB appends one <bb> element for bb, including its out-edges (the
// writer omits in-edges entirely: AddOutEdge atomically mirrors both sides
// on reload, so persisting one direction is sufficient and guarantees the
// well-formedness invariant trivially on reconstruction).
func writeBB(w *elemWriter, c *cfg.Cfg, bb *cfg.BasicBlock, id int) {
	w.openAttrs("bb",
		a("id", itoa(id)),
		a("addr", fmtAddr(uint64(bb.HeadAddr()))),
		a("type", itoa(int(bb.NodeType))),
		a("label", itoa(bb.LabelNum)),
		a("labelstr", bb.LabelStr),
		a("flags", flagsToCSV(bb.Flags)),
		a("immpdom", bbAddrRef(c, bb.ImmPDom)),
		a("loophead", bbAddrRef(c, bb.LoopHead)),
		a("loopfollow", bbAddrRef(c, bb.LoopFollow)),
		a("casehead", bbAddrRef(c, bb.CaseHead)),
		a("condfollow", bbAddrRef(c, bb.CondFollow)),
		a("latch", bbAddrRef(c, bb.LatchNode)),
		a("mloophead", bbAddrRef(c, bb.MLoopHead)),
		a("mcasehead", bbAddrRef(c, bb.MCaseHead)),
		a("stype", itoa(int(bb.SType))),
		a("ustype", itoa(int(bb.UsType))),
		a("ltype", itoa(int(bb.LType))),
		a("ctype", itoa(int(bb.CType))),
	)
	w.open("outedges")
	for _, succ := range bb.OutEdges {
		sb := c.Block(succ)
		if sb == nil {
			continue
		}
		w.leaf("e", a("addr", fmtAddr(uint64(sb.HeadAddr()))))
	}
	w.close("outedges")
	for _, rtl := range bb.RTLs {
		writeRTL(w, rtl)
	}
	w.close("bb")
}

// writeCfg appends <cfg> with every block of c, in arena (insertion) order.
func writeCfg(w *elemWriter, c *cfg.Cfg) {
	w.openAttrs("cfg",
		a("entry", bbAddrRef(c, c.Entry)),
		a("exit", bbAddrRef(c, c.Exit)),
		a("wellformed", boolStr(c.WellFormed)),
		a("lastlabel", itoa(c.LastLabel)))
	for i, bb := range c.Blocks() {
		writeBB(w, c, bb, i+1)
	}
	w.close("cfg")
}

// buildCfg reconstructs a Cfg from a <cfg> node. Pass 1 (within this
// function) creates every BB via Cfg.AddBB, keyed by head address, which
// is exactly how the front end would have produced them; pass 2 wires
// edges via Cfg.AddOutEdge, which atomically mirrors the in-edge too, and
// finally structural annotations are resolved by address via Cfg.BlockAt.
// Unlike Statement/Proc ids, a bb's own "id" attribute is write-only
// bookkeeping here -- the real cross-reference key is its head address.
func buildCfg(n *node) (*cfg.Cfg, error) {
	c := cfg.New()
	bbNodes := n.childrenByTag("bb")

	for _, bn := range bbNodes {
		rtls, err := buildRTLs(bn)
		if err != nil {
			return nil, err
		}
		if len(rtls) == 0 {
			return nil, errs.XMLParse(bn.file, "bb at %s has no RTLs", attrOr(bn, "addr"))
		}
		id, err := c.AddBB(rtls, cfg.NodeType(atoi(attrOr(bn, "type"))))
		if err != nil {
			return nil, err
		}
		bb := c.Block(id)
		bb.LabelNum = atoi(attrOr(bn, "label"))
		bb.LabelStr = attrOr(bn, "labelstr")
		bb.Flags = flagsFromCSV(attrOr(bn, "flags"))
		bb.SType = cfg.StructType(atoi(attrOr(bn, "stype")))
		bb.UsType = cfg.StructType(atoi(attrOr(bn, "ustype")))
		bb.LType = cfg.LoopType(atoi(attrOr(bn, "ltype")))
		bb.CType = cfg.CondType(atoi(attrOr(bn, "ctype")))
		bn.built = bb
	}

	for _, bn := range bbNodes {
		from := bn.built.(*cfg.BasicBlock)
		if oe := bn.child("outedges"); oe != nil {
			for _, e := range oe.childrenByTag("e") {
				destAddr := ir.Addr(parseAddr(attrOr(e, "addr")))
				c.AddOutEdge(from.ID(), destAddr)
			}
		}
	}

	for _, bn := range bbNodes {
		bb := bn.built.(*cfg.BasicBlock)
		bb.ImmPDom = resolveBBRef(c, attrOr(bn, "immpdom"))
		bb.LoopHead = resolveBBRef(c, attrOr(bn, "loophead"))
		bb.LoopFollow = resolveBBRef(c, attrOr(bn, "loopfollow"))
		bb.CaseHead = resolveBBRef(c, attrOr(bn, "casehead"))
		bb.CondFollow = resolveBBRef(c, attrOr(bn, "condfollow"))
		bb.LatchNode = resolveBBRef(c, attrOr(bn, "latch"))
		bb.MLoopHead = resolveBBRef(c, attrOr(bn, "mloophead"))
		bb.MCaseHead = resolveBBRef(c, attrOr(bn, "mcasehead"))
	}

	c.Entry = resolveBBRef(c, attrOr(n, "entry"))
	c.Exit = resolveBBRef(c, attrOr(n, "exit"))
	c.LastLabel = atoi(attrOr(n, "lastlabel"))
	if err := c.CheckWellFormed(); err != nil {
		return nil, err
	}
	return c, nil
}

func resolveBBRef(c *cfg.Cfg, addrStr string) cfg.BBID {
	addr := ir.Addr(parseAddr(addrStr))
	if addr == 0 {
		return 0
	}
	bb, ok := c.BlockAt(addr)
	if !ok {
		return 0
	}
	return bb.ID()
}

func buildRTLs(bn *node) ([]*ir.RTL, error) {
	var out []*ir.RTL
	for _, rn := range bn.childrenByTag("rtl") {
		r, err := buildRTL(rn)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
