package session

import (
	"decomp/internal/cfg"
	"decomp/internal/errs"
	"decomp/internal/ir"
	"decomp/internal/proc"
)

// Decode implements the "decode()" verb: drives the injected
// frontend.Decoder over every UserProc not yet decoded, building each
// one's Cfg with the classic leader/worklist algorithm -- decode
// straight-line until a control-transfer statement or a previously
// discovered leader is reached, split an already-decoded block if a later
// edge lands inside it (package cfg's Split), and recurse on every newly
// discovered target address.
func (s *Session) Decode() error {
	if s.prog == nil {
		return errs.Invariant("", "Decode: no Program loaded")
	}
	if s.decoder == nil {
		return errs.Invariant("", "Decode: no Decoder configured (session.WithDecoder)")
	}
	for _, pr := range s.prog.Procs() {
		up, ok := pr.(*proc.UserProc)
		if !ok || up.Status() != proc.StatusNew {
			continue
		}
		if err := s.decodeProc(up); err != nil {
			return err
		}
		if s.hub != nil {
			s.hub.PublishStatus(up.Address, up.Signature.Name, up.Status())
		}
	}
	return nil
}

func (s *Session) decodeProc(up *proc.UserProc) error {
	c := up.Cfg

	queue := []ir.Addr{up.Address}
	queued := map[ir.Addr]bool{up.Address: true}
	var returns []cfg.BBID

	for len(queue) > 0 {
		start := queue[0]
		queue = queue[1:]
		if bb, ok := c.BlockAt(start); ok && !bb.Flags.Incomplete {
			continue
		}

		rtls, nodeType, targets, err := s.decodeRun(up, start, c)
		if err != nil {
			return err
		}

		bbID, err := c.AddBB(rtls, nodeType)
		if err != nil {
			return err
		}
		if start == up.Address {
			c.Entry = bbID
		}
		if nodeType == cfg.Ret {
			returns = append(returns, bbID)
		}

		for _, t := range targets {
			linkTarget(c, bbID, t, queued, &queue)
		}
	}

	if len(returns) == 1 {
		c.Exit = returns[0]
	}
	up.Decode()
	return c.CheckWellFormed()
}

// linkTarget resolves addr to the block it belongs to -- splitting an
// existing block if addr lands inside it (package cfg's Split returns an
// error only when addr isn't inside any block yet, which is the ordinary
// case for a brand-new target and is not itself a failure here) -- adds
// the out-edge, and enqueues addr for decoding if it is still an
// incomplete placeholder nothing has decoded yet.
func linkTarget(c *cfg.Cfg, from cfg.BBID, addr ir.Addr, queued map[ir.Addr]bool, queue *[]ir.Addr) {
	c.Split(addr)
	c.AddOutEdge(from, addr)
	if bb, ok := c.BlockAt(addr); ok && bb.Flags.Incomplete && !queued[addr] {
		queued[addr] = true
		*queue = append(*queue, addr)
	}
}

// decodeRun decodes straight-line from start until a control-transfer
// statement ends the block or execution runs into a previously-discovered
// leader, returning the accumulated RTLs, the resulting node type, and the
// resolved static successor addresses (none for a computed/indirect
// transfer -- those are left for a later analysis pass to resolve).
func (s *Session) decodeRun(up *proc.UserProc, start ir.Addr, c *cfg.Cfg) ([]*ir.RTL, cfg.NodeType, []ir.Addr, error) {
	gen := s.prog.StmtIDGen()
	var rtls []*ir.RTL
	addr := start

	for {
		res, err := s.decoder.DecodeInstruction(addr, 0)
		if err != nil {
			return nil, 0, nil, errs.Decode(addr.String(), "%v", err)
		}
		if !res.Valid {
			if len(rtls) == 0 {
				rtls = []*ir.RTL{{NativeAddr: addr}}
			}
			return rtls, cfg.Invalid, nil, nil
		}

		for _, st := range res.RTL.Stmts {
			ir.InitStmtIdentity(st, ir.StmtID(gen.Next()), up.ID)
		}
		rtls = append(rtls, res.RTL)
		next := addr + ir.Addr(res.NumBytes)

		if len(res.RTL.Stmts) > 0 {
			last := res.RTL.Stmts[len(res.RTL.Stmts)-1]
			if kind, targets, isTerm := classifyTerminator(last, next); isTerm {
				return rtls, kind, targets, nil
			}
		}

		if _, ok := c.BlockAt(next); ok {
			return rtls, cfg.OneWay, []ir.Addr{next}, nil
		}
		addr = next
	}
}

// classifyTerminator inspects rtl's final statement and reports how
// control leaves the block, if at all. next is the address immediately
// following the decoded instruction, used as the fallthrough target for a
// conditional branch or a non-tail call.
func classifyTerminator(last ir.Statement, next ir.Addr) (cfg.NodeType, []ir.Addr, bool) {
	switch st := last.(type) {
	case *ir.GotoStmt:
		if st.IsComputed {
			return cfg.CompJump, nil, true
		}
		if a, ok := constAddr(st.Dest); ok {
			return cfg.OneWay, []ir.Addr{a}, true
		}
		return cfg.CompJump, nil, true
	case *ir.BranchStmt:
		if st.IsComputed {
			return cfg.CompJump, []ir.Addr{next}, true
		}
		if a, ok := constAddr(st.Dest); ok {
			return cfg.TwoWay, []ir.Addr{next, a}, true
		}
		return cfg.CompJump, []ir.Addr{next}, true
	case *ir.ReturnStmt:
		return cfg.Ret, nil, true
	case *ir.CaseStmt:
		return cfg.NWay, nil, true
	case *ir.CallStmt:
		if st.ReturnAfterCall {
			return cfg.Ret, nil, true
		}
		return cfg.Call, []ir.Addr{next}, true
	default:
		return cfg.Fall, nil, false
	}
}

func constAddr(e ir.Exp) (ir.Addr, bool) {
	c, ok := e.(*ir.Const)
	if !ok {
		return 0, false
	}
	v, ok := c.IntVal()
	if !ok {
		return 0, false
	}
	return ir.Addr(v), true
}
