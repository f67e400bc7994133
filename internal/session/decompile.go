package session

import (
	llir "github.com/llir/llvm/ir"
	"golang.org/x/sync/errgroup"

	"decomp/internal/cache"
	"decomp/internal/codegen"
	"decomp/internal/errs"
	"decomp/internal/ir"
	"decomp/internal/proc"
)

// Decompile implements the "decompile()" verb for a single UserProc: SSA
// conversion (phi placement plus renaming over the dominator tree),
// statement propagation, dead-assignment removal, and the exit from SSA
// form -- the fixed-point pipeline that carries a procedure from decoded
// to final-done. Before doing any of that it consults the analysis cache,
// if one is attached, and skips straight to restoring the cached
// facts/status when the procedure's RTL stream hasn't changed since the
// cache entry was written.
func (s *Session) Decompile(up *proc.UserProc) error {
	rtlHash := cache.HashRTLs(flattenRTLs(up))

	if s.cacheStore != nil {
		entry, ok, err := s.cacheStore.Get(up.Address, rtlHash)
		if err != nil {
			return err
		}
		if ok {
			up.RestoreStatus(entry.Status)
			for _, f := range entry.Facts {
				up.SetProven(f.Lhs, f.Rhs)
			}
			s.logger.Printf("decompile %s: cache hit at %s, status=%s", up.Signature.Name, rtlHash, entry.Status)
			s.publish(up)
			return nil
		}
	}

	up.InitStatements()
	if err := up.RenameBlockVars(s.prog.StmtIDGen()); err != nil {
		return err
	}
	up.PropagateStatements()
	removed := up.RemoveUnusedStatements()
	up.FromSSAform()

	if s.cacheStore != nil {
		if err := s.cacheStore.Put(up.Address, rtlHash, up.Status(), up.ProvenFacts()); err != nil {
			return err
		}
	}
	s.logger.Printf("decompile %s: done, status=%s, %d dead statements removed", up.Signature.Name, up.Status(), removed)
	s.publish(up)
	return nil
}

// DecompileAll decompiles every decoded UserProc concurrently.
// Cross-procedure mutation is limited to each procedure's own proven_true
// map, so concurrent Decompile calls never touch shared state beyond the
// Program's id generators, which are already safe for concurrent use.
func (s *Session) DecompileAll() error {
	if s.prog == nil {
		return errs.Invariant("", "DecompileAll: no Program loaded")
	}
	var g errgroup.Group
	for _, pr := range s.prog.Procs() {
		up, ok := pr.(*proc.UserProc)
		if !ok || up.Status() != proc.StatusDecoded {
			continue
		}
		g.Go(func() error { return s.Decompile(up) })
	}
	return g.Wait()
}

// GenerateCode implements the "generateCode()" step of the procedure
// lifecycle: it lowers up's post-SSA RTL stream into an LLVM module
// (package codegen) and marks the procedure code-generated.
func (s *Session) GenerateCode(up *proc.UserProc) (*llir.Module, error) {
	m, err := codegen.Generate(up)
	if err != nil {
		return nil, err
	}
	up.MarkCodeGenerated()
	s.publish(up)
	return m, nil
}

func (s *Session) publish(up *proc.UserProc) {
	if s.hub != nil {
		s.hub.PublishStatus(up.Address, up.Signature.Name, up.Status())
	}
}

// flattenRTLs collects every RTL of up's Cfg in block-insertion order, the
// same order package cache.HashRTLs and package xmlio both treat as
// canonical.
func flattenRTLs(up *proc.UserProc) []*ir.RTL {
	var rtls []*ir.RTL
	for _, bb := range up.Cfg.Blocks() {
		rtls = append(rtls, bb.RTLs...)
	}
	return rtls
}
