package xmlio

import (
	"fmt"
	"os"
	"path/filepath"

	"decomp/internal/errs"
	"decomp/internal/ir"
	"decomp/internal/proc"
	"decomp/internal/program"
)

// Reader loads a Program back from the directory tree a Writer produced,
// in two passes: phase 0 parses every cluster file into a generic node
// tree and constructs every object from its own attributes; phase 1
// re-walks the built objects, resolving and validating every
// cross-reference (cluster parent links, proc cluster membership,
// RefExp.def, phi defs, call targets, first-caller, the owning
// procedure's return statement). An unresolved reference at the end of
// phase 1 is a fatal XMLParse error.
type Reader struct {
	warnings []string
}

// NewReader constructs a Reader.
func NewReader() *Reader { return &Reader{} }

// Warnings returns every non-fatal parse warning accumulated by the most
// recent ReadProgram call: stray character data is a warning, not a fatal
// error.
func (r *Reader) Warnings() []string { return r.warnings }

// ReadProgram loads a Program given the path to its root cluster's XML
// file (the on-disk counterpart of the "load_xml(root_file)" verb). Every
// sibling cluster file is discovered by walking the directory tree rooted
// at rootFile's parent directory.
func (r *Reader) ReadProgram(rootFile string) (*program.Program, error) {
	base := filepath.Dir(rootFile)
	files, err := discoverClusterFiles(base)
	if err != nil {
		return nil, err
	}

	var parsed []parsedCluster
	for _, file := range files {
		pc, err := r.parseClusterFile(file)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, pc)
	}

	p, idMap, err := buildProgramShell(parsed)
	if err != nil {
		return nil, err
	}

	if root := findRoot(parsed); root != nil {
		if gn := root.root.child("globals"); gn != nil {
			for _, gc := range gn.childrenByTag("global") {
				g, err := buildGlobal(gc)
				if err != nil {
					return nil, err
				}
				p.AddGlobal(g)
			}
		}
		p.RestoreNumberedProcCounter(atoi(attrOr(root.root, "inumberedproc")))
	}

	var maxStmtID uint64
	for _, pc := range parsed {
		procsNode := pc.root.child("procs")
		if procsNode == nil {
			continue
		}
		clusterID := idMap[pc.savedID]
		for _, ln := range procsNode.childrenByTag("libproc") {
			lp, err := buildLibProc(ln)
			if err != nil {
				return nil, err
			}
			setProcCluster(lp, clusterID)
			p.AddProc(lp)
		}
		for _, un := range procsNode.childrenByTag("userproc") {
			up, err := buildUserProc(un)
			if err != nil {
				return nil, err
			}
			setProcCluster(up, clusterID)
			p.AddProc(up)
			scanStmtIDs(un, &maxStmtID)
		}
	}

	if err := resolveRefs(p); err != nil {
		return nil, err
	}

	p.StmtIDGen().Bump(maxStmtID)
	return p, nil
}

func findRoot(parsed []parsedCluster) *parsedCluster {
	for i := range parsed {
		if parsed[i].isRoot {
			return &parsed[i]
		}
	}
	return nil
}

func trackMax(cur *uint64, v uint64) {
	if v > *cur {
		*cur = v
	}
}

// scanStmtIDs walks every statement element (<assign>, <phiassign>, <call>,
// ...) below a <userproc> node recording the highest "id" attribute seen,
// so the Program's statement id
// generator can be bumped past every id restored from disk.
func scanStmtIDs(n *node, max *uint64) {
	if n.tag == "assign" || n.tag == "phiassign" || n.tag == "boolassign" ||
		n.tag == "call" || n.tag == "goto" || n.tag == "branch" ||
		n.tag == "case" || n.tag == "return" {
		trackMax(max, u64(attrOr(n, "id")))
	}
	for _, c := range n.children {
		scanStmtIDs(c, max)
	}
}

func discoverClusterFiles(base string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".xml" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errs.IO(base, err)
	}
	if len(files) == 0 {
		return nil, errs.Load(base, "no cluster XML files found")
	}
	return files, nil
}

func (r *Reader) parseClusterFile(file string) (parsedCluster, error) {
	f, err := os.Open(file)
	if err != nil {
		return parsedCluster{}, errs.IO(file, err)
	}
	defer f.Close()

	root, err := parseTree(f, file, &r.warnings)
	if err != nil {
		return parsedCluster{}, err
	}

	return parsedCluster{
		file:        file,
		root:        root,
		isRoot:      root.tag == "prog",
		savedID:     u64(attrOr(root, "clusterid")),
		name:        attrOr(root, "clustername"),
		savedParent: u64(attrOr(root, "clusterparent")),
	}, nil
}

// resolveRefs is phase 1: it walks every built statement's expressions and
// every proc's caller/callee/first-caller links, validating that each
// weak reference resolves within the fully-loaded Program. Unlike a
// pointer-patching reader, nothing here needs to rewrite the objects
// themselves -- RefExp.Def, CallStmt.DestProc, and friends are plain
// integer ids already; this pass only confirms they are not dangling.
func resolveRefs(p *program.Program) error {
	stmtIndex := make(map[ir.StmtID]bool)
	procIndex := make(map[ir.ProcID]bool)
	for _, pr := range p.Procs() {
		procIndex[pr.ProcID()] = true
		up, ok := pr.(*proc.UserProc)
		if !ok {
			continue
		}
		for _, bb := range up.Cfg.Blocks() {
			for _, rtl := range bb.RTLs {
				for _, s := range rtl.Stmts {
					stmtIndex[s.ID()] = true
				}
			}
		}
	}

	for _, pr := range p.Procs() {
		up, ok := pr.(*proc.UserProc)
		if !ok {
			continue
		}
		for _, bb := range up.Cfg.Blocks() {
			for _, rtl := range bb.RTLs {
				for _, s := range rtl.Stmts {
					if err := resolveStmtRefs(s, stmtIndex); err != nil {
						return err
					}
					if call, ok := s.(*ir.CallStmt); ok && call.DestProc != 0 && !procIndex[call.DestProc] {
						return errs.XMLParse(up.Address.String(), "call statement %d references undefined proc %d", s.ID(), call.DestProc)
					}
				}
			}
		}
		if up.TheReturnStmt != 0 && !stmtIndex[up.TheReturnStmt] {
			return errs.XMLParse(up.Address.String(), "userproc %s: theReturnStmt %d does not resolve", up.Signature.Name, up.TheReturnStmt)
		}
		for _, callee := range up.Callees {
			if !procIndex[callee] {
				return errs.XMLParse(up.Address.String(), "userproc %s: callee %d does not resolve", up.Signature.Name, callee)
			}
		}
	}

	for _, pr := range p.Procs() {
		firstCaller, name := firstCallerOf(pr)
		if firstCaller != 0 && !procIndex[firstCaller] {
			return errs.XMLParse(pr.ProcAddr().String(), "proc %s: firstCaller %d does not resolve", name, firstCaller)
		}
		for _, callerStmt := range callersOf(pr) {
			if !stmtIndex[callerStmt] {
				return errs.XMLParse(pr.ProcAddr().String(), "proc references caller statement %d that does not resolve", callerStmt)
			}
		}
	}

	return nil
}

func firstCallerOf(pr proc.AnyProc) (ir.ProcID, string) {
	switch v := pr.(type) {
	case *proc.LibProc:
		return v.FirstCaller, v.Signature.Name
	case *proc.UserProc:
		return v.FirstCaller, v.Signature.Name
	default:
		return 0, ""
	}
}

func callersOf(pr proc.AnyProc) []ir.StmtID {
	switch v := pr.(type) {
	case *proc.LibProc:
		return v.Callers
	case *proc.UserProc:
		return v.Callers
	default:
		return nil
	}
}

func resolveStmtRefs(s ir.Statement, index map[ir.StmtID]bool) error {
	// A phi's per-predecessor defining-statement ids are weak references
	// just like RefExp.Def; 0 means "live-in/parameter" and is legal.
	if phi, ok := s.(*ir.PhiAssign); ok {
		for _, d := range phi.Defs {
			if d.Def != 0 && !index[d.Def] {
				return errs.XMLParse(fmt.Sprintf("proc %d", s.Proc()),
					"phi in statement %d references undefined statement %d", s.ID(), d.Def)
			}
		}
	}

	var refErr error
	for _, top := range ir.ExpsOf(s) {
		ir.WalkExp(top, func(e ir.Exp) {
			if refErr != nil {
				return
			}
			ref, ok := e.(*ir.RefExp)
			if !ok {
				return
			}
			if ref.Def != 0 && !index[ref.Def] {
				refErr = errs.XMLParse(fmt.Sprintf("proc %d", s.Proc()),
					"refexp in statement %d references undefined statement %d", s.ID(), ref.Def)
			}
		})
	}
	return refErr
}
