package xmlio

import (
	"decomp/internal/errs"
	"decomp/internal/ir"
	"decomp/internal/proc"
	"decomp/internal/program"
)

// writeGlobal appends <global>.
func writeGlobal(w *elemWriter, g *program.Global) {
	w.openAttrs("global", a("name", g.Name), a("addr", fmtAddr(uint64(g.UAddr))))
	writeType(w, "type", g.Type)
	w.close("global")
}

func buildGlobal(n *node) (*program.Global, error) {
	t, err := buildType(n.child("type"))
	if err != nil {
		return nil, err
	}
	return &program.Global{
		Name:  attrOr(n, "name"),
		UAddr: ir.Addr(parseAddr(attrOr(n, "addr"))),
		Type:  t,
	}, nil
}

// clusterHeaderAttrs returns the attributes common to both the root
// <prog> element and every non-root <cluster> element: the cluster's own
// saved id, name, and parent reference. Kept separate from the element's
// open call so the root file can fold these attributes into its <prog>
// tag instead of wrapping them in a nested <cluster>.
func clusterHeaderAttrs(c *program.Cluster) []xmlAttr {
	return []xmlAttr{
		a("clusterid", itoa64(uint64(c.ID()))),
		a("clustername", c.Name),
		a("clusterparent", itoa64(uint64(c.Parent))),
	}
}

// writeClusterBody appends the children shared by every cluster file: the
// procedures filed directly under c and a <children> list naming c's child
// clusters. The root file's globals are written by WriteProgram, not here.
func writeClusterBody(w *elemWriter, p *program.Program, c *program.Cluster) {
	w.open("procs")
	for _, pr := range p.Procs() {
		clusterOf, ok := procCluster(pr)
		if !ok || clusterOf != c.ID() {
			continue
		}
		switch v := pr.(type) {
		case *proc.LibProc:
			writeLibProc(w, v)
		case *proc.UserProc:
			writeUserProc(w, v)
		}
	}
	w.close("procs")

	w.open("children")
	for _, childID := range c.Children {
		child := p.Cluster(childID)
		if child == nil {
			continue
		}
		w.leaf("childref", a("name", child.Name), a("id", itoa64(uint64(childID))))
	}
	w.close("children")
}

// procCluster extracts the Cluster field both Proc variants promote.
func procCluster(pr proc.AnyProc) (proc.ClusterID, bool) {
	switch v := pr.(type) {
	case *proc.LibProc:
		return v.Cluster, true
	case *proc.UserProc:
		return v.Cluster, true
	default:
		return 0, false
	}
}

// parsedCluster holds one cluster file's phase-0 parse result before the
// cross-file cluster tree (and every proc's Cluster field) has been
// resolved in phase 1.
type parsedCluster struct {
	file       string
	root       *node // the <prog> or <cluster> top element
	savedID    uint64
	name       string
	savedParent uint64
	isRoot     bool
}

// buildProgramShell constructs an empty Program plus the full set of
// loaded-id -> live-ClusterID mappings, given every cluster file's parsed
// node. It does not yet build procedures or globals -- those still
// reference clusters by their saved ids, which only exist once this
// mapping is complete.
func buildProgramShell(clusters []parsedCluster) (*program.Program, map[uint64]proc.ClusterID, error) {
	var rootPC *parsedCluster
	for i := range clusters {
		if clusters[i].isRoot {
			rootPC = &clusters[i]
			break
		}
	}
	if rootPC == nil {
		return nil, nil, errXMLParseNoRoot()
	}

	p := program.New(attrOr(rootPC.root, "path"), attrOr(rootPC.root, "name"), rootPC.name)
	idMap := map[uint64]proc.ClusterID{rootPC.savedID: p.RootCluster}

	remaining := make([]parsedCluster, 0, len(clusters))
	for _, pc := range clusters {
		if !pc.isRoot {
			remaining = append(remaining, pc)
		}
	}

	for len(remaining) > 0 {
		progressed := false
		next := remaining[:0]
		for _, pc := range remaining {
			parentID, ok := idMap[pc.savedParent]
			if !ok {
				next = append(next, pc)
				continue
			}
			idMap[pc.savedID] = p.NewCluster(parentID, pc.name)
			progressed = true
		}
		remaining = next
		if !progressed && len(remaining) > 0 {
			return nil, nil, errUnresolvedClusterParents(remaining)
		}
	}

	return p, idMap, nil
}

func setProcCluster(pr proc.AnyProc, id proc.ClusterID) {
	switch v := pr.(type) {
	case *proc.LibProc:
		v.Cluster = id
	case *proc.UserProc:
		v.Cluster = id
	}
}

func errXMLParseNoRoot() error {
	return errs.XMLParse("", "no cluster file declares the root <prog> element")
}

func errUnresolvedClusterParents(remaining []parsedCluster) error {
	return errs.XMLParse(remaining[0].file, "cluster %q references a parent cluster id that was never resolved", remaining[0].name)
}
