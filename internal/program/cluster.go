// Package program implements the top-level Program/Cluster model: the
// owner of every Proc, Global, and the hierarchical cluster namespace that
// shards persistence across files. It sits above package proc,
// resolving proc.ClusterID weak references against its own Cluster arena.
package program

import "decomp/internal/proc"

// Cluster is a node in the hierarchical namespace persistence shards
// across. Children are ordered; the tree's root is unique per
// Program.
type Cluster struct {
	id       proc.ClusterID
	Name     string
	Parent   proc.ClusterID // 0 for the root
	Children []proc.ClusterID
}

// ID returns the cluster's weak-reference id.
func (c *Cluster) ID() proc.ClusterID { return c.id }

// Path returns the filesystem path components from root to this cluster,
// root first, used to derive the on-disk `<root>/<cluster-path>/<cluster-
// name>.xml` layout.
func (c *Cluster) Path(owner *Program) []string {
	var parts []string
	cur := c
	for {
		parts = append([]string{cur.Name}, parts...)
		if cur.Parent == 0 {
			break
		}
		cur = owner.Cluster(cur.Parent)
		if cur == nil {
			break
		}
	}
	return parts
}
