package program

import (
	"decomp/internal/ir"
	"decomp/internal/proc"
	"decomp/internal/types"

	"github.com/google/uuid"
)

// Global is a named object at a fixed address.
type Global struct {
	Name  string
	UAddr ir.Addr
	Type  types.Type
}

// FrontEnd is the minimal capability Program needs from the external
// binary-loader/decoder collaborator package frontend provides;
// kept here as an interface so package program never imports package
// frontend.
type FrontEnd interface {
	Machine() string
	MainEntryPoint() ir.Addr
}

// Program owns every Proc, Global, and the Cluster tree for one
// decompilation session. References to Procs by address are
// stable until a Proc is explicitly removed.
type Program struct {
	Path string
	Name string

	numberedProcCounter int
	stmtIDs             ir.IDGen
	procIDs             procIDGen

	procs      []proc.AnyProc
	procLabels map[ir.Addr]proc.AnyProc

	Globals map[string]*Global

	FrontEnd FrontEnd

	// Session identifies this in-memory decompilation run, independent of
	// any on-disk name; used to correlate cache entries (package cache)
	// and progress events (package events) back to the Program that
	// produced them.
	Session uuid.UUID

	clusters    []*Cluster
	RootCluster proc.ClusterID
}

// procIDGen hands out ir.ProcID values; kept distinct from the statement
// IDGen since the two id spaces are independent.
type procIDGen struct{ next uint64 }

func (g *procIDGen) next_() ir.ProcID {
	g.next++
	return ir.ProcID(g.next)
}

// bump raises the generator's floor so a subsequent next_() never reissues
// an id at or below floor, mirroring ir.IDGen.Bump.
func (g *procIDGen) bump(floor uint64) {
	if floor > g.next {
		g.next = floor
	}
}

// New creates an empty Program with a root cluster named rootName.
func New(path, name, rootName string) *Program {
	p := &Program{
		Path:       path,
		Name:       name,
		Session:    uuid.New(),
		procLabels: make(map[ir.Addr]proc.AnyProc),
		Globals:    make(map[string]*Global),
		clusters:   []*Cluster{nil}, // 1-indexed, like package cfg's block arena
	}
	p.RootCluster = p.newCluster(0, rootName)
	return p
}

// StmtIDGen returns the Program's statement-id generator, shared by every
// UserProc's CFG so StmtID is globally unique within the Program: a
// RefExp.def must resolve uniquely regardless of which procedure defined
// it.
func (p *Program) StmtIDGen() *ir.IDGen { return &p.stmtIDs }

// SetName implements scenario S3's set_name: changes Program.Name without
// touching Path or any procedure.
func (p *Program) SetName(name string) { p.Name = name }

// NewCluster creates a named child of parent and returns its id.
func (p *Program) NewCluster(parent proc.ClusterID, name string) proc.ClusterID {
	return p.newCluster(parent, name)
}

func (p *Program) newCluster(parent proc.ClusterID, name string) proc.ClusterID {
	id := proc.ClusterID(len(p.clusters))
	c := &Cluster{id: id, Name: name, Parent: parent}
	p.clusters = append(p.clusters, c)
	if parentCluster := p.Cluster(parent); parentCluster != nil {
		parentCluster.Children = append(parentCluster.Children, id)
	}
	return id
}

// Cluster resolves id to its Cluster, or nil.
func (p *Program) Cluster(id proc.ClusterID) *Cluster {
	if id <= 0 || int(id) >= len(p.clusters) {
		return nil
	}
	return p.clusters[id]
}

// Clusters returns every cluster in creation order (root first).
func (p *Program) Clusters() []*Cluster { return p.clusters[1:] }

// AddProc inserts pr into Program.procs (insertion order), indexes it by
// address, and raises the proc-id generator's floor to pr's id. It does
// not touch the numbered-proc counter; NextNumberedProcName advances that.
func (p *Program) AddProc(pr proc.AnyProc) {
	p.procs = append(p.procs, pr)
	p.procLabels[pr.ProcAddr()] = pr
	p.procIDs.bump(uint64(pr.ProcID()))
}

// NextProcID hands out a fresh ProcID for a new Proc/LibProc/UserProc.
func (p *Program) NextProcID() ir.ProcID { return p.procIDs.next_() }

// NumberedProcCounter returns how many synthetic "proc_N" names have been
// handed out so far, for persistence.
func (p *Program) NumberedProcCounter() int { return p.numberedProcCounter }

// RestoreNumberedProcCounter sets the synthetic-name counter directly,
// used when reloading a saved program so a freshly decompiled procedure
// added afterward doesn't reissue a name already on disk.
func (p *Program) RestoreNumberedProcCounter(n int) { p.numberedProcCounter = n }

// NextNumberedProcName returns a synthetic name like "proc_3" for a
// procedure the front end could not resolve a symbol for, advancing the
// counter.
func (p *Program) NextNumberedProcName() string {
	p.numberedProcCounter++
	return numberedProcName(p.numberedProcCounter)
}

func numberedProcName(n int) string {
	const digits = "0123456789"
	if n == 0 {
		return "proc_0"
	}
	buf := make([]byte, 0, 8)
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return "proc_" + string(buf)
}

// Procs returns every procedure in Program.procs insertion order.
func (p *Program) Procs() []proc.AnyProc { return p.procs }

// ProcByAddr looks up a procedure by its entry address.
func (p *Program) ProcByAddr(addr ir.Addr) (proc.AnyProc, bool) {
	pr, ok := p.procLabels[addr]
	return pr, ok
}

// AddGlobal records a Global, keyed by name: re-adding the same name is a
// no-op update rather than a duplicate.
func (p *Program) AddGlobal(g *Global) { p.Globals[g.Name] = g }
