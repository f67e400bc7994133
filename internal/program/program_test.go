package program

import (
	"testing"

	"decomp/internal/proc"
)

// S3: program name set/get.
func TestProgramNameScenarioS3(t *testing.T) {
	p := New("test/pentium/hello", "test/pentium/hello", "hello")
	if p.Name != "test/pentium/hello" {
		t.Fatalf("got %q", p.Name)
	}
	p.SetName("Happy prog")
	if p.Name != "Happy prog" {
		t.Fatalf("got %q", p.Name)
	}
}

func TestClusterTreeAndPath(t *testing.T) {
	p := New("/tmp/prog", "prog", "prog")
	child := p.NewCluster(p.RootCluster, "util")
	grandchild := p.NewCluster(child, "strings")

	root := p.Cluster(p.RootCluster)
	if len(root.Children) != 1 || root.Children[0] != child {
		t.Fatalf("root children = %v, want [%v]", root.Children, child)
	}

	path := p.Cluster(grandchild).Path(p)
	want := []string{"prog", "util", "strings"}
	if len(path) != len(want) {
		t.Fatalf("got %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("got %v, want %v", path, want)
		}
	}
}

func TestAddProcAndLookupByAddr(t *testing.T) {
	p := New("/tmp/prog", "prog", "prog")
	lp := proc.NewLibProc(p.NextProcID(), 0x4010, proc.Instantiate(proc.PlatformGeneric, proc.ConventionC, "printf"))
	p.AddProc(lp)

	got, ok := p.ProcByAddr(0x4010)
	if !ok || got.ProcID() != lp.ID {
		t.Fatalf("lookup failed: got %v, ok=%v", got, ok)
	}
	if len(p.Procs()) != 1 {
		t.Fatalf("got %d procs, want 1", len(p.Procs()))
	}
}

func TestNumberedProcNames(t *testing.T) {
	p := New("/tmp/prog", "prog", "prog")
	if got := p.NextNumberedProcName(); got != "proc_1" {
		t.Fatalf("got %q, want proc_1", got)
	}
	if got := p.NextNumberedProcName(); got != "proc_2" {
		t.Fatalf("got %q, want proc_2", got)
	}
}
