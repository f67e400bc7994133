// Package ir implements the expression/statement/RTL data model: the
// leaf-most owned structures in the decompiler's in-memory program graph.
// Cross-links that would otherwise form cycles through higher layers
// (Location.Owner -> a procedure, RefExp.Def -> a statement, FlagDef.RTL ->
// an RTL) are represented here as opaque, non-owning IDs rather than
// pointers: the owning arena (package proc/cfg/program) resolves an ID
// back to the live object; ir itself never imports those packages,
// avoiding a cycle.
package ir

import (
	"fmt"
	"sync"
)

// Addr is a native code address.
type Addr uint64

func (a Addr) String() string { return fmt.Sprintf("0x%x", uint64(a)) }

// StmtID uniquely identifies a Statement within a Program. Zero is the
// not-yet-assigned/unresolved sentinel.
type StmtID uint64

// ProcID uniquely identifies a Proc within a Program. Zero means "no owning
// procedure" (e.g. a Location not yet bound to a UserProc).
type ProcID uint64

// IDGen hands out monotonically increasing, process-unique IDs. A Program
// owns one for statements (procedure ids come from package program's own
// generator), keeping every ID stable and reproducible within a run rather
// than tied to an object's transient memory address. It is safe for
// concurrent use; the zero value is ready to use.
type IDGen struct {
	mu   sync.Mutex
	next uint64
}

// Next returns the next unused id, starting at 1 (0 is reserved as "unset").
func (g *IDGen) Next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.next
}

// Bump raises the generator's floor so that a subsequent Next() never
// reissues an id at or below floor. Used when reloading a saved program:
// ids restored verbatim from disk (package xmlio) must not collide with
// ids handed out to statements created afterward.
func (g *IDGen) Bump(floor uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if floor > g.next {
		g.next = floor
	}
}
