// Package symtab implements the ordered, string-keyed address<->name
// symbol table a loaded BinaryFile's getSymbols() populates, held by a
// Session (Session.Symbols). Package xmlio does not read it.
// Insertion order is preserved in both directions so a dump of the table
// matches the order symbols were discovered in, not an address or
// alphabetic sort.
package symtab

import "decomp/internal/ir"

// Table is a bidirectional address<->name map. Both lookup directions are
// O(1); iteration (Entries) preserves insertion order.
type Table struct {
	byAddr map[ir.Addr]string
	byName map[string]ir.Addr
	order  []ir.Addr
}

// New returns an empty Table.
func New() *Table {
	return &Table{byAddr: make(map[ir.Addr]string), byName: make(map[string]ir.Addr)}
}

// Entry is one (address, name) pair.
type Entry struct {
	Addr ir.Addr
	Name string
}

// Add records addr<->name. Re-adding the same address updates its name in
// place without disturbing insertion order; the old name is removed from
// the reverse index.
func (t *Table) Add(addr ir.Addr, name string) {
	if old, exists := t.byAddr[addr]; exists {
		delete(t.byName, old)
		t.byAddr[addr] = name
		t.byName[name] = addr
		return
	}
	t.byAddr[addr] = name
	t.byName[name] = addr
	t.order = append(t.order, addr)
}

// Name looks up the name bound to addr.
func (t *Table) Name(addr ir.Addr) (string, bool) {
	n, ok := t.byAddr[addr]
	return n, ok
}

// Addr looks up the address bound to name.
func (t *Table) Addr(name string) (ir.Addr, bool) {
	a, ok := t.byName[name]
	return a, ok
}

// Len reports the number of entries.
func (t *Table) Len() int { return len(t.order) }

// Entries returns every (address, name) pair in insertion order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.order))
	for i, a := range t.order {
		out[i] = Entry{Addr: a, Name: t.byAddr[a]}
	}
	return out
}
