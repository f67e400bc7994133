package op

import "fmt"

// spotChecks is a fixed set of (operator, expected name) pairs checked by
// CheckIntegrity in addition to the length check. Swapping any two entries
// in names, or reordering the Operator enum without updating names, must
// make one of these fail.
var spotChecks = []struct {
	o    Operator
	name string
}{
	{Plus, "plus"},
	{Mult, "mult"},
	{Equal, "eq"},
	{MemOf, "memof"},
	{Subscript, "subscript"},
	{Phi, "phi"},
	{IntConst, "intconst"},
	{Wildcard, "wild"},
	{PC, "pc"},
	{Truncs, "truncs"},
}

// CheckIntegrity asserts that the name table and the Operator enum remain
// in lock-step: len(names) == Count, and every spot-check operator still
// maps to its expected name. On mismatch it reports the last spot-check
// that still passed, so an accidental reorder surfaces immediately instead
// of silently shifting every name down by one.
func CheckIntegrity() error {
	if len(names) != int(Count) {
		return fmt.Errorf("op: name table has %d entries, want %d (Count)", len(names), int(Count))
	}

	seen := make(map[string]Operator, len(names))
	for i, n := range names {
		if n == "" {
			return fmt.Errorf("op: operator %d has no name", i)
		}
		if prev, dup := seen[n]; dup {
			return fmt.Errorf("op: name %q used by both operator %d and %d", n, prev, i)
		}
		seen[n] = Operator(i)
	}

	lastGood := "<none>"
	for _, sc := range spotChecks {
		if Name(sc.o) != sc.name {
			return fmt.Errorf("op: spot-check failed at operator %d: got %q, want %q (last correct spot-check: %s)",
				sc.o, Name(sc.o), sc.name, lastGood)
		}
		lastGood = sc.name
	}
	return nil
}
