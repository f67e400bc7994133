package xmlio

import (
	"bytes"

	"decomp/internal/proc"
)

// MarshalFacts renders a proven_true fact list as a standalone XML
// fragment, reusing the same element writer and fixed-order shape
// writeProvenFacts gives a procedure's facts inside a full Program save.
// It lets a caller outside this package (package cache's analysis-result
// store) persist facts without writing a whole cluster file.
func MarshalFacts(facts []proc.Fact) ([]byte, error) {
	var buf bytes.Buffer
	w := newElemWriter(&buf)
	writeProvenFacts(w, facts)
	if err := w.flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalFacts parses a fragment written by MarshalFacts.
func UnmarshalFacts(data []byte) ([]proc.Fact, error) {
	var warnings []string
	root, err := parseTree(bytes.NewReader(data), "facts", &warnings)
	if err != nil {
		return nil, err
	}
	return buildProvenFacts(root)
}
