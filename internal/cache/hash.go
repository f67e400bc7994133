package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"decomp/internal/ir"
)

// HashRTLs returns a content hash of a procedure's RTL stream, stable
// across runs as long as neither the instructions nor their decoded form
// changed. A cache lookup is only valid when this hash still matches the
// hash recorded alongside a prior Put.
func HashRTLs(rtls []*ir.RTL) string {
	var sb strings.Builder
	for _, r := range rtls {
		sb.WriteString(r.NativeAddr.String())
		sb.WriteByte(':')
		for _, s := range r.Stmts {
			sb.WriteString(s.String())
			sb.WriteByte(';')
		}
		sb.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
