package xmlio

import "strings"

// EscapeXMLChars escapes the three XML specials (&, <, >) plus the two
// attribute-value specials ("  ') so a string is safe to write into either
// element text or a quoted attribute value. Strings are otherwise written
// unescaped: the format carries no freeform text outside of these
// specials.
func EscapeXMLChars(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

// EscapeCString renders s the way a C string literal would print it:
// backslash, double-quote, and the common non-printable escapes. Neither
// this package's writer nor package ir's printer calls it.
func EscapeCString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
