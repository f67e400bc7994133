package xmlio

import "testing"

func TestEscapeXMLChars(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain", "plain"},
		{"a < b", "a &lt; b"},
		{"a > b & c", "a &gt; b &amp; c"},
		{`say "hi"`, "say &quot;hi&quot;"},
		{"it's", "it&apos;s"},
	}
	for _, c := range cases {
		if got := EscapeXMLChars(c.in); got != c.want {
			t.Errorf("EscapeXMLChars(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEscapeCString(t *testing.T) {
	cases := []struct{ in, want string }{
		{"hello", `"hello"`},
		{"a\nb", `"a\nb"`},
		{`back\slash`, `"back\\slash"`},
		{`quo"te`, `"quo\"te"`},
		{"tab\there", `"tab\there"`},
	}
	for _, c := range cases {
		if got := EscapeCString(c.in); got != c.want {
			t.Errorf("EscapeCString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
