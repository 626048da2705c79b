// # internal/render/dot_test.go
package render

import (
	"strings"
	"testing"
)

func buildSample() *DotBuilder {
	b := NewDotBuilder("module~mod_a~~UsesGraph", "RL")
	b.Node("module~mod_a", map[string]string{"label": "mod_a"})
	b.Node("module~mod_b", map[string]string{
		"label": "mod_b", "color": "#337AB7", "fontcolor": "white", "style": "filled",
	})
	b.Edge("module~mod_a", "module~mod_b", map[string]string{"style": "dashed", "color": "#000000"})
	return b
}

func TestDotBuilderSource(t *testing.T) {
	src := buildSample().Source()

	if !strings.HasPrefix(src, "digraph \"module~mod_a~~UsesGraph\" {\n") {
		t.Errorf("unexpected header: %q", src)
	}
	if !strings.Contains(src, "rankdir=RL") {
		t.Error("rankdir missing")
	}
	if !strings.Contains(src, "concentrate=true") {
		t.Error("concentrate missing")
	}
	if !strings.Contains(src, `"module~mod_a" -> "module~mod_b" [color="#000000", style="dashed"];`) {
		t.Errorf("edge statement malformed:\n%s", src)
	}
	// Attributes must come out in sorted key order.
	if !strings.Contains(src, `[color="#337AB7", fontcolor="white", label="mod_b", style="filled"];`) {
		t.Errorf("node attributes not sorted:\n%s", src)
	}
	if !strings.HasSuffix(src, "}\n") {
		t.Error("missing closing brace")
	}
}

func TestDotBuilderDeterministic(t *testing.T) {
	first := buildSample().Source()
	second := buildSample().Source()
	if first != second {
		t.Error("identical inputs must yield byte-identical source")
	}
}

func TestDotBuilderOverrides(t *testing.T) {
	b := NewDotBuilder("call~~graph", "LR")
	b.SetSize("11.875,1000.0")
	b.SetConcentrate(false)
	src := b.Source()

	if !strings.Contains(src, `size="11.875,1000.0"`) {
		t.Error("size override missing")
	}
	if !strings.Contains(src, "concentrate=false") {
		t.Error("concentrate override missing")
	}
}

func TestQuote(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"plain", `"plain"`},
		{`has "quotes"`, `"has \"quotes\""`},
		{`back\slash`, `"back\\slash"`},
		{"<<i>italic</i>>", "<<i>italic</i>>"}, // HTML-like labels pass through
	}
	for _, tc := range cases {
		if got := quote(tc.in); got != tc.out {
			t.Errorf("quote(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
