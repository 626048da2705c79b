// # internal/render/dot.go
package render

import (
	"fmt"
	"strings"

	"docgraph/internal/shared/util"
)

// DotBuilder accumulates node and edge statements and emits DOT source for
// the external renderer. Statements keep insertion order and attributes are
// emitted in sorted key order, so identical inputs yield byte-identical
// source.
type DotBuilder struct {
	id          string
	rankDir     string
	size        string
	concentrate bool
	nodes       []statement
	edges       []statement
}

type statement struct {
	head  string
	attrs map[string]string
}

// NewDotBuilder starts a graph with the standard diagram attributes.
func NewDotBuilder(id, rankDir string) *DotBuilder {
	return &DotBuilder{
		id:          id,
		rankDir:     rankDir,
		size:        "8.90625,1000.0",
		concentrate: true,
	}
}

// SetSize overrides the graph size attribute (overview graphs render wider).
func (b *DotBuilder) SetSize(size string) { b.size = size }

// SetConcentrate toggles edge concentration (call graphs keep edges apart).
func (b *DotBuilder) SetConcentrate(v bool) { b.concentrate = v }

// Node adds a node statement. Adding the same identifier again appends a
// second statement; Graphviz merges them, later attributes winning.
func (b *DotBuilder) Node(id string, attrs map[string]string) {
	b.nodes = append(b.nodes, statement{head: quote(id), attrs: attrs})
}

// Edge adds a directed edge statement.
func (b *DotBuilder) Edge(tail, head string, attrs map[string]string) {
	b.edges = append(b.edges, statement{
		head:  fmt.Sprintf("%s -> %s", quote(tail), quote(head)),
		attrs: attrs,
	})
}

// Source emits the accumulated graph as DOT.
func (b *DotBuilder) Source() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "digraph %s {\n", quote(b.id))
	concentrate := "true"
	if !b.concentrate {
		concentrate = "false"
	}
	fmt.Fprintf(&buf, "  graph [concentrate=%s, id=%s, rankdir=%s, size=%s];\n",
		concentrate, quote(b.id), b.rankDir, quote(b.size))
	buf.WriteString("  node [shape=box, height=0.0, margin=0.08, fontname=\"Helvetica\", fontsize=10.5];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=9.5];\n")

	for _, s := range b.nodes {
		buf.WriteString("  " + s.head + formatAttrs(s.attrs) + ";\n")
	}
	for _, s := range b.edges {
		buf.WriteString("  " + s.head + formatAttrs(s.attrs) + ";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func formatAttrs(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := util.SortedStringKeys(attrs)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, quote(attrs[k])))
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

// quote wraps a value for DOT. Values delimited by angle brackets are
// HTML-like labels and pass through unquoted.
func quote(v string) string {
	if strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}
