// # internal/graph/graph.go
package graph

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"docgraph/internal/corpus"
	"docgraph/internal/registry"
	"docgraph/internal/render"
	"docgraph/internal/shared/observability"
)

// Options is the graph-construction configuration threaded in from the
// manager; there is no ambient process state.
type Options struct {
	ColouredEdges bool
	Renderer      render.Renderer
	Legends       Legends
}

// Edge is a transient styled edge produced while building one graph; edges
// are never persisted between builds.
type Edge struct {
	Tail   *registry.Node
	Head   *registry.Node
	Style  string // "solid" or "dashed"
	Colour string
	Label  string
}

func solidEdge(tail, head *registry.Node, colour string) Edge {
	return Edge{Tail: tail, Head: head, Style: "solid", Colour: colour}
}

func dashedEdge(tail, head *registry.Node, colour string) Edge {
	return Edge{Tail: tail, Head: head, Style: "dashed", Colour: colour}
}

func labelledEdge(tail, head *registry.Node, colour, label string) Edge {
	return Edge{Tail: tail, Head: head, Style: "dashed", Colour: colour, Label: label}
}

// Graph is one bounded relationship diagram for a root set. It is immutable
// once Build returns; rendering and export only read it.
type Graph struct {
	Variant Variant
	Ident   string

	roots []*registry.Node
	added registry.Set

	// hopNodes/hopEdges retain the first hop that overflowed the node
	// budget, for table-style fallback rendering of single-root graphs.
	hopNodes []*registry.Node
	hopEdges []Edge

	maxDepth  int
	maxNodes  int
	warn      bool
	truncated int

	dot     *render.DotBuilder
	source  string
	svg     string
	widthPt int
	scaled  bool

	opts Options
}

var nonWordRE = regexp.MustCompile(`[^\w]`)

// Build constructs the graph for a relation variant over one or more root
// entities. The hop-depth and node budgets resolve to the maximum over all
// roots' individual settings. ident overrides the default identifier derived
// from the first root and must be given for multi-root graphs.
func Build(ctx context.Context, variant Variant, roots []*corpus.Entity, reg *registry.Registry, opts Options, ident string) (*Graph, error) {
	g := &Graph{
		Variant:   variant,
		added:     make(registry.Set),
		maxNodes:  1,
		truncated: -1,
		opts:      opts,
	}

	sortedRoots := append([]*corpus.Entity(nil), roots...)
	sort.Slice(sortedRoots, func(i, j int) bool {
		if sortedRoots[i].Dir != sortedRoots[j].Dir {
			return sortedRoots[i].Dir < sortedRoots[j].Dir
		}
		return sortedRoots[i].ID < sortedRoots[j].ID
	})

	for _, e := range sortedRoots {
		n, err := reg.Get(e, nil)
		if err != nil {
			return nil, err
		}
		g.roots = append(g.roots, n)
		if e.Settings.MaxDepth > g.maxDepth {
			g.maxDepth = e.Settings.MaxDepth
		}
		if e.Settings.MaxNodes > g.maxNodes {
			g.maxNodes = e.Settings.MaxNodes
		}
		g.warn = g.warn || e.Settings.WarnOnTruncation
	}

	if ident == "" && len(sortedRoots) > 0 {
		dir := sortedRoots[0].Dir
		if dir == "" {
			dir = "none"
		}
		ident = fmt.Sprintf("%s~~%s", dir, sortedRoots[0].ID)
	}
	g.Ident = ident + "~~" + variant.Name()

	g.dot = render.NewDotBuilder(g.Ident, variant.RankDir())
	if variant.wideSize() {
		g.dot.SetSize("11.875,1000.0")
	}
	if !variant.concentrate() {
		g.dot.SetConcentrate(false)
	}

	for _, n := range g.roots {
		if len(g.roots) == 1 {
			g.dot.Node(n.Ident, map[string]string{"label": n.Label})
		} else {
			g.dot.Node(n.Ident, nodeAttrs(n))
		}
		g.added.Add(n)
	}

	g.expand(g.roots, 1)
	g.source = g.dot.Source()

	observability.GraphsBuilt.WithLabelValues(variant.Name()).Inc()
	if g.truncated > 0 {
		observability.GraphsTruncated.Inc()
	}

	if opts.Renderer != nil && opts.Renderer.Available() {
		rendered, err := opts.Renderer.Render(ctx, g.Ident, g.source)
		if err != nil {
			return nil, err
		}
		// Give the embedded svg an element id so the pan/zoom hook can
		// find it.
		g.svg = strings.Replace(rendered.SVG, "<svg ",
			`<svg id="`+nonWordRE.ReplaceAllString(g.Ident, "")+`" `, 1)
		g.widthPt = rendered.WidthPt
		g.scaled = g.widthPt >= variant.scaledThreshold()
	}

	return g, nil
}

// expand performs one breadth-first hop: collect every root-adjacent node
// and edge for the variant, admit the hop all-or-nothing under the node
// budget, then recurse for transitively expandable variants until the depth
// budget is reached or a hop adds nothing new.
func (g *Graph) expand(nodes []*registry.Node, hop int) {
	hopNodes := make(registry.Set)
	var hopEdges []Edge

	// Hop processing follows the node total order, not the entity order
	// the roots arrived in.
	registry.SortNodes(nodes)

	total := len(nodes)
	for i, n := range nodes {
		colour := rainbow(i, total, g.opts.ColouredEdges)
		g.collect(n, colour, hopNodes, &hopEdges)
	}

	// A hop past the first that discovers nothing new is dropped whole:
	// its edges could only point back into the graph.
	if hop > 1 && hopNodes.Len() == 0 {
		return
	}

	if !g.admit(hopNodes, hopEdges, hop) {
		return
	}
	if !g.Variant.Expandable() {
		return
	}

	next := hopNodes.Sorted()
	if len(next) == 0 {
		return
	}
	if hop < g.maxDepth {
		g.expand(next, hop+1)
	} else {
		g.truncated = hop
	}
}

// admit adds a hop to the graph unless it would exceed the node budget.
// Admission is all-or-nothing: an overflowing hop is either retained whole
// for table fallback (first hop only) or discarded whole.
func (g *Graph) admit(hopNodes registry.Set, hopEdges []Edge, hop int) bool {
	if hopNodes.Len()+g.added.Len() > g.maxNodes {
		if hop < 2 {
			g.hopNodes = hopNodes.Sorted()
			g.hopEdges = hopEdges
		}
		g.truncated = hop
		return false
	}

	for _, n := range hopNodes.Sorted() {
		g.dot.Node(n.Ident, nodeAttrs(n))
	}
	for _, e := range hopEdges {
		g.dot.Edge(e.Tail.Ident, e.Head.Ident, edgeAttrs(e))
	}
	for n := range hopNodes {
		g.added.Add(n)
	}
	return true
}

// collect gathers one node's adjacent nodes and edges for this graph's
// variant. Edges are always recorded; a target joins the hop only if the
// graph does not contain it yet.
func (g *Graph) collect(n *registry.Node, colour string, hopNodes registry.Set, hopEdges *[]Edge) {
	join := func(target *registry.Node) {
		if !g.added.Has(target) {
			hopNodes.Add(target)
		}
	}

	switch g.Variant {
	case VariantUses, VariantModuleOverview:
		for _, nu := range n.Uses.Sorted() {
			join(nu)
			*hopEdges = append(*hopEdges, dashedEdge(n, nu, colour))
		}
		if n.Ancestor != nil {
			join(n.Ancestor)
			*hopEdges = append(*hopEdges, solidEdge(n, n.Ancestor, colour))
		}

	case VariantUsedBy:
		for _, nu := range n.UsedBy.Sorted() {
			join(nu)
			*hopEdges = append(*hopEdges, dashedEdge(nu, n, colour))
		}
		for _, c := range n.Children.Sorted() {
			join(c)
			*hopEdges = append(*hopEdges, solidEdge(c, n, colour))
		}

	case VariantCalls, VariantCallOverview:
		for _, p := range n.Calls.Sorted() {
			join(p)
			*hopEdges = append(*hopEdges, solidEdge(n, p, colour))
		}
		for _, p := range n.Interfaces.Sorted() {
			join(p)
			*hopEdges = append(*hopEdges, dashedEdge(n, p, colour))
		}

	case VariantCalledBy:
		if n.Kind == corpus.KindProgram {
			return
		}
		for _, p := range n.CalledBy.Sorted() {
			join(p)
			*hopEdges = append(*hopEdges, solidEdge(p, n, colour))
		}
		for _, p := range n.InterfacedBy.Sorted() {
			join(p)
			*hopEdges = append(*hopEdges, dashedEdge(p, n, colour))
		}

	case VariantInherits, VariantTypeOverview:
		for _, c := range registry.SortedLabels(n.CompTypes) {
			join(c)
			*hopEdges = append(*hopEdges, labelledEdge(n, c, colour, n.CompTypes[c]))
		}
		if n.Ancestor != nil {
			join(n.Ancestor)
			*hopEdges = append(*hopEdges, solidEdge(n, n.Ancestor, colour))
		}

	case VariantInheritedBy:
		for _, c := range registry.SortedLabels(n.CompOf) {
			join(c)
			*hopEdges = append(*hopEdges, labelledEdge(c, n, colour, n.CompOf[c]))
		}
		for _, c := range n.Children.Sorted() {
			join(c)
			*hopEdges = append(*hopEdges, solidEdge(c, n, colour))
		}

	case VariantAfferent:
		for _, na := range n.AfferentFiles.Sorted() {
			join(na)
			*hopEdges = append(*hopEdges, dashedEdge(na, n, colour))
		}

	case VariantEfferent:
		for _, ne := range n.EfferentFiles.Sorted() {
			join(ne)
			*hopEdges = append(*hopEdges, dashedEdge(n, ne, colour))
		}

	case VariantFileOverview:
		for _, ne := range n.EfferentFiles.Sorted() {
			join(ne)
			*hopEdges = append(*hopEdges, solidEdge(ne, n, colour))
		}
	}
}

func nodeAttrs(n *registry.Node) map[string]string {
	attrs := map[string]string{
		"label":     n.Label,
		"color":     n.Colour,
		"fontcolor": "white",
		"style":     "filled",
	}
	if n.LinkURL != "" {
		attrs["URL"] = n.LinkURL
	}
	return attrs
}

func edgeAttrs(e Edge) map[string]string {
	attrs := map[string]string{
		"style": e.Style,
		"color": e.Colour,
	}
	if e.Label != "" {
		attrs["label"] = e.Label
	}
	return attrs
}

// Source returns the DOT source of the constructed graph.
func (g *Graph) Source() string { return g.source }

// AddedCount reports how many nodes were admitted, roots included.
func (g *Graph) AddedCount() int { return g.added.Len() }

// Truncated reports the hop at which expansion was cut off, or -1.
func (g *Graph) Truncated() int { return g.truncated }

// NonTrivial reports whether the graph grew beyond its own roots; trivial
// graphs are suppressed and excluded from overview root sets.
func (g *Graph) NonTrivial() bool { return g.added.Len() > 1 }

// TableFallback reports whether first-hop overflow data was retained.
func (g *Graph) TableFallback() bool { return len(g.hopNodes) > 0 }

// Export writes the graph's image and DOT source under dir using the
// deterministic identifier naming scheme. Graphs that never grew past their
// roots are skipped.
func (g *Graph) Export(ctx context.Context, dir string) error {
	if g.added.Len() <= len(g.roots) {
		return nil
	}
	if g.opts.Renderer == nil {
		return nil
	}
	return g.opts.Renderer.WriteFiles(ctx, g.source, dir+"/"+g.Ident)
}
