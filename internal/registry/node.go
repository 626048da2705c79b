// # internal/registry/node.go
package registry

import (
	"regexp"
	"sort"
	"strings"

	"docgraph/internal/corpus"
)

var (
	hyperlinkRE = regexp.MustCompile(`(?i)^\s*<\s*a\s+.*href=("[^"]+"|'[^']+').*>(.*)</\s*a\s*>\s*$`)
	emphasisRE  = regexp.MustCompile(`(?i)<em>(.*)</em>`)
)

const colourDefault = "#777777"

var kindColours = map[corpus.Kind]string{
	corpus.KindModule:     "#337AB7",
	corpus.KindSubmodule:  "#5bc0de",
	corpus.KindType:       "#5cb85c",
	corpus.KindBlockData:  "#5cb85c",
	corpus.KindProgram:    "#f0ad4e",
	corpus.KindSourceFile: "#f0ad4e",
}

var procColours = map[string]string{
	"subroutine": "#d9534f",
	"function":   "#d94e8f",
	"interface":  "#A7506F",
}

// Node is the graph-model projection of exactly one entity. The registry is
// the sole owner of every Node; nodes reference each other through the
// relation sets and live as long as the registry.
type Node struct {
	Kind  corpus.Kind
	Ident string
	Label string
	// LinkURL is the resolved hyperlink target: absolute for external
	// entities, rewritten against the configured parent directory for
	// visible internal ones. Empty when the node has no link.
	LinkURL    string
	Colour     string
	FromString bool
	Visible    bool
	ProcType   string

	// Module relations. Afferent and Efferent are the construction-time
	// running counts; Efferent accumulates used modules' own efferent
	// counts and can double-count shared transitive dependencies (kept
	// for compatibility with the documented output).
	Uses     Set
	UsedBy   Set
	Children Set
	Afferent int
	Efferent int

	// Submodule and derived-type ancestry.
	Ancestor *Node

	// Derived-type composition, labeled by the component field names.
	CompTypes map[*Node]string
	CompOf    map[*Node]string

	// Procedure relations.
	Calls        Set
	CalledBy     Set
	Interfaces   Set
	InterfacedBy Set

	// Source-file compile dependencies, stored as node sets.
	AfferentFiles Set
	EfferentFiles Set
}

// Less orders nodes by identity key, giving deterministic iteration and
// rendering order.
func (n *Node) Less(other *Node) bool { return n.Ident < other.Ident }

// FillColour returns the node's fill colour, which depends on its kind and,
// for procedures, on the procedure subkind.
func fillColour(kind corpus.Kind, procType string) string {
	if kind == corpus.KindProcedure {
		if c, ok := procColours[strings.ToLower(procType)]; ok {
			return c
		}
		return colourDefault
	}
	if c, ok := kindColours[kind]; ok {
		return c
	}
	return colourDefault
}

// newExternalNode builds a terminal node for an entity known only by a
// display name, which may carry an embedded hyperlink.
func newExternalNode(kind corpus.Kind, name, procType string) *Node {
	n := &Node{
		Kind:       kind,
		FromString: true,
		Visible:    true,
		ProcType:   procType,
		Colour:     fillColour(kind, procType),
	}
	if m := hyperlinkRE.FindStringSubmatch(name); m != nil {
		n.LinkURL = m[1][1 : len(m[1])-1]
		n.Label = m[2]
	} else {
		n.Label = name
	}
	n.Ident = n.Label
	initRelations(n)
	return n
}

// newNode builds the base node for an internal entity. Relation sets start
// empty; the registry populates them immediately after registration.
func newNode(kind corpus.Kind, e *corpus.Entity, opts Options) *Node {
	n := &Node{
		Kind:     kind,
		Ident:    identFor(e),
		Label:    e.Name,
		Visible:  e.Visible,
		ProcType: e.ProcType,
		Colour:   fillColour(kind, e.ProcType),
	}
	if m := emphasisRE.FindStringSubmatch(n.Label); m != nil {
		n.Label = "<<i>" + strings.TrimSpace(m[1]) + "</i>>"
	}
	if e.Visible {
		if e.ExternalURL != "" {
			n.LinkURL = e.ExternalURL
		} else if e.URL != "" {
			n.LinkURL = opts.ParentDir + e.URL
		}
	}
	initRelations(n)
	return n
}

func initRelations(n *Node) {
	n.Uses = make(Set)
	n.UsedBy = make(Set)
	n.Children = make(Set)
	n.CompTypes = make(map[*Node]string)
	n.CompOf = make(map[*Node]string)
	n.Calls = make(Set)
	n.CalledBy = make(Set)
	n.Interfaces = make(Set)
	n.InterfacedBy = make(Set)
	n.AfferentFiles = make(Set)
	n.EfferentFiles = make(Set)
}

// identFor builds the composite identity key for an internal entity:
// containing directory (or "none") joined with its unique identifier.
func identFor(e *corpus.Entity) string {
	dir := e.Dir
	if dir == "" {
		dir = "none"
	}
	return dir + "~" + e.ID
}

// Set is an unordered collection of nodes.
type Set map[*Node]struct{}

func (s Set) Add(n *Node)      { s[n] = struct{}{} }
func (s Set) Has(n *Node) bool { _, ok := s[n]; return ok }
func (s Set) Len() int         { return len(s) }

// Sorted returns the members in node order.
func (s Set) Sorted() []*Node {
	nodes := make([]*Node, 0, len(s))
	for n := range s {
		nodes = append(nodes, n)
	}
	SortNodes(nodes)
	return nodes
}

// SortNodes sorts in place by identity key.
func SortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Less(nodes[j]) })
}

// SortedLabels returns the label map's keys in node order, for deterministic
// labeled-edge emission.
func SortedLabels(m map[*Node]string) []*Node {
	nodes := make([]*Node, 0, len(m))
	for n := range m {
		nodes = append(nodes, n)
	}
	SortNodes(nodes)
	return nodes
}
