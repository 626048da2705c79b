// # internal/graph/legend.go
package graph

import (
	"context"

	"docgraph/internal/corpus"
	"docgraph/internal/registry"
	"docgraph/internal/render"
)

// Legends holds the per-family graph-key markup embedded in every graph's
// help block. Built once per run; empty when the renderer is unavailable.
type Legends struct {
	Module string
	Type   string
	Call   string
	File   string
}

func (l Legends) For(f Family) string {
	switch f {
	case FamilyType:
		return l.Type
	case FamilyCall:
		return l.Call
	case FamilyFile:
		return l.File
	}
	return l.Module
}

const nodeDiagram = "<p>Nodes of different colours represent the following: </p>"

const colouredNotice = `Where possible, edges connecting nodes are
given different colours to make them easier to distinguish in
large graphs.`

const modGraphKey = `
<p>Solid arrows point from a submodule to the (sub)module which it is
descended from. Dashed arrows point from a module or program unit to
modules which it uses.
</p>
`

const typeGraphKey = `
<p>Solid arrows point from a derived type to the parent type which it
extends. Dashed arrows point from a derived type to the other
types it contains as a components, with a label listing the name(s) of
said component(s).
</p>
`

const callGraphKey = `
<p>Solid arrows point from a procedure to one which it calls. Dashed
arrows point from an interface to procedures which implement that interface.
This could include the module procedures in a generic interface or the
implementation in a submodule of an interface in a parent module.
</p>
`

const fileGraphKey = `
<p>Solid arrows point from a file to a file which it depends on. A file
is dependent upon another if the latter must be compiled before the former
can be.
</p>
`

// BuildLegends renders the fixed legend diagrams from placeholder external
// entities. A degraded renderer yields text-only legends.
func BuildLegends(ctx context.Context, renderer render.Renderer) (Legends, error) {
	reg := registry.New(registry.Options{})

	var nodeErr error
	node := func(kind corpus.Kind, name, procType string) *registry.Node {
		n, err := reg.Get(&corpus.Entity{
			Kind: kind, ID: name, Name: name,
			External: true, Visible: true, ProcType: procType,
		}, nil)
		if err != nil && nodeErr == nil {
			nodeErr = err
		}
		return n
	}

	module := node(corpus.KindModule, "Module", "")
	submodule := node(corpus.KindSubmodule, "Submodule", "")
	typ := node(corpus.KindType, "Type", "")
	subroutine := node(corpus.KindProcedure, "Subroutine", "subroutine")
	function := node(corpus.KindProcedure, "Function", "function")
	iface := node(corpus.KindProcedure, "Interface", "interface")
	unknown := node(corpus.KindProcedure, "Unknown Procedure Type", "Unknown")
	program := node(corpus.KindProgram, "Program", "")
	file := node(corpus.KindSourceFile, "Source File", "")
	if nodeErr != nil {
		return Legends{}, nodeErr
	}

	key := func(id string, nodes []*registry.Node, text string) (string, error) {
		svg, err := legendSVG(ctx, renderer, id, nodes)
		if err != nil {
			return "", err
		}
		return nodeDiagram + "\n" + svg + text, nil
	}

	var (
		legends Legends
		err     error
	)
	if legends.Module, err = key("legend~~module",
		[]*registry.Node{module, submodule, subroutine, function, program}, modGraphKey); err != nil {
		return Legends{}, err
	}
	if legends.Type, err = key("legend~~type",
		[]*registry.Node{typ}, typeGraphKey); err != nil {
		return Legends{}, err
	}
	if legends.Call, err = key("legend~~call",
		[]*registry.Node{subroutine, function, iface, unknown, program}, callGraphKey); err != nil {
		return Legends{}, err
	}
	if legends.File, err = key("legend~~file",
		[]*registry.Node{file}, fileGraphKey); err != nil {
		return Legends{}, err
	}
	return legends, nil
}

// legendSVG lays out a key of entity boxes with no edges.
func legendSVG(ctx context.Context, renderer render.Renderer, id string, nodes []*registry.Node) (string, error) {
	if renderer == nil || !renderer.Available() {
		return "", nil
	}
	dot := render.NewDotBuilder("Graph Key", "TB")
	dot.SetConcentrate(false)
	for _, n := range nodes {
		dot.Node(n.Label, nodeAttrs(n))
	}
	dot.Node("This Page's Entity", nil)
	rendered, err := renderer.Render(ctx, id, dot.Source())
	if err != nil {
		return "", err
	}
	return rendered.SVG, nil
}
