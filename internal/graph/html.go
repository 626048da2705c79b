// # internal/graph/html.go
package graph

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"docgraph/internal/shared/observability"
)

// Embed returns the graph's embeddable HTML representation: an inline SVG
// diagram, or a two-column table when a single-root graph's first hop alone
// overflowed the node budget. Empty, over-budget and incomplete graphs
// render as nothing; warnings are governed by the roots' warn flag.
func (g *Graph) Embed() string {
	tableMode := len(g.hopNodes) > 0 && len(g.roots) == 1

	// Do not render empty graphs.
	if g.added.Len() <= 1 && !tableMode {
		return ""
	}

	// Do not render overly large graphs.
	if g.added.Len() > g.maxNodes {
		if g.warn {
			slog.Warn("not showing graph: node budget exceeded",
				"graph", g.Ident, "max_nodes", g.maxNodes)
		}
		observability.GraphsSuppressed.WithLabelValues("budget").Inc()
		return ""
	}

	// Do not render incomplete graphs.
	if g.added.Len() < len(g.roots) {
		if g.warn {
			slog.Warn("not showing graph: a root could not be admitted",
				"graph", g.Ident)
		}
		observability.GraphsSuppressed.WithLabelValues("incomplete").Inc()
		return ""
	}

	if g.truncated > 0 && g.warn {
		slog.Warn("graph truncated", "graph", g.Ident, "hop", g.truncated)
	}

	var out strings.Builder
	if tableMode {
		g.writeTable(&out)
	} else {
		out.WriteString(`<div class="depgraph">` + g.svg + `</div>`)
		if g.scaled {
			zoomName := nonWordRE.ReplaceAllString(g.Ident, "")
			fmt.Fprintf(&out, `
<script>
  var pan%s = svgPanZoom('#%s',
    {zoomEnabled: true, controlIconsEnabled: true, fit: true, center: true,}
  );
</script>`, zoomName, zoomName)
		}
	}

	out.WriteString(g.legendBlock())
	return out.String()
}

// writeTable renders the retained overflow hop as a two-column table keyed
// on the hop-1 edges, rows sorted alphabetically by the non-root node's
// label. Arrow direction and shape encode which edge end is the root and the
// variant's layout direction.
func (g *Graph) writeTable(out *strings.Builder) {
	root := fmt.Sprintf(`<td class="root" rowspan="%d">%s</td>`,
		len(g.hopNodes)*2+1, g.roots[0].Label)

	rootIsTail := len(g.hopEdges) > 0 && g.hopEdges[0].Tail.Ident == g.roots[0].Ident

	var rootOnLeft bool
	if rootIsTail {
		rootOnLeft = g.Variant.RankDir() == "LR"
	} else {
		rootOnLeft = g.Variant.RankDir() == "RL"
	}
	arrowLeft := rootIsTail != rootOnLeft

	edges := append([]Edge(nil), g.hopEdges...)
	sort.SliceStable(edges, func(i, j int) bool {
		return strings.ToLower(farLabel(edges[i], rootIsTail)) <
			strings.ToLower(farLabel(edges[j], rootIsTail))
	})

	var rows strings.Builder
	for _, e := range edges {
		n := e.Head
		if !rootIsTail {
			n = e.Tail
		}

		text, pos := "w", "Bottom"
		if e.Label != "" {
			text, pos = e.Label, "Text"
		}
		var arrow string
		if arrowLeft {
			arrow = fmt.Sprintf(`<td rowspan="2" class="triangle-left"></td><td class="%s%s">%s</td>`,
				e.Style, pos, text)
		} else {
			arrow = fmt.Sprintf(`<td class="%s%s">%s</td><td rowspan="2" class="triangle-right"></td>`,
				e.Style, pos, text)
		}

		node := fmt.Sprintf(`<td rowspan="2" class="node" bgcolor="%s">`, n.Colour)
		if n.LinkURL != "" {
			node += fmt.Sprintf(`<a href="%s">%s</a></td>`, n.LinkURL, n.Label)
		} else {
			node += n.Label + `</td>`
		}

		var row string
		if rootOnLeft {
			row = root + arrow + node
		} else {
			row = node + arrow + root
		}
		rows.WriteString("<tr>" + row + "</tr>\n")
		rows.WriteString(fmt.Sprintf(`<tr><td class="%sTop">w</td></tr>`, e.Style) + "\n")
		root = ""
	}

	out.WriteString("<table class=\"graph\">\n" + rows.String() + "</table>\n")
}

func farLabel(e Edge, rootIsTail bool) string {
	if rootIsTail {
		return e.Head.Label
	}
	return e.Tail.Label
}

func (g *Graph) legendBlock() string {
	legend := g.opts.Legends.For(g.Variant.Fam())
	notice := ""
	if g.opts.ColouredEdges {
		notice = " " + colouredNotice
	}
	return fmt.Sprintf(`
<div><a type="button" class="graph-help" data-toggle="modal" href="#graph-help-text">Help</a></div>
  <div class="modal fade" id="graph-help-text" tabindex="-1" role="dialog">
    <div class="modal-dialog modal-lg" role="document">
      <div class="modal-content">
        <div class="modal-header">
          <button type="button" class="close" data-dismiss="modal" aria-label="Close">
            <span aria-hidden="true">&times;</span>
          </button>
          <h4 class="modal-title" id="-graph-help-label">Graph Key</h4>
        </div>
      <div class="modal-body">%s%s</div>
    </div>
  </div>
</div>`, legend, notice)
}
