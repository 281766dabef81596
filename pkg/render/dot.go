package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
)

// Options configures DOT output.
type Options struct {
	// Detailed adds the description and depth to node labels.
	Detailed bool
}

// ToDOT converts g to Graphviz DOT.
func ToDOT(g *Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, g.Root, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n Node, detailed bool) string {
	if !detailed {
		return n.ID
	}
	parts := []string{n.ID, fmt.Sprintf("depth: %d", n.Depth)}
	if n.Description != "" {
		d := n.Description
		if len(d) > 60 {
			d = d[:57] + "..."
		}
		parts = append(parts, d)
	}
	return strings.Join(parts, "\n")
}

func nodeAttrs(n Node, root string, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, detailed))}
	switch n.Status {
	case artifact.StatusPlaceholder:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightyellow")
	case StatusMissing:
		attrs = append(attrs, "fillcolor=lightgrey", "fontcolor=dimgrey")
	}
	if n.ID == root {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

func edgeAttrs(e Edge) []string {
	switch e.Kind {
	case EdgeParent:
		return []string{"style=dashed", "arrowhead=empty", "label=\"parent\""}
	case EdgeModule:
		return []string{"style=dotted", "label=\"module\""}
	}
	if e.Scope != "" && e.Scope != "compile" {
		return []string{fmt.Sprintf("label=%q", e.Scope), "color=grey40"}
	}
	return nil
}
