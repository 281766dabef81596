// Package render draws a stored artifact's neighbourhood as a node-link
// diagram.
//
// [Neighbourhood] reads records breadth-first from a root coordinate,
// following dependency edges up to a depth bound and adding the root's
// parent and module links. [ToDOT] turns the result into Graphviz DOT and
// [RenderSVG] lays it out with the embedded Graphviz engine:
//
//	g, err := render.Neighbourhood(ctx, s, root, 2)
//	dot := render.ToDOT(g, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Placeholder records are drawn dashed, coordinates with no record grey.
package render
