// Package nodelink renders mod requirement graphs as node-link diagrams.
//
// [ToDOT] turns a [dag.DAG] built by the resolver into Graphviz DOT source,
// and [RenderSVG] lays it out in-process with
// [github.com/goccy/go-graphviz]:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Edges point from a mod to the mods it requires. Auto-resolved
// dependencies have dashed outlines and disabled mods are greyed out.
package nodelink
