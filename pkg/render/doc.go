// Package render holds the visual exports of the mod requirement graph.
//
// The [nodelink] subpackage produces Graphviz DOT source and SVG diagrams
// for the graph command.
package render
