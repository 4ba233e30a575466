package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/modsync/pkg/dag"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds every metadata key and the requiring mods to node labels.
	// When false, only the title (or ID) and installed version are shown.
	Detailed bool
}

// ToDOT converts a requirement graph to Graphviz DOT source.
//
// Mods nothing requires share the top rank. Auto-resolved dependencies are
// drawn with dashed outlines; disabled mods are greyed out.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph mods {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(*n, opts.Detailed)
		if parents := g.Parents(n.ID); opts.Detailed && len(parents) > 0 {
			label += "\nrequired by: " + strings.Join(parents, ", ")
		}
		attrs := fmtAttrs(*n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	if roots := g.Sources(); g.EdgeCount() > 0 && len(roots) > 0 {
		ids := make([]string, len(roots))
		for i, n := range roots {
			ids[i] = strconv.Quote(n.ID)
		}
		fmt.Fprintf(&buf, "  { rank=min; %s; }\n", strings.Join(ids, "; "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n dag.Node, detailed bool) string {
	label := n.Label()
	if !detailed {
		if v, ok := n.Meta["version"].(string); ok && v != "" {
			label += "\n" + v
		}
		return label
	}

	parts := []string{"id: " + n.ID}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		if k == "title" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n dag.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	auto, _ := n.Meta["auto"].(bool)
	disabled, _ := n.Meta["disabled"].(bool)
	switch {
	case disabled:
		attrs = append(attrs, "style=\"rounded,filled,dotted\"", "fillcolor=lightgrey", "fontcolor=grey40")
	case auto:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz runtime.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag so the image scales from its
// viewBox instead of Graphviz's point-based width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
