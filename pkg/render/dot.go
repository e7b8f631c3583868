package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gutterview/pkg/graph"
)

// ToDOT converts a diagram to a Graphviz node-link graph. Nodes are listed
// in solver order and edges keep their bundle colour.
func ToDOT(d graph.Diagram) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, fontname=\"monospace\"];\n")
	buf.WriteString("  edge [penwidth=1.5];\n")
	buf.WriteString("\n")

	for _, i := range tileOrder(d) {
		t := d.Tiles[i]
		label := t.Title
		if label == "" {
			label = t.ID
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", t.ID, label)
	}

	buf.WriteString("\n")
	for _, p := range d.Paths {
		attrs := []string{fmt.Sprintf("label=%q", p.Attr), fmt.Sprintf("color=%q", BundleColor(p.Bundle))}
		if p.Fallback {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", p.From, p.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// tileOrder returns tile indices in d.Order, or in index order when the
// order does not cover the tiles.
func tileOrder(d graph.Diagram) []int {
	if len(d.Order) == len(d.Tiles) {
		ok := true
		for _, i := range d.Order {
			if i < 0 || i >= len(d.Tiles) {
				ok = false
				break
			}
		}
		if ok {
			return d.Order
		}
	}
	out := make([]int, len(d.Tiles))
	for i := range out {
		out[i] = i
	}
	return out
}

// RenderDOT renders a DOT graph to SVG using Graphviz.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
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

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// width and height match the viewBox.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
