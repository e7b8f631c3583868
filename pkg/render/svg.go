package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/gutterview/pkg/graph"
	"github.com/matzehuels/gutterview/pkg/layout"
	"github.com/matzehuels/gutterview/pkg/route"
)

const highlightCSS = `
    .edge { transition: stroke-width 0.15s ease, opacity 0.15s ease; }
    svg.focus .edge { opacity: 0.15; }
    svg.focus .edge.highlight { opacity: 1; stroke-width: 3.5; }
    .tile.highlight > rect.body { stroke-width: 2.5; }`

const highlightJS = `
    const root = document.currentScript.closest('svg');
    function focusBundle(bundle) {
      root.classList.add('focus');
      root.querySelectorAll('.edge').forEach(e => e.classList.toggle('highlight', e.dataset.bundle === bundle));
    }
    function focusTile(id) {
      root.classList.add('focus');
      root.querySelectorAll('.edge').forEach(e => e.classList.toggle('highlight', e.dataset.from === id || e.dataset.to === id));
      root.querySelectorAll('.tile').forEach(t => t.classList.toggle('highlight', t.dataset.id === id));
    }
    function clearFocus() {
      root.classList.remove('focus');
      root.querySelectorAll('.highlight').forEach(el => el.classList.remove('highlight'));
    }
    root.querySelectorAll('.edge').forEach(el => {
      el.addEventListener('mouseenter', () => focusBundle(el.dataset.bundle));
      el.addEventListener('mouseleave', clearFocus);
    });
    root.querySelectorAll('.tile').forEach(el => {
      el.addEventListener('mouseenter', () => focusTile(el.dataset.id));
      el.addEventListener('mouseleave', clearFocus);
    });`

const (
	fontSize      = 12.0
	titleFontSize = 13.0
	charWidth     = 0.58 // Average glyph width as a fraction of the font size
	arcSegments   = 6
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	params    layout.Params
	radius    float64
	highlight bool
}

// WithParams sets the tile metrics the diagram was laid out with.
func WithParams(p layout.Params) SVGOption { return func(r *svgRenderer) { r.params = p.WithDefaults() } }

// WithRadius sets the corner radius of edge bends. Zero draws sharp corners.
func WithRadius(radius float64) SVGOption { return func(r *svgRenderer) { r.radius = max(radius, 0) } }

// WithHighlight embeds hover highlighting of bundles and tiles.
func WithHighlight() SVGOption { return func(r *svgRenderer) { r.highlight = true } }

// RenderSVG draws d as a standalone SVG document.
func RenderSVG(d graph.Diagram, opts ...SVGOption) []byte {
	r := svgRenderer{params: layout.DefaultParams(), radius: 8}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="ui-monospace, monospace">`+"\n",
		d.Width, d.Height, d.Width, d.Height)
	renderDefs(&buf)
	fmt.Fprintf(&buf, `  <rect width="%.1f" height="%.1f" fill="#fafafa"/>`+"\n", d.Width, d.Height)

	buf.WriteString("  <g class=\"tiles\">\n")
	for _, t := range d.Tiles {
		r.renderTile(&buf, t)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("  <g class=\"edges\" fill=\"none\">\n")
	for _, p := range d.Paths {
		r.renderPath(&buf, p)
	}
	buf.WriteString("  </g>\n")

	if r.highlight {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", highlightCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", highlightJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs>
    <pattern id="hatch" width="6" height="6" patternUnits="userSpaceOnUse" patternTransform="rotate(45)">
      <line x1="0" y1="0" x2="0" y2="6" stroke="#bbb" stroke-width="2"/>
    </pattern>
  </defs>
`)
}

func (r *svgRenderer) renderTile(buf *bytes.Buffer, t graph.Tile) {
	p := r.params
	fmt.Fprintf(buf, `    <g class="tile" id="tile-%s" data-id="%s">`+"\n", escape(t.ID), escape(t.ID))
	fmt.Fprintf(buf, `      <rect class="body" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="white" stroke="#333" stroke-width="1.2"/>`+"\n",
		t.X, t.Y, t.Width, t.Height)

	innerLeft := t.X + p.TilePadding
	innerW := max(t.Width-2*p.TilePadding, 0)
	title := t.Title
	if title == "" {
		title = t.ID
	}
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.0f" font-weight="bold">%s</text>`+"\n",
		innerLeft, t.Y+p.TilePadding+p.HeaderHeight-6, titleFontSize, escape(truncate(title, innerW, titleFontSize)))
	fmt.Fprintf(buf, `      <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#ddd"/>`+"\n",
		innerLeft, t.Y+p.TilePadding+p.HeaderHeight, innerLeft+innerW, t.Y+p.TilePadding+p.HeaderHeight)

	keyW := min(max(innerW*0.42, 56), 120)
	valueX := innerLeft + keyW + 4
	valueW := max(innerLeft+innerW-valueX, 0)
	for i, row := range t.Rows {
		top := t.Y + p.TilePadding + p.HeaderHeight + float64(i)*p.RowHeight
		if top+p.RowHeight > t.Y+t.Height {
			break
		}
		baseline := max(top+p.RowHeight-5, top+2)
		fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.0f" fill="#555">%s</text>`+"\n",
			innerLeft, baseline, fontSize, escape(truncate(row.DisplayLabel(), keyW, fontSize)))
		switch {
		case row.Opaque:
			fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="url(#hatch)"/>`+"\n",
				valueX, top+3, valueW, p.RowHeight-6)
		case row.Target != "":
			fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.0f" fill="%s">%s</text>`+"\n",
				valueX, baseline, fontSize, BundleColor(graph.BundleKey(row.Attr, row.Target)), escape(truncate(rowValue(row), valueW, fontSize)))
		default:
			fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.0f">%s</text>`+"\n",
				valueX, baseline, fontSize, escape(truncate(rowValue(row), valueW, fontSize)))
		}
	}
	buf.WriteString("    </g>\n")
}

func rowValue(row graph.Row) string {
	if row.Value != "" {
		return row.Value
	}
	return row.Target
}

func (r *svgRenderer) renderPath(buf *bytes.Buffer, p graph.Path) {
	if len(p.Points) < 2 {
		return
	}
	pts := make([]layout.Point, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = layout.Point{X: pt.X, Y: pt.Y}
	}
	if r.radius > 0 {
		pts = route.RoundPolyline(pts, r.radius, arcSegments)
	}

	var d strings.Builder
	for i, pt := range pts {
		cmd := 'L'
		if i == 0 {
			cmd = 'M'
		}
		fmt.Fprintf(&d, "%c%.1f %.1f ", cmd, pt.X, pt.Y)
	}

	dash := ""
	if p.Fallback {
		dash = ` stroke-dasharray="6 4"`
	}
	color := BundleColor(p.Bundle)
	fmt.Fprintf(buf, `    <path class="edge" data-from="%s" data-to="%s" data-bundle="%s" d="%s" stroke="%s" stroke-width="2"%s/>`+"\n",
		escape(p.From), escape(p.To), escape(p.Bundle), strings.TrimSpace(d.String()), color, dash)

	end := pts[len(pts)-1]
	fmt.Fprintf(buf, `    <circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`+"\n", end.X, end.Y, color)
}

// truncate shortens s to fit width at the given font size.
func truncate(s string, width, size float64) string {
	maxChars := int(width / (size * charWidth))
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	if maxChars < 3 {
		return ""
	}
	return string(runes[:maxChars-2]) + ".."
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
