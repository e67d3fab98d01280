// Package render turns computed layouts and conflict reports into
// visual artifacts: a month-grid SVG for layouts and a Graphviz
// node-link diagram for conflict reports.
package render

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/daygrid/daygrid/pkg/grid"
)

// laneFills color event rectangles by lane so stacked neighbors stay
// distinguishable.
var laneFills = []string{"#4dabf7", "#69db7c", "#ffd43b", "#ff922b", "#e599f7"}

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	geo       grid.Geometry
	title     string
	showGrid  bool
	showLabel bool
}

func WithGeometry(g grid.Geometry) SVGOption { return func(r *svgRenderer) { r.geo = g } }
func WithTitle(t string) SVGOption           { return func(r *svgRenderer) { r.title = t } }
func WithGridLines() SVGOption               { return func(r *svgRenderer) { r.showGrid = true } }
func WithLabels() SVGOption                  { return func(r *svgRenderer) { r.showLabel = true } }

// MonthSVG draws layouts onto a month grid. The canvas is sized from
// the geometry's columns and the lowest rectangle, so sparse months
// stay compact.
func MonthSVG(layouts []grid.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	sorted := slices.Clone(layouts)
	slices.SortFunc(sorted, func(a, b grid.Layout) int {
		return cmp.Compare(a.EventID, b.EventID)
	})

	width := float64(r.geo.Columns) * r.geo.CellWidth
	height := canvasHeight(sorted, r.geo)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)

	if r.title != "" {
		fmt.Fprintf(&buf, `  <title>%s</title>`+"\n", escapeXML(r.title))
	}
	if r.showGrid {
		renderGridLines(&buf, r.geo, width, height)
	}
	for _, l := range sorted {
		renderRect(&buf, r, l)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{geo: grid.DefaultGeometry()}
	for _, opt := range opts {
		opt(&r)
	}
	r.geo.Normalize()
	return r
}

// canvasHeight covers the lowest rectangle, at minimum one row.
func canvasHeight(layouts []grid.Layout, geo grid.Geometry) float64 {
	h := geo.CellHeight
	for _, l := range layouts {
		if b := l.Bottom() + geo.Padding; b > h {
			h = b
		}
	}
	return h
}

func renderGridLines(buf *bytes.Buffer, geo grid.Geometry, width, height float64) {
	for c := 0; c <= geo.Columns; c++ {
		x := float64(c) * geo.CellWidth
		fmt.Fprintf(buf, `  <line x1="%.1f" y1="0" x2="%.1f" y2="%.1f" stroke="#dee2e6"/>`+"\n", x, x, height)
	}
	for y := 0.0; y <= height; y += geo.CellHeight {
		fmt.Fprintf(buf, `  <line x1="0" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#dee2e6"/>`+"\n", y, width, y)
	}
}

func renderRect(buf *bytes.Buffer, r svgRenderer, l grid.Layout) {
	fill := laneFills[l.Lane%len(laneFills)]
	fmt.Fprintf(buf, `  <rect id="event-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="3" fill="%s" stroke="#343a40"/>`+"\n",
		escapeXML(l.EventID), l.X, l.Y, l.Width, l.Height, fill)
	if r.showLabel {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="10" fill="#212529">%s</text>`+"\n",
			l.X+3, l.Y+l.Height/2+3, escapeXML(l.EventID))
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
