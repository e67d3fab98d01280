package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/daygrid/daygrid/pkg/conflict"
)

// Options configures conflict diagram rendering.
type Options struct {
	// Detailed includes conflict counts in node labels.
	Detailed bool
}

// severityFills maps classification to node color.
var severityFills = map[conflict.Severity]string{
	conflict.SeverityLow:    "#d3f9d8",
	conflict.SeverityMedium: "#ffe8cc",
	conflict.SeverityHigh:   "#ffc9c9",
}

// ToDOT converts conflict reports to Graphviz DOT format. Each reported
// event becomes a node filled by severity; each conflicting pair becomes
// one undirected edge. The resulting string can be rendered with
// [RenderSVG] or [RenderPNG].
func ToDOT(reports []conflict.Report, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph conflicts {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12];\n")
	buf.WriteString("\n")

	for _, rep := range reports {
		label := rep.EventID
		if opts.Detailed {
			label = fmt.Sprintf("%s\n%d conflicts (%s)", rep.EventID, len(rep.ConflictingEvents), rep.Severity)
		}
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n",
			rep.EventID, label, severityFills[rep.Severity])
	}

	buf.WriteString("\n")
	for _, rep := range reports {
		for _, other := range rep.ConflictingEvents {
			// Each pair appears in both reports; emit it once.
			if strings.Compare(rep.EventID, other) < 0 {
				fmt.Fprintf(&buf, "  %q -- %q;\n", rep.EventID, other)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderDot(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDot(ctx, dot, graphviz.PNG)
}

func renderDot(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
