package render

import (
	"strings"
	"testing"

	"github.com/daygrid/daygrid/pkg/conflict"
	"github.com/daygrid/daygrid/pkg/grid"
)

func TestRenderSVGStructure(t *testing.T) {
	layouts := []grid.Layout{
		{EventID: "a", X: 4, Y: 4, Width: 152, Height: 36, Lane: 0},
		{EventID: "b", X: 4, Y: 44, Width: 152, Height: 36, Lane: 1},
	}
	svg := string(MonthSVG(layouts, WithTitle("March 2026"), WithGridLines(), WithLabels()))

	if !strings.HasPrefix(svg, "<svg ") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not a well-formed svg document:\n%s", svg)
	}
	for _, want := range []string{`id="event-a"`, `id="event-b"`, "<title>March 2026</title>", ">a</text>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestRenderSVGEscapesIDs(t *testing.T) {
	svg := string(MonthSVG([]grid.Layout{{EventID: `a<b&"c"`, Width: 10, Height: 10}}, WithLabels()))
	if strings.Contains(svg, `a<b&"c"`) {
		t.Error("unescaped id in svg output")
	}
	if !strings.Contains(svg, "a&lt;b&amp;&quot;c&quot;") {
		t.Errorf("escaped id missing:\n%s", svg)
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	svg := string(MonthSVG(nil))
	if !strings.HasPrefix(svg, "<svg ") {
		t.Fatalf("empty input produced %q", svg)
	}
}

func TestToDOT(t *testing.T) {
	reports := []conflict.Report{
		{EventID: "a", ConflictingEvents: []string{"b"}, Severity: conflict.SeverityLow},
		{EventID: "b", ConflictingEvents: []string{"a"}, Severity: conflict.SeverityLow},
	}
	dot := ToDOT(reports, Options{})

	if !strings.HasPrefix(dot, "graph conflicts {") {
		t.Fatalf("dot = %q", dot)
	}
	// The a-b pair must appear exactly once.
	if got := strings.Count(dot, `"a" -- "b"`); got != 1 {
		t.Errorf("edge emitted %d times, want 1\n%s", got, dot)
	}
	if strings.Contains(dot, `"b" -- "a"`) {
		t.Error("reverse edge emitted")
	}
	if !strings.Contains(dot, severityFills[conflict.SeverityLow]) {
		t.Error("severity fill missing")
	}
}

func TestToDOTDetailed(t *testing.T) {
	reports := []conflict.Report{
		{EventID: "x", ConflictingEvents: []string{"y", "z", "w"}, Severity: conflict.SeverityMedium},
	}
	dot := ToDOT(reports, Options{Detailed: true})
	if !strings.Contains(dot, "3 conflicts (medium)") {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}
