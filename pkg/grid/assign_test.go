package grid

import (
	"slices"
	"testing"
	"time"

	"github.com/daygrid/daygrid/pkg/event"
)

// March 2026: the 1st is a Sunday, so with a Monday week start the
// first row holds only that Sunday; Mar 2-8 fill row 1 and Mar 9 opens row 2.
var base = time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC) // Monday

func tev(id string, start, end time.Time) event.Event {
	return event.Event{ID: id, Start: start, End: end}
}

func hours(h int) time.Duration { return time.Duration(h) * time.Hour }

func TestGeometryColumnRow(t *testing.T) {
	g := DefaultGeometry()

	tests := []struct {
		name    string
		day     time.Time
		wantCol int
		wantRow int
	}{
		{"MondayMar9", base, 0, 2},
		{"SundayMar1", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), 6, 0},
		{"SundayMar15", time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), 6, 2},
		{"TuesdayMar31", time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Column(tt.day); got != tt.wantCol {
				t.Errorf("Column(%s) = %d, want %d", tt.day.Format("2006-01-02"), got, tt.wantCol)
			}
			if got := g.Row(tt.day); got != tt.wantRow {
				t.Errorf("Row(%s) = %d, want %d", tt.day.Format("2006-01-02"), got, tt.wantRow)
			}
		})
	}
}

func TestGeometryWeekStartSunday(t *testing.T) {
	g := DefaultGeometry()
	g.WeekStart = time.Sunday
	if got := g.Column(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)); got != 0 {
		t.Errorf("Column(Sunday, sunday-start) = %d, want 0", got)
	}
	if got := g.Row(time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)); got != 1 {
		t.Errorf("Row(Mar 8, sunday-start) = %d, want 1", got)
	}
}

func TestAssignBasePosition(t *testing.T) {
	g := DefaultGeometry()
	layouts, rejected := Assign([]event.Event{
		tev("solo", base.Add(hours(9)), base.Add(hours(10))),
	}, Options{Geometry: g})

	if len(rejected) != 0 {
		t.Fatalf("rejected = %v", rejected)
	}
	if len(layouts) != 1 {
		t.Fatalf("got %d layouts, want 1", len(layouts))
	}
	l := layouts[0]
	if l.X != 0*g.CellWidth+g.Padding {
		t.Errorf("X = %.1f, want column 0 + padding", l.X)
	}
	if l.Y != 2*g.CellHeight+g.Padding {
		t.Errorf("Y = %.1f, want row 2 + padding (lane 0)", l.Y)
	}
	if l.Width != g.CellWidth-2*g.Padding {
		t.Errorf("Width = %.1f, want one cell minus padding", l.Width)
	}
	if l.Lane != 0 || len(l.Conflicts) != 0 {
		t.Errorf("lane/conflicts = %d/%v, want 0/empty", l.Lane, l.Conflicts)
	}
}

func TestAssignWidthClippedToRow(t *testing.T) {
	g := DefaultGeometry()
	// Friday Mar 13, five days long: only Fri/Sat/Sun remain in its row.
	friday := time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC)
	layouts, _ := Assign([]event.Event{
		tev("long", friday, friday.Add(5*24*time.Hour)),
	}, Options{Geometry: g})

	want := 3*g.CellWidth - 2*g.Padding
	if layouts[0].Width != want {
		t.Errorf("Width = %.1f, want %.1f (clipped to remaining columns)", layouts[0].Width, want)
	}
}

func TestAssignZeroDurationEvent(t *testing.T) {
	g := DefaultGeometry()
	start := base.Add(hours(9))
	layouts, rejected := Assign([]event.Event{tev("instant", start, start)}, Options{Geometry: g})

	if len(rejected) != 0 {
		t.Fatalf("zero-duration event rejected: %v", rejected)
	}
	if len(layouts) != 1 {
		t.Fatalf("zero-duration event dropped")
	}
	if want := g.CellWidth - 2*g.Padding; layouts[0].Width != want {
		t.Errorf("Width = %.1f, want %.1f (one-day minimum)", layouts[0].Width, want)
	}
}

func TestAssignLaneFromConflictCount(t *testing.T) {
	g := DefaultGeometry()
	// Four mutually overlapping events: each has 3 conflicts, and with
	// the default lane limit of 3 the lane wraps to 0.
	var batch []event.Event
	for _, id := range []string{"a", "b", "c", "d"} {
		batch = append(batch, tev(id, base.Add(hours(9)), base.Add(hours(10))))
	}
	layouts, _ := Assign(batch, Options{Geometry: g})

	for _, l := range layouts {
		if len(l.Conflicts) != 3 {
			t.Errorf("%s: %d conflicts, want 3", l.EventID, len(l.Conflicts))
		}
		if l.Lane != 3%g.LaneLimit {
			t.Errorf("%s: lane %d, want %d", l.EventID, l.Lane, 3%g.LaneLimit)
		}
	}
}

func TestAssignConflictSymmetryAndNoSelf(t *testing.T) {
	batch := []event.Event{
		tev("a", base.Add(hours(9)), base.Add(hours(11))),
		tev("b", base.Add(hours(10)), base.Add(hours(12))),
		tev("c", base.Add(hours(13)), base.Add(hours(14))),
	}
	layouts, _ := Assign(batch, Options{})

	sets := make(map[string][]string)
	for _, l := range layouts {
		if slices.Contains(l.Conflicts, l.EventID) {
			t.Errorf("%s lists itself as a conflict", l.EventID)
		}
		sets[l.EventID] = l.Conflicts
	}
	for id, conflicts := range sets {
		for _, other := range conflicts {
			if !slices.Contains(sets[other], id) {
				t.Errorf("asymmetric conflicts: %s lists %s but not vice versa", id, other)
			}
		}
	}
}

func TestAssignOrderIndependent(t *testing.T) {
	batch := []event.Event{
		tev("a", base.Add(hours(9)), base.Add(hours(11))),
		tev("b", base.Add(hours(10)), base.Add(hours(12))),
		tev("c", base.Add(hours(10)), base.Add(hours(11))),
	}
	reversed := []event.Event{batch[2], batch[1], batch[0]}

	forward, _ := Assign(batch, Options{})
	backward, _ := Assign(reversed, Options{})

	byID := func(ls []Layout) map[string]Layout {
		m := make(map[string]Layout)
		for _, l := range ls {
			m[l.EventID] = l
		}
		return m
	}
	f, b := byID(forward), byID(backward)
	for id, fl := range f {
		bl := b[id]
		if !slices.Equal(fl.Conflicts, bl.Conflicts) || fl.Lane != bl.Lane || fl.Y != bl.Y {
			t.Errorf("%s: result depends on input order:\nforward  %+v\nbackward %+v", id, fl, bl)
		}
	}
}

func TestAssignRejectsInvalidRecordLocally(t *testing.T) {
	batch := []event.Event{
		tev("good", base.Add(hours(9)), base.Add(hours(10))),
		tev("backwards", base.Add(hours(10)), base.Add(hours(9))),
	}
	layouts, rejected := Assign(batch, Options{})

	if len(rejected) != 1 || rejected[0].EventID != "backwards" {
		t.Fatalf("rejected = %+v", rejected)
	}
	if len(layouts) != 1 || layouts[0].EventID != "good" {
		t.Errorf("layouts = %+v, want only good", layouts)
	}
}

func TestAssignEmptyBatch(t *testing.T) {
	layouts, rejected := Assign(nil, Options{})
	if len(layouts) != 0 || len(rejected) != 0 {
		t.Errorf("Assign(nil) = %v, %v, want empty results and no error", layouts, rejected)
	}
}

func TestAssignOutsideVisiblePeriodStillLaidOut(t *testing.T) {
	farFuture := time.Date(2030, time.July, 1, 9, 0, 0, 0, time.UTC)
	layouts, _ := Assign([]event.Event{tev("future", farFuture, farFuture.Add(hours(1)))}, Options{})
	if len(layouts) != 1 {
		t.Error("event outside the visible period was dropped")
	}
}
