// Package grid maps time-ranged events onto non-overlapping rectangles
// in a fixed-size month grid of day cells.
//
// The assigner places each event by its calendar coordinates (day-of-
// week column, week-of-month row), sizes it by duration, and stacks
// overlapping events into lanes. A second, pure optimizer pass
// redistributes vertical space within crowded slots so that no two
// events in a slot overlap visually, whatever the lane heuristic left
// behind.
package grid

import (
	"math"
	"slices"
	"time"

	"github.com/daygrid/daygrid/pkg/event"
	"github.com/daygrid/daygrid/pkg/interval"
)

// Options configures an assignment run. The zero value uses the default
// geometry and index implementation.
type Options struct {
	Geometry Geometry
	NewIndex interval.Factory
}

func (o *Options) normalize() {
	if o.Geometry == (Geometry{}) {
		o.Geometry = DefaultGeometry()
	} else {
		o.Geometry.Normalize()
	}
	if o.NewIndex == nil {
		o.NewIndex = interval.New
	}
}

// Assign computes one Layout per valid input event.
//
// The interval index is fully built from the batch before the first
// overlap query, so each event's conflict set is computed against all
// other events and is independent of input order. Records violating the
// start/end invariant are rejected individually and reported; the rest
// of the batch still processes.
//
// Events entirely outside any visible period are still laid out;
// filtering by visible range is the caller's responsibility. Output
// order follows input order but is not part of the contract; callers
// sort if they need stability.
func Assign(events []event.Event, opts Options) ([]Layout, []event.Rejection) {
	opts.normalize()
	g := opts.Geometry

	idx := opts.NewIndex()
	valid := make([]event.Event, 0, len(events))
	var rejected []event.Rejection
	for _, e := range events {
		if err := e.Validate(); err != nil {
			rejected = append(rejected, event.Rejection{EventID: e.ID, Reason: err.Error()})
			continue
		}
		if err := idx.Insert(e.ID, e.Start.UnixMilli(), e.End.UnixMilli()); err != nil {
			rejected = append(rejected, event.Rejection{EventID: e.ID, Reason: err.Error()})
			continue
		}
		valid = append(valid, e)
	}

	layouts := make([]Layout, 0, len(valid))
	for _, e := range valid {
		conflicts := idx.Query(e.Start.UnixMilli(), e.End.UnixMilli())
		conflicts = slices.DeleteFunc(conflicts, func(id string) bool { return id == e.ID })
		slices.Sort(conflicts)
		layouts = append(layouts, place(e, conflicts, g))
	}
	return layouts, rejected
}

// place computes the rectangle for one event given its conflict set.
func place(e event.Event, conflicts []string, g Geometry) Layout {
	day := e.Day()
	col := g.Column(day)
	row := g.Row(day)

	// Width is proportional to duration in days, clipped to the columns
	// remaining in the event's row: an event never extends visually past
	// the row it starts in.
	span := durationDays(e)
	if remaining := g.Columns - col; span > remaining {
		span = remaining
	}

	lane := len(conflicts) % g.LaneLimit
	laneHeight := g.LaneHeight()

	return Layout{
		EventID:   e.ID,
		X:         float64(col)*g.CellWidth + g.Padding,
		Y:         float64(row)*g.CellHeight + g.Padding + float64(lane)*laneHeight,
		Width:     float64(span)*g.CellWidth - 2*g.Padding,
		Height:    laneHeight,
		Lane:      lane,
		Conflicts: conflicts,
	}
}

// durationDays returns the event's width in day columns. Zero-duration
// events count as one day: a dropped rectangle would hide the event
// entirely, so a minimum visible width is the policy here.
func durationDays(e event.Event) int {
	d := e.Duration()
	if d <= 0 {
		return 1
	}
	return int(math.Ceil(float64(d) / float64(24*time.Hour)))
}
