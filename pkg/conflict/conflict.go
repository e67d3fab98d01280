// Package conflict produces standalone overlap reports for event
// batches, independent of visual layout.
//
// The detector is its own entry point over the interval index: it does
// not require the layout assigner to have run first, and running it
// twice on the same batch yields identical reports. Reports feed badges
// and warnings in the surrounding application, never rendering.
package conflict

import (
	"slices"

	"github.com/daygrid/daygrid/pkg/event"
	"github.com/daygrid/daygrid/pkg/interval"
)

// Report lists the events overlapping one event's time range, with a
// severity derived from the fan-out. Events with no overlaps get no
// report at all.
type Report struct {
	EventID           string   `json:"event_id"`
	ConflictingEvents []string `json:"conflicting_events"`
	Severity          Severity `json:"severity"`
}

// Options configures a detection run. The zero value is usable:
// default thresholds and the default index implementation.
type Options struct {
	Thresholds Thresholds
	NewIndex   interval.Factory
}

func (o *Options) normalize() {
	if o.Thresholds == (Thresholds{}) {
		o.Thresholds = DefaultThresholds
	}
	if o.NewIndex == nil {
		o.NewIndex = interval.New
	}
}

// Detect builds a fresh interval index from the batch and emits one
// Report per event whose overlap set is non-empty.
//
// Records violating the start/end invariant are rejected individually
// and returned as rejections; the rest of the batch still processes.
// The index is fully built before the first query, so for any two valid
// events A and B, A appears in B's report iff B appears in A's.
func Detect(events []event.Event, opts Options) ([]Report, []event.Rejection) {
	opts.normalize()

	idx := opts.NewIndex()
	valid, rejected := indexBatch(idx, events)

	var reports []Report
	for _, e := range valid {
		ids := idx.Query(e.Start.UnixMilli(), e.End.UnixMilli())
		ids = slices.DeleteFunc(ids, func(id string) bool { return id == e.ID })
		if len(ids) == 0 {
			continue
		}
		slices.Sort(ids)
		reports = append(reports, Report{
			EventID:           e.ID,
			ConflictingEvents: ids,
			Severity:          opts.Thresholds.Classify(len(ids)),
		})
	}

	slices.SortFunc(reports, func(a, b Report) int {
		if a.EventID < b.EventID {
			return -1
		}
		if a.EventID > b.EventID {
			return 1
		}
		return 0
	})
	return reports, rejected
}

// indexBatch validates and inserts each event, returning the accepted
// events and the per-record rejections.
func indexBatch(idx interval.Index, events []event.Event) ([]event.Event, []event.Rejection) {
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
	return valid, rejected
}
