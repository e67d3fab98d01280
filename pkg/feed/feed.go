// Package feed materializes event batches from external sources.
//
// The computation engine consumes fully concrete events; this package
// is the upstream step that gets them there. It parses JSON and YAML
// event documents and ICS calendars, expands ICS recurrence rules into
// individual occurrences, and clips everything to the requested window.
//
// Feeds are read-once: every load re-reads the source. Callers that
// poll a source wrap the loader with the cache package.
package feed

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "github.com/daygrid/daygrid/pkg/errors"
	"github.com/daygrid/daygrid/pkg/event"
)

// Window is the half-open time range [Start, End) a feed is materialized
// for. Recurring events expand only inside it; concrete events outside
// it are dropped.
type Window struct {
	Start time.Time `json:"start" toml:"start"`
	End   time.Time `json:"end" toml:"end"`
}

// Validate rejects inverted windows. A zero window is valid and means
// "no clipping" for concrete events; ICS sources require a real window.
func (w Window) Validate() error {
	if w.IsZero() {
		return nil
	}
	if !w.End.After(w.Start) {
		return apperrors.New(apperrors.ErrCodeInvalidInterval,
			"window end %s not after start %s", w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports half-open overlap between the window and [start, end).
func (w Window) Contains(start, end time.Time) bool {
	return start.Before(w.End) && end.After(w.Start)
}

// MonthOf returns the window spanning t's calendar month.
func MonthOf(t time.Time) Window {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// Load reads a feed file and materializes its events, dispatching on
// the file extension (.json, .yaml/.yml, .ics).
func Load(path string, w Window) ([]event.Event, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperrors.New(apperrors.ErrCodeFeedNotFound, "feed %s does not exist", path)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeFeedNotFound, err, "read feed %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return clip(ParseJSON(data))(w)
	case ".yaml", ".yml":
		return clip(ParseYAML(data))(w)
	case ".ics":
		return ParseICS(data, w)
	default:
		return nil, apperrors.New(apperrors.ErrCodeUnsupported, "unsupported feed format: %s", filepath.Ext(path))
	}
}

// clip defers window filtering so the parse error can pass through.
func clip(events []event.Event, err error) func(Window) ([]event.Event, error) {
	return func(w Window) ([]event.Event, error) {
		if err != nil {
			return nil, err
		}
		if w.IsZero() {
			return events, nil
		}
		kept := events[:0:0]
		for _, e := range events {
			if w.Contains(e.Start, e.End) || (e.Duration() == 0 && !e.Start.Before(w.Start) && e.Start.Before(w.End)) {
				kept = append(kept, e)
			}
		}
		return kept, nil
	}
}

// sortEvents orders a materialized batch by start time, then id, so
// repeated loads of the same source produce identical batches.
func sortEvents(events []event.Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
}
