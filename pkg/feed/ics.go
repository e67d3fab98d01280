package feed

import (
	"bytes"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	apperrors "github.com/daygrid/daygrid/pkg/errors"
	"github.com/daygrid/daygrid/pkg/event"
)

// maxOccurrences caps recurrence expansion per VEVENT so a pathological
// rule cannot blow up a batch.
const maxOccurrences = 1000

// ParseICS parses an iCalendar payload and materializes its VEVENTs
// inside the window. Recurring events (RRULE) are expanded into one
// event per occurrence; EXDATE exceptions are honored. A window is
// mandatory because an unbounded rule has no finite materialization.
//
// Occurrence ids are derived as "<uid>@<start RFC3339>" so every
// instance of a recurring event stays unique within the batch.
func ParseICS(data []byte, w Window) ([]event.Event, error) {
	if w.IsZero() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "ics feed requires a window")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "parse ics feed")
	}

	var events []event.Event
	for _, ve := range cal.Events() {
		occ, err := expandVEvent(ve, w)
		if err != nil {
			// A single bad VEVENT does not poison the feed.
			continue
		}
		events = append(events, occ...)
	}
	sortEvents(events)
	return events, nil
}

func expandVEvent(ve *ical.VEvent, w Window) ([]event.Event, error) {
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidEvent, "vevent missing UID")
	}
	uid := uidProp.Value

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidEvent, err, "vevent %s: DTSTART", uid)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		// DTEND is optional; a missing one means a point event.
		end = start
	}

	var summary string
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		summary = p.Value
	}
	allDay := isAllDay(ve)

	base := event.Event{
		ID:      uid,
		Summary: summary,
		Start:   start,
		End:     end,
		AllDay:  allDay,
	}

	rruleProp := ve.GetProperty(ical.ComponentPropertyRrule)
	if rruleProp == nil || rruleProp.Value == "" {
		if !w.Contains(base.Start, base.End) && base.Duration() != 0 {
			return nil, nil
		}
		if base.Duration() == 0 && (base.Start.Before(w.Start) || !base.Start.Before(w.End)) {
			return nil, nil
		}
		return []event.Event{base}, nil
	}

	return expandRecurring(ve, base, rruleProp.Value, w)
}

// expandRecurring materializes one RRULE inside the window, preserving
// the base event's duration per occurrence.
func expandRecurring(ve *ical.VEvent, base event.Event, rawRule string, w Window) ([]event.Event, error) {
	r, err := rrule.StrToRRule(rawRule)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidEvent, err, "vevent %s: RRULE", base.ID)
	}
	r.DTStart(base.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range exDates(ve) {
		set.ExDate(ex.In(base.Start.Location()))
	}

	// Between works in the event's own location; widen the start by the
	// duration so occurrences that began before the window but still
	// overlap it are kept.
	dur := base.Duration()
	rangeStart := w.Start.Add(-dur).In(base.Start.Location())
	rangeEnd := w.End.In(base.Start.Location())

	times := set.Between(rangeStart, rangeEnd, true)
	if len(times) > maxOccurrences {
		times = times[:maxOccurrences]
	}

	out := make([]event.Event, 0, len(times))
	for _, occStart := range times {
		occ := base
		occ.Start = occStart
		occ.End = occStart.Add(dur)
		if dur == 0 {
			if occStart.Before(w.Start) || !occStart.Before(w.End) {
				continue
			}
		} else if !w.Contains(occ.Start, occ.End) {
			continue
		}
		occ.ID = base.ID + "@" + occStart.UTC().Format(time.RFC3339)
		out = append(out, occ)
	}
	return out, nil
}

// isAllDay detects VALUE=DATE starts and bare YYYYMMDD values.
func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}

// exDates collects EXDATE values. Only the basic UTC, local date-time,
// and date-only forms are handled.
func exDates(ve *ical.VEvent) []time.Time {
	var out []time.Time
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out = append(out, t)
			}
		}
	}
	return out
}

func parseICSTime(v string) (time.Time, error) {
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, time.Local)
	default:
		return time.ParseInLocation("20060102", v, time.Local)
	}
}
