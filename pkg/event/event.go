// Package event defines the calendar event model shared by all engine
// components.
//
// Events are owned by the caller and borrowed by the engine for the
// duration of one request. They are assumed to be fully materialized:
// recurrence expansion and timezone normalization happen upstream (see
// the feed package), so Start and End are concrete instants.
package event

import (
	"time"

	apperrors "github.com/daygrid/daygrid/pkg/errors"
)

// DayKeyFormat is the layout used for derived day keys.
const DayKeyFormat = "2006-01-02"

// Event is a single time-ranged calendar event.
// Immutable once submitted to a computation.
type Event struct {
	ID      string    `json:"id" yaml:"id"`
	Summary string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	Start   time.Time `json:"start" yaml:"start"`
	End     time.Time `json:"end" yaml:"end"`
	AllDay  bool      `json:"all_day,omitempty" yaml:"all_day,omitempty"`
}

// Duration returns the event's duration. Zero-duration events are valid.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Day returns the event's start truncated to midnight in its own location.
func (e Event) Day() time.Time {
	y, m, d := e.Start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, e.Start.Location())
}

// DayKey returns the calendar-day grouping key derived from Start.
func (e Event) DayKey() string {
	return e.Start.Format(DayKeyFormat)
}

// Validate checks the record-level invariants: a non-empty printable id
// and End >= Start. A violation is a data error attributable to this
// record alone, not to the whole batch.
func (e Event) Validate() error {
	if err := apperrors.ValidateEventID(e.ID); err != nil {
		return err
	}
	if e.End.Before(e.Start) {
		return apperrors.New(apperrors.ErrCodeInvalidEvent,
			"event %s: end %s precedes start %s", e.ID, e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
	}
	return nil
}

// Rejection records an event that was dropped from a computation along
// with the reason. Rejections are always surfaced to the caller; no
// record is silently discarded.
type Rejection struct {
	EventID string `json:"event_id"`
	Reason  string `json:"reason"`
}

// ValidateBatch checks batch-level invariants: ids must be unique within
// one request. A duplicate id is a contract violation that fails the
// whole request, because results are keyed by event id and a duplicate
// makes them ambiguous.
func ValidateBatch(events []Event) error {
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if _, ok := seen[e.ID]; ok && e.ID != "" {
			return apperrors.New(apperrors.ErrCodeDuplicateEvent, "duplicate event id %q in batch", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
