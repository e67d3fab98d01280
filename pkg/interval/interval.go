// Package interval provides the overlap index used by the layout and
// conflict components.
//
// An [Index] stores (id, start, end) records and answers "which stored
// intervals overlap [start, end)?" repeatedly within one request. The
// overlap test is half-open: an interval ending exactly when another
// begins does not overlap it.
//
// Two implementations share the contract:
//
//   - [Linear]: a flat slice with per-query scans. O(n) per query, but
//     cache-friendly and fastest at the tens-of-events-per-day
//     cardinalities a calendar surface produces.
//   - [Tree]: an augmented binary search tree keyed by start with a
//     max-end annotation per subtree, pruning whole subtrees during
//     queries. O(log n + k) per query on balanced input.
//
// Callers hold an Index through the interface so the backing structure
// is swappable without touching any call site. Indexes are rebuilt
// fresh per request and are not safe for concurrent use.
package interval

import "errors"

// ErrInvalidRange is returned by Insert when end < start. The record is
// rejected rather than silently normalized so upstream data bugs surface.
var ErrInvalidRange = errors.New("interval end precedes start")

// Record is the index's internal representation of one event interval.
// Start and End are Unix milliseconds, derived 1:1 from an event.
type Record struct {
	ID    string
	Start int64
	End   int64
}

// Overlaps reports whether [r.Start, r.End) intersects [start, end).
// Touching endpoints do not overlap.
func (r Record) Overlaps(start, end int64) bool {
	return r.Start < end && r.End > start
}

// Index answers overlap queries over a batch of intervals.
// These three operations are the entire public contract.
type Index interface {
	// Insert adds one interval. Inserts may arrive in any order.
	// Returns ErrInvalidRange if end < start.
	Insert(id string, start, end int64) error

	// Query returns the ids of every stored interval (s, e) with
	// s < end && e > start. Nothing is excluded; callers filter out
	// their own id.
	Query(start, end int64) []string

	// Clear resets the index to empty for reuse across requests,
	// retaining allocations where the implementation can.
	Clear()
}

// Factory constructs an empty Index. The engine takes a Factory so the
// backing structure is a configuration choice, not a code change.
type Factory func() Index

// New returns the default Index implementation.
func New() Index { return NewTree() }
