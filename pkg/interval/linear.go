package interval

// Linear is a flat, scan-based Index. Every query walks the whole
// batch, which is the fastest option at small cardinalities and the
// reference implementation the Tree is tested against.
type Linear struct {
	recs []Record
}

// NewLinear creates an empty scan-based index.
func NewLinear() *Linear {
	return &Linear{}
}

// Insert adds one interval.
func (l *Linear) Insert(id string, start, end int64) error {
	if end < start {
		return ErrInvalidRange
	}
	l.recs = append(l.recs, Record{ID: id, Start: start, End: end})
	return nil
}

// Query scans all stored records for half-open overlap.
func (l *Linear) Query(start, end int64) []string {
	var out []string
	for _, r := range l.recs {
		if r.Overlaps(start, end) {
			out = append(out, r.ID)
		}
	}
	return out
}

// Clear empties the index, keeping the backing array.
func (l *Linear) Clear() {
	l.recs = l.recs[:0]
}

// Len returns the number of stored intervals.
func (l *Linear) Len() int { return len(l.recs) }

var _ Index = (*Linear)(nil)
