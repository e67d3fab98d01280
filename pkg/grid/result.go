package grid

// Layout is the computed rectangle for one event within the day grid.
// All coordinates are in user units (typically pixels in SVG), measured
// from the grid's top-left corner with y growing downward.
//
// Layouts are request-scoped: they are rebuilt from the caller's event
// set on every request and carry no identity across rebuilds. Consumers
// must not mutate or reuse them between requests.
type Layout struct {
	EventID string  `json:"event_id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	// Lane is the stacking index among mutually overlapping events.
	Lane int `json:"lane"`
	// Conflicts lists the other event ids whose interval overlaps this
	// one, self excluded. Symmetric: if A lists B, B lists A.
	Conflicts []string `json:"conflicts"`
}

// Right returns the x coordinate of the rectangle's right edge.
func (l Layout) Right() float64 { return l.X + l.Width }

// Bottom returns the y coordinate of the rectangle's bottom edge.
func (l Layout) Bottom() float64 { return l.Y + l.Height }

// IntersectsVertically reports whether the [y, y+height) ranges of two
// layouts overlap. Touching edges do not intersect.
func (l Layout) IntersectsVertically(other Layout) bool {
	return l.Y < other.Bottom() && other.Y < l.Bottom()
}
