package grid

import (
	"time"

	apperrors "github.com/daygrid/daygrid/pkg/errors"
)

// Geometry defaults. All of these are policy constants surfaced through
// configuration, never hardcoded at use sites.
const (
	DefaultCellWidth  = 160.0
	DefaultCellHeight = 120.0
	DefaultPadding    = 4.0
	DefaultColumns    = 7
	// DefaultLaneLimit bounds how many stacked lanes are attempted in a
	// cell before wrapping. The optimizer pass removes any residual
	// overlap the wrap leaves behind.
	DefaultLaneLimit = 3
	// DefaultMinEventHeight is the readability floor applied when the
	// optimizer shrinks crowded slots.
	DefaultMinEventHeight = 12.0
)

// Geometry describes the fixed-size day cell the assigner lays events
// into. The zero value is not usable; call Normalize or start from
// DefaultGeometry.
type Geometry struct {
	CellWidth      float64      `json:"cell_width" toml:"cell_width"`
	CellHeight     float64      `json:"cell_height" toml:"cell_height"`
	Padding        float64      `json:"padding" toml:"padding"`
	Columns        int          `json:"columns" toml:"columns"`
	LaneLimit      int          `json:"lane_limit" toml:"lane_limit"`
	MinEventHeight float64      `json:"min_event_height" toml:"min_event_height"`
	WeekStart      time.Weekday `json:"week_start" toml:"week_start"`
}

// DefaultGeometry returns the standard month-grid cell geometry with a
// Monday week start.
func DefaultGeometry() Geometry {
	return Geometry{
		CellWidth:      DefaultCellWidth,
		CellHeight:     DefaultCellHeight,
		Padding:        DefaultPadding,
		Columns:        DefaultColumns,
		LaneLimit:      DefaultLaneLimit,
		MinEventHeight: DefaultMinEventHeight,
		WeekStart:      time.Monday,
	}
}

// Normalize fills zero fields with defaults so partially-specified
// geometries (e.g. from config files) behave correctly.
func (g *Geometry) Normalize() {
	d := DefaultGeometry()
	if g.CellWidth <= 0 {
		g.CellWidth = d.CellWidth
	}
	if g.CellHeight <= 0 {
		g.CellHeight = d.CellHeight
	}
	if g.Padding < 0 {
		g.Padding = d.Padding
	}
	if g.Columns <= 0 {
		g.Columns = d.Columns
	}
	if g.LaneLimit <= 0 {
		g.LaneLimit = d.LaneLimit
	}
	if g.MinEventHeight <= 0 {
		g.MinEventHeight = d.MinEventHeight
	}
}

// Validate checks that the geometry can host at least one lane.
func (g Geometry) Validate() error {
	if g.CellHeight <= 2*g.Padding {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"cell height %.1f leaves no room inside padding %.1f", g.CellHeight, g.Padding)
	}
	if g.CellWidth <= 2*g.Padding {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"cell width %.1f leaves no room inside padding %.1f", g.CellWidth, g.Padding)
	}
	return nil
}

// LaneHeight returns the vertical extent of one stacking lane.
func (g Geometry) LaneHeight() float64 {
	return (g.CellHeight - 2*g.Padding) / float64(g.LaneLimit)
}

// Column returns the day-of-week column for t, honoring WeekStart.
func (g Geometry) Column(t time.Time) int {
	return (int(t.Weekday()) - int(g.WeekStart) + 7) % 7
}

// Row returns the week-of-month row for t: the number of whole weeks
// between t and the first day of its month, counted on the configured
// week grid.
func (g Geometry) Row(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return (t.Day() - 1 + g.Column(first)) / 7
}
