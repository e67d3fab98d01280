package conflict

import (
	apperrors "github.com/daygrid/daygrid/pkg/errors"
)

// Severity classifies how contested an event's time range is.
type Severity string

// Severity levels, ordered Low < Medium < High.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Thresholds maps a conflict count to a Severity. The values are named
// so callers can override them and tests can pin the boundaries.
type Thresholds struct {
	// LowMax is the largest conflict count still classified Low.
	LowMax int `json:"low_max" toml:"low_max"`
	// MediumMax is the largest conflict count still classified Medium.
	MediumMax int `json:"medium_max" toml:"medium_max"`
}

// DefaultThresholds is the standard classification policy:
// 1-2 conflicts Low, 3-5 Medium, 6+ High. Zero conflicts produce no
// report at all.
var DefaultThresholds = Thresholds{LowMax: 2, MediumMax: 5}

// Validate checks that the thresholds define a usable step function.
func (t Thresholds) Validate() error {
	if t.LowMax < 1 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "severity low_max must be at least 1, got %d", t.LowMax)
	}
	if t.MediumMax <= t.LowMax {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "severity medium_max (%d) must exceed low_max (%d)", t.MediumMax, t.LowMax)
	}
	return nil
}

// Classify maps a conflict count to a severity. It is pure and total:
// identical inputs always produce identical severity. Counts of zero or
// less classify Low, but detectors never emit zero-conflict reports.
func (t Thresholds) Classify(conflicts int) Severity {
	switch {
	case conflicts <= t.LowMax:
		return SeverityLow
	case conflicts <= t.MediumMax:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}
