package engine

import (
	"github.com/google/uuid"

	"github.com/daygrid/daygrid/pkg/conflict"
	apperrors "github.com/daygrid/daygrid/pkg/errors"
	"github.com/daygrid/daygrid/pkg/event"
	"github.com/daygrid/daygrid/pkg/grid"
)

// Op identifies the computation a request asks for.
type Op string

// Supported operations.
const (
	// OpComputeLayout assigns a rectangle to every event and always
	// runs the optimizer pass over the result, so the returned layouts
	// carry the zero-visual-overlap guarantee unconditionally.
	OpComputeLayout Op = "ComputeLayout"

	// OpDetectConflicts produces overlap reports with severities,
	// independent of any layout.
	OpDetectConflicts Op = "DetectConflicts"

	// OpOptimizePositions runs the optimizer pass alone over layouts
	// the caller already holds.
	OpOptimizePositions Op = "OptimizePositions"
)

// ParseOp validates an operation name from the wire.
func ParseOp(s string) (Op, error) {
	switch Op(s) {
	case OpComputeLayout, OpDetectConflicts, OpOptimizePositions:
		return Op(s), nil
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidOperation, "unknown operation: %q", s)
}

// Request is one unit of work submitted to an engine. Events are
// borrowed for the duration of the request and never retained.
type Request struct {
	// Op selects the computation.
	Op Op `json:"type"`

	// ID is the caller-supplied correlation id, echoed back verbatim on
	// the response so concurrent callers can match responses out of
	// order. Opaque to the engine.
	ID string `json:"id"`

	// Events is the batch for ComputeLayout and DetectConflicts.
	Events []event.Event `json:"events,omitempty"`

	// Layouts is the input for OptimizePositions.
	Layouts []grid.Layout `json:"layouts,omitempty"`
}

// Response carries the result of one request. Exactly one of the result
// fields is populated on success; Err is set on failure. The engine
// never lets a failure escape any other way: panics and validation
// errors alike arrive here, tagged with the request's correlation id.
type Response struct {
	// ID echoes the request's correlation id.
	ID string `json:"id"`

	// Layouts is set for ComputeLayout and OptimizePositions.
	Layouts []grid.Layout `json:"layouts,omitempty"`

	// Reports is set for DetectConflicts.
	Reports []conflict.Report `json:"reports,omitempty"`

	// Rejected lists records dropped by local recovery (data errors).
	// The rest of the batch still processed.
	Rejected []event.Rejection `json:"rejected,omitempty"`

	// Err is non-nil when the request as a whole failed. Always an
	// *errors.Error with a machine-readable code.
	Err error `json:"-"`
}

// NewCorrelationID generates a fresh correlation id for callers that do
// not bring their own.
func NewCorrelationID() string {
	return uuid.NewString()
}
