package feed

import (
	"encoding/json"

	apperrors "github.com/daygrid/daygrid/pkg/errors"
	"github.com/daygrid/daygrid/pkg/event"
)

// document is the JSON and YAML feed shape: a single top-level list.
type document struct {
	Events []event.Event `json:"events" yaml:"events"`
}

// ParseJSON decodes a JSON feed document. Timestamps are RFC 3339.
func ParseJSON(data []byte) ([]event.Event, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "parse json feed")
	}
	sortEvents(doc.Events)
	return doc.Events, nil
}

// MarshalJSON encodes a batch back into the feed document shape.
func MarshalJSON(events []event.Event) ([]byte, error) {
	data, err := json.MarshalIndent(document{Events: events}, "", "  ")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode json feed")
	}
	return data, nil
}
