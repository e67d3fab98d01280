package feed

import (
	"gopkg.in/yaml.v3"

	apperrors "github.com/daygrid/daygrid/pkg/errors"
	"github.com/daygrid/daygrid/pkg/event"
)

// ParseYAML decodes a YAML feed document. The shape mirrors the JSON
// feed: a top-level events list with RFC 3339 timestamps.
func ParseYAML(data []byte) ([]event.Event, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "parse yaml feed")
	}
	sortEvents(doc.Events)
	return doc.Events, nil
}
