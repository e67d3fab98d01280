package cache

import (
	"github.com/daygrid/daygrid/pkg/conflict"
	"github.com/daygrid/daygrid/pkg/event"
	"github.com/daygrid/daygrid/pkg/grid"
)

// Keyer generates cache keys for the result kinds the serving layer
// memoizes. Keys incorporate everything the result depends on: the
// event batch and the policy applied to it. Two requests with the same
// batch but different geometry must not share a layout entry.
type Keyer interface {
	// BatchHash reduces an event batch to a stable digest.
	BatchHash(events []event.Event) string

	// LayoutKey generates a key for a ComputeLayout result.
	LayoutKey(batchHash string, geo grid.Geometry) string

	// ConflictKey generates a key for a DetectConflicts result.
	ConflictKey(batchHash string, th conflict.Thresholds) string

	// FeedKey generates a key for a materialized feed.
	FeedKey(source string) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// BatchHash hashes the full batch content. Order matters: callers that
// want order-insensitive keys sort the batch by id first.
func (k *DefaultKeyer) BatchHash(events []event.Event) string {
	return hashKey("batch", events)
}

// LayoutKey keys a layout result by batch digest and geometry.
func (k *DefaultKeyer) LayoutKey(batchHash string, geo grid.Geometry) string {
	return hashKey("layout", batchHash, geo)
}

// ConflictKey keys a conflict result by batch digest and thresholds.
func (k *DefaultKeyer) ConflictKey(batchHash string, th conflict.Thresholds) string {
	return hashKey("conflict", batchHash, th)
}

// FeedKey keys a materialized feed by its source identifier.
func (k *DefaultKeyer) FeedKey(source string) string {
	return hashKey("feed", source)
}

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, for
// deployments where several calendars share one backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) BatchHash(events []event.Event) string {
	return k.inner.BatchHash(events)
}

func (k *ScopedKeyer) LayoutKey(batchHash string, geo grid.Geometry) string {
	return k.prefix + k.inner.LayoutKey(batchHash, geo)
}

func (k *ScopedKeyer) ConflictKey(batchHash string, th conflict.Thresholds) string {
	return k.prefix + k.inner.ConflictKey(batchHash, th)
}

func (k *ScopedKeyer) FeedKey(source string) string {
	return k.prefix + k.inner.FeedKey(source)
}
