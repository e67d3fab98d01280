package observability

import (
	"context"
	"testing"
	"time"
)

type countingEngineHooks struct {
	starts, completes int
}

func (c *countingEngineHooks) OnRequestStart(context.Context, string, int) { c.starts++ }
func (c *countingEngineHooks) OnRequestComplete(context.Context, string, time.Duration, int, error) {
	c.completes++
}

func TestSetEngineHooks(t *testing.T) {
	defer SetEngineHooks(nil)

	h := &countingEngineHooks{}
	SetEngineHooks(h)

	Engine().OnRequestStart(context.Background(), "compute_layout", 3)
	Engine().OnRequestComplete(context.Background(), "compute_layout", time.Millisecond, 0, nil)

	if h.starts != 1 || h.completes != 1 {
		t.Errorf("hooks not routed: starts=%d completes=%d", h.starts, h.completes)
	}
}

func TestNilRestoresNoop(t *testing.T) {
	SetEngineHooks(&countingEngineHooks{})
	SetEngineHooks(nil)

	// Must not panic.
	Engine().OnRequestStart(context.Background(), "detect_conflicts", 0)
	Cache().OnCacheMiss(context.Background(), "layout")
}
