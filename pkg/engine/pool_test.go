package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "github.com/daygrid/daygrid/pkg/errors"
	"github.com/daygrid/daygrid/pkg/event"
)

func startPool(t *testing.T, size int) *Pool {
	t.Helper()
	p := NewPool(size, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	p.Start(ctx)

	readyCtx, readyCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer readyCancel()
	if err := p.Ready(readyCtx); err != nil {
		t.Fatalf("pool never ready: %v", err)
	}
	return p
}

func TestPoolDoMatchesResponseToRequest(t *testing.T) {
	p := startPool(t, 4)

	resp, err := p.Do(context.Background(), Request{
		Op:     OpDetectConflicts,
		ID:     "match-me",
		Events: []event.Event{mkEvent("a", 9, 10), mkEvent("b", 9, 10)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.ID != "match-me" {
		t.Errorf("response ID = %q, want match-me", resp.ID)
	}
	if len(resp.Reports) != 2 {
		t.Errorf("got %d reports, want 2", len(resp.Reports))
	}
}

func TestPoolGeneratesCorrelationID(t *testing.T) {
	p := startPool(t, 2)

	resp, err := p.Do(context.Background(), Request{Op: OpComputeLayout})
	if err != nil {
		t.Fatal(err)
	}
	if resp.ID == "" {
		t.Error("pool did not assign a correlation id")
	}
}

func TestPoolRejectsInFlightDuplicate(t *testing.T) {
	p := NewPool(1, Config{})

	// Register a waiter by hand to simulate an in-flight request with
	// the same id.
	p.mu.Lock()
	p.waiters["busy"] = make(chan Response, 1)
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	if err := p.Ready(ctx); err != nil {
		t.Fatal(err)
	}

	_, err := p.Do(ctx, Request{Op: OpComputeLayout, ID: "busy"})
	if !apperrors.Is(err, apperrors.ErrCodeInvalidRequest) {
		t.Errorf("duplicate in-flight id: err = %v, want INVALID_REQUEST", err)
	}
}

func TestPoolConcurrentDo(t *testing.T) {
	p := startPool(t, 3)

	const n = 40
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("conc-%d", i)
			resp, err := p.Do(context.Background(), Request{
				Op:     OpComputeLayout,
				ID:     id,
				Events: []event.Event{mkEvent(fmt.Sprintf("e%d", i), 9, 10)},
			})
			if err != nil {
				errs <- err
				return
			}
			if resp.ID != id {
				errs <- fmt.Errorf("response %q delivered to waiter %q", resp.ID, id)
				return
			}
			if len(resp.Layouts) != 1 {
				errs <- fmt.Errorf("%s: got %d layouts", id, len(resp.Layouts))
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestPoolSameIDSameEngine(t *testing.T) {
	p := NewPool(4, Config{})
	first := p.pick("stable-id")
	for i := 0; i < 10; i++ {
		if got := p.pick("stable-id"); got != first {
			t.Fatalf("pick is not stable: %d then %d", first, got)
		}
	}
	if first < 0 || first >= len(p.engines) {
		t.Fatalf("pick out of range: %d", first)
	}
}

func TestPoolDoContextCancelled(t *testing.T) {
	p := startPool(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Do(ctx, Request{Op: OpComputeLayout, ID: "gone"})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}

	// The waiter must be forgotten so the id is reusable.
	p.mu.Lock()
	_, lingering := p.waiters["gone"]
	p.mu.Unlock()
	if lingering {
		t.Error("cancelled waiter was not removed")
	}
}

func TestPoolStop(t *testing.T) {
	p := NewPool(2, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	if err := p.Ready(ctx); err != nil {
		t.Fatal(err)
	}
	p.Stop()

	_, err := p.Do(context.Background(), Request{Op: OpComputeLayout, ID: "after-stop"})
	if !apperrors.Is(err, apperrors.ErrCodeStopped) {
		t.Errorf("Do after Stop = %v, want ENGINE_STOPPED", err)
	}
}

func TestPoolSizeClamped(t *testing.T) {
	p := NewPool(0, Config{})
	if len(p.engines) != 1 {
		t.Errorf("size 0 pool has %d engines, want 1", len(p.engines))
	}
}
