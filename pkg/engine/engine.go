// Package engine is the execution boundary of the layout system: it
// accepts typed requests, dispatches them to the layout, conflict, and
// optimizer components on a dedicated worker goroutine, and returns
// typed responses asynchronously, so the caller's rendering loop never
// blocks on a computation.
//
// # Lifecycle
//
// An [Engine] is explicitly constructed and caller-owned; there is no
// package-level singleton. Start it with a context, wait on [Engine.Ready]
// before submitting (the cold-start handshake), and stop it either by
// cancelling the context or calling [Engine.Stop]:
//
//	eng := engine.New(engine.Config{})
//	eng.Start(ctx)
//	<-eng.Ready()
//	eng.Submit(ctx, engine.Request{Op: engine.OpComputeLayout, ID: id, Events: batch})
//	resp := <-eng.Responses()
//
// # Concurrency model
//
// One engine runs one worker goroutine. Each request is processed to
// completion before the next; within one engine, responses arrive in
// submission order. There is no shared mutable state between caller and
// worker: requests and responses cross over channels, and the interval
// index is rebuilt fresh for every request. Callers wanting parallelism
// run a [Pool] of engines and let correlation-id hashing spread load.
//
// Cancellation of an in-flight computation is not supported: batches
// are small enough that a single pass completes well inside a frame
// budget. Callers that stop caring should discard the late response by
// correlation id.
package engine

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/daygrid/daygrid/pkg/conflict"
	apperrors "github.com/daygrid/daygrid/pkg/errors"
	"github.com/daygrid/daygrid/pkg/event"
	"github.com/daygrid/daygrid/pkg/grid"
	"github.com/daygrid/daygrid/pkg/interval"
	"github.com/daygrid/daygrid/pkg/observability"
)

// DefaultQueueSize is the request buffer of one engine. Submissions
// beyond it block until the worker catches up.
const DefaultQueueSize = 16

// Config carries engine construction options. The zero value is usable.
type Config struct {
	// Geometry is the day-cell geometry for layout assignment.
	Geometry grid.Geometry

	// Thresholds is the severity classification policy.
	Thresholds conflict.Thresholds

	// NewIndex picks the interval index implementation.
	NewIndex interval.Factory

	// QueueSize is the request channel buffer.
	QueueSize int

	// Logger receives structured request logs. Defaults to discard.
	Logger *log.Logger
}

func (c *Config) normalize() {
	if c.Geometry == (grid.Geometry{}) {
		c.Geometry = grid.DefaultGeometry()
	} else {
		c.Geometry.Normalize()
	}
	if c.Thresholds == (conflict.Thresholds{}) {
		c.Thresholds = conflict.DefaultThresholds
	}
	if c.NewIndex == nil {
		c.NewIndex = interval.New
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.Logger == nil {
		c.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Engine is a single-worker execution boundary.
type Engine struct {
	cfg Config

	requests  chan Request
	responses chan Response
	ready     chan struct{}
	stop      chan struct{}
	stopped   chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates an engine. It does nothing until Start is called.
func New(cfg Config) *Engine {
	cfg.normalize()
	return &Engine{
		cfg:       cfg,
		requests:  make(chan Request, cfg.QueueSize),
		responses: make(chan Response, cfg.QueueSize),
		ready:     make(chan struct{}),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

// Start launches the worker goroutine. Subsequent calls are no-ops.
// The worker exits when ctx is cancelled or Stop is called; either way
// the response channel is closed after the last response is delivered.
func (e *Engine) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		go e.run(ctx)
	})
}

// Ready returns a channel closed once when the worker loop is live.
// Callers delay their first Submit on it.
func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

// Responses returns the stream of responses, in submission order.
// Closed after the engine stops.
func (e *Engine) Responses() <-chan Response {
	return e.responses
}

// Submit enqueues one request. It blocks only while the queue is full,
// and fails fast if the engine has stopped or ctx is done.
func (e *Engine) Submit(ctx context.Context, req Request) error {
	select {
	case <-e.stopped:
		return apperrors.New(apperrors.ErrCodeStopped, "engine is stopped")
	default:
	}
	select {
	case e.requests <- req:
		return nil
	case <-e.stopped:
		return apperrors.New(apperrors.ErrCodeStopped, "engine is stopped")
	case <-ctx.Done():
		return apperrors.Wrap(apperrors.ErrCodeStopped, ctx.Err(), "submit %s", req.ID)
	}
}

// Stop shuts the engine down and waits for the worker to drain.
// Safe to call more than once, and before Start: a Stop that beats
// Start is final, and the worker never launches.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stop)
	})
	// Claim startOnce: if the worker never launched, nothing else will
	// close stopped, and a later Start must not spin one up.
	e.startOnce.Do(func() {
		close(e.stopped)
	})
	<-e.stopped
}

// run is the worker loop.
func (e *Engine) run(ctx context.Context) {
	defer close(e.stopped)
	defer close(e.responses)

	close(e.ready)

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stop:
			return
		case req := <-e.requests:
			resp := e.handle(ctx, req)
			select {
			case e.responses <- resp:
			case <-ctx.Done():
				return
			case <-e.stop:
				return
			}
		}
	}
}

// handle executes one request synchronously. Every failure, including
// a panic inside a component, becomes a typed error response carrying
// the request's correlation id; nothing propagates past the boundary.
func (e *Engine) handle(ctx context.Context, req Request) (resp Response) {
	start := time.Now()
	observability.Engine().OnRequestStart(ctx, string(req.Op), len(req.Events))

	defer func() {
		if r := recover(); r != nil {
			resp = Response{
				ID:  req.ID,
				Err: apperrors.New(apperrors.ErrCodeInternal, "panic during %s: %v", req.Op, r),
			}
		}
		observability.Engine().OnRequestComplete(ctx, string(req.Op), time.Since(start), len(resp.Rejected), resp.Err)
		e.logResponse(req, resp, time.Since(start))
	}()

	if err := apperrors.ValidateCorrelationID(req.ID); err != nil {
		return Response{ID: req.ID, Err: err}
	}

	switch req.Op {
	case OpComputeLayout:
		return e.computeLayout(req)
	case OpDetectConflicts:
		return e.detectConflicts(req)
	case OpOptimizePositions:
		return e.optimizePositions(req)
	default:
		return Response{
			ID:  req.ID,
			Err: apperrors.New(apperrors.ErrCodeInvalidOperation, "unknown operation: %q", string(req.Op)),
		}
	}
}

// computeLayout runs assignment and always follows with the optimizer
// pass, so raw lane-heuristic output is never rendered directly.
func (e *Engine) computeLayout(req Request) Response {
	if err := event.ValidateBatch(req.Events); err != nil {
		return Response{ID: req.ID, Err: err}
	}

	layouts, rejected := grid.Assign(req.Events, grid.Options{
		Geometry: e.cfg.Geometry,
		NewIndex: e.cfg.NewIndex,
	})
	layouts = grid.Optimize(layouts, e.cfg.Geometry)

	return Response{ID: req.ID, Layouts: layouts, Rejected: rejected}
}

func (e *Engine) detectConflicts(req Request) Response {
	if err := event.ValidateBatch(req.Events); err != nil {
		return Response{ID: req.ID, Err: err}
	}

	reports, rejected := conflict.Detect(req.Events, conflict.Options{
		Thresholds: e.cfg.Thresholds,
		NewIndex:   e.cfg.NewIndex,
	})
	return Response{ID: req.ID, Reports: reports, Rejected: rejected}
}

func (e *Engine) optimizePositions(req Request) Response {
	if req.Layouts == nil {
		return Response{
			ID:  req.ID,
			Err: apperrors.New(apperrors.ErrCodeInvalidRequest, "OptimizePositions requires layouts"),
		}
	}
	return Response{ID: req.ID, Layouts: grid.Optimize(req.Layouts, e.cfg.Geometry)}
}

func (e *Engine) logResponse(req Request, resp Response, elapsed time.Duration) {
	if resp.Err != nil {
		e.cfg.Logger.Error("request failed",
			"op", string(req.Op),
			"id", req.ID,
			"err", resp.Err,
			"duration", elapsed)
		return
	}
	e.cfg.Logger.Debug("request served",
		"op", string(req.Op),
		"id", req.ID,
		"events", len(req.Events),
		"rejected", len(resp.Rejected),
		"duration", elapsed)
}
