package engine

import (
	"context"
	"hash/fnv"
	"sync"

	apperrors "github.com/daygrid/daygrid/pkg/errors"
)

// Pool runs several engines side by side and gives callers a
// synchronous request/response facade on top of the asynchronous
// boundary. Requests are routed to an engine by FNV hash of the
// correlation id, so a given id always lands on the same worker and
// keeps its per-engine ordering guarantee; across engines, responses
// complete out of order and the pool matches them back to waiters by id.
type Pool struct {
	engines []*Engine

	mu      sync.Mutex
	waiters map[string]chan Response

	wg sync.WaitGroup
}

// NewPool creates size engines with a shared config. Size is clamped to
// at least one.
func NewPool(size int, cfg Config) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		engines: make([]*Engine, size),
		waiters: make(map[string]chan Response),
	}
	for i := range p.engines {
		p.engines[i] = New(cfg)
	}
	return p
}

// Start launches every engine plus one router goroutine per engine that
// delivers responses to registered waiters. Responses nobody waits for
// anymore (caller gave up, ctx expired) are dropped; late results are
// discarded by correlation id rather than cancelling in-flight work.
func (p *Pool) Start(ctx context.Context) {
	for _, e := range p.engines {
		e.Start(ctx)
		p.wg.Add(1)
		go p.route(e)
	}
}

// Ready returns once every engine has signalled readiness.
func (p *Pool) Ready(ctx context.Context) error {
	for _, e := range p.engines {
		select {
		case <-e.Ready():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Do submits one request and waits for its response. A request without
// a correlation id gets a generated one; the id on the returned
// response always matches what was submitted.
func (p *Pool) Do(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if req.ID == "" {
		req.ID = NewCorrelationID()
	}

	ch := make(chan Response, 1)
	p.mu.Lock()
	if _, exists := p.waiters[req.ID]; exists {
		p.mu.Unlock()
		return Response{}, apperrors.New(apperrors.ErrCodeInvalidRequest,
			"correlation id %q already in flight", req.ID)
	}
	p.waiters[req.ID] = ch
	p.mu.Unlock()

	eng := p.engines[p.pick(req.ID)]
	if err := eng.Submit(ctx, req); err != nil {
		p.forget(req.ID)
		return Response{}, err
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		p.forget(req.ID)
		return Response{}, ctx.Err()
	}
}

// Stop shuts down all engines and waits for the routers to drain.
func (p *Pool) Stop() {
	for _, e := range p.engines {
		e.Stop()
	}
	p.wg.Wait()
}

// route forwards one engine's responses to their waiters.
func (p *Pool) route(e *Engine) {
	defer p.wg.Done()
	for resp := range e.Responses() {
		p.mu.Lock()
		ch, ok := p.waiters[resp.ID]
		if ok {
			delete(p.waiters, resp.ID)
		}
		p.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

func (p *Pool) forget(id string) {
	p.mu.Lock()
	delete(p.waiters, id)
	p.mu.Unlock()
}

// pick hashes a correlation id onto an engine index.
func (p *Pool) pick(id string) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32() % uint32(len(p.engines)))
}
