// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup to receive events about engine requests and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach avoids import cycles (hooks are registered by main, not
// by libraries) and keeps the core library dependency-free from
// observability frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
package observability

import (
	"context"
	"sync"
	"time"
)

// EngineHooks receives events from the execution boundary.
type EngineHooks interface {
	// OnRequestStart records a request entering the worker, with its
	// operation name and batch size.
	OnRequestStart(ctx context.Context, op string, events int)

	// OnRequestComplete records a finished request. err is nil on
	// success; rejected counts records dropped by local recovery.
	OnRequestComplete(ctx context.Context, op string, duration time.Duration, rejected int, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// noopEngineHooks is the default no-op implementation.
type noopEngineHooks struct{}

func (noopEngineHooks) OnRequestStart(context.Context, string, int) {}
func (noopEngineHooks) OnRequestComplete(context.Context, string, time.Duration, int, error) {
}

// noopCacheHooks is the default no-op implementation.
type noopCacheHooks struct{}

func (noopCacheHooks) OnCacheHit(context.Context, string)      {}
func (noopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (noopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	mu          sync.RWMutex
	engineHooks EngineHooks = noopEngineHooks{}
	cacheHooks  CacheHooks  = noopCacheHooks{}
)

// SetEngineHooks registers engine instrumentation. Pass nil to restore
// the no-op default. Call at startup, before engines start.
func SetEngineHooks(h EngineHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		engineHooks = noopEngineHooks{}
		return
	}
	engineHooks = h
}

// SetCacheHooks registers cache instrumentation. Pass nil to restore
// the no-op default.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		cacheHooks = noopCacheHooks{}
		return
	}
	cacheHooks = h
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return engineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}
