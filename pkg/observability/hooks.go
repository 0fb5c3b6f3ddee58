// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about KEGG requests, bulk pulls, and cache operations.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRequestHooks(&myRequestHooks{})
//	    observability.SetPullHooks(&myPullHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Request().OnRequest(ctx, url)
//	// ... perform request ...
//	observability.Request().OnResponse(ctx, url, statusCode, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// RequestHooks receives events from KEGG REST request operations.
type RequestHooks interface {
	// OnRequest records an outgoing KEGG request.
	OnRequest(ctx context.Context, url string)

	// OnResponse records a KEGG response.
	OnResponse(ctx context.Context, url string, statusCode int, duration time.Duration)

	// OnRetry records a retry after a failed or timed-out try.
	OnRetry(ctx context.Context, url string, try int)

	// OnError records a network failure or timeout.
	OnError(ctx context.Context, url string, err error)
}

// PullHooks receives events from bulk pull operations.
type PullHooks interface {
	// OnGroupStart records the start of a pull for one group of entry IDs.
	OnGroupStart(ctx context.Context, entryIDs []string)

	// OnGroupComplete records the completion of one group along with the
	// running totals of successful and unsuccessful entry IDs.
	OnGroupComplete(ctx context.Context, successful, unsuccessful int)

	// OnAbort records a pull aborted by the unsuccessful threshold.
	OnAbort(ctx context.Context, threshold float64, remaining int)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string)
}

// NoopRequestHooks is a no-op implementation of RequestHooks.
type NoopRequestHooks struct{}

func (NoopRequestHooks) OnRequest(context.Context, string)                      {}
func (NoopRequestHooks) OnResponse(context.Context, string, int, time.Duration) {}
func (NoopRequestHooks) OnRetry(context.Context, string, int)                   {}
func (NoopRequestHooks) OnError(context.Context, string, error)                 {}

// NoopPullHooks is a no-op implementation of PullHooks.
type NoopPullHooks struct{}

func (NoopPullHooks) OnGroupStart(context.Context, []string)    {}
func (NoopPullHooks) OnGroupComplete(context.Context, int, int) {}
func (NoopPullHooks) OnAbort(context.Context, float64, int)     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}
func (NoopCacheHooks) OnCacheSet(context.Context, string)  {}

var (
	requestHooks RequestHooks = NoopRequestHooks{}
	pullHooks    PullHooks    = NoopPullHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetRequestHooks registers custom request hooks.
// This should be called once at application startup before any requests.
func SetRequestHooks(h RequestHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		requestHooks = h
	}
}

// SetPullHooks registers custom pull hooks.
// This should be called once at application startup before any pulls.
func SetPullHooks(h PullHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pullHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Request returns the registered request hooks.
func Request() RequestHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return requestHooks
}

// Pull returns the registered pull hooks.
func Pull() PullHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pullHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	requestHooks = NoopRequestHooks{}
	pullHooks = NoopPullHooks{}
	cacheHooks = NoopCacheHooks{}
}
