package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopRequestHooks{}
	r.OnRequest(ctx, "https://rest.kegg.jp/list/pathway")
	r.OnResponse(ctx, "https://rest.kegg.jp/list/pathway", 200, time.Second)
	r.OnRetry(ctx, "https://rest.kegg.jp/list/pathway", 2)
	r.OnError(ctx, "https://rest.kegg.jp/list/pathway", context.DeadlineExceeded)

	p := NoopPullHooks{}
	p.OnGroupStart(ctx, []string{"hsa:1", "hsa:2"})
	p.OnGroupComplete(ctx, 10, 1)
	p.OnAbort(ctx, 0.5, 20)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "organism")
	c.OnCacheMiss(ctx, "organism")
	c.OnCacheSet(ctx, "organism")
}

type recordingRequestHooks struct {
	requests  int
	responses int
	retries   int
	errors    int
}

func (h *recordingRequestHooks) OnRequest(context.Context, string) { h.requests++ }
func (h *recordingRequestHooks) OnResponse(context.Context, string, int, time.Duration) {
	h.responses++
}
func (h *recordingRequestHooks) OnRetry(context.Context, string, int) { h.retries++ }
func (h *recordingRequestHooks) OnError(context.Context, string, error) {
	h.errors++
}

func TestSetAndResetHooks(t *testing.T) {
	defer Reset()

	recorder := &recordingRequestHooks{}
	SetRequestHooks(recorder)

	Request().OnRequest(context.Background(), "https://rest.kegg.jp/info/kegg")
	Request().OnResponse(context.Background(), "https://rest.kegg.jp/info/kegg", 200, time.Millisecond)
	if recorder.requests != 1 || recorder.responses != 1 {
		t.Errorf("recorded %d requests and %d responses, want 1 and 1", recorder.requests, recorder.responses)
	}

	Reset()
	if _, ok := Request().(NoopRequestHooks); !ok {
		t.Error("Reset did not restore the no-op request hooks")
	}
}

func TestSetHooks_NilIgnored(t *testing.T) {
	defer Reset()

	SetRequestHooks(nil)
	if _, ok := Request().(NoopRequestHooks); !ok {
		t.Error("nil registration replaced the no-op request hooks")
	}
	SetPullHooks(nil)
	if _, ok := Pull().(NoopPullHooks); !ok {
		t.Error("nil registration replaced the no-op pull hooks")
	}
	SetCacheHooks(nil)
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("nil registration replaced the no-op cache hooks")
	}
}
