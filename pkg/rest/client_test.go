package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
	"github.com/jmorten/keggpull/pkg/kegg"
)

// testServer answers "list organism" for builder validation and dispatches
// everything else to handler.
func testServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/list/organism" {
			fmt.Fprint(w, "T01001\thsa\tHomo sapiens (human)\tEukaryotes;Animals\n")
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func testClient(t *testing.T, server *httptest.Server, opts ...Option) *Client {
	t.Helper()
	builder := kegg.NewBuilder(server.URL, nil, nil)
	c, err := NewClient(append([]Option{WithBuilder(builder)}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestNewClient_InvalidTries(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := NewClient(WithTries(n))
		if err == nil {
			t.Fatalf("expected an error for %d tries", n)
		}
		if !kerrors.Is(err, kerrors.ErrCodeInvalidTries) {
			t.Errorf("expected INVALID_TRIES code, got %q", kerrors.GetCode(err))
		}
		want := fmt.Sprintf("%d is not a valid number of tries to make a KEGG request.", n)
		if got := kerrors.UserMessage(err); got != want {
			t.Errorf("message mismatch\n got: %s\nwant: %s", got, want)
		}
	}
}

func TestClient_Success(t *testing.T) {
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get/cpd:C00001" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, "ENTRY       C00001\n///\n")
	})
	c := testClient(t, server)

	resp, err := c.Get(context.Background(), []string{"cpd:C00001"}, "")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.Status != StatusSuccess || !resp.Succeeded() {
		t.Errorf("expected SUCCESS, got %s", resp.Status)
	}
	if resp.TextBody != "ENTRY       C00001\n///\n" {
		t.Errorf("unexpected body %q", resp.TextBody)
	}
	if string(resp.BinaryBody) != resp.TextBody {
		t.Error("binary body should carry the same bytes")
	}
	if resp.URL.Operation() != kegg.OpGet {
		t.Errorf("unexpected operation on response URL")
	}
}

func TestClient_FailedAfterAllTries(t *testing.T) {
	var requests atomic.Int32
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})
	c := testClient(t, server, WithTries(3))

	resp, err := c.List(context.Background(), "pathway")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Status != StatusFailed {
		t.Errorf("expected FAILED, got %s", resp.Status)
	}
	if resp.TextBody != "" || resp.BinaryBody != nil {
		t.Error("a failed response must not carry a body")
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("a non-200 answer must be retried until the tries are exhausted, got %d requests", n)
	}
}

func TestClient_RecoversAfterFailure(t *testing.T) {
	var requests atomic.Int32
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "ok")
	})
	c := testClient(t, server, WithTries(3))

	resp, err := c.List(context.Background(), "pathway")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Status != StatusSuccess || resp.TextBody != "ok" {
		t.Errorf("expected SUCCESS on the third try, got %s %q", resp.Status, resp.TextBody)
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("expected 3 requests, got %d", n)
	}
}

func TestClient_FailedRetriesDoNotSleep(t *testing.T) {
	var requests atomic.Int32
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})
	c := testClient(t, server, WithTries(3), WithSleep(time.Hour))

	sleeps := 0
	c.sleeper = func(context.Context, time.Duration) error {
		sleeps++
		return nil
	}

	resp, err := c.List(context.Background(), "pathway")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Status != StatusFailed {
		t.Errorf("expected FAILED, got %s", resp.Status)
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("expected 3 requests, got %d", n)
	}
	if sleeps != 0 {
		t.Errorf("failed retries must not sleep, got %d sleeps", sleeps)
	}
}

func TestClient_TimeoutRetriesSleep(t *testing.T) {
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	})
	c := testClient(t, server, WithTries(3), WithTimeout(10*time.Millisecond), WithSleep(time.Second))

	sleeps := 0
	c.sleeper = func(context.Context, time.Duration) error {
		sleeps++
		return nil
	}

	resp, err := c.Info(context.Background(), "kegg")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if resp.Status != StatusTimeout {
		t.Errorf("expected TIMEOUT, got %s", resp.Status)
	}
	if sleeps != 2 {
		t.Errorf("expected a sleep between each timed-out try, got %d sleeps", sleeps)
	}
}

func TestClient_TimeoutAfterAllTries(t *testing.T) {
	var requests atomic.Int32
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		time.Sleep(100 * time.Millisecond)
	})
	c := testClient(t, server, WithTries(3), WithTimeout(10*time.Millisecond))

	resp, err := c.Info(context.Background(), "kegg")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if resp.Status != StatusTimeout {
		t.Errorf("expected TIMEOUT, got %s", resp.Status)
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("expected 3 tries, got %d", n)
	}
}

func TestClient_RecoversAfterTimeout(t *testing.T) {
	var requests atomic.Int32
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			time.Sleep(100 * time.Millisecond)
			return
		}
		fmt.Fprint(w, "ok")
	})
	c := testClient(t, server, WithTries(2), WithTimeout(50*time.Millisecond))

	resp, err := c.List(context.Background(), "ko")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Status != StatusSuccess || resp.TextBody != "ok" {
		t.Errorf("expected recovery on the second try, got %s %q", resp.Status, resp.TextBody)
	}
}

func TestClient_EmptySuccessBodyRejected(t *testing.T) {
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	c := testClient(t, server)

	_, err := c.List(context.Background(), "pathway")
	if err == nil {
		t.Fatal("expected an error for a 200 answer without a body")
	}
	if !kerrors.Is(err, kerrors.ErrCodeInternal) {
		t.Errorf("expected INTERNAL_ERROR code, got %q", kerrors.GetCode(err))
	}
}

func TestClient_InvalidURLShortCircuits(t *testing.T) {
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an invalid URL")
	})
	c := testClient(t, server)

	_, err := c.Get(context.Background(), nil, "")
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !kerrors.Is(err, kerrors.ErrCodeInvalidURL) {
		t.Errorf("expected INVALID_URL code, got %q", kerrors.GetCode(err))
	}
}

func TestClient_Test(t *testing.T) {
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		if r.URL.Path == "/info/kegg" {
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	})
	c := testClient(t, server)

	good, err := c.Builder().Info("kegg")
	if err != nil {
		t.Fatalf("Info URL failed: %v", err)
	}
	ok, err := c.Test(context.Background(), good)
	if err != nil || !ok {
		t.Errorf("Test(info/kegg) = %v, %v", ok, err)
	}

	bad, err := c.Builder().Info("pathway")
	if err != nil {
		t.Fatalf("Info URL failed: %v", err)
	}
	ok, err = c.Test(context.Background(), bad)
	if err != nil || ok {
		t.Errorf("Test(info/pathway) = %v, %v; want false", ok, err)
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	server := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	c := testClient(t, server, WithTries(1))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.List(ctx, "module")
	if err == nil {
		t.Fatal("expected an error after cancellation")
	}
}

func TestStatus_String(t *testing.T) {
	for status, want := range map[Status]string{
		StatusSuccess: "SUCCESS",
		StatusFailed:  "FAILED",
		StatusTimeout: "TIMEOUT",
		Status(42):    "UNKNOWN",
	} {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}
