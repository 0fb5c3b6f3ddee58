// Package rest executes validated KEGG URLs with retries and exposes typed
// helpers mirroring the KEGG REST operations.
//
// A request is tried up to a configured number of times. A 200 answer
// succeeds immediately; a non-200 answer is retried without sleeping and a
// timeout is retried after an optional sleep. Once the tries are exhausted
// the last recorded status is returned. The outcome is a tri-state
// [Response] rather than an error, so callers can distinguish a KEGG-side
// failure from a timeout without unwrapping anything.
package rest

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
	"github.com/jmorten/keggpull/pkg/kegg"
	"github.com/jmorten/keggpull/pkg/observability"
)

const (
	// DefaultTries is how many times a request is attempted before giving
	// up with the last recorded status.
	DefaultTries = 3
	// DefaultTimeout bounds each individual try.
	DefaultTimeout = 60 * time.Second
)

// Client makes KEGG REST requests. Create one with NewClient; the zero value
// is not usable.
type Client struct {
	builder *kegg.Builder
	http    *http.Client
	logger  *log.Logger
	tries   int
	timeout time.Duration
	sleep   time.Duration

	// sleeper waits between timed-out tries; replaced in tests.
	sleeper func(context.Context, time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithTries sets how many times a request is attempted. Values below 1 make
// NewClient fail.
func WithTries(n int) Option {
	return func(c *Client) { c.tries = n }
}

// WithTimeout bounds each individual try.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithSleep sets how long to wait after a timed-out try before the next one.
func WithSleep(d time.Duration) Option {
	return func(c *Client) { c.sleep = d }
}

// WithBuilder sets the URL builder, which also determines the base URL.
func WithBuilder(b *kegg.Builder) Option {
	return func(c *Client) { c.builder = b }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client with the given options. Without options it
// targets the production KEGG endpoint with 3 tries, a 60 second timeout per
// try, and no sleep between tries.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		tries:   DefaultTries,
		timeout: DefaultTimeout,
		logger:  log.Default(),
		sleeper: sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tries < 1 {
		return nil, kerrors.New(kerrors.ErrCodeInvalidTries,
			"%d is not a valid number of tries to make a KEGG request.", c.tries)
	}
	if c.builder == nil {
		c.builder = kegg.NewBuilder("", nil, c.logger)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c, nil
}

// Builder returns the URL builder the client requests against.
func (c *Client) Builder() *kegg.Builder { return c.builder }

// Request performs a GET for the given URL, retrying failed and timed-out
// tries until one succeeds or the tries are exhausted. The returned error is
// non-nil only for transport failures or context cancellation; KEGG-side
// failures and timeouts come back as StatusFailed and StatusTimeout
// responses carrying the last try's status.
func (c *Client) Request(ctx context.Context, u *kegg.URL) (*Response, error) {
	return c.do(ctx, http.MethodGet, u)
}

// Test reports whether KEGG answers the URL with a 200, using a HEAD request
// so no body is transferred. Timed-out tries count as a negative answer.
func (c *Client) Test(ctx context.Context, u *kegg.URL) (bool, error) {
	resp, err := c.do(ctx, http.MethodHead, u)
	if err != nil {
		return false, err
	}
	return resp.Succeeded(), nil
}

func (c *Client) do(ctx context.Context, method string, u *kegg.URL) (*Response, error) {
	last := &Response{Status: StatusTimeout, URL: u}
	for try := 1; try <= c.tries; try++ {
		resp, timedOut, err := c.once(ctx, method, u)
		if err != nil {
			return nil, err
		}
		if timedOut {
			last = &Response{Status: StatusTimeout, URL: u}
		} else {
			if resp.Succeeded() {
				return resp, nil
			}
			last = resp
		}
		if try < c.tries {
			observability.Request().OnRetry(ctx, u.String(), try)
			if timedOut {
				c.logger.Warn("KEGG request timed out, retrying",
					"url", u.String(), "try", try, "tries", c.tries)
				// Only timed-out tries sleep before the next one.
				if err := c.sleeper(ctx, c.sleep); err != nil {
					return nil, err
				}
			} else {
				c.logger.Warn("KEGG request failed, retrying",
					"url", u.String(), "try", try, "tries", c.tries)
			}
		}
	}
	return last, nil
}

// once performs a single try. timedOut distinguishes a retryable timeout
// from a terminal outcome.
func (c *Client) once(ctx context.Context, method string, u *kegg.URL) (resp *Response, timedOut bool, err error) {
	tryCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(tryCtx, method, u.String(), nil)
	if err != nil {
		return nil, false, kerrors.Wrap(kerrors.ErrCodeInternal, err, "building request for %s", u.String())
	}

	observability.Request().OnRequest(ctx, u.String())
	start := time.Now()
	httpResp, err := c.http.Do(req)
	if err != nil {
		observability.Request().OnError(ctx, u.String(), err)
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		if isTimeoutErr(err) {
			return nil, true, nil
		}
		return nil, false, kerrors.Wrap(kerrors.ErrCodeRequestFailed, err,
			"the KEGG request failed for the URL: %s", u.String())
	}
	defer httpResp.Body.Close()
	observability.Request().OnResponse(ctx, u.String(), httpResp.StatusCode, time.Since(start))

	if httpResp.StatusCode != http.StatusOK {
		return &Response{Status: StatusFailed, URL: u}, false, nil
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		if isTimeoutErr(err) {
			return nil, true, nil
		}
		return nil, false, kerrors.Wrap(kerrors.ErrCodeRequestFailed, err,
			"reading the KEGG response body for the URL: %s", u.String())
	}
	if len(body) == 0 && method != http.MethodHead {
		return nil, false, kerrors.New(kerrors.ErrCodeInternal,
			"a success status requires a response body for the URL: %s", u.String())
	}
	return &Response{
		Status:     StatusSuccess,
		URL:        u,
		TextBody:   string(body),
		BinaryBody: body,
	}, false, nil
}

// List requests all entries of a database.
func (c *Client) List(ctx context.Context, database string) (*Response, error) {
	return c.build(ctx, func() (*kegg.URL, error) { return c.builder.List(database) })
}

// Info requests a database's metadata.
func (c *Client) Info(ctx context.Context, database string) (*Response, error) {
	return c.build(ctx, func() (*kegg.URL, error) { return c.builder.Info(database) })
}

// Get requests up to ten KEGG entries, optionally in a specific entry field
// format.
func (c *Client) Get(ctx context.Context, entryIDs []string, entryField string) (*Response, error) {
	return c.build(ctx, func() (*kegg.URL, error) { return c.builder.Get(entryIDs, entryField) })
}

// KeywordsFind searches a database's entries by keywords.
func (c *Client) KeywordsFind(ctx context.Context, database string, keywords []string) (*Response, error) {
	return c.build(ctx, func() (*kegg.URL, error) { return c.builder.KeywordsFind(database, keywords) })
}

// MolecularFind searches the compound or drug database by one molecular
// attribute.
func (c *Client) MolecularFind(ctx context.Context, database string, query kegg.MolecularFindQuery) (*Response, error) {
	return c.build(ctx, func() (*kegg.URL, error) { return c.builder.MolecularFind(database, query) })
}

// DatabaseConv converts all entry IDs between a KEGG database and an outside
// database.
func (c *Client) DatabaseConv(ctx context.Context, keggDatabase, outsideDatabase string) (*Response, error) {
	return c.build(ctx, func() (*kegg.URL, error) { return c.builder.DatabaseConv(keggDatabase, outsideDatabase) })
}

// EntriesConv converts specific entry IDs to their equivalents in the target
// database.
func (c *Client) EntriesConv(ctx context.Context, targetDatabase string, entryIDs []string) (*Response, error) {
	return c.build(ctx, func() (*kegg.URL, error) { return c.builder.EntriesConv(targetDatabase, entryIDs) })
}

// DatabaseLink cross-references all entries of the source database against
// the target database.
func (c *Client) DatabaseLink(ctx context.Context, targetDatabase, sourceDatabase string) (*Response, error) {
	return c.build(ctx, func() (*kegg.URL, error) { return c.builder.DatabaseLink(targetDatabase, sourceDatabase) })
}

// EntriesLink cross-references specific entry IDs against the target
// database.
func (c *Client) EntriesLink(ctx context.Context, targetDatabase string, entryIDs []string) (*Response, error) {
	return c.build(ctx, func() (*kegg.URL, error) { return c.builder.EntriesLink(targetDatabase, entryIDs) })
}

// Ddi reports drug-drug interactions for the given drug entry IDs.
func (c *Client) Ddi(ctx context.Context, drugEntryIDs []string) (*Response, error) {
	return c.build(ctx, func() (*kegg.URL, error) { return c.builder.Ddi(drugEntryIDs) })
}

func (c *Client) build(ctx context.Context, build func() (*kegg.URL, error)) (*Response, error) {
	u, err := build()
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, u)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isTimeoutErr reports whether err is a network timeout, including the
// per-try deadline surfacing as context.DeadlineExceeded.
func isTimeoutErr(err error) bool {
	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
