package kegg

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jmorten/keggpull/pkg/cache"
	kerrors "github.com/jmorten/keggpull/pkg/errors"
	"github.com/jmorten/keggpull/pkg/observability"
)

const organismCacheKey = "set"

// Organisms lazily fetches and memoizes the set of KEGG organism codes and
// T numbers. Database-name validation falls back to this set wherever KEGG
// accepts an <org> value.
//
// The set is populated at most once per Organisms instance (until [Organisms.Reset])
// by a single "list organism" request. An optional [cache.Cache] persists the
// set between processes so repeated CLI runs skip the network.
//
// All methods are safe for concurrent use.
type Organisms struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache

	mu  sync.Mutex
	set map[string]struct{}
}

// NewOrganisms creates an organism set backed by the KEGG REST API at
// baseURL (the production endpoint if empty). Pass a nil store to disable
// persistence; the set is then memoized in memory only.
func NewOrganisms(baseURL string, store *cache.Cache) *Organisms {
	if baseURL == "" {
		baseURL = BaseURL
	}
	o := &Organisms{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	if store != nil {
		o.cache = store.Namespace("organism:")
	}
	return o
}

// Contains reports whether name is a known organism code or T number,
// fetching the organism set first if it has not been loaded yet.
func (o *Organisms) Contains(name string) (bool, error) {
	set, err := o.Set()
	if err != nil {
		return false, err
	}
	_, ok := set[name]
	return ok, nil
}

// Set returns the organism code/T-number set, fetching it from the KEGG REST
// API on first use. Subsequent calls return the memoized set without any
// network activity until Reset is called.
func (o *Organisms) Set() (map[string]struct{}, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.set != nil {
		return o.set, nil
	}

	if o.cache != nil {
		var names []string
		if hit, err := o.cache.Get(organismCacheKey, &names); err == nil && hit {
			observability.Cache().OnCacheHit(context.Background(), "organism")
			o.set = make(map[string]struct{}, len(names))
			for _, n := range names {
				o.set[n] = struct{}{}
			}
			return o.set, nil
		}
		observability.Cache().OnCacheMiss(context.Background(), "organism")
	}

	set, err := o.fetch()
	if err != nil {
		return nil, err
	}
	o.set = set

	if o.cache != nil {
		names := make([]string, 0, len(set))
		for n := range set {
			names = append(names, n)
		}
		_ = o.cache.Set(organismCacheKey, names)
		observability.Cache().OnCacheSet(context.Background(), "organism")
	}
	return o.set, nil
}

// Reset discards the memoized set, forcing the next access to fetch it
// again. The persistent cache entry, if any, is discarded as well.
func (o *Organisms) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.set = nil
	if o.cache != nil {
		_ = o.cache.Delete(organismCacheKey)
	}
}

// fetch performs the "list organism" request and parses each line into its
// T number and organism code (the first two tab-separated fields).
func (o *Organisms) fetch() (map[string]struct{}, error) {
	url := o.baseURL + "/list/organism"

	resp, err := o.client.Get(url)
	if err != nil {
		if isTimeout(err) {
			return nil, kerrors.New(
				kerrors.ErrCodeOrganismLookup,
				"The request to the KEGG web API timed out while fetching the organism set using the URL: %s", url)
		}
		return nil, kerrors.Wrap(
			kerrors.ErrCodeOrganismLookup, err,
			"The request to the KEGG web API failed while fetching the organism set using the URL: %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, kerrors.New(
			kerrors.ErrCodeOrganismLookup,
			"The request to the KEGG web API failed with status code %d while fetching the organism set using the URL: %s",
			resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, kerrors.Wrap(
			kerrors.ErrCodeOrganismLookup, err,
			"The request to the KEGG web API failed while fetching the organism set using the URL: %s", url)
	}

	set := make(map[string]struct{})
	for _, line := range strings.Split(string(body), "\n") {
		fields := strings.Split(strings.TrimSpace(line), "\t")
		if len(fields) < 2 {
			continue
		}
		set[strings.TrimSpace(fields[0])] = struct{}{}
		set[strings.TrimSpace(fields[1])] = struct{}{}
	}
	return set, nil
}

// isTimeout reports whether err is a network timeout, including a client
// timeout surfaced as context.DeadlineExceeded.
func isTimeout(err error) bool {
	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
