package pull

import (
	"context"
	"runtime"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
	"github.com/jmorten/keggpull/pkg/kegg"
	"github.com/jmorten/keggpull/pkg/observability"
)

// AbortError reports that the unsuccessful threshold tripped mid-pull. It
// carries the partial result and the entry IDs that were never pulled so the
// caller can persist them.
type AbortError struct {
	Threshold float64
	Result    *Result
	Remaining []string
}

func (e *AbortError) Error() string {
	return "Unsuccessful threshold of " + formatThreshold(e.Threshold) + " met. Aborting."
}

// Report summarizes the aborted pull for aborted-pull-results.json.
func (e *AbortError) Report() AbortReport {
	return AbortReport{
		NumRemaining:  len(e.Remaining),
		NumSuccessful: len(e.Result.Successful),
		NumFailed:     len(e.Result.Failed),
		NumTimedOut:   len(e.Result.TimedOut),
		RemainingIDs:  emptyIfNil(e.Remaining),
		SuccessfulIDs: emptyIfNil(e.Result.Successful),
		FailedIDs:     emptyIfNil(e.Result.Failed),
		TimedOutIDs:   emptyIfNil(e.Result.TimedOut),
	}
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Multiple pulls an arbitrary list of entry IDs by grouping them into
// batches and running a SinglePull per batch.
type Multiple struct {
	single           *SinglePull
	logger           *log.Logger
	forceSingleEntry bool
	threshold        float64
	workers          int
}

// MultipleOption configures a Multiple pull.
type MultipleOption func(*Multiple)

// WithForceSingleEntry pulls one entry per request regardless of the entry
// field. Needed for brite entries, which KEGG cannot batch.
func WithForceSingleEntry(force bool) MultipleOption {
	return func(m *Multiple) { m.forceSingleEntry = force }
}

// WithUnsuccessfulThreshold aborts the pull once the ratio of failed plus
// timed-out entry IDs to total entry IDs reaches threshold. Zero disables
// the check; other values must be strictly between 0 and 1.
func WithUnsuccessfulThreshold(threshold float64) MultipleOption {
	return func(m *Multiple) { m.threshold = threshold }
}

// WithWorkers pulls batches concurrently across n workers. Zero or one
// keeps the pull sequential; a negative value uses one worker per CPU.
func WithWorkers(n int) MultipleOption {
	return func(m *Multiple) {
		if n < 0 {
			n = runtime.NumCPU()
		}
		m.workers = n
	}
}

// WithMultipleLogger sets the logger for progress and abort messages.
func WithMultipleLogger(l *log.Logger) MultipleOption {
	return func(m *Multiple) { m.logger = l }
}

// NewMultiple creates a grouped puller around single.
func NewMultiple(single *SinglePull, opts ...MultipleOption) (*Multiple, error) {
	m := &Multiple{single: single, logger: log.Default()}
	for _, opt := range opts {
		opt(m)
	}
	if m.threshold != 0 && (m.threshold <= 0 || m.threshold >= 1) {
		return nil, kerrors.New(kerrors.ErrCodeInvalidThreshold,
			"Unsuccessful threshold of %s is out of range. Valid values are within 0.0 and 1.0, non-inclusive",
			formatThreshold(m.threshold))
	}
	return m, nil
}

// Pull fetches every entry in entryIDs. Batches run sequentially, or
// concurrently when workers were configured; with workers the merge order of
// batch results follows completion and is not deterministic.
//
// When the unsuccessful threshold trips, the returned error is an
// [*AbortError] holding the partial result and the remaining entry IDs.
func (m *Multiple) Pull(ctx context.Context, entryIDs []string) (*Result, error) {
	if len(entryIDs) == 0 {
		return nil, kerrors.New(kerrors.ErrCodeInvalidInput, "no entry IDs provided to pull")
	}
	groups := m.groupEntryIDs(entryIDs)
	if m.workers > 1 && len(groups) > 1 {
		return m.pullConcurrently(ctx, entryIDs, groups)
	}
	return m.pullSequentially(ctx, entryIDs, groups)
}

// groupEntryIDs slices the entry ID list into get-URL sized batches: one
// entry per batch when forced or when the entry field only supports single
// entries, ten otherwise.
func (m *Multiple) groupEntryIDs(entryIDs []string) [][]string {
	size := kegg.MaxEntryIDsPerURL
	if m.forceSingleEntry || kegg.CanOnlyPullOneEntry(m.single.EntryField) {
		size = 1
	}
	var groups [][]string
	for start := 0; start < len(entryIDs); start += size {
		end := start + size
		if end > len(entryIDs) {
			end = len(entryIDs)
		}
		groups = append(groups, entryIDs[start:end])
	}
	return groups
}

func (m *Multiple) pullSequentially(ctx context.Context, entryIDs []string, groups [][]string) (*Result, error) {
	result := &Result{}
	for _, group := range groups {
		observability.Pull().OnGroupStart(ctx, group)
		groupResult, err := m.single.Pull(ctx, group)
		if err != nil {
			return result, err
		}
		result.Merge(groupResult)
		observability.Pull().OnGroupComplete(ctx, len(result.Successful), result.Unsuccessful())
		if m.thresholdMet(result, len(entryIDs)) {
			return result, m.abort(ctx, result, entryIDs)
		}
	}
	return result, nil
}

func (m *Multiple) pullConcurrently(ctx context.Context, entryIDs []string, groups [][]string) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		result *Result
		err    error
	}

	jobs := make(chan []string)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < m.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range jobs {
				observability.Pull().OnGroupStart(ctx, group)
				groupResult, err := m.single.Pull(ctx, group)
				select {
				case outcomes <- outcome{result: groupResult, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, group := range groups {
			select {
			case jobs <- group:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	result := &Result{}
	var pullErr error
	aborted := false
	for out := range outcomes {
		if pullErr != nil || aborted {
			continue
		}
		if out.err != nil {
			pullErr = out.err
			cancel()
			continue
		}
		result.Merge(out.result)
		observability.Pull().OnGroupComplete(ctx, len(result.Successful), result.Unsuccessful())
		if m.thresholdMet(result, len(entryIDs)) {
			aborted = true
			cancel()
		}
	}
	if pullErr != nil {
		return result, pullErr
	}
	if aborted {
		return result, m.abort(ctx, result, entryIDs)
	}
	return result, nil
}

func (m *Multiple) thresholdMet(result *Result, total int) bool {
	if m.threshold == 0 || total == 0 {
		return false
	}
	return float64(result.Unsuccessful())/float64(total) >= m.threshold
}

// abort builds the AbortError with the entry IDs the pull never recorded,
// in their original order.
func (m *Multiple) abort(ctx context.Context, result *Result, entryIDs []string) *AbortError {
	recorded := make(map[string]struct{}, result.Total())
	for _, ids := range [][]string{result.Successful, result.Failed, result.TimedOut} {
		for _, id := range ids {
			recorded[id] = struct{}{}
		}
	}
	var remaining []string
	for _, id := range entryIDs {
		if _, ok := recorded[id]; !ok {
			remaining = append(remaining, id)
		}
	}
	m.logger.Error("unsuccessful pulls reached the abort threshold",
		"threshold", m.threshold, "unsuccessful", result.Unsuccessful(), "total", len(entryIDs))
	observability.Pull().OnAbort(ctx, m.threshold, len(remaining))
	return &AbortError{Threshold: m.threshold, Result: result, Remaining: remaining}
}
