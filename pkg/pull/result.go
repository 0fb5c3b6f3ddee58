package pull

import (
	"math"

	"github.com/jmorten/keggpull/pkg/rest"
)

// Result collects the entry IDs that ended in each request status over one
// or more pulls.
type Result struct {
	Successful []string
	Failed     []string
	TimedOut   []string
}

// Add records entryIDs under the given status.
func (r *Result) Add(status rest.Status, entryIDs ...string) {
	switch status {
	case rest.StatusSuccess:
		r.Successful = append(r.Successful, entryIDs...)
	case rest.StatusFailed:
		r.Failed = append(r.Failed, entryIDs...)
	default:
		r.TimedOut = append(r.TimedOut, entryIDs...)
	}
}

// Merge appends other's entry IDs to r, preserving order.
func (r *Result) Merge(other *Result) {
	r.Successful = append(r.Successful, other.Successful...)
	r.Failed = append(r.Failed, other.Failed...)
	r.TimedOut = append(r.TimedOut, other.TimedOut...)
}

// Total is the number of entry IDs across all three outcomes.
func (r *Result) Total() int {
	return len(r.Successful) + len(r.Failed) + len(r.TimedOut)
}

// Unsuccessful is the number of failed plus timed-out entry IDs.
func (r *Result) Unsuccessful() int {
	return len(r.Failed) + len(r.TimedOut)
}

// Report is the JSON summary of a completed multiple pull, written by the
// CLI as pull-results.json.
type Report struct {
	PercentSuccess float64  `json:"percent-success"`
	PullMinutes    float64  `json:"pull-minutes"`
	NumSuccessful  int      `json:"num-successful"`
	NumFailed      int      `json:"num-failed"`
	NumTimedOut    int      `json:"num-timed-out"`
	NumTotal       int      `json:"num-total"`
	SuccessfulIDs  []string `json:"successful-entry-ids"`
	FailedIDs      []string `json:"failed-entry-ids"`
	TimedOutIDs    []string `json:"timed-out-entry-ids"`
}

// NewReport summarizes a pull that took minutes to complete. Percentages are
// rounded to two decimal places.
func NewReport(r *Result, minutes float64) Report {
	var percent float64
	if total := r.Total(); total > 0 {
		percent = float64(len(r.Successful)) / float64(total) * 100
	}
	return Report{
		PercentSuccess: round2(percent),
		PullMinutes:    round2(minutes),
		NumSuccessful:  len(r.Successful),
		NumFailed:      len(r.Failed),
		NumTimedOut:    len(r.TimedOut),
		NumTotal:       r.Total(),
		SuccessfulIDs:  emptyIfNil(r.Successful),
		FailedIDs:      emptyIfNil(r.Failed),
		TimedOutIDs:    emptyIfNil(r.TimedOut),
	}
}

// AbortReport is the JSON summary written as aborted-pull-results.json when
// the unsuccessful threshold trips mid-pull.
type AbortReport struct {
	NumRemaining  int      `json:"num-remaining-entry-ids"`
	NumSuccessful int      `json:"num-successful"`
	NumFailed     int      `json:"num-failed"`
	NumTimedOut   int      `json:"num-timed-out"`
	RemainingIDs  []string `json:"remaining-entry-ids"`
	SuccessfulIDs []string `json:"successful-entry-ids"`
	FailedIDs     []string `json:"failed-entry-ids"`
	TimedOutIDs   []string `json:"timed-out-entry-ids"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
