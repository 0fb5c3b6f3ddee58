package rest

import (
	"github.com/jmorten/keggpull/pkg/kegg"
)

// Status is the outcome of a KEGG request after all tries.
type Status int

const (
	// StatusSuccess means KEGG answered 200 within the allotted tries.
	StatusSuccess Status = iota
	// StatusFailed means KEGG answered with a non-200 status code.
	StatusFailed
	// StatusTimeout means every try timed out.
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailed:
		return "FAILED"
	case StatusTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// Response holds the outcome of a KEGG request. TextBody and BinaryBody are
// only populated when Status is StatusSuccess; BinaryBody always carries the
// raw bytes while TextBody is the body decoded as text.
type Response struct {
	Status     Status
	URL        *kegg.URL
	TextBody   string
	BinaryBody []byte
}

// Succeeded reports whether the request came back with a 200.
func (r *Response) Succeeded() bool { return r.Status == StatusSuccess }
