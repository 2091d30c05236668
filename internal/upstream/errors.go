// Package upstream defines the shared result taxonomy for batch fetches
// against external aviation data services. Every requested airport maps
// to exactly one of three outcomes: data, no data, or error.
package upstream

import "fmt"

// Status classifies the per-airport outcome of a batch fetch.
type Status string

const (
	// StatusOK means the upstream service returned data for the airport.
	StatusOK Status = "ok"
	// StatusNoData means the request succeeded but the airport was absent
	// from the response (e.g. no active TAF). This is not a failure.
	StatusNoData Status = "no_data"
	// StatusError means the whole batch failed and no data can be trusted.
	StatusError Status = "error"
)

// ErrorKind identifies the failure mode of a batch fetch.
type ErrorKind string

const (
	KindNetwork     ErrorKind = "network"
	KindTimeout     ErrorKind = "timeout"
	KindBadResponse ErrorKind = "bad_response"
)

// Error is a batch-level fetch failure. It applies uniformly to every
// airport requested in the batch.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a batch fetch error of the given kind.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
