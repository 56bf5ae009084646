package service

import "fmt"

// ErrorKind classifies terminal pipeline failures
type ErrorKind string

const (
	// KindPipelineExhausted means the retry budget ran out while the
	// generation stage kept producing error-marked output.
	KindPipelineExhausted ErrorKind = "pipeline_exhausted"

	// KindUpstreamUnavailable means a stage itself was unreachable or
	// failed in a way unrelated to query content. Not retried on the
	// backoff schedule; a transport outage gains nothing from it.
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
)

// PipelineError is the structured error surfaced to callers when an
// orchestration fails. Detail carries the last observed error text.
type PipelineError struct {
	Kind      ErrorKind
	Question  string
	SessionID string
	Detail    string
	Err       error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
