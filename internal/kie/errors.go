package kie

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingAPIKey indicates a call was attempted without a credential. It is
// raised before any network traffic so callers can surface it as a
// configuration problem rather than a gateway outage.
var ErrMissingAPIKey = errors.New("kie: api key is required")

// AllCandidatesFailedError reports that every URL in a candidate list was
// tried and none answered successfully.
type AllCandidatesFailedError struct {
	Op   string
	URLs []string
}

func (e *AllCandidatesFailedError) Error() string {
	return fmt.Sprintf("kie: %s: all endpoint candidates failed: [%s]", e.Op, strings.Join(e.URLs, ", "))
}

// UpstreamError carries a failure the gateway itself reported, either as a
// non-success HTTP status or as an explicit failed task state.
type UpstreamError struct {
	Op      string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("kie: %s failed (%d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("kie: %s failed: %s", e.Op, e.Message)
}

// MalformedResponseError reports a successful HTTP exchange whose body held
// none of the expected fields. Body is kept verbatim for diagnostics.
type MalformedResponseError struct {
	Op   string
	Body []byte
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("kie: %s: unexpected response shape: %s", e.Op, string(e.Body))
}

// TimeoutError reports that a poll loop exceeded its wall-clock budget. It is
// distinct from a per-request timeout, which merely advances the prober to
// the next candidate.
type TimeoutError struct {
	Op      string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("kie: %s timed out after %ds", e.Op, int(e.Elapsed.Seconds()))
}
