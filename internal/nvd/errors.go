// Package nvd implements the rate-limited, cached, resumable bulk-fetch client
// for the NVD CVE 2.0 REST API.
package nvd

import (
	"errors"
	"fmt"
)

// ErrRateLimited is returned when the NVD API answers with HTTP 429. The call
// is never retried internally; the operator must back off or add an API key.
var ErrRateLimited = errors.New("nvd: rate limit exceeded (HTTP 429)")

// TransportError wraps network and timeout failures of a single request.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("nvd: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a non-2xx, non-429 response from the NVD API.
type UpstreamError struct {
	StatusCode int
	Detail     string
}

func (e *UpstreamError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("nvd: upstream returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("nvd: upstream returned HTTP %d: %s", e.StatusCode, e.Detail)
}

// FormatError reports a persisted file (bulk export) whose structure is not
// the expected document shape.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("nvd: malformed file %s: %s", e.Path, e.Reason)
}
