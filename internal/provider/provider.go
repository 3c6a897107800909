// Package provider abstracts the external content-generation service
// behind a narrow interface so the orchestration and geometry layers
// can be exercised with deterministic stand-ins.
package provider

// #region imports
import (
	"context"
	"fmt"
)

// #endregion

// #region types

// Request is one generation call: a fully assembled prompt.
type Request struct {
	Prompt string
}

// Response is the raw text payload returned by the service.
type Response struct {
	Text string
}

// Provider is the single blocking call exposed by a generation service.
// Implementations must be safe for concurrent independent calls.
type Provider interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// #endregion types

// #region errors

// TransientError marks a failure worth retrying with backoff: timeouts,
// connectivity, service overload.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient provider error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a failure that retrying cannot fix: bad request,
// unparseable response, non-retryable service error.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent provider error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// #endregion errors
