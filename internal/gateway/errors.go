package gateway

import (
	"errors"
	"fmt"
)

// Configuration errors fail fast, before any network call.
var (
	ErrDisabled      = errors.New("payment gateway is disabled")
	ErrMissingSecret = errors.New("payment gateway secret is not configured")
)

// IsConfigError reports whether err is a precondition failure rather than a
// network or provider problem.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrDisabled) || errors.Is(err, ErrMissingSecret)
}

// RejectionError is a hard failure: the provider understood the request and
// refused it. Carries the provider's status code and extractable detail.
type RejectionError struct {
	StatusCode int
	Detail     string
	Candidate  string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("gateway rejected request (status %d): %s", e.StatusCode, e.Detail)
}

// UnparseableError is a hard failure distinct from a rejection: the
// provider answered 2xx but no payment URL could be extracted, which means
// a protocol assumption is wrong.
type UnparseableError struct {
	Candidate string
	Body      string
}

func (e *UnparseableError) Error() string {
	return fmt.Sprintf("gateway returned success without a parseable payment url (candidate %s)", e.Candidate)
}

// ExhaustedError means every candidate soft-failed. For transport "auto"
// this triggers the SOAP fallback instead of surfacing to the caller.
type ExhaustedError struct {
	Transport string
	Last      error
}

func (e *ExhaustedError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("all %s gateway candidates exhausted: %v", e.Transport, e.Last)
	}
	return fmt.Sprintf("all %s gateway candidates exhausted", e.Transport)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
