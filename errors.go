package viztools

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession          = errors.New("no session has been created")
	ErrMissingConfigID    = errors.New("configuration id must not be empty")
	ErrUnsupportedMethod  = errors.New("unsupported http method")
	ErrMalformedResponse  = errors.New("malformed response body")
	ErrResourceNotRunning = errors.New("failed to get resource running")
)

// ConnectivityError is returned when the remote endpoint could not be reached
// or answered 502.
type ConnectivityError struct {
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf(
		"failed to connect to application at %s (did you start it with the --zeroeq-http-server option?): %s",
		e.URL,
		e.Err,
	)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// AllocationError is returned when a managed session could not be brought to
// the running state.
type AllocationError struct {
	Stage string
	Err   error
}

func NewAllocationError(stage string, err error) *AllocationError {
	return &AllocationError{Stage: stage, Err: err}
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocation failed during %s: %s", e.Stage, e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// RemoteFailure is returned when the remote side answered with a server error.
// The session has already been released by the time it is returned.
type RemoteFailure struct {
	Code     int
	Contents interface{}
}

func (e *RemoteFailure) Error() string {
	return fmt.Sprintf("remote failure (status %d): %v", e.Code, e.Contents)
}

// UnexpectedStatusError describes a negative result that a caller could not
// proceed with.
type UnexpectedStatusError struct {
	Expected int
	Result   Result
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("expected status %d, got %d: %s", e.Expected, e.Result.Code, e.Result.Text())
}
