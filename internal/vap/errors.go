package vap

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies request failures.
type Kind int

const (
	// KindTransport: the request never got an answer.
	KindTransport Kind = iota + 1
	// KindServer: the backend answered with a non-2xx status.
	KindServer
	// KindMalformed: a 2xx answer whose body did not match the expected schema.
	KindMalformed
	// KindCanceled: the caller gave up on the request.
	KindCanceled
)

const networkErrorMessage = "Network error. Please try again."

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed_response"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the user-facing text of err, or fallback when err carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	return fallback
}

// IsCanceled reports whether err stems from a cancelled request.
func IsCanceled(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == KindCanceled
	}
	return errors.Is(err, context.Canceled)
}

// KindOf returns the failure kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

func transportError(op string, err error) *Error {
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindCanceled, Op: op, Message: "request canceled", Err: err}
	}
	return &Error{Kind: KindTransport, Op: op, Message: networkErrorMessage, Err: err}
}

func malformedError(op string, err error) *Error {
	return &Error{Kind: KindMalformed, Op: op, Message: "Unexpected response from server.", Err: err}
}
