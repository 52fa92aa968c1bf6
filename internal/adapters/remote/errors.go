package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport wraps network and timeout failures.
	ErrTransport = errors.New("transport failure")
	// ErrHTTPStatus marks a non-2xx response; the concrete error is *HTTPError.
	ErrHTTPStatus = errors.New("unexpected http status")
	// ErrMissingKey is returned by admin calls when no admin key is available.
	ErrMissingKey = errors.New("admin key required")
)

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

// Is lets errors.Is match ErrHTTPStatus.
func (e *HTTPError) Is(target error) bool { return target == ErrHTTPStatus }

func newHTTPError(status int, msg string) *HTTPError {
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}
	return &HTTPError{Status: status, Message: msg}
}

// Message converts a fetch error to the string shown to users: the
// backend's error text, "HTTP <status>", or the transport error text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	var te *transportError
	if errors.As(err, &te) {
		return te.cause.Error()
	}
	return err.Error()
}

type transportError struct {
	cause error
}

func (e *transportError) Error() string { return fmt.Sprintf("%v: %v", ErrTransport, e.cause) }

func (e *transportError) Unwrap() []error { return []error{ErrTransport, e.cause} }
