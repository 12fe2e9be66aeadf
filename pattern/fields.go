package pattern

import (
	"fmt"

	"github.com/zalando/vhosts/net"
)

// FieldSource provides the concrete field values of a request. Each
// method may be expensive, callers that need a value more than once
// should cache it.
type FieldSource interface {
	// Scheme returns the request scheme, e.g. "https".
	Scheme() (string, error)

	// Host returns the address the request was sent to.
	Host() (net.Address, error)

	// Port returns the TCP port the request was sent to.
	Port() (net.Port, error)

	// ContextPath returns the path the application is mounted at. The
	// root context is the empty string.
	ContextPath() (string, error)

	// Path returns the request path below the context path.
	Path() (string, error)
}

// ValidationError is returned when a pattern cannot be constructed or
// completed from the given values.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s", e.Field)
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}

	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }
