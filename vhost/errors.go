package vhost

import (
	"errors"
	"fmt"
)

type configurationError string

func (e configurationError) Error() string { return string(e) }
func (e configurationError) Code() string  { return string(e) }

var (
	// ErrAlreadyExists is returned when a virtual host domain or an
	// environment name is registered twice.
	ErrAlreadyExists = configurationError("already_exists")

	// ErrDuplicatePattern is returned when a pattern is mapped twice in
	// the same environment or in the same batch.
	ErrDuplicatePattern = configurationError("duplicate_pattern")

	// ErrUnknownVirtualHost is returned when a pattern is mapped to a
	// domain that has no virtual host.
	ErrUnknownVirtualHost = configurationError("unknown_virtual_host")

	// ErrInvalidArgument is returned for malformed input, e.g. an empty
	// pattern list.
	ErrInvalidArgument = configurationError("invalid_argument")
)

type requestError string

func (e requestError) Error() string { return string(e) }
func (e requestError) Code() string  { return string(e) }

var (
	// ErrRequestField is matched by every RequestFieldError.
	ErrRequestField = requestError("request_field")

	// ErrMatchNotSet is returned when the match of a request is read
	// before it was stored.
	ErrMatchNotSet = requestError("match_not_set")

	// ErrMatchAlreadySet is returned when the match of a request is
	// stored twice.
	ErrMatchAlreadySet = requestError("match_already_set")
)

// RequestFieldError is returned by Search when a field of the request
// cannot be parsed into its validated type.
type RequestFieldError struct {
	Field string
	Err   error
}

func (e *RequestFieldError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRequestField, e.Field, e.Err)
}

func (e *RequestFieldError) Unwrap() error { return e.Err }

func (e *RequestFieldError) Is(target error) bool { return target == ErrRequestField }

// Code returns the error code of errors returned by this package, and
// "other" for any other error.
func Code(err error) string {
	var (
		cerr configurationError
		rerr requestError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRequestField):
		return ErrRequestField.Code()
	case errors.As(err, &cerr):
		return cerr.Code()
	case errors.As(err, &rerr):
		return rerr.Code()
	default:
		return "other"
	}
}
