// Package utils holds sentinel errors shared across the coordinator and
// participant services.
package utils

import "errors"

var (
	// ErrUnknownTxn is returned by operations that require a
	// previously-known transaction id and didn't find one.
	ErrUnknownTxn = errors.New("unknown transaction id")
	// ErrInvalidProtocol describes a /tx/start request naming a protocol
	// other than 2PC or 3PC. No function returns it: the coordinator
	// handler answers that case with a 400 carrying the same message text.
	ErrInvalidProtocol = errors.New("invalid protocol")
	// ErrMalformedRequest describes a request body that is missing a
	// required field or fails to parse as JSON. No function returns it:
	// the HTTP handlers answer that case with a 400 carrying the same
	// message text.
	ErrMalformedRequest = errors.New("malformed request")
)
