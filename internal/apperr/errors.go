// Package apperr holds the error classes shared by the pipeline, the version
// store and the outer adapters (HTTP, CLI, MCP).
package apperr

import "errors"

var (
	// ErrPrecondition means one of firstName, lastName, email or phone is empty.
	ErrPrecondition   = errors.New("required identity fields are missing")
	ErrNotFound       = errors.New("not found")
	ErrMalformedInput = errors.New("malformed input")
	ErrRefused        = errors.New("operation refused")
	// ErrEnvironment marks an external rendering dependency that is absent at call time.
	ErrEnvironment = errors.New("environment dependency unavailable")
)
