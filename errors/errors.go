// Package errors defines all exported error sentinels for the linesort library.
//
// The top-level linesort package and the internal packages import from here,
// so errors.Is checks work across package boundaries.
package errors

import "errors"

// Configuration errors
var (
	ErrInvalidConfig = errors.New("linesort: invalid configuration")
	ErrInputNotFound = errors.New("linesort: input file not found")
)

// Run production errors
var (
	ErrRunIO = errors.New("linesort: run production I/O failed")
)

// Merge errors
var (
	ErrMergeIO        = errors.New("linesort: merge I/O failed")
	ErrRunChecksum    = errors.New("linesort: run file checksum mismatch")
	ErrDigestMismatch = errors.New("linesort: output records differ from input records")
)

// Verification errors
var (
	ErrMalformedRecord = errors.New("linesort: malformed record")
)
