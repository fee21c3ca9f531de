// Package errors provides error handling for extfn.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging generator failures
//   - Error wrapping and context (file, function, directive)
//   - User-facing hints printed by the CLI
//   - Marks, so that a wrapped diagnostic still matches its sentinel
//
// Usage:
//
//	// Wrap with context
//	if err := generate.WriteOutputs(outputs); err != nil {
//	    return errors.Wrap(err, "failed to write generated files")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "methods can only be declared on local types")
//
//	// Check errors
//	if errors.Is(err, extfn.ErrTargetSpec) {
//	    // malformed //extfn:target directive
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Mark           = crdb.Mark
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Common sentinel errors for use across extfn.
// Use these with errors.Is() for type-safe error checking.
var (
	// ErrStale indicates generated files on disk differ from a fresh generation
	ErrStale = New("generated files are out of date")
)

// IsStaleError checks if an error is or wraps ErrStale
func IsStaleError(err error) bool {
	return err != nil && Is(err, ErrStale)
}

// Hints returns the user-facing hints attached anywhere in the error chain,
// de-duplicated, in the order they were attached.
func Hints(err error) []string {
	if err == nil {
		return nil
	}
	seen := make(map[string]bool)
	var hints []string
	for _, h := range GetAllHints(err) {
		if seen[h] {
			continue
		}
		seen[h] = true
		hints = append(hints, h)
	}
	return hints
}
