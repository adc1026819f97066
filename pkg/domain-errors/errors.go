// Package domainerrors defines the error taxonomy shared by the domain,
// store, and unit-of-work layers. Stores return sentinel errors (see
// pkg/platform/sentinel); everything above the store boundary speaks in
// coded domain errors so callers can branch on failure kind without
// importing storage packages.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error. Codes are part of the public contract:
// callers decide retry/no-retry and user-facing mapping from the code alone.
type Code string

const (
	// CodeValidation: entity or value-object construction/mutation rejected
	// invalid input. Caller's fault, not retryable.
	CodeValidation Code = "validation"

	// CodeInvalidInput: malformed input at a trust boundary (bad UUID,
	// unknown enum value). A narrower form of validation failure.
	CodeInvalidInput Code = "invalid_input"

	// CodeNotFound: the requested identifier does not exist. Distinct from
	// connectivity failures by contract.
	CodeNotFound Code = "not_found"

	// CodeConflict: optimistic concurrency check or uniqueness constraint
	// failed. Safe to retry the whole operation from scratch.
	CodeConflict Code = "conflict"

	// CodeMapping: a stored row is structurally inconsistent with domain
	// invariants. Indicates data corruption or schema/domain drift.
	CodeMapping Code = "mapping"

	// CodeUnavailable: storage connectivity/transport failure. Safe to retry
	// with backoff; never retried silently inside this module.
	CodeUnavailable Code = "unavailable"

	// CodeInvalidState: operation issued against an object in the wrong
	// lifecycle state (e.g. commit on a finished unit of work).
	CodeInvalidState Code = "invalid_state"

	// CodeInvariantViolation: a domain invariant would be broken by the
	// requested change.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeTimeout: the operation was abandoned due to context cancellation
	// or deadline expiry.
	CodeTimeout Code = "timeout"

	// CodeInternal: unexpected failure with no better classification.
	CodeInternal Code = "internal"
)

// Error is a coded error. It wraps an optional cause so errors.Is/As keep
// working across the taxonomy boundary.
type Error struct {
	code Code
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Code returns the classification of the error.
func (e *Error) Code() Code { return e.code }

// New constructs a coded error with no underlying cause.
func New(code Code, msg string) error {
	return &Error{code: code, msg: msg}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err yields
// nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, msg: msg, err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if errors.As(err, &de) {
			if de.code == code {
				return true
			}
			err = de.err
			continue
		}
		return false
	}
	return false
}

// Is is a convenience alias for HasCode, reading naturally at call sites:
// dErrors.Is(err, dErrors.CodeNotFound).
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return CodeInternal
}
