package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so the unit of work and services can translate them into coded
// domain errors without importing storage packages.
//
// These represent factual states about stored rows, not validation failures:
// - ErrNotFound: row does not exist in the store
// - ErrConflict: optimistic version check or uniqueness constraint failed
// - ErrInvalidState: object in wrong lifecycle state for the operation
// - ErrUnavailable: storage temporarily unreachable
//
// For validation errors (bad input, broken invariants), use
// pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
