package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"

	dErrors "fintrack/pkg/domain-errors"
	"fintrack/pkg/platform/sentinel"
)

// Postgres error classes/codes we branch on. Only the ones with a domain
// meaning are named; everything else is an internal failure.
const (
	pqClassConnection  = "08"
	pqCodeUniqueViol   = "23505"
	pqCodeForeignKey   = "23503"
	pqCodeSerializeErr = "40001"
	pqCodeDeadlock     = "40P01"
)

// NotFound builds the canonical not-found error. Built over the sentinel so
// both errors.Is(err, sentinel.ErrNotFound) and code checks work.
func NotFound(what string) error {
	return dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, what)
}

// Conflict builds the canonical optimistic-concurrency / uniqueness error.
func Conflict(what string) error {
	return dErrors.Wrap(sentinel.ErrConflict, dErrors.CodeConflict, what)
}

// InvalidState flags an operation issued against a finished session or
// unit of work.
func InvalidState(what string) error {
	return dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeInvalidState, what)
}

// Translate converts a driver-level error into the domain taxonomy so no
// storage-engine exception type ever crosses the repository boundary.
// sql.ErrNoRows is NOT handled here; absence is a per-query fact the store
// itself reports via NotFound.
func Translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op)
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, op)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, op)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqCodeUniqueViol:
			return dErrors.Wrap(err, dErrors.CodeConflict, op)
		case pqErr.Code == pqCodeSerializeErr, pqErr.Code == pqCodeDeadlock:
			return dErrors.Wrap(err, dErrors.CodeConflict, op)
		case pqErr.Code == pqCodeForeignKey:
			return dErrors.Wrap(err, dErrors.CodeInvariantViolation, op)
		case pqErr.Code.Class() == pqClassConnection:
			return dErrors.Wrap(err, dErrors.CodeUnavailable, op)
		}
	}

	if errors.Is(err, driver.ErrBadConn) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, op)
	}

	return dErrors.Wrap(err, dErrors.CodeInternal, op)
}
