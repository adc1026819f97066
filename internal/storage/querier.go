// Package storage holds the pieces every postgres store shares: the
// transactional handle abstraction and the translation of driver errors
// into the domain taxonomy. Aggregate stores depend on this package, never
// directly on each other.
package storage

import (
	"context"
	"database/sql"
)

// Querier is the opaque transactional handle a store runs its statements
// against. Both *sql.DB and *sql.Tx satisfy it; the unit of work decides
// which one a store gets. Stores never begin or commit — committing is the
// unit of work's exclusive responsibility.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)
