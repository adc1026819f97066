// Package uow coordinates multi-repository operations. A unit of work owns
// one transaction; every repository obtained from it stages onto that
// transaction, and Commit applies everything or nothing. Audit events
// recorded on the unit land in the outbox in the same transaction.
package uow

import (
	"context"

	"go.opentelemetry.io/otel"

	"fintrack/internal/account"
	"fintrack/internal/budget"
	"fintrack/internal/platform/audit"
	"fintrack/internal/transaction"
	"fintrack/internal/user"
	dErrors "fintrack/pkg/domain-errors"
)

var tracer = otel.Tracer("fintrack/internal/uow")

// State tracks a unit of work through its lifecycle. Transitions only move
// forward: Open to Active, Active to Committed or RolledBack.
type State string

const (
	StateOpen       State = "open"
	StateActive     State = "active"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
)

// UnitOfWork scopes repository access to one transaction. One unit per
// logical operation; a finished unit rejects further work with
// CodeInvalidState.
type UnitOfWork interface {
	Users() user.Repository
	Accounts() account.Repository
	Transactions() transaction.Repository
	Budgets() budget.Repository

	// Record stages an audit event to be written at commit, in the same
	// transaction as the data changes.
	Record(event audit.Event)

	State() State
	Commit(ctx context.Context) error
	// Rollback discards staged work. Calling it on a finished unit is a
	// no-op, so it can sit in a defer next to Commit.
	Rollback() error
}

// Factory begins units of work. The postgres factory hands out real
// transactions; the memory factory hands out table sessions.
type Factory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// Execute runs fn inside a fresh unit of work, committing on success and
// rolling back on error or panic.
func Execute(ctx context.Context, factory Factory, fn func(ctx context.Context, u UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "unit of work aborted before start")
	}
	u, err := factory.Begin(ctx)
	if err != nil {
		return err
	}
	defer u.Rollback()

	if err := fn(ctx, u); err != nil {
		return err
	}
	return u.Commit(ctx)
}
