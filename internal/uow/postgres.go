package uow

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fintrack/internal/account"
	accountstore "fintrack/internal/account/store"
	"fintrack/internal/budget"
	budgetstore "fintrack/internal/budget/store"
	"fintrack/internal/platform/audit"
	"fintrack/internal/platform/metrics"
	"fintrack/internal/storage"
	"fintrack/internal/transaction"
	transactionstore "fintrack/internal/transaction/store"
	"fintrack/internal/user"
	userstore "fintrack/internal/user/store"
	dErrors "fintrack/pkg/domain-errors"
	txcontext "fintrack/pkg/platform/tx"
	"fintrack/pkg/requestcontext"
)

// PostgresFactory begins units of work backed by database transactions.
type PostgresFactory struct {
	db         *sql.DB
	auditStore audit.Store
	metrics    *metrics.Metrics
}

// NewPostgresFactory builds a factory. auditStore and m may be nil; a nil
// audit store drops recorded events, which is only acceptable in tests.
func NewPostgresFactory(db *sql.DB, auditStore audit.Store, m *metrics.Metrics) *PostgresFactory {
	return &PostgresFactory{db: db, auditStore: auditStore, metrics: m}
}

var _ Factory = (*PostgresFactory)(nil)

func (f *PostgresFactory) Begin(ctx context.Context) (UnitOfWork, error) {
	ctx, span := tracer.Start(ctx, "uow.begin")
	defer span.End()

	u := &postgresUnit{
		db:         f.db,
		state:      StateOpen,
		auditStore: f.auditStore,
		metrics:    f.metrics,
	}
	if err := u.begin(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

type postgresUnit struct {
	db         *sql.DB
	state      State
	tx         *sql.Tx
	auditStore audit.Store
	metrics    *metrics.Metrics

	users        *userstore.Postgres
	accounts     *accountstore.Postgres
	transactions *transactionstore.Postgres
	budgets      *budgetstore.Postgres

	events []audit.Event
}

var _ UnitOfWork = (*postgresUnit)(nil)

func (u *postgresUnit) begin(ctx context.Context) error {
	if u.state != StateOpen {
		return dErrors.Newf(dErrors.CodeInvalidState, "begin on %s unit of work", u.state)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "unit of work aborted before start")
	}
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Translate(err, "begin unit of work")
	}
	u.tx = tx
	u.users = userstore.NewPostgres(tx)
	u.accounts = accountstore.NewPostgres(tx)
	u.transactions = transactionstore.NewPostgres(tx)
	u.budgets = budgetstore.NewPostgres(tx)
	u.state = StateActive
	return nil
}

func (u *postgresUnit) Users() user.Repository               { return u.users }
func (u *postgresUnit) Accounts() account.Repository         { return u.accounts }
func (u *postgresUnit) Transactions() transaction.Repository { return u.transactions }
func (u *postgresUnit) Budgets() budget.Repository           { return u.budgets }

func (u *postgresUnit) Record(event audit.Event) {
	u.events = append(u.events, event)
}

func (u *postgresUnit) State() State { return u.state }

func (u *postgresUnit) Commit(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "uow.commit")
	defer span.End()

	if u.state != StateActive {
		return dErrors.Newf(dErrors.CodeInvalidState, "commit on %s unit of work", u.state)
	}
	if err := ctx.Err(); err != nil {
		u.finishRollback()
		return dErrors.Wrap(err, dErrors.CodeTimeout, "commit aborted")
	}

	start := time.Now()
	if u.auditStore != nil {
		auditCtx := txcontext.WithTx(ctx, u.tx)
		requestID := requestcontext.RequestID(ctx)
		for _, event := range u.events {
			if event.RequestID == "" {
				event.RequestID = requestID
			}
			if err := u.auditStore.Append(auditCtx, event); err != nil {
				u.finishRollback()
				return err
			}
		}
	}

	if err := u.tx.Commit(); err != nil {
		u.state = StateRolledBack
		u.metrics.IncRolledBack()
		translated := storage.Translate(err, "commit unit of work")
		if dErrors.HasCode(translated, dErrors.CodeConflict) {
			u.metrics.IncConflict()
		}
		return translated
	}
	u.state = StateCommitted
	u.metrics.IncCommitted()
	u.metrics.ObserveCommit(time.Since(start).Seconds())
	return nil
}

func (u *postgresUnit) Rollback() error {
	if u.state != StateActive {
		return nil
	}
	return u.finishRollback()
}

func (u *postgresUnit) finishRollback() error {
	u.state = StateRolledBack
	u.metrics.IncRolledBack()
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return storage.Translate(err, "rollback unit of work")
	}
	return nil
}
