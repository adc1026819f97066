package uow

import (
	"context"
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
	"fintrack/pkg/requestcontext"
)

// MemoryFactory begins units of work over shared in-memory tables. Same
// contract as the postgres factory, including conflict detection at commit,
// so tests exercise real transactional behavior without a database.
type MemoryFactory struct {
	users        *userstore.Table
	accounts     *accountstore.Table
	transactions *transactionstore.Table
	budgets      *budgetstore.Table

	auditStore *audit.MemoryStore
	metrics    *metrics.Metrics
}

// NewMemoryFactory builds a factory with fresh empty tables. m may be nil.
func NewMemoryFactory(m *metrics.Metrics) *MemoryFactory {
	return &MemoryFactory{
		users:        userstore.NewTable(),
		accounts:     accountstore.NewTable(),
		transactions: transactionstore.NewTable(),
		budgets:      budgetstore.NewTable(),
		auditStore:   audit.NewMemoryStore(),
		metrics:      m,
	}
}

var _ Factory = (*MemoryFactory)(nil)

// AuditEvents exposes everything committed units recorded. Test helper.
func (f *MemoryFactory) AuditEvents() []audit.Event {
	return f.auditStore.Events()
}

func (f *MemoryFactory) Begin(ctx context.Context) (UnitOfWork, error) {
	_, span := tracer.Start(ctx, "uow.begin")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "unit of work aborted before start")
	}

	us := f.users.Begin()
	as := f.accounts.Begin()
	ts := f.transactions.Begin()
	bs := f.budgets.Begin()

	return &memoryUnit{
		state:        StateActive,
		users:        userstore.NewMemory(us),
		accounts:     accountstore.NewMemory(as),
		transactions: transactionstore.NewMemory(ts),
		budgets:      budgetstore.NewMemory(bs),
		// Fixed commit order keeps concurrent units deadlock free.
		sessions:   []storage.TxSession{us, as, ts, bs},
		auditStore: f.auditStore,
		metrics:    f.metrics,
	}, nil
}

type memoryUnit struct {
	state State

	users        *userstore.Memory
	accounts     *accountstore.Memory
	transactions *transactionstore.Memory
	budgets      *budgetstore.Memory

	sessions   []storage.TxSession
	events     []audit.Event
	auditStore *audit.MemoryStore
	metrics    *metrics.Metrics
}

var _ UnitOfWork = (*memoryUnit)(nil)

func (u *memoryUnit) Users() user.Repository               { return u.users }
func (u *memoryUnit) Accounts() account.Repository         { return u.accounts }
func (u *memoryUnit) Transactions() transaction.Repository { return u.transactions }
func (u *memoryUnit) Budgets() budget.Repository           { return u.budgets }

func (u *memoryUnit) Record(event audit.Event) {
	u.events = append(u.events, event)
}

func (u *memoryUnit) State() State { return u.state }

func (u *memoryUnit) Commit(ctx context.Context) error {
	_, span := tracer.Start(ctx, "uow.commit")
	defer span.End()

	if u.state != StateActive {
		return dErrors.Newf(dErrors.CodeInvalidState, "commit on %s unit of work", u.state)
	}
	if err := ctx.Err(); err != nil {
		u.rollbackSessions()
		return dErrors.Wrap(err, dErrors.CodeTimeout, "commit aborted")
	}

	start := time.Now()
	if err := storage.CommitAll(u.sessions...); err != nil {
		u.state = StateRolledBack
		u.metrics.IncRolledBack()
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			u.metrics.IncConflict()
		}
		return err
	}

	requestID := requestcontext.RequestID(ctx)
	for _, event := range u.events {
		if event.RequestID == "" {
			event.RequestID = requestID
		}
		_ = u.auditStore.Append(ctx, event)
	}
	u.state = StateCommitted
	u.metrics.IncCommitted()
	u.metrics.ObserveCommit(time.Since(start).Seconds())
	return nil
}

func (u *memoryUnit) Rollback() error {
	if u.state != StateActive {
		return nil
	}
	u.rollbackSessions()
	u.metrics.IncRolledBack()
	return nil
}

func (u *memoryUnit) rollbackSessions() {
	u.state = StateRolledBack
	for _, s := range u.sessions {
		s.Rollback()
	}
}
