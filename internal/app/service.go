// Package app hosts the application services. Each operation runs inside
// one unit of work, so a failure anywhere leaves no partial writes behind.
package app

import (
	"context"
	"log"
	"time"

	"fintrack/internal/account"
	"fintrack/internal/budget"
	"fintrack/internal/platform/audit"
	"fintrack/internal/transaction"
	"fintrack/internal/uow"
	"fintrack/internal/user"
	"fintrack/pkg/domain"
	dErrors "fintrack/pkg/domain-errors"
)

// Service exposes the inbound operations. Raw inputs are parsed at this
// boundary; everything past it works in domain types.
type Service struct {
	factory uow.Factory
	logger  *log.Logger
	clock   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source, mostly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// NewService builds the application service.
func NewService(factory uow.Factory, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		factory: factory,
		logger:  logger,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterUser creates a user together with their first account. Both
// commit or neither does.
func (s *Service) RegisterUser(ctx context.Context, rawEmail, name, rawRole, rawCurrency string) (*user.User, *account.Account, error) {
	email, err := domain.NewEmailAddress(rawEmail)
	if err != nil {
		return nil, nil, err
	}
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return nil, nil, err
	}
	currency, err := domain.ParseCurrency(rawCurrency)
	if err != nil {
		return nil, nil, err
	}

	now := s.clock()
	var (
		registered *user.User
		opened     *account.Account
	)
	err = uow.Execute(ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		created, err := user.New(domain.NewUserID(), email, name, role, now)
		if err != nil {
			return err
		}
		registered, err = u.Users().Create(ctx, created)
		if err != nil {
			return err
		}

		acc, err := account.New(domain.NewAccountID(), registered.ID(), "Main", currency, now)
		if err != nil {
			return err
		}
		opened, err = u.Accounts().Create(ctx, acc)
		if err != nil {
			return err
		}

		actor := registered.ID().String()
		u.Record(audit.NewEvent(audit.ActionUserRegistered, actor, actor))
		u.Record(audit.NewEvent(audit.ActionAccountOpened, opened.ID().String(), actor))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Printf("app: registered user %s with account %s", registered.ID(), opened.ID())
	return registered, opened, nil
}

// RecordTransaction appends a transaction and applies it to the account
// balance in one unit of work.
func (s *Service) RecordTransaction(ctx context.Context, rawAccountID string, amountMinor int64, rawCategory string, occurredAt time.Time, note string) (*transaction.Transaction, error) {
	accountID, err := domain.ParseAccountID(rawAccountID)
	if err != nil {
		return nil, err
	}
	category, err := domain.ParseCategory(rawCategory)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	var recorded *transaction.Transaction
	err = uow.Execute(ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		acc, err := u.Accounts().GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		amount, err := domain.NewMoney(amountMinor, acc.Currency())
		if err != nil {
			return err
		}

		t, err := transaction.New(domain.NewTransactionID(), accountID, amount, category, occurredAt, note, now)
		if err != nil {
			return err
		}
		recorded, err = u.Transactions().Create(ctx, t)
		if err != nil {
			return err
		}

		if err := acc.Apply(amount, now); err != nil {
			return err
		}
		if _, err := u.Accounts().Update(ctx, acc); err != nil {
			return err
		}

		u.Record(audit.NewEvent(audit.ActionTransactionRecorded, recorded.ID().String(), acc.OwnerID().String()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

// CloseAccount closes an account. The balance must already be zero.
func (s *Service) CloseAccount(ctx context.Context, rawAccountID string) (*account.Account, error) {
	accountID, err := domain.ParseAccountID(rawAccountID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	var closed *account.Account
	err = uow.Execute(ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		acc, err := u.Accounts().GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if err := acc.Close(now); err != nil {
			return err
		}
		closed, err = u.Accounts().Update(ctx, acc)
		if err != nil {
			return err
		}
		u.Record(audit.NewEvent(audit.ActionAccountClosed, closed.ID().String(), closed.OwnerID().String()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// PlanBudget creates a budget for an owner and period with the given
// per-category allocations in minor units.
func (s *Service) PlanBudget(ctx context.Context, rawOwnerID, rawPeriod, rawCurrency string, allocations map[string]int64) (*budget.Budget, error) {
	ownerID, err := domain.ParseUserID(rawOwnerID)
	if err != nil {
		return nil, err
	}
	period, err := domain.ParsePeriod(rawPeriod)
	if err != nil {
		return nil, err
	}
	currency, err := domain.ParseCurrency(rawCurrency)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	var planned *budget.Budget
	err = uow.Execute(ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		if _, err := u.Users().GetByID(ctx, ownerID); err != nil {
			return err
		}
		if _, err := u.Budgets().GetByOwnerAndPeriod(ctx, ownerID, period); err == nil {
			return dErrors.Newf(dErrors.CodeConflict, "budget for %s already exists", period)
		} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			return err
		}

		b, err := budget.New(domain.NewBudgetID(), ownerID, period, currency, now)
		if err != nil {
			return err
		}
		for rawCategory, amountMinor := range allocations {
			category, err := domain.ParseCategory(rawCategory)
			if err != nil {
				return err
			}
			amount, err := domain.NewMoney(amountMinor, currency)
			if err != nil {
				return err
			}
			if err := b.SetAllocation(category, amount, now); err != nil {
				return err
			}
		}

		planned, err = u.Budgets().Create(ctx, b)
		if err != nil {
			return err
		}
		u.Record(audit.NewEvent(audit.ActionBudgetPlanned, planned.ID().String(), ownerID.String()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return planned, nil
}
