package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fintrack/internal/account"
	"fintrack/pkg/domain"
	dErrors "fintrack/pkg/domain-errors"
)

type AccountStoreSuite struct {
	suite.Suite
	ctx   context.Context
	now   time.Time
	owner domain.UserID
}

func TestAccountStoreSuite(t *testing.T) {
	suite.Run(t, new(AccountStoreSuite))
}

func (s *AccountStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	s.owner = domain.NewUserID()
}

func (s *AccountStoreSuite) newAccount(name string) *account.Account {
	a, err := account.New(domain.NewAccountID(), s.owner, name, domain.CurrencyEUR, s.now)
	s.Require().NoError(err)
	return a
}

func (s *AccountStoreSuite) TestMapperRoundTrip() {
	s.Run("account with balance survives the round trip", func() {
		original := s.newAccount("Checking")
		s.Require().NoError(original.Deposit(domain.MustMoney(12_345, domain.CurrencyEUR), s.now.Add(time.Minute)))

		mapped, err := toEntity(toRow(original))
		s.Require().NoError(err)
		s.Equal(original.ID(), mapped.ID())
		s.Equal(original.OwnerID(), mapped.OwnerID())
		s.Equal(original.Name(), mapped.Name())
		s.True(original.Balance().Equal(mapped.Balance()))
		s.Equal(original.Status(), mapped.Status())
		s.Equal(original.Version(), mapped.Version())
	})

	s.Run("closed account with a balance is a mapping error", func() {
		r := toRow(s.newAccount("Corrupt"))
		r.Status = string(account.StatusClosed)
		r.BalanceMinor = 100

		_, err := toEntity(r)
		s.True(dErrors.HasCode(err, dErrors.CodeMapping))
	})

	s.Run("unknown status is a mapping error", func() {
		r := toRow(s.newAccount("Odd"))
		r.Status = "frozen"

		_, err := toEntity(r)
		s.True(dErrors.HasCode(err, dErrors.CodeMapping))
	})
}

func (s *AccountStoreSuite) TestMemoryStore() {
	table := NewTable()

	s.Run("list by owner is ordered by creation", func() {
		session := table.Begin()
		repo := NewMemory(session)

		first, err := account.New(domain.NewAccountID(), s.owner, "First", domain.CurrencyEUR, s.now)
		s.Require().NoError(err)
		second, err := account.New(domain.NewAccountID(), s.owner, "Second", domain.CurrencyEUR, s.now.Add(time.Hour))
		s.Require().NoError(err)

		_, err = repo.Create(s.ctx, second)
		s.Require().NoError(err)
		_, err = repo.Create(s.ctx, first)
		s.Require().NoError(err)

		listed, err := repo.ListByOwner(s.ctx, s.owner)
		s.Require().NoError(err)
		s.Require().Len(listed, 2)
		s.Equal("First", listed[0].Name())
		s.Equal("Second", listed[1].Name())

		other, err := repo.ListByOwner(s.ctx, domain.NewUserID())
		s.Require().NoError(err)
		s.Empty(other)
		session.Rollback()
	})

	s.Run("balance changes persist through update", func() {
		session := table.Begin()
		repo := NewMemory(session)

		created, err := repo.Create(s.ctx, s.newAccount("Savings"))
		s.Require().NoError(err)
		s.Require().NoError(session.Commit())

		session = table.Begin()
		repo = NewMemory(session)
		loaded, err := repo.GetByID(s.ctx, created.ID())
		s.Require().NoError(err)
		s.Require().NoError(loaded.Deposit(domain.MustMoney(5_000, domain.CurrencyEUR), s.now.Add(time.Hour)))

		updated, err := repo.Update(s.ctx, loaded)
		s.Require().NoError(err)
		s.Equal(int64(5_000), updated.Balance().Amount())
		s.Equal(int64(2), updated.Version())
		s.Require().NoError(session.Commit())
	})
}
