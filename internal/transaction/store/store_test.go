package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fintrack/internal/transaction"
	"fintrack/pkg/domain"
	dErrors "fintrack/pkg/domain-errors"
)

type TransactionStoreSuite struct {
	suite.Suite
	ctx       context.Context
	now       time.Time
	accountID domain.AccountID
}

func TestTransactionStoreSuite(t *testing.T) {
	suite.Run(t, new(TransactionStoreSuite))
}

func (s *TransactionStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	s.accountID = domain.NewAccountID()
}

func (s *TransactionStoreSuite) newTransaction(amountMinor int64, occurredAt time.Time) *transaction.Transaction {
	amount := domain.MustMoney(amountMinor, domain.CurrencyUSD)
	t, err := transaction.New(domain.NewTransactionID(), s.accountID, amount, domain.CategoryGroceries,
		occurredAt, "weekly shop", s.now)
	s.Require().NoError(err)
	return t
}

func (s *TransactionStoreSuite) TestMapperRoundTrip() {
	s.Run("debit survives the round trip", func() {
		original := s.newTransaction(-2_599, s.now.Add(-time.Hour))
		mapped, err := toEntity(toRow(original))
		s.Require().NoError(err)

		s.Equal(original.ID(), mapped.ID())
		s.Equal(original.AccountID(), mapped.AccountID())
		s.True(original.Amount().Equal(mapped.Amount()))
		s.Equal(original.Category(), mapped.Category())
		s.True(original.OccurredAt().Equal(mapped.OccurredAt()))
		s.Equal(original.Note(), mapped.Note())
		s.True(mapped.IsDebit())
	})

	s.Run("zero amount row is a mapping error", func() {
		r := toRow(s.newTransaction(100, s.now))
		r.AmountMinor = 0
		_, err := toEntity(r)
		s.True(dErrors.HasCode(err, dErrors.CodeMapping))
	})

	s.Run("bad category row is a mapping error", func() {
		r := toRow(s.newTransaction(100, s.now))
		r.Category = "Not A Slug"
		_, err := toEntity(r)
		s.True(dErrors.HasCode(err, dErrors.CodeMapping))
	})
}

func (s *TransactionStoreSuite) TestMemoryListByAccount() {
	table := NewTable()
	session := table.Begin()
	repo := NewMemory(session)

	older := s.newTransaction(-500, s.now.Add(-48*time.Hour))
	middle := s.newTransaction(1_000, s.now.Add(-24*time.Hour))
	newest := s.newTransaction(-250, s.now)
	for _, t := range []*transaction.Transaction{older, middle, newest} {
		_, err := repo.Create(s.ctx, t)
		s.Require().NoError(err)
	}

	s.Run("returns newest first", func() {
		listed, err := repo.ListByAccount(s.ctx, s.accountID, transaction.Filter{})
		s.Require().NoError(err)
		s.Require().Len(listed, 3)
		s.Equal(newest.ID(), listed[0].ID())
		s.Equal(middle.ID(), listed[1].ID())
		s.Equal(older.ID(), listed[2].ID())
	})

	s.Run("window bounds are inclusive from, exclusive to", func() {
		listed, err := repo.ListByAccount(s.ctx, s.accountID, transaction.Filter{
			From: s.now.Add(-24 * time.Hour),
			To:   s.now,
		})
		s.Require().NoError(err)
		s.Require().Len(listed, 1)
		s.Equal(middle.ID(), listed[0].ID())
	})

	s.Run("limit keeps the newest", func() {
		listed, err := repo.ListByAccount(s.ctx, s.accountID, transaction.Filter{Limit: 2})
		s.Require().NoError(err)
		s.Require().Len(listed, 2)
		s.Equal(newest.ID(), listed[0].ID())
	})

	s.Run("other accounts see nothing", func() {
		listed, err := repo.ListByAccount(s.ctx, domain.NewAccountID(), transaction.Filter{})
		s.Require().NoError(err)
		s.Empty(listed)
	})
}
