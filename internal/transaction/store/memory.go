package store

import (
	"context"
	"sort"

	"fintrack/internal/storage"
	"fintrack/internal/transaction"
	"fintrack/pkg/domain"
)

// Table is the in-memory transactions table backing Memory stores.
type Table = storage.MemTable[transactionRow]

// NewTable builds the shared in-memory transactions table.
func NewTable() *Table {
	return storage.NewMemTable(transactionRowVersion, cloneTransactionRow)
}

// Memory is the in-memory transaction repository with the same contract as
// Postgres.
type Memory struct {
	session *storage.MemSession[transactionRow]
}

// NewMemory constructs a transaction store over a memory session.
func NewMemory(session *storage.MemSession[transactionRow]) *Memory {
	return &Memory{session: session}
}

var _ transaction.Repository = (*Memory)(nil)

func (s *Memory) Create(_ context.Context, t *transaction.Transaction) (*transaction.Transaction, error) {
	r := toRow(t)
	if err := s.session.Insert(r.ID, r); err != nil {
		return nil, err
	}
	return toEntity(r)
}

func (s *Memory) GetByID(_ context.Context, id domain.TransactionID) (*transaction.Transaction, error) {
	r, ok := s.session.Get(id.String())
	if !ok {
		return nil, storage.NotFound("transaction not found")
	}
	return toEntity(r)
}

func (s *Memory) ListByAccount(_ context.Context, accountID domain.AccountID, filter transaction.Filter) ([]*transaction.Transaction, error) {
	rows := s.session.List(func(r transactionRow) bool {
		if r.AccountID != accountID.String() {
			return false
		}
		if !filter.From.IsZero() && r.OccurredAt.Before(filter.From) {
			return false
		}
		if !filter.To.IsZero() && !r.OccurredAt.Before(filter.To) {
			return false
		}
		return true
	})

	// Newest first, matching the SQL ordering.
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].OccurredAt.Equal(rows[j].OccurredAt) {
			return rows[i].OccurredAt.After(rows[j].OccurredAt)
		}
		return rows[i].ID < rows[j].ID
	})
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}

	out := make([]*transaction.Transaction, 0, len(rows))
	for _, r := range rows {
		t, err := toEntity(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Memory) Update(_ context.Context, t *transaction.Transaction) (*transaction.Transaction, error) {
	r := toRow(t)
	loaded := r.Version
	r.Version = loaded + 1
	if err := s.session.Update(r.ID, r, loaded); err != nil {
		return nil, err
	}
	return toEntity(r)
}

func (s *Memory) Delete(_ context.Context, id domain.TransactionID) error {
	return s.session.Delete(id.String())
}
