package store

import (
	"context"
	"sort"

	"fintrack/internal/budget"
	"fintrack/internal/storage"
	"fintrack/pkg/domain"
)

// Table is the in-memory budgets table backing Memory stores.
type Table = storage.MemTable[budgetRow]

// NewTable builds the shared in-memory budgets table.
func NewTable() *Table {
	t := storage.NewMemTable(budgetRowVersion, cloneBudgetRow)
	t.AddUniqueIndex(func(r budgetRow) string { return r.OwnerID + "/" + r.Period })
	return t
}

// Memory is the in-memory budget repository with the same contract as
// Postgres, including the one-budget-per-owner-and-period rule.
type Memory struct {
	session *storage.MemSession[budgetRow]
}

// NewMemory constructs a budget store over a memory session.
func NewMemory(session *storage.MemSession[budgetRow]) *Memory {
	return &Memory{session: session}
}

var _ budget.Repository = (*Memory)(nil)

func (s *Memory) Create(_ context.Context, b *budget.Budget) (*budget.Budget, error) {
	r := toRow(b)
	if s.periodTaken(r.OwnerID, r.Period, r.ID) {
		return nil, storage.Conflict("budget already exists for period")
	}
	if err := s.session.Insert(r.ID, r); err != nil {
		return nil, err
	}
	return toEntity(r)
}

func (s *Memory) GetByID(_ context.Context, id domain.BudgetID) (*budget.Budget, error) {
	r, ok := s.session.Get(id.String())
	if !ok {
		return nil, storage.NotFound("budget not found")
	}
	return toEntity(r)
}

func (s *Memory) GetByOwnerAndPeriod(_ context.Context, ownerID domain.UserID, period domain.Period) (*budget.Budget, error) {
	rows := s.session.List(func(r budgetRow) bool {
		return r.OwnerID == ownerID.String() && r.Period == period.String()
	})
	if len(rows) == 0 {
		return nil, storage.NotFound("budget not found")
	}
	return toEntity(rows[0])
}

func (s *Memory) ListByOwner(_ context.Context, ownerID domain.UserID) ([]*budget.Budget, error) {
	rows := s.session.List(func(r budgetRow) bool { return r.OwnerID == ownerID.String() })
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Period != rows[j].Period {
			return rows[i].Period < rows[j].Period
		}
		return rows[i].ID < rows[j].ID
	})
	out := make([]*budget.Budget, 0, len(rows))
	for _, r := range rows {
		b, err := toEntity(r)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Memory) Update(_ context.Context, b *budget.Budget) (*budget.Budget, error) {
	r := toRow(b)
	loaded := r.Version
	r.Version = loaded + 1
	if err := s.session.Update(r.ID, r, loaded); err != nil {
		return nil, err
	}
	return toEntity(r)
}

func (s *Memory) Delete(_ context.Context, id domain.BudgetID) error {
	return s.session.Delete(id.String())
}

func (s *Memory) periodTaken(ownerID, period, selfID string) bool {
	rows := s.session.List(func(r budgetRow) bool {
		return r.OwnerID == ownerID && r.Period == period && r.ID != selfID
	})
	return len(rows) > 0
}
