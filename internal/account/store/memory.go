package store

import (
	"context"
	"sort"

	"fintrack/internal/account"
	"fintrack/internal/storage"
	"fintrack/pkg/domain"
)

// Table is the in-memory accounts table backing Memory stores.
type Table = storage.MemTable[accountRow]

// NewTable builds the shared in-memory accounts table.
func NewTable() *Table {
	return storage.NewMemTable(accountRowVersion, cloneAccountRow)
}

// Memory is the in-memory account repository with the same contract as
// Postgres.
type Memory struct {
	session *storage.MemSession[accountRow]
}

// NewMemory constructs an account store over a memory session.
func NewMemory(session *storage.MemSession[accountRow]) *Memory {
	return &Memory{session: session}
}

var _ account.Repository = (*Memory)(nil)

func (s *Memory) Create(_ context.Context, a *account.Account) (*account.Account, error) {
	r := toRow(a)
	if err := s.session.Insert(r.ID, r); err != nil {
		return nil, err
	}
	return toEntity(r)
}

func (s *Memory) GetByID(_ context.Context, id domain.AccountID) (*account.Account, error) {
	r, ok := s.session.Get(id.String())
	if !ok {
		return nil, storage.NotFound("account not found")
	}
	return toEntity(r)
}

func (s *Memory) ListByOwner(_ context.Context, ownerID domain.UserID) ([]*account.Account, error) {
	rows := s.session.List(func(r accountRow) bool { return r.OwnerID == ownerID.String() })
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
	out := make([]*account.Account, 0, len(rows))
	for _, r := range rows {
		a, err := toEntity(r)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Memory) Update(_ context.Context, a *account.Account) (*account.Account, error) {
	r := toRow(a)
	loaded := r.Version
	r.Version = loaded + 1
	if err := s.session.Update(r.ID, r, loaded); err != nil {
		return nil, err
	}
	return toEntity(r)
}

func (s *Memory) Delete(_ context.Context, id domain.AccountID) error {
	return s.session.Delete(id.String())
}
