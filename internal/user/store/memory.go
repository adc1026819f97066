package store

import (
	"context"
	"sort"

	"fintrack/internal/storage"
	"fintrack/internal/user"
	"fintrack/pkg/domain"
)

// Table is the in-memory users table backing Memory stores.
type Table = storage.MemTable[userRow]

// NewTable builds the shared in-memory users table. One table plays the
// role of the database; sessions over it play the role of transactions.
func NewTable() *Table {
	t := storage.NewMemTable(userRowVersion, cloneUserRow)
	t.AddUniqueIndex(func(r userRow) string { return r.Email })
	return t
}

// Memory is the in-memory user repository. Same contract as Postgres,
// including optimistic versioning and unique email, so tests can swap
// backends freely.
type Memory struct {
	session *storage.MemSession[userRow]
}

// NewMemory constructs a user store over a session obtained from the
// memory unit of work.
func NewMemory(session *storage.MemSession[userRow]) *Memory {
	return &Memory{session: session}
}

var _ user.Repository = (*Memory)(nil)

func (s *Memory) Create(_ context.Context, u *user.User) (*user.User, error) {
	r := toRow(u)
	if s.emailTaken(r.Email, r.ID) {
		return nil, storage.Conflict("email already in use")
	}
	if err := s.session.Insert(r.ID, r); err != nil {
		return nil, err
	}
	return toEntity(r)
}

func (s *Memory) GetByID(_ context.Context, id domain.UserID) (*user.User, error) {
	r, ok := s.session.Get(id.String())
	if !ok {
		return nil, storage.NotFound("user not found")
	}
	return toEntity(r)
}

func (s *Memory) GetByEmail(_ context.Context, email domain.EmailAddress) (*user.User, error) {
	rows := s.session.List(func(r userRow) bool { return r.Email == email.String() })
	if len(rows) == 0 {
		return nil, storage.NotFound("user not found")
	}
	return toEntity(rows[0])
}

func (s *Memory) List(_ context.Context) ([]*user.User, error) {
	rows := s.session.List(nil)
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
	out := make([]*user.User, 0, len(rows))
	for _, r := range rows {
		u, err := toEntity(r)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *Memory) Update(_ context.Context, u *user.User) (*user.User, error) {
	r := toRow(u)
	if s.emailTaken(r.Email, r.ID) {
		return nil, storage.Conflict("email already in use")
	}
	loaded := r.Version
	r.Version = loaded + 1
	if err := s.session.Update(r.ID, r, loaded); err != nil {
		return nil, err
	}
	return toEntity(r)
}

func (s *Memory) Delete(_ context.Context, id domain.UserID) error {
	return s.session.Delete(id.String())
}

func (s *Memory) emailTaken(email, selfID string) bool {
	rows := s.session.List(func(r userRow) bool { return r.Email == email && r.ID != selfID })
	return len(rows) > 0
}
