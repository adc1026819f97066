package store

import (
	"context"
	"database/sql"
	"errors"

	"fintrack/internal/storage"
	"fintrack/internal/user"
	"fintrack/pkg/domain"
)

// Postgres persists users. It runs against whatever transactional handle
// the unit of work injects and never commits on its own.
type Postgres struct {
	q storage.Querier
}

// NewPostgres constructs a user store over the given handle.
func NewPostgres(q storage.Querier) *Postgres {
	return &Postgres{q: q}
}

var _ user.Repository = (*Postgres)(nil)

const userColumns = `id, email, name, role, active, created_at, updated_at, version`

func scanUserRow(scan func(...any) error) (userRow, error) {
	var r userRow
	err := scan(&r.ID, &r.Email, &r.Name, &r.Role, &r.Active, &r.CreatedAt, &r.UpdatedAt, &r.Version)
	return r, err
}

func (s *Postgres) Create(ctx context.Context, u *user.User) (*user.User, error) {
	r := toRow(u)
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, role, active, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		r.ID, r.Email, r.Name, r.Role, r.Active, r.CreatedAt, r.UpdatedAt, r.Version)

	stored, err := scanUserRow(row.Scan)
	if err != nil {
		return nil, storage.Translate(err, "create user")
	}
	return toEntity(stored)
}

func (s *Postgres) GetByID(ctx context.Context, id domain.UserID) (*user.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.String())
	return s.scanOne(row, "user")
}

func (s *Postgres) GetByEmail(ctx context.Context, email domain.EmailAddress) (*user.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email.String())
	return s.scanOne(row, "user")
}

func (s *Postgres) List(ctx context.Context) ([]*user.User, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, storage.Translate(err, "list users")
	}
	defer rows.Close()

	var out []*user.User
	for rows.Next() {
		r, err := scanUserRow(rows.Scan)
		if err != nil {
			return nil, storage.Translate(err, "list users")
		}
		u, err := toEntity(r)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Translate(err, "list users")
	}
	return out, nil
}

func (s *Postgres) Update(ctx context.Context, u *user.User) (*user.User, error) {
	r := toRow(u)
	r.UpdatedAt = r.UpdatedAt.UTC()

	row := s.q.QueryRowContext(ctx, `
		UPDATE users
		SET email = $1, name = $2, role = $3, active = $4, updated_at = $5, version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING `+userColumns,
		r.Email, r.Name, r.Role, r.Active, r.UpdatedAt, r.ID, r.Version)

	stored, err := scanUserRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.classifyMiss(ctx, r.ID)
		}
		return nil, storage.Translate(err, "update user")
	}
	return toEntity(stored)
}

func (s *Postgres) Delete(ctx context.Context, id domain.UserID) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return storage.Translate(err, "delete user")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storage.Translate(err, "delete user")
	}
	if affected == 0 {
		return storage.NotFound("user not found")
	}
	return nil
}

func (s *Postgres) scanOne(row *sql.Row, what string) (*user.User, error) {
	r, err := scanUserRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.NotFound(what + " not found")
		}
		return nil, storage.Translate(err, "get "+what)
	}
	return toEntity(r)
}

// classifyMiss decides whether a zero-row update means the row is gone or
// the caller's version is stale. The probe runs on the same handle, so
// inside a unit of work it observes staged state.
func (s *Postgres) classifyMiss(ctx context.Context, id string) error {
	var version int64
	err := s.q.QueryRowContext(ctx, `SELECT version FROM users WHERE id = $1`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.NotFound("user not found")
	}
	if err != nil {
		return storage.Translate(err, "update user")
	}
	return storage.Conflict("user modified concurrently")
}
