package store

import (
	"context"
	"database/sql"
	"errors"

	"fintrack/internal/account"
	"fintrack/internal/storage"
	"fintrack/pkg/domain"
)

// Postgres persists accounts over the handle the unit of work injects.
type Postgres struct {
	q storage.Querier
}

// NewPostgres constructs an account store over the given handle.
func NewPostgres(q storage.Querier) *Postgres {
	return &Postgres{q: q}
}

var _ account.Repository = (*Postgres)(nil)

const accountColumns = `id, owner_id, name, balance_minor, currency, status, created_at, updated_at, version`

func scanAccountRow(scan func(...any) error) (accountRow, error) {
	var r accountRow
	err := scan(&r.ID, &r.OwnerID, &r.Name, &r.BalanceMinor, &r.Currency, &r.Status,
		&r.CreatedAt, &r.UpdatedAt, &r.Version)
	return r, err
}

func (s *Postgres) Create(ctx context.Context, a *account.Account) (*account.Account, error) {
	r := toRow(a)
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO accounts (id, owner_id, name, balance_minor, currency, status, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+accountColumns,
		r.ID, r.OwnerID, r.Name, r.BalanceMinor, r.Currency, r.Status, r.CreatedAt, r.UpdatedAt, r.Version)

	stored, err := scanAccountRow(row.Scan)
	if err != nil {
		return nil, storage.Translate(err, "create account")
	}
	return toEntity(stored)
}

func (s *Postgres) GetByID(ctx context.Context, id domain.AccountID) (*account.Account, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id.String())
	r, err := scanAccountRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.NotFound("account not found")
		}
		return nil, storage.Translate(err, "get account")
	}
	return toEntity(r)
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]*account.Account, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE owner_id = $1
		ORDER BY created_at, id`, ownerID.String())
	if err != nil {
		return nil, storage.Translate(err, "list accounts")
	}
	defer rows.Close()

	var out []*account.Account
	for rows.Next() {
		r, err := scanAccountRow(rows.Scan)
		if err != nil {
			return nil, storage.Translate(err, "list accounts")
		}
		a, err := toEntity(r)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Translate(err, "list accounts")
	}
	return out, nil
}

func (s *Postgres) Update(ctx context.Context, a *account.Account) (*account.Account, error) {
	r := toRow(a)
	row := s.q.QueryRowContext(ctx, `
		UPDATE accounts
		SET name = $1, balance_minor = $2, status = $3, updated_at = $4, version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING `+accountColumns,
		r.Name, r.BalanceMinor, r.Status, r.UpdatedAt, r.ID, r.Version)

	stored, err := scanAccountRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.classifyMiss(ctx, r.ID)
		}
		return nil, storage.Translate(err, "update account")
	}
	return toEntity(stored)
}

func (s *Postgres) Delete(ctx context.Context, id domain.AccountID) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id.String())
	if err != nil {
		return storage.Translate(err, "delete account")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storage.Translate(err, "delete account")
	}
	if affected == 0 {
		return storage.NotFound("account not found")
	}
	return nil
}

func (s *Postgres) classifyMiss(ctx context.Context, id string) error {
	var version int64
	err := s.q.QueryRowContext(ctx, `SELECT version FROM accounts WHERE id = $1`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.NotFound("account not found")
	}
	if err != nil {
		return storage.Translate(err, "update account")
	}
	return storage.Conflict("account modified concurrently")
}
