package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"fintrack/internal/storage"
	"fintrack/internal/transaction"
	"fintrack/pkg/domain"
)

// Postgres persists transactions over the handle the unit of work injects.
type Postgres struct {
	q storage.Querier
}

// NewPostgres constructs a transaction store over the given handle.
func NewPostgres(q storage.Querier) *Postgres {
	return &Postgres{q: q}
}

var _ transaction.Repository = (*Postgres)(nil)

const transactionColumns = `id, account_id, amount_minor, currency, category, occurred_at, note, created_at, updated_at, version`

func scanTransactionRow(scan func(...any) error) (transactionRow, error) {
	var r transactionRow
	err := scan(&r.ID, &r.AccountID, &r.AmountMinor, &r.Currency, &r.Category,
		&r.OccurredAt, &r.Note, &r.CreatedAt, &r.UpdatedAt, &r.Version)
	return r, err
}

func (s *Postgres) Create(ctx context.Context, t *transaction.Transaction) (*transaction.Transaction, error) {
	r := toRow(t)
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO transactions (id, account_id, amount_minor, currency, category, occurred_at, note, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+transactionColumns,
		r.ID, r.AccountID, r.AmountMinor, r.Currency, r.Category, r.OccurredAt, r.Note,
		r.CreatedAt, r.UpdatedAt, r.Version)

	stored, err := scanTransactionRow(row.Scan)
	if err != nil {
		return nil, storage.Translate(err, "create transaction")
	}
	return toEntity(stored)
}

func (s *Postgres) GetByID(ctx context.Context, id domain.TransactionID) (*transaction.Transaction, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id.String())
	r, err := scanTransactionRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.NotFound("transaction not found")
		}
		return nil, storage.Translate(err, "get transaction")
	}
	return toEntity(r)
}

func (s *Postgres) ListByAccount(ctx context.Context, accountID domain.AccountID, filter transaction.Filter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1`
	args := []any{accountID.String()}

	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += ` AND occurred_at >= $` + strconv.Itoa(len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += ` AND occurred_at < $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY occurred_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Translate(err, "list transactions")
	}
	defer rows.Close()

	var out []*transaction.Transaction
	for rows.Next() {
		r, err := scanTransactionRow(rows.Scan)
		if err != nil {
			return nil, storage.Translate(err, "list transactions")
		}
		t, err := toEntity(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Translate(err, "list transactions")
	}
	return out, nil
}

func (s *Postgres) Update(ctx context.Context, t *transaction.Transaction) (*transaction.Transaction, error) {
	r := toRow(t)
	row := s.q.QueryRowContext(ctx, `
		UPDATE transactions
		SET category = $1, note = $2, updated_at = $3, version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING `+transactionColumns,
		r.Category, r.Note, r.UpdatedAt, r.ID, r.Version)

	stored, err := scanTransactionRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.classifyMiss(ctx, r.ID)
		}
		return nil, storage.Translate(err, "update transaction")
	}
	return toEntity(stored)
}

func (s *Postgres) Delete(ctx context.Context, id domain.TransactionID) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id.String())
	if err != nil {
		return storage.Translate(err, "delete transaction")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storage.Translate(err, "delete transaction")
	}
	if affected == 0 {
		return storage.NotFound("transaction not found")
	}
	return nil
}

func (s *Postgres) classifyMiss(ctx context.Context, id string) error {
	var version int64
	err := s.q.QueryRowContext(ctx, `SELECT version FROM transactions WHERE id = $1`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.NotFound("transaction not found")
	}
	if err != nil {
		return storage.Translate(err, "update transaction")
	}
	return storage.Conflict("transaction modified concurrently")
}
