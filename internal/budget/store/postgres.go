package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"fintrack/internal/budget"
	"fintrack/internal/storage"
	"fintrack/pkg/domain"
)

// Postgres persists budgets over the handle the unit of work injects. The
// allocations table is written as a whole on every save so the aggregate
// never persists partially.
type Postgres struct {
	q storage.Querier
}

// NewPostgres constructs a budget store over the given handle.
func NewPostgres(q storage.Querier) *Postgres {
	return &Postgres{q: q}
}

var _ budget.Repository = (*Postgres)(nil)

const budgetColumns = `id, owner_id, period, currency, created_at, updated_at, version`

func scanBudgetRow(scan func(...any) error) (budgetRow, error) {
	var r budgetRow
	err := scan(&r.ID, &r.OwnerID, &r.Period, &r.Currency, &r.CreatedAt, &r.UpdatedAt, &r.Version)
	return r, err
}

func (s *Postgres) Create(ctx context.Context, b *budget.Budget) (*budget.Budget, error) {
	r := toRow(b)
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO budgets (id, owner_id, period, currency, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+budgetColumns,
		r.ID, r.OwnerID, r.Period, r.Currency, r.CreatedAt, r.UpdatedAt, r.Version)

	stored, err := scanBudgetRow(row.Scan)
	if err != nil {
		return nil, storage.Translate(err, "create budget")
	}
	if err := s.insertAllocations(ctx, stored.ID, r.Allocations); err != nil {
		return nil, err
	}
	stored.Allocations = r.Allocations
	return toEntity(stored)
}

func (s *Postgres) GetByID(ctx context.Context, id domain.BudgetID) (*budget.Budget, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id.String())
	return s.load(ctx, row, "get budget")
}

func (s *Postgres) GetByOwnerAndPeriod(ctx context.Context, ownerID domain.UserID, period domain.Period) (*budget.Budget, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE owner_id = $1 AND period = $2`,
		ownerID.String(), period.String())
	return s.load(ctx, row, "get budget by owner and period")
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]*budget.Budget, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE owner_id = $1 ORDER BY period, id`,
		ownerID.String())
	if err != nil {
		return nil, storage.Translate(err, "list budgets")
	}
	defer rows.Close()

	var stored []budgetRow
	for rows.Next() {
		r, err := scanBudgetRow(rows.Scan)
		if err != nil {
			return nil, storage.Translate(err, "list budgets")
		}
		stored = append(stored, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Translate(err, "list budgets")
	}

	out := make([]*budget.Budget, 0, len(stored))
	for _, r := range stored {
		r.Allocations, err = s.loadAllocations(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		b, err := toEntity(r)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Postgres) Update(ctx context.Context, b *budget.Budget) (*budget.Budget, error) {
	r := toRow(b)
	row := s.q.QueryRowContext(ctx, `
		UPDATE budgets
		SET updated_at = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING `+budgetColumns,
		r.UpdatedAt, r.ID, r.Version)

	stored, err := scanBudgetRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.classifyMiss(ctx, r.ID)
		}
		return nil, storage.Translate(err, "update budget")
	}

	// Replace the child rows wholesale; the version check above already
	// fenced off concurrent writers.
	if _, err := s.q.ExecContext(ctx, `DELETE FROM budget_allocations WHERE budget_id = $1`, r.ID); err != nil {
		return nil, storage.Translate(err, "update budget allocations")
	}
	if err := s.insertAllocations(ctx, r.ID, r.Allocations); err != nil {
		return nil, err
	}
	stored.Allocations = r.Allocations
	return toEntity(stored)
}

func (s *Postgres) Delete(ctx context.Context, id domain.BudgetID) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, id.String())
	if err != nil {
		return storage.Translate(err, "delete budget")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storage.Translate(err, "delete budget")
	}
	if affected == 0 {
		return storage.NotFound("budget not found")
	}
	return nil
}

func (s *Postgres) load(ctx context.Context, row *sql.Row, op string) (*budget.Budget, error) {
	r, err := scanBudgetRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.NotFound("budget not found")
		}
		return nil, storage.Translate(err, op)
	}
	r.Allocations, err = s.loadAllocations(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return toEntity(r)
}

func (s *Postgres) loadAllocations(ctx context.Context, budgetID string) ([]allocationRow, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT category, amount_minor FROM budget_allocations WHERE budget_id = $1 ORDER BY category`,
		budgetID)
	if err != nil {
		return nil, storage.Translate(err, "load budget allocations")
	}
	defer rows.Close()

	var out []allocationRow
	for rows.Next() {
		var a allocationRow
		if err := rows.Scan(&a.Category, &a.AmountMinor); err != nil {
			return nil, storage.Translate(err, "load budget allocations")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Translate(err, "load budget allocations")
	}
	return out, nil
}

func (s *Postgres) insertAllocations(ctx context.Context, budgetID string, allocs []allocationRow) error {
	if len(allocs) == 0 {
		return nil
	}
	categories := make([]string, 0, len(allocs))
	amounts := make([]int64, 0, len(allocs))
	for _, a := range allocs {
		categories = append(categories, a.Category)
		amounts = append(amounts, a.AmountMinor)
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO budget_allocations (budget_id, category, amount_minor)
		SELECT $1, unnest($2::text[]), unnest($3::bigint[])`,
		budgetID, pq.Array(categories), pq.Array(amounts))
	if err != nil {
		return storage.Translate(err, "insert budget allocations")
	}
	return nil
}

func (s *Postgres) classifyMiss(ctx context.Context, id string) error {
	var version int64
	err := s.q.QueryRowContext(ctx, `SELECT version FROM budgets WHERE id = $1`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.NotFound("budget not found")
	}
	if err != nil {
		return storage.Translate(err, "update budget")
	}
	return storage.Conflict("budget modified concurrently")
}
