package store

import (
	"sort"

	"fintrack/internal/budget"
	"fintrack/pkg/domain"
	dErrors "fintrack/pkg/domain-errors"
)

// toRow converts an entity to its storage shape. Pure; no I/O. Allocations
// come out ordered by category so persisted rows are deterministic.
func toRow(b *budget.Budget) budgetRow {
	allocs := b.Allocations()
	rows := make([]allocationRow, 0, len(allocs))
	for _, a := range allocs {
		rows = append(rows, allocationRow{
			Category:    a.Category.String(),
			AmountMinor: a.Amount.Amount(),
		})
	}
	return budgetRow{
		ID:          b.ID().String(),
		OwnerID:     b.OwnerID().String(),
		Period:      b.Period().String(),
		Currency:    b.Currency().String(),
		Allocations: rows,
		CreatedAt:   b.CreatedAt(),
		UpdatedAt:   b.UpdatedAt(),
		Version:     b.Version(),
	}
}

// toEntity reconstructs the aggregate, rejecting structurally inconsistent
// rows as mapping errors.
func toEntity(r budgetRow) (*budget.Budget, error) {
	id, err := domain.ParseBudgetID(r.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "budget row: bad id")
	}
	ownerID, err := domain.ParseUserID(r.OwnerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "budget row: bad owner id")
	}
	period, err := domain.ParsePeriod(r.Period)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "budget row: bad period")
	}
	currency, err := domain.ParseCurrency(r.Currency)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "budget row: bad currency")
	}

	allocs := make([]budget.Allocation, 0, len(r.Allocations))
	for _, a := range r.Allocations {
		category, err := domain.ParseCategory(a.Category)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeMapping, "budget row: bad allocation category")
		}
		amount, err := domain.NewMoney(a.AmountMinor, currency)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeMapping, "budget row: bad allocation amount")
		}
		allocs = append(allocs, budget.Allocation{Category: category, Amount: amount})
	}
	sort.Slice(allocs, func(i, j int) bool { return allocs[i].Category < allocs[j].Category })

	b, err := budget.Reconstitute(id, ownerID, period, currency, allocs, r.CreatedAt, r.UpdatedAt, r.Version)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "budget row: invariants violated")
	}
	return b, nil
}
