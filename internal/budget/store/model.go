// Package store persists the Budget aggregate across the budgets and
// budget_allocations tables. A budget and its allocations always load and
// persist together.
package store

import "time"

// budgetRow mirrors the budgets table plus its child allocation rows.
type budgetRow struct {
	ID          string
	OwnerID     string
	Period      string
	Currency    string
	Allocations []allocationRow
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
}

// allocationRow mirrors one budget_allocations row.
type allocationRow struct {
	Category    string
	AmountMinor int64
}

func cloneBudgetRow(r budgetRow) budgetRow {
	out := r
	out.Allocations = make([]allocationRow, len(r.Allocations))
	copy(out.Allocations, r.Allocations)
	return out
}

func budgetRowVersion(r budgetRow) int64 { return r.Version }
