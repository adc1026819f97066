// Package budget holds the Budget aggregate root and its repository
// contract. A budget aggregates per-category allocations for one user over
// one calendar period; all allocations share the budget currency.
package budget

import (
	"sort"
	"time"

	"fintrack/pkg/domain"
	dErrors "fintrack/pkg/domain-errors"
)

// Allocation is one category's budgeted amount.
type Allocation struct {
	Category domain.Category
	Amount   domain.Money
}

// Budget is the aggregate root for a monthly spending plan.
//
// Invariants:
//   - ID, OwnerID, Period and Currency are immutable after construction
//   - Every allocation amount is non-negative and in the budget currency
//   - At most one allocation per category
type Budget struct {
	id          domain.BudgetID
	ownerID     domain.UserID
	period      domain.Period
	currency    domain.Currency
	allocations map[domain.Category]domain.Money
	createdAt   time.Time
	updatedAt   time.Time
	version     int64
}

// New constructs an empty budget for a user and period.
func New(id domain.BudgetID, ownerID domain.UserID, period domain.Period,
	currency domain.Currency, now time.Time) (*Budget, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "budget id is required")
	}
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "owner id is required")
	}
	if period.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "period is required")
	}
	if !currency.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unsupported currency %q", currency)
	}
	return &Budget{
		id:          id,
		ownerID:     ownerID,
		period:      period,
		currency:    currency,
		allocations: make(map[domain.Category]domain.Money),
		createdAt:   now.UTC(),
		updatedAt:   now.UTC(),
		version:     1,
	}, nil
}

// Reconstitute rebuilds a Budget from persisted state. Each allocation goes
// through the same checks as SetAllocation, so inconsistent rows are
// rejected at the mapping boundary.
func Reconstitute(id domain.BudgetID, ownerID domain.UserID, period domain.Period,
	currency domain.Currency, allocations []Allocation,
	createdAt, updatedAt time.Time, version int64) (*Budget, error) {
	b, err := New(id, ownerID, period, currency, createdAt)
	if err != nil {
		return nil, err
	}
	if version < 1 {
		return nil, dErrors.Newf(dErrors.CodeValidation, "version %d out of range", version)
	}
	for _, alloc := range allocations {
		if _, dup := b.allocations[alloc.Category]; dup {
			return nil, dErrors.Newf(dErrors.CodeValidation, "duplicate allocation for category %q", alloc.Category)
		}
		if err := b.SetAllocation(alloc.Category, alloc.Amount, createdAt); err != nil {
			return nil, err
		}
	}
	b.createdAt = createdAt.UTC()
	b.updatedAt = updatedAt.UTC()
	b.version = version
	return b, nil
}

func (b *Budget) ID() domain.BudgetID        { return b.id }
func (b *Budget) OwnerID() domain.UserID     { return b.ownerID }
func (b *Budget) Period() domain.Period      { return b.period }
func (b *Budget) Currency() domain.Currency  { return b.currency }
func (b *Budget) CreatedAt() time.Time       { return b.createdAt }
func (b *Budget) UpdatedAt() time.Time       { return b.updatedAt }
func (b *Budget) Version() int64             { return b.version }

// Allocations returns the allocations ordered by category for stable
// iteration and comparison.
func (b *Budget) Allocations() []Allocation {
	out := make([]Allocation, 0, len(b.allocations))
	for cat, amount := range b.allocations {
		out = append(out, Allocation{Category: cat, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Allocation returns the amount budgeted for a category, if any.
func (b *Budget) Allocation(category domain.Category) (domain.Money, bool) {
	m, ok := b.allocations[category]
	return m, ok
}

// Total sums all allocations in the budget currency.
func (b *Budget) Total() domain.Money {
	total, _ := domain.ZeroMoney(b.currency)
	for _, amount := range b.allocations {
		total, _ = total.Add(amount)
	}
	return total
}

// SetAllocation creates or replaces the allocation for a category.
func (b *Budget) SetAllocation(category domain.Category, amount domain.Money, now time.Time) error {
	parsed, err := domain.ParseCategory(category.String())
	if err != nil {
		return err
	}
	if amount.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "allocation cannot be negative")
	}
	if amount.Currency() != b.currency {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"allocation currency %s does not match budget currency %s", amount.Currency(), b.currency)
	}
	b.allocations[parsed] = amount
	b.touch(now)
	return nil
}

// RemoveAllocation drops a category from the budget.
func (b *Budget) RemoveAllocation(category domain.Category, now time.Time) error {
	if _, ok := b.allocations[category]; !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "no allocation for category %q", category)
	}
	delete(b.allocations, category)
	b.touch(now)
	return nil
}

func (b *Budget) touch(now time.Time) {
	b.updatedAt = now.UTC()
}
