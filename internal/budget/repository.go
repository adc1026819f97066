package budget

import (
	"context"

	"fintrack/pkg/domain"
)

// Repository is the persistence contract for the Budget aggregate. A budget
// and its allocations load and persist as one unit.
//
// Errors: absence is CodeNotFound; a second budget for the same owner and
// period is CodeConflict; version mismatch on Update is CodeConflict.
type Repository interface {
	Create(ctx context.Context, b *Budget) (*Budget, error)
	GetByID(ctx context.Context, id domain.BudgetID) (*Budget, error)
	GetByOwnerAndPeriod(ctx context.Context, ownerID domain.UserID, period domain.Period) (*Budget, error)
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]*Budget, error)
	Update(ctx context.Context, b *Budget) (*Budget, error)
	Delete(ctx context.Context, id domain.BudgetID) error
}
