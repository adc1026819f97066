package account

import (
	"context"

	"fintrack/pkg/domain"
)

// Repository is the persistence contract for the Account aggregate.
//
// Errors: absence is CodeNotFound; version mismatch on Update is
// CodeConflict; a missing owner on Create surfaces as an invariant
// violation from the storage foreign key.
type Repository interface {
	Create(ctx context.Context, a *Account) (*Account, error)
	GetByID(ctx context.Context, id domain.AccountID) (*Account, error)
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]*Account, error)
	Update(ctx context.Context, a *Account) (*Account, error)
	Delete(ctx context.Context, id domain.AccountID) error
}
