package user

import (
	"context"

	"fintrack/pkg/domain"
)

// Repository is the persistence contract for the User aggregate. Concrete
// stores satisfy it over the session a unit of work injects; signatures
// speak entities and value objects only.
//
// Errors: absence is reported as CodeNotFound, never as a connectivity
// failure; duplicate email surfaces as CodeConflict; version mismatch on
// Update surfaces as CodeConflict.
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id domain.UserID) (*User, error)
	GetByEmail(ctx context.Context, email domain.EmailAddress) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, u *User) (*User, error)
	Delete(ctx context.Context, id domain.UserID) error
}
