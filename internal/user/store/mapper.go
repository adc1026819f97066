package store

import (
	"fintrack/internal/user"
	"fintrack/pkg/domain"
	dErrors "fintrack/pkg/domain-errors"
)

// toRow converts an entity to its storage shape. Pure; no I/O.
func toRow(u *user.User) userRow {
	return userRow{
		ID:        u.ID().String(),
		Email:     u.Email().String(),
		Name:      u.Name(),
		Role:      u.Role().String(),
		Active:    u.IsActive(),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
		Version:   u.Version(),
	}
}

// toEntity reconstructs the entity from a stored row. A row that fails
// domain validation is reported as a mapping error: it means the stored
// data drifted from the domain invariants, and silently producing a corrupt
// entity is never acceptable.
func toEntity(r userRow) (*user.User, error) {
	id, err := domain.ParseUserID(r.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "user row: bad id")
	}
	email, err := domain.NewEmailAddress(r.Email)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "user row: bad email")
	}
	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "user row: bad role")
	}
	u, err := user.Reconstitute(id, email, r.Name, role, r.Active, r.CreatedAt, r.UpdatedAt, r.Version)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "user row: invariants violated")
	}
	return u, nil
}
