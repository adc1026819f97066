// Package user holds the User aggregate root and its repository contract.
// The package imports value objects only; storage and transport never
// appear here.
package user

import (
	"strings"
	"time"

	"fintrack/pkg/domain"
	dErrors "fintrack/pkg/domain-errors"
)

const maxNameLength = 128

// User is the aggregate root for an application user.
//
// Invariants:
//   - ID is immutable for the lifetime of the entity
//   - Email is always a valid, normalized address
//   - Name is non-empty and at most 128 characters
//   - Role is one of the supported roles
//   - Status transitions: active ↔ inactive only
//
// A *User obtained from New or Reconstitute is valid by construction;
// mutators re-check invariants and leave the entity unchanged on failure.
type User struct {
	id        domain.UserID
	email     domain.EmailAddress
	name      string
	role      domain.Role
	active    bool
	createdAt time.Time
	updatedAt time.Time
	version   int64
}

// New constructs a fresh User. The caller supplies the identity so that
// created entities can be referenced before the first commit.
func New(id domain.UserID, email domain.EmailAddress, name string, role domain.Role, now time.Time) (*User, error) {
	u := &User{
		id:        id,
		active:    true,
		createdAt: now.UTC(),
		updatedAt: now.UTC(),
		version:   1,
	}
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "user id is required")
	}
	if err := u.setEmail(email); err != nil {
		return nil, err
	}
	if err := u.setName(name); err != nil {
		return nil, err
	}
	if err := u.setRole(role); err != nil {
		return nil, err
	}
	return u, nil
}

// Reconstitute rebuilds a User from persisted state. It runs the same
// validation as New so a corrupt row can never yield a corrupt entity;
// mappers are its only intended caller.
func Reconstitute(id domain.UserID, email domain.EmailAddress, name string, role domain.Role,
	active bool, createdAt, updatedAt time.Time, version int64) (*User, error) {
	u, err := New(id, email, name, role, createdAt)
	if err != nil {
		return nil, err
	}
	if version < 1 {
		return nil, dErrors.Newf(dErrors.CodeValidation, "version %d out of range", version)
	}
	u.active = active
	u.createdAt = createdAt.UTC()
	u.updatedAt = updatedAt.UTC()
	u.version = version
	return u, nil
}

func (u *User) ID() domain.UserID           { return u.id }
func (u *User) Email() domain.EmailAddress  { return u.email }
func (u *User) Name() string                { return u.name }
func (u *User) Role() domain.Role           { return u.role }
func (u *User) IsActive() bool              { return u.active }
func (u *User) CreatedAt() time.Time        { return u.createdAt }
func (u *User) UpdatedAt() time.Time        { return u.updatedAt }
func (u *User) Version() int64              { return u.version }

// ChangeEmail swaps the address. The EmailAddress type is valid by
// construction; the zero value is still rejected here so a forgotten
// constructor call cannot blank the field.
func (u *User) ChangeEmail(email domain.EmailAddress, now time.Time) error {
	if err := u.setEmail(email); err != nil {
		return err
	}
	u.touch(now)
	return nil
}

// Rename updates the display name.
func (u *User) Rename(name string, now time.Time) error {
	if err := u.setName(name); err != nil {
		return err
	}
	u.touch(now)
	return nil
}

// ChangeRole moves the user to another supported role.
func (u *User) ChangeRole(role domain.Role, now time.Time) error {
	if err := u.setRole(role); err != nil {
		return err
	}
	u.touch(now)
	return nil
}

// Deactivate transitions the user to inactive.
func (u *User) Deactivate(now time.Time) error {
	if !u.active {
		return dErrors.New(dErrors.CodeInvariantViolation, "user is already inactive")
	}
	u.active = false
	u.touch(now)
	return nil
}

// Reactivate transitions the user back to active.
func (u *User) Reactivate(now time.Time) error {
	if u.active {
		return dErrors.New(dErrors.CodeInvariantViolation, "user is already active")
	}
	u.active = true
	u.touch(now)
	return nil
}

func (u *User) setEmail(email domain.EmailAddress) error {
	if email.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	u.email = email
	return nil
}

func (u *User) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
	}
	if len(name) > maxNameLength {
		return dErrors.Newf(dErrors.CodeValidation, "name must be %d characters or less", maxNameLength)
	}
	u.name = name
	return nil
}

func (u *User) setRole(role domain.Role) error {
	if !role.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown role %q", role)
	}
	u.role = role
	return nil
}

func (u *User) touch(now time.Time) {
	u.updatedAt = now.UTC()
}
