// Package account holds the Account aggregate root and its repository
// contract. An account belongs to exactly one user; ownership is held as a
// UserID value, not an object reference, so loading an account never drags
// the owner graph along.
package account

import (
	"strings"
	"time"

	"fintrack/pkg/domain"
	dErrors "fintrack/pkg/domain-errors"
)

const maxNameLength = 128

// Status is the account lifecycle state.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// ParseStatus validates a status from external input or storage.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusClosed:
		return Status(s), nil
	default:
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown account status %q", s)
	}
}

// Account is the aggregate root for a money account.
//
// Invariants:
//   - ID and OwnerID are immutable for the lifetime of the entity
//   - Balance currency equals the account currency, always
//   - Withdrawals may not take the balance below the overdraft floor
//   - A closed account accepts no balance changes and must close at zero
type Account struct {
	id        domain.AccountID
	ownerID   domain.UserID
	name      string
	balance   domain.Money
	status    Status
	createdAt time.Time
	updatedAt time.Time
	version   int64
}

// overdraftFloor is the lowest balance a withdrawal may leave, in minor
// units. Zero means no overdraft.
const overdraftFloor = int64(0)

// New opens a fresh account with a zero balance in the given currency.
func New(id domain.AccountID, ownerID domain.UserID, name string, currency domain.Currency, now time.Time) (*Account, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "account id is required")
	}
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "owner id is required")
	}
	zero, err := domain.ZeroMoney(currency)
	if err != nil {
		return nil, err
	}
	a := &Account{
		id:        id,
		ownerID:   ownerID,
		balance:   zero,
		status:    StatusOpen,
		createdAt: now.UTC(),
		updatedAt: now.UTC(),
		version:   1,
	}
	if err := a.setName(name); err != nil {
		return nil, err
	}
	return a, nil
}

// Reconstitute rebuilds an Account from persisted state, running full
// validation so corrupt rows are rejected at the mapping boundary.
func Reconstitute(id domain.AccountID, ownerID domain.UserID, name string, balance domain.Money,
	status Status, createdAt, updatedAt time.Time, version int64) (*Account, error) {
	a, err := New(id, ownerID, name, balance.Currency(), createdAt)
	if err != nil {
		return nil, err
	}
	if status != StatusOpen && status != StatusClosed {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown account status %q", status)
	}
	if status == StatusClosed && !balance.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "closed account must have zero balance")
	}
	if version < 1 {
		return nil, dErrors.Newf(dErrors.CodeValidation, "version %d out of range", version)
	}
	a.balance = balance
	a.status = status
	a.createdAt = createdAt.UTC()
	a.updatedAt = updatedAt.UTC()
	a.version = version
	return a, nil
}

func (a *Account) ID() domain.AccountID      { return a.id }
func (a *Account) OwnerID() domain.UserID    { return a.ownerID }
func (a *Account) Name() string              { return a.name }
func (a *Account) Balance() domain.Money     { return a.balance }
func (a *Account) Currency() domain.Currency { return a.balance.Currency() }
func (a *Account) Status() Status            { return a.status }
func (a *Account) IsOpen() bool              { return a.status == StatusOpen }
func (a *Account) CreatedAt() time.Time      { return a.createdAt }
func (a *Account) UpdatedAt() time.Time      { return a.updatedAt }
func (a *Account) Version() int64            { return a.version }

// Rename updates the display name.
func (a *Account) Rename(name string, now time.Time) error {
	if err := a.setName(name); err != nil {
		return err
	}
	a.touch(now)
	return nil
}

// Deposit credits the account. The amount must be positive and in the
// account currency.
func (a *Account) Deposit(amount domain.Money, now time.Time) error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "deposit amount must be positive")
	}
	next, err := a.balance.Add(amount)
	if err != nil {
		return err
	}
	a.balance = next
	a.touch(now)
	return nil
}

// Withdraw debits the account, refusing to cross the overdraft floor.
func (a *Account) Withdraw(amount domain.Money, now time.Time) error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "withdrawal amount must be positive")
	}
	next, err := a.balance.Sub(amount)
	if err != nil {
		return err
	}
	if next.Amount() < overdraftFloor {
		return dErrors.New(dErrors.CodeInvariantViolation, "insufficient funds")
	}
	a.balance = next
	a.touch(now)
	return nil
}

// Apply adjusts the balance by a signed amount, the account-side effect of
// recording a transaction. Positive credits, negative debits.
func (a *Account) Apply(amount domain.Money, now time.Time) error {
	if amount.IsNegative() {
		return a.Withdraw(amount.Negate(), now)
	}
	if amount.IsPositive() {
		return a.Deposit(amount, now)
	}
	return dErrors.New(dErrors.CodeValidation, "amount cannot be zero")
}

// Close transitions the account to closed. Only a zero-balance account may
// close, so money cannot vanish with the account.
func (a *Account) Close(now time.Time) error {
	if a.status == StatusClosed {
		return dErrors.New(dErrors.CodeInvariantViolation, "account is already closed")
	}
	if !a.balance.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "account balance must be zero to close")
	}
	a.status = StatusClosed
	a.touch(now)
	return nil
}

// Reopen transitions a closed account back to open.
func (a *Account) Reopen(now time.Time) error {
	if a.status == StatusOpen {
		return dErrors.New(dErrors.CodeInvariantViolation, "account is already open")
	}
	a.status = StatusOpen
	a.touch(now)
	return nil
}

func (a *Account) requireOpen() error {
	if a.status != StatusOpen {
		return dErrors.New(dErrors.CodeInvariantViolation, "account is closed")
	}
	return nil
}

func (a *Account) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "account name cannot be empty")
	}
	if len(name) > maxNameLength {
		return dErrors.Newf(dErrors.CodeValidation, "account name must be %d characters or less", maxNameLength)
	}
	a.name = name
	return nil
}

func (a *Account) touch(now time.Time) {
	a.updatedAt = now.UTC()
}
