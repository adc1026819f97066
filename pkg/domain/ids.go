// Package domain holds the value objects shared across aggregates: typed
// identifiers, email addresses, money, roles, categories, and budget
// periods. Everything here is immutable, equality is structural, and the
// only way to obtain a value is through a Parse*/New* constructor that
// rejects invalid input up front.
package domain

import (
	"github.com/google/uuid"

	dErrors "fintrack/pkg/domain-errors"
)

// Typed identifiers prevent cross-aggregate ID mixups at compile time.
// A UserID can never be passed where an AccountID is expected.
type (
	UserID        uuid.UUID
	AccountID     uuid.UUID
	TransactionID uuid.UUID
	BudgetID      uuid.UUID
)

// parseUUID enforces the shared ID invariant: valid, non-empty, non-nil.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", kind)
	}
	return u, nil
}

// ParseUserID validates and returns a UserID. Call at trust boundaries;
// direct casting bypasses validation.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// NewUserID generates a fresh UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// ParseAccountID validates and returns an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s, "account id")
	return AccountID(u), err
}

// NewAccountID generates a fresh AccountID.
func NewAccountID() AccountID { return AccountID(uuid.New()) }

func (id AccountID) String() string { return uuid.UUID(id).String() }
func (id AccountID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// ParseTransactionID validates and returns a TransactionID.
func ParseTransactionID(s string) (TransactionID, error) {
	u, err := parseUUID(s, "transaction id")
	return TransactionID(u), err
}

// NewTransactionID generates a fresh TransactionID.
func NewTransactionID() TransactionID { return TransactionID(uuid.New()) }

func (id TransactionID) String() string { return uuid.UUID(id).String() }
func (id TransactionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// ParseBudgetID validates and returns a BudgetID.
func ParseBudgetID(s string) (BudgetID, error) {
	u, err := parseUUID(s, "budget id")
	return BudgetID(u), err
}

// NewBudgetID generates a fresh BudgetID.
func NewBudgetID() BudgetID { return BudgetID(uuid.New()) }

func (id BudgetID) String() string { return uuid.UUID(id).String() }
func (id BudgetID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
