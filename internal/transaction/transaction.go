// Package transaction holds the Transaction aggregate root and its
// repository contract. A transaction belongs to exactly one account and is
// classified by a category; the amount is signed Money (positive credit,
// negative debit) whose currency is fixed at construction.
package transaction

import (
	"strings"
	"time"

	"fintrack/pkg/domain"
	dErrors "fintrack/pkg/domain-errors"
)

const maxNoteLength = 512

// Transaction is the aggregate root for a single ledger entry.
//
// Invariants:
//   - ID and AccountID are immutable for the lifetime of the entity
//   - Amount is non-zero; its currency never changes after construction
//   - Category is always a valid category
//   - OccurredAt is never the zero time
type Transaction struct {
	id         domain.TransactionID
	accountID  domain.AccountID
	amount     domain.Money
	category   domain.Category
	occurredAt time.Time
	note       string
	createdAt  time.Time
	updatedAt  time.Time
	version    int64
}

// New records a fresh transaction against an account.
func New(id domain.TransactionID, accountID domain.AccountID, amount domain.Money,
	category domain.Category, occurredAt time.Time, note string, now time.Time) (*Transaction, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "transaction id is required")
	}
	if accountID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "account id is required")
	}
	if amount.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "amount cannot be zero")
	}
	if !amount.Currency().IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "amount currency is required")
	}
	if occurredAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "occurred-at time is required")
	}
	t := &Transaction{
		id:         id,
		accountID:  accountID,
		amount:     amount,
		occurredAt: occurredAt.UTC(),
		createdAt:  now.UTC(),
		updatedAt:  now.UTC(),
		version:    1,
	}
	if err := t.setCategory(category); err != nil {
		return nil, err
	}
	if err := t.setNote(note); err != nil {
		return nil, err
	}
	return t, nil
}

// Reconstitute rebuilds a Transaction from persisted state with full
// validation; mappers are its only intended caller.
func Reconstitute(id domain.TransactionID, accountID domain.AccountID, amount domain.Money,
	category domain.Category, occurredAt time.Time, note string,
	createdAt, updatedAt time.Time, version int64) (*Transaction, error) {
	t, err := New(id, accountID, amount, category, occurredAt, note, createdAt)
	if err != nil {
		return nil, err
	}
	if version < 1 {
		return nil, dErrors.Newf(dErrors.CodeValidation, "version %d out of range", version)
	}
	t.createdAt = createdAt.UTC()
	t.updatedAt = updatedAt.UTC()
	t.version = version
	return t, nil
}

func (t *Transaction) ID() domain.TransactionID     { return t.id }
func (t *Transaction) AccountID() domain.AccountID  { return t.accountID }
func (t *Transaction) Amount() domain.Money         { return t.amount }
func (t *Transaction) Category() domain.Category    { return t.category }
func (t *Transaction) OccurredAt() time.Time        { return t.occurredAt }
func (t *Transaction) Note() string                 { return t.note }
func (t *Transaction) CreatedAt() time.Time         { return t.createdAt }
func (t *Transaction) UpdatedAt() time.Time         { return t.updatedAt }
func (t *Transaction) Version() int64               { return t.version }
func (t *Transaction) IsDebit() bool                { return t.amount.IsNegative() }

// Reclassify moves the transaction to another category. Amount and account
// are deliberately not mutable; corrections are compensating entries.
func (t *Transaction) Reclassify(category domain.Category, now time.Time) error {
	if err := t.setCategory(category); err != nil {
		return err
	}
	t.touch(now)
	return nil
}

// Annotate replaces the free-form note.
func (t *Transaction) Annotate(note string, now time.Time) error {
	if err := t.setNote(note); err != nil {
		return err
	}
	t.touch(now)
	return nil
}

func (t *Transaction) setCategory(category domain.Category) error {
	parsed, err := domain.ParseCategory(category.String())
	if err != nil {
		return err
	}
	t.category = parsed
	return nil
}

func (t *Transaction) setNote(note string) error {
	note = strings.TrimSpace(note)
	if len(note) > maxNoteLength {
		return dErrors.Newf(dErrors.CodeValidation, "note must be %d characters or less", maxNoteLength)
	}
	t.note = note
	return nil
}

func (t *Transaction) touch(now time.Time) {
	t.updatedAt = now.UTC()
}
