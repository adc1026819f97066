package transaction

import (
	"context"
	"time"

	"fintrack/pkg/domain"
)

// Filter narrows ListByAccount results. Zero fields mean "no bound".
type Filter struct {
	From  time.Time // inclusive lower bound on OccurredAt
	To    time.Time // exclusive upper bound on OccurredAt
	Limit int       // 0 means no limit
}

// Repository is the persistence contract for the Transaction aggregate.
//
// Errors: absence is CodeNotFound; version mismatch on Update is
// CodeConflict. ListByAccount returns entries newest-first.
type Repository interface {
	Create(ctx context.Context, t *Transaction) (*Transaction, error)
	GetByID(ctx context.Context, id domain.TransactionID) (*Transaction, error)
	ListByAccount(ctx context.Context, accountID domain.AccountID, filter Filter) ([]*Transaction, error)
	Update(ctx context.Context, t *Transaction) (*Transaction, error)
	Delete(ctx context.Context, id domain.TransactionID) error
}
