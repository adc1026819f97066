// Package store persists the Transaction aggregate. The mapper pair in
// mapper.go is the only bridge between the entity and the transactions
// table.
package store

import "time"

// transactionRow mirrors the transactions table.
type transactionRow struct {
	ID          string
	AccountID   string
	AmountMinor int64
	Currency    string
	Category    string
	OccurredAt  time.Time
	Note        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
}

func cloneTransactionRow(r transactionRow) transactionRow { return r }

func transactionRowVersion(r transactionRow) int64 { return r.Version }
