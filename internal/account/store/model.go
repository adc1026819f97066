// Package store persists the Account aggregate. The mapper pair in
// mapper.go is the only bridge between the entity and the accounts table.
package store

import "time"

// accountRow mirrors the accounts table. Balance is stored as integer minor
// units alongside its currency code; the pair is reunited into Money at the
// mapping boundary.
type accountRow struct {
	ID           string
	OwnerID      string
	Name         string
	BalanceMinor int64
	Currency     string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
}

func cloneAccountRow(r accountRow) accountRow { return r }

func accountRowVersion(r accountRow) int64 { return r.Version }
