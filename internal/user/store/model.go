// Package store persists the User aggregate. It is the only package that
// knows both the entity shape and the users table shape; the mapper pair in
// mapper.go is the sole bridge between them.
package store

import "time"

// userRow mirrors the users table. Pure data, no behavior; identifiers are
// stored string-encoded and money never appears here.
type userRow struct {
	ID        string
	Email     string
	Name      string
	Role      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

func cloneUserRow(r userRow) userRow { return r }

func userRowVersion(r userRow) int64 { return r.Version }
