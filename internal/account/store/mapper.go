package store

import (
	"fintrack/internal/account"
	"fintrack/pkg/domain"
	dErrors "fintrack/pkg/domain-errors"
)

// toRow converts an entity to its storage shape. Pure; no I/O.
func toRow(a *account.Account) accountRow {
	return accountRow{
		ID:           a.ID().String(),
		OwnerID:      a.OwnerID().String(),
		Name:         a.Name(),
		BalanceMinor: a.Balance().Amount(),
		Currency:     a.Currency().String(),
		Status:       string(a.Status()),
		CreatedAt:    a.CreatedAt(),
		UpdatedAt:    a.UpdatedAt(),
		Version:      a.Version(),
	}
}

// toEntity reconstructs the entity, rejecting rows that violate domain
// invariants (unknown currency, closed account with a balance, ...).
func toEntity(r accountRow) (*account.Account, error) {
	id, err := domain.ParseAccountID(r.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "account row: bad id")
	}
	ownerID, err := domain.ParseUserID(r.OwnerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "account row: bad owner id")
	}
	currency, err := domain.ParseCurrency(r.Currency)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "account row: bad currency")
	}
	balance, err := domain.NewMoney(r.BalanceMinor, currency)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "account row: bad balance")
	}
	status, err := account.ParseStatus(r.Status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "account row: bad status")
	}
	a, err := account.Reconstitute(id, ownerID, r.Name, balance, status, r.CreatedAt, r.UpdatedAt, r.Version)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "account row: invariants violated")
	}
	return a, nil
}
