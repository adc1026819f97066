package store

import (
	"fintrack/internal/transaction"
	"fintrack/pkg/domain"
	dErrors "fintrack/pkg/domain-errors"
)

// toRow converts an entity to its storage shape. Pure; no I/O.
func toRow(t *transaction.Transaction) transactionRow {
	return transactionRow{
		ID:          t.ID().String(),
		AccountID:   t.AccountID().String(),
		AmountMinor: t.Amount().Amount(),
		Currency:    t.Amount().Currency().String(),
		Category:    t.Category().String(),
		OccurredAt:  t.OccurredAt(),
		Note:        t.Note(),
		CreatedAt:   t.CreatedAt(),
		UpdatedAt:   t.UpdatedAt(),
		Version:     t.Version(),
	}
}

// toEntity reconstructs the entity, rejecting structurally inconsistent
// rows as mapping errors.
func toEntity(r transactionRow) (*transaction.Transaction, error) {
	id, err := domain.ParseTransactionID(r.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "transaction row: bad id")
	}
	accountID, err := domain.ParseAccountID(r.AccountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "transaction row: bad account id")
	}
	currency, err := domain.ParseCurrency(r.Currency)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "transaction row: bad currency")
	}
	amount, err := domain.NewMoney(r.AmountMinor, currency)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "transaction row: bad amount")
	}
	category, err := domain.ParseCategory(r.Category)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "transaction row: bad category")
	}
	t, err := transaction.Reconstitute(id, accountID, amount, category, r.OccurredAt, r.Note,
		r.CreatedAt, r.UpdatedAt, r.Version)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMapping, "transaction row: invariants violated")
	}
	return t, nil
}
