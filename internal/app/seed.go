package app

import (
	"context"

	dErrors "fintrack/pkg/domain-errors"
)

// SeedDemoData bootstraps a demo user with an account, a couple of
// transactions and a budget. Safe to run repeatedly; it backs off once the
// demo user exists.
func (s *Service) SeedDemoData(ctx context.Context) error {
	registered, opened, err := s.RegisterUser(ctx, "demo@fintrack.dev", "Demo User", "owner", "USD")
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil
		}
		return err
	}

	now := s.clock()
	if _, err := s.RecordTransaction(ctx, opened.ID().String(), 250_000, "salary", now, "first paycheck"); err != nil {
		return err
	}
	if _, err := s.RecordTransaction(ctx, opened.ID().String(), -4_200, "groceries", now, ""); err != nil {
		return err
	}

	period := now.UTC().Format("2006-01")
	_, err = s.PlanBudget(ctx, registered.ID().String(), period, "USD", map[string]int64{
		"groceries": 40_000,
		"rent":      120_000,
		"transport": 15_000,
	})
	if err != nil {
		return err
	}
	s.logger.Printf("app: seeded demo data for %s", registered.ID())
	return nil
}
