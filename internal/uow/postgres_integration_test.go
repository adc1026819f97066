//go:build integration

package uow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fintrack/internal/platform/audit"
	"fintrack/internal/uow"
	"fintrack/internal/user"
	"fintrack/pkg/domain"
	dErrors "fintrack/pkg/domain-errors"
	"fintrack/pkg/testutil/containers"
)

type PostgresUnitOfWorkSuite struct {
	suite.Suite
	ctx      context.Context
	postgres *containers.PostgresContainer
	outbox   *audit.Outbox
	factory  *uow.PostgresFactory
	now      time.Time
}

func TestPostgresUnitOfWorkSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUnitOfWorkSuite))
}

func (s *PostgresUnitOfWorkSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())
	s.outbox = audit.NewOutbox(s.postgres.DB)
	s.factory = uow.NewPostgresFactory(s.postgres.DB, s.outbox, nil)
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresUnitOfWorkSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PostgresUnitOfWorkSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(s.ctx))
}

func (s *PostgresUnitOfWorkSuite) newUser(email string) *user.User {
	u, err := user.New(domain.NewUserID(), domain.MustEmailAddress(email), "Pat Jones", domain.RoleOwner, s.now)
	s.Require().NoError(err)
	return u
}

func (s *PostgresUnitOfWorkSuite) TestCommitPersistsAcrossUnits() {
	created := s.newUser("it@example.com")
	s.Require().NoError(uow.Execute(s.ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		_, err := u.Users().Create(ctx, created)
		return err
	}))

	err := uow.Execute(s.ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		found, err := u.Users().GetByEmail(ctx, domain.MustEmailAddress("it@example.com"))
		if err != nil {
			return err
		}
		s.Equal(created.ID(), found.ID())
		s.Equal(int64(1), found.Version())
		return nil
	})
	s.Require().NoError(err)
}

func (s *PostgresUnitOfWorkSuite) TestRollbackLeavesNoRows() {
	created := s.newUser("rollback@example.com")

	u1, err := s.factory.Begin(s.ctx)
	s.Require().NoError(err)
	_, err = u1.Users().Create(s.ctx, created)
	s.Require().NoError(err)
	s.Require().NoError(u1.Rollback())

	err = uow.Execute(s.ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		_, err := u.Users().GetByID(ctx, created.ID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		return nil
	})
	s.Require().NoError(err)
}

func (s *PostgresUnitOfWorkSuite) TestStaleUpdateConflicts() {
	created := s.newUser("stale@example.com")
	s.Require().NoError(uow.Execute(s.ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		_, err := u.Users().Create(ctx, created)
		return err
	}))

	// First writer wins.
	s.Require().NoError(uow.Execute(s.ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		loaded, err := u.Users().GetByID(ctx, created.ID())
		if err != nil {
			return err
		}
		if err := loaded.Rename("First Writer", s.now); err != nil {
			return err
		}
		_, err = u.Users().Update(ctx, loaded)
		return err
	}))

	// Second writer still holds the original version.
	err := uow.Execute(s.ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		s.Require().NoError(created.Rename("Second Writer", s.now))
		_, err := u.Users().Update(ctx, created)
		return err
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	s.Require().NoError(uow.Execute(s.ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		stored, err := u.Users().GetByID(ctx, created.ID())
		if err != nil {
			return err
		}
		s.Equal("First Writer", stored.Name())
		s.Equal(int64(2), stored.Version())
		return nil
	}))
}

func (s *PostgresUnitOfWorkSuite) TestDuplicateEmailRollsBackWholeUnit() {
	first := s.newUser("taken@example.com")
	s.Require().NoError(uow.Execute(s.ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		_, err := u.Users().Create(ctx, first)
		return err
	}))

	bystander := s.newUser("bystander@example.com")
	err := uow.Execute(s.ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		if _, err := u.Users().Create(ctx, bystander); err != nil {
			return err
		}
		_, err := u.Users().Create(ctx, s.newUser("taken@example.com"))
		return err
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	s.Require().NoError(uow.Execute(s.ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		_, err := u.Users().GetByID(ctx, bystander.ID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		return nil
	}))
}

func (s *PostgresUnitOfWorkSuite) TestAuditEventsCommitWithData() {
	created := s.newUser("audited@example.com")
	s.Require().NoError(uow.Execute(s.ctx, s.factory, func(ctx context.Context, u uow.UnitOfWork) error {
		if _, err := u.Users().Create(ctx, created); err != nil {
			return err
		}
		u.Record(audit.NewEvent(audit.ActionUserRegistered, created.ID().String(), "system"))
		return nil
	}))

	entries, err := s.outbox.ListUnpublished(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(string(audit.ActionUserRegistered), entries[0].Action)

	s.Require().NoError(s.outbox.MarkPublished(s.ctx, []string{entries[0].ID}))
	entries, err = s.outbox.ListUnpublished(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)
}
