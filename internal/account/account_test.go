package account_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fintrack/internal/account"
	"fintrack/pkg/domain"
	dErrors "fintrack/pkg/domain-errors"
)

type AccountSuite struct {
	suite.Suite
	now time.Time
}

func (s *AccountSuite) SetupTest() {
	s.now = time.Date(2026, time.August, 1, 9, 30, 0, 0, time.UTC)
}

func TestAccountSuite(t *testing.T) {
	suite.Run(t, new(AccountSuite))
}

func (s *AccountSuite) newAccount() *account.Account {
	a, err := account.New(domain.NewAccountID(), domain.NewUserID(), "Checking", domain.CurrencyUSD, s.now)
	s.Require().NoError(err)
	return a
}

func (s *AccountSuite) TestConstruction() {
	s.Run("opens with zero balance in the requested currency", func() {
		a := s.newAccount()
		s.True(a.IsOpen())
		s.True(a.Balance().IsZero())
		s.Equal(domain.CurrencyUSD, a.Currency())
		s.Equal(int64(1), a.Version())
	})

	s.Run("rejects nil owner", func() {
		_, err := account.New(domain.NewAccountID(), domain.UserID{}, "Checking", domain.CurrencyUSD, s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects unsupported currency", func() {
		_, err := account.New(domain.NewAccountID(), domain.NewUserID(), "Checking", domain.Currency("DOGE"), s.now)
		s.Require().Error(err)
	})
}

func (s *AccountSuite) TestReconstitute() {
	s.Run("rejects closed account with non-zero balance", func() {
		_, err := account.Reconstitute(domain.NewAccountID(), domain.NewUserID(), "X",
			domain.MustMoney(100, domain.CurrencyUSD), account.StatusClosed, s.now, s.now, 3)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects unknown status", func() {
		_, err := account.Reconstitute(domain.NewAccountID(), domain.NewUserID(), "X",
			domain.MustMoney(0, domain.CurrencyUSD), account.Status("frozen"), s.now, s.now, 1)
		s.Require().Error(err)
	})

	s.Run("preserves balance and version", func() {
		a, err := account.Reconstitute(domain.NewAccountID(), domain.NewUserID(), "X",
			domain.MustMoney(12345, domain.CurrencyEUR), account.StatusOpen, s.now, s.now, 9)
		s.Require().NoError(err)
		s.Equal(int64(12345), a.Balance().Amount())
		s.Equal(int64(9), a.Version())
	})
}

func (s *AccountSuite) TestDepositWithdraw() {
	s.Run("deposit credits the balance", func() {
		a := s.newAccount()
		s.Require().NoError(a.Deposit(domain.MustMoney(5000, domain.CurrencyUSD), s.now))
		s.Equal(int64(5000), a.Balance().Amount())
	})

	s.Run("withdraw debits within funds", func() {
		a := s.newAccount()
		s.Require().NoError(a.Deposit(domain.MustMoney(5000, domain.CurrencyUSD), s.now))
		s.Require().NoError(a.Withdraw(domain.MustMoney(2000, domain.CurrencyUSD), s.now))
		s.Equal(int64(3000), a.Balance().Amount())
	})

	s.Run("overdraft is refused and balance unchanged", func() {
		a := s.newAccount()
		s.Require().NoError(a.Deposit(domain.MustMoney(100, domain.CurrencyUSD), s.now))

		err := a.Withdraw(domain.MustMoney(200, domain.CurrencyUSD), s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		s.Equal(int64(100), a.Balance().Amount())
	})

	s.Run("currency mismatch is refused", func() {
		a := s.newAccount()
		err := a.Deposit(domain.MustMoney(100, domain.CurrencyEUR), s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("non-positive amounts are refused", func() {
		a := s.newAccount()
		s.Error(a.Deposit(domain.MustMoney(0, domain.CurrencyUSD), s.now))
		s.Error(a.Withdraw(domain.MustMoney(-5, domain.CurrencyUSD), s.now))
	})

	s.Run("apply routes by sign", func() {
		a := s.newAccount()
		s.Require().NoError(a.Apply(domain.MustMoney(300, domain.CurrencyUSD), s.now))
		s.Require().NoError(a.Apply(domain.MustMoney(-100, domain.CurrencyUSD), s.now))
		s.Equal(int64(200), a.Balance().Amount())
		s.Error(a.Apply(domain.MustMoney(0, domain.CurrencyUSD), s.now))
	})
}

func (s *AccountSuite) TestCloseReopen() {
	s.Run("close requires zero balance", func() {
		a := s.newAccount()
		s.Require().NoError(a.Deposit(domain.MustMoney(100, domain.CurrencyUSD), s.now))

		err := a.Close(s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		s.True(a.IsOpen())
	})

	s.Run("closed account refuses balance changes", func() {
		a := s.newAccount()
		s.Require().NoError(a.Close(s.now))

		err := a.Deposit(domain.MustMoney(100, domain.CurrencyUSD), s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("reopen restores the account", func() {
		a := s.newAccount()
		s.Require().NoError(a.Close(s.now))
		s.Require().NoError(a.Reopen(s.now))
		s.True(a.IsOpen())
		s.Require().NoError(a.Deposit(domain.MustMoney(100, domain.CurrencyUSD), s.now))
	})
}
