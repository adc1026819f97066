package domain

import (
	"net/mail"
	"strings"

	dErrors "fintrack/pkg/domain-errors"
)

const maxEmailLength = 254

// EmailAddress is a validated, normalized email. The zero value is invalid;
// construct via NewEmailAddress so an EmailAddress in hand is always valid.
type EmailAddress struct {
	value string
}

// NewEmailAddress validates and normalizes an email address. Normalization
// trims surrounding whitespace and lowercases, so lookups are
// case-insensitive by construction.
func NewEmailAddress(s string) (EmailAddress, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return EmailAddress{}, dErrors.New(dErrors.CodeValidation, "email cannot be empty")
	}
	if len(normalized) > maxEmailLength {
		return EmailAddress{}, dErrors.Newf(dErrors.CodeValidation, "email must be %d characters or less", maxEmailLength)
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil {
		return EmailAddress{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid email address")
	}
	// mail.ParseAddress accepts display names ("Jane <jane@x>"); reject
	// anything that is not a bare address.
	if addr.Address != normalized {
		return EmailAddress{}, dErrors.New(dErrors.CodeValidation, "email must be a bare address")
	}
	return EmailAddress{value: normalized}, nil
}

// MustEmailAddress panics on invalid input. Test and wiring use only.
func MustEmailAddress(s string) EmailAddress {
	e, err := NewEmailAddress(s)
	if err != nil {
		panic(err)
	}
	return e
}

func (e EmailAddress) String() string { return e.value }
func (e EmailAddress) IsZero() bool   { return e.value == "" }
