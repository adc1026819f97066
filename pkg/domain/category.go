package domain

import (
	"strings"

	dErrors "fintrack/pkg/domain-errors"
)

const maxCategoryLength = 64

// Category classifies a transaction and keys budget allocations. Built-in
// categories cover the common cases; custom categories are allowed but must
// be non-empty lowercase slugs (letters, digits, hyphens) within length
// bounds, so storage and comparison stay canonical.
type Category string

// Built-in categories.
const (
	CategoryGroceries     Category = "groceries"
	CategoryRent          Category = "rent"
	CategoryUtilities     Category = "utilities"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategorySalary        Category = "salary"
	CategorySavings       Category = "savings"
	CategoryOther         Category = "other"
)

// ParseCategory validates a category from external input.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "category cannot be empty")
	}
	if len(s) > maxCategoryLength {
		return "", dErrors.Newf(dErrors.CodeValidation, "category must be %d characters or less", maxCategoryLength)
	}
	if s != strings.ToLower(s) {
		return "", dErrors.New(dErrors.CodeValidation, "category must be lowercase")
	}
	for _, r := range s {
		if !isCategoryRune(r) {
			return "", dErrors.Newf(dErrors.CodeValidation, "category contains invalid character %q", r)
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return "", dErrors.New(dErrors.CodeValidation, "category cannot start or end with a hyphen")
	}
	return Category(s), nil
}

func isCategoryRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
}

func (c Category) String() string { return string(c) }
