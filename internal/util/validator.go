package util

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	maxAmount = decimal.RequireFromString("999999999.99")
)

// ValidateAmount checks that an amount is positive and within range.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("amount cannot exceed %s", maxAmount)
	}
	return nil
}

// ValidateDate parses a YYYY-MM-DD date string.
func ValidateDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	return t, nil
}

// ValidateEntryType checks the income/expense enum.
func ValidateEntryType(t string) error {
	if t != "income" && t != "expense" {
		return fmt.Errorf("type must be either income or expense, got %q", t)
	}
	return nil
}

// ValidateEmail checks basic email shape.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email address: %q", email)
	}
	return nil
}
