package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category classifies an expense record as money in or money out.
type Category string

const (
	// CategoryIncome marks a record as money received.
	CategoryIncome Category = "Income"
	// CategoryExpense marks a record as money spent.
	CategoryExpense Category = "Expense"
)

// ParseCategory validates a raw category value.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryIncome, CategoryExpense:
		return Category(s), nil
	}
	return "", fmt.Errorf("category must be %q or %q", CategoryIncome, CategoryExpense)
}

// Amount is a non-negative fixed-point money value stored as cents.
// Amounts are plain magnitudes; the sign of effect is carried by Category.
type Amount int64

// ErrInvalidAmount is returned for values that are not a non-negative
// fixed-point number with at most two decimal places.
var ErrInvalidAmount = errors.New("amount must be a non-negative number with at most two decimals")

const maxAmountDigits = 10 // matches DECIMAL(10,2)

// ParseAmount parses a decimal string like "950", "950.5" or "950.00".
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '-' || s[0] == '+' {
		return 0, ErrInvalidAmount
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" || len(frac) > 2 || len(whole) > maxAmountDigits {
		return 0, ErrInvalidAmount
	}

	var cents int64
	for _, c := range whole {
		if c < '0' || c > '9' {
			return 0, ErrInvalidAmount
		}
		cents = cents*10 + int64(c-'0')
	}
	cents *= 100

	// Pad "950.5" to 50 cents.
	for i, c := range []byte(frac) {
		if c < '0' || c > '9' {
			return 0, ErrInvalidAmount
		}
		d := int64(c - '0')
		if i == 0 {
			d *= 10
		}
		cents += d
	}
	return Amount(cents), nil
}

// Cents returns the raw cent count.
func (a Amount) Cents() int64 { return int64(a) }

// String renders the amount with two decimal places, e.g. "950.00".
func (a Amount) String() string {
	return fmt.Sprintf("%d.%02d", int64(a)/100, int64(a)%100)
}

// MarshalJSON renders the amount as a decimal string so clients never see
// float rounding artifacts.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts both `"950.00"` and bare JSON numbers.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		return nil
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// DateLayout is the wire and storage format for expense dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string { return d.Format(DateLayout) }

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Expense represents a dated financial record owned by a user. The owner is
// always the authenticated session user, never a client-supplied id.
type Expense struct {
	ID       int64    `json:"id"`
	UserID   int64    `json:"user_id"`
	Name     string   `json:"name"`
	Amount   Amount   `json:"amount"`
	Date     Date     `json:"date"`
	Category Category `json:"category"`
}
