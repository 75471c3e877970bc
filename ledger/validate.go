package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel validation errors. The API layer maps these to 400 responses.
var (
	ErrMissingID       = errors.New("transaction id is required")
	ErrInvalidType     = errors.New("transaction type must be INCOME or EXPENSE")
	ErrInvalidAmount   = errors.New("transaction amount must be positive")
	ErrInvalidCategory = errors.New("unknown transaction category")
	ErrInvalidSource   = errors.New("unknown payment source")
	ErrInvalidDate     = errors.New("transaction date is not a valid instant")
)

// Validate checks a transaction at the entry boundary. Persisted data is
// deliberately NOT re-validated on load; the diagnostic scan reports on it
// instead of rejecting it.
func Validate(t Transaction) error {
	if t.ID == "" {
		return ErrMissingID
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if !t.Amount.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, t.Amount)
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	if !t.Source.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSource, t.Source)
	}
	if _, err := ParseDate(t.Date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, t.Date)
	}
	return nil
}
