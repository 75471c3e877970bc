/*
Package ledger provides the transaction domain model for Smart Money.

PURPOSE:
  Defines the core types consumed by the rest of the system: transactions,
  their closed category/source enums, and amount handling. Transactions are
  immutable value objects - the active working set is replaced wholesale,
  individual entries are never mutated in place.

KEY CONCEPTS IN THIS FILE (types.go):
  - Transaction: An immutable income/expense record
  - TransactionType: INCOME | EXPENSE
  - Category: Closed set of spending/earning categories (Vietnamese labels,
    these are user-visible and part of the persisted format)
  - PaymentSource: Where the money moved (cash, e-wallet, bank)

DESIGN PRINCIPLES:
  1. Immutability: Transactions are never modified, only added or removed
  2. Precision: Uses decimal.Decimal for currency, never float64
  3. Closed enums: Category and source matching is exhaustive

SEE ALSO:
  - stats.go: Aggregations over transaction sets
  - score.go: Financial health score heuristic
  - diagnostic.go: Data quality scan
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION TYPE
// =============================================================================

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is one of the two known types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// =============================================================================
// CATEGORY
// =============================================================================

// Category is a closed set of transaction categories. The labels are
// user-visible and appear verbatim in persisted data, so they must not be
// renamed.
type Category string

const (
	CategoryFood          Category = "Ăn uống"
	CategoryShopping      Category = "Mua sắm"
	CategoryBills         Category = "Hóa đơn"
	CategoryEntertainment Category = "Giải trí"
	CategoryOther         Category = "Khác"
	CategorySalary        Category = "Lương"
	CategoryBonus         Category = "Thưởng"
)

// Categories lists every known category.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryShopping,
		CategoryBills,
		CategoryEntertainment,
		CategoryOther,
		CategorySalary,
		CategoryBonus,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryShopping, CategoryBills,
		CategoryEntertainment, CategoryOther, CategorySalary, CategoryBonus:
		return true
	}
	return false
}

// Essential reports whether spending in this category is considered
// essential. Used by the financial score to weight discretionary spend.
func (c Category) Essential() bool {
	switch c {
	case CategoryFood, CategoryBills:
		return true
	}
	return false
}

// =============================================================================
// PAYMENT SOURCE
// =============================================================================

// PaymentSource identifies where a transaction's money moved.
type PaymentSource string

const (
	SourceCash    PaymentSource = "Tiền mặt"
	SourceEWallet PaymentSource = "Ví điện tử"
	SourceBank    PaymentSource = "Ngân hàng"
)

// Valid reports whether s is a known payment source.
func (s PaymentSource) Valid() bool {
	return s == SourceCash || s == SourceEWallet || s == SourceBank
}

// =============================================================================
// TRANSACTION
// =============================================================================

// Transaction is a single immutable income or expense record. Date is an
// ISO-8601 instant string; it is stored as entered and parsed on demand so
// that a round-trip through the store is byte-for-byte identical.
type Transaction struct {
	ID       string          `json:"id"`
	Type     TransactionType `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Category Category        `json:"category"`
	Date     string          `json:"date"`
	Source   PaymentSource   `json:"source"`
	Note     string          `json:"note"`
}

// Time parses the transaction date. Returns the zero time on failure;
// callers that care use ParseDate directly.
func (t Transaction) Time() time.Time {
	ts, err := ParseDate(t.Date)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Day returns the calendar-day key ("2006-01-02") of the transaction,
// or "" if the date does not parse.
func (t Transaction) Day() string {
	ts, err := ParseDate(t.Date)
	if err != nil {
		return ""
	}
	return ts.Format("2006-01-02")
}

// ParseDate parses an ISO-8601 instant as produced by the entry form.
// Accepts RFC 3339 with or without sub-second precision, and a bare
// date-time without zone (interpreted as local time).
func ParseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if layout == "2006-01-02T15:04:05" || layout == "2006-01-02" {
			if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return ts, nil
			} else {
				lastErr = err
			}
			continue
		}
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
