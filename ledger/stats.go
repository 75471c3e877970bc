/*
stats.go - Aggregations over transaction sets

PURPOSE:
  Pure filter/aggregate functions behind the dashboard and calendar views.
  Linear scans over the active set; no persistence, no side effects.

FUNCTIONS:
  FilterRange:       Transactions whose date falls inside [from, to]
  Totals:            Income / expense / balance for a set
  CategoryBreakdown: Per-category totals for one transaction type, sorted
  DailyTotals:       Per-day income/expense for a calendar month
  AverageDailyExpense: Mean of non-zero daily expense totals
*/
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Totals summarizes a transaction set.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// CategoryTotal is one slice of the breakdown chart.
type CategoryTotal struct {
	Category Category        `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// DayTotal aggregates one calendar day.
type DayTotal struct {
	Day     string          `json:"day"` // "2006-01-02"
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Count   int             `json:"count"`
}

// FilterRange returns the transactions whose date falls within [from, to].
// Transactions with unparseable dates are skipped.
func FilterRange(txs []Transaction, from, to time.Time) []Transaction {
	var out []Transaction
	for _, t := range txs {
		ts, err := ParseDate(t.Date)
		if err != nil {
			continue
		}
		if !ts.Before(from) && !ts.After(to) {
			out = append(out, t)
		}
	}
	return out
}

// Sum computes income/expense/balance totals for a set.
func Sum(txs []Transaction) Totals {
	totals := Totals{
		Income:  decimal.Zero,
		Expense: decimal.Zero,
		Balance: decimal.Zero,
	}
	for _, t := range txs {
		switch t.Type {
		case TypeIncome:
			totals.Income = totals.Income.Add(t.Amount)
		case TypeExpense:
			totals.Expense = totals.Expense.Add(t.Amount)
		}
	}
	totals.Balance = totals.Income.Sub(totals.Expense)
	return totals
}

// BreakdownByCategory totals transactions of the given type per category,
// sorted by descending total. Categories with no transactions are omitted.
func BreakdownByCategory(txs []Transaction, typ TransactionType) []CategoryTotal {
	byCat := make(map[Category]decimal.Decimal)
	for _, t := range txs {
		if t.Type != typ {
			continue
		}
		byCat[t.Category] = byCat[t.Category].Add(t.Amount)
	}

	out := make([]CategoryTotal, 0, len(byCat))
	for cat, total := range byCat {
		out = append(out, CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// DailyTotals aggregates transactions per calendar day for the given
// year/month, sorted by day.
func DailyTotals(txs []Transaction, year int, month time.Month) []DayTotal {
	byDay := make(map[string]*DayTotal)
	for _, t := range txs {
		ts, err := ParseDate(t.Date)
		if err != nil {
			continue
		}
		if ts.Year() != year || ts.Month() != month {
			continue
		}
		day := ts.Format("2006-01-02")
		dt, ok := byDay[day]
		if !ok {
			dt = &DayTotal{Day: day, Income: decimal.Zero, Expense: decimal.Zero}
			byDay[day] = dt
		}
		switch t.Type {
		case TypeIncome:
			dt.Income = dt.Income.Add(t.Amount)
		case TypeExpense:
			dt.Expense = dt.Expense.Add(t.Amount)
		}
		dt.Count++
	}

	out := make([]DayTotal, 0, len(byDay))
	for _, dt := range byDay {
		out = append(out, *dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// AverageDailyExpense returns the mean of the non-zero daily expense
// totals, or zero if there are none. Used by the calendar heat view.
func AverageDailyExpense(days []DayTotal) decimal.Decimal {
	sum := decimal.Zero
	n := 0
	for _, d := range days {
		if d.Expense.IsPositive() {
			sum = sum.Add(d.Expense)
			n++
		}
	}
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}
