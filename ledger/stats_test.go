package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tranvietnhattu/SMARTMONEY/ledger"
)

func TestSum(t *testing.T) {
	txs := []ledger.Transaction{
		tx("t1", ledger.TypeIncome, 10000000, ledger.CategorySalary, "2024-06-01"),
		tx("t2", ledger.TypeExpense, 45000, ledger.CategoryFood, "2024-06-02"),
		tx("t3", ledger.TypeExpense, 255000, ledger.CategoryBills, "2024-06-03"),
	}

	totals := ledger.Sum(txs)
	assert.True(t, totals.Income.Equal(decimal.NewFromInt(10000000)))
	assert.True(t, totals.Expense.Equal(decimal.NewFromInt(300000)))
	assert.True(t, totals.Balance.Equal(decimal.NewFromInt(9700000)))
}

func TestSum_Empty(t *testing.T) {
	totals := ledger.Sum(nil)
	assert.True(t, totals.Income.IsZero())
	assert.True(t, totals.Expense.IsZero())
	assert.True(t, totals.Balance.IsZero())
}

func TestBreakdownByCategory(t *testing.T) {
	txs := []ledger.Transaction{
		tx("t1", ledger.TypeExpense, 100000, ledger.CategoryFood, "2024-06-01"),
		tx("t2", ledger.TypeExpense, 250000, ledger.CategoryShopping, "2024-06-02"),
		tx("t3", ledger.TypeExpense, 150000, ledger.CategoryFood, "2024-06-03"),
		tx("t4", ledger.TypeIncome, 10000000, ledger.CategorySalary, "2024-06-01"),
	}

	breakdown := ledger.BreakdownByCategory(txs, ledger.TypeExpense)
	require.Len(t, breakdown, 2, "income must not appear in the expense breakdown")

	// Sorted descending by total.
	assert.Equal(t, ledger.CategoryShopping, breakdown[0].Category)
	assert.True(t, breakdown[0].Total.Equal(decimal.NewFromInt(250000)))
	assert.Equal(t, ledger.CategoryFood, breakdown[1].Category)
	assert.True(t, breakdown[1].Total.Equal(decimal.NewFromInt(250000)))
}

func TestFilterRange(t *testing.T) {
	txs := []ledger.Transaction{
		tx("before", ledger.TypeExpense, 1, ledger.CategoryFood, "2024-06-09T23:59:59+07:00"),
		tx("inside", ledger.TypeExpense, 1, ledger.CategoryFood, "2024-06-15T12:00:00+07:00"),
		tx("broken", ledger.TypeExpense, 1, ledger.CategoryFood, "???"),
		tx("after", ledger.TypeExpense, 1, ledger.CategoryFood, "2024-07-10T00:00:00+07:00"),
	}

	from := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	to := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.FixedZone("ICT", 7*3600)).Add(-time.Millisecond)

	got := ledger.FilterRange(txs, from, to)
	require.Len(t, got, 1)
	assert.Equal(t, "inside", got[0].ID)
}

func TestDailyTotals(t *testing.T) {
	txs := []ledger.Transaction{
		tx("t1", ledger.TypeExpense, 40000, ledger.CategoryFood, "2024-06-03T08:00:00+07:00"),
		tx("t2", ledger.TypeExpense, 60000, ledger.CategoryFood, "2024-06-03T19:00:00+07:00"),
		tx("t3", ledger.TypeIncome, 500000, ledger.CategoryBonus, "2024-06-05"),
		tx("other-month", ledger.TypeExpense, 99999, ledger.CategoryFood, "2024-07-01"),
	}

	days := ledger.DailyTotals(txs, 2024, time.June)
	require.Len(t, days, 2)

	assert.Equal(t, "2024-06-03", days[0].Day)
	assert.True(t, days[0].Expense.Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, 2, days[0].Count)

	assert.Equal(t, "2024-06-05", days[1].Day)
	assert.True(t, days[1].Income.Equal(decimal.NewFromInt(500000)))

	avg := ledger.AverageDailyExpense(days)
	assert.True(t, avg.Equal(decimal.NewFromInt(100000)), "income-only days are excluded from the average")
}

func TestAverageDailyExpense_NoExpenseDays(t *testing.T) {
	assert.True(t, ledger.AverageDailyExpense(nil).IsZero())
}
