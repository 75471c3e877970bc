package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Tranvietnhattu/SMARTMONEY/ledger"
)

var scoreNow = time.Date(2024, time.June, 20, 12, 0, 0, 0, time.Local)

func TestComputeScore_NoData(t *testing.T) {
	got := ledger.ComputeScore(nil, scoreNow)
	assert.Equal(t, 0, got.Value)
	assert.Equal(t, ledger.ScoreLabelNoData, got.Label)
	assert.NotEmpty(t, got.Suggestion)
}

func TestComputeScore_IgnoresOtherMonths(t *testing.T) {
	txs := []ledger.Transaction{
		tx("t1", ledger.TypeExpense, 50000, ledger.CategoryFood, "2024-05-20"),
	}
	got := ledger.ComputeScore(txs, scoreNow)
	assert.Equal(t, ledger.ScoreLabelNoData, got.Label, "last month's data must not count")
}

func TestComputeScore_Excellent(t *testing.T) {
	// Savings 80% (full 40), essentials 10% of income (full 30),
	// spending spread over two days (full 20) = 90.
	txs := []ledger.Transaction{
		tx("t1", ledger.TypeIncome, 10000000, ledger.CategorySalary, "2024-06-01"),
		tx("t2", ledger.TypeExpense, 1000000, ledger.CategoryFood, "2024-06-05"),
		tx("t3", ledger.TypeExpense, 1000000, ledger.CategoryShopping, "2024-06-10"),
	}
	got := ledger.ComputeScore(txs, scoreNow)
	assert.Equal(t, 90, got.Value)
	assert.Equal(t, ledger.ScoreLabelExcellent, got.Label)
}

func TestComputeScore_Good(t *testing.T) {
	// Savings 15% -> 30, essentials 30% -> 30, two days -> 20 = 80.
	txs := []ledger.Transaction{
		tx("t1", ledger.TypeIncome, 10000000, ledger.CategorySalary, "2024-06-01"),
		tx("t2", ledger.TypeExpense, 3000000, ledger.CategoryBills, "2024-06-05"),
		tx("t3", ledger.TypeExpense, 5500000, ledger.CategoryEntertainment, "2024-06-10"),
	}
	got := ledger.ComputeScore(txs, scoreNow)
	assert.Equal(t, 80, got.Value)
	assert.Equal(t, ledger.ScoreLabelGood, got.Label)
}

func TestComputeScore_Stable(t *testing.T) {
	// Savings 10% -> 20, essentials 55% -> 27, two days -> 20 = 67.
	txs := []ledger.Transaction{
		tx("t1", ledger.TypeIncome, 10000000, ledger.CategorySalary, "2024-06-01"),
		tx("t2", ledger.TypeExpense, 5500000, ledger.CategoryBills, "2024-06-05"),
		tx("t3", ledger.TypeExpense, 3500000, ledger.CategoryShopping, "2024-06-10"),
	}
	got := ledger.ComputeScore(txs, scoreNow)
	assert.Equal(t, 67, got.Value)
	assert.Equal(t, ledger.ScoreLabelStable, got.Label)
}

func TestComputeScore_Poor_NoIncome(t *testing.T) {
	// Spending with no income: savings 0, essential rate pinned to 1 -> 0,
	// single day -> 10. Total 10.
	txs := []ledger.Transaction{
		tx("t1", ledger.TypeExpense, 500000, ledger.CategoryFood, "2024-06-05"),
	}
	got := ledger.ComputeScore(txs, scoreNow)
	assert.Equal(t, 10, got.Value)
	assert.Equal(t, ledger.ScoreLabelPoor, got.Label)
}

func TestComputeScore_OverspendingClampsToZeroSavings(t *testing.T) {
	// Expenses above income: the savings component clamps at 0 rather
	// than going negative.
	txs := []ledger.Transaction{
		tx("t1", ledger.TypeIncome, 1000000, ledger.CategorySalary, "2024-06-01"),
		tx("t2", ledger.TypeExpense, 2000000, ledger.CategoryShopping, "2024-06-05"),
		tx("t3", ledger.TypeExpense, 500000, ledger.CategoryEntertainment, "2024-06-10"),
	}
	got := ledger.ComputeScore(txs, scoreNow)
	// 0 + 30 (no essential spend) + 20 = 50.
	assert.Equal(t, 50, got.Value)
	assert.Equal(t, ledger.ScoreLabelStable, got.Label)
}
