/*
score.go - Financial health score heuristic

PURPOSE:
  Computes the 0-100 financial score shown on the dashboard. Three weighted
  components over the current calendar month:
    - Savings rate (up to 40): saving 20%+ of income earns the full weight
    - Essential spend (up to 30): penalized once essential categories
      exceed half of income
    - Stability (up to 20): spending spread over more than one day

  This is a display heuristic, not an accounting truth. Ratios are computed
  in float64 on purpose; amounts themselves stay decimal.
*/
package ledger

import (
	"math"
	"time"
)

// Score is the computed financial health result.
type Score struct {
	Value      int    `json:"value"` // 0-100
	Label      string `json:"label"`
	Suggestion string `json:"suggestion"`
}

// Score labels, user-visible.
const (
	ScoreLabelNoData    = "CHƯA DỮ LIỆU"
	ScoreLabelPoor      = "CẦN CẢI THIỆN"
	ScoreLabelStable    = "ỔN ĐỊNH"
	ScoreLabelGood      = "RẤT TỐT"
	ScoreLabelExcellent = "XUẤT SẮC"
)

// ComputeScore evaluates the financial score over transactions falling in
// now's calendar month.
func ComputeScore(txs []Transaction, now time.Time) Score {
	var income, expense, essential float64
	days := make(map[string]bool)
	seen := 0

	for _, t := range txs {
		ts, err := ParseDate(t.Date)
		if err != nil {
			continue
		}
		if ts.Year() != now.Year() || ts.Month() != now.Month() {
			continue
		}
		seen++
		amount := t.Amount.InexactFloat64()
		if t.Type == TypeIncome {
			income += amount
			continue
		}
		expense += amount
		if t.Category.Essential() {
			essential += amount
		}
		days[ts.Format("2006-01-02")] = true
	}

	if seen == 0 {
		return Score{
			Value:      0,
			Label:      ScoreLabelNoData,
			Suggestion: "Hãy bắt đầu ghi chép để hệ thống đánh giá sức khỏe tài chính của bạn.",
		}
	}

	savingsRate := 0.0
	if income > 0 {
		savingsRate = (income - expense) / income
	}
	savingsScore := clamp(savingsRate/0.2*40, 0, 40)

	essentialRate := 0.0
	if income > 0 {
		essentialRate = essential / income
	} else if essential > 0 {
		essentialRate = 1
	}
	overrun := 0.0
	if essentialRate > 0.5 {
		overrun = (essentialRate - 0.5) / 0.5
	}
	essentialScore := clamp((1-overrun)*30, 0, 30)

	stabilityScore := 10.0
	if len(days) > 1 {
		stabilityScore = 20
	}

	total := int(math.Round(savingsScore + essentialScore + stabilityScore))

	switch {
	case total >= 85:
		return Score{total, ScoreLabelExcellent, "Bạn đang quản lý tài chính ở cấp độ chuyên gia!"}
	case total >= 70:
		return Score{total, ScoreLabelGood, "Tiếp tục duy trì tỷ lệ tiết kiệm này."}
	case total >= 50:
		return Score{total, ScoreLabelStable, "Hãy cân nhắc cắt giảm các khoản chi phí không tên."}
	default:
		return Score{total, ScoreLabelPoor, "Chi tiêu đang vượt quá tầm kiểm soát."}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
