/*
diagnostic.go - Data quality scan over the active transaction set

PURPOSE:
  The settings screen offers a one-shot scan of the working set. It never
  rejects or repairs anything; it only reports findings so the user can
  decide. Four checks, all linear:
    - DUPLICATE:    identical type+amount+category+date+note fingerprint
    - MISSING_CAT:  category outside the closed enum
    - INVALID_DATE: date string that does not parse
    - FUTURE_DATE:  date after the scan reference time
*/
package ledger

import (
	"fmt"
	"time"
)

// IssueType classifies a diagnostic finding.
type IssueType string

const (
	IssueDuplicate   IssueType = "DUPLICATE"
	IssueMissingCat  IssueType = "MISSING_CAT"
	IssueInvalidDate IssueType = "INVALID_DATE"
	IssueFutureDate  IssueType = "FUTURE_DATE"
)

// Issue is a single diagnostic finding.
type Issue struct {
	Type          IssueType `json:"type"`
	Message       string    `json:"message"`
	TransactionID string    `json:"transactionId,omitempty"`
}

// Scan runs the data quality checks against the given set. now is the
// reference instant for the future-date check.
func Scan(txs []Transaction, now time.Time) []Issue {
	issues := []Issue{}
	seen := make(map[string]bool)

	for _, t := range txs {
		fingerprint := fmt.Sprintf("%s-%s-%s-%s-%s", t.Type, t.Amount, t.Category, t.Date, t.Note)
		if seen[fingerprint] {
			issues = append(issues, Issue{
				Type:          IssueDuplicate,
				Message:       fmt.Sprintf("Phát hiện giao dịch lặp: %s (%s)", t.Category, t.Amount),
				TransactionID: t.ID,
			})
		}
		seen[fingerprint] = true

		if !t.Category.Valid() {
			issues = append(issues, Issue{
				Type:          IssueMissingCat,
				Message:       fmt.Sprintf("Giao dịch ID ..%s thiếu danh mục hợp lệ.", tail(t.ID, 4)),
				TransactionID: t.ID,
			})
		}

		ts, err := ParseDate(t.Date)
		if err != nil {
			issues = append(issues, Issue{
				Type:          IssueInvalidDate,
				Message:       fmt.Sprintf("Định dạng ngày không hợp lệ tại giao dịch %s.", t.Category),
				TransactionID: t.ID,
			})
			continue
		}
		if ts.After(now) {
			issues = append(issues, Issue{
				Type:          IssueFutureDate,
				Message:       fmt.Sprintf("Giao dịch %q được ghi nhận trong tương lai (%s).", t.Category, ts.Format("02/01/2006")),
				TransactionID: t.ID,
			})
		}
	}
	return issues
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
