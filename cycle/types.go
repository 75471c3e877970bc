/*
types.go - Archive records and enrichment report types

PURPOSE:
  Defines the append-only archive history. When a cycle rolls over, its
  transactions are snapshotted into an ArchivedCycle together with the
  (optional) AI report. Archives are never mutated or deleted by the core.
*/
package cycle

import (
	"time"

	"github.com/Tranvietnhattu/SMARTMONEY/ledger"
	"github.com/shopspring/decimal"
)

// Report is the AI-generated summary attached to a closed cycle. Its
// fields mirror the enrichment service's response and are serialized into
// the archive verbatim - the core never rewrites them.
type Report struct {
	Summary           string      `json:"summary"`
	Stats             ReportStats `json:"stats"`
	Comparison        string      `json:"comparison"`
	BehavioralInsight string      `json:"behavioralInsight"`
	Recommendation    string      `json:"recommendation"`
}

// ReportStats carries the numeric portion of a cycle report.
type ReportStats struct {
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	TotalExpense   decimal.Decimal `json:"totalExpense"`
	Balance        decimal.Decimal `json:"balance"`
	FinancialScore int             `json:"financialScore"` // 0-100
	BestCategory   string          `json:"bestCategory"`
	WorstCategory  string          `json:"worstCategory"`
	AbnormalDays   []string        `json:"abnormalDays"`
}

// ArchivedCycle is the immutable record of one closed cycle.
//
// CycleID is the identifier of the cycle that was CLOSED (the previous
// lastCycleId), never the identifier of the cycle being entered. Data is
// the snapshot of the active set at closing time, in its stored order
// (newest-first). Report is nil when the enrichment call failed.
type ArchivedCycle struct {
	CycleID  string               `json:"cycleId"`
	Data     []ledger.Transaction `json:"data"`
	ClosedAt time.Time            `json:"closedAt"`
	Report   *Report              `json:"report,omitempty"`
}
