/*
dto.go - Request and response payloads for the HTTP API

PURPOSE:
  Decouples the wire format from the domain types. Domain types that are
  already plain JSON value objects (Transaction, ArchivedCycle, Report)
  cross the boundary unchanged; this file holds the request shapes and the
  composite responses.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Composite response wrappers
*/
package api

import (
	"github.com/Tranvietnhattu/SMARTMONEY/cycle"
	"github.com/Tranvietnhattu/SMARTMONEY/ledger"
	"github.com/shopspring/decimal"
)

// AddTransactionRequest is the body of POST /api/transactions. ID is
// optional; one is generated when absent.
type AddTransactionRequest struct {
	ID       string          `json:"id,omitempty"`
	Type     string          `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Source   string          `json:"source"`
	Note     string          `json:"note"`
}

// SummaryResponse is the dashboard payload: totals over the open cycle,
// the per-category charts, and the financial score.
type SummaryResponse struct {
	Cycle            cycle.Descriptor       `json:"cycle"`
	Totals           ledger.Totals          `json:"totals"`
	ExpenseBreakdown []ledger.CategoryTotal `json:"expenseBreakdown"`
	IncomeBreakdown  []ledger.CategoryTotal `json:"incomeBreakdown"`
	Score            ledger.Score           `json:"score"`
	Count            int                    `json:"count"`
}

// CalendarResponse is the month view payload.
type CalendarResponse struct {
	Year           int               `json:"year"`
	Month          int               `json:"month"`
	Days           []ledger.DayTotal `json:"days"`
	AverageExpense decimal.Decimal   `json:"averageExpense"`
}

// ClosingDayRequest is the body of PUT /api/settings/closing-day.
type ClosingDayRequest struct {
	ClosingDay int `json:"closingDay"`
}

// ClosingDayResponse echoes the stored (clamped) value and whatever the
// change did to the cycle state.
type ClosingDayResponse struct {
	ClosingDay int           `json:"closingDay"`
	Outcome    cycle.Outcome `json:"outcome"`
}

// ReconcileStatusResponse reports the observable closing state.
type ReconcileStatusResponse struct {
	Closing bool `json:"closing"`
}

// ParseEntryRequest is the body of POST /api/ai/parse.
type ParseEntryRequest struct {
	Input string `json:"input"`
}

// QueryRequest is the body of POST /api/ai/query.
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse wraps the assistant's markdown answer.
type QueryResponse struct {
	Answer string `json:"answer"`
}

// DiagnosticsResponse is the scan result.
type DiagnosticsResponse struct {
	Issues []ledger.Issue `json:"issues"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
