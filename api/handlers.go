/*
handlers.go - HTTP API handlers for Smart Money

PURPOSE:
  Exposes the cycle lifecycle and the transaction ledger via REST. Handles
  HTTP request/response and JSON serialization, and delegates to the
  lifecycle manager for every mutation so the reconciliation guard is
  enforced in one place.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (reconciliation in flight, edit while closing)
  - 500: Internal errors
  - 503: AI features when no API key is configured

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Automatic reconciliation
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Tranvietnhattu/SMARTMONEY/cycle"
	"github.com/Tranvietnhattu/SMARTMONEY/gemini"
	"github.com/Tranvietnhattu/SMARTMONEY/ledger"

	"github.com/go-chi/chi/v5"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   cycle.Store
	Manager *cycle.Manager
	AI      *gemini.Client // nil when no API key is configured
	Log     *logrus.Entry
}

// NewHandler creates a handler. ai may be nil.
func NewHandler(store cycle.Store, manager *cycle.Manager, ai *gemini.Client, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Store:   store,
		Manager: manager,
		AI:      ai,
		Log:     log.WithField("component", "api"),
	}
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns the active set, newest-first.
// GET /api/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Manager.Transactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// AddTransaction appends an entry to the active set.
// POST /api/transactions
func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var req AddTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tx := ledger.Transaction{
		ID:       req.ID,
		Type:     ledger.TransactionType(req.Type),
		Amount:   req.Amount,
		Category: ledger.Category(req.Category),
		Date:     req.Date,
		Source:   ledger.PaymentSource(req.Source),
		Note:     req.Note,
	}
	if tx.ID == "" {
		tx.ID = fmt.Sprintf("txn-%d", time.Now().UnixNano())
	}
	if tx.Date == "" {
		tx.Date = time.Now().Format(time.RFC3339)
	}

	if err := h.Manager.Add(r.Context(), tx); err != nil {
		switch {
		case errors.Is(err, cycle.ErrEditWhileClosing):
			writeError(w, http.StatusConflict, "Cycle is closing, try again shortly", err)
		default:
			writeError(w, http.StatusBadRequest, "Invalid transaction", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// DeleteTransaction removes an entry by id.
// DELETE /api/transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Manager.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, cycle.ErrTransactionNotFound):
			writeError(w, http.StatusNotFound, "Transaction not found", err)
		case errors.Is(err, cycle.ErrEditWhileClosing):
			writeError(w, http.StatusConflict, "Cycle is closing, try again shortly", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to delete transaction", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportTransactions streams the active set as a JSON backup file.
// GET /api/transactions/export
func (h *Handler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Manager.Transactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}
	filename := fmt.Sprintf("smart_money_backup_%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	writeJSON(w, http.StatusOK, txs)
}

// ImportTransactions replaces the active set with an uploaded backup.
// POST /api/transactions/import
func (h *Handler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	var txs []ledger.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txs); err != nil {
		writeError(w, http.StatusBadRequest, "Data is not a transaction array", err)
		return
	}
	for i, tx := range txs {
		if err := ledger.Validate(tx); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid transaction at index %d", i), err)
			return
		}
	}

	if err := h.Manager.Replace(r.Context(), txs); err != nil {
		if errors.Is(err, cycle.ErrEditWhileClosing) {
			writeError(w, http.StatusConflict, "Cycle is closing, try again shortly", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to import transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": len(txs)})
}

// =============================================================================
// CYCLE / DASHBOARD HANDLERS
// =============================================================================

// GetCurrentCycle returns the descriptor of the open cycle.
// GET /api/cycle
func (h *Handler) GetCurrentCycle(w http.ResponseWriter, r *http.Request) {
	day, err := h.Store.ClosingDay(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load closing day", err)
		return
	}
	writeJSON(w, http.StatusOK, cycle.Resolve(time.Now(), day))
}

// GetSummary returns dashboard aggregates for the open cycle.
// GET /api/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	day, err := h.Store.ClosingDay(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load closing day", err)
		return
	}
	txs, err := h.Manager.Transactions(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}

	now := time.Now()
	current := cycle.Resolve(now, day)
	inCycle := ledger.FilterRange(txs, current.Start, current.End)

	writeJSON(w, http.StatusOK, SummaryResponse{
		Cycle:            current,
		Totals:           ledger.Sum(inCycle),
		ExpenseBreakdown: ledger.BreakdownByCategory(inCycle, ledger.TypeExpense),
		IncomeBreakdown:  ledger.BreakdownByCategory(inCycle, ledger.TypeIncome),
		Score:            ledger.ComputeScore(txs, now),
		Count:            len(inCycle),
	})
}

// GetCalendar returns per-day totals for a month (defaults to the current
// one).
// GET /api/calendar?year=2024&month=6
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			writeError(w, http.StatusBadRequest, "Invalid month", err)
			return
		}
		month = parsed
	}

	txs, err := h.Manager.Transactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}

	days := ledger.DailyTotals(txs, year, time.Month(month))
	writeJSON(w, http.StatusOK, CalendarResponse{
		Year:           year,
		Month:          month,
		Days:           days,
		AverageExpense: ledger.AverageDailyExpense(days),
	})
}

// =============================================================================
// ARCHIVE HANDLERS
// =============================================================================

// ListArchives returns the closed cycle history, oldest-first.
// GET /api/archives
func (h *Handler) ListArchives(w http.ResponseWriter, r *http.Request) {
	archives, err := h.Store.Archives(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load archives", err)
		return
	}
	writeJSON(w, http.StatusOK, archives)
}

// GetArchive returns one archived cycle by its identifier.
// GET /api/archives/{cycleID}
func (h *Handler) GetArchive(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")

	archives, err := h.Store.Archives(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load archives", err)
		return
	}
	for _, a := range archives {
		if a.CycleID == cycleID {
			writeJSON(w, http.StatusOK, a)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Archive not found", nil)
}

// =============================================================================
// SETTINGS / RECONCILE HANDLERS
// =============================================================================

// GetClosingDay returns the configured closing day.
// GET /api/settings/closing-day
func (h *Handler) GetClosingDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.Store.ClosingDay(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load closing day", err)
		return
	}
	writeJSON(w, http.StatusOK, ClosingDayRequest{ClosingDay: day})
}

// SetClosingDay stores a new closing day (clamped to 1-28) and immediately
// reconciles: changing the boundary mid-cycle may legitimately close the
// current cycle.
// PUT /api/settings/closing-day
func (h *Handler) SetClosingDay(w http.ResponseWriter, r *http.Request) {
	var req ClosingDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	day := cycle.ClampClosingDay(req.ClosingDay)
	if err := h.Store.SetClosingDay(ctx, day); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store closing day", err)
		return
	}

	outcome, err := h.Manager.Reconcile(ctx, time.Now(), day)
	if err != nil {
		if errors.Is(err, cycle.ErrReconcileInFlight) {
			writeError(w, http.StatusConflict, "Reconciliation already running", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Reconciliation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, ClosingDayResponse{ClosingDay: day, Outcome: outcome})
}

// TriggerReconcile runs a manual reconciliation.
// POST /api/reconcile
func (h *Handler) TriggerReconcile(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.Manager.ReconcileNow(r.Context())
	if err != nil {
		if errors.Is(err, cycle.ErrReconcileInFlight) {
			writeError(w, http.StatusConflict, "Reconciliation already running", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Reconciliation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// ReconcileStatus reports whether an archival is in flight, so the client
// can show its blocking indicator.
// GET /api/reconcile/status
func (h *Handler) ReconcileStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ReconcileStatusResponse{Closing: h.Manager.Closing()})
}

// =============================================================================
// AI HANDLERS
// =============================================================================

// ParseEntry extracts a transaction from free text.
// POST /api/ai/parse
func (h *Handler) ParseEntry(w http.ResponseWriter, r *http.Request) {
	if h.AI == nil {
		writeError(w, http.StatusServiceUnavailable, "AI features are not configured", nil)
		return
	}

	var req ParseEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Input == "" {
		writeError(w, http.StatusBadRequest, "Input text is required", err)
		return
	}

	entry, err := h.AI.ParseTransaction(r.Context(), req.Input)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Parsing failed", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// QueryAssistant answers a free-form question over the data.
// POST /api/ai/query
func (h *Handler) QueryAssistant(w http.ResponseWriter, r *http.Request) {
	if h.AI == nil {
		writeError(w, http.StatusServiceUnavailable, "AI features are not configured", nil)
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeError(w, http.StatusBadRequest, "Question is required", err)
		return
	}

	ctx := r.Context()
	txs, err := h.Manager.Transactions(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}
	archives, err := h.Store.Archives(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load archives", err)
		return
	}

	answer, err := h.AI.Query(ctx, req.Question, txs, archives)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Query failed", err)
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Answer: answer})
}

// GetBehaviorAnalysis returns the spending behavior forecast.
// GET /api/ai/behavior
func (h *Handler) GetBehaviorAnalysis(w http.ResponseWriter, r *http.Request) {
	if h.AI == nil {
		writeError(w, http.StatusServiceUnavailable, "AI features are not configured", nil)
		return
	}

	txs, err := h.Manager.Transactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}

	analysis, err := h.AI.AnalyzeBehavior(r.Context(), txs)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Analysis failed", err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// RunDiagnostics scans the active set for data quality issues.
// POST /api/diagnostics/scan
func (h *Handler) RunDiagnostics(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Manager.Transactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, DiagnosticsResponse{Issues: ledger.Scan(txs, time.Now())})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
