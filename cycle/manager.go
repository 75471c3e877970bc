/*
manager.go - Cycle rollover and archival state machine

PURPOSE:
  Coordinates the automatic cycle archival. On every activation (process
  start, configuration change, scheduler tick) the manager resolves the
  cycle containing "now", compares it with the persisted identifier, and
  when they differ with pending data, drives the archival sequence:

    Idle -> (id mismatch + pending data) -> Closing
         -> (enrichment attempt, success or failure)
         -> Archiving (atomic commit) -> Idle(new cycle)

  or stays Idle when nothing changed.

FAILURE SEMANTICS:
  The enrichment call is best-effort: a failure or timeout never blocks the
  archival; the archive is written with Report == nil. The commit itself
  (archive append + active-set reset + identifier advance) is delegated to
  Store.CloseCycle as a single atomic unit, so a crash cannot duplicate or
  lose a cycle's transactions.

CONCURRENCY:
  At most one reconciliation runs at a time; a second trigger while one is
  in flight is coalesced with ErrReconcileInFlight. Active-set edits (add,
  delete, replace) go through the manager too and are rejected with
  ErrEditWhileClosing while a reconciliation is in flight. The Closing()
  observable lets the presentation layer show a blocking indicator during
  the enrichment suspension.
*/
package cycle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Tranvietnhattu/SMARTMONEY/ledger"
	"github.com/sirupsen/logrus"
)

// DefaultReportTimeout bounds the enrichment call. The reporter may hang
// arbitrarily long; archival proceeds without a report after this.
const DefaultReportTimeout = 90 * time.Second

// Reporter is the external enrichment collaborator. prevSummary is the
// summary text of the most recent archived report, or "" when there is
// none. A nil report with nil error is treated as "no report".
type Reporter interface {
	GenerateCycleReport(ctx context.Context, txs []ledger.Transaction, prevSummary string) (*Report, error)
}

// Outcome reports what a reconciliation did.
type Outcome struct {
	// Archived is true when a rollover was detected and committed.
	Archived bool `json:"archived"`

	// CycleID identifies the current (possibly newly entered) cycle.
	CycleID string `json:"cycleId"`

	// ClosedCycleID is the identifier of the archived cycle, "" when
	// nothing was archived.
	ClosedCycleID string `json:"closedCycleId,omitempty"`

	// Archive is the record that was appended, nil when unchanged.
	Archive *ArchivedCycle `json:"archive,omitempty"`

	// Active is the surfaced active set after reconciliation: unchanged
	// in the no-op case, empty after an archival.
	Active []ledger.Transaction `json:"active"`
}

// Manager is the stateful lifecycle coordinator. All mutations of the
// active set and the cycle bookkeeping flow through it.
type Manager struct {
	store    Store
	reporter Reporter // nil disables enrichment; archives get no report

	// Clock returns "now" for rollover detection and ClosedAt stamps.
	// Overridable in tests. Defaults to time.Now.
	Clock func() time.Time

	// ReportTimeout bounds the enrichment call.
	ReportTimeout time.Duration

	log *logrus.Entry

	mu      sync.Mutex  // serializes active-set edits against each other
	busy    atomic.Bool // single-flight guard for Reconcile
	closing atomic.Bool // observable "closing in progress" state
}

// NewManager wires a lifecycle manager. reporter may be nil.
func NewManager(store Store, reporter Reporter, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		store:         store,
		reporter:      reporter,
		Clock:         time.Now,
		ReportTimeout: DefaultReportTimeout,
		log:           log.WithField("component", "cycle"),
	}
}

// Closing reports whether an archival is currently in flight. The
// presentation layer polls this to show the blocking indicator.
func (m *Manager) Closing() bool {
	return m.closing.Load()
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// ReconcileNow runs a reconciliation using the stored closing day and the
// manager's clock. This is the entry point for startup and the scheduler.
func (m *Manager) ReconcileNow(ctx context.Context) (Outcome, error) {
	day, err := m.store.ClosingDay(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return m.Reconcile(ctx, m.Clock(), day)
}

// Reconcile compares the cycle containing now against the persisted
// identifier and archives the active set when they differ. At most one
// reconciliation runs at a time; concurrent triggers get
// ErrReconcileInFlight.
func (m *Manager) Reconcile(ctx context.Context, now time.Time, closingDay int) (Outcome, error) {
	if !m.busy.CompareAndSwap(false, true) {
		return Outcome{}, ErrReconcileInFlight
	}
	defer m.busy.Store(false)

	// Drain any in-progress edit before reading state.
	m.mu.Lock()
	defer m.mu.Unlock()

	current := Resolve(now, closingDay)

	lastID, ok, err := m.store.LastCycleID(ctx)
	if err != nil {
		return Outcome{}, err
	}
	active, err := m.store.Transactions(ctx)
	if err != nil {
		return Outcome{}, err
	}

	// First run: record the current cycle, leave transactions untouched.
	if !ok {
		if err := m.store.SetLastCycleID(ctx, current.ID); err != nil {
			return Outcome{}, err
		}
		m.log.WithField("cycle_id", current.ID).Info("cycle tracking initialized")
		return Outcome{CycleID: current.ID, Active: active}, nil
	}

	// No rollover: same cycle, or nothing to migrate. Persisted state is
	// left byte-for-byte untouched, including lastCycleId when the active
	// set is empty across a boundary.
	if lastID == current.ID || len(active) == 0 {
		return Outcome{CycleID: current.ID, Active: active}, nil
	}

	// Rollover: archive lastID's transactions and enter the new cycle.
	m.closing.Store(true)
	defer m.closing.Store(false)

	m.log.WithFields(logrus.Fields{
		"closed_cycle": lastID,
		"new_cycle":    current.ID,
		"transactions": len(active),
	}).Info("cycle rollover detected, closing")

	archive := ArchivedCycle{
		CycleID:  lastID,
		Data:     snapshot(active),
		ClosedAt: m.Clock(),
		Report:   m.fetchReport(ctx, active),
	}

	if err := m.store.CloseCycle(ctx, archive, current.ID); err != nil {
		return Outcome{}, err
	}

	m.log.WithField("closed_cycle", lastID).Info("cycle archived")

	return Outcome{
		Archived:      true,
		CycleID:       current.ID,
		ClosedCycleID: lastID,
		Archive:       &archive,
		Active:        []ledger.Transaction{},
	}, nil
}

// fetchReport asks the enrichment collaborator for a cycle report. Any
// failure is logged and swallowed: archival never waits on a report.
func (m *Manager) fetchReport(ctx context.Context, active []ledger.Transaction) *Report {
	if m.reporter == nil {
		return nil
	}

	prevSummary := ""
	if archives, err := m.store.Archives(ctx); err != nil {
		m.log.WithError(err).Warn("could not load archives for previous summary")
	} else if n := len(archives); n > 0 && archives[n-1].Report != nil {
		prevSummary = archives[n-1].Report.Summary
	}

	rctx, cancel := context.WithTimeout(ctx, m.ReportTimeout)
	defer cancel()

	report, err := m.reporter.GenerateCycleReport(rctx, active, prevSummary)
	if err != nil {
		m.log.WithError(err).Warn("cycle report generation failed, archiving without report")
		return nil
	}
	return report
}

// =============================================================================
// ACTIVE SET EDITS
// =============================================================================

// Transactions returns the active set, newest-first.
func (m *Manager) Transactions(ctx context.Context) ([]ledger.Transaction, error) {
	return m.store.Transactions(ctx)
}

// Add validates and prepends a transaction to the active set.
func (m *Manager) Add(ctx context.Context, tx ledger.Transaction) error {
	if err := ledger.Validate(tx); err != nil {
		return err
	}
	return m.edit(ctx, func(active []ledger.Transaction) ([]ledger.Transaction, error) {
		return append([]ledger.Transaction{tx}, active...), nil
	})
}

// Delete removes a transaction by id.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.edit(ctx, func(active []ledger.Transaction) ([]ledger.Transaction, error) {
		out := active[:0:0]
		found := false
		for _, t := range active {
			if t.ID == id {
				found = true
				continue
			}
			out = append(out, t)
		}
		if !found {
			return nil, ErrTransactionNotFound
		}
		return out, nil
	})
}

// Replace swaps the whole active set (import, clear).
func (m *Manager) Replace(ctx context.Context, txs []ledger.Transaction) error {
	if txs == nil {
		txs = []ledger.Transaction{}
	}
	return m.edit(ctx, func([]ledger.Transaction) ([]ledger.Transaction, error) {
		return txs, nil
	})
}

// edit applies fn to the current active set and persists the result.
// Rejected while a reconciliation is in flight.
func (m *Manager) edit(ctx context.Context, fn func([]ledger.Transaction) ([]ledger.Transaction, error)) error {
	if m.busy.Load() {
		return ErrEditWhileClosing
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	active, err := m.store.Transactions(ctx)
	if err != nil {
		return err
	}
	next, err := fn(active)
	if err != nil {
		return err
	}
	return m.store.SaveTransactions(ctx, next)
}

// snapshot copies the active set so the archive record cannot alias a
// slice that later callers mutate.
func snapshot(txs []ledger.Transaction) []ledger.Transaction {
	out := make([]ledger.Transaction, len(txs))
	copy(out, txs)
	return out
}
