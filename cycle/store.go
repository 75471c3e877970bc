/*
store.go - Persistence interface for the cycle lifecycle

PURPOSE:
  Defines the interface between the lifecycle manager and durable storage.
  The underlying medium is a plain key-value store of UTF-8 text (JSON
  values under stable keys); this interface lifts it to domain operations
  so the manager never touches raw keys.

KEYS (stable, shared with the original client-side format):
  smart_money_transactions   Active set, newest-first
  smart_money_archives       Archive list, oldest-first
  smart_money_last_cycle_id  Identifier of the last reconciled cycle
  smart_money_closing_day    Configured closing day (1-28)

ATOMIC CLOSE:
  CloseCycle commits the archive append, the active-set reset and the
  identifier advance as one all-or-nothing unit. A crash mid-close must
  never leave the identifier advanced while the closed transactions still
  sit in the active set (duplication) or the reverse (loss).

MALFORMED STATE:
  Implementations recover from unparseable stored values by treating them
  as empty and logging; corruption is never fatal and never surfaced as a
  user-facing error.

IMPLEMENTATIONS:
  - store/sqlite:     Durable kv table, transactional CloseCycle
  - cycle/store:      In-memory, for tests and dev
*/
package cycle

import (
	"context"

	"github.com/Tranvietnhattu/SMARTMONEY/ledger"
)

// Store persists the lifecycle state: the active transaction set, the
// archive history, and the cycle bookkeeping keys.
type Store interface {
	// Transactions returns the active set, newest-first.
	Transactions(ctx context.Context) ([]ledger.Transaction, error)

	// SaveTransactions replaces the active set wholesale.
	SaveTransactions(ctx context.Context, txs []ledger.Transaction) error

	// Archives returns the archive history, oldest-first.
	Archives(ctx context.Context) ([]ArchivedCycle, error)

	// LastCycleID returns the stored cycle identifier.
	// ok is false when no identifier has been recorded yet (first run).
	LastCycleID(ctx context.Context) (id string, ok bool, err error)

	// SetLastCycleID records the cycle identifier.
	SetLastCycleID(ctx context.Context, id string) error

	// ClosingDay returns the configured closing day, or the default (1)
	// when none is stored.
	ClosingDay(ctx context.Context) (int, error)

	// SetClosingDay stores the configured closing day. Callers clamp.
	SetClosingDay(ctx context.Context, day int) error

	// CloseCycle atomically appends the archive, clears the active set and
	// advances the last cycle identifier. Either all three land or none.
	CloseCycle(ctx context.Context, archive ArchivedCycle, newLastCycleID string) error
}
