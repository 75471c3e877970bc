/*
Package sqlite provides the durable key-value implementation of cycle.Store.

PURPOSE:
  Persists the lifecycle state as UTF-8 JSON text under stable string keys
  in a single kv table. The same keys the original client-side storage
  used, so exported data stays interchangeable.

SCHEMA:
  kv(key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TIMESTAMP)

ATOMIC CLOSE:
  CloseCycle runs its three writes (archive append, active-set reset,
  identifier advance) inside one database transaction. A crash mid-close
  rolls back to the pre-close state, never losing or duplicating a cycle's
  transactions.

MALFORMED STATE:
  Unparseable stored JSON is logged and treated as an empty value, per the
  error taxonomy: corruption is recovered locally and never fatal.

WAL MODE:
  SQLite is opened with WAL for better crash recovery; this is a
  single-process store, the mutex exists only to serialize the close
  sequence against concurrent reads.

USAGE:
  st, err := sqlite.New("./data/smartmoney.db", logger)
  ...
  defer st.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/Tranvietnhattu/SMARTMONEY/cycle"
	"github.com/Tranvietnhattu/SMARTMONEY/ledger"
)

// Storage keys, shared with the original persisted format.
const (
	KeyTransactions = "smart_money_transactions"
	KeyArchives     = "smart_money_archives"
	KeyLastCycleID  = "smart_money_last_cycle_id"
	KeyClosingDay   = "smart_money_closing_day"
)

// DefaultClosingDay is used when no closing day has been stored.
const DefaultClosingDay = 1

// Store implements cycle.Store on a SQLite kv table.
type Store struct {
	db  *sql.DB
	log *logrus.Entry
	mu  sync.RWMutex
}

// New opens (creating if needed) a SQLite store at dbPath. Use ":memory:"
// for an in-memory database.
func New(dbPath string, log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, log: log.WithField("component", "sqlite")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// =============================================================================
// RAW KEY-VALUE ACCESS
// =============================================================================

// Get returns the stored text for key, with ok=false when absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores text under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setIn(ctx, s.db, key, value)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setIn(ctx context.Context, db execer, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// =============================================================================
// cycle.Store IMPLEMENTATION
// =============================================================================

func (s *Store) Transactions(ctx context.Context) ([]ledger.Transaction, error) {
	raw, ok, err := s.Get(ctx, KeyTransactions)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []ledger.Transaction{}, nil
	}
	var txs []ledger.Transaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		// Recovered locally: corrupt state reads as empty, never fatal.
		s.log.WithError(err).WithField("key", KeyTransactions).
			Warn("malformed stored transactions, treating as empty")
		return []ledger.Transaction{}, nil
	}
	if txs == nil {
		txs = []ledger.Transaction{}
	}
	return txs, nil
}

func (s *Store) SaveTransactions(ctx context.Context, txs []ledger.Transaction) error {
	if txs == nil {
		txs = []ledger.Transaction{}
	}
	raw, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	return s.Set(ctx, KeyTransactions, string(raw))
}

func (s *Store) Archives(ctx context.Context) ([]cycle.ArchivedCycle, error) {
	raw, ok, err := s.Get(ctx, KeyArchives)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []cycle.ArchivedCycle{}, nil
	}
	var archives []cycle.ArchivedCycle
	if err := json.Unmarshal([]byte(raw), &archives); err != nil {
		s.log.WithError(err).WithField("key", KeyArchives).
			Warn("malformed stored archives, treating as empty")
		return []cycle.ArchivedCycle{}, nil
	}
	if archives == nil {
		archives = []cycle.ArchivedCycle{}
	}
	return archives, nil
}

func (s *Store) LastCycleID(ctx context.Context) (string, bool, error) {
	id, ok, err := s.Get(ctx, KeyLastCycleID)
	if err != nil {
		return "", false, err
	}
	if !ok || id == "" {
		return "", false, nil
	}
	return id, true, nil
}

func (s *Store) SetLastCycleID(ctx context.Context, id string) error {
	return s.Set(ctx, KeyLastCycleID, id)
}

func (s *Store) ClosingDay(ctx context.Context) (int, error) {
	raw, ok, err := s.Get(ctx, KeyClosingDay)
	if err != nil {
		return 0, err
	}
	if !ok {
		return DefaultClosingDay, nil
	}
	day, err := strconv.Atoi(raw)
	if err != nil {
		s.log.WithField("value", raw).Warn("malformed stored closing day, using default")
		return DefaultClosingDay, nil
	}
	return cycle.ClampClosingDay(day), nil
}

func (s *Store) SetClosingDay(ctx context.Context, day int) error {
	return s.Set(ctx, KeyClosingDay, strconv.Itoa(day))
}

// CloseCycle commits the archival sequence in one database transaction:
// append the archive, reset the active set, advance the identifier.
func (s *Store) CloseCycle(ctx context.Context, archive cycle.ArchivedCycle, newLastCycleID string) error {
	archives, err := s.Archives(ctx)
	if err != nil {
		return err
	}
	archives = append(archives, archive)

	archivesRaw, err := json.Marshal(archives)
	if err != nil {
		return fmt.Errorf("encode archives: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin close: %w", err)
	}
	defer tx.Rollback()

	if err := setIn(ctx, tx, KeyArchives, string(archivesRaw)); err != nil {
		return err
	}
	if err := setIn(ctx, tx, KeyTransactions, "[]"); err != nil {
		return err
	}
	if err := setIn(ctx, tx, KeyLastCycleID, newLastCycleID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit close: %w", err)
	}
	return nil
}
