// Package store provides an in-memory cycle.Store for tests and dev.
package store

import (
	"context"
	"sync"

	"github.com/Tranvietnhattu/SMARTMONEY/cycle"
	"github.com/Tranvietnhattu/SMARTMONEY/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds all lifecycle state behind a mutex. CloseCycle is atomic by
// construction: all three mutations happen under one lock acquisition.
type Memory struct {
	mu           sync.RWMutex
	transactions []ledger.Transaction
	archives     []cycle.ArchivedCycle
	lastCycleID  string
	hasLastCycle bool
	closingDay   int

	// FailCloseCycle forces CloseCycle to return this error, for testing
	// the manager's commit failure path.
	FailCloseCycle error
}

// NewMemory creates an empty in-memory store with closing day 1.
func NewMemory() *Memory {
	return &Memory{closingDay: 1}
}

func (m *Memory) Transactions(_ context.Context) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Transaction, len(m.transactions))
	copy(out, m.transactions)
	return out, nil
}

func (m *Memory) SaveTransactions(_ context.Context, txs []ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append([]ledger.Transaction(nil), txs...)
	return nil
}

func (m *Memory) Archives(_ context.Context) ([]cycle.ArchivedCycle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]cycle.ArchivedCycle, len(m.archives))
	copy(out, m.archives)
	return out, nil
}

func (m *Memory) LastCycleID(_ context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastCycleID, m.hasLastCycle, nil
}

func (m *Memory) SetLastCycleID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCycleID = id
	m.hasLastCycle = true
	return nil
}

func (m *Memory) ClosingDay(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closingDay, nil
}

func (m *Memory) SetClosingDay(_ context.Context, day int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closingDay = day
	return nil
}

// CloseCycle appends the archive, clears the active set and advances the
// identifier under one lock. On a forced failure nothing is mutated.
func (m *Memory) CloseCycle(_ context.Context, archive cycle.ArchivedCycle, newLastCycleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCloseCycle != nil {
		return m.FailCloseCycle
	}

	m.archives = append(m.archives, archive)
	m.transactions = []ledger.Transaction{}
	m.lastCycleID = newLastCycleID
	m.hasLastCycle = true
	return nil
}
