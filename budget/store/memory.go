// Package store provides an in-memory Store implementation.
package store

import (
	"context"
	"sync"

	"github.com/warp/envelope-engine/budget"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds the ledger aggregate in memory. Load and Save exchange
// deep copies, so callers can never mutate the stored aggregate except
// through Save — the same isolation the SQLite store gives for free.
type Memory struct {
	mu     sync.RWMutex
	ledger *budget.Ledger
}

func NewMemory() *Memory {
	return &Memory{ledger: budget.NewLedger()}
}

func (m *Memory) Load(_ context.Context) (*budget.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledger.Clone(), nil
}

func (m *Memory) Save(_ context.Context, l *budget.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger = l.Clone()
	return nil
}
