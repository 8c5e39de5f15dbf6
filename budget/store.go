/*
store.go - Persistence interface for the ledger aggregate

PURPOSE:
  One deployment owns one ledger aggregate. The engine loads the whole
  aggregate, mutates a clone in memory, and saves it back as one unit —
  there are no partial updates, so a Store only needs Load and Save.

IMPLEMENTATIONS:
  - budget/store: in-memory (tests, dev)
  - store/sqlite: SQLite-backed (production)
*/
package budget

import "context"

// Store persists the ledger aggregate. Load on a fresh deployment must
// return an empty ledger, not an error. A Store error is an operational
// fault that aborts the in-flight request; it is never surfaced as a
// budgeting error.
type Store interface {
	Load(ctx context.Context) (*Ledger, error)
	Save(ctx context.Context, l *Ledger) error
}
