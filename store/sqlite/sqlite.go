/*
Package sqlite provides a SQLite-backed implementation of budget.Store.

PURPOSE:
  Persists the whole ledger aggregate — buckets, transactions, income —
  in one SQLite file per deployment. The engine's single-writer model
  does full read-modify-write cycles, so Save replaces the aggregate
  inside one database transaction and Load rebuilds it in order.

KEY TABLES:
  buckets:       One row per envelope, position column preserves
                 insertion order for deterministic resolution
  transactions:  The append-only log, seq column preserves append order
  income:        Income records in report order

REPRESENTATION:
  Decimal amounts are stored as TEXT and reparsed on load, so no
  precision is lost through float round-trips. Dates are RFC 3339 text.

WAL MODE:
  The database is opened with WAL for better crash recovery. The mutex
  serializes Save against concurrent Loads from reporting commands.

USAGE:
  st, err := sqlite.New("./data/budget.db")
  // use ":memory:" for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/envelope-engine/budget"
)

// Store implements budget.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The whole-aggregate write pattern needs exactly one connection;
	// more would let a Load interleave with a half-written Save.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS buckets (
		key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		target TEXT NOT NULL,
		allocated TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		date TEXT NOT NULL,
		bucket TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT NOT NULL,
		source_message_id TEXT,
		cc_purchase INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_bucket
		ON transactions(bucket);

	CREATE TABLE IF NOT EXISTS income (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT NOT NULL,
		person TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_income_person
		ON income(person);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOAD
// =============================================================================

// Load rebuilds the aggregate. A fresh database yields an empty ledger.
func (s *Store) Load(ctx context.Context) (*budget.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l := budget.NewLedger()

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, name, target, allocated FROM buckets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load buckets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, name, target, allocated string
		if err := rows.Scan(&key, &name, &target, &allocated); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		b := budget.Bucket{Key: budget.BucketKey(key), Name: name}
		if b.Target, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("bucket %s target: %w", key, err)
		}
		if b.Allocated, err = decimal.NewFromString(allocated); err != nil {
			return nil, fmt.Errorf("bucket %s allocated: %w", key, err)
		}
		l.Buckets.Set(b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	txRows, err := s.db.QueryContext(ctx,
		`SELECT id, date, bucket, amount, description, source_message_id, cc_purchase
		 FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	defer txRows.Close()
	for txRows.Next() {
		var (
			tx         budget.Transaction
			date       string
			bucketKey  string
			amount     string
			messageID  sql.NullString
			ccPurchase int
		)
		if err := txRows.Scan(&tx.ID, &date, &bucketKey, &amount, &tx.Description, &messageID, &ccPurchase); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return nil, fmt.Errorf("transaction %s date: %w", tx.ID, err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s amount: %w", tx.ID, err)
		}
		tx.Bucket = budget.BucketKey(bucketKey)
		tx.SourceMessageID = messageID.String
		tx.CCPurchase = ccPurchase != 0
		l.Transactions = append(l.Transactions, tx)
	}
	if err := txRows.Err(); err != nil {
		return nil, err
	}

	incRows, err := s.db.QueryContext(ctx,
		`SELECT date, amount, description, person FROM income ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load income: %w", err)
	}
	defer incRows.Close()
	for incRows.Next() {
		var (
			rec    budget.IncomeRecord
			date   string
			amount string
		)
		if err := incRows.Scan(&date, &amount, &rec.Description, &rec.Person); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		if rec.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return nil, fmt.Errorf("income date: %w", err)
		}
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("income amount: %w", err)
		}
		l.Income = append(l.Income, rec)
	}
	return l, incRows.Err()
}

// =============================================================================
// SAVE
// =============================================================================

// Save replaces the stored aggregate atomically: either the new state
// lands in full or the previous state survives untouched.
func (s *Store) Save(ctx context.Context, l *budget.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer dbTx.Rollback()

	for _, table := range []string{"buckets", "transactions", "income"} {
		if _, err := dbTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, b := range l.Buckets.All() {
		if _, err := dbTx.ExecContext(ctx,
			`INSERT INTO buckets (key, name, target, allocated, position) VALUES (?, ?, ?, ?, ?)`,
			string(b.Key), b.Name, b.Target.String(), b.Allocated.String(), i); err != nil {
			return fmt.Errorf("save bucket %s: %w", b.Key, err)
		}
	}

	for _, tx := range l.Transactions {
		ccPurchase := 0
		if tx.CCPurchase {
			ccPurchase = 1
		}
		if _, err := dbTx.ExecContext(ctx,
			`INSERT INTO transactions (id, date, bucket, amount, description, source_message_id, cc_purchase)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tx.ID, tx.Date.Format(time.RFC3339Nano), string(tx.Bucket),
			tx.Amount.String(), tx.Description, tx.SourceMessageID, ccPurchase); err != nil {
			return fmt.Errorf("save transaction %s: %w", tx.ID, err)
		}
	}

	for _, rec := range l.Income {
		if _, err := dbTx.ExecContext(ctx,
			`INSERT INTO income (date, amount, description, person) VALUES (?, ?, ?, ?)`,
			rec.Date.Format(time.RFC3339Nano), rec.Amount.String(), rec.Description, rec.Person); err != nil {
			return fmt.Errorf("save income: %w", err)
		}
	}

	return dbTx.Commit()
}
