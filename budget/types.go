/*
Package budget provides the core envelope-budgeting ledger engine.

PURPOSE:
  This package contains the data model and algorithms for envelope
  budgeting: buckets (envelopes) with funding targets, an append-only
  transaction log, income records, and the posting engine that applies
  classified user intents to the ledger.

KEY CONCEPTS IN THIS FILE (types.go):
  - Bucket: A named spending envelope with a target and allocated amount
  - Buckets: Insertion-ordered bucket collection (deterministic iteration)
  - Transaction: An immutable ledger entry (positive deposit, negative spend)
  - IncomeRecord: Reported income feeding the unallocated pool
  - Ledger: The persisted aggregate {buckets, transactions, income}

DESIGN PRINCIPLES:
  1. Precision: All money is decimal.Decimal, never float
  2. Immutability: Transactions are appended, never edited; undo is a pop
  3. Determinism: Bucket iteration follows insertion order, so name
     resolution and listings are reproducible across runs

SEE ALSO:
  - balance.go: Derived balances (spent, available, unallocated, utilization)
  - posting.go: Operations that mutate the ledger
  - resolver.go: Free-text category to bucket matching
*/
package budget

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CreditCardBucketName marks a bucket as the credit-card bucket.
// Comparison is case-insensitive. For that bucket, Target is a credit
// limit and the signed net balance is read as debt magnitude.
const CreditCardBucketName = "creditcard"

// =============================================================================
// BUCKET - Spending envelope
// =============================================================================

// BucketKey is the short unique symbol identifying a bucket, typically
// an emote such as "🥕". Explicit transactions address buckets by key;
// allocations address them by name through the resolver.
type BucketKey string

type Bucket struct {
	Key    BucketKey
	Name   string
	Target decimal.Decimal

	// Allocated is adjusted only by explicit allocation/adjustment
	// operations. It is never derived from the transaction log.
	Allocated decimal.Decimal
}

// IsCreditCard reports whether this bucket tracks credit-card debt.
func (b Bucket) IsCreditCard() bool {
	return strings.EqualFold(b.Name, CreditCardBucketName)
}

// =============================================================================
// BUCKETS - Insertion-ordered collection
// =============================================================================

// Buckets keeps buckets in insertion order. Overwriting an existing key
// keeps its original position; only brand-new keys append to the order.
type Buckets struct {
	order []BucketKey
	byKey map[BucketKey]*Bucket
}

func NewBuckets() *Buckets {
	return &Buckets{byKey: make(map[BucketKey]*Bucket)}
}

func (bs *Buckets) Len() int {
	return len(bs.order)
}

// Get returns a copy of the bucket for key.
func (bs *Buckets) Get(key BucketKey) (Bucket, bool) {
	b, ok := bs.byKey[key]
	if !ok {
		return Bucket{}, false
	}
	return *b, true
}

// Set inserts or replaces the bucket stored under b.Key.
func (bs *Buckets) Set(b Bucket) {
	if bs.byKey == nil {
		bs.byKey = make(map[BucketKey]*Bucket)
	}
	if _, exists := bs.byKey[b.Key]; !exists {
		bs.order = append(bs.order, b.Key)
	}
	copied := b
	bs.byKey[b.Key] = &copied
}

// All returns the buckets in insertion order.
func (bs *Buckets) All() []Bucket {
	out := make([]Bucket, 0, len(bs.order))
	for _, key := range bs.order {
		out = append(out, *bs.byKey[key])
	}
	return out
}

// CreditCard returns the first bucket named "creditcard", if any.
func (bs *Buckets) CreditCard() (Bucket, bool) {
	for _, key := range bs.order {
		if bs.byKey[key].IsCreditCard() {
			return *bs.byKey[key], true
		}
	}
	return Bucket{}, false
}

func (bs *Buckets) Clone() *Buckets {
	clone := NewBuckets()
	for _, key := range bs.order {
		clone.Set(*bs.byKey[key])
	}
	return clone
}

// =============================================================================
// TRANSACTION - Immutable ledger entry
// =============================================================================

// Transaction records a single deposit (positive) or spend (negative)
// against a bucket. Once appended it is never modified; Undo removes
// exactly the most recent entry.
type Transaction struct {
	ID              string
	Date            time.Time
	Bucket          BucketKey
	Amount          decimal.Decimal
	Description     string
	SourceMessageID string

	// CCPurchase marks a spend that also posted a mirrored debt entry
	// on the credit-card bucket. Mirror entries themselves always carry
	// CCPurchase=false so they are never re-mirrored.
	CCPurchase bool
}

// IsSpend reports whether the transaction withdrew from its bucket.
func (t Transaction) IsSpend() bool {
	return t.Amount.IsNegative()
}

// =============================================================================
// INCOME RECORD
// =============================================================================

// IncomeRecord is reported income attributed to a person. Income is
// never consumed automatically; it only feeds the unallocated pool.
type IncomeRecord struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Person      string
}

// =============================================================================
// LEDGER - The persisted aggregate
// =============================================================================

// Ledger is the whole persisted state. Every mutating operation is a
// full read-modify-write of this aggregate (single-writer model).
type Ledger struct {
	Buckets      *Buckets
	Transactions []Transaction
	Income       []IncomeRecord
}

func NewLedger() *Ledger {
	return &Ledger{Buckets: NewBuckets()}
}

// Clone deep-copies the aggregate. The posting engine mutates a clone
// and persists it as one unit, so a rejected operation leaves the
// stored ledger untouched.
func (l *Ledger) Clone() *Ledger {
	clone := &Ledger{
		Buckets:      l.Buckets.Clone(),
		Transactions: make([]Transaction, len(l.Transactions)),
		Income:       make([]IncomeRecord, len(l.Income)),
	}
	copy(clone.Transactions, l.Transactions)
	copy(clone.Income, l.Income)
	return clone
}
