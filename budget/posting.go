/*
posting.go - Posting engine: applies classified intents to the ledger

PURPOSE:
  Every operation here is a pure transform of the ledger aggregate:
  load, validate, mutate in memory, save as one unit. A validation
  failure returns before Save, so the stored aggregate is untouched —
  all-or-nothing, no partial commits.

OPERATIONS:
  SetBucket          Insert/overwrite bucket metadata (Allocated preserved)
  RecordIncome       Append an income record
  Allocate           Signed allocation change, no floor (quick +/- shorthand)
  AllocateByName     Allocate with resolver-matched category
  AdjustAllocation   Floored allocation change (rejects negative totals)
  PostTransaction    Append a deposit/spend, credit-card dual posting
  Undo               Pop the most recent transaction (strict LIFO)
  Clear              Reset the aggregate
  HandleMessage      Classify raw text and dispatch to the above
  ResolvePending     Apply a parked quick amount to a chosen bucket

CREDIT-CARD DUAL POSTING:
  A spend flagged as a credit-card purchase also appends a mirrored
  entry on the credit-card bucket: same signed amount (debt grows),
  description annotated with the originating envelope, never itself
  flagged CC. No credit-card bucket means no mirror and no error.

ALLOCATION FLOOR POLICY:
  Allocate has no floor; AdjustAllocation rejects totals below zero.
  The divergence is deliberate: quick "+/-" shorthand is the loose
  path, the adjust command is the guarded one.
*/
package budget

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxPendingOptions caps how many buckets a selection prompt offers.
const maxPendingOptions = 25

// =============================================================================
// ENGINE
// =============================================================================

// Engine applies budgeting operations to the stored ledger aggregate.
// Single-writer model: callers handle one message to completion before
// the next, so the engine takes no locks of its own.
type Engine struct {
	store             Store
	pending           *PendingStore
	keepIncomeOnClear bool

	now   func() time.Time
	newID func() string
}

// EngineOptions tunes engine behavior. Zero values give defaults.
type EngineOptions struct {
	// PendingTTL bounds how long a quick amount waits for a selection.
	PendingTTL time.Duration

	// KeepIncomeOnClear preserves income history across Clear, matching
	// older deployments. Default is to wipe the whole aggregate.
	KeepIncomeOnClear bool
}

func NewEngine(store Store, opts EngineOptions) *Engine {
	return &Engine{
		store:             store,
		pending:           NewPendingStore(opts.PendingTTL),
		keepIncomeOnClear: opts.KeepIncomeOnClear,
		now:               time.Now,
		newID:             uuid.NewString,
	}
}

// Pending exposes the pending-selection store for TTL sweeps.
func (e *Engine) Pending() *PendingStore { return e.pending }

// Snapshot returns the current aggregate for read-only reporting.
func (e *Engine) Snapshot(ctx context.Context) (*Ledger, error) {
	return e.store.Load(ctx)
}

// =============================================================================
// RESULTS - Structured outcomes the transport renders
// =============================================================================

type SetBucketResult struct {
	Bucket  Bucket
	Created bool
}

type IncomeResult struct {
	Record        IncomeRecord
	PersonTotal   decimal.Decimal
	CombinedTotal decimal.Decimal
	Unallocated   decimal.Decimal
}

type AllocationResult struct {
	Bucket          Bucket
	Amount          decimal.Decimal
	Allocated       decimal.Decimal
	Target          decimal.Decimal
	PercentOfTarget decimal.Decimal
	Unallocated     decimal.Decimal
	OverAllocated   bool
	GoalReached     bool
}

type AdjustResult struct {
	Bucket      Bucket
	Previous    decimal.Decimal
	Delta       decimal.Decimal
	Allocated   decimal.Decimal
	Unallocated decimal.Decimal
}

// TransactionResult reports a posted deposit or spend. Exactly one of
// Envelope and Credit is set, depending on the bucket's model.
type TransactionResult struct {
	Transaction Transaction
	Envelope    *EnvelopeReport
	Credit      *CreditReport

	// WentOverspent is set when this spend took the envelope from
	// non-negative to negative available.
	WentOverspent bool

	// Mirror is the credit-card debt entry for a CC purchase, with the
	// card's state after the charge.
	Mirror       *Transaction
	MirrorCredit *CreditReport
}

type UndoResult struct {
	Transaction Transaction
	BucketName  string
}

type ClearResult struct {
	IncomeKept bool
}

// FundingTier colors one bucket option in a selection prompt.
type FundingTier string

const (
	TierAllocate     FundingTier = "allocate"     // deposit: any bucket works
	TierSufficient   FundingTier = "sufficient"   // spend fits available funds
	TierInsufficient FundingTier = "insufficient" // spend exceeds available funds
	TierEmpty        FundingTier = "empty"        // nothing available
	TierOverspent    FundingTier = "overspent"    // already negative
)

type PendingOption struct {
	Bucket    Bucket
	Available decimal.Decimal
	Tier      FundingTier
}

// PendingPrompt enumerates the choices for a parked quick amount.
type PendingPrompt struct {
	Amount  decimal.Decimal
	Deposit bool
	Options []PendingOption
}

// MessageResult is the outcome of HandleMessage. Kind selects which
// field is populated; IntentNone yields a nil result.
type MessageResult struct {
	Kind        IntentKind
	Prompt      *PendingPrompt
	Allocation  *AllocationResult
	Transaction *TransactionResult
}

// ResolveResult is the outcome of resolving a pending selection.
type ResolveResult struct {
	Allocation  *AllocationResult
	Transaction *TransactionResult
}

// =============================================================================
// BUCKET AND INCOME OPERATIONS
// =============================================================================

// SetBucket inserts or overwrites bucket metadata. Overwriting an
// existing key preserves its Allocated value: this is a metadata
// update, not a balance reset.
func (e *Engine) SetBucket(ctx context.Context, key BucketKey, name string, target decimal.Decimal) (*SetBucketResult, error) {
	if key == "" || name == "" || target.IsNegative() {
		return nil, ErrInvalidAmount
	}

	l, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	bucket := Bucket{Key: key, Name: name, Target: target}
	existing, exists := l.Buckets.Get(key)
	if exists {
		bucket.Allocated = existing.Allocated
	}
	l.Buckets.Set(bucket)

	if err := e.store.Save(ctx, l); err != nil {
		return nil, err
	}
	return &SetBucketResult{Bucket: bucket, Created: !exists}, nil
}

// RecordIncome appends an income record. Buckets are never touched;
// income only grows the unallocated pool.
func (e *Engine) RecordIncome(ctx context.Context, amount decimal.Decimal, description, person string) (*IncomeResult, error) {
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	if description == "" {
		description = "Income"
	}

	l, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	record := IncomeRecord{
		Date:        e.now(),
		Amount:      amount,
		Description: description,
		Person:      person,
	}
	l.Income = append(l.Income, record)

	if err := e.store.Save(ctx, l); err != nil {
		return nil, err
	}
	return &IncomeResult{
		Record:        record,
		PersonTotal:   PersonIncome(l, person),
		CombinedTotal: TotalIncome(l),
		Unallocated:   Unallocated(l),
	}, nil
}

// =============================================================================
// ALLOCATION OPERATIONS
// =============================================================================

// Allocate applies a signed allocation change to a bucket key. No
// floor: quick "-100 groceries" may drive the allocation negative.
func (e *Engine) Allocate(ctx context.Context, key BucketKey, amount decimal.Decimal) (*AllocationResult, error) {
	l, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	bucket, ok := l.Buckets.Get(key)
	if !ok {
		return nil, &UnknownBucketError{Key: key}
	}
	return e.allocate(ctx, l, bucket, amount)
}

// AllocateByName resolves a free-text category and allocates to it.
func (e *Engine) AllocateByName(ctx context.Context, category string, amount decimal.Decimal) (*AllocationResult, error) {
	l, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	bucket, ok := ResolveBucket(l, category)
	if !ok {
		return nil, &CategoryNotFoundError{Query: category}
	}
	return e.allocate(ctx, l, bucket, amount)
}

func (e *Engine) allocate(ctx context.Context, l *Ledger, bucket Bucket, amount decimal.Decimal) (*AllocationResult, error) {
	bucket.Allocated = bucket.Allocated.Add(amount)
	l.Buckets.Set(bucket)

	if err := e.store.Save(ctx, l); err != nil {
		return nil, err
	}

	unallocated := Unallocated(l)
	return &AllocationResult{
		Bucket:          bucket,
		Amount:          amount,
		Allocated:       bucket.Allocated,
		Target:          bucket.Target,
		PercentOfTarget: TargetProgress(bucket.Allocated, bucket.Target),
		Unallocated:     unallocated,
		OverAllocated:   unallocated.IsNegative(),
		GoalReached:     bucket.Target.IsPositive() && bucket.Allocated.GreaterThanOrEqual(bucket.Target),
	}, nil
}

// AdjustAllocation applies a floored allocation change: a delta that
// would leave the allocation negative is rejected with no mutation.
func (e *Engine) AdjustAllocation(ctx context.Context, key BucketKey, delta decimal.Decimal) (*AdjustResult, error) {
	l, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	bucket, ok := l.Buckets.Get(key)
	if !ok {
		return nil, &UnknownBucketError{Key: key}
	}

	previous := bucket.Allocated
	next := previous.Add(delta)
	if next.IsNegative() {
		return nil, &NegativeAllocationError{Key: key, Current: previous, Delta: delta}
	}

	bucket.Allocated = next
	l.Buckets.Set(bucket)
	if err := e.store.Save(ctx, l); err != nil {
		return nil, err
	}

	return &AdjustResult{
		Bucket:      bucket,
		Previous:    previous,
		Delta:       delta,
		Allocated:   next,
		Unallocated: Unallocated(l),
	}, nil
}

// =============================================================================
// TRANSACTION OPERATIONS
// =============================================================================

// PostTransaction appends a deposit (positive) or spend (negative) on
// an exact bucket key. Spends flagged ccPurchase also post the mirrored
// debt entry on the credit-card bucket, when one exists.
func (e *Engine) PostTransaction(ctx context.Context, key BucketKey, amount decimal.Decimal, description string, ccPurchase bool, messageID string) (*TransactionResult, error) {
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	if description == "" {
		description = DefaultDescription
	}

	l, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	bucket, ok := l.Buckets.Get(key)
	if !ok {
		return nil, &UnknownBucketError{Key: key}
	}

	availableBefore := Available(l, key)

	tx := Transaction{
		ID:              e.newID(),
		Date:            e.now(),
		Bucket:          key,
		Amount:          amount,
		Description:     description,
		SourceMessageID: messageID,
		CCPurchase:      ccPurchase,
	}
	l.Transactions = append(l.Transactions, tx)

	// Dual posting: mirror the debt on the credit-card bucket. A spend
	// made directly from the card is already debt and is not mirrored.
	var mirror *Transaction
	if ccPurchase && amount.IsNegative() && !bucket.IsCreditCard() {
		if card, found := l.Buckets.CreditCard(); found {
			m := Transaction{
				ID:              e.newID(),
				Date:            tx.Date,
				Bucket:          card.Key,
				Amount:          amount,
				Description:     description + " (from " + bucket.Name + ")",
				SourceMessageID: messageID,
				CCPurchase:      false,
			}
			l.Transactions = append(l.Transactions, m)
			mirror = &m
		}
	}

	if err := e.store.Save(ctx, l); err != nil {
		return nil, err
	}

	result := &TransactionResult{Transaction: tx}
	if bucket.IsCreditCard() {
		credit := ReportCredit(l, bucket)
		result.Credit = &credit
	} else {
		envelope := ReportEnvelope(l, bucket)
		result.Envelope = &envelope
		result.WentOverspent = !availableBefore.IsNegative() && envelope.Available.IsNegative()
	}
	if mirror != nil {
		card, _ := l.Buckets.Get(mirror.Bucket)
		mirrorCredit := ReportCredit(l, card)
		result.Mirror = mirror
		result.MirrorCredit = &mirrorCredit
	}
	return result, nil
}

// Undo pops the most recently appended transaction. Allocations are not
// logged as transactions and cannot be undone here; use
// AdjustAllocation with a negative delta instead.
func (e *Engine) Undo(ctx context.Context) (*UndoResult, error) {
	l, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(l.Transactions) == 0 {
		return nil, ErrNothingToUndo
	}

	last := l.Transactions[len(l.Transactions)-1]
	l.Transactions = l.Transactions[:len(l.Transactions)-1]

	if err := e.store.Save(ctx, l); err != nil {
		return nil, err
	}

	name := "Unknown"
	if bucket, ok := l.Buckets.Get(last.Bucket); ok {
		name = bucket.Name
	}
	return &UndoResult{Transaction: last, BucketName: name}, nil
}

// Clear resets the aggregate. Income is wiped too unless the engine was
// configured to keep it.
func (e *Engine) Clear(ctx context.Context) (*ClearResult, error) {
	fresh := NewLedger()
	if e.keepIncomeOnClear {
		current, err := e.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		fresh.Income = append(fresh.Income, current.Income...)
	}
	if err := e.store.Save(ctx, fresh); err != nil {
		return nil, err
	}
	return &ClearResult{IncomeKept: e.keepIncomeOnClear}, nil
}

// =============================================================================
// MESSAGE INTAKE
// =============================================================================

// InboundMessage is what the transport hands the engine: raw text plus
// reporter identity and an opaque message id for correlation.
type InboundMessage struct {
	Text      string
	Reporter  string
	Channel   string
	MessageID string
}

// HandleMessage classifies raw text and applies the resulting intent.
// Messages that are not budgeting intents return (nil, nil): they are
// simply not ours and must not produce an error reply.
func (e *Engine) HandleMessage(ctx context.Context, msg InboundMessage) (*MessageResult, error) {
	intent := Classify(msg.Text)

	switch intent.Kind {
	case IntentQuickAmount:
		l, err := e.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		if l.Buckets.Len() == 0 {
			return nil, ErrNoBuckets
		}
		e.pending.Put(msg.Reporter, msg.MessageID, intent.Amount)
		return &MessageResult{
			Kind:   IntentQuickAmount,
			Prompt: buildPrompt(l, intent.Amount),
		}, nil

	case IntentAllocation:
		allocation, err := e.AllocateByName(ctx, intent.Category, intent.Amount)
		if err != nil {
			return nil, err
		}
		return &MessageResult{Kind: IntentAllocation, Allocation: allocation}, nil

	case IntentTransaction:
		tx, err := e.PostTransaction(ctx, intent.Bucket, intent.Amount, intent.Description, intent.CCPurchase, msg.MessageID)
		if err != nil {
			return nil, err
		}
		return &MessageResult{Kind: IntentTransaction, Transaction: tx}, nil

	default:
		return nil, nil
	}
}

// ResolvePending applies a reporter's parked quick amount to the chosen
// bucket. Only the original reporter may resolve it; any other actor is
// rejected with no state change. Past the authorization check the entry
// is consumed no matter how the rest goes.
func (e *Engine) ResolvePending(ctx context.Context, reporter, actor string, key BucketKey) (*ResolveResult, error) {
	if actor != reporter {
		return nil, ErrNotYourSelection
	}

	entry, ok := e.pending.Get(reporter)
	if !ok {
		return nil, ErrSelectionExpired
	}
	e.pending.Delete(reporter)

	if entry.Amount.IsPositive() {
		allocation, err := e.Allocate(ctx, key, entry.Amount)
		if err != nil {
			return nil, err
		}
		return &ResolveResult{Allocation: allocation}, nil
	}

	tx, err := e.PostTransaction(ctx, key, entry.Amount, QuickDescription, false, entry.MessageID)
	if err != nil {
		return nil, err
	}
	return &ResolveResult{Transaction: tx}, nil
}

// buildPrompt enumerates bucket options for a quick amount, tiered by
// whether each envelope could absorb the spend.
func buildPrompt(l *Ledger, amount decimal.Decimal) *PendingPrompt {
	deposit := amount.IsPositive()
	prompt := &PendingPrompt{Amount: amount, Deposit: deposit}

	for _, b := range l.Buckets.All() {
		if len(prompt.Options) == maxPendingOptions {
			break
		}
		available := Available(l, b.Key)
		tier := TierAllocate
		if !deposit {
			switch {
			case available.IsNegative():
				tier = TierOverspent
			case available.IsZero():
				tier = TierEmpty
			case available.LessThan(amount.Abs()):
				tier = TierInsufficient
			default:
				tier = TierSufficient
			}
		}
		prompt.Options = append(prompt.Options, PendingOption{
			Bucket:    b,
			Available: available,
			Tier:      tier,
		})
	}
	return prompt
}
