/*
balance.go - Derived balances over a ledger snapshot

PURPOSE:
  Pure functions answering "how much is where?". Nothing here mutates
  the ledger; every value is recomputed from the aggregate on demand.

TWO BALANCE MODELS:
  Regular envelopes use the allocation model:
      available = allocated - spent
  The credit-card bucket uses the signed-net model:
      debt = |Σ signed amounts|
  The models are never mixed for the same bucket.

STATUS TIERS:
  Envelope:  overspent < empty < running low (<25% of allocated) < on track
  Credit:    critical (>90% utilization) < warning (>50%) < nominal
  All thresholds are exact decimal comparisons, never clamped.
*/
package budget

import "github.com/shopspring/decimal"

var (
	lowWaterRatio = decimal.RequireFromString("0.25")
	hundred       = decimal.NewFromInt(100)
)

// =============================================================================
// POOL TOTALS
// =============================================================================

// TotalIncome sums every income record.
func TotalIncome(l *Ledger) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range l.Income {
		total = total.Add(rec.Amount)
	}
	return total
}

// PersonIncome sums income attributed to one person. Reporter
// identities are opaque, so the comparison is exact.
func PersonIncome(l *Ledger, person string) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range l.Income {
		if rec.Person == person {
			total = total.Add(rec.Amount)
		}
	}
	return total
}

// TotalAllocated sums Allocated across all buckets.
func TotalAllocated(l *Ledger) decimal.Decimal {
	total := decimal.Zero
	for _, b := range l.Buckets.All() {
		total = total.Add(b.Allocated)
	}
	return total
}

// Unallocated is income minus allocations. Negative means the budget is
// over-committed; that is a display warning, not an error.
func Unallocated(l *Ledger) decimal.Decimal {
	return TotalIncome(l).Sub(TotalAllocated(l))
}

// =============================================================================
// PER-BUCKET BALANCES
// =============================================================================

// Spent sums the magnitude of withdrawals from one bucket.
func Spent(l *Ledger, key BucketKey) decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.Transactions {
		if t.Bucket == key && t.Amount.IsNegative() {
			total = total.Add(t.Amount.Abs())
		}
	}
	return total
}

// Available is allocated minus spent. May go negative (overspent).
func Available(l *Ledger, key BucketKey) decimal.Decimal {
	b, ok := l.Buckets.Get(key)
	if !ok {
		return decimal.Zero
	}
	return b.Allocated.Sub(Spent(l, key))
}

// NetBalance is the signed sum of a bucket's transactions. Used only
// for the credit-card bucket, where its magnitude is the outstanding
// debt.
func NetBalance(l *Ledger, key BucketKey) decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.Transactions {
		if t.Bucket == key {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// Utilization returns debt/target as a percentage, 0 when target is 0.
func Utilization(target, debt decimal.Decimal) decimal.Decimal {
	if target.IsZero() {
		return decimal.Zero
	}
	return debt.Div(target).Mul(hundred)
}

// TargetProgress returns allocated/target as a percentage, 0 when the
// target is 0.
func TargetProgress(allocated, target decimal.Decimal) decimal.Decimal {
	if target.IsZero() {
		return decimal.Zero
	}
	return allocated.Div(target).Mul(hundred)
}

// =============================================================================
// STATUS TIERS
// =============================================================================

// EnvelopeStatus is the short human-readable tag the transport renders.
type EnvelopeStatus string

const (
	StatusNotAllocated EnvelopeStatus = "not allocated"
	StatusOverspent    EnvelopeStatus = "overspent"
	StatusEmpty        EnvelopeStatus = "empty"
	StatusRunningLow   EnvelopeStatus = "running low"
	StatusOnTrack      EnvelopeStatus = "on track"
)

// EnvelopeStatusOf classifies an envelope. The running-low threshold is
// strictly available < allocated*0.25.
func EnvelopeStatusOf(allocated, available decimal.Decimal) EnvelopeStatus {
	switch {
	case allocated.IsZero():
		return StatusNotAllocated
	case available.IsNegative():
		return StatusOverspent
	case available.IsZero():
		return StatusEmpty
	case available.LessThan(allocated.Mul(lowWaterRatio)):
		return StatusRunningLow
	default:
		return StatusOnTrack
	}
}

// CreditTier classifies credit-card utilization.
type CreditTier string

const (
	CreditCritical CreditTier = "critical"
	CreditWarning  CreditTier = "warning"
	CreditNominal  CreditTier = "nominal"
)

// CreditTierOf applies the >90 / >50 utilization thresholds.
func CreditTierOf(utilization decimal.Decimal) CreditTier {
	switch {
	case utilization.GreaterThan(decimal.NewFromInt(90)):
		return CreditCritical
	case utilization.GreaterThan(decimal.NewFromInt(50)):
		return CreditWarning
	default:
		return CreditNominal
	}
}

// =============================================================================
// REPORTS - Per-bucket views the transport renders
// =============================================================================

// EnvelopeReport is the allocation-model view of a regular bucket.
type EnvelopeReport struct {
	Bucket    Bucket
	Allocated decimal.Decimal
	Spent     decimal.Decimal
	Available decimal.Decimal
	Status    EnvelopeStatus
}

// ReportEnvelope computes the allocation-model view for one bucket.
func ReportEnvelope(l *Ledger, b Bucket) EnvelopeReport {
	spent := Spent(l, b.Key)
	available := b.Allocated.Sub(spent)
	return EnvelopeReport{
		Bucket:    b,
		Allocated: b.Allocated,
		Spent:     spent,
		Available: available,
		Status:    EnvelopeStatusOf(b.Allocated, available),
	}
}

// CreditReport is the debt view of the credit-card bucket.
type CreditReport struct {
	Bucket          Bucket
	Debt            decimal.Decimal
	Limit           decimal.Decimal
	AvailableCredit decimal.Decimal
	Utilization     decimal.Decimal
	Tier            CreditTier
}

// ReportCredit computes the debt view for the credit-card bucket.
func ReportCredit(l *Ledger, b Bucket) CreditReport {
	debt := NetBalance(l, b.Key).Abs()
	util := Utilization(b.Target, debt)
	return CreditReport{
		Bucket:          b,
		Debt:            debt,
		Limit:           b.Target,
		AvailableCredit: b.Target.Sub(debt),
		Utilization:     util,
		Tier:            CreditTierOf(util),
	}
}

// =============================================================================
// SUMMARY - Whole-budget aggregates
// =============================================================================

// Summary is the whole-budget overview behind the summary command.
type Summary struct {
	TotalIncome    decimal.Decimal
	IncomeByPerson map[string]decimal.Decimal
	TotalAllocated decimal.Decimal
	TotalSpent     decimal.Decimal
	TotalAvailable decimal.Decimal
	Unallocated    decimal.Decimal
	OverAllocated  bool
	Overspent      []EnvelopeReport
}

// Summarize computes the overview. Overspent lists only regular
// envelopes with negative available, in insertion order.
func Summarize(l *Ledger) Summary {
	s := Summary{
		TotalIncome:    TotalIncome(l),
		IncomeByPerson: make(map[string]decimal.Decimal),
		TotalAllocated: TotalAllocated(l),
	}
	for _, rec := range l.Income {
		s.IncomeByPerson[rec.Person] = s.IncomeByPerson[rec.Person].Add(rec.Amount)
	}
	for _, b := range l.Buckets.All() {
		if b.IsCreditCard() {
			// Card entries mirror envelope spends; counting both would
			// double the total.
			continue
		}
		report := ReportEnvelope(l, b)
		s.TotalSpent = s.TotalSpent.Add(report.Spent)
		if report.Available.IsNegative() {
			s.Overspent = append(s.Overspent, report)
		}
	}
	s.TotalAvailable = s.TotalAllocated.Sub(s.TotalSpent)
	s.Unallocated = s.TotalIncome.Sub(s.TotalAllocated)
	s.OverAllocated = s.Unallocated.IsNegative()
	return s
}
