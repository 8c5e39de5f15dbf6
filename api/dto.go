/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP command surface. They decouple the
  engine's decimal-based types from the wire format: amounts cross the
  wire as JSON numbers, statuses as the engine's short tags.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO: Response types returned to clients
*/
package api

import (
	"time"

	"github.com/warp/envelope-engine/budget"
)

// =============================================================================
// REQUESTS
// =============================================================================

// MessageRequest is one raw inbound chat message.
type MessageRequest struct {
	Text      string `json:"text"`
	Reporter  string `json:"reporter"`
	Channel   string `json:"channel"`
	MessageID string `json:"message_id"`
}

// ResolvePendingRequest picks a bucket for a parked quick amount.
// Reporter is the owner of the pending amount; Actor is whoever pressed
// the button.
type ResolvePendingRequest struct {
	Reporter string `json:"reporter"`
	Actor    string `json:"actor"`
	Bucket   string `json:"bucket"`
}

type SetBucketRequest struct {
	Name   string  `json:"name"`
	Target float64 `json:"target"`
}

type IncomeRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Person      string  `json:"person"`
}

type AdjustRequest struct {
	Delta float64 `json:"delta"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// BucketDTO is the allocation-model view of one envelope.
type BucketDTO struct {
	Key       string  `json:"key"`
	Name      string  `json:"name"`
	Target    float64 `json:"target"`
	Allocated float64 `json:"allocated"`
	Spent     float64 `json:"spent"`
	Available float64 `json:"available"`
	Status    string  `json:"status"`
}

// CreditDTO is the debt view of the credit-card bucket.
type CreditDTO struct {
	Key             string  `json:"key"`
	Name            string  `json:"name"`
	Debt            float64 `json:"debt"`
	Limit           float64 `json:"limit"`
	AvailableCredit float64 `json:"available_credit"`
	Utilization     float64 `json:"utilization"`
	Tier            string  `json:"tier"`
}

type TransactionDTO struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Bucket      string  `json:"bucket"`
	BucketName  string  `json:"bucket_name,omitempty"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	CCPurchase  bool    `json:"cc_purchase"`
}

type IncomeDTO struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Person      string  `json:"person"`
}

type SummaryDTO struct {
	TotalIncome    float64            `json:"total_income"`
	IncomeByPerson map[string]float64 `json:"income_by_person"`
	TotalAllocated float64            `json:"total_allocated"`
	TotalSpent     float64            `json:"total_spent"`
	TotalAvailable float64            `json:"total_available"`
	Unallocated    float64            `json:"unallocated"`
	OverAllocated  bool               `json:"over_allocated"`
	Overspent      []BucketDTO        `json:"overspent"`
}

type SetBucketDTO struct {
	Bucket  BucketDTO `json:"bucket"`
	Created bool      `json:"created"`
}

type IncomeResultDTO struct {
	Income        IncomeDTO `json:"income"`
	PersonTotal   float64   `json:"person_total"`
	CombinedTotal float64   `json:"combined_total"`
	Unallocated   float64   `json:"unallocated"`
}

type AllocationDTO struct {
	Key             string  `json:"key"`
	Name            string  `json:"name"`
	Amount          float64 `json:"amount"`
	Allocated       float64 `json:"allocated"`
	Target          float64 `json:"target"`
	PercentOfTarget float64 `json:"percent_of_target"`
	Unallocated     float64 `json:"unallocated"`
	OverAllocated   bool    `json:"over_allocated"`
	GoalReached     bool    `json:"goal_reached"`
}

type AdjustDTO struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Previous    float64 `json:"previous"`
	Delta       float64 `json:"delta"`
	Allocated   float64 `json:"allocated"`
	Unallocated float64 `json:"unallocated"`
}

// TransactionResultDTO reports one posted transaction. Envelope is set
// for regular buckets, Credit for the credit-card bucket; Mirror and
// MirrorCredit appear when a CC purchase charged the card.
type TransactionResultDTO struct {
	Transaction   TransactionDTO  `json:"transaction"`
	Envelope      *BucketDTO      `json:"envelope,omitempty"`
	Credit        *CreditDTO      `json:"credit,omitempty"`
	WentOverspent bool            `json:"went_overspent,omitempty"`
	Mirror        *TransactionDTO `json:"mirror,omitempty"`
	MirrorCredit  *CreditDTO      `json:"mirror_credit,omitempty"`
}

type PendingOptionDTO struct {
	Key       string  `json:"key"`
	Name      string  `json:"name"`
	Available float64 `json:"available"`
	Tier      string  `json:"tier"`
}

type PromptDTO struct {
	Amount  float64            `json:"amount"`
	Deposit bool               `json:"deposit"`
	Options []PendingOptionDTO `json:"options"`
}

// MessageResultDTO is the outcome of message intake. Kind selects which
// field is populated.
type MessageResultDTO struct {
	Kind        string                `json:"kind"`
	Prompt      *PromptDTO            `json:"prompt,omitempty"`
	Allocation  *AllocationDTO        `json:"allocation,omitempty"`
	Transaction *TransactionResultDTO `json:"transaction,omitempty"`
}

type UndoDTO struct {
	Transaction TransactionDTO `json:"transaction"`
	BucketName  string         `json:"bucket_name"`
}

type ClearDTO struct {
	Cleared    bool `json:"cleared"`
	IncomeKept bool `json:"income_kept"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toBucketDTO(r budget.EnvelopeReport) BucketDTO {
	return BucketDTO{
		Key:       string(r.Bucket.Key),
		Name:      r.Bucket.Name,
		Target:    r.Bucket.Target.InexactFloat64(),
		Allocated: r.Allocated.InexactFloat64(),
		Spent:     r.Spent.InexactFloat64(),
		Available: r.Available.InexactFloat64(),
		Status:    string(r.Status),
	}
}

func toCreditDTO(r budget.CreditReport) CreditDTO {
	return CreditDTO{
		Key:             string(r.Bucket.Key),
		Name:            r.Bucket.Name,
		Debt:            r.Debt.InexactFloat64(),
		Limit:           r.Limit.InexactFloat64(),
		AvailableCredit: r.AvailableCredit.InexactFloat64(),
		Utilization:     r.Utilization.InexactFloat64(),
		Tier:            string(r.Tier),
	}
}

func toTransactionDTO(tx budget.Transaction, bucketName string) TransactionDTO {
	return TransactionDTO{
		ID:          tx.ID,
		Date:        tx.Date.Format(time.RFC3339),
		Bucket:      string(tx.Bucket),
		BucketName:  bucketName,
		Amount:      tx.Amount.InexactFloat64(),
		Description: tx.Description,
		CCPurchase:  tx.CCPurchase,
	}
}

func toIncomeDTO(rec budget.IncomeRecord) IncomeDTO {
	return IncomeDTO{
		Date:        rec.Date.Format(time.RFC3339),
		Amount:      rec.Amount.InexactFloat64(),
		Description: rec.Description,
		Person:      rec.Person,
	}
}

func toAllocationDTO(r *budget.AllocationResult) *AllocationDTO {
	return &AllocationDTO{
		Key:             string(r.Bucket.Key),
		Name:            r.Bucket.Name,
		Amount:          r.Amount.InexactFloat64(),
		Allocated:       r.Allocated.InexactFloat64(),
		Target:          r.Target.InexactFloat64(),
		PercentOfTarget: r.PercentOfTarget.InexactFloat64(),
		Unallocated:     r.Unallocated.InexactFloat64(),
		OverAllocated:   r.OverAllocated,
		GoalReached:     r.GoalReached,
	}
}

func toTransactionResultDTO(r *budget.TransactionResult, bucketName string) *TransactionResultDTO {
	dto := &TransactionResultDTO{
		Transaction:   toTransactionDTO(r.Transaction, bucketName),
		WentOverspent: r.WentOverspent,
	}
	if r.Envelope != nil {
		b := toBucketDTO(*r.Envelope)
		dto.Envelope = &b
	}
	if r.Credit != nil {
		c := toCreditDTO(*r.Credit)
		dto.Credit = &c
	}
	if r.Mirror != nil {
		m := toTransactionDTO(*r.Mirror, "")
		dto.Mirror = &m
	}
	if r.MirrorCredit != nil {
		mc := toCreditDTO(*r.MirrorCredit)
		dto.MirrorCredit = &mc
	}
	return dto
}

func toPromptDTO(p *budget.PendingPrompt) *PromptDTO {
	dto := &PromptDTO{
		Amount:  p.Amount.InexactFloat64(),
		Deposit: p.Deposit,
		Options: make([]PendingOptionDTO, 0, len(p.Options)),
	}
	for _, opt := range p.Options {
		dto.Options = append(dto.Options, PendingOptionDTO{
			Key:       string(opt.Bucket.Key),
			Name:      opt.Bucket.Name,
			Available: opt.Available.InexactFloat64(),
			Tier:      string(opt.Tier),
		})
	}
	return dto
}

func toSummaryDTO(s budget.Summary) SummaryDTO {
	dto := SummaryDTO{
		TotalIncome:    s.TotalIncome.InexactFloat64(),
		IncomeByPerson: make(map[string]float64, len(s.IncomeByPerson)),
		TotalAllocated: s.TotalAllocated.InexactFloat64(),
		TotalSpent:     s.TotalSpent.InexactFloat64(),
		TotalAvailable: s.TotalAvailable.InexactFloat64(),
		Unallocated:    s.Unallocated.InexactFloat64(),
		OverAllocated:  s.OverAllocated,
		Overspent:      make([]BucketDTO, 0, len(s.Overspent)),
	}
	for person, amount := range s.IncomeByPerson {
		dto.IncomeByPerson[person] = amount.InexactFloat64()
	}
	for _, report := range s.Overspent {
		dto.Overspent = append(dto.Overspent, toBucketDTO(report))
	}
	return dto
}
