/*
handlers.go - HTTP handlers for the budgeting command surface

PURPOSE:
  Exposes the posting engine over REST. Handlers parse the request,
  delegate to the engine, and serialize the structured Result. All
  rendering of final user-facing text happens in the chat transport;
  this layer only carries kinds, numbers, and short status tags.

ENDPOINTS:
  POST /api/messages             Raw message intake (classify + post)
  POST /api/pending/resolve      Pick a bucket for a parked quick amount
  GET  /api/buckets              List envelopes with balances
  PUT  /api/buckets/{key}        Create/update an envelope
  POST /api/buckets/{key}/adjust Floored allocation adjustment
  POST /api/income               Record income
  GET  /api/income?person=       Income history (latest 10)
  GET  /api/transactions?bucket= Transaction history (latest 10)
  GET  /api/summary              Whole-budget overview
  POST /api/undo                 Pop the last transaction
  POST /api/clear                Reset all data

ERROR HANDLING:
  Engine errors map to status codes via errors.Is:
  - 400: invalid amount, negative allocation, no buckets yet
  - 403: resolving someone else's selection
  - 404: unknown bucket / unresolved category
  - 409: nothing to undo
  - 410: pending selection expired
  - 500: store I/O (operational fault, logged)
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/envelope-engine/budget"
	"github.com/warp/envelope-engine/logging"
)

// historyLimit caps history listings, matching the chat transport's
// ten-entry embeds.
const historyLimit = 10

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *budget.Engine
	Log    *logging.Logger

	// ChannelID scopes message intake; empty accepts all channels.
	ChannelID string
}

func NewHandler(engine *budget.Engine, log *logging.Logger, channelID string) *Handler {
	return &Handler{Engine: engine, Log: log, ChannelID: channelID}
}

// =============================================================================
// MESSAGE INTAKE
// =============================================================================

// HandleMessage classifies and applies one raw inbound message.
// Messages outside the budgeting channel, and text that is not a
// budgeting intent, return 204: not ours, no reply.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if h.ChannelID != "" && req.Channel != h.ChannelID {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	result, err := h.Engine.HandleMessage(r.Context(), budget.InboundMessage{
		Text:      req.Text,
		Reporter:  req.Reporter,
		Channel:   req.Channel,
		MessageID: req.MessageID,
	})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	dto := MessageResultDTO{Kind: string(result.Kind)}
	switch {
	case result.Prompt != nil:
		dto.Prompt = toPromptDTO(result.Prompt)
	case result.Allocation != nil:
		dto.Allocation = toAllocationDTO(result.Allocation)
	case result.Transaction != nil:
		dto.Transaction = toTransactionResultDTO(result.Transaction, h.bucketName(r, result.Transaction.Transaction.Bucket))
	}
	writeJSON(w, http.StatusOK, dto)
}

// ResolvePending applies a parked quick amount to the chosen bucket.
func (h *Handler) ResolvePending(w http.ResponseWriter, r *http.Request) {
	var req ResolvePendingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Engine.ResolvePending(r.Context(), req.Reporter, req.Actor, budget.BucketKey(req.Bucket))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	dto := MessageResultDTO{}
	if result.Allocation != nil {
		dto.Kind = string(budget.IntentAllocation)
		dto.Allocation = toAllocationDTO(result.Allocation)
	} else {
		dto.Kind = string(budget.IntentTransaction)
		dto.Transaction = toTransactionResultDTO(result.Transaction, h.bucketName(r, result.Transaction.Transaction.Bucket))
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// BUCKET HANDLERS
// =============================================================================

// SetBucket creates or updates an envelope. Allocated survives updates.
func (h *Handler) SetBucket(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req SetBucketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Engine.SetBucket(r.Context(), budget.BucketKey(key), req.Name, decimal.NewFromFloat(req.Target))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	l, err := h.Engine.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, SetBucketDTO{
		Bucket:  toBucketDTO(budget.ReportEnvelope(l, result.Bucket)),
		Created: result.Created,
	})
}

// ListBuckets returns every envelope with its balances, in insertion
// order.
func (h *Handler) ListBuckets(w http.ResponseWriter, r *http.Request) {
	l, err := h.Engine.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
		return
	}

	dtos := make([]BucketDTO, 0, l.Buckets.Len())
	for _, b := range l.Buckets.All() {
		dtos = append(dtos, toBucketDTO(budget.ReportEnvelope(l, b)))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AdjustAllocation applies a floored allocation delta.
func (h *Handler) AdjustAllocation(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Engine.AdjustAllocation(r.Context(), budget.BucketKey(key), decimal.NewFromFloat(req.Delta))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AdjustDTO{
		Key:         string(result.Bucket.Key),
		Name:        result.Bucket.Name,
		Previous:    result.Previous.InexactFloat64(),
		Delta:       result.Delta.InexactFloat64(),
		Allocated:   result.Allocated.InexactFloat64(),
		Unallocated: result.Unallocated.InexactFloat64(),
	})
}

// =============================================================================
// INCOME HANDLERS
// =============================================================================

// RecordIncome appends an income record.
func (h *Handler) RecordIncome(w http.ResponseWriter, r *http.Request) {
	var req IncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Engine.RecordIncome(r.Context(), decimal.NewFromFloat(req.Amount), req.Description, req.Person)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, IncomeResultDTO{
		Income:        toIncomeDTO(result.Record),
		PersonTotal:   result.PersonTotal.InexactFloat64(),
		CombinedTotal: result.CombinedTotal.InexactFloat64(),
		Unallocated:   result.Unallocated.InexactFloat64(),
	})
}

// IncomeHistory lists income records, latest first, optionally filtered
// by person (case-insensitive).
func (h *Handler) IncomeHistory(w http.ResponseWriter, r *http.Request) {
	l, err := h.Engine.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
		return
	}

	person := r.URL.Query().Get("person")
	records := make([]budget.IncomeRecord, 0, len(l.Income))
	for _, rec := range l.Income {
		if person == "" || strings.EqualFold(rec.Person, person) {
			records = append(records, rec)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	if len(records) > historyLimit {
		records = records[:historyLimit]
	}

	dtos := make([]IncomeDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toIncomeDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HISTORY, SUMMARY, UNDO, CLEAR
// =============================================================================

// TransactionHistory lists transactions, latest first, optionally
// filtered by bucket key.
func (h *Handler) TransactionHistory(w http.ResponseWriter, r *http.Request) {
	l, err := h.Engine.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
		return
	}

	bucketFilter := r.URL.Query().Get("bucket")
	txs := make([]budget.Transaction, 0, len(l.Transactions))
	for _, tx := range l.Transactions {
		if bucketFilter == "" || string(tx.Bucket) == bucketFilter {
			txs = append(txs, tx)
		}
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
	if len(txs) > historyLimit {
		txs = txs[:historyLimit]
	}

	dtos := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		name := "Unknown"
		if b, ok := l.Buckets.Get(tx.Bucket); ok {
			name = b.Name
		}
		dtos = append(dtos, toTransactionDTO(tx, name))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSummary returns the whole-budget overview.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	l, err := h.Engine.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(budget.Summarize(l)))
}

// Undo pops the most recent transaction.
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	result, err := h.Engine.Undo(r.Context())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UndoDTO{
		Transaction: toTransactionDTO(result.Transaction, result.BucketName),
		BucketName:  result.BucketName,
	})
}

// Clear resets all data.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	result, err := h.Engine.Clear(r.Context())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClearDTO{Cleared: true, IncomeKept: result.IncomeKept})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) bucketName(r *http.Request, key budget.BucketKey) string {
	l, err := h.Engine.Snapshot(r.Context())
	if err != nil {
		return ""
	}
	if b, ok := l.Buckets.Get(key); ok {
		return b.Name
	}
	return ""
}

// writeEngineError maps engine errors to HTTP status codes. Anything
// unrecognized is a store fault and logged as such.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case budget.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, budget.ErrInvalidAmount),
		errors.Is(err, budget.ErrNegativeAllocation),
		errors.Is(err, budget.ErrNoBuckets):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, budget.ErrNotYourSelection):
		writeError(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, budget.ErrNothingToUndo):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, budget.ErrSelectionExpired):
		writeError(w, http.StatusGone, err.Error(), nil)
	default:
		h.Log.Error("store operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]any{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
