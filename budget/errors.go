/*
errors.go - Centralized error types for the budget engine

PURPOSE:
  All user-visible error conditions in one place. Every error here is
  recoverable: the transport reports a short message and the ledger is
  left unmodified. Only persistence failures (returned by the Store)
  abort a request as an operational fault.

USAGE:
  Transports match with errors.Is / errors.As:

    if errors.Is(err, budget.ErrUnknownBucket) {
        // 404
    }
*/
package budget

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownBucket is returned when an explicit bucket key does not exist.
	ErrUnknownBucket = errors.New("unknown bucket")

	// ErrCategoryNotFound is returned when a free-text category name
	// resolves to no bucket.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrInvalidAmount is returned for non-numeric or zero amounts where
	// a signed amount is required, and for negative bucket targets.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNegativeAllocation is returned when an adjustment would drive a
	// bucket's allocation below zero. The adjustment is rejected before
	// any mutation.
	ErrNegativeAllocation = errors.New("would result in negative allocation")

	// ErrNothingToUndo is returned when the transaction log is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNoBuckets is returned when a quick amount arrives before any
	// bucket exists, so there is nothing to select.
	ErrNoBuckets = errors.New("no buckets set up")

	// ErrNotYourSelection is returned when someone other than the
	// original reporter tries to resolve a pending selection.
	ErrNotYourSelection = errors.New("not your selection")

	// ErrSelectionExpired is returned when a pending selection has timed
	// out (or was never created) before being resolved.
	ErrSelectionExpired = errors.New("selection expired")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownBucketError reports which key failed to match.
type UnknownBucketError struct {
	Key BucketKey
}

func (e *UnknownBucketError) Error() string {
	return fmt.Sprintf("unknown bucket: %s", e.Key)
}

func (e *UnknownBucketError) Unwrap() error { return ErrUnknownBucket }

// CategoryNotFoundError reports which free-text query failed to resolve.
type CategoryNotFoundError struct {
	Query string
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("no bucket matching %q", e.Query)
}

func (e *CategoryNotFoundError) Unwrap() error { return ErrCategoryNotFound }

// NegativeAllocationError reports the adjustment that was rejected.
type NegativeAllocationError struct {
	Key     BucketKey
	Current decimal.Decimal
	Delta   decimal.Decimal
}

func (e *NegativeAllocationError) Error() string {
	return fmt.Sprintf("can't adjust %s: would result in negative allocation (%s)",
		e.Key, e.Current.Add(e.Delta))
}

func (e *NegativeAllocationError) Unwrap() error { return ErrNegativeAllocation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing bucket or
// unresolved category.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownBucket) || errors.Is(err, ErrCategoryNotFound)
}

// IsClientError reports whether the error is caused by the reporter's
// input rather than the system. All of these leave the ledger unchanged.
func IsClientError(err error) bool {
	return IsNotFound(err) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNegativeAllocation) ||
		errors.Is(err, ErrNothingToUndo) ||
		errors.Is(err, ErrNoBuckets) ||
		errors.Is(err, ErrNotYourSelection) ||
		errors.Is(err, ErrSelectionExpired)
}
