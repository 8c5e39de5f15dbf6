/*
classifier.go - Inbound message classification

PURPOSE:
  Parses the raw text of a budgeting-channel message into exactly one
  structured intent. The transport has already scoped the message to the
  budgeting channel; everything that does not parse as a budgeting
  intent is IntentNone and must be silently ignored (it is simply not
  our message, not an error).

RECOGNIZED FORMS:
  "-28"                  Quick amount: bare signed number, bucket chosen later
  "+600 groceries"       Quick allocation: signed number + category name
  "🥕 -12.50 milk"       Explicit transaction: key, amount, description
  "🥕 -40 dinner CC"     Explicit transaction flagged as credit-card purchase

CC SUFFIX:
  A description ending in " CC" (case-insensitive, after trimming) marks
  a credit-card purchase. The suffix is stripped before storage.
*/
package budget

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// DefaultDescription is stored when an explicit transaction omits one.
const DefaultDescription = "No description"

// QuickDescription is stored when a pending quick amount is resolved.
const QuickDescription = "Quick transaction"

// =============================================================================
// INTENT
// =============================================================================

type IntentKind string

const (
	// IntentNone means the message is not a budgeting intent.
	IntentNone IntentKind = "none"

	// IntentQuickAmount is a bare signed number awaiting bucket selection.
	IntentQuickAmount IntentKind = "quick_amount"

	// IntentAllocation moves funds into a bucket resolved by category name.
	IntentAllocation IntentKind = "allocation"

	// IntentTransaction is an explicit deposit or spend on a bucket key.
	IntentTransaction IntentKind = "transaction"
)

// Intent is the classified form of one inbound message.
type Intent struct {
	Kind   IntentKind
	Amount decimal.Decimal

	// Category is the free-text bucket name (allocations only).
	Category string

	// Bucket is the exact bucket key (explicit transactions only).
	Bucket BucketKey

	Description string
	CCPurchase  bool
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classify parses message text into an Intent. It never consults the
// ledger: existence checks belong to the posting engine so that a
// rejected operation can report which bucket was missing.
func Classify(text string) Intent {
	content := strings.TrimSpace(text)
	if content == "" || strings.HasPrefix(content, "!") {
		// Empty or a transport command; not ours.
		return Intent{Kind: IntentNone}
	}

	// Bare signed number: quick amount. Checked before the allocation
	// form so "+600" alone prompts for a bucket.
	if amount, err := decimal.NewFromString(content); err == nil {
		return Intent{Kind: IntentQuickAmount, Amount: amount}
	}

	// Signed number + category: quick allocation. "+600 groceries"
	// funds an envelope, "-100 groceries" takes the allocation back.
	if strings.HasPrefix(content, "+") || strings.HasPrefix(content, "-") {
		parts := splitFields(content, 2)
		if len(parts) == 2 {
			if amount, err := decimal.NewFromString(parts[0]); err == nil {
				return Intent{Kind: IntentAllocation, Amount: amount, Category: parts[1]}
			}
		}
	}

	// Explicit transaction: <key> <amount> [description]
	parts := splitFields(content, 3)
	if len(parts) < 2 {
		return Intent{Kind: IntentNone}
	}
	amount, err := decimal.NewFromString(parts[1])
	if err != nil {
		return Intent{Kind: IntentNone}
	}

	description := DefaultDescription
	if len(parts) == 3 {
		description = parts[2]
	}

	ccPurchase := false
	if strings.HasSuffix(strings.ToUpper(description), " CC") {
		ccPurchase = true
		description = strings.TrimSpace(description[:len(description)-3])
	}

	return Intent{
		Kind:        IntentTransaction,
		Bucket:      BucketKey(parts[0]),
		Amount:      amount,
		Description: description,
		CCPurchase:  ccPurchase,
	}
}

// splitFields splits on runs of whitespace into at most max parts; the
// last part keeps its internal spacing (free-text descriptions).
func splitFields(s string, max int) []string {
	var parts []string
	s = strings.TrimSpace(s)
	for len(parts) < max-1 {
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			break
		}
		parts = append(parts, s[:i])
		s = strings.TrimSpace(s[i:])
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
