/*
resolver.go - Free-text category to bucket matching

PURPOSE:
  Maps the category text from a quick allocation ("+600 groceries") to a
  bucket. Matching is exact-then-substring, case-insensitive, with ties
  broken by bucket insertion order. No scoring, no edit distance.
*/
package budget

import "strings"

// ResolveBucket finds the bucket for a free-text category name.
//
// Algorithm:
//  1. Case-insensitive exact match against each bucket name.
//  2. Case-insensitive substring match (query contained in name).
//
// Each pass scans buckets in insertion order and the first hit wins, so
// resolution is deterministic for duplicate or overlapping names.
func ResolveBucket(l *Ledger, query string) (Bucket, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Bucket{}, false
	}

	for _, b := range l.Buckets.All() {
		if strings.ToLower(b.Name) == q {
			return b, true
		}
	}
	for _, b := range l.Buckets.All() {
		if strings.Contains(strings.ToLower(b.Name), q) {
			return b, true
		}
	}
	return Bucket{}, false
}
