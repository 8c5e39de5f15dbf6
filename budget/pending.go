/*
pending.go - Pending quick-amount selections

PURPOSE:
  When a reporter posts a bare signed amount, the engine parks it here
  until they pick a bucket. Entries are keyed by reporter identity: a
  second bare amount from the same reporter overwrites the first (no
  queue), and entries expire after a bounded TTL so a stale button press
  is rejected instead of posting against old state.

  This is ordinary TTL-cache machinery; expiry is lazy on Get with a
  CleanExpired sweep for long-running processes.
*/
package budget

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPendingTTL bounds how long a quick amount waits for a bucket
// selection before it is discarded.
const DefaultPendingTTL = 5 * time.Minute

// PendingAmount is one parked quick amount.
type PendingAmount struct {
	Reporter  string
	Amount    decimal.Decimal
	MessageID string
	CreatedAt time.Time
}

// PendingStore holds at most one pending amount per reporter.
type PendingStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]PendingAmount
	now     func() time.Time
}

func NewPendingStore(ttl time.Duration) *PendingStore {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	return &PendingStore{
		ttl:     ttl,
		entries: make(map[string]PendingAmount),
		now:     time.Now,
	}
}

// Put parks an amount for the reporter, replacing any existing entry.
func (p *PendingStore) Put(reporter, messageID string, amount decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[reporter] = PendingAmount{
		Reporter:  reporter,
		Amount:    amount,
		MessageID: messageID,
		CreatedAt: p.now(),
	}
}

// Get returns the reporter's live entry. Expired entries are removed
// and reported as absent.
func (p *PendingStore) Get(reporter string) (PendingAmount, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.entries[reporter]
	if !ok {
		return PendingAmount{}, false
	}
	if p.now().Sub(entry.CreatedAt) > p.ttl {
		delete(p.entries, reporter)
		return PendingAmount{}, false
	}
	return entry, true
}

// Delete removes the reporter's entry, if any.
func (p *PendingStore) Delete(reporter string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, reporter)
}

// CleanExpired removes all expired entries and returns how many were
// dropped. Intended for a periodic sweep.
func (p *PendingStore) CleanExpired() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	removed := 0
	for reporter, entry := range p.entries {
		if p.now().Sub(entry.CreatedAt) > p.ttl {
			delete(p.entries, reporter)
			removed++
		}
	}
	return removed
}

// Size returns the number of live-or-expired entries currently held.
func (p *PendingStore) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
