package budget_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/envelope-engine/budget"
)

func TestPendingStore_PutGetDelete(t *testing.T) {
	p := budget.NewPendingStore(time.Minute)

	p.Put("alice", "m1", dec("-28"))

	entry, ok := p.Get("alice")
	assert.True(t, ok)
	assert.Equal(t, "alice", entry.Reporter)
	assert.Equal(t, "m1", entry.MessageID)
	assert.True(t, entry.Amount.Equal(dec("-28")))

	_, ok = p.Get("bob")
	assert.False(t, ok)

	p.Delete("alice")
	_, ok = p.Get("alice")
	assert.False(t, ok)
}

func TestPendingStore_OnePerReporter(t *testing.T) {
	p := budget.NewPendingStore(time.Minute)

	p.Put("alice", "m1", dec("-28"))
	p.Put("alice", "m2", dec("-50"))

	entry, ok := p.Get("alice")
	assert.True(t, ok)
	assert.True(t, entry.Amount.Equal(dec("-50")), "second amount replaces the first")
	assert.Equal(t, "m2", entry.MessageID)
	assert.Equal(t, 1, p.Size())
}

func TestPendingStore_Expiry(t *testing.T) {
	p := budget.NewPendingStore(15 * time.Millisecond)

	p.Put("alice", "m1", dec("-28"))
	time.Sleep(30 * time.Millisecond)

	_, ok := p.Get("alice")
	assert.False(t, ok)
	assert.Equal(t, 0, p.Size(), "expired entry is removed on Get")
}

func TestPendingStore_CleanExpired(t *testing.T) {
	p := budget.NewPendingStore(15 * time.Millisecond)

	p.Put("alice", "m1", dec("-28"))
	p.Put("bob", "m2", dec("-40"))
	time.Sleep(30 * time.Millisecond)
	p.Put("carol", "m3", dec("100"))

	removed := p.CleanExpired()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, p.Size())

	_, ok := p.Get("carol")
	assert.True(t, ok)
}

func TestPendingStore_ZeroTTLFallsBackToDefault(t *testing.T) {
	p := budget.NewPendingStore(0)

	p.Put("alice", "m1", dec("-28"))
	_, ok := p.Get("alice")
	assert.True(t, ok)
}
