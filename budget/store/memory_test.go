package store_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/envelope-engine/budget"
	"github.com/warp/envelope-engine/budget/store"
)

func TestMemory_StartsEmpty(t *testing.T) {
	m := store.NewMemory()

	l, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, l.Buckets.Len())
	assert.Empty(t, l.Transactions)
	assert.Empty(t, l.Income)
}

func TestMemory_SaveThenLoad(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	l := budget.NewLedger()
	l.Buckets.Set(budget.Bucket{Key: "🥕", Name: "Groceries", Target: decimal.NewFromInt(600)})
	l.Transactions = append(l.Transactions, budget.Transaction{ID: "t1", Bucket: "🥕", Amount: decimal.NewFromInt(-28)})
	require.NoError(t, m.Save(ctx, l))

	got, err := m.Load(ctx)
	require.NoError(t, err)
	b, ok := got.Buckets.Get("🥕")
	assert.True(t, ok)
	assert.Equal(t, "Groceries", b.Name)
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "t1", got.Transactions[0].ID)
}

func TestMemory_LoadedAggregateIsIsolated(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	l := budget.NewLedger()
	l.Buckets.Set(budget.Bucket{Key: "🥕", Name: "Groceries"})
	require.NoError(t, m.Save(ctx, l))

	// WHEN: a caller mutates what Load handed out
	loaded, err := m.Load(ctx)
	require.NoError(t, err)
	loaded.Buckets.Set(budget.Bucket{Key: "🥕", Name: "Hijacked"})
	loaded.Transactions = append(loaded.Transactions, budget.Transaction{ID: "rogue"})

	// THEN: the stored aggregate is unaffected
	fresh, err := m.Load(ctx)
	require.NoError(t, err)
	b, _ := fresh.Buckets.Get("🥕")
	assert.Equal(t, "Groceries", b.Name)
	assert.Empty(t, fresh.Transactions)
}

func TestMemory_SavedAggregateIsIsolated(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	l := budget.NewLedger()
	l.Buckets.Set(budget.Bucket{Key: "🥕", Name: "Groceries"})
	require.NoError(t, m.Save(ctx, l))

	// Mutating the aggregate after Save must not leak into the store.
	l.Buckets.Set(budget.Bucket{Key: "🥕", Name: "Hijacked"})

	fresh, err := m.Load(ctx)
	require.NoError(t, err)
	b, _ := fresh.Buckets.Get("🥕")
	assert.Equal(t, "Groceries", b.Name)
}
