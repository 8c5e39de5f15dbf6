package budget_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/envelope-engine/budget"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		want budget.Intent
	}{
		{
			name: "quick spend amount",
			text: "-28",
			want: budget.Intent{Kind: budget.IntentQuickAmount, Amount: dec("-28")},
		},
		{
			name: "quick deposit amount",
			text: "150",
			want: budget.Intent{Kind: budget.IntentQuickAmount, Amount: dec("150")},
		},
		{
			name: "bare signed number is quick, not allocation",
			text: "+600",
			want: budget.Intent{Kind: budget.IntentQuickAmount, Amount: dec("600")},
		},
		{
			name: "decimal quick amount with surrounding whitespace",
			text: "  -12.50  ",
			want: budget.Intent{Kind: budget.IntentQuickAmount, Amount: dec("-12.50")},
		},
		{
			name: "allocation",
			text: "+600 groceries",
			want: budget.Intent{Kind: budget.IntentAllocation, Amount: dec("600"), Category: "groceries"},
		},
		{
			name: "negative allocation takes funds back",
			text: "-100 groceries",
			want: budget.Intent{Kind: budget.IntentAllocation, Amount: dec("-100"), Category: "groceries"},
		},
		{
			name: "allocation category keeps internal spacing",
			text: "+50 eating out",
			want: budget.Intent{Kind: budget.IntentAllocation, Amount: dec("50"), Category: "eating out"},
		},
		{
			name: "explicit transaction with description",
			text: "🥕 -12.50 milk and eggs",
			want: budget.Intent{
				Kind: budget.IntentTransaction, Bucket: "🥕",
				Amount: dec("-12.50"), Description: "milk and eggs",
			},
		},
		{
			name: "explicit transaction without description",
			text: "🥕 -40",
			want: budget.Intent{
				Kind: budget.IntentTransaction, Bucket: "🥕",
				Amount: dec("-40"), Description: budget.DefaultDescription,
			},
		},
		{
			name: "explicit deposit",
			text: "🥕 25 refund",
			want: budget.Intent{
				Kind: budget.IntentTransaction, Bucket: "🥕",
				Amount: dec("25"), Description: "refund",
			},
		},
		{
			name: "credit card suffix stripped",
			text: "🍽 -40 dinner CC",
			want: budget.Intent{
				Kind: budget.IntentTransaction, Bucket: "🍽",
				Amount: dec("-40"), Description: "dinner", CCPurchase: true,
			},
		},
		{
			name: "credit card suffix is case-insensitive",
			text: "🍽 -40 dinner cc",
			want: budget.Intent{
				Kind: budget.IntentTransaction, Bucket: "🍽",
				Amount: dec("-40"), Description: "dinner", CCPurchase: true,
			},
		},
		{
			name: "chatter is ignored",
			text: "thanks, looks good!",
			want: budget.Intent{Kind: budget.IntentNone},
		},
		{
			name: "transport command is ignored",
			text: "!summary",
			want: budget.Intent{Kind: budget.IntentNone},
		},
		{
			name: "empty text is ignored",
			text: "   ",
			want: budget.Intent{Kind: budget.IntentNone},
		},
		{
			name: "lone key is ignored",
			text: "🥕",
			want: budget.Intent{Kind: budget.IntentNone},
		},
		{
			name: "key with non-numeric amount is ignored",
			text: "🥕 lots of money",
			want: budget.Intent{Kind: budget.IntentNone},
		},
		{
			name: "sign with non-numeric rest is ignored",
			text: "+groceries money",
			want: budget.Intent{Kind: budget.IntentNone},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := budget.Classify(tc.text)
			assert.Equal(t, tc.want.Kind, got.Kind)
			assert.True(t, tc.want.Amount.Equal(got.Amount), "amount: want %s got %s", tc.want.Amount, got.Amount)
			assert.Equal(t, tc.want.Category, got.Category)
			assert.Equal(t, tc.want.Bucket, got.Bucket)
			assert.Equal(t, tc.want.Description, got.Description)
			assert.Equal(t, tc.want.CCPurchase, got.CCPurchase)
		})
	}
}

func TestClassify_DescriptionThatIsJustCC(t *testing.T) {
	// "CC" alone has no leading space to match the suffix rule; it stays
	// a literal description.
	got := budget.Classify("🍽 -40 CC")
	assert.Equal(t, budget.IntentTransaction, got.Kind)
	assert.False(t, got.CCPurchase)
	assert.Equal(t, "CC", got.Description)
}
