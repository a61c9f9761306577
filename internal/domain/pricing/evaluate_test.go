// internal/domain/pricing/evaluate_test.go
package pricing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/storefront-backend/internal/domain/discount"
)

func items(list ...Item) []resolvedItem {
	resolved := make([]resolvedItem, 0, len(list))
	for _, item := range list {
		resolved = append(resolved, resolvedItem{Item: item})
	}
	return resolved
}

func TestEvaluateDiscountPercentage(t *testing.T) {
	d := &discount.Discount{Rules: []discount.Rule{{Type: discount.RulePercentage, Value: 20}}}
	cart := items(Item{ProductID: 1, Quantity: 1, UnitPrice: 10000})

	assert.Equal(t, int64(2000), evaluateDiscount(d, cart, 10000))
}

func TestEvaluateDiscountFixedAmount(t *testing.T) {
	d := &discount.Discount{Rules: []discount.Rule{{Type: discount.RuleFixedAmount, Value: 1500}}}
	cart := items(Item{ProductID: 1, Quantity: 1, UnitPrice: 10000})

	assert.Equal(t, int64(1500), evaluateDiscount(d, cart, 10000))
}

func TestEvaluateDiscountClampsToCartTotal(t *testing.T) {
	d := &discount.Discount{Rules: []discount.Rule{{Type: discount.RuleFixedAmount, Value: 50000}}}
	cart := items(Item{ProductID: 1, Quantity: 1, UnitPrice: 10000})

	assert.Equal(t, int64(10000), evaluateDiscount(d, cart, 10000))
}

func TestEvaluateDiscountRulesAccumulate(t *testing.T) {
	d := &discount.Discount{Rules: []discount.Rule{
		{Type: discount.RulePercentage, Value: 10},
		{Type: discount.RuleFixedAmount, Value: 500},
	}}
	cart := items(Item{ProductID: 1, Quantity: 1, UnitPrice: 10000})

	assert.Equal(t, int64(1500), evaluateDiscount(d, cart, 10000))
}

func TestEvaluateBuyXGetY(t *testing.T) {
	rule := &discount.Rule{
		Type:               discount.RuleBuyXGetY,
		BuyQuantity:        2,
		GetQuantity:        1,
		GetDiscountPercent: 100,
	}
	d := &discount.Discount{Rules: []discount.Rule{*rule}}

	tests := []struct {
		name     string
		quantity int
		want     int64
	}{
		{"below one block", 2, 0},
		{"one full block", 3, 1000},
		{"partial second block", 5, 1000},
		{"two full blocks", 6, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := items(Item{ProductID: 1, Quantity: tt.quantity, UnitPrice: 1000})
			assert.Equal(t, tt.want, evaluateBuyXGetY(d, rule, cart))
		})
	}
}

func TestEvaluateBuyXGetYPartialDiscount(t *testing.T) {
	rule := &discount.Rule{
		Type:               discount.RuleBuyXGetY,
		BuyQuantity:        1,
		GetQuantity:        1,
		GetDiscountPercent: 50,
	}
	d := &discount.Discount{Rules: []discount.Rule{*rule}}
	cart := items(Item{ProductID: 1, Quantity: 2, UnitPrice: 1000})

	// One free unit at half off.
	assert.Equal(t, int64(500), evaluateBuyXGetY(d, rule, cart))
}

func TestEvaluateBuyXGetYHonorsApplicableProducts(t *testing.T) {
	rule := &discount.Rule{
		Type:               discount.RuleBuyXGetY,
		BuyQuantity:        2,
		GetQuantity:        1,
		GetDiscountPercent: 100,
	}
	d := &discount.Discount{
		Rules: []discount.Rule{*rule},
		Scope: []discount.ScopeEntry{
			{Kind: discount.ScopeApplicableProduct, TargetID: 7},
		},
	}
	cart := items(
		Item{ProductID: 7, Quantity: 3, UnitPrice: 1000},
		Item{ProductID: 8, Quantity: 3, UnitPrice: 2000},
	)

	// Only product 7 participates.
	assert.Equal(t, int64(1000), evaluateBuyXGetY(d, rule, cart))
}

func TestEvaluateBulkAllSatisfiedTiersStack(t *testing.T) {
	rule := &discount.Rule{
		Type: discount.RuleBulkDiscount,
		BulkTiers: []discount.BulkTier{
			{MinQuantity: 5, DiscountPercent: 5},
			{MinQuantity: 10, DiscountPercent: 10},
		},
	}

	// Quantity 10 satisfies both tiers against a line of 10000.
	cart := items(Item{ProductID: 1, Quantity: 10, UnitPrice: 1000})
	assert.Equal(t, int64(1500), evaluateBulk(rule, cart))

	// Quantity 5 satisfies only the first tier.
	cart = items(Item{ProductID: 1, Quantity: 5, UnitPrice: 1000})
	assert.Equal(t, int64(250), evaluateBulk(rule, cart))

	// Quantity 4 satisfies nothing.
	cart = items(Item{ProductID: 1, Quantity: 4, UnitPrice: 1000})
	assert.Equal(t, int64(0), evaluateBulk(rule, cart))
}

func TestEvaluateBundleRequiresAllProducts(t *testing.T) {
	rule := &discount.Rule{
		Type:        discount.RuleBundle,
		BundleType:  discount.RulePercentage,
		BundleValue: 10,
		BundleItems: []discount.BundleItem{
			{ProductID: 1, MinQuantity: 1},
			{ProductID: 2, MinQuantity: 1},
		},
	}

	// Missing product 2: no discount.
	cart := items(Item{ProductID: 1, Quantity: 1, UnitPrice: 5000})
	assert.Equal(t, int64(0), evaluateBundle(rule, cart, 5000))

	// Both present: 10% of the whole cart total.
	cart = items(
		Item{ProductID: 1, Quantity: 1, UnitPrice: 5000},
		Item{ProductID: 2, Quantity: 1, UnitPrice: 3000},
		Item{ProductID: 3, Quantity: 1, UnitPrice: 9000},
	)
	assert.Equal(t, int64(1700), evaluateBundle(rule, cart, 17000))
}

func TestEvaluateBundleFixedAmount(t *testing.T) {
	rule := &discount.Rule{
		Type:        discount.RuleBundle,
		BundleType:  discount.RuleFixedAmount,
		BundleValue: 2000,
		BundleItems: []discount.BundleItem{{ProductID: 1, MinQuantity: 1}},
	}

	cart := items(Item{ProductID: 1, Quantity: 1, UnitPrice: 5000})
	assert.Equal(t, int64(2000), evaluateBundle(rule, cart, 5000))

	// Fixed amount never exceeds the cart total.
	cart = items(Item{ProductID: 1, Quantity: 1, UnitPrice: 1000})
	assert.Equal(t, int64(1000), evaluateBundle(rule, cart, 1000))
}

func TestEvaluateFreeShippingDeductsNothing(t *testing.T) {
	d := &discount.Discount{Rules: []discount.Rule{{Type: discount.RuleFreeShipping}}}
	cart := items(Item{ProductID: 1, Quantity: 1, UnitPrice: 10000})

	assert.Equal(t, int64(0), evaluateDiscount(d, cart, 10000))
	assert.True(t, hasRuleType(d, discount.RuleFreeShipping))
}

func TestEvaluateDiscountNeverExceedsCartTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ruleTypes := []discount.RuleType{
		discount.RulePercentage, discount.RuleFixedAmount, discount.RuleBuyXGetY,
		discount.RuleBulkDiscount, discount.RuleFreeShipping, discount.RuleBundle,
	}

	for i := 0; i < 500; i++ {
		cart := make([]resolvedItem, 0, 3)
		var cartTotal int64
		for j := 0; j < 1+rng.Intn(3); j++ {
			item := Item{
				ProductID: uint(1 + rng.Intn(5)),
				Quantity:  1 + rng.Intn(10),
				UnitPrice: int64(1 + rng.Intn(50000)),
			}
			cartTotal += item.UnitPrice * int64(item.Quantity)
			cart = append(cart, resolvedItem{Item: item})
		}

		d := &discount.Discount{}
		for j := 0; j < 1+rng.Intn(3); j++ {
			rule := discount.Rule{
				Type:               ruleTypes[rng.Intn(len(ruleTypes))],
				Value:              float64(1 + rng.Intn(100)),
				BuyQuantity:        1 + rng.Intn(4),
				GetQuantity:        1 + rng.Intn(4),
				GetDiscountPercent: float64(rng.Intn(101)),
				BundleType:         discount.RulePercentage,
				BundleValue:        float64(1 + rng.Intn(100)),
				BulkTiers: []discount.BulkTier{
					{MinQuantity: 1 + rng.Intn(10), DiscountPercent: float64(rng.Intn(101))},
				},
				BundleItems: []discount.BundleItem{
					{ProductID: uint(1 + rng.Intn(5)), MinQuantity: 1},
				},
			}
			d.Rules = append(d.Rules, rule)
		}

		amount := evaluateDiscount(d, cart, cartTotal)
		assert.GreaterOrEqual(t, amount, int64(0))
		assert.LessOrEqual(t, amount, cartTotal)
	}
}

func TestPercentOfRounds(t *testing.T) {
	assert.Equal(t, int64(33), percentOf(333, 10))
	assert.Equal(t, int64(34), percentOf(335, 10))
	assert.Equal(t, int64(0), percentOf(0, 50))
}
