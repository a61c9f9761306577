// internal/domain/pricing/engine_test.go
package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/discount"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
)

type fakeDiscountSource struct {
	discounts []discount.Discount
	usage     map[uint]int
}

func (f *fakeDiscountSource) ActiveForPricing(ctx context.Context, now time.Time, code string) ([]discount.Discount, error) {
	return f.discounts, nil
}

func (f *fakeDiscountSource) UserUsage(ctx context.Context, discountID, userID uint) (int, error) {
	return f.usage[discountID], nil
}

type fakeResolver struct {
	chains map[uint][]uint
}

func (f *fakeResolver) Ancestors(ctx context.Context, categoryID uint) ([]uint, error) {
	return f.chains[categoryID], nil
}

func liveDiscount(id uint, name string) discount.Discount {
	now := time.Now()
	return discount.Discount{
		ID:                    id,
		Name:                  name,
		IsActive:              true,
		StartDate:             now.Add(-time.Hour),
		EndDate:               now.Add(time.Hour),
		UsageLimitPerCustomer: 1,
	}
}

func newTestEngine(discounts ...discount.Discount) *Engine {
	return NewEngine(
		&fakeDiscountSource{discounts: discounts},
		&fakeResolver{chains: map[uint][]uint{}},
	)
}

func TestPriceProductWithMRP(t *testing.T) {
	d := liveDiscount(1, "Launch Offer")
	d.Rules = []discount.Rule{{Type: discount.RulePercentage, Value: 20}}
	engine := newTestEngine(d)

	product := &catalog.Product{ID: 1, CategoryID: 1, Price: 10000, ComparePrice: 15000}
	b, err := engine.PriceProduct(context.Background(), product, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(15000), b.OriginalPrice)
	assert.Equal(t, int64(8000), b.DiscountedPrice)
	assert.Equal(t, int64(7000), b.Savings)
	assert.Equal(t, 47, b.DiscountPercentage)
	assert.True(t, b.HasDiscount)
	assert.True(t, b.ShowMRP)
	assert.True(t, b.ShowDiscountBadge)
	assert.Equal(t, "₹150", b.Formatted.MRP)
	assert.Equal(t, "₹80", b.Formatted.SellingPrice)
	assert.Equal(t, "47% off", b.Formatted.DiscountLabel)
}

func TestPriceProductNoDiscounts(t *testing.T) {
	engine := newTestEngine()

	product := &catalog.Product{ID: 1, CategoryID: 1, Price: 10000}
	b, err := engine.PriceProduct(context.Background(), product, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(10000), b.OriginalPrice)
	assert.Equal(t, int64(10000), b.DiscountedPrice)
	assert.Equal(t, int64(0), b.Savings)
	assert.False(t, b.HasDiscount)
	assert.False(t, b.ShowMRP)
	assert.Empty(t, b.AppliedDiscounts)
}

func TestPriceProductMRPWithoutDiscounts(t *testing.T) {
	engine := newTestEngine()

	product := &catalog.Product{ID: 1, CategoryID: 1, Price: 10000, ComparePrice: 15000}
	b, err := engine.PriceProduct(context.Background(), product, nil)
	require.NoError(t, err)

	// The MRP markdown still shows, but nothing was deducted.
	assert.False(t, b.HasDiscount)
	assert.False(t, b.ShowDiscountBadge)
	assert.Empty(t, b.AppliedDiscounts)
	assert.Equal(t, int64(15000), b.OriginalPrice)
	assert.Equal(t, int64(10000), b.DiscountedPrice)
	assert.Equal(t, int64(5000), b.Savings)
	assert.True(t, b.ShowMRP)
}

func TestPriceProductNilProduct(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.PriceProduct(context.Background(), nil, nil)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestPriceCartStacksCombinableDiscounts(t *testing.T) {
	first := liveDiscount(1, "Ten Percent")
	first.CanCombine = true
	first.Rules = []discount.Rule{{Type: discount.RulePercentage, Value: 10}}

	second := liveDiscount(2, "Flat 500")
	second.CanCombine = true
	second.Rules = []discount.Rule{{Type: discount.RuleFixedAmount, Value: 500}}

	engine := newTestEngine(first, second)
	items := []Item{{ProductID: 1, Quantity: 1, UnitPrice: 10000}}

	b, err := engine.PriceCart(context.Background(), items, nil, "")
	require.NoError(t, err)

	assert.Equal(t, int64(10000), b.OriginalTotal)
	assert.Equal(t, int64(1500), b.TotalDiscount)
	assert.Equal(t, int64(8500), b.DiscountedTotal)
	assert.Len(t, b.AppliedDiscounts, 2)
}

func TestPriceCartExclusiveDiscountWinsAlone(t *testing.T) {
	exclusive := liveDiscount(1, "Exclusive")
	exclusive.Rules = []discount.Rule{{Type: discount.RulePercentage, Value: 30}}

	stackable := liveDiscount(2, "Stackable")
	stackable.CanCombine = true
	stackable.Rules = []discount.Rule{{Type: discount.RuleFixedAmount, Value: 500}}

	engine := newTestEngine(exclusive, stackable)
	items := []Item{{ProductID: 1, Quantity: 1, UnitPrice: 10000}}

	b, err := engine.PriceCart(context.Background(), items, nil, "")
	require.NoError(t, err)

	require.Len(t, b.AppliedDiscounts, 1)
	assert.Equal(t, "Exclusive", b.AppliedDiscounts[0].Name)
	assert.Equal(t, int64(3000), b.TotalDiscount)
}

func TestPriceCartClampsToTotal(t *testing.T) {
	first := liveDiscount(1, "Big One")
	first.CanCombine = true
	first.Rules = []discount.Rule{{Type: discount.RuleFixedAmount, Value: 800}}

	second := liveDiscount(2, "Big Two")
	second.CanCombine = true
	second.Rules = []discount.Rule{{Type: discount.RuleFixedAmount, Value: 800}}

	engine := newTestEngine(first, second)
	items := []Item{{ProductID: 1, Quantity: 1, UnitPrice: 1000}}

	b, err := engine.PriceCart(context.Background(), items, nil, "")
	require.NoError(t, err)

	assert.Equal(t, int64(1000), b.TotalDiscount)
	assert.Equal(t, int64(0), b.DiscountedTotal)
}

func TestPriceCartFreeShipping(t *testing.T) {
	d := liveDiscount(1, "Free Delivery")
	d.CanCombine = true
	d.Rules = []discount.Rule{{Type: discount.RuleFreeShipping}}

	engine := newTestEngine(d)
	items := []Item{{ProductID: 1, Quantity: 1, UnitPrice: 10000}}

	b, err := engine.PriceCart(context.Background(), items, nil, "")
	require.NoError(t, err)

	assert.True(t, b.FreeShipping)
	assert.Equal(t, int64(0), b.TotalDiscount)
	require.Len(t, b.AppliedDiscounts, 1)
	assert.Equal(t, int64(0), b.AppliedDiscounts[0].Amount)
}

func TestPriceCartSkipsFirstTimeOnlyForAnonymous(t *testing.T) {
	d := liveDiscount(1, "Welcome")
	d.FirstTimeCustomersOnly = true
	d.Rules = []discount.Rule{{Type: discount.RulePercentage, Value: 10}}

	engine := newTestEngine(d)
	items := []Item{{ProductID: 1, Quantity: 1, UnitPrice: 10000}}

	b, err := engine.PriceCart(context.Background(), items, nil, "")
	require.NoError(t, err)
	assert.Empty(t, b.AppliedDiscounts)

	// A first-time customer does get it.
	b, err = engine.PriceCart(context.Background(), items, &UserContext{UserID: 5, IsFirstTimeCustomer: true}, "")
	require.NoError(t, err)
	assert.Len(t, b.AppliedDiscounts, 1)

	// A returning customer does not.
	b, err = engine.PriceCart(context.Background(), items, &UserContext{UserID: 5}, "")
	require.NoError(t, err)
	assert.Empty(t, b.AppliedDiscounts)
}

func TestPriceCartMinimumOrderAmount(t *testing.T) {
	d := liveDiscount(1, "Big Spender")
	d.MinimumOrderAmount = 50000
	d.Rules = []discount.Rule{{Type: discount.RulePercentage, Value: 10}}

	engine := newTestEngine(d)

	b, err := engine.PriceCart(context.Background(), []Item{{ProductID: 1, Quantity: 1, UnitPrice: 10000}}, nil, "")
	require.NoError(t, err)
	assert.Empty(t, b.AppliedDiscounts)

	b, err = engine.PriceCart(context.Background(), []Item{{ProductID: 1, Quantity: 1, UnitPrice: 50000}}, nil, "")
	require.NoError(t, err)
	assert.Len(t, b.AppliedDiscounts, 1)
}

func TestPriceCartMinimumQuantity(t *testing.T) {
	d := liveDiscount(1, "Buy More")
	d.MinimumQuantity = 3
	d.Rules = []discount.Rule{{Type: discount.RulePercentage, Value: 10}}

	engine := newTestEngine(d)

	b, err := engine.PriceCart(context.Background(), []Item{{ProductID: 1, Quantity: 2, UnitPrice: 1000}}, nil, "")
	require.NoError(t, err)
	assert.Empty(t, b.AppliedDiscounts)

	b, err = engine.PriceCart(context.Background(), []Item{{ProductID: 1, Quantity: 3, UnitPrice: 1000}}, nil, "")
	require.NoError(t, err)
	assert.Len(t, b.AppliedDiscounts, 1)
}

func TestPriceCartPerUserUsageGate(t *testing.T) {
	d := liveDiscount(1, "Once Each")
	d.UsageLimitPerCustomer = 1
	d.Rules = []discount.Rule{{Type: discount.RulePercentage, Value: 10}}

	source := &fakeDiscountSource{
		discounts: []discount.Discount{d},
		usage:     map[uint]int{1: 1},
	}
	engine := NewEngine(source, &fakeResolver{})
	items := []Item{{ProductID: 1, Quantity: 1, UnitPrice: 10000}}

	b, err := engine.PriceCart(context.Background(), items, &UserContext{UserID: 5}, "")
	require.NoError(t, err)
	assert.Empty(t, b.AppliedDiscounts)
}

func TestPriceCartScopedToCategoryAncestor(t *testing.T) {
	d := liveDiscount(1, "Electronics Sale")
	d.Rules = []discount.Rule{{Type: discount.RulePercentage, Value: 10}}
	d.Scope = []discount.ScopeEntry{{Kind: discount.ScopeApplicableCategory, TargetID: 1}}

	engine := NewEngine(
		&fakeDiscountSource{discounts: []discount.Discount{d}},
		&fakeResolver{chains: map[uint][]uint{10: {1}}},
	)

	// Item in a child category of the scoped one.
	b, err := engine.PriceCart(context.Background(), []Item{{ProductID: 1, CategoryID: 10, Quantity: 1, UnitPrice: 10000}}, nil, "")
	require.NoError(t, err)
	assert.Len(t, b.AppliedDiscounts, 1)

	// Item in an unrelated category.
	b, err = engine.PriceCart(context.Background(), []Item{{ProductID: 2, CategoryID: 99, Quantity: 1, UnitPrice: 10000}}, nil, "")
	require.NoError(t, err)
	assert.Empty(t, b.AppliedDiscounts)
}

func TestPriceCartRejectsBadInput(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.PriceCart(context.Background(), nil, nil, "")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = engine.PriceCart(context.Background(), []Item{{ProductID: 1, Quantity: 0, UnitPrice: 1000}}, nil, "")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
