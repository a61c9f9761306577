// internal/domain/coupon/entity_test.go
package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func liveCoupon() Coupon {
	now := time.Now()
	return Coupon{
		Code:      "SAVE10",
		Type:      TypePercentage,
		Value:     10,
		UserLimit: 1,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
		IsActive:  true,
	}
}

func TestCouponValidate(t *testing.T) {
	valid := liveCoupon()
	assert.NoError(t, valid.Validate())

	shortCode := valid
	shortCode.Code = "AB"
	assert.Error(t, shortCode.Validate())

	badType := valid
	badType.Type = Type("bogus")
	assert.Error(t, badType.Validate())

	zeroValue := valid
	zeroValue.Value = 0
	assert.Error(t, zeroValue.Validate())

	overPercent := valid
	overPercent.Value = 120
	assert.Error(t, overPercent.Validate())

	// A fixed coupon may exceed 100; it is paise, not a percent.
	bigFixed := valid
	bigFixed.Type = TypeFixed
	bigFixed.Value = 50000
	assert.NoError(t, bigFixed.Validate())

	negativeBound := valid
	negativeBound.MinimumAmount = -1
	assert.Error(t, negativeBound.Validate())

	inverted := valid
	inverted.StartDate, inverted.EndDate = valid.EndDate, valid.StartDate
	assert.Error(t, inverted.Validate())
}

func TestCouponIsValidNow(t *testing.T) {
	now := time.Now()

	c := liveCoupon()
	assert.True(t, c.IsValidNow(now))

	inactive := c
	inactive.IsActive = false
	assert.False(t, inactive.IsValidNow(now))

	future := c
	future.StartDate = now.Add(time.Hour)
	future.EndDate = now.Add(2 * time.Hour)
	assert.False(t, future.IsValidNow(now))

	expired := c
	expired.StartDate = now.Add(-2 * time.Hour)
	expired.EndDate = now.Add(-time.Hour)
	assert.False(t, expired.IsValidNow(now))

	exhausted := c
	exhausted.UsageLimit = 5
	exhausted.UsageCount = 5
	assert.False(t, exhausted.IsValidNow(now))

	unlimited := c
	unlimited.UsageLimit = 0
	unlimited.UsageCount = 1000
	assert.True(t, unlimited.IsValidNow(now))
}

func TestCouponCanUserUse(t *testing.T) {
	c := Coupon{UserLimit: 2}
	assert.True(t, c.CanUserUse(0))
	assert.True(t, c.CanUserUse(1))
	assert.False(t, c.CanUserUse(2))

	unlimited := Coupon{UserLimit: 0}
	assert.True(t, unlimited.CanUserUse(500))
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name   string
		coupon Coupon
		amount int64
		want   int64
	}{
		{"percentage", Coupon{Type: TypePercentage, Value: 10}, 10000, 1000},
		{"percentage rounds", Coupon{Type: TypePercentage, Value: 33}, 101, 33},
		{"percentage capped at maximum", Coupon{Type: TypePercentage, Value: 50, MaximumAmount: 2000}, 10000, 2000},
		{"fixed", Coupon{Type: TypeFixed, Value: 1500}, 10000, 1500},
		{"fixed never exceeds amount", Coupon{Type: TypeFixed, Value: 5000}, 4000, 4000},
		{"below minimum deducts nothing", Coupon{Type: TypeFixed, Value: 15, MinimumAmount: 50}, 40, 0},
		{"at minimum deducts", Coupon{Type: TypeFixed, Value: 15, MinimumAmount: 50}, 50, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coupon.CalculateDiscount(tt.amount))
		})
	}
}

func TestCouponScopeAccessors(t *testing.T) {
	c := Coupon{Scope: []ScopeEntry{
		{Kind: ScopeApplicableProduct, TargetID: 1},
		{Kind: ScopeApplicableCategory, TargetID: 10},
		{Kind: ScopeExcludedProduct, TargetID: 2},
		{Kind: ScopeExcludedCategory, TargetID: 20},
	}}

	assert.Equal(t, []uint{1}, c.ApplicableProducts())
	assert.Equal(t, []uint{10}, c.ApplicableCategories())
	assert.Equal(t, []uint{2}, c.ExcludedProducts())
	assert.Equal(t, []uint{20}, c.ExcludedCategories())
}
