// internal/domain/discount/entity_test.go
package discount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validWindow() (time.Time, time.Time) {
	now := time.Now()
	return now.Add(-time.Hour), now.Add(time.Hour)
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{"percentage ok", Rule{Type: RulePercentage, Value: 20}, false},
		{"percentage zero", Rule{Type: RulePercentage, Value: 0}, true},
		{"percentage over 100", Rule{Type: RulePercentage, Value: 101}, true},
		{"fixed ok", Rule{Type: RuleFixedAmount, Value: 500}, false},
		{"fixed zero", Rule{Type: RuleFixedAmount, Value: 0}, true},
		{"bxgy ok", Rule{Type: RuleBuyXGetY, BuyQuantity: 2, GetQuantity: 1, GetDiscountPercent: 100}, false},
		{"bxgy missing buy", Rule{Type: RuleBuyXGetY, GetQuantity: 1}, true},
		{"bxgy bad percent", Rule{Type: RuleBuyXGetY, BuyQuantity: 1, GetQuantity: 1, GetDiscountPercent: 150}, true},
		{"bulk ok", Rule{Type: RuleBulkDiscount, BulkTiers: []BulkTier{{MinQuantity: 5, DiscountPercent: 10}}}, false},
		{"bulk no tiers", Rule{Type: RuleBulkDiscount}, true},
		{"bulk bad tier quantity", Rule{Type: RuleBulkDiscount, BulkTiers: []BulkTier{{MinQuantity: 0, DiscountPercent: 10}}}, true},
		{"bulk bad tier percent", Rule{Type: RuleBulkDiscount, BulkTiers: []BulkTier{{MinQuantity: 5, DiscountPercent: 110}}}, true},
		{"free shipping ok", Rule{Type: RuleFreeShipping}, false},
		{"bundle ok", Rule{Type: RuleBundle, BundleType: RulePercentage, BundleValue: 10, BundleItems: []BundleItem{{ProductID: 1, MinQuantity: 1}}}, false},
		{"bundle no items", Rule{Type: RuleBundle, BundleType: RulePercentage, BundleValue: 10}, true},
		{"bundle bad type", Rule{Type: RuleBundle, BundleType: RuleFreeShipping, BundleValue: 10, BundleItems: []BundleItem{{ProductID: 1, MinQuantity: 1}}}, true},
		{"bundle zero value", Rule{Type: RuleBundle, BundleType: RuleFixedAmount, BundleItems: []BundleItem{{ProductID: 1, MinQuantity: 1}}}, true},
		{"bundle bad item quantity", Rule{Type: RuleBundle, BundleType: RulePercentage, BundleValue: 10, BundleItems: []BundleItem{{ProductID: 1}}}, true},
		{"unknown type", Rule{Type: RuleType("mystery"), Value: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDiscountValidate(t *testing.T) {
	start, end := validWindow()

	valid := Discount{
		Name:      "Sale",
		Rules:     []Rule{{Type: RulePercentage, Value: 10}},
		StartDate: start,
		EndDate:   end,
	}
	assert.NoError(t, valid.Validate())

	noName := valid
	noName.Name = ""
	assert.Error(t, noName.Validate())

	noRules := valid
	noRules.Rules = nil
	assert.Error(t, noRules.Validate())

	inverted := valid
	inverted.StartDate, inverted.EndDate = end, start
	assert.Error(t, inverted.Validate())

	badRule := valid
	badRule.Rules = []Rule{{Type: RulePercentage, Value: 0}}
	assert.Error(t, badRule.Validate())

	badTime := valid
	badTime.TimeRestrictions = TimeRestrictions{StartTime: "9am", EndTime: "17:00"}
	assert.Error(t, badTime.Validate())

	goodTime := valid
	goodTime.TimeRestrictions = TimeRestrictions{StartTime: "09:00", EndTime: "17:00"}
	assert.NoError(t, goodTime.Validate())
}

func TestTimeRestrictionsAllows(t *testing.T) {
	// 2026-08-31 is a Monday (weekday 1).
	monday := time.Date(2026, 8, 31, 12, 30, 0, 0, time.Local)

	none := TimeRestrictions{}
	assert.True(t, none.Allows(monday))

	weekdays := TimeRestrictions{DaysOfWeek: "1,2,3,4,5"}
	assert.True(t, weekdays.Allows(monday))

	weekend := TimeRestrictions{DaysOfWeek: "0,6"}
	assert.False(t, weekend.Allows(monday))

	window := TimeRestrictions{StartTime: "09:00", EndTime: "17:00"}
	assert.True(t, window.Allows(monday))
	assert.False(t, window.Allows(time.Date(2026, 8, 31, 8, 59, 0, 0, time.Local)))
	// EndTime is inclusive.
	assert.True(t, window.Allows(time.Date(2026, 8, 31, 17, 0, 0, 0, time.Local)))
	assert.False(t, window.Allows(time.Date(2026, 8, 31, 17, 1, 0, 0, time.Local)))

	both := TimeRestrictions{DaysOfWeek: "1", StartTime: "09:00", EndTime: "17:00"}
	assert.True(t, both.Allows(monday))
	assert.False(t, both.Allows(monday.Add(24*time.Hour)))
}

func TestDiscountIsValidNow(t *testing.T) {
	now := time.Now()
	start, end := validWindow()

	d := Discount{IsActive: true, StartDate: start, EndDate: end}
	assert.True(t, d.IsValidNow(now))

	inactive := d
	inactive.IsActive = false
	assert.False(t, inactive.IsValidNow(now))

	future := d
	future.StartDate = now.Add(time.Hour)
	future.EndDate = now.Add(2 * time.Hour)
	assert.False(t, future.IsValidNow(now))

	expired := d
	expired.StartDate = now.Add(-2 * time.Hour)
	expired.EndDate = now.Add(-time.Hour)
	assert.False(t, expired.IsValidNow(now))

	exhausted := d
	exhausted.UsageLimit = 10
	exhausted.UsageCount = 10
	assert.False(t, exhausted.IsValidNow(now))

	underLimit := d
	underLimit.UsageLimit = 10
	underLimit.UsageCount = 9
	assert.True(t, underLimit.IsValidNow(now))
}

func TestDiscountCanUserUse(t *testing.T) {
	now := time.Now()
	start, end := validWindow()

	d := Discount{
		IsActive:              true,
		StartDate:             start,
		EndDate:               end,
		UsageLimitPerCustomer: 2,
	}

	assert.True(t, d.CanUserUse(now, 0, false))
	assert.True(t, d.CanUserUse(now, 1, false))
	assert.False(t, d.CanUserUse(now, 2, false))

	firstOnly := d
	firstOnly.FirstTimeCustomersOnly = true
	assert.True(t, firstOnly.CanUserUse(now, 0, true))
	assert.False(t, firstOnly.CanUserUse(now, 0, false))

	inactive := d
	inactive.IsActive = false
	assert.False(t, inactive.CanUserUse(now, 0, true))

	unlimited := d
	unlimited.UsageLimitPerCustomer = 0
	assert.True(t, unlimited.CanUserUse(now, 100, false))
}

func TestDiscountScopeAccessors(t *testing.T) {
	d := Discount{Scope: []ScopeEntry{
		{Kind: ScopeApplicableProduct, TargetID: 1},
		{Kind: ScopeApplicableProduct, TargetID: 2},
		{Kind: ScopeApplicableCategory, TargetID: 10},
		{Kind: ScopeExcludedProduct, TargetID: 3},
		{Kind: ScopeExcludedCategory, TargetID: 20},
	}}

	assert.Equal(t, []uint{1, 2}, d.ApplicableProducts())
	assert.Equal(t, []uint{10}, d.ApplicableCategories())
	assert.Equal(t, []uint{3}, d.ExcludedProducts())
	assert.Equal(t, []uint{20}, d.ExcludedCategories())
}
