// internal/domain/discount/entity.go
package discount

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// RuleType identifies how a rule computes its deduction.
type RuleType string

const (
	RulePercentage   RuleType = "percentage"
	RuleFixedAmount  RuleType = "fixed_amount"
	RuleBuyXGetY     RuleType = "buy_x_get_y"
	RuleBulkDiscount RuleType = "bulk_discount"
	RuleFreeShipping RuleType = "free_shipping"
	RuleBundle       RuleType = "bundle_discount"
)

// ScopeKind tags a scope entry as an inclusion or exclusion target.
type ScopeKind string

const (
	ScopeApplicableProduct  ScopeKind = "applicable_product"
	ScopeApplicableCategory ScopeKind = "applicable_category"
	ScopeExcludedProduct    ScopeKind = "excluded_product"
	ScopeExcludedCategory   ScopeKind = "excluded_category"
)

// Rule is a single pricing rule attached to a discount. Value carries a
// percent for percentage rules and paise for fixed_amount rules.
type Rule struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	DiscountID uint     `gorm:"not null;index" json:"-"`
	Type       RuleType `gorm:"not null;size:32" json:"type"`
	Value      float64  `json:"value"`

	// Buy X get Y
	BuyQuantity        int     `json:"buy_quantity,omitempty"`
	GetQuantity        int     `json:"get_quantity,omitempty"`
	GetDiscountPercent float64 `gorm:"default:100" json:"get_discount_percent,omitempty"`

	// Bundle
	BundleType  RuleType `gorm:"size:32" json:"bundle_type,omitempty"`
	BundleValue float64  `json:"bundle_value,omitempty"`

	BulkTiers   []BulkTier   `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE" json:"bulk_tiers,omitempty"`
	BundleItems []BundleItem `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE" json:"bundle_items,omitempty"`
}

// BulkTier grants a percentage off items once their line quantity
// reaches MinQuantity. Every satisfied tier contributes.
type BulkTier struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	RuleID          uint    `gorm:"not null;index" json:"-"`
	MinQuantity     int     `gorm:"not null" json:"min_quantity"`
	DiscountPercent float64 `gorm:"not null" json:"discount_percent"`
}

// BundleItem names a product that must be present for a bundle rule to fire.
type BundleItem struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	RuleID      uint `gorm:"not null;index" json:"-"`
	ProductID   uint `gorm:"not null" json:"product_id"`
	MinQuantity int  `gorm:"default:1" json:"min_quantity"`
}

// ScopeEntry binds a discount to a product or category it includes or
// excludes.
type ScopeEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DiscountID uint      `gorm:"not null;index" json:"-"`
	Kind       ScopeKind `gorm:"not null;size:32" json:"kind"`
	TargetID   uint      `gorm:"not null" json:"target_id"`
}

// TimeRestrictions narrows when a discount is live within its date
// window. DaysOfWeek is a comma-separated list of weekday numbers,
// 0 = Sunday. StartTime/EndTime are "HH:MM" in server local time.
type TimeRestrictions struct {
	DaysOfWeek string `gorm:"size:32" json:"days_of_week,omitempty"`
	StartTime  string `gorm:"size:5" json:"start_time,omitempty"`
	EndTime    string `gorm:"size:5" json:"end_time,omitempty"`
}

// Discount is a promotion applied automatically or via code.
type Discount struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;size:100" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	// Code is empty for automatic discounts. Non-empty codes are unique
	// (partial index created in migrations).
	Code string `gorm:"size:20;index" json:"code,omitempty"`

	Rules []Rule       `gorm:"foreignKey:DiscountID;constraint:OnDelete:CASCADE" json:"rules"`
	Scope []ScopeEntry `gorm:"foreignKey:DiscountID;constraint:OnDelete:CASCADE" json:"scope,omitempty"`

	// Conditions, amounts in paise. MaximumOrderAmount of zero means no cap.
	MinimumOrderAmount int64 `gorm:"default:0" json:"minimum_order_amount"`
	MaximumOrderAmount int64 `gorm:"default:0" json:"maximum_order_amount"`
	MinimumQuantity    int   `gorm:"default:0" json:"minimum_quantity"`

	FirstTimeCustomersOnly bool `gorm:"default:false" json:"first_time_customers_only"`

	// Usage limits. UsageLimit of zero means unlimited.
	UsageLimit            int `gorm:"default:0" json:"usage_limit"`
	UsageCount            int `gorm:"default:0" json:"usage_count"`
	UsageLimitPerCustomer int `gorm:"default:1" json:"usage_limit_per_customer"`

	StartDate        time.Time        `gorm:"not null" json:"start_date"`
	EndDate          time.Time        `gorm:"not null" json:"end_date"`
	TimeRestrictions TimeRestrictions `gorm:"embedded;embeddedPrefix:time_" json:"time_restrictions"`

	CanCombine            bool `gorm:"default:false" json:"can_combine"`
	CanCombineWithCoupons bool `gorm:"default:true" json:"can_combine_with_coupons"`
	Priority              int  `gorm:"default:0;index" json:"priority"`

	IsActive         bool `gorm:"default:true;index" json:"is_active"`
	IsAutomatic      bool `gorm:"default:true" json:"is_automatic"`
	ShowOnStorefront bool `gorm:"default:false" json:"show_on_storefront"`

	// TotalSavings accumulates paise deducted through this discount.
	TotalSavings int64 `gorm:"default:0" json:"total_savings"`
	CreatedBy    uint  `gorm:"not null" json:"created_by"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Usage tracks per-user redemptions of a discount.
type Usage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DiscountID uint      `gorm:"not null;uniqueIndex:idx_discount_user" json:"discount_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_discount_user" json:"user_id"`
	UsedCount  int       `gorm:"default:0" json:"used_count"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// TableName overrides
func (Discount) TableName() string   { return "discounts" }
func (Rule) TableName() string       { return "discount_rules" }
func (BulkTier) TableName() string   { return "discount_bulk_tiers" }
func (BundleItem) TableName() string { return "discount_bundle_items" }
func (ScopeEntry) TableName() string { return "discount_scope_entries" }
func (Usage) TableName() string      { return "discount_usages" }

var timeOfDayPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Validate checks that the rule carries every field its type requires.
// Rules are rejected here, at construction, rather than silently
// evaluating to zero later.
func (r *Rule) Validate() error {
	switch r.Type {
	case RulePercentage:
		if r.Value <= 0 || r.Value > 100 {
			return apperrors.Validation("percentage rule value must be between 0 and 100")
		}
	case RuleFixedAmount:
		if r.Value <= 0 {
			return apperrors.Validation("fixed amount rule value must be positive")
		}
	case RuleBuyXGetY:
		if r.BuyQuantity < 1 || r.GetQuantity < 1 {
			return apperrors.Validation("buy_x_get_y rule requires buy and get quantities of at least 1")
		}
		if r.GetDiscountPercent < 0 || r.GetDiscountPercent > 100 {
			return apperrors.Validation("get discount percent must be between 0 and 100")
		}
	case RuleBulkDiscount:
		if len(r.BulkTiers) == 0 {
			return apperrors.Validation("bulk_discount rule requires at least one tier")
		}
		for _, tier := range r.BulkTiers {
			if tier.MinQuantity < 1 {
				return apperrors.Validation("bulk tier minimum quantity must be at least 1")
			}
			if tier.DiscountPercent < 0 || tier.DiscountPercent > 100 {
				return apperrors.Validation("bulk tier discount percent must be between 0 and 100")
			}
		}
	case RuleFreeShipping:
		// No parameters.
	case RuleBundle:
		if len(r.BundleItems) == 0 {
			return apperrors.Validation("bundle_discount rule requires at least one bundle item")
		}
		if r.BundleType != RulePercentage && r.BundleType != RuleFixedAmount {
			return apperrors.Validation("bundle discount type must be percentage or fixed_amount")
		}
		if r.BundleValue <= 0 {
			return apperrors.Validation("bundle discount value must be positive")
		}
		for _, item := range r.BundleItems {
			if item.MinQuantity < 1 {
				return apperrors.Validation("bundle item minimum quantity must be at least 1")
			}
		}
	default:
		return apperrors.Validation("unknown rule type %q", r.Type)
	}
	return nil
}

// Validate checks structural consistency of the discount and all its rules.
func (d *Discount) Validate() error {
	if d.Name == "" {
		return apperrors.Validation("discount name is required")
	}
	if len(d.Rules) == 0 {
		return apperrors.Validation("discount requires at least one rule")
	}
	if !d.EndDate.After(d.StartDate) {
		return apperrors.Validation("end date must be after start date")
	}
	if d.TimeRestrictions.StartTime != "" || d.TimeRestrictions.EndTime != "" {
		if !timeOfDayPattern.MatchString(d.TimeRestrictions.StartTime) ||
			!timeOfDayPattern.MatchString(d.TimeRestrictions.EndTime) {
			return apperrors.Validation("time restriction format must be HH:MM")
		}
	}
	for i := range d.Rules {
		if err := d.Rules[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// daysOfWeek parses the stored day list; an empty list means all days.
func (t *TimeRestrictions) daysOfWeek() []int {
	if t.DaysOfWeek == "" {
		return nil
	}
	parts := strings.Split(t.DaysOfWeek, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		if day, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			days = append(days, day)
		}
	}
	return days
}

// Allows reports whether now falls on a permitted weekday and within the
// daily time window. HH:MM strings compare correctly as text.
func (t *TimeRestrictions) Allows(now time.Time) bool {
	if days := t.daysOfWeek(); len(days) > 0 {
		today := int(now.Weekday())
		allowed := false
		for _, day := range days {
			if day == today {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	if t.StartTime != "" && t.EndTime != "" {
		current := now.Format("15:04")
		if current < t.StartTime || current > t.EndTime {
			return false
		}
	}
	return true
}

// IsValidNow reports whether the discount can fire at the given instant:
// active, inside its date window, under its global usage limit, and
// within its time restrictions.
func (d *Discount) IsValidNow(now time.Time) bool {
	if !d.IsActive || d.StartDate.After(now) || d.EndDate.Before(now) {
		return false
	}
	if d.UsageLimit > 0 && d.UsageCount >= d.UsageLimit {
		return false
	}
	return d.TimeRestrictions.Allows(now)
}

// CanUserUse reports whether the given user may still redeem this
// discount. userUsedCount is the user's prior redemption count;
// isFirstTimeCustomer is whether the user has no completed orders.
func (d *Discount) CanUserUse(now time.Time, userUsedCount int, isFirstTimeCustomer bool) bool {
	if !d.IsValidNow(now) {
		return false
	}
	if d.FirstTimeCustomersOnly && !isFirstTimeCustomer {
		return false
	}
	if d.UsageLimitPerCustomer > 0 && userUsedCount >= d.UsageLimitPerCustomer {
		return false
	}
	return true
}

// scopeIDs collects the target IDs of one scope kind.
func (d *Discount) scopeIDs(kind ScopeKind) []uint {
	var ids []uint
	for _, entry := range d.Scope {
		if entry.Kind == kind {
			ids = append(ids, entry.TargetID)
		}
	}
	return ids
}

// ApplicableProducts returns the product IDs this discount is limited to.
func (d *Discount) ApplicableProducts() []uint { return d.scopeIDs(ScopeApplicableProduct) }

// ApplicableCategories returns the category IDs this discount is limited to.
func (d *Discount) ApplicableCategories() []uint { return d.scopeIDs(ScopeApplicableCategory) }

// ExcludedProducts returns the product IDs this discount never touches.
func (d *Discount) ExcludedProducts() []uint { return d.scopeIDs(ScopeExcludedProduct) }

// ExcludedCategories returns the category IDs this discount never touches.
func (d *Discount) ExcludedCategories() []uint { return d.scopeIDs(ScopeExcludedCategory) }
