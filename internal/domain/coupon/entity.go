// internal/domain/coupon/entity.go
package coupon

import (
	"math"
	"time"

	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// Type identifies how a coupon computes its deduction.
type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
)

// ScopeKind tags a scope entry as an inclusion or exclusion target.
type ScopeKind string

const (
	ScopeApplicableProduct  ScopeKind = "applicable_product"
	ScopeApplicableCategory ScopeKind = "applicable_category"
	ScopeExcludedProduct    ScopeKind = "excluded_product"
	ScopeExcludedCategory   ScopeKind = "excluded_category"
)

// ScopeEntry binds a coupon to a product or category it includes or
// excludes.
type ScopeEntry struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	CouponID uint      `gorm:"not null;index" json:"-"`
	Kind     ScopeKind `gorm:"not null;size:32" json:"kind"`
	TargetID uint      `gorm:"not null" json:"target_id"`
}

// Coupon is a code-gated deduction against the cart total. Value is a
// percent for percentage coupons and paise for fixed coupons.
type Coupon struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Code        string  `gorm:"uniqueIndex;not null;size:20" json:"code"`
	Description string  `gorm:"size:200" json:"description"`
	Type        Type    `gorm:"not null;size:16" json:"type"`
	Value       float64 `gorm:"not null" json:"value"`

	// MinimumAmount gates redemption; MaximumAmount caps what a
	// percentage coupon can deduct. Zero means no bound.
	MinimumAmount int64 `gorm:"default:0" json:"minimum_amount"`
	MaximumAmount int64 `gorm:"default:0" json:"maximum_amount"`

	// UsageLimit of zero means unlimited. UserLimit bounds redemptions
	// per customer.
	UsageLimit int `gorm:"default:0" json:"usage_limit"`
	UsageCount int `gorm:"default:0" json:"usage_count"`
	UserLimit  int `gorm:"default:1" json:"user_limit"`

	Scope []ScopeEntry `gorm:"foreignKey:CouponID;constraint:OnDelete:CASCADE" json:"scope,omitempty"`

	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`

	// DiscountID links the coupon to a promotion it rides on, if any.
	DiscountID *uint `json:"discount_id,omitempty"`
	CreatedBy  uint  `gorm:"not null" json:"created_by"`

	// TotalSavings accumulates paise deducted through this coupon.
	TotalSavings int64 `gorm:"default:0" json:"total_savings"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Usage tracks per-user redemptions of a coupon.
type Usage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CouponID   uint      `gorm:"not null;uniqueIndex:idx_coupon_user" json:"coupon_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_coupon_user" json:"user_id"`
	UsedCount  int       `gorm:"default:0" json:"used_count"`
	SavedTotal int64     `gorm:"default:0" json:"saved_total"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// TableName overrides
func (Coupon) TableName() string     { return "coupons" }
func (ScopeEntry) TableName() string { return "coupon_scope_entries" }
func (Usage) TableName() string      { return "coupon_usages" }

// Validate checks structural consistency of the coupon.
func (c *Coupon) Validate() error {
	if len(c.Code) < 3 {
		return apperrors.Validation("coupon code must be at least 3 characters")
	}
	if c.Type != TypePercentage && c.Type != TypeFixed {
		return apperrors.Validation("coupon type must be percentage or fixed")
	}
	if c.Value <= 0 {
		return apperrors.Validation("coupon value must be positive")
	}
	if c.Type == TypePercentage && c.Value > 100 {
		return apperrors.Validation("percentage coupon value cannot exceed 100")
	}
	if c.MinimumAmount < 0 || c.MaximumAmount < 0 {
		return apperrors.Validation("coupon amount bounds cannot be negative")
	}
	if !c.EndDate.After(c.StartDate) {
		return apperrors.Validation("end date must be after start date")
	}
	return nil
}

// IsValidNow reports whether the coupon is redeemable at the given
// instant: active, inside its date window, and under its global usage
// limit.
func (c *Coupon) IsValidNow(now time.Time) bool {
	return c.IsActive &&
		!c.StartDate.After(now) &&
		!c.EndDate.Before(now) &&
		(c.UsageLimit == 0 || c.UsageCount < c.UsageLimit)
}

// CanUserUse reports whether a user with the given prior redemption
// count may redeem again.
func (c *Coupon) CanUserUse(userUsedCount int) bool {
	return c.UserLimit == 0 || userUsedCount < c.UserLimit
}

// CalculateDiscount returns the paise this coupon deducts from the given
// amount. Below the minimum it deducts nothing; a percentage deduction is
// capped at MaximumAmount when set; no coupon deducts more than the
// amount itself.
func (c *Coupon) CalculateDiscount(amount int64) int64 {
	if amount < c.MinimumAmount {
		return 0
	}
	var deduction int64
	switch c.Type {
	case TypePercentage:
		deduction = int64(math.Round(float64(amount) * c.Value / 100))
		if c.MaximumAmount > 0 && deduction > c.MaximumAmount {
			deduction = c.MaximumAmount
		}
	case TypeFixed:
		deduction = int64(c.Value)
	}
	if deduction > amount {
		deduction = amount
	}
	return deduction
}

// scopeIDs collects the target IDs of one scope kind.
func (c *Coupon) scopeIDs(kind ScopeKind) []uint {
	var ids []uint
	for _, entry := range c.Scope {
		if entry.Kind == kind {
			ids = append(ids, entry.TargetID)
		}
	}
	return ids
}

// ApplicableProducts returns the product IDs this coupon is limited to.
func (c *Coupon) ApplicableProducts() []uint { return c.scopeIDs(ScopeApplicableProduct) }

// ApplicableCategories returns the category IDs this coupon is limited to.
func (c *Coupon) ApplicableCategories() []uint { return c.scopeIDs(ScopeApplicableCategory) }

// ExcludedProducts returns the product IDs this coupon never touches.
func (c *Coupon) ExcludedProducts() []uint { return c.scopeIDs(ScopeExcludedProduct) }

// ExcludedCategories returns the category IDs this coupon never touches.
func (c *Coupon) ExcludedCategories() []uint { return c.scopeIDs(ScopeExcludedCategory) }
