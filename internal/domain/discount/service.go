// internal/domain/discount/service.go
package discount

import (
	"context"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// Service handles discount administration and lookup
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new discount service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// RuleInput carries one rule of a create or update request.
type RuleInput struct {
	Type               RuleType     `json:"type" binding:"required"`
	Value              float64      `json:"value"`
	BuyQuantity        int          `json:"buy_quantity"`
	GetQuantity        int          `json:"get_quantity"`
	GetDiscountPercent float64      `json:"get_discount_percent"`
	BundleType         RuleType     `json:"bundle_type"`
	BundleValue        float64      `json:"bundle_value"`
	BulkTiers          []BulkTier   `json:"bulk_tiers"`
	BundleItems        []BundleItem `json:"bundle_items"`
}

// CreateRequest represents discount creation data
type CreateRequest struct {
	Name                   string           `json:"name" binding:"required"`
	Description            string           `json:"description"`
	Code                   string           `json:"code"`
	Rules                  []RuleInput      `json:"rules" binding:"required"`
	ApplicableProducts     []uint           `json:"applicable_products"`
	ApplicableCategories   []uint           `json:"applicable_categories"`
	ExcludedProducts       []uint           `json:"excluded_products"`
	ExcludedCategories     []uint           `json:"excluded_categories"`
	MinimumOrderAmount     int64            `json:"minimum_order_amount"`
	MaximumOrderAmount     int64            `json:"maximum_order_amount"`
	MinimumQuantity        int              `json:"minimum_quantity"`
	FirstTimeCustomersOnly bool             `json:"first_time_customers_only"`
	UsageLimit             int              `json:"usage_limit"`
	UsageLimitPerCustomer  int              `json:"usage_limit_per_customer"`
	StartDate              time.Time        `json:"start_date" binding:"required"`
	EndDate                time.Time        `json:"end_date" binding:"required"`
	TimeRestrictions       TimeRestrictions `json:"time_restrictions"`
	CanCombine             bool             `json:"can_combine"`
	CanCombineWithCoupons  *bool            `json:"can_combine_with_coupons"`
	Priority               int              `json:"priority"`
	IsActive               *bool            `json:"is_active"`
	IsAutomatic            *bool            `json:"is_automatic"`
	ShowOnStorefront       bool             `json:"show_on_storefront"`
}

// UpdateRequest represents discount update data; nil fields are left
// untouched. Rules and scope slices replace the existing sets wholesale
// when present.
type UpdateRequest struct {
	Name                   *string           `json:"name"`
	Description            *string           `json:"description"`
	Code                   *string           `json:"code"`
	Rules                  []RuleInput       `json:"rules"`
	ApplicableProducts     []uint            `json:"applicable_products"`
	ApplicableCategories   []uint            `json:"applicable_categories"`
	ExcludedProducts       []uint            `json:"excluded_products"`
	ExcludedCategories     []uint            `json:"excluded_categories"`
	ReplaceScope           bool              `json:"replace_scope"`
	MinimumOrderAmount     *int64            `json:"minimum_order_amount"`
	MaximumOrderAmount     *int64            `json:"maximum_order_amount"`
	MinimumQuantity        *int              `json:"minimum_quantity"`
	FirstTimeCustomersOnly *bool             `json:"first_time_customers_only"`
	UsageLimit             *int              `json:"usage_limit"`
	UsageLimitPerCustomer  *int              `json:"usage_limit_per_customer"`
	StartDate              *time.Time        `json:"start_date"`
	EndDate                *time.Time        `json:"end_date"`
	TimeRestrictions       *TimeRestrictions `json:"time_restrictions"`
	CanCombine             *bool             `json:"can_combine"`
	CanCombineWithCoupons  *bool             `json:"can_combine_with_coupons"`
	Priority               *int              `json:"priority"`
	IsActive               *bool             `json:"is_active"`
	IsAutomatic            *bool             `json:"is_automatic"`
	ShowOnStorefront       *bool             `json:"show_on_storefront"`
}

// ListOptions represents admin listing filters
type ListOptions struct {
	ActiveOnly bool
	Code       string
	Page       int
	PerPage    int
}

func (s *Service) normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) > s.config.Pricing.MaxCodeLength {
		return "", apperrors.Validation("code cannot exceed %d characters", s.config.Pricing.MaxCodeLength)
	}
	return code, nil
}

func buildRules(inputs []RuleInput) []Rule {
	rules := make([]Rule, 0, len(inputs))
	for _, in := range inputs {
		rule := Rule{
			Type:               in.Type,
			Value:              in.Value,
			BuyQuantity:        in.BuyQuantity,
			GetQuantity:        in.GetQuantity,
			GetDiscountPercent: in.GetDiscountPercent,
			BundleType:         in.BundleType,
			BundleValue:        in.BundleValue,
			BulkTiers:          in.BulkTiers,
			BundleItems:        in.BundleItems,
		}
		if rule.Type == RuleBuyXGetY && rule.GetDiscountPercent == 0 {
			rule.GetDiscountPercent = 100
		}
		rules = append(rules, rule)
	}
	return rules
}

func buildScope(req *CreateRequest) []ScopeEntry {
	var scope []ScopeEntry
	appendEntries := func(kind ScopeKind, ids []uint) {
		for _, id := range ids {
			scope = append(scope, ScopeEntry{Kind: kind, TargetID: id})
		}
	}
	appendEntries(ScopeApplicableProduct, req.ApplicableProducts)
	appendEntries(ScopeApplicableCategory, req.ApplicableCategories)
	appendEntries(ScopeExcludedProduct, req.ExcludedProducts)
	appendEntries(ScopeExcludedCategory, req.ExcludedCategories)
	return scope
}

// Create validates and persists a new discount.
func (s *Service) Create(ctx context.Context, req *CreateRequest, createdBy uint) (*Discount, error) {
	code, err := s.normalizeCode(req.Code)
	if err != nil {
		return nil, err
	}

	d := Discount{
		Name:                   req.Name,
		Description:            req.Description,
		Code:                   code,
		Rules:                  buildRules(req.Rules),
		Scope:                  buildScope(req),
		MinimumOrderAmount:     req.MinimumOrderAmount,
		MaximumOrderAmount:     req.MaximumOrderAmount,
		MinimumQuantity:        req.MinimumQuantity,
		FirstTimeCustomersOnly: req.FirstTimeCustomersOnly,
		UsageLimit:             req.UsageLimit,
		UsageLimitPerCustomer:  req.UsageLimitPerCustomer,
		StartDate:              req.StartDate,
		EndDate:                req.EndDate,
		TimeRestrictions:       req.TimeRestrictions,
		CanCombine:             req.CanCombine,
		CanCombineWithCoupons:  true,
		Priority:               req.Priority,
		IsActive:               true,
		IsAutomatic:            true,
		ShowOnStorefront:       req.ShowOnStorefront,
		CreatedBy:              createdBy,
	}
	if d.UsageLimitPerCustomer == 0 {
		d.UsageLimitPerCustomer = 1
	}
	if req.CanCombineWithCoupons != nil {
		d.CanCombineWithCoupons = *req.CanCombineWithCoupons
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	if req.IsAutomatic != nil {
		d.IsAutomatic = *req.IsAutomatic
	}
	// A coded discount is never applied automatically.
	if d.Code != "" {
		d.IsAutomatic = false
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		return nil, apperrors.Dependency("failed to create discount", err)
	}
	return s.Get(ctx, d.ID)
}

// Get retrieves a discount with its rules and scope.
func (s *Service) Get(ctx context.Context, id uint) (*Discount, error) {
	var d Discount
	result := s.db.WithContext(ctx).
		Preload("Rules").
		Preload("Rules.BulkTiers").
		Preload("Rules.BundleItems").
		Preload("Scope").
		Where("id = ?", id).
		First(&d)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("discount %d not found", id)
		}
		return nil, apperrors.Dependency("failed to retrieve discount", result.Error)
	}
	return &d, nil
}

// List retrieves discounts for administration.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Discount, int64, error) {
	var discounts []Discount
	var total int64

	query := s.db.WithContext(ctx).Model(&Discount{})
	if opts.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if opts.Code != "" {
		query = query.Where("code = ?", strings.ToUpper(opts.Code))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Dependency("failed to count discounts", err)
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	err := query.
		Preload("Rules").
		Preload("Rules.BulkTiers").
		Preload("Rules.BundleItems").
		Preload("Scope").
		Order("priority DESC, created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&discounts).Error
	if err != nil {
		return nil, 0, apperrors.Dependency("failed to retrieve discounts", err)
	}
	return discounts, total, nil
}

// ListStorefront retrieves live promotions flagged for storefront display,
// highest priority first.
func (s *Service) ListStorefront(ctx context.Context, now time.Time) ([]Discount, error) {
	var discounts []Discount
	err := s.db.WithContext(ctx).
		Preload("Rules").
		Preload("Scope").
		Where("is_active = ? AND show_on_storefront = ?", true, true).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Order("priority DESC").
		Find(&discounts).Error
	if err != nil {
		return nil, apperrors.Dependency("failed to retrieve storefront discounts", err)
	}
	return discounts, nil
}

// ActiveForPricing retrieves discounts eligible for evaluation against a
// cart at the given instant: active, inside their date window, and either
// automatic or matching the supplied code.
func (s *Service) ActiveForPricing(ctx context.Context, now time.Time, code string) ([]Discount, error) {
	query := s.db.WithContext(ctx).
		Preload("Rules").
		Preload("Rules.BulkTiers").
		Preload("Rules.BundleItems").
		Preload("Scope").
		Where("is_active = ?", true).
		Where("start_date <= ? AND end_date >= ?", now, now)

	if code != "" {
		normalized := strings.ToUpper(strings.TrimSpace(code))
		query = query.Where("is_automatic = ? OR code = ?", true, normalized)
	} else {
		query = query.Where("is_automatic = ?", true)
	}

	var discounts []Discount
	if err := query.Order("priority DESC").Find(&discounts).Error; err != nil {
		return nil, apperrors.Dependency("failed to retrieve active discounts", err)
	}
	return discounts, nil
}

// FindByCode retrieves an active discount by its redemption code.
func (s *Service) FindByCode(ctx context.Context, code string) (*Discount, error) {
	normalized, err := s.normalizeCode(code)
	if err != nil {
		return nil, err
	}
	if normalized == "" {
		return nil, apperrors.Validation("discount code is required")
	}

	var d Discount
	result := s.db.WithContext(ctx).
		Preload("Rules").
		Preload("Rules.BulkTiers").
		Preload("Rules.BundleItems").
		Preload("Scope").
		Where("code = ? AND is_active = ?", normalized, true).
		First(&d)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("invalid discount code")
		}
		return nil, apperrors.Dependency("failed to retrieve discount", result.Error)
	}
	return &d, nil
}

// Update applies a partial update to an existing discount.
func (s *Service) Update(ctx context.Context, id uint, req *UpdateRequest) (*Discount, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Code != nil {
		code, err := s.normalizeCode(*req.Code)
		if err != nil {
			return nil, err
		}
		d.Code = code
		if code != "" {
			d.IsAutomatic = false
		}
	}
	if req.MinimumOrderAmount != nil {
		d.MinimumOrderAmount = *req.MinimumOrderAmount
	}
	if req.MaximumOrderAmount != nil {
		d.MaximumOrderAmount = *req.MaximumOrderAmount
	}
	if req.MinimumQuantity != nil {
		d.MinimumQuantity = *req.MinimumQuantity
	}
	if req.FirstTimeCustomersOnly != nil {
		d.FirstTimeCustomersOnly = *req.FirstTimeCustomersOnly
	}
	if req.UsageLimit != nil {
		d.UsageLimit = *req.UsageLimit
	}
	if req.UsageLimitPerCustomer != nil {
		d.UsageLimitPerCustomer = *req.UsageLimitPerCustomer
	}
	if req.StartDate != nil {
		d.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		d.EndDate = *req.EndDate
	}
	if req.TimeRestrictions != nil {
		d.TimeRestrictions = *req.TimeRestrictions
	}
	if req.CanCombine != nil {
		d.CanCombine = *req.CanCombine
	}
	if req.CanCombineWithCoupons != nil {
		d.CanCombineWithCoupons = *req.CanCombineWithCoupons
	}
	if req.Priority != nil {
		d.Priority = *req.Priority
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	if req.IsAutomatic != nil {
		d.IsAutomatic = *req.IsAutomatic
	}
	if req.ShowOnStorefront != nil {
		d.ShowOnStorefront = *req.ShowOnStorefront
	}

	replaceRules := req.Rules != nil
	if replaceRules {
		d.Rules = buildRules(req.Rules)
	}
	replaceScope := req.ReplaceScope
	if replaceScope {
		d.Scope = buildScope(&CreateRequest{
			ApplicableProducts:   req.ApplicableProducts,
			ApplicableCategories: req.ApplicableCategories,
			ExcludedProducts:     req.ExcludedProducts,
			ExcludedCategories:   req.ExcludedCategories,
		})
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replaceRules {
			if err := tx.Where("discount_id = ?", d.ID).Delete(&Rule{}).Error; err != nil {
				return err
			}
		}
		if replaceScope {
			if err := tx.Where("discount_id = ?", d.ID).Delete(&ScopeEntry{}).Error; err != nil {
				return err
			}
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(d).Error
	})
	if err != nil {
		return nil, apperrors.Dependency("failed to update discount", err)
	}
	return s.Get(ctx, d.ID)
}

// Delete soft deletes a discount.
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Discount{})
	if result.Error != nil {
		return apperrors.Dependency("failed to delete discount", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("discount %d not found", id)
	}
	return nil
}

// UserUsage returns how many times the user has redeemed the discount.
func (s *Service) UserUsage(ctx context.Context, discountID, userID uint) (int, error) {
	var usage Usage
	result := s.db.WithContext(ctx).
		Where("discount_id = ? AND user_id = ?", discountID, userID).
		First(&usage)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, apperrors.Dependency("failed to retrieve discount usage", result.Error)
	}
	return usage.UsedCount, nil
}

// RecordUsage bumps the global and per-user usage counters for a
// redeemed discount. Both increments are guarded conditional updates so
// concurrent redemptions of the last slot cannot both succeed.
func (s *Service) RecordUsage(ctx context.Context, discountID, userID uint, savings int64) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d Discount
		if err := tx.Select("id", "usage_limit", "usage_limit_per_customer").
			Where("id = ?", discountID).First(&d).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("discount %d not found", discountID)
			}
			return err
		}

		result := tx.Model(&Discount{}).
			Where("id = ?", discountID).
			Where("usage_limit = 0 OR usage_count < usage_limit").
			Updates(map[string]interface{}{
				"usage_count":   gorm.Expr("usage_count + 1"),
				"total_savings": gorm.Expr("total_savings + ?", savings),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.LimitExceeded("discount usage limit reached")
		}

		var usage Usage
		err := tx.Where("discount_id = ? AND user_id = ?", discountID, userID).First(&usage).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(&Usage{
				DiscountID: discountID,
				UserID:     userID,
				UsedCount:  1,
				LastUsedAt: now,
			}).Error
		}
		if err != nil {
			return err
		}

		result = tx.Model(&Usage{}).
			Where("discount_id = ? AND user_id = ?", discountID, userID).
			Where("used_count < ?", d.UsageLimitPerCustomer).
			Updates(map[string]interface{}{
				"used_count":   gorm.Expr("used_count + 1"),
				"last_used_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.LimitExceeded("per-customer usage limit reached for this discount")
		}
		return nil
	})
	if err != nil {
		if apperrors.KindOf(err) != 0 {
			return err
		}
		return apperrors.Dependency("failed to record discount usage", err)
	}
	return nil
}
