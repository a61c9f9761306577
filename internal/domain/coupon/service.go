// internal/domain/coupon/service.go
package coupon

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// ScopeMatcher checks coupon scope against cart items with the same
// rules the discount matcher uses.
type ScopeMatcher interface {
	ScopeApplies(ctx context.Context, scope pricing.Scope, items []pricing.Item) (bool, error)
}

// Service handles coupon administration, validation, and redemption
type Service struct {
	db      *gorm.DB
	config  *config.Config
	store   Store
	matcher ScopeMatcher
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, cfg *config.Config, matcher ScopeMatcher) *Service {
	return &Service{
		db:      db,
		config:  cfg,
		store:   NewStore(db),
		matcher: matcher,
	}
}

// CreateRequest represents coupon creation data
type CreateRequest struct {
	Code                 string    `json:"code" binding:"required"`
	Description          string    `json:"description"`
	Type                 Type      `json:"type" binding:"required"`
	Value                float64   `json:"value" binding:"required"`
	MinimumAmount        int64     `json:"minimum_amount"`
	MaximumAmount        int64     `json:"maximum_amount"`
	UsageLimit           int       `json:"usage_limit"`
	UserLimit            int       `json:"user_limit"`
	ApplicableProducts   []uint    `json:"applicable_products"`
	ApplicableCategories []uint    `json:"applicable_categories"`
	ExcludedProducts     []uint    `json:"excluded_products"`
	ExcludedCategories   []uint    `json:"excluded_categories"`
	StartDate            time.Time `json:"start_date" binding:"required"`
	EndDate              time.Time `json:"end_date" binding:"required"`
	IsActive             *bool     `json:"is_active"`
	DiscountID           *uint     `json:"discount_id"`
}

// UpdateRequest represents coupon update data; nil fields are left
// untouched.
type UpdateRequest struct {
	Description          *string    `json:"description"`
	Type                 *Type      `json:"type"`
	Value                *float64   `json:"value"`
	MinimumAmount        *int64     `json:"minimum_amount"`
	MaximumAmount        *int64     `json:"maximum_amount"`
	UsageLimit           *int       `json:"usage_limit"`
	UserLimit            *int       `json:"user_limit"`
	ApplicableProducts   []uint     `json:"applicable_products"`
	ApplicableCategories []uint     `json:"applicable_categories"`
	ExcludedProducts     []uint     `json:"excluded_products"`
	ExcludedCategories   []uint     `json:"excluded_categories"`
	ReplaceScope         bool       `json:"replace_scope"`
	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	IsActive             *bool      `json:"is_active"`
	DiscountID           *uint      `json:"discount_id"`
}

// Quote is the outcome of validating a coupon against a cart.
type Quote struct {
	Code           string `json:"code"`
	Description    string `json:"description"`
	DiscountAmount int64  `json:"discount_amount"`
	FinalTotal     int64  `json:"final_total"`
}

// TopUser is one entry of the per-coupon redemption leaderboard.
type TopUser struct {
	UserID     uint      `json:"user_id"`
	UsedCount  int       `json:"used_count"`
	SavedTotal int64     `json:"saved_total"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// Analytics summarizes a coupon's redemption history.
type Analytics struct {
	CouponID             uint      `json:"coupon_id"`
	Code                 string    `json:"code"`
	TotalUsage           int       `json:"total_usage"`
	UniqueUsers          int       `json:"unique_users"`
	TotalSavings         int64     `json:"total_savings"`
	AverageSavingsPerUse int64     `json:"average_savings_per_use"`
	UsageRate            float64   `json:"usage_rate"`
	RemainingUses        int       `json:"remaining_uses"`
	Unlimited            bool      `json:"unlimited"`
	TopUsers             []TopUser `json:"top_users"`
	IsActive             bool      `json:"is_active"`
	IsExpired            bool      `json:"is_expired"`
	CreatedAt            time.Time `json:"created_at"`
}

func (s *Service) normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", apperrors.Validation("coupon code is required")
	}
	if len(code) > s.config.Pricing.MaxCodeLength {
		return "", apperrors.Validation("coupon code cannot exceed %d characters", s.config.Pricing.MaxCodeLength)
	}
	return code, nil
}

func buildScope(applicableProducts, applicableCategories, excludedProducts, excludedCategories []uint) []ScopeEntry {
	var scope []ScopeEntry
	appendEntries := func(kind ScopeKind, ids []uint) {
		for _, id := range ids {
			scope = append(scope, ScopeEntry{Kind: kind, TargetID: id})
		}
	}
	appendEntries(ScopeApplicableProduct, applicableProducts)
	appendEntries(ScopeApplicableCategory, applicableCategories)
	appendEntries(ScopeExcludedProduct, excludedProducts)
	appendEntries(ScopeExcludedCategory, excludedCategories)
	return scope
}

// Create validates and persists a new coupon.
func (s *Service) Create(ctx context.Context, req *CreateRequest, createdBy uint) (*Coupon, error) {
	code, err := s.normalizeCode(req.Code)
	if err != nil {
		return nil, err
	}

	c := Coupon{
		Code:          code,
		Description:   req.Description,
		Type:          req.Type,
		Value:         req.Value,
		MinimumAmount: req.MinimumAmount,
		MaximumAmount: req.MaximumAmount,
		UsageLimit:    req.UsageLimit,
		UserLimit:     req.UserLimit,
		Scope:         buildScope(req.ApplicableProducts, req.ApplicableCategories, req.ExcludedProducts, req.ExcludedCategories),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		IsActive:      true,
		DiscountID:    req.DiscountID,
		CreatedBy:     createdBy,
	}
	if c.UserLimit == 0 {
		c.UserLimit = 1
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, apperrors.Dependency("failed to create coupon", err)
	}
	return s.Get(ctx, c.ID)
}

// Get retrieves a coupon with its scope.
func (s *Service) Get(ctx context.Context, id uint) (*Coupon, error) {
	var c Coupon
	result := s.db.WithContext(ctx).
		Preload("Scope").
		Where("id = ?", id).
		First(&c)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("coupon %d not found", id)
		}
		return nil, apperrors.Dependency("failed to retrieve coupon", result.Error)
	}
	return &c, nil
}

// List retrieves coupons for administration.
func (s *Service) List(ctx context.Context, activeOnly bool, page, perPage int) ([]Coupon, int64, error) {
	var coupons []Coupon
	var total int64

	query := s.db.WithContext(ctx).Model(&Coupon{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Dependency("failed to count coupons", err)
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	err := query.
		Preload("Scope").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&coupons).Error
	if err != nil {
		return nil, 0, apperrors.Dependency("failed to retrieve coupons", err)
	}
	return coupons, total, nil
}

// Update applies a partial update to an existing coupon.
func (s *Service) Update(ctx context.Context, id uint, req *UpdateRequest) (*Coupon, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Type != nil {
		c.Type = *req.Type
	}
	if req.Value != nil {
		c.Value = *req.Value
	}
	if req.MinimumAmount != nil {
		c.MinimumAmount = *req.MinimumAmount
	}
	if req.MaximumAmount != nil {
		c.MaximumAmount = *req.MaximumAmount
	}
	if req.UsageLimit != nil {
		c.UsageLimit = *req.UsageLimit
	}
	if req.UserLimit != nil {
		c.UserLimit = *req.UserLimit
	}
	if req.StartDate != nil {
		c.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		c.EndDate = *req.EndDate
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.DiscountID != nil {
		c.DiscountID = req.DiscountID
	}
	if req.ReplaceScope {
		c.Scope = buildScope(req.ApplicableProducts, req.ApplicableCategories, req.ExcludedProducts, req.ExcludedCategories)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.ReplaceScope {
			if err := tx.Where("coupon_id = ?", c.ID).Delete(&ScopeEntry{}).Error; err != nil {
				return err
			}
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(c).Error
	})
	if err != nil {
		return nil, apperrors.Dependency("failed to update coupon", err)
	}
	return s.Get(ctx, c.ID)
}

// Delete soft deletes a coupon.
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Coupon{})
	if result.Error != nil {
		return apperrors.Dependency("failed to delete coupon", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("coupon %d not found", id)
	}
	return nil
}

// Validate checks a coupon against a cart and quotes the deduction
// without consuming a use.
func (s *Service) Validate(ctx context.Context, code string, userID uint, items []pricing.Item, cartTotal int64) (*Quote, error) {
	quote, _, err := s.validate(ctx, code, userID, items, cartTotal)
	return quote, err
}

func (s *Service) validate(ctx context.Context, code string, userID uint, items []pricing.Item, cartTotal int64) (*Quote, *Coupon, error) {
	normalized, err := s.normalizeCode(code)
	if err != nil {
		return nil, nil, err
	}
	if cartTotal <= 0 {
		return nil, nil, apperrors.Validation("cart total must be positive")
	}

	c, err := s.store.FindByCode(ctx, normalized)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, apperrors.NotFound("invalid coupon code")
	}

	now := time.Now()
	if !c.IsValidNow(now) {
		return nil, nil, apperrors.LimitExceeded("coupon has expired or is not currently active")
	}

	if userID != 0 {
		used, err := s.store.UserUsage(ctx, c.ID, userID)
		if err != nil {
			return nil, nil, err
		}
		if !c.CanUserUse(used) {
			return nil, nil, apperrors.LimitExceeded("you have reached the usage limit for this coupon")
		}
	}

	if cartTotal < c.MinimumAmount {
		return nil, nil, apperrors.Validation("minimum order amount of %s required", pricing.FormatINR(c.MinimumAmount))
	}

	if s.matcher != nil && len(items) > 0 {
		scope := pricing.Scope{
			IncludeProducts:   c.ApplicableProducts(),
			IncludeCategories: c.ApplicableCategories(),
			ExcludeProducts:   c.ExcludedProducts(),
			ExcludeCategories: c.ExcludedCategories(),
		}
		applies, err := s.matcher.ScopeApplies(ctx, scope, items)
		if err != nil {
			return nil, nil, err
		}
		if !applies {
			return nil, nil, apperrors.Validation("this coupon does not apply to items in your cart")
		}
	}

	amount := c.CalculateDiscount(cartTotal)
	if amount <= 0 {
		return nil, nil, apperrors.Validation("coupon does not apply to your cart")
	}

	return &Quote{
		Code:           c.Code,
		Description:    c.Description,
		DiscountAmount: amount,
		FinalTotal:     cartTotal - amount,
	}, c, nil
}

// Redeem validates the coupon and consumes one use for the user. The
// counter advance is conditional, so a concurrent redemption of the last
// slot surfaces as a limit error rather than an overshoot.
func (s *Service) Redeem(ctx context.Context, code string, userID uint, items []pricing.Item, cartTotal int64) (*Quote, error) {
	if userID == 0 {
		return nil, apperrors.Validation("user is required to redeem a coupon")
	}
	quote, c, err := s.validate(ctx, code, userID, items, cartTotal)
	if err != nil {
		return nil, err
	}
	if err := s.store.RedeemOnce(ctx, c.ID, userID, c.UserLimit, quote.DiscountAmount); err != nil {
		return nil, err
	}
	return quote, nil
}

// Analytics summarizes a coupon's redemption history for administrators.
func (s *Service) Analytics(ctx context.Context, id uint) (*Analytics, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	usages, err := s.store.ListUsages(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	sort.Slice(usages, func(i, j int) bool {
		return usages[i].UsedCount > usages[j].UsedCount
	})
	top := usages
	if len(top) > 10 {
		top = top[:10]
	}
	topUsers := make([]TopUser, 0, len(top))
	for _, usage := range top {
		topUsers = append(topUsers, TopUser{
			UserID:     usage.UserID,
			UsedCount:  usage.UsedCount,
			SavedTotal: usage.SavedTotal,
			LastUsedAt: usage.LastUsedAt,
		})
	}

	a := &Analytics{
		CouponID:     c.ID,
		Code:         c.Code,
		TotalUsage:   c.UsageCount,
		UniqueUsers:  len(usages),
		TotalSavings: c.TotalSavings,
		TopUsers:     topUsers,
		IsActive:     c.IsActive,
		IsExpired:    c.EndDate.Before(time.Now()),
		CreatedAt:    c.CreatedAt,
		Unlimited:    c.UsageLimit == 0,
	}
	if c.UsageCount > 0 {
		a.AverageSavingsPerUse = c.TotalSavings / int64(c.UsageCount)
	}
	if c.UsageLimit > 0 {
		a.UsageRate = float64(c.UsageCount) / float64(c.UsageLimit) * 100
		a.RemainingUses = c.UsageLimit - c.UsageCount
	}
	return a, nil
}
