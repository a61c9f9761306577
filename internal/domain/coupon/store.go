// internal/domain/coupon/store.go
package coupon

import (
	"context"
	"time"

	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// Store is the persistence surface the redemption path needs. RedeemOnce
// must be atomic: of N concurrent calls against a coupon with one
// remaining use, exactly one succeeds.
type Store interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	UserUsage(ctx context.Context, couponID, userID uint) (int, error)
	RedeemOnce(ctx context.Context, couponID, userID uint, userLimit int, savings int64) error
	ListUsages(ctx context.Context, couponID uint) ([]Usage, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates the database-backed coupon store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// FindByCode returns the active coupon for a code, or nil when none exists.
func (s *gormStore) FindByCode(ctx context.Context, code string) (*Coupon, error) {
	var c Coupon
	result := s.db.WithContext(ctx).
		Preload("Scope").
		Where("code = ? AND is_active = ?", code, true).
		First(&c)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, apperrors.Dependency("failed to retrieve coupon", result.Error)
	}
	return &c, nil
}

// UserUsage returns how many times the user has redeemed the coupon.
func (s *gormStore) UserUsage(ctx context.Context, couponID, userID uint) (int, error) {
	var usage Usage
	result := s.db.WithContext(ctx).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		First(&usage)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, apperrors.Dependency("failed to retrieve coupon usage", result.Error)
	}
	return usage.UsedCount, nil
}

// RedeemOnce consumes one use of the coupon for the user. Both counters
// advance through guarded conditional updates, so two racing redemptions
// of the last slot cannot both see rows affected.
func (s *gormStore) RedeemOnce(ctx context.Context, couponID, userID uint, userLimit int, savings int64) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Coupon{}).
			Where("id = ?", couponID).
			Where("usage_limit = 0 OR usage_count < usage_limit").
			Updates(map[string]interface{}{
				"usage_count":   gorm.Expr("usage_count + 1"),
				"total_savings": gorm.Expr("total_savings + ?", savings),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.LimitExceeded("coupon usage limit reached")
		}

		var usage Usage
		err := tx.Where("coupon_id = ? AND user_id = ?", couponID, userID).First(&usage).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(&Usage{
				CouponID:   couponID,
				UserID:     userID,
				UsedCount:  1,
				SavedTotal: savings,
				LastUsedAt: now,
			}).Error
		}
		if err != nil {
			return err
		}

		query := tx.Model(&Usage{}).
			Where("coupon_id = ? AND user_id = ?", couponID, userID)
		if userLimit > 0 {
			query = query.Where("used_count < ?", userLimit)
		}
		result = query.Updates(map[string]interface{}{
			"used_count":   gorm.Expr("used_count + 1"),
			"saved_total":  gorm.Expr("saved_total + ?", savings),
			"last_used_at": now,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.LimitExceeded("per-customer usage limit reached for this coupon")
		}
		return nil
	})
	if err != nil {
		if apperrors.KindOf(err) != 0 {
			return err
		}
		return apperrors.Dependency("failed to redeem coupon", err)
	}
	return nil
}

// ListUsages returns all per-user usage rows of a coupon.
func (s *gormStore) ListUsages(ctx context.Context, couponID uint) ([]Usage, error) {
	var usages []Usage
	err := s.db.WithContext(ctx).
		Where("coupon_id = ?", couponID).
		Find(&usages).Error
	if err != nil {
		return nil, apperrors.Dependency("failed to retrieve coupon usages", err)
	}
	return usages, nil
}
