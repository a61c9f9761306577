// internal/domain/coupon/service_test.go
package coupon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
)

// memStore is an in-memory Store with the same atomicity contract as the
// database-backed one.
type memStore struct {
	mu      sync.Mutex
	coupons map[string]*Coupon
	usage   map[uint]map[uint]int
}

func newMemStore(coupons ...*Coupon) *memStore {
	s := &memStore{
		coupons: make(map[string]*Coupon),
		usage:   make(map[uint]map[uint]int),
	}
	for _, c := range coupons {
		s.coupons[c.Code] = c
	}
	return s
}

func (s *memStore) FindByCode(ctx context.Context, code string) (*Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[code]
	if !ok || !c.IsActive {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (s *memStore) UserUsage(ctx context.Context, couponID, userID uint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage[couponID][userID], nil
}

func (s *memStore) RedeemOnce(ctx context.Context, couponID, userID uint, userLimit int, savings int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c *Coupon
	for _, candidate := range s.coupons {
		if candidate.ID == couponID {
			c = candidate
			break
		}
	}
	if c == nil {
		return apperrors.NotFound("coupon %d not found", couponID)
	}
	if c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit {
		return apperrors.LimitExceeded("coupon usage limit reached")
	}
	if userLimit > 0 && s.usage[couponID][userID] >= userLimit {
		return apperrors.LimitExceeded("per-customer usage limit reached for this coupon")
	}
	c.UsageCount++
	c.TotalSavings += savings
	if s.usage[couponID] == nil {
		s.usage[couponID] = make(map[uint]int)
	}
	s.usage[couponID][userID]++
	return nil
}

func (s *memStore) ListUsages(ctx context.Context, couponID uint) ([]Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var usages []Usage
	for userID, count := range s.usage[couponID] {
		usages = append(usages, Usage{CouponID: couponID, UserID: userID, UsedCount: count})
	}
	return usages, nil
}

func testService(store Store) *Service {
	cfg := &config.Config{}
	cfg.Pricing.MaxCodeLength = 20
	return &Service{config: cfg, store: store}
}

func storedCoupon() *Coupon {
	now := time.Now()
	return &Coupon{
		ID:        1,
		Code:      "SAVE10",
		Type:      TypePercentage,
		Value:     10,
		UserLimit: 1,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
		IsActive:  true,
	}
}

func TestValidateQuotesDiscount(t *testing.T) {
	svc := testService(newMemStore(storedCoupon()))

	quote, err := svc.Validate(context.Background(), "save10", 5, nil, 10000)
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", quote.Code)
	assert.Equal(t, int64(1000), quote.DiscountAmount)
	assert.Equal(t, int64(9000), quote.FinalTotal)
}

func TestValidateUnknownCode(t *testing.T) {
	svc := testService(newMemStore())

	_, err := svc.Validate(context.Background(), "NOPE99", 5, nil, 10000)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestValidateEmptyCodeAndBadTotal(t *testing.T) {
	svc := testService(newMemStore(storedCoupon()))

	_, err := svc.Validate(context.Background(), "   ", 5, nil, 10000)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Validate(context.Background(), "SAVE10", 5, nil, 0)
	assert.True(t, apperrors.IsValidation(err))
}

func TestValidateExpiredCoupon(t *testing.T) {
	c := storedCoupon()
	c.EndDate = time.Now().Add(-time.Minute)
	svc := testService(newMemStore(c))

	_, err := svc.Validate(context.Background(), "SAVE10", 5, nil, 10000)
	assert.True(t, apperrors.IsLimitExceeded(err))
}

func TestValidateUserLimitReached(t *testing.T) {
	c := storedCoupon()
	store := newMemStore(c)
	store.usage[c.ID] = map[uint]int{5: 1}
	svc := testService(store)

	_, err := svc.Validate(context.Background(), "SAVE10", 5, nil, 10000)
	assert.True(t, apperrors.IsLimitExceeded(err))

	// A guest is not gated by per-user limits at validation time.
	_, err = svc.Validate(context.Background(), "SAVE10", 0, nil, 10000)
	assert.NoError(t, err)
}

func TestValidateMinimumAmount(t *testing.T) {
	c := storedCoupon()
	c.MinimumAmount = 99900
	svc := testService(newMemStore(c))

	_, err := svc.Validate(context.Background(), "SAVE10", 5, nil, 50000)
	require.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "₹999")
}

func TestRedeemRequiresUser(t *testing.T) {
	svc := testService(newMemStore(storedCoupon()))

	_, err := svc.Redeem(context.Background(), "SAVE10", 0, nil, 10000)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRedeemConsumesOneUse(t *testing.T) {
	c := storedCoupon()
	store := newMemStore(c)
	svc := testService(store)

	quote, err := svc.Redeem(context.Background(), "SAVE10", 5, nil, 10000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), quote.DiscountAmount)
	assert.Equal(t, 1, c.UsageCount)
	assert.Equal(t, int64(1000), c.TotalSavings)

	// UserLimit 1: the second redemption is refused.
	_, err = svc.Redeem(context.Background(), "SAVE10", 5, nil, 10000)
	assert.True(t, apperrors.IsLimitExceeded(err))
}

func TestRedeemConcurrentLastSlots(t *testing.T) {
	c := storedCoupon()
	c.UsageLimit = 3
	c.UserLimit = 0
	store := newMemStore(c)
	svc := testService(store)

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := svc.Redeem(context.Background(), "SAVE10", userID, nil, 10000)
			results <- err
		}(uint(i + 1))
	}
	wg.Wait()
	close(results)

	succeeded, limited := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperrors.IsLimitExceeded(err):
			limited++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, workers-3, limited)
	assert.Equal(t, 3, c.UsageCount)
}

func TestRedeemConcurrentSameUser(t *testing.T) {
	c := storedCoupon()
	c.UsageLimit = 0
	c.UserLimit = 1
	store := newMemStore(c)
	svc := testService(store)

	// Duplicate submissions from one user racing for a single per-user
	// slot: exactly one may land.
	const workers = 10
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Redeem(context.Background(), "SAVE10", 5, nil, 10000)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, limited := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperrors.IsLimitExceeded(err):
			limited++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, limited)
	assert.Equal(t, 1, store.usage[c.ID][5])
	assert.Equal(t, 1, c.UsageCount)
}

func TestAnalyticsAggregatesUsage(t *testing.T) {
	c := storedCoupon()
	c.UsageLimit = 10
	c.UserLimit = 0
	store := newMemStore(c)
	svc := testService(store)

	for i := 0; i < 4; i++ {
		_, err := svc.Redeem(context.Background(), "SAVE10", uint(i%2+1), nil, 10000)
		require.NoError(t, err)
	}

	usages, err := store.ListUsages(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Len(t, usages, 2)
	assert.Equal(t, 4, c.UsageCount)
	assert.Equal(t, int64(4000), c.TotalSavings)
}
