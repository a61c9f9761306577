// internal/domain/pricing/engine.go
package pricing

import (
	"context"
	"math"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/discount"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
)

// DiscountSource supplies the discounts eligible for evaluation and the
// per-user redemption counts that gate them.
type DiscountSource interface {
	ActiveForPricing(ctx context.Context, now time.Time, code string) ([]discount.Discount, error)
	UserUsage(ctx context.Context, discountID, userID uint) (int, error)
}

// AncestorResolver expands a category into its ancestor chain.
type AncestorResolver interface {
	Ancestors(ctx context.Context, categoryID uint) ([]uint, error)
}

// UserContext identifies the shopper a price is computed for. A nil
// context means an anonymous visitor: per-user limits are skipped and
// first-time-only discounts do not apply.
type UserContext struct {
	UserID              uint
	IsFirstTimeCustomer bool
}

// Engine resolves final prices by matching, evaluating, and selecting
// discounts against a product or cart.
type Engine struct {
	discounts DiscountSource
	resolver  AncestorResolver
}

// NewEngine creates a pricing engine.
func NewEngine(discounts DiscountSource, resolver AncestorResolver) *Engine {
	return &Engine{
		discounts: discounts,
		resolver:  resolver,
	}
}

// resolveItems expands each item's category chain once per call so the
// matcher never hits the store twice for the same category.
func (e *Engine) resolveItems(ctx context.Context, items []Item) ([]resolvedItem, error) {
	chains := make(map[uint][]uint)
	resolved := make([]resolvedItem, 0, len(items))
	for _, item := range items {
		ri := resolvedItem{Item: item}
		if item.CategoryID != 0 {
			chain, ok := chains[item.CategoryID]
			if !ok {
				ancestors, err := e.resolver.Ancestors(ctx, item.CategoryID)
				if err != nil {
					return nil, err
				}
				chain = append([]uint{item.CategoryID}, ancestors...)
				chains[item.CategoryID] = chain
			}
			ri.categoryChain = chain
		}
		resolved = append(resolved, ri)
	}
	return resolved, nil
}

type candidate struct {
	d      *discount.Discount
	amount int64
}

// selectDiscounts filters the eligible discounts against validity,
// per-user limits, order conditions, and scope, then settles combination:
// the first non-combinable discount with a positive amount wins alone;
// otherwise every positive candidate stacks. The returned total is
// clamped to the cart total. Discounts arrive ordered by priority.
func (e *Engine) selectDiscounts(ctx context.Context, now time.Time, discounts []discount.Discount, items []resolvedItem, cartTotal int64, user *UserContext) ([]AppliedDiscount, int64, bool, error) {
	totalQuantity := 0
	for _, item := range items {
		totalQuantity += item.Quantity
	}

	var candidates []candidate
	for i := range discounts {
		d := &discounts[i]
		if !d.IsValidNow(now) {
			continue
		}

		if user != nil && user.UserID != 0 {
			used, err := e.discounts.UserUsage(ctx, d.ID, user.UserID)
			if err != nil {
				return nil, 0, false, err
			}
			if !d.CanUserUse(now, used, user.IsFirstTimeCustomer) {
				continue
			}
		} else if d.FirstTimeCustomersOnly {
			continue
		}

		if cartTotal < d.MinimumOrderAmount {
			continue
		}
		if d.MaximumOrderAmount > 0 && cartTotal > d.MaximumOrderAmount {
			continue
		}
		if totalQuantity < d.MinimumQuantity {
			continue
		}

		if !scopeApplies(discountScope(d), items) {
			continue
		}

		amount := evaluateDiscount(d, items, cartTotal)
		if amount <= 0 && !hasRuleType(d, discount.RuleFreeShipping) {
			continue
		}
		candidates = append(candidates, candidate{d: d, amount: amount})
	}

	// An exclusive discount suppresses everything else.
	var applied []candidate
	for _, c := range candidates {
		if !c.d.CanCombine && c.amount > 0 {
			applied = []candidate{c}
			break
		}
	}
	if applied == nil {
		applied = candidates
	}

	var total int64
	freeShipping := false
	results := make([]AppliedDiscount, 0, len(applied))
	for _, c := range applied {
		total += c.amount
		if hasRuleType(c.d, discount.RuleFreeShipping) {
			freeShipping = true
		}
		types := make([]discount.RuleType, 0, len(c.d.Rules))
		for j := range c.d.Rules {
			types = append(types, c.d.Rules[j].Type)
		}
		results = append(results, AppliedDiscount{
			ID:     c.d.ID,
			Name:   c.d.Name,
			Code:   c.d.Code,
			Types:  types,
			Amount: c.amount,
		})
	}
	if total > cartTotal {
		total = cartTotal
	}
	return results, total, freeShipping, nil
}

// PriceProduct computes the storefront price of a single unit of the
// product under all automatic discounts.
func (e *Engine) PriceProduct(ctx context.Context, product *catalog.Product, user *UserContext) (*Breakdown, error) {
	if product == nil {
		return nil, apperrors.Validation("product is required")
	}

	now := time.Now()
	items := []Item{{
		ProductID:  product.ID,
		CategoryID: product.CategoryID,
		Quantity:   1,
		UnitPrice:  product.Price,
	}}
	resolved, err := e.resolveItems(ctx, items)
	if err != nil {
		return nil, err
	}

	discounts, err := e.discounts.ActiveForPricing(ctx, now, "")
	if err != nil {
		return nil, err
	}

	applied, totalDiscount, _, err := e.selectDiscounts(ctx, now, discounts, resolved, product.Price, user)
	if err != nil {
		return nil, err
	}

	return buildBreakdown(product, applied, totalDiscount), nil
}

// buildBreakdown assembles the display view of a priced product.
// Savings and the percentage are measured against the MRP when one is
// set, so the badge reflects the full gap the shopper sees. HasDiscount
// tracks actual deductions only; an MRP markdown alone does not count.
func buildBreakdown(product *catalog.Product, applied []AppliedDiscount, totalDiscount int64) *Breakdown {
	mrp := product.ListPrice()

	discounted := product.Price - totalDiscount
	if discounted < 0 {
		discounted = 0
	}
	savings := mrp - discounted
	if savings < 0 {
		savings = 0
	}

	percentage := 0
	if product.ComparePrice > 0 {
		percentage = int(math.Round(float64(product.ComparePrice-discounted) / float64(product.ComparePrice) * 100))
	} else if totalDiscount > 0 && product.Price > 0 {
		percentage = int(math.Round(float64(totalDiscount) / float64(product.Price) * 100))
	}

	b := &Breakdown{
		OriginalPrice:      mrp,
		DiscountedPrice:    discounted,
		Savings:            savings,
		DiscountPercentage: percentage,
		HasDiscount:        totalDiscount > 0,
		ShowMRP:            mrp > discounted,
		ShowDiscountBadge:  totalDiscount > 0,
		AppliedDiscounts:   applied,
		Formatted: Formatted{
			SellingPrice:  FormatINR(discounted),
			Savings:       FormatINR(savings),
			DiscountLabel: discountLabel(percentage),
		},
	}
	if mrp > 0 {
		b.Formatted.MRP = FormatINR(mrp)
	}
	return b
}

// PriceCart computes the cart totals under automatic discounts plus, when
// code is non-empty, the coded discount it names.
func (e *Engine) PriceCart(ctx context.Context, items []Item, user *UserContext, code string) (*CartBreakdown, error) {
	if len(items) == 0 {
		return nil, apperrors.Validation("cart has no items")
	}

	var cartTotal int64
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, apperrors.Validation("item quantity must be at least 1")
		}
		cartTotal += item.UnitPrice * int64(item.Quantity)
	}
	if cartTotal <= 0 {
		return nil, apperrors.Validation("cart total must be positive")
	}

	now := time.Now()
	resolved, err := e.resolveItems(ctx, items)
	if err != nil {
		return nil, err
	}

	discounts, err := e.discounts.ActiveForPricing(ctx, now, code)
	if err != nil {
		return nil, err
	}

	applied, totalDiscount, freeShipping, err := e.selectDiscounts(ctx, now, discounts, resolved, cartTotal, user)
	if err != nil {
		return nil, err
	}

	discountedTotal := cartTotal - totalDiscount
	if discountedTotal < 0 {
		discountedTotal = 0
	}

	return &CartBreakdown{
		OriginalTotal:    cartTotal,
		DiscountedTotal:  discountedTotal,
		TotalDiscount:    totalDiscount,
		FreeShipping:     freeShipping,
		AppliedDiscounts: applied,
		Formatted: Formatted{
			MRP:          FormatINR(cartTotal),
			SellingPrice: FormatINR(discountedTotal),
			Savings:      FormatINR(totalDiscount),
		},
	}, nil
}
