// internal/domain/pricing/evaluate.go
package pricing

import (
	"math"

	"github.com/your-org/storefront-backend/internal/domain/discount"
)

func percentOf(amount int64, percent float64) int64 {
	return int64(math.Round(float64(amount) * percent / 100))
}

// evaluateDiscount computes the paise a discount deducts from the given
// cart. Rule amounts accumulate across the discount's rules; the result
// is clamped to [0, cartTotal] so a discount can never push the payable
// amount negative.
func evaluateDiscount(d *discount.Discount, items []resolvedItem, cartTotal int64) int64 {
	var total int64
	for i := range d.Rules {
		rule := &d.Rules[i]
		switch rule.Type {
		case discount.RulePercentage:
			total += percentOf(cartTotal, rule.Value)
		case discount.RuleFixedAmount:
			total += int64(rule.Value)
		case discount.RuleBuyXGetY:
			total += evaluateBuyXGetY(d, rule, items)
		case discount.RuleBulkDiscount:
			total += evaluateBulk(rule, items)
		case discount.RuleFreeShipping:
			// Shipping is waived downstream; no cart deduction.
		case discount.RuleBundle:
			total += evaluateBundle(rule, items, cartTotal)
		}
	}
	if total > cartTotal {
		total = cartTotal
	}
	if total < 0 {
		total = 0
	}
	return total
}

// evaluateBuyXGetY grants GetQuantity units at GetDiscountPercent off for
// every full buy+get block in a line. When the discount limits its
// applicable products, other lines are ignored.
func evaluateBuyXGetY(d *discount.Discount, rule *discount.Rule, items []resolvedItem) int64 {
	includeProducts := idSet(d.ApplicableProducts())

	var total int64
	for _, item := range items {
		if len(includeProducts) > 0 && !includeProducts[item.ProductID] {
			continue
		}
		blockSize := rule.BuyQuantity + rule.GetQuantity
		if blockSize < 1 {
			continue
		}
		freeUnits := (item.Quantity / blockSize) * rule.GetQuantity
		if freeUnits <= 0 {
			continue
		}
		total += percentOf(int64(freeUnits)*item.UnitPrice, rule.GetDiscountPercent)
	}
	return total
}

// evaluateBulk applies every tier a line's quantity satisfies; tiers
// stack rather than picking the single best match.
func evaluateBulk(rule *discount.Rule, items []resolvedItem) int64 {
	var total int64
	for _, item := range items {
		lineTotal := item.UnitPrice * int64(item.Quantity)
		for _, tier := range rule.BulkTiers {
			if item.Quantity >= tier.MinQuantity {
				total += percentOf(lineTotal, tier.DiscountPercent)
			}
		}
	}
	return total
}

// evaluateBundle fires only when every bundle product is present in the
// cart. A percentage bundle takes its cut from the cart total; a fixed
// bundle deducts a flat amount.
func evaluateBundle(rule *discount.Rule, items []resolvedItem, cartTotal int64) int64 {
	if len(rule.BundleItems) == 0 {
		return 0
	}

	inCart := make(map[uint]int, len(items))
	for _, item := range items {
		inCart[item.ProductID] += item.Quantity
	}
	for _, bundleItem := range rule.BundleItems {
		if inCart[bundleItem.ProductID] == 0 {
			return 0
		}
	}

	switch rule.BundleType {
	case discount.RulePercentage:
		return percentOf(cartTotal, rule.BundleValue)
	case discount.RuleFixedAmount:
		amount := int64(rule.BundleValue)
		if amount > cartTotal {
			amount = cartTotal
		}
		return amount
	}
	return 0
}

func hasRuleType(d *discount.Discount, ruleType discount.RuleType) bool {
	for i := range d.Rules {
		if d.Rules[i].Type == ruleType {
			return true
		}
	}
	return false
}
