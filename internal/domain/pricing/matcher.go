// internal/domain/pricing/matcher.go
package pricing

import (
	"context"

	"github.com/your-org/storefront-backend/internal/domain/discount"
)

// Item is one cart line as the engine sees it. UnitPrice is the sale
// price of a single unit.
type Item struct {
	ProductID  uint  `json:"product_id"`
	CategoryID uint  `json:"category_id"`
	Quantity   int   `json:"quantity"`
	UnitPrice  int64 `json:"unit_price"`
}

// Scope is the applicability surface shared by discounts and coupons:
// inclusion targets narrow what qualifies, exclusion targets veto
// individual items.
type Scope struct {
	IncludeProducts   []uint
	IncludeCategories []uint
	ExcludeProducts   []uint
	ExcludeCategories []uint
}

// resolvedItem is an Item with its category chain already expanded:
// the item's own category followed by its ancestors, nearest first.
type resolvedItem struct {
	Item
	categoryChain []uint
}

func idSet(ids []uint) map[uint]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func discountScope(d *discount.Discount) Scope {
	return Scope{
		IncludeProducts:   d.ApplicableProducts(),
		IncludeCategories: d.ApplicableCategories(),
		ExcludeProducts:   d.ExcludedProducts(),
		ExcludeCategories: d.ExcludedCategories(),
	}
}

// scopeApplies reports whether the scope matches any cart item. A scope
// with no inclusion targets is a wildcard and matches every non-empty
// cart. Exclusions are tested per item before inclusions, so an excluded
// item can never qualify the cart; a different, non-excluded item still
// can.
func scopeApplies(scope Scope, items []resolvedItem) bool {
	if len(items) == 0 {
		return false
	}

	includeProducts := idSet(scope.IncludeProducts)
	includeCategories := idSet(scope.IncludeCategories)
	if len(includeProducts) == 0 && len(includeCategories) == 0 {
		return true
	}

	excludeProducts := idSet(scope.ExcludeProducts)
	excludeCategories := idSet(scope.ExcludeCategories)

	for _, item := range items {
		if excludeProducts[item.ProductID] {
			continue
		}
		excluded := false
		for _, categoryID := range item.categoryChain {
			if excludeCategories[categoryID] {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}

		if includeProducts[item.ProductID] {
			return true
		}
		for _, categoryID := range item.categoryChain {
			if includeCategories[categoryID] {
				return true
			}
		}
	}
	return false
}

// ScopeApplies resolves the items' category chains and matches them
// against the scope. Coupons use this to share the discount matching
// rules.
func (e *Engine) ScopeApplies(ctx context.Context, scope Scope, items []Item) (bool, error) {
	resolved, err := e.resolveItems(ctx, items)
	if err != nil {
		return false, err
	}
	return scopeApplies(scope, resolved), nil
}
