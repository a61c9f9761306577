// internal/domain/pricing/matcher_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeAppliesEmptyCart(t *testing.T) {
	assert.False(t, scopeApplies(Scope{}, nil))
	assert.False(t, scopeApplies(Scope{IncludeProducts: []uint{1}}, nil))
}

func TestScopeAppliesWildcard(t *testing.T) {
	cart := items(Item{ProductID: 1, Quantity: 1, UnitPrice: 100})
	assert.True(t, scopeApplies(Scope{}, cart))
}

func TestScopeAppliesIncludeProduct(t *testing.T) {
	cart := items(
		Item{ProductID: 1, Quantity: 1, UnitPrice: 100},
		Item{ProductID: 2, Quantity: 1, UnitPrice: 100},
	)

	assert.True(t, scopeApplies(Scope{IncludeProducts: []uint{2}}, cart))
	assert.False(t, scopeApplies(Scope{IncludeProducts: []uint{3}}, cart))
}

func TestScopeAppliesIncludeCategoryViaChain(t *testing.T) {
	cart := []resolvedItem{{
		Item:          Item{ProductID: 1, CategoryID: 10, Quantity: 1, UnitPrice: 100},
		categoryChain: []uint{10, 4, 1},
	}}

	// Matches the item's own category and any ancestor.
	assert.True(t, scopeApplies(Scope{IncludeCategories: []uint{10}}, cart))
	assert.True(t, scopeApplies(Scope{IncludeCategories: []uint{1}}, cart))
	assert.False(t, scopeApplies(Scope{IncludeCategories: []uint{99}}, cart))
}

func TestScopeAppliesExclusionBeatsInclusion(t *testing.T) {
	cart := items(Item{ProductID: 1, Quantity: 1, UnitPrice: 100})

	scope := Scope{
		IncludeProducts: []uint{1},
		ExcludeProducts: []uint{1},
	}
	assert.False(t, scopeApplies(scope, cart))
}

func TestScopeAppliesExcludedCategoryVetoesItem(t *testing.T) {
	cart := []resolvedItem{
		{
			Item:          Item{ProductID: 1, CategoryID: 10, Quantity: 1, UnitPrice: 100},
			categoryChain: []uint{10, 4},
		},
		{
			Item:          Item{ProductID: 2, CategoryID: 20, Quantity: 1, UnitPrice: 100},
			categoryChain: []uint{20},
		},
	}

	// Product 1's ancestor is excluded, but product 2 still qualifies.
	scope := Scope{
		IncludeProducts:   []uint{1, 2},
		ExcludeCategories: []uint{4},
	}
	assert.True(t, scopeApplies(scope, cart))

	// Narrowed to the excluded item alone, nothing qualifies.
	scope.IncludeProducts = []uint{1}
	assert.False(t, scopeApplies(scope, cart))
}

func TestIDSet(t *testing.T) {
	assert.Nil(t, idSet(nil))
	set := idSet([]uint{1, 2, 2})
	assert.True(t, set[1])
	assert.True(t, set[2])
	assert.False(t, set[3])
}
