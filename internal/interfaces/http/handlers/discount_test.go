// internal/interfaces/http/handlers/discount_test.go
package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
)

func TestAppliedCodedDiscount(t *testing.T) {
	applied := []pricing.AppliedDiscount{
		{ID: 1, Name: "Electronics Launch Offer", Amount: 1000},
		{ID: 2, Name: "Welcome", Code: "WELCOME100", Amount: 10000},
	}

	d, ok := appliedCodedDiscount(applied, "WELCOME100")
	require.True(t, ok)
	assert.Equal(t, uint(2), d.ID)
	assert.Equal(t, int64(10000), d.Amount)

	// Caller input is normalized against the stored uppercase code.
	_, ok = appliedCodedDiscount(applied, "  welcome100 ")
	assert.True(t, ok)

	// A code that did not land, or no code at all, never matches the
	// automatic discount's empty code.
	_, ok = appliedCodedDiscount(applied, "OTHER")
	assert.False(t, ok)
	_, ok = appliedCodedDiscount(applied, "")
	assert.False(t, ok)
	_, ok = appliedCodedDiscount(nil, "WELCOME100")
	assert.False(t, ok)
}
