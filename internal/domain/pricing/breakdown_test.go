// internal/domain/pricing/breakdown_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatINR(t *testing.T) {
	// Amounts are paise; whole-rupee values drop the decimals.
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "₹0"},
		{7, "₹0.07"},
		{999, "₹9.99"},
		{15000, "₹150"},
		{100000, "₹1,000"},
		{9999900, "₹99,999"},
		{10000000, "₹1,00,000"},
		{1234567, "₹12,345.67"},
		{123456700, "₹12,34,567"},
		{-150050, "-₹1,500.50"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatINR(tt.amount))
	}
}

func TestDiscountLabel(t *testing.T) {
	assert.Equal(t, "", discountLabel(0))
	assert.Equal(t, "", discountLabel(-5))
	assert.Equal(t, "47% off", discountLabel(47))
}
