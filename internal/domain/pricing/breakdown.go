// internal/domain/pricing/breakdown.go
package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/your-org/storefront-backend/internal/domain/discount"
)

// AppliedDiscount summarizes one discount that contributed to a price.
type AppliedDiscount struct {
	ID     uint                `json:"id"`
	Name   string              `json:"name"`
	Code   string              `json:"code,omitempty"`
	Types  []discount.RuleType `json:"types"`
	Amount int64               `json:"amount"`
}

// Formatted carries display-ready price strings for the storefront.
type Formatted struct {
	MRP           string `json:"mrp,omitempty"`
	SellingPrice  string `json:"selling_price"`
	Savings       string `json:"savings"`
	DiscountLabel string `json:"discount_label,omitempty"`
}

// Breakdown is the priced view of a single product. OriginalPrice is the
// reference price (MRP when set), DiscountedPrice the amount actually
// charged, and Savings the gap between them.
type Breakdown struct {
	OriginalPrice      int64             `json:"original_price"`
	DiscountedPrice    int64             `json:"discounted_price"`
	Savings            int64             `json:"savings"`
	DiscountPercentage int               `json:"discount_percentage"`
	HasDiscount        bool              `json:"has_discount"`
	ShowMRP            bool              `json:"show_mrp"`
	ShowDiscountBadge  bool              `json:"show_discount_badge"`
	AppliedDiscounts   []AppliedDiscount `json:"applied_discounts"`
	Formatted          Formatted         `json:"formatted"`
}

// CartBreakdown is the priced view of a whole cart.
type CartBreakdown struct {
	OriginalTotal    int64             `json:"original_total"`
	DiscountedTotal  int64             `json:"discounted_total"`
	TotalDiscount    int64             `json:"total_discount"`
	FreeShipping     bool              `json:"free_shipping"`
	AppliedDiscounts []AppliedDiscount `json:"applied_discounts"`
	Formatted        Formatted         `json:"formatted"`
}

// FormatINR renders a paise amount in rupees with Indian digit grouping:
// the last three rupee digits form one group, the rest pair off
// (₹12,34,567). A non-zero paise remainder is appended as two decimals.
func FormatINR(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	rupees, paise := amount/100, amount%100
	s := strconv.FormatInt(rupees, 10)
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		s = strings.Join(append(groups, tail), ",")
	}
	if paise != 0 {
		s = fmt.Sprintf("%s.%02d", s, paise)
	}
	if negative {
		return "-₹" + s
	}
	return "₹" + s
}

func discountLabel(percentage int) string {
	if percentage <= 0 {
		return ""
	}
	return fmt.Sprintf("%d%% off", percentage)
}
