// internal/interfaces/http/handlers/coupon.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CouponHandler handles coupon endpoints
type CouponHandler struct {
	couponService *coupon.Service
	cartService   *cart.Service
	config        *config.Config
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(couponService *coupon.Service, cartService *cart.Service, cfg *config.Config) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		cartService:   cartService,
		config:        cfg,
	}
}

// cartItems loads the caller's cart and flattens it into pricing items
func (h *CouponHandler) cartItems(c *gin.Context, userID *uint) ([]pricing.Item, int64, error) {
	sessionID := c.GetHeader("X-Session-ID")
	response, err := h.cartService.GetCart(c.Request.Context(), userID, sessionID, "")
	if err != nil {
		return nil, 0, err
	}

	items := make([]pricing.Item, 0, len(response.Items))
	for _, line := range response.Items {
		var categoryID uint
		if line.Product != nil {
			categoryID = line.Product.CategoryID
		}
		items = append(items, pricing.Item{
			ProductID:  line.ProductID,
			CategoryID: categoryID,
			Quantity:   line.Quantity,
			UnitPrice:  line.Price,
		})
	}
	return items, response.Totals.SubTotal, nil
}

// ValidateCoupon checks a coupon against the caller's cart and returns
// the quote without redeeming anything
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var userID *uint
	var uid uint
	if id, ok := middleware.GetUserIDFromContext(c); ok {
		userID = &id
		uid = id
	}

	items, cartTotal, err := h.cartItems(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	quote, err := h.couponService.Validate(c.Request.Context(), req.Code, uid, items, cartTotal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon is valid",
		"data":    quote,
	})
}

// ApplyCoupon validates and redeems a coupon against the caller's cart.
// Redemption requires an authenticated user.
func (h *CouponHandler) ApplyCoupon(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	items, cartTotal, err := h.cartItems(c, &userID)
	if err != nil {
		respondError(c, err)
		return
	}

	quote, err := h.couponService.Redeem(c.Request.Context(), req.Code, userID, items, cartTotal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon applied successfully",
		"data":    quote,
	})
}

// AdminListCoupons lists coupons for administration
func (h *CouponHandler) AdminListCoupons(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))
	activeOnly := c.Query("active") == "true"

	coupons, total, err := h.couponService.List(c.Request.Context(), activeOnly, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  coupons,
		"total": total,
	})
}

// AdminGetCoupon returns a coupon with its scope
func (h *CouponHandler) AdminGetCoupon(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid coupon ID",
		})
		return
	}

	cp, err := h.couponService.Get(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": cp,
	})
}

// AdminCreateCoupon creates a new coupon
func (h *CouponHandler) AdminCreateCoupon(c *gin.Context) {
	var req coupon.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	cp, err := h.couponService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Coupon created successfully",
		"data":    cp,
	})
}

// AdminUpdateCoupon applies a partial update to a coupon
func (h *CouponHandler) AdminUpdateCoupon(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid coupon ID",
		})
		return
	}

	var req coupon.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cp, err := h.couponService.Update(c.Request.Context(), uint(id), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon updated successfully",
		"data":    cp,
	})
}

// AdminDeleteCoupon deletes a coupon
func (h *CouponHandler) AdminDeleteCoupon(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid coupon ID",
		})
		return
	}

	if err := h.couponService.Delete(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon deleted successfully",
	})
}

// AdminCouponAnalytics returns redemption analytics for a coupon
func (h *CouponHandler) AdminCouponAnalytics(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid coupon ID",
		})
		return
	}

	analytics, err := h.couponService.Analytics(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": analytics,
	})
}
