// internal/interfaces/http/handlers/discount.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/discount"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
)

// DiscountHandler handles discount administration and storefront endpoints
type DiscountHandler struct {
	discountService *discount.Service
	cartService     *cart.Service
	config          *config.Config
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(discountService *discount.Service, cartService *cart.Service, cfg *config.Config) *DiscountHandler {
	return &DiscountHandler{
		discountService: discountService,
		cartService:     cartService,
		config:          cfg,
	}
}

// GetStorefrontDiscounts lists the currently running promotions marked
// for storefront display
func (h *DiscountHandler) GetStorefrontDiscounts(c *gin.Context) {
	discounts, err := h.discountService.ListStorefront(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": discounts,
	})
}

// appliedCodedDiscount finds the applied discount a redemption code
// landed as. Stored codes are uppercase; callers type freely.
func appliedCodedDiscount(applied []pricing.AppliedDiscount, code string) (*pricing.AppliedDiscount, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, false
	}
	for i := range applied {
		if applied[i].Code == code {
			return &applied[i], true
		}
	}
	return nil, false
}

// ValidateCode applies a discount code to the caller's cart and returns
// the priced cart so the client can show the would-be totals.
func (h *DiscountHandler) ValidateCode(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var userID *uint
	if id, ok := middleware.GetUserIDFromContext(c); ok {
		userID = &id
	}
	sessionID := c.GetHeader("X-Session-ID")

	response, err := h.cartService.GetCart(c.Request.Context(), userID, sessionID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	_, applied := appliedCodedDiscount(response.Totals.AppliedDiscounts, req.Code)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"applied": applied,
			"cart":    response,
		},
	})
}

// ApplyCode redeems a discount code against the authenticated user's
// cart: the cart is priced with the code and the discount's usage
// counters are consumed.
func (h *DiscountHandler) ApplyCode(c *gin.Context) {
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

	response, err := h.cartService.GetCart(c.Request.Context(), &userID, "", req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	applied, ok := appliedCodedDiscount(response.Totals.AppliedDiscounts, req.Code)
	if !ok {
		respondError(c, apperrors.Validation("discount code does not apply to your cart"))
		return
	}

	if err := h.discountService.RecordUsage(c.Request.Context(), applied.ID, userID, applied.Amount); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount applied successfully",
		"data":    response,
	})
}

// AdminListDiscounts lists discounts for administration
func (h *DiscountHandler) AdminListDiscounts(c *gin.Context) {
	opts := discount.ListOptions{
		ActiveOnly: c.Query("active") == "true",
		Code:       c.Query("code"),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		opts.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil {
		opts.PerPage = perPage
	}

	discounts, total, err := h.discountService.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  discounts,
		"total": total,
	})
}

// AdminGetDiscount returns a discount with its rules and scope
func (h *DiscountHandler) AdminGetDiscount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid discount ID",
		})
		return
	}

	d, err := h.discountService.Get(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": d,
	})
}

// AdminCreateDiscount creates a new discount
func (h *DiscountHandler) AdminCreateDiscount(c *gin.Context) {
	var req discount.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	d, err := h.discountService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Discount created successfully",
		"data":    d,
	})
}

// AdminUpdateDiscount applies a partial update to a discount
func (h *DiscountHandler) AdminUpdateDiscount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid discount ID",
		})
		return
	}

	var req discount.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	d, err := h.discountService.Update(c.Request.Context(), uint(id), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount updated successfully",
		"data":    d,
	})
}

// AdminDeleteDiscount deletes a discount
func (h *DiscountHandler) AdminDeleteDiscount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid discount ID",
		})
		return
	}

	if err := h.discountService.Delete(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount deleted successfully",
	})
}
