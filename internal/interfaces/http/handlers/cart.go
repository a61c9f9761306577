// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CartHandler handles shopping cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		config:      cfg,
	}
}

// cartIdentity resolves who the cart belongs to: the authenticated user
// when a token is present, otherwise the guest session. A fresh session
// id is issued when a guest arrives without one.
func (h *CartHandler) cartIdentity(c *gin.Context) (*uint, string) {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return &userID, ""
	}

	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	c.Header("X-Session-ID", sessionID)
	return nil, sessionID
}

// GetCart returns the current cart with priced totals. An optional
// discount code query parameter is applied to the quote.
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, sessionID := h.cartIdentity(c)
	code := c.Query("code")

	response, err := h.cartService.GetCart(c.Request.Context(), userID, sessionID, code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// AddToCart adds an item to the cart
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, sessionID := h.cartIdentity(c)
	response, err := h.cartService.AddToCart(c.Request.Context(), userID, sessionID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"data":    response,
	})
}

// UpdateCartItem updates a cart line quantity
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, sessionID := h.cartIdentity(c)
	response, err := h.cartService.UpdateCartItem(c.Request.Context(), userID, sessionID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
		"data":    response,
	})
}

// RemoveFromCart removes a line from the cart
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}
	attributes := c.Query("attributes")

	userID, sessionID := h.cartIdentity(c)
	response, err := h.cartService.RemoveFromCart(c.Request.Context(), userID, sessionID, uint(productID), attributes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"data":    response,
	})
}

// ClearCart removes all items from the cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, sessionID := h.cartIdentity(c)
	if err := h.cartService.ClearCart(c.Request.Context(), userID, sessionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}

// GetCartItemCount returns the total quantity in the cart
func (h *CartHandler) GetCartItemCount(c *gin.Context) {
	userID, sessionID := h.cartIdentity(c)
	count, err := h.cartService.GetCartItemCount(c.Request.Context(), userID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"count": count},
	})
}

// MergeCart merges a guest session cart into the authenticated user's cart
func (h *CartHandler) MergeCart(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.cartService.MergeGuestCartToUser(c.Request.Context(), req.SessionID, userID); err != nil {
		respondError(c, err)
		return
	}

	response, err := h.cartService.GetCart(c.Request.Context(), &userID, "", "")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart merged",
		"data":    response,
	})
}
