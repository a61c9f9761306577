// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	catalogService *catalog.Service
	userService    *user.Service
	engine         *pricing.Engine
	config         *config.Config
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalogService *catalog.Service, userService *user.Service, engine *pricing.Engine, cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		userService:    userService,
		engine:         engine,
		config:         cfg,
	}
}

// PricedProduct is a product with its storefront price breakdown attached
type PricedProduct struct {
	catalog.Product
	Pricing *pricing.Breakdown `json:"pricing,omitempty"`
}

// userContext builds the pricing identity for the request, when any
func (h *ProductHandler) userContext(c *gin.Context) *pricing.UserContext {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return nil
	}
	firstTimer, err := h.userService.IsFirstTimeCustomer(c.Request.Context(), userID)
	if err != nil {
		return &pricing.UserContext{UserID: userID}
	}
	return &pricing.UserContext{UserID: userID, IsFirstTimeCustomer: firstTimer}
}

func (h *ProductHandler) priceProducts(c *gin.Context, products []catalog.Product) []PricedProduct {
	user := h.userContext(c)
	priced := make([]PricedProduct, 0, len(products))
	for i := range products {
		p := PricedProduct{Product: products[i]}
		if breakdown, err := h.engine.PriceProduct(c.Request.Context(), &products[i], user); err == nil {
			p.Pricing = breakdown
		}
		priced = append(priced, p)
	}
	return priced
}

// GetProducts returns the product listing with price breakdowns
func (h *ProductHandler) GetProducts(c *gin.Context) {
	opts := catalog.ProductListOptions{
		Search:       c.Query("search"),
		FeaturedOnly: c.Query("featured") == "true",
	}
	if categoryID, err := strconv.ParseUint(c.Query("category_id"), 10, 32); err == nil {
		opts.CategoryID = uint(categoryID)
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		opts.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil {
		opts.PerPage = perPage
	}

	products, total, err := h.catalogService.GetProducts(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  h.priceProducts(c, products),
		"total": total,
	})
}

// GetProduct returns a single product with its price breakdown
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	priced := h.priceProducts(c, []catalog.Product{*product})
	c.JSON(http.StatusOK, gin.H{
		"data": priced[0],
	})
}

// GetProductBySlug returns a single product by slug with its price breakdown
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.catalogService.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	priced := h.priceProducts(c, []catalog.Product{*product})
	c.JSON(http.StatusOK, gin.H{
		"data": priced[0],
	})
}

// AdminGetProducts returns products including inactive ones
func (h *ProductHandler) AdminGetProducts(c *gin.Context) {
	opts := catalog.ProductListOptions{
		Search:          c.Query("search"),
		IncludeInactive: true,
	}
	if categoryID, err := strconv.ParseUint(c.Query("category_id"), 10, 32); err == nil {
		opts.CategoryID = uint(categoryID)
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		opts.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil {
		opts.PerPage = perPage
	}

	products, total, err := h.catalogService.GetProducts(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  products,
		"total": total,
	})
}

// AdminGetProduct returns a single product without pricing decoration
func (h *ProductHandler) AdminGetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": product,
	})
}

// AdminCreateProduct creates a new product
func (h *ProductHandler) AdminCreateProduct(c *gin.Context) {
	var req catalog.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    product,
	})
}

// AdminUpdateProduct applies a partial update to a product
func (h *ProductHandler) AdminUpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req catalog.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), uint(id), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"data":    product,
	})
}

// AdminDeleteProduct deletes a product
func (h *ProductHandler) AdminDeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}
