// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	SKU           string `json:"sku" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	Price         int64  `json:"price" binding:"required,min=0"`
	ComparePrice  int64  `json:"compare_price" binding:"min=0"`
	CategoryID    uint   `json:"category_id" binding:"required"`
	IsActive      bool   `json:"is_active"`
	IsFeatured    bool   `json:"is_featured"`
	TrackQuantity bool   `json:"track_quantity"`
	Quantity      int    `json:"quantity" binding:"min=0"`
	Tags          string `json:"tags"`
}

// ProductUpdateRequest represents product update data; nil fields are
// left untouched.
type ProductUpdateRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Price         *int64  `json:"price"`
	ComparePrice  *int64  `json:"compare_price"`
	CategoryID    *uint   `json:"category_id"`
	IsActive      *bool   `json:"is_active"`
	IsFeatured    *bool   `json:"is_featured"`
	TrackQuantity *bool   `json:"track_quantity"`
	Quantity      *int    `json:"quantity"`
	Tags          *string `json:"tags"`
}

// ProductListOptions represents product listing filters
type ProductListOptions struct {
	CategoryID      uint
	FeaturedOnly    bool
	IncludeInactive bool
	Search          string
	Page            int
	PerPage         int
}

// GetProducts retrieves products with optional filtering
func (s *Service) GetProducts(ctx context.Context, opts ProductListOptions) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := s.db.WithContext(ctx).Model(&Product{}).Preload("Category")

	if !opts.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if opts.CategoryID != 0 {
		query = query.Where("category_id = ?", opts.CategoryID)
	}
	if opts.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if opts.Search != "" {
		pattern := "%" + strings.ToLower(opts.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(tags) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Dependency("failed to count products", err)
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&products).Error
	if err != nil {
		return nil, 0, apperrors.Dependency("failed to retrieve products", err)
	}

	return products, total, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	result := s.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&product)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product %d not found", id)
		}
		return nil, apperrors.Dependency("failed to retrieve product", result.Error)
	}
	return &product, nil
}

// GetProductBySlug retrieves a single active product by slug
func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	var product Product
	result := s.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product %q not found", slug)
		}
		return nil, apperrors.Dependency("failed to retrieve product", result.Error)
	}
	return &product, nil
}

// CreateProduct creates a new product
func (s *Service) CreateProduct(ctx context.Context, req *ProductCreateRequest) (*Product, error) {
	if req.ComparePrice > 0 && req.ComparePrice < req.Price {
		return nil, apperrors.Validation("compare price must not be below the sale price")
	}

	// Validate category exists
	var category Category
	if result := s.db.WithContext(ctx).Where("id = ?", req.CategoryID).First(&category); result.Error != nil {
		return nil, apperrors.NotFound("category %d not found", req.CategoryID)
	}

	product := Product{
		SKU:           req.SKU,
		Name:          req.Name,
		Slug:          generateSlug(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		ComparePrice:  req.ComparePrice,
		CategoryID:    req.CategoryID,
		IsActive:      req.IsActive,
		IsFeatured:    req.IsFeatured,
		TrackQuantity: req.TrackQuantity,
		Quantity:      req.Quantity,
		Tags:          req.Tags,
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, apperrors.Dependency("failed to create product", err)
	}

	s.db.WithContext(ctx).Preload("Category").First(&product, product.ID)
	return &product, nil
}

// UpdateProduct applies a partial update to an existing product
func (s *Service) UpdateProduct(ctx context.Context, id uint, req *ProductUpdateRequest) (*Product, error) {
	var product Product
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&product)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product %d not found", id)
		}
		return nil, apperrors.Dependency("failed to find product", result.Error)
	}

	if req.CategoryID != nil {
		var category Category
		if result := s.db.WithContext(ctx).Where("id = ?", *req.CategoryID).First(&category); result.Error != nil {
			return nil, apperrors.NotFound("category %d not found", *req.CategoryID)
		}
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = generateSlug(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperrors.Validation("price cannot be negative")
		}
		updates["price"] = *req.Price
	}
	if req.ComparePrice != nil {
		updates["compare_price"] = *req.ComparePrice
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.TrackQuantity != nil {
		updates["track_quantity"] = *req.TrackQuantity
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
			return nil, apperrors.Dependency("failed to update product", err)
		}
	}

	s.db.WithContext(ctx).Preload("Category").First(&product, product.ID)
	return &product, nil
}

// DeleteProduct soft deletes a product
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Product{})
	if result.Error != nil {
		return apperrors.Dependency("failed to delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("product %d not found", id)
	}
	return nil
}

// generateSlug generates URL-friendly slug from name
func generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")
	return slug + "-" + fmt.Sprintf("%d", time.Now().Unix())
}
