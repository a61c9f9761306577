// internal/domain/catalog/category_service.go
package catalog

import (
	"context"

	"github.com/your-org/storefront-backend/internal/config"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// CategoryService handles category business logic
type CategoryService struct {
	db       *gorm.DB
	config   *config.Config
	resolver *HierarchyResolver
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB, cfg *config.Config) *CategoryService {
	s := &CategoryService{
		db:     db,
		config: cfg,
	}
	s.resolver = NewHierarchyResolver(s, cfg.Pricing.CategoryDepthLimit)
	return s
}

// Resolver returns the ancestor-chain resolver backed by this service.
func (s *CategoryService) Resolver() *HierarchyResolver {
	return s.resolver
}

// FindCategoryByID implements CategoryStore. A missing category is
// reported as nil rather than an error so resolver walks can stop at
// broken links with a partial chain.
func (s *CategoryService) FindCategoryByID(ctx context.Context, id uint) (*Category, error) {
	var category Category
	result := s.db.WithContext(ctx).Select("id", "parent_id").Where("id = ?", id).First(&category)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &category, nil
}

// CategoryCreateRequest represents category creation data
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
}

// CategoryUpdateRequest represents category update data
type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ParentID    *uint   `json:"parent_id"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// CategoryTree represents hierarchical category structure
type CategoryTree struct {
	Category
	Children []CategoryTree `json:"children,omitempty"`
}

// GetCategories retrieves all categories with optional filtering
func (s *CategoryService) GetCategories(ctx context.Context, includeInactive bool) ([]Category, error) {
	var categories []Category

	query := s.db.WithContext(ctx).Model(&Category{}).
		Preload("Parent").
		Order("sort_order ASC, name ASC")

	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&categories).Error; err != nil {
		return nil, apperrors.Dependency("failed to retrieve categories", err)
	}

	return categories, nil
}

// GetCategoryTree retrieves categories in hierarchical tree structure
func (s *CategoryService) GetCategoryTree(ctx context.Context, includeInactive bool) ([]CategoryTree, error) {
	categories, err := s.GetCategories(ctx, includeInactive)
	if err != nil {
		return nil, err
	}

	categoryMap := make(map[uint]*CategoryTree)
	var rootCategories []CategoryTree

	for _, cat := range categories {
		categoryMap[cat.ID] = &CategoryTree{
			Category: cat,
			Children: []CategoryTree{},
		}
	}

	for _, cat := range categories {
		if cat.ParentID == nil {
			rootCategories = append(rootCategories, *categoryMap[cat.ID])
		} else {
			if parent, exists := categoryMap[*cat.ParentID]; exists {
				parent.Children = append(parent.Children, *categoryMap[cat.ID])
			}
		}
	}

	return rootCategories, nil
}

// GetCategory retrieves a single category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*Category, error) {
	var category Category
	result := s.db.WithContext(ctx).
		Preload("Parent").
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order ASC, name ASC")
		}).
		Where("id = ?", id).
		First(&category)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("category %d not found", id)
		}
		return nil, apperrors.Dependency("failed to retrieve category", result.Error)
	}

	return &category, nil
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, req *CategoryCreateRequest) (*Category, error) {
	if req.ParentID != nil {
		var parent Category
		if result := s.db.WithContext(ctx).Where("id = ?", *req.ParentID).First(&parent); result.Error != nil {
			return nil, apperrors.NotFound("parent category %d not found", *req.ParentID)
		}
	}

	category := Category{
		Name:        req.Name,
		Slug:        generateSlug(req.Name),
		Description: req.Description,
		ParentID:    req.ParentID,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	}

	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, apperrors.Dependency("failed to create category", err)
	}

	s.db.WithContext(ctx).Preload("Parent").First(&category, category.ID)
	return &category, nil
}

// UpdateCategory updates an existing category
func (s *CategoryService) UpdateCategory(ctx context.Context, id uint, req *CategoryUpdateRequest) (*Category, error) {
	var category Category
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&category)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("category %d not found", id)
		}
		return nil, apperrors.Dependency("failed to find category", result.Error)
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, apperrors.Validation("category cannot be its own parent")
		}

		var parent Category
		if result := s.db.WithContext(ctx).Where("id = ?", *req.ParentID).First(&parent); result.Error != nil {
			return nil, apperrors.NotFound("parent category %d not found", *req.ParentID)
		}

		// Reparenting under one of our own descendants would close a cycle.
		ancestors, err := s.resolver.Ancestors(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		for _, ancestorID := range ancestors {
			if ancestorID == id {
				return nil, apperrors.Validation("circular category reference detected")
			}
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
	if req.ParentID != nil {
		updates["parent_id"] = *req.ParentID
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.WithContext(ctx).Model(&category).Updates(updates).Error; err != nil {
		return nil, apperrors.Dependency("failed to update category", err)
	}

	s.db.WithContext(ctx).Preload("Parent").First(&category, category.ID)
	return &category, nil
}

// DeleteCategory soft deletes a category
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	var productCount int64
	s.db.WithContext(ctx).Model(&Product{}).Where("category_id = ?", id).Count(&productCount)
	if productCount > 0 {
		return apperrors.Validation("cannot delete category with existing products")
	}

	var childCount int64
	s.db.WithContext(ctx).Model(&Category{}).Where("parent_id = ?", id).Count(&childCount)
	if childCount > 0 {
		return apperrors.Validation("cannot delete category with subcategories")
	}

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Category{})
	if result.Error != nil {
		return apperrors.Dependency("failed to delete category", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("category %d not found", id)
	}
	return nil
}
