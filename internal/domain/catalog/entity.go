// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SKU         string `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name        string `gorm:"not null;size:255" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	// Price is the sale price in paise. ComparePrice, when set, is the
	// MRP used for savings display.
	Price         int64          `gorm:"not null" json:"price"`
	ComparePrice  int64          `json:"compare_price"`
	CategoryID    uint           `gorm:"not null;index" json:"category_id"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	IsFeatured    bool           `gorm:"default:false" json:"is_featured"`
	TrackQuantity bool           `gorm:"default:true" json:"track_quantity"`
	Quantity      int            `gorm:"default:0" json:"quantity"`
	Tags          string         `gorm:"size:500" json:"tags"` // Comma-separated tags
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	ParentID    *uint          `gorm:"index" json:"parent_id"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }

// IsInStock reports whether the product can currently be sold
func (p *Product) IsInStock() bool {
	return p.Quantity > 0 || !p.TrackQuantity
}

// ListPrice returns the reference price for savings display: the MRP
// when set, else the sale price.
func (p *Product) ListPrice() int64 {
	if p.ComparePrice > 0 {
		return p.ComparePrice
	}
	return p.Price
}
