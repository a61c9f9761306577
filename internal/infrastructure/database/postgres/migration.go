// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/discount"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// User domain - Base tables
		&user.User{},
		&user.Address{},

		// Catalog domain
		&catalog.Category{},
		&catalog.Product{},

		// Cart domain
		&cart.CartItem{},

		// Discount domain
		&discount.Discount{},
		&discount.Rule{},
		&discount.BulkTier{},
		&discount.BundleItem{},
		&discount.ScopeEntry{},
		&discount.Usage{},

		// Coupon domain
		&coupon.Coupon{},
		&coupon.ScopeEntry{},
		&coupon.Usage{},
	}

	// Run auto-migration for each model
	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_role_active ON users(role, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Category indexes
		"CREATE INDEX IF NOT EXISTS idx_categories_parent_active ON categories(parent_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_categories_sort_order ON categories(sort_order)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user_product ON cart_items(user_id, product_id)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_created_at ON cart_items(created_at DESC)",

		// Address indexes
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_type ON addresses(user_id, type)",
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",

		// Discount indexes. The code column allows many blank values but
		// at most one row per real code, hence the partial unique index.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_discounts_code_unique ON discounts(code) WHERE code <> ''",
		"CREATE INDEX IF NOT EXISTS idx_discounts_active_window ON discounts(is_active, start_date, end_date)",
		"CREATE INDEX IF NOT EXISTS idx_discounts_priority ON discounts(priority DESC)",
		"CREATE INDEX IF NOT EXISTS idx_discounts_automatic ON discounts(is_automatic, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_discounts_storefront ON discounts(show_on_storefront, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_discount_rules_discount ON discount_rules(discount_id)",
		"CREATE INDEX IF NOT EXISTS idx_discount_scope_entries_discount ON discount_scope_entries(discount_id, kind)",
		"CREATE INDEX IF NOT EXISTS idx_discount_usages_discount ON discount_usages(discount_id)",

		// Coupon indexes
		"CREATE INDEX IF NOT EXISTS idx_coupons_active_window ON coupons(is_active, start_date, end_date)",
		"CREATE INDEX IF NOT EXISTS idx_coupon_scope_entries_coupon ON coupon_scope_entries(coupon_id, kind)",
		"CREATE INDEX IF NOT EXISTS idx_coupon_usages_coupon ON coupon_usages(coupon_id)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedTestUser(); err != nil {
		return fmt.Errorf("failed to seed test user: %w", err)
	}

	if err := m.seedTestProducts(); err != nil {
		return fmt.Errorf("failed to seed test products: %w", err)
	}

	if err := m.seedTestDiscounts(); err != nil {
		return fmt.Errorf("failed to seed test discounts: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedCategories creates a small category tree. Sub-categories exist so
// category-scoped discounts can be exercised against ancestor chains.
func (m *Migration) seedCategories() error {
	log.Println("🏷️ Seeding categories...")

	roots := []catalog.Category{
		{
			Name:        "Electronics",
			Slug:        "electronics",
			Description: "Electronic devices, gadgets, and accessories",
			SortOrder:   1,
			IsActive:    true,
		},
		{
			Name:        "Clothing",
			Slug:        "clothing",
			Description: "Fashion, apparel, and accessories",
			SortOrder:   2,
			IsActive:    true,
		},
		{
			Name:        "Books",
			Slug:        "books",
			Description: "Books, eBooks, and educational materials",
			SortOrder:   3,
			IsActive:    true,
		},
	}

	for i := range roots {
		var existing catalog.Category
		result := m.db.Where("slug = ?", roots[i].Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&roots[i]).Error; err != nil {
				return err
			}
			log.Printf("✅ Created category: %s", roots[i].Name)
		} else {
			roots[i] = existing
			log.Printf("⏭️ Category already exists: %s", existing.Name)
		}
	}

	children := []catalog.Category{
		{
			Name:        "Laptops",
			Slug:        "laptops",
			Description: "Notebooks and gaming laptops",
			ParentID:    &roots[0].ID,
			SortOrder:   1,
			IsActive:    true,
		},
		{
			Name:        "Audio",
			Slug:        "audio",
			Description: "Headphones, earphones, and speakers",
			ParentID:    &roots[0].ID,
			SortOrder:   2,
			IsActive:    true,
		},
	}

	for i := range children {
		var existing catalog.Category
		result := m.db.Where("slug = ?", children[i].Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&children[i]).Error; err != nil {
				return err
			}
			log.Printf("✅ Created category: %s", children[i].Name)
		} else {
			log.Printf("⏭️ Category already exists: %s", existing.Name)
		}
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), 10)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		adminUser := user.User{
			Email:         "admin@example.com",
			Password:      string(hashedPassword),
			FirstName:     "Admin",
			LastName:      "User",
			Role:          user.RoleAdmin,
			IsActive:      true,
			EmailVerified: true,
		}

		if err := m.db.Create(&adminUser).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("✅ Created admin user: admin@example.com (password: admin123)")
	} else {
		log.Printf("⏭️ Admin user already exists with ID: %d", existing.ID)
	}

	return nil
}

func (m *Migration) seedTestUser() error {
	log.Println("👤 Seeding test user...")

	var existing user.User
	result := m.db.Where("email = ?", "test1@example.com").First(&existing)
	if result.Error != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("test123"), 10)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		testUser := user.User{
			Email:         "test1@example.com",
			Password:      string(hashedPassword),
			FirstName:     "Test",
			LastName:      "User",
			Phone:         "+919876543210",
			Role:          user.RoleCustomer,
			IsActive:      true,
			EmailVerified: true,
		}

		if err := m.db.Create(&testUser).Error; err != nil {
			return err
		}

		log.Println("✅ Created test user: test1@example.com (password: test123)")
	} else {
		log.Println("⏭️ Test user already exists")
	}

	return nil
}

// seedTestProducts creates sample products for development
func (m *Migration) seedTestProducts() error {
	log.Println("🛍️ Seeding test products...")

	var productCount int64
	m.db.Model(&catalog.Product{}).Count(&productCount)
	if productCount >= 3 {
		log.Println("⏭️ Test products already exist")
		return nil
	}

	var laptops, audio catalog.Category
	m.db.Where("slug = ?", "laptops").First(&laptops)
	m.db.Where("slug = ?", "audio").First(&audio)

	testProducts := []catalog.Product{
		{
			SKU:           "DEV-001",
			Name:          "Premium Gaming Laptop",
			Slug:          "premium-gaming-laptop",
			Description:   "High-performance gaming laptop with dedicated graphics and premium build quality.",
			Price:         12999900, // ₹1,29,999
			ComparePrice:  14999900, // ₹1,49,999
			CategoryID:    laptops.ID,
			IsActive:      true,
			IsFeatured:    true,
			TrackQuantity: true,
			Quantity:      25,
			Tags:          "gaming,laptop,computer,electronics",
		},
		{
			SKU:           "DEV-002",
			Name:          "Wireless Gaming Mouse",
			Slug:          "wireless-gaming-mouse",
			Description:   "Ergonomic wireless gaming mouse with high-precision sensor and RGB lighting.",
			Price:         299900, // ₹2,999
			ComparePrice:  399900, // ₹3,999
			CategoryID:    laptops.ID,
			IsActive:      true,
			TrackQuantity: true,
			Quantity:      50,
			Tags:          "gaming,mouse,wireless,accessories",
		},
		{
			SKU:           "DEV-003",
			Name:          "Bluetooth Noise-Cancelling Headphones",
			Slug:          "bluetooth-noise-cancelling-headphones",
			Description:   "Premium wireless headphones with active noise cancellation and long battery life.",
			Price:         799900, // ₹7,999
			ComparePrice:  999900, // ₹9,999
			CategoryID:    audio.ID,
			IsActive:      true,
			IsFeatured:    true,
			TrackQuantity: true,
			Quantity:      30,
			Tags:          "headphones,bluetooth,audio,noise-cancelling",
		},
	}

	for _, prod := range testProducts {
		var existing catalog.Product
		result := m.db.Where("sku = ?", prod.SKU).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&prod).Error; err != nil {
				log.Printf("⚠️ Failed to create test product %s: %v", prod.SKU, err)
			} else {
				log.Printf("✅ Created test product: %s", prod.Name)
			}
		} else {
			log.Printf("⏭️ Product already exists: %s", prod.Name)
		}
	}

	return nil
}

// seedTestDiscounts creates a sample automatic discount and a coupon so
// storefront pricing has something to resolve in development
func (m *Migration) seedTestDiscounts() error {
	log.Println("💸 Seeding test discounts...")

	var admin user.User
	if err := m.db.Where("email = ?", "admin@example.com").First(&admin).Error; err != nil {
		log.Println("⚠️ No admin user found, skipping discount seed")
		return nil
	}

	now := time.Now().UTC()
	end := now.AddDate(1, 0, 0)

	var existingDiscount discount.Discount
	result := m.db.Where("name = ?", "Electronics Launch Offer").First(&existingDiscount)
	if result.Error != nil {
		var electronics catalog.Category
		m.db.Where("slug = ?", "electronics").First(&electronics)

		d := discount.Discount{
			Name:                  "Electronics Launch Offer",
			Description:           "10% off across electronics",
			IsActive:              true,
			IsAutomatic:           true,
			ShowOnStorefront:      true,
			CanCombine:            true,
			CanCombineWithCoupons: true,
			StartDate:             now,
			EndDate:               end,
			CreatedBy:             admin.ID,
			Rules: []discount.Rule{
				{Type: discount.RulePercentage, Value: 10},
			},
			Scope: []discount.ScopeEntry{
				{Kind: discount.ScopeApplicableCategory, TargetID: electronics.ID},
			},
		}
		if err := m.db.Create(&d).Error; err != nil {
			log.Printf("⚠️ Failed to create test discount: %v", err)
		} else {
			log.Printf("✅ Created test discount: %s", d.Name)
		}
	} else {
		log.Println("⏭️ Test discount already exists")
	}

	var existingCoupon coupon.Coupon
	result = m.db.Where("code = ?", "WELCOME100").First(&existingCoupon)
	if result.Error != nil {
		c := coupon.Coupon{
			Code:          "WELCOME100",
			Description:   "₹100 off your first order over ₹999",
			Type:          coupon.TypeFixed,
			Value:         10000, // ₹100
			MinimumAmount: 99900, // ₹999
			UserLimit:     1,
			StartDate:     now,
			EndDate:       end,
			IsActive:      true,
			CreatedBy:     admin.ID,
		}
		if err := m.db.Create(&c).Error; err != nil {
			log.Printf("⚠️ Failed to create test coupon: %v", err)
		} else {
			log.Printf("✅ Created test coupon: %s", c.Code)
		}
	} else {
		log.Println("⏭️ Test coupon already exists")
	}

	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Define tables in reverse dependency order
	tables := []string{
		"coupon_usages",
		"coupon_scope_entries",
		"coupons",
		"discount_usages",
		"discount_scope_entries",
		"discount_bundle_items",
		"discount_bulk_tiers",
		"discount_rules",
		"discounts",
		"cart_items",
		"products",
		"categories",
		"addresses",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}

// CleanupTestData removes test data (useful for production setup)
func (m *Migration) CleanupTestData() error {
	log.Println("🧹 Cleaning up test data...")

	result := m.db.Where("sku LIKE ?", "DEV-%").Delete(&catalog.Product{})
	log.Printf("🗑️ Removed %d test products", result.RowsAffected)

	result = m.db.Where("email = ? AND role <> ?", "test1@example.com", user.RoleAdmin).Delete(&user.User{})
	log.Printf("🗑️ Removed %d test users", result.RowsAffected)

	log.Println("✅ Test data cleanup completed")
	return nil
}
