// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/discount"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires every service and handler under the API group. The
// pricing engine is shared: products, carts, and coupons all price
// through the same instance.
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	// Services
	userService := user.NewService(db, cfg)
	adminService := user.NewAdminService(db, cfg)
	addressService := user.NewAddressService(db, cfg)
	catalogService := catalog.NewService(db, cfg)
	categoryService := catalog.NewCategoryService(db, cfg)
	discountService := discount.NewService(db, cfg)

	engine := pricing.NewEngine(discountService, categoryService.Resolver())
	couponService := coupon.NewService(db, cfg, engine)
	cartService := cart.NewService(db, redisClient, cfg, engine, userService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, cartService, cfg)
	addressHandler := handlers.NewAddressHandler(addressService, cfg)
	userAdminHandler := handlers.NewUserAdminHandler(adminService, cfg)
	productHandler := handlers.NewProductHandler(catalogService, userService, engine, cfg)
	categoryHandler := handlers.NewCategoryHandler(categoryService, cfg)
	cartHandler := handlers.NewCartHandler(cartService, cfg)
	discountHandler := handlers.NewDiscountHandler(discountService, cartService, cfg)
	couponHandler := handlers.NewCouponHandler(couponService, cartService, cfg)

	// Auth routes
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
			protected.PUT("/password", authHandler.ChangePassword)
			protected.GET("/validate", authHandler.ValidateToken)
		}
	}

	// Address routes
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/addresses", addressHandler.GetAddresses)
		users.GET("/addresses/:id", addressHandler.GetAddress)
		users.POST("/addresses", addressHandler.CreateAddress)
		users.PUT("/addresses/:id", addressHandler.UpdateAddress)
		users.DELETE("/addresses/:id", addressHandler.DeleteAddress)
		users.PUT("/addresses/:id/default", addressHandler.SetDefaultAddress)
	}

	// Product routes (optional auth so pricing can personalize)
	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
	}

	// Category routes
	categories := rg.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/tree", categoryHandler.GetCategoryTree)
		categories.GET("/:id", categoryHandler.GetCategory)
	}

	// Cart routes (work for guests and authenticated users)
	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.GET("/count", cartHandler.GetCartItemCount)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.PUT("/items", cartHandler.UpdateCartItem)
		cartGroup.DELETE("/items/:productId", cartHandler.RemoveFromCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
	}
	rg.POST("/cart/merge", middleware.AuthMiddleware(cfg), cartHandler.MergeCart)

	// Storefront promotion routes
	promotions := rg.Group("/promotions")
	promotions.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		promotions.GET("", discountHandler.GetStorefrontDiscounts)
		promotions.POST("/validate", discountHandler.ValidateCode)
	}
	rg.POST("/promotions/apply", middleware.AuthMiddleware(cfg), discountHandler.ApplyCode)

	// Coupon routes
	coupons := rg.Group("/coupons")
	coupons.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		coupons.POST("/validate", couponHandler.ValidateCoupon)
	}
	rg.POST("/coupons/apply", middleware.AuthMiddleware(cfg), couponHandler.ApplyCoupon)

	// Admin routes, gated per capability
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	{
		adminProducts := admin.Group("/products")
		adminProducts.Use(middleware.RequireCapability(user.CapManageProducts))
		{
			adminProducts.GET("", productHandler.AdminGetProducts)
			adminProducts.GET("/:id", productHandler.AdminGetProduct)
			adminProducts.POST("", productHandler.AdminCreateProduct)
			adminProducts.PUT("/:id", productHandler.AdminUpdateProduct)
			adminProducts.DELETE("/:id", productHandler.AdminDeleteProduct)
		}

		adminCategories := admin.Group("/categories")
		adminCategories.Use(middleware.RequireCapability(user.CapManageProducts))
		{
			adminCategories.POST("", categoryHandler.AdminCreateCategory)
			adminCategories.PUT("/:id", categoryHandler.AdminUpdateCategory)
			adminCategories.DELETE("/:id", categoryHandler.AdminDeleteCategory)
		}

		adminDiscounts := admin.Group("/discounts")
		adminDiscounts.Use(middleware.RequireCapability(user.CapManageDiscounts))
		{
			adminDiscounts.GET("", discountHandler.AdminListDiscounts)
			adminDiscounts.GET("/:id", discountHandler.AdminGetDiscount)
			adminDiscounts.POST("", discountHandler.AdminCreateDiscount)
			adminDiscounts.PUT("/:id", discountHandler.AdminUpdateDiscount)
			adminDiscounts.DELETE("/:id", discountHandler.AdminDeleteDiscount)
		}

		adminCoupons := admin.Group("/coupons")
		adminCoupons.Use(middleware.RequireCapability(user.CapManageCoupons))
		{
			adminCoupons.GET("", couponHandler.AdminListCoupons)
			adminCoupons.GET("/:id", couponHandler.AdminGetCoupon)
			adminCoupons.POST("", couponHandler.AdminCreateCoupon)
			adminCoupons.PUT("/:id", couponHandler.AdminUpdateCoupon)
			adminCoupons.DELETE("/:id", couponHandler.AdminDeleteCoupon)
			adminCoupons.GET("/:id/analytics", couponHandler.AdminCouponAnalytics)
		}

		adminUsers := admin.Group("/users")
		adminUsers.Use(middleware.RequireCapability(user.CapManageUsers))
		{
			adminUsers.GET("", userAdminHandler.GetUsers)
			adminUsers.GET("/export", userAdminHandler.ExportUsers)
			adminUsers.GET("/:id", userAdminHandler.GetUser)
			adminUsers.PUT("/:id/status", userAdminHandler.UpdateUserStatus)
			adminUsers.PUT("/:id/role", userAdminHandler.UpdateUserRole)
		}
	}
}
