// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

const guestCartKeyFormat = "cart:session:%s"

// CustomerDirectory answers the shopper questions pricing needs.
type CustomerDirectory interface {
	IsFirstTimeCustomer(ctx context.Context, userID uint) (bool, error)
}

// Service handles cart business logic. Authenticated carts live in
// postgres; guest carts live in redis keyed by session and expire after
// the configured TTL.
type Service struct {
	db        *gorm.DB
	redis     *redis.Client
	config    *config.Config
	engine    *pricing.Engine
	customers CustomerDirectory
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, engine *pricing.Engine, customers CustomerDirectory) *Service {
	return &Service{
		db:        db,
		redis:     redisClient,
		config:    cfg,
		engine:    engine,
		customers: customers,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID  uint   `json:"product_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	Attributes string `json:"attributes"`
}

// UpdateCartItemRequest represents update cart item request. Quantity 0
// removes the line.
type UpdateCartItemRequest struct {
	ProductID  uint   `json:"product_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"min=0"`
	Attributes string `json:"attributes"`
}

// CartLine is a cart item with its product loaded and line total computed
type CartLine struct {
	ProductID  uint             `json:"product_id"`
	Product    *catalog.Product `json:"product,omitempty"`
	Attributes string           `json:"attributes,omitempty"`
	Quantity   int              `json:"quantity"`
	Price      int64            `json:"price"`
	LineTotal  int64            `json:"line_total"`
}

// CartResponse represents the priced cart returned to clients
type CartResponse struct {
	Items        []CartLine `json:"items"`
	Totals       CartTotals `json:"totals"`
	DiscountCode string     `json:"discount_code,omitempty"`
}

// GetCart retrieves the cart for a user or guest session, priced under
// the active discounts plus the optional discount code.
func (s *Service) GetCart(ctx context.Context, userID *uint, sessionID string, code string) (*CartResponse, error) {
	lines, err := s.loadLines(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.priceLines(ctx, lines, userID, code)
}

// AddToCart adds an item to the cart after checking stock
func (s *Service) AddToCart(ctx context.Context, userID *uint, sessionID string, req *AddToCartRequest) (*CartResponse, error) {
	product, err := s.loadSellableProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if userID != nil {
		err = s.addToUserCart(ctx, *userID, product, req)
	} else {
		err = s.addToGuestCart(ctx, sessionID, product, req)
	}
	if err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID, sessionID, "")
}

// UpdateCartItem changes the quantity of a cart line. Quantity 0 removes it.
func (s *Service) UpdateCartItem(ctx context.Context, userID *uint, sessionID string, req *UpdateCartItemRequest) (*CartResponse, error) {
	if req.Quantity == 0 {
		return s.RemoveFromCart(ctx, userID, sessionID, req.ProductID, req.Attributes)
	}

	product, err := s.loadSellableProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.TrackQuantity && req.Quantity > product.Quantity {
		return nil, apperrors.Validation("only %d units of %s available", product.Quantity, product.Name)
	}

	if userID != nil {
		result := s.db.WithContext(ctx).Model(&CartItem{}).
			Where("user_id = ? AND product_id = ? AND attributes = ?", *userID, req.ProductID, req.Attributes).
			Update("quantity", req.Quantity)
		if result.Error != nil {
			return nil, apperrors.Dependency("failed to update cart item", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.NotFound("item not in cart")
		}
	} else {
		sessionCart, err := s.getGuestCart(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		found := false
		for i := range sessionCart.Items {
			if sessionCart.Items[i].ProductID == req.ProductID && sessionCart.Items[i].Attributes == req.Attributes {
				sessionCart.Items[i].Quantity = req.Quantity
				found = true
				break
			}
		}
		if !found {
			return nil, apperrors.NotFound("item not in cart")
		}
		if err := s.saveGuestCart(ctx, sessionCart); err != nil {
			return nil, err
		}
	}

	return s.GetCart(ctx, userID, sessionID, "")
}

// RemoveFromCart removes a line from the cart
func (s *Service) RemoveFromCart(ctx context.Context, userID *uint, sessionID string, productID uint, attributes string) (*CartResponse, error) {
	if userID != nil {
		result := s.db.WithContext(ctx).
			Where("user_id = ? AND product_id = ? AND attributes = ?", *userID, productID, attributes).
			Delete(&CartItem{})
		if result.Error != nil {
			return nil, apperrors.Dependency("failed to remove cart item", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.NotFound("item not in cart")
		}
	} else {
		sessionCart, err := s.getGuestCart(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		kept := sessionCart.Items[:0]
		removed := false
		for _, item := range sessionCart.Items {
			if item.ProductID == productID && item.Attributes == attributes {
				removed = true
				continue
			}
			kept = append(kept, item)
		}
		if !removed {
			return nil, apperrors.NotFound("item not in cart")
		}
		sessionCart.Items = kept
		if err := s.saveGuestCart(ctx, sessionCart); err != nil {
			return nil, err
		}
	}

	return s.GetCart(ctx, userID, sessionID, "")
}

// ClearCart removes all items from the cart
func (s *Service) ClearCart(ctx context.Context, userID *uint, sessionID string) error {
	if userID != nil {
		if err := s.db.WithContext(ctx).Where("user_id = ?", *userID).Delete(&CartItem{}).Error; err != nil {
			return apperrors.Dependency("failed to clear cart", err)
		}
		return nil
	}

	key := fmt.Sprintf(guestCartKeyFormat, sessionID)
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return apperrors.Dependency("failed to clear guest cart", err)
	}
	return nil
}

// GetCartItemCount returns the total quantity across cart lines
func (s *Service) GetCartItemCount(ctx context.Context, userID *uint, sessionID string) (int, error) {
	if userID != nil {
		var count int64
		err := s.db.WithContext(ctx).Model(&CartItem{}).
			Where("user_id = ?", *userID).
			Select("COALESCE(SUM(quantity), 0)").
			Scan(&count).Error
		if err != nil {
			return 0, apperrors.Dependency("failed to count cart items", err)
		}
		return int(count), nil
	}

	sessionCart, err := s.getGuestCart(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, item := range sessionCart.Items {
		count += item.Quantity
	}
	return count, nil
}

// MergeGuestCartToUser moves a guest session cart into the user's cart at
// login. Quantities merge line by line; the session cart is deleted after.
func (s *Service) MergeGuestCartToUser(ctx context.Context, sessionID string, userID uint) error {
	sessionCart, err := s.getGuestCart(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(sessionCart.Items) == 0 {
		return nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range sessionCart.Items {
			var existing CartItem
			result := tx.Where("user_id = ? AND product_id = ? AND attributes = ?",
				userID, item.ProductID, item.Attributes).First(&existing)
			if result.Error == nil {
				if err := tx.Model(&existing).
					Update("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error; err != nil {
					return err
				}
				continue
			}
			if result.Error != gorm.ErrRecordNotFound {
				return result.Error
			}
			newItem := CartItem{
				UserID:     userID,
				ProductID:  item.ProductID,
				Attributes: item.Attributes,
				Quantity:   item.Quantity,
				Price:      item.Price,
			}
			if err := tx.Create(&newItem).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Dependency("failed to merge guest cart", err)
	}

	key := fmt.Sprintf(guestCartKeyFormat, sessionID)
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return apperrors.Dependency("failed to delete guest cart", err)
	}
	return nil
}

func (s *Service) loadSellableProduct(ctx context.Context, productID uint) (*catalog.Product, error) {
	var product catalog.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product %d not found", productID)
		}
		return nil, apperrors.Dependency("failed to load product", err)
	}
	if !product.IsActive {
		return nil, apperrors.Validation("product %s is not available", product.Name)
	}
	if !product.IsInStock() {
		return nil, apperrors.Validation("product %s is out of stock", product.Name)
	}
	return &product, nil
}

func (s *Service) addToUserCart(ctx context.Context, userID uint, product *catalog.Product, req *AddToCartRequest) error {
	var existing CartItem
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND attributes = ?", userID, req.ProductID, req.Attributes).
		First(&existing)

	newQuantity := req.Quantity
	if result.Error == nil {
		newQuantity += existing.Quantity
	} else if result.Error != gorm.ErrRecordNotFound {
		return apperrors.Dependency("failed to load cart item", result.Error)
	}

	if product.TrackQuantity && newQuantity > product.Quantity {
		return apperrors.Validation("only %d units of %s available", product.Quantity, product.Name)
	}

	if result.Error == nil {
		if err := s.db.WithContext(ctx).Model(&existing).Update("quantity", newQuantity).Error; err != nil {
			return apperrors.Dependency("failed to update cart item", err)
		}
		return nil
	}

	item := CartItem{
		UserID:     userID,
		ProductID:  req.ProductID,
		Attributes: req.Attributes,
		Quantity:   req.Quantity,
		Price:      product.Price,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return apperrors.Dependency("failed to add cart item", err)
	}
	return nil
}

func (s *Service) addToGuestCart(ctx context.Context, sessionID string, product *catalog.Product, req *AddToCartRequest) error {
	sessionCart, err := s.getGuestCart(ctx, sessionID)
	if err != nil {
		return err
	}

	newQuantity := req.Quantity
	index := -1
	for i := range sessionCart.Items {
		if sessionCart.Items[i].ProductID == req.ProductID && sessionCart.Items[i].Attributes == req.Attributes {
			newQuantity += sessionCart.Items[i].Quantity
			index = i
			break
		}
	}

	if product.TrackQuantity && newQuantity > product.Quantity {
		return apperrors.Validation("only %d units of %s available", product.Quantity, product.Name)
	}

	if index >= 0 {
		sessionCart.Items[index].Quantity = newQuantity
	} else {
		sessionCart.Items = append(sessionCart.Items, SessionCartItem{
			ProductID:  req.ProductID,
			Attributes: req.Attributes,
			Quantity:   req.Quantity,
			Price:      product.Price,
			AddedAt:    time.Now().UTC(),
		})
	}

	return s.saveGuestCart(ctx, sessionCart)
}

// getGuestCart loads a guest cart from redis; a missing key means an
// empty cart, not an error.
func (s *Service) getGuestCart(ctx context.Context, sessionID string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, apperrors.Validation("session id is required for guest carts")
	}

	key := fmt.Sprintf(guestCartKeyFormat, sessionID)
	data, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		now := time.Now().UTC()
		return &SessionCart{SessionID: sessionID, Items: []SessionCartItem{}, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, apperrors.Dependency("failed to load guest cart", err)
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(data), &sessionCart); err != nil {
		return nil, apperrors.DataIntegrity("guest cart %s is corrupted", sessionID)
	}
	return &sessionCart, nil
}

func (s *Service) saveGuestCart(ctx context.Context, sessionCart *SessionCart) error {
	sessionCart.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(sessionCart)
	if err != nil {
		return apperrors.Dependency("failed to encode guest cart", err)
	}

	key := fmt.Sprintf(guestCartKeyFormat, sessionCart.SessionID)
	ttl := s.config.Pricing.GuestCartTTL
	if err := s.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		return apperrors.Dependency("failed to save guest cart", err)
	}
	return nil
}

// loadLines materializes cart lines with current product rows attached
func (s *Service) loadLines(ctx context.Context, userID *uint, sessionID string) ([]CartLine, error) {
	var lines []CartLine

	if userID != nil {
		var items []CartItem
		err := s.db.WithContext(ctx).
			Where("user_id = ?", *userID).
			Order("created_at ASC").
			Find(&items).Error
		if err != nil {
			return nil, apperrors.Dependency("failed to load cart", err)
		}
		for _, item := range items {
			lines = append(lines, CartLine{
				ProductID:  item.ProductID,
				Attributes: item.Attributes,
				Quantity:   item.Quantity,
				Price:      item.Price,
			})
		}
	} else {
		sessionCart, err := s.getGuestCart(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		for _, item := range sessionCart.Items {
			lines = append(lines, CartLine{
				ProductID:  item.ProductID,
				Attributes: item.Attributes,
				Quantity:   item.Quantity,
				Price:      item.Price,
			})
		}
	}

	if len(lines) == 0 {
		return lines, nil
	}

	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	var products []catalog.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, apperrors.Dependency("failed to load cart products", err)
	}
	byID := make(map[uint]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for i := range lines {
		product := byID[lines[i].ProductID]
		if product == nil {
			continue
		}
		lines[i].Product = product
		// Charge the current price, not the price at time of adding.
		lines[i].Price = product.Price
		lines[i].LineTotal = product.Price * int64(lines[i].Quantity)
	}
	return lines, nil
}

// priceLines runs the cart through the pricing engine and assembles totals
func (s *Service) priceLines(ctx context.Context, lines []CartLine, userID *uint, code string) (*CartResponse, error) {
	response := &CartResponse{Items: lines, DiscountCode: code}
	if len(lines) == 0 {
		response.Items = []CartLine{}
		response.Totals.Formatted = pricing.Formatted{
			MRP:          pricing.FormatINR(0),
			SellingPrice: pricing.FormatINR(0),
			Savings:      pricing.FormatINR(0),
		}
		return response, nil
	}

	items := make([]pricing.Item, 0, len(lines))
	totalQuantity := 0
	for _, line := range lines {
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
		totalQuantity += line.Quantity
	}

	var user *pricing.UserContext
	if userID != nil {
		firstTimer, err := s.customers.IsFirstTimeCustomer(ctx, *userID)
		if err != nil {
			return nil, err
		}
		user = &pricing.UserContext{UserID: *userID, IsFirstTimeCustomer: firstTimer}
	}

	breakdown, err := s.engine.PriceCart(ctx, items, user, code)
	if err != nil {
		return nil, err
	}

	response.Totals = CartTotals{
		ItemCount:        len(lines),
		TotalQuantity:    totalQuantity,
		SubTotal:         breakdown.OriginalTotal,
		DiscountAmount:   breakdown.TotalDiscount,
		TotalAmount:      breakdown.DiscountedTotal,
		FreeShipping:     breakdown.FreeShipping,
		AppliedDiscounts: breakdown.AppliedDiscounts,
		Formatted:        breakdown.Formatted,
	}
	return response, nil
}
