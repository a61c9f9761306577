// internal/domain/user/address_service.go
package user

import (
	"context"
	"strings"

	"github.com/your-org/storefront-backend/internal/config"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// AddressService handles address business logic
type AddressService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAddressService creates a new address service
func NewAddressService(db *gorm.DB, cfg *config.Config) *AddressService {
	return &AddressService{
		db:     db,
		config: cfg,
	}
}

// CreateAddressRequest represents address creation data
type CreateAddressRequest struct {
	Type         string `json:"type" binding:"required,oneof=shipping billing"`
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	Company      string `json:"company"`
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	PostalCode   string `json:"postal_code" binding:"required"`
	Country      string `json:"country" binding:"required,len=2"` // ISO 2-letter code
	Phone        string `json:"phone"`
	IsDefault    bool   `json:"is_default"`
}

// UpdateAddressRequest represents address update data; nil fields are
// left untouched.
type UpdateAddressRequest struct {
	Type         *string `json:"type" binding:"omitempty,oneof=shipping billing"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Company      *string `json:"company"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postal_code"`
	Country      *string `json:"country" binding:"omitempty,len=2"`
	Phone        *string `json:"phone"`
	IsDefault    *bool   `json:"is_default"`
}

// GetUserAddresses retrieves all addresses for a user
func (s *AddressService) GetUserAddresses(ctx context.Context, userID uint, addressType string) ([]Address, error) {
	var addresses []Address

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if addressType != "" {
		query = query.Where("type = ?", addressType)
	}

	if err := query.Order("is_default DESC, created_at DESC").Find(&addresses).Error; err != nil {
		return nil, apperrors.Dependency("failed to retrieve addresses", err)
	}
	return addresses, nil
}

// GetAddress retrieves a specific address for a user
func (s *AddressService) GetAddress(ctx context.Context, userID, addressID uint) (*Address, error) {
	var address Address
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).First(&address)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("address %d not found", addressID)
		}
		return nil, apperrors.Dependency("failed to retrieve address", result.Error)
	}
	return &address, nil
}

// CreateAddress creates a new address for a user
func (s *AddressService) CreateAddress(ctx context.Context, userID uint, req *CreateAddressRequest) (*Address, error) {
	address := Address{
		UserID:       userID,
		Type:         req.Type,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Company:      req.Company,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      strings.ToUpper(req.Country),
		Phone:        req.Phone,
		IsDefault:    req.IsDefault,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := s.unsetDefaultAddresses(tx, userID, req.Type); err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return nil, apperrors.Dependency("failed to create address", err)
	}
	return &address, nil
}

// UpdateAddress applies a partial update to an existing address
func (s *AddressService) UpdateAddress(ctx context.Context, userID, addressID uint, req *UpdateAddressRequest) (*Address, error) {
	address, err := s.GetAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.AddressLine1 != nil {
		updates["address_line1"] = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		updates["address_line2"] = *req.AddressLine2
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.Country != nil {
		updates["country"] = strings.ToUpper(*req.Country)
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.IsDefault != nil {
		updates["is_default"] = *req.IsDefault
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.IsDefault != nil && *req.IsDefault {
			addressType := address.Type
			if req.Type != nil {
				addressType = *req.Type
			}
			if err := s.unsetDefaultAddresses(tx, userID, addressType); err != nil {
				return err
			}
		}
		return tx.Model(address).Updates(updates).Error
	})
	if err != nil {
		return nil, apperrors.Dependency("failed to update address", err)
	}

	return s.GetAddress(ctx, userID, addressID)
}

// DeleteAddress deletes an address
func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).Delete(&Address{})
	if result.Error != nil {
		return apperrors.Dependency("failed to delete address", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("address %d not found", addressID)
	}
	return nil
}

// SetDefaultAddress sets an address as default for a specific type
func (s *AddressService) SetDefaultAddress(ctx context.Context, userID, addressID uint, addressType string) error {
	if addressType != "shipping" && addressType != "billing" {
		return apperrors.Validation("address type must be 'shipping' or 'billing'")
	}

	address, err := s.GetAddress(ctx, userID, addressID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.unsetDefaultAddresses(tx, userID, addressType); err != nil {
			return err
		}
		return tx.Model(address).Updates(map[string]interface{}{
			"is_default": true,
			"type":       addressType,
		}).Error
	})
	if err != nil {
		return apperrors.Dependency("failed to set default address", err)
	}
	return nil
}

// GetDefaultAddress gets the default address for a user and type
func (s *AddressService) GetDefaultAddress(ctx context.Context, userID uint, addressType string) (*Address, error) {
	var address Address
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND is_default = ?", userID, addressType, true).
		First(&address)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("no default %s address found", addressType)
		}
		return nil, apperrors.Dependency("failed to retrieve default address", result.Error)
	}
	return &address, nil
}

// unsetDefaultAddresses removes default flag from all addresses of a specific type
func (s *AddressService) unsetDefaultAddresses(tx *gorm.DB, userID uint, addressType string) error {
	return tx.Model(&Address{}).
		Where("user_id = ? AND type = ? AND is_default = ?", userID, addressType, true).
		Update("is_default", false).Error
}
