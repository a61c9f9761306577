// internal/domain/user/service.go
package user

import (
	"context"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Phone           string `json:"phone"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileUpdateRequest represents profile update data; nil fields are
// left untouched. Role and account flags are deliberately absent: those
// change only through the admin surface.
type ProfileUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Avatar    *string `json:"avatar"`
	Bio       *string `json:"bio"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *Service) issueTokens(user *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Dependency("failed to generate access token", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Dependency("failed to generate refresh token", err)
	}

	user.Password = ""
	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

// Register creates a new customer account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, apperrors.Validation("passwords do not match")
	}

	var existingUser User
	result := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		return nil, apperrors.Validation("user with this email already exists")
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Validation("%v", err)
	}

	user := User{
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      RoleCustomer,
		IsActive:  true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperrors.Dependency("failed to create user", err)
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	s.db.WithContext(ctx).Model(&user).Update("last_login_at", now)

	return s.issueTokens(&user)
}

// Login authenticates a user
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	var user User
	result := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", req.Email, true).First(&user)
	if result.Error != nil {
		return nil, apperrors.Validation("invalid email or password")
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, apperrors.Validation("invalid email or password")
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	s.db.WithContext(ctx).Model(&user).Update("last_login_at", now)

	return s.issueTokens(&user)
}

// RefreshToken generates new tokens using a refresh token. The role is
// re-read from the user row, so role changes take effect at refresh.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Validation("invalid refresh token")
	}

	var user User
	result := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", claims.UserID, true).First(&user)
	if result.Error != nil {
		return nil, apperrors.NotFound("user not found or inactive")
	}

	return s.issueTokens(&user)
}

// GetProfile gets user profile by ID
func (s *Service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&user)
	if result.Error != nil {
		return nil, apperrors.NotFound("user not found")
	}

	user.Password = ""
	return &user, nil
}

// UpdateProfile applies a partial update to the user's own profile
func (s *Service) UpdateProfile(ctx context.Context, userID uint, req *ProfileUpdateRequest) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&user)
	if result.Error != nil {
		return nil, apperrors.NotFound("user not found")
	}

	updates := make(map[string]interface{})
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, apperrors.Dependency("failed to update profile", err)
		}
	}

	user.Password = ""
	return &user, nil
}

// ChangePassword changes user password after verifying current password
func (s *Service) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	var user User
	result := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&user)
	if result.Error != nil {
		return apperrors.NotFound("user not found")
	}

	if err := s.passwordManager.VerifyPassword(currentPassword, user.Password); err != nil {
		return apperrors.Validation("current password is incorrect")
	}

	hashedPassword, err := s.passwordManager.HashPassword(newPassword)
	if err != nil {
		return apperrors.Validation("%v", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("password", hashedPassword).Error; err != nil {
		return apperrors.Dependency("failed to update password", err)
	}
	return nil
}

// GetUserByEmail retrieves user by email
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		return nil, apperrors.NotFound("user not found")
	}

	user.Password = ""
	return &user, nil
}

// IsFirstTimeCustomer reports whether the user has no completed orders.
// Unknown users count as first-timers; first-order promotions target
// exactly the users the store has no purchase history for.
func (s *Service) IsFirstTimeCustomer(ctx context.Context, userID uint) (bool, error) {
	var user User
	result := s.db.WithContext(ctx).Select("id", "orders_count").Where("id = ?", userID).First(&user)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return true, nil
		}
		return false, apperrors.Dependency("failed to load user", result.Error)
	}
	return user.IsFirstTimeCustomer(), nil
}

// RecordOrder bumps the user's completed-order counter
func (s *Service) RecordOrder(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Update("orders_count", gorm.Expr("orders_count + 1")).Error
	if err != nil {
		return apperrors.Dependency("failed to record order", err)
	}
	return nil
}
