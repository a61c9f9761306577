// internal/domain/user/admin_service.go
package user

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// AdminService handles admin user management operations
type AdminService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:     db,
		config: cfg,
	}
}

// UserListRequest represents user list query parameters
type UserListRequest struct {
	Page          int    `form:"page,default=1"`
	Limit         int    `form:"limit,default=20"`
	Search        string `form:"search"`
	Status        string `form:"status"` // active, inactive, all
	Role          string `form:"role"`
	SortBy        string `form:"sort_by,default=created_at"`
	SortOrder     string `form:"sort_order,default=desc"`
	EmailVerified *bool  `form:"email_verified"`
}

// UserListResponse represents user list with pagination
type UserListResponse struct {
	Users      []UserWithStats `json:"users"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// UserWithStats represents user with additional statistics
type UserWithStats struct {
	User
	AddressCount int          `json:"address_count"`
	Capabilities []Capability `json:"capabilities"`
}

// UserStatusUpdateRequest represents user status update data
type UserStatusUpdateRequest struct {
	IsActive bool   `json:"is_active"`
	Reason   string `json:"reason,omitempty"`
}

// UserRoleUpdateRequest represents role change data
type UserRoleUpdateRequest struct {
	Role   Role   `json:"role" binding:"required"`
	Reason string `json:"reason,omitempty"`
}

// UserExportRequest represents user export parameters
type UserExportRequest struct {
	Format        string `form:"format,default=csv"` // csv, json
	Status        string `form:"status"`
	Role          string `form:"role"`
	EmailVerified *bool  `form:"email_verified"`
}

var allowedSortColumns = map[string]bool{
	"created_at": true,
	"email":      true,
	"first_name": true,
	"last_name":  true,
	"role":       true,
}

// GetUsers retrieves users with filtering and pagination
func (s *AdminService) GetUsers(ctx context.Context, req *UserListRequest) (*UserListResponse, error) {
	var users []User
	var total int64

	query := s.applyFilters(s.db.WithContext(ctx).Model(&User{}), req.Search, req.Status, req.Role, req.EmailVerified)

	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Dependency("failed to count users", err)
	}

	sortBy := req.SortBy
	if !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}
	orderClause := sortBy
	if req.SortOrder == "desc" {
		orderClause += " DESC"
	} else {
		orderClause += " ASC"
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	err := query.
		Order(orderClause).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Dependency("failed to retrieve users", err)
	}

	usersWithStats := make([]UserWithStats, 0, len(users))
	for _, u := range users {
		u.Password = ""
		var addressCount int64
		s.db.WithContext(ctx).Model(&Address{}).Where("user_id = ?", u.ID).Count(&addressCount)
		usersWithStats = append(usersWithStats, UserWithStats{
			User:         u,
			AddressCount: int(addressCount),
			Capabilities: u.Role.Capabilities(),
		})
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &UserListResponse{
		Users:      usersWithStats,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// GetUser retrieves a single user by ID with stats
func (s *AdminService) GetUser(ctx context.Context, userID uint) (*UserWithStats, error) {
	var u User
	if err := s.db.WithContext(ctx).Preload("Addresses").First(&u, userID).Error; err != nil {
		return nil, apperrors.NotFound("user %d not found", userID)
	}
	u.Password = ""

	return &UserWithStats{
		User:         u,
		AddressCount: len(u.Addresses),
		Capabilities: u.Role.Capabilities(),
	}, nil
}

// UpdateUserStatus updates user active status
func (s *AdminService) UpdateUserStatus(ctx context.Context, userID uint, req *UserStatusUpdateRequest, adminID uint) error {
	var u User
	if err := s.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return apperrors.NotFound("user %d not found", userID)
	}

	if userID == adminID && !req.IsActive {
		return apperrors.Validation("cannot deactivate your own account")
	}

	err := s.db.WithContext(ctx).Model(&u).Updates(map[string]interface{}{
		"is_active":  req.IsActive,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return apperrors.Dependency("failed to update user status", err)
	}
	return nil
}

// UpdateUserRole changes a user's role. The last remaining admin cannot
// be demoted.
func (s *AdminService) UpdateUserRole(ctx context.Context, userID uint, req *UserRoleUpdateRequest, adminID uint) error {
	if !req.Role.IsValid() {
		return apperrors.Validation("unknown role %q", req.Role)
	}

	var u User
	if err := s.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return apperrors.NotFound("user %d not found", userID)
	}

	if u.Role == RoleAdmin && req.Role != RoleAdmin {
		if userID == adminID {
			return apperrors.Validation("cannot remove your own admin role")
		}
		var adminCount int64
		s.db.WithContext(ctx).Model(&User{}).
			Where("role = ? AND id != ?", RoleAdmin, userID).
			Count(&adminCount)
		if adminCount == 0 {
			return apperrors.Validation("at least one admin must remain")
		}
	}

	err := s.db.WithContext(ctx).Model(&u).Updates(map[string]interface{}{
		"role":       req.Role,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return apperrors.Dependency("failed to update user role", err)
	}
	return nil
}

// ExportUsers exports users data
func (s *AdminService) ExportUsers(ctx context.Context, req *UserExportRequest) ([]byte, string, error) {
	query := s.applyFilters(s.db.WithContext(ctx).Model(&User{}), "", req.Status, req.Role, req.EmailVerified)

	var users []User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, "", apperrors.Dependency("failed to retrieve users for export", err)
	}

	switch req.Format {
	case "csv":
		return s.generateCSVExport(users)
	case "json":
		return s.generateJSONExport(users)
	default:
		return nil, "", apperrors.Validation("unsupported export format: %s", req.Format)
	}
}

func (s *AdminService) applyFilters(query *gorm.DB, search, status, role string, emailVerified *bool) *gorm.DB {
	if search != "" {
		searchTerm := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR phone LIKE ?",
			searchTerm, searchTerm, searchTerm, "%"+search+"%",
		)
	}
	switch status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}
	if role != "" && role != "all" {
		query = query.Where("role = ?", role)
	}
	if emailVerified != nil {
		query = query.Where("email_verified = ?", *emailVerified)
	}
	return query
}

// generateCSVExport generates CSV export
func (s *AdminService) generateCSVExport(users []User) ([]byte, string, error) {
	records := [][]string{{
		"ID", "Email", "First Name", "Last Name", "Phone", "Role",
		"Is Active", "Email Verified", "Orders", "Created At", "Last Login",
	}}

	for _, u := range users {
		record := []string{
			strconv.Itoa(int(u.ID)),
			u.Email,
			u.FirstName,
			u.LastName,
			u.Phone,
			string(u.Role),
			strconv.FormatBool(u.IsActive),
			strconv.FormatBool(u.EmailVerified),
			strconv.Itoa(u.OrdersCount),
			u.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if u.LastLoginAt != nil {
			record = append(record, u.LastLoginAt.Format("2006-01-02 15:04:05"))
		} else {
			record = append(record, "Never")
		}
		records = append(records, record)
	}

	var csvData strings.Builder
	writer := csv.NewWriter(&csvData)
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, "", apperrors.Dependency("failed to write CSV record", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", apperrors.Dependency("failed to write CSV", err)
	}

	filename := fmt.Sprintf("users_export_%s.csv", time.Now().Format("2006-01-02_15-04-05"))
	return []byte(csvData.String()), filename, nil
}

// generateJSONExport generates JSON export
func (s *AdminService) generateJSONExport(users []User) ([]byte, string, error) {
	exportData := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		exportData = append(exportData, map[string]interface{}{
			"id":             u.ID,
			"email":          u.Email,
			"first_name":     u.FirstName,
			"last_name":      u.LastName,
			"phone":          u.Phone,
			"role":           u.Role,
			"is_active":      u.IsActive,
			"email_verified": u.EmailVerified,
			"orders_count":   u.OrdersCount,
			"created_at":     u.CreatedAt,
			"last_login_at":  u.LastLoginAt,
		})
	}

	jsonData, err := json.MarshalIndent(map[string]interface{}{
		"exported_at": time.Now(),
		"total_users": len(users),
		"users":       exportData,
	}, "", "  ")
	if err != nil {
		return nil, "", apperrors.Dependency("failed to generate JSON", err)
	}

	filename := fmt.Sprintf("users_export_%s.json", time.Now().Format("2006-01-02_15-04-05"))
	return jsonData, filename, nil
}
