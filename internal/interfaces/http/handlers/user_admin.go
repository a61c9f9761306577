// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// UserAdminHandler handles admin user management endpoints
type UserAdminHandler struct {
	adminService *user.AdminService
	config       *config.Config
}

// NewUserAdminHandler creates a new admin user handler
func NewUserAdminHandler(adminService *user.AdminService, cfg *config.Config) *UserAdminHandler {
	return &UserAdminHandler{
		adminService: adminService,
		config:       cfg,
	}
}

// GetUsers lists users with filtering and pagination
func (h *UserAdminHandler) GetUsers(c *gin.Context) {
	var req user.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.adminService.GetUsers(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// GetUser returns a single user with stats
func (h *UserAdminHandler) GetUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	response, err := h.adminService.GetUser(c.Request.Context(), uint(userID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// UpdateUserStatus activates or deactivates a user account
func (h *UserAdminHandler) UpdateUserStatus(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req user.UserStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	adminID, _ := middleware.GetUserIDFromContext(c)
	if err := h.adminService.UpdateUserStatus(c.Request.Context(), uint(userID), &req, adminID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User status updated",
	})
}

// UpdateUserRole changes a user's role
func (h *UserAdminHandler) UpdateUserRole(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req user.UserRoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	adminID, _ := middleware.GetUserIDFromContext(c)
	if err := h.adminService.UpdateUserRole(c.Request.Context(), uint(userID), &req, adminID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User role updated",
	})
}

// ExportUsers streams a CSV or JSON export of the user base
func (h *UserAdminHandler) ExportUsers(c *gin.Context) {
	var req user.UserExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	data, filename, err := h.adminService.ExportUsers(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	contentType := "text/csv"
	if req.Format == "json" {
		contentType = "application/json"
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
