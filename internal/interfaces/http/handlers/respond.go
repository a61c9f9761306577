// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/your-org/storefront-backend/internal/pkg/errors"
)

// respondError maps a domain error onto an HTTP status. Unknown errors
// are reported as internal without leaking their message.
func respondError(c *gin.Context, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.KindLimitExceeded:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperrors.KindDependency:
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream dependency failed"})
	case apperrors.KindDataIntegrity:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "data integrity error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}
