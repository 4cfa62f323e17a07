package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/slidecraft/slidecraft-backend/internal/models"
)

// respondError maps a service error onto its HTTP status. Unclassified errors
// surface as 500 with their message intact.
func respondError(c *gin.Context, err error) {
	apiErr := models.NormalizeError(err)
	c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
}
