package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slidecraft/slidecraft-backend/internal/middleware"
	"github.com/slidecraft/slidecraft-backend/internal/services"
)

type AssetHandler struct {
	assetService *services.AssetService
}

func NewAssetHandler(assetService *services.AssetService) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

// GenerateImage godoc
// @Summary Generate a standalone image from a prompt
// @Description The resulting asset is recorded against the caller when a session is present
// @Tags images
// @Produce json
// @Param prompt query string true "Image prompt"
// @Success 200 {object} models.Asset
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/images/generate [get]
func (h *AssetHandler) GenerateImage(c *gin.Context) {
	asset, err := h.assetService.Generate(
		c.Request.Context(),
		middleware.CurrentUserID(c),
		c.Query("prompt"),
		middleware.CurrentAPIKey(c),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// ListGeneratedImages godoc
// @Summary List the authenticated user's generated images
// @Tags images
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Asset
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/images/generated [get]
func (h *AssetHandler) ListGeneratedImages(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	assets, err := h.assetService.ListGenerated(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get assets", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, assets)
}

// DeleteImage godoc
// @Summary Delete one of the authenticated user's image assets
// @Tags images
// @Produce json
// @Security BearerAuth
// @Param id path string true "Asset ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/images/{id} [delete]
func (h *AssetHandler) DeleteImage(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	if err := h.assetService.Delete(userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Asset deleted"})
}
