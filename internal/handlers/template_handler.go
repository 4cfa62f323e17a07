package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slidecraft/slidecraft-backend/internal/middleware"
	"github.com/slidecraft/slidecraft-backend/internal/models"
	"github.com/slidecraft/slidecraft-backend/internal/services"
)

type TemplateHandler struct {
	layoutService *services.LayoutService
}

func NewTemplateHandler(layoutService *services.LayoutService) *TemplateHandler {
	return &TemplateHandler{layoutService: layoutService}
}

// SaveTemplate godoc
// @Summary Store a custom layout group
// @Description The stored template is addressable as "custom-<id>" wherever a template name is accepted
// @Tags templates
// @Accept json
// @Produce json
// @Param request body models.Template true "Template"
// @Success 200 {object} models.Template
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/templates [post]
func (h *TemplateHandler) SaveTemplate(c *gin.Context) {
	var template models.Template
	if err := c.ShouldBindJSON(&template); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	saved, err := h.layoutService.SaveTemplate(middleware.CurrentUserID(c), &template)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// ListCustomTemplates godoc
// @Summary List stored custom templates
// @Tags templates
// @Produce json
// @Success 200 {array} models.Template
// @Router /api/v1/templates/custom [get]
func (h *TemplateHandler) ListCustomTemplates(c *gin.Context) {
	templates, err := h.layoutService.ListTemplates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get templates", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, templates)
}

// DeleteTemplate godoc
// @Summary Delete a custom template
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	if err := h.layoutService.DeleteTemplate(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}
