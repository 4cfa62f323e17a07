package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/slidecraft/slidecraft-backend/internal/middleware"
	"github.com/slidecraft/slidecraft-backend/internal/models"
	"github.com/slidecraft/slidecraft-backend/internal/services"
	"github.com/slidecraft/slidecraft-backend/internal/utils"
)

type PresentationHandler struct {
	presentationService *services.PresentationService
	generationService   *services.GenerationService
	layoutService       *services.LayoutService
}

func NewPresentationHandler(
	presentationService *services.PresentationService,
	generationService *services.GenerationService,
	layoutService *services.LayoutService,
) *PresentationHandler {
	return &PresentationHandler{
		presentationService: presentationService,
		generationService:   generationService,
		layoutService:       layoutService,
	}
}

// CreatePresentation godoc
// @Summary Create a presentation shell
// @Description Create a presentation capturing the generation inputs; outlines and structure are attached by prepare
// @Tags presentations
// @Accept json
// @Produce json
// @Param request body models.CreatePresentationRequest true "Create presentation request"
// @Success 200 {object} models.Presentation
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/presentation/create [post]
func (h *PresentationHandler) CreatePresentation(c *gin.Context) {
	var req models.CreatePresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	presentation, err := h.presentationService.Create(middleware.CurrentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentation)
}

// PreparePresentation godoc
// @Summary Prepare a presentation for streaming
// @Description Attach outlines and a layout, compute the structure and inject table of contents slides
// @Tags presentations
// @Accept json
// @Produce json
// @Param request body models.PreparePresentationRequest true "Prepare presentation request"
// @Success 200 {object} models.Presentation
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/presentation/prepare [post]
func (h *PresentationHandler) PreparePresentation(c *gin.Context) {
	var req models.PreparePresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	presentation, err := h.presentationService.Prepare(c.Request.Context(), middleware.CurrentUserID(c), middleware.CurrentAPIKey(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentation)
}

// StreamPresentation godoc
// @Summary Stream slide generation for a prepared presentation
// @Description Generate slide contents sequentially, emitting the growing slides document as SSE frames
// @Tags presentations
// @Produce text/event-stream
// @Param id path string true "Presentation ID"
// @Success 200 "SSE stream"
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/presentation/stream/{id} [get]
func (h *PresentationHandler) StreamPresentation(c *gin.Context) {
	id := c.Param("id")

	// Set headers for SSE
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable buffering for nginx

	send := func(frame []byte) error {
		if _, err := c.Writer.Write(frame); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	err := h.generationService.Stream(c.Request.Context(), middleware.CurrentUserID(c), middleware.CurrentAPIKey(c), id, send)
	if err != nil {
		if apiErr := models.NormalizeError(err); apiErr.StatusCode < 500 {
			// Validation failed before any frame went out
			c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
			return
		}
		logrus.Errorf("Presentation stream %s aborted: %v", id, err)
	}
}

// GetPresentation godoc
// @Summary Get a presentation with its slides
// @Tags presentations
// @Produce json
// @Param id path string true "Presentation ID"
// @Success 200 {object} models.PresentationWithSlides
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/presentation/{id} [get]
func (h *PresentationHandler) GetPresentation(c *gin.Context) {
	presentation, err := h.presentationService.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentation)
}

// ListPresentations godoc
// @Summary List the authenticated user's presentations
// @Tags presentations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/presentation/all [get]
func (h *PresentationHandler) ListPresentations(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	page, pageSize := utils.ParsePaginationFromQuery(c.Query("page"), c.Query("page_size"))

	presentations, pagination, err := h.presentationService.List(userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get presentations", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"presentations": presentations,
		"pagination":    pagination,
	})
}

// UpdatePresentation godoc
// @Summary Patch a presentation's title, slide count or slide set
// @Tags presentations
// @Accept json
// @Produce json
// @Param request body models.UpdatePresentationRequest true "Update presentation request"
// @Success 200 {object} models.PresentationWithSlides
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/presentation/update [patch]
func (h *PresentationHandler) UpdatePresentation(c *gin.Context) {
	var req models.UpdatePresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	presentation, err := h.presentationService.Update(middleware.CurrentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presentation)
}

// DeletePresentation godoc
// @Summary Delete a presentation and its slides
// @Tags presentations
// @Produce json
// @Param id path string true "Presentation ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/presentation/{id} [delete]
func (h *PresentationHandler) DeletePresentation(c *gin.Context) {
	if err := h.presentationService.Delete(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Presentation deleted successfully"})
}

// GeneratePresentation godoc
// @Summary Generate a presentation synchronously
// @Description Run the full pipeline and return the export path when done
// @Tags presentations
// @Accept json
// @Produce json
// @Param request body models.GeneratePresentationRequest true "Generate presentation request"
// @Success 200 {object} models.PathAndEditPath
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/presentation/generate [post]
func (h *PresentationHandler) GeneratePresentation(c *gin.Context) {
	var req models.GeneratePresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	response, err := h.generationService.Generate(c.Request.Context(), middleware.CurrentUserID(c), middleware.CurrentAPIKey(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GeneratePresentationAsync godoc
// @Summary Submit a background generation run
// @Description Validate the request, record a pollable task and run the pipeline in the background
// @Tags presentations
// @Accept json
// @Produce json
// @Param request body models.GeneratePresentationRequest true "Generate presentation request"
// @Success 200 {object} models.GenerationTask
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/presentation/generate/async [post]
func (h *PresentationHandler) GeneratePresentationAsync(c *gin.Context) {
	var req models.GeneratePresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	task, err := h.generationService.SubmitAsync(middleware.CurrentUserID(c), middleware.CurrentAPIKey(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// EditPresentation godoc
// @Summary Apply partial slide edits in place
// @Description Merge content overrides into the matching slides and re-export the deck
// @Tags presentations
// @Accept json
// @Produce json
// @Param request body models.EditPresentationRequest true "Edit presentation request"
// @Success 200 {object} models.PathAndEditPath
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/presentation/edit [post]
func (h *PresentationHandler) EditPresentation(c *gin.Context) {
	var req models.EditPresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	response, err := h.presentationService.Edit(c.Request.Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// DerivePresentation godoc
// @Summary Derive a new presentation from an existing one
// @Description Copy the deck under fresh identities, applying the given content overrides to the copy
// @Tags presentations
// @Accept json
// @Produce json
// @Param request body models.EditPresentationRequest true "Derive presentation request"
// @Success 200 {object} models.PathAndEditPath
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/presentation/derive [post]
func (h *PresentationHandler) DerivePresentation(c *gin.Context) {
	var req models.EditPresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	response, err := h.presentationService.Derive(c.Request.Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// ExportPresentation godoc
// @Summary Re-export a committed presentation
// @Tags presentations
// @Accept json
// @Produce json
// @Param request body models.ExportPresentationRequest true "Export presentation request"
// @Success 200 {object} models.PathAndEditPath
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/presentation/export [post]
func (h *PresentationHandler) ExportPresentation(c *gin.Context) {
	var req models.ExportPresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	response, err := h.presentationService.Export(c.Request.Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// ListTemplates godoc
// @Summary List the built-in template names
// @Tags templates
// @Produce json
// @Success 200 {array} string
// @Router /api/v1/templates [get]
func (h *PresentationHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": services.BuiltinTemplateNames()})
}

// GetLayout godoc
// @Summary Get the layout group for a template name
// @Tags templates
// @Produce json
// @Param name path string true "Template name"
// @Success 200 {object} models.PresentationLayout
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/templates/{name} [get]
func (h *PresentationHandler) GetLayout(c *gin.Context) {
	layout, err := h.layoutService.GetLayoutByName(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, layout)
}
