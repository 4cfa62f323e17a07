package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slidecraft/slidecraft-backend/internal/middleware"
	"github.com/slidecraft/slidecraft-backend/internal/models"
	"github.com/slidecraft/slidecraft-backend/internal/services"
)

type WebhookHandler struct {
	webhookService *services.WebhookService
}

func NewWebhookHandler(webhookService *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// Subscribe godoc
// @Summary Subscribe a URL to a generation outcome event
// @Description Deliveries are signed with HMAC-SHA256 in X-Webhook-Signature when a secret is provided
// @Tags webhooks
// @Accept json
// @Produce json
// @Param request body models.SubscribeWebhookRequest true "Subscribe request"
// @Success 200 {object} models.SubscribeWebhookResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/webhook/subscribe [post]
func (h *WebhookHandler) Subscribe(c *gin.Context) {
	var req models.SubscribeWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	subscription, err := h.webhookService.Subscribe(middleware.CurrentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SubscribeWebhookResponse{ID: subscription.ID})
}

// Unsubscribe godoc
// @Summary Remove a webhook subscription
// @Tags webhooks
// @Accept json
// @Produce json
// @Param request body models.UnsubscribeWebhookRequest true "Unsubscribe request"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/webhook/unsubscribe [delete]
func (h *WebhookHandler) Unsubscribe(c *gin.Context) {
	var req models.UnsubscribeWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if err := h.webhookService.Unsubscribe(req.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Webhook subscription removed"})
}
