package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/slidecraft/slidecraft-backend/internal/services/auth"
)

type AuthHandler struct {
	authService *auth.AuthService
}

func NewAuthHandler(authService *auth.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type createSessionRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// CreateSession godoc
// @Summary Open a session and get a bearer token
// @Description Issues an access token for the given user id, or mints a fresh anonymous identity when none is provided
// @Tags auth
// @Accept json
// @Produce json
// @Param request body createSessionRequest false "Session request"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/auth/session [post]
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	// Empty bodies are fine, an identity is minted on demand
	_ = c.ShouldBindJSON(&req)

	userID := req.UserID
	if userID == "" {
		userID = uuid.NewString()
	}

	token, err := h.authService.IssueToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user_id": userID,
	})
}

// DeleteSession godoc
// @Summary Revoke the presented bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/auth/session [delete]
func (h *AuthHandler) DeleteSession(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		h.authService.RevokeToken(strings.TrimPrefix(authHeader, "Bearer "))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session closed"})
}
