package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/slidecraft/slidecraft-backend/internal/services/auth"
)

type AuthMiddleware struct {
	authService *auth.AuthService
}

func NewAuthMiddleware(authService *auth.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// OptionalAuth resolves the caller identity when a bearer token is present
// and lets anonymous requests through. Presentations created anonymously have
// no owner and stay readable by anyone who knows their id; a presented token
// must still be valid. An X-API-Key header is passed through untouched for
// the upstream model calls.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey := c.GetHeader("X-API-Key"); apiKey != "" {
			c.Set("api_key", apiKey)
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := m.authService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests. Used for endpoints that are scoped
// to an owner, like listing presentations or building reports.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("user_id"); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id, or nil for anonymous calls
func CurrentUserID(c *gin.Context) *string {
	if value, exists := c.Get("user_id"); exists {
		if userID, ok := value.(string); ok {
			return &userID
		}
	}
	return nil
}

// CurrentAPIKey returns the upstream model API key forwarded by the caller
func CurrentAPIKey(c *gin.Context) string {
	if value, exists := c.Get("api_key"); exists {
		if apiKey, ok := value.(string); ok {
			return apiKey
		}
	}
	return ""
}
