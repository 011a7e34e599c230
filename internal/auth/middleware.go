package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rolechat/internal/history"
)

const (
	userIDContextKey = "auth_user_id"
	scopeContextKey  = "auth_scope"
	tokenContextKey  = "auth_token"
)

// Middleware validates bearer tokens and stores the authenticated user
// and its history scope in the context. Requests without a usable token
// are rejected before any provider work happens.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authToken := extractBearer(c)
		if authToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		userID, username, err := s.ValidateToken(c.Request.Context(), authToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(userIDContextKey, userID)
		c.Set(scopeContextKey, history.SanitizeScope(username))
		c.Set(tokenContextKey, authToken)
		c.Next()
	}
}

// GlobalScopeMiddleware maps every request to the shared global scope.
// Used when authentication is disabled.
func GlobalScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(scopeContextKey, history.GlobalScope)
		c.Next()
	}
}

// ScopeFromContext retrieves the history scope resolved for the request.
func ScopeFromContext(c *gin.Context) (string, bool) {
	val, ok := c.Get(scopeContextKey)
	if !ok {
		return "", false
	}
	scope, ok := val.(string)
	return scope, ok && scope != ""
}

// UserIDFromContext retrieves the authenticated user id from the gin context.
func UserIDFromContext(c *gin.Context) (int64, bool) {
	val, ok := c.Get(userIDContextKey)
	if !ok {
		return 0, false
	}
	userID, ok := val.(int64)
	return userID, ok
}

// TokenFromContext retrieves the bearer token captured by the middleware.
func TokenFromContext(c *gin.Context) (string, bool) {
	val, ok := c.Get(tokenContextKey)
	if !ok {
		return "", false
	}
	token, ok := val.(string)
	return token, ok
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
