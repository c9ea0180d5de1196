package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the caller's ID in contexts.
const userIDKey = contextKey("userID")

// UserIDHeader is set by the web layer in front of the engine and names the
// authenticated caller.
const UserIDHeader = "X-User-ID"

// CallerMiddleware copies the caller id from the request header into the
// context. Requests without a caller are rejected.
func CallerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			GetLoggerFromContext(c).Warn("Request without caller id rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserIDHeader + " header", "code": "unauthenticated"})
			return
		}
		c.Set(string(userIDKey), userID)
		ctx := context.WithValue(c.Request.Context(), userIDKey, userID)
		c.Request = c.Request.WithContext(WithLogger(ctx, GetLoggerFromContext(c).With(slog.String("user_id", userID))))
		c.Next()
	}
}

// GetUserIDFromContext retrieves the caller ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		if userID, ok := c.Request.Context().Value(userIDKey).(string); ok {
			return userID, true
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	return userID, ok
}
