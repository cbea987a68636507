package middleware

import (
	"finance_tracker/internal/utils" // JWT and denylist helpers
	"net/http"                       // HTTP status codes
	"strings"                        // String manipulation

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

// SessionCookie is the name of the HttpOnly cookie holding the session token
const SessionCookie = "session"

// Context keys set by the session middleware
const (
	UserIDKey    = "userID"
	TokenIDKey   = "tokenID"
	TokenExpKey  = "tokenExpiresAt"
	bearerPrefix = "Bearer "
)

// sessionToken reads the token from the session cookie, falling back to the Authorization header
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization") // Get Authorization header
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimPrefix(authHeader, bearerPrefix)
	}
	return ""
}

// JWTAuthMiddleware validates the session token and extracts user information.
// Tokens revoked by a logout are rejected; a redis outage lets the token through.
func JWTAuthMiddleware(secret string, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := sessionToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}
		revoked, err := utils.IsTokenRevoked(c.Request.Context(), rdb, claims.ID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": claims.UserID,
				"error":   err.Error(),
			}).Warn("Failed to check token denylist")
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Session has been logged out"})
			return
		}
		c.Set(UserIDKey, claims.UserID) // Store userID in context
		c.Set(TokenIDKey, claims.ID)    // Store token id for logout
		c.Set(TokenExpKey, claims.ExpiresAt.Time)
		c.Next() // Proceed to the next handler
	}
}
