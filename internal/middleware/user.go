package middleware

import (
	"context"
	"errors"
	"finance_tracker/internal/domain"  // Domain models
	"finance_tracker/internal/storage" // Storage sentinels
	"net/http"                         // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// CurrentUserKey is the gin context key of the loaded user
const CurrentUserKey = "currentUser"

// UserGetter loads a user by id
type UserGetter interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

// CurrentUserMiddleware loads the authenticated user from the database on each request, so
// tokens of deleted accounts stop working immediately
func CurrentUserMiddleware(users UserGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(UserIDKey) // Get userID from context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		id, _ := userID.(uint)
		user, err := users.GetUser(c.Request.Context(), id) // Fetch user from database
		if errors.Is(err, storage.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Account no longer exists"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": id,
				"error":   err.Error(),
			}).Error("Failed to load current user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.Set(CurrentUserKey, user) // Store the user for handlers
		c.Next()
	}
}

// CurrentUser returns the user loaded by CurrentUserMiddleware
func CurrentUser(c *gin.Context) (domain.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return domain.User{}, false
	}
	u, ok := v.(domain.User)
	return u, ok
}
