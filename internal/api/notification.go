package api

import (
	"finance_tracker/internal/domain" // Importing domain models
	"finance_tracker/internal/notify" // Notification service
	"net/http"                        // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// ListNotificationsHandler returns the user's notifications, newest first
func ListNotificationsHandler(svc *notify.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		list, err := svc.List(c.Request.Context(), userID)
		if err != nil {
			respondError(c, "notification", err)
			return
		}
		if list == nil {
			list = []domain.Notification{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// UnreadCountHandler returns how many notifications are unread
func UnreadCountHandler(svc *notify.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		count, err := svc.CountUnread(c.Request.Context(), userID)
		if err != nil {
			respondError(c, "notification", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// MarkReadHandler flags one notification as read
func MarkReadHandler(svc *notify.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := svc.MarkAsRead(c.Request.Context(), userID, id); err != nil {
			respondError(c, "notification", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
	}
}

// MarkAllReadHandler flags every notification of the user as read
func MarkAllReadHandler(svc *notify.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		if err := svc.MarkAllAsRead(c.Request.Context(), userID); err != nil {
			respondError(c, "notification", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
	}
}
