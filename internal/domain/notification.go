package domain

import (
	"encoding/json"
	"time"
)

// NotificationType enumerates what triggered a notification
type NotificationType string

const (
	NotificationBudgetWarning      NotificationType = "budget_warning"
	NotificationBudgetExceeded     NotificationType = "budget_exceeded"
	NotificationChallengeStarted   NotificationType = "challenge_started"
	NotificationChallengeCompleted NotificationType = "challenge_completed"
	NotificationChallengeFailed    NotificationType = "challenge_failed"
	NotificationChallengeCancelled NotificationType = "challenge_cancelled"
	NotificationGoalCompleted      NotificationType = "goal_completed"
	NotificationSystem             NotificationType = "system"
)

// Notification Model
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index:idx_notification_user_read,priority:1" json:"userId"`
	Type      NotificationType `gorm:"size:32;not null" json:"type"`
	Title     string           `gorm:"size:255;not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	IsRead    bool             `gorm:"not null;default:false;index:idx_notification_user_read,priority:2" json:"isRead"`
	Data      Payload          `gorm:"type:text" json:"data"` // Opaque JSON payload
}

// Event is a side effect produced by a domain operation, persisted as a Notification
type Event struct {
	UserID  uint
	Type    NotificationType
	Title   string
	Message string
	Data    map[string]any
}

// Notification converts the event into an unread notification row
func (e Event) Notification(now time.Time) (Notification, error) {
	n := Notification{
		UserID:    e.UserID,
		Type:      e.Type,
		Title:     e.Title,
		Message:   e.Message,
		CreatedAt: now,
	}
	if len(e.Data) > 0 {
		raw, err := json.Marshal(e.Data)
		if err != nil {
			return Notification{}, err
		}
		n.Data = Payload(raw)
	}
	return n, nil
}
