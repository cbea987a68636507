// Package notify creates and manages user notifications. Notifications are a best-effort side
// channel: failures are logged and never fail the operation that triggered them.
package notify

import (
	"context"                          // Request scoped cancellation
	"finance_tracker/internal/domain"  // Domain models
	"finance_tracker/internal/storage" // Repositories
	"time"                             // Notification timestamps

	"github.com/sirupsen/logrus" // Structured logging
)

// Publisher forwards persisted notifications to an external broker
type Publisher interface {
	PublishNotification(ctx context.Context, n domain.Notification) error
}

// Dispatcher persists domain events as notifications
type Dispatcher struct {
	repo      storage.NotificationRepository
	publisher Publisher        // nil disables publishing
	now       func() time.Time // Stamps CreatedAt
}

// NewDispatcher builds a Dispatcher; publisher may be nil
func NewDispatcher(repo storage.NotificationRepository, publisher Publisher) *Dispatcher {
	return &Dispatcher{repo: repo, publisher: publisher, now: time.Now}
}

// Dispatch persists all events in one transaction and publishes them when a publisher is set.
// It returns the stored notifications, or nil when nothing could be stored.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...domain.Event) []domain.Notification {
	if len(events) == 0 {
		return nil
	}
	now := d.now().UTC()
	ns := make([]domain.Notification, 0, len(events))
	for _, e := range events {
		n, err := e.Notification(now)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": e.UserID,
				"type":    e.Type,
				"error":   err.Error(),
			}).Error("Failed to encode notification data")
			continue // Drop only this one
		}
		ns = append(ns, n)
	}
	if err := d.repo.CreateNotifications(ctx, ns); err != nil {
		logrus.WithFields(logrus.Fields{
			"count": len(ns),
			"error": err.Error(),
		}).Error("Failed to create notifications")
		return nil
	}
	for _, n := range ns {
		logrus.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"user_id":         n.UserID,
			"type":            n.Type,
		}).Info("Notification created")
		if d.publisher == nil {
			continue
		}
		if err := d.publisher.PublishNotification(ctx, n); err != nil {
			logrus.WithFields(logrus.Fields{
				"notification_id": n.ID,
				"error":           err.Error(),
			}).Warn("Failed to publish notification")
		}
	}
	return ns
}
