package notify

import (
	"context"                          // Request scoped cancellation
	"finance_tracker/internal/domain"  // Domain models
	"finance_tracker/internal/storage" // Repositories
	"fmt"                              // Error wrapping
)

// Service is the notification emitter and read-state manager
type Service struct {
	repo       storage.NotificationRepository
	dispatcher *Dispatcher
}

// NewService builds a Service over repo; events go out through dispatcher
func NewService(repo storage.NotificationRepository, dispatcher *Dispatcher) *Service {
	return &Service{repo: repo, dispatcher: dispatcher}
}

// Create stores an unread notification. A storage failure is logged and reported as ok=false.
func (s *Service) Create(ctx context.Context, userID uint, typ domain.NotificationType, title, message string, data map[string]any) (domain.Notification, bool) {
	ns := s.dispatcher.Dispatch(ctx, domain.Event{UserID: userID, Type: typ, Title: title, Message: message, Data: data})
	if len(ns) == 0 {
		return domain.Notification{}, false
	}
	return ns[0], true
}

func (s *Service) List(ctx context.Context, userID uint) ([]domain.Notification, error) {
	ns, err := s.repo.ListNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return ns, nil
}

func (s *Service) CountUnread(ctx context.Context, userID uint) (int64, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// MarkAsRead flags one of the user's notifications as read; repeating it is a no-op
func (s *Service) MarkAsRead(ctx context.Context, userID, id uint) error {
	n, err := s.repo.GetNotification(ctx, id)
	if err != nil {
		return fmt.Errorf("get notification %d: %w", id, err)
	}
	if n.UserID != userID {
		return fmt.Errorf("notification %d: %w", id, domain.ErrForbidden)
	}
	if n.IsRead {
		return nil
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return nil
}

// MarkAllAsRead flags every notification of the user as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uint) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}
