package storage

import (
	"context"                         // Request scoped cancellation
	"finance_tracker/internal/domain" // Domain models

	"gorm.io/gorm" // ORM
)

// CreateNotifications inserts every notification in one transaction
func (s *GormStore) CreateNotifications(ctx context.Context, ns []domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&ns).Error
	}))
}

func (s *GormStore) GetNotification(ctx context.Context, id uint) (domain.Notification, error) {
	var n domain.Notification
	err := s.db.WithContext(ctx).First(&n, id).Error
	return n, translate(err)
}

func (s *GormStore) ListNotifications(ctx context.Context, userID uint) ([]domain.Notification, error) {
	var ns []domain.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc"). // Newest first, id breaks ties
		Find(&ns).Error
	return ns, translate(err)
}

func (s *GormStore) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, translate(err)
}

func (s *GormStore) MarkRead(ctx context.Context, id uint) error {
	return translate(s.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error)
}

func (s *GormStore) MarkAllRead(ctx context.Context, userID uint) error {
	return translate(s.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error)
}
