package storage

import (
	"context"                         // Request scoped cancellation
	"finance_tracker/internal/domain" // Domain models
	"time"                            // Expiry cutoff
)

func (s *GormStore) CreateChallenges(ctx context.Context, cs []domain.Challenge) error {
	if len(cs) == 0 {
		return nil
	}
	return translate(s.db.WithContext(ctx).Create(&cs).Error)
}

func (s *GormStore) GetChallenge(ctx context.Context, id uint) (domain.Challenge, error) {
	var c domain.Challenge
	err := s.db.WithContext(ctx).First(&c, id).Error
	return c, translate(err)
}

// ListChallenges returns the user's challenges, newest first, optionally limited to statuses
func (s *GormStore) ListChallenges(ctx context.Context, userID uint, statuses ...domain.ChallengeStatus) ([]domain.Challenge, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var cs []domain.Challenge
	err := q.Order("created_at desc, id desc").Find(&cs).Error
	return cs, translate(err)
}

// ListExpiredChallenges returns active challenges whose end date is before now
func (s *GormStore) ListExpiredChallenges(ctx context.Context, now time.Time) ([]domain.Challenge, error) {
	var cs []domain.Challenge
	err := s.db.WithContext(ctx).
		Where("status = ? AND end_date < ?", domain.ChallengeActive, now).
		Order("id").
		Find(&cs).Error
	return cs, translate(err)
}

// UpdateChallenge writes c only while the stored row still has status from. ErrStale means
// another writer moved the challenge first.
func (s *GormStore) UpdateChallenge(ctx context.Context, c *domain.Challenge, from domain.ChallengeStatus) error {
	res := s.db.WithContext(ctx).Model(c).Where("status = ?", from).Select("*").Updates(c)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// Some drivers count only changed rows, so look before calling it stale
	var statuses []domain.ChallengeStatus
	err := s.db.WithContext(ctx).Model(&domain.Challenge{}).Where("id = ?", c.ID).Pluck("status", &statuses).Error
	switch {
	case err != nil:
		return translate(err)
	case len(statuses) == 0:
		return ErrNotFound
	case statuses[0] != from:
		return ErrStale
	}
	return nil
}
