package storage

import (
	"context"                         // Request scoped cancellation
	"finance_tracker/internal/domain" // Domain models
	"strings"                         // String helpers
)

// CreateUser inserts a new user, ErrDuplicate on username or email clash
func (s *GormStore) CreateUser(ctx context.Context, u *domain.User) error {
	u.Username = strings.ToLower(u.Username) // Logins are case-insensitive
	u.Email = strings.ToLower(u.Email)
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (domain.User, error) {
	var u domain.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	return u, translate(err)
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&u).Error
	return u, translate(err)
}

func (s *GormStore) UpdateUser(ctx context.Context, u *domain.User) error {
	return translate(s.db.WithContext(ctx).Save(u).Error)
}
