package db

import (
	"finance_tracker/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Models lists every table managed by AutoMigrate, parents first
var Models = []any{
	&domain.User{},
	&domain.Category{},
	&domain.Expense{},
	&domain.SavingsGoal{},
	&domain.SubGoal{},
	&domain.Notification{},
	&domain.Challenge{},
}

// Migrate performs automatic migration for the database schema and seeds reference data
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models...); err != nil {
		return err
	}
	seeded, err := SeedCategories(db)
	if err != nil {
		return err
	}
	logrus.WithField("categories_seeded", seeded).Info("Migration completed.") // Log successful migration
	return nil
}

// SeedCategories inserts the default categories missing by name and returns how many were added
func SeedCategories(db *gorm.DB) (int, error) {
	added := 0
	for _, c := range domain.DefaultCategories {
		var count int64
		if err := db.Model(&domain.Category{}).Where("name = ?", c.Name).Count(&count).Error; err != nil {
			return added, err
		}
		if count > 0 {
			continue // Already seeded
		}
		if err := db.Create(&c).Error; err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
