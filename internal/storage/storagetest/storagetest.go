// Package storagetest opens throwaway in-memory databases for tests.
package storagetest

import (
	"finance_tracker/internal/db"      // Schema migration
	"finance_tracker/internal/storage" // Repositories
	"testing"                          // Test cleanup

	"github.com/glebarez/sqlite" // Pure Go sqlite driver
	"github.com/google/uuid"     // Unique in-memory database names
	"gorm.io/gorm"               // ORM
	"gorm.io/gorm/logger"        // Silent query log
)

// NewStore returns a migrated, seeded store backed by a private in-memory sqlite database
func NewStore(t testing.TB) *storage.GormStore {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return storage.NewGormStore(gdb)
}
