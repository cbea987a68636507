package db

import (
	"testing"

	"finance_tracker/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return gdb
}

func TestMigrateSeedsCategoriesOnce(t *testing.T) {
	gdb := openMemory(t)
	require.NoError(t, Migrate(gdb))
	require.NoError(t, Migrate(gdb))

	var count int64
	require.NoError(t, gdb.Model(&domain.Category{}).Count(&count).Error)
	assert.Equal(t, int64(len(domain.DefaultCategories)), count)

	added, err := SeedCategories(gdb)
	require.NoError(t, err)
	assert.Zero(t, added)
}
