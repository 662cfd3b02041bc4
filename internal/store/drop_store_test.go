package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dailydrop-service/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Drop{}, &model.UserPreference{}))
	return db
}

func countDrops(t *testing.T, db *gorm.DB, tenantID, date string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Drop{}).
		Where("tenant_id = ? AND date = ?", tenantID, date).
		Count(&count).Error)
	return count
}

func TestUpsertReplacesInPlace(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormDropStore(db)
	ctx := context.Background()

	first := &model.Drop{TenantID: "biz_a", Date: "2025-06-18", Content: "hello"}
	require.NoError(t, s.Upsert(ctx, first))

	second := &model.Drop{TenantID: "biz_a", Date: "2025-06-18", Title: "Hi", Content: "world"}
	require.NoError(t, s.Upsert(ctx, second))

	assert.EqualValues(t, 1, countDrops(t, db, "biz_a", "2025-06-18"))

	got, err := s.FindByDate(ctx, "biz_a", "2025-06-18")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "world", got.Content)
	assert.Equal(t, "Hi", got.Title)
	assert.Equal(t, first.ID, got.ID)
}

func TestFindByDateScopedByTenant(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormDropStore(db)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, &model.Drop{TenantID: "biz_a", Date: "2025-06-18", Content: "for a"}))
	require.NoError(t, s.Upsert(ctx, &model.Drop{TenantID: "biz_b", Date: "2025-06-18", Content: "for b"}))

	got, err := s.FindByDate(ctx, "biz_a", "2025-06-18")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "for a", got.Content)

	missing, err := s.FindByDate(ctx, "biz_c", "2025-06-18")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListOrdersByDateDescWithLimit(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormDropStore(db)
	ctx := context.Background()

	for _, date := range []string{"2025-06-10", "2025-06-12", "2025-06-11", "2025-06-14"} {
		require.NoError(t, s.Upsert(ctx, &model.Drop{TenantID: "biz_a", Date: date, Content: "c"}))
	}
	require.NoError(t, s.Upsert(ctx, &model.Drop{TenantID: "biz_b", Date: "2025-06-20", Content: "other tenant"}))

	drops, total, err := s.List(ctx, "biz_a", 3)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, drops, 3)
	assert.Equal(t, "2025-06-14", drops[0].Date)
	assert.Equal(t, "2025-06-12", drops[1].Date)
	assert.Equal(t, "2025-06-11", drops[2].Date)
}

func TestCountSince(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormDropStore(db)
	ctx := context.Background()

	for _, date := range []string{"2025-05-30", "2025-06-01", "2025-06-15"} {
		require.NoError(t, s.Upsert(ctx, &model.Drop{TenantID: "biz_a", Date: date, Content: "c"}))
	}

	count, err := s.CountSince(ctx, "biz_a", "2025-06-01")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestGetByIDAndDelete(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormDropStore(db)
	ctx := context.Background()

	drop := &model.Drop{TenantID: "biz_a", Date: "2025-06-18", Content: "c"}
	require.NoError(t, s.Upsert(ctx, drop))

	got, err := s.GetByID(ctx, drop.ID)
	require.NoError(t, err)
	assert.Equal(t, drop.TenantID, got.TenantID)

	require.NoError(t, s.Delete(ctx, drop.ID))

	_, err = s.GetByID(ctx, drop.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPreferenceStoreSaveIsUpsert(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormPreferenceStore(db)
	ctx := context.Background()

	missing, err := s.GetByUserID(ctx, "user_1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.Save(ctx, &model.UserPreference{UserID: "user_1", Streak: 1, LastCheckIn: "2025-06-18"}))
	require.NoError(t, s.Save(ctx, &model.UserPreference{UserID: "user_1", Streak: 2, LastCheckIn: "2025-06-19"}))

	got, err := s.GetByUserID(ctx, "user_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Streak)
	assert.Equal(t, "2025-06-19", got.LastCheckIn)

	var count int64
	require.NoError(t, db.Model(&model.UserPreference{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
