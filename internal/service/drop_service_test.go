package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dailydrop-service/internal/model"
	"dailydrop-service/internal/store"
	"dailydrop-service/pkg/access"
)

var _ AccessResolver = (*access.Client)(nil)

// fakeResolver is an in-memory AccessResolver for tests
type fakeResolver struct {
	levels map[string]access.Level // "userID|tenantID" -> level
	pass   map[string]bool
	err    error
}

func (f *fakeResolver) CompanyAccess(_ context.Context, userID, tenantID string) (*access.CompanyAccess, error) {
	if f.err != nil {
		return nil, f.err
	}
	level, ok := f.levels[userID+"|"+tenantID]
	if !ok {
		return &access.CompanyAccess{HasAccess: false, Level: access.LevelNoAccess}, nil
	}
	return &access.CompanyAccess{HasAccess: true, Level: level}, nil
}

func (f *fakeResolver) PassAccess(_ context.Context, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.pass[userID], nil
}

// wednesday is a fixed mid-week reference date for deterministic stats
var wednesday = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

func setupDropService(t *testing.T, resolver AccessResolver) (*DropService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Drop{}))

	svc := NewDropService(resolver, store.NewGormDropStore(db), zap.NewNop())
	svc.now = func() time.Time { return wednesday }
	return svc, db
}

func adminResolver(userID, tenantID string) *fakeResolver {
	return &fakeResolver{
		levels: map[string]access.Level{userID + "|" + tenantID: access.LevelAdmin},
		pass:   map[string]bool{userID: true},
	}
}

func countForDate(t *testing.T, db *gorm.DB, tenantID, date string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Drop{}).
		Where("tenant_id = ? AND date = ?", tenantID, date).
		Count(&count).Error)
	return count
}

func TestPublishIdempotentOverwrite(t *testing.T) {
	svc, db := setupDropService(t, adminResolver("user_1", "biz_a"))
	ctx := context.Background()

	first, created, err := svc.Publish(ctx, "biz_a", "user_1", DropFields{Content: "hello"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "2025-06-18", first.Date)
	assert.Equal(t, "", first.Title)

	second, created, err := svc.Publish(ctx, "biz_a", "user_1", DropFields{Content: "world", Title: "Hi"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	got, err := svc.GetToday(ctx, "biz_a", "user_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "world", got.Content)
	assert.Equal(t, "Hi", got.Title)

	assert.EqualValues(t, 1, countForDate(t, db, "biz_a", "2025-06-18"))
}

func TestPublishEmptyContentLeavesExistingUnchanged(t *testing.T) {
	svc, _ := setupDropService(t, adminResolver("user_1", "biz_a"))
	ctx := context.Background()

	_, _, err := svc.Publish(ctx, "biz_a", "user_1", DropFields{Content: "keep me"})
	require.NoError(t, err)

	_, _, err = svc.Publish(ctx, "biz_a", "user_1", DropFields{Content: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := svc.GetToday(ctx, "biz_a", "user_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "keep me", got.Content)
}

func TestPublishRequiresAdmin(t *testing.T) {
	resolver := &fakeResolver{
		levels: map[string]access.Level{"user_2|biz_a": access.LevelMember},
		pass:   map[string]bool{"user_2": true},
	}
	svc, _ := setupDropService(t, resolver)

	_, _, err := svc.Publish(context.Background(), "biz_a", "user_2", DropFields{Content: "nope"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetTodayAccessGate(t *testing.T) {
	resolver := &fakeResolver{
		levels: map[string]access.Level{},
		pass:   map[string]bool{"member": true, "outsider": false},
	}
	svc, _ := setupDropService(t, resolver)
	ctx := context.Background()

	_, err := svc.GetToday(ctx, "biz_a", "outsider")
	assert.ErrorIs(t, err, ErrForbidden)

	// No drop published yet: nil result, not an error
	drop, err := svc.GetToday(ctx, "biz_a", "member")
	require.NoError(t, err)
	assert.Nil(t, drop)
}

func TestListStats(t *testing.T) {
	svc, db := setupDropService(t, adminResolver("user_1", "biz_b"))
	ctx := context.Background()

	// Three drops inside the current Sunday-start week (week of 2025-06-15),
	// one earlier in the month, one in the previous month.
	for _, date := range []string{"2025-06-16", "2025-06-17", "2025-06-18", "2025-06-02", "2025-05-20"} {
		require.NoError(t, db.Create(&model.Drop{TenantID: "biz_b", Date: date, Content: "c"}).Error)
	}

	result, err := svc.List(ctx, "biz_b", "user_1", 10)
	require.NoError(t, err)
	assert.EqualValues(t, 5, result.Stats.TotalDrops)
	assert.EqualValues(t, 4, result.Stats.ThisMonth)
	assert.EqualValues(t, 3, result.Stats.ThisWeek)
	assert.Len(t, result.Drops, 5)
	assert.Equal(t, "2025-06-18", result.Drops[0].Date)
}

func TestListRequiresAdmin(t *testing.T) {
	resolver := &fakeResolver{
		levels: map[string]access.Level{"user_2|biz_a": access.LevelMember},
		pass:   map[string]bool{"user_2": true},
	}
	svc, _ := setupDropService(t, resolver)

	_, err := svc.List(context.Background(), "biz_a", "user_2", 10)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateCrossTenantRejected(t *testing.T) {
	// user_1 is admin of biz_a only; the drop belongs to biz_b
	svc, db := setupDropService(t, adminResolver("user_1", "biz_a"))
	ctx := context.Background()

	foreign := &model.Drop{TenantID: "biz_b", Date: "2025-06-18", Content: "not yours"}
	require.NoError(t, db.Create(foreign).Error)

	_, err := svc.Update(ctx, foreign.ID, "biz_a", "user_1", DropFields{Content: "hijacked"})
	assert.ErrorIs(t, err, ErrCrossTenant)

	var unchanged model.Drop
	require.NoError(t, db.First(&unchanged, foreign.ID).Error)
	assert.Equal(t, "not yours", unchanged.Content)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := setupDropService(t, adminResolver("user_1", "biz_a"))

	_, err := svc.Update(context.Background(), 9999, "biz_a", "user_1", DropFields{Content: "c"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOverwritesFieldsAndOptionalDate(t *testing.T) {
	svc, db := setupDropService(t, adminResolver("user_1", "biz_a"))
	ctx := context.Background()

	drop := &model.Drop{TenantID: "biz_a", Date: "2025-06-17", Title: "old", Content: "old"}
	require.NoError(t, db.Create(drop).Error)

	// Without an explicit date the original date is preserved
	updated, err := svc.Update(ctx, drop.ID, "biz_a", "user_1", DropFields{Content: "new"})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-17", updated.Date)
	assert.Equal(t, "", updated.Title)
	assert.Equal(t, "new", updated.Content)

	// An explicit date moves the drop
	updated, err = svc.Update(ctx, drop.ID, "biz_a", "user_1", DropFields{Content: "new", Date: "2025-06-10"})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", updated.Date)

	_, err = svc.Update(ctx, drop.ID, "biz_a", "user_1", DropFields{Content: "new", Date: "not-a-date"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteCrossTenantRejected(t *testing.T) {
	svc, db := setupDropService(t, adminResolver("user_1", "biz_a"))
	ctx := context.Background()

	foreign := &model.Drop{TenantID: "biz_b", Date: "2025-06-18", Content: "not yours"}
	require.NoError(t, db.Create(foreign).Error)

	err := svc.Delete(ctx, foreign.ID, "biz_a", "user_1")
	assert.ErrorIs(t, err, ErrCrossTenant)

	assert.EqualValues(t, 1, countForDate(t, db, "biz_b", "2025-06-18"))
}

func TestDeleteRemovesDrop(t *testing.T) {
	svc, db := setupDropService(t, adminResolver("user_1", "biz_a"))
	ctx := context.Background()

	drop := &model.Drop{TenantID: "biz_a", Date: "2025-06-18", Content: "c"}
	require.NoError(t, db.Create(drop).Error)

	require.NoError(t, svc.Delete(ctx, drop.ID, "biz_a", "user_1"))
	assert.EqualValues(t, 0, countForDate(t, db, "biz_a", "2025-06-18"))

	err := svc.Delete(ctx, drop.ID, "biz_a", "user_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolverFailurePropagatesAsUpstreamError(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("authorization backend unreachable")}
	svc, _ := setupDropService(t, resolver)
	ctx := context.Background()

	_, _, err := svc.Publish(ctx, "biz_a", "user_1", DropFields{Content: "c"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrForbidden)

	_, err = svc.GetToday(ctx, "biz_a", "user_1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrForbidden)
}

func TestCheckAccess(t *testing.T) {
	resolver := &fakeResolver{pass: map[string]bool{"member": true}}
	svc, _ := setupDropService(t, resolver)
	ctx := context.Background()

	hasAccess, err := svc.CheckAccess(ctx, "member")
	require.NoError(t, err)
	assert.True(t, hasAccess)

	hasAccess, err = svc.CheckAccess(ctx, "stranger")
	require.NoError(t, err)
	assert.False(t, hasAccess)
}
