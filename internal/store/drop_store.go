package store

import (
	"context"
	"errors"
	"time"

	"dailydrop-service/internal/model"
	"dailydrop-service/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// DropStore provides tenant-scoped persistence for drops
type DropStore interface {
	// FindByDate returns the drop for (tenantID, date), or nil when none exists.
	FindByDate(ctx context.Context, tenantID, date string) (*model.Drop, error)
	// GetByID returns a drop by primary key, or ErrNotFound.
	GetByID(ctx context.Context, id uint) (*model.Drop, error)
	// List returns up to limit drops for the tenant ordered by date descending,
	// plus the tenant's total drop count.
	List(ctx context.Context, tenantID string, limit int) ([]model.Drop, int64, error)
	// CountSince counts the tenant's drops with date >= since.
	CountSince(ctx context.Context, tenantID, since string) (int64, error)
	// Upsert inserts the drop, replacing the content fields in place when a
	// record already exists for (tenant_id, date).
	Upsert(ctx context.Context, drop *model.Drop) error
	// Update overwrites an existing drop.
	Update(ctx context.Context, drop *model.Drop) error
	// Delete removes a drop by primary key.
	Delete(ctx context.Context, id uint) error
}

// GormDropStore is the GORM-backed DropStore
type GormDropStore struct {
	db *gorm.DB
}

// NewGormDropStore creates a DropStore backed by the given database handle
func NewGormDropStore(db *gorm.DB) *GormDropStore {
	return &GormDropStore{db: db}
}

func (s *GormDropStore) FindByDate(ctx context.Context, tenantID, date string) (*model.Drop, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var drop model.Drop
	result := s.db.WithContext(ctx).
		Where("tenant_id = ? AND date = ?", tenantID, date).
		First(&drop)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &drop, nil
}

func (s *GormDropStore) GetByID(ctx context.Context, id uint) (*model.Drop, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var drop model.Drop
	result := s.db.WithContext(ctx).First(&drop, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &drop, nil
}

func (s *GormDropStore) List(ctx context.Context, tenantID string, limit int) ([]model.Drop, int64, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var drops []model.Drop
	result := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("date desc").
		Limit(limit).
		Find(&drops)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	var total int64
	countResult := s.db.WithContext(ctx).
		Model(&model.Drop{}).
		Where("tenant_id = ?", tenantID).
		Count(&total)
	if countResult.Error != nil {
		return nil, 0, countResult.Error
	}

	return drops, total, nil
}

func (s *GormDropStore) CountSince(ctx context.Context, tenantID, since string) (int64, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.Drop{}).
		Where("tenant_id = ? AND date >= ?", tenantID, since).
		Count(&count)
	return count, result.Error
}

func (s *GormDropStore) Upsert(ctx context.Context, drop *model.Drop) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	// Conflict on the (tenant_id, date) unique index replaces the content
	// fields in place, so two racing publishes for the same day cannot
	// produce a duplicate record.
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "content", "video_url", "resource_link", "updated_at",
			}),
		}).
		Create(drop).Error
}

func (s *GormDropStore) Update(ctx context.Context, drop *model.Drop) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	return s.db.WithContext(ctx).Save(drop).Error
}

func (s *GormDropStore) Delete(ctx context.Context, id uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	return s.db.WithContext(ctx).Delete(&model.Drop{}, id).Error
}
