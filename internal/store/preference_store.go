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

// PreferenceStore persists per-member engagement state
type PreferenceStore interface {
	// GetByUserID returns the user's preference row, or nil when none exists.
	GetByUserID(ctx context.Context, userID string) (*model.UserPreference, error)
	// Save inserts or replaces the user's preference row.
	Save(ctx context.Context, pref *model.UserPreference) error
}

// GormPreferenceStore is the GORM-backed PreferenceStore
type GormPreferenceStore struct {
	db *gorm.DB
}

// NewGormPreferenceStore creates a PreferenceStore backed by the given database handle
func NewGormPreferenceStore(db *gorm.DB) *GormPreferenceStore {
	return &GormPreferenceStore{db: db}
}

func (s *GormPreferenceStore) GetByUserID(ctx context.Context, userID string) (*model.UserPreference, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var pref model.UserPreference
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &pref, nil
}

func (s *GormPreferenceStore) Save(ctx context.Context, pref *model.UserPreference) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"streak", "last_check_in", "updated_at"}),
		}).
		Create(pref).Error
}
