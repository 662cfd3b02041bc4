package service

import (
	"context"
	"fmt"
	"time"

	"dailydrop-service/internal/model"
	"dailydrop-service/internal/store"
	"dailydrop-service/prometheus"

	"go.uber.org/zap"
)

// StreakService tracks consecutive daily check-ins per member
type StreakService struct {
	resolver AccessResolver
	prefs    store.PreferenceStore
	logger   *zap.Logger

	now func() time.Time
}

// NewStreakService creates the streak service with its collaborators injected
func NewStreakService(resolver AccessResolver, prefs store.PreferenceStore, logger *zap.Logger) *StreakService {
	return &StreakService{
		resolver: resolver,
		prefs:    prefs,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *StreakService) requireAccess(ctx context.Context, userID string) error {
	hasAccess, err := s.resolver.PassAccess(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve pass access: %w", err)
	}
	if !hasAccess {
		return ErrForbidden
	}
	return nil
}

// CheckIn records today's check-in for the member. A repeat check-in on the
// same day is a no-op; a consecutive-day check-in extends the streak; a gap
// resets it to 1.
func (s *StreakService) CheckIn(ctx context.Context, userID string) (*model.UserPreference, error) {
	prometheus.RecordDropOperation("check_in")

	if err := s.requireAccess(ctx, userID); err != nil {
		return nil, err
	}

	today := s.now().Format(model.DateLayout)
	yesterday := s.now().AddDate(0, 0, -1).Format(model.DateLayout)

	pref, err := s.prefs.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	if pref == nil {
		pref = &model.UserPreference{UserID: userID}
	}

	switch pref.LastCheckIn {
	case today:
		return pref, nil
	case yesterday:
		pref.Streak++
	default:
		pref.Streak = 1
	}
	pref.LastCheckIn = today

	if err := s.prefs.Save(ctx, pref); err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}

	s.logger.Info("Member checked in",
		zap.String("user_id", userID),
		zap.Int("streak", pref.Streak))
	return pref, nil
}

// Streak returns the member's current streak state. A member who has never
// checked in gets a zero streak, not an error.
func (s *StreakService) Streak(ctx context.Context, userID string) (*model.UserPreference, error) {
	prometheus.RecordDropOperation("get_streak")

	if err := s.requireAccess(ctx, userID); err != nil {
		return nil, err
	}

	pref, err := s.prefs.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	if pref == nil {
		pref = &model.UserPreference{UserID: userID}
	}
	return pref, nil
}
