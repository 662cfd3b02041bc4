package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dailydrop-service/internal/model"
	"dailydrop-service/internal/store"
	"dailydrop-service/pkg/access"
	"dailydrop-service/prometheus"

	"go.uber.org/zap"
)

// AccessResolver is the slice of the authorization client the service needs.
// Tests substitute a fake.
type AccessResolver interface {
	CompanyAccess(ctx context.Context, userID, tenantID string) (*access.CompanyAccess, error)
	PassAccess(ctx context.Context, userID string) (bool, error)
}

// DropFields carries the writable fields of a drop
type DropFields struct {
	Title        string
	Content      string
	VideoURL     string
	ResourceLink string
	// Date is only honored by Update, and only when explicitly supplied.
	Date string
}

// ListStats are counts derived from a tenant's drop history
type ListStats struct {
	TotalDrops int64 `json:"total_drops"`
	ThisMonth  int64 `json:"this_month"`
	ThisWeek   int64 `json:"this_week"`
}

// ListResult bundles a page of drops with the derived stats
type ListResult struct {
	Drops []model.Drop
	Stats ListStats
	Total int64
}

// DropService enforces the one-drop-per-tenant-per-day invariant and the
// authorization gate in front of every store operation.
type DropService struct {
	resolver AccessResolver
	drops    store.DropStore
	logger   *zap.Logger

	// now is replaceable in tests
	now func() time.Time
}

// NewDropService creates the drop service with its collaborators injected
func NewDropService(resolver AccessResolver, drops store.DropStore, logger *zap.Logger) *DropService {
	return &DropService{
		resolver: resolver,
		drops:    drops,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *DropService) today() string {
	return s.now().Format(model.DateLayout)
}

// requireAdmin resolves the caller's access level for the tenant and fails
// with ErrForbidden unless it is admin.
func (s *DropService) requireAdmin(ctx context.Context, userID, tenantID string) error {
	start := time.Now()
	acc, err := s.resolver.CompanyAccess(ctx, userID, tenantID)
	prometheus.AccessCheckDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("resolve company access: %w", err)
	}
	if !acc.HasAccess || acc.Level != access.LevelAdmin {
		return ErrForbidden
	}
	return nil
}

// Publish creates or overwrites today's drop for the tenant. Repeated
// publishes on the same day replace the content in place; a second record is
// never created. Returns the resulting drop and whether it was newly created.
func (s *DropService) Publish(ctx context.Context, tenantID, userID string, fields DropFields) (*model.Drop, bool, error) {
	prometheus.RecordDropOperation("publish")

	if err := s.requireAdmin(ctx, userID, tenantID); err != nil {
		return nil, false, err
	}

	if fields.Content == "" {
		return nil, false, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	today := s.today()

	existing, err := s.drops.FindByDate(ctx, tenantID, today)
	if err != nil {
		return nil, false, fmt.Errorf("find drop for %s: %w", today, err)
	}

	if existing != nil {
		existing.Title = fields.Title
		existing.Content = fields.Content
		existing.VideoURL = fields.VideoURL
		existing.ResourceLink = fields.ResourceLink
		if err := s.drops.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("overwrite drop %d: %w", existing.ID, err)
		}
		s.logger.Info("Drop overwritten",
			zap.Uint("drop_id", existing.ID),
			zap.String("tenant_id", tenantID),
			zap.String("date", today))
		return existing, false, nil
	}

	drop := &model.Drop{
		TenantID:     tenantID,
		Date:         today,
		Title:        fields.Title,
		Content:      fields.Content,
		VideoURL:     fields.VideoURL,
		ResourceLink: fields.ResourceLink,
	}
	// Upsert rather than plain create: a concurrent publish racing through the
	// find-then-write sequence lands on the (tenant_id, date) unique index and
	// replaces in place instead of failing or duplicating.
	if err := s.drops.Upsert(ctx, drop); err != nil {
		return nil, false, fmt.Errorf("create drop: %w", err)
	}

	s.logger.Info("Drop published",
		zap.Uint("drop_id", drop.ID),
		zap.String("tenant_id", tenantID),
		zap.String("date", today))
	return drop, true, nil
}

// GetToday returns today's drop for the tenant, or nil when nothing has been
// published yet today. Requires paid-content access (member or admin).
func (s *DropService) GetToday(ctx context.Context, tenantID, userID string) (*model.Drop, error) {
	prometheus.RecordDropOperation("get_today")

	start := time.Now()
	hasAccess, err := s.resolver.PassAccess(ctx, userID)
	prometheus.AccessCheckDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("resolve pass access: %w", err)
	}
	if !hasAccess {
		return nil, ErrForbidden
	}

	drop, err := s.drops.FindByDate(ctx, tenantID, s.today())
	if err != nil {
		return nil, fmt.Errorf("find today's drop: %w", err)
	}
	return drop, nil
}

// List returns up to limit drops ordered by date descending, with derived
// counts for the current month and the Sunday-start current week.
func (s *DropService) List(ctx context.Context, tenantID, userID string, limit int) (*ListResult, error) {
	prometheus.RecordDropOperation("list")

	if err := s.requireAdmin(ctx, userID, tenantID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 10
	}

	drops, total, err := s.drops.List(ctx, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list drops: %w", err)
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	weekStart := now.AddDate(0, 0, -int(now.Weekday()))

	thisMonth, err := s.drops.CountSince(ctx, tenantID, monthStart.Format(model.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("count drops this month: %w", err)
	}
	thisWeek, err := s.drops.CountSince(ctx, tenantID, weekStart.Format(model.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("count drops this week: %w", err)
	}

	go prometheus.UpdateDropsPerTenant(tenantID, int(total))

	return &ListResult{
		Drops: drops,
		Stats: ListStats{TotalDrops: total, ThisMonth: thisMonth, ThisWeek: thisWeek},
		Total: total,
	}, nil
}

// getOwned fetches a drop by id and enforces tenant ownership
func (s *DropService) getOwned(ctx context.Context, dropID uint, tenantID string) (*model.Drop, error) {
	drop, err := s.drops.GetByID(ctx, dropID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get drop %d: %w", dropID, err)
	}
	if drop.TenantID != tenantID {
		s.logger.Warn("Cross-tenant drop access rejected",
			zap.Uint("drop_id", dropID),
			zap.String("drop_tenant", drop.TenantID),
			zap.String("request_tenant", tenantID))
		return nil, ErrCrossTenant
	}
	return drop, nil
}

// Update overwrites an existing drop's fields. The tenant never changes;
// the date only changes when explicitly supplied.
func (s *DropService) Update(ctx context.Context, dropID uint, tenantID, userID string, fields DropFields) (*model.Drop, error) {
	prometheus.RecordDropOperation("update")

	if err := s.requireAdmin(ctx, userID, tenantID); err != nil {
		return nil, err
	}

	if fields.Content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	drop, err := s.getOwned(ctx, dropID, tenantID)
	if err != nil {
		return nil, err
	}

	drop.Title = fields.Title
	drop.Content = fields.Content
	drop.VideoURL = fields.VideoURL
	drop.ResourceLink = fields.ResourceLink
	if fields.Date != "" {
		if _, err := time.Parse(model.DateLayout, fields.Date); err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
		}
		drop.Date = fields.Date
	}

	if err := s.drops.Update(ctx, drop); err != nil {
		return nil, fmt.Errorf("update drop %d: %w", dropID, err)
	}

	s.logger.Info("Drop updated",
		zap.Uint("drop_id", drop.ID),
		zap.String("tenant_id", tenantID))
	return drop, nil
}

// Delete removes a drop after enforcing the same ownership check as Update
func (s *DropService) Delete(ctx context.Context, dropID uint, tenantID, userID string) error {
	prometheus.RecordDropOperation("delete")

	if err := s.requireAdmin(ctx, userID, tenantID); err != nil {
		return err
	}

	drop, err := s.getOwned(ctx, dropID, tenantID)
	if err != nil {
		return err
	}

	if err := s.drops.Delete(ctx, drop.ID); err != nil {
		return fmt.Errorf("delete drop %d: %w", dropID, err)
	}

	s.logger.Info("Drop deleted",
		zap.Uint("drop_id", drop.ID),
		zap.String("tenant_id", tenantID))
	return nil
}

// CheckAccess reports whether the user holds the paid access pass
func (s *DropService) CheckAccess(ctx context.Context, userID string) (bool, error) {
	prometheus.RecordDropOperation("check_access")

	hasAccess, err := s.resolver.PassAccess(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("resolve pass access: %w", err)
	}
	return hasAccess, nil
}
