package handler

import (
	"errors"
	"net/http"
	"strconv"

	"dailydrop-service/internal/service"
	"dailydrop-service/pkg/logger"
	"dailydrop-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// DropRequest defines the structure for publish/update requests
type DropRequest struct {
	ID       uint   `json:"id"`
	TenantID string `json:"tenant_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	VideoURL string `json:"video_url"`
	Link     string `json:"link"`
	Date     string `json:"date"`
}

// DropHandler serves the daily-drop HTTP surface
type DropHandler struct {
	drops *service.DropService

	// defaultTenantID enables the single-tenant compatibility mode: requests
	// without an explicit tenant_id fall back to it. Empty disables the
	// fallback and makes tenant_id mandatory.
	defaultTenantID string
}

// NewDropHandler creates the drop handler
func NewDropHandler(drops *service.DropService, defaultTenantID string) *DropHandler {
	return &DropHandler{drops: drops, defaultTenantID: defaultTenantID}
}

// resolveTenant picks the explicit tenant id or falls back to the configured
// default. Returns "" when neither is available.
func (h *DropHandler) resolveTenant(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return h.defaultTenantID
}

func userIDFrom(c echo.Context) (string, bool) {
	userID, ok := c.Get("user_id").(string)
	return userID, ok && userID != ""
}

// writeServiceError maps service errors onto the HTTP error taxonomy
func writeServiceError(c echo.Context, log *zap.Logger, err error, operation string) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		log.Warn("Operation forbidden", zap.String("operation", operation))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Access denied"})
	case errors.Is(err, service.ErrInvalidInput):
		log.Warn("Invalid input", zap.String("operation", operation), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		log.Warn("Drop not found", zap.String("operation", operation))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Drop not found"})
	case errors.Is(err, service.ErrCrossTenant):
		log.Warn("Cross-tenant access rejected", zap.String("operation", operation))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Drop does not belong to this tenant"})
	default:
		log.Error("Operation failed", zap.String("operation", operation), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to " + operation})
	}
}

// GetToday returns today's drop for the tenant, or null when nothing has been
// published yet today
func (h *DropHandler) GetToday(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	tenantID := h.resolveTenant(c.QueryParam("tenant_id"))
	if tenantID == "" {
		log.Warn("Missing tenant_id in request")
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	drop, err := h.drops.GetToday(c.Request().Context(), tenantID, userID)
	if err != nil {
		return writeServiceError(c, log, err, "fetch daily drop")
	}

	// drop == nil means "nothing published yet today" and is not an error
	return c.JSON(http.StatusOK, echo.Map{"drop": drop})
}

// Publish creates or overwrites today's drop for the tenant
func (h *DropHandler) Publish(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req DropRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	tenantID := h.resolveTenant(req.TenantID)
	if tenantID == "" {
		log.Warn("Missing tenant_id in request")
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	log.Info("Publishing drop", zap.String("tenant_id", tenantID))

	drop, created, err := h.drops.Publish(c.Request().Context(), tenantID, userID, service.DropFields{
		Title:        req.Title,
		Content:      req.Content,
		VideoURL:     req.VideoURL,
		ResourceLink: req.Link,
	})
	if err != nil {
		return writeServiceError(c, log, err, "publish daily drop")
	}

	if created {
		return c.JSON(http.StatusCreated, echo.Map{
			"drop":    drop,
			"message": "Drop created successfully",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"drop":    drop,
		"message": "Drop updated successfully",
	})
}

// List returns the tenant's most recent drops with derived stats
func (h *DropHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	tenantID := h.resolveTenant(c.QueryParam("tenant_id"))
	if tenantID == "" {
		log.Warn("Missing tenant_id in request")
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	result, err := h.drops.List(c.Request().Context(), tenantID, userID, limit)
	if err != nil {
		return writeServiceError(c, log, err, "list drops")
	}

	log.Info("Drops listed",
		zap.String("tenant_id", tenantID),
		zap.Int("count", len(result.Drops)),
		zap.Int64("total", result.Total))

	return c.JSON(http.StatusOK, echo.Map{
		"drops": result.Drops,
		"stats": result.Stats,
		"total": result.Total,
	})
}

// Update overwrites an existing drop's fields
func (h *DropHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req DropRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.ID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Drop ID is required"})
	}

	tenantID := h.resolveTenant(req.TenantID)
	if tenantID == "" {
		log.Warn("Missing tenant_id in request")
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	drop, err := h.drops.Update(c.Request().Context(), req.ID, tenantID, userID, service.DropFields{
		Title:        req.Title,
		Content:      req.Content,
		VideoURL:     req.VideoURL,
		ResourceLink: req.Link,
		Date:         req.Date,
	})
	if err != nil {
		return writeServiceError(c, log, err, "update drop")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"drop":    drop,
		"message": "Drop updated successfully",
	})
}

// Delete removes a drop
func (h *DropHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.QueryParam("id"), 10, 32)
	if err != nil || id == 0 {
		log.Error("Invalid drop ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid drop ID"})
	}

	tenantID := h.resolveTenant(c.QueryParam("tenant_id"))
	if tenantID == "" {
		log.Warn("Missing tenant_id in request")
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	if err := h.drops.Delete(c.Request().Context(), uint(id), tenantID, userID); err != nil {
		return writeServiceError(c, log, err, "delete drop")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Drop deleted successfully"})
}

// CheckAccess reports whether the caller holds the paid access pass
func (h *DropHandler) CheckAccess(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"has_access": false})
	}

	hasAccess, err := h.drops.CheckAccess(c.Request().Context(), userID)
	if err != nil {
		log.Error("Access check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"has_access": false,
			"error":      "Failed to check access",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"has_access": hasAccess})
}
