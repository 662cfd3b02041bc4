package handler

import (
	"errors"
	"net/http"

	"dailydrop-service/internal/service"
	"dailydrop-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// StreakHandler serves the member check-in endpoints
type StreakHandler struct {
	streaks *service.StreakService
}

// NewStreakHandler creates the streak handler
func NewStreakHandler(streaks *service.StreakService) *StreakHandler {
	return &StreakHandler{streaks: streaks}
}

// CheckIn records today's check-in for the member
func (h *StreakHandler) CheckIn(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	pref, err := h.streaks.CheckIn(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Access denied"})
		}
		log.Error("Check-in failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to check in"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"streak":        pref.Streak,
		"last_check_in": pref.LastCheckIn,
	})
}

// GetStreak returns the member's current streak state
func (h *StreakHandler) GetStreak(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	pref, err := h.streaks.Streak(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Access denied"})
		}
		log.Error("Failed to get streak", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get streak"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"streak":        pref.Streak,
		"last_check_in": pref.LastCheckIn,
	})
}
