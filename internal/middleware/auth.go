package middleware

import (
	"net/http"
	"strings"

	"dailydrop-service/pkg/access"
	"dailydrop-service/pkg/logger"
	"dailydrop-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Auth returns an Echo middleware that verifies the bearer identity token and
// stores the resolved identity in the request context. Tenant-level
// authorization happens later, inside the drop service.
func Auth(resolver *access.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Error("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Error("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			identity, err := resolver.VerifyUserToken(parts[1])
			if err != nil {
				log.Error("Invalid identity token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set("user_id", identity.UserID)
			c.Set("email", identity.Email)
			c.Set("logger", log.With(zap.String("user_id", identity.UserID)))

			return next(c)
		}
	}
}
