package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AllowIPs rejects callers outside of the allowed list. Debug mode lets everyone in.
func AllowIPs(allowed []string, debug bool, logger *zap.Logger) echo.MiddlewareFunc {
	ips := make(map[string]bool, len(allowed))
	for _, ip := range allowed {
		ips[ip] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if debug {
				return next(c)
			}
			ip := c.RealIP()
			if !ips[ip] {
				logger.Warn("caller not allowed", zap.String("ip", ip), zap.String("path", c.Path()))
				return c.String(http.StatusForbidden, "Forbidden")
			}
			return next(c)
		}
	}
}
