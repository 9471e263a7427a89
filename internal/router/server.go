package router

import (
	"github.com/google/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/festa-do-viso/internal/middleware"
)

// NewEcho builds the Echo instance with the process-wide middleware:
// panic recovery, uuid request IDs, access logs and cache invalidation
// after successful writes.
func NewEcho(rc *middleware.ResponseCache) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogRequestID:  true,
		LogValuesFunc: logRequest,
	}))
	e.Use(middleware.InvalidateOnWrite(rc))
	return e
}

func logRequest(_ echo.Context, v echomw.RequestLoggerValues) error {
	logger.Infof("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
	return nil
}
