package middleware

import (
	"strconv"
	"time"

	"github.com/AR-Project/wpt-v3/prometheus"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records request counts, durations and status categories
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is final
				c.Error(err)
			}

			status := c.Response().Status
			prometheus.RecordHTTPRequest(c.Request().Method, c.Path(), status, strconv.Itoa(status), time.Since(start))
			return nil
		}
	}
}
