package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/umalmyha/customers-mvc/pkg/diagnostics"
)

// Metrics records request count and latency per route
func Metrics(m *diagnostics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.Observe(c.Request().Method, route, strconv.Itoa(c.Response().Status), time.Since(start))
			return nil
		}
	}
}
