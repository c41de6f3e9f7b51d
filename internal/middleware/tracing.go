package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/umalmyha/customers-mvc/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Trace opens server span per request, parent trace is taken from request headers
func Trace(t tracing.Tracer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			ctx, span := t.StartSpanFromHeader(req.Context(), req.Header, fmt.Sprintf("%s %s", req.Method, c.Path()))
			defer span.End()

			c.SetRequest(req.WithContext(ctx))
			t.InjectHTTP(ctx, c.Response().Header())

			err := next(c)
			if err != nil {
				span.RecordError(err)
				c.Error(err)
			}

			status := c.Response().Status
			span.SetAttributes(
				attribute.String("http.method", req.Method),
				attribute.String("http.route", c.Path()),
				attribute.Int("http.status_code", status),
			)
			if status >= 500 {
				span.SetStatus(codes.Error, "request failed")
			}
			return nil
		}
	}
}
