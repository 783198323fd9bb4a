package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"userdata/internal/observability"
)

// ObservabilityMiddleware instruments requests with a span and HTTP metrics.
func ObservabilityMiddleware(obs *observability.Observability) gin.HandlerFunc {
	if obs == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := obs.Tracer.StartSpan(c.Request.Context(), observability.SpanHTTPServer,
			attribute.String("http.route", route),
			attribute.String("http.method", c.Request.Method),
		)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		var spanErr error
		if len(c.Errors) > 0 {
			spanErr = c.Errors.Last().Err
		}
		observability.EndSpan(span, spanErr, attribute.Int("http.status_code", status))

		size := int64(c.Writer.Size())
		if size < 0 {
			size = 0
		}
		duration := time.Since(start)
		obs.Metrics.RecordHTTPServerRequest(ctx, c.Request.Method, route, status, duration, size)
		if obs.Logger != nil {
			obs.Logger.WithContext(ctx).Debug("http request",
				"method", c.Request.Method,
				"route", route,
				"status", status,
				"duration_ms", duration.Milliseconds(),
			)
		}
	}
}
