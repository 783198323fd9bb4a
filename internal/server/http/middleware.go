package http

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"userdata/internal/logging"
)

// RequestIDMiddleware tags each request with an id, reusing the caller's
// X-Request-ID when present.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = newRequestID()
		}
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logging.ContextWithLogID(c.Request.Context(), requestID))
		c.Next()
	}
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// LoggingMiddleware logs one line per request once it completes.
func LoggingMiddleware(logger logging.Logger) gin.HandlerFunc {
	logger = logging.OrNop(logger)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.FromContext(c.Request.Context(), logger).Info(
			"%s %s status=%d latency_ms=%.2f from %s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			float64(time.Since(start).Microseconds())/1000.0,
			c.ClientIP(),
		)
	}
}

// RecoveryMiddleware turns handler panics into a generic 500.
func RecoveryMiddleware(logger logging.Logger) gin.HandlerFunc {
	logger = logging.OrNop(logger)
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.FromContext(c.Request.Context(), logger).Error("Panic recovered: %v", recovered)
		internalError(c)
	})
}

// ErrorMiddleware renders errors attached with c.Error as a generic 500 when
// the handler did not write a response itself.
func ErrorMiddleware(logger logging.Logger) gin.HandlerFunc {
	logger = logging.OrNop(logger)
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		logging.FromContext(c.Request.Context(), logger).Error(
			"HTTP 500 %s %s: %v", c.Request.Method, c.Request.URL.Path, c.Errors.Last().Err,
		)
		internalError(c)
	}
}

// CORSMiddleware allows any origin outside production. In production only the
// configured origins are allowed; with none configured it returns nil.
func CORSMiddleware(environment string, allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", UserHeader, RequestIDHeader}
	cfg.ExposeHeaders = []string{RequestIDHeader}

	origins := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" || strings.Contains(origin, "://") {
			origins = append(origins, origin)
		}
	}

	production := strings.EqualFold(strings.TrimSpace(environment), "production")
	switch {
	case !production:
		cfg.AllowAllOrigins = true
	case len(origins) > 0:
		cfg.AllowOrigins = origins
	default:
		return nil
	}
	return cors.New(cfg)
}
