package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"userdata/internal/logging"
	"userdata/internal/observability"
	"userdata/internal/userdata"
	"userdata/internal/users"
)

// Header names understood by the server.
const (
	UserHeader      = "X-Userdata-User"
	RequestIDHeader = "X-Request-ID"
)

// DegradedReporter lists optional components that failed to start.
type DegradedReporter interface {
	Map() map[string]string
}

// RouterDeps carries everything the HTTP layer needs. The registry and
// storage are built once at startup and only read afterwards.
type RouterDeps struct {
	Storage        *userdata.Storage
	Registry       users.Registry
	Observability  *observability.Observability
	Logger         logging.Logger
	Environment    string
	AllowedOrigins []string
	Degraded       DegradedReporter
	StartedAt      time.Time
}

// NewRouter creates the gin engine with all endpoints.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := logging.OrNop(deps.Logger)
	if deps.StartedAt.IsZero() {
		deps.StartedAt = time.Now()
	}

	engine := gin.New()
	// File names arrive URL-encoded, so an encoded '/' must stay inside its segment.
	engine.UseRawPath = true
	engine.UnescapePathValues = true

	engine.Use(
		RequestIDMiddleware(),
		ObservabilityMiddleware(deps.Observability),
		LoggingMiddleware(logger),
		RecoveryMiddleware(logger),
		ErrorMiddleware(logger),
	)
	if cors := CORSMiddleware(deps.Environment, deps.AllowedOrigins); cors != nil {
		engine.Use(cors)
	}

	userdataHandler := NewUserdataHandler(deps.Storage, deps.Registry, deps.Observability, logger)
	usersHandler := NewUsersHandler(deps.Registry, deps.Degraded, deps.StartedAt)

	engine.POST("/userdata/:file/move/:dest", userdataHandler.HandleMove)
	engine.GET("/users", usersHandler.HandleListUsers)
	engine.GET("/health", usersHandler.HandleHealth)

	return engine
}
