package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"userdata/internal/users"
)

// UsersHandler exposes the read-only user registry and server health.
type UsersHandler struct {
	registry  users.Registry
	degraded  DegradedReporter
	startedAt time.Time
}

// NewUsersHandler creates a UsersHandler. degraded may be nil.
func NewUsersHandler(registry users.Registry, degraded DegradedReporter, startedAt time.Time) *UsersHandler {
	return &UsersHandler{registry: registry, degraded: degraded, startedAt: startedAt}
}

// HandleListUsers returns the id to label map in multi-user mode and false
// otherwise, so clients can tell whether they must pick a user.
func (h *UsersHandler) HandleListUsers(c *gin.Context) {
	if !h.registry.MultiUser() {
		c.JSON(http.StatusOK, false)
		return
	}
	c.JSON(http.StatusOK, h.registry.Entries())
}

type healthResponse struct {
	Status    string            `json:"status"`
	Uptime    string            `json:"uptime"`
	MultiUser bool              `json:"multi_user"`
	Users     int               `json:"users"`
	Degraded  map[string]string `json:"degraded,omitempty"`
}

// HandleHealth reports liveness plus any degraded components.
func (h *UsersHandler) HandleHealth(c *gin.Context) {
	resp := healthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		MultiUser: h.registry.MultiUser(),
		Users:     h.registry.Len(),
	}
	if h.degraded != nil {
		if degraded := h.degraded.Map(); len(degraded) > 0 {
			resp.Status = "degraded"
			resp.Degraded = degraded
		}
	}
	c.JSON(http.StatusOK, resp)
}
