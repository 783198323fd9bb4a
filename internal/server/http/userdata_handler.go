package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"userdata/internal/logging"
	"userdata/internal/observability"
	"userdata/internal/userdata"
	"userdata/internal/users"
)

// UserdataHandler serves operations on files inside a user's data area.
type UserdataHandler struct {
	storage  *userdata.Storage
	registry users.Registry
	metrics  *observability.MetricsCollector
	tracer   *observability.TracerProvider
	logger   logging.Logger
}

// NewUserdataHandler creates a UserdataHandler. obs may be nil.
func NewUserdataHandler(storage *userdata.Storage, registry users.Registry, obs *observability.Observability, logger logging.Logger) *UserdataHandler {
	h := &UserdataHandler{
		storage:  storage,
		registry: registry,
		logger:   logging.OrNop(logger),
	}
	if obs != nil {
		h.metrics = obs.Metrics
		h.tracer = obs.Tracer
	}
	return h
}

// HandleMove serves POST /userdata/:file/move/:dest. Overwrite is on unless
// the overwrite query value is exactly "false"; only then does an existing
// destination answer 409.
func (h *UserdataHandler) HandleMove(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()
	outcome := observability.MoveOutcomeError
	defer func() {
		h.metrics.RecordMove(ctx, outcome, time.Since(start))
	}()

	user, err := userdata.ResolveUser(h.registry, c.GetHeader(UserHeader))
	if err != nil {
		outcome = observability.MoveOutcomeResolveError
		writeResolveFailure(c, err)
		return
	}

	source, err := h.storage.DataPath(user, c.Param("file"), true)
	if err != nil {
		outcome = observability.MoveOutcomeResolveError
		writeResolveFailure(c, err)
		return
	}

	dest, err := h.storage.DataPath(user, c.Param("dest"), false)
	if err != nil {
		outcome = observability.MoveOutcomeResolveError
		writeResolveFailure(c, err)
		return
	}

	overwrite := c.Query("overwrite") != "false"

	spanCtx, span := h.tracer.StartSpan(ctx, observability.SpanUserdataMove,
		observability.MoveAttrs(user, c.Param("file"), c.Param("dest"))...)
	err = h.storage.Move(userdata.MoveRequest{Source: source, Dest: dest, Overwrite: overwrite})
	switch {
	case errors.Is(err, userdata.ErrDestinationExists):
		outcome = observability.MoveOutcomeConflict
		observability.EndSpan(span, nil, observability.StatusAttr(outcome))
		c.AbortWithStatus(http.StatusConflict)
		return
	case err != nil:
		observability.EndSpan(span, err, observability.StatusAttr(outcome))
		_ = c.Error(err)
		return
	}

	rel, err := h.storage.RelativePath(user, dest)
	if err != nil {
		observability.EndSpan(span, err, observability.StatusAttr(outcome))
		_ = c.Error(err)
		return
	}

	logging.FromContext(spanCtx, h.logger).Info("moving '%s' -> '%s'", source, dest)
	outcome = observability.MoveOutcomeMoved
	observability.EndSpan(span, nil, observability.StatusAttr(outcome))
	c.JSON(http.StatusOK, rel)
}
