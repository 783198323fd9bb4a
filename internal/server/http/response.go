package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"userdata/internal/userdata"
)

type apiErrorResponse struct {
	Error string `json:"error"`
}

func writeJSONError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, apiErrorResponse{Error: message})
}

// writeResolveFailure forwards a path resolution failure as its own response.
// Any other error is left to ErrorMiddleware.
func writeResolveFailure(c *gin.Context, err error) {
	if resolveErr, ok := userdata.AsResolveError(err); ok {
		writeJSONError(c, resolveErr.Status, resolveErr.Reason)
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func internalError(c *gin.Context) {
	writeJSONError(c, http.StatusInternalServerError, "internal server error")
}
