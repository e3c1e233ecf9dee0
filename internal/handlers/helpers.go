package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/peerwave/backend/internal/apperr"
	"github.com/peerwave/backend/internal/logger"
	"github.com/peerwave/backend/internal/middleware"
	"go.uber.org/zap"
)

// respondError writes the error in the API's wire shape. Unexpected errors
// are logged with the request ID and returned as a generic 500.
func respondError(c *gin.Context, err error) {
	appErr := apperr.From(err)

	if appErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("request failed",
			logger.WithRequestID(c.GetString("request_id")),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	middleware.RecordError(string(appErr.Code), c.FullPath())

	c.JSON(appErr.Status, appErr)
}

func parseIntQuery(c *gin.Context, name string, defaultValue int) int {
	if val, err := strconv.Atoi(c.Query(name)); err == nil {
		return val
	}
	return defaultValue
}
