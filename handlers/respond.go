package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
	"github.com/lovestory/lovestory/backend/go-services/pkg/logger"
)

// respondError answers with the status and message for err's class. Server
// side failures are logged with the route so the cause is not lost behind
// the generic message.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.Message(err)})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
