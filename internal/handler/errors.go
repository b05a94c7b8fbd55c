package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zerobarrier/internal/apperr"
)

// respondError writes err as the JSON error envelope. Server-side failures are
// logged with their cause; the client only sees the classified message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, body := apperr.Response(err)
	if status >= 500 {
		logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", body.Code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
