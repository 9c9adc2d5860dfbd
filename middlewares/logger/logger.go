package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/logger"
	"github.com/sirupsen/logrus"
)

// GinLogger logs one line per request through the shared InfoLogger.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := logrus.Fields{
			"status":   c.Writer.Status(),
			"method":   c.Request.Method,
			"path":     path,
			"latency":  time.Since(start).String(),
			"clientIP": c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			logger.ErrorLogger.WithFields(fields).Error(c.Errors.String())
			return
		}
		logger.InfoLogger.WithFields(fields).Info("request handled")
	}
}
