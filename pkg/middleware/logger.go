package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestedKey is the gin context key the dispatcher sets to the logical
// method name once it is known, so access logs name RPC calls by method
// rather than by the shared multiplexer path.
const RequestedKey = "requested"

// RequestLogger returns a gin middleware for access logging
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if requested := c.GetString(RequestedKey); requested != "" {
			fields = append(fields, zap.String("requested", requested))
		}
		if id := c.GetString(RequestIDKey); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		logger.Info("Request", fields...)
	}
}
