package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoCache keeps clients and proxies from caching any response.
func NoCache(c *gin.Context) {
	c.Header("cache-control", "no-cache")
	c.Next()
}

// RequestLogger writes one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client", c.ClientIP()))
	}
}

type errorLogWriter struct {
	gin.ResponseWriter
	logger *zap.Logger
}

func (w errorLogWriter) Write(b []byte) (int, error) {
	if status := w.ResponseWriter.Status(); status >= 400 {
		w.logger.Debug("error response", zap.Int("status", status), zap.ByteString("body", b))
	}
	return w.ResponseWriter.Write(b)
}

// ErrorLogMiddleware logs the body of every error response. It has to run
// without gzip, the body would be compressed otherwise.
func ErrorLogMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = errorLogWriter{ResponseWriter: c.Writer, logger: logger}
		c.Next()
	}
}
