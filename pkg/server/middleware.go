package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
)

// HeaderXRequestID is the request ID header name.
const HeaderXRequestID = "X-Request-ID"

var requestIDCounter uint64

// generateRequestID returns a random 128-bit hex request ID.
func generateRequestID() string {
	b := make([]byte, 16)
	n, err := rand.Read(b)
	if err != nil || n != 16 {
		timestamp := time.Now().Unix()
		counter := atomic.AddUint64(&requestIDCounter, 1)
		return fmt.Sprintf("%x-%x", timestamp, counter)
	}
	return hex.EncodeToString(b)
}

// RequestID returns a middleware that propagates or generates a request ID.
// The ID is stored in the gin context under "request_id" and echoed in the
// X-Request-ID response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Set("request_id", requestID)
		c.Header(HeaderXRequestID, requestID)
		c.Next()
	}
}

// Logger returns a middleware that logs HTTP requests with the global logger.
func Logger(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString("request_id"),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
			logger.Errorw("HTTP request failed", fields...)
			return
		}
		logger.Infow("HTTP request", fields...)
	}
}

// Recovery returns a middleware that recovers from panics and logs them
// with the global logger before responding 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Errorw("HTTP handler panic",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", fmt.Sprintf("%v", recovered),
			"request_id", c.GetString("request_id"),
		)
		c.AbortWithStatus(500)
	})
}
