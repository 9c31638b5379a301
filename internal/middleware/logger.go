package middleware

import (
	"time" // Request timing

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Request ids
	"github.com/sirupsen/logrus" // Logging library
)

// Request id header and context key
const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// RequestID tags each request with an id, reusing the caller's when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString() // Generate a fresh id
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request with its id, status and latency
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now() // Request start time
		c.Next()

		fields := logrus.Fields{
			"request_id": c.GetString(RequestIDKey),        // Request id
			"method":     c.Request.Method,                 // HTTP method
			"path":       c.FullPath(),                     // Route pattern
			"status":     c.Writer.Status(),                // Response status
			"latency_ms": time.Since(start).Milliseconds(), // Request latency
			"client_ip":  c.ClientIP(),                     // Caller address
		}
		if p, ok := PrincipalFrom(c); ok {
			fields["user_id"] = p.UserID // Authenticated user
		}
		entry := log.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("Request failed")
		case c.Writer.Status() >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}

// Logger returns a logger carrying the request id of c
func Logger(c *gin.Context, log logrus.FieldLogger) logrus.FieldLogger {
	return log.WithField(RequestIDKey, c.GetString(RequestIDKey))
}
