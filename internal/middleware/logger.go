package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// ErrorLogger logs every request, detailed error information, and recovers from panics.
func ErrorLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				requestLogger(log, c, start).Error("panic recovered", "error", err, "stack", string(debug.Stack()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "Internal Server Error",
					},
				})
				return
			}

			l := requestLogger(log, c, start)
			for _, err := range c.Errors {
				l.Error("request error", "type", fmt.Sprintf("%v", err.Type), "error", err.Error(), "meta", err.Meta)
			}
			switch status := c.Writer.Status(); {
			case status >= http.StatusInternalServerError:
				l.Error("request failed")
			case status >= http.StatusBadRequest:
				l.Warn("request rejected")
			default:
				l.Info("request handled")
			}
		}()

		c.Next()
	}
}

func requestLogger(log *slog.Logger, c *gin.Context, start time.Time) *slog.Logger {
	return log.With(
		"status", c.Writer.Status(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"query", c.Request.URL.RawQuery,
		"client_ip", c.ClientIP(),
		"user_id", c.GetInt64("user_id"),
		"role", c.GetString("role"),
		"request_id", c.GetString("request_id"),
		"latency", time.Since(start),
	)
}
