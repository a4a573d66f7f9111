package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// loggerKey is the gin context key under which the request-scoped logger is
// stored. requestIDKey must match the key used by the RequestID middleware.
const (
	loggerKey    = "logger"
	requestIDKey = "request_id"
)

// GinMiddleware returns a gin middleware that attaches a request-scoped
// logger to the context and writes one access-log line per request. The log
// level follows the response: 5xx is an error, 4xx a warning.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqLogger := base.With(
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Set(loggerKey, reqLogger)

		c.Next()

		status := c.Writer.Status()
		logFn := reqLogger.Info
		switch {
		case status >= http.StatusInternalServerError:
			logFn = reqLogger.Error
		case status >= http.StatusBadRequest:
			logFn = reqLogger.Warn
		}
		logFn("HTTP Request", accessFields(c, status, time.Since(start))...)
	}
}

// accessFields collects the per-request fields for the access-log line
func accessFields(c *gin.Context, status int, latency time.Duration) []zap.Field {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.Duration("latency", latency),
		zap.String("route", c.FullPath()),
		zap.String("client_ip", c.ClientIP()),
		zap.String("user_agent", c.Request.UserAgent()),
		zap.Int("body_size", c.Writer.Size()),
	}
	if query := c.Request.URL.RawQuery; query != "" {
		fields = append(fields, zap.String("query", query))
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
	}
	return fields
}

// Recovery returns a gin middleware that recovers from panics, logs the
// stack, and fails the request with a bare 500
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				base.Error("Panic recovered",
					zap.String("request_id", c.GetString(requestIDKey)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", r),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// GetGinLogger retrieves the request-scoped logger from gin context. Returns
// a no-op logger outside a request so callers never need a nil check.
func GetGinLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}
