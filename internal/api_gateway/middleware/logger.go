package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

const requestLoggerKey = "request_logger"

// Logger logs one line per request. Server errors log at error level and client
// errors at warn. Handlers pick up the request scoped logger with RequestLogger.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		requestLogger := logger
		if correlationID := GetCorrelationID(c); correlationID != "" {
			requestLogger = logger.With("correlation_id", correlationID)
		}
		c.Set(requestLoggerKey, requestLogger)

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		statusCode := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case statusCode >= 500:
			level = slog.LevelError
		case statusCode >= 400:
			level = slog.LevelWarn
		}

		requestLogger.Log(c.Request.Context(), level, "HTTP request",
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"status", statusCode,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)
	}
}

// RequestLogger returns the logger set by Logger, or fallback when the middleware did not run
func RequestLogger(c *gin.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := c.Get(requestLoggerKey); ok {
		if requestLogger, ok := l.(*slog.Logger); ok {
			return requestLogger
		}
	}
	return fallback
}
