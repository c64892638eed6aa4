package http_server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

type ctxKey string

const loggerKey ctxKey = "logger"

// requestLogger tags every request with an ID and logs it once it completes.
func requestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Header(requestIDHeader, requestID)

		log := base.With().Str("request_id", requestID).Logger()
		c.Set(string(loggerKey), log)

		started := time.Now()

		c.Next()

		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(started)).
			Msg("HTTP request")
	}
}

func requestLog(c *gin.Context) *zerolog.Logger {
	if value, ok := c.Get(string(loggerKey)); ok {
		if log, ok := value.(zerolog.Logger); ok {
			return &log
		}
	}

	nop := zerolog.Nop()

	return &nop
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		requestLog(c).Error().Interface("panic", recovered).Msg("Recovered from panic")

		respondMessage(c, http.StatusInternalServerError, "Internal server error")
		c.Abort()
	})
}
