package middleware

import (
	"net/http"
	"time"

	"vitalexa/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const internalErrMsg = "Error interno del servidor"

func annotate(e *zerolog.Event, c *gin.Context) *zerolog.Event {
	return e.
		Str("request_id", c.GetString(RequestIDKey)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path)
}

// ErrorHandler turns errors handlers attached to the context into a safe
// 500. The full error lands in the log, never in the response body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		annotate(log.Error(), c).Err(c.Errors.Last().Err).Msg("unhandled error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(internalErrMsg))
	}
}

// Recovery converts panics into 500 responses instead of dropping the
// connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				annotate(log.Error(), c).Interface("panic", r).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(internalErrMsg))
			}
		}()
		c.Next()
	}
}

// Logger emits one structured line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		annotate(log.Info(), c).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
