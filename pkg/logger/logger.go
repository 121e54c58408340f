package logger

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the correlation id of a request. An incoming value
// is reused, otherwise one is generated.
const RequestIDHeader = "X-Request-ID"

const (
	requestIDKey = "request_id"
	// set by the auth middleware
	reviewerKey = "email"
)

var log zerolog.Logger

func init() {
	Init("info")
}

// Init installs the process logger. Unknown or empty levels mean info; debug
// switches to console output.
func Init(level string) {
	lvl := ParseLevel(level)
	var w io.Writer = os.Stdout
	if lvl <= zerolog.DebugLevel {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	InitWithWriter(lvl, w)
}

// InitWithWriter installs a JSON logger writing to w.
func InitWithWriter(lvl zerolog.Level, w io.Writer) {
	log = zerolog.New(w).Level(lvl).With().Timestamp().Caller().Logger()
}

func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Level reports the level of the process logger.
func Level() zerolog.Level {
	return log.GetLevel()
}

func Info() *zerolog.Event  { return log.Info() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }

func Infof(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

// Fatalf logs and exits the process.
func Fatalf(format string, v ...interface{}) {
	log.Fatal().Msgf(format, v...)
}

// RequestID returns the correlation id GinLogger assigned to c.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// For returns a logger carrying the request id, method and route of c.
func For(c *gin.Context) *zerolog.Logger {
	l := log.With().
		Str(requestIDKey, RequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Logger()
	return &l
}

// GinLogger assigns a request id and writes one line per request. 5xx log at
// error, 4xx at warn, successful health probes at debug.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		case c.FullPath() == "/health":
			event = log.Debug()
		default:
			event = log.Info()
		}

		if reviewer := c.GetString(reviewerKey); reviewer != "" {
			event = event.Str("reviewer", reviewer)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str(requestIDKey, id).
			Int("status", status).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Str("ip", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Int("size", c.Writer.Size()).
			Msg("request")
	}
}

// GinRecovery turns a handler panic into the JSON 500 envelope.
func GinRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		For(c).Error().
			Interface("panic", recovered).
			Str("ip", c.ClientIP()).
			Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "internal server error",
		})
	})
}
