// Package middleware holds the Gin middleware shared by the chat store HTTP
// adapter.
//
// This file wires correlation IDs, the access log and panic recovery:
//
//   - RequestID() reuses or mints the X-Request-ID of every request.
//   - Logger() attaches a request-scoped zerolog.Logger and writes one access
//     line per request with query and headers passed through a Redactor.
//   - Recovery() turns panics into the JSON error envelope used by handlers.
//   - LoggerFrom() returns the request-scoped logger for handlers.
//
// Install them in that order so that the access line of a recovered panic
// still carries the request ID.
package middleware

import (
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key holding the correlation ID.
	requestIDKey = "requestID"
	// requestIDHeader carries the correlation ID in both directions.
	requestIDHeader = "X-Request-ID"
	// loggerKey is the Gin context key holding the request-scoped logger.
	loggerKey = "logger"
	// userIDKey is set by RequireSession for authenticated routes.
	userIDKey = "userID"

	maxQueryLogLength = 2048
	maxRequestIDLen   = 128
)

// RequestID propagates the caller's X-Request-ID or generates a UUID when the
// header is missing or longer than 128 bytes. The ID is echoed on the
// response and stored in the Gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Logger writes a structured access line for each request using base as the
// parent logger. Phone numbers, e-mail addresses and OTP codes are scrubbed
// from the query string and from header values; sensitive headers are masked
// entirely. Bodies are never logged.
//
// The level follows the outcome: error for 5xx or when handlers recorded
// gin errors, warn for 4xx, info otherwise.
func Logger(base zerolog.Logger, opts RedactOptions) gin.HandlerFunc {
	red := NewRedactor(opts)
	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		scoped := base.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", route).
			Logger()
		if id := c.Param("id"); id != "" {
			scoped = scoped.With().Str("chatroom_id", id).Logger()
		}
		c.Set(loggerKey, &scoped)

		c.Next()

		uid, _ := c.Get(userIDKey)
		status := c.Writer.Status()

		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0:
			ev = scoped.Error().Str("errors", red.String(c.Errors.String()))
		case status >= 500:
			ev = scoped.Error()
		case status >= 400:
			ev = scoped.Warn()
		default:
			ev = scoped.Info()
		}
		ev.
			Str("user_id", asString(uid)).
			Str("remote_ip", c.ClientIP()).
			Str("query", truncate(red.String(unescapedQuery(c.Request)), maxQueryLogLength)).
			Interface("headers", red.Headers(c.Request.Header)).
			Int64("bytes_in", c.Request.ContentLength).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("http_request")
	}
}

// Recovery converts a panic into a 500 response. The panic value and stack
// go to the request-scoped logger. When nothing has been written yet the
// client receives {"request_id","code":"internal_error","message"}.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := c.GetString(requestIDKey)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the logger attached by Logger, or the global logger when
// none is attached. The result is never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.Logger
	return &l
}

// UserID returns the ID stored by RequireSession, or "".
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// unescapedQuery decodes the raw query so percent-encoded phone numbers are
// still recognized by the redactor.
func unescapedQuery(r *http.Request) string {
	q := r.URL.RawQuery
	if uq, err := url.QueryUnescape(q); err == nil {
		return uq
	}
	return q
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at max bytes and appends an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
