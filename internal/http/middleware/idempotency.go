package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey lets clients retry a message send without posting it
// twice.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey       = "idem.key"
	ctxKeyIdemReplay    = "idem.replay"
	ctxKeyIdemMessageID = "idem.message_id"
	ctxKeyRateBypass    = "rate.bypass"
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key, if the request carried one.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// IsReplay reports whether the key was already used for this user and
// chatroom.
func IsReplay(c *gin.Context) bool {
	return c.GetBool(ctxKeyIdemReplay)
}

// ReplayMessageID returns the ID of the message created by the original
// request when IsReplay is true.
func ReplayMessageID(c *gin.Context) string {
	return c.GetString(ctxKeyIdemMessageID)
}

// IdempotencyOptions tunes header validation.
type IdempotencyOptions struct {
	// MaxLen caps the key length; <= 0 means 200.
	MaxLen int
	// Pattern restricts the key alphabet; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports the message recorded for (userID, chatroomID,
// key) if the record is still live at now. Errors are logged and treated as
// a miss.
type IdempotencyLookup func(ctx context.Context, userID, chatroomID, key string, now time.Time) (messageID string, found bool, err error)

// IdempotencyValidator checks the Idempotency-Key header of POST requests on
// chatroom routes. A malformed key is rejected with 400. A key that was
// already used marks the request as a replay, records the original message
// ID and lets it skip the rate limiter. Requests without the header, and
// non-POST requests, pass through untouched.
//
// It must run after RequireSession so the user is known.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.GetString(requestIDKey),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		uid := UserID(c)
		if lookup == nil || uid == "" {
			c.Next()
			return
		}
		msgID, found, err := lookup(c.Request.Context(), uid, c.Param("id"), key, time.Now().UTC())
		switch {
		case err != nil:
			LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
		case found:
			c.Set(ctxKeyIdemReplay, true)
			c.Set(ctxKeyIdemMessageID, msgID)
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}
}
