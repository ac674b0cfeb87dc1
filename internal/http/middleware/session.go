package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionFunc reports the signed-in user, if any.
type SessionFunc func() (userID string, ok bool)

// RequireSession rejects requests with 401 unless session reports a signed-in
// user. On success the user ID is stored for UserID, the access log and the
// rate limiter key.
func RequireSession(session SessionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := session()
		if !ok || uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.GetString(requestIDKey),
				"code":       "unauthorized",
				"message":    "sign in with your phone number first",
			})
			return
		}
		c.Set(userIDKey, uid)
		c.Next()
	}
}
