// Package handlers is the HTTP face of the chat store: auth, session,
// chatroom and message endpoints translated onto store.ChatStore and the
// simulated collaborators.
//
// Every failure is written through fail() as an ErrorResponse:
//
//	HTTP/1.1 422 Unprocessable Entity
//	{
//	  "request_id": "0d3c7c2e-4b0f-4d55-9a51-5a2b5f8f6b1c",
//	  "code": "validation_failed",
//	  "message": "Phone number must be at least 10 digits",
//	  "field": "phoneNumber"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chat-store/internal/http/middleware"
	"github.com/tbourn/go-chat-store/internal/validation"
)

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	// Correlates the response with server logs (X-Request-ID).
	RequestID string `json:"request_id,omitempty" example:"0d3c7c2e-4b0f-4d55-9a51-5a2b5f8f6b1c"`
	// Stable machine-readable code, see errors.go.
	Code string `json:"code" example:"not_found"`
	// Text safe to show to the user.
	Message string `json:"message" example:"chatroom not found"`
	// Field names the offending input on validation errors.
	Field string `json:"field,omitempty" example:"title"`
}

// fail aborts with an ErrorResponse. 5xx responses are logged with the
// request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	writeError(c, status, ErrorResponse{Code: code, Message: msg})
}

func writeError(c *gin.Context, status int, resp ErrorResponse) {
	resp.RequestID = c.Writer.Header().Get("X-Request-ID")
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Message).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail is fail for callers outside the package, such as the router's
// NoRoute handler.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// bind decodes the JSON body into dst and validates it. On failure it writes
// 400 for malformed JSON or 422 naming the first invalid field, and returns
// false.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return false
	}
	if err := validation.Struct(dst); err != nil {
		var ve *validation.Error
		if errors.As(err, &ve) {
			writeError(c, http.StatusUnprocessableEntity, ErrorResponse{
				Code:    ErrCodeValidation,
				Message: ve.Message,
				Field:   ve.Field,
			})
			return false
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	return true
}
