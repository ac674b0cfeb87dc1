// Message HTTP handlers.
//
//   - GET  /chatrooms/{id}/messages        (page of history, newest page first)
//   - POST /chatrooms/{id}/messages        (send; the AI reply follows asynchronously)
//   - POST /chatrooms/{id}/messages/older  (load a batch of older history)
//
// Sends honor Idempotency-Key: a retried key returns the message created by
// the first request with Idempotency-Replayed: true instead of sending again.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chat-store/internal/domain"
	"github.com/tbourn/go-chat-store/internal/http/middleware"
	"github.com/tbourn/go-chat-store/internal/repo"
	"github.com/tbourn/go-chat-store/internal/store"
	"github.com/tbourn/go-chat-store/internal/sysutil"
	"github.com/tbourn/go-chat-store/internal/utils"
	"github.com/tbourn/go-chat-store/internal/validation"
)

const maxMessagePageSize = 100

// Pagination describes a message page. Page 1 holds the newest messages.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// ListMessagesResponse is a page of a chatroom's history in chronological
// order.
type ListMessagesResponse struct {
	ChatroomID string           `json:"chatroomId"`
	Messages   []domain.Message `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

// SendMessageResponse returns the stored user message. Reply is set only
// when the caller asked to wait for the AI answer.
type SendMessageResponse struct {
	Message      domain.Message  `json:"message"`
	ReplyPending bool            `json:"replyPending"`
	Reply        *domain.Message `json:"reply,omitempty"`
}

// LoadOlderRequest names the history page to synthesize.
type LoadOlderRequest struct {
	Page int `json:"page" binding:"required,min=1" example:"1"`
}

// LoadOlderResponse reports how many messages were prepended.
type LoadOlderResponse struct {
	Added int `json:"added"`
	Page  int `json:"page"`
}

// ListMessages godoc
// @ID          listMessages
// @Summary     Page of chatroom history
// @Description Page 1 holds the newest page_size messages; each page is in chronological order.
// @Tags        Messages
// @Produce     json
// @Param       id             path    string  true   "Chatroom ID"
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object}  handlers.ListMessagesResponse
// @Success     304  {string}  string  "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse  "Not signed in"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown chatroom"
// @Router      /chatrooms/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	id := c.Param("id")
	page, size := utils.ClampPage(c.Query("page"), c.Query("page_size"), store.HistoryBatchSize, maxMessagePageSize)

	etag := fmt.Sprintf(`W/"messages:%s:%d:%d:%d"`, id, h.store.Version(), page, size)
	p, found := h.store.MessagesPage(id, page, size)
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "chatroom not found")
		return
	}
	if notModified(c, etag) {
		return
	}
	ok(c, http.StatusOK, ListMessagesResponse{
		ChatroomID: id,
		Messages:   p.Messages,
		Pagination: Pagination{
			Page:       p.Page,
			PageSize:   p.PageSize,
			Total:      p.Total,
			TotalPages: p.TotalPages,
			HasNext:    p.HasNext,
		},
	})
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a message
// @Description Appends the user message and schedules the AI reply, which arrives after the reply delay plus the responder's latency. With wait=true the call blocks until the reply is stored (or cancelled) and returns it.
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Param       id               path    string                    true   "Chatroom ID"
// @Param       Idempotency-Key  header  string                    false  "Key for safe retries"
// @Param       wait             query   bool                      false  "Block until the AI reply is stored"
// @Param       body             body    validation.MessageInput   true   "Content and optional image"
// @Success     202  {object}  handlers.SendMessageResponse  "Sent, reply pending"
// @Success     200  {object}  handlers.SendMessageResponse  "Replay, or reply included with wait=true"
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed JSON or Idempotency-Key"
// @Failure     401  {object}  handlers.ErrorResponse  "Not signed in"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown chatroom"
// @Failure     409  {object}  handlers.ErrorResponse  "Replayed message no longer exists"
// @Failure     422  {object}  handlers.ErrorResponse  "Invalid content"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Router      /chatrooms/{id}/messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	id := c.Param("id")
	if _, found := h.store.Chatroom(id); !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "chatroom not found")
		return
	}

	var in validation.MessageInput
	if !bind(c, &in) {
		return
	}

	if middleware.IsReplay(c) {
		prev, found := h.store.FindMessage(id, middleware.ReplayMessageID(c))
		if !found {
			fail(c, http.StatusConflict, ErrCodeSendConflict, "the message for this Idempotency-Key no longer exists")
			return
		}
		c.Header("Idempotency-Replayed", "true")
		ok(c, http.StatusOK, SendMessageResponse{Message: prev})
		return
	}

	lg := middleware.LoggerFrom(c)
	msg, handle, sent := h.store.SendToChatroom(id, in.Content, in.Image)
	if !sent {
		// Deleted between the lookup above and the send.
		fail(c, http.StatusNotFound, ErrCodeNotFound, "chatroom not found")
		return
	}

	if key, has := middleware.GetIdempotencyKey(c); has && h.idem != nil {
		err := h.idem.Record(c.Request.Context(), middleware.UserID(c), id, key, msg.ID, h.idemTTL)
		if err != nil && !errors.Is(err, repo.ErrDuplicate) {
			lg.Warn().Err(err).Msg("idempotency record failed")
		}
	}

	resp := SendMessageResponse{Message: msg, ReplyPending: handle != nil}
	if handle == nil || !sysutil.IsTruthy(c.Query("wait")) {
		ok(c, http.StatusAccepted, resp)
		return
	}

	reply, err := handle.Wait(c.Request.Context())
	switch {
	case err == nil:
		resp.Reply = reply
		resp.ReplyPending = false
		ok(c, http.StatusOK, resp)
	case errors.Is(err, store.ErrChatroomDeleted), errors.Is(err, store.ErrLoggedOut), errors.Is(err, store.ErrReplyCancelled):
		resp.ReplyPending = false
		ok(c, http.StatusOK, resp)
	default:
		// Client went away or the responder failed; the user message stands.
		lg.Warn().Err(err).Msg("reply not delivered")
		resp.ReplyPending = false
		ok(c, http.StatusAccepted, resp)
	}
}

// LoadOlderMessages godoc
// @ID          loadOlderMessages
// @Summary     Load older history
// @Description Prepends a batch of 20 synthesized older messages for the given page.
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Param       id    path      string                     true  "Chatroom ID"
// @Param       body  body      handlers.LoadOlderRequest  true  "History page (>= 1)"
// @Success     200   {object}  handlers.LoadOlderResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401   {object}  handlers.ErrorResponse  "Not signed in"
// @Failure     404   {object}  handlers.ErrorResponse  "Unknown chatroom"
// @Router      /chatrooms/{id}/messages/older [post]
func (h *Handlers) LoadOlderMessages(c *gin.Context) {
	id := c.Param("id")
	if _, found := h.store.Chatroom(id); !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "chatroom not found")
		return
	}
	var req LoadOlderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "page must be a positive integer")
		return
	}
	added := h.store.LoadMoreMessages(id, req.Page)
	ok(c, http.StatusOK, LoadOlderResponse{Added: added, Page: req.Page})
}
