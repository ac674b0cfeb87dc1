// Chatroom HTTP handlers.
//
//   - GET    /chatrooms          (list or search, weak ETag)
//   - POST   /chatrooms          (create)
//   - DELETE /chatrooms/{id}     (delete with history, cancelling replies)
//   - PUT    /chatrooms/current  (select or clear the current chatroom)
package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chat-store/internal/domain"
	"github.com/tbourn/go-chat-store/internal/http/middleware"
	"github.com/tbourn/go-chat-store/internal/validation"
)

// ListChatroomsResponse carries the chatrooms, newest first.
type ListChatroomsResponse struct {
	Chatrooms         []domain.Chatroom `json:"chatrooms"`
	CurrentChatroomID *string           `json:"currentChatroomId"`
	Query             string            `json:"query,omitempty"`
}

// SetCurrentRequest selects a chatroom. A null or empty id clears the
// selection.
type SetCurrentRequest struct {
	ID *string `json:"id" example:"3f1c2d4e-5a6b-4c7d-8e9f-0a1b2c3d4e5f"`
}

// notModified writes etag and reports whether the client already has it.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	c.Header("Cache-Control", "private, no-cache")
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

// ListChatrooms godoc
// @ID          listChatrooms
// @Summary     List or search chatrooms
// @Description Returns chatrooms newest first. q filters by a case-insensitive substring of the title. The weak ETag changes with every store mutation.
// @Tags        Chatrooms
// @Produce     json
// @Param       q              query   string  false  "Title filter"  example(travel)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object}  handlers.ListChatroomsResponse
// @Header      200  {string}  ETag  "Weak ETag for the current store version"
// @Success     304  {string}  string  "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse  "Not signed in"
// @Router      /chatrooms [get]
func (h *Handlers) ListChatrooms(c *gin.Context) {
	q := c.Query("q")
	etag := fmt.Sprintf(`W/"chatrooms:%d:%s"`, h.store.Version(), url.QueryEscape(q))
	if notModified(c, etag) {
		return
	}
	ok(c, http.StatusOK, ListChatroomsResponse{
		Chatrooms:         h.store.SearchChatrooms(q),
		CurrentChatroomID: h.store.Session().CurrentChatroomID,
		Query:             q,
	})
}

// CreateChatroom godoc
// @ID          createChatroom
// @Summary     Create a chatroom
// @Description Creates an empty chatroom at the top of the list. The title is trimmed and limited to 50 characters.
// @Tags        Chatrooms
// @Accept      json
// @Produce     json
// @Param       body  body      validation.ChatroomInput  true  "Title"
// @Success     201   {object}  domain.Chatroom
// @Failure     400   {object}  handlers.ErrorResponse  "Malformed JSON"
// @Failure     401   {object}  handlers.ErrorResponse  "Not signed in"
// @Failure     422   {object}  handlers.ErrorResponse  "Invalid title"
// @Router      /chatrooms [post]
func (h *Handlers) CreateChatroom(c *gin.Context) {
	var in validation.ChatroomInput
	if !bind(c, &in) {
		return
	}
	room := h.store.CreateChatroom(in.Title)
	if room == nil {
		writeError(c, http.StatusUnprocessableEntity, ErrorResponse{Code: ErrCodeValidation, Message: "Title is required", Field: "title"})
		return
	}
	middleware.LoggerFrom(c).Info().Str("chatroom_id", room.ID).Msg("chatroom created")
	c.Header("Location", c.FullPath()+"/"+room.ID)
	ok(c, http.StatusCreated, room)
}

// DeleteChatroom godoc
// @ID          deleteChatroom
// @Summary     Delete a chatroom
// @Description Removes the chatroom and its history, clears the selection if it pointed there and cancels AI replies still pending for it.
// @Tags        Chatrooms
// @Param       id   path  string  true  "Chatroom ID"
// @Success     204  "Deleted"
// @Failure     401  {object}  handlers.ErrorResponse  "Not signed in"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown chatroom"
// @Router      /chatrooms/{id} [delete]
func (h *Handlers) DeleteChatroom(c *gin.Context) {
	id := c.Param("id")
	if _, found := h.store.Chatroom(id); !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "chatroom not found")
		return
	}
	h.store.DeleteChatroom(id)
	middleware.LoggerFrom(c).Info().Msg("chatroom deleted")
	noContent(c)
}

// SetCurrentChatroom godoc
// @ID          setCurrentChatroom
// @Summary     Select the current chatroom
// @Tags        Chatrooms
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.SetCurrentRequest  true  "Chatroom ID or null"
// @Success     200   {object}  handlers.SessionResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Malformed JSON"
// @Failure     401   {object}  handlers.ErrorResponse  "Not signed in"
// @Failure     404   {object}  handlers.ErrorResponse  "Unknown chatroom"
// @Router      /chatrooms/current [put]
func (h *Handlers) SetCurrentChatroom(c *gin.Context) {
	var req SetCurrentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	id := ""
	if req.ID != nil {
		id = *req.ID
	}
	if id != "" {
		if _, found := h.store.Chatroom(id); !found {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "chatroom not found")
			return
		}
	}
	h.store.SetCurrentChatroom(id)
	ok(c, http.StatusOK, h.session())
}
