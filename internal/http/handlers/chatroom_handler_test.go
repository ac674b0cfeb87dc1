package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/tbourn/go-chat-store/internal/domain"
)

func TestChatrooms_RequireSession(t *testing.T) {
	api := newTestAPI(t)
	expectError(t, api.do(t, http.MethodGet, "/chatrooms", nil), http.StatusUnauthorized, "unauthorized")
	expectError(t, api.do(t, http.MethodPost, "/chatrooms", map[string]string{"title": "x"}), http.StatusUnauthorized, "unauthorized")
}

func TestCreateAndListChatrooms(t *testing.T) {
	api := newTestAPI(t)
	api.signIn(t)

	w := api.do(t, http.MethodPost, "/chatrooms", map[string]string{"title": "  Travel plans  "})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	first := decode[domain.Chatroom](t, w)
	if first.Title != "Travel plans" || first.ID == "" {
		t.Fatalf("unexpected chatroom: %+v", first)
	}
	if loc := w.Header().Get("Location"); loc != "/chatrooms/"+first.ID {
		t.Fatalf("Location = %q", loc)
	}
	second := decode[domain.Chatroom](t, api.do(t, http.MethodPost, "/chatrooms", map[string]string{"title": "Recipes"}))

	e := expectError(t, api.do(t, http.MethodPost, "/chatrooms", map[string]string{"title": "   "}), http.StatusUnprocessableEntity, ErrCodeValidation)
	if e.Message != "Title is required" {
		t.Fatalf("message = %q", e.Message)
	}
	e = expectError(t, api.do(t, http.MethodPost, "/chatrooms", map[string]string{"title": strings.Repeat("x", 51)}), http.StatusUnprocessableEntity, ErrCodeValidation)
	if e.Message != "Title too long" {
		t.Fatalf("message = %q", e.Message)
	}

	list := decode[ListChatroomsResponse](t, api.do(t, http.MethodGet, "/chatrooms", nil))
	if len(list.Chatrooms) != 2 || list.Chatrooms[0].ID != second.ID || list.Chatrooms[1].ID != first.ID {
		t.Fatalf("list not newest first: %+v", list.Chatrooms)
	}

	found := decode[ListChatroomsResponse](t, api.do(t, http.MethodGet, "/chatrooms?q=TRAVEL", nil))
	if len(found.Chatrooms) != 1 || found.Chatrooms[0].ID != first.ID || found.Query != "TRAVEL" {
		t.Fatalf("search: %+v", found)
	}
}

func TestListChatrooms_ETag(t *testing.T) {
	api := newTestAPI(t)
	api.signIn(t)
	api.store.CreateChatroom("One")

	w := api.do(t, http.MethodGet, "/chatrooms", nil)
	etag := w.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"chatrooms:`) {
		t.Fatalf("etag = %q", etag)
	}
	if w := api.do(t, http.MethodGet, "/chatrooms", nil, "If-None-Match", etag); w.Code != http.StatusNotModified {
		t.Fatalf("revalidation status = %d", w.Code)
	}
	if w := api.do(t, http.MethodGet, "/chatrooms?q=one", nil, "If-None-Match", etag); w.Code != http.StatusOK {
		t.Fatalf("different query reused etag: %d", w.Code)
	}

	api.store.CreateChatroom("Two")
	w = api.do(t, http.MethodGet, "/chatrooms", nil, "If-None-Match", etag)
	if w.Code != http.StatusOK || w.Header().Get("ETag") == etag {
		t.Fatalf("etag not refreshed after mutation: %d %q", w.Code, w.Header().Get("ETag"))
	}
}

func TestDeleteChatroom(t *testing.T) {
	api := newTestAPI(t)
	api.signIn(t)
	room := api.store.CreateChatroom("Doomed")
	api.store.SetCurrentChatroom(room.ID)

	expectError(t, api.do(t, http.MethodDelete, "/chatrooms/nope", nil), http.StatusNotFound, ErrCodeNotFound)

	if w := api.do(t, http.MethodDelete, "/chatrooms/"+room.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	st := api.store.Snapshot()
	if len(st.Chatrooms) != 0 || st.CurrentChatroomID != nil {
		t.Fatalf("state after delete: %+v", st)
	}
	if _, ok := st.Messages[room.ID]; ok {
		t.Fatalf("bucket kept after delete")
	}
}

func TestSetCurrentChatroom(t *testing.T) {
	api := newTestAPI(t)
	api.signIn(t)
	room := api.store.CreateChatroom("Pick me")

	expectError(t, api.do(t, http.MethodPut, "/chatrooms/current", map[string]string{"id": "ghost"}), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, api.do(t, http.MethodPut, "/chatrooms/current", "not json"), http.StatusBadRequest, ErrCodeBadRequest)

	sess := decode[SessionResponse](t, api.do(t, http.MethodPut, "/chatrooms/current", map[string]string{"id": room.ID}))
	if sess.CurrentChatroomID == nil || *sess.CurrentChatroomID != room.ID {
		t.Fatalf("selection not set: %+v", sess)
	}

	sess = decode[SessionResponse](t, api.do(t, http.MethodPut, "/chatrooms/current", map[string]any{"id": nil}))
	if sess.CurrentChatroomID != nil {
		t.Fatalf("selection not cleared: %v", *sess.CurrentChatroomID)
	}
}
