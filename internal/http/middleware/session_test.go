package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var signedIn bool
	session := func() (string, bool) {
		if signedIn {
			return "1", true
		}
		return "", false
	}

	r := gin.New()
	r.Use(RequestID(), RequireSession(session))
	r.GET("/chatrooms", func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chatrooms", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["code"] != "unauthorized" || body["request_id"] != w.Header().Get(requestIDHeader) {
		t.Fatalf("unexpected body: %v", body)
	}

	signedIn = true
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chatrooms", nil))
	if w.Code != http.StatusOK || w.Body.String() != "1" {
		t.Fatalf("signed-in: code=%d body=%q", w.Code, w.Body.String())
	}
}
