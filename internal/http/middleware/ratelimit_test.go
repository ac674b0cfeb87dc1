package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func testCtx(remote string) *gin.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = net.JoinHostPort(remote, "12345")
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestKeyFuncs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := testCtx("203.0.113.9")

	if got := KeyByUserOrIP()(c); got != "ip:203.0.113.9" {
		t.Fatalf("anonymous key = %q", got)
	}
	c.Set(userIDKey, "1")
	if got := KeyByUserOrIP()(c); got != "user:1" {
		t.Fatalf("user key = %q", got)
	}
	if got := KeyByIP()(c); got != "ip:203.0.113.9" {
		t.Fatalf("KeyByIP ignores user, got %q", got)
	}
}

func TestNewRateLimiter_DefaultsAndBucketReuse(t *testing.T) {
	rl := NewRateLimiter(2, 0, nil)
	if rl.burst != 1 || rl.keyFn == nil {
		t.Fatalf("defaults not applied: burst=%d", rl.burst)
	}
	a := rl.bucket("k1")
	if rl.bucket("k1") != a {
		t.Fatalf("bucket not reused")
	}
	if rl.bucket("k2") == a {
		t.Fatalf("distinct keys share a bucket")
	}
	rl.buckets.Delete("k1")
	if rl.bucket("k1") == a {
		t.Fatalf("evicted bucket came back")
	}
}

func TestIsRateBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := testCtx("198.51.100.1")
	if IsRateBypass(c) {
		t.Fatalf("bypass set by default")
	}
	c.Set(ctxKeyRateBypass, true)
	if !IsRateBypass(c) {
		t.Fatalf("bypass not detected")
	}
	c.Set(ctxKeyRateBypass, "yes")
	if IsRateBypass(c) {
		t.Fatalf("non-bool treated as bypass")
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(0.5, 1, KeyByIP())
	r := gin.New()
	r.Use(RequestID(), rl.Handler())
	r.POST("/auth/otp", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/otp", nil)
		req.RemoteAddr = net.JoinHostPort(ip, "1000")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := do("192.0.2.1"); w.Code != http.StatusOK {
		t.Fatalf("first request = %d", w.Code)
	}
	w := do("192.0.2.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("Retry-After = %q; want 2", got)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["code"] != "rate_limited" || body["request_id"] != w.Header().Get(requestIDHeader) {
		t.Fatalf("unexpected body: %v", body)
	}

	if w := do("192.0.2.2"); w.Code != http.StatusOK {
		t.Fatalf("other client limited: %d", w.Code)
	}
}

func TestRateLimiter_ZeroRateAndBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(0, 1, KeyByIP())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Replay") != "" {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}, rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(replay bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if replay {
			req.Header.Set("X-Replay", "1")
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := get(false); w.Code != http.StatusOK {
		t.Fatalf("burst token not granted: %d", w.Code)
	}
	w := get(false)
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "1" {
		t.Fatalf("zero rate: code=%d retry=%q", w.Code, w.Header().Get("Retry-After"))
	}
	if w := get(true); w.Code != http.StatusOK {
		t.Fatalf("replay not bypassed: %d", w.Code)
	}
}
