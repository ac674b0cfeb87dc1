package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-chat-store/internal/domain"
	"github.com/tbourn/go-chat-store/internal/http/middleware"
	"github.com/tbourn/go-chat-store/internal/repo"
	"github.com/tbourn/go-chat-store/internal/services"
	"github.com/tbourn/go-chat-store/internal/store"
)

type stubCountries struct {
	list []domain.Country
	err  error
}

func (s stubCountries) Countries(context.Context) ([]domain.Country, error) { return s.list, s.err }

type testAPI struct {
	r     *gin.Engine
	store *store.ChatStore
}

type apiConfig struct {
	deps      Deps
	storeOpts []store.Option
	wrap      func(*store.ChatStore) ChatStore
}

type apiOption func(*apiConfig)

func withCountries(c CountryLister) apiOption { return func(a *apiConfig) { a.deps.Countries = c } }

func withAuth(auth Authenticator) apiOption { return func(a *apiConfig) { a.deps.Auth = auth } }

// withStoreWrapper hands the handlers wrap(store) instead of the store itself.
func withStoreWrapper(wrap func(*store.ChatStore) ChatStore) apiOption {
	return func(a *apiConfig) { a.wrap = wrap }
}

func withStoreOptions(opts ...store.Option) apiOption {
	return func(a *apiConfig) { a.storeOpts = append(a.storeOpts, opts...) }
}

// seqIDs hands out ids in order, then falls back to unique ones.
func seqIDs(ids ...string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		if n <= len(ids) {
			return ids[n-1]
		}
		return fmt.Sprintf("gen-%d", n)
	}
}

// newTestAPI wires the handlers the way the router does, over a real store
// with an echoing responder and no reply delay, and a temp-dir SQLite file
// for idempotency records.
func newTestAPI(t *testing.T, opts ...apiOption) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var cfg apiConfig
	for _, o := range opts {
		o(&cfg)
	}

	s := store.New(append([]store.Option{
		store.WithReplyDelay(0),
		store.WithResponder(store.ResponderFunc(func(_ context.Context, prompt string) (string, error) {
			return "echo: " + prompt, nil
		})),
	}, cfg.storeOpts...)...)
	t.Cleanup(func() {
		s.Logout()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Wait(ctx)
	})

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "handlers.db"), repo.OpenOptions{Silent: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	idem := repo.NewIdempotencyStore(db)

	deps := cfg.deps
	deps.Store = s
	if cfg.wrap != nil {
		deps.Store = cfg.wrap(s)
	}
	deps.Idempotency = idem
	deps.IdempotencyTTL = time.Hour
	if deps.Auth == nil {
		deps.Auth = services.NewAuthService(0)
	}
	if deps.Countries == nil {
		deps.Countries = stubCountries{list: services.FallbackCountries}
	}
	h := New(deps)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(zerolog.Nop(), middleware.RedactOptions{}), middleware.Recovery())
	r.POST("/auth/otp", h.SendOTP)
	r.POST("/auth/verify", h.VerifyOTP)
	r.POST("/auth/logout", h.Logout)
	r.GET("/session", h.GetSession)
	r.PUT("/preferences/theme", h.SetTheme)
	r.GET("/countries", h.ListCountries)

	authed := r.Group("")
	authed.Use(
		middleware.RequireSession(func() (string, bool) {
			st := s.Session()
			if !st.IsAuthenticated || st.User == nil {
				return "", false
			}
			return st.User.ID, true
		}),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, idem.Lookup),
	)
	authed.GET("/chatrooms", h.ListChatrooms)
	authed.POST("/chatrooms", h.CreateChatroom)
	authed.PUT("/chatrooms/current", h.SetCurrentChatroom)
	authed.DELETE("/chatrooms/:id", h.DeleteChatroom)
	authed.GET("/chatrooms/:id/messages", h.ListMessages)
	authed.POST("/chatrooms/:id/messages", h.SendMessage)
	authed.POST("/chatrooms/:id/messages/older", h.LoadOlderMessages)

	return &testAPI{r: r, store: s}
}

// do sends body (marshalled unless it is a string) and returns the recorder.
func (a *testAPI) do(t *testing.T, method, path string, body any, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func (a *testAPI) signIn(t *testing.T) {
	t.Helper()
	a.store.SetUser(&domain.User{ID: "1", Phone: "+15551234567"})
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body %s)", v, err, w.Body.String())
	}
	return v
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d; want %d (body %s)", w.Code, status, w.Body.String())
	}
	e := decode[ErrorResponse](t, w)
	if e.Code != code {
		t.Fatalf("code = %q; want %q", e.Code, code)
	}
	if e.RequestID == "" {
		t.Fatalf("missing request_id")
	}
	return e
}
