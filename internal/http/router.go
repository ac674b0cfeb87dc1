// Package httpapi wires the HTTP transport (Gin) to the chat store, the
// simulated collaborators and the middleware stack. It owns middleware
// ordering, CORS posture, the health and metrics endpoints, and the route
// table mounted under the configured API base path. The OpenAPI document is
// served under /swagger/.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-chat-store/docs"
	"github.com/tbourn/go-chat-store/internal/config"
	"github.com/tbourn/go-chat-store/internal/http/handlers"
	"github.com/tbourn/go-chat-store/internal/http/middleware"
	"github.com/tbourn/go-chat-store/internal/repo"
)

// Deps are the collaborators RegisterRoutes mounts. DB holds the
// idempotency table; Logger is the parent of every request-scoped logger.
type Deps struct {
	Store     handlers.ChatStore
	Auth      handlers.Authenticator
	Countries handlers.CountryLister
	DB        *gorm.DB
	Logger    zerolog.Logger
}

var (
	corsMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsHeaders = []string{"Origin", "Content-Type", "Accept", "If-None-Match", middleware.HeaderIdempotencyKey}
	corsExpose  = []string{"X-Request-ID", "ETag", "Retry-After", "Location", "Idempotency-Replayed"}
)

// RegisterRoutes attaches all middleware and HTTP endpoints to r.
//
// Middleware order matters:
//  1. OpenTelemetry
//  2. RequestID
//  3. Logger with redaction
//  4. Recovery, after the logger so panics are logged with the request ID
//  5. gzip and the body size limit
//  6. Metrics
//  7. CORS and security headers
//
// Routes under the authenticated group additionally run RequireSession,
// the idempotency validator and the per-user rate limiter, in that order, so
// a replayed send bypasses the limiter. The /auth routes get a stricter
// per-IP limiter of their own.
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger, middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	// promhttp compresses /metrics itself.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(limitBody(cfg.MaxBodyBytes))
	r.Use(middleware.Metrics())
	r.GET("/metrics", middleware.MetricsHandler())

	if len(cfg.CORS.AllowedOrigins) == 0 {
		// ACAO: * even without an Origin header, so plain clients see it too.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    corsExpose,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    corsExpose,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	docs.SwaggerInfo.BasePath = groupWithPrefix(r, cfg.APIBasePath).BasePath()
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	idem := repo.NewIdempotencyStore(d.DB)
	h := handlers.New(handlers.Deps{
		Store:          d.Store,
		Auth:           d.Auth,
		Countries:      d.Countries,
		Idempotency:    idem,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		otp := middleware.NewRateLimiter(cfg.OTPRateRPS, cfg.OTPRateBurst, middleware.KeyByIP())
		auth := api.Group("/auth", otp.Handler())
		auth.POST("/otp", h.SendOTP)
		auth.POST("/verify", h.VerifyOTP)
		auth.POST("/logout", h.Logout)

		api.GET("/session", h.GetSession)
		api.PUT("/preferences/theme", h.SetTheme)
		api.GET("/countries", h.ListCountries)
	}

	limiter := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	authed := api.Group("",
		middleware.RequireSession(sessionOf(d.Store)),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idem.Lookup),
		limiter.Handler(),
	)
	{
		authed.GET("/chatrooms", h.ListChatrooms)
		authed.POST("/chatrooms", h.CreateChatroom)
		authed.PUT("/chatrooms/current", h.SetCurrentChatroom)
		authed.DELETE("/chatrooms/:id", h.DeleteChatroom)

		authed.GET("/chatrooms/:id/messages", h.ListMessages)
		authed.POST("/chatrooms/:id/messages", h.SendMessage)
		authed.POST("/chatrooms/:id/messages/older", h.LoadOlderMessages)
	}
}

// sessionOf reports the signed-in user of s.
func sessionOf(s handlers.ChatStore) middleware.SessionFunc {
	return func() (string, bool) {
		st := s.Session()
		if !st.IsAuthenticated || st.User == nil {
			return "", false
		}
		return st.User.ID, true
	}
}

// limitBody caps the request body at maxBytes using http.MaxBytesReader.
// Reads past the cap fail, which binding reports as a bad request.
// maxBytes <= 0 disables the cap.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
