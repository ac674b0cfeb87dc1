// Command chatstore runs the chat state store behind its HTTP adapter.
//
// Configuration comes from the environment (see internal/config); a .env file
// in the working directory is loaded first unless SKIP_DOTENV is truthy.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-chat-store/internal/config"
	httpapi "github.com/tbourn/go-chat-store/internal/http"
	"github.com/tbourn/go-chat-store/internal/observability"
	"github.com/tbourn/go-chat-store/internal/repo"
	"github.com/tbourn/go-chat-store/internal/services"
	"github.com/tbourn/go-chat-store/internal/store"
	"github.com/tbourn/go-chat-store/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownGrace = 10 * time.Second

// @title       Chat Store API
// @version     1.0
// @description Local JSON API over the chat state store: phone/OTP sign-in, chatrooms, messages with simulated AI replies.
// @BasePath    /api/v1
func main() {
	if !sysutil.IsTruthy(os.Getenv("SKIP_DOTENV")) {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		}
	}

	cfg := config.MustLoad()
	sysutil.SetLogLevel(cfg.LogLevel)
	logger := sysutil.NewLogger(cfg.LogPretty, os.Stderr, sysutil.FirstNonEmpty(cfg.OTEL.ServiceName, "go-chat-store"))
	log.Logger = logger

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("chatstore exited")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath, repo.OpenOptions{Tracing: cfg.OTEL.Enabled})
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if n, err := repo.PurgeExpiredIdempotency(ctx, db, time.Now().UTC()); err != nil {
		logger.Warn().Err(err).Msg("purge idempotency keys")
	} else if n > 0 {
		logger.Info().Int64("purged", n).Msg("expired idempotency keys removed")
	}

	chat := store.New(
		store.WithPersister(repo.NewBlobStore(db, cfg.StorageName)),
		store.WithResponder(services.NewMockResponder(cfg.ResponderMinDelay, cfg.ResponderMaxDelay, nil)),
		store.WithReplyDelay(cfg.ReplyDelay),
		store.WithLogger(logger.With().Str("component", "store").Logger()),
	)
	if err := chat.Hydrate(ctx); err != nil {
		// A blob that cannot be read is treated like an empty one.
		logger.Warn().Err(err).Msg("hydrate state")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Store:     chat,
		Auth:      services.NewAuthService(cfg.OTPDelay),
		Countries: services.NewCountryDirectory(cfg.CountriesURL, cfg.CountriesTTL, nil),
		DB:        db,
		Logger:    logger,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	// Let in-flight replies land so their messages reach the blob.
	if err := chat.Wait(sctx); err != nil {
		logger.Warn().Err(err).Msg("pending replies abandoned")
	}
	return nil
}
