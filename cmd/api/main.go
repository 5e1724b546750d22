package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ringr-platform/internal/accounts"
	"ringr-platform/internal/agents"
	"ringr-platform/internal/analytics"
	"ringr-platform/internal/audit"
	"ringr-platform/internal/auth"
	"ringr-platform/internal/calls"
	"ringr-platform/internal/config"
	"ringr-platform/internal/httpapi"
	"ringr-platform/internal/plans"
	"ringr-platform/internal/usage"
	"ringr-platform/internal/voice"
	"ringr-platform/internal/webhooks"
	"ringr-platform/pkg/logger"
	"ringr-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local development convenience; real deployments set env directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Domain wiring.
	callRepo := calls.NewPostgresRepo(db)
	usageSvc := usage.NewService(db)
	analyticsSvc := analytics.NewService(analytics.NewPostgresRepo(db))
	callSvc := calls.NewService(callRepo, usageSvc, analyticsSvc)
	accountSvc := accounts.NewService(accounts.NewPostgresRepo(db), plans.NewPostgresRepo(db))

	webhookHandler := webhooks.Handler{
		Registry: voice.NewRegistry(
			voice.NewVapiAdapter(cfg.Voice.VapiWebhookSecret),
			voice.NewRetellAdapter(cfg.Voice.RetellWebhookSecret),
		),
		Agents:          agents.NewPostgresRepo(db),
		Calls:           callSvc,
		Accounts:        accountSvc,
		Audit:           audit.NewService(audit.NewPostgresRepo(db)),
		Guard:           webhooks.NewRedisGuard(rdb, 0),
		DefaultProvider: voice.ProviderVapi,
	}

	apiHandlers := httpapi.Handlers{
		Auth:      authManager,
		Calls:     callRepo,
		Analytics: analyticsSvc,
		Accounts:  accountSvc,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, auth.RequireAccessToken(authManager), webhookHandler, apiHandlers)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
