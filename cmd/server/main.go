package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/campuspass/outpass-server/internal/config"
	"github.com/campuspass/outpass-server/internal/database"
	"github.com/campuspass/outpass-server/internal/handler"
	"github.com/campuspass/outpass-server/internal/jobs"
	"github.com/campuspass/outpass-server/internal/middleware"
	"github.com/campuspass/outpass-server/internal/model"
	"github.com/campuspass/outpass-server/internal/notify"
	"github.com/campuspass/outpass-server/internal/redis"
	"github.com/campuspass/outpass-server/internal/repository"
	"github.com/campuspass/outpass-server/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	gatePassRepo := repository.NewGatePassRepository(db.DB)
	memberRepo := repository.NewMemberRepository(db.DB)
	credRepo := repository.NewSessionCredentialRepository(db.DB)

	var pushSender notify.PushSender = notify.NopPushSender{}
	if cfg.PushGatewayURL != "" {
		pushSender = notify.NewGatewayPushSender(cfg.PushGatewayURL, cfg.PushGatewayKey)
	}
	var smsSender notify.SMSSender = notify.NopSMSSender{}
	if cfg.SMSGatewayURL != "" {
		smsSender = notify.NewGatewaySMSSender(cfg.SMSGatewayURL, cfg.SMSGatewayKey)
	}

	lifecycleService := service.NewLifecycleService(gatePassRepo, memberRepo, cfg.Cooldown())
	registryService := service.NewRegistryService(credRepo, cfg.SessionTokenTTL())
	scanService := service.NewScanService(gatePassRepo, memberRepo, pushSender, smsSender)

	authMiddleware := middleware.NewAuthMiddleware(memberRepo)
	rateLimitMiddleware := middleware.NewRedisRateLimitMiddleware(redisClient.Client)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	requestHandler := handler.NewRequestHandler(
		lifecycleService,
		rateLimitMiddleware.Limit(redis.SubmitLimitKey, cfg.SubmitRateLimitPerMin),
	)
	sessionHandler := handler.NewSessionHandler(registryService)
	scanHandler := handler.NewScanHandler(scanService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)
	r.Use(securityHeadersMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMiddleware.Handler)

		r.Mount("/requests", requestHandler.Routes())

		r.Mount("/sessions", sessionHandler.Routes())

		r.Route("/scan", func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleGuard))
			r.Use(rateLimitMiddleware.Limit(redis.ScanLimitKey, cfg.ScanRateLimitPerMin))
			r.Mount("/", scanHandler.Routes())
		})
	})

	cleanupJob := jobs.NewCleanupJob(credRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
