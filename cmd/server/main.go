package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/remindbot/remind-server-go/internal/config"
	"github.com/remindbot/remind-server-go/internal/conversation"
	"github.com/remindbot/remind-server-go/internal/database"
	"github.com/remindbot/remind-server-go/internal/handler"
	"github.com/remindbot/remind-server-go/internal/jobs"
	"github.com/remindbot/remind-server-go/internal/middleware"
	"github.com/remindbot/remind-server-go/internal/redis"
	"github.com/remindbot/remind-server-go/internal/repository"
	"github.com/remindbot/remind-server-go/internal/service"
	"github.com/remindbot/remind-server-go/internal/timeparse"
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
	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	loc := cfg.Location()

	reminderRepo := repository.NewReminderRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(redisClient.Client)

	machine := conversation.NewMachine(cfg.Keywords(), timeparse.NewDefaultResolver(loc))
	convService := service.NewConversationService(sessionRepo, reminderRepo, machine, loc)
	lineService := service.NewLineService(service.LineServiceConfig{
		BaseURL:     cfg.LineAPIBaseURL,
		AccessToken: cfg.LineChannelAccessToken,
		Timeout:     cfg.LineHTTPTimeout,
		Location:    loc,
	})

	lineSignatureMiddleware := middleware.NewLineSignatureMiddleware(cfg.LineChannelSecret)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	deduper := redis.NewEventDeduper(redisClient.Client, cfg.EventDedupTTL())
	userLimiter := redis.NewRateLimiter(redisClient.Client, cfg.UserRateLimitPerMinute, time.Minute)
	lineHandler := handler.NewLineHandler(convService, lineService, deduper).WithRateLimiter(userLimiter)
	healthHandler := handler.NewHealthHandler(map[string]handler.PingFunc{
		"database": db.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", healthHandler.ServeHTTP)

	r.Route("/line", func(r chi.Router) {
		r.Use(lineSignatureMiddleware.Handler)
		r.Post("/webhook", lineHandler.Webhook)
	})

	locker := redis.NewLocker(redisClient.Client, uuid.NewString())
	deliveryJob := jobs.NewDeliveryJob(
		reminderRepo, lineService, locker, cfg.DeliveryInterval(), cfg.DeliveryConcurrency,
	)
	deliveryJob.Start()
	defer deliveryJob.Stop()

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
