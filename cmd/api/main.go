package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"campus_scheduler/internal/api"
	"campus_scheduler/internal/config"
	"campus_scheduler/internal/database"
	"campus_scheduler/internal/domain"
	"campus_scheduler/internal/events"
	"campus_scheduler/internal/logging"
	"campus_scheduler/internal/metrics"
	"campus_scheduler/internal/repository"
	"campus_scheduler/internal/service"
	"campus_scheduler/internal/venues"
	"campus_scheduler/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	catalog, err := venues.Load(cfg.Venues.Path)
	if err != nil {
		logger.Error().Err(err).Str("venues_path", cfg.Venues.Path).Msg("load venues")
		return err
	}
	logger.Info().Int("venues", catalog.Len()).Msg("venue catalog loaded")

	db, err := database.NewDB(cfg.Database.Path, logging.Component(&logger, "database"))
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	// Background loops that touch the database finish before it closes.
	var background sync.WaitGroup
	defer background.Wait()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	bus := events.NewEventBus(logging.Component(&logger, "events"))
	metrics.SubscribeEvents(bus)
	bus.Subscribe(events.AuditLogger(logging.Component(&logger, "audit")), events.AllBookingEvents...)

	if err := startNotifications(ctx, &background, cfg, bus, &logger); err != nil {
		return err
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer (func() { _ = repository.Close(redisClient) })()
	}
	limiter := initRateLimiter(ctx, redisClient, &logger)

	bookingService := service.NewBookingService(db, bus, cfg.Booking.StrictApproval, logging.Component(&logger, "booking"))

	backup := database.NewBackupService(db, cfg.Backup, logging.Component(&logger, "backup"))
	background.Add(1)
	go func() {
		defer background.Done()
		backup.Start(ctx)
	}()

	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg.API, bookingService, catalog, db, limiter, &logger)

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(&cfg.API, bookingService, limiter, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	return startServers(ctx, grpcServer, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initRateLimiter returns the shared limiter for multi-instance deployments,
// or nil so the API falls back to in-process token buckets.
func initRateLimiter(ctx context.Context, redisClient *redis.Client, logger *zerolog.Logger) domain.RateLimiter {
	if redisClient == nil {
		return nil
	}

	memory := repository.NewMemoryRateLimitRepository()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				memory.Prune()
			}
		}
	}()

	return repository.NewFailoverRateLimitRepository(
		repository.NewRedisRateLimitRepository(redisClient),
		memory,
		logging.Component(logger, "rate-limit"),
	)
}

func startNotifications(ctx context.Context, wg *sync.WaitGroup, cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) error {
	tg := cfg.Notifications.Telegram
	if !tg.Enabled {
		return nil
	}

	bot, err := service.NewTelegramBot(tg.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("init telegram bot")
		return err
	}

	w := worker.NewNotificationWorker(
		service.NewTelegramService(bot),
		tg.QueueSize,
		worker.RetryPolicy{MaxRetries: tg.MaxRetries},
		logging.Component(logger, "notifications"),
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Start(ctx)
	}()

	service.NewBookingNotifier(w, tg.ManagerChatIDs, logging.Component(logger, "notifier")).Subscribe(bus)
	logger.Info().Int("chats", len(tg.ManagerChatIDs)).Msg("telegram notifications enabled")
	return nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	errCh := make(chan error, 2)

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Bool("grpc", grpcServer != nil).Msg("API server started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return runErr
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
