package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"room-booking-backend/config"
	"room-booking-backend/internal/api"
	"room-booking-backend/internal/db"
	"room-booking-backend/internal/directory"
	"room-booking-backend/internal/feed"
	"room-booking-backend/internal/gateway"
	"room-booking-backend/internal/logging"
	"room-booking-backend/internal/notification"
	"room-booking-backend/internal/parse"
	"room-booking-backend/internal/store"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("configuration loaded", zap.String("path", configPath), zap.String("env", cfg.App.Environment))

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	labels := cfg.RoomLabels()

	var broadcaster feed.Broadcaster
	if cfg.Feed.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Feed.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, changes from other instances arrive on the next poll",
				zap.String("addr", cfg.Feed.RedisAddr), zap.Error(err))
		}
		broadcaster = feed.NewRedisBroadcaster(rdb, cfg.Feed.RedisChannel)
	}

	reservations := feed.New(appStore, cfg.Feed.PollInterval, broadcaster, logger.Named("feed"))
	go reservations.Run(ctx)

	booker := gateway.New(appStore, labels, reservations, logger.Named("gateway"))
	staff := directory.New(appStore, cfg.Staff.Fallback, cfg.Staff.CacheTTL, logger.Named("directory"))

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, logger.Named("push"))
		pool.Start(ctx)
		watcher := notification.NewWatcher(reservations, labels, cfg.Feed.Tick, pool, logger.Named("watcher"))
		go watcher.Run(ctx)
	} else {
		logger.Warn("VAPID keys are not configured, room notifications are disabled")
	}

	handler := api.NewHandler(api.Deps{
		Rooms: cfg.Rooms,
		Slots: parse.SlotRules{
			Hours:    cfg.Booking.SlotHours,
			Length:   cfg.Booking.SlotLength,
			Location: cfg.Booking.Location,
		},
		Booker:        booker,
		Feed:          reservations,
		Staff:         staff,
		Subscriptions: appStore,
		WebPush:       webpushOptions,
		Tick:          cfg.Feed.Tick,
		StaleAfter:    3 * cfg.Feed.PollInterval,
		Logger:        logger.Named("api"),
	})
	router := api.NewRouter(handler, api.RouterOptions{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		CacheTTL:        cfg.Server.CacheTTL,
		Logger:          logger.Named("http"),
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")

	// Streams end when ctx is cancelled, so cancel before draining the server.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown", zap.Error(err))
	}

	logger.Info("server gracefully stopped")
}
