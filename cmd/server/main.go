package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bogdang40/DouaInimi/internal/app"
	"github.com/bogdang40/DouaInimi/internal/cache"
	"github.com/bogdang40/DouaInimi/internal/config"
	"github.com/bogdang40/DouaInimi/internal/db"
	"github.com/bogdang40/DouaInimi/internal/events"
	"github.com/bogdang40/DouaInimi/internal/logger"
	"github.com/bogdang40/DouaInimi/internal/notify"
	"github.com/bogdang40/DouaInimi/internal/presence"
	"github.com/bogdang40/DouaInimi/internal/repository"
	"github.com/bogdang40/DouaInimi/internal/router"
	"github.com/bogdang40/DouaInimi/internal/ws"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Event bus with its consumers: email notifier and the optional kafka
	// mirror.
	bus := events.NewBus(256)
	tracker := presence.NewTracker(redisCache)
	notifier := notify.NewNotifier(cfg, nil, repository.NewUserRepository(database), tracker)
	bus.Subscribe(notifier.Handle)
	if cfg.Kafka.Enabled {
		mirror := events.NewKafkaMirror(cfg)
		bus.Subscribe(mirror.Handle)
		defer mirror.Close()
	}
	defer bus.Close()

	appCtx := app.New(database, redisCache, log, bus, cfg)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	gateway := ws.NewGateway(appCtx, tracker)
	engine := router.New(appCtx, gateway)

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		log.Info("starting HTTP server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "err", err)
	}
}
