package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/craftculture/orders-api/internal/cache"
	"github.com/craftculture/orders-api/internal/config"
	"github.com/craftculture/orders-api/internal/database"
	"github.com/craftculture/orders-api/internal/events"
	"github.com/craftculture/orders-api/internal/httpx"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("connected to database")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var orderCache *cache.OrderCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		orderCache = cache.New(rdb, cfg.Redis.CacheTTL)
		log.Info("order cache enabled", "addr", cfg.Redis.Addr)
	}

	var producer *events.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ServiceName, 1024, log)
		producer.Start(ctx)
		log.Info("event publishing enabled", "brokers", cfg.Kafka.Brokers)
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{DB: db, Cache: orderCache, Events: producer, Log: log}
	oh.Register(router)
	ph := &httpx.ProductsHandler{DB: db, Log: log}
	ph.Register(router)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	cancel()
	if producer != nil {
		producer.WaitClosed()
	}
}
