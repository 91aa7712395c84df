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

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"slotwise/internal/app"
	"slotwise/internal/config"
	"slotwise/internal/database"
	"slotwise/internal/events"
	"slotwise/internal/pkg/logger"
	"slotwise/internal/pkg/tracing"
	"slotwise/internal/repository"
)

const serviceName = "slotwise-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	ctx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.TracingEnabled,
		ServiceName: serviceName,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		log.Error("tracing setup failed", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	var publishers []events.Publisher
	var kafka *events.KafkaPublisher
	if cfg.KafkaEnabled() {
		kafka, err = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka publisher failed", "error", err)
			os.Exit(1)
		}
		publishers = append(publishers, kafka)
		log.Info("publishing schedule events to kafka", "topic", cfg.KafkaTopic)
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("redis ping failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		publishers = append(publishers, events.NewRedisPublisher(rdb, cfg.RedisPrefix))
	}

	a := app.New(app.Options{
		Config:     cfg,
		DB:         db,
		Log:        log,
		Publishers: publishers,
		RelayFeed:  rdb != nil,
	})

	if rdb != nil {
		relay := events.NewRelay(rdb, cfg.RedisPrefix, a.Hub, log)
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Error("redis relay stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(a.Router, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	stopRelay()
	a.Hub.Close()
	if kafka != nil {
		if err := kafka.Close(); err != nil {
			log.Warn("kafka close failed", "error", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown failed", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
