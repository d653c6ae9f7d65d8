package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"matchroom/internal/cache"
	"matchroom/internal/config"
	"matchroom/internal/repository"
	"matchroom/internal/service"
	"matchroom/internal/transport/rest"
	"matchroom/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	logrus.Info("starting matchroom server")

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logrus.WithError(err).Fatal("failed to ping MongoDB")
	}
	logrus.Info("connected to MongoDB")

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   cfg.RedisDB,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logrus.WithError(err).Fatal("failed to ping Redis")
	}
	logrus.Info("connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	logrus.Info("WebSocket hub started")

	// Initialize storage layers
	ratingRepo := repository.NewRatingRepo(mongoClient, cfg.MongoDB)
	matchCache := cache.NewMatchCache(rdb, cfg.MatchTTL)

	// Initialize services
	matchSvc := service.NewMatchService(matchCache, ratingRepo)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	matchSvc.SetBroadcaster(wsHub)

	// Start the timeout sentinel
	sentinelCtx, stopSentinel := context.WithCancel(ctx)
	defer stopSentinel()
	sentinel := service.NewTimeoutSentinel(rdb, cfg.RedisDB, matchSvc)
	go func() {
		if err := sentinel.Run(sentinelCtx); err != nil && err != context.Canceled {
			logrus.WithError(err).Error("timeout sentinel exited")
		}
	}()

	// Create router with container
	router := rest.NewRouter(&rest.Container{
		MatchService: matchSvc,
		WSHub:        wsHub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server")

	stopSentinel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Fatal("server forced to shutdown")
	}

	logrus.Info("server exited")
}
