package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"movieapi/httpserver"
	"movieapi/memory"
	"movieapi/movie"
	"movieapi/pkg/config"
	"movieapi/pkg/logger"
	"movieapi/pkg/sentry"
	"movieapi/rabbitmq"
	"movieapi/redis"
)

// @title Movie API
// @version 1.0
// @description In-memory movie catalogue.
// @BasePath /
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.S().Fatalw("Cannot load config", "error", err)
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		zap.S().Fatalw("Cannot init logger", "error", err)
	}
	defer func() { _ = log.Sync() }()

	err = sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Fatalw("Cannot init sentry", "error", err)
	}
	defer sentrygo.Flush(sentry.FlushTime)

	repo := memory.NewMovieRepository()

	var publisher movie.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
		if err != nil {
			sentry.WithExtras(map[string]interface{}{"queue": cfg.RabbitMQ.Queue}).
				Warningf("rabbitmq unavailable, movie events disabled: %v", err)
			log.Warnw("rabbitmq unavailable, movie events disabled", "error", err)
		} else {
			defer func() { _ = p.Close() }()
			publisher = p
		}
	}

	options := []httpserver.Options{
		httpserver.WithConfig(cfg),
		httpserver.WithLogger(log),
		httpserver.WithMovieService(movie.NewUsecase(repo, publisher)),
	}
	if cfg.Redis.Addr != "" && cfg.RateLimitRPS > 0 {
		client := redis.NewClient(redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = client.Close() }()
		store := redis.NewRateLimiterStore(client, log, cfg.RateLimitRPS, time.Second)
		options = append(options, httpserver.WithRateLimiterStore(store))
	}

	server, err := httpserver.New(options...)
	if err != nil {
		log.Fatalw("Cannot create server", "error", err)
	}

	server.Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "movieapi",
		Name:      "movies_stored",
		Help:      "Number of movies currently held in memory.",
	}, func() float64 { return float64(repo.Len()) }))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infow("server started", "addr", server.Addr)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("server stopped with error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
