package main

import (
	"context"
	"expvar"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Drilmo/streamq/internal/bus"
	"github.com/Drilmo/streamq/internal/config"
	"github.com/Drilmo/streamq/internal/engine"
	"github.com/Drilmo/streamq/internal/httpapi"
	"github.com/Drilmo/streamq/internal/overlay"
	"github.com/Drilmo/streamq/internal/store"
	"github.com/Drilmo/streamq/internal/store/memory"
	"github.com/Drilmo/streamq/internal/store/postgres"
	"github.com/Drilmo/streamq/internal/store/redis"
	"github.com/Drilmo/streamq/internal/telemetry"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	shutdownTelemetry := telemetry.Setup("streamq")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	st, cleanup, err := openStore(cfg)
	if err != nil {
		log.Fatalf("store init: %v", err)
	}
	defer cleanup()

	eventBus := bus.New()
	eng := engine.New(st, eventBus, engine.StaticOracle(cfg.Premium), engine.Options{
		MaxQueues: cfg.MaxQueues,
	})
	if err := eng.Initialize(context.Background()); err != nil {
		log.Fatalf("engine init: %v", err)
	}
	defer eng.Close()

	hub := overlay.New(eventBus)
	unbind := hub.Bind()
	defer unbind()

	handler := httpapi.NewHandler(eng)
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		IPPerMinute: cfg.RateLimitPerMinute,
		IPBurst:     cfg.RateLimitBurst,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", expvar.Handler())
	mux.Handle("/overlay/", overlay.Handler("/overlay", hub))
	mux.Handle("/", handler.Routes())

	otelHandler := otelhttp.NewHandler(
		httpapi.LoggingMiddleware(limiter.Middleware(httpapi.AuthMiddleware(cfg.OperatorToken, mux))),
		"streamq",
	)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("streamq listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func openStore(cfg config.Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStore(pool), pool.Close, nil
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		return redis.NewStore(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil
	default:
		return memory.NewStore(), func() {}, nil
	}
}
