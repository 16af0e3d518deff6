package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/msomdec/glasses-shop/internal/config"
	"github.com/msomdec/glasses-shop/internal/domain"
	"github.com/msomdec/glasses-shop/internal/handler"
	"github.com/msomdec/glasses-shop/internal/repository/postgres"
	"github.com/msomdec/glasses-shop/internal/repository/redis"
	"github.com/msomdec/glasses-shop/internal/repository/sqlite"
	"github.com/msomdec/glasses-shop/internal/service"
)

func main() {
	logLevel := new(slog.LevelVar)
	logOpts := &slog.HandlerOptions{Level: logLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logLevel.Set(cfg.LogLevel)

	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "driver", cfg.DatabaseDriver)

	var hasher service.PasswordHasher
	switch cfg.PasswordHasher {
	case config.HasherPBKDF2:
		hasher = service.NewMultiHasher(service.NewWerkzeugHasher())
	default:
		hasher = service.NewMultiHasher(service.NewBcryptHasher(cfg.BcryptCost))
	}

	var codec service.SessionCodec
	switch cfg.SessionBackend {
	case config.BackendRedis:
		client, err := redis.Open(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer closeRedis(client)
		codec = service.NewStoreCodec(redis.NewSessionStore(client, ""), cfg.SessionTTL)
	default:
		codec = service.NewJWTCodec(cfg.SecretKey, cfg.SessionTTL)
	}
	slog.Info("session backend ready", "backend", cfg.SessionBackend, "ttl", cfg.SessionTTL)

	authService := service.NewAuthService(store.Users(), hasher)
	sessions := service.NewSessionManager(codec, store.Users(), cfg.SessionTTL, cfg.CookieSecure)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, sessions)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.RequestLogger(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCtx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (domain.Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		return sqlite.New(cfg.DatabaseDSN)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseDSN)
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
}

func closeRedis(client *goredis.Client) {
	if err := client.Close(); err != nil {
		slog.Error("close redis", "error", err)
	}
}
