/*
Package main is the entry point of the chat server.

It loads configuration, initializes logging, connects PostgreSQL (and Redis or
S3 when configured), wires the presence registry to the WebSocket hub, starts
the periodic presence reconciler and serves HTTP until SIGINT or SIGTERM, then
shuts everything down in reverse order.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"callchat/internal/app/chat"
	"callchat/internal/app/db"
	"callchat/internal/app/message"
	"callchat/internal/app/presence"
	"callchat/internal/app/relay"
	"callchat/internal/app/storage"
	"callchat/internal/app/user"
	"callchat/internal/configs"
	"callchat/internal/handler"
	"callchat/internal/pkg/logx"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Dur("presence_sweep", cfg.PresenceSweep).
		Bool("redis", cfg.RedisURL != "").
		Bool("storage", cfg.StorageEnabled()).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to connect to database")
	}
	defer pool.Close()

	users := user.NewPgStore(pool)
	messages := message.NewPgStore(pool)

	if cfg.SeedDemoUsers {
		if err := user.SeedDemoUsers(ctx, users); err != nil {
			logx.Error(err, "Failed to seed demo users")
		}
	}

	hub := chat.NewHub()

	var opts []presence.Option
	var redisClient *redis.Client
	var mirror *presence.RedisMirror
	if cfg.RedisURL != "" {
		redisClient, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logx.Fatal(err, "Failed to connect to redis")
		}
		mirror = presence.NewRedisMirror(redisClient, 2*cfg.PresenceSweep)
		opts = append(opts, presence.WithMirror(mirror))
	}

	var storageService storage.StorageService
	if cfg.StorageEnabled() {
		storageService, err = storage.NewStorageService(ctx, storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			PublicURL:         cfg.S3PublicURL,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize storage")
		}
	}

	registry := presence.NewRegistry(users, hub, opts...)

	// the reconciler outlives the signal context until the hub has drained.
	reconcileCtx, stopReconciler := context.WithCancel(context.Background())
	registry.RunReconciler(reconcileCtx, cfg.PresenceSweep)

	deps := &handler.AppDeps{
		Config:   cfg,
		Hub:      hub,
		Presence: registry,
		Relay:    relay.New(registry),
		Users:    users,
		Messages: messages,
		Storage:  storageService,
	}
	if mirror != nil {
		deps.Mirror = mirror
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(ctx, deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Chat server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "HTTP server shutdown incomplete")
	}

	// hijacked WebSocket connections are not covered by server.Shutdown.
	if err := hub.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Hub shutdown incomplete")
	}

	stopReconciler()
	registry.Wait()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logx.Error(err, "Failed to close redis client")
		}
	}

	logx.Info("Server gracefully stopped.")
}
