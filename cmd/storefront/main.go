package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/FoodStore/internal/config"
	"github.com/utafrali/FoodStore/internal/storefront"
	"github.com/utafrali/FoodStore/pkg/database"
	"github.com/utafrali/FoodStore/pkg/httpclient"
	"github.com/utafrali/FoodStore/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadStorefront()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout belongs to the shell.
	log := logger.NewWithWriter("storefront", cfg.LogLevel, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tokens, closeTokens, err := newTokenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeTokens()

	hc := httpclient.DefaultConfig()
	hc.Timeout = cfg.RequestTimeout
	var doer httpclient.Doer = httpclient.New(hc)
	if cfg.CircuitBreaker {
		doer = httpclient.NewCircuitBreakerClient(doer, httpclient.DefaultCircuitBreakerConfig("foodapi"), log)
	}
	client := storefront.NewClient(cfg.APIURL, doer, log)

	store := storefront.NewStore(client, tokens, storefront.WithLogger(log))
	store.Start(ctx)

	sh := newShell(store, storefront.NewAdmin(client, log), cfg.Unit, os.Stdin, os.Stdout)
	return sh.Run(ctx)
}

func newTokenStore(ctx context.Context, cfg *config.Storefront) (storefront.TokenStore, func(), error) {
	if cfg.TokenStore != config.TokenStoreRedis {
		return storefront.NewFileTokenStore(cfg.TokenFile), func() {}, nil
	}
	rdb, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	return storefront.NewRedisTokenStore(rdb, cfg.TokenTTL), func() { closeRedis(rdb) }, nil
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		slog.Warn("redis close error", slog.String("error", err.Error()))
	}
}
