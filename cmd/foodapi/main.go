// Command foodapi serves the food catalog, cart and user REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/utafrali/FoodStore/internal/app"
	"github.com/utafrali/FoodStore/internal/config"
	"github.com/utafrali/FoodStore/pkg/httpclient"
	"github.com/utafrali/FoodStore/pkg/logger"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "check /health/ready of a running instance and exit")
	flag.Parse()

	var err error
	if *healthcheck {
		err = runHealthCheck()
	} else {
		err = run()
	}
	if err != nil {
		slog.Error("foodapi failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadAPI()
	if err != nil {
		return err
	}
	log := logger.New("foodapi", cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	log.Info("food api listening",
		slog.Int("port", cfg.HTTPPort),
		slog.String("environment", cfg.Environment),
		slog.String("storage", cfg.StorageBackend),
		slog.Bool("kafka", cfg.KafkaEnabled),
	)
	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("food api stopped")
	return nil
}

// readyCheckConfig is the client setup of the container health check.
var readyCheckConfig = httpclient.Config{
	Timeout:         2 * time.Second,
	MaxRetries:      2,
	RetryWaitMin:    200 * time.Millisecond,
	RetryWaitMax:    time.Second,
	MaxConnsPerHost: 1,
}

// runHealthCheck is the container health check: it exits non-zero unless the
// local instance reports ready.
func runHealthCheck() error {
	cfg, err := config.LoadAPI()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	url := fmt.Sprintf("http://127.0.0.1:%d/health/ready", cfg.HTTPPort)
	return checkReady(ctx, httpclient.New(readyCheckConfig), url)
}

// checkReady succeeds only when url answers 200.
func checkReady(ctx context.Context, client *httpclient.Client, url string) error {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("ready check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ready check: %s returned %d", url, resp.StatusCode)
	}
	return nil
}
