// Command seed fills a running food API with a demo catalog and a demo
// customer account. Products that already exist (by name) are skipped, so
// the command can be run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/utafrali/FoodStore/internal/config"
	"github.com/utafrali/FoodStore/internal/storefront"
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
	extra := flag.Int("extra", 0, "number of generated products to add on top of the demo catalog")
	email := flag.String("email", "demo@foodstore.test", "demo customer email")
	password := flag.String("password", "demo-password", "demo customer password")
	flag.Parse()

	cfg, err := config.LoadStorefront()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.NewWithWriter("seed", cfg.LogLevel, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, 5*time.Minute)
	defer cancelTimeout()

	hc := httpclient.DefaultConfig()
	hc.Timeout = cfg.RequestTimeout
	client := storefront.NewClient(cfg.APIURL, httpclient.New(hc), log)

	items := append(demoCatalog(), generatedItems(*extra)...)
	s := &seeder{admin: storefront.NewAdmin(client, log), client: client, logger: log}

	report, err := s.seedCatalog(ctx, items)
	if err != nil {
		return err
	}
	log.Info("catalog seeded",
		slog.Int("added", report.added),
		slog.Int("skipped", report.skipped),
		slog.Int("failed", report.failed),
	)

	s.seedCustomer(ctx, *email, *password)
	return nil
}
